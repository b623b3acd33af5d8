// Package webserver hosts the terminal's HTTP surface: a cookie-session
// gated echo server the POS views and JSON endpoints register into.
package webserver

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"go.uber.org/zap"

	"github.com/cashtill/tillgate/config"
)

type WebServer struct {
	cfg  *config.AppConfig
	root *echo.Echo
	api  *echo.Group // session-gated JSON endpoints
}

var server *WebServer

// Init builds the echo instance, session middleware and route groups.
func Init(cfg *config.AppConfig) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	secret := cfg.Web.Secret
	if secret == "" {
		// ephemeral secret: sessions do not survive a restart
		secret = random.String(32)
		zap.S().Warn("web.secret not configured, using an ephemeral session secret")
	}
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(secret))))

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"code": code, "message": err.Error()})
		}
	}

	server = &WebServer{
		cfg:  cfg,
		root: e,
		api:  e.Group("/api", apiAuthGate),
	}
	return server
}

// Handler exposes the root handler for in-process tests.
func (w *WebServer) Handler() http.Handler {
	return w.root
}

// Listen starts serving and blocks.
func Listen() error {
	addr := fmt.Sprintf("%s:%d", server.cfg.Web.Host, server.cfg.Web.Port)
	zap.S().Infof("web server listening on %s", addr)
	return server.root.Start(addr)
}

// GET registers an open route.
func GET(path string, h echo.HandlerFunc) {
	server.root.GET(path, h)
}

// POST registers an open route.
func POST(path string, h echo.HandlerFunc) {
	server.root.POST(path, h)
}

// PageGET registers a protected page; unauthenticated requests are
// redirected to the login view carrying the requested path.
func PageGET(path string, h echo.HandlerFunc) {
	server.root.GET(path, h, pageAuthGate)
}

// ApiGET registers a session-gated JSON endpoint under /api.
func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

// ApiPOST registers a session-gated JSON endpoint under /api.
func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

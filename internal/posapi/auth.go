package posapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cashtill/tillgate/internal/webserver"
)

type loginPayload struct {
	Token string `json:"token"`
}

func registerAuthRoutes() {
	webserver.POST("/api/login", loginHandler)
	webserver.ApiPOST("/logout", logoutHandler)
	webserver.GET("/api/status", statusHandler)
}

// loginHandler stores the backend-issued bearer token session-scoped and
// flips the logged-in flag. The token is opaque to the terminal.
func loginHandler(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", err.Error())
	}
	token := strings.TrimSpace(payload.Token)
	if token == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Token is required", nil)
	}
	if err := webserver.Login(c, token); err != nil {
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to open session", err.Error())
	}
	app.SetToken(token)

	data := map[string]interface{}{"logged_in": true}
	if op := webserver.Operator(c); op != "" {
		data["operator"] = op
	}
	if exp := webserver.TokenExpiry(token); !exp.IsZero() {
		data["token_expires_at"] = exp
	}
	return ok(c, data)
}

func logoutHandler(c echo.Context) error {
	if err := webserver.Logout(c); err != nil {
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to close session", err.Error())
	}
	app.ClearToken()
	return ok(c, map[string]interface{}{"logged_in": false})
}

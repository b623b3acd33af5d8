package webserver

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashtill/tillgate/config"
)

func testConfig() *config.AppConfig {
	cfg := config.DefaultConfig()
	cfg.Web.Secret = "test-secret"
	return cfg
}

func TestPageGateRedirectsWithReturnTarget(t *testing.T) {
	Init(testConfig())
	PageGET("/pos", func(c echo.Context) error { return c.String(http.StatusOK, "pos") })

	req := httptest.NewRequest(http.MethodGet, "/pos", nil)
	rec := httptest.NewRecorder()
	server.root.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?redirect=%2Fpos", rec.Header().Get("Location"))
}

func TestApiGateRejectsWithoutSession(t *testing.T) {
	Init(testConfig())
	ApiGET("/cart", func(c echo.Context) error { return c.String(http.StatusOK, "cart") })

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	server.root.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginOpensSessionAndGateAdmits(t *testing.T) {
	Init(testConfig())
	POST("/test-login", func(c echo.Context) error {
		if err := Login(c, "opaque-token"); err != nil {
			return err
		}
		return c.NoContent(http.StatusOK)
	})
	PageGET("/pos", func(c echo.Context) error { return c.String(http.StatusOK, "pos") })

	req := httptest.NewRequest(http.MethodPost, "/test-login", nil)
	rec := httptest.NewRecorder()
	server.root.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req = httptest.NewRequest(http.MethodGet, "/pos", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	server.root.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutClosesSession(t *testing.T) {
	Init(testConfig())
	POST("/test-login", func(c echo.Context) error { return Login(c, "tok") })
	POST("/test-logout", func(c echo.Context) error { return Logout(c) })
	PageGET("/pos", func(c echo.Context) error { return c.String(http.StatusOK, "pos") })

	rec := httptest.NewRecorder()
	server.root.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/test-login", nil))
	login := rec.Result().Cookies()

	req := httptest.NewRequest(http.MethodPost, "/test-logout", nil)
	for _, ck := range login {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	server.root.ServeHTTP(rec, req)
	logout := rec.Result().Cookies()

	req = httptest.NewRequest(http.MethodGet, "/pos", nil)
	for _, ck := range logout {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	server.root.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestOperatorPeekedFromJWT(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims := base64.RawURLEncoding.EncodeToString([]byte(`{"name":"kasir-1","exp":4102444800}`))
	token := header + "." + claims + ".signature"

	assert.Equal(t, "kasir-1", operatorFromToken(token))
	assert.Equal(t, int64(4102444800), TokenExpiry(token).Unix())
}

func TestOpaqueTokenYieldsNoOperator(t *testing.T) {
	assert.Empty(t, operatorFromToken("not-a-jwt"))
	assert.True(t, TokenExpiry("not-a-jwt").IsZero())
}

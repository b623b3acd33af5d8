package webserver

import (
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

const (
	sessionName = "tillgate_session"

	sesKeyToken    = "pos_token"
	sesKeyLoggedIn = "is_logged_in"
	sesKeyOperator = "operator"
)

// Login stores the backend bearer token and the logged-in flag in the cookie
// session. When the token happens to be a JWT, its claims are peeked
// unverified for an operator display name; verification belongs to the
// backend that issued it.
func Login(c echo.Context, token string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.HttpOnly = true
	sess.Options.Path = "/"
	sess.Values[sesKeyToken] = token
	sess.Values[sesKeyLoggedIn] = true
	if name := operatorFromToken(token); name != "" {
		sess.Values[sesKeyOperator] = name
	}
	return sess.Save(c.Request(), c.Response())
}

// Logout drops the session.
func Logout(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	sess.Values = map[interface{}]interface{}{}
	return sess.Save(c.Request(), c.Response())
}

// IsLoggedIn is the authentication predicate the navigation gate consumes.
func IsLoggedIn(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	return cast.ToBool(sess.Values[sesKeyLoggedIn])
}

// Token returns the session's backend bearer token, "" when absent.
func Token(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	return cast.ToString(sess.Values[sesKeyToken])
}

// Operator returns the display name peeked from the token at login time.
func Operator(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	return cast.ToString(sess.Values[sesKeyOperator])
}

// operatorFromToken decodes JWT claims without verification and returns a
// best-effort display name. Opaque tokens yield "".
func operatorFromToken(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, k := range []string{"name", "username", "sub"} {
		if v, ok := claims[k]; ok {
			return cast.ToString(v)
		}
	}
	return ""
}

// TokenExpiry returns the JWT exp claim when present, zero time otherwise.
func TokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp := cast.ToInt64(claims["exp"])
	if exp == 0 {
		return time.Time{}
	}
	return time.Unix(exp, 0)
}

// pageAuthGate redirects unauthenticated page requests to the login view,
// carrying the originally requested path as the return target.
func pageAuthGate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if IsLoggedIn(c) {
			return next(c)
		}
		target := "/login?redirect=" + url.QueryEscape(c.Request().URL.RequestURI())
		return c.Redirect(http.StatusFound, target)
	}
}

// apiAuthGate rejects unauthenticated JSON requests with the envelope shape.
func apiAuthGate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if IsLoggedIn(c) {
			return next(c)
		}
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"code":    http.StatusUnauthorized,
			"message": "login required",
		})
	}
}

package posapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cashtill/tillgate/internal/webserver"
)

// The pages are deliberately minimal shells; all behavior lives behind the
// JSON endpoints. Protected paths redirect to /login with the requested
// path as the return target; the login page bounces straight to the POS
// view when the session is already open.

func registerPageRoutes() {
	webserver.GET("/", rootPage)
	webserver.GET("/login", loginPage)
	webserver.PageGET("/pos", posPage)
	webserver.PageGET("/checkout", checkoutPage)
}

func rootPage(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/pos")
}

func loginPage(c echo.Context) error {
	if webserver.IsLoggedIn(c) {
		return c.Redirect(http.StatusFound, "/pos")
	}
	return c.HTML(http.StatusOK, `<!doctype html><title>tillgate login</title>
<h1>Sign in</h1><p>POST the terminal token to /api/login.</p>`)
}

func posPage(c echo.Context) error {
	return c.HTML(http.StatusOK, `<!doctype html><title>tillgate</title>
<h1>POS terminal</h1>`)
}

func checkoutPage(c echo.Context) error {
	return c.HTML(http.StatusOK, `<!doctype html><title>tillgate checkout</title>
<h1>Checkout</h1>`)
}

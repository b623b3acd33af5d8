package posapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cashtill/tillgate/internal/webserver"
)

func registerCheckoutRoutes() {
	webserver.ApiPOST("/checkout", checkoutHandler)
}

// checkoutHandler is a stub: payment processing is out of scope. It issues a
// receipt ID for the current cart and amount but clears nothing; the
// front-end decides when to clear after payment settles elsewhere.
func checkoutHandler(c echo.Context) error {
	s := app.Store()
	receipt := app.IDGen().Generate().String()
	return ok(c, map[string]interface{}{
		"receipt_id": receipt,
		"lines":      s.Cart(),
		"total":      s.CartTotal(),
		"amount":     s.Amount(),
		"issued_at":  time.Now(),
	})
}

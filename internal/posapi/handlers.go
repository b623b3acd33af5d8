// Package posapi exposes the store's operations as session-gated JSON
// endpoints plus the minimal POS pages.
package posapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/labstack/echo/v4"
	"github.com/nakabonne/tstorage"
	"github.com/shirou/gopsutil/mem"

	"github.com/cashtill/tillgate/internal/domain"
	"github.com/cashtill/tillgate/internal/store"
	"github.com/cashtill/tillgate/internal/webserver"
	"github.com/cashtill/tillgate/pkg/metrics"
)

// WebContext is what the handlers need from the application shell.
type WebContext interface {
	Store() *store.Store
	SetToken(token string)
	ClearToken()
	IDGen() *snowflake.Node
}

var app WebContext

// Register wires all routes into the web server.
func Register(ctx WebContext) {
	app = ctx

	registerPageRoutes()
	registerAuthRoutes()
	registerCatalogRoutes()
	registerCartRoutes()
	registerCheckoutRoutes()
}

func registerCatalogRoutes() {
	webserver.ApiGET("/products", listDisplayed)
	webserver.ApiGET("/categories", listCategories)
	webserver.ApiPOST("/catalog/refresh", refreshCatalog)
	webserver.ApiPOST("/categories/refresh", refreshCategories)
	webserver.ApiPOST("/products/filter", filterProducts)
	webserver.ApiGET("/metrics", queryMetrics)
}

func registerCartRoutes() {
	webserver.ApiGET("/cart", getCart)
	webserver.ApiPOST("/cart/add", addToCart)
	webserver.ApiPOST("/cart/quantity", updateQuantity)
	webserver.ApiPOST("/cart/remove", removeFromCart)
	webserver.ApiPOST("/cart/clear", clearCart)
	webserver.ApiPOST("/amount", setAmount)
	webserver.ApiPOST("/amount/clear", clearAmount)
}

func listDisplayed(c echo.Context) error {
	s := app.Store()
	return ok(c, map[string]interface{}{
		"products": s.Displayed(),
		"filter":   s.Filter(),
		"loading":  s.Loading(),
	})
}

func listCategories(c echo.Context) error {
	return ok(c, app.Store().Categories())
}

// refreshCatalog triggers a full catalog fetch. Fetch failures surface as an
// empty list, never as an error; the store owns that policy.
func refreshCatalog(c echo.Context) error {
	s := app.Store()
	s.FetchAllProducts(c.Request().Context())
	return ok(c, s.Displayed())
}

func refreshCategories(c echo.Context) error {
	s := app.Store()
	s.FetchCategories(c.Request().Context())
	return ok(c, s.Categories())
}

type filterPayload struct {
	CategoryID string `json:"category_id"`
}

func filterProducts(c echo.Context) error {
	var payload filterPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse filter", err.Error())
	}
	s := app.Store()
	s.FetchProductsByCategory(c.Request().Context(), domain.ID(strings.TrimSpace(payload.CategoryID)))
	return ok(c, s.Displayed())
}

type cartPayload struct {
	ProductID string `json:"product_id"`
	Change    int    `json:"change"`
}

func getCart(c echo.Context) error {
	s := app.Store()
	return ok(c, map[string]interface{}{
		"lines":  s.Cart(),
		"count":  s.CartCount(),
		"total":  s.CartTotal(),
		"amount": s.Amount(),
	})
}

func addToCart(c echo.Context) error {
	var payload cartPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart request", err.Error())
	}
	s := app.Store()
	p, found := s.Product(domain.ID(payload.ProductID))
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	s.AddItem(p)
	return getCart(c)
}

func updateQuantity(c echo.Context) error {
	var payload cartPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart request", err.Error())
	}
	app.Store().UpdateQuantity(domain.ID(payload.ProductID), payload.Change)
	return getCart(c)
}

func removeFromCart(c echo.Context) error {
	var payload cartPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart request", err.Error())
	}
	app.Store().RemoveItem(domain.ID(payload.ProductID))
	return getCart(c)
}

func clearCart(c echo.Context) error {
	app.Store().ClearCart()
	return getCart(c)
}

type amountPayload struct {
	Value float64 `json:"value"`
}

func setAmount(c echo.Context) error {
	var payload amountPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse amount", err.Error())
	}
	app.Store().SetAmount(payload.Value)
	return ok(c, payload.Value)
}

func clearAmount(c echo.Context) error {
	app.Store().ClearAmount()
	return ok(c, 0)
}

func queryMetrics(c echo.Context) error {
	end := time.Now().Unix()
	start := end - 3600
	points := map[string]interface{}{}
	for _, ep := range []string{"products", "categories"} {
		points["fetch_"+ep] = metrics.Select(
			metrics.MetricFetchDuration,
			[]tstorage.Label{{Name: "endpoint", Value: ep}},
			start, end,
		)
	}
	for _, op := range []string{"add", "update", "remove", "clear"} {
		points["cart_"+op] = metrics.Select(
			metrics.MetricCartOps,
			[]tstorage.Label{{Name: "op", Value: op}},
			start, end,
		)
	}
	return ok(c, points)
}

func statusHandler(c echo.Context) error {
	s := app.Store()
	data := map[string]interface{}{
		"logged_in": webserver.IsLoggedIn(c),
		"operator":  webserver.Operator(c),
		"loading":   s.Loading(),
		"cart":      s.CartCount(),
		"last_sync": s.LastSync(),
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		data["mem_used_percent"] = vm.UsedPercent
	}
	return ok(c, data)
}

package posapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ok and fail mirror the backend envelope so the terminal's own surface and
// the proxied backend speak the same shape.

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 200,
		"data": data,
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	body := map[string]interface{}{
		"code":    status,
		"error":   code,
		"message": message,
	}
	if detail != nil {
		body["detail"] = detail
	}
	return c.JSON(status, body)
}

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"klarna_checkout_echo/internal/services"
)

// DashboardHandler renders the listing of mirrored sessions and orders.
type DashboardHandler struct {
	checkout *services.CheckoutService
}

func NewDashboardHandler(checkout *services.CheckoutService) *DashboardHandler {
	return &DashboardHandler{checkout: checkout}
}

// Dashboard renders the dashboard page from current store contents.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	sessions, err := h.checkout.Sessions()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list sessions")
	}
	orders, err := h.checkout.Orders()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list orders")
	}

	return c.Render(http.StatusOK, "dashboard.html", map[string]interface{}{
		"Title":    "Dashboard",
		"Sessions": sessions,
		"Orders":   orders,
	})
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"klarna_checkout_echo/internal/models"
	"klarna_checkout_echo/internal/services"
)

// OrderHandler handles order endpoints.
type OrderHandler struct {
	checkout *services.CheckoutService
}

func NewOrderHandler(checkout *services.CheckoutService) *OrderHandler {
	return &OrderHandler{checkout: checkout}
}

// OrderDetail renders the provider's current order state with the action
// buttons gated on what the provider would accept.
func (h *OrderHandler) OrderDetail(c echo.Context) error {
	orderID := c.Param("id")
	detail, err := h.checkout.OrderDetail(c.Request().Context(), orderID)
	if err != nil {
		c.Logger().Errorf("fetch order %s failed: %v", orderID, err)
		return httpError(err)
	}

	pretty, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render order detail")
	}

	cancelled := detail.Status == models.OrderStatusCancelled
	return c.Render(http.StatusOK, "order-detail.html", map[string]interface{}{
		"Title":      "Order Detail",
		"OrderID":    orderID,
		"Order":      string(pretty),
		"CanCapture": detail.OrderAmount > detail.CapturedAmount && !cancelled,
		"CanCancel":  detail.CapturedAmount == 0 && !cancelled,
		"CanRefund":  detail.CapturedAmount > detail.RefundedAmount && !cancelled,
	})
}

// StoreOrder promotes an authorized session into an order. Both form fields
// are required; missing input bounces back to the dashboard unchanged.
func (h *OrderHandler) StoreOrder(c echo.Context) error {
	sessionID := c.FormValue("sessionId")
	authorizationToken := c.FormValue("authorizationToken")
	if sessionID == "" || authorizationToken == "" {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	if _, err := h.checkout.PromoteSession(c.Request().Context(), sessionID, authorizationToken); err != nil {
		c.Logger().Errorf("promote session %s failed: %v", sessionID, err)
		return httpError(err)
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// CaptureOrder captures the order's full remaining balance.
func (h *OrderHandler) CaptureOrder(c echo.Context) error {
	orderID := c.Param("id")
	if err := h.checkout.CaptureOrder(c.Request().Context(), orderID); err != nil {
		c.Logger().Errorf("capture order %s failed: %v", orderID, err)
		return httpError(err)
	}
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/order/%s", orderID))
}

// RefundOrder refunds the order's full remaining captured balance.
func (h *OrderHandler) RefundOrder(c echo.Context) error {
	orderID := c.Param("id")
	if err := h.checkout.RefundOrder(c.Request().Context(), orderID); err != nil {
		c.Logger().Errorf("refund order %s failed: %v", orderID, err)
		return httpError(err)
	}
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/order/%s", orderID))
}

// CancelOrder cancels the order.
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	orderID := c.Param("id")
	if err := h.checkout.CancelOrder(c.Request().Context(), orderID); err != nil {
		c.Logger().Errorf("cancel order %s failed: %v", orderID, err)
		return httpError(err)
	}
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/order/%s", orderID))
}

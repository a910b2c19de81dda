package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"klarna_checkout_echo/internal/services"
)

// SessionHandler handles checkout session endpoints.
type SessionHandler struct {
	checkout *services.CheckoutService
}

func NewSessionHandler(checkout *services.CheckoutService) *SessionHandler {
	return &SessionHandler{checkout: checkout}
}

// StoreSession creates a new provider session from the demo cart and mirrors
// it locally, then returns to the dashboard. An optional order_amount form
// field replaces the demo cart with a single-line cart.
func (h *SessionHandler) StoreSession(c echo.Context) error {
	var orderAmount int64
	if raw := c.FormValue("order_amount"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "order_amount must be a non-negative integer of minor units")
		}
		orderAmount = parsed
	}

	req := services.DemoSessionRequest(orderAmount)
	if _, err := h.checkout.StartSession(c.Request().Context(), req); err != nil {
		c.Logger().Errorf("start session failed: %v", err)
		return httpError(err)
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// SessionDetail renders the provider's current session state as indented JSON.
func (h *SessionHandler) SessionDetail(c echo.Context) error {
	sessionID := c.Param("id")
	detail, err := h.checkout.SessionDetail(c.Request().Context(), sessionID)
	if err != nil {
		c.Logger().Errorf("fetch session %s failed: %v", sessionID, err)
		return httpError(err)
	}

	pretty, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render session detail")
	}

	return c.Render(http.StatusOK, "session-detail.html", map[string]interface{}{
		"Title":     "Session Detail",
		"SessionID": sessionID,
		"Session":   string(pretty),
	})
}

// PaymentPage renders the widget bootstrap page carrying the session's
// client_token.
func (h *SessionHandler) PaymentPage(c echo.Context) error {
	sessionID := c.Param("id")
	detail, err := h.checkout.SessionDetail(c.Request().Context(), sessionID)
	if err != nil {
		c.Logger().Errorf("fetch session %s failed: %v", sessionID, err)
		return httpError(err)
	}

	return c.Render(http.StatusOK, "session-payment.html", map[string]interface{}{
		"Title":       "Init Payment",
		"SessionID":   sessionID,
		"ClientToken": detail.ClientToken,
	})
}

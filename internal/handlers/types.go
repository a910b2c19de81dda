package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"klarna_checkout_echo/internal/services"
)

// httpError maps workflow errors onto HTTP statuses so the error page can
// tell a missing record from a provider rejection from an unreachable
// provider.
func httpError(err error) error {
	var gerr *services.GatewayError
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case services.GatewayErrorNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "The payment provider has no record with that identifier.")
		case services.GatewayErrorNetwork:
			return echo.NewHTTPError(http.StatusBadGateway, "The payment provider could not be reached.")
		default:
			return echo.NewHTTPError(http.StatusBadGateway, "The payment provider rejected the request.")
		}
	}
	if errors.Is(err, services.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "No local record with that identifier.")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

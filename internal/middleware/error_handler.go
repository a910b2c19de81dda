package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CustomErrorHandler renders the error page for failed requests. Pipeline
// failures arrive as HTTPErrors whose status was mapped from the gateway
// error kind, so "not found", "provider rejected" and "provider unreachable"
// stay distinguishable to the user.
func CustomErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	errorTitle := "Internal Server Error"
	errorMessage := ""

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code

		if msg, ok := he.Message.(string); ok && msg != "" {
			errorMessage = msg
		}

		switch code {
		case http.StatusNotFound:
			errorTitle = "Not Found"
			if errorMessage == "" {
				errorMessage = "The page you're looking for doesn't exist."
			}
		case http.StatusBadGateway:
			errorTitle = "Payment Provider Error"
			if errorMessage == "" {
				errorMessage = "The payment provider could not complete the request."
			}
		case http.StatusBadRequest:
			errorTitle = "Bad Request"
			if errorMessage == "" {
				errorMessage = "The request could not be processed."
			}
		default:
			if errorMessage == "" {
				errorMessage = "Something went wrong. Please try again later."
			}
		}
	} else {
		errorMessage = "Something went wrong. Please try again later."
	}

	c.Logger().Error(err)

	if c.Response().Committed {
		return
	}

	renderErr := c.Render(code, "error.html", map[string]interface{}{
		"Title":        errorTitle,
		"ErrorTitle":   errorTitle,
		"ErrorMessage": errorMessage,
	})
	if renderErr != nil {
		// fall back to plain text if the template fails
		c.Logger().Error(renderErr)
		_ = c.String(code, errorMessage)
	}
}

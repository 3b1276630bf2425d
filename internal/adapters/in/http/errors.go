package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/generated/servers"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusFor maps application errors onto HTTP status codes. Only client
// errors carry the error text; everything else gets fallback.
func statusFor(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, errs.ErrPriceMismatch):
		var mismatch *errs.PriceMismatchError
		if errors.As(err, &mismatch) {
			return http.StatusBadRequest, mismatch.Error()
		}
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrSignatureInvalid):
		return http.StatusUnauthorized, "Invalid signature"
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, "Order not found"
	default:
		return http.StatusInternalServerError, fallback
	}
}

func errorJSON(c echo.Context, code int, message string) error {
	return c.JSON(code, servers.Error{Code: code, Message: message})
}

// handleError renders errors that escaped a route, such as unknown paths and
// recovered panics, in the same shape as handled ones.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, message := http.StatusInternalServerError, "Internal server error"
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = http.StatusText(code)
	} else {
		s.logger.ErrorContext(c.Request().Context(), "unhandled request error",
			"path", c.Path(),
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = errorJSON(c, code, message)
}

package http

import (
	"io"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/generated/servers"

	"github.com/labstack/echo/v4"
)

const maxWebhookBodySize = 1 << 20

// PaymentWebhook handles POST /api/v1/webhooks/payment - a form encoded
// payment notification signed with the shared salt. Notifications for unknown
// orders are acknowledged so the provider does not retry them.
func (s *Server) PaymentWebhook(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid form body")
	}

	cmd, err := commands.NewPaymentWebhookCommand(form)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid payment notification: "+err.Error())
	}

	ctx := c.Request().Context()
	result, err := s.paymentWebhookHandler.Handle(ctx, cmd)
	if err != nil {
		code, message := statusFor(err, "Failed to process payment notification")
		if code == http.StatusInternalServerError {
			s.logger.ErrorContext(ctx, "payment notification failed", "reference", cmd.Reference(), "error", err)
		}
		return errorJSON(c, code, message)
	}

	if result.UnknownReference {
		return c.JSON(http.StatusOK, servers.WebhookResponse{Success: true, Message: "No matching order"})
	}
	return c.JSON(http.StatusOK, servers.WebhookResponse{Success: true})
}

// DeliveryWebhook handles POST /api/v1/webhooks/delivery - a JSON job update.
// The raw body is kept for signature verification. Updates for unknown jobs
// are acknowledged so the provider does not retry them.
func (s *Server) DeliveryWebhook(c echo.Context, params servers.DeliveryWebhookParams) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBodySize))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}

	var signature string
	if params.XDetrackSignature != nil {
		signature = *params.XDetrackSignature
	}

	cmd, err := commands.NewDeliveryWebhookCommand(body, signature)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid delivery notification: "+err.Error())
	}

	ctx := c.Request().Context()
	result, err := s.deliveryWebhookHandler.Handle(ctx, cmd)
	if err != nil {
		code, message := statusFor(err, "Failed to process delivery notification")
		if code == http.StatusInternalServerError {
			s.logger.ErrorContext(ctx, "delivery notification failed", "job", cmd.JobRef(), "error", err)
		}
		return errorJSON(c, code, message)
	}

	if !result.Matched {
		return c.JSON(http.StatusOK, servers.WebhookResponse{Success: true, Message: "No matching order"})
	}
	return c.JSON(http.StatusOK, servers.WebhookResponse{Success: true})
}

package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/webhooksig"
)

const (
	WebhookProviderPayment  = "payment"
	WebhookProviderDelivery = "delivery"

	WebhookOutcomeApplied  = "applied"
	WebhookOutcomeNoop     = "noop"
	WebhookOutcomeIgnored  = "ignored"
	WebhookOutcomeRejected = "rejected"
	WebhookOutcomeUnknown  = "unknown_reference"
)

// Dispatcher runs a dispatch for an order.
type Dispatcher interface {
	Handle(ctx context.Context, cmd DispatchOrderCommand) (DispatchResult, error)
}

// PaymentWebhookResult describes what a notification changed. Dispatch is nil
// unless the notification moved the order to paid. UnknownReference is set
// when no order carries the reference number.
type PaymentWebhookResult struct {
	OrderID          kernel.UUID
	Status           order.Status
	Transitioned     bool
	UnknownReference bool
	Dispatch         *DispatchResult
	DispatchErr      error
}

// PaymentWebhookCommandHandler applies payment notifications.
//
// The form signature is the only authenticity check and notifications may be
// replayed, so applying the same notification twice changes nothing the
// second time and never dispatches twice.
type PaymentWebhookCommandHandler struct {
	uowFactory OrderUoWFactory
	resolver   IdentifierResolver
	dispatcher Dispatcher
	salt       string
	notifier   statusNotifier
	metrics    Metrics
	logger     *slog.Logger
}

func NewPaymentWebhookCommandHandler(
	uowFactory OrderUoWFactory,
	resolver IdentifierResolver,
	dispatcher Dispatcher,
	publisher ports.EventPublisher,
	salt string,
	metrics Metrics,
	logger *slog.Logger,
) PaymentWebhookCommandHandler {
	logger = logger.With("component", "payment-webhook")
	return PaymentWebhookCommandHandler{
		uowFactory: uowFactory,
		resolver:   resolver,
		dispatcher: dispatcher,
		salt:       salt,
		notifier:   statusNotifier{publisher: publisher, logger: logger},
		metrics:    metricsOrNoop(metrics),
		logger:     logger,
	}
}

// Handle verifies the signature, marks the order paid and, on the transition
// into paid, dispatches it before returning. Dispatch failures are logged and
// left to the scheduled retry; they never fail the notification.
func (h *PaymentWebhookCommandHandler) Handle(ctx context.Context, cmd PaymentWebhookCommand) (PaymentWebhookResult, error) {
	if err := cmd.Validate(); err != nil {
		return PaymentWebhookResult{}, err
	}

	if h.salt == "" {
		h.metrics.WebhookProcessed(WebhookProviderPayment, WebhookOutcomeRejected)
		h.logger.ErrorContext(ctx, "payment notification rejected: no salt configured", "reference", cmd.Reference())
		return PaymentWebhookResult{}, errs.NewSignatureInvalidError(WebhookProviderPayment, "no salt configured")
	}

	if !webhooksig.VerifyForm(cmd.Form(), h.salt) {
		h.metrics.WebhookProcessed(WebhookProviderPayment, WebhookOutcomeRejected)
		h.logger.WarnContext(ctx, "payment notification signature mismatch", "reference", cmd.Reference())
		return PaymentWebhookResult{}, errs.NewSignatureInvalidError(WebhookProviderPayment, "hmac mismatch")
	}

	target, ok := services.PaymentStatusToOrderStatus(cmd.Status())
	if !ok {
		h.metrics.WebhookProcessed(WebhookProviderPayment, WebhookOutcomeIgnored)
		h.logger.InfoContext(ctx, "payment notification ignored",
			"reference", cmd.Reference(),
			"status", cmd.Status(),
		)
		return PaymentWebhookResult{}, nil
	}

	orderID, err := h.resolver.ResolveOrder(ctx, cmd.Reference())
	if errors.Is(err, errs.ErrObjectNotFound) {
		h.metrics.WebhookProcessed(WebhookProviderPayment, WebhookOutcomeUnknown)
		h.logger.WarnContext(ctx, "payment notification for unknown order",
			"reference", cmd.Reference(),
			"status", cmd.Status(),
		)
		return PaymentWebhookResult{UnknownReference: true}, nil
	}
	if err != nil {
		return PaymentWebhookResult{}, err
	}

	now := time.Now().UTC()
	res, err := mutateOrder(ctx, h.uowFactory, loadByID(orderID), func(o *order.Order) (bool, error) {
		return o.ApplyStatus(target, now)
	})
	if err != nil {
		return PaymentWebhookResult{}, err
	}
	h.notifier.notify(ctx, res, WebhookProviderPayment, now)

	result := PaymentWebhookResult{
		OrderID:      orderID,
		Status:       res.Order.Status(),
		Transitioned: res.StatusChanged() && res.Order.Status() == order.Paid,
	}

	if !result.Transitioned {
		h.metrics.WebhookProcessed(WebhookProviderPayment, WebhookOutcomeNoop)
		h.logger.InfoContext(ctx, "payment already recorded",
			"order_id", orderID.String(),
			"status", result.Status.String(),
		)
		return result, nil
	}

	h.metrics.WebhookProcessed(WebhookProviderPayment, WebhookOutcomeApplied)
	h.logger.InfoContext(ctx, "order paid",
		"order_id", orderID.String(),
		"payment_id", cmd.PaymentID(),
		"amount", cmd.Amount(),
	)

	dispatchCmd, err := NewDispatchOrderCommand(orderID)
	if err != nil {
		return result, err
	}

	dispatched, dispatchErr := h.dispatcher.Handle(ctx, dispatchCmd)
	result.Dispatch = &dispatched
	result.DispatchErr = dispatchErr
	if dispatchErr != nil {
		h.logger.ErrorContext(ctx, "dispatch after payment failed",
			"order_id", orderID.String(),
			"failed_parcels", len(dispatched.Failed),
			"error", dispatchErr,
		)
	}

	return result, nil
}

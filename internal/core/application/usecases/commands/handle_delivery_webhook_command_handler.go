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

// DeliveryWebhookResult describes what a delivery notification changed.
// Matched is false when no order carries the job reference.
type DeliveryWebhookResult struct {
	OrderID      kernel.UUID
	Status       order.Status
	Matched      bool
	Changed      bool
	ItemsApplied int
	ItemErrors   []error
}

// DeliveryWebhookCommandHandler applies delivery status notifications.
type DeliveryWebhookCommandHandler struct {
	uowFactory OrderUoWFactory
	secret     string
	notifier   statusNotifier
	metrics    Metrics
	logger     *slog.Logger
}

// NewDeliveryWebhookCommandHandler builds the handler. An empty secret turns
// signature verification off.
func NewDeliveryWebhookCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	secret string,
	metrics Metrics,
	logger *slog.Logger,
) DeliveryWebhookCommandHandler {
	logger = logger.With("component", "delivery-webhook")
	return DeliveryWebhookCommandHandler{
		uowFactory: uowFactory,
		secret:     secret,
		notifier:   statusNotifier{publisher: publisher, logger: logger},
		metrics:    metricsOrNoop(metrics),
		logger:     logger,
	}
}

// Handle maps the provider status, finds the order by job id or, when the
// provider sent none or it is unknown, by the do_number the job was created
// under, and applies the status to the order (regular) or to the parcel owning
// the job (bulk). Items are applied to the parcels carrying their item reference; an
// item that fails is logged and does not stop the others.
func (h *DeliveryWebhookCommandHandler) Handle(ctx context.Context, cmd DeliveryWebhookCommand) (DeliveryWebhookResult, error) {
	if err := cmd.Validate(); err != nil {
		return DeliveryWebhookResult{}, err
	}

	if h.secret != "" {
		if cmd.Signature() == "" {
			h.metrics.WebhookProcessed(WebhookProviderDelivery, WebhookOutcomeRejected)
			return DeliveryWebhookResult{}, errs.NewSignatureInvalidError(WebhookProviderDelivery, "signature missing")
		}
		if !webhooksig.VerifyBody(cmd.Body(), h.secret, cmd.Signature()) {
			h.metrics.WebhookProcessed(WebhookProviderDelivery, WebhookOutcomeRejected)
			return DeliveryWebhookResult{}, errs.NewSignatureInvalidError(WebhookProviderDelivery, "hmac mismatch")
		}
	}

	jobRef := cmd.JobRef()
	target := services.DeliveryStatusToOrderStatus(cmd.Status())
	now := time.Now().UTC()

	var (
		itemsApplied int
		itemErrors   []error
	)

	load := func(ctx context.Context, repo ports.OrderRepository) (*order.Order, error) {
		o, err := repo.GetByDispatchJobRef(ctx, jobRef)
		if errors.Is(err, errs.ErrObjectNotFound) && jobRef != cmd.DoNumber() {
			return repo.GetByDispatchJobRef(ctx, cmd.DoNumber())
		}
		return o, err
	}

	res, err := mutateOrder(ctx, h.uowFactory, load, func(o *order.Order) (bool, error) {
		itemsApplied, itemErrors = 0, nil

		changed, err := h.applyJobStatus(o, cmd, target, now)
		if err != nil {
			return false, err
		}

		for _, item := range cmd.Items() {
			itemChanged, itemErr := h.applyItem(o, item, target, now)
			if itemErr != nil {
				itemErrors = append(itemErrors, itemErr)
				continue
			}
			itemsApplied++
			changed = changed || itemChanged
		}
		return changed, nil
	})
	if errors.Is(err, errs.ErrObjectNotFound) {
		h.metrics.WebhookProcessed(WebhookProviderDelivery, WebhookOutcomeUnknown)
		h.logger.WarnContext(ctx, "delivery notification for unknown job",
			"job_ref", jobRef,
			"do_number", cmd.DoNumber(),
			"status", cmd.Status(),
		)
		return DeliveryWebhookResult{}, nil
	}
	if err != nil {
		return DeliveryWebhookResult{}, err
	}

	for _, itemErr := range itemErrors {
		h.logger.ErrorContext(ctx, "delivery item update failed",
			"order_id", res.Order.ID().String(),
			"job_ref", jobRef,
			"error", itemErr,
		)
	}

	h.notifier.notify(ctx, res, WebhookProviderDelivery, now)

	outcome := WebhookOutcomeNoop
	if res.Changed {
		outcome = WebhookOutcomeApplied
	}
	h.metrics.WebhookProcessed(WebhookProviderDelivery, outcome)
	h.logger.InfoContext(ctx, "delivery notification processed",
		"order_id", res.Order.ID().String(),
		"job_ref", jobRef,
		"provider_status", cmd.Status(),
		"tracking_status", cmd.TrackingStatus(),
		"status", res.Order.Status().String(),
		"changed", res.Changed,
	)

	return DeliveryWebhookResult{
		OrderID:      res.Order.ID(),
		Status:       res.Order.Status(),
		Matched:      true,
		Changed:      res.Changed,
		ItemsApplied: itemsApplied,
		ItemErrors:   itemErrors,
	}, nil
}

func (h *DeliveryWebhookCommandHandler) applyJobStatus(o *order.Order, cmd DeliveryWebhookCommand, target order.Status, now time.Time) (bool, error) {
	if !o.IsBulk() {
		return o.ApplyStatus(target, now)
	}

	p, ok := o.ParcelByDispatchRef(cmd.JobID())
	if !ok {
		p, ok = o.ParcelByShortCode(cmd.DoNumber())
	}
	if !ok {
		return false, nil
	}
	return o.ApplyParcelStatus(p.ID(), target, now)
}

func (h *DeliveryWebhookCommandHandler) applyItem(o *order.Order, item DeliveryWebhookItem, jobStatus order.Status, now time.Time) (bool, error) {
	p, ok := o.ParcelByDispatchRef(item.ID)
	if !ok {
		return false, errs.NewObjectNotFoundError("delivery item", item.ID)
	}

	status := jobStatus
	if item.Status != "" {
		status = services.DeliveryStatusToOrderStatus(item.Status)
	}
	return o.ApplyParcelStatus(p.ID(), status, now)
}

package queries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

type (
	// IdentifierLocator resolves an identifier to its order and, for parcel
	// codes and ids, the parcel.
	IdentifierLocator interface {
		Resolve(ctx context.Context, input string) (ports.Locator, error)
	}

	// OrderReader loads the order aggregate.
	OrderReader interface {
		Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
	}
)

// GetTrackingStatusQueryHandler builds the customer tracking timeline.
//
// A parcel without a delivery job gets a placeholder timeline and the
// delivery provider is not called. Otherwise the provider is asked for the
// job by the parcel's short code.
type GetTrackingStatusQueryHandler struct {
	locator  IdentifierLocator
	orders   OrderReader
	delivery ports.DeliveryProvider
	logger   *slog.Logger
	now      func() time.Time
}

func NewGetTrackingStatusQueryHandler(
	locator IdentifierLocator,
	orders OrderReader,
	delivery ports.DeliveryProvider,
	logger *slog.Logger,
) GetTrackingStatusQueryHandler {
	return GetTrackingStatusQueryHandler{
		locator:  locator,
		orders:   orders,
		delivery: delivery,
		logger:   logger.With("component", "tracking"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Handle returns errs.ObjectNotFoundError for unknown identifiers and an error
// wrapping errs.ErrProviderUnavailable when the provider cannot be reached.
// Provider details are logged, never returned.
func (h GetTrackingStatusQueryHandler) Handle(ctx context.Context, query GetTrackingStatusQuery) (services.Timeline, error) {
	if err := query.Validate(); err != nil {
		return services.Timeline{}, err
	}

	loc, err := h.locator.Resolve(ctx, query.Identifier())
	if err != nil {
		return services.Timeline{}, err
	}

	o, err := h.orders.Get(ctx, loc.OrderID)
	if err != nil {
		return services.Timeline{}, err
	}

	parcel := trackedParcel(o, loc)
	now := h.now()
	if parcel == nil || !parcel.HasDispatchJob() {
		return services.PlaceholderTimeline(o.CreatedAt(), now), nil
	}

	code := parcel.ShortCode()
	if code.IsEmpty() {
		code = o.ShortCode()
	}

	snapshot, err := h.delivery.GetJob(ctx, code)
	if errors.Is(err, errs.ErrObjectNotFound) {
		h.logger.WarnContext(ctx, "delivery job missing at provider", "short_code", code.String())
		return services.PlaceholderTimeline(o.CreatedAt(), now), nil
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "tracking lookup failed",
			"order_id", o.ID().String(),
			"short_code", code.String(),
			"error", err,
		)
		return services.Timeline{}, fmt.Errorf("%w: tracking %s", errs.ErrProviderUnavailable, code)
	}

	return services.BuildTimeline(snapshot, now), nil
}

// trackedParcel is the located parcel, or the first parcel when the
// identifier named the order.
func trackedParcel(o *order.Order, loc ports.Locator) *order.Parcel {
	if loc.ParcelID != nil {
		if p, ok := o.Parcel(*loc.ParcelID); ok {
			return p
		}
	}

	parcels := o.Parcels()
	if len(parcels) == 0 {
		return nil
	}
	return parcels[0]
}

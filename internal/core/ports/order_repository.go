package ports

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// ErrConcurrentUpdate is returned by Update when the order row changed since it
// was loaded. Callers reload the aggregate and reapply their change.
var ErrConcurrentUpdate = errors.New("order was modified concurrently")

// OrderRepository defines the persistence contract for order aggregates.
// An order is always stored and loaded together with its parcels and bulk summary.
type OrderRepository interface {
	// Add persists a new order with its parcels and, for bulk orders, the bulk summary.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists status and dispatch state of the order and its parcels.
	// Parcel short codes and dispatch references are written only while the
	// stored value is still empty. Returns ErrConcurrentUpdate when the version
	// loaded with the aggregate is stale.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by internal id.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByDispatchJobRef finds the order owning a delivery provider job, whether
	// the job id was recorded on the order or on one of its parcels, or ref is
	// the parcel short code the job was created under.
	GetByDispatchJobRef(ctx context.Context, jobRef string) (*order.Order, error)

	// GetAwaitingDispatch lists paid, non-terminal orders whose dispatch is
	// incomplete and whose last dispatch attempt, or last update when never
	// attempted, is before the given time. Never attempted orders come first,
	// then the least recently attempted.
	GetAwaitingDispatch(ctx context.Context, before time.Time, limit int) ([]*order.Order, error)
}

package orderrepo

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a repository on db. tracker may be nil for
// read-only use outside a unit of work.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the order, its parcels and the bulk summary in one statement
// batch. Run it inside a unit of work so a failed parcel insert leaves no order.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.track(aggregate)
	return nil
}

// Update writes status and dispatch state guarded by the version column.
// Short codes and dispatch references only ever fill empty columns, so a
// stale writer cannot replace a job another writer already recorded.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, dto.Version).
		Updates(map[string]any{
			"status":                   dto.Status,
			"dispatch_job_ref":         gorm.Expr("COALESCE(dispatch_job_ref, ?)", dto.DispatchJobRef),
			"dispatched_at":            gorm.Expr("COALESCE(dispatched_at, ?)", dto.DispatchedAt),
			"last_dispatch_attempt_at": gorm.Expr("COALESCE(?, last_dispatch_attempt_at)", dto.LastDispatchAttemptAt),
			"updated_at":               dto.UpdatedAt,
			"version":                  gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&OrderDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("order", aggregate.ID().String())
		}
		return ports.ErrConcurrentUpdate
	}

	for _, p := range dto.Parcels {
		err := db.Model(&ParcelDTO{}).
			Where("id = ? AND order_id = ?", p.ID, dto.ID).
			Updates(map[string]any{
				"status":            p.Status,
				"short_code":        gorm.Expr("COALESCE(short_code, ?)", p.ShortCode),
				"dispatch_job_ref":  gorm.Expr("COALESCE(dispatch_job_ref, ?)", p.DispatchJobRef),
				"dispatch_item_ref": gorm.Expr("COALESCE(dispatch_item_ref, ?)", p.DispatchItemRef),
			}).Error
		if err != nil {
			return err
		}
	}

	r.track(aggregate)
	return nil
}

// Get retrieves an order with its parcels by id.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.withAggregate(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByDispatchJobRef matches the order's own job reference, a job recorded on
// one of its parcels, or the parcel short code a job was created under
// (do_number).
func (r *GormOrderRepository) GetByDispatchJobRef(ctx context.Context, jobRef string) (*order.Order, error) {
	if jobRef == "" {
		return nil, errs.NewValueIsRequiredError("dispatch job reference")
	}

	var dto OrderDTO
	err := r.withAggregate(ctx).
		Where("dispatch_job_ref = ?", jobRef).
		Or("id IN (?)", r.db.Model(&ParcelDTO{}).
			Select("order_id").
			Where("dispatch_job_ref = ? OR short_code = ?", jobRef, jobRef)).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("dispatch job", jobRef)
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAwaitingDispatch lists paid, non-terminal, not yet dispatched orders whose
// last dispatch attempt (or, before any attempt, last update) is older than
// before. Orders never attempted come first, then the least recently attempted,
// so orders that keep failing do not starve the rest of the batch.
func (r *GormOrderRepository) GetAwaitingDispatch(ctx context.Context, before time.Time, limit int) ([]*order.Order, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("limit", limit, 1, nil)
	}

	var dtos []OrderDTO
	err := r.withAggregate(ctx).
		Where("status IN ?", awaitingDispatchStatuses()).
		Where("dispatched_at IS NULL AND COALESCE(last_dispatch_attempt_at, updated_at) < ?", before).
		Order("last_dispatch_attempt_at NULLS FIRST").
		Order("updated_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func (r *GormOrderRepository) withAggregate(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Parcels", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("BulkOrder")
}

func (r *GormOrderRepository) track(aggregate *order.Order) {
	if r.tracker != nil {
		r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	}
}

func awaitingDispatchStatuses() []string {
	return []string{
		order.Paid.String(),
		order.Processing.String(),
		order.PickedUp.String(),
		order.OutForDelivery.String(),
	}
}

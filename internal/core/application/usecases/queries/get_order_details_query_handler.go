package queries

import (
	"context"
	"database/sql"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderResolver turns any public or internal identifier into an order id.
type OrderResolver interface {
	ResolveOrder(ctx context.Context, input string) (kernel.UUID, error)
}

// GetOrderDetailsQueryHandler reads the order view straight from the tables
// without loading the aggregate.
type GetOrderDetailsQueryHandler struct {
	db       *gorm.DB
	resolver OrderResolver
}

func NewGetOrderDetailsQueryHandler(db *gorm.DB, resolver OrderResolver) GetOrderDetailsQueryHandler {
	return GetOrderDetailsQueryHandler{db: db, resolver: resolver}
}

// Handle returns an errs.ObjectNotFoundError when the identifier matches nothing.
func (h GetOrderDetailsQueryHandler) Handle(
	ctx context.Context,
	query GetOrderDetailsQuery,
) (GetOrderDetailsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderDetailsQueryResponse{}, err
	}

	orderID, err := h.resolver.ResolveOrder(ctx, query.Identifier())
	if err != nil {
		return GetOrderDetailsQueryResponse{}, err
	}

	details, err := h.order(ctx, orderID)
	if err != nil {
		return GetOrderDetailsQueryResponse{}, err
	}

	if details.Parcels, err = h.parcels(ctx, orderID); err != nil {
		return GetOrderDetailsQueryResponse{}, err
	}

	if details.Bulk, err = h.bulk(ctx, orderID); err != nil {
		return GetOrderDetailsQueryResponse{}, err
	}

	return details, nil
}

func (h GetOrderDetailsQueryHandler) order(ctx context.Context, id kernel.UUID) (GetOrderDetailsQueryResponse, error) {
	var details GetOrderDetailsQueryResponse
	var rawID uuid.UUID

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			short_code,
			status,
			delivery_method,
			amount,
			sender_name,
			dispatched_at,
			created_at,
			updated_at
		FROM orders
		WHERE id = ?
	`, id.Bytes()).Row()

	err := row.Scan(
		&rawID,
		&details.ShortCode,
		&details.Status,
		&details.DeliveryMethod,
		&details.Amount,
		&details.SenderName,
		&details.DispatchedAt,
		&details.CreatedAt,
		&details.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderDetailsQueryResponse{}, errs.NewObjectNotFoundError("order", id.String())
	}
	if err != nil {
		return GetOrderDetailsQueryResponse{}, err
	}

	details.ID, err = kernel.UUIDFromBytes(rawID[:])
	return details, err
}

func (h GetOrderDetailsQueryHandler) parcels(ctx context.Context, orderID kernel.UUID) ([]ParcelDetails, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			position,
			COALESCE(short_code, ''),
			tier,
			price,
			status,
			weight_kg,
			recipient_name,
			recipient_postal_code,
			dispatch_job_ref IS NOT NULL
		FROM parcels
		WHERE order_id = ?
		ORDER BY position
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parcels := make([]ParcelDetails, 0)
	for rows.Next() {
		var p ParcelDetails
		var id uuid.UUID

		err = rows.Scan(
			&id,
			&p.Index,
			&p.ShortCode,
			&p.Tier,
			&p.Price,
			&p.Status,
			&p.WeightKg,
			&p.RecipientName,
			&p.PostalCode,
			&p.Dispatched,
		)
		if err != nil {
			return nil, err
		}

		if p.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		parcels = append(parcels, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return parcels, nil
}

func (h GetOrderDetailsQueryHandler) bulk(ctx context.Context, orderID kernel.UUID) (*BulkDetails, error) {
	var bulk BulkDetails

	err := h.db.WithContext(ctx).Raw(`
		SELECT total_parcels, total_weight_kg
		FROM bulk_orders
		WHERE order_id = ?
	`, orderID.Bytes()).Row().Scan(&bulk.TotalParcels, &bulk.TotalWeightKg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &bulk, nil
}

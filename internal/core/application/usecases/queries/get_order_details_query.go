package queries

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetOrderDetailsQueryIsNotConstructed = errors.New(
	"GetOrderDetailsQuery must be created via NewGetOrderDetailsQuery constructor",
)

// GetOrderDetailsQuery looks up one order by its short code, a parcel short
// code or an internal id.
type GetOrderDetailsQuery struct {
	identifier string

	guard guard.ConstructorGuard
}

func NewGetOrderDetailsQuery(identifier string) (GetOrderDetailsQuery, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return GetOrderDetailsQuery{}, errs.NewValueIsRequiredError("identifier")
	}

	return GetOrderDetailsQuery{
		identifier: identifier,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrderDetailsQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderDetailsQueryIsNotConstructed)
}

func (q GetOrderDetailsQuery) Identifier() string {
	return q.identifier
}

// GetOrderDetailsQueryResponse is the order read model. Bulk is nil for
// regular orders.
type GetOrderDetailsQueryResponse struct {
	ID             kernel.UUID
	ShortCode      string
	Status         string
	DeliveryMethod string
	Amount         decimal.Decimal
	SenderName     string
	Parcels        []ParcelDetails
	Bulk           *BulkDetails
	DispatchedAt   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ParcelDetails struct {
	ID            kernel.UUID
	Index         int
	ShortCode     string
	Tier          string
	Price         decimal.Decimal
	Status        string
	WeightKg      float64
	RecipientName string
	PostalCode    string
	Dispatched    bool
}

type BulkDetails struct {
	TotalParcels  int
	TotalWeightKg float64
}

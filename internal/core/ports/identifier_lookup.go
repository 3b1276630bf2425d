package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// Locator is the result of resolving a public or internal identifier.
// ParcelID is nil when the identifier named the order itself.
type Locator struct {
	OrderID  kernel.UUID
	ParcelID *kernel.UUID
}

// IdentifierLookup answers the exact-match queries behind identifier resolution.
// Every method returns an errs.ObjectNotFoundError when nothing matches.
type IdentifierLookup interface {
	FindParcelByShortCode(ctx context.Context, code kernel.ShortCode) (Locator, error)
	FindOrderByShortCode(ctx context.Context, code kernel.ShortCode) (Locator, error)

	// FindByID matches an order id first, then a parcel id.
	FindByID(ctx context.Context, id kernel.UUID) (Locator, error)

	// ShortCodeExists reports whether any order or parcel already uses code.
	ShortCodeExists(ctx context.Context, code kernel.ShortCode) (bool, error)
}

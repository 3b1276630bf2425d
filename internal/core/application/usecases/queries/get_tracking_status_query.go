package queries

import (
	"errors"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrGetTrackingStatusQueryIsNotConstructed = errors.New(
	"GetTrackingStatusQuery must be created via NewGetTrackingStatusQuery constructor",
)

// GetTrackingStatusQuery asks for the timeline of a parcel or order named by
// short code or internal id.
type GetTrackingStatusQuery struct {
	identifier string

	guard guard.ConstructorGuard
}

func NewGetTrackingStatusQuery(identifier string) (GetTrackingStatusQuery, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return GetTrackingStatusQuery{}, errs.NewValueIsRequiredError("identifier")
	}

	return GetTrackingStatusQuery{
		identifier: identifier,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetTrackingStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetTrackingStatusQueryIsNotConstructed)
}

func (q GetTrackingStatusQuery) Identifier() string {
	return q.identifier
}

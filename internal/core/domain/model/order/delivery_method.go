package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// DeliveryMethod decides how the parcel is handed over and whether the
// hand-to-hand fee applies.
type DeliveryMethod int

const (
	UnknownDeliveryMethod DeliveryMethod = iota
	// LeaveAtLocation is "authorized to leave": no signature needed.
	LeaveAtLocation
	// HandToHand requires the recipient in person and costs a fixed per-parcel fee.
	HandToHand
)

// ParseDeliveryMethod accepts the wire names "atl" and "hand-to-hand".
func ParseDeliveryMethod(s string) (DeliveryMethod, error) {
	switch s {
	case "atl":
		return LeaveAtLocation, nil
	case "hand-to-hand":
		return HandToHand, nil
	default:
		return UnknownDeliveryMethod, errs.NewValueIsInvalidErrorWithCause(
			"delivery method",
			fmt.Errorf("%q is not one of atl, hand-to-hand", s),
		)
	}
}

func (m DeliveryMethod) Validate() error {
	if m != LeaveAtLocation && m != HandToHand {
		return errs.NewValueIsInvalidErrorWithCause("delivery method", fmt.Errorf("%d is not a valid delivery method", m))
	}
	return nil
}

func (m DeliveryMethod) String() string {
	switch m {
	case LeaveAtLocation:
		return "atl"
	case HandToHand:
		return "hand-to-hand"
	default:
		return "unknown"
	}
}

// Label is the human readable name used in courier instructions.
func (m DeliveryMethod) Label() string {
	switch m {
	case LeaveAtLocation:
		return "Authorized to Leave"
	case HandToHand:
		return "Hand to Hand"
	default:
		return "Unknown"
	}
}

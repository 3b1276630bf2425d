package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the fulfillment state of an order or a parcel.
//
// State transitions:
//
//	Pending ──> Paid ──> Processing ──> PickedUp ──> OutForDelivery ──> Delivered
//	   │          │           │             │               │
//	   └──────────┴───────────┴─────────────┴───────────────┴──> DeliveryFailed | Cancelled
//
// Forward jumps are allowed (a delivery update may skip intermediate states).
// Re-applying the current state, or any earlier one, is a no-op so that
// duplicated and out-of-order webhooks never regress a record.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	Pending
	Paid
	Processing
	PickedUp
	OutForDelivery
	Delivered
	DeliveryFailed
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		Pending:        "pending",
		Paid:           "paid",
		Processing:     "processing",
		PickedUp:       "picked_up",
		OutForDelivery: "out_for_delivery",
		Delivered:      "delivered",
		DeliveryFailed: "delivery_failed",
		Cancelled:      "cancelled",
	}
}

// ParseStatus converts the persisted or wire name back into a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == DeliveryFailed || s == Cancelled
}

// IsPaid reports whether payment has been confirmed, i.e. the status is Paid or
// any later state.
func (s Status) IsPaid() bool {
	return s >= Paid
}

// IsDispatchable reports whether dispatch jobs may be created: payment is
// confirmed and the status is not terminal.
func (s Status) IsDispatchable() bool {
	return s.IsPaid() && !s.IsTerminal()
}

// progress orders statuses along the happy path; all terminal states share the top rank.
func (s Status) progress() int {
	if s.IsTerminal() {
		return int(Delivered)
	}
	return int(s)
}

// Advance computes the transition towards next.
//
// Returns:
//   - (next, true, nil) when the transition moves the record forward
//   - (s, false, nil) when it would repeat or regress the current state, or s is terminal
//   - (Unknown, false, error) when either status is invalid
func (s Status) Advance(next Status) (Status, bool, error) {
	if err := s.Validate(); err != nil {
		return Unknown, false, err
	}
	if err := next.Validate(); err != nil {
		return Unknown, false, err
	}

	if s.IsTerminal() {
		return s, false, nil
	}
	if next == DeliveryFailed || next == Cancelled {
		return next, true, nil
	}
	if next.progress() <= s.progress() {
		return s, false, nil
	}

	return next, true, nil
}

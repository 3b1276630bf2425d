package commands

import (
	"errors"
	"fmt"
	"sort"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrRecipientCountMismatch = errors.New("recipient count does not match parcel count")
	ErrRecipientMissing       = errors.New("parcel has no recipient")
)

// ParcelSpec is one parcel of a booking. Index links it to its recipient.
type ParcelSpec struct {
	Index        int
	Measurements order.Measurements
}

// RecipientSpec is the recipient of the parcel with the same Index.
type RecipientSpec struct {
	Index   int
	Contact kernel.Contact
}

// CreateOrderCommand is a booking as submitted by the sender, including the
// amount the client computed. The amount is checked, never trusted.
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	sender         kernel.Contact
	method         order.DeliveryMethod
	declaredAmount kernel.Money
	bulk           bool
	parcels        []ParcelSpec
	recipients     map[int]kernel.Contact

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the booking shape: a regular order has one
// parcel, a bulk order at least two, and every parcel index has exactly one
// recipient with the same index.
func NewCreateOrderCommand(
	sender kernel.Contact,
	method order.DeliveryMethod,
	declaredAmount kernel.Money,
	bulk bool,
	parcels []ParcelSpec,
	recipients []RecipientSpec,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		declaredAmount: declaredAmount,
		bulk:           bulk,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSender(sender),
		cmd.setMethod(method),
		cmd.setParcels(bulk, parcels),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	if err := cmd.setRecipients(recipients); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Sender() kernel.Contact {
	return c.sender
}

func (c CreateOrderCommand) DeliveryMethod() order.DeliveryMethod {
	return c.method
}

func (c CreateOrderCommand) DeclaredAmount() kernel.Money {
	return c.declaredAmount
}

func (c CreateOrderCommand) IsBulk() bool {
	return c.bulk
}

// Parcels returns the parcels ordered by index.
func (c CreateOrderCommand) Parcels() []ParcelSpec {
	out := make([]ParcelSpec, len(c.parcels))
	copy(out, c.parcels)
	return out
}

// RecipientFor returns the recipient of the parcel with the given index.
func (c CreateOrderCommand) RecipientFor(index int) kernel.Contact {
	return c.recipients[index]
}

func (c *CreateOrderCommand) setSender(sender kernel.Contact) error {
	if err := sender.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("sender", err)
	}
	c.sender = sender
	return nil
}

func (c *CreateOrderCommand) setMethod(method order.DeliveryMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}
	c.method = method
	return nil
}

func (c *CreateOrderCommand) setParcels(bulk bool, parcels []ParcelSpec) error {
	switch {
	case len(parcels) == 0:
		return errs.NewValueIsRequiredError("parcels")
	case bulk && len(parcels) < 2:
		return errs.NewValueIsInvalidErrorWithCause("parcels", fmt.Errorf("bulk order needs at least 2 parcels, got %d", len(parcels)))
	case !bulk && len(parcels) != 1:
		return errs.NewValueIsInvalidErrorWithCause("parcels", fmt.Errorf("regular order needs exactly 1 parcel, got %d", len(parcels)))
	}

	seen := make(map[int]struct{}, len(parcels))
	for _, p := range parcels {
		if p.Measurements.WeightKg() <= 0 {
			return errs.NewValueIsRequiredErrorWithCause("weight", fmt.Errorf("parcel %d", p.Index))
		}
		if _, dup := seen[p.Index]; dup {
			return errs.NewValueIsInvalidErrorWithCause("parcels", fmt.Errorf("duplicate parcel index %d", p.Index))
		}
		seen[p.Index] = struct{}{}
	}

	sorted := make([]ParcelSpec, len(parcels))
	copy(sorted, parcels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })
	c.parcels = sorted
	return nil
}

func (c *CreateOrderCommand) setRecipients(recipients []RecipientSpec) error {
	if len(recipients) != len(c.parcels) {
		return fmt.Errorf("%w: %w: %d recipients for %d parcels",
			errs.ErrValueIsInvalid, ErrRecipientCountMismatch, len(recipients), len(c.parcels))
	}

	byIndex := make(map[int]kernel.Contact, len(recipients))
	for _, r := range recipients {
		if err := r.Contact.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("recipient %d", r.Index), err)
		}
		byIndex[r.Index] = r.Contact
	}

	for _, p := range c.parcels {
		if _, ok := byIndex[p.Index]; !ok {
			return fmt.Errorf("%w: %w: index %d", errs.ErrValueIsInvalid, ErrRecipientMissing, p.Index)
		}
	}

	c.recipients = byIndex
	return nil
}

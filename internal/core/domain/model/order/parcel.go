package order

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	ErrParcelIsNotConstructed = errors.New("Parcel must be created via NewParcel constructor")

	// ErrShortCodeAlreadyAssigned is returned when a different code is assigned to a parcel that has one.
	ErrShortCodeAlreadyAssigned = errors.New("parcel short code is already assigned")

	// ErrDispatchJobAlreadyAttached is returned when a different job reference is attached to a dispatched parcel.
	ErrDispatchJobAlreadyAttached = errors.New("parcel dispatch job is already attached")
)

// Parcel is one physical item of an order. It carries its own recipient,
// pricing tier (fixed at creation), public short code and dispatch job.
type Parcel struct {
	id           kernel.UUID
	index        int
	measurements Measurements
	tier         string
	price        kernel.Money
	recipient    kernel.Contact

	// shortCode is empty until assigned; never replaced afterwards
	shortCode kernel.ShortCode

	// dispatchJobRef is the delivery provider's job id; set once by dispatch
	dispatchJobRef string

	// dispatchItemRef identifies this parcel inside a job covering a whole order
	dispatchItemRef string

	status        Status
	isConstructed bool
}

// NewParcel creates a Pending parcel. index is the parcel's position in the
// booking and the key recipients are matched on. shortCode may be empty.
func NewParcel(
	id kernel.UUID,
	index int,
	measurements Measurements,
	tier string,
	price kernel.Money,
	recipient kernel.Contact,
	shortCode kernel.ShortCode,
) (*Parcel, error) {
	p := &Parcel{
		status:        Pending,
		isConstructed: true,
	}

	if err := errors.Join(
		p.setID(id),
		p.setIndex(index),
		p.setMeasurements(measurements),
		p.setTier(tier),
		p.setRecipient(recipient),
	); err != nil {
		return nil, err
	}

	p.price = price
	p.shortCode = shortCode
	return p, nil
}

// ParcelState is the persisted form of a parcel handed to RestoreParcel.
type ParcelState struct {
	ID              kernel.UUID
	Index           int
	Measurements    Measurements
	Tier            string
	Price           kernel.Money
	Recipient       kernel.Contact
	ShortCode       kernel.ShortCode
	DispatchJobRef  string
	DispatchItemRef string
	Status          Status
}

// RestoreParcel rebuilds a parcel from storage.
func RestoreParcel(state ParcelState) (*Parcel, error) {
	p, err := NewParcel(state.ID, state.Index, state.Measurements, state.Tier, state.Price, state.Recipient, state.ShortCode)
	if err != nil {
		return nil, err
	}

	if err = state.Status.Validate(); err != nil {
		return nil, err
	}

	p.status = state.Status
	p.dispatchJobRef = state.DispatchJobRef
	p.dispatchItemRef = state.DispatchItemRef
	return p, nil
}

func (p *Parcel) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrParcelIsNotConstructed
	}
	return nil
}

func (p *Parcel) ID() kernel.UUID {
	return p.id
}

func (p *Parcel) Index() int {
	return p.index
}

func (p *Parcel) Measurements() Measurements {
	return p.measurements
}

// Tier is the pricing tier name computed at booking.
func (p *Parcel) Tier() string {
	return p.tier
}

// Price is the parcel's tier price plus any per-parcel delivery fee.
func (p *Parcel) Price() kernel.Money {
	return p.price
}

func (p *Parcel) Recipient() kernel.Contact {
	return p.recipient
}

func (p *Parcel) ShortCode() kernel.ShortCode {
	return p.shortCode
}

func (p *Parcel) DispatchJobRef() string {
	return p.dispatchJobRef
}

func (p *Parcel) DispatchItemRef() string {
	return p.dispatchItemRef
}

func (p *Parcel) Status() Status {
	return p.status
}

// HasDispatchJob reports whether a delivery job already exists for the parcel.
func (p *Parcel) HasDispatchJob() bool {
	return p.dispatchJobRef != ""
}

// AssignShortCode sets the public code once. Re-assigning the same code is a no-op.
func (p *Parcel) AssignShortCode(code kernel.ShortCode) error {
	if err := code.Validate(); err != nil {
		return err
	}
	if !p.shortCode.IsEmpty() {
		if p.shortCode.IsEqual(code) {
			return nil
		}
		return fmt.Errorf("%w: parcel %s has %s", ErrShortCodeAlreadyAssigned, p.id, p.shortCode)
	}

	p.shortCode = code
	return nil
}

// AttachDispatchJob records the provider job (and, for a job covering the whole
// order, the parcel's item within it). Attaching the same job again is a no-op.
func (p *Parcel) AttachDispatchJob(jobRef, itemRef string) error {
	jobRef = strings.TrimSpace(jobRef)
	if jobRef == "" {
		return errs.NewValueIsRequiredError("dispatch job reference")
	}
	if p.dispatchJobRef != "" {
		if p.dispatchJobRef == jobRef {
			return nil
		}
		return fmt.Errorf("%w: parcel %s has job %s", ErrDispatchJobAlreadyAttached, p.id, p.dispatchJobRef)
	}

	p.dispatchJobRef = jobRef
	p.dispatchItemRef = strings.TrimSpace(itemRef)
	return nil
}

// AdvanceStatus applies Status.Advance and reports whether the parcel changed.
func (p *Parcel) AdvanceStatus(next Status) (bool, error) {
	status, changed, err := p.status.Advance(next)
	if err != nil {
		return false, err
	}

	p.status = status
	return changed, nil
}

func (p *Parcel) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

func (p *Parcel) setIndex(index int) error {
	if index < 0 {
		return errs.NewValueIsInvalidErrorWithCause("parcel index", fmt.Errorf("%d is negative", index))
	}
	p.index = index
	return nil
}

func (p *Parcel) setMeasurements(m Measurements) error {
	if m.WeightKg() <= 0 {
		return errs.NewValueIsRequiredError("parcel measurements")
	}
	p.measurements = m
	return nil
}

func (p *Parcel) setTier(tier string) error {
	if strings.TrimSpace(tier) == "" {
		return errs.NewValueIsRequiredError("pricing tier")
	}
	p.tier = tier
	return nil
}

func (p *Parcel) setRecipient(recipient kernel.Contact) error {
	if err := recipient.Validate(); err != nil {
		return err
	}
	p.recipient = recipient
	return nil
}

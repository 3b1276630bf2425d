package order

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrOrderNotDispatchable is returned when dispatch is requested before payment or after a terminal status.
	ErrOrderNotDispatchable = errors.New("order is not dispatchable")

	// ErrDispatchIncomplete is returned when an order is marked dispatched while parcels still lack a job.
	ErrDispatchIncomplete = errors.New("order has parcels without a dispatch job")

	// ErrParcelNotInOrder is returned when a parcel id does not belong to the order.
	ErrParcelNotInOrder = errors.New("parcel does not belong to order")
)

// Order is the aggregate root of a booking. It owns its parcels and, for bulk
// bookings, the bulk summary.
//
// Order follows these invariants:
//   - id and shortCode are set at creation and never change
//   - amount is the server-computed total, never a client value
//   - a bulk order has at least two parcels, a regular order exactly one
//   - status only moves forward (see Status.Advance)
//   - dispatchedAt is set only once every parcel has a dispatch job
type Order struct {
	id             kernel.UUID
	shortCode      kernel.ShortCode
	sender         kernel.Contact
	deliveryMethod DeliveryMethod
	amount         kernel.Money
	status         Status
	bulk           bool
	parcels        []*Parcel

	// dispatchJobRef is the single provider job of a regular order; empty for bulk orders
	dispatchJobRef string
	dispatchedAt   *time.Time

	// lastDispatchAttemptAt orders the scheduled retry, failed attempts included
	lastDispatchAttemptAt *time.Time

	createdAt time.Time
	updatedAt time.Time

	// version guards concurrent updates of the order row
	version int

	isConstructed bool
}

// NewOrder creates a Pending order.
//
// Parameters:
//   - id: internal identifier
//   - shortCode: public tracking code, unique across orders and parcels
//   - sender: pick-up contact
//   - method: delivery method applied to every parcel
//   - amount: total computed by the pricing engine
//   - bulk: whether the booking is a multi-recipient bulk order
//   - parcels: the parcels, each already priced
//   - now: creation time
//
// Returns the order or every validation failure joined.
func NewOrder(
	id kernel.UUID,
	shortCode kernel.ShortCode,
	sender kernel.Contact,
	method DeliveryMethod,
	amount kernel.Money,
	bulk bool,
	parcels []*Parcel,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		amount:        amount,
		bulk:          bulk,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setShortCode(shortCode),
		o.setSender(sender),
		o.setDeliveryMethod(method),
		o.setParcels(bulk, parcels),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// State is the persisted form of an order handed to RestoreOrder.
type State struct {
	ID             kernel.UUID
	ShortCode      kernel.ShortCode
	Sender         kernel.Contact
	DeliveryMethod DeliveryMethod
	Amount         kernel.Money
	Status         Status
	Bulk           bool
	Parcels        []*Parcel
	DispatchJobRef string
	DispatchedAt   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int

	LastDispatchAttemptAt *time.Time
}

// RestoreOrder rebuilds an order from storage, keeping status, dispatch state
// and version.
func RestoreOrder(state State) (*Order, error) {
	o, err := NewOrder(
		state.ID,
		state.ShortCode,
		state.Sender,
		state.DeliveryMethod,
		state.Amount,
		state.Bulk,
		state.Parcels,
		state.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err = state.Status.Validate(); err != nil {
		return nil, err
	}

	o.status = state.Status
	o.dispatchJobRef = state.DispatchJobRef
	o.dispatchedAt = state.DispatchedAt
	o.lastDispatchAttemptAt = state.LastDispatchAttemptAt
	o.updatedAt = state.UpdatedAt
	o.version = state.Version
	return o, nil
}

// Validate ensures the order was built by a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) ShortCode() kernel.ShortCode {
	return o.shortCode
}

func (o *Order) Sender() kernel.Contact {
	return o.sender
}

func (o *Order) DeliveryMethod() DeliveryMethod {
	return o.deliveryMethod
}

func (o *Order) Amount() kernel.Money {
	return o.amount
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) IsBulk() bool {
	return o.bulk
}

// Parcels returns the parcels ordered by index. The slice is a copy; the
// parcels are the aggregate's own.
func (o *Order) Parcels() []*Parcel {
	parcels := make([]*Parcel, len(o.parcels))
	copy(parcels, o.parcels)
	return parcels
}

// Parcel finds an owned parcel by id.
func (o *Order) Parcel(id kernel.UUID) (*Parcel, bool) {
	for _, p := range o.parcels {
		if p.id.IsEqual(id) {
			return p, true
		}
	}
	return nil, false
}

// ParcelByDispatchRef finds the parcel whose job or item reference equals ref.
func (o *Order) ParcelByDispatchRef(ref string) (*Parcel, bool) {
	if ref == "" {
		return nil, false
	}
	for _, p := range o.parcels {
		if p.dispatchJobRef == ref || p.dispatchItemRef == ref {
			return p, true
		}
	}
	return nil, false
}

// ParcelByShortCode finds the parcel carrying the public code, which is also
// the do_number its delivery job was created under.
func (o *Order) ParcelByShortCode(code string) (*Parcel, bool) {
	if code == "" {
		return nil, false
	}
	for _, p := range o.parcels {
		if !p.shortCode.IsEmpty() && p.shortCode.String() == code {
			return p, true
		}
	}
	return nil, false
}

// BulkSummary aggregates the parcels of a bulk order; ok is false otherwise.
func (o *Order) BulkSummary() (BulkSummary, bool) {
	if !o.bulk {
		return BulkSummary{}, false
	}
	return newBulkSummary(o.parcels), true
}

func (o *Order) DispatchJobRef() string {
	return o.dispatchJobRef
}

func (o *Order) DispatchedAt() *time.Time {
	return o.dispatchedAt
}

// IsDispatched reports whether every parcel has a dispatch job.
func (o *Order) IsDispatched() bool {
	return o.dispatchedAt != nil
}

// LastDispatchAttemptAt is when dispatch last ran for the order, nil if never.
func (o *Order) LastDispatchAttemptAt() *time.Time {
	return o.lastDispatchAttemptAt
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// Version is the optimistic concurrency token loaded from storage.
func (o *Order) Version() int {
	return o.version
}

// UndispatchedParcels lists parcels that still need a dispatch job.
func (o *Order) UndispatchedParcels() []*Parcel {
	pending := make([]*Parcel, 0, len(o.parcels))
	for _, p := range o.parcels {
		if !p.HasDispatchJob() {
			pending = append(pending, p)
		}
	}
	return pending
}

// EnsureDispatchable rejects orders that are unpaid or already terminal.
func (o *Order) EnsureDispatchable() error {
	if !o.status.IsDispatchable() {
		return fmt.Errorf("%w: order %s is %s", ErrOrderNotDispatchable, o.shortCode, o.status)
	}
	return nil
}

// ApplyStatus advances the order and, when the order moved, every parcel.
// Returns whether the order changed.
func (o *Order) ApplyStatus(next Status, now time.Time) (bool, error) {
	status, changed, err := o.status.Advance(next)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	o.status = status
	for _, p := range o.parcels {
		if _, err = p.AdvanceStatus(next); err != nil {
			return false, err
		}
	}
	o.updatedAt = now
	return true, nil
}

// MarkPaid applies Paid; a no-op if payment was already recorded or the order moved on.
func (o *Order) MarkPaid(now time.Time) (bool, error) {
	return o.ApplyStatus(Paid, now)
}

// ApplyParcelStatus advances one parcel. For a bulk order the order status then
// follows the least advanced parcel. Returns whether the parcel changed.
func (o *Order) ApplyParcelStatus(parcelID kernel.UUID, next Status, now time.Time) (bool, error) {
	p, ok := o.Parcel(parcelID)
	if !ok {
		return false, fmt.Errorf("%w: parcel %s, order %s", ErrParcelNotInOrder, parcelID, o.id)
	}

	changed, err := p.AdvanceStatus(next)
	if err != nil || !changed {
		return false, err
	}

	if o.bulk {
		if status, moved, advErr := o.status.Advance(aggregateStatus(o.parcels)); advErr == nil && moved {
			o.status = status
		}
	}

	o.updatedAt = now
	return true, nil
}

// RecordDispatchJob stores the single job of a regular order on the order and
// its parcel.
func (o *Order) RecordDispatchJob(jobRef, itemRef string, now time.Time) error {
	if o.bulk {
		return errs.NewValueIsInvalidErrorWithCause("dispatch job", errors.New("bulk orders carry one job per parcel"))
	}

	if err := o.parcels[0].AttachDispatchJob(jobRef, itemRef); err != nil {
		return err
	}

	o.dispatchJobRef = o.parcels[0].dispatchJobRef
	o.updatedAt = now
	return nil
}

// AttachParcelDispatchJob stores the job created for one parcel. For a regular
// order it is also the order's job.
func (o *Order) AttachParcelDispatchJob(parcelID kernel.UUID, jobRef, itemRef string, now time.Time) error {
	p, ok := o.Parcel(parcelID)
	if !ok {
		return fmt.Errorf("%w: parcel %s, order %s", ErrParcelNotInOrder, parcelID, o.id)
	}
	if !o.bulk {
		return o.RecordDispatchJob(jobRef, itemRef, now)
	}

	if err := p.AttachDispatchJob(jobRef, itemRef); err != nil {
		return err
	}
	o.updatedAt = now
	return nil
}

// AssignParcelShortCode gives a parcel created without a code its public code.
func (o *Order) AssignParcelShortCode(parcelID kernel.UUID, code kernel.ShortCode, now time.Time) error {
	p, ok := o.Parcel(parcelID)
	if !ok {
		return fmt.Errorf("%w: parcel %s, order %s", ErrParcelNotInOrder, parcelID, o.id)
	}
	if err := p.AssignShortCode(code); err != nil {
		return err
	}
	o.updatedAt = now
	return nil
}

// RecordDispatchAttempt notes that dispatch ran, whatever its outcome. It does
// not touch updatedAt.
func (o *Order) RecordDispatchAttempt(now time.Time) {
	at := now
	o.lastDispatchAttemptAt = &at
}

// MarkDispatched records that dispatch is complete. Fails while any parcel lacks a job.
func (o *Order) MarkDispatched(now time.Time) error {
	if o.dispatchedAt != nil {
		return nil
	}
	if len(o.UndispatchedParcels()) > 0 {
		return fmt.Errorf("%w: order %s", ErrDispatchIncomplete, o.shortCode)
	}

	if !o.bulk {
		o.dispatchJobRef = o.parcels[0].dispatchJobRef
	}
	o.dispatchedAt = &now
	o.updatedAt = now
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setShortCode(code kernel.ShortCode) error {
	if err := code.Validate(); err != nil {
		return err
	}
	o.shortCode = code
	return nil
}

func (o *Order) setSender(sender kernel.Contact) error {
	if err := sender.Validate(); err != nil {
		return err
	}
	o.sender = sender
	return nil
}

func (o *Order) setDeliveryMethod(method DeliveryMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}
	o.deliveryMethod = method
	return nil
}

func (o *Order) setParcels(bulk bool, parcels []*Parcel) error {
	if len(parcels) == 0 {
		return errs.NewValueIsRequiredError("parcels")
	}
	if bulk && len(parcels) < 2 {
		return errs.NewValueIsInvalidErrorWithCause("parcels", fmt.Errorf("bulk order needs at least 2 parcels, got %d", len(parcels)))
	}
	if !bulk && len(parcels) != 1 {
		return errs.NewValueIsInvalidErrorWithCause("parcels", fmt.Errorf("regular order needs exactly 1 parcel, got %d", len(parcels)))
	}

	seen := make(map[int]struct{}, len(parcels))
	for _, p := range parcels {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.index]; dup {
			return errs.NewValueIsInvalidErrorWithCause("parcels", fmt.Errorf("duplicate parcel index %d", p.index))
		}
		seen[p.index] = struct{}{}
	}

	sorted := make([]*Parcel, len(parcels))
	copy(sorted, parcels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].index < sorted[j].index })

	o.parcels = sorted
	return nil
}

// aggregateStatus is the least advanced non-terminal parcel status. When every
// parcel is terminal: Delivered if any was delivered, else DeliveryFailed if any
// failed, else Cancelled.
func aggregateStatus(parcels []*Parcel) Status {
	least := Unknown
	var delivered, failed bool
	for _, p := range parcels {
		switch p.status {
		case Delivered:
			delivered = true
		case DeliveryFailed:
			failed = true
		case Cancelled:
		default:
			if least == Unknown || p.status < least {
				least = p.status
			}
		}
	}

	switch {
	case least != Unknown:
		return least
	case delivered:
		return Delivered
	case failed:
		return DeliveryFailed
	default:
		return Cancelled
	}
}

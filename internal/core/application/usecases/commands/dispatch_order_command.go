package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrDispatchOrderCommandIsNotConstructed = errors.New(
		"DispatchOrderCommand must be created via NewDispatchOrderCommand constructor",
	)

	// ErrDispatchFailed is returned when no pending parcel got a delivery job.
	ErrDispatchFailed = errors.New("dispatch failed for every pending parcel")

	// ErrPartialDispatch is wrapped by PartialDispatchError.
	ErrPartialDispatch = errors.New("dispatch failed for some parcels")
)

type DispatchOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewDispatchOrderCommand targets a resolved internal order id.
func NewDispatchOrderCommand(orderID kernel.UUID) (DispatchOrderCommand, error) {
	cmd := DispatchOrderCommand{guard: guard.NewConstructorGuard()}
	if err := orderID.Validate(); err != nil {
		return DispatchOrderCommand{}, err
	}
	cmd.orderID = orderID
	return cmd, nil
}

func (c DispatchOrderCommand) Validate() error {
	return c.guard.Validate(ErrDispatchOrderCommandIsNotConstructed)
}

func (c DispatchOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ParcelDispatch is a parcel that has a delivery job. AlreadyDispatched marks
// jobs that existed before this run.
type ParcelDispatch struct {
	ParcelID          kernel.UUID
	ShortCode         kernel.ShortCode
	JobRef            string
	AlreadyDispatched bool
}

// ParcelFailure is a parcel whose job could not be created in this run.
type ParcelFailure struct {
	ParcelID  kernel.UUID
	ShortCode kernel.ShortCode
	Err       error
}

// DispatchResult aggregates the per-parcel outcomes of one dispatch run.
type DispatchResult struct {
	OrderID   kernel.UUID
	Succeeded []ParcelDispatch
	Failed    []ParcelFailure
	Complete  bool
}

func (r DispatchResult) JobRefs() []string {
	refs := make([]string, 0, len(r.Succeeded))
	for _, s := range r.Succeeded {
		refs = append(refs, s.JobRef)
	}
	return refs
}

func (r DispatchResult) FailedParcelIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(r.Failed))
	for _, f := range r.Failed {
		ids = append(ids, f.ParcelID)
	}
	return ids
}

// PartialDispatchError reports a run where some parcels got a job and others
// did not. The order keeps the jobs that were created.
type PartialDispatchError struct {
	Result DispatchResult
}

func (e *PartialDispatchError) Error() string {
	return fmt.Sprintf("%s: order %s, %d of %d parcels failed",
		ErrPartialDispatch, e.Result.OrderID, len(e.Result.Failed), len(e.Result.Failed)+len(e.Result.Succeeded))
}

func (e *PartialDispatchError) Unwrap() error {
	return ErrPartialDispatch
}

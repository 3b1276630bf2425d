package commands

import (
	"errors"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrRetryPendingDispatchesCommandIsNotConstructed = errors.New(
	"RetryPendingDispatchesCommand must be created via NewRetryPendingDispatchesCommand constructor",
)

// RetryPendingDispatchesCommand selects up to batchSize orders whose dispatch
// is incomplete and that have not changed for at least minAge. minAge keeps
// the retry away from orders whose dispatch may still be running.
type RetryPendingDispatchesCommand struct { //nolint:recvcheck //using for validation
	batchSize int
	minAge    time.Duration

	guard guard.ConstructorGuard
}

func NewRetryPendingDispatchesCommand(batchSize int, minAge time.Duration) (RetryPendingDispatchesCommand, error) {
	if batchSize <= 0 {
		return RetryPendingDispatchesCommand{}, errs.NewValueIsOutOfRangeError("batch size", batchSize, 1, nil)
	}
	if minAge < 0 {
		return RetryPendingDispatchesCommand{}, errs.NewValueIsOutOfRangeError("min age", minAge, 0, nil)
	}

	return RetryPendingDispatchesCommand{
		batchSize: batchSize,
		minAge:    minAge,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RetryPendingDispatchesCommand) Validate() error {
	return c.guard.Validate(ErrRetryPendingDispatchesCommandIsNotConstructed)
}

func (c RetryPendingDispatchesCommand) BatchSize() int {
	return c.batchSize
}

func (c RetryPendingDispatchesCommand) MinAge() time.Duration {
	return c.minAge
}

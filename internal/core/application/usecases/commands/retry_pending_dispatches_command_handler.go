package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// RetrySummary counts the outcomes of one retry pass.
type RetrySummary struct {
	Attempted int
	Completed int
	Partial   int
	Failed    int
}

// RetryPendingDispatchesCommandHandler re-runs dispatch for paid orders whose
// parcels still lack delivery jobs. Dispatch only attempts parcels without a
// job, so a retry never duplicates one.
type RetryPendingDispatchesCommandHandler struct {
	uowFactory OrderUoWFactory
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewRetryPendingDispatchesCommandHandler(
	uowFactory OrderUoWFactory,
	dispatcher Dispatcher,
	logger *slog.Logger,
) RetryPendingDispatchesCommandHandler {
	return RetryPendingDispatchesCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		logger:     logger.With("component", "dispatch-retry"),
	}
}

func (h *RetryPendingDispatchesCommandHandler) Handle(ctx context.Context, cmd RetryPendingDispatchesCommand) (RetrySummary, error) {
	if err := cmd.Validate(); err != nil {
		return RetrySummary{}, err
	}

	orderIDs, err := h.awaitingDispatch(ctx, cmd)
	if err != nil {
		return RetrySummary{}, err
	}

	var summary RetrySummary
	for _, id := range orderIDs {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		dispatchCmd, err := NewDispatchOrderCommand(id)
		if err != nil {
			return summary, err
		}

		summary.Attempted++
		_, err = h.dispatcher.Handle(ctx, dispatchCmd)

		var partial *PartialDispatchError
		switch {
		case err == nil:
			summary.Completed++
		case errors.As(err, &partial):
			summary.Partial++
		default:
			summary.Failed++
			h.logger.ErrorContext(ctx, "dispatch retry failed", "order_id", id.String(), "error", err)
		}
	}

	if summary.Attempted > 0 {
		h.logger.InfoContext(ctx, "dispatch retry pass finished",
			"attempted", summary.Attempted,
			"completed", summary.Completed,
			"partial", summary.Partial,
			"failed", summary.Failed,
		)
	}
	return summary, nil
}

func (h *RetryPendingDispatchesCommandHandler) awaitingDispatch(ctx context.Context, cmd RetryPendingDispatchesCommand) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders, err := uow.OrderRepository().GetAwaitingDispatch(ctx, time.Now().UTC().Add(-cmd.MinAge()), cmd.BatchSize())
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID())
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

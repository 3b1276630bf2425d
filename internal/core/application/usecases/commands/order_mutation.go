package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// maxConflictAttempts bounds reload-and-reapply rounds after an optimistic
// version conflict.
const maxConflictAttempts = 3

type (
	// loadOrder fetches the aggregate a mutation applies to.
	loadOrder func(ctx context.Context, repo ports.OrderRepository) (*order.Order, error)

	// orderMutation changes a loaded order and reports whether it must be saved.
	orderMutation func(o *order.Order) (bool, error)
)

type mutationResult struct {
	Order    *order.Order
	Previous order.Status
	Changed  bool
}

func (r mutationResult) StatusChanged() bool {
	return r.Changed && r.Order.Status() != r.Previous
}

func loadByID(id kernel.UUID) loadOrder {
	return func(ctx context.Context, repo ports.OrderRepository) (*order.Order, error) {
		return repo.Get(ctx, id)
	}
}

// mutateOrder loads, changes and saves an order in its own unit of work. No
// row lock is held; on a version conflict the order is reloaded and the
// mutation applied again, so mutations must be idempotent.
func mutateOrder(ctx context.Context, factory OrderUoWFactory, load loadOrder, mutate orderMutation) (mutationResult, error) {
	for attempt := 1; ; attempt++ {
		res, err := mutateOnce(ctx, factory, load, mutate)
		if errors.Is(err, ports.ErrConcurrentUpdate) && attempt < maxConflictAttempts {
			continue
		}
		return res, err
	}
}

func mutateOnce(ctx context.Context, factory OrderUoWFactory, load loadOrder, mutate orderMutation) (mutationResult, error) {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return mutationResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := load(ctx, repo)
	if err != nil {
		return mutationResult{}, err
	}

	res := mutationResult{Order: aggregate, Previous: aggregate.Status()}
	if res.Changed, err = mutate(aggregate); err != nil {
		return mutationResult{}, err
	}
	if !res.Changed {
		return res, nil
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return mutationResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return mutationResult{}, err
	}

	return res, nil
}

// statusNotifier publishes committed status transitions. Publishing failures
// are logged and never fail the command.
type statusNotifier struct {
	publisher ports.EventPublisher
	logger    *slog.Logger
}

func (n statusNotifier) notify(ctx context.Context, res mutationResult, source string, now time.Time) {
	if n.publisher == nil || !res.StatusChanged() {
		return
	}

	event := ports.StatusChangedEvent{
		OrderID:    res.Order.ID(),
		ShortCode:  res.Order.ShortCode(),
		From:       res.Previous,
		To:         res.Order.Status(),
		Source:     source,
		OccurredAt: now,
	}
	if err := n.publisher.PublishStatusChanged(ctx, event); err != nil {
		n.logger.ErrorContext(ctx, "failed to publish status change",
			"order_id", event.OrderID.String(),
			"from", event.From.String(),
			"to", event.To.String(),
			"error", err,
		)
	}
}

package commands_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewRetryPendingDispatchesCommand(t *testing.T) {
	_, err := commands.NewRetryPendingDispatchesCommand(0, time.Minute)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	_, err = commands.NewRetryPendingDispatchesCommand(10, -time.Second)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	cmd, err := commands.NewRetryPendingDispatchesCommand(10, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 10, cmd.BatchSize())
	assert.Equal(t, time.Minute, cmd.MinAge())
}

func TestRetryPendingDispatchesCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	complete, partial, failing := paidOrder(t, 1), paidOrder(t, 2), paidOrder(t, 1)

	repo := new(MockOrderRepository)
	repo.On("GetAwaitingDispatch", ctx, mock.MatchedBy(func(before time.Time) bool {
		return time.Since(before) >= 5*time.Minute
	}), 25).Return([]*order.Order{complete, partial, failing}, nil).Once()
	factory, _ := permissiveUoW(repo)

	forOrder := func(o *order.Order) any {
		return mock.MatchedBy(func(cmd commands.DispatchOrderCommand) bool { return cmd.OrderID() == o.ID() })
	}

	dispatcher := new(MockDispatcher)
	dispatcher.On("Handle", ctx, forOrder(complete)).
		Return(commands.DispatchResult{OrderID: complete.ID(), Complete: true}, nil).Once()
	dispatcher.On("Handle", ctx, forOrder(partial)).
		Return(commands.DispatchResult{OrderID: partial.ID()}, &commands.PartialDispatchError{}).Once()
	dispatcher.On("Handle", ctx, forOrder(failing)).
		Return(commands.DispatchResult{OrderID: failing.ID()}, errors.New("provider down")).Once()

	h := commands.NewRetryPendingDispatchesCommandHandler(factory, dispatcher, slog.Default())
	cmd, err := commands.NewRetryPendingDispatchesCommand(25, 5*time.Minute)
	require.NoError(t, err)

	summary, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, commands.RetrySummary{Attempted: 3, Completed: 1, Partial: 1, Failed: 1}, summary)
	dispatcher.AssertExpectations(t)
}

func TestRetryPendingDispatchesCommandHandler_Handle_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	repo := new(MockOrderRepository)
	repo.On("GetAwaitingDispatch", mock.Anything, mock.Anything, 10).Return([]*order.Order{paidOrder(t, 1)}, nil)
	factory, _ := permissiveUoW(repo)

	dispatcher := new(MockDispatcher)
	h := commands.NewRetryPendingDispatchesCommandHandler(factory, dispatcher, slog.Default())
	cmd, err := commands.NewRetryPendingDispatchesCommand(10, 0)
	require.NoError(t, err)

	summary, err := h.Handle(ctx, cmd)

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Attempted)
	dispatcher.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestRetryPendingDispatchesCommandHandler_Handle_RepositoryError(t *testing.T) {
	ctx := t.Context()
	boom := errors.New("connection reset")

	repo := new(MockOrderRepository)
	repo.On("GetAwaitingDispatch", ctx, mock.Anything, 10).Return(nil, boom)
	factory, _ := permissiveUoW(repo)

	h := commands.NewRetryPendingDispatchesCommandHandler(factory, new(MockDispatcher), slog.Default())
	cmd, err := commands.NewRetryPendingDispatchesCommand(10, time.Minute)
	require.NoError(t, err)

	_, err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, boom)
}

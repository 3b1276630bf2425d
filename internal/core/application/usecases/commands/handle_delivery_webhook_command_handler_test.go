package commands_test

import (
	"log/slog"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/webhooksig"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// dispatchedOrder is a paid order whose parcels carry job-<n>/item-<n>, n from 1.
func dispatchedOrder(t *testing.T, parcelCount int) *order.Order {
	t.Helper()

	o := paidOrder(t, parcelCount)
	for i, p := range o.Parcels() {
		n := string(rune('1' + i))
		require.NoError(t, o.AttachParcelDispatchJob(p.ID(), "job-"+n, "item-"+n, fixedNow))
		_, err := o.ApplyParcelStatus(p.ID(), order.Processing, fixedNow)
		require.NoError(t, err)
	}
	require.NoError(t, o.MarkDispatched(fixedNow))
	_, err := o.ApplyStatus(order.Processing, fixedNow)
	require.NoError(t, err)
	return o
}

func deliveryCommand(t *testing.T, body, signature string) commands.DeliveryWebhookCommand {
	t.Helper()
	cmd, err := commands.NewDeliveryWebhookCommand([]byte(body), signature)
	require.NoError(t, err)
	return cmd
}

func TestDeliveryWebhookCommandHandler_Handle_RegularOrder(t *testing.T) {
	ctx := t.Context()
	o := dispatchedOrder(t, 1)

	repo := new(MockOrderRepository)
	repo.On("GetByDispatchJobRef", ctx, "job-1").Return(o, nil)
	repo.On("Update", ctx, o).Return(nil).Once()
	factory, _ := permissiveUoW(repo)

	publisher := new(MockPublisher)
	publisher.On("PublishStatusChanged", ctx, mock.MatchedBy(func(e ports.StatusChangedEvent) bool {
		return e.From == order.Processing && e.To == order.OutForDelivery && e.Source == "delivery"
	})).Return(nil).Once()

	h := commands.NewDeliveryWebhookCommandHandler(factory, publisher, "", nil, slog.Default())
	res, err := h.Handle(ctx, deliveryCommand(t,
		`{"data":{"id":"job-1","do_number":"SPDY00000001","status":"In Progress"}}`, ""))

	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.True(t, res.Changed)
	assert.Equal(t, o.ID(), res.OrderID)
	assert.Equal(t, order.OutForDelivery, o.Status())
	assert.Equal(t, order.OutForDelivery, o.Parcels()[0].Status())
	publisher.AssertExpectations(t)
}

func TestDeliveryWebhookCommandHandler_Handle_RepeatedNotificationIsNoop(t *testing.T) {
	ctx := t.Context()
	o := dispatchedOrder(t, 1)
	_, err := o.ApplyStatus(order.Delivered, fixedNow)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("GetByDispatchJobRef", ctx, "job-1").Return(o, nil)
	factory, _ := permissiveUoW(repo)

	h := commands.NewDeliveryWebhookCommandHandler(factory, new(MockPublisher), "", nil, slog.Default())
	res, err := h.Handle(ctx, deliveryCommand(t,
		`{"data":{"id":"job-1","do_number":"SPDY00000001","status":"in_progress"}}`, ""))

	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.False(t, res.Changed)
	assert.Equal(t, order.Delivered, o.Status())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeliveryWebhookCommandHandler_Handle_BulkOrderFollowsLeastAdvancedParcel(t *testing.T) {
	ctx := t.Context()
	o := dispatchedOrder(t, 2)

	repo := new(MockOrderRepository)
	repo.On("GetByDispatchJobRef", ctx, "job-1").Return(o, nil)
	repo.On("GetByDispatchJobRef", ctx, "job-2").Return(o, nil)
	repo.On("Update", ctx, o).Return(nil).Twice()
	factory, _ := permissiveUoW(repo)

	h := commands.NewDeliveryWebhookCommandHandler(factory, nil, "", nil, slog.Default())

	res, err := h.Handle(ctx, deliveryCommand(t,
		`{"data":{"id":"job-1","do_number":"SPDY00000001","status":"completed"}}`, ""))

	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, order.Delivered, o.Parcels()[0].Status())
	assert.Equal(t, order.Processing, o.Parcels()[1].Status())
	assert.Equal(t, order.Processing, o.Status())

	res, err = h.Handle(ctx, deliveryCommand(t,
		`{"data":{"id":"job-2","do_number":"SPDY00000002","status":"completed"}}`, ""))

	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, order.Delivered, o.Status())
	repo.AssertExpectations(t)
}

func TestDeliveryWebhookCommandHandler_Handle_UnknownJob(t *testing.T) {
	ctx := t.Context()

	repo := new(MockOrderRepository)
	repo.On("GetByDispatchJobRef", ctx, "SPDY00000009").
		Return(nil, errs.NewObjectNotFoundError("dispatch job", "SPDY00000009"))
	factory, _ := permissiveUoW(repo)

	h := commands.NewDeliveryWebhookCommandHandler(factory, nil, "", nil, slog.Default())
	res, err := h.Handle(ctx, deliveryCommand(t,
		`{"data":{"do_number":"SPDY00000009","status":"completed"}}`, ""))

	require.NoError(t, err)
	assert.False(t, res.Matched)
}

func TestDeliveryWebhookCommandHandler_Handle_BadItemDoesNotBlockOthers(t *testing.T) {
	ctx := t.Context()
	o := dispatchedOrder(t, 2)

	repo := new(MockOrderRepository)
	repo.On("GetByDispatchJobRef", ctx, "job-1").Return(o, nil)
	repo.On("Update", ctx, o).Return(nil).Once()
	factory, _ := permissiveUoW(repo)

	h := commands.NewDeliveryWebhookCommandHandler(factory, nil, "", nil, slog.Default())
	res, err := h.Handle(ctx, deliveryCommand(t,
		`{"data":{"id":"job-1","do_number":"SPDY00000001","status":"out_for_delivery",`+
			`"items":[{"id":"ghost","status":"completed"},{"id":"item-2","status":"picked_up"}]}}`, ""))

	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsApplied)
	require.Len(t, res.ItemErrors, 1)
	require.ErrorIs(t, res.ItemErrors[0], errs.ErrObjectNotFound)
	assert.Equal(t, order.OutForDelivery, o.Parcels()[0].Status())
	assert.Equal(t, order.PickedUp, o.Parcels()[1].Status())
	assert.Equal(t, order.PickedUp, o.Status())
}

func TestDeliveryWebhookCommandHandler_Handle_Signature(t *testing.T) {
	const (
		secret = "detrack-secret"
		body   = `{"data":{"id":"job-1","do_number":"SPDY00000001","status":"completed"}}`
	)

	t.Run("missing", func(t *testing.T) {
		factory := new(MockOrderUoWFactory)
		h := commands.NewDeliveryWebhookCommandHandler(factory, nil, secret, nil, slog.Default())

		_, err := h.Handle(t.Context(), deliveryCommand(t, body, ""))

		require.ErrorIs(t, err, errs.ErrSignatureInvalid)
		factory.AssertNotCalled(t, "Create")
	})

	t.Run("mismatch", func(t *testing.T) {
		factory := new(MockOrderUoWFactory)
		h := commands.NewDeliveryWebhookCommandHandler(factory, nil, secret, nil, slog.Default())

		_, err := h.Handle(t.Context(), deliveryCommand(t, body, webhooksig.SignBody([]byte(body), "other")))

		require.ErrorIs(t, err, errs.ErrSignatureInvalid)
		factory.AssertNotCalled(t, "Create")
	})

	t.Run("valid", func(t *testing.T) {
		ctx := t.Context()
		o := dispatchedOrder(t, 1)

		repo := new(MockOrderRepository)
		repo.On("GetByDispatchJobRef", ctx, "job-1").Return(o, nil)
		repo.On("Update", ctx, o).Return(nil)
		factory, _ := permissiveUoW(repo)

		h := commands.NewDeliveryWebhookCommandHandler(factory, nil, secret, nil, slog.Default())
		res, err := h.Handle(ctx, deliveryCommand(t, body, webhooksig.SignBody([]byte(body), secret)))

		require.NoError(t, err)
		assert.Equal(t, order.Delivered, res.Status)
	})
}

func TestDeliveryWebhookCommandHandler_Handle_MatchesByDoNumberWithoutJobID(t *testing.T) {
	ctx := t.Context()
	o := dispatchedOrder(t, 1)

	repo := new(MockOrderRepository)
	repo.On("GetByDispatchJobRef", ctx, "SPDY00000001").Return(o, nil).Once()
	repo.On("Update", ctx, o).Return(nil).Once()
	factory, _ := permissiveUoW(repo)

	h := commands.NewDeliveryWebhookCommandHandler(factory, nil, "", nil, slog.Default())
	res, err := h.Handle(ctx, deliveryCommand(t,
		`{"data":{"do_number":"SPDY00000001","status":"completed","tracking_status":"Delivered",`+
			`"items":[{"id":"item-1"}]}}`, ""))

	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.True(t, res.Changed)
	assert.Equal(t, 1, res.ItemsApplied)
	assert.Empty(t, res.ItemErrors)
	assert.Equal(t, order.Delivered, o.Status())
	assert.Equal(t, order.Delivered, o.Parcels()[0].Status())
	repo.AssertExpectations(t)
}

func TestDeliveryWebhookCommandHandler_Handle_BulkParcelByDoNumber(t *testing.T) {
	ctx := t.Context()
	o := dispatchedOrder(t, 2)

	repo := new(MockOrderRepository)
	repo.On("GetByDispatchJobRef", ctx, "SPDY00000002").Return(o, nil).Once()
	repo.On("Update", ctx, o).Return(nil).Once()
	factory, _ := permissiveUoW(repo)

	h := commands.NewDeliveryWebhookCommandHandler(factory, nil, "", nil, slog.Default())
	res, err := h.Handle(ctx, deliveryCommand(t,
		`{"data":{"do_number":"SPDY00000002","status":"completed"}}`, ""))

	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, order.Processing, o.Parcels()[0].Status())
	assert.Equal(t, order.Delivered, o.Parcels()[1].Status())
	assert.Equal(t, order.Processing, o.Status())
	repo.AssertExpectations(t)
}

func TestDeliveryWebhookCommandHandler_Handle_UnknownJobIDFallsBackToDoNumber(t *testing.T) {
	ctx := t.Context()
	o := dispatchedOrder(t, 1)

	repo := new(MockOrderRepository)
	repo.On("GetByDispatchJobRef", ctx, "job-other").
		Return(nil, errs.NewObjectNotFoundError("dispatch job", "job-other")).Once()
	repo.On("GetByDispatchJobRef", ctx, "SPDY00000001").Return(o, nil).Once()
	repo.On("Update", ctx, o).Return(nil).Once()
	factory, _ := permissiveUoW(repo)

	h := commands.NewDeliveryWebhookCommandHandler(factory, nil, "", nil, slog.Default())
	res, err := h.Handle(ctx, deliveryCommand(t,
		`{"data":{"id":"job-other","do_number":"SPDY00000001","status":"in_progress"}}`, ""))

	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, order.OutForDelivery, o.Status())
	repo.AssertExpectations(t)
}

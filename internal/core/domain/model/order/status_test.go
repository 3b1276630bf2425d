package order_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_StringRoundTrip(t *testing.T) {
	statuses := []order.Status{
		order.Pending,
		order.Paid,
		order.Processing,
		order.PickedUp,
		order.OutForDelivery,
		order.Delivered,
		order.DeliveryFailed,
		order.Cancelled,
	}

	for _, s := range statuses {
		t.Run(s.String(), func(t *testing.T) {
			require.NoError(t, s.Validate())

			parsed, err := order.ParseStatus(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, parsed)
		})
	}
}

func TestStatus_InvalidValues(t *testing.T) {
	require.ErrorIs(t, order.Unknown.Validate(), errs.ErrValueIsInvalid)
	require.ErrorIs(t, order.Status(42).Validate(), errs.ErrValueIsInvalid)
	assert.Equal(t, "unknown", order.Status(42).String())

	_, err := order.ParseStatus("unknown")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = order.ParseStatus("shipped")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestStatus_Advance(t *testing.T) {
	testCases := []struct {
		name     string
		from     order.Status
		to       order.Status
		expected order.Status
		changed  bool
	}{
		{"pending to paid", order.Pending, order.Paid, order.Paid, true},
		{"paid again is a no-op", order.Paid, order.Paid, order.Paid, false},
		{"paid after processing is a no-op", order.Processing, order.Paid, order.Processing, false},
		{"skip ahead to delivered", order.Paid, order.Delivered, order.Delivered, true},
		{"picked up before out for delivery", order.PickedUp, order.OutForDelivery, order.OutForDelivery, true},
		{"regress to processing ignored", order.OutForDelivery, order.Processing, order.OutForDelivery, false},
		{"failure from pending", order.Pending, order.DeliveryFailed, order.DeliveryFailed, true},
		{"cancel in flight", order.OutForDelivery, order.Cancelled, order.Cancelled, true},
		{"delivered is terminal", order.Delivered, order.Cancelled, order.Delivered, false},
		{"cancelled is terminal", order.Cancelled, order.Paid, order.Cancelled, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed, err := tc.from.Advance(tc.to)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.changed, changed)
		})
	}

	t.Run("invalid target", func(t *testing.T) {
		_, _, err := order.Paid.Advance(order.Unknown)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestStatus_Predicates(t *testing.T) {
	assert.False(t, order.Pending.IsPaid())
	assert.True(t, order.Paid.IsPaid())
	assert.True(t, order.Paid.IsDispatchable())
	assert.True(t, order.OutForDelivery.IsDispatchable())
	assert.False(t, order.Pending.IsDispatchable())
	assert.False(t, order.Delivered.IsDispatchable())
	assert.True(t, order.DeliveryFailed.IsTerminal())
}

func TestDeliveryMethod(t *testing.T) {
	atl, err := order.ParseDeliveryMethod("atl")
	require.NoError(t, err)
	assert.Equal(t, order.LeaveAtLocation, atl)
	assert.Equal(t, "Authorized to Leave", atl.Label())

	h2h, err := order.ParseDeliveryMethod("hand-to-hand")
	require.NoError(t, err)
	assert.Equal(t, "hand-to-hand", h2h.String())

	_, err = order.ParseDeliveryMethod("drone")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	require.Error(t, order.UnknownDeliveryMethod.Validate())
}

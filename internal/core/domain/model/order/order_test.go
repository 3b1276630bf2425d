package order_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	t.Run("regular order", func(t *testing.T) {
		o := newOrder(t, 1)

		require.NoError(t, o.Validate())
		assert.Equal(t, order.Pending, o.Status())
		assert.False(t, o.IsBulk())
		assert.Len(t, o.Parcels(), 1)
		assert.False(t, o.IsDispatched())
		assert.Equal(t, fixedNow, o.CreatedAt())

		_, ok := o.BulkSummary()
		assert.False(t, ok)
	})

	t.Run("bulk order summary", func(t *testing.T) {
		o := newOrder(t, 3)

		summary, ok := o.BulkSummary()
		require.True(t, ok)
		assert.Equal(t, 3, summary.TotalParcels())
		assert.InDelta(t, 9.0, summary.TotalWeightKg(), 0.0001)
	})

	t.Run("parcels are sorted by index", func(t *testing.T) {
		second := newParcel(t, 1)
		first := newParcel(t, 0)

		o, err := order.NewOrder(kernel.NewUUID(), kernel.NewRandomShortCode(), newContact(t, "238801"),
			order.HandToHand, kernel.MustMoney("14.00"), true, []*order.Parcel{second, first}, fixedNow)

		require.NoError(t, err)
		assert.Equal(t, first.ID(), o.Parcels()[0].ID())
	})

	testCases := []struct {
		name    string
		bulk    bool
		parcels func(t *testing.T) []*order.Parcel
	}{
		{"no parcels", false, func(*testing.T) []*order.Parcel { return nil }},
		{"bulk with one parcel", true, func(t *testing.T) []*order.Parcel { return []*order.Parcel{newParcel(t, 0)} }},
		{"regular with two parcels", false, func(t *testing.T) []*order.Parcel {
			return []*order.Parcel{newParcel(t, 0), newParcel(t, 1)}
		}},
		{"duplicate index", true, func(t *testing.T) []*order.Parcel {
			return []*order.Parcel{newParcel(t, 0), newParcel(t, 0)}
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := order.NewOrder(kernel.NewUUID(), kernel.NewRandomShortCode(), newContact(t, "238801"),
				order.LeaveAtLocation, kernel.MustMoney("4.50"), tc.bulk, tc.parcels(t), fixedNow)
			require.Error(t, err)
		})
	}

	t.Run("reports every invalid field", func(t *testing.T) {
		_, err := order.NewOrder(kernel.UUID{}, kernel.ShortCode{}, kernel.Contact{},
			order.UnknownDeliveryMethod, kernel.ZeroMoney(), false, []*order.Parcel{newParcel(t, 0)}, fixedNow)

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, kernel.ErrContactIsNotConstructed)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestOrder_ZeroValue(t *testing.T) {
	var o *order.Order
	require.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)
	require.ErrorIs(t, (&order.Order{}).Validate(), order.ErrOrderIsNotConstructed)
}

func TestRestoreOrder(t *testing.T) {
	original := newOrder(t, 1)
	dispatchedAt := fixedNow.Add(time.Hour)

	restored, err := order.RestoreOrder(order.State{
		ID:             original.ID(),
		ShortCode:      original.ShortCode(),
		Sender:         original.Sender(),
		DeliveryMethod: original.DeliveryMethod(),
		Amount:         original.Amount(),
		Status:         order.OutForDelivery,
		Bulk:           false,
		Parcels:        original.Parcels(),
		DispatchJobRef: "job-1",
		DispatchedAt:   &dispatchedAt,
		CreatedAt:      fixedNow,
		UpdatedAt:      dispatchedAt,
		Version:        4,
	})

	require.NoError(t, err)
	assert.True(t, restored.IsEqual(original))
	assert.Equal(t, order.OutForDelivery, restored.Status())
	assert.Equal(t, "job-1", restored.DispatchJobRef())
	assert.True(t, restored.IsDispatched())
	assert.Equal(t, 4, restored.Version())

	_, err = order.RestoreOrder(order.State{
		ID: original.ID(), ShortCode: original.ShortCode(), Sender: original.Sender(),
		DeliveryMethod: original.DeliveryMethod(), Parcels: original.Parcels(), Status: order.Unknown,
	})
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestOrder_MarkPaid(t *testing.T) {
	o := newOrder(t, 2)
	later := fixedNow.Add(time.Minute)

	changed, err := o.MarkPaid(later)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, order.Paid, o.Status())
	assert.Equal(t, later, o.UpdatedAt())
	for _, p := range o.Parcels() {
		assert.Equal(t, order.Paid, p.Status())
	}

	changed, err = o.MarkPaid(later.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, later, o.UpdatedAt())
}

func TestOrder_ApplyStatus_DoesNotRegress(t *testing.T) {
	o := newOrder(t, 1)

	changed, err := o.ApplyStatus(order.Delivered, fixedNow)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = o.MarkPaid(fixedNow)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, order.Delivered, o.Status())
}

func TestOrder_ApplyParcelStatus_BulkAggregation(t *testing.T) {
	o := newOrder(t, 2)
	_, err := o.MarkPaid(fixedNow)
	require.NoError(t, err)
	first, second := o.Parcels()[0], o.Parcels()[1]

	changed, err := o.ApplyParcelStatus(first.ID(), order.OutForDelivery, fixedNow)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, order.Paid, o.Status(), "order follows the least advanced parcel")

	_, err = o.ApplyParcelStatus(second.ID(), order.Processing, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, order.Processing, o.Status())

	_, err = o.ApplyParcelStatus(first.ID(), order.Delivered, fixedNow)
	require.NoError(t, err)
	_, err = o.ApplyParcelStatus(second.ID(), order.DeliveryFailed, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, order.Delivered, o.Status())

	changed, err = o.ApplyParcelStatus(second.ID(), order.Delivered, fixedNow)
	require.NoError(t, err)
	assert.False(t, changed, "terminal parcel stays terminal")

	_, err = o.ApplyParcelStatus(kernel.NewUUID(), order.Delivered, fixedNow)
	require.ErrorIs(t, err, order.ErrParcelNotInOrder)
}

func TestOrder_Dispatch(t *testing.T) {
	t.Run("regular order records job on order and parcel", func(t *testing.T) {
		o := newOrder(t, 1)

		require.NoError(t, o.RecordDispatchJob("job-1", "item-1", fixedNow))
		require.NoError(t, o.MarkDispatched(fixedNow))

		assert.Equal(t, "job-1", o.DispatchJobRef())
		assert.Equal(t, "job-1", o.Parcels()[0].DispatchJobRef())
		assert.Equal(t, "item-1", o.Parcels()[0].DispatchItemRef())
		assert.True(t, o.IsDispatched())

		p, ok := o.ParcelByDispatchRef("item-1")
		require.True(t, ok)
		assert.Equal(t, o.Parcels()[0].ID(), p.ID())
	})

	t.Run("bulk order cannot record an order level job", func(t *testing.T) {
		o := newOrder(t, 2)
		require.ErrorIs(t, o.RecordDispatchJob("job-1", "", fixedNow), errs.ErrValueIsInvalid)
	})

	t.Run("bulk order is dispatched once every parcel has a job", func(t *testing.T) {
		o := newOrder(t, 2)
		parcels := o.Parcels()

		require.NoError(t, parcels[0].AttachDispatchJob("job-a", ""))
		assert.Len(t, o.UndispatchedParcels(), 1)
		require.ErrorIs(t, o.MarkDispatched(fixedNow), order.ErrDispatchIncomplete)

		require.NoError(t, parcels[1].AttachDispatchJob("job-b", ""))
		require.NoError(t, o.MarkDispatched(fixedNow))
		assert.Empty(t, o.DispatchJobRef())
		assert.True(t, o.IsDispatched())
	})

	t.Run("dispatchability", func(t *testing.T) {
		o := newOrder(t, 1)
		require.ErrorIs(t, o.EnsureDispatchable(), order.ErrOrderNotDispatchable)

		_, err := o.MarkPaid(fixedNow)
		require.NoError(t, err)
		require.NoError(t, o.EnsureDispatchable())

		_, err = o.ApplyStatus(order.Cancelled, fixedNow)
		require.NoError(t, err)
		require.ErrorIs(t, o.EnsureDispatchable(), order.ErrOrderNotDispatchable)
	})
}

func TestOrder_AttachParcelDispatchJob(t *testing.T) {
	t.Run("regular order mirrors the job on the order", func(t *testing.T) {
		o := newOrder(t, 1)
		parcel := o.Parcels()[0]

		require.NoError(t, o.AttachParcelDispatchJob(parcel.ID(), "job-1", "item-1", fixedNow))

		assert.Equal(t, "job-1", o.DispatchJobRef())
		assert.Equal(t, "job-1", parcel.DispatchJobRef())
	})

	t.Run("bulk order keeps jobs on parcels", func(t *testing.T) {
		o := newOrder(t, 2)
		parcel := o.Parcels()[1]

		require.NoError(t, o.AttachParcelDispatchJob(parcel.ID(), "job-b", "", fixedNow))

		assert.Empty(t, o.DispatchJobRef())
		assert.Equal(t, "job-b", parcel.DispatchJobRef())
		assert.Len(t, o.UndispatchedParcels(), 1)
	})

	t.Run("same job twice is a no-op", func(t *testing.T) {
		o := newOrder(t, 2)
		parcel := o.Parcels()[0]

		require.NoError(t, o.AttachParcelDispatchJob(parcel.ID(), "job-a", "", fixedNow))
		require.NoError(t, o.AttachParcelDispatchJob(parcel.ID(), "job-a", "", fixedNow))
		require.ErrorIs(t, o.AttachParcelDispatchJob(parcel.ID(), "job-z", "", fixedNow), order.ErrDispatchJobAlreadyAttached)
	})

	t.Run("unknown parcel", func(t *testing.T) {
		o := newOrder(t, 2)
		require.ErrorIs(t, o.AttachParcelDispatchJob(kernel.NewUUID(), "job-a", "", fixedNow), order.ErrParcelNotInOrder)
	})
}

func TestOrder_AssignParcelShortCode(t *testing.T) {
	o := newOrder(t, 1)
	parcel := o.Parcels()[0]

	err := o.AssignParcelShortCode(parcel.ID(), kernel.NewRandomShortCode(), fixedNow)

	require.ErrorIs(t, err, order.ErrShortCodeAlreadyAssigned)
}

func TestOrder_ParcelByShortCode(t *testing.T) {
	o := newOrder(t, 2)
	second := o.Parcels()[1]

	p, ok := o.ParcelByShortCode(second.ShortCode().String())
	require.True(t, ok)
	assert.Equal(t, second.ID(), p.ID())

	_, ok = o.ParcelByShortCode(o.ShortCode().String())
	assert.False(t, ok)

	_, ok = o.ParcelByShortCode("")
	assert.False(t, ok)
}

func TestOrder_RecordDispatchAttempt(t *testing.T) {
	o := newOrder(t, 1)
	require.Nil(t, o.LastDispatchAttemptAt())

	at := fixedNow.Add(time.Hour)
	o.RecordDispatchAttempt(at)

	require.NotNil(t, o.LastDispatchAttemptAt())
	assert.Equal(t, at, *o.LastDispatchAttemptAt())
	assert.Equal(t, fixedNow, o.UpdatedAt())
}

package order_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParcel_ShortCodeIsAssignedOnce(t *testing.T) {
	m, err := order.NewMeasurements(2, nil)
	require.NoError(t, err)

	p, err := order.NewParcel(kernel.NewUUID(), 0, m, "T1", kernel.MustMoney("4.50"),
		newContact(t, "079903"), kernel.ShortCode{})
	require.NoError(t, err)
	assert.True(t, p.ShortCode().IsEmpty())

	code := kernel.NewRandomShortCode()
	require.NoError(t, p.AssignShortCode(code))
	require.NoError(t, p.AssignShortCode(code))

	other, err := kernel.ParseShortCode("SPDY00000001")
	require.NoError(t, err)
	if !other.IsEqual(code) {
		require.ErrorIs(t, p.AssignShortCode(other), order.ErrShortCodeAlreadyAssigned)
	}
	assert.Equal(t, code, p.ShortCode())
}

func TestParcel_AttachDispatchJob(t *testing.T) {
	p := newParcel(t, 0)

	require.ErrorIs(t, p.AttachDispatchJob("  ", ""), errs.ErrValueIsRequired)
	assert.False(t, p.HasDispatchJob())

	require.NoError(t, p.AttachDispatchJob("job-1", ""))
	require.NoError(t, p.AttachDispatchJob("job-1", ""))
	require.ErrorIs(t, p.AttachDispatchJob("job-2", ""), order.ErrDispatchJobAlreadyAttached)
	assert.Equal(t, "job-1", p.DispatchJobRef())
}

func TestNewParcel_Validation(t *testing.T) {
	m, err := order.NewMeasurements(2, nil)
	require.NoError(t, err)

	_, err = order.NewParcel(kernel.NewUUID(), -1, order.Measurements{}, "", kernel.ZeroMoney(),
		kernel.Contact{}, kernel.ShortCode{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parcel index")
	assert.Contains(t, err.Error(), "pricing tier")

	_, err = order.NewParcel(kernel.NewUUID(), 0, m, "T1", kernel.ZeroMoney(), kernel.Contact{}, kernel.ShortCode{})
	require.ErrorIs(t, err, kernel.ErrContactIsNotConstructed)
}

func TestRestoreParcel(t *testing.T) {
	original := newParcel(t, 2)

	restored, err := order.RestoreParcel(order.ParcelState{
		ID:              original.ID(),
		Index:           2,
		Measurements:    original.Measurements(),
		Tier:            "T1",
		Price:           original.Price(),
		Recipient:       original.Recipient(),
		ShortCode:       original.ShortCode(),
		DispatchJobRef:  "job-9",
		DispatchItemRef: "item-9",
		Status:          order.PickedUp,
	})

	require.NoError(t, err)
	assert.Equal(t, order.PickedUp, restored.Status())
	assert.True(t, restored.HasDispatchJob())
	assert.Equal(t, "item-9", restored.DispatchItemRef())
}

func TestMeasurements(t *testing.T) {
	m, err := order.NewMeasurements(3, &order.Dimensions{LengthCm: 30, WidthCm: 30, HeightCm: 15})
	require.NoError(t, err)
	assert.InDelta(t, 2.7, m.VolumetricWeightKg(), 0.0001)

	dims := m.Dimensions()
	dims.LengthCm = 1000
	assert.InDelta(t, 30.0, m.Dimensions().LengthCm, 0.0001)

	flat, err := order.NewMeasurements(3, nil)
	require.NoError(t, err)
	assert.Nil(t, flat.Dimensions())
	assert.Zero(t, flat.VolumetricWeightKg())

	_, err = order.NewMeasurements(0, &order.Dimensions{LengthCm: -1, WidthCm: 1, HeightCm: 1})
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.Contains(t, err.Error(), "weight")
	assert.Contains(t, err.Error(), "length")
}

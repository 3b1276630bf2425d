package order_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newContact(t *testing.T, postalCode string) kernel.Contact {
	t.Helper()

	address, err := kernel.NewAddress("10 Anson Road", "#12-34", postalCode)
	require.NoError(t, err)

	contact, err := kernel.NewContact("Tan Wei", "wei@example.com", "91234567", address)
	require.NoError(t, err)
	return contact
}

func newParcel(t *testing.T, index int) *order.Parcel {
	t.Helper()

	m, err := order.NewMeasurements(3, nil)
	require.NoError(t, err)

	p, err := order.NewParcel(
		kernel.NewUUID(),
		index,
		m,
		"T1",
		kernel.MustMoney("4.50"),
		newContact(t, "079903"),
		kernel.NewRandomShortCode(),
	)
	require.NoError(t, err)
	return p
}

func newOrder(t *testing.T, parcelCount int) *order.Order {
	t.Helper()

	parcels := make([]*order.Parcel, 0, parcelCount)
	for i := range parcelCount {
		parcels = append(parcels, newParcel(t, i))
	}

	o, err := order.NewOrder(
		kernel.NewUUID(),
		kernel.NewRandomShortCode(),
		newContact(t, "238801"),
		order.LeaveAtLocation,
		kernel.MustMoney("4.50").Times(parcelCount),
		parcelCount > 1,
		parcels,
		fixedNow,
	)
	require.NoError(t, err)
	return o
}

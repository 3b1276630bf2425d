package commands_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) GetByDispatchJobRef(ctx context.Context, ref string) (*order.Order, error) {
	args := m.Called(ctx, ref)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) GetAwaitingDispatch(ctx context.Context, before time.Time, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, before, limit)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

// permissiveUoW accepts any number of transactions against repo.
func permissiveUoW(repo *MockOrderRepository) (*MockOrderUoWFactory, *MockOrderUoW) {
	uow := new(MockOrderUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(repo)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)
	return factory, uow
}

type MockResolver struct{ mock.Mock }

func (m *MockResolver) ResolveOrder(ctx context.Context, input string) (kernel.UUID, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(kernel.UUID), args.Error(1)
}

func (m *MockResolver) NewShortCodes(ctx context.Context, n int) ([]kernel.ShortCode, error) {
	args := m.Called(ctx, n)
	codes, _ := args.Get(0).([]kernel.ShortCode)
	return codes, args.Error(1)
}

type MockPaymentProvider struct{ mock.Mock }

func (m *MockPaymentProvider) CreatePaymentSession(ctx context.Context, req ports.PaymentSessionRequest) (ports.PaymentSession, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.PaymentSession), args.Error(1)
}

type MockDeliveryProvider struct{ mock.Mock }

func (m *MockDeliveryProvider) CreateJob(ctx context.Context, req ports.DispatchJobRequest) (ports.DispatchJob, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.DispatchJob), args.Error(1)
}

func (m *MockDeliveryProvider) GetJob(ctx context.Context, ref kernel.ShortCode) (services.DeliverySnapshot, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(services.DeliverySnapshot), args.Error(1)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) PublishStatusChanged(ctx context.Context, event ports.StatusChangedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockDispatcher struct{ mock.Mock }

func (m *MockDispatcher) Handle(ctx context.Context, cmd commands.DispatchOrderCommand) (commands.DispatchResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.DispatchResult), args.Error(1)
}

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func contact(t *testing.T, street, postal string) kernel.Contact {
	t.Helper()

	address, err := kernel.NewAddress(street, "", postal)
	require.NoError(t, err)

	c, err := kernel.NewContact("Tan Wei", "wei@example.com", "91234567", address)
	require.NoError(t, err)
	return c
}

func weight(t *testing.T, kg float64) order.Measurements {
	t.Helper()

	m, err := order.NewMeasurements(kg, nil)
	require.NoError(t, err)
	return m
}

func code(t *testing.T, s string) kernel.ShortCode {
	t.Helper()

	c, err := kernel.ParseShortCode(s)
	require.NoError(t, err)
	return c
}

// paidOrder builds a paid order with parcelCount parcels coded SPDY0000000<i+1>.
func paidOrder(t *testing.T, parcelCount int) *order.Order {
	t.Helper()

	parcels := make([]*order.Parcel, 0, parcelCount)
	for i := range parcelCount {
		p, err := order.NewParcel(
			kernel.NewUUID(),
			i,
			weight(t, 3),
			"T1",
			kernel.MustMoney("4.50"),
			contact(t, "50 Bishan Street", "570050"),
			code(t, "SPDY0000000"+string(rune('1'+i))),
		)
		require.NoError(t, err)
		parcels = append(parcels, p)
	}

	o, err := order.NewOrder(
		kernel.NewUUID(),
		code(t, "SPDY90000000"),
		contact(t, "10 Anson Road", "079903"),
		order.LeaveAtLocation,
		kernel.MustMoney("4.50").Times(parcelCount),
		parcelCount > 1,
		parcels,
		fixedNow,
	)
	require.NoError(t, err)

	_, err = o.MarkPaid(fixedNow)
	require.NoError(t, err)
	return o
}

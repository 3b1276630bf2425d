package commands_test

import (
	"errors"
	"log/slog"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPricing(t *testing.T) services.PricingEngine {
	t.Helper()
	engine, err := services.NewPricingEngine(services.WeightPricing)
	require.NoError(t, err)
	return engine
}

func singleParcelCommand(t *testing.T, declared string) commands.CreateOrderCommand {
	t.Helper()

	cmd, err := commands.NewCreateOrderCommand(
		contact(t, "10 Anson Road", "079903"),
		order.LeaveAtLocation,
		kernel.MustMoney(declared),
		false,
		[]commands.ParcelSpec{{Index: 0, Measurements: weight(t, 3)}},
		[]commands.RecipientSpec{{Index: 0, Contact: contact(t, "50 Bishan Street", "570050")}},
	)
	require.NoError(t, err)
	return cmd
}

func TestCreateOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd := singleParcelCommand(t, "4.50")
	codes := []kernel.ShortCode{code(t, "SPDY00000010"), code(t, "SPDY00000011")}

	resolver := new(MockResolver)
	resolver.On("NewShortCodes", ctx, 2).Return(codes, nil).Once()

	var stored *order.Order
	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", ctx, mock.AnythingOfType("*order.Order")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*order.Order) }).
			Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	payments := new(MockPaymentProvider)
	payments.On("CreatePaymentSession", ctx, mock.MatchedBy(func(req ports.PaymentSessionRequest) bool {
		return req.Reference == codes[0] && req.Amount.String() == "4.50"
	})).Return(ports.PaymentSession{ID: "pay-1", URL: "https://pay.example/pay-1"}, nil).Once()

	h := commands.NewCreateOrderCommandHandler(factory, newPricing(t), resolver, payments, nil, slog.Default())
	res, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, codes[0], res.ShortCode)
	assert.Equal(t, []kernel.ShortCode{codes[1]}, res.ParcelCodes)
	assert.Equal(t, "https://pay.example/pay-1", res.PaymentURL)
	assert.Equal(t, "4.50", res.Amount.String())

	require.NotNil(t, stored)
	assert.Equal(t, order.Pending, stored.Status())
	assert.Equal(t, res.OrderID, stored.ID())
	parcel := stored.Parcels()[0]
	assert.Equal(t, "T1", parcel.Tier())
	assert.Equal(t, codes[1], parcel.ShortCode())

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
	payments.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_AcceptsRoundingWithinOneCent(t *testing.T) {
	ctx := t.Context()
	cmd := singleParcelCommand(t, "4.51")

	resolver := new(MockResolver)
	resolver.On("NewShortCodes", ctx, 2).
		Return([]kernel.ShortCode{code(t, "SPDY00000010"), code(t, "SPDY00000011")}, nil).Once()

	repo := new(MockOrderRepository)
	repo.On("Add", ctx, mock.Anything).Return(nil).Once()
	factory, _ := permissiveUoW(repo)

	payments := new(MockPaymentProvider)
	payments.On("CreatePaymentSession", ctx, mock.Anything).Return(ports.PaymentSession{URL: "u"}, nil).Once()

	h := commands.NewCreateOrderCommandHandler(factory, newPricing(t), resolver, payments, nil, slog.Default())
	res, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, "4.50", res.Amount.String())
}

func TestCreateOrderCommandHandler_Handle_PriceMismatch(t *testing.T) {
	ctx := t.Context()
	cmd := singleParcelCommand(t, "4.00")

	factory := new(MockOrderUoWFactory)
	resolver := new(MockResolver)
	payments := new(MockPaymentProvider)

	h := commands.NewCreateOrderCommandHandler(factory, newPricing(t), resolver, payments, nil, slog.Default())
	_, err := h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrPriceMismatch)
	assert.EqualError(t, err, "Invalid price calculation. Expected: $4.50")
	factory.AssertNotCalled(t, "Create")
	resolver.AssertNotCalled(t, "NewShortCodes", mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_BulkTotalIncludesEverySurcharge(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewCreateOrderCommand(
		contact(t, "10 Anson Road", "079903"),
		order.HandToHand,
		// (4.50 + 2.50) + (5.80 + 2.50) + 4.00 CBD + 15.00 airbase
		kernel.MustMoney("34.30"),
		true,
		[]commands.ParcelSpec{{Index: 0, Measurements: weight(t, 3)}, {Index: 1, Measurements: weight(t, 8)}},
		[]commands.RecipientSpec{
			{Index: 0, Contact: contact(t, "1 Tanjong Pagar Road", "079903")},
			{Index: 1, Contact: contact(t, "Paya Lebar Airbase", "534157")},
		},
	)
	require.NoError(t, err)

	resolver := new(MockResolver)
	resolver.On("NewShortCodes", ctx, 3).Return([]kernel.ShortCode{
		code(t, "SPDY00000010"), code(t, "SPDY00000011"), code(t, "SPDY00000012"),
	}, nil).Once()

	var stored *order.Order
	repo := new(MockOrderRepository)
	repo.On("Add", ctx, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*order.Order) }).
		Return(nil).Once()
	factory, _ := permissiveUoW(repo)

	payments := new(MockPaymentProvider)
	payments.On("CreatePaymentSession", ctx, mock.Anything).Return(ports.PaymentSession{URL: "u"}, nil).Once()

	h := commands.NewCreateOrderCommandHandler(factory, newPricing(t), resolver, payments, nil, slog.Default())
	res, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, "34.30", res.Amount.String())
	require.NotNil(t, stored)
	assert.True(t, stored.IsBulk())
	summary, ok := stored.BulkSummary()
	require.True(t, ok)
	assert.Equal(t, 2, summary.TotalParcels())
	assert.Equal(t, "T2", stored.Parcels()[1].Tier())
	assert.Equal(t, "8.30", stored.Parcels()[1].Price().String())
}

func TestCreateOrderCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	cmd := singleParcelCommand(t, "4.50")

	resolver := new(MockResolver)
	resolver.On("NewShortCodes", ctx, 2).
		Return([]kernel.ShortCode{code(t, "SPDY00000010"), code(t, "SPDY00000011")}, nil).Once()

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", ctx, mock.Anything).Return(errors.New("add error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	payments := new(MockPaymentProvider)

	h := commands.NewCreateOrderCommandHandler(factory, newPricing(t), resolver, payments, nil, slog.Default())
	_, err := h.Handle(ctx, cmd)

	require.EqualError(t, err, "add error")
	uow.AssertExpectations(t)
	payments.AssertNotCalled(t, "CreatePaymentSession", mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_PaymentProviderError(t *testing.T) {
	ctx := t.Context()
	cmd := singleParcelCommand(t, "4.50")

	resolver := new(MockResolver)
	resolver.On("NewShortCodes", ctx, 2).
		Return([]kernel.ShortCode{code(t, "SPDY00000010"), code(t, "SPDY00000011")}, nil).Once()

	repo := new(MockOrderRepository)
	repo.On("Add", ctx, mock.Anything).Return(nil).Once()
	factory, _ := permissiveUoW(repo)

	payments := new(MockPaymentProvider)
	payments.On("CreatePaymentSession", ctx, mock.Anything).
		Return(ports.PaymentSession{}, errs.NewProviderError("hitpay", "create payment request", 502, nil)).Once()

	h := commands.NewCreateOrderCommandHandler(factory, newPricing(t), resolver, payments, nil, slog.Default())
	res, err := h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrProviderUnavailable)
	assert.NoError(t, res.OrderID.Validate())
	assert.Empty(t, res.PaymentURL)
	repo.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockOrderUoWFactory)
	h := commands.NewCreateOrderCommandHandler(factory, newPricing(t), new(MockResolver), new(MockPaymentProvider), nil, slog.Default())

	_, err := h.Handle(t.Context(), commands.CreateOrderCommand{})

	require.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
}

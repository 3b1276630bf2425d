package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// priceTolerance absorbs client-side floating point rounding.
var priceTolerance = kernel.MustMoney("0.01")

// CreateOrderResult is returned to the sender. PaymentURL is empty when the
// payment session could not be opened; the order then stays pending.
type CreateOrderResult struct {
	OrderID     kernel.UUID
	ShortCode   kernel.ShortCode
	ParcelCodes []kernel.ShortCode
	Amount      kernel.Money
	PaymentURL  string
}

// CreateOrderCommandHandler prices a booking on the server, persists the order
// with its parcels and opens a payment session for it.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, engine, resolver, payments, metrics, logger)
//	res, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrPriceMismatch) {
//	    // nothing was stored
//	}
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	pricing    services.PricingEngine
	resolver   IdentifierResolver
	payments   ports.PaymentProvider
	metrics    Metrics
	logger     *slog.Logger
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	pricing services.PricingEngine,
	resolver IdentifierResolver,
	payments ports.PaymentProvider,
	metrics Metrics,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		pricing:    pricing,
		resolver:   resolver,
		payments:   payments,
		metrics:    metricsOrNoop(metrics),
		logger:     logger.With("component", "create-order"),
	}
}

// Handle runs the booking:
//  1. recompute the total from parcel and recipient data and reject a declared
//     amount more than one cent away
//  2. draw short codes for the order and every parcel
//  3. store order, parcels and bulk summary in one transaction
//  4. request a payment session referenced by the order short code
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateOrderResult{}, err
	}

	specs := cmd.Parcels()
	measurements := make([]order.Measurements, 0, len(specs))
	addresses := make([]kernel.Address, 0, len(specs))
	for _, spec := range specs {
		measurements = append(measurements, spec.Measurements)
		addresses = append(addresses, cmd.RecipientFor(spec.Index).Address())
	}

	total, err := h.pricing.TotalPrice(measurements, cmd.DeliveryMethod(), addresses)
	if err != nil {
		return CreateOrderResult{}, err
	}

	if !total.WithinTolerance(cmd.DeclaredAmount(), priceTolerance) {
		h.metrics.PriceMismatch()
		h.logger.WarnContext(ctx, "declared amount rejected",
			"expected", total.String(),
			"declared", cmd.DeclaredAmount().String(),
		)
		return CreateOrderResult{}, errs.NewPriceMismatchError(total.String(), cmd.DeclaredAmount().String())
	}

	codes, err := h.resolver.NewShortCodes(ctx, len(specs)+1)
	if err != nil {
		return CreateOrderResult{}, fmt.Errorf("failed to issue short codes: %w", err)
	}

	aggregate, err := h.buildOrder(cmd, specs, total, codes)
	if err != nil {
		return CreateOrderResult{}, err
	}

	if err = h.store(ctx, aggregate); err != nil {
		return CreateOrderResult{}, err
	}
	h.metrics.OrderCreated(aggregate.IsBulk())

	result := CreateOrderResult{
		OrderID:     aggregate.ID(),
		ShortCode:   aggregate.ShortCode(),
		ParcelCodes: codes[1:],
		Amount:      total,
	}

	h.logger.InfoContext(ctx, "order created",
		"order_id", aggregate.ID().String(),
		"short_code", aggregate.ShortCode().String(),
		"parcels", len(specs),
		"amount", total.String(),
	)

	session, err := h.payments.CreatePaymentSession(ctx, ports.PaymentSessionRequest{
		OrderID:   aggregate.ID(),
		Reference: aggregate.ShortCode(),
		Amount:    total,
		Buyer:     cmd.Sender(),
		Purpose:   fmt.Sprintf("Parcel delivery order %s", aggregate.ShortCode()),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to open payment session",
			"order_id", aggregate.ID().String(),
			"error", err,
		)
		return result, fmt.Errorf("failed to open payment session for order %s: %w", aggregate.ShortCode(), err)
	}

	result.PaymentURL = session.URL
	return result, nil
}

func (h *CreateOrderCommandHandler) buildOrder(
	cmd CreateOrderCommand,
	specs []ParcelSpec,
	total kernel.Money,
	codes []kernel.ShortCode,
) (*order.Order, error) {
	parcels := make([]*order.Parcel, 0, len(specs))
	for i, spec := range specs {
		tier, price, err := h.pricing.ParcelPrice(spec.Measurements, cmd.DeliveryMethod())
		if err != nil {
			return nil, err
		}

		p, err := order.NewParcel(
			kernel.NewUUID(),
			spec.Index,
			spec.Measurements,
			tier.Name,
			price,
			cmd.RecipientFor(spec.Index),
			codes[i+1],
		)
		if err != nil {
			return nil, err
		}
		parcels = append(parcels, p)
	}

	return order.NewOrder(
		kernel.NewUUID(),
		codes[0],
		cmd.Sender(),
		cmd.DeliveryMethod(),
		total,
		cmd.IsBulk(),
		parcels,
		time.Now().UTC(),
	)
}

func (h *CreateOrderCommandHandler) store(ctx context.Context, aggregate *order.Order) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

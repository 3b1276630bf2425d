package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/retry"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DispatchOutcomeCreated = "created"
	DispatchOutcomeFailed  = "failed"
)

// defaultRunTimeout bounds a whole dispatch run when the config leaves it unset.
const defaultRunTimeout = 2 * time.Minute

// DispatchConfig bounds provider calls made while dispatching. RunTimeout
// bounds one whole run, shared by every caller that joined it.
type DispatchConfig struct {
	Retry       retry.Config
	Concurrency int
	RunTimeout  time.Duration
}

func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		Retry:       retry.DefaultConfig(),
		Concurrency: 4,
		RunTimeout:  defaultRunTimeout,
	}
}

// DispatchOrderCommandHandler creates one delivery job per parcel that does
// not have one yet.
//
// Jobs are requested concurrently with their own timeout and retried with
// backoff on transient provider errors only. The order row is not locked
// while the provider is called; references are stored afterwards and a
// parcel that already has a job is never sent again. Concurrent runs for the
// same order inside one process share a single run. The run is detached from
// the cancellation of whichever caller started it and bounded by RunTimeout
// instead; a caller whose context ends stops waiting without stopping the run.
type DispatchOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	resolver   IdentifierResolver
	delivery   ports.DeliveryProvider
	config     DispatchConfig
	notifier   statusNotifier
	metrics    Metrics
	logger     *slog.Logger

	inflight *singleflight.Group
}

func NewDispatchOrderCommandHandler(
	uowFactory OrderUoWFactory,
	resolver IdentifierResolver,
	delivery ports.DeliveryProvider,
	publisher ports.EventPublisher,
	config DispatchConfig,
	metrics Metrics,
	logger *slog.Logger,
) DispatchOrderCommandHandler {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = defaultRunTimeout
	}

	logger = logger.With("component", "dispatch")
	return DispatchOrderCommandHandler{
		uowFactory: uowFactory,
		resolver:   resolver,
		delivery:   delivery,
		config:     config,
		notifier:   statusNotifier{publisher: publisher, logger: logger},
		metrics:    metricsOrNoop(metrics),
		logger:     logger,
		inflight:   &singleflight.Group{},
	}
}

// Handle dispatches the order.
//
// Returns:
//   - nil when every parcel has a job afterwards
//   - *PartialDispatchError when some parcels failed and at least one succeeded
//   - an error wrapping ErrDispatchFailed when every pending parcel failed
//   - order.ErrOrderNotDispatchable when the order is unpaid or terminal
func (h *DispatchOrderCommandHandler) Handle(ctx context.Context, cmd DispatchOrderCommand) (DispatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return DispatchResult{}, err
	}

	ch := h.inflight.DoChan(cmd.OrderID().String(), func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.config.RunTimeout)
		defer cancel()
		return h.dispatch(runCtx, cmd.OrderID())
	})

	select {
	case res := <-ch:
		result, _ := res.Val.(DispatchResult)
		return result, res.Err
	case <-ctx.Done():
		return DispatchResult{OrderID: cmd.OrderID()}, ctx.Err()
	}
}

type parcelOutcome struct {
	parcel *order.Parcel
	job    ports.DispatchJob
	err    error
}

func (h *DispatchOrderCommandHandler) dispatch(ctx context.Context, orderID kernel.UUID) (DispatchResult, error) {
	prepared, err := mutateOrder(ctx, h.uowFactory, loadByID(orderID), h.prepare(ctx))
	if err != nil {
		return DispatchResult{OrderID: orderID}, err
	}

	aggregate := prepared.Order
	result := DispatchResult{OrderID: orderID}
	for _, p := range aggregate.Parcels() {
		if p.HasDispatchJob() {
			result.Succeeded = append(result.Succeeded, ParcelDispatch{
				ParcelID:          p.ID(),
				ShortCode:         p.ShortCode(),
				JobRef:            p.DispatchJobRef(),
				AlreadyDispatched: true,
			})
		}
	}

	pending := aggregate.UndispatchedParcels()
	if len(pending) == 0 {
		result.Complete = true
		if !aggregate.IsDispatched() {
			if _, err = h.record(ctx, orderID, nil); err != nil {
				return result, err
			}
		}
		return result, nil
	}

	outcomes := h.createJobs(ctx, aggregate, pending)

	created := make([]parcelOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			h.metrics.ParcelDispatched(DispatchOutcomeFailed)
			h.logger.ErrorContext(ctx, "failed to create delivery job",
				"order_id", orderID.String(),
				"parcel_id", o.parcel.ID().String(),
				"short_code", o.parcel.ShortCode().String(),
				"error", o.err,
			)
			result.Failed = append(result.Failed, ParcelFailure{
				ParcelID:  o.parcel.ID(),
				ShortCode: o.parcel.ShortCode(),
				Err:       o.err,
			})
			continue
		}
		h.metrics.ParcelDispatched(DispatchOutcomeCreated)
		created = append(created, o)
	}

	if len(created) > 0 {
		recorded, recErr := h.record(ctx, orderID, created)
		if recErr != nil {
			h.logger.ErrorContext(ctx, "delivery jobs created but not recorded",
				"order_id", orderID.String(),
				"jobs", jobIDs(created),
				"error", recErr,
			)
			return result, fmt.Errorf("failed to record delivery jobs for order %s: %w", orderID, recErr)
		}

		for _, o := range created {
			result.Succeeded = append(result.Succeeded, ParcelDispatch{
				ParcelID:  o.parcel.ID(),
				ShortCode: o.parcel.ShortCode(),
				JobRef:    o.job.ID,
			})
		}
		result.Complete = recorded.Order.IsDispatched()
	}

	if len(created) == 0 {
		if _, recErr := h.record(ctx, orderID, nil); recErr != nil {
			h.logger.WarnContext(ctx, "failed to record dispatch attempt",
				"order_id", orderID.String(),
				"error", recErr,
			)
		}
	}

	switch {
	case len(result.Failed) == 0:
		h.logger.InfoContext(ctx, "order dispatched", "order_id", orderID.String(), "jobs", len(result.Succeeded))
		return result, nil
	case len(created) == 0:
		return result, fmt.Errorf("%w: order %s: %w", ErrDispatchFailed, orderID, joinFailures(result.Failed))
	default:
		return result, &PartialDispatchError{Result: result}
	}
}

// prepare rejects orders that may not be dispatched and gives parcels stored
// without a short code their own code, since the code is the job reference.
func (h *DispatchOrderCommandHandler) prepare(ctx context.Context) orderMutation {
	return func(o *order.Order) (bool, error) {
		if err := o.EnsureDispatchable(); err != nil {
			return false, err
		}

		var missing []*order.Parcel
		for _, p := range o.UndispatchedParcels() {
			if p.ShortCode().IsEmpty() {
				missing = append(missing, p)
			}
		}
		if len(missing) == 0 {
			return false, nil
		}

		codes, err := h.resolver.NewShortCodes(ctx, len(missing))
		if err != nil {
			return false, fmt.Errorf("failed to issue parcel short codes: %w", err)
		}

		now := time.Now().UTC()
		for i, p := range missing {
			if err = o.AssignParcelShortCode(p.ID(), codes[i], now); err != nil {
				return false, err
			}
		}
		return true, nil
	}
}

func (h *DispatchOrderCommandHandler) createJobs(ctx context.Context, aggregate *order.Order, pending []*order.Parcel) []parcelOutcome {
	outcomes := make([]parcelOutcome, len(pending))
	date := time.Now().UTC()

	var g errgroup.Group
	g.SetLimit(h.config.Concurrency)

	for i, p := range pending {
		req := ports.DispatchJobRequest{
			Reference: p.ShortCode(),
			Date:      date,
			Sender:    aggregate.Sender(),
			Recipient: p.Recipient(),
			Method:    aggregate.DeliveryMethod(),
			Items: []ports.DispatchItem{{
				ParcelID:  p.ID(),
				ShortCode: p.ShortCode(),
				WeightKg:  p.Measurements().WeightKg(),
				Dimension: p.Measurements().Dimensions(),
			}},
		}

		g.Go(func() error {
			job, err := retry.Do(ctx, h.config.Retry, errs.IsTransient, func(ctx context.Context) (ports.DispatchJob, error) {
				return h.delivery.CreateJob(ctx, req)
			})
			outcomes[i] = parcelOutcome{parcel: p, job: job, err: err}
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}

// record stamps the dispatch attempt, stores created jobs and, once every
// parcel has one, marks the order dispatched and moves it to processing. It
// runs for failed attempts too so the scheduled retry rotates through orders.
func (h *DispatchOrderCommandHandler) record(ctx context.Context, orderID kernel.UUID, created []parcelOutcome) (mutationResult, error) {
	now := time.Now().UTC()

	res, err := mutateOrder(ctx, h.uowFactory, loadByID(orderID), func(o *order.Order) (bool, error) {
		o.RecordDispatchAttempt(now)
		for _, c := range created {
			itemRef := ""
			if len(c.job.ItemRefs) > 0 {
				itemRef = c.job.ItemRefs[0]
			}

			err := o.AttachParcelDispatchJob(c.parcel.ID(), c.job.ID, itemRef, now)
			if errors.Is(err, order.ErrDispatchJobAlreadyAttached) {
				h.logger.WarnContext(ctx, "parcel got a job from a concurrent dispatch",
					"order_id", orderID.String(),
					"parcel_id", c.parcel.ID().String(),
					"duplicate_job", c.job.ID,
				)
				continue
			}
			if err != nil {
				return false, err
			}
			if _, err = o.ApplyParcelStatus(c.parcel.ID(), order.Processing, now); err != nil {
				return false, err
			}
		}

		if len(o.UndispatchedParcels()) > 0 || o.IsDispatched() {
			return true, nil
		}
		if err := o.MarkDispatched(now); err != nil {
			return false, err
		}
		if _, err := o.ApplyStatus(order.Processing, now); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return mutationResult{}, err
	}

	h.notifier.notify(ctx, res, "dispatch", now)
	return res, nil
}

func jobIDs(outcomes []parcelOutcome) []string {
	ids := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		ids = append(ids, o.job.ID)
	}
	return ids
}

func joinFailures(failures []ParcelFailure) error {
	errList := make([]error, 0, len(failures))
	for _, f := range failures {
		errList = append(errList, fmt.Errorf("parcel %s: %w", f.ShortCode, f.Err))
	}
	return errors.Join(errList...)
}

package cmd

import (
	"context"
	"log/slog"

	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/detrack"
	"fulfillment/internal/adapters/out/hitpay"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/rabbitmq"
	"fulfillment/internal/core/application/identity"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"
	"fulfillment/internal/metrics"
	"fulfillment/internal/pkg/retry"

	"gorm.io/gorm"
)

type eventPublisher interface {
	ports.EventPublisher
	Close() error
}

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	resolver   *identity.Resolver
	pricing    services.PricingEngine
	payments   ports.PaymentProvider
	delivery   ports.DeliveryProvider
	publisher  eventPublisher
	metrics    *metrics.Collectors
	logger     *slog.Logger

	// shared so that concurrent dispatches of one order collapse into one run
	dispatchHandler *commands.DispatchOrderCommandHandler
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	variant, err := services.ParsePricingVariant(config.PricingVariant)
	if err != nil {
		return nil, err
	}
	pricing, err := services.NewPricingEngine(variant)
	if err != nil {
		return nil, err
	}

	resolver, err := identity.NewResolver(orderrepo.NewGormIdentifierLookup(gormDB), config.ResolverCacheSize)
	if err != nil {
		return nil, err
	}

	payments, err := hitpay.NewClient(hitpay.Config{
		APIURL:        config.HitPayAPIURL,
		APIKey:        config.HitPayAPIKey,
		PublicBaseURL: config.PublicBaseURL,
		MockMode:      config.PaymentMockMode,
		Timeout:       config.ProviderTimeout,
	})
	if err != nil {
		return nil, err
	}

	delivery, err := detrack.NewClient(detrack.Config{
		APIURL:        config.DetrackAPIURL,
		APIKey:        config.DetrackAPIKey,
		PublicBaseURL: config.PublicBaseURL,
		GroupName:     config.DetrackGroupName,
		Timeout:       config.ProviderTimeout,
	})
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		resolver:   resolver,
		pricing:    pricing,
		payments:   payments,
		delivery:   delivery,
		publisher:  newPublisher(config, logger),
		metrics:    metrics.New(),
		logger:     logger,
	}

	dispatch := commands.NewDispatchOrderCommandHandler(
		c.orderUoWFactory(),
		c.resolver,
		c.delivery,
		c.publisher,
		c.dispatchConfig(),
		c.metrics,
		c.logger,
	)
	c.dispatchHandler = &dispatch

	return c, nil
}

// newPublisher falls back to dropping events when no broker is configured or
// reachable; events are informational and must not keep the service down.
func newPublisher(config Config, logger *slog.Logger) eventPublisher {
	if config.AMQPURL == "" {
		return rabbitmq.NoopPublisher{}
	}

	publisher, err := rabbitmq.Dial(config.AMQPURL, config.AMQPExchange)
	if err != nil {
		logger.ErrorContext(context.Background(), "Event publishing disabled, broker unavailable", "error", err)
		return rabbitmq.NoopPublisher{}
	}
	return publisher
}

func (c *CompositionRoot) dispatchConfig() commands.DispatchConfig {
	retryConfig := retry.DefaultConfig()
	if c.config.DispatchMaxAttempts > 0 {
		retryConfig.MaxAttempts = c.config.DispatchMaxAttempts
	}
	if c.config.DispatchBaseDelay > 0 {
		retryConfig.BaseDelay = c.config.DispatchBaseDelay
	}
	if c.config.ProviderTimeout > 0 {
		retryConfig.AttemptTimeout = c.config.ProviderTimeout
	}

	return commands.DispatchConfig{
		Retry:       retryConfig,
		Concurrency: c.config.DispatchConcurrency,
		RunTimeout:  c.config.DispatchRunTimeout,
	}
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.pricing, c.resolver, c.payments, c.metrics, c.logger)
}

func (c *CompositionRoot) CreatePaymentWebhookCommandHandler() commands.PaymentWebhookCommandHandler {
	return commands.NewPaymentWebhookCommandHandler(
		c.orderUoWFactory(),
		c.resolver,
		c.dispatchHandler,
		c.publisher,
		c.config.HitPaySalt,
		c.metrics,
		c.logger,
	)
}

func (c *CompositionRoot) CreateDeliveryWebhookCommandHandler() commands.DeliveryWebhookCommandHandler {
	return commands.NewDeliveryWebhookCommandHandler(
		c.orderUoWFactory(),
		c.publisher,
		c.config.DetrackWebhookSecret,
		c.metrics,
		c.logger,
	)
}

func (c *CompositionRoot) DispatchOrderCommandHandler() *commands.DispatchOrderCommandHandler {
	return c.dispatchHandler
}

func (c *CompositionRoot) CreateRetryPendingDispatchesCommandHandler() commands.RetryPendingDispatchesCommandHandler {
	return commands.NewRetryPendingDispatchesCommandHandler(c.orderUoWFactory(), c.dispatchHandler, c.logger)
}

func (c *CompositionRoot) CreateGetOrderDetailsQueryHandler() queries.GetOrderDetailsQueryHandler {
	return queries.NewGetOrderDetailsQueryHandler(c.gormDB, c.resolver)
}

func (c *CompositionRoot) CreateGetTrackingStatusQueryHandler() queries.GetTrackingStatusQueryHandler {
	return queries.NewGetTrackingStatusQueryHandler(
		c.resolver,
		orderrepo.NewGormOrderRepository(c.gormDB, nil),
		c.delivery,
		c.logger,
	)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	createOrder := c.CreateCreateOrderCommandHandler()
	paymentWebhook := c.CreatePaymentWebhookCommandHandler()
	deliveryWebhook := c.CreateDeliveryWebhookCommandHandler()

	return httpin.NewServer(
		&createOrder,
		&paymentWebhook,
		&deliveryWebhook,
		c.CreateGetOrderDetailsQueryHandler(),
		c.CreateGetTrackingStatusQueryHandler(),
		c.metrics,
		c.logger,
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	retryHandler := c.CreateRetryPendingDispatchesCommandHandler()

	return jobs.NewJobManager(&retryHandler, jobs.DispatchRetryConfig{
		Schedule:  c.config.DispatchRetrySchedule,
		BatchSize: c.config.DispatchRetryBatch,
		MinAge:    c.config.DispatchRetryMinAge,
	}, c.logger)
}

func (c *CompositionRoot) Config() Config {
	return c.config
}

// Resolver exposes identifier resolution to CLI commands.
func (c *CompositionRoot) Resolver() *identity.Resolver {
	return c.resolver
}

func (c *CompositionRoot) Close() error {
	return c.publisher.Close()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

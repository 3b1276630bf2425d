// Package http exposes the order pipeline over HTTP with echo.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/generated/servers"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handler ports of the server. The command and query handlers of the
// application layer satisfy them.
type (
	OrderCreator interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.CreateOrderResult, error)
	}

	PaymentWebhookHandler interface {
		Handle(ctx context.Context, cmd commands.PaymentWebhookCommand) (commands.PaymentWebhookResult, error)
	}

	DeliveryWebhookHandler interface {
		Handle(ctx context.Context, cmd commands.DeliveryWebhookCommand) (commands.DeliveryWebhookResult, error)
	}

	OrderDetailsReader interface {
		Handle(ctx context.Context, query queries.GetOrderDetailsQuery) (queries.GetOrderDetailsQueryResponse, error)
	}

	TrackingReader interface {
		Handle(ctx context.Context, query queries.GetTrackingStatusQuery) (services.Timeline, error)
	}

	// RequestObserver records served requests; Handler exposes what it recorded.
	RequestObserver interface {
		httpObserver
		Handler() http.Handler
	}
)

var _ servers.ServerInterface = (*Server)(nil)

// Server maps HTTP requests onto use cases.
type Server struct {
	// Command handlers
	createOrderHandler     OrderCreator
	paymentWebhookHandler  PaymentWebhookHandler
	deliveryWebhookHandler DeliveryWebhookHandler

	// Query handlers
	orderDetailsHandler OrderDetailsReader
	trackingHandler     TrackingReader

	metrics RequestObserver
	logger  *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler OrderCreator,
	paymentWebhookHandler PaymentWebhookHandler,
	deliveryWebhookHandler DeliveryWebhookHandler,
	orderDetailsHandler OrderDetailsReader,
	trackingHandler TrackingReader,
	metrics RequestObserver,
	logger *slog.Logger,
) *Server {
	return &Server{
		createOrderHandler:     createOrderHandler,
		paymentWebhookHandler:  paymentWebhookHandler,
		deliveryWebhookHandler: deliveryWebhookHandler,
		orderDetailsHandler:    orderDetailsHandler,
		trackingHandler:        trackingHandler,
		metrics:                metrics,
		logger:                 logger.With("component", "http"),
	}
}

// Echo builds the router with every route and middleware registered.
// Requests on documented routes are checked against the API document before
// they reach a handler.
func (s *Server) Echo() (*echo.Echo, error) {
	spec, err := servers.GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("load API document: %w", err)
	}
	validate, err := validateRequests(spec)
	if err != nil {
		return nil, err
	}
	if err := registerAPIDoc(spec); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = s.handleError
	useMiddleware(e, s.metrics, s.logger)
	e.Use(validate)

	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName(apiDocName)))
	servers.RegisterHandlers(e, s)

	return e, nil
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}

package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
)

// PaymentSessionRequest describes the checkout a customer is redirected to.
// Reference is the order short code the payment webhook reports back.
type PaymentSessionRequest struct {
	OrderID   kernel.UUID
	Reference kernel.ShortCode
	Amount    kernel.Money
	Buyer     kernel.Contact
	Purpose   string
}

type PaymentSession struct {
	ID  string
	URL string
}

// PaymentProvider opens hosted checkout sessions. Failures are returned as
// *errs.ProviderError.
type PaymentProvider interface {
	CreatePaymentSession(ctx context.Context, req PaymentSessionRequest) (PaymentSession, error)
}

// DispatchItem is one parcel inside a delivery job.
type DispatchItem struct {
	ParcelID  kernel.UUID
	ShortCode kernel.ShortCode
	WeightKg  float64
	Dimension *order.Dimensions
}

// DispatchJobRequest asks the delivery provider for one job. Reference is the
// tracking code the provider files the job under.
type DispatchJobRequest struct {
	Reference kernel.ShortCode
	Date      time.Time
	Sender    kernel.Contact
	Recipient kernel.Contact
	Method    order.DeliveryMethod
	Items     []DispatchItem
}

// DispatchJob is the provider's answer. ItemRefs follow the order of the request items.
type DispatchJob struct {
	ID       string
	ItemRefs []string
}

// DeliveryProvider creates and reads delivery jobs. Failures are returned as
// *errs.ProviderError; a job that does not exist yields errs.ObjectNotFoundError.
type DeliveryProvider interface {
	CreateJob(ctx context.Context, req DispatchJobRequest) (DispatchJob, error)
	GetJob(ctx context.Context, reference kernel.ShortCode) (services.DeliverySnapshot, error)
}

// StatusChangedEvent is published after a status transition has been committed.
type StatusChangedEvent struct {
	OrderID    kernel.UUID
	ShortCode  kernel.ShortCode
	From       order.Status
	To         order.Status
	Source     string
	OccurredAt time.Time
}

// EventPublisher delivers domain events to other systems on a best-effort basis.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, event StatusChangedEvent) error
}

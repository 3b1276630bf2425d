// Package commands contains business operations that modify system state.
// Every command follows the same pattern: a validated command value built by
// its constructor, and a handler that runs it inside a unit of work.
package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// OrderUoW manages transactions for order operations.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   orderRepo := uow.OrderRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}
)

// IdentifierResolver turns public identifiers into internal ids and issues new
// short codes.
type IdentifierResolver interface {
	ResolveOrder(ctx context.Context, input string) (kernel.UUID, error)
	NewShortCodes(ctx context.Context, n int) ([]kernel.ShortCode, error)
}

// Metrics receives pipeline outcomes. Implementations must be safe for concurrent use.
type Metrics interface {
	OrderCreated(bulk bool)
	PriceMismatch()
	WebhookProcessed(provider, outcome string)
	ParcelDispatched(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) OrderCreated(bool)               {}
func (noopMetrics) PriceMismatch()                  {}
func (noopMetrics) WebhookProcessed(string, string) {}
func (noopMetrics) ParcelDispatched(string)         {}

func metricsOrNoop(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

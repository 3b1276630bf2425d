// Package ports declares what the application core needs from the outside
// world: storage, identifier lookups, the payment and delivery providers and
// event publishing. Adapters under internal/adapters implement them.
package ports

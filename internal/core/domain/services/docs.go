// Package services holds stateless domain logic that does not belong to a single
// aggregate.
//
// The package includes:
//   - PricingEngine: tier selection, delivery fees and location surcharges
//   - PaymentStatusToOrderStatus / DeliveryStatusToOrderStatus: provider vocabulary mapping
//   - BuildTimeline / PlaceholderTimeline: the four-milestone tracking view
//
// Everything here is a pure function of its inputs; identical inputs always
// produce identical prices and timelines.
package services

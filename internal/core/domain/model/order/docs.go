// Package order models a parcel delivery booking: the Order aggregate root, the
// Parcels it owns and the optional bulk summary.
//
// The package includes:
//   - Order: identity (internal UUID plus public short code), sender, delivery
//     method, server-computed amount, status and order-level dispatch state
//   - Parcel: one physical item with its own recipient, immutable pricing tier,
//     short code and dispatch job reference
//   - Status: the fulfillment state machine shared by orders and parcels
//   - DeliveryMethod and Measurements: pricing inputs
//
// Key business rules:
//   - Status only moves forward; repeating or regressing a status is a no-op
//   - delivered, delivery_failed and cancelled are terminal
//   - A parcel's short code and dispatch job reference are set once and never replaced
//   - A bulk order has two or more parcels; a regular order has exactly one
//   - A bulk order's status follows the least advanced of its parcels
package order

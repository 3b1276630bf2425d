package services

import (
	"strings"

	"fulfillment/internal/core/domain/model/order"
)

// PaymentStatusToOrderStatus maps a payment provider status. Only "completed"
// moves an order; anything else is reported as not applicable.
func PaymentStatusToOrderStatus(providerStatus string) (order.Status, bool) {
	if normalizeProviderStatus(providerStatus) == "completed" {
		return order.Paid, true
	}
	return order.Unknown, false
}

var deliveryStatuses = map[string]order.Status{
	"dispatched":       order.PickedUp,
	"picked_up":        order.PickedUp,
	"in_progress":      order.OutForDelivery,
	"out_for_delivery": order.OutForDelivery,
	"completed":        order.Delivered,
	"delivered":        order.Delivered,
	"failed":           order.DeliveryFailed,
	"cancelled":        order.Cancelled,
	"canceled":         order.Cancelled,
}

// DeliveryStatusToOrderStatus maps a delivery provider status. Unrecognized
// values, including the provider's own early stages, map to Processing.
func DeliveryStatusToOrderStatus(providerStatus string) order.Status {
	if s, ok := deliveryStatuses[normalizeProviderStatus(providerStatus)]; ok {
		return s
	}
	return order.Processing
}

func normalizeProviderStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

package commands

import (
	"encoding/json"
	"errors"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrDeliveryWebhookCommandIsNotConstructed = errors.New(
	"DeliveryWebhookCommand must be created via NewDeliveryWebhookCommand constructor",
)

// DeliveryWebhookItem is a parcel-level entry of a delivery notification.
type DeliveryWebhookItem struct {
	ID     string
	Status string
}

type deliveryWebhookPayload struct {
	Data *struct {
		ID             string `json:"id"`
		DoNumber       string `json:"do_number"`
		Status         string `json:"status"`
		TrackingStatus string `json:"tracking_status"`
		Items          []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"items"`
	} `json:"data"`
}

// DeliveryWebhookCommand is a parsed delivery notification. The raw body is
// kept for signature verification.
type DeliveryWebhookCommand struct { //nolint:recvcheck //using for validation
	body           []byte
	signature      string
	jobID          string
	doNumber       string
	status         string
	trackingStatus string
	items          []DeliveryWebhookItem

	guard guard.ConstructorGuard
}

// NewDeliveryWebhookCommand parses {"data": {...}} and requires do_number.
func NewDeliveryWebhookCommand(body []byte, signature string) (DeliveryWebhookCommand, error) {
	var payload deliveryWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return DeliveryWebhookCommand{}, errs.NewValueIsInvalidErrorWithCause("delivery webhook body", err)
	}
	if payload.Data == nil {
		return DeliveryWebhookCommand{}, errs.NewValueIsRequiredError("data")
	}

	data := payload.Data
	if strings.TrimSpace(data.DoNumber) == "" {
		return DeliveryWebhookCommand{}, errs.NewValueIsRequiredError("do_number")
	}

	cmd := DeliveryWebhookCommand{
		body:           append([]byte(nil), body...),
		signature:      strings.TrimSpace(signature),
		jobID:          strings.TrimSpace(data.ID),
		doNumber:       strings.TrimSpace(data.DoNumber),
		status:         data.Status,
		trackingStatus: data.TrackingStatus,
		guard:          guard.NewConstructorGuard(),
	}
	for _, item := range data.Items {
		if id := strings.TrimSpace(item.ID); id != "" {
			cmd.items = append(cmd.items, DeliveryWebhookItem{ID: id, Status: item.Status})
		}
	}

	return cmd, nil
}

func (c DeliveryWebhookCommand) Validate() error {
	return c.guard.Validate(ErrDeliveryWebhookCommandIsNotConstructed)
}

func (c DeliveryWebhookCommand) Body() []byte {
	return c.body
}

func (c DeliveryWebhookCommand) Signature() string {
	return c.signature
}

// JobRef is the provider job id, falling back to the job's do_number.
func (c DeliveryWebhookCommand) JobRef() string {
	if c.jobID != "" {
		return c.jobID
	}
	return c.doNumber
}

// JobID is data.id; empty when the provider sent only do_number.
func (c DeliveryWebhookCommand) JobID() string {
	return c.jobID
}

func (c DeliveryWebhookCommand) DoNumber() string {
	return c.doNumber
}

func (c DeliveryWebhookCommand) Status() string {
	return c.status
}

func (c DeliveryWebhookCommand) TrackingStatus() string {
	return c.trackingStatus
}

func (c DeliveryWebhookCommand) Items() []DeliveryWebhookItem {
	out := make([]DeliveryWebhookItem, len(c.items))
	copy(out, c.items)
	return out
}

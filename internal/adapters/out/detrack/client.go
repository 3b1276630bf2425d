// Package detrack creates and reads delivery jobs through the Detrack jobs API.
package detrack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const (
	providerName     = "detrack"
	createOperation  = "create job"
	getOperation     = "get job"
	defaultTimeout   = 30 * time.Second
	maxErrorBodySize = 4 << 10
)

// singapore is the provider's calendar: job dates are local dates there.
var singapore = time.FixedZone("SGT", 8*60*60)

type Config struct {
	APIURL        string
	APIKey        string
	PublicBaseURL string
	GroupName     string
	Timeout       time.Duration
}

// Client implements ports.DeliveryProvider.
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(config Config) (*Client, error) {
	if config.APIURL == "" {
		return nil, errs.NewValueIsRequiredError("detrack api url")
	}
	if config.APIKey == "" {
		return nil, errs.NewValueIsRequiredError("detrack api key")
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	config.APIURL = strings.TrimRight(config.APIURL, "/")
	config.PublicBaseURL = strings.TrimRight(config.PublicBaseURL, "/")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

type job struct {
	Type                 string    `json:"type"`
	DONumber             string    `json:"do_number"`
	Date                 string    `json:"date"`
	Address              string    `json:"address"`
	Address1             string    `json:"address_1,omitempty"`
	Address2             string    `json:"address_2,omitempty"`
	DeliverToCollectFrom string    `json:"deliver_to_collect_from"`
	PhoneNumber          string    `json:"phone_number"`
	NotifyEmail          string    `json:"notify_email"`
	PostalCode           string    `json:"postal_code"`
	City                 string    `json:"city"`
	Country              string    `json:"country"`
	PickUpFrom           string    `json:"pick_up_from"`
	PickUpAddress        string    `json:"pick_up_address"`
	PickUpPostalCode     string    `json:"pick_up_postal_code"`
	PickUpContact        string    `json:"pick_up_contact"`
	PickUpEmail          string    `json:"pick_up_email"`
	Weight               float64   `json:"weight"`
	ParcelLength         *float64  `json:"parcel_length,omitempty"`
	ParcelWidth          *float64  `json:"parcel_width,omitempty"`
	ParcelHeight         *float64  `json:"parcel_height,omitempty"`
	Instructions         string    `json:"instructions"`
	ServiceType          string    `json:"service_type"`
	GroupName            string    `json:"group_name,omitempty"`
	WebhookURL           string    `json:"webhook_url,omitempty"`
	Items                []jobItem `json:"items"`
}

type jobItem struct {
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Weight      float64 `json:"weight"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

type createdJob struct {
	ID    string `json:"id"`
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

type jobStatus struct {
	Status           string `json:"status"`
	TrackingStatus   string `json:"tracking_status"`
	InfoReceivedAt   string `json:"info_received_at"`
	ScheduledAt      string `json:"scheduled_at"`
	OutForDeliveryAt string `json:"out_for_delivery_at"`
	PODAt            string `json:"pod_at"`
}

// CreateJob files one delivery job under req.Reference.
func (c *Client) CreateJob(ctx context.Context, req ports.DispatchJobRequest) (ports.DispatchJob, error) {
	if req.Reference.IsEmpty() {
		return ports.DispatchJob{}, errs.NewValueIsRequiredError("job reference")
	}
	if len(req.Items) == 0 {
		return ports.DispatchJob{}, errs.NewValueIsRequiredError("job items")
	}

	body, err := json.Marshal(envelope[job]{Data: c.buildJob(req)})
	if err != nil {
		return ports.DispatchJob{}, fmt.Errorf("marshal job: %w", err)
	}

	var created envelope[createdJob]
	if err = c.do(ctx, http.MethodPost, c.config.APIURL, bytes.NewReader(body), createOperation, &created); err != nil {
		return ports.DispatchJob{}, err
	}
	if created.Data.ID == "" {
		return ports.DispatchJob{}, errs.NewProviderError(providerName, createOperation, http.StatusOK,
			errors.New("response carries no job id"))
	}

	result := ports.DispatchJob{ID: created.Data.ID}
	for _, item := range created.Data.Items {
		result.ItemRefs = append(result.ItemRefs, item.ID)
	}
	return result, nil
}

// GetJob reads the job filed under reference.
func (c *Client) GetJob(ctx context.Context, reference kernel.ShortCode) (services.DeliverySnapshot, error) {
	if reference.IsEmpty() {
		return services.DeliverySnapshot{}, errs.NewValueIsRequiredError("job reference")
	}

	endpoint := c.config.APIURL + "/" + url.PathEscape(reference.String())

	var got envelope[*jobStatus]
	err := c.do(ctx, http.MethodGet, endpoint, nil, getOperation, &got)
	var providerErr *errs.ProviderError
	if errors.As(err, &providerErr) && providerErr.StatusCode == http.StatusNotFound {
		return services.DeliverySnapshot{}, errs.NewObjectNotFoundError("delivery job", reference.String())
	}
	if err != nil {
		return services.DeliverySnapshot{}, err
	}
	if got.Data == nil {
		return services.DeliverySnapshot{}, errs.NewObjectNotFoundError("delivery job", reference.String())
	}

	return services.DeliverySnapshot{
		Status:           got.Data.Status,
		TrackingStatus:   got.Data.TrackingStatus,
		InfoReceivedAt:   parseTimestamp(got.Data.InfoReceivedAt),
		ScheduledAt:      parseTimestamp(got.Data.ScheduledAt),
		OutForDeliveryAt: parseTimestamp(got.Data.OutForDeliveryAt),
		DeliveredAt:      parseTimestamp(got.Data.PODAt),
	}, nil
}

func (c *Client) buildJob(req ports.DispatchJobRequest) job {
	recipient, sender := req.Recipient, req.Sender
	first := req.Items[0]

	j := job{
		Type:                 "Delivery",
		DONumber:             req.Reference.String(),
		Date:                 req.Date.In(singapore).Format(time.DateOnly),
		Address:              fullAddress(recipient.Address()),
		Address1:             recipient.Address().Street(),
		Address2:             recipient.Address().Unit(),
		DeliverToCollectFrom: recipient.Name(),
		PhoneNumber:          recipient.Phone(),
		NotifyEmail:          recipient.Email(),
		PostalCode:           recipient.Address().PostalCode(),
		City:                 "Singapore",
		Country:              "Singapore",
		PickUpFrom:           sender.Name(),
		PickUpAddress:        fullAddress(sender.Address()),
		PickUpPostalCode:     sender.Address().PostalCode(),
		PickUpContact:        sender.Phone(),
		PickUpEmail:          sender.Email(),
		Weight:               first.WeightKg,
		Instructions:         "Delivery Method: " + req.Method.Label(),
		ServiceType:          serviceType(req.Method),
		GroupName:            c.config.GroupName,
	}
	if c.config.PublicBaseURL != "" {
		j.WebhookURL = c.config.PublicBaseURL + "/api/v1/webhooks/delivery"
	}
	if d := first.Dimension; d != nil {
		j.ParcelLength, j.ParcelWidth, j.ParcelHeight = &d.LengthCm, &d.WidthCm, &d.HeightCm
	}

	for i, item := range req.Items {
		j.Items = append(j.Items, jobItem{
			SKU:         item.ShortCode.String(),
			Description: fmt.Sprintf("Parcel %d", i+1),
			Quantity:    1,
			Weight:      item.WeightKg,
		})
	}
	return j
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, operation string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.NewProviderError(providerName, operation, 0, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return errs.NewProviderError(providerName, operation, resp.StatusCode,
			fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(detail))))
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.NewProviderError(providerName, operation, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func serviceType(m order.DeliveryMethod) string {
	if m == order.HandToHand {
		return "Premium"
	}
	return "Standard"
}

func fullAddress(a kernel.Address) string {
	parts := []string{a.Street()}
	if a.Unit() != "" {
		parts = append(parts, a.Unit())
	}
	parts = append(parts, "Singapore "+a.PostalCode())
	return strings.Join(parts, ", ")
}

// parseTimestamp accepts RFC 3339 and the provider's zone-less local format.
// Anything else is treated as absent.
func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.ParseInLocation(time.DateTime, s, singapore); err == nil {
		return &t
	}
	return nil
}

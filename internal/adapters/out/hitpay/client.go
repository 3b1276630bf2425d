// Package hitpay opens hosted checkout sessions with the HitPay payment
// requests API.
package hitpay

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

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const (
	providerName     = "hitpay"
	createOperation  = "create payment request"
	defaultTimeout   = 30 * time.Second
	maxErrorBodySize = 4 << 10
)

// Config of the client. In mock mode no request leaves the process and the
// buyer is sent straight to the success page.
type Config struct {
	APIURL        string
	APIKey        string
	PublicBaseURL string
	MockMode      bool
	Timeout       time.Duration
}

// Client implements ports.PaymentProvider.
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(config Config) (*Client, error) {
	if config.PublicBaseURL == "" {
		return nil, errs.NewValueIsRequiredError("public base url")
	}
	if !config.MockMode {
		if config.APIURL == "" {
			return nil, errs.NewValueIsRequiredError("hitpay api url")
		}
		if config.APIKey == "" {
			return nil, errs.NewValueIsRequiredError("hitpay api key")
		}
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	config.PublicBaseURL = strings.TrimRight(config.PublicBaseURL, "/")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

type paymentRequestBody struct {
	Amount                string   `json:"amount"`
	Currency              string   `json:"currency"`
	PaymentMethods        []string `json:"payment_methods"`
	Email                 string   `json:"email"`
	Name                  string   `json:"name"`
	Phone                 string   `json:"phone"`
	ReferenceNumber       string   `json:"reference_number"`
	RedirectURL           string   `json:"redirect_url"`
	Webhook               string   `json:"webhook"`
	Purpose               string   `json:"purpose"`
	AllowRepeatedPayments bool     `json:"allow_repeated_payments"`
	SendEmail             bool     `json:"send_email"`
	SendSMS               bool     `json:"send_sms"`
}

type paymentRequestResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (c *Client) CreatePaymentSession(ctx context.Context, req ports.PaymentSessionRequest) (ports.PaymentSession, error) {
	redirect := c.redirectURL(req)
	if c.config.MockMode {
		return ports.PaymentSession{ID: "mock-" + req.Reference.String(), URL: redirect}, nil
	}

	body, err := json.Marshal(paymentRequestBody{
		Amount:          req.Amount.Decimal().StringFixed(2),
		Currency:        "SGD",
		PaymentMethods:  []string{"paynow_online", "card"},
		Email:           req.Buyer.Email(),
		Name:            req.Buyer.Name(),
		Phone:           req.Buyer.Phone(),
		ReferenceNumber: req.Reference.String(),
		RedirectURL:     redirect,
		Webhook:         c.config.PublicBaseURL + "/api/v1/webhooks/payment",
		Purpose:         req.Purpose,
		SendEmail:       true,
	})
	if err != nil {
		return ports.PaymentSession{}, fmt.Errorf("marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIURL, bytes.NewReader(body))
	if err != nil {
		return ports.PaymentSession{}, fmt.Errorf("create payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-BUSINESS-API-KEY", c.config.APIKey)
	httpReq.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ports.PaymentSession{}, errs.NewProviderError(providerName, createOperation, 0, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return ports.PaymentSession{}, errs.NewProviderError(providerName, createOperation, resp.StatusCode,
			fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(detail))))
	}

	var out paymentRequestResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.PaymentSession{}, errs.NewProviderError(providerName, createOperation, resp.StatusCode,
			fmt.Errorf("decode response: %w", err))
	}
	if out.URL == "" {
		return ports.PaymentSession{}, errs.NewProviderError(providerName, createOperation, resp.StatusCode,
			errors.New("response carries no checkout url"))
	}

	return ports.PaymentSession{ID: out.ID, URL: out.URL}, nil
}

func (c *Client) redirectURL(req ports.PaymentSessionRequest) string {
	return c.config.PublicBaseURL + "/payment/success?orderId=" + url.QueryEscape(req.OrderID.String())
}

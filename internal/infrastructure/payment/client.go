package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/domain"
)

// CheckoutSession is the provider-side half of an order.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client is a thin client for the provider's REST API: hosted checkout
// sessions and refunds. Request bodies are form-encoded per the provider's
// convention.
type Client struct {
	apiKey     string
	baseURL    string
	successURL string
	cancelURL  string
	httpClient *http.Client
}

// ClientConfig holds provider client configuration.
type ClientConfig struct {
	APIKey     string
	BaseURL    string // defaults to the provider's public API host
	SuccessURL string
	CancelURL  string
	Timeout    time.Duration
}

// NewClient creates a provider API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.stripe.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// CreateCheckoutSession opens a hosted checkout session for the order. The
// order correlation keys ride along as session metadata and come back on
// webhook events.
func (c *Client) CreateCheckoutSession(ctx context.Context, order *domain.Order, pkg *domain.Package, email string) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(order.Currency))
	form.Set("line_items[0][price_data][product_data][name]", pkg.Name)
	if pkg.Description != "" {
		form.Set("line_items[0][price_data][product_data][description]", pkg.Description)
	}
	form.Set("line_items[0][price_data][unit_amount]", toMinorUnits(pkg.Price))
	form.Set("line_items[0][quantity]", "1")
	form.Set("client_reference_id", order.ID)
	form.Set("customer_email", email)
	form.Set("success_url", c.successURL+"?order_id="+order.ID)
	form.Set("cancel_url", c.cancelURL+"?order_id="+order.ID)
	form.Set("metadata[order_id]", order.ID)
	form.Set("metadata[account_id]", order.AccountID)
	form.Set("metadata[package_code]", order.PackageCode)
	form.Set("metadata[credits]", order.CreditsPurchased.String())

	var session CheckoutSession
	if err := c.post(ctx, "/v1/checkout/sessions", form, "order_"+order.ID, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// CreateRefund refunds the captured payment behind paymentID.
func (c *Client) CreateRefund(ctx context.Context, paymentID, reason string) error {
	form := url.Values{}
	form.Set("payment_intent", paymentID)
	if reason != "" {
		form.Set("reason", reason)
	}

	return c.post(ctx, "/v1/refunds", form, "refund_"+paymentID, nil)
}

func (c *Client) post(ctx context.Context, path string, form url.Values, idempotencyKey string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payment provider request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("payment provider returned %d: %s", resp.StatusCode, apiErrorMessage(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode provider response: %w", err)
		}
	}

	return nil
}

func apiErrorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil || e.Error.Message == "" {
		return string(body)
	}
	return e.Error.Type + ": " + e.Error.Message
}

// toMinorUnits converts a decimal price to the provider's integer minor
// units (cents).
func toMinorUnits(price decimal.Decimal) string {
	return price.Mul(decimal.NewFromInt(100)).Round(0).String()
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package billing wraps stripe-go: checkout and portal sessions, plus
// webhook verification and the tier changes events imply.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"aistyleguide/internal/models"
)

const requestTimeout = 20 * time.Second

// ErrNotConfigured is returned when no secret key or price is set.
var ErrNotConfigured = errors.New("billing: stripe is not configured")

// Config holds the Stripe credentials and price ids per plan. BaseURL
// overrides the API host and is empty in production.
type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceCore     string
	PriceComplete string
	BaseURL       string
}

// Client calls Stripe through its own stripe-go API client.
type Client struct {
	config Config
	api    *client.API
}

// NewClient creates a client. Missing credentials are reported per call.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = stripe.APIURL
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:    &http.Client{Timeout: requestTimeout},
		URL:           stripe.String(baseURL),
		LeveledLogger: slogLogger{},
	})
	return &Client{
		config: cfg,
		api:    client.New(cfg.SecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend}),
	}
}

// Enabled reports whether checkout can be offered.
func (c *Client) Enabled() bool {
	return c.config.SecretKey != ""
}

// WebhookEnabled reports whether webhook signatures can be verified.
func (c *Client) WebhookEnabled() bool {
	return c.config.WebhookSecret != ""
}

// PriceFor returns the configured price id for a paid plan.
func (c *Client) PriceFor(p models.Plan) (string, error) {
	var price string
	switch p {
	case models.PlanCore:
		price = c.config.PriceCore
	case models.PlanComplete:
		price = c.config.PriceComplete
	default:
		return "", fmt.Errorf("billing: plan %q cannot be purchased", p)
	}
	if price == "" {
		return "", ErrNotConfigured
	}
	return price, nil
}

// CheckoutParams describes a checkout session.
type CheckoutParams struct {
	Plan       models.Plan
	UserID     string
	Email      string
	CustomerID string
	SuccessURL string
	CancelURL  string
}

// CreateCheckoutSession starts a subscription checkout and returns the
// hosted page URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	price, err := c.PriceFor(p.Plan)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		ClientReferenceID: stripe.String(p.UserID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: planMetadata(p),
		},
	}
	params.Context = ctx
	for k, v := range planMetadata(p) {
		params.AddMetadata(k, v)
	}
	if p.CustomerID != "" {
		params.Customer = stripe.String(p.CustomerID)
	} else if p.Email != "" {
		params.CustomerEmail = stripe.String(p.Email)
	}

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return s.URL, nil
}

// CreatePortalSession opens the billing portal for an existing customer.
func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := c.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return s.URL, nil
}

func planMetadata(p CheckoutParams) map[string]string {
	return map[string]string{"plan": string(p.Plan), "user_id": p.UserID}
}

// slogLogger routes stripe-go's request logging through slog.
type slogLogger struct{}

func (slogLogger) Debugf(format string, v ...interface{}) { slog.Debug(fmt.Sprintf(format, v...)) }
func (slogLogger) Infof(format string, v ...interface{})  { slog.Debug(fmt.Sprintf(format, v...)) }
func (slogLogger) Warnf(format string, v ...interface{})  { slog.Warn(fmt.Sprintf(format, v...)) }
func (slogLogger) Errorf(format string, v ...interface{}) { slog.Error(fmt.Sprintf(format, v...)) }

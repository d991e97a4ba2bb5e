package billing

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aistyleguide/internal/models"
)

func TestParseEventSignature(t *testing.T) {
	c := NewClient(Config{WebhookSecret: "whsec"})
	now := time.Now()
	payload := []byte(`{"id":"evt_1","type":"invoice.paid"}`)

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"valid", SignedHeader(payload, "whsec", now), nil},
		{"within tolerance", SignedHeader(payload, "whsec", now.Add(-4*time.Minute)), nil},
		{"stale", SignedHeader(payload, "whsec", now.Add(-6*time.Minute)), ErrStaleSignature},
		{"wrong secret", SignedHeader(payload, "other", now), ErrInvalidSignature},
		{"missing v1", "t=1800000000", ErrInvalidSignature},
		{"garbage", "nonsense", ErrInvalidSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := c.ParseEvent(payload, tt.header)
			if tt.want == nil {
				require.NoError(t, err)
				assert.Equal(t, "evt_1", e.ID)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseEventTamperedPayload(t *testing.T) {
	c := NewClient(Config{WebhookSecret: "whsec"})
	header := SignedHeader([]byte(`{"id":"evt_1"}`), "whsec", time.Now())
	_, err := c.ParseEvent([]byte(`{"id":"evt_2"}`), header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseEventAndTierChange(t *testing.T) {
	c := NewClient(Config{WebhookSecret: "whsec"})
	now := time.Now()

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"client_reference_id":"u-1","customer":"cus_9","metadata":{"plan":"complete"}}}}`)
	e, err := c.ParseEvent(payload, SignedHeader(payload, "whsec", now))
	require.NoError(t, err)

	change, err := TierChangeFor(e)
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, "u-1", change.UserID)
	assert.Equal(t, "cus_9", change.CustomerID)
	assert.Equal(t, models.TierComplete, change.Tier)

	deleted := []byte(`{"id":"evt_2","type":"customer.subscription.deleted","data":{"object":{"customer":"cus_9","metadata":{"user_id":"u-1"}}}}`)
	e, err = c.ParseEvent(deleted, SignedHeader(deleted, "whsec", now))
	require.NoError(t, err)
	change, err = TierChangeFor(e)
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, change.Tier)
	assert.Equal(t, "u-1", change.UserID)
	assert.Equal(t, "cus_9", change.CustomerID)

	change, err = TierChangeFor(&Event{Type: "invoice.paid"})
	assert.NoError(t, err)
	assert.Nil(t, change)
}

func TestTierChangeForRejectsUnpaidCheckout(t *testing.T) {
	c := NewClient(Config{WebhookSecret: "whsec"})
	payload := []byte(`{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"client_reference_id":"u-1","metadata":{"plan":"preview"}}}}`)
	e, err := c.ParseEvent(payload, SignedHeader(payload, "whsec", time.Now()))
	require.NoError(t, err)

	_, err = TierChangeFor(e)
	assert.Error(t, err)

	_, err = TierChangeFor(&Event{Type: "checkout.session.completed"})
	assert.Error(t, err)
}

func TestParseEventNotConfigured(t *testing.T) {
	_, err := NewClient(Config{}).ParseEvent([]byte(`{}`), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateCheckoutSession(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_1","object":"checkout.session","url":"https://checkout.example/cs_1"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{SecretKey: "sk_test", PriceCore: "price_core", BaseURL: srv.URL})
	got, err := c.CreateCheckoutSession(context.Background(), CheckoutParams{
		Plan: models.PlanCore, UserID: "u-1", Email: "a@b.c",
		SuccessURL: "https://x/ok", CancelURL: "https://x/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/cs_1", got)
	assert.Equal(t, "price_core", form.Get("line_items[0][price]"))
	assert.Equal(t, "1", form.Get("line_items[0][quantity]"))
	assert.Equal(t, "subscription", form.Get("mode"))
	assert.Equal(t, "core", form.Get("metadata[plan]"))
	assert.Equal(t, "u-1", form.Get("subscription_data[metadata][user_id]"))
	assert.Equal(t, "u-1", form.Get("client_reference_id"))
	assert.Equal(t, "a@b.c", form.Get("customer_email"))
	assert.Empty(t, form.Get("customer"))
}

func TestCreateCheckoutSessionErrors(t *testing.T) {
	_, err := NewClient(Config{}).CreateCheckoutSession(context.Background(), CheckoutParams{Plan: models.PlanCore})
	assert.ErrorIs(t, err, ErrNotConfigured)

	c := NewClient(Config{SecretKey: "sk", PriceCore: "p"})
	_, err = c.CreateCheckoutSession(context.Background(), CheckoutParams{Plan: models.PlanComplete})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = c.CreateCheckoutSession(context.Background(), CheckoutParams{Plan: models.PlanPreview})
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"No such price","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()
	c = NewClient(Config{SecretKey: "sk", PriceCore: "p", BaseURL: srv.URL})
	_, err = c.CreateCheckoutSession(context.Background(), CheckoutParams{Plan: models.PlanCore})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such price")
}

func TestCreatePortalSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/billing_portal/sessions", r.URL.Path)
		r.ParseForm()
		assert.Equal(t, "cus_1", r.PostForm.Get("customer"))
		assert.Equal(t, "https://x/account", r.PostForm.Get("return_url"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"bps_1","object":"billing_portal.session","url":"https://billing.example/p"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{SecretKey: "sk", BaseURL: srv.URL})
	got, err := c.CreatePortalSession(context.Background(), "cus_1", "https://x/account")
	require.NoError(t, err)
	assert.Equal(t, "https://billing.example/p", got)
}

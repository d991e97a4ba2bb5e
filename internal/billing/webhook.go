package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"aistyleguide/internal/models"
)

// SignatureTolerance is how old a signed webhook may be.
const SignatureTolerance = 5 * time.Minute

var (
	ErrInvalidSignature = errors.New("billing: invalid webhook signature")
	ErrStaleSignature   = errors.New("billing: webhook timestamp outside tolerance")
)

// Event is a verified Stripe event.
type Event = stripe.Event

// ParseEvent verifies the Stripe-Signature header and decodes the body.
func (c *Client) ParseEvent(payload []byte, header string) (*Event, error) {
	if !c.WebhookEnabled() {
		return nil, ErrNotConfigured
	}
	if err := webhook.ValidatePayloadWithTolerance(payload, header, c.config.WebhookSecret, SignatureTolerance); err != nil {
		if errors.Is(err, webhook.ErrTooOld) {
			return nil, ErrStaleSignature
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &e, nil
}

// SignedHeader builds a Stripe-Signature header for payload at the given
// time, as Stripe would send it.
func SignedHeader(payload []byte, secret string, at time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	}).Header
}

// TierChange is the account update an event implies.
type TierChange struct {
	UserID     string
	Email      string
	CustomerID string
	Tier       models.Tier
}

// TierChangeFor maps an event onto a tier update. It returns nil for
// events that do not change a subscription.
func TierChangeFor(e *Event) (*TierChange, error) {
	switch e.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		return checkoutChange(e)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		return cancellationChange(e)
	}
	return nil, nil
}

func checkoutChange(e *Event) (*TierChange, error) {
	var s stripe.CheckoutSession
	if err := decodeObject(e, &s); err != nil {
		return nil, err
	}
	change := &TierChange{
		UserID:     s.ClientReferenceID,
		Email:      s.CustomerEmail,
		CustomerID: customerID(s.Customer),
	}
	if change.UserID == "" {
		change.UserID = s.Metadata["user_id"]
	}
	if change.Email == "" && s.CustomerDetails != nil {
		change.Email = s.CustomerDetails.Email
	}

	raw := s.Metadata["plan"]
	plan, err := models.ParsePlan(raw)
	if err != nil || raw == "" || plan == models.PlanPreview {
		return nil, fmt.Errorf("checkout session without a paid plan: %q", raw)
	}
	change.Tier = models.TierForPlan(plan)
	return change, nil
}

func cancellationChange(e *Event) (*TierChange, error) {
	var s stripe.Subscription
	if err := decodeObject(e, &s); err != nil {
		return nil, err
	}
	return &TierChange{
		UserID:     s.Metadata["user_id"],
		CustomerID: customerID(s.Customer),
		Tier:       models.TierFree,
	}, nil
}

func decodeObject(e *Event, out interface{}) error {
	if e.Data == nil || len(e.Data.Raw) == 0 {
		return fmt.Errorf("decode %s: event has no object", e.Type)
	}
	if err := json.Unmarshal(e.Data.Raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", e.Type, err)
	}
	return nil
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

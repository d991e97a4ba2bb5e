package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"aistyleguide/internal/billing"
	"aistyleguide/internal/models"
)

// maxWebhookBytes caps webhook payloads.
const maxWebhookBytes = 64 << 10

// Subscriptions groups checkout, billing portal and webhook handlers.
type Subscriptions struct {
	billing Billing
	users   UserStore
	account *Account
	siteURL string
}

// NewSubscriptions creates the billing handler group.
func NewSubscriptions(b Billing, users UserStore, account *Account, siteURL string) *Subscriptions {
	return &Subscriptions{
		billing: b,
		users:   users,
		account: account,
		siteURL: strings.TrimRight(siteURL, "/"),
	}
}

type checkoutRequest struct {
	Plan string `json:"plan"`
}

// CreateCheckoutSession starts a hosted checkout for a paid plan.
func (s *Subscriptions) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	if !s.billing.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "Payments are not available right now.")
		return
	}
	var req checkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, err := models.ParsePlan(req.Plan)
	if err != nil || plan == models.PlanPreview {
		writeError(w, http.StatusBadRequest, "Choose the core or complete plan.")
		return
	}

	user, ok := s.account.currentUser(w, r)
	if !ok {
		return
	}
	if user.Tier().Allows(plan) {
		writeError(w, http.StatusConflict, "Your subscription already includes this plan.")
		return
	}

	params := billing.CheckoutParams{
		Plan:       plan,
		UserID:     user.ID.String(),
		Email:      user.Email,
		SuccessURL: s.siteURL + "/?checkout=success&plan=" + string(plan),
		CancelURL:  s.siteURL + "/?checkout=cancelled",
	}
	if user.StripeCustomerID != nil {
		params.CustomerID = *user.StripeCustomerID
	}

	url, err := s.billing.CreateCheckoutSession(r.Context(), params)
	if errors.Is(err, billing.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, "Payments are not available right now.")
		return
	}
	if err != nil {
		slog.Error("create checkout session failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusBadGateway, "Could not start checkout. Please try again.")
		return
	}
	writeSuccess(w, map[string]any{"url": url})
}

// CreatePortalSession opens the billing portal for a paying customer.
func (s *Subscriptions) CreatePortalSession(w http.ResponseWriter, r *http.Request) {
	if !s.billing.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "Payments are not available right now.")
		return
	}
	user, ok := s.account.currentUser(w, r)
	if !ok {
		return
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		writeError(w, http.StatusBadRequest, "There is no subscription to manage yet.")
		return
	}

	url, err := s.billing.CreatePortalSession(r.Context(), *user.StripeCustomerID, s.siteURL+"/")
	if err != nil {
		slog.Error("create portal session failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusBadGateway, "Could not open the billing portal. Please try again.")
		return
	}
	writeSuccess(w, map[string]any{"url": url})
}

// Webhook applies subscription changes sent by the payment provider.
// Events for unknown users are acknowledged so they are not redelivered.
func (s *Subscriptions) Webhook(w http.ResponseWriter, r *http.Request) {
	if !s.billing.WebhookEnabled() {
		writeError(w, http.StatusServiceUnavailable, "Webhooks are not configured.")
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Payload too large.")
		return
	}

	event, err := s.billing.ParseEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		slog.Warn("webhook rejected", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid webhook signature.")
		return
	}

	change, err := billing.TierChangeFor(event)
	if err != nil {
		slog.Warn("webhook event ignored", "error", err, "event_id", event.ID, "type", event.Type)
		writeSuccess(w, map[string]any{"received": true})
		return
	}
	if change == nil {
		writeSuccess(w, map[string]any{"received": true})
		return
	}

	user, err := s.webhookUser(change)
	if err != nil {
		slog.Error("webhook user lookup failed", "error", err, "event_id", event.ID)
		writeError(w, http.StatusInternalServerError, "Lookup failed.")
		return
	}
	if user == nil {
		slog.Warn("webhook for unknown user", "event_id", event.ID, "type", event.Type, "customer", change.CustomerID)
		writeSuccess(w, map[string]any{"received": true})
		return
	}

	if err := s.users.SetSubscription(user.ID, change.Tier, change.CustomerID); err != nil {
		slog.Error("apply subscription change failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Update failed.")
		return
	}
	slog.Info("subscription updated", "user_id", user.ID, "tier", change.Tier, "event_id", event.ID)
	writeSuccess(w, map[string]any{"received": true})
}

// webhookUser resolves the account an event refers to, by user id first
// and payment customer id second.
func (s *Subscriptions) webhookUser(c *billing.TierChange) (*models.User, error) {
	if id, err := uuid.Parse(c.UserID); err == nil {
		u, err := s.users.FindByID(id)
		if err != nil || u != nil {
			return u, err
		}
	}
	if c.CustomerID != "" {
		return s.users.FindByStripeCustomer(c.CustomerID)
	}
	return nil, nil
}

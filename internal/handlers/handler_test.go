package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"aistyleguide/internal/ai"
	"aistyleguide/internal/middleware"
	"aistyleguide/internal/models"
	"aistyleguide/internal/session"
	"aistyleguide/internal/state"
	"aistyleguide/internal/store"
	"aistyleguide/internal/styleguide"
)

// --- fakes ---

type fakeGuides struct {
	result    *styleguide.Result
	err       error
	gotPlan   models.Plan
	gotCached *models.TraitCache
	rewrite   string
	ttl       time.Duration
}

func (f *fakeGuides) Preview(_ context.Context, _ models.BrandDetails) (*styleguide.Result, error) {
	return f.result, f.err
}

func (f *fakeGuides) Generate(_ context.Context, _ models.BrandDetails, plan models.Plan, cached *models.TraitCache) (*styleguide.Result, error) {
	f.gotPlan = plan
	f.gotCached = cached
	return f.result, f.err
}

func (f *fakeGuides) TraitTTL() time.Duration { return f.ttl }

func (f *fakeGuides) RewriteSection(_ context.Context, _ models.BrandDetails, _, _ string) (string, error) {
	return f.rewrite, f.err
}

type fakeExtractor struct {
	brand   models.BrandDetails
	err     error
	fromURL bool
}

func (f *fakeExtractor) FromURL(_ context.Context, _ string) (models.BrandDetails, error) {
	f.fromURL = true
	return f.brand, f.err
}

func (f *fakeExtractor) FromDescription(_ context.Context, _ string) (models.BrandDetails, error) {
	return f.brand, f.err
}

type fakeRegistry struct {
	active    string
	available map[string]bool
	flagged   []string
}

func (f *fakeRegistry) ActiveName() string  { return f.active }
func (f *fakeRegistry) ActiveModel() string { return "test-model" }
func (f *fakeRegistry) Available() []string {
	var out []string
	for n := range f.available {
		out = append(out, n)
	}
	return out
}
func (f *fakeRegistry) HasProvider(name string) bool { return f.available[name] }
func (f *fakeRegistry) SetActive(name string) error {
	if !f.available[name] {
		return errors.New("not available")
	}
	f.active = name
	return nil
}
func (f *fakeRegistry) CheckPrompt(_ context.Context, _ string) (*ai.ModerationResult, error) {
	if len(f.flagged) > 0 {
		return &ai.ModerationResult{Safe: false, Categories: f.flagged}, nil
	}
	return &ai.ModerationResult{Safe: true}, nil
}

type fakeSessions struct {
	created   *session.Data
	updated   *session.Data
	destroyed bool
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	f.created = data
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "sid"})
	return "sid", nil
}
func (f *fakeSessions) Get(context.Context, *http.Request) (*session.Data, error) { return f.created, nil }
func (f *fakeSessions) Update(_ context.Context, _ *http.Request, data *session.Data) error {
	f.updated = data
	return nil
}
func (f *fakeSessions) Destroy(context.Context, http.ResponseWriter, *http.Request) error {
	f.destroyed = true
	return nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[uuid.UUID]*models.User{}} }

func (f *fakeUsers) add(email, password string, role models.Role, tier models.Tier) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &models.User{
		ID:               uuid.New(),
		Email:            email,
		PasswordHash:     string(hash),
		DisplayName:      strings.Split(email, "@")[0],
		Role:             role,
		SubscriptionTier: tier,
	}
	f.mu.Lock()
	f.users[u.ID] = u
	f.mu.Unlock()
	return u
}

func (f *fakeUsers) FindByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeUsers) FindByID(id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}
func (f *fakeUsers) FindByStripeCustomer(customerID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.StripeCustomerID != nil && *u.StripeCustomerID == customerID {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeUsers) Create(email, password, displayName string, role models.Role) (*models.User, error) {
	if u, _ := f.FindByEmail(email); u != nil {
		return nil, store.ErrEmailTaken
	}
	u := f.add(strings.ToLower(email), password, role, models.TierFree)
	u.DisplayName = displayName
	return u, nil
}
func (f *fakeUsers) SetTOTPSecret(userID uuid.UUID, secret string) error {
	f.users[userID].TOTPSecret = &secret
	return nil
}
func (f *fakeUsers) EnableTOTP(userID uuid.UUID) error {
	f.users[userID].TOTPEnabled = true
	return nil
}
func (f *fakeUsers) SetSubscription(userID uuid.UUID, tier models.Tier, customerID string) error {
	u := f.users[userID]
	u.SubscriptionTier = tier
	if customerID != "" {
		u.StripeCustomerID = &customerID
	}
	return nil
}
func (f *fakeUsers) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

type fakeGuideStore struct {
	guides map[uuid.UUID]*models.StyleGuide
}

func newFakeGuideStore() *fakeGuideStore {
	return &fakeGuideStore{guides: map[uuid.UUID]*models.StyleGuide{}}
}

func (f *fakeGuideStore) Save(g *models.StyleGuide) (*models.StyleGuide, error) {
	out := *g
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
		out.CreatedAt = time.Now()
	} else if prev, ok := f.guides[out.ID]; !ok || prev.UserID != out.UserID {
		return nil, nil
	}
	out.UpdatedAt = time.Now()
	f.guides[out.ID] = &out
	return &out, nil
}
func (f *fakeGuideStore) FindForUser(id, userID uuid.UUID) (*models.StyleGuide, error) {
	if g, ok := f.guides[id]; ok && g.UserID == userID {
		return g, nil
	}
	return nil, nil
}
func (f *fakeGuideStore) LatestForUser(userID uuid.UUID) (*models.StyleGuide, error) {
	var latest *models.StyleGuide
	for _, g := range f.guides {
		if g.UserID == userID && (latest == nil || g.UpdatedAt.After(latest.UpdatedAt)) {
			latest = g
		}
	}
	return latest, nil
}

type fakeLog struct {
	entries []models.GenerationLog
}

func (f *fakeLog) Log(e models.GenerationLog) { f.entries = append(f.entries, e) }
func (f *fakeLog) Recent(limit int) ([]models.GenerationLog, error) {
	out := make([]models.GenerationLog, 0, limit)
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

// --- helpers ---

func validBrand() models.BrandDetails {
	return models.BrandDetails{
		Name:        "Acme",
		Description: "Acme makes rocket skates for discerning coyotes.",
		Audience:    "Desert predators",
		Traits:      []string{"Witty", "Direct", "Confident"},
	}
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// withSession simulates the state after LoadSession has run.
func withSession(r *http.Request, data *session.Data) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, data))
}

func customerSession(u *models.User) *session.Data {
	return &session.Data{UserID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Role: string(u.Role)}
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func clientCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == state.ClientCookie {
			return c
		}
	}
	return nil
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aistyleguide/internal/models"
	"aistyleguide/internal/session"
)

func TestSignup(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{"valid", map[string]string{"email": "new@example.com", "password": "longenough"}, http.StatusOK},
		{"duplicate", map[string]string{"email": "taken@example.com", "password": "longenough"}, http.StatusConflict},
		{"bad email", map[string]string{"email": "nope", "password": "longenough"}, http.StatusBadRequest},
		{"short password", map[string]string{"email": "a@example.com", "password": "short"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUsers()
			users.add("taken@example.com", "whatever1", models.RoleCustomer, models.TierFree)
			sessions := &fakeSessions{}
			a := NewAccount(sessions, users, newFakeGuideStore())

			rr := httptest.NewRecorder()
			a.Signup(rr, httptest.NewRequest(http.MethodPost, "/api/auth/signup", jsonBody(t, tt.body)))

			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, sessions.created)
				assert.Equal(t, "customer", sessions.created.Role)
				assert.True(t, sessions.created.Authenticated())
				user := decodeResponse(t, rr)["user"].(map[string]any)
				assert.Equal(t, "free", user["subscriptionTier"])
				assert.Equal(t, "new", user["displayName"])
			} else {
				assert.Nil(t, sessions.created)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	users := newFakeUsers()
	users.add("c@example.com", "correct-horse", models.RoleCustomer, models.TierCore)
	users.add("admin@example.com", "correct-horse", models.RoleAdmin, models.TierFree)

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		{"valid", "c@example.com", "correct-horse", http.StatusOK},
		{"case insensitive email", "C@Example.com", "correct-horse", http.StatusOK},
		{"wrong password", "c@example.com", "battery-staple", http.StatusUnauthorized},
		{"unknown user", "who@example.com", "correct-horse", http.StatusUnauthorized},
		{"admin must use admin login", "admin@example.com", "correct-horse", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAccount(&fakeSessions{}, users, nil)
			rr := httptest.NewRecorder()
			a.Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(t, map[string]string{
				"email": tt.email, "password": tt.password,
			})))
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
		})
	}
}

func TestLogout(t *testing.T) {
	sessions := &fakeSessions{}
	a := NewAccount(sessions, newFakeUsers(), nil)
	rr := httptest.NewRecorder()
	a.Logout(rr, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, sessions.destroyed)
}

func TestSubscriptionTier(t *testing.T) {
	users := newFakeUsers()
	u := users.add("c@example.com", "password1", models.RoleCustomer, models.TierComplete)
	a := NewAccount(&fakeSessions{}, users, nil)

	rr := httptest.NewRecorder()
	a.SubscriptionTier(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/user-subscription-tier", nil), customerSession(u)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "complete", decodeResponse(t, rr)["tier"])

	rr = httptest.NewRecorder()
	a.SubscriptionTier(rr, httptest.NewRequest(http.MethodGet, "/api/user-subscription-tier", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSaveAndLoadStyleGuide(t *testing.T) {
	users := newFakeUsers()
	owner := users.add("owner@example.com", "password1", models.RoleCustomer, models.TierCore)
	other := users.add("other@example.com", "password1", models.RoleCustomer, models.TierCore)
	guides := newFakeGuideStore()
	a := NewAccount(&fakeSessions{}, users, guides)

	save := func(sess *session.Data, body map[string]any) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		a.SaveStyleGuide(rr, withSession(httptest.NewRequest(http.MethodPost, "/api/save-style-guide", jsonBody(t, body)), sess))
		return rr
	}

	rr := save(customerSession(owner), map[string]any{"plan": "core", "brandDetails": validBrand(), "content": "# First"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	id := decodeResponse(t, rr)["id"].(string)

	// Last write wins.
	rr = save(customerSession(owner), map[string]any{"id": id, "plan": "core", "content": "# Second"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Another user cannot overwrite it.
	rr = save(customerSession(other), map[string]any{"id": id, "plan": "core", "content": "# Hijack"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.Equal(t, http.StatusBadRequest, save(customerSession(owner), map[string]any{"content": " "}).Code)

	rr = httptest.NewRecorder()
	a.LoadStyleGuide(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/load-style-guide?id="+id, nil), customerSession(owner)))
	require.Equal(t, http.StatusOK, rr.Code)
	guide := decodeResponse(t, rr)["styleGuide"].(map[string]any)
	assert.Equal(t, "# Second", guide["content"])
	assert.Equal(t, "Style Guide", guide["title"])

	rr = httptest.NewRecorder()
	a.LoadStyleGuide(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/load-style-guide?id="+id, nil), customerSession(other)))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	a.LoadStyleGuide(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/load-style-guide?id=nope", nil), customerSession(owner)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testValkey connects to the test Valkey on DB 15 and skips when it is
// not reachable.
func testValkey(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("VALKEY_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("VALKEY_PASSWORD"), DB: 15})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("valkey not reachable: %v", err)
	}
	t.Cleanup(func() {
		if keys, _ := client.Keys(ctx, keyPrefix+"*").Result(); len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

// requestWith returns a request carrying the cookie set on w.
func requestWith(t *testing.T, w *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			r.AddCookie(c)
			return r
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestCreateGetUpdateDestroy(t *testing.T) {
	store := NewStore(testValkey(t), true)
	ctx := context.Background()
	userID := uuid.New()

	w := httptest.NewRecorder()
	id, err := store.Create(ctx, w, &Data{UserID: userID, Email: "admin@example.com", Role: "admin"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	cookie := w.Result().Cookies()[0]
	assert.Equal(t, id, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	r := requestWith(t, w)
	got, err := store.Get(ctx, r)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, userID, got.UserID)
	assert.False(t, got.Authenticated(), "admin without TOTP is pending")

	got.TwoFADone = true
	require.NoError(t, store.Update(ctx, r, got))
	got, err = store.Get(ctx, r)
	require.NoError(t, err)
	assert.True(t, got.Authenticated())

	dw := httptest.NewRecorder()
	require.NoError(t, store.Destroy(ctx, dw, r))
	assert.Equal(t, -1, dw.Result().Cookies()[0].MaxAge)
	got, err = store.Get(ctx, r)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetWithoutOrUnknownCookie(t *testing.T) {
	store := NewStore(testValkey(t), false)
	ctx := context.Background()

	got, err := store.Get(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Nil(t, got)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "does-not-exist"})
	got, err = store.Get(ctx, r)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateAndDestroyWithoutCookie(t *testing.T) {
	store := NewStore(testValkey(t), false)
	ctx := context.Background()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.ErrorIs(t, store.Update(ctx, r, &Data{}), ErrNoSession)
	assert.NoError(t, store.Destroy(ctx, httptest.NewRecorder(), r))
}

func TestDataAuthenticated(t *testing.T) {
	tests := []struct {
		name string
		data *Data
		want bool
	}{
		{"nil", nil, false},
		{"customer", &Data{Role: "customer"}, true},
		{"pending admin", &Data{Role: "admin"}, false},
		{"verified admin", &Data{Role: "admin", TwoFADone: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.data.Authenticated())
		})
	}
	assert.False(t, (*Data)(nil).IsAdmin())
}

func TestNewIDIsRandom(t *testing.T) {
	a, err := newID()
	require.NoError(t, err)
	b, err := newID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
}

package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"medihealth-portal/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.AuthConfig{BaseURL: srv.URL, AnonKey: "anon-key"}, zap.NewNop())
}

func TestCurrentIdentity_NotConfigured(t *testing.T) {
	c := New(config.AuthConfig{}, zap.NewNop())

	_, err := c.CurrentIdentity(context.Background(), "some-token")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCurrentIdentity_EmptyTokenMeansNoSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty token")
	})

	identity, err := c.CurrentIdentity(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestCurrentIdentity_ValidToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "user-1", "email": "a@b.c"})
	})

	identity, err := c.CurrentIdentity(context.Background(), "tok-abc")
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "user-1", identity.ID)
	assert.Equal(t, "a@b.c", identity.Email)
}

func TestCurrentIdentity_ExpiredTokenIsNoSessionNotError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	identity, err := c.CurrentIdentity(context.Background(), "expired")
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestCurrentIdentity_ServerErrorIsUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.CurrentIdentity(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCurrentIdentity_TransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 立即关掉，制造连接拒绝

	c := New(config.AuthConfig{BaseURL: srv.URL, AnonKey: "anon-key"}, zap.NewNop())

	_, err := c.CurrentIdentity(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnavailable)
}

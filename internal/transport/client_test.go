package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/canonmap/pkg/errors"
)

func TestGetJSONAppliesBearerAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New("acme", srv.URL, "secret-token", nil)

	var out struct {
		OK bool `json:"ok"`
	}
	err := c.GetJSON(context.Background(), "/api/meta/types/typedefs", &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestGetJSONMapsStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"not found", http.StatusNotFound, errors.ErrFeatureNotEnabled},
		{"unauthorized", http.StatusUnauthorized, errors.ErrCredentialInvalid},
		{"rate limited", http.StatusTooManyRequests, errors.ErrRateLimited},
		{"server error", http.StatusServiceUnavailable, errors.ErrTenantUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			c := New("acme", srv.URL, "token", nil)
			err := c.GetJSON(context.Background(), "/whatever", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestPostJSONRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"approximateCount": 7}`))
	}))
	defer srv.Close()

	c := New("acme", srv.URL, "token", nil)

	var out struct {
		ApproximateCount int64 `json:"approximateCount"`
	}
	err := c.PostJSON(context.Background(), "/api/meta/search/indexsearch", map[string]any{"size": 0}, &out)
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.ApproximateCount)
}

func TestHeaderAuth(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Api-Token")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New("acme", srv.URL, "tok", &HeaderAuth{Header: "X-Api-Token"})
	require.NoError(t, c.GetJSON(context.Background(), "/x", nil))
	assert.Equal(t, "tok", got)
}

func TestBaseURLTrimsTrailingSlash(t *testing.T) {
	c := New("acme", "https://acme.example.com/", "tok", nil)
	assert.Equal(t, "https://acme.example.com", c.BaseURL())
}

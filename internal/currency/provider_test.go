package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/importcalc/internal/apperr"
)

func TestHTTPProviderFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"result": "success",
			"base_code": "EUR",
			"time_last_update_utc": "Fri, 17 Oct 2025 00:02:31 +0000",
			"rates": {"EUR": 1, "AED": 4.2713, "USD": 1.1631, "GBP": 0.87}
		}`))
	}))
	defer srv.Close()

	snap, err := NewHTTPProvider(srv.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4.2713, snap.EURToAED)
	assert.Equal(t, 1.1631, snap.EURToUSD)
	assert.Equal(t, "Fri, 17 Oct 2025 00:02:31 +0000", snap.UpdatedAt)
	assert.Equal(t, SourceLive, snap.Source)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestHTTPProviderErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   apperr.Kind
	}{
		{"server error", http.StatusInternalServerError, `{}`, apperr.KindUnavailable},
		{"provider error result", http.StatusOK, `{"result":"error","error-type":"quota-reached"}`, apperr.KindUnavailable},
		{"not json", http.StatusOK, `<html>`, apperr.KindMalformedResponse},
		{"missing AED", http.StatusOK, `{"result":"success","base_code":"EUR","rates":{"USD":1.1}}`, apperr.KindMalformedResponse},
		{"wrong base", http.StatusOK, `{"result":"success","base_code":"USD","rates":{"AED":3.67,"USD":1}}`, apperr.KindMalformedResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewHTTPProvider(srv.URL, time.Second).Fetch(context.Background())
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
		})
	}
}

func TestHTTPProviderTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTPProvider(srv.URL, 50*time.Millisecond).Fetch(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindUnavailable), "err=%v", err)
}

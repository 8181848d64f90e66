package exchange_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/discogs-alert/internal/exchange"
	"github.com/donaldgifford/discogs-alert/pkg/currency"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

func TestClient_Rates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		base       string
		handler    http.HandlerFunc
		wantErr    error
		errContain string
		checkFunc  func(t *testing.T, rates currency.Rates)
	}{
		{
			name: "returns rate table",
			base: "eur",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/latest", r.URL.Path)
				assert.Equal(t, "EUR", r.URL.Query().Get("base"))
				_, _ = w.Write([]byte(`{"base": "EUR", "rates": {"GBP": 0.85, "USD": 1.08, "EUR": 1}}`))
			},
			checkFunc: func(t *testing.T, rates currency.Rates) {
				t.Helper()
				assert.InDelta(t, 0.85, rates["GBP"], 1e-9)
				assert.InDelta(t, 1.08, rates["USD"], 1e-9)
				assert.InDelta(t, 1.0, rates["EUR"], 1e-9)
			},
		},
		{
			name: "adds base when omitted",
			base: "GBP",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"rates": {"EUR": 1.17}}`))
			},
			checkFunc: func(t *testing.T, rates currency.Rates) {
				t.Helper()
				assert.InDelta(t, 1.0, rates["GBP"], 1e-9)
			},
		},
		{
			name:    "unsupported base",
			base:    "ARS",
			handler: func(_ http.ResponseWriter, _ *http.Request) { t.Error("unexpected request") },
			wantErr: currency.ErrUnsupportedCurrency,
		},
		{
			name: "missing rates",
			base: "EUR",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"success": false}`))
			},
			wantErr: exchange.ErrMalformedResponse,
		},
		{
			name: "not json",
			base: "EUR",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			wantErr: exchange.ErrMalformedResponse,
		},
		{
			name: "server error",
			base: "EUR",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			errContain: "rate service error (status 503)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			t.Cleanup(srv.Close)

			rates, err := exchange.New(srv.URL).Rates(context.Background(), tt.base)
			switch {
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errContain != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
			default:
				require.NoError(t, err)
				tt.checkFunc(t, rates)
			}
		})
	}
}

func TestClient_Rates_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := exchange.New(url).Rates(context.Background(), "EUR")
	require.Error(t, err)
	assert.True(t, domain.IsConnectivity(err))
	assert.Contains(t, err.Error(), "requesting EUR rates")
}

func TestClient_WithConverter(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"rates": {"GBP": 0.85, "EUR": 1}}`))
	}))
	t.Cleanup(srv.Close)

	conv := currency.NewConverter(exchange.New(srv.URL))
	v, err := conv.Convert(context.Background(), 10, "GBP", "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 11.76, v, 0.01)
}

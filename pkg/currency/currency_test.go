package currency_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/discogs-alert/pkg/currency"
	"github.com/donaldgifford/discogs-alert/pkg/currency/mocks"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

var eurRates = currency.Rates{"EUR": 1, "GBP": 0.85, "USD": 1.1, "JPY": 160}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "upper", input: "EUR", want: "EUR"},
		{name: "lower", input: "gbp", want: "GBP"},
		{name: "padded", input: " usd ", want: "USD"},
		{name: "valid iso not quoted", input: "ARS", wantErr: true},
		{name: "not iso", input: "XYZW", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := currency.Normalize(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, currency.ErrUnsupportedCurrency)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSupportedCodes(t *testing.T) {
	t.Parallel()

	codes := currency.SupportedCodes()
	assert.Len(t, codes, 33)
	assert.IsIncreasing(t, codes)
	for _, iso := range currency.Symbols {
		assert.True(t, currency.IsSupported(iso), iso)
	}
}

func TestConverter_Rates_Unsupported(t *testing.T) {
	t.Parallel()

	rp := mocks.NewMockRateProvider(t)
	c := currency.NewConverter(rp)

	_, err := c.Rates(context.Background(), "ARS")
	require.ErrorIs(t, err, currency.ErrUnsupportedCurrency)
}

func TestConverter_Rates_CachesWithinTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var hits, misses int

	rp := mocks.NewMockRateProvider(t)
	rp.EXPECT().Rates(mock.Anything, "EUR").Return(eurRates, nil).Twice()

	c := currency.NewConverter(rp,
		currency.WithNowFunc(func() time.Time { return now }),
		currency.WithCacheObserver(func(hit bool) {
			if hit {
				hits++
			} else {
				misses++
			}
		}),
	)

	ctx := context.Background()
	_, err := c.Rates(ctx, "EUR")
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = c.Rates(ctx, "EUR")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = c.Rates(ctx, "EUR")
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
}

func TestConverter_Rates_ConcurrentCallersShareFetch(t *testing.T) {
	t.Parallel()

	rp := mocks.NewMockRateProvider(t)
	rp.EXPECT().Rates(mock.Anything, "EUR").Return(eurRates, nil).Once()

	c := currency.NewConverter(rp)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Rates(context.Background(), "EUR")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestConverter_Rates_ProviderError(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	rp := mocks.NewMockRateProvider(t)
	rp.EXPECT().Rates(mock.Anything, "EUR").Return(nil, errors.New("boom")).Once()
	rp.EXPECT().Rates(mock.Anything, "EUR").Return(eurRates, nil).Once()

	c := currency.NewConverter(rp,
		currency.WithFailureTTL(30*time.Second),
		currency.WithNowFunc(func() time.Time { return now }),
	)
	ctx := context.Background()

	_, err := c.Rates(ctx, "EUR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching EUR rates")

	// Within the failure window the error is replayed without a fetch.
	now = now.Add(10 * time.Second)
	_, err = c.Rates(ctx, "EUR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	now = now.Add(30 * time.Second)
	got, err := c.Rates(ctx, "EUR")
	require.NoError(t, err)
	assert.Equal(t, eurRates, got)
}

func TestConverter_Rates_FailureCacheDisabled(t *testing.T) {
	t.Parallel()

	rp := mocks.NewMockRateProvider(t)
	rp.EXPECT().Rates(mock.Anything, "EUR").Return(nil, errors.New("boom")).Once()
	rp.EXPECT().Rates(mock.Anything, "EUR").Return(eurRates, nil).Once()

	c := currency.NewConverter(rp, currency.WithFailureTTL(0))

	_, err := c.Rates(context.Background(), "EUR")
	require.Error(t, err)

	got, err := c.Rates(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, eurRates, got)
}

func TestConverter_Rates_CanceledFetchNotCached(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rp := mocks.NewMockRateProvider(t)
	rp.EXPECT().Rates(mock.Anything, "EUR").Return(nil, context.Canceled).Once()
	rp.EXPECT().Rates(mock.Anything, "EUR").Return(eurRates, nil).Once()

	c := currency.NewConverter(rp)

	_, err := c.Rates(ctx, "EUR")
	require.ErrorIs(t, err, context.Canceled)

	got, err := c.Rates(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, eurRates, got)
}

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   float64
		from    string
		want    float64
		wantErr bool
	}{
		{name: "gbp to eur", value: 10, from: "GBP", want: 11.76},
		{name: "usd to eur", value: 11, from: "USD", want: 10},
		{name: "identity", value: 42, from: "EUR", want: 42},
		{name: "missing rate", value: 10, from: "CHF", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rp := mocks.NewMockRateProvider(t)
			rp.EXPECT().Rates(mock.Anything, "EUR").Return(eurRates, nil).Maybe()
			c := currency.NewConverter(rp)

			got, err := c.Convert(context.Background(), tt.value, tt.from, "EUR")
			if tt.wantErr {
				require.ErrorIs(t, err, currency.ErrUnsupportedCurrency)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, domain.RoundPrice(got), 1e-9)
		})
	}
}

func TestConverter_Convert_NonPositiveRate(t *testing.T) {
	t.Parallel()

	rp := mocks.NewMockRateProvider(t)
	rp.EXPECT().Rates(mock.Anything, "EUR").Return(currency.Rates{"GBP": 0}, nil)
	c := currency.NewConverter(rp)

	_, err := c.Convert(context.Background(), 10, "GBP", "EUR")
	require.ErrorIs(t, err, currency.ErrUnsupportedCurrency)
}

func TestConverter_InverseRoundTrip(t *testing.T) {
	t.Parallel()

	rp := mocks.NewMockRateProvider(t)
	rp.EXPECT().Rates(mock.Anything, "EUR").Return(eurRates, nil)
	rp.EXPECT().Rates(mock.Anything, "GBP").Return(currency.Rates{"EUR": 1 / 0.85, "GBP": 1}, nil)
	c := currency.NewConverter(rp)
	ctx := context.Background()

	eur, err := c.Convert(ctx, 10, "GBP", "EUR")
	require.NoError(t, err)
	back, err := c.Convert(ctx, eur, "EUR", "GBP")
	require.NoError(t, err)
	assert.InDelta(t, 10, back, 1e-9)
}

func TestConverter_ConvertPrice(t *testing.T) {
	t.Parallel()

	rp := mocks.NewMockRateProvider(t)
	rp.EXPECT().Rates(mock.Anything, "EUR").Return(eurRates, nil)
	c := currency.NewConverter(rp)
	ctx := context.Background()

	in := domain.ListingPrice{
		Currency: "GBP",
		Value:    10,
		Shipping: &domain.ShippingPrice{Currency: "USD", Value: 11},
	}

	got, err := c.ConvertPrice(ctx, in, "EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", got.Currency)
	require.NotNil(t, got.Shipping)
	assert.Equal(t, "EUR", got.Shipping.Currency)
	assert.InDelta(t, 11.76, domain.RoundPrice(got.Value), 1e-9)
	assert.InDelta(t, 10, got.Shipping.Value, 1e-9)
	assert.True(t, got.Normalized())

	// The input is untouched.
	assert.Equal(t, "GBP", in.Currency)
	assert.Equal(t, "USD", in.Shipping.Currency)

	// Converting an already normalized price is a no-op.
	again, err := c.ConvertPrice(ctx, got, "EUR")
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestConverter_ConvertPrice_Errors(t *testing.T) {
	t.Parallel()

	rp := mocks.NewMockRateProvider(t)
	rp.EXPECT().Rates(mock.Anything, "EUR").Return(eurRates, nil)
	c := currency.NewConverter(rp)
	ctx := context.Background()

	_, err := c.ConvertPrice(ctx, domain.ListingPrice{Currency: "CHF", Value: 1}, "EUR")
	require.ErrorIs(t, err, currency.ErrUnsupportedCurrency)
	assert.Contains(t, err.Error(), "item price")

	_, err = c.ConvertPrice(ctx, domain.ListingPrice{
		Currency: "EUR",
		Value:    1,
		Shipping: &domain.ShippingPrice{Currency: "CHF", Value: 2},
	}, "EUR")
	require.ErrorIs(t, err, currency.ErrUnsupportedCurrency)
	assert.Contains(t, err.Error(), "shipping price")
}

package filter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/discogs-alert/pkg/currency"
	"github.com/donaldgifford/discogs-alert/pkg/currency/mocks"
	"github.com/donaldgifford/discogs-alert/pkg/filter"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func baseCriteria() filter.Criteria {
	return filter.Criteria{
		Country:  "Germany",
		Currency: "EUR",
		Seller: domain.SellerFilters{
			MinSellerRating: ptr(99.0),
		},
		Record: domain.RecordFilters{
			MinMediaCondition:  ptr(domain.VeryGoodPlus),
			MinSleeveCondition: ptr(domain.VeryGoodPlus),
		},
	}
}

func goodListing() domain.Listing {
	return domain.Listing{
		ID:               1001,
		MediaCondition:   domain.NearMint,
		SleeveCondition:  domain.VeryGoodPlus,
		SellerName:       "vinylhub",
		SellerNumRatings: 1234,
		SellerAvgRating:  ptr(99.8),
		SellerShipsFrom:  "Germany",
		Price: domain.ListingPrice{
			Currency: "EUR",
			Value:    20,
			Shipping: &domain.ShippingPrice{Currency: "EUR", Value: 5},
		},
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		listing  func(*domain.Listing)
		release  domain.Release
		criteria func(*filter.Criteria)
		want     filter.Reason
	}{
		{
			name: "accepted",
			want: filter.ReasonNone,
		},
		{
			name:    "unavailable in buyer country",
			listing: func(l *domain.Listing) { l.Availability = "Unavailable in Germany" },
			want:    filter.ReasonUnavailable,
		},
		{
			name:    "unavailable elsewhere is fine",
			listing: func(l *domain.Listing) { l.Availability = "Unavailable in France" },
			want:    filter.ReasonNone,
		},
		{
			name:     "not in whitelist",
			listing:  func(l *domain.Listing) { l.SellerShipsFrom = "Japan" },
			criteria: func(c *filter.Criteria) { c.CountryWhitelist = filter.CountrySet("Germany", "France") },
			want:     filter.ReasonCountryNotWhitelisted,
		},
		{
			name:     "blacklisted",
			listing:  func(l *domain.Listing) { l.SellerShipsFrom = "US" },
			criteria: func(c *filter.Criteria) { c.CountryBlacklist = filter.CountrySet("US") },
			want:     filter.ReasonCountryBlacklisted,
		},
		{
			name:    "whitelist checked before blacklist",
			listing: func(l *domain.Listing) { l.SellerShipsFrom = "US" },
			criteria: func(c *filter.Criteria) {
				c.CountryWhitelist = filter.CountrySet("Germany")
				c.CountryBlacklist = filter.CountrySet("US")
			},
			want: filter.ReasonCountryNotWhitelisted,
		},
		{
			name:    "rating below minimum",
			listing: func(l *domain.Listing) { l.SellerAvgRating = ptr(98.5) },
			want:    filter.ReasonSellerRating,
		},
		{
			name: "new seller is exempt from rating",
			listing: func(l *domain.Listing) {
				l.SellerAvgRating = nil
				l.SellerNumRatings = 0
			},
			want: filter.ReasonNone,
		},
		{
			name:     "not enough sales",
			listing:  func(l *domain.Listing) { l.SellerNumRatings = 4 },
			criteria: func(c *filter.Criteria) { c.Seller.MinSellerSales = ptr(5) },
			want:     filter.ReasonSellerSales,
		},
		{
			name:    "media below minimum",
			listing: func(l *domain.Listing) { l.MediaCondition = domain.VeryGood },
			want:    filter.ReasonMediaCondition,
		},
		{
			name:    "media override lowers minimum",
			listing: func(l *domain.Listing) { l.MediaCondition = domain.Good },
			release: domain.Release{MinMediaCondition: ptr(domain.Good)},
			want:    filter.ReasonNone,
		},
		{
			name:    "no minimum configured",
			listing: func(l *domain.Listing) { l.MediaCondition = domain.Poor },
			criteria: func(c *filter.Criteria) {
				c.Record.MinMediaCondition = nil
			},
			want: filter.ReasonNone,
		},
		{
			name:    "sleeve below minimum",
			listing: func(l *domain.Listing) { l.SleeveCondition = domain.VeryGood },
			want:    filter.ReasonSleeveCondition,
		},
		{
			name:     "generic sleeve accepted",
			listing:  func(l *domain.Listing) { l.SleeveCondition = domain.Generic },
			criteria: func(c *filter.Criteria) { c.Record.AcceptGenericSleeve = true },
			want:     filter.ReasonNone,
		},
		{
			name:    "generic sleeve rejected",
			listing: func(l *domain.Listing) { l.SleeveCondition = domain.Generic },
			want:    filter.ReasonSleeveCondition,
		},
		{
			name:    "no cover accepted by override",
			listing: func(l *domain.Listing) { l.SleeveCondition = domain.NoCover },
			release: domain.Release{AcceptNoSleeve: ptr(true)},
			want:    filter.ReasonNone,
		},
		{
			name:     "override false beats global true",
			listing:  func(l *domain.Listing) { l.SleeveCondition = domain.NotGraded },
			release:  domain.Release{AcceptUngradedSleeve: ptr(false)},
			criteria: func(c *filter.Criteria) { c.Record.AcceptUngradedSleeve = true },
			want:     filter.ReasonSleeveCondition,
		},
		{
			name:     "ungraded sleeve accepted",
			listing:  func(l *domain.Listing) { l.SleeveCondition = domain.NotGraded },
			criteria: func(c *filter.Criteria) { c.Record.AcceptUngradedSleeve = true },
			want:     filter.ReasonNone,
		},
		{
			name: "minimum at not graded never rejects on condition",
			listing: func(l *domain.Listing) {
				l.MediaCondition = domain.NotGraded
				l.SleeveCondition = domain.NoCover
			},
			release: domain.Release{
				MinMediaCondition:  ptr(domain.NotGraded),
				MinSleeveCondition: ptr(domain.NotGraded),
			},
			want: filter.ReasonNone,
		},
		{
			name:    "over threshold",
			release: domain.Release{PriceThreshold: ptr(24.99)},
			want:    filter.ReasonPriceThreshold,
		},
		{
			name:    "at threshold",
			release: domain.Release{PriceThreshold: ptr(25.0)},
			want:    filter.ReasonNone,
		},
		{
			name:    "zero threshold is honoured",
			release: domain.Release{PriceThreshold: ptr(0.0)},
			want:    filter.ReasonPriceThreshold,
		},
		{
			name:    "foreign price",
			listing: func(l *domain.Listing) { l.Price.Currency = "GBP" },
			want:    filter.ReasonPriceNotNormalized,
		},
		{
			name:    "mixed shipping currency",
			listing: func(l *domain.Listing) { l.Price.Shipping.Currency = "USD" },
			want:    filter.ReasonPriceNotNormalized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := goodListing()
			if tt.listing != nil {
				tt.listing(&l)
			}
			c := baseCriteria()
			if tt.criteria != nil {
				tt.criteria(&c)
			}
			r := tt.release

			got := filter.Evaluate(&l, &r, &c)
			assert.Equal(t, tt.want, got, "got %s", got)
			assert.Equal(t, tt.want == filter.ReasonNone, filter.Accepts(&l, &r, &c))
		})
	}
}

func TestReason_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "accepted", filter.ReasonNone.String())
	assert.Equal(t, "country_blacklisted", filter.ReasonCountryBlacklisted.String())
	assert.Equal(t, "reason(99)", filter.Reason(99).String())
}

func TestFilter_Check(t *testing.T) {
	t.Parallel()

	rp := mocks.NewMockRateProvider(t)
	rp.EXPECT().Rates(mock.Anything, "EUR").
		Return(currency.Rates{"EUR": 1, "GBP": 0.85}, nil).
		Once()
	f := filter.New(baseCriteria(), currency.NewConverter(rp))
	ctx := context.Background()

	l := goodListing()
	l.Price = domain.ListingPrice{Currency: "GBP", Value: 10}

	v, err := f.Check(ctx, &l, &domain.Release{PriceThreshold: ptr(12.0)})
	require.NoError(t, err)
	assert.True(t, v.Accepted())
	assert.Equal(t, "EUR", v.Price.Currency)
	assert.InDelta(t, 11.76, domain.RoundPrice(v.Price.Value), 1e-9)
	assert.Equal(t, "GBP", l.Price.Currency, "listing must not be mutated")

	v, err = f.Check(ctx, &l, &domain.Release{PriceThreshold: ptr(11.0)})
	require.NoError(t, err)
	assert.Equal(t, filter.ReasonPriceThreshold, v.Reason)
}

func TestFilter_Check_SkipsConversionWhenRejectedEarly(t *testing.T) {
	t.Parallel()

	// No expectations: the provider must not be called.
	rp := mocks.NewMockRateProvider(t)
	f := filter.New(baseCriteria(), currency.NewConverter(rp))

	l := goodListing()
	l.MediaCondition = domain.Good
	l.Price = domain.ListingPrice{Currency: "GBP", Value: 10}

	v, err := f.Check(context.Background(), &l, &domain.Release{})
	require.NoError(t, err)
	assert.Equal(t, filter.ReasonMediaCondition, v.Reason)
}

func TestFilter_Check_CurrencyFailure(t *testing.T) {
	t.Parallel()

	rp := mocks.NewMockRateProvider(t)
	rp.EXPECT().Rates(mock.Anything, "EUR").Return(currency.Rates{"EUR": 1}, nil)
	f := filter.New(baseCriteria(), currency.NewConverter(rp))

	l := goodListing()
	l.Price = domain.ListingPrice{Currency: "CHF", Value: 10}

	v, err := f.Check(context.Background(), &l, &domain.Release{})
	require.ErrorIs(t, err, currency.ErrUnsupportedCurrency)
	assert.Equal(t, filter.ReasonCurrency, v.Reason)
	assert.False(t, v.Accepted())
}

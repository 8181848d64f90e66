// Package filter decides whether a marketplace listing satisfies the
// user's acceptance criteria for a wanted release.
package filter

import (
	"context"
	"fmt"

	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// Reason identifies the first check a listing failed. ReasonNone means the
// listing was accepted.
type Reason int

// Rejection reasons, in evaluation order.
const (
	ReasonNone Reason = iota
	ReasonUnavailable
	ReasonCountryNotWhitelisted
	ReasonCountryBlacklisted
	ReasonSellerRating
	ReasonSellerSales
	ReasonMediaCondition
	ReasonSleeveCondition
	ReasonPriceNotNormalized
	ReasonPriceThreshold
	ReasonCurrency
)

var reasonNames = map[Reason]string{
	ReasonNone:                  "accepted",
	ReasonUnavailable:           "unavailable",
	ReasonCountryNotWhitelisted: "country_not_whitelisted",
	ReasonCountryBlacklisted:    "country_blacklisted",
	ReasonSellerRating:          "seller_rating",
	ReasonSellerSales:           "seller_sales",
	ReasonMediaCondition:        "media_condition",
	ReasonSleeveCondition:       "sleeve_condition",
	ReasonPriceNotNormalized:    "price_not_normalized",
	ReasonPriceThreshold:        "price_threshold",
	ReasonCurrency:              "currency",
}

// String returns a snake_case name suitable for logs and metric labels.
func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Criteria is the full set of global acceptance settings.
type Criteria struct {
	// Country is the buyer's shipping destination.
	Country string
	// Currency is the ISO code every price is compared in.
	Currency string

	Seller domain.SellerFilters
	Record domain.RecordFilters

	// CountryWhitelist, when non-empty, is the only set of ships-from
	// countries allowed. CountryBlacklist is always applied.
	CountryWhitelist map[string]struct{}
	CountryBlacklist map[string]struct{}
}

// CountrySet builds a set from a list of country names.
func CountrySet(countries ...string) map[string]struct{} {
	if len(countries) == 0 {
		return nil
	}
	s := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		s[c] = struct{}{}
	}
	return s
}

// Evaluate runs every check against a listing whose price is already in
// criteria.Currency and returns the first failure.
func Evaluate(listing *domain.Listing, release *domain.Release, criteria *Criteria) Reason {
	if r := evaluateListing(listing, release, criteria); r != ReasonNone {
		return r
	}
	return evaluatePrice(listing.Price, release, criteria)
}

// Accepts reports whether the listing passes every check.
func Accepts(listing *domain.Listing, release *domain.Release, criteria *Criteria) bool {
	return Evaluate(listing, release, criteria) == ReasonNone
}

// evaluateListing covers everything except price.
func evaluateListing(listing *domain.Listing, release *domain.Release, criteria *Criteria) Reason {
	if listing.IsUnavailableIn(criteria.Country) {
		return ReasonUnavailable
	}

	from := listing.SellerShipsFrom
	if len(criteria.CountryWhitelist) > 0 {
		if _, ok := criteria.CountryWhitelist[from]; !ok {
			return ReasonCountryNotWhitelisted
		}
	}
	if _, ok := criteria.CountryBlacklist[from]; ok {
		return ReasonCountryBlacklisted
	}

	// New sellers carry no rating and are never rejected on it.
	if minRating := criteria.Seller.MinSellerRating; minRating != nil && listing.SellerAvgRating != nil {
		if *listing.SellerAvgRating < *minRating {
			return ReasonSellerRating
		}
	}
	if minSales := criteria.Seller.MinSellerSales; minSales != nil && listing.SellerNumRatings < *minSales {
		return ReasonSellerSales
	}

	if minMedia, ok := release.EffectiveMediaCondition(criteria.Record); ok && listing.MediaCondition < minMedia {
		return ReasonMediaCondition
	}

	if !sleeveAcceptable(listing.SleeveCondition, release, criteria.Record) {
		return ReasonSleeveCondition
	}

	return ReasonNone
}

// sleeveAcceptable passes when any one of the special sleeve toggles
// matches, or the grade meets the minimum.
func sleeveAcceptable(sleeve domain.Condition, release *domain.Release, global domain.RecordFilters) bool {
	switch {
	case sleeve == domain.Generic && release.AcceptsGenericSleeve(global):
		return true
	case sleeve == domain.NoCover && release.AcceptsNoSleeve(global):
		return true
	case sleeve == domain.NotGraded && release.AcceptsUngradedSleeve(global):
		return true
	}
	minSleeve, ok := release.EffectiveSleeveCondition(global)
	return !ok || sleeve >= minSleeve
}

func evaluatePrice(price domain.ListingPrice, release *domain.Release, criteria *Criteria) Reason {
	if price.Currency != criteria.Currency || !price.Normalized() {
		return ReasonPriceNotNormalized
	}
	if release.PriceThreshold != nil && price.Total() > *release.PriceThreshold {
		return ReasonPriceThreshold
	}
	return ReasonNone
}

// PriceConverter re-expresses a price in another currency.
type PriceConverter interface {
	ConvertPrice(ctx context.Context, price domain.ListingPrice, target string) (domain.ListingPrice, error)
}

// Verdict is the outcome of Filter.Check.
type Verdict struct {
	Reason Reason
	// Price is the listing price in the target currency. It is zero when
	// the listing was rejected before conversion.
	Price domain.ListingPrice
}

// Accepted reports whether the listing passed.
func (v Verdict) Accepted() bool {
	return v.Reason == ReasonNone
}

// Filter applies Criteria to raw listings, converting prices on the way.
type Filter struct {
	criteria  Criteria
	converter PriceConverter
}

// New creates a Filter.
func New(criteria Criteria, converter PriceConverter) *Filter {
	return &Filter{criteria: criteria, converter: converter}
}

// Criteria returns the filter's settings.
func (f *Filter) Criteria() Criteria {
	return f.criteria
}

// Check evaluates a listing as scraped. Cheap checks run first so prices
// are only converted for listings that could still pass. A conversion
// failure rejects the listing with ReasonCurrency and returns the error.
func (f *Filter) Check(ctx context.Context, listing *domain.Listing, release *domain.Release) (Verdict, error) {
	if r := evaluateListing(listing, release, &f.criteria); r != ReasonNone {
		return Verdict{Reason: r}, nil
	}

	price, err := f.converter.ConvertPrice(ctx, listing.Price, f.criteria.Currency)
	if err != nil {
		return Verdict{Reason: ReasonCurrency}, fmt.Errorf("converting listing %d price: %w", listing.ID, err)
	}

	return Verdict{Reason: evaluatePrice(price, release, &f.criteria), Price: price}, nil
}

// Package domain defines the core business types for discogs-alert.
package domain

import (
	"fmt"
	"math"
	"time"
)

// marketplaceItemURL is the public page of a single marketplace listing.
const marketplaceItemURL = "https://www.discogs.com/sell/item/%d"

// SellerFilters are global seller reputation requirements.
type SellerFilters struct {
	MinSellerRating *float64 `json:"min_seller_rating,omitempty" yaml:"min_seller_rating,omitempty"`
	MinSellerSales  *int     `json:"min_seller_sales,omitempty"  yaml:"min_seller_sales,omitempty"`
}

// RecordFilters are the global media and sleeve requirements. Releases may
// override any of them individually.
type RecordFilters struct {
	MinMediaCondition    *Condition `json:"min_media_condition,omitempty"  yaml:"min_media_condition,omitempty"`
	MinSleeveCondition   *Condition `json:"min_sleeve_condition,omitempty" yaml:"min_sleeve_condition,omitempty"`
	AcceptGenericSleeve  bool       `json:"accept_generic_sleeve"          yaml:"accept_generic_sleeve"`
	AcceptNoSleeve       bool       `json:"accept_no_sleeve"               yaml:"accept_no_sleeve"`
	AcceptUngradedSleeve bool       `json:"accept_ungraded_sleeve"         yaml:"accept_ungraded_sleeve"`
}

// Release is a record the user wants. Pointer fields are per-release
// overrides; nil means the global setting applies.
type Release struct {
	ID           int64  `json:"id"            yaml:"id"`
	DisplayTitle string `json:"display_title" yaml:"display_title"`

	MinMediaCondition    *Condition `json:"min_media_condition,omitempty"    yaml:"min_media_condition,omitempty"`
	MinSleeveCondition   *Condition `json:"min_sleeve_condition,omitempty"   yaml:"min_sleeve_condition,omitempty"`
	AcceptGenericSleeve  *bool      `json:"accept_generic_sleeve,omitempty"  yaml:"accept_generic_sleeve,omitempty"`
	AcceptNoSleeve       *bool      `json:"accept_no_sleeve,omitempty"       yaml:"accept_no_sleeve,omitempty"`
	AcceptUngradedSleeve *bool      `json:"accept_ungraded_sleeve,omitempty" yaml:"accept_ungraded_sleeve,omitempty"`
	PriceThreshold       *float64   `json:"price_threshold,omitempty"        yaml:"price_threshold,omitempty"`

	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// EffectiveMediaCondition returns the release override, or the global default
// when no override is set. The second result is false when neither is set.
func (r *Release) EffectiveMediaCondition(global RecordFilters) (Condition, bool) {
	return effectiveCondition(r.MinMediaCondition, global.MinMediaCondition)
}

// EffectiveSleeveCondition resolves the minimum sleeve condition the same way.
func (r *Release) EffectiveSleeveCondition(global RecordFilters) (Condition, bool) {
	return effectiveCondition(r.MinSleeveCondition, global.MinSleeveCondition)
}

// AcceptsGenericSleeve resolves the generic sleeve toggle.
func (r *Release) AcceptsGenericSleeve(global RecordFilters) bool {
	return effectiveBool(r.AcceptGenericSleeve, global.AcceptGenericSleeve)
}

// AcceptsNoSleeve resolves the no-cover toggle.
func (r *Release) AcceptsNoSleeve(global RecordFilters) bool {
	return effectiveBool(r.AcceptNoSleeve, global.AcceptNoSleeve)
}

// AcceptsUngradedSleeve resolves the ungraded sleeve toggle.
func (r *Release) AcceptsUngradedSleeve(global RecordFilters) bool {
	return effectiveBool(r.AcceptUngradedSleeve, global.AcceptUngradedSleeve)
}

func effectiveCondition(override, global *Condition) (Condition, bool) {
	if override != nil {
		return *override, true
	}
	if global != nil {
		return *global, true
	}
	return NotGraded, false
}

func effectiveBool(override *bool, global bool) bool {
	if override != nil {
		return *override
	}
	return global
}

// ShippingPrice is the shipping part of a listing price.
type ShippingPrice struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

// ListingPrice is an item price with optional shipping. The shipping part
// may be quoted in a different currency than the item.
type ListingPrice struct {
	Currency string         `json:"currency"`
	Value    float64        `json:"value"`
	Shipping *ShippingPrice `json:"shipping,omitempty"`
}

// Normalized reports whether item and shipping share one currency.
func (p ListingPrice) Normalized() bool {
	return p.Shipping == nil || p.Shipping.Currency == p.Currency
}

// Total returns value plus shipping. It is only meaningful when the price
// is normalized; callers should check Normalized first.
func (p ListingPrice) Total() float64 {
	if p.Shipping == nil {
		return p.Value
	}
	return p.Value + p.Shipping.Value
}

// String formats the total, e.g. "11.76 EUR (incl. 2.00 shipping)".
func (p ListingPrice) String() string {
	if p.Shipping == nil {
		return fmt.Sprintf("%.2f %s", p.Value, p.Currency)
	}
	if !p.Normalized() {
		return fmt.Sprintf("%.2f %s + %.2f %s shipping",
			p.Value, p.Currency, p.Shipping.Value, p.Shipping.Currency)
	}
	return fmt.Sprintf("%.2f %s (incl. %.2f shipping)", p.Total(), p.Currency, p.Shipping.Value)
}

// Listing is one marketplace offer for a release.
type Listing struct {
	ID int64 `json:"id"`

	// Availability is the raw availability note, e.g. "Unavailable in Germany".
	// Empty when the seller did not set one.
	Availability string `json:"availability,omitempty"`

	MediaCondition  Condition `json:"media_condition"`
	SleeveCondition Condition `json:"sleeve_condition"`
	Comment         string    `json:"comment,omitempty"`

	SellerName       string   `json:"seller_name,omitempty"`
	SellerNumRatings int      `json:"seller_num_ratings"`
	SellerAvgRating  *float64 `json:"seller_avg_rating,omitempty"` // nil for new sellers
	SellerShipsFrom  string   `json:"seller_ships_from"`

	Price ListingPrice `json:"price"`
}

// URL returns the listing's marketplace page.
func (l *Listing) URL() string {
	return fmt.Sprintf(marketplaceItemURL, l.ID)
}

// IsUnavailableIn reports whether the listing is explicitly flagged as not
// shipping to country.
func (l *Listing) IsUnavailableIn(country string) bool {
	return country != "" && l.Availability == "Unavailable in "+country
}

// TotalPrice returns item plus shipping price.
func (l *Listing) TotalPrice() float64 {
	return l.Price.Total()
}

// IsNewSeller reports whether the seller has no rating history.
func (l *Listing) IsNewSeller() bool {
	return l.SellerAvgRating == nil
}

// CycleReport summarises one poll cycle.
type CycleReport struct {
	ID          string        `json:"id"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
	Releases    int           `json:"releases"`
	Listings    int           `json:"listings"`
	Accepted    int           `json:"accepted"`
	Notified    int           `json:"notified"`
	Duplicates  int           `json:"duplicates"`
	Skipped     int           `json:"skipped"`
	FailedSends int           `json:"failed_sends"`
	Aborted     bool          `json:"aborted"`
	Error       string        `json:"error,omitempty"`
}

// RoundPrice rounds v to whole cents for display.
func RoundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

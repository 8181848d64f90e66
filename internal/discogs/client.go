// Package discogs talks to Discogs: the public marketplace pages for
// listings and the authenticated API for user lists.
package discogs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// ListingSource returns the marketplace listings of a release, sorted by
// native price ascending.
type ListingSource interface {
	Listings(ctx context.Context, releaseID int64) ([]domain.Listing, error)
}

// ConnectivityError is the error returned when Discogs cannot be reached.
type ConnectivityError = domain.ConnectivityError

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("not found")

// wrapTransport turns an http.Client.Do failure into a ConnectivityError
// when the host could not be reached or timed out. Cancellation is passed
// through untouched so callers can tell shutdown from outage.
func wrapTransport(action string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", action, err)
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || isTimeout(err) {
		return fmt.Errorf("%s: %w", action, &ConnectivityError{Service: "discogs", Err: err})
	}
	return fmt.Errorf("%s: %w", action, err)
}

func isTimeout(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

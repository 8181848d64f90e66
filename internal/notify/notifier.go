// Package notify defines the notification interface, duplicate
// suppression, and the delivery backends.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

const (
	titlePrefix = "Now For Sale: "
	bodyPrefix  = "Listing available: "
)

// Message is a single notification. Title and Body together identify it
// for duplicate suppression.
type Message struct {
	Title string
	Body  string
}

// NewMessage builds the notification for an accepted listing.
func NewMessage(release *domain.Release, listing *domain.Listing) Message {
	return Message{
		Title: titlePrefix + release.DisplayTitle,
		Body:  bodyPrefix + listing.URL(),
	}
}

// Notifier delivers messages and reports what it has already delivered.
// Backends without a readable history return an empty History, which
// makes delivery at-least-once.
type Notifier interface {
	ListSent(ctx context.Context) (History, error)
	Send(ctx context.Context, msg Message) error
}

// Named is implemented by notifiers that report a backend name for
// metrics and logs.
type Named interface {
	Name() string
}

// BackendName returns n's backend name, or "unknown".
func BackendName(n Notifier) string {
	if named, ok := n.(Named); ok {
		return named.Name()
	}
	return "unknown"
}

// transportError classifies an http.Client.Do failure. Dial and DNS
// failures become ConnectivityErrors; anything else is returned wrapped.
func transportError(service, action string, err error) error {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	var urlErr *url.Error
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) ||
		(errors.As(err, &urlErr) && urlErr.Timeout()) {
		return fmt.Errorf("%s: %w", action, &domain.ConnectivityError{Service: service, Err: err})
	}
	return fmt.Errorf("%s: %w", action, err)
}

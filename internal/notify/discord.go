package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/donaldgifford/discogs-alert/internal/metrics"
)

const (
	discordColor    = 0x333333
	discordUsername = "discogs-alert"
)

// DiscordNotifier posts each match to a Discord webhook. Webhooks cannot
// read channel history, so ListSent is always empty.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// NewDiscordNotifier creates a DiscordNotifier for webhookURL.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type discordPayload struct {
	Username string         `json:"username"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	URL         string         `json:"url,omitempty"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Footer      *discordFooter `json:"footer,omitempty"`
}

type discordFooter struct {
	Text string `json:"text"`
}

// Name implements Named.
func (*DiscordNotifier) Name() string { return "discord" }

// ListSent returns an empty history.
func (*DiscordNotifier) ListSent(context.Context) (History, error) {
	return NewHistory(), nil
}

// Send posts msg as one embed. The embed title links to the listing.
func (d *DiscordNotifier) Send(ctx context.Context, msg Message) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(discordPayload{
		Username: discordUsername,
		Embeds:   []discordEmbed{embedFor(msg)},
	})
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return transportError("discord", "sending discord webhook", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if after := resp.Header.Get("Retry-After"); after != "" {
			return fmt.Errorf("discord rate limited, retry after %ss", after)
		}
		return fmt.Errorf("discord rate limited")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}
	return nil
}

func embedFor(msg Message) discordEmbed {
	e := discordEmbed{
		Title:       msg.Title,
		Description: msg.Body,
		Color:       discordColor,
		Footer:      &discordFooter{Text: discordUsername},
	}
	if u := strings.TrimPrefix(msg.Body, bodyPrefix); strings.HasPrefix(u, "http") {
		e.URL = u
	}
	return e
}

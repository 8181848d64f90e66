package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/donaldgifford/discogs-alert/internal/metrics"
)

const (
	// DefaultPushbulletURL is the Pushbullet API root.
	DefaultPushbulletURL = "https://api.pushbullet.com"

	pushbulletPageSize     = 500
	pushbulletMinRemaining = 2
	pushbulletBackoff      = 60 * time.Second
	pushbulletMaxRetries   = 3
)

// PushbulletNotifier sends notes through Pushbullet and reads back active
// pushes as its history.
type PushbulletNotifier struct {
	token   string
	baseURL string
	client  *http.Client
	log     *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// PushbulletOption configures a PushbulletNotifier.
type PushbulletOption func(*PushbulletNotifier)

// WithPushbulletURL overrides the API root (for testing).
func WithPushbulletURL(u string) PushbulletOption {
	return func(p *PushbulletNotifier) {
		p.baseURL = u
	}
}

// WithPushbulletHTTPClient sets a custom HTTP client.
func WithPushbulletHTTPClient(c *http.Client) PushbulletOption {
	return func(p *PushbulletNotifier) {
		p.client = c
	}
}

// WithPushbulletLogger sets the logger.
func WithPushbulletLogger(l *slog.Logger) PushbulletOption {
	return func(p *PushbulletNotifier) {
		p.log = l
	}
}

// WithPushbulletSleep replaces the rate limit back-off (for testing).
func WithPushbulletSleep(fn func(ctx context.Context, d time.Duration) error) PushbulletOption {
	return func(p *PushbulletNotifier) {
		p.sleep = fn
	}
}

// NewPushbulletNotifier creates a notifier authenticated with token.
func NewPushbulletNotifier(token string, opts ...PushbulletOption) *PushbulletNotifier {
	p := &PushbulletNotifier{
		token:   token,
		baseURL: DefaultPushbulletURL,
		client:  http.DefaultClient,
		log:     slog.Default(),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Named.
func (*PushbulletNotifier) Name() string { return "pushbullet" }

type pushbulletPush struct {
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

type pushbulletList struct {
	Pushes []pushbulletPush `json:"pushes"`
	Cursor string           `json:"cursor"`
}

// ListSent pages through every active push. Pushes without both a title
// and a body are ignored.
func (p *PushbulletNotifier) ListSent(ctx context.Context) (History, error) {
	h := NewHistory()
	cursor := ""

	for {
		page, remaining, err := p.listPage(ctx, cursor)
		if err != nil {
			return nil, err
		}

		for _, push := range page.Pushes {
			if push.Title == "" || push.Body == "" {
				continue
			}
			h.Add(push.Title, push.Body)
		}

		if page.Cursor == "" || len(page.Pushes) == 0 {
			return h, nil
		}
		cursor = page.Cursor

		if remaining < pushbulletMinRemaining {
			if err := p.backoff(ctx); err != nil {
				return nil, err
			}
		}
	}
}

// listPage fetches one page, retrying after a back-off when rate limited.
func (p *PushbulletNotifier) listPage(ctx context.Context, cursor string) (*pushbulletList, int, error) {
	q := url.Values{}
	q.Set("active", "true")
	q.Set("limit", strconv.Itoa(pushbulletPageSize))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	endpoint := p.baseURL + "/v2/pushes?" + q.Encode()

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
		if err != nil {
			return nil, 0, fmt.Errorf("creating pushbullet request: %w", err)
		}
		p.authorize(req)

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, 0, transportError("pushbullet", "listing pushbullet pushes", err)
		}

		remaining := rateRemaining(resp.Header)

		if resp.StatusCode == http.StatusTooManyRequests && attempt < pushbulletMaxRetries {
			resp.Body.Close()
			if err := p.backoff(ctx); err != nil {
				return nil, 0, err
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, 0, fmt.Errorf("pushbullet returned %d: %s", resp.StatusCode, body)
		}

		var page pushbulletList
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, 0, fmt.Errorf("decoding pushbullet pushes: %w", err)
		}
		return &page, remaining, nil
	}
}

// Send posts a note.
func (p *PushbulletNotifier) Send(ctx context.Context, msg Message) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(pushbulletPush{Type: "note", Title: msg.Title, Body: msg.Body})
	if err != nil {
		return fmt.Errorf("marshaling pushbullet note: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v2/pushes", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating pushbullet request: %w", err)
	}
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return transportError("pushbullet", "sending pushbullet note", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("pushbullet returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("pushbullet returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}

func (p *PushbulletNotifier) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
}

func (p *PushbulletNotifier) backoff(ctx context.Context) error {
	p.log.Info("about to hit pushbullet rate limit, waiting", "wait", pushbulletBackoff)
	metrics.RateLimitWaitsTotal.WithLabelValues("pushbullet").Inc()
	if err := p.sleep(ctx, pushbulletBackoff); err != nil {
		return fmt.Errorf("waiting for pushbullet rate limit: %w", err)
	}
	return nil
}

// rateRemaining parses X-Ratelimit-Remaining. A missing or malformed
// header is treated as plenty of headroom.
func rateRemaining(h http.Header) int {
	v := h.Get("X-Ratelimit-Remaining")
	if v == "" {
		return pushbulletMinRemaining
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return pushbulletMinRemaining
	}
	return n
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

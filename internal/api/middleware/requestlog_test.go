package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve runs one request through a handler that answers with status.
func serve(t *testing.T, mw echo.MiddlewareFunc, method, path string, status int, reqID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, path, http.NoBody)
	if reqID != "" {
		req.Header.Set(requestIDHeader, reqID)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	require.NoError(t, mw(func(c echo.Context) error { return c.NoContent(status) })(c))
	return c, rec
}

func TestRequestLog_Fields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mw := RequestLog(slog.New(slog.NewTextHandler(&buf, nil)))

	c, rec := serve(t, mw, http.MethodGet, "/api/v1/wantlist", http.StatusOK, "")

	out := buf.String()
	for _, field := range []string{"method=GET", "path=/api/v1/wantlist", "status=200", "duration_ms=", "request_id="} {
		assert.Contains(t, out, field)
	}

	id := rec.Header().Get(requestIDHeader)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, c.Get(requestIDKey))
}

func TestRequestLog_KeepsProvidedID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mw := RequestLog(slog.New(slog.NewTextHandler(&buf, nil)))

	_, rec := serve(t, mw, http.MethodPost, "/api/v1/cycle", http.StatusOK, "cycle-req-7")

	assert.Equal(t, "cycle-req-7", rec.Header().Get(requestIDHeader))
	assert.Contains(t, buf.String(), "request_id=cycle-req-7")
}

func TestRequestLog_LevelByStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    int
		wantLevel string
	}{
		{status: http.StatusOK, wantLevel: "level=INFO"},
		{status: http.StatusConflict, wantLevel: "level=WARN"},
		{status: http.StatusInternalServerError, wantLevel: "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			mw := RequestLog(slog.New(slog.NewTextHandler(&buf, nil)))

			serve(t, mw, http.MethodPost, "/api/v1/cycle", tt.status, "")
			assert.Contains(t, buf.String(), tt.wantLevel)
		})
	}
}

// TestRequestLog_Sequences checks which requests of a sequence on one
// path produce a log line.
func TestRequestLog_Sequences(t *testing.T) {
	t.Parallel()

	type step struct {
		status     int
		wantLogged bool
	}

	tests := []struct {
		name  string
		path  string
		steps []step
	}{
		{
			name: "healthz logs only its first success",
			path: "/healthz",
			steps: []step{
				{http.StatusOK, true},
				{http.StatusOK, false},
				{http.StatusOK, false},
			},
		},
		{
			name: "readyz failures are always logged",
			path: "/readyz",
			steps: []step{
				{http.StatusServiceUnavailable, true},
				{http.StatusServiceUnavailable, true},
			},
		},
		{
			name: "readyz failure after suppressed successes",
			path: "/readyz",
			steps: []step{
				{http.StatusOK, true},
				{http.StatusOK, false},
				{http.StatusServiceUnavailable, true},
			},
		},
		{
			name: "metrics scrapes are quiet",
			path: "/metrics",
			steps: []step{
				{http.StatusOK, true},
				{http.StatusOK, false},
			},
		},
		{
			name: "api paths are always logged",
			path: "/api/v1/wantlist",
			steps: []step{
				{http.StatusOK, true},
				{http.StatusOK, true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			mw := RequestLog(slog.New(slog.NewTextHandler(&buf, nil)))

			for i, s := range tt.steps {
				before := buf.Len()
				serve(t, mw, http.MethodGet, tt.path, s.status, "")
				assert.Equal(t, s.wantLogged, buf.Len() > before, "step %d (status %d)", i, s.status)
			}
		})
	}
}

func TestRequestLog_QuietPathFailureIsWarn(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mw := RequestLog(slog.New(slog.NewTextHandler(&buf, nil)))

	serve(t, mw, http.MethodGet, "/readyz", http.StatusServiceUnavailable, "")

	assert.Contains(t, buf.String(), "status=503")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.NotContains(t, buf.String(), "level=ERROR")
}

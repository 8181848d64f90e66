package logger_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/discogs-alert/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{name: "debug", input: "debug", want: slog.LevelDebug},
		{name: "info", input: "info", want: slog.LevelInfo},
		{name: "warn", input: "warn", want: slog.LevelWarn},
		{name: "error", input: "error", want: slog.LevelError},
		{name: "upper case", input: "DEBUG", want: slog.LevelDebug},
		{name: "warning alias", input: "warning", want: slog.LevelWarn},
		{name: "empty defaults to info", input: "", want: slog.LevelInfo},
		{name: "unknown defaults to info", input: "trace", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := logger.ParseLevel(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWithWriter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		level   string
		format  string
		log     func(*slog.Logger)
		want    []string
		wantNil bool
	}{
		{
			name:   "text format",
			level:  "info",
			format: "text",
			log:    func(l *slog.Logger) { l.Info("cycle starting", "releases", 12) },
			want:   []string{"level=INFO", "msg=\"cycle starting\"", "releases=12"},
		},
		{
			name:   "json format",
			level:  "info",
			format: "json",
			log:    func(l *slog.Logger) { l.Info("cycle starting", "releases", 12) },
			want:   []string{`"level":"INFO"`, `"msg":"cycle starting"`, `"releases":12`},
		},
		{
			name:   "unknown format falls back to text",
			level:  "info",
			format: "logfmt",
			log:    func(l *slog.Logger) { l.Warn("slow") },
			want:   []string{"level=WARN"},
		},
		{
			name:   "debug visible at debug",
			level:  "debug",
			format: "text",
			log:    func(l *slog.Logger) { l.Debug("listing rejected") },
			want:   []string{"level=DEBUG"},
		},
		{
			name:    "debug suppressed at info",
			level:   "info",
			format:  "text",
			log:     func(l *slog.Logger) { l.Debug("listing rejected") },
			wantNil: true,
		},
		{
			name:    "info suppressed at warn",
			level:   "warn",
			format:  "json",
			log:     func(l *slog.Logger) { l.Info("notification sent") },
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tt.log(logger.NewWithWriter(&buf, tt.level, tt.format))

			if tt.wantNil {
				assert.Empty(t, buf.String())
				return
			}
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestNewWithFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "discogs-alert.log")
	l, closer, err := logger.NewWithFile("info", "json", logger.FileOptions{
		Path:       path,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})
	require.NoError(t, err)
	l.Info("cycle complete", "notified", 2)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"cycle complete"`)
	assert.Contains(t, string(data), `"notified":2`)
}

func TestNewWithFile_NoPath(t *testing.T) {
	t.Parallel()

	l, closer, err := logger.NewWithFile("info", "text", logger.FileOptions{})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.NoError(t, closer.Close())
}

package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

func TestPrintReleasesTable(t *testing.T) {
	t.Parallel()

	vgPlus := domain.VeryGoodPlus
	threshold := 30.0
	releases := []domain.Release{
		{ID: 249504, DisplayTitle: "Miles Davis - Kind Of Blue", MinMediaCondition: &vgPlus, PriceThreshold: &threshold},
		{ID: 5460, DisplayTitle: "John Coltrane - Giant Steps"},
	}

	t.Run("without stats", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, printReleasesTable(&buf, releases, nil))

		out := buf.String()
		assert.Contains(t, out, "THRESHOLD")
		assert.NotContains(t, out, "FOR SALE")
		assert.Contains(t, out, "Kind Of Blue")
		assert.Contains(t, out, "VG+")
		assert.Contains(t, out, "30.00")
	})

	t.Run("with stats", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, printReleasesTable(&buf, releases, map[int64]string{249504: "3 from 12.50 EUR", 5460: "0"}))

		assert.Contains(t, buf.String(), "FOR SALE")
		assert.Contains(t, buf.String(), "3 from 12.50 EUR")
	})
}

func TestPrintReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, &domain.CycleReport{
		ID:        "c1",
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Releases:  2,
		Notified:  1,
		Aborted:   true,
		Error:     "discogs unreachable",
	}))

	out := buf.String()
	assert.Contains(t, out, "2026-03-01 12:00:00")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "Aborted:")
	assert.Contains(t, out, "discogs unreachable")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

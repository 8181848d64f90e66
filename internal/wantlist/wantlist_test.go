package wantlist_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/discogs-alert/internal/discogs"
	"github.com/donaldgifford/discogs-alert/internal/wantlist"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSource_Load(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		file      string
		content   string
		wantErr   string
		checkFunc func(t *testing.T, releases []domain.Release)
	}{
		{
			name: "json with overrides",
			file: "wantlist.json",
			content: `[
				{"id": 249504, "display_title": "Miles Davis - Kind Of Blue", "min_media_condition": "NEAR_MINT",
				 "accept_generic_sleeve": true, "price_threshold": 40},
				{"id": 1000, "display_title": "Bill Evans - Sunday At The Village Vanguard"}
			]`,
			checkFunc: func(t *testing.T, releases []domain.Release) {
				t.Helper()
				require.Len(t, releases, 2)
				r := releases[0]
				require.NotNil(t, r.MinMediaCondition)
				assert.Equal(t, domain.NearMint, *r.MinMediaCondition)
				assert.Nil(t, r.MinSleeveCondition)
				require.NotNil(t, r.AcceptGenericSleeve)
				assert.True(t, *r.AcceptGenericSleeve)
				require.NotNil(t, r.PriceThreshold)
				assert.InDelta(t, 40.0, *r.PriceThreshold, 0)
				assert.Nil(t, releases[1].PriceThreshold)
			},
		},
		{
			name: "yaml with short grades",
			file: "wantlist.yml",
			content: `
- id: 249504
  display_title: Miles Davis - Kind Of Blue
  min_sleeve_condition: VG
  accept_no_sleeve: false
  comment: first press
`,
			checkFunc: func(t *testing.T, releases []domain.Release) {
				t.Helper()
				require.Len(t, releases, 1)
				require.NotNil(t, releases[0].MinSleeveCondition)
				assert.Equal(t, domain.VeryGood, *releases[0].MinSleeveCondition)
				require.NotNil(t, releases[0].AcceptNoSleeve)
				assert.False(t, *releases[0].AcceptNoSleeve)
				assert.Equal(t, "first press", releases[0].Comment)
			},
		},
		{
			name:    "unknown condition name",
			file:    "wantlist.json",
			content: `[{"id": 1, "display_title": "x", "min_media_condition": "SHINY"}]`,
			wantErr: "parsing wantlist",
		},
		{
			name:    "duplicate ids",
			file:    "wantlist.yaml",
			content: "- id: 5\n  display_title: a\n- id: 5\n  display_title: b\n",
			wantErr: "duplicate release id 5",
		},
		{
			name:    "missing id",
			file:    "wantlist.yaml",
			content: "- display_title: a\n",
			wantErr: "id must be positive",
		},
		{
			name:    "unknown extension",
			file:    "wantlist.toml",
			content: "",
			wantErr: "unknown wantlist format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := wantlist.NewFileSource(writeFile(t, tt.file, tt.content))
			releases, err := src.Load(context.Background())

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.checkFunc(t, releases)
		})
	}
}

func TestFileSource_ConditionErrorIsParseError(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "w.json", `[{"id": 1, "display_title": "x", "min_media_condition": "SHINY"}]`)
	_, err := wantlist.NewFileSource(path).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestFileSource_Missing(t *testing.T) {
	t.Parallel()

	_, err := wantlist.NewFileSource("/nonexistent/wantlist.json").Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading wantlist file")
}

type stubLists struct {
	list *discogs.List
	err  error
}

func (s stubLists) GetList(_ context.Context, _ int64) (*discogs.List, error) {
	return s.list, s.err
}

func TestListSource_Load(t *testing.T) {
	t.Parallel()

	src := wantlist.NewListSource(stubLists{list: &discogs.List{
		ID: 7,
		Items: []discogs.ListItem{
			{ID: 1, Type: "release", DisplayTitle: "A", Comment: "note"},
			{ID: 2, Type: "label", DisplayTitle: "Blue Note"},
		},
	}}, 7)

	releases, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, releases, 1)
	assert.Equal(t, "note", releases[0].Comment)
}

func TestListSource_Error(t *testing.T) {
	t.Parallel()

	src := wantlist.NewListSource(stubLists{err: errors.New("boom")}, 7)
	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading wantlist from list 7")
}

func TestListSource_WithAPIClient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": 3, "items": [{"id": 42, "type": "release", "display_title": "Some - Record"}]}`))
	}))
	t.Cleanup(srv.Close)

	api := discogs.NewAPIClient("tok", discogs.WithAPIURL(srv.URL))
	releases, err := wantlist.NewListSource(api, 3).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, releases, 1)
	assert.Equal(t, int64(42), releases[0].ID)
}

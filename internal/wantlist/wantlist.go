// Package wantlist loads the releases a user wants to be alerted about.
package wantlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/discogs-alert/internal/discogs"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// ErrUnknownFormat is returned for wantlist files that are neither JSON
// nor YAML.
var ErrUnknownFormat = errors.New("unknown wantlist format")

// Source returns the current wantlist. It is read at the start of every
// cycle so edits take effect without a restart.
type Source interface {
	Load(ctx context.Context) ([]domain.Release, error)
}

// FileSource reads a JSON or YAML array of releases from disk.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path. The format is chosen by
// extension: .json, .yaml or .yml.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the file the source reads.
func (s *FileSource) Path() string {
	return s.path
}

// Load implements Source.
func (s *FileSource) Load(_ context.Context) ([]domain.Release, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading wantlist file: %w", err)
	}

	var releases []domain.Release
	switch ext := strings.ToLower(filepath.Ext(s.path)); ext {
	case ".json":
		err = json.Unmarshal(data, &releases)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &releases)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing wantlist %s: %w", s.path, err)
	}

	if err := validate(releases); err != nil {
		return nil, fmt.Errorf("validating wantlist %s: %w", s.path, err)
	}
	return releases, nil
}

func validate(releases []domain.Release) error {
	var errs []error
	seen := make(map[int64]struct{}, len(releases))
	for i, r := range releases {
		if r.ID <= 0 {
			errs = append(errs, fmt.Errorf("entry %d: id must be positive (got %d)", i, r.ID))
			continue
		}
		if _, dup := seen[r.ID]; dup {
			errs = append(errs, fmt.Errorf("entry %d: duplicate release id %d", i, r.ID))
		}
		seen[r.ID] = struct{}{}
		if r.PriceThreshold != nil && *r.PriceThreshold < 0 {
			errs = append(errs, fmt.Errorf("entry %d: price_threshold must not be negative", i))
		}
	}
	return errors.Join(errs...)
}

// ListGetter fetches a Discogs user list.
type ListGetter interface {
	GetList(ctx context.Context, listID int64) (*discogs.List, error)
}

// ListSource reads the wantlist from a Discogs user list. Per-release
// overrides are not available this way; only the list comment is kept.
type ListSource struct {
	api    ListGetter
	listID int64
}

// NewListSource creates a ListSource for listID.
func NewListSource(api ListGetter, listID int64) *ListSource {
	return &ListSource{api: api, listID: listID}
}

// Load implements Source.
func (s *ListSource) Load(ctx context.Context) ([]domain.Release, error) {
	list, err := s.api.GetList(ctx, s.listID)
	if err != nil {
		return nil, fmt.Errorf("loading wantlist from list %d: %w", s.listID, err)
	}
	return list.Releases(), nil
}

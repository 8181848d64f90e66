package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/discogs-alert/internal/wantlist"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// WantlistHandler exposes the releases being watched.
type WantlistHandler struct {
	source wantlist.Source
}

// NewWantlistHandler creates a new WantlistHandler.
func NewWantlistHandler(s wantlist.Source) *WantlistHandler {
	return &WantlistHandler{source: s}
}

// WantlistOutput is the response body for the wantlist endpoint.
type WantlistOutput struct {
	Body struct {
		Releases []domain.Release `json:"releases" doc:"Watched releases"`
		Total    int              `json:"total" doc:"Number of releases"`
	}
}

// List loads the wantlist from its source.
func (h *WantlistHandler) List(ctx context.Context, _ *struct{}) (*WantlistOutput, error) {
	releases, err := h.source.Load(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("loading wantlist: " + err.Error())
	}
	if releases == nil {
		releases = []domain.Release{}
	}

	resp := &WantlistOutput{}
	resp.Body.Releases = releases
	resp.Body.Total = len(releases)
	return resp, nil
}

// RegisterWantlistRoutes registers wantlist endpoints with the Huma API.
func RegisterWantlistRoutes(api huma.API, h *WantlistHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-wantlist",
		Method:      http.MethodGet,
		Path:        "/api/v1/wantlist",
		Summary:     "List watched releases",
		Tags:        []string{"wantlist"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.List)
}

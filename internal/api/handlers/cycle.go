package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/discogs-alert/internal/engine"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// CycleRunner runs poll cycles on demand and remembers the last one.
type CycleRunner interface {
	TryRun(ctx context.Context) (domain.CycleReport, error)
	LastReport() (domain.CycleReport, bool)
}

// CycleHandler handles manual cycle requests.
type CycleHandler struct {
	runner CycleRunner
}

// NewCycleHandler creates a new CycleHandler.
func NewCycleHandler(r CycleRunner) *CycleHandler {
	return &CycleHandler{runner: r}
}

// CycleOutput wraps a cycle report.
type CycleOutput struct {
	Body domain.CycleReport
}

// Trigger runs one cycle synchronously and returns its report.
func (h *CycleHandler) Trigger(ctx context.Context, _ *struct{}) (*CycleOutput, error) {
	report, err := h.runner.TryRun(ctx)
	if errors.Is(err, engine.ErrCycleRunning) {
		return nil, huma.Error409Conflict("a cycle is already running")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("cycle failed: " + err.Error())
	}
	return &CycleOutput{Body: report}, nil
}

// Last returns the report of the most recent cycle.
func (h *CycleHandler) Last(_ context.Context, _ *struct{}) (*CycleOutput, error) {
	report, ok := h.runner.LastReport()
	if !ok {
		return nil, huma.Error404NotFound("no cycle has run yet")
	}
	return &CycleOutput{Body: report}, nil
}

// RegisterCycleRoutes registers cycle endpoints with the Huma API.
func RegisterCycleRoutes(api huma.API, h *CycleHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-cycle",
		Method:      http.MethodPost,
		Path:        "/api/v1/cycle",
		Summary:     "Run a cycle now",
		Description: "Checks every wantlist release against the marketplace and " +
			"sends notifications for new matches. Fails with 409 while a " +
			"scheduled cycle is running.",
		Tags:   []string{"cycle"},
		Errors: []int{http.StatusConflict, http.StatusInternalServerError},
	}, h.Trigger)

	huma.Register(api, huma.Operation{
		OperationID: "last-cycle",
		Method:      http.MethodGet,
		Path:        "/api/v1/cycle/last",
		Summary:     "Get the last cycle report",
		Tags:        []string{"cycle"},
		Errors:      []int{http.StatusNotFound},
	}, h.Last)
}

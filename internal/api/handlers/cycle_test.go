package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/discogs-alert/internal/api/handlers"
	"github.com/donaldgifford/discogs-alert/internal/api/handlers/mocks"
	"github.com/donaldgifford/discogs-alert/internal/engine"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

func sampleReport() domain.CycleReport {
	return domain.CycleReport{
		ID:         "6f1c2b9e-3d4a-4e0b-9a51-2f8c7d6e5b4a",
		StartedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:   2 * time.Second,
		Releases:   3,
		Listings:   12,
		Accepted:   2,
		Notified:   1,
		Duplicates: 1,
	}
}

func TestCycleHandler_Trigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		report     domain.CycleReport
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "returns the report",
			report:     sampleReport(),
			wantStatus: http.StatusOK,
		},
		{
			name:       "conflict while a cycle is running",
			err:        engine.ErrCycleRunning,
			wantStatus: http.StatusConflict,
			wantBody:   "already running",
		},
		{
			name:       "cycle failure",
			err:        fmt.Errorf("loading wantlist: %w", errors.New("boom")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "cycle failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := mocks.NewMockCycleRunner(t)
			runner.EXPECT().TryRun(mock.Anything).Return(tt.report, tt.err)

			_, api := humatest.New(t)
			handlers.RegisterCycleRoutes(api, handlers.NewCycleHandler(runner))

			resp := api.Post("/api/v1/cycle")
			require.Equal(t, tt.wantStatus, resp.Code)

			if tt.wantBody != "" {
				assert.Contains(t, resp.Body.String(), tt.wantBody)
				return
			}

			var got domain.CycleReport
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
			assert.Equal(t, tt.report.ID, got.ID)
			assert.Equal(t, 1, got.Notified)
			assert.Equal(t, 1, got.Duplicates)
		})
	}
}

func TestCycleHandler_Last(t *testing.T) {
	t.Parallel()

	t.Run("returns the last report", func(t *testing.T) {
		t.Parallel()

		runner := mocks.NewMockCycleRunner(t)
		runner.EXPECT().LastReport().Return(sampleReport(), true)

		_, api := humatest.New(t)
		handlers.RegisterCycleRoutes(api, handlers.NewCycleHandler(runner))

		resp := api.Get("/api/v1/cycle/last")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"releases":3`)
	})

	t.Run("404 before the first cycle", func(t *testing.T) {
		t.Parallel()

		runner := mocks.NewMockCycleRunner(t)
		runner.EXPECT().LastReport().Return(domain.CycleReport{}, false)

		_, api := humatest.New(t)
		handlers.RegisterCycleRoutes(api, handlers.NewCycleHandler(runner))

		resp := api.Get("/api/v1/cycle/last")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

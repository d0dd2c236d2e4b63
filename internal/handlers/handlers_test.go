package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sentinel-labs/sentinel/internal/config"
	"github.com/sentinel-labs/sentinel/internal/handlers"
	"github.com/sentinel-labs/sentinel/internal/models"
	"github.com/sentinel-labs/sentinel/internal/routes"
	"github.com/sentinel-labs/sentinel/internal/store"
	"github.com/sentinel-labs/sentinel/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	handlers.SetGlobalHandler(handlers.NewSentinelHandler(st, config.DefaultConfig(), nil))

	r := gin.New()
	routes.SetupRoutes(r)
	return r, st
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRuleEndpoints(t *testing.T) {
	t.Run("Create, list, toggle, delete", func(t *testing.T) {
		r, _ := setupRouter(t)

		w := doJSON(r, http.MethodPost, "/api/v1/rules", map[string]interface{}{
			"name":           "High CPU Usage",
			"trigger_script": "cpu_usage_trigger",
			"parameters":     `{"server": "PROD-DB-01", "threshold": 90}`,
			"importance":     "high",
			"period_value":   5,
			"period_unit":    "Minutes",
			"duration_value": 1,
			"duration_unit":  "Days",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var created models.AlertRule
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.True(t, created.IsActive)
		assert.Equal(t, 300, created.PeriodSeconds)

		w = doJSON(r, http.MethodGet, "/api/v1/rules", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var listing struct {
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
		assert.Equal(t, 1, listing.Total)

		w = doJSON(r, http.MethodPost, "/api/v1/rules/1/toggle", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var toggled models.AlertRule
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toggled))
		assert.False(t, toggled.IsActive)

		w = doJSON(r, http.MethodDelete, "/api/v1/rules/1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(r, http.MethodDelete, "/api/v1/rules/1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Validation failures map to 400", func(t *testing.T) {
		r, _ := setupRouter(t)

		w := doJSON(r, http.MethodPost, "/api/v1/rules", map[string]interface{}{
			"name":           "",
			"period_value":   1,
			"period_unit":    "Minutes",
			"duration_value": 1,
			"duration_unit":  "Hours",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(r, http.MethodPost, "/api/v1/rules", map[string]interface{}{
			"name":           "Bad Params",
			"parameters":     "{broken",
			"period_value":   1,
			"period_unit":    "Minutes",
			"duration_value": 1,
			"duration_unit":  "Hours",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Clone returns a prefilled draft", func(t *testing.T) {
		r, st := setupRouter(t)
		require.NoError(t, st.UpsertRule(&models.AlertRule{
			Name:                   "Source",
			TriggerScript:          "manual",
			Parameters:             "{}",
			Importance:             models.ImportanceLow,
			PeriodSeconds:          7200,
			DisplayDurationMinutes: 90,
		}))

		w := doJSON(r, http.MethodGet, "/api/v1/rules/1/clone", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var draft struct {
			Name        string `json:"name"`
			PeriodValue int    `json:"period_value"`
			PeriodUnit  string `json:"period_unit"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &draft))
		assert.Equal(t, "Copy of Source", draft.Name)
		assert.Equal(t, 2, draft.PeriodValue)
		assert.Equal(t, "Hours", draft.PeriodUnit)
	})
}

func TestEventEndpoints(t *testing.T) {
	t.Run("Live view and acknowledgement", func(t *testing.T) {
		r, st := setupRouter(t)
		require.NoError(t, st.AppendEvent(&models.AlertEvent{
			Timestamp:  time.Now().UTC(),
			Message:    "cpu hot",
			Importance: models.ImportanceCritical,
			Category:   "General",
		}))

		w := doJSON(r, http.MethodGet, "/api/v1/events/live", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var page struct {
			Rows       []map[string]interface{} `json:"rows"`
			TotalCount int                      `json:"total_count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		require.Equal(t, 1, page.TotalCount)

		w = doJSON(r, http.MethodPost, "/api/v1/events/1/acknowledge", map[string]string{
			"comment": "handled",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(r, http.MethodGet, "/api/v1/events/live", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Zero(t, page.TotalCount)

		w = doJSON(r, http.MethodGet, "/api/v1/events/history", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, 1, page.TotalCount)
	})

	t.Run("Acknowledging a missing event is 404", func(t *testing.T) {
		r, _ := setupRouter(t)
		w := doJSON(r, http.MethodPost, "/api/v1/events/99/acknowledge", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("History honors query filters", func(t *testing.T) {
		r, st := setupRouter(t)
		require.NoError(t, st.AppendEvent(&models.AlertEvent{
			Timestamp: time.Now().UTC(), Message: "disk filling up", Importance: models.ImportanceCritical,
		}))
		require.NoError(t, st.AppendEvent(&models.AlertEvent{
			Timestamp: time.Now().UTC(), Message: "heartbeat ok", Importance: models.ImportanceLow,
		}))

		w := doJSON(r, http.MethodGet, "/api/v1/events/history?search=disk&importance=critical", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var page struct {
			TotalCount int `json:"total_count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, 1, page.TotalCount)
	})

	t.Run("Stats reflect the stores", func(t *testing.T) {
		r, st := setupRouter(t)
		require.NoError(t, st.UpsertRule(&models.AlertRule{Name: "A", IsActive: true}))
		require.NoError(t, st.AppendEvent(&models.AlertEvent{Message: "open"}))

		w := doJSON(r, http.MethodGet, "/api/v1/stats", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var stats struct {
			TotalRules           int `json:"total_rules"`
			ActiveRules          int `json:"active_rules"`
			UnacknowledgedEvents int `json:"unacknowledged_events"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 1, stats.TotalRules)
		assert.Equal(t, 1, stats.ActiveRules)
		assert.Equal(t, 1, stats.UnacknowledgedEvents)
	})

	t.Run("Tick advances the clock", func(t *testing.T) {
		r, _ := setupRouter(t)
		w := doJSON(r, http.MethodPost, "/api/v1/tick", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Now time.Time `json:"now"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.WithinDuration(t, time.Now().UTC(), body.Now, 5*time.Second)
	})
}

// stubOrchestrator serves canned workflow responses for handler tests.
type stubOrchestrator struct{}

func (stubOrchestrator) CheckConnection(ctx context.Context) workflow.ConnectionStatus {
	return workflow.ConnectionStatus{Success: true, Message: "connected"}
}

func (stubOrchestrator) ListDeployments(ctx context.Context) []workflow.Deployment { return nil }

func (stubOrchestrator) TriggerRun(ctx context.Context, deploymentID string, parameters map[string]interface{}) (string, error) {
	return "run-123", nil
}

func (stubOrchestrator) GetBatchStates(ctx context.Context, runIDs []string) map[string]string {
	return nil
}

func (stubOrchestrator) RunUIURL(runID string) string {
	return "http://localhost:4200/flow-runs/flow-run/" + runID
}

// brokenEventStore fails every event update to exercise the 500 path.
type brokenEventStore struct {
	*store.MemoryStore
}

func (brokenEventStore) UpdateEvent(id uint, mutate func(*models.AlertEvent)) error {
	return errors.New("disk full")
}

func TestTriggerDeploymentLinksUI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.NewMemoryStore()
	handlers.SetGlobalHandler(handlers.NewSentinelHandler(st, config.DefaultConfig(), stubOrchestrator{}))
	r := gin.New()
	routes.SetupRoutes(r)

	w := doJSON(r, http.MethodPost, "/api/v1/workflow/deployments/dep-1/run", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		RunID string `json:"run_id"`
		UIURL string `json:"ui_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "run-123", body.RunID)
	assert.Equal(t, "http://localhost:4200/flow-runs/flow-run/run-123", body.UIURL)
}

func TestAcknowledgeStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.NewMemoryStore()
	require.NoError(t, st.AppendEvent(&models.AlertEvent{Message: "stuck"}))
	handlers.SetGlobalHandler(handlers.NewSentinelHandler(brokenEventStore{st}, config.DefaultConfig(), nil))
	r := gin.New()
	routes.SetupRoutes(r)

	// A store failure is not the same as a missing event.
	w := doJSON(r, http.MethodPost, "/api/v1/events/1/acknowledge", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWorkflowEndpointsDisabled(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/workflow/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.Success)

	w = doJSON(r, http.MethodPost, "/api/v1/workflow/deployments/dep-1/run", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/workflow/sync", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

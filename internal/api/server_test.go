// ABOUTME: Tests for the HTTP API using httptest against the routed handler.
// ABOUTME: Covers reads, weigh-in creation, deletion, CORS, and error mapping.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/makeweight/internal/analytics"
	"github.com/harperreed/makeweight/internal/engine"
	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/service"
	"github.com/harperreed/makeweight/internal/storage"
)

var testNow = time.Date(2025, 3, 3, 8, 0, 0, 0, time.Local)

func newTestService(t *testing.T, withProfile bool) *service.Service {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "makeweight.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc, err := service.New(context.Background(), db, service.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	if withProfile {
		p := models.NewAthleteProfile("Sam", 172, 165, testNow.AddDate(0, 0, 5), models.ProtocolRapidCut)
		require.NoError(t, svc.SaveProfile(context.Background(), p))
	}
	return svc
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPhaseAndTargets(t *testing.T) {
	h := NewServer(newTestService(t, true), nil, nil).Handler()

	rec := do(t, h, http.MethodGet, "/api/phase", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	phase := decode[phaseResponse](t, rec)
	assert.Equal(t, engine.PhaseLoad, phase.Phase)
	assert.Equal(t, 5, phase.DaysUntil)
	assert.Equal(t, "2025-03-03", phase.Date)
	assert.Equal(t, "Water Load", phase.Style.Label)

	rec = do(t, h, http.MethodGet, "/api/targets?date=2025-03-07", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tg := decode[engine.Targets](t, rec)
	assert.Equal(t, 1, tg.DaysUntil)
	assert.Equal(t, engine.PhaseCritical, tg.Phase)

	rec = do(t, h, http.MethodGet, "/api/targets?date=soon", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlan(t *testing.T) {
	h := NewServer(newTestService(t, true), nil, nil).Handler()

	rec := do(t, h, http.MethodGet, "/api/plan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	plan := decode[[]engine.DayPlan](t, rec)
	require.Len(t, plan, engine.PlanDays)
	assert.True(t, plan[0].IsToday)
	assert.True(t, plan[1].IsTomorrow)
}

func TestNoProfileIsConflict(t *testing.T) {
	h := NewServer(newTestService(t, false), nil, nil).Handler()

	for _, path := range []string{"/api/phase", "/api/targets", "/api/plan", "/api/safety", "/api/status"} {
		rec := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusConflict, rec.Code, path)
		assert.Contains(t, decode[errorResponse](t, rec).Error, "profile", path)
	}

	rec := do(t, h, http.MethodGet, "/api/rates", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateListDeleteLogs(t *testing.T) {
	h := NewServer(newTestService(t, true), nil, nil).Handler()

	rec := do(t, h, http.MethodPost, "/api/logs", createLogRequest{Type: "pre_session", Weight: 172, RecordedAt: "2025-03-02 16:00"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodPost, "/api/logs", createLogRequest{Type: "post-session", Weight: 170, RecordedAt: "2025-03-02 18:00"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.WeightLog](t, rec)
	assert.Equal(t, models.MeasurePostSession, created.Type)

	rec = do(t, h, http.MethodGet, "/api/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[[]models.WeightLog](t, rec)
	require.Len(t, logs, 2)
	assert.Equal(t, created.ID, logs[0].ID)

	rec = do(t, h, http.MethodGet, "/api/logs?type=pre&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.WeightLog](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/rates", nil)
	rates := decode[analytics.Rates](t, rec)
	require.NotNil(t, rates.Session)
	assert.Equal(t, 2.0, *rates.Session)

	rec = do(t, h, http.MethodGet, "/api/safety", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	safety := decode[safetyResponse](t, rec)
	require.NotNil(t, safety.CurrentWeight)
	assert.Equal(t, 170.0, *safety.CurrentWeight)
	require.NotNil(t, safety.Safety)
	assert.Equal(t, analytics.LevelSafe, safety.Safety.Level)

	rec = do(t, h, http.MethodDelete, "/api/logs/"+created.ShortID(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/logs/"+created.ShortID(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateLogRejects(t *testing.T) {
	h := NewServer(newTestService(t, true), nil, nil).Handler()

	tests := []struct {
		name string
		body any
	}{
		{"unknown type", createLogRequest{Type: "lunch", Weight: 170}},
		{"weight out of range", createLogRequest{Type: "morning", Weight: 12}},
		{"bad timestamp", createLogRequest{Type: "morning", Weight: 170, RecordedAt: "noon"}},
		{"not json", "just a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/logs", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, h, http.MethodGet, "/api/logs?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTracking(t *testing.T) {
	svc := newTestService(t, true)
	_, err := svc.Track(context.Background(), testNow, func(d *models.DailyTracking) { d.AddWater(64) })
	require.NoError(t, err)
	h := NewServer(svc, nil, nil).Handler()

	rec := do(t, h, http.MethodGet, "/api/tracking/2025-03-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 64.0, decode[models.DailyTracking](t, rec).WaterOz)

	rec = do(t, h, http.MethodGet, "/api/tracking/2025-03-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[models.DailyTracking](t, rec).WaterOz)

	rec = do(t, h, http.MethodGet, "/api/tracking/today", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS(t *testing.T) {
	h := NewServer(newTestService(t, true), nil, []string{"https://coach.example"}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/rates", nil)
	req.Header.Set("Origin", "https://coach.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://coach.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/rates", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	h := NewServer(newTestService(t, true), nil, nil).Handler()

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/nope", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPut, "/api/logs", nil).Code)
}

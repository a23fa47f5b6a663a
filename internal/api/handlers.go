// ABOUTME: Route handlers for phase, targets, plan, analytics, logs, and tracking.
// ABOUTME: Errors map to JSON bodies with status codes by sentinel.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/harperreed/makeweight/internal/analytics"
	"github.com/harperreed/makeweight/internal/engine"
	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/service"
	"github.com/harperreed/makeweight/internal/snapshot"
	"github.com/harperreed/makeweight/internal/storage"
	"github.com/harperreed/makeweight/internal/units"
)

// DefaultLogLimit caps GET /api/logs when no limit is given.
const DefaultLogLimit = 50

type phaseResponse struct {
	Date      string          `json:"date"`
	DaysUntil int             `json:"days_until"`
	Protocol  models.Protocol `json:"protocol"`
	Phase     engine.Phase    `json:"phase"`
	Style     engine.Style    `json:"style"`
}

type safetyResponse struct {
	DaysUntil     int                   `json:"days_until"`
	CurrentWeight *float64              `json:"current_weight"`
	TargetWeight  float64               `json:"target_weight"`
	Safety        *analytics.Assessment `json:"safety"`
}

type createLogRequest struct {
	Type            string  `json:"type"`
	Weight          float64 `json:"weight"`
	RecordedAt      string  `json:"recorded_at,omitempty"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) getPhase(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profile()
	if err != nil {
		s.writeError(w, err)
		return
	}
	phase, days, err := s.svc.Phase()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, phaseResponse{
		Date:      models.DateKey(s.svc.Today()),
		DaysUntil: days,
		Protocol:  p.Protocol,
		Phase:     phase,
		Style:     phase.Style(),
	})
}

func (s *Server) getTargets(w http.ResponseWriter, r *http.Request) {
	var date time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := time.ParseInLocation(models.DateLayout, raw, time.Local)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date (use YYYY-MM-DD)"})
			return
		}
		date = d
	}

	tg, err := s.svc.Targets(date)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tg)
}

func (s *Server) getPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.svc.Plan()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) getRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Rates())
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Status()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) getSafety(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Status()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, safetyResponse{
		DaysUntil:     st.DaysUntil,
		CurrentWeight: st.CurrentWeight,
		TargetWeight:  st.Target.Weight,
		Safety:        st.Safety,
	})
}

func (s *Server) getLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := DefaultLogLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	var mt *models.MeasurementType
	if raw := q.Get("type"); raw != "" {
		parsed, err := models.ParseMeasurementType(raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
		mt = &parsed
	}

	writeJSON(w, http.StatusOK, s.svc.Logs(mt, limit))
}

func (s *Server) createLog(w http.ResponseWriter, r *http.Request) {
	var req createLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	mt, err := models.ParseMeasurementType(req.Type)
	if err != nil {
		s.writeError(w, err)
		return
	}
	in := service.LogInput{
		Type:            mt,
		Weight:          req.Weight,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	}
	if req.RecordedAt != "" {
		t, err := models.ParseTimestamp(req.RecordedAt)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		in.RecordedAt = t
	}

	l, err := s.svc.LogWeight(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) deleteLog(w http.ResponseWriter, r *http.Request) {
	l, err := s.svc.DeleteLog(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) getTracking(w http.ResponseWriter, r *http.Request) {
	date, err := time.ParseInLocation(models.DateLayout, mux.Vars(r)["date"], time.Local)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date (use YYYY-MM-DD)"})
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Tracking(date))
}

// writeError maps domain errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNoProfile):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrAmbiguousPrefix),
		errors.Is(err, units.ErrWeightOutOfRange),
		errors.Is(err, models.ErrUnknownMeasurement),
		errors.Is(err, models.ErrUnknownProtocol):
		status = http.StatusBadRequest
	case errors.Is(err, snapshot.ErrSyncFailed):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

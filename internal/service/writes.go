// ABOUTME: Write operations: profile, weight logs, and daily tracking.
// ABOUTME: Each write is validated, applied to the snapshot, then committed.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/makeweight/internal/engine"
	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/snapshot"
	"github.com/harperreed/makeweight/internal/storage"
	"github.com/harperreed/makeweight/internal/units"
)

// SaveProfile validates and stores the profile.
func (s *Service) SaveProfile(ctx context.Context, p *models.AthleteProfile) error {
	if err := validateProfile(p); err != nil {
		return err
	}
	p.UpdatedAt = s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}

	pending, err := s.snap.SetProfile(p)
	if err != nil {
		return err
	}
	return s.commit(ctx, pending)
}

func validateProfile(p *models.AthleteProfile) error {
	if p == nil {
		return ErrNoProfile
	}
	if err := units.ValidateWeight(p.TargetClass); err != nil {
		return fmt.Errorf("target class: %w", err)
	}
	if p.CurrentWeight != 0 {
		if err := units.ValidateWeight(p.CurrentWeight); err != nil {
			return fmt.Errorf("current weight: %w", err)
		}
	}
	if !p.Protocol.Valid() {
		return fmt.Errorf("%w: %d", models.ErrUnknownProtocol, int(p.Protocol))
	}
	if p.WeighInDate.IsZero() {
		return fmt.Errorf("weigh-in date is required")
	}
	if p.ActivityLevel != "" && !engine.IsValidActivityLevel(p.ActivityLevel) {
		return fmt.Errorf("unknown activity level %q", p.ActivityLevel)
	}
	if p.MacroMode != "" && p.MacroMode != models.ModeGrams && p.MacroMode != models.ModePortions {
		return fmt.Errorf("unknown macro mode %q", p.MacroMode)
	}
	return nil
}

// LogInput describes a new weigh-in.
type LogInput struct {
	Type            models.MeasurementType
	Weight          float64
	RecordedAt      time.Time
	DurationMinutes int
	Notes           string
}

// LogWeight validates and records a weigh-in. A zero RecordedAt means now.
func (s *Service) LogWeight(ctx context.Context, in LogInput) (*models.WeightLog, error) {
	if err := units.ValidateWeight(in.Weight); err != nil {
		return nil, err
	}
	if !models.IsValidMeasurementType(string(in.Type)) {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownMeasurement, in.Type)
	}

	l := models.NewWeightLog(in.Type, in.Weight)
	if in.RecordedAt.IsZero() {
		l.WithRecordedAt(s.now())
	} else {
		l.WithRecordedAt(in.RecordedAt)
	}
	if in.DurationMinutes > 0 {
		l.WithDuration(in.DurationMinutes)
	}
	if in.Notes != "" {
		l.WithNotes(in.Notes)
	}

	pending, err := s.snap.AddLog(l)
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, pending); err != nil {
		return nil, err
	}
	s.log.Info("weight logged", "id", l.ShortID(), "type", l.Type, "weight", l.Weight)
	return l, nil
}

// EditLog applies edit to the entry matching idOrPrefix and stores it.
func (s *Service) EditLog(ctx context.Context, idOrPrefix string, edit func(l *models.WeightLog) error) (*models.WeightLog, error) {
	found, err := findLog(s.snap.State(), idOrPrefix)
	if err != nil {
		return nil, err
	}
	updated := found.Clone()
	if err := edit(updated); err != nil {
		return nil, err
	}
	if err := units.ValidateWeight(updated.Weight); err != nil {
		return nil, err
	}
	if !models.IsValidMeasurementType(string(updated.Type)) {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownMeasurement, updated.Type)
	}
	updated.ID = found.ID

	pending, err := s.snap.UpdateLog(updated)
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, pending); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteLog removes the entry matching idOrPrefix and returns it.
func (s *Service) DeleteLog(ctx context.Context, idOrPrefix string) (*models.WeightLog, error) {
	found, err := findLog(s.snap.State(), idOrPrefix)
	if err != nil {
		return nil, err
	}
	pending, err := s.snap.DeleteLog(found.ID)
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, pending); err != nil {
		return nil, err
	}
	return found, nil
}

// Logs returns entries newest first, optionally filtered by type. A positive
// limit truncates.
func (s *Service) Logs(mt *models.MeasurementType, limit int) []*models.WeightLog {
	st := s.snap.State()
	out := make([]*models.WeightLog, 0, len(st.Logs))
	for i := len(st.Logs) - 1; i >= 0; i-- {
		l := st.Logs[i]
		if mt != nil && l.Type != *mt {
			continue
		}
		out = append(out, l)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Track edits the tracking record for date and reconciles it.
func (s *Service) Track(ctx context.Context, date time.Time, edit func(d *models.DailyTracking)) (*models.DailyTracking, error) {
	key := models.DateKey(date)
	pending, err := s.snap.Track(key, edit)
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, pending); err != nil {
		return nil, err
	}
	return s.snap.State().Tracking[key], nil
}

// Tracking returns the record for date, or an empty one when nothing was logged.
func (s *Service) Tracking(date time.Time) *models.DailyTracking {
	if rec, ok := s.snap.State().Tracking[models.DateKey(date)]; ok {
		return rec
	}
	return models.NewDailyTracking(date)
}

// Reconcile re-derives the non-authoritative side of date's record and
// stores it when something changed.
func (s *Service) Reconcile(ctx context.Context, date time.Time) (bool, error) {
	key := models.DateKey(date)
	pending, err := s.snap.Apply(func(st *snapshot.State) ([]models.Change, error) {
		rec, ok := st.Tracking[key]
		if !ok || !engine.Reconcile(rec) {
			return nil, nil
		}
		return []models.Change{models.TrackingChange(rec.Clone())}, nil
	})
	if err != nil {
		return false, err
	}
	if len(pending.Changes()) == 0 {
		return false, nil
	}
	return true, s.commit(ctx, pending)
}

// findLog resolves an ID or unique ID prefix against the snapshot.
func findLog(st snapshot.State, idOrPrefix string) (*models.WeightLog, error) {
	prefix := strings.ToLower(strings.TrimSpace(idOrPrefix))
	if prefix == "" {
		return nil, fmt.Errorf("empty id: %w", storage.ErrNotFound)
	}

	var matches []*models.WeightLog
	for _, l := range st.Logs {
		if strings.HasPrefix(l.ID.String(), prefix) {
			matches = append(matches, l)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].RecordedAt.After(matches[j].RecordedAt) })

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("weight log %s: %w", idOrPrefix, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w %s: matches %d records", storage.ErrAmbiguousPrefix, idOrPrefix, len(matches))
	}
}

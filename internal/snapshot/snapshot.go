// ABOUTME: In-memory snapshot of profile, logs, and tracking with optimistic writes.
// ABOUTME: Writes apply immediately and roll back per entity if persistence fails.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harperreed/makeweight/internal/engine"
	"github.com/harperreed/makeweight/internal/models"
)

// ErrSyncFailed is returned by Commit when a persister rejects a change.
var ErrSyncFailed = errors.New("sync failed")

// Persister confirms a single change against a store.
type Persister interface {
	Persist(ctx context.Context, c models.Change) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, c models.Change) error

// Persist calls f.
func (f PersisterFunc) Persist(ctx context.Context, c models.Change) error {
	return f(ctx, c)
}

// Chain persists to each store in order and stops at the first failure.
type Chain []Persister

// Persist implements Persister.
func (ch Chain) Persist(ctx context.Context, c models.Change) error {
	for _, p := range ch {
		if p == nil {
			continue
		}
		if err := p.Persist(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// State is the data every derived value is computed from.
type State struct {
	Profile  *models.AthleteProfile
	Logs     []*models.WeightLog
	Tracking map[string]*models.DailyTracking
}

// Clone deep-copies the state.
func (s State) Clone() State {
	c := State{Tracking: make(map[string]*models.DailyTracking, len(s.Tracking))}
	if s.Profile != nil {
		c.Profile = s.Profile.Clone()
	}
	c.Logs = make([]*models.WeightLog, 0, len(s.Logs))
	for _, l := range s.Logs {
		c.Logs = append(c.Logs, l.Clone())
	}
	for k, v := range s.Tracking {
		c.Tracking[k] = v.Clone()
	}
	return c
}

// FindLog returns the log with id, or nil.
func (s State) FindLog(id uuid.UUID) *models.WeightLog {
	for _, l := range s.Logs {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Snapshot guards a State. Readers always get a copy.
type Snapshot struct {
	mu     sync.RWMutex
	state  State
	logger *log.Logger
}

// New wraps state. A nil logger discards output.
func New(state State, logger *log.Logger) *Snapshot {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if state.Tracking == nil {
		state.Tracking = make(map[string]*models.DailyTracking)
	}
	return &Snapshot{state: state.Clone(), logger: logger}
}

// State returns a copy of the current state.
func (s *Snapshot) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Mutator edits state in place and returns the changes to persist.
type Mutator func(st *State) ([]models.Change, error)

// Apply runs mutate against the live state. If mutate fails nothing changes.
func (s *Snapshot) Apply(mutate Mutator) (*Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.state.Clone()
	working := s.state.Clone()
	changes, err := mutate(&working)
	if err != nil {
		return nil, err
	}
	sortLogs(working.Logs)
	s.state = working

	for _, c := range changes {
		s.logger.Debug("applied", "change", c.String())
	}
	return &Pending{snap: s, before: before, changes: changes}, nil
}

// AddLog appends a new weight log entry.
func (s *Snapshot) AddLog(l *models.WeightLog) (*Pending, error) {
	return s.Apply(func(st *State) ([]models.Change, error) {
		st.Logs = append(st.Logs, l.Clone())
		return []models.Change{models.LogChange(models.OpUpsert, l.Clone())}, nil
	})
}

// UpdateLog replaces an existing entry with the same ID.
func (s *Snapshot) UpdateLog(l *models.WeightLog) (*Pending, error) {
	return s.Apply(func(st *State) ([]models.Change, error) {
		for i, existing := range st.Logs {
			if existing.ID == l.ID {
				st.Logs[i] = l.Clone()
				return []models.Change{models.LogChange(models.OpUpsert, l.Clone())}, nil
			}
		}
		return nil, fmt.Errorf("weight log %s not in snapshot", l.ShortID())
	})
}

// DeleteLog removes the entry with id.
func (s *Snapshot) DeleteLog(id uuid.UUID) (*Pending, error) {
	return s.Apply(func(st *State) ([]models.Change, error) {
		for i, existing := range st.Logs {
			if existing.ID == id {
				st.Logs = append(st.Logs[:i], st.Logs[i+1:]...)
				return []models.Change{models.LogChange(models.OpDelete, existing)}, nil
			}
		}
		return nil, fmt.Errorf("weight log %s not in snapshot", id.String()[:8])
	})
}

// Track edits the tracking record for date, creating it when missing, then
// reconciles slices and grams from whichever side was written last.
func (s *Snapshot) Track(date string, edit func(d *models.DailyTracking)) (*Pending, error) {
	return s.Apply(func(st *State) ([]models.Change, error) {
		rec, ok := st.Tracking[date]
		if !ok {
			rec = &models.DailyTracking{Date: date}
			st.Tracking[date] = rec
		}
		edit(rec)
		engine.Reconcile(rec)
		return []models.Change{models.TrackingChange(rec.Clone())}, nil
	})
}

// SetProfile replaces the profile.
func (s *Snapshot) SetProfile(p *models.AthleteProfile) (*Pending, error) {
	return s.Apply(func(st *State) ([]models.Change, error) {
		st.Profile = p.Clone()
		return []models.Change{models.ProfileChange(p.Clone())}, nil
	})
}

// Pending is an applied but unconfirmed write.
type Pending struct {
	snap    *Snapshot
	before  State
	changes []models.Change
	done    bool
}

// Changes returns the changes awaiting confirmation.
func (p *Pending) Changes() []models.Change {
	return p.changes
}

// Commit persists every change. On the first failure the write is rolled back
// and an error wrapping ErrSyncFailed is returned.
func (p *Pending) Commit(ctx context.Context, store Persister) error {
	if p.done {
		return nil
	}
	for _, c := range p.changes {
		if err := ctx.Err(); err != nil {
			p.Rollback()
			return fmt.Errorf("%w: %s: %w", ErrSyncFailed, c, err)
		}
		if err := store.Persist(ctx, c); err != nil {
			p.snap.logger.Warn("persist failed, rolling back", "change", c.String(), "err", err)
			p.Rollback()
			return fmt.Errorf("%w: %s: %w", ErrSyncFailed, c, err)
		}
	}
	p.done = true
	return nil
}

// Rollback restores every entity this write touched to its prior value.
// Unrelated writes made since Apply are kept.
func (p *Pending) Rollback() {
	if p.done {
		return
	}
	p.done = true

	s := p.snap
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(p.changes) - 1; i >= 0; i-- {
		c := p.changes[i]
		switch c.Kind {
		case models.ChangeWeightLog:
			if c.Log != nil {
				s.state.Logs = restoreLog(s.state.Logs, p.before.FindLog(c.Log.ID), c.Log.ID)
			}
		case models.ChangeTracking:
			if c.Tracking != nil {
				if prev, ok := p.before.Tracking[c.Tracking.Date]; ok {
					s.state.Tracking[c.Tracking.Date] = prev.Clone()
				} else {
					delete(s.state.Tracking, c.Tracking.Date)
				}
			}
		case models.ChangeProfile:
			if p.before.Profile != nil {
				s.state.Profile = p.before.Profile.Clone()
			} else {
				s.state.Profile = nil
			}
		}
		s.logger.Debug("rolled back", "change", c.String())
	}
	sortLogs(s.state.Logs)
}

func restoreLog(logs []*models.WeightLog, prev *models.WeightLog, id uuid.UUID) []*models.WeightLog {
	out := logs[:0:0]
	for _, l := range logs {
		if l.ID != id {
			out = append(out, l)
		}
	}
	if prev != nil {
		out = append(out, prev.Clone())
	}
	return out
}

func sortLogs(logs []*models.WeightLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].RecordedAt.Before(logs[j].RecordedAt)
	})
}

// ABOUTME: Application service shared by the CLI, MCP server, and HTTP API.
// ABOUTME: Owns the in-memory snapshot and confirms writes against the primary store.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/makeweight/internal/analytics"
	"github.com/harperreed/makeweight/internal/engine"
	"github.com/harperreed/makeweight/internal/logging"
	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/snapshot"
)

// ErrNoProfile is returned by operations that need a profile before one exists.
var ErrNoProfile = errors.New("no athlete profile: run `makeweight profile set` first")

type stateStore interface {
	snapshot.Persister
	LoadState(ctx context.Context) (snapshot.State, error)
}

// Service answers every read from the snapshot. Writes are confirmed against
// the primary store; mirrors receive them afterwards on a best-effort basis.
type Service struct {
	snap            *snapshot.Snapshot
	primary         snapshot.Persister
	mirrors         snapshot.Chain
	now             func() time.Time
	log             *log.Logger
	defaultActivity string
}

// Option configures a Service.
type Option func(*Service)

// WithMirror adds a persister that receives every write after the primary
// store confirms it. Mirror failures are logged, never rolled back.
func WithMirror(p snapshot.Persister) Option {
	return func(s *Service) {
		if p != nil {
			s.mirrors = append(s.mirrors, p)
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDefaultActivity sets the activity level used when the profile has none.
func WithDefaultActivity(level string) Option {
	return func(s *Service) { s.defaultActivity = level }
}

// New loads the state from store and returns a ready service.
func New(ctx context.Context, store stateStore, opts ...Option) (*Service, error) {
	s := &Service{
		primary: store,
		now:     time.Now,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	st, err := store.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	s.snap = snapshot.New(st, s.log)
	s.log.Debug("state loaded", "logs", len(st.Logs), "tracking", len(st.Tracking), "profile", st.Profile != nil)
	return s, nil
}

// commit confirms a pending write against the primary store, rolling it back
// on failure, then forwards it to each mirror.
func (s *Service) commit(ctx context.Context, p *snapshot.Pending) error {
	if err := p.Commit(ctx, s.primary); err != nil {
		s.log.Warn("write rolled back", "err", err)
		return err
	}
	for _, c := range p.Changes() {
		for _, m := range s.mirrors {
			if err := m.Persist(ctx, c); err != nil {
				s.log.Warn("mirror write failed", "change", c.String(), "err", err)
			}
		}
	}
	return nil
}

// State returns a copy of the current snapshot.
func (s *Service) State() snapshot.State {
	return s.snap.State()
}

// Now returns the wall clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// Today resolves the effective date, honouring the profile's simulated date.
func (s *Service) Today() time.Time {
	st := s.snap.State()
	if st.Profile != nil {
		return models.DateOnly(st.Profile.Today(s.now()))
	}
	return models.DateOnly(s.now())
}

// Profile returns a copy of the profile or ErrNoProfile.
func (s *Service) Profile() (*models.AthleteProfile, error) {
	st := s.snap.State()
	if st.Profile == nil {
		return nil, ErrNoProfile
	}
	return st.Profile, nil
}

// athlete returns the profile as the engine should see it: newest logged
// weight as current weight and the configured activity default applied.
func (s *Service) athlete(st snapshot.State) (*models.AthleteProfile, error) {
	if st.Profile == nil {
		return nil, ErrNoProfile
	}
	p := st.Profile.Clone()
	if latest := models.Latest(st.Logs); latest != nil {
		p.CurrentWeight = latest.Weight
	}
	if p.ActivityLevel == "" {
		p.ActivityLevel = s.defaultActivity
	}
	return p, nil
}

// Targets computes every target for date (zero means today).
func (s *Service) Targets(date time.Time) (engine.Targets, error) {
	st := s.snap.State()
	p, err := s.athlete(st)
	if err != nil {
		return engine.Targets{}, err
	}
	if date.IsZero() {
		date = models.DateOnly(p.Today(s.now()))
	}
	return engine.ComputeTargets(p, p.Protocol, date), nil
}

// Phase classifies today.
func (s *Service) Phase() (engine.Phase, int, error) {
	st := s.snap.State()
	if st.Profile == nil {
		return "", 0, ErrNoProfile
	}
	days := engine.DaysUntilWeighIn(st.Profile, st.Profile.Today(s.now()))
	return engine.ClassifyPhase(days, st.Profile.Protocol), days, nil
}

// Plan builds the seven-day plan around today.
func (s *Service) Plan() ([]engine.DayPlan, error) {
	st := s.snap.State()
	p, err := s.athlete(st)
	if err != nil {
		return nil, err
	}
	return engine.BuildWeeklyPlan(p, st.Logs, p.Today(s.now())), nil
}

// Rates scans the full log history.
func (s *Service) Rates() analytics.Rates {
	return analytics.ComputeRates(s.snap.State().Logs)
}

// Status computes the dashboard status for today.
func (s *Service) Status() (analytics.Status, error) {
	st := s.snap.State()
	p, err := s.athlete(st)
	if err != nil {
		return analytics.Status{}, err
	}
	return analytics.BuildStatus(p, st.Logs, p.Today(s.now())), nil
}

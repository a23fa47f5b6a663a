// ABOUTME: Tests for optimistic apply, commit, and per-entity rollback.
// ABOUTME: Persisters are simple in-memory fakes.
package snapshot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/makeweight/internal/models"
)

var errRemote = errors.New("remote unavailable")

type recorder struct {
	mu      sync.Mutex
	changes []models.Change
	fail    bool
}

func (r *recorder) Persist(_ context.Context, c models.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errRemote
	}
	r.changes = append(r.changes, c)
	return nil
}

var day0 = time.Date(2025, 3, 3, 7, 0, 0, 0, time.UTC)

func newSnap(t *testing.T) *Snapshot {
	t.Helper()
	p := models.NewAthleteProfile("Sam", 172, 165, day0.AddDate(0, 0, 5), models.ProtocolRapidCut)
	return New(State{Profile: p}, nil)
}

func TestAddLogCommit(t *testing.T) {
	s := newSnap(t)
	store := &recorder{}

	l := models.NewWeightLog(models.MeasureMorning, 171).WithRecordedAt(day0)
	pending, err := s.AddLog(l)
	require.NoError(t, err)
	assert.Len(t, s.State().Logs, 1, "visible before commit")

	require.NoError(t, pending.Commit(context.Background(), store))
	assert.Len(t, store.changes, 1)
	assert.Equal(t, models.OpUpsert, store.changes[0].Op)
	assert.Len(t, s.State().Logs, 1)
}

func TestCommitFailureRollsBack(t *testing.T) {
	s := newSnap(t)
	kept := models.NewWeightLog(models.MeasureMorning, 171).WithRecordedAt(day0)
	p, err := s.AddLog(kept)
	require.NoError(t, err)
	require.NoError(t, p.Commit(context.Background(), &recorder{}))

	edited := kept.Clone()
	edited.Weight = 150
	pending, err := s.UpdateLog(edited)
	require.NoError(t, err)
	assert.Equal(t, 150.0, s.State().FindLog(kept.ID).Weight)

	err = pending.Commit(context.Background(), &recorder{fail: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyncFailed)
	assert.ErrorIs(t, err, errRemote)
	assert.Equal(t, 171.0, s.State().FindLog(kept.ID).Weight)
}

func TestRollbackKeepsUnrelatedWrites(t *testing.T) {
	s := newSnap(t)
	first := models.NewWeightLog(models.MeasureMorning, 171).WithRecordedAt(day0)
	second := models.NewWeightLog(models.MeasureBeforeBed, 173).WithRecordedAt(day0.Add(14 * time.Hour))

	p1, err := s.AddLog(first)
	require.NoError(t, err)
	p2, err := s.AddLog(second)
	require.NoError(t, err)
	require.NoError(t, p2.Commit(context.Background(), &recorder{}))

	p1.Rollback()
	logs := s.State().Logs
	require.Len(t, logs, 1)
	assert.Equal(t, second.ID, logs[0].ID)

	// A second rollback or a commit after rollback does nothing.
	p1.Rollback()
	assert.NoError(t, p1.Commit(context.Background(), &recorder{fail: true}))
	assert.Len(t, s.State().Logs, 1)
}

func TestDeleteLogRollbackRestores(t *testing.T) {
	s := newSnap(t)
	l := models.NewWeightLog(models.MeasureMorning, 171).WithRecordedAt(day0)
	p, _ := s.AddLog(l)
	require.NoError(t, p.Commit(context.Background(), &recorder{}))

	pending, err := s.DeleteLog(l.ID)
	require.NoError(t, err)
	assert.Empty(t, s.State().Logs)

	pending.Rollback()
	require.Len(t, s.State().Logs, 1)
	assert.Equal(t, l.ID, s.State().Logs[0].ID)

	_, err = s.DeleteLog(models.NewWeightLog(models.MeasureMorning, 170).ID)
	assert.Error(t, err)
}

func TestTrackReconciles(t *testing.T) {
	s := newSnap(t)
	date := models.DateKey(day0)

	pending, err := s.Track(date, func(d *models.DailyTracking) {
		d.AddSlices(models.Slices{Protein: 2, Carb: 3})
	})
	require.NoError(t, err)

	rec := s.State().Tracking[date]
	require.NotNil(t, rec)
	assert.Equal(t, 50.0, rec.ProteinG)
	assert.Equal(t, 90.0, rec.CarbsG)

	require.Len(t, pending.Changes(), 1)
	assert.Equal(t, models.ChangeTracking, pending.Changes()[0].Kind)

	err = pending.Commit(context.Background(), &recorder{fail: true})
	assert.ErrorIs(t, err, ErrSyncFailed)
	_, ok := s.State().Tracking[date]
	assert.False(t, ok, "new record removed on rollback")
}

func TestSetProfileRollback(t *testing.T) {
	s := newSnap(t)
	p := s.State().Profile
	p.TargetClass = 157

	pending, err := s.SetProfile(p)
	require.NoError(t, err)
	assert.Equal(t, 157.0, s.State().Profile.TargetClass)

	pending.Rollback()
	assert.Equal(t, 165.0, s.State().Profile.TargetClass)
}

func TestApplyErrorLeavesStateUntouched(t *testing.T) {
	s := newSnap(t)
	_, err := s.Apply(func(st *State) ([]models.Change, error) {
		st.Profile.TargetClass = 1
		return nil, errRemote
	})
	assert.ErrorIs(t, err, errRemote)
	assert.Equal(t, 165.0, s.State().Profile.TargetClass)
}

func TestStateIsACopy(t *testing.T) {
	s := newSnap(t)
	st := s.State()
	st.Profile.Name = "changed"
	assert.Equal(t, "Sam", s.State().Profile.Name)
}

func TestChainStopsAtFirstFailure(t *testing.T) {
	a, b, c := &recorder{}, &recorder{fail: true}, &recorder{}
	chain := Chain{a, nil, b, c}

	err := chain.Persist(context.Background(), models.ProfileChange(&models.AthleteProfile{}))
	assert.ErrorIs(t, err, errRemote)
	assert.Len(t, a.changes, 1)
	assert.Empty(t, c.changes)
}

func TestCommitHonorsCancelledContext(t *testing.T) {
	s := newSnap(t)
	pending, err := s.AddLog(models.NewWeightLog(models.MeasureMorning, 171).WithRecordedAt(day0))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = pending.Commit(ctx, &recorder{})
	assert.ErrorIs(t, err, ErrSyncFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.State().Logs)
}

func TestConcurrentWrites(t *testing.T) {
	s := newSnap(t)
	store := &recorder{}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l := models.NewWeightLog(models.MeasureCheckIn, 170+float64(i)/10).WithRecordedAt(day0.Add(time.Duration(i) * time.Minute))
			p, err := s.AddLog(l)
			if err == nil {
				_ = p.Commit(context.Background(), store)
			}
			_ = s.State()
		}(i)
	}
	wg.Wait()

	logs := s.State().Logs
	assert.Len(t, logs, 20)
	for i := 1; i < len(logs); i++ {
		assert.False(t, logs[i].RecordedAt.Before(logs[i-1].RecordedAt))
	}
	assert.Len(t, store.changes, 20)
}

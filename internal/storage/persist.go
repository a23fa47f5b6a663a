// ABOUTME: Snapshot plumbing: loads the full state and confirms single changes.
// ABOUTME: DB satisfies snapshot.Persister so it can sit in a persist chain.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/snapshot"
)

// Persist writes one change. Log upserts replace by ID; deletes of missing
// entries succeed so retries are harmless.
func (d *DB) Persist(ctx context.Context, c models.Change) error {
	var err error
	switch c.Kind {
	case models.ChangeWeightLog:
		if c.Log == nil {
			return errors.New("persist: weight log change without log")
		}
		if c.Op == models.OpDelete {
			err = d.DeleteLog(ctx, c.Log.ID.String())
			if errors.Is(err, ErrNotFound) {
				err = nil
			}
		} else {
			err = d.upsertLog(ctx, c.Log)
		}
	case models.ChangeTracking:
		if c.Tracking == nil {
			return errors.New("persist: tracking change without record")
		}
		err = d.SaveTracking(ctx, c.Tracking)
	case models.ChangeProfile:
		if c.Profile == nil {
			return errors.New("persist: profile change without profile")
		}
		err = d.SaveProfile(ctx, c.Profile)
	default:
		return fmt.Errorf("persist: unknown change kind %q", c.Kind)
	}
	if err != nil {
		return fmt.Errorf("persist %s: %w", c, err)
	}
	d.logger.Debug("persisted", "change", c.String())
	return nil
}

// LoadState reads everything a snapshot needs. A missing profile leaves
// State.Profile nil.
func (d *DB) LoadState(ctx context.Context) (snapshot.State, error) {
	st := snapshot.State{Tracking: make(map[string]*models.DailyTracking)}

	p, err := d.GetProfile(ctx)
	switch {
	case err == nil:
		st.Profile = p
	case !errors.Is(err, ErrNotFound):
		return st, err
	}

	logs, err := d.ListLogs(ctx, LogFilter{})
	if err != nil {
		return st, err
	}
	// Snapshot order is oldest first.
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	st.Logs = logs

	recs, err := d.ListTracking(ctx)
	if err != nil {
		return st, err
	}
	for _, r := range recs {
		st.Tracking[r.Date] = r
	}
	return st, nil
}

// ABOUTME: Profile, weight log, and tracking records stored as JSON under typed keys.
// ABOUTME: Implements snapshot.Persister and storage.Exporter for the sync commands.
package charm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/snapshot"
	"github.com/harperreed/makeweight/internal/storage"
)

// SaveProfile stores the profile.
func (c *Client) SaveProfile(p *models.AthleteProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return c.set(ProfileKey, data)
}

// GetProfile returns the stored profile or ErrNotFound.
func (c *Client) GetProfile() (*models.AthleteProfile, error) {
	data, err := c.get(ProfileKey)
	if err != nil {
		return nil, err
	}
	return unmarshalJSON[models.AthleteProfile](data)
}

// PutLog inserts or replaces a weight log entry.
func (c *Client) PutLog(l *models.WeightLog) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal weight log: %w", err)
	}
	return c.set(WeightLogPrefix+l.ID.String(), data)
}

// GetLog retrieves an entry by ID or unique prefix.
func (c *Client) GetLog(idOrPrefix string) (*models.WeightLog, error) {
	key, err := c.resolveKey(WeightLogPrefix, idOrPrefix)
	if err != nil {
		return nil, err
	}
	data, err := c.get(key)
	if err != nil {
		return nil, err
	}
	return unmarshalJSON[models.WeightLog](data)
}

// ListLogs returns entries newest first. A positive limit truncates.
func (c *Client) ListLogs(limit int) ([]*models.WeightLog, error) {
	values, err := c.listByPrefix(WeightLogPrefix)
	if err != nil {
		return nil, fmt.Errorf("list weight logs: %w", err)
	}

	logs := make([]*models.WeightLog, 0, len(values))
	for _, v := range values {
		l, err := unmarshalJSON[models.WeightLog](v)
		if err != nil {
			c.logger.Warn("skipping unreadable weight log", "err", err)
			continue
		}
		logs = append(logs, l)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].RecordedAt.After(logs[j].RecordedAt)
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// DeleteLog removes an entry by ID or unique prefix.
func (c *Client) DeleteLog(idOrPrefix string) error {
	key, err := c.resolveKey(WeightLogPrefix, idOrPrefix)
	if err != nil {
		return err
	}
	return c.delete(key)
}

// SaveTracking stores the record under its date.
func (c *Client) SaveTracking(rec *models.DailyTracking) error {
	if _, err := time.Parse(models.DateLayout, rec.Date); err != nil {
		return fmt.Errorf("save tracking: invalid date %q", rec.Date)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal tracking: %w", err)
	}
	return c.set(TrackingPrefix+rec.Date, data)
}

// GetTracking returns the record for date or ErrNotFound.
func (c *Client) GetTracking(date string) (*models.DailyTracking, error) {
	data, err := c.get(TrackingPrefix + date)
	if err != nil {
		return nil, err
	}
	return unmarshalJSON[models.DailyTracking](data)
}

// ListTracking returns every record, oldest date first.
func (c *Client) ListTracking() ([]*models.DailyTracking, error) {
	values, err := c.listByPrefix(TrackingPrefix)
	if err != nil {
		return nil, fmt.Errorf("list tracking: %w", err)
	}
	out := make([]*models.DailyTracking, 0, len(values))
	for _, v := range values {
		rec, err := unmarshalJSON[models.DailyTracking](v)
		if err != nil {
			c.logger.Warn("skipping unreadable tracking record", "err", err)
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Persist writes one change. Deleting a missing entry succeeds.
func (c *Client) Persist(ctx context.Context, ch models.Change) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var err error
	switch ch.Kind {
	case models.ChangeWeightLog:
		if ch.Log == nil {
			return errors.New("persist: weight log change without log")
		}
		if ch.Op == models.OpDelete {
			err = c.delete(WeightLogPrefix + ch.Log.ID.String())
		} else {
			err = c.PutLog(ch.Log)
		}
	case models.ChangeTracking:
		if ch.Tracking == nil {
			return errors.New("persist: tracking change without record")
		}
		err = c.SaveTracking(ch.Tracking)
	case models.ChangeProfile:
		if ch.Profile == nil {
			return errors.New("persist: profile change without profile")
		}
		err = c.SaveProfile(ch.Profile)
	default:
		return fmt.Errorf("persist: unknown change kind %q", ch.Kind)
	}
	if err != nil {
		return fmt.Errorf("charm persist %s: %w", ch, err)
	}
	return nil
}

// LoadState reads everything a snapshot needs from the mirror.
func (c *Client) LoadState(_ context.Context) (snapshot.State, error) {
	st := snapshot.State{Tracking: make(map[string]*models.DailyTracking)}

	p, err := c.GetProfile()
	switch {
	case err == nil:
		st.Profile = p
	case !errors.Is(err, ErrNotFound):
		return st, err
	}

	logs, err := c.ListLogs(0)
	if err != nil {
		return st, err
	}
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].RecordedAt.Before(logs[j].RecordedAt)
	})
	st.Logs = logs

	recs, err := c.ListTracking()
	if err != nil {
		return st, err
	}
	for _, r := range recs {
		st.Tracking[r.Date] = r
	}
	return st, nil
}

// GetAllData returns the mirror's contents in export form.
func (c *Client) GetAllData(ctx context.Context) (*storage.ExportData, error) {
	st, err := c.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	data := &storage.ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "makeweight",
		Profile:    st.Profile,
		WeightLogs: st.Logs,
	}
	for _, r := range st.Tracking {
		data.Tracking = append(data.Tracking, r)
	}
	sort.Slice(data.Tracking, func(i, j int) bool { return data.Tracking[i].Date < data.Tracking[j].Date })
	return data, nil
}

// Counts reports how many records the mirror holds.
type Counts struct {
	Profile    bool
	WeightLogs int
	Tracking   int
}

// Count returns record counts for sync status output.
func (c *Client) Count() (Counts, error) {
	var n Counts
	if _, err := c.GetProfile(); err == nil {
		n.Profile = true
	}
	logs, err := c.listByPrefix(WeightLogPrefix)
	if err != nil {
		return n, err
	}
	recs, err := c.listByPrefix(TrackingPrefix)
	if err != nil {
		return n, err
	}
	n.WeightLogs = len(logs)
	n.Tracking = len(recs)
	return n, nil
}

var (
	_ snapshot.Persister = (*Client)(nil)
	_ storage.Exporter   = (*Client)(nil)
)

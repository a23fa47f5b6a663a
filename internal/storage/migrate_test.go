// ABOUTME: Tests for copying data between stores through Persist.
// ABOUTME: Covers SQLite-to-SQLite copies and idempotent re-runs.
package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/snapshot"
)

func TestMigrateDataSQLiteToSQLite(t *testing.T) {
	src := setupTestDB(t)
	seedExportData(t, src)
	dst := setupTestDB(t)
	ctx := context.Background()

	summary, err := MigrateData(ctx, src, dst)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}
	if !summary.Profile || summary.WeightLogs != 3 || summary.Tracking != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	// Running again leaves the destination unchanged
	if _, err := MigrateData(ctx, src, dst); err != nil {
		t.Fatalf("Second MigrateData failed: %v", err)
	}
	st, err := dst.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if st.Profile == nil || len(st.Logs) != 3 || len(st.Tracking) != 1 {
		t.Errorf("Destination state mismatch: profile=%v logs=%d tracking=%d",
			st.Profile != nil, len(st.Logs), len(st.Tracking))
	}
}

func TestMigrateDataStopsOnFailure(t *testing.T) {
	src := setupTestDB(t)
	seedExportData(t, src)

	boom := errors.New("remote down")
	calls := 0
	dst := snapshot.PersisterFunc(func(_ context.Context, c models.Change) error {
		calls++
		if c.Kind == models.ChangeWeightLog {
			return boom
		}
		return nil
	})

	summary, err := MigrateData(context.Background(), src, dst)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped failure, got %v", err)
	}
	if !summary.Profile || summary.WeightLogs != 0 {
		t.Errorf("Expected profile copied and no logs, got %+v", summary)
	}
	if calls != 2 {
		t.Errorf("Expected 2 persist calls, got %d", calls)
	}
}

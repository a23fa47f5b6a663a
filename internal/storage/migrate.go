// ABOUTME: Copies every record from one store into another through Persist.
// ABOUTME: Used to push the local database into the Charm mirror.
package storage

import (
	"context"
	"fmt"

	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/snapshot"
)

// Exporter is anything that can produce a full export.
type Exporter interface {
	GetAllData(ctx context.Context) (*ExportData, error)
}

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Profile    bool
	WeightLogs int
	Tracking   int
}

// MigrateData copies all data from src to dst. Writes are upserts, so running
// it twice leaves dst unchanged.
func MigrateData(ctx context.Context, src Exporter, dst snapshot.Persister) (*MigrateSummary, error) {
	data, err := src.GetAllData(ctx)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	summary := &MigrateSummary{}
	if data.Profile != nil {
		if err := dst.Persist(ctx, models.ProfileChange(data.Profile)); err != nil {
			return summary, fmt.Errorf("copy profile: %w", err)
		}
		summary.Profile = true
	}

	for _, l := range data.WeightLogs {
		if err := dst.Persist(ctx, models.LogChange(models.OpUpsert, l)); err != nil {
			return summary, fmt.Errorf("copy weight log %s: %w", l.ID, err)
		}
		summary.WeightLogs++
	}

	for _, rec := range data.Tracking {
		if err := dst.Persist(ctx, models.TrackingChange(rec)); err != nil {
			return summary, fmt.Errorf("copy tracking %s: %w", rec.Date, err)
		}
		summary.Tracking++
	}

	return summary, nil
}

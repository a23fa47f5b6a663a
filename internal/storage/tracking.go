// ABOUTME: Daily tracking persistence keyed by calendar date.
// ABOUTME: Slices are stored as one column per category.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/harperreed/makeweight/internal/models"
)

var trackingColumns = []string{
	"date", "water_oz", "carbs_g", "protein_g",
	"protein_slices", "carb_slices", "veg_slices", "fruit_slices", "fat_slices",
	"last_mode", "updated_at",
}

// GetTracking returns the record for date (YYYY-MM-DD) or ErrNotFound.
func (d *DB) GetTracking(ctx context.Context, date string) (*models.DailyTracking, error) {
	query, args, err := d.sb.Select(trackingColumns...).From("daily_tracking").
		Where(sq.Eq{"date": date}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tracking query: %w", err)
	}

	rec, err := scanTracking(d.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tracking %s: %w", date, ErrNotFound)
	}
	return rec, err
}

// SaveTracking inserts or replaces the record for its date.
func (d *DB) SaveTracking(ctx context.Context, rec *models.DailyTracking) error {
	if _, err := time.Parse(models.DateLayout, rec.Date); err != nil {
		return fmt.Errorf("save tracking: invalid date %q", rec.Date)
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	query, args, err := d.sb.Insert("daily_tracking").
		Columns(trackingColumns...).
		Values(rec.Date, rec.WaterOz, rec.CarbsG, rec.ProteinG,
			rec.Slices.Protein, rec.Slices.Carb, rec.Slices.Veg, rec.Slices.Fruit, rec.Slices.Fat,
			string(rec.LastMode), formatTime(updatedAt)).
		Suffix(`ON CONFLICT(date) DO UPDATE SET
			water_oz = excluded.water_oz,
			carbs_g = excluded.carbs_g,
			protein_g = excluded.protein_g,
			protein_slices = excluded.protein_slices,
			carb_slices = excluded.carb_slices,
			veg_slices = excluded.veg_slices,
			fruit_slices = excluded.fruit_slices,
			fat_slices = excluded.fat_slices,
			last_mode = excluded.last_mode,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build tracking upsert: %w", err)
	}

	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save tracking: %w", err)
	}
	return nil
}

// ListTracking returns every record, oldest date first.
func (d *DB) ListTracking(ctx context.Context) ([]*models.DailyTracking, error) {
	query, args, err := d.sb.Select(trackingColumns...).From("daily_tracking").OrderBy("date ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tracking list: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tracking: %w", err)
	}
	defer rows.Close()

	var out []*models.DailyTracking
	for rows.Next() {
		rec, err := scanTracking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanTracking(row rowScanner) (*models.DailyTracking, error) {
	var (
		rec       models.DailyTracking
		lastMode  string
		updatedAt string
	)
	err := row.Scan(&rec.Date, &rec.WaterOz, &rec.CarbsG, &rec.ProteinG,
		&rec.Slices.Protein, &rec.Slices.Carb, &rec.Slices.Veg, &rec.Slices.Fruit, &rec.Slices.Fat,
		&lastMode, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan tracking: %w", err)
	}
	rec.LastMode = models.TrackingMode(lastMode)
	rec.UpdatedAt = parseTime(updatedAt)
	return &rec, nil
}

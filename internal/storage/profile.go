// ABOUTME: Profile persistence: a single row keyed by id 1.
// ABOUTME: Dates are stored as YYYY-MM-DD text, timestamps as RFC3339.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/makeweight/internal/models"
)

var profileColumns = []string{
	"name", "current_weight", "target_class", "weigh_in_date", "protocol",
	"simulated_today", "macro_mode", "sex", "age_years", "height_inches",
	"activity_level", "created_at", "updated_at",
}

// GetProfile returns the stored profile or ErrNotFound.
func (d *DB) GetProfile(ctx context.Context) (*models.AthleteProfile, error) {
	query, args, err := d.sb.Select(profileColumns...).From("profile").Where("id = 1").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile query: %w", err)
	}

	var (
		p                             models.AthleteProfile
		weighIn, createdAt, updatedAt string
		simulated                     sql.NullString
		macroMode, sex, activity      string
		protocol                      int
	)
	err = d.db.QueryRowContext(ctx, query, args...).Scan(
		&p.Name, &p.CurrentWeight, &p.TargetClass, &weighIn, &protocol,
		&simulated, &macroMode, &sex, &p.AgeYears, &p.HeightInches,
		&activity, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	p.Protocol = models.Protocol(protocol)
	p.MacroMode = models.TrackingMode(macroMode)
	p.Sex = sex
	p.ActivityLevel = activity
	p.WeighInDate, _ = time.Parse(models.DateLayout, weighIn)
	if simulated.Valid {
		if t, err := time.Parse(models.DateLayout, simulated.String); err == nil {
			p.SimulatedToday = &t
		}
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

// SaveProfile inserts or replaces the profile.
func (d *DB) SaveProfile(ctx context.Context, p *models.AthleteProfile) error {
	if !p.Protocol.Valid() {
		return fmt.Errorf("save profile: %w", models.ErrUnknownProtocol)
	}

	var simulated any
	if p.SimulatedToday != nil {
		simulated = models.DateKey(*p.SimulatedToday)
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	query, args, err := d.sb.Insert("profile").
		Columns(append([]string{"id"}, profileColumns...)...).
		Values(1, p.Name, p.CurrentWeight, p.TargetClass, models.DateKey(p.WeighInDate), int(p.Protocol),
			simulated, string(p.MacroMode), p.Sex, p.AgeYears, p.HeightInches,
			p.ActivityLevel, createdAt.UTC().Format(time.RFC3339), updatedAt.UTC().Format(time.RFC3339)).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			current_weight = excluded.current_weight,
			target_class = excluded.target_class,
			weigh_in_date = excluded.weigh_in_date,
			protocol = excluded.protocol,
			simulated_today = excluded.simulated_today,
			macro_mode = excluded.macro_mode,
			sex = excluded.sex,
			age_years = excluded.age_years,
			height_inches = excluded.height_inches,
			activity_level = excluded.activity_level,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build profile upsert: %w", err)
	}

	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

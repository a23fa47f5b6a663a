// ABOUTME: Weight log CRUD operations for SQLite storage.
// ABOUTME: Supports ID-prefix lookup and squirrel-built filtered listing.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/units"
)

var logColumns = []string{
	"id", "measurement_type", "weight", "recorded_at", "duration_minutes", "notes", "created_at",
}

// CreateLog stores a new weight log entry.
func (d *DB) CreateLog(ctx context.Context, l *models.WeightLog) error {
	if err := validateLog(l); err != nil {
		return fmt.Errorf("create weight log: %w", err)
	}

	query, args, err := d.sb.Insert("weight_logs").
		Columns(logColumns...).
		Values(logValues(l)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create weight log: %w", err)
	}
	d.logger.Debug("weight log created", "id", l.ShortID(), "type", l.Type, "weight", l.Weight)
	return nil
}

// UpdateLog rewrites an existing entry. Returns ErrNotFound when absent.
func (d *DB) UpdateLog(ctx context.Context, l *models.WeightLog) error {
	if err := validateLog(l); err != nil {
		return fmt.Errorf("update weight log: %w", err)
	}

	query, args, err := d.sb.Update("weight_logs").
		Set("measurement_type", string(l.Type)).
		Set("weight", l.Weight).
		Set("recorded_at", formatTime(l.RecordedAt)).
		Set("duration_minutes", l.DurationMinutes).
		Set("notes", l.Notes).
		Where(sq.Eq{"id": l.ID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update weight log: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("update weight log %s: %w", l.ShortID(), ErrNotFound)
	}
	return nil
}

// upsertLog inserts or replaces an entry by ID.
func (d *DB) upsertLog(ctx context.Context, l *models.WeightLog) error {
	if err := validateLog(l); err != nil {
		return err
	}
	query, args, err := d.sb.Insert("weight_logs").
		Columns(logColumns...).
		Values(logValues(l)...).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			measurement_type = excluded.measurement_type,
			weight = excluded.weight,
			recorded_at = excluded.recorded_at,
			duration_minutes = excluded.duration_minutes,
			notes = excluded.notes`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert weight log: %w", err)
	}
	return nil
}

// GetLog retrieves an entry by full ID or unique prefix.
func (d *DB) GetLog(ctx context.Context, idOrPrefix string) (*models.WeightLog, error) {
	id, err := d.resolveLogID(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	query, args, err := d.sb.Select(logColumns...).From("weight_logs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	l, err := scanLog(d.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("weight log %s: %w", idOrPrefix, ErrNotFound)
	}
	return l, err
}

// ListLogs returns entries newest first.
func (d *DB) ListLogs(ctx context.Context, f LogFilter) ([]*models.WeightLog, error) {
	q := d.sb.Select(logColumns...).From("weight_logs").OrderBy("recorded_at DESC")
	if f.Type != nil {
		q = q.Where(sq.Eq{"measurement_type": string(*f.Type)})
	}
	if f.Since != nil {
		q = q.Where(sq.GtOrEq{"recorded_at": formatTime(*f.Since)})
	}
	if f.Until != nil {
		q = q.Where(sq.Lt{"recorded_at": formatTime(*f.Until)})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list weight logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.WeightLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// DeleteLog removes an entry by ID or prefix.
func (d *DB) DeleteLog(ctx context.Context, idOrPrefix string) error {
	id, err := d.resolveLogID(ctx, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete weight log: %w", err)
	}

	query, args, err := d.sb.Delete("weight_logs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete weight log: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete weight log: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("weight log %s: %w", idOrPrefix, ErrNotFound)
	}
	return nil
}

// resolveLogID finds the full ID from a prefix.
func (d *DB) resolveLogID(ctx context.Context, idOrPrefix string) (string, error) {
	// If it looks like a full UUID, use it directly
	if len(idOrPrefix) == 36 && strings.Count(idOrPrefix, "-") == 4 {
		return idOrPrefix, nil
	}
	if idOrPrefix == "" {
		return "", fmt.Errorf("empty id: %w", ErrNotFound)
	}

	query, args, err := d.sb.Select("id").From("weight_logs").
		Where(sq.Like{"id": strings.ToLower(idOrPrefix) + "%"}).
		Limit(2).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build prefix query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return "", fmt.Errorf("resolve weight log ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan weight log ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("weight log %s: %w", idOrPrefix, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w %s: matches multiple records", ErrAmbiguousPrefix, idOrPrefix)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(row rowScanner) (*models.WeightLog, error) {
	var (
		l                                models.WeightLog
		idStr, mt, recordedAt, createdAt string
		duration                         sql.NullInt64
		notes                            sql.NullString
	)

	err := row.Scan(&idStr, &mt, &l.Weight, &recordedAt, &duration, &notes, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan weight log: %w", err)
	}

	l.ID, _ = uuid.Parse(idStr)
	l.Type = models.MeasurementType(mt)
	l.RecordedAt = parseTime(recordedAt)
	l.CreatedAt = parseTime(createdAt)
	if duration.Valid {
		m := int(duration.Int64)
		l.DurationMinutes = &m
	}
	if notes.Valid {
		l.Notes = &notes.String
	}
	return &l, nil
}

func logValues(l *models.WeightLog) []any {
	createdAt := l.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return []any{
		l.ID.String(),
		string(l.Type),
		l.Weight,
		formatTime(l.RecordedAt),
		l.DurationMinutes,
		l.Notes,
		formatTime(createdAt),
	}
}

func validateLog(l *models.WeightLog) error {
	if l == nil {
		return errors.New("nil weight log")
	}
	if !models.IsValidMeasurementType(string(l.Type)) {
		return fmt.Errorf("%w: %q", models.ErrUnknownMeasurement, l.Type)
	}
	return units.ValidateWeight(l.Weight)
}

// formatTime stores UTC RFC3339 so text ordering matches time ordering.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	// CURRENT_TIMESTAMP default format
	t, _ := time.Parse("2006-01-02 15:04:05", s)
	return t
}

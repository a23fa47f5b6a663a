// ABOUTME: WeightLog model and MeasurementType enum for weigh-in history.
// ABOUTME: Seven measurement types cover the morning/practice/bedtime cycle.
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MeasurementType tags when in the day a weight was taken.
type MeasurementType string

const (
	MeasureMorning     MeasurementType = "morning"
	MeasurePreSession  MeasurementType = "pre_session"
	MeasurePostSession MeasurementType = "post_session"
	MeasureBeforeBed   MeasurementType = "before_bed"
	MeasureExtraBefore MeasurementType = "extra_before"
	MeasureExtraAfter  MeasurementType = "extra_after"
	MeasureCheckIn     MeasurementType = "check_in"
)

// ErrUnknownMeasurement is returned when parsing an unrecognized measurement type.
var ErrUnknownMeasurement = errors.New("unknown measurement type")

// AllMeasurementTypes lists every valid measurement type.
var AllMeasurementTypes = []MeasurementType{
	MeasureMorning, MeasurePreSession, MeasurePostSession, MeasureBeforeBed,
	MeasureExtraBefore, MeasureExtraAfter, MeasureCheckIn,
}

// measurementAliases accepts the dashed spellings people tend to type.
var measurementAliases = map[string]MeasurementType{
	"pre-session":  MeasurePreSession,
	"post-session": MeasurePostSession,
	"pre":          MeasurePreSession,
	"post":         MeasurePostSession,
	"before-bed":   MeasureBeforeBed,
	"bed":          MeasureBeforeBed,
	"extra-before": MeasureExtraBefore,
	"extra-after":  MeasureExtraAfter,
	"check-in":     MeasureCheckIn,
	"checkin":      MeasureCheckIn,
	"am":           MeasureMorning,
}

// IsValidMeasurementType checks if a string is a valid measurement type.
func IsValidMeasurementType(s string) bool {
	for _, mt := range AllMeasurementTypes {
		if string(mt) == s {
			return true
		}
	}
	return false
}

// ParseMeasurementType resolves a canonical name or alias.
func ParseMeasurementType(s string) (MeasurementType, error) {
	if IsValidMeasurementType(s) {
		return MeasurementType(s), nil
	}
	if mt, ok := measurementAliases[s]; ok {
		return mt, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownMeasurement, s)
}

// WeightLog is a single weigh-in.
type WeightLog struct {
	ID              uuid.UUID       `json:"id"`
	Type            MeasurementType `json:"type"`
	Weight          float64         `json:"weight"`
	RecordedAt      time.Time       `json:"recorded_at"`
	DurationMinutes *int            `json:"duration_minutes,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewWeightLog creates a WeightLog with a generated UUID and current timestamp.
func NewWeightLog(mt MeasurementType, weight float64) *WeightLog {
	now := time.Now()
	return &WeightLog{
		ID:         uuid.New(),
		Type:       mt,
		Weight:     weight,
		RecordedAt: now,
		CreatedAt:  now,
	}
}

// WithRecordedAt sets a custom recorded_at timestamp.
func (l *WeightLog) WithRecordedAt(t time.Time) *WeightLog {
	l.RecordedAt = t
	return l
}

// WithNotes sets notes on the entry.
func (l *WeightLog) WithNotes(notes string) *WeightLog {
	l.Notes = &notes
	return l
}

// WithDuration records the reported session length, used for sweat rate.
func (l *WeightLog) WithDuration(minutes int) *WeightLog {
	l.DurationMinutes = &minutes
	return l
}

// Clone returns a deep copy.
func (l *WeightLog) Clone() *WeightLog {
	c := *l
	if l.DurationMinutes != nil {
		d := *l.DurationMinutes
		c.DurationMinutes = &d
	}
	if l.Notes != nil {
		n := *l.Notes
		c.Notes = &n
	}
	return &c
}

// ShortID is the 8-character prefix shown in listings.
func (l *WeightLog) ShortID() string {
	return l.ID.String()[:8]
}

// Latest returns the most recently recorded entry, or nil for an empty log.
func Latest(logs []*WeightLog) *WeightLog {
	var latest *WeightLog
	for _, l := range logs {
		if l == nil {
			continue
		}
		if latest == nil || l.RecordedAt.After(latest.RecordedAt) {
			latest = l
		}
	}
	return latest
}

// timestampLayouts are the formats accepted for a recorded-at value, tried in order.
var timestampLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	DateLayout,
}

// ParseTimestamp accepts RFC 3339 or a local "YYYY-MM-DD[ HH:MM]" timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, f := range timestampLayouts {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q (use YYYY-MM-DD HH:MM or RFC 3339)", s)
}

// ABOUTME: Tests for profile, weight log, and tracking models.
// ABOUTME: Validates enums, parsing, date math, and builders.
package models

import (
	"errors"
	"testing"
	"time"
)

func TestParseProtocol(t *testing.T) {
	tests := []struct {
		input   string
		want    Protocol
		wantErr bool
	}{
		{"1", ProtocolExtremeCut, false},
		{"2", ProtocolRapidCut, false},
		{"rapid", ProtocolRapidCut, false},
		{" Hold ", ProtocolHoldWeight, false},
		{"portion", ProtocolPortionMaintenance, false},
		{"6", 0, true},
		{"0", 0, true},
		{"starve", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProtocol(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownProtocol) {
					t.Errorf("ParseProtocol(%q) err = %v, want ErrUnknownProtocol", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProtocol(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseProtocol(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestProtocolString(t *testing.T) {
	if got := ProtocolRapidCut.String(); got != "Rapid Cut" {
		t.Errorf("String() = %q, want Rapid Cut", got)
	}
	if got := Protocol(42).String(); got != "Protocol(42)" {
		t.Errorf("String() = %q, want Protocol(42)", got)
	}
	for _, p := range AllProtocols {
		if !p.Valid() {
			t.Errorf("%v should be valid", p)
		}
	}
}

func TestParseMeasurementType(t *testing.T) {
	tests := []struct {
		input string
		want  MeasurementType
	}{
		{"morning", MeasureMorning},
		{"post_session", MeasurePostSession},
		{"post-session", MeasurePostSession},
		{"bed", MeasureBeforeBed},
		{"checkin", MeasureCheckIn},
	}

	for _, tt := range tests {
		got, err := ParseMeasurementType(tt.input)
		if err != nil {
			t.Errorf("ParseMeasurementType(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMeasurementType(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}

	if _, err := ParseMeasurementType("lunch"); !errors.Is(err, ErrUnknownMeasurement) {
		t.Errorf("expected ErrUnknownMeasurement, got %v", err)
	}
}

func TestNewWeightLog(t *testing.T) {
	at := time.Date(2025, 1, 31, 7, 0, 0, 0, time.UTC)
	l := NewWeightLog(MeasureMorning, 171.2).WithRecordedAt(at).WithDuration(90).WithNotes("dry")

	if l.ID.String() == "" {
		t.Error("expected UUID to be set")
	}
	if l.Weight != 171.2 {
		t.Errorf("Weight = %f, want 171.2", l.Weight)
	}
	if !l.RecordedAt.Equal(at) {
		t.Errorf("RecordedAt = %v, want %v", l.RecordedAt, at)
	}
	if l.DurationMinutes == nil || *l.DurationMinutes != 90 {
		t.Errorf("DurationMinutes = %v, want 90", l.DurationMinutes)
	}
	if len(l.ShortID()) != 8 {
		t.Errorf("ShortID length = %d, want 8", len(l.ShortID()))
	}

	c := l.Clone()
	*c.DurationMinutes = 30
	if *l.DurationMinutes != 90 {
		t.Error("Clone shares DurationMinutes with the original")
	}
}

func TestDaysBetween(t *testing.T) {
	weighIn := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"five days out late evening", time.Date(2025, 3, 3, 23, 59, 0, 0, time.UTC), 5},
		{"same day", time.Date(2025, 3, 8, 6, 0, 0, 0, time.UTC), 0},
		{"day after", time.Date(2025, 3, 9, 1, 0, 0, 0, time.UTC), -1},
		{"across month", time.Date(2025, 2, 26, 12, 0, 0, 0, time.UTC), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.today, weighIn); got != tt.want {
				t.Errorf("DaysBetween = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProfileToday(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	p := NewAthleteProfile("Sam", 172, 165, now.AddDate(0, 0, 5), ProtocolRapidCut)

	if got := p.Today(now); !got.Equal(now) {
		t.Errorf("Today() = %v, want %v", got, now)
	}

	sim := now.AddDate(0, 0, 3)
	p.SimulatedToday = &sim
	if got := p.Today(now); !got.Equal(sim) {
		t.Errorf("Today() with override = %v, want %v", got, sim)
	}

	c := p.Clone()
	*c.SimulatedToday = now
	if !p.SimulatedToday.Equal(sim) {
		t.Error("Clone shares SimulatedToday with the original")
	}
}

func TestDailyTrackingAdds(t *testing.T) {
	d := NewDailyTracking(time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC))
	if d.Date != "2025-03-01" {
		t.Errorf("Date = %s, want 2025-03-01", d.Date)
	}

	d.AddWater(32)
	d.AddGrams(60, 25)
	if d.LastMode != ModeGrams {
		t.Errorf("LastMode = %s, want grams", d.LastMode)
	}

	d.AddSlices(Slices{Protein: 1, Veg: 2})
	if d.LastMode != ModePortions {
		t.Errorf("LastMode = %s, want portions", d.LastMode)
	}
	if d.Slices.Total() != 3 {
		t.Errorf("Slices.Total() = %d, want 3", d.Slices.Total())
	}
	if d.WaterOz != 32 || d.CarbsG != 60 || d.ProteinG != 25 {
		t.Errorf("unexpected totals: %+v", d)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2025-01-31T08:00:00Z", time.Date(2025, 1, 31, 8, 0, 0, 0, time.UTC), false},
		{"2025-01-31 08:00", time.Date(2025, 1, 31, 8, 0, 0, 0, time.Local), false},
		{"2025-01-31T08:00", time.Date(2025, 1, 31, 8, 0, 0, 0, time.Local), false},
		{"2025-01-31", time.Date(2025, 1, 31, 0, 0, 0, 0, time.Local), false},
		{"yesterday", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTimestamp(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) failed: %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// ABOUTME: Change describes one write the persistence layer must confirm.
// ABOUTME: Used by the snapshot helper and every Persister implementation.
package models

import "fmt"

// ChangeKind names the entity a change touches.
type ChangeKind string

const (
	ChangeWeightLog ChangeKind = "weight_log"
	ChangeTracking  ChangeKind = "tracking"
	ChangeProfile   ChangeKind = "profile"
)

// ChangeOp is the operation applied.
type ChangeOp string

const (
	OpUpsert ChangeOp = "upsert"
	OpDelete ChangeOp = "delete"
)

// Change is a single write. Exactly one of Log, Tracking, Profile is set.
type Change struct {
	Kind     ChangeKind
	Op       ChangeOp
	Log      *WeightLog
	Tracking *DailyTracking
	Profile  *AthleteProfile
}

// LogChange builds a weight log change.
func LogChange(op ChangeOp, l *WeightLog) Change {
	return Change{Kind: ChangeWeightLog, Op: op, Log: l}
}

// TrackingChange builds an upsert for a tracking record.
func TrackingChange(d *DailyTracking) Change {
	return Change{Kind: ChangeTracking, Op: OpUpsert, Tracking: d}
}

// ProfileChange builds an upsert for the profile.
func ProfileChange(p *AthleteProfile) Change {
	return Change{Kind: ChangeProfile, Op: OpUpsert, Profile: p}
}

// String describes the change for logs.
func (c Change) String() string {
	switch c.Kind {
	case ChangeWeightLog:
		if c.Log != nil {
			return fmt.Sprintf("%s %s %s", c.Op, c.Kind, c.Log.ShortID())
		}
	case ChangeTracking:
		if c.Tracking != nil {
			return fmt.Sprintf("%s %s %s", c.Op, c.Kind, c.Tracking.Date)
		}
	}
	return fmt.Sprintf("%s %s", c.Op, c.Kind)
}

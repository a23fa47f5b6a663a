// ABOUTME: Weigh-in projection and pace classification from observed loss rates.
// ABOUTME: Projection is a straight line of (overnight + session) loss per day.
package analytics

import (
	"math"
	"time"

	"github.com/harperreed/makeweight/internal/engine"
	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/units"
)

// Pace compares the scale against today's target.
type Pace string

const (
	PaceAhead   Pace = "ahead"
	PaceOnTrack Pace = "on_track"
	PaceBehind  Pace = "behind"
)

// PaceTolerance is the on-track band around today's target, in lbs.
const PaceTolerance = 1.5

// ProjectWeighIn projects weight at weigh-in assuming one night and one
// session per remaining day. It returns nil when current weight is unknown.
func ProjectWeighIn(currentWeight *float64, r Rates, daysRemaining int) *float64 {
	if currentWeight == nil {
		return nil
	}
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	perDay := 0.0
	if r.Overnight != nil {
		perDay += *r.Overnight
	}
	if r.Session != nil {
		perDay += *r.Session
	}

	p := units.Round(*currentWeight-perDay*float64(daysRemaining), 0.1)
	return &p
}

// PaceResult is the outcome of ClassifyPace.
type PaceResult struct {
	Pace      Pace    `json:"pace"`
	Delta     float64 `json:"delta"`
	Tolerance float64 `json:"tolerance"`
}

// ClassifyPace buckets current weight against target with a symmetric band.
func ClassifyPace(current, target, tolerance float64) PaceResult {
	delta := units.Round(current-target, 0.1)
	r := PaceResult{Pace: PaceOnTrack, Delta: delta, Tolerance: tolerance}
	switch {
	case delta > tolerance:
		r.Pace = PaceBehind
	case delta < -tolerance:
		r.Pace = PaceAhead
	}
	return r
}

// PaceFor classifies current weight against the profile's target for today.
// On Load days of a cutting protocol the band widens by the water-load bonus.
func PaceFor(p *models.AthleteProfile, current float64, today time.Time) PaceResult {
	wt := engine.ComputeWeightTarget(p, p.Protocol, today)
	tol := PaceTolerance
	if wt.Phase == engine.PhaseLoad && engine.IsCutting(p.Protocol) {
		tol += math.Max(wt.Bonus, 0)
	}
	return ClassifyPace(current, wt.Weight, tol)
}

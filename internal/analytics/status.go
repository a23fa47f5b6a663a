// ABOUTME: Dashboard status combining targets, rates, projection, pace, and safety.
// ABOUTME: Pure function of profile, logs, and the resolved date.
package analytics

import (
	"time"

	"github.com/harperreed/makeweight/internal/engine"
	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/units"
)

// Status is everything the dashboard shows about where the cut stands.
type Status struct {
	Date          time.Time           `json:"date"`
	DaysUntil     int                 `json:"days_until"`
	Phase         engine.Phase        `json:"phase"`
	CurrentWeight *float64            `json:"current_weight"`
	Target        engine.WeightTarget `json:"target"`
	TargetClass   float64             `json:"target_class"`
	ToClass       *float64            `json:"to_class"`
	Rates         Rates               `json:"rates"`
	Projected     *float64            `json:"projected"`
	Pace          *PaceResult         `json:"pace,omitempty"`
	Safety        *Assessment         `json:"safety,omitempty"`
}

// CurrentWeight returns the newest logged weight, falling back to the
// profile's weight. Nil when neither exists.
func CurrentWeight(p *models.AthleteProfile, logs []*models.WeightLog) *float64 {
	if latest := models.Latest(logs); latest != nil {
		w := latest.Weight
		return &w
	}
	if p != nil && p.CurrentWeight > 0 {
		w := p.CurrentWeight
		return &w
	}
	return nil
}

// BuildStatus computes the dashboard status for today. Safety is judged
// against today's target, which already carries the protocol's allowance.
func BuildStatus(p *models.AthleteProfile, logs []*models.WeightLog, today time.Time) Status {
	days := engine.DaysUntilWeighIn(p, today)
	wt := engine.ComputeWeightTarget(p, p.Protocol, today)
	rates := ComputeRates(logs)
	current := CurrentWeight(p, logs)

	s := Status{
		Date:          models.DateOnly(today),
		DaysUntil:     days,
		Phase:         wt.Phase,
		CurrentWeight: current,
		Target:        wt,
		TargetClass:   p.TargetClass,
		Rates:         rates,
		Projected:     ProjectWeighIn(current, rates, days),
	}
	if current == nil {
		return s
	}

	toClass := units.Round(*current-p.TargetClass, 0.1)
	s.ToClass = &toClass
	pace := PaceFor(p, *current, today)
	s.Pace = &pace
	safety := AssessSafety(*current, wt.Weight, days)
	s.Safety = &safety
	return s
}

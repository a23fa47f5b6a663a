// ABOUTME: Weekly plan generator producing seven DayPlans around the weigh-in.
// ABOUTME: Each calendar day gets its own days-until value and targets.
package engine

import (
	"time"

	"github.com/harperreed/makeweight/internal/models"
)

// PlanDays is the number of entries in a weekly plan.
const PlanDays = 7

// DayPlan is the derived plan for one calendar day.
type DayPlan struct {
	Date       time.Time       `json:"date"`
	DaysUntil  int             `json:"days_until"`
	Phase      Phase           `json:"phase"`
	Style      Style           `json:"style"`
	Weight     WeightTarget    `json:"weight"`
	Hydration  HydrationTarget `json:"hydration"`
	Macros     MacroTarget     `json:"macros"`
	Notes      []string        `json:"notes"`
	IsToday    bool            `json:"is_today"`
	IsTomorrow bool            `json:"is_tomorrow"`
}

// PlanStart returns the first date of the plan window. The window normally
// spans weigh-in minus five through weigh-in plus one; it slides so that
// today is always inside it.
func PlanStart(weighIn, today time.Time) time.Time {
	w := models.DateOnly(weighIn)
	t := models.DateOnly(today)

	start := w.AddDate(0, 0, -(PlanDays - 2))
	end := start.AddDate(0, 0, PlanDays-1)
	switch {
	case t.Before(start):
		return t
	case t.After(end):
		return t.AddDate(0, 0, -(PlanDays - 1))
	}
	return start
}

// BuildWeeklyPlan returns exactly seven DayPlans in date order. The newest log
// entry, when present, stands in for the profile's current weight.
func BuildWeeklyPlan(p *models.AthleteProfile, logs []*models.WeightLog, today time.Time) []DayPlan {
	athlete := p.Clone()
	if latest := models.Latest(logs); latest != nil {
		athlete.CurrentWeight = latest.Weight
	}

	t := models.DateOnly(today)
	tomorrow := t.AddDate(0, 0, 1)
	start := PlanStart(p.WeighInDate, today)

	plan := make([]DayPlan, 0, PlanDays)
	for i := 0; i < PlanDays; i++ {
		date := start.AddDate(0, 0, i)
		tg := ComputeTargets(athlete, athlete.Protocol, date)
		plan = append(plan, DayPlan{
			Date:       date,
			DaysUntil:  tg.DaysUntil,
			Phase:      tg.Phase,
			Style:      tg.Phase.Style(),
			Weight:     tg.Weight,
			Hydration:  tg.Hydration,
			Macros:     tg.Macros,
			Notes:      tg.Notes,
			IsToday:    date.Equal(t),
			IsTomorrow: date.Equal(tomorrow),
		})
	}
	return plan
}

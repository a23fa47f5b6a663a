// ABOUTME: Tests for the weekly plan generator.
// ABOUTME: Includes the five-days-out Rapid Cut scenario end to end.
package engine

import (
	"testing"
	"time"

	"github.com/harperreed/makeweight/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWeeklyPlanRapidCutFiveDaysOut(t *testing.T) {
	p := models.NewAthleteProfile("Sam", 172, 165, testToday.AddDate(0, 0, 5), models.ProtocolRapidCut)

	plan := BuildWeeklyPlan(p, nil, testToday)
	require.Len(t, plan, PlanDays)

	wantPhases := []Phase{
		PhaseLoad, PhaseLoad, PhaseLoad, PhaseRestrict, PhaseCritical, PhaseCompete, PhaseRecover,
	}
	for i, day := range plan {
		assert.Equal(t, 5-i, day.DaysUntil, "entry %d", i)
		assert.Equal(t, wantPhases[i], day.Phase, "entry %d", i)
		assert.Equal(t, day.Phase.Style(), day.Style)
		if i > 0 {
			assert.Equal(t, plan[i-1].Date.AddDate(0, 0, 1), day.Date)
		}
	}

	assert.True(t, plan[0].IsToday)
	assert.True(t, plan[1].IsTomorrow)
	assert.Equal(t, 1, countToday(plan))
	assert.Equal(t, 1, countTomorrow(plan))
}

func TestBuildWeeklyPlanIsIdempotent(t *testing.T) {
	p := models.NewAthleteProfile("Sam", 172, 165, testToday.AddDate(0, 0, 3), models.ProtocolExtremeCut)
	logs := []*models.WeightLog{
		models.NewWeightLog(models.MeasureMorning, 174).WithRecordedAt(testToday.Add(-2 * time.Hour)),
	}

	first := BuildWeeklyPlan(p, logs, testToday)
	second := BuildWeeklyPlan(p, logs, testToday)
	assert.Equal(t, first, second)
	assert.Equal(t, 172.0, p.CurrentWeight, "plan must not mutate the profile")
}

func TestBuildWeeklyPlanWindowSlides(t *testing.T) {
	tests := []struct {
		name         string
		daysOut      int
		todayIndex   int
		wantTomorrow int
		firstDays    int
	}{
		{"weigh-in three days out", 3, 2, 1, 5},
		{"weigh-in day", 0, 5, 1, 5},
		{"day after weigh-in", -1, 6, 0, 5},
		{"far from weigh-in", 20, 0, 1, 20},
		{"long after weigh-in", -10, 6, 0, -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.NewAthleteProfile("Sam", 172, 165, testToday.AddDate(0, 0, tt.daysOut), models.ProtocolRapidCut)
			plan := BuildWeeklyPlan(p, nil, testToday)

			require.Len(t, plan, PlanDays)
			assert.True(t, plan[tt.todayIndex].IsToday)
			assert.Equal(t, 1, countToday(plan))
			assert.Equal(t, tt.wantTomorrow, countTomorrow(plan))
			assert.Equal(t, tt.firstDays, plan[0].DaysUntil)
			for i := 1; i < len(plan); i++ {
				assert.Equal(t, plan[i-1].DaysUntil-1, plan[i].DaysUntil)
			}
		})
	}
}

func TestBuildWeeklyPlanUsesLatestLogWeight(t *testing.T) {
	p := models.NewAthleteProfile("Sam", 170, 165, testToday.AddDate(0, 0, 20), models.ProtocolRapidCut)
	logs := []*models.WeightLog{
		models.NewWeightLog(models.MeasureMorning, 175).WithRecordedAt(testToday.Add(-48 * time.Hour)),
		models.NewWeightLog(models.MeasureMorning, 180).WithRecordedAt(testToday.Add(-1 * time.Hour)),
	}

	plan := BuildWeeklyPlan(p, logs, testToday)
	// Maintenance protein is 0.9-1.1 g per pound of the newest weight.
	assert.Equal(t, Range{Min: 162, Max: 198}, plan[0].Macros.Protein)
}

func countToday(plan []DayPlan) int {
	n := 0
	for _, d := range plan {
		if d.IsToday {
			n++
		}
	}
	return n
}

func countTomorrow(plan []DayPlan) int {
	n := 0
	for _, d := range plan {
		if d.IsTomorrow {
			n++
		}
	}
	return n
}

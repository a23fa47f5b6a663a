// ABOUTME: Tests for the phase classifier, protocol table, and target calculator.
// ABOUTME: Sweeps wide day ranges to prove bucket coverage and safety caps.
package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/harperreed/makeweight/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

func profileAt(class float64, daysOut int, p models.Protocol) *models.AthleteProfile {
	return models.NewAthleteProfile("Test", class+7, class, testToday.AddDate(0, 0, daysOut), p)
}

func TestValidateTable(t *testing.T) {
	require.NoError(t, ValidateTable())
}

func TestDefinitionValidateRejectsBadTables(t *testing.T) {
	ok := func() []Bucket {
		return []Bucket{
			{MinDays: math.MinInt, MaxDays: 0, Multiplier: 1},
			{MinDays: 1, MaxDays: math.MaxInt, Multiplier: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(d *Definition)
	}{
		{"gap", func(d *Definition) { d.Buckets[1].MinDays = 2 }},
		{"overlap", func(d *Definition) { d.Buckets[1].MinDays = 0 }},
		{"open start", func(d *Definition) { d.Buckets[0].MinDays = -1 }},
		{"open end", func(d *Definition) { d.Buckets[1].MaxDays = 30 }},
		{"zero multiplier", func(d *Definition) { d.Buckets[0].Multiplier = 0 }},
		{"no buckets", func(d *Definition) { d.Buckets = nil }},
		{"zero precision", func(d *Definition) { d.Precision = 0 }},
		{"inverted carbs", func(d *Definition) { d.Buckets[0].Macros.Carbs = Range{Min: 10, Max: 5} }},
		{"ascending tiers", func(d *Definition) {
			d.OverweightTiers = []OverweightTier{{MinPercentOver: 3}, {MinPercentOver: 10}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Definition{Protocol: models.ProtocolHoldWeight, Precision: 0.5, Buckets: ok()}
			require.NoError(t, d.Validate())
			tt.mutate(d)
			err := d.Validate()
			assert.True(t, errors.Is(err, ErrInvalidTable), "got %v", err)
		})
	}
}

func TestClassifyPhaseCutting(t *testing.T) {
	tests := []struct {
		days int
		want Phase
	}{
		{-5, PhaseRecover},
		{-1, PhaseRecover},
		{0, PhaseCompete},
		{1, PhaseCritical},
		{2, PhaseRestrict},
		{3, PhaseLoad},
		{4, PhaseLoad},
		{5, PhaseLoad},
		{6, PhaseMaintenance},
		{30, PhaseMaintenance},
	}

	for _, p := range []models.Protocol{models.ProtocolExtremeCut, models.ProtocolRapidCut} {
		for _, tt := range tests {
			assert.Equal(t, tt.want, ClassifyPhase(tt.days, p), "%v day %d", p, tt.days)
		}
	}
}

func TestClassifyPhaseSteady(t *testing.T) {
	for _, p := range []models.Protocol{models.ProtocolHoldWeight, models.ProtocolBuild, models.ProtocolPortionMaintenance} {
		assert.Equal(t, PhaseRecover, ClassifyPhase(-1, p))
		assert.Equal(t, PhaseCompete, ClassifyPhase(0, p))
		for d := 1; d <= 10; d++ {
			assert.Equal(t, PhaseMaintenance, ClassifyPhase(d, p), "%v day %d", p, d)
		}
	}
}

func TestPhaseStyle(t *testing.T) {
	for _, ph := range AllPhases {
		s := ph.Style()
		assert.NotEmpty(t, s.Label, ph)
		assert.NotEmpty(t, s.Color, ph)
	}
	assert.Equal(t, "red", PhaseCritical.Style().Color)
	assert.Equal(t, PhaseMaintenance.Style(), Phase("bogus").Style())
}

func TestEveryDayMatchesExactlyOneBucket(t *testing.T) {
	for _, p := range models.AllProtocols {
		def := Lookup(p)
		for days := -5; days <= 30; days++ {
			matches := 0
			for _, b := range def.Buckets {
				if b.Contains(days) {
					matches++
				}
			}
			assert.Equal(t, 1, matches, "%v day %d", p, days)

			phase := ClassifyPhase(days, p)
			assert.Contains(t, AllPhases, phase)

			wt := ComputeWeightTarget(profileAt(165, days, p), p, testToday)
			assert.Equal(t, days, wt.DaysUntil)
			assert.Greater(t, wt.Weight, 0.0)
		}
		assert.Equal(t, 1, countContaining(def, math.MinInt))
		assert.Equal(t, 1, countContaining(def, math.MaxInt))
	}
}

func countContaining(d *Definition, days int) int {
	n := 0
	for _, b := range d.Buckets {
		if b.Contains(days) {
			n++
		}
	}
	return n
}

func TestUnknownProtocolFallsBack(t *testing.T) {
	p := profileAt(165, 3, models.Protocol(99))
	assert.NotPanics(t, func() {
		tg := ComputeTargets(p, p.Protocol, testToday)
		assert.Equal(t, PhaseMaintenance, tg.Phase)
	})
	assert.Same(t, Lookup(models.ProtocolHoldWeight), Lookup(models.Protocol(99)))
}

func TestWeightTargetMonotonicForCuts(t *testing.T) {
	for _, p := range []models.Protocol{models.ProtocolExtremeCut, models.ProtocolRapidCut} {
		for _, class := range []float64{125, 165, 197, 285} {
			prev := math.Inf(1)
			for days := 6; days >= 0; days-- {
				wt := weightTargetFor(class, p, days)
				assert.LessOrEqual(t, wt.Base, prev, "%v class %.0f day %d", p, class, days)
				prev = wt.Base

				if days >= 3 && days <= 5 {
					assert.Equal(t, LoadBonus(class), wt.Bonus)
				} else {
					assert.Zero(t, wt.Bonus)
				}
			}
			assert.InDelta(t, class, weightTargetFor(class, p, 0).Weight, 1e-9)
		}
	}
}

func TestWeightTargetValues(t *testing.T) {
	wt := weightTargetFor(165, models.ProtocolRapidCut, 5)
	assert.InDelta(t, 172.4, wt.Base, 1e-9)
	assert.Equal(t, 3.0, wt.Bonus)
	assert.InDelta(t, 175.4, wt.Weight, 1e-9)
	assert.Equal(t, PhaseLoad, wt.Phase)

	wt = weightTargetFor(165, models.ProtocolExtremeCut, 1)
	assert.InDelta(t, 167.5, wt.Weight, 1e-9)

	// Steady protocols round to half pounds.
	wt = weightTargetFor(157, models.ProtocolHoldWeight, 10)
	assert.InDelta(t, 160.0, wt.Weight, 1e-9)
}

func TestLoadBonusTiers(t *testing.T) {
	tests := []struct {
		class float64
		tier  Tier
		bonus float64
	}{
		{106, TierLight, 2},
		{141, TierLight, 2},
		{141.5, TierMiddle, 3},
		{174, TierMiddle, 3},
		{184, TierHeavy, 4},
		{285, TierHeavy, 4},
		{0, TierLight, 2},
		{math.NaN(), TierHeavy, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.tier, TierFor(tt.class), "class %v", tt.class)
		assert.Equal(t, tt.bonus, LoadBonus(tt.class), "class %v", tt.class)
	}
}

func TestHydrationNeverExceedsCap(t *testing.T) {
	for _, p := range models.AllProtocols {
		for _, class := range []float64{106, 141, 165, 174, 197, 285} {
			for days := -5; days <= 30; days++ {
				h := ComputeHydration(profileAt(class, days, p), p, testToday)
				assert.LessOrEqual(t, h.Ounces, MaxDailyWaterOz, "%v class %.0f day %d", p, class, days)
				assert.GreaterOrEqual(t, h.Ounces, 0.0)
				assert.NotEmpty(t, h.Display)
			}
		}
	}
}

func TestHydrationCapClipsHeavyLoad(t *testing.T) {
	h := ComputeHydration(profileAt(197, 4, models.ProtocolExtremeCut), models.ProtocolExtremeCut, testToday)
	assert.True(t, h.Capped)
	assert.Equal(t, MaxDailyWaterOz, h.Ounces)
	assert.Equal(t, "2 gal", h.Display)
}

func TestHydrationFluidSequence(t *testing.T) {
	want := map[int]FluidType{
		6: FluidRegular,
		5: FluidRegular,
		3: FluidDistilled,
		2: FluidDistilled,
		1: FluidSipOnly,
		0: FluidRehydrate,
	}
	for _, p := range []models.Protocol{models.ProtocolExtremeCut, models.ProtocolRapidCut} {
		for days, fluid := range want {
			h := ComputeHydration(profileAt(165, days, p), p, testToday)
			assert.Equal(t, fluid, h.Fluid, "%v day %d", p, days)
		}
	}

	h := ComputeHydration(profileAt(165, 1, models.ProtocolExtremeCut), models.ProtocolExtremeCut, testToday)
	assert.Equal(t, 32.0, h.Ounces)
	assert.Equal(t, "sips only, 32 oz max", h.Display)
}

func TestMacrosGramMode(t *testing.T) {
	p := profileAt(165, 5, models.ProtocolRapidCut)
	p.CurrentWeight = 170

	m := ComputeMacros(p, p.Protocol, testToday)
	assert.Equal(t, models.ModeGrams, m.Mode)
	assert.Equal(t, Range{Min: 300, Max: 400}, m.Carbs)
	assert.Equal(t, Range{Min: 80, Max: 100}, m.Protein)
	assert.Equal(t, 1.0, m.ReductionFactor)
	assert.Nil(t, m.Slices)
	assert.NotEmpty(t, m.Ratio)

	p = profileAt(165, 10, models.ProtocolRapidCut)
	p.CurrentWeight = 170
	m = ComputeMacros(p, p.Protocol, testToday)
	assert.Equal(t, Range{Min: 153, Max: 187}, m.Protein)
}

func TestMacroReductionTiers(t *testing.T) {
	// Extreme Cut, 165 class, 1 day out: target 167.5.
	tests := []struct {
		current float64
		factor  float64
	}{
		{185, 0},
		{180, 0.25},
		{176, 0.5},
		{173, 0.75},
		{168, 1},
		{160, 1},
	}

	for _, tt := range tests {
		p := profileAt(165, 1, models.ProtocolExtremeCut)
		p.CurrentWeight = tt.current
		m := ComputeMacros(p, p.Protocol, testToday)
		assert.Equal(t, tt.factor, m.ReductionFactor, "current %.0f", tt.current)
		if tt.factor == 0 {
			assert.Equal(t, Range{}, m.Carbs)
			assert.Equal(t, Range{}, m.Protein)
			assert.Zero(t, m.Calories)
		}
	}

	// Load days never reduce, however heavy.
	p := profileAt(165, 4, models.ProtocolExtremeCut)
	p.CurrentWeight = 195
	assert.Equal(t, 1.0, ComputeMacros(p, p.Protocol, testToday).ReductionFactor)

	// Steady protocols never reduce.
	p = profileAt(165, 1, models.ProtocolHoldWeight)
	p.CurrentWeight = 195
	assert.Equal(t, 1.0, ComputeMacros(p, p.Protocol, testToday).ReductionFactor)
}

func TestPortionModeSlices(t *testing.T) {
	p := profileAt(150, 10, models.ProtocolPortionMaintenance)
	p.CurrentWeight = 150

	m := ComputeMacros(p, p.Protocol, testToday)
	require.Equal(t, models.ModePortions, m.Mode)
	require.NotNil(t, m.Slices)

	// 150 lbs × 11 kcal × 1.725 = 2846.25 kcal
	assert.Equal(t, 2846.0, m.Calories)
	assert.Equal(t, models.Slices{Protein: 8, Carb: 8, Veg: 11, Fruit: 5, Fat: 5}, *m.Slices)
}

func TestMacroModeOverride(t *testing.T) {
	p := profileAt(165, 10, models.ProtocolRapidCut)
	p.MacroMode = models.ModePortions

	m := ComputeMacros(p, p.Protocol, testToday)
	assert.Equal(t, models.ModePortions, m.Mode)
	assert.NotNil(t, m.Slices)
}

func TestBMR(t *testing.T) {
	p := &models.AthleteProfile{Sex: "male", AgeYears: 20, HeightInches: 70}
	assert.InDelta(t, 1764.68, BMR(p, 165), 0.1)

	p.Sex = "female"
	assert.InDelta(t, 1598.68, BMR(p, 165), 0.1)

	assert.Equal(t, 165*11.0, BMR(&models.AthleteProfile{}, 165))
	assert.Zero(t, BMR(&models.AthleteProfile{}, 0))
}

func TestActivityMultiplier(t *testing.T) {
	assert.Equal(t, 1.2, ActivityMultiplier("sedentary"))
	assert.Equal(t, 1.9, ActivityMultiplier("VERY_ACTIVE"))
	assert.Equal(t, 1.725, ActivityMultiplier(""))
	assert.Equal(t, 1.725, ActivityMultiplier("couch"))
	assert.True(t, IsValidActivityLevel("moderate"))
	assert.False(t, IsValidActivityLevel("couch"))
}

func TestComputeTargetsBundle(t *testing.T) {
	p := profileAt(165, 2, models.ProtocolRapidCut)
	tg := ComputeTargets(p, p.Protocol, testToday)

	assert.Equal(t, 2, tg.DaysUntil)
	assert.Equal(t, PhaseRestrict, tg.Phase)
	assert.Equal(t, models.DateOnly(testToday), tg.Date)
	assert.Equal(t, ComputeWeightTarget(p, p.Protocol, testToday), tg.Weight)
	assert.Equal(t, ComputeHydration(p, p.Protocol, testToday), tg.Hydration)
	assert.Equal(t, ComputeMacros(p, p.Protocol, testToday), tg.Macros)
	assert.NotEmpty(t, tg.Notes)
}

func TestSimulatedTodayIsCallerResolved(t *testing.T) {
	p := profileAt(165, 5, models.ProtocolRapidCut)
	sim := testToday.AddDate(0, 0, 4)
	p.SimulatedToday = &sim

	tg := ComputeTargets(p, p.Protocol, p.Today(testToday))
	assert.Equal(t, 1, tg.DaysUntil)
	assert.Equal(t, PhaseCritical, tg.Phase)
}

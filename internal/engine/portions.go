// ABOUTME: Calorie need, portion ("slice") targets, and slice<->gram reconciliation.
// ABOUTME: One canonical per-slice table is shared by conversion and reconciliation.
package engine

import (
	"math"
	"strings"

	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/units"
)

// SliceCategory is a portion food group.
type SliceCategory string

const (
	SliceProtein SliceCategory = "protein"
	SliceCarb    SliceCategory = "carb"
	SliceVeg     SliceCategory = "veg"
	SliceFruit   SliceCategory = "fruit"
	SliceFat     SliceCategory = "fat"
)

// AllSliceCategories lists categories in display order.
var AllSliceCategories = []SliceCategory{SliceProtein, SliceCarb, SliceVeg, SliceFruit, SliceFat}

const (
	ProteinGramsPerSlice = 25.0
	CarbGramsPerSlice    = 30.0

	// GramTolerance and SliceTolerance bound rounding churn during reconciliation.
	GramTolerance  = 5.0
	SliceTolerance = 1

	DefaultActivityLevel = "active"
	kcalPerLbFallback    = 11.0
)

type sliceSpec struct {
	kcal          float64
	share         float64
	gramsPerSlice float64
}

// Shares sum to 1. Only protein and carb slices have a gram counterpart.
var sliceTable = map[SliceCategory]sliceSpec{
	SliceProtein: {kcal: 110, share: 0.30, gramsPerSlice: ProteinGramsPerSlice},
	SliceCarb:    {kcal: 120, share: 0.35, gramsPerSlice: CarbGramsPerSlice},
	SliceVeg:     {kcal: 25, share: 0.10},
	SliceFruit:   {kcal: 60, share: 0.10},
	SliceFat:     {kcal: 90, share: 0.15},
}

var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// ActivityMultiplier returns the TDEE multiplier for a level, defaulting to active.
func ActivityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[strings.ToLower(level)]; ok {
		return m
	}
	return activityMultipliers[DefaultActivityLevel]
}

// IsValidActivityLevel reports whether level is a known activity level.
func IsValidActivityLevel(level string) bool {
	_, ok := activityMultipliers[strings.ToLower(level)]
	return ok
}

// BMR estimates basal calories. Mifflin-St Jeor is used when sex, age, and
// height are all known; otherwise 11 kcal per pound.
func BMR(p *models.AthleteProfile, weightLbs float64) float64 {
	if weightLbs <= 0 {
		return 0
	}
	sex := strings.ToLower(p.Sex)
	if p.AgeYears > 0 && p.HeightInches > 0 && sex != "" {
		bmr := 10*units.LbsToKg(weightLbs) + 6.25*units.InchesToCm(p.HeightInches) - 5*float64(p.AgeYears)
		if sex == "male" || sex == "m" {
			return bmr + 5
		}
		return bmr - 161
	}
	return weightLbs * kcalPerLbFallback
}

// DailyCalories is BMR × activity multiplier × the bucket's calorie adjustment.
func DailyCalories(p *models.AthleteProfile, weightLbs float64, b Bucket) float64 {
	return BMR(p, weightLbs) * ActivityMultiplier(p.ActivityLevel) * b.CalorieAdjust
}

// SliceTargets splits a calorie budget into whole slices per category.
func SliceTargets(kcal float64) models.Slices {
	if kcal <= 0 || math.IsNaN(kcal) {
		return models.Slices{}
	}
	count := func(c SliceCategory) int {
		spec := sliceTable[c]
		return int(math.Round(kcal * spec.share / spec.kcal))
	}
	return models.Slices{
		Protein: count(SliceProtein),
		Carb:    count(SliceCarb),
		Veg:     count(SliceVeg),
		Fruit:   count(SliceFruit),
		Fat:     count(SliceFat),
	}
}

// GramsToSlices converts grams to (fractional) slices. Categories without a
// gram counterpart return 0.
func GramsToSlices(c SliceCategory, grams float64) float64 {
	per := sliceTable[c].gramsPerSlice
	if per == 0 {
		return 0
	}
	return grams / per
}

// SlicesToGrams converts slices to grams.
func SlicesToGrams(c SliceCategory, slices float64) float64 {
	return slices * sliceTable[c].gramsPerSlice
}

// Reconcile recomputes the non-authoritative side of a tracking record from
// the side written last. It returns true if the record changed. Running it
// again without intervening writes is a no-op.
func Reconcile(rec *models.DailyTracking) bool {
	if rec == nil {
		return false
	}

	changed := false
	switch rec.LastMode {
	case models.ModeGrams:
		if n, ok := derivedSlices(SliceProtein, rec.ProteinG, rec.Slices.Protein); ok {
			rec.Slices.Protein = n
			changed = true
		}
		if n, ok := derivedSlices(SliceCarb, rec.CarbsG, rec.Slices.Carb); ok {
			rec.Slices.Carb = n
			changed = true
		}
	case models.ModePortions:
		if g, ok := derivedGrams(SliceProtein, rec.Slices.Protein, rec.ProteinG); ok {
			rec.ProteinG = g
			changed = true
		}
		if g, ok := derivedGrams(SliceCarb, rec.Slices.Carb, rec.CarbsG); ok {
			rec.CarbsG = g
			changed = true
		}
	}
	return changed
}

func derivedSlices(c SliceCategory, grams float64, current int) (int, bool) {
	want := int(math.Round(GramsToSlices(c, grams)))
	diff := want - current
	if diff < 0 {
		diff = -diff
	}
	return want, diff > SliceTolerance
}

func derivedGrams(c SliceCategory, slices int, current float64) (float64, bool) {
	want := SlicesToGrams(c, float64(slices))
	return want, math.Abs(want-current) > GramTolerance
}

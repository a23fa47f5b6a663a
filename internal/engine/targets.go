// ABOUTME: Target calculator: today's weight, hydration, and macro targets.
// ABOUTME: Looks up the protocol bucket for the exact days-until-weigh-in.
package engine

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/units"
)

// MaxDailyWaterOz caps every hydration target (2 gallons).
const MaxDailyWaterOz = 256.0

// WeightTarget is the day's scale target.
type WeightTarget struct {
	DaysUntil int     `json:"days_until"`
	Phase     Phase   `json:"phase"`
	Base      float64 `json:"base"`
	Bonus     float64 `json:"bonus"`
	Weight    float64 `json:"weight"`
}

// HydrationTarget is the day's water prescription.
type HydrationTarget struct {
	Display string    `json:"display"`
	Ounces  float64   `json:"ounces"`
	Fluid   FluidType `json:"fluid"`
	Capped  bool      `json:"capped"`
}

// MacroTarget is the day's food prescription. Slices is set in portion mode.
type MacroTarget struct {
	Mode            models.TrackingMode `json:"mode"`
	Carbs           Range               `json:"carbs"`
	Protein         Range               `json:"protein"`
	Ratio           string              `json:"ratio"`
	Calories        float64             `json:"calories"`
	ReductionFactor float64             `json:"reduction_factor"`
	Slices          *models.Slices      `json:"slices,omitempty"`
}

// Targets bundles every target for one calendar day.
type Targets struct {
	Date      time.Time       `json:"date"`
	DaysUntil int             `json:"days_until"`
	Phase     Phase           `json:"phase"`
	Weight    WeightTarget    `json:"weight"`
	Hydration HydrationTarget `json:"hydration"`
	Macros    MacroTarget     `json:"macros"`
	Notes     []string        `json:"notes"`
}

// DaysUntilWeighIn returns the profile's weigh-in date minus today, in calendar days.
func DaysUntilWeighIn(p *models.AthleteProfile, today time.Time) int {
	return models.DaysBetween(today, p.WeighInDate)
}

// ComputeWeightTarget returns today's target weight under protocol.
func ComputeWeightTarget(p *models.AthleteProfile, protocol models.Protocol, today time.Time) WeightTarget {
	return weightTargetFor(p.TargetClass, protocol, DaysUntilWeighIn(p, today))
}

// ComputeHydration returns today's water target under protocol.
func ComputeHydration(p *models.AthleteProfile, protocol models.Protocol, today time.Time) HydrationTarget {
	days := DaysUntilWeighIn(p, today)
	return hydrationFor(p.TargetClass, definitionFor(protocol).Bucket(days))
}

// ComputeMacros returns today's macro target under protocol.
func ComputeMacros(p *models.AthleteProfile, protocol models.Protocol, today time.Time) MacroTarget {
	days := DaysUntilWeighIn(p, today)
	wt := weightTargetFor(p.TargetClass, protocol, days)
	return macrosFor(p, definitionFor(protocol), days, wt)
}

// ComputeTargets computes all three targets for today in one pass.
func ComputeTargets(p *models.AthleteProfile, protocol models.Protocol, today time.Time) Targets {
	def := definitionFor(protocol)
	days := DaysUntilWeighIn(p, today)
	bucket := def.Bucket(days)
	wt := weightTargetFor(p.TargetClass, protocol, days)

	return Targets{
		Date:      models.DateOnly(today),
		DaysUntil: days,
		Phase:     wt.Phase,
		Weight:    wt,
		Hydration: hydrationFor(p.TargetClass, bucket),
		Macros:    macrosFor(p, def, days, wt),
		Notes:     append([]string(nil), bucket.Notes...),
	}
}

func weightTargetFor(targetClass float64, protocol models.Protocol, days int) WeightTarget {
	def := definitionFor(protocol)
	b := def.Bucket(days)

	base := units.Round(targetClass*b.Multiplier, def.Precision)
	bonus := 0.0
	if b.LoadBonus {
		bonus = LoadBonus(targetClass)
	}

	return WeightTarget{
		DaysUntil: days,
		Phase:     ClassifyPhase(days, protocol),
		Base:      base,
		Bonus:     bonus,
		Weight:    units.Round(base+bonus, def.Precision),
	}
}

func hydrationFor(targetClass float64, b Bucket) HydrationTarget {
	oz := units.GallonsToOz(b.Water.Gallons[TierFor(targetClass)])
	capped := false
	if oz > MaxDailyWaterOz {
		oz = MaxDailyWaterOz
		capped = true
	}
	if oz < 0 {
		oz = 0
	}

	return HydrationTarget{
		Display: formatWater(oz, b.Water.Fluid),
		Ounces:  oz,
		Fluid:   b.Water.Fluid,
		Capped:  capped,
	}
}

func formatWater(oz float64, fluid FluidType) string {
	var amount string
	if oz >= 64 {
		gal := units.Round(units.OzToGallons(oz), 0.05)
		amount = strconv.FormatFloat(gal, 'f', -1, 64) + " gal"
	} else {
		amount = fmt.Sprintf("%.0f oz", oz)
	}
	if fluid == FluidSipOnly {
		return "sips only, " + amount + " max"
	}
	return amount
}

func macrosFor(p *models.AthleteProfile, def *Definition, days int, wt WeightTarget) MacroTarget {
	b := def.Bucket(days)
	bodyWeight := p.CurrentWeight
	if bodyWeight <= 0 {
		bodyWeight = p.TargetClass
	}

	protein := b.Macros.Protein
	if b.Macros.ProteinPerLb {
		protein = protein.Scale(bodyWeight)
	}

	factor := reductionFactor(def, wt, p.CurrentWeight)
	kcal := DailyCalories(p, bodyWeight, b) * factor

	mode := p.MacroMode
	if mode == "" {
		mode = def.DefaultMode
	}

	mt := MacroTarget{
		Mode:            mode,
		Carbs:           b.Macros.Carbs.Scale(factor).Round(),
		Protein:         protein.Scale(factor).Round(),
		Ratio:           b.Macros.Ratio,
		Calories:        math.Round(kcal),
		ReductionFactor: factor,
	}
	if mode == models.ModePortions {
		s := SliceTargets(kcal)
		mt.Slices = &s
	}
	return mt
}

// reductionFactor applies the protocol's overweight tiers on Restrict and
// Critical days. It returns 1 when no tier applies.
func reductionFactor(def *Definition, wt WeightTarget, currentWeight float64) float64 {
	if !def.Cutting || (wt.Phase != PhaseRestrict && wt.Phase != PhaseCritical) {
		return 1
	}
	if currentWeight <= 0 || wt.Weight <= 0 {
		return 1
	}
	over := (currentWeight - wt.Weight) / wt.Weight * 100
	for _, tier := range def.OverweightTiers {
		if over >= tier.MinPercentOver {
			return tier.Factor
		}
	}
	return 1
}

// ABOUTME: Protocol table: per-protocol day buckets with weight, water, and macro prescriptions.
// ABOUTME: Buckets are validated at init to cover every integer day exactly once.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/harperreed/makeweight/internal/models"
)

// ErrInvalidTable is returned when a protocol definition has gaps, overlaps, or bad values.
var ErrInvalidTable = errors.New("invalid protocol table")

// FluidType is the kind of water prescribed for a day.
type FluidType string

const (
	FluidRegular   FluidType = "regular"
	FluidDistilled FluidType = "distilled"
	FluidSipOnly   FluidType = "sip_only"
	FluidRehydrate FluidType = "rehydrate"
)

// Tier groups weight classes for volume prescriptions and the water-load bonus.
type Tier int

const (
	TierLight Tier = iota
	TierMiddle
	TierHeavy
)

func (t Tier) String() string {
	switch t {
	case TierLight:
		return "light"
	case TierMiddle:
		return "middle"
	default:
		return "heavy"
	}
}

type weightTier struct {
	tier      Tier
	maxClass  float64
	loadBonus float64
}

// Inclusive upper bounds on target class, ascending.
var weightTiers = []weightTier{
	{TierLight, 141, 2},
	{TierMiddle, 174, 3},
	{TierHeavy, math.Inf(1), 4},
}

// TierFor returns the tier for a target weight class.
func TierFor(targetClass float64) Tier {
	return tierEntry(targetClass).tier
}

// LoadBonus returns the flat water-load bonus in pounds for a weight class.
func LoadBonus(targetClass float64) float64 {
	return tierEntry(targetClass).loadBonus
}

func tierEntry(targetClass float64) weightTier {
	for _, wt := range weightTiers {
		if targetClass <= wt.maxClass {
			return wt
		}
	}
	// NaN falls through every comparison.
	return weightTiers[len(weightTiers)-1]
}

// Range is an inclusive numeric range.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Scale multiplies both ends by f.
func (r Range) Scale(f float64) Range {
	return Range{Min: r.Min * f, Max: r.Max * f}
}

// Round rounds both ends to whole numbers.
func (r Range) Round() Range {
	return Range{Min: math.Round(r.Min), Max: math.Round(r.Max)}
}

// WaterPrescription is the fluid type and daily gallons per tier.
type WaterPrescription struct {
	Fluid   FluidType
	Gallons [3]float64
}

// MacroPrescription is a day's gram prescription. When ProteinPerLb is set the
// protein range is grams per pound of bodyweight.
type MacroPrescription struct {
	Carbs        Range
	Protein      Range
	ProteinPerLb bool
	Ratio        string
}

// Bucket is the prescription for an inclusive range of days-until-weigh-in.
type Bucket struct {
	MinDays       int
	MaxDays       int
	Multiplier    float64
	LoadBonus     bool
	Water         WaterPrescription
	Macros        MacroPrescription
	CalorieAdjust float64
	Notes         []string
}

// Contains reports whether days falls in the bucket.
func (b Bucket) Contains(days int) bool {
	return days >= b.MinDays && days <= b.MaxDays
}

// OverweightTier cuts food by Factor when the athlete is at least MinPercentOver
// above today's weight target.
type OverweightTier struct {
	MinPercentOver float64
	Factor         float64
}

// Definition is one protocol's full table.
type Definition struct {
	Protocol        models.Protocol
	Cutting         bool
	Precision       float64
	DefaultMode     models.TrackingMode
	Buckets         []Bucket
	OverweightTiers []OverweightTier
}

// Bucket returns the bucket covering days. Validated tables always match; the
// final bucket is returned otherwise.
func (d *Definition) Bucket(days int) Bucket {
	for _, b := range d.Buckets {
		if b.Contains(days) {
			return b
		}
	}
	return d.Buckets[len(d.Buckets)-1]
}

// Validate checks that buckets are ordered, contiguous, and cover all integers.
func (d *Definition) Validate() error {
	if len(d.Buckets) == 0 {
		return fmt.Errorf("%w: %v has no buckets", ErrInvalidTable, d.Protocol)
	}
	if d.Precision <= 0 {
		return fmt.Errorf("%w: %v precision must be positive", ErrInvalidTable, d.Protocol)
	}
	if first := d.Buckets[0]; first.MinDays != math.MinInt {
		return fmt.Errorf("%w: %v first bucket starts at %d", ErrInvalidTable, d.Protocol, first.MinDays)
	}
	if last := d.Buckets[len(d.Buckets)-1]; last.MaxDays != math.MaxInt {
		return fmt.Errorf("%w: %v last bucket ends at %d", ErrInvalidTable, d.Protocol, last.MaxDays)
	}
	for i, b := range d.Buckets {
		if b.MinDays > b.MaxDays {
			return fmt.Errorf("%w: %v bucket %d is empty [%d,%d]", ErrInvalidTable, d.Protocol, i, b.MinDays, b.MaxDays)
		}
		if b.Multiplier <= 0 || b.CalorieAdjust < 0 {
			return fmt.Errorf("%w: %v bucket %d has non-positive multiplier or negative calorie adjustment", ErrInvalidTable, d.Protocol, i)
		}
		if b.Macros.Carbs.Min > b.Macros.Carbs.Max || b.Macros.Protein.Min > b.Macros.Protein.Max {
			return fmt.Errorf("%w: %v bucket %d has inverted macro range", ErrInvalidTable, d.Protocol, i)
		}
		if i > 0 && b.MinDays != d.Buckets[i-1].MaxDays+1 {
			return fmt.Errorf("%w: %v buckets %d and %d are not contiguous", ErrInvalidTable, d.Protocol, i-1, i)
		}
	}
	for i := 1; i < len(d.OverweightTiers); i++ {
		if d.OverweightTiers[i].MinPercentOver >= d.OverweightTiers[i-1].MinPercentOver {
			return fmt.Errorf("%w: %v overweight tiers must be descending", ErrInvalidTable, d.Protocol)
		}
	}
	return nil
}

// Lookup returns the definition for p, falling back to Hold Weight for unknown ids.
func Lookup(p models.Protocol) *Definition {
	return definitionFor(p)
}

func definitionFor(p models.Protocol) *Definition {
	if d, ok := definitions[p]; ok {
		return d
	}
	return definitions[models.ProtocolHoldWeight]
}

// ValidateTable validates every protocol definition.
func ValidateTable() error {
	for _, p := range models.AllProtocols {
		d, ok := definitions[p]
		if !ok {
			return fmt.Errorf("%w: %v has no definition", ErrInvalidTable, p)
		}
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	if err := ValidateTable(); err != nil {
		panic(err)
	}
}

func water(f FluidType, light, middle, heavy float64) WaterPrescription {
	return WaterPrescription{Fluid: f, Gallons: [3]float64{light, middle, heavy}}
}

func grams(carbMin, carbMax, proMin, proMax float64, ratio string) MacroPrescription {
	return MacroPrescription{
		Carbs:   Range{carbMin, carbMax},
		Protein: Range{proMin, proMax},
		Ratio:   ratio,
	}
}

func perLb(carbMin, carbMax, proMin, proMax float64, ratio string) MacroPrescription {
	m := grams(carbMin, carbMax, proMin, proMax, ratio)
	m.ProteinPerLb = true
	return m
}

var cuttingOverweightTiers = []OverweightTier{
	{MinPercentOver: 10, Factor: 0},
	{MinPercentOver: 7, Factor: 0.25},
	{MinPercentOver: 5, Factor: 0.5},
	{MinPercentOver: 3, Factor: 0.75},
}

var (
	recoverNotes = []string{
		"Rehydrate steadily, 16-24 oz per pound lost",
		"Return to walk-around eating",
	}
	competeNotes = []string{
		"Weigh in first, then rehydrate with electrolytes",
		"Small, fast-digesting carbs between matches",
	}
	criticalNotes = []string{
		"Sips only; no large meals",
		"Check weight morning and night",
	}
	restrictNotes = []string{
		"Cut water to the prescribed volume",
		"Low-residue, low-sodium foods",
	}
	loadNotes = []string{
		"Drink the full water load, spread through the day",
		"Elevated scale weight is expected",
	}
	maintenanceNotes = []string{
		"Train normally and eat to the plan",
	}
)

var definitions = map[models.Protocol]*Definition{
	models.ProtocolExtremeCut: {
		Protocol:        models.ProtocolExtremeCut,
		Cutting:         true,
		Precision:       0.1,
		DefaultMode:     models.ModeGrams,
		OverweightTiers: cuttingOverweightTiers,
		Buckets: []Bucket{
			{MinDays: math.MinInt, MaxDays: -1, Multiplier: 1.07, CalorieAdjust: 1.0,
				Water:  water(FluidRegular, 1.0, 1.25, 1.5),
				Macros: perLb(250, 350, 0.9, 1.1, "Recovery 45/30/25"), Notes: recoverNotes},
			{MinDays: 0, MaxDays: 0, Multiplier: 1.00, CalorieAdjust: 1.1,
				Water:  water(FluidRehydrate, 0.75, 1.0, 1.25),
				Macros: grams(200, 300, 40, 60, "Refuel: fast carbs + electrolytes"), Notes: competeNotes},
			{MinDays: 1, MaxDays: 1, Multiplier: 1.015, CalorieAdjust: 0.3,
				Water:  water(FluidSipOnly, 0.25, 0.25, 0.3),
				Macros: grams(50, 100, 0, 20, "Minimal residue"), Notes: criticalNotes},
			{MinDays: 2, MaxDays: 2, Multiplier: 1.03, CalorieAdjust: 0.6,
				Water:  water(FluidDistilled, 0.5, 0.75, 0.75),
				Macros: grams(150, 250, 40, 60, "Low residue, fast carbs"), Notes: restrictNotes},
			{MinDays: 3, MaxDays: 3, Multiplier: 1.04, LoadBonus: true, CalorieAdjust: 0.9,
				Water:  water(FluidDistilled, 1.5, 1.75, 2.0),
				Macros: grams(250, 350, 50, 70, "High carb, low protein"), Notes: loadNotes},
			{MinDays: 4, MaxDays: 4, Multiplier: 1.05, LoadBonus: true, CalorieAdjust: 0.9,
				Water:  water(FluidRegular, 1.75, 2.0, 2.25),
				Macros: grams(300, 400, 60, 80, "High carb, low protein"), Notes: loadNotes},
			{MinDays: 5, MaxDays: 5, Multiplier: 1.06, LoadBonus: true, CalorieAdjust: 0.9,
				Water:  water(FluidRegular, 1.5, 1.75, 2.0),
				Macros: grams(300, 400, 60, 80, "High carb, low protein"), Notes: loadNotes},
			{MinDays: 6, MaxDays: math.MaxInt, Multiplier: 1.07, CalorieAdjust: 0.85,
				Water:  water(FluidRegular, 1.0, 1.25, 1.5),
				Macros: perLb(250, 350, 0.9, 1.1, "Balanced 45/30/25"), Notes: maintenanceNotes},
		},
	},
	models.ProtocolRapidCut: {
		Protocol:        models.ProtocolRapidCut,
		Cutting:         true,
		Precision:       0.1,
		DefaultMode:     models.ModeGrams,
		OverweightTiers: cuttingOverweightTiers,
		Buckets: []Bucket{
			{MinDays: math.MinInt, MaxDays: -1, Multiplier: 1.05, CalorieAdjust: 1.0,
				Water:  water(FluidRegular, 1.0, 1.25, 1.5),
				Macros: perLb(250, 350, 0.9, 1.1, "Recovery 45/30/25"), Notes: recoverNotes},
			{MinDays: 0, MaxDays: 0, Multiplier: 1.00, CalorieAdjust: 1.1,
				Water:  water(FluidRehydrate, 0.75, 1.0, 1.25),
				Macros: grams(200, 300, 40, 60, "Refuel: fast carbs + electrolytes"), Notes: competeNotes},
			{MinDays: 1, MaxDays: 1, Multiplier: 1.01, CalorieAdjust: 0.4,
				Water:  water(FluidSipOnly, 0.3, 0.35, 0.4),
				Macros: grams(100, 150, 20, 40, "Light, low residue"), Notes: criticalNotes},
			{MinDays: 2, MaxDays: 2, Multiplier: 1.025, CalorieAdjust: 0.7,
				Water:  water(FluidDistilled, 0.75, 1.0, 1.0),
				Macros: grams(200, 300, 60, 80, "Low residue, fast carbs"), Notes: restrictNotes},
			{MinDays: 3, MaxDays: 3, Multiplier: 1.035, LoadBonus: true, CalorieAdjust: 0.95,
				Water:  water(FluidDistilled, 1.25, 1.5, 1.75),
				Macros: grams(300, 400, 80, 100, "High carb, moderate protein"), Notes: loadNotes},
			{MinDays: 4, MaxDays: 4, Multiplier: 1.04, LoadBonus: true, CalorieAdjust: 0.95,
				Water:  water(FluidRegular, 1.5, 1.75, 2.0),
				Macros: grams(300, 400, 80, 100, "High carb, moderate protein"), Notes: loadNotes},
			{MinDays: 5, MaxDays: 5, Multiplier: 1.045, LoadBonus: true, CalorieAdjust: 0.95,
				Water:  water(FluidRegular, 1.5, 1.75, 2.0),
				Macros: grams(300, 400, 80, 100, "High carb, moderate protein"), Notes: loadNotes},
			{MinDays: 6, MaxDays: math.MaxInt, Multiplier: 1.05, CalorieAdjust: 0.9,
				Water:  water(FluidRegular, 1.0, 1.25, 1.5),
				Macros: perLb(250, 350, 0.9, 1.1, "Balanced 45/30/25"), Notes: maintenanceNotes},
		},
	},
	models.ProtocolHoldWeight: {
		Protocol:    models.ProtocolHoldWeight,
		Precision:   0.5,
		DefaultMode: models.ModeGrams,
		Buckets: []Bucket{
			{MinDays: math.MinInt, MaxDays: -1, Multiplier: 1.02, CalorieAdjust: 1.0,
				Water:  water(FluidRegular, 1.0, 1.25, 1.5),
				Macros: perLb(200, 300, 0.8, 1.0, "Maintenance 40/30/30"), Notes: recoverNotes},
			{MinDays: 0, MaxDays: 0, Multiplier: 1.00, CalorieAdjust: 1.1,
				Water:  water(FluidRehydrate, 0.75, 1.0, 1.25),
				Macros: grams(200, 300, 40, 60, "Refuel: fast carbs + electrolytes"), Notes: competeNotes},
			{MinDays: 1, MaxDays: 1, Multiplier: 1.01, CalorieAdjust: 1.0,
				Water:  water(FluidRegular, 0.75, 1.0, 1.25),
				Macros: perLb(200, 300, 0.8, 1.0, "Maintenance 40/30/30"), Notes: maintenanceNotes},
			{MinDays: 2, MaxDays: math.MaxInt, Multiplier: 1.02, CalorieAdjust: 1.0,
				Water:  water(FluidRegular, 0.75, 1.0, 1.25),
				Macros: perLb(200, 300, 0.8, 1.0, "Maintenance 40/30/30"), Notes: maintenanceNotes},
		},
	},
	models.ProtocolBuild: {
		Protocol:    models.ProtocolBuild,
		Precision:   0.5,
		DefaultMode: models.ModeGrams,
		Buckets: []Bucket{
			{MinDays: math.MinInt, MaxDays: -1, Multiplier: 1.00, CalorieAdjust: 1.15,
				Water:  water(FluidRegular, 1.0, 1.25, 1.5),
				Macros: perLb(350, 450, 1.0, 1.2, "Surplus 45/30/25"), Notes: recoverNotes},
			{MinDays: 0, MaxDays: 0, Multiplier: 1.00, CalorieAdjust: 1.15,
				Water:  water(FluidRehydrate, 0.75, 1.0, 1.25),
				Macros: grams(250, 350, 60, 80, "Refuel: fast carbs + electrolytes"), Notes: competeNotes},
			{MinDays: 1, MaxDays: math.MaxInt, Multiplier: 1.00, CalorieAdjust: 1.15,
				Water:  water(FluidRegular, 1.0, 1.25, 1.5),
				Macros: perLb(350, 450, 1.0, 1.2, "Surplus 45/30/25"),
				Notes:  []string{"Eat in a surplus and lift heavy", "Weigh in at or under class"}},
		},
	},
	models.ProtocolPortionMaintenance: {
		Protocol:    models.ProtocolPortionMaintenance,
		Precision:   0.5,
		DefaultMode: models.ModePortions,
		Buckets: []Bucket{
			{MinDays: math.MinInt, MaxDays: -1, Multiplier: 1.03, CalorieAdjust: 1.0,
				Water:  water(FluidRegular, 1.0, 1.25, 1.5),
				Macros: perLb(200, 300, 0.8, 1.0, "Portions 30/35/35"), Notes: recoverNotes},
			{MinDays: 0, MaxDays: 0, Multiplier: 1.00, CalorieAdjust: 1.1,
				Water:  water(FluidRehydrate, 0.75, 1.0, 1.25),
				Macros: grams(200, 300, 40, 60, "Refuel: fast carbs + electrolytes"), Notes: competeNotes},
			{MinDays: 1, MaxDays: math.MaxInt, Multiplier: 1.03, CalorieAdjust: 1.0,
				Water:  water(FluidRegular, 0.75, 1.0, 1.25),
				Macros: perLb(200, 300, 0.8, 1.0, "Portions 30/35/35"),
				Notes:  []string{"Fill each plate by slices, not grams"}},
		},
	},
}

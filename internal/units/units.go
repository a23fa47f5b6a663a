// ABOUTME: Unit conversions for mass, length, and volume plus weight validation.
// ABOUTME: The engine works in pounds and fluid ounces; these helpers bridge the rest.
package units

import (
	"errors"
	"fmt"
	"math"
)

const (
	LbsPerKg    = 2.20462
	CmPerInch   = 2.54
	MlPerOz     = 29.5735
	OzPerGallon = 128.0
	OzPerLiter  = 1000.0 / MlPerOz

	// MinWeight and MaxWeight bound a plausible athlete weight in pounds.
	MinWeight = 80.0
	MaxWeight = 400.0
)

// ErrWeightOutOfRange is returned when a weight falls outside [MinWeight, MaxWeight].
var ErrWeightOutOfRange = errors.New("weight out of range")

// LbsToKg converts pounds to kilograms.
func LbsToKg(lbs float64) float64 { return lbs / LbsPerKg }

// KgToLbs converts kilograms to pounds.
func KgToLbs(kg float64) float64 { return kg * LbsPerKg }

// InchesToCm converts inches to centimeters.
func InchesToCm(in float64) float64 { return in * CmPerInch }

// CmToInches converts centimeters to inches.
func CmToInches(cm float64) float64 { return cm / CmPerInch }

// OzToMl converts US fluid ounces to milliliters.
func OzToMl(oz float64) float64 { return oz * MlPerOz }

// MlToOz converts milliliters to US fluid ounces.
func MlToOz(ml float64) float64 { return ml / MlPerOz }

// GallonsToOz converts US gallons to fluid ounces.
func GallonsToOz(gal float64) float64 { return gal * OzPerGallon }

// OzToGallons converts fluid ounces to US gallons.
func OzToGallons(oz float64) float64 { return oz / OzPerGallon }

// LitersToOz converts liters to fluid ounces.
func LitersToOz(l float64) float64 { return l * OzPerLiter }

// ValidateWeight rejects weights that cannot belong to a real athlete.
func ValidateWeight(lbs float64) error {
	if math.IsNaN(lbs) || math.IsInf(lbs, 0) {
		return fmt.Errorf("%w: not a number", ErrWeightOutOfRange)
	}
	if lbs < MinWeight || lbs > MaxWeight {
		return fmt.Errorf("%w: %.1f lbs (allowed %.0f-%.0f)", ErrWeightOutOfRange, lbs, MinWeight, MaxWeight)
	}
	return nil
}

// Round rounds v to the nearest multiple of step. A non-positive step returns v unchanged.
func Round(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	if step < 1 {
		inv := math.Round(1 / step)
		return math.Round(v*inv) / inv
	}
	return math.Round(v/step) * step
}

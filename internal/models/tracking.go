// ABOUTME: DailyTracking record for water, macros, and portion slices.
// ABOUTME: Keyed by calendar date; LastMode marks which representation was written last.
package models

import "time"

// TrackingMode is the representation an athlete logs food in.
type TrackingMode string

const (
	ModeGrams    TrackingMode = "grams"
	ModePortions TrackingMode = "portions"
)

// DateLayout is the calendar-date key format.
const DateLayout = "2006-01-02"

// Slices counts portion units per food category.
type Slices struct {
	Protein int `json:"protein"`
	Carb    int `json:"carb"`
	Veg     int `json:"veg"`
	Fruit   int `json:"fruit"`
	Fat     int `json:"fat"`
}

// Total returns the number of slices across categories.
func (s Slices) Total() int {
	return s.Protein + s.Carb + s.Veg + s.Fruit + s.Fat
}

// DailyTracking accumulates what was consumed on one calendar date.
type DailyTracking struct {
	Date      string       `json:"date"`
	WaterOz   float64      `json:"water_oz"`
	CarbsG    float64      `json:"carbs_g"`
	ProteinG  float64      `json:"protein_g"`
	Slices    Slices       `json:"slices"`
	LastMode  TrackingMode `json:"last_mode,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewDailyTracking returns an empty record for the given date.
func NewDailyTracking(date time.Time) *DailyTracking {
	return &DailyTracking{Date: DateKey(date)}
}

// DateKey formats t as a tracking record key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// AddWater adds consumed water in ounces.
func (d *DailyTracking) AddWater(oz float64) {
	d.WaterOz += oz
	d.touch()
}

// AddGrams adds carbohydrate and protein grams and marks grams as the last mode.
func (d *DailyTracking) AddGrams(carbs, protein float64) {
	d.CarbsG += carbs
	d.ProteinG += protein
	d.LastMode = ModeGrams
	d.touch()
}

// AddSlices adds portion counts and marks portions as the last mode.
func (d *DailyTracking) AddSlices(s Slices) {
	d.Slices.Protein += s.Protein
	d.Slices.Carb += s.Carb
	d.Slices.Veg += s.Veg
	d.Slices.Fruit += s.Fruit
	d.Slices.Fat += s.Fat
	d.LastMode = ModePortions
	d.touch()
}

// Clone returns a copy.
func (d *DailyTracking) Clone() *DailyTracking {
	c := *d
	return &c
}

func (d *DailyTracking) touch() {
	d.UpdatedAt = time.Now()
}

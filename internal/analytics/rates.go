// ABOUTME: Overnight drift and in-practice sweat-rate scans over the weight log.
// ABOUTME: Returns nil rates when no qualifying pairs exist.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/harperreed/makeweight/internal/models"
)

const (
	OvernightMinGap    = 4 * time.Hour
	OvernightMaxGap    = 16 * time.Hour
	SessionMaxGap      = 6 * time.Hour
	MinSessionDuration = 6 * time.Minute

	// MaxSweatRate discards pairs with implausible timestamps, in lbs/hr.
	MaxSweatRate = 5.0
)

// Rates summarizes how fast the athlete drops weight. Nil means insufficient data.
type Rates struct {
	Overnight        *float64 `json:"overnight"`
	OvernightPerHour *float64 `json:"overnight_per_hour"`
	OvernightPairs   int      `json:"overnight_pairs"`
	Session          *float64 `json:"session"`
	SessionPerHour   *float64 `json:"session_per_hour"`
	SessionPairs     int      `json:"session_pairs"`
}

// HasData reports whether either scan found a pair.
func (r Rates) HasData() bool {
	return r.Overnight != nil || r.Session != nil
}

var eveningTypes = map[models.MeasurementType]bool{
	models.MeasurePostSession: true,
	models.MeasureExtraAfter:  true,
	models.MeasureBeforeBed:   true,
}

// sessionStarts maps an after-session type to the type that opens it.
var sessionStarts = map[models.MeasurementType]models.MeasurementType{
	models.MeasurePostSession: models.MeasurePreSession,
	models.MeasureExtraAfter:  models.MeasureExtraBefore,
}

// ComputeRates scans logs in any order and averages overnight drift and
// per-session loss.
func ComputeRates(logs []*models.WeightLog) Rates {
	sorted := sortedLogs(logs)

	var r Rates
	drift, driftRate := overnightPairs(sorted)
	if len(drift) > 0 {
		r.Overnight = avg(drift)
		r.OvernightPerHour = avg(driftRate)
		r.OvernightPairs = len(drift)
	}

	loss, lossRate := sessionPairs(sorted)
	if len(loss) > 0 {
		r.Session = avg(loss)
		r.SessionPerHour = avg(lossRate)
		r.SessionPairs = len(loss)
	}
	return r
}

func sortedLogs(logs []*models.WeightLog) []*models.WeightLog {
	out := make([]*models.WeightLog, 0, len(logs))
	for _, l := range logs {
		if l != nil {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedAt.Before(out[j].RecordedAt)
	})
	return out
}

// overnightPairs pairs each morning weigh-in with the nearest earlier evening
// weigh-in inside the overnight window. Each evening entry is used once.
func overnightPairs(logs []*models.WeightLog) (drift, perHour []float64) {
	used := make(map[int]bool)
	for i, later := range logs {
		if later.Type != models.MeasureMorning {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			gap := later.RecordedAt.Sub(logs[j].RecordedAt)
			if gap > OvernightMaxGap {
				break
			}
			if used[j] || !eveningTypes[logs[j].Type] || gap < OvernightMinGap {
				continue
			}
			d := logs[j].Weight - later.Weight
			drift = append(drift, d)
			perHour = append(perHour, d/gap.Hours())
			used[j] = true
			break
		}
	}
	return drift, perHour
}

// sessionPairs pairs each after-session weigh-in with the nearest earlier
// matching before-session weigh-in.
func sessionPairs(logs []*models.WeightLog) (loss, perHour []float64) {
	used := make(map[int]bool)
	for i, after := range logs {
		startType, ok := sessionStarts[after.Type]
		if !ok {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			gap := after.RecordedAt.Sub(logs[j].RecordedAt)
			if gap > SessionMaxGap {
				break
			}
			if used[j] || logs[j].Type != startType || gap <= 0 {
				continue
			}

			elapsed := gap
			if after.DurationMinutes != nil && *after.DurationMinutes > 0 {
				elapsed = time.Duration(*after.DurationMinutes) * time.Minute
			}
			if elapsed < MinSessionDuration {
				break
			}

			l := logs[j].Weight - after.Weight
			rate := l / elapsed.Hours()
			if math.Abs(rate) > MaxSweatRate {
				break
			}
			// A rejected pair leaves the start free for a later after-session entry.
			used[j] = true
			loss = append(loss, l)
			perHour = append(perHour, rate)
			break
		}
	}
	return loss, perHour
}

func avg(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	a := round2(sum / float64(len(vals)))
	return &a
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

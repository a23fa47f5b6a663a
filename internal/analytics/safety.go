// ABOUTME: Safety assessment against fixed thresholds that tighten near weigh-in.
// ABOUTME: Independent of pace; the two may disagree.
package analytics

import "fmt"

// Level is a discrete safety classification.
type Level string

const (
	LevelSafe    Level = "safe"
	LevelCaution Level = "caution"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

// MaxSafeCutPercent is the largest remaining cut, as a share of current
// weight, that is not flagged as danger.
const MaxSafeCutPercent = 7.0

var levelRank = map[Level]int{
	LevelSafe:    0,
	LevelCaution: 1,
	LevelWarning: 2,
	LevelDanger:  3,
}

// Color returns the display colour for the level.
func (l Level) Color() string {
	switch l {
	case LevelCaution:
		return "yellow"
	case LevelWarning:
		return "hiyellow"
	case LevelDanger:
		return "red"
	default:
		return "green"
	}
}

type thresholds struct {
	caution, warning, danger float64
}

func thresholdsFor(daysRemaining int) thresholds {
	switch {
	case daysRemaining <= 1:
		return thresholds{1, 2, 3}
	case daysRemaining == 2:
		return thresholds{2, 3.5, 5}
	case daysRemaining <= 4:
		return thresholds{3, 5, 7}
	default:
		return thresholds{5, 8, 12}
	}
}

// Assessment is the result of AssessSafety.
type Assessment struct {
	Level      Level   `json:"level"`
	Message    string  `json:"message"`
	Delta      float64 `json:"delta"`
	CutPercent float64 `json:"cut_percent"`
}

// AssessSafety classifies how risky the remaining cut is. Being at or under
// the target is always safe.
func AssessSafety(currentWeight, targetWeight float64, daysRemaining int) Assessment {
	delta := round2(currentWeight - targetWeight)
	a := Assessment{Level: LevelSafe, Delta: delta}
	if delta <= 0 {
		a.Message = "At or under target"
		return a
	}

	if currentWeight > 0 {
		a.CutPercent = round2(delta / currentWeight * 100)
	}

	th := thresholdsFor(daysRemaining)
	switch {
	case delta > th.danger:
		a.Level = LevelDanger
	case delta > th.warning:
		a.Level = LevelWarning
	case delta > th.caution:
		a.Level = LevelCaution
	}
	if a.CutPercent > MaxSafeCutPercent {
		a.Level = maxLevel(a.Level, LevelDanger)
	}

	a.Message = message(a, daysRemaining)
	return a
}

func maxLevel(a, b Level) Level {
	if levelRank[b] > levelRank[a] {
		return b
	}
	return a
}

func message(a Assessment, days int) string {
	var window string
	switch {
	case days <= 0:
		window = "at weigh-in"
	case days == 1:
		window = "with 1 day left"
	default:
		window = fmt.Sprintf("with %d days left", days)
	}

	switch a.Level {
	case LevelDanger:
		if a.CutPercent > MaxSafeCutPercent {
			return fmt.Sprintf("%.1f lbs over (%.1f%% of bodyweight) %s: unsafe cut, talk to your coach", a.Delta, a.CutPercent, window)
		}
		return fmt.Sprintf("%.1f lbs over %s: unsafe to cut further, talk to your coach", a.Delta, window)
	case LevelWarning:
		return fmt.Sprintf("%.1f lbs over %s: extra workouts likely needed", a.Delta, window)
	case LevelCaution:
		return fmt.Sprintf("%.1f lbs over %s: stay on plan", a.Delta, window)
	default:
		return fmt.Sprintf("%.1f lbs over %s: on a safe path", a.Delta, window)
	}
}

// ABOUTME: Phase classifier mapping days-until-weigh-in to a named phase.
// ABOUTME: Steady protocols never enter Load, Restrict, or Critical.
package engine

import "github.com/harperreed/makeweight/internal/models"

// Phase is a derived stage of the cut. It is never stored.
type Phase string

const (
	PhaseMaintenance Phase = "maintenance"
	PhaseLoad        Phase = "load"
	PhaseRestrict    Phase = "restrict"
	PhaseCritical    Phase = "critical"
	PhaseCompete     Phase = "compete"
	PhaseRecover     Phase = "recover"
)

// AllPhases lists phases in the order a cut moves through them.
var AllPhases = []Phase{
	PhaseMaintenance, PhaseLoad, PhaseRestrict, PhaseCritical, PhaseCompete, PhaseRecover,
}

// Style is how a phase is presented.
type Style struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var phaseStyles = map[Phase]Style{
	PhaseMaintenance: {Label: "Maintenance", Color: "blue", Icon: "○"},
	PhaseLoad:        {Label: "Water Load", Color: "cyan", Icon: "≈"},
	PhaseRestrict:    {Label: "Restrict", Color: "yellow", Icon: "▽"},
	PhaseCritical:    {Label: "Critical", Color: "red", Icon: "!"},
	PhaseCompete:     {Label: "Compete", Color: "magenta", Icon: "★"},
	PhaseRecover:     {Label: "Recover", Color: "green", Icon: "+"},
}

// Style returns the display style for the phase.
func (p Phase) Style() Style {
	if s, ok := phaseStyles[p]; ok {
		return s
	}
	return phaseStyles[PhaseMaintenance]
}

// ClassifyPhase maps a signed days-until-weigh-in value to a phase.
func ClassifyPhase(daysUntil int, protocol models.Protocol) Phase {
	switch {
	case daysUntil < 0:
		return PhaseRecover
	case daysUntil == 0:
		return PhaseCompete
	}

	if !IsCutting(protocol) {
		return PhaseMaintenance
	}

	switch {
	case daysUntil == 1:
		return PhaseCritical
	case daysUntil == 2:
		return PhaseRestrict
	case daysUntil <= 5:
		return PhaseLoad
	default:
		return PhaseMaintenance
	}
}

// IsCutting reports whether the protocol runs the load/restrict/critical sequence.
func IsCutting(p models.Protocol) bool {
	return definitionFor(p).Cutting
}

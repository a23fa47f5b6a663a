// ABOUTME: AthleteProfile and the closed Protocol enumeration.
// ABOUTME: The weigh-in date on the profile anchors every days-until calculation.
package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Protocol identifies a named cutting strategy.
type Protocol int

const (
	ProtocolExtremeCut Protocol = iota + 1
	ProtocolRapidCut
	ProtocolHoldWeight
	ProtocolBuild
	ProtocolPortionMaintenance
)

// ErrUnknownProtocol is returned when a protocol id or name is not recognized.
var ErrUnknownProtocol = errors.New("unknown protocol")

// AllProtocols lists every protocol in id order.
var AllProtocols = []Protocol{
	ProtocolExtremeCut, ProtocolRapidCut, ProtocolHoldWeight, ProtocolBuild, ProtocolPortionMaintenance,
}

var protocolNames = map[Protocol]string{
	ProtocolExtremeCut:         "Extreme Cut",
	ProtocolRapidCut:           "Rapid Cut",
	ProtocolHoldWeight:         "Hold Weight",
	ProtocolBuild:              "Build",
	ProtocolPortionMaintenance: "Portion Maintenance",
}

var protocolKeys = map[string]Protocol{
	"extreme": ProtocolExtremeCut,
	"rapid":   ProtocolRapidCut,
	"hold":    ProtocolHoldWeight,
	"build":   ProtocolBuild,
	"portion": ProtocolPortionMaintenance,
}

// String returns the display name.
func (p Protocol) String() string {
	if name, ok := protocolNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Protocol(%d)", int(p))
}

// Valid reports whether p is one of the known protocols.
func (p Protocol) Valid() bool {
	_, ok := protocolNames[p]
	return ok
}

// ParseProtocol accepts a numeric id ("2") or a short key ("rapid").
func ParseProtocol(s string) (Protocol, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		p := Protocol(n)
		if p.Valid() {
			return p, nil
		}
		return 0, fmt.Errorf("%w: %d", ErrUnknownProtocol, n)
	}
	if p, ok := protocolKeys[s]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProtocol, s)
}

// AthleteProfile is the static side of a cut: who, what class, and when.
type AthleteProfile struct {
	Name          string    `json:"name"`
	CurrentWeight float64   `json:"current_weight"`
	TargetClass   float64   `json:"target_class"`
	WeighInDate   time.Time `json:"weigh_in_date"`
	Protocol      Protocol  `json:"protocol"`

	// SimulatedToday replaces the real date everywhere when set.
	SimulatedToday *time.Time `json:"simulated_today,omitempty"`

	// MacroMode overrides the protocol's default tracking representation.
	MacroMode TrackingMode `json:"macro_mode,omitempty"`

	// Optional body data; when all are present BMR uses Mifflin-St Jeor.
	Sex           string  `json:"sex,omitempty"`
	AgeYears      int     `json:"age_years,omitempty"`
	HeightInches  float64 `json:"height_inches,omitempty"`
	ActivityLevel string  `json:"activity_level,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAthleteProfile creates a profile with timestamps set.
func NewAthleteProfile(name string, currentWeight, targetClass float64, weighIn time.Time, p Protocol) *AthleteProfile {
	now := time.Now()
	return &AthleteProfile{
		Name:          name,
		CurrentWeight: currentWeight,
		TargetClass:   targetClass,
		WeighInDate:   DateOnly(weighIn),
		Protocol:      p,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Today resolves the effective date: the simulated override if present, else now.
func (p *AthleteProfile) Today(now time.Time) time.Time {
	if p.SimulatedToday != nil {
		return *p.SimulatedToday
	}
	return now
}

// Clone returns a deep copy.
func (p *AthleteProfile) Clone() *AthleteProfile {
	c := *p
	if p.SimulatedToday != nil {
		t := *p.SimulatedToday
		c.SimulatedToday = &t
	}
	return &c
}

// DateOnly truncates t to its calendar date, keeping the date t shows in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

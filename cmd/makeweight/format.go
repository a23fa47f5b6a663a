// ABOUTME: Terminal rendering for targets, plans, and status.
// ABOUTME: Maps phase and safety colours onto fatih/color attributes.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/harperreed/makeweight/internal/analytics"
	"github.com/harperreed/makeweight/internal/engine"
	"github.com/harperreed/makeweight/internal/models"
)

var colorAttrs = map[string]color.Attribute{
	"blue":     color.FgBlue,
	"cyan":     color.FgCyan,
	"yellow":   color.FgYellow,
	"hiyellow": color.FgHiYellow,
	"red":      color.FgRed,
	"magenta":  color.FgMagenta,
	"green":    color.FgGreen,
}

func colorFor(name string) *color.Color {
	if attr, ok := colorAttrs[name]; ok {
		return color.New(attr)
	}
	return color.New(color.Reset)
}

// phaseLabel renders the phase icon and label, padded to width before colouring.
func phaseLabel(p engine.Phase, width int) string {
	st := p.Style()
	return colorFor(st.Color).Sprint(padRight(st.Icon+" "+st.Label, width))
}

func formatRange(r engine.Range, unit string) string {
	if r.Min == r.Max {
		return fmt.Sprintf("%.0f %s", r.Min, unit)
	}
	return fmt.Sprintf("%.0f-%.0f %s", r.Min, r.Max, unit)
}

func formatSlices(s models.Slices) string {
	var parts []string
	add := func(n int, name string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, name))
		}
	}
	add(s.Protein, "protein")
	add(s.Carb, "carb")
	add(s.Veg, "veg")
	add(s.Fruit, "fruit")
	add(s.Fat, "fat")
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func printTargets(tg engine.Targets) {
	faint := color.New(color.Faint)

	fmt.Printf("%s  %s  %s\n",
		color.New(color.Bold).Sprint(tg.Date.Format("Mon Jan 2")),
		phaseLabel(tg.Phase, 0),
		faint.Sprint(daysLabel(tg.DaysUntil)))

	weight := fmt.Sprintf("%.1f lbs", tg.Weight.Weight)
	if tg.Weight.Bonus > 0 {
		weight += faint.Sprintf(" (%.1f + %.0f water load)", tg.Weight.Base, tg.Weight.Bonus)
	}
	fmt.Printf("  %s %s\n", faint.Sprint("Weight "), weight)

	water := tg.Hydration.Display
	if tg.Hydration.Capped {
		water += faint.Sprint(" (capped)")
	}
	fmt.Printf("  %s %s\n", faint.Sprint("Water  "), water)

	m := tg.Macros
	if m.Slices != nil {
		fmt.Printf("  %s %s\n", faint.Sprint("Food   "), formatSlices(*m.Slices))
	} else {
		fmt.Printf("  %s %s carbs, %s protein\n", faint.Sprint("Food   "),
			formatRange(m.Carbs, "g"), formatRange(m.Protein, "g"))
	}
	if m.ReductionFactor < 1 {
		color.Yellow("  Food cut to %.0f%% (over today's target)", m.ReductionFactor*100)
	}
	for _, n := range tg.Notes {
		fmt.Printf("  %s %s\n", faint.Sprint("•"), n)
	}
}

func printPlan(plan []engine.DayPlan) {
	faint := color.New(color.Faint)
	for _, d := range plan {
		marker := "  "
		switch {
		case d.IsToday:
			marker = color.New(color.Bold).Sprint("▶ ")
		case d.IsTomorrow:
			marker = faint.Sprint("› ")
		}

		food := formatRange(d.Macros.Carbs, "g") + " C / " + formatRange(d.Macros.Protein, "g") + " P"
		if d.Macros.Slices != nil {
			food = formatSlices(*d.Macros.Slices)
		}

		fmt.Printf("%s%s  %s  %6.1f lbs  %-22s %s\n",
			marker,
			d.Date.Format("Mon 01/02"),
			phaseLabel(d.Phase, 13),
			d.Weight.Weight,
			d.Hydration.Display,
			faint.Sprint(food))
	}
}

func printStatus(st analytics.Status) {
	faint := color.New(color.Faint)

	fmt.Printf("%s  %s  %s\n",
		color.New(color.Bold).Sprint(st.Date.Format("Mon Jan 2")),
		phaseLabel(st.Phase, 0),
		faint.Sprint(daysLabel(st.DaysUntil)))

	if st.CurrentWeight == nil {
		fmt.Printf("  %s %.1f lbs\n", faint.Sprint("Target   "), st.Target.Weight)
		color.Yellow("  No weigh-ins yet: run 'makeweight log morning <weight>'")
		return
	}

	fmt.Printf("  %s %.1f lbs %s\n", faint.Sprint("Current  "), *st.CurrentWeight,
		faint.Sprintf("(%+.1f to class)", *st.ToClass))
	fmt.Printf("  %s %.1f lbs\n", faint.Sprint("Target   "), st.Target.Weight)

	if st.Pace != nil {
		pace := color.New(color.FgGreen)
		if st.Pace.Pace == analytics.PaceBehind {
			pace = color.New(color.FgYellow)
		}
		fmt.Printf("  %s %s %s\n", faint.Sprint("Pace     "),
			pace.Sprint(strings.ReplaceAll(string(st.Pace.Pace), "_", " ")),
			faint.Sprintf("(%+.1f lbs)", st.Pace.Delta))
	}

	r := st.Rates
	if r.Overnight != nil {
		fmt.Printf("  %s %.2f lbs %s\n", faint.Sprint("Overnight"), *r.Overnight, faint.Sprintf("(%d nights)", r.OvernightPairs))
	}
	if r.Session != nil {
		perHour := ""
		if r.SessionPerHour != nil {
			perHour = fmt.Sprintf(", %.2f/hr", *r.SessionPerHour)
		}
		fmt.Printf("  %s %.2f lbs %s\n", faint.Sprint("Practice "), *r.Session, faint.Sprintf("(%d sessions%s)", r.SessionPairs, perHour))
	}
	if st.Projected != nil {
		fmt.Printf("  %s %.1f lbs\n", faint.Sprint("Projected"), *st.Projected)
	}

	if st.Safety != nil {
		colorFor(st.Safety.Level.Color()).Printf("  %s\n", st.Safety.Message)
	}
}

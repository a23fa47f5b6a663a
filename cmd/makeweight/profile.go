// ABOUTME: CLI commands for the athlete profile.
// ABOUTME: `profile set` creates or updates fields; `profile show` prints it.
package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/makeweight/internal/engine"
	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/service"
)

var (
	profileName     string
	profileWeight   float64
	profileClass    float64
	profileWeighIn  string
	profileProtocol string
	profileMode     string
	profileSex      string
	profileAge      int
	profileHeight   float64
	profileActivity string
	profileToday    string
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"p"},
	Short:   "Manage the athlete profile",
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update the athlete profile",
	Long: `Create or update the athlete profile.

On first use --class and --weigh-in are required. Later calls only change the
flags you pass.

FLAGS:

  --name        Athlete name
  --weight      Current weight in lbs
  --class       Target weight class in lbs
  --weigh-in    Weigh-in date (YYYY-MM-DD)
  --protocol    extreme, rapid, hold, build, portion (or 1-5)
  --mode        grams or portions (overrides the protocol default)
  --sex, --age, --height, --activity
                Body data for Mifflin-St Jeor calorie estimates
  --today       Pretend today is this date (YYYY-MM-DD); "off" clears it

EXAMPLES:

  makeweight profile set --name Sam --weight 172 --class 165 \
      --weigh-in 2025-03-08 --protocol rapid
  makeweight profile set --mode portions
  makeweight profile set --today 2025-03-06     # Rehearse three days later`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := svc.Profile()
		if errors.Is(err, service.ErrNoProfile) {
			if !cmd.Flags().Changed("class") || !cmd.Flags().Changed("weigh-in") {
				return fmt.Errorf("a new profile needs --class and --weigh-in")
			}
			p = &models.AthleteProfile{Protocol: models.ProtocolHoldWeight}
		} else if err != nil {
			return err
		}

		if err := applyProfileFlags(cmd, p); err != nil {
			return err
		}
		if err := svc.SaveProfile(cmd.Context(), p); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}

		color.Green("✓ Profile saved")
		printProfile(p)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the athlete profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := svc.Profile()
		if err != nil {
			return err
		}
		printProfile(p)
		return nil
	},
}

func applyProfileFlags(cmd *cobra.Command, p *models.AthleteProfile) error {
	f := cmd.Flags()
	if f.Changed("name") {
		p.Name = profileName
	}
	if f.Changed("weight") {
		p.CurrentWeight = profileWeight
	}
	if f.Changed("class") {
		p.TargetClass = profileClass
	}
	if f.Changed("weigh-in") {
		d, err := parseDate(profileWeighIn)
		if err != nil {
			return err
		}
		p.WeighInDate = d
	}
	if f.Changed("protocol") {
		proto, err := models.ParseProtocol(profileProtocol)
		if err != nil {
			return err
		}
		p.Protocol = proto
	}
	if f.Changed("mode") {
		switch mode := models.TrackingMode(strings.ToLower(profileMode)); mode {
		case models.ModeGrams, models.ModePortions:
			p.MacroMode = mode
		case "", "default":
			p.MacroMode = ""
		default:
			return fmt.Errorf("unknown mode %q (use grams or portions)", profileMode)
		}
	}
	if f.Changed("sex") {
		p.Sex = strings.ToLower(profileSex)
	}
	if f.Changed("age") {
		p.AgeYears = profileAge
	}
	if f.Changed("height") {
		p.HeightInches = profileHeight
	}
	if f.Changed("activity") {
		p.ActivityLevel = strings.ToLower(profileActivity)
	}
	if f.Changed("today") {
		if profileToday == "off" || profileToday == "" {
			p.SimulatedToday = nil
		} else {
			d, err := parseDate(profileToday)
			if err != nil {
				return err
			}
			p.SimulatedToday = &d
		}
	}
	return nil
}

func printProfile(p *models.AthleteProfile) {
	faint := color.New(color.Faint)
	today := p.Today(now())
	days := engine.DaysUntilWeighIn(p, today)

	name := p.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Printf("  %s  %s\n", faint.Sprint("Athlete  "), name)
	fmt.Printf("  %s  %.1f lbs\n", faint.Sprint("Class    "), p.TargetClass)
	if p.CurrentWeight > 0 {
		fmt.Printf("  %s  %.1f lbs\n", faint.Sprint("Weight   "), p.CurrentWeight)
	}
	fmt.Printf("  %s  %s (%s)\n", faint.Sprint("Weigh-in "), p.WeighInDate.Format(models.DateLayout), daysLabel(days))
	fmt.Printf("  %s  %s\n", faint.Sprint("Protocol "), p.Protocol)
	if p.MacroMode != "" {
		fmt.Printf("  %s  %s\n", faint.Sprint("Mode     "), p.MacroMode)
	}
	if p.ActivityLevel != "" {
		fmt.Printf("  %s  %s\n", faint.Sprint("Activity "), p.ActivityLevel)
	}
	if p.SimulatedToday != nil {
		color.Yellow("  Simulating today as %s", p.SimulatedToday.Format(models.DateLayout))
	}
}

func daysLabel(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days < 0:
		return fmt.Sprintf("%d days ago", -days)
	}
	return fmt.Sprintf("in %d days", days)
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(models.DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return d, nil
}

func init() {
	f := profileSetCmd.Flags()
	f.StringVar(&profileName, "name", "", "athlete name")
	f.Float64Var(&profileWeight, "weight", 0, "current weight (lbs)")
	f.Float64Var(&profileClass, "class", 0, "target weight class (lbs)")
	f.StringVar(&profileWeighIn, "weigh-in", "", "weigh-in date (YYYY-MM-DD)")
	f.StringVar(&profileProtocol, "protocol", "", "protocol: extreme, rapid, hold, build, portion")
	f.StringVar(&profileMode, "mode", "", "macro mode: grams or portions")
	f.StringVar(&profileSex, "sex", "", "male or female")
	f.IntVar(&profileAge, "age", 0, "age in years")
	f.Float64Var(&profileHeight, "height", 0, "height in inches")
	f.StringVar(&profileActivity, "activity", "", "activity level")
	f.StringVar(&profileToday, "today", "", `simulate today's date (YYYY-MM-DD, or "off")`)

	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

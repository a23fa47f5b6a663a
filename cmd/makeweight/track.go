// ABOUTME: CLI commands for daily intake tracking and slice reconciliation.
// ABOUTME: Water in ounces, carbs and protein in grams, or portion slices.
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/makeweight/internal/models"
)

var trackDate string

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Track water and food for a day",
	Long: `Add to the day's intake. Grams and slices are kept in step: whichever
you logged last is authoritative and the other side is derived from it
(25 g protein or 30 g carbs per slice).

EXAMPLES:

  makeweight track water 32            # Ounces
  makeweight track carbs 60            # Grams
  makeweight track protein 40          # Grams
  makeweight track slice veg 2         # Portions: protein, carb, veg, fruit, fat
  makeweight track show                # Today's totals`,
}

var trackWaterCmd = &cobra.Command{
	Use:   "water <oz>",
	Short: "Add water in ounces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		oz, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		return track(cmd, func(d *models.DailyTracking) { d.AddWater(oz) })
	},
}

var trackCarbsCmd = &cobra.Command{
	Use:   "carbs <grams>",
	Short: "Add carbohydrate grams",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		return track(cmd, func(d *models.DailyTracking) { d.AddGrams(g, 0) })
	},
}

var trackProteinCmd = &cobra.Command{
	Use:   "protein <grams>",
	Short: "Add protein grams",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		return track(cmd, func(d *models.DailyTracking) { d.AddGrams(0, g) })
	},
}

var trackSliceCmd = &cobra.Command{
	Use:   "slice <category> <count>",
	Short: "Add portion slices (protein, carb, veg, fruit, fat)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid count: %s", args[1])
		}

		var s models.Slices
		switch strings.ToLower(args[0]) {
		case "protein":
			s.Protein = n
		case "carb", "carbs":
			s.Carb = n
		case "veg", "vegetable":
			s.Veg = n
		case "fruit":
			s.Fruit = n
		case "fat":
			s.Fat = n
		default:
			return fmt.Errorf("unknown slice category %q (use protein, carb, veg, fruit, fat)", args[0])
		}
		return track(cmd, func(d *models.DailyTracking) { d.AddSlices(s) })
	},
}

var trackShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the day's intake",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := trackingDate()
		if err != nil {
			return err
		}
		printTracking(svc.Tracking(date))
		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Re-derive slices or grams for a day",
	Long: `Bring the non-authoritative side of a day's record back in line with the
side written last. Tracking does this automatically; use this after importing
data or editing the database by hand.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := trackingDate()
		if err != nil {
			return err
		}
		changed, err := svc.Reconcile(cmd.Context(), date)
		if err != nil {
			return fmt.Errorf("failed to reconcile: %w", err)
		}
		if !changed {
			fmt.Println("Already in step.")
			return nil
		}
		color.Green("✓ Reconciled %s", models.DateKey(date))
		printTracking(svc.Tracking(date))
		return nil
	},
}

func track(cmd *cobra.Command, edit func(d *models.DailyTracking)) error {
	date, err := trackingDate()
	if err != nil {
		return err
	}
	rec, err := svc.Track(cmd.Context(), date, edit)
	if err != nil {
		return fmt.Errorf("failed to track: %w", err)
	}
	color.Green("✓ Tracked")
	printTracking(rec)
	return nil
}

func trackingDate() (time.Time, error) {
	if trackDate == "" {
		return svc.Today(), nil
	}
	return parseDate(trackDate)
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid amount: %s", s)
	}
	return v, nil
}

func printTracking(d *models.DailyTracking) {
	faint := color.New(color.Faint)
	fmt.Printf("  %s %s\n", faint.Sprint("Date   "), d.Date)
	fmt.Printf("  %s %.0f oz\n", faint.Sprint("Water  "), d.WaterOz)
	fmt.Printf("  %s %.0f g carbs, %.0f g protein\n", faint.Sprint("Food   "), d.CarbsG, d.ProteinG)
	fmt.Printf("  %s %s\n", faint.Sprint("Slices "), formatSlices(d.Slices))
}

func init() {
	trackCmd.PersistentFlags().StringVar(&trackDate, "date", "", "date (YYYY-MM-DD), default today")
	reconcileCmd.Flags().StringVar(&trackDate, "date", "", "date (YYYY-MM-DD), default today")

	trackCmd.AddCommand(trackWaterCmd, trackCarbsCmd, trackProteinCmd, trackSliceCmd, trackShowCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(reconcileCmd)
}

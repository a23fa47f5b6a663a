// ABOUTME: CLI commands for recording and editing weigh-ins.
// ABOUTME: Accepts measurement type aliases and optional timestamps.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/service"
)

var (
	logAt       string
	logNotes    string
	logDuration int

	editWeight   float64
	editType     string
	editAt       string
	editNotes    string
	editDuration int
)

var logCmd = &cobra.Command{
	Use:     "log <type> <weight>",
	Aliases: []string{"add", "a"},
	Short:   "Record a weigh-in",
	Long: `Record a weigh-in in pounds.

MEASUREMENT TYPES:

  morning        First thing after waking (alias: am)
  pre_session    Before practice (alias: pre)
  post_session   After practice (alias: post)
  before_bed     Last thing at night (alias: bed)
  extra_before   Before an extra workout
  extra_after    After an extra workout
  check_in       Any other time

Morning weigh-ins following a post-practice or bedtime entry measure overnight
drift; pre/post pairs measure sweat loss. Use --duration on post-session
entries for an exact per-hour rate.

EXAMPLES:

  makeweight log morning 171.4
  makeweight log post 169.8 --duration 90
  makeweight log bed 170.6 --at "2025-03-02 22:15"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mt, err := models.ParseMeasurementType(strings.ToLower(args[0]))
		if err != nil {
			return err
		}
		weight, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid weight: %s", args[1])
		}

		in := service.LogInput{
			Type:            mt,
			Weight:          weight,
			DurationMinutes: logDuration,
			Notes:           logNotes,
		}
		if logAt != "" {
			t, err := models.ParseTimestamp(logAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %w", err)
			}
			in.RecordedAt = t
		}

		l, err := svc.LogWeight(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("failed to log weight: %w", err)
		}

		color.Green("✓ Logged %s", l.Type)
		fmt.Printf("  %s %.1f lbs\n", color.New(color.Faint).Sprint(l.ShortID()), l.Weight)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a weigh-in",
	Long: `Edit a weigh-in by its ID or ID prefix. Only the flags you pass change.

EXAMPLES:

  makeweight edit abc12345 --weight 171.2
  makeweight edit abc1 --type before_bed --at "2025-03-02 22:00"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		updated, err := svc.EditLog(cmd.Context(), args[0], func(l *models.WeightLog) error {
			if f.Changed("weight") {
				l.Weight = editWeight
			}
			if f.Changed("type") {
				mt, err := models.ParseMeasurementType(strings.ToLower(editType))
				if err != nil {
					return err
				}
				l.Type = mt
			}
			if f.Changed("at") {
				t, err := models.ParseTimestamp(editAt)
				if err != nil {
					return fmt.Errorf("invalid timestamp: %w", err)
				}
				l.WithRecordedAt(t)
			}
			if f.Changed("notes") {
				l.Notes = nil
				if editNotes != "" {
					l.WithNotes(editNotes)
				}
			}
			if f.Changed("duration") {
				l.DurationMinutes = nil
				if editDuration > 0 {
					l.WithDuration(editDuration)
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to edit weigh-in: %w", err)
		}

		color.Green("✓ Updated %s", updated.Type)
		printLogLine(updated)
		return nil
	},
}

func init() {
	logCmd.Flags().StringVar(&logAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	logCmd.Flags().StringVar(&logNotes, "notes", "", "notes for the weigh-in")
	logCmd.Flags().IntVar(&logDuration, "duration", 0, "practice length in minutes (post-session entries)")

	editCmd.Flags().Float64Var(&editWeight, "weight", 0, "new weight (lbs)")
	editCmd.Flags().StringVar(&editType, "type", "", "new measurement type")
	editCmd.Flags().StringVar(&editAt, "at", "", "new timestamp (YYYY-MM-DD HH:MM)")
	editCmd.Flags().StringVar(&editNotes, "notes", "", "new notes (empty clears)")
	editCmd.Flags().IntVar(&editDuration, "duration", 0, "new duration in minutes (0 clears)")

	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(editCmd)
}

// ABOUTME: CLI commands for daily targets, the weekly plan, and cut status.
// ABOUTME: Read-only views over the engine and analytics, with --json output.
package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	targetsDate string
	jsonOutput  bool
)

var targetsCmd = &cobra.Command{
	Use:     "targets",
	Aliases: []string{"t", "today"},
	Short:   "Show today's weight, water, and food targets",
	Long: `Show the weight, hydration and macro targets for a day.

The phase and every number come from your protocol and the days left until
weigh-in. On restrict and critical days food is cut further when you are
well above the day's weight target.

EXAMPLES:

  makeweight targets                    # Today
  makeweight targets --date 2025-03-07  # Any other day
  makeweight targets --json             # Machine-readable`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var date time.Time
		if targetsDate != "" {
			d, err := parseDate(targetsDate)
			if err != nil {
				return err
			}
			date = d
		}

		tg, err := svc.Targets(date)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(tg)
		}
		printTargets(tg)
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the seven-day plan around weigh-in",
	Long: `Show seven days of targets: normally five days before weigh-in through
the day after. The window slides so today is always in it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := svc.Plan()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(plan)
		}
		printPlan(plan)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show projection, pace, and safety",
	Long: `Show where the cut stands: current weight against today's target,
average overnight drift and practice sweat loss from your history, the
projected weigh-in weight and a safety assessment for the days left.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := svc.Status()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(st)
		}
		printStatus(st)
		return nil
	},
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	targetsCmd.Flags().StringVar(&targetsDate, "date", "", "date (YYYY-MM-DD), default today")
	for _, c := range []*cobra.Command{targetsCmd, planCmd, statusCmd} {
		c.Flags().BoolVar(&jsonOutput, "json", false, "print JSON")
		rootCmd.AddCommand(c)
	}
}

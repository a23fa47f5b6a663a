// ABOUTME: CLI command for listing weigh-ins.
// ABOUTME: Supports filtering by measurement type and limiting results.
package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/makeweight/internal/models"
)

var (
	listType  string
	listLimit int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List weigh-ins",
	Long: `List recent weigh-ins, newest first.

OUTPUT FORMAT:

  Each line shows: ID  TIMESTAMP  TYPE  WEIGHT  (DURATION)  (NOTES)

  The ID is an 8-character prefix you can use with edit and delete.

EXAMPLES:

  makeweight list                     # Last 20 weigh-ins
  makeweight list --type morning      # Morning weigh-ins only
  makeweight list -t post -n 50       # Last 50 post-practice entries`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var mt *models.MeasurementType
		if listType != "" {
			parsed, err := models.ParseMeasurementType(strings.ToLower(listType))
			if err != nil {
				return err
			}
			mt = &parsed
		}

		logs := svc.Logs(mt, listLimit)
		if len(logs) == 0 {
			fmt.Println("No weigh-ins found.")
			return nil
		}

		for _, l := range logs {
			printLogLine(l)
		}
		return nil
	},
}

func printLogLine(l *models.WeightLog) {
	faint := color.New(color.Faint)
	extra := ""
	if l.DurationMinutes != nil {
		extra += faint.Sprintf(" (%d min)", *l.DurationMinutes)
	}
	if l.Notes != nil && *l.Notes != "" {
		extra += faint.Sprintf(" (%s)", truncate(*l.Notes, 30))
	}
	fmt.Printf("%s %s %s %6.1f lbs%s\n",
		faint.Sprint(l.ShortID()),
		faint.Sprint(l.RecordedAt.Local().Format("2006-01-02 15:04")),
		padRight(string(l.Type), 13),
		l.Weight,
		extra)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}

func init() {
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "filter by measurement type")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results")
	rootCmd.AddCommand(listCmd)
}

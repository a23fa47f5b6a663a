// ABOUTME: CLI command for deleting weigh-ins.
// ABOUTME: Supports deletion by full ID or ID prefix.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a weigh-in",
	Long: `Delete a weigh-in by its ID or ID prefix.

You can use either the full UUID or just the first few characters (prefix).
The ID prefix is shown in the first column of 'makeweight list' output.

EXAMPLES:

  makeweight delete abc12345      # Delete by 8-char prefix
  makeweight rm abc1              # Short prefix (if unique)

CAUTION:

  This permanently deletes the weigh-in. There is no undo.
  If the prefix matches multiple weigh-ins, an error is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := svc.DeleteLog(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to delete weigh-in: %w", err)
		}

		color.Yellow("✗ Deleted %s", l.Type)
		fmt.Printf("  %s %.1f lbs\n", color.New(color.Faint).Sprint(l.ShortID()), l.Weight)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

// ABOUTME: CLI commands for exporting and importing makeweight data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/makeweight/internal/models"
)

var (
	exportOutput string
	exportType   string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export makeweight data",
	Long: `Export profile, weigh-ins and tracking in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   Markdown tables (for sharing with a coach)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --type, -t     Filter by measurement type (markdown only)
  --since        Only include weigh-ins since this date (markdown only)

EXAMPLES:

  makeweight export json -o backup.json
  makeweight export yaml
  makeweight export markdown --type morning --since 2025-02-01`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var data []byte
		var err error

		switch args[0] {
		case "json":
			data, err = db.ExportJSON(ctx)
		case "yaml":
			data, err = db.ExportYAML(ctx)
		case "markdown", "md":
			var mt *models.MeasurementType
			if exportType != "" {
				parsed, perr := models.ParseMeasurementType(strings.ToLower(exportType))
				if perr != nil {
					return perr
				}
				mt = &parsed
			}
			var since *time.Time
			if exportSince != "" {
				t, perr := parseDate(exportSince)
				if perr != nil {
					return perr
				}
				since = &t
			}
			var md string
			md, err = db.ExportMarkdown(ctx, mt, since)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", args[0])
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import makeweight data from JSON",
	Long: `Import profile, weigh-ins and tracking from a JSON export.

Records are upserted by ID (weigh-ins) or date (tracking), so importing the
same file twice changes nothing.

EXAMPLES:

  makeweight import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		summary, err := db.ImportJSON(cmd.Context(), raw)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", args[0])
		if summary.Profile {
			fmt.Println("  Profile: 1")
		}
		fmt.Printf("  Weigh-ins: %d\n", summary.WeightLogs)
		fmt.Printf("  Tracking days: %d\n", summary.Tracking)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportType, "type", "t", "", "filter by measurement type (markdown only)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include weigh-ins since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

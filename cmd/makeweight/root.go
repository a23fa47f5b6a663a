// ABOUTME: Root Cobra command for the makeweight CLI.
// ABOUTME: Opens config, logging, storage, the Charm mirror, and the service via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/makeweight/internal/charm"
	"github.com/harperreed/makeweight/internal/config"
	"github.com/harperreed/makeweight/internal/logging"
	"github.com/harperreed/makeweight/internal/service"
	"github.com/harperreed/makeweight/internal/storage"
)

// version is overridden at build time with -ldflags.
var version = "dev"

var (
	cfg         *config.Config
	logger      *log.Logger
	db          *storage.DB
	charmClient *charm.Client
	svc         *service.Service

	flagDataDir  string
	flagLogLevel string
	flagNoSync   bool

	// now is the wall clock; tests replace it.
	now = time.Now
)

// skipInit lists commands that never touch storage.
var skipInit = map[string]bool{
	"version":       true,
	"help":          true,
	"install-skill": true,
	"completion":    true,
}

var rootCmd = &cobra.Command{
	Use:   "makeweight",
	Short: "Wrestling weight-cut planner",
	Long: `makeweight plans and tracks a weight cut into a wrestling weigh-in.

Given your weight class, weigh-in date and protocol it tells you, every day,
what the scale should read, how much water to drink and how much to eat,
then checks your weigh-ins against that plan.

PROTOCOLS:

  extreme    Extreme Cut         (water load, restrict, critical day)
  rapid      Rapid Cut           (water load, restrict, critical day)
  hold       Hold Weight         (stay at class)
  build      Build               (gain toward a higher class)
  portion    Portion Maintenance (hand-sized portions instead of grams)

QUICK START:

  $ makeweight profile set --name Sam --weight 172 --class 165 \
      --weigh-in 2025-03-08 --protocol rapid
  $ makeweight log morning 171.4           # Log a weigh-in
  $ makeweight targets                     # Today's weight, water, food
  $ makeweight plan                        # The week around weigh-in
  $ makeweight status                      # Projection, pace and safety

TRACKING:

  $ makeweight track water 32              # Ounces of water
  $ makeweight track carbs 60              # Grams of carbohydrate
  $ makeweight track slice protein 2       # Portion slices

SYNC:

  Set "sync": true in the config (or MAKEWEIGHT_SYNC=true) to mirror every
  write to Charm Cloud. Data is E2E encrypted with your SSH key.

  $ makeweight sync link      # Link device to your Charm account
  $ makeweight sync push      # Copy local data to Charm
  $ makeweight sync status    # Check sync status

MCP INTEGRATION:

  Run 'makeweight mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants.

DATA STORAGE:

  Data is stored in SQLite at ~/.local/share/makeweight/makeweight.db.
  Configuration lives at ~/.config/makeweight/config.json.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipInit[cmd.Name()] {
			return nil
		}
		return initApp(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

func initApp(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	logger = logging.New(cfg.LogLevel, os.Stderr)

	db, err = cfg.OpenStorage(storage.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithClock(now),
		service.WithDefaultActivity(cfg.ActivityLevel),
	}
	if cfg.Sync && !flagNoSync && !isSyncCommand(cmd) {
		charmClient, err = openCharm()
		if err != nil {
			color.Yellow("⚠ Charm sync unavailable: %v", err)
		} else {
			opts = append(opts, service.WithMirror(charmClient))
		}
	}

	svc, err = service.New(cmd.Context(), db, opts...)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	return nil
}

// isSyncCommand reports whether cmd is the sync command or one of its children,
// which manage their own Charm connection.
func isSyncCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "sync" {
			return true
		}
	}
	return false
}

func openCharm() (*charm.Client, error) {
	return charm.Open(charm.Options{
		Host:     cfg.CharmHost,
		AutoSync: true,
		Logger:   logger,
	})
}

func closeApp() error {
	var firstErr error
	if charmClient != nil {
		if err := charmClient.Close(); err != nil {
			firstErr = err
		}
		charmClient = nil
	}
	if db != nil {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		db = nil
	}
	svc = nil
	return firstErr
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("makeweight", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.local/share/makeweight)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagNoSync, "no-sync", false, "skip the Charm mirror for this command")
	rootCmd.AddCommand(versionCmd)
}

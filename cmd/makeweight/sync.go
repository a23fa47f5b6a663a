// ABOUTME: CLI commands for Charm-based sync.
// ABOUTME: Supports link, unlink, status, push, pull, repair, reset, and wipe.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/makeweight/internal/charm"
	"github.com/harperreed/makeweight/internal/storage"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Sync makeweight data across devices",
	Long: `Sync makeweight data across devices using Charm Cloud.

Your data is E2E encrypted with your SSH key before upload.
The server never sees your unencrypted data.

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     makeweight sync link

  2. Copy existing local data up:
     makeweight sync push

  3. On another device, link the same account and pull:
     makeweight sync pull

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show sync status and account info
  push        Copy local SQLite data to Charm
  pull        Copy Charm data into local SQLite
  repair      Repair Charm database corruption
  reset       Reset local Charm data and restore from cloud (destructive)
  wipe        Delete cloud and local Charm data (destructive)

With "sync": true in the config every write is mirrored automatically.`,
}

// ensureCharm opens the Charm client for commands that need it.
func ensureCharm() (*charm.Client, error) {
	if charmClient != nil {
		return charmClient, nil
	}
	c, err := openCharm()
	if err != nil {
		return nil, fmt.Errorf("failed to open charm: %w", err)
	}
	charmClient = c
	return c, nil
}

func runCharmCLI(arg string) error {
	charmCmd := exec.Command("charm", arg)
	charmCmd.Stdin = os.Stdin
	charmCmd.Stdout = os.Stdout
	charmCmd.Stderr = os.Stderr
	return charmCmd.Run()
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	Long: `Link this device to your Charm account.

If you don't have a Charm account, one will be created using your SSH key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharmCLI("link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}

		color.Green("\n✓ Device linked to Charm")

		c, err := ensureCharm()
		if err != nil {
			color.Yellow("⚠ Initial sync failed: %v", err)
			return nil
		}
		if err := c.Sync(); err != nil {
			color.Yellow("⚠ Initial sync failed: %v", err)
		} else {
			color.Green("✓ Initial sync complete")
		}
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm",
	Long: `Disconnect this device from Charm.

This does not delete your local data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharmCLI("unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}

		color.Green("✓ Device unlinked from Charm")
		fmt.Println("Your local data is preserved.")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := svc.State()
		fmt.Println("Local database:", db.Path())
		fmt.Printf("  Profile: %v\n", st.Profile != nil)
		fmt.Printf("  Weigh-ins: %d\n", len(st.Logs))
		fmt.Printf("  Tracking days: %d\n", len(st.Tracking))
		fmt.Println()

		if cfg.Sync {
			color.Green("Auto-sync: on")
		} else {
			color.Yellow("Auto-sync: off (set \"sync\": true to mirror writes)")
		}

		c, err := ensureCharm()
		if err != nil {
			color.Yellow("Charm unavailable: %v", err)
			return nil
		}

		id, err := c.ID()
		if err != nil {
			color.Yellow("Not linked to Charm")
			fmt.Println("\nRun 'makeweight sync link' to connect to Charm.")
			return nil
		}

		fmt.Println("Charm ID:", id)
		fmt.Println("Server:", cfg.CharmHost)

		counts, err := c.Count()
		if err != nil {
			return fmt.Errorf("failed to read charm data: %w", err)
		}
		color.Green("✓ Connected to Charm")
		fmt.Printf("  Profile: %v\n", counts.Profile)
		fmt.Printf("  Weigh-ins: %d\n", counts.WeightLogs)
		fmt.Printf("  Tracking days: %d\n", counts.Tracking)
		return nil
	},
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Copy local data to Charm",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureCharm()
		if err != nil {
			return err
		}
		c.SetAutoSync(false)

		summary, err := storage.MigrateData(cmd.Context(), db, c)
		if err != nil {
			return fmt.Errorf("push failed: %w", err)
		}
		if err := c.Sync(); err != nil {
			return fmt.Errorf("push stored locally but sync failed: %w", err)
		}

		color.Green("✓ Pushed to Charm")
		printMigrateSummary(summary)
		return nil
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Copy Charm data into the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureCharm()
		if err != nil {
			return err
		}
		if err := c.Sync(); err != nil {
			color.Yellow("⚠ Sync failed, pulling cached data: %v", err)
		}

		summary, err := storage.MigrateData(cmd.Context(), c, db)
		if err != nil {
			return fmt.Errorf("pull failed: %w", err)
		}

		color.Green("✓ Pulled from Charm")
		printMigrateSummary(summary)
		return nil
	},
}

func printMigrateSummary(s *storage.MigrateSummary) {
	if s.Profile {
		fmt.Println("  Profile: 1")
	}
	fmt.Printf("  Weigh-ins: %d\n", s.WeightLogs)
	fmt.Printf("  Tracking days: %d\n", s.Tracking)
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all cloud and local Charm data",
	Long: `Delete all Charm cloud backups and the local Charm copy.

This is a DESTRUCTIVE operation. The SQLite database is not touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("This will PERMANENTLY DELETE all Charm cloud backups and the local Charm copy.")
		fmt.Print("Type 'wipe' to confirm: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "wipe" {
			fmt.Println("Canceled.")
			return nil
		}

		result, err := kv.Wipe(charm.DefaultDBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		color.Green("✓ Charm data wiped")
		fmt.Printf("  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Printf("  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair Charm database corruption",
	Long: `Repair the local Charm copy by checkpointing WAL, removing SHM files, checking integrity, and vacuuming.

Run with --force to attempt recovery even if integrity checks fail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		fmt.Println("Repairing Charm database...")
		result, err := kv.Repair(charm.DefaultDBName, force)

		if result.WalCheckpointed {
			color.Green("  ✓ WAL checkpointed")
		}
		if result.ShmRemoved {
			color.Green("  ✓ SHM file removed")
		}
		if result.IntegrityOK {
			color.Green("  ✓ Integrity check passed")
		} else {
			color.Red("  ✗ Integrity check failed")
		}
		if result.Vacuumed {
			color.Green("  ✓ Database vacuumed")
		}

		if err != nil {
			if !force {
				color.Yellow("\nRun with --force to attempt recovery.")
			}
			return fmt.Errorf("repair failed: %w", err)
		}

		color.Green("\n✓ Repair complete")
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the local Charm copy from cloud",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("This will DELETE the local Charm copy and restore it from cloud.")
		fmt.Print("Continue? [y/N]: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Canceled.")
			return nil
		}

		if err := kv.Reset(charm.DefaultDBName); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		color.Green("✓ Local Charm copy restored from cloud")
		fmt.Println("Run 'makeweight sync pull' to copy it into the local database.")
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)

	syncRepairCmd.Flags().Bool("force", false, "Attempt recovery even if integrity checks fail")

	rootCmd.AddCommand(syncCmd)
}

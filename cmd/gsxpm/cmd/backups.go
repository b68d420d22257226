package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/gsxpm/internal/archive"
	"github.com/tormodhaugland/gsxpm/internal/tui"
)

var backupsYes bool

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List or restore backups of the GSX folder",
}

var backupsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List backups, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := archive.ListBackups(cfg.BackupDir())
		if err != nil {
			return err
		}
		if ok, err := outputList(entries); ok {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No backups")
			return nil
		}
		t := newTable("#", "CREATED", "REASON", "FILES", "PATH")
		for i, e := range entries {
			t.AppendRow([]any{i + 1, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Reason, e.FileCount, e.Path})
		}
		t.Render()
		return nil
	},
}

var backupsRestoreCmd = &cobra.Command{
	Use:   "restore [archive]",
	Short: "Restore a backup into the GSX folder (default: the newest)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			entries, err := archive.ListBackups(cfg.BackupDir())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no backups in %s", cfg.BackupDir())
			}
			path = entries[0].Path
		}

		if !backupsYes && !jsonOut {
			confirm, err := tui.RunConfirm("Restore this backup into the GSX folder?", path)
			if err != nil {
				return fmt.Errorf("prompt failed: %w", err)
			}
			if !confirm.Confirmed {
				fmt.Println("Cancelled")
				return nil
			}
		}

		restored, err := archive.Restore(path, cfg.GSXTargetDir)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		log.WithField("archive", path).WithField("files", len(restored)).Info("Backup restored")
		if ok, err := outputList(restored); ok {
			return err
		}
		fmt.Printf("Restored %d file(s) into %s\n", len(restored), cfg.GSXTargetDir)
		return nil
	},
}

func init() {
	backupsRestoreCmd.Flags().BoolVarP(&backupsYes, "yes", "y", false, "do not ask for confirmation")
	backupsCmd.AddCommand(backupsLsCmd, backupsRestoreCmd)
	rootCmd.AddCommand(backupsCmd)
}

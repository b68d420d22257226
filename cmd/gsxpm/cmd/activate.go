package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/gsxpm/internal/profile"
	"github.com/tormodhaugland/gsxpm/internal/tui"
)

var (
	activateBackup bool
	activateDryRun bool
	activateYes    bool
)

var activateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Link the selected profiles into the GSX folder",
	Long: `Replaces the profiles GSX currently sees with the selected files. Every
selected file must exist. Links from a previous activation are removed,
regular files are kept unless a selected file has the same name.
With --backup the current contents are archived first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, err := loadState()
		if err != nil {
			return err
		}
		watched, local, err := bothForests(currentFolder(st))
		if err != nil {
			return err
		}
		sources := activationSources(st.SelectedFiles, watched, local)
		if len(sources) == 0 {
			return fmt.Errorf("nothing selected; use 'gsxpm select' or the TUI first")
		}

		opts := profile.Options{
			Backup:    activateBackup,
			BackupDir: cfg.BackupDir(),
			DryRun:    activateDryRun,
			Log:       log,
		}

		if !activateDryRun && !activateYes && !jsonOut {
			plan, err := profile.Activate(cfg.GSXTargetDir, sources, profile.Options{DryRun: true})
			if err != nil {
				return activationError(err)
			}
			detail := fmt.Sprintf("%d link(s) into %s, %d old link(s) removed", plan.Count(), plan.TargetDir, len(plan.Removed))
			confirm, err := tui.RunConfirm("Activate the selected profiles?", detail)
			if err != nil {
				return fmt.Errorf("prompt failed: %w", err)
			}
			if !confirm.Confirmed {
				fmt.Println("Cancelled")
				return nil
			}
		}

		res, err := profile.Activate(cfg.GSXTargetDir, sources, opts)
		if err != nil {
			return activationError(err)
		}

		if jsonOut {
			return outputJSON(res)
		}
		verb := "Linked"
		if res.DryRun {
			verb = "Would link"
		}
		for _, name := range res.Removed {
			fmt.Printf("  - %s\n", name)
		}
		for _, name := range res.Linked {
			fmt.Printf("  + %s\n", name)
		}
		fmt.Printf("%s %d profile(s) into %s\n", verb, res.Count(), res.TargetDir)
		if res.BackupPath != "" {
			fmt.Printf("Backup: %s\n", res.BackupPath)
		}
		return nil
	},
}

func activationError(err error) error {
	if errors.Is(err, profile.ErrMissingSource) {
		return fmt.Errorf("%w (run 'gsxpm doctor' to find stale selections)", err)
	}
	return err
}

func init() {
	activateCmd.Flags().BoolVar(&activateBackup, "backup", false, "archive the current GSX profiles first")
	activateCmd.Flags().BoolVar(&activateDryRun, "dry-run", false, "show what would change")
	activateCmd.Flags().BoolVarP(&activateYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(activateCmd)
}

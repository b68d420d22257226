package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/gsxpm/internal/doctor"
	"github.com/tormodhaugland/gsxpm/internal/fs"
	"github.com/tormodhaugland/gsxpm/internal/tui"
)

var (
	doctorPrune bool
	doctorYes   bool
)

type doctorResult struct {
	*doctor.Report
	Pruned int `json:"pruned,omitempty"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check folders, activated profiles and saved state",
	Long: `Reports missing folders, profile links in the GSX folder whose files are
gone, and saved ids that no longer match any file or folder. Nothing is
changed unless --prune is given, which removes the stale ids.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, st, err := loadState()
		if err != nil {
			return err
		}
		folder := currentFolder(st)

		in := doctor.Inputs{
			WatchedFolder: folder,
			UserFolders:   cfg.UserFoldersPath(),
			TargetDir:     cfg.GSXTargetDir,
			State:         st,
		}
		if folder != "" && fs.CheckFolderExists(folder) {
			in.Watched, err = fs.ReadFolderContents(folder)
			if err != nil {
				log.WithError(err).Warn("Could not read watched folder")
			}
		}
		if fs.CheckFolderExists(in.UserFolders) {
			in.Local, err = fs.ReadUserFolders(in.UserFolders)
			if err != nil {
				log.WithError(err).Warn("Could not read local store")
			}
		}

		report := doctor.Diagnose(in)
		result := doctorResult{Report: report}

		if doctorPrune && report.StaleCount() > 0 {
			ok := doctorYes || jsonOut
			if !ok {
				confirm, err := tui.RunConfirm(fmt.Sprintf("Remove %d stale id(s) from the saved state?", report.StaleCount()), cfg.StatePath())
				if err != nil {
					return fmt.Errorf("prompt failed: %w", err)
				}
				ok = confirm.Confirmed
			}
			if ok {
				if err := store.Save(doctor.Prune(st, report)); err != nil {
					return fmt.Errorf("failed to save state: %w", err)
				}
				result.Pruned = report.StaleCount()
			}
		}

		if jsonOut {
			if err := outputJSON(result); err != nil {
				return err
			}
		} else {
			printReport(result)
		}
		if !report.Healthy() {
			return fmt.Errorf("doctor found problems")
		}
		return nil
	},
}

func printReport(r doctorResult) {
	t := newTable("CHECK", "STATUS", "DETAIL")
	for _, c := range r.Checks {
		t.AppendRow([]any{c.Name, string(c.Status), c.Detail})
	}
	t.Render()

	printList("Broken links", r.BrokenLinks)
	printList("Stale selected ids", r.StaleSelected)
	printList("Stale expanded ids", r.StaleExpanded)
	printList("Stale local expanded ids", r.StaleLocalExpanded)

	switch {
	case r.Pruned > 0:
		fmt.Printf("Removed %d stale id(s)\n", r.Pruned)
	case r.StaleCount() > 0:
		fmt.Println("Stale ids are harmless; run 'gsxpm doctor --prune' to remove them")
	}
}

func printList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, s := range items {
		fmt.Printf("  %s\n", s)
	}
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorPrune, "prune", false, "remove stale ids from the saved state")
	doctorCmd.Flags().BoolVarP(&doctorYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(doctorCmd)
}

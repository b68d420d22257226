package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/gsxpm/internal/tree"
)

var expandLocal bool

type expandStatus struct {
	Pane                 string `json:"pane"`
	Folders              int    `json:"folders"`
	Expanded             int    `json:"expanded"`
	AllExpanded          bool   `json:"all_expanded"`
	Selected             int    `json:"selected"`
	CanExpandToSelection bool   `json:"can_expand_to_selection"`
}

var expandCmd = &cobra.Command{
	Use:       "expand all|selected|close|status",
	Short:     "Change which folders are open",
	Long:      `Changes the saved open folders of the watched pane, or of the local pane with --local.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"all", "selected", "close", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, st, err := loadState()
		if err != nil {
			return err
		}

		var forest []*tree.Node
		pane := "watched"
		if expandLocal {
			pane = "local"
			forest, err = localForest()
		} else {
			forest, err = watchedForest(currentFolder(st))
		}
		if err != nil {
			return err
		}

		current, setExpanded := stateForPane(&st, expandLocal)
		ctrl := &tree.Controller{
			Forest: forest,
			Selection: tree.Bound(func() tree.IDSet { return st.SelectedFiles }, func(ids tree.IDSet) {
				st.SelectedFiles = ids
			}),
			Expansion: tree.Bound(func() tree.IDSet { return current }, func(ids tree.IDSet) {
				current = ids
				setExpanded(ids)
			}),
			IncludeRoot: cfg.IncludeRoot,
		}

		msg := ""
		switch args[0] {
		case "all":
			if tree.AllExpanded(forest, ctrl.Expanded()) {
				msg = "All folders are already open"
			} else {
				ctrl.ToggleAll()
				msg = "Opened every folder"
			}
		case "selected":
			if !ctrl.CanExpandToSelection() {
				msg = "Every selected file is already visible"
			} else {
				ctrl.ExpandToSelection()
				msg = "Opened the folders leading to the selection"
			}
		case "close":
			ctrl.CollapseAll()
			msg = "Closed every folder"
		}

		if args[0] != "status" {
			if err := store.Save(st); err != nil {
				return fmt.Errorf("failed to save state: %w", err)
			}
		}

		status := expandStatus{
			Pane:                 pane,
			Folders:              len(tree.CollectDirectoryIDs(forest)),
			Expanded:             ctrl.Expanded().Len(),
			AllExpanded:          tree.AllExpanded(forest, ctrl.Expanded()),
			Selected:             ctrl.Selected().Len(),
			CanExpandToSelection: ctrl.CanExpandToSelection(),
		}
		if jsonOut {
			return outputJSON(status)
		}
		if msg != "" {
			fmt.Println(msg)
		}
		fmt.Printf("%s pane: %d of %d folders open", status.Pane, status.Expanded, status.Folders)
		if status.AllExpanded {
			fmt.Print(" (all)")
		}
		fmt.Println()
		if status.CanExpandToSelection {
			fmt.Println("Some selected files are hidden in closed folders ('gsxpm expand selected')")
		}
		return nil
	},
}

func init() {
	expandCmd.Flags().BoolVar(&expandLocal, "local", false, "act on the local store pane")
	rootCmd.AddCommand(expandCmd)
}

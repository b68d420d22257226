package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tormodhaugland/gsxpm/internal/appstate"
	"github.com/tormodhaugland/gsxpm/internal/fs"
	"github.com/tormodhaugland/gsxpm/internal/tree"
	"github.com/tormodhaugland/gsxpm/internal/tui"
)

var (
	treeLocal       bool
	treeFormat      string
	treeInteractive bool
	treeAll         bool
)

var treeCmd = &cobra.Command{
	Use:   "tree [folder]",
	Short: "Print the watched folder or local store as a tree",
	Long: `Prints the profile tree using the saved selection and open folders.
With a folder argument that folder is scanned instead and nothing is saved.
--interactive opens a single-pane browser whose state is kept only for the
session; the selection is printed when it closes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, err := loadState()
		if err != nil {
			return err
		}

		var forest []*tree.Node
		expanded := st.ExpandedIDs
		title := ""
		switch {
		case len(args) == 1:
			title = args[0]
			forest, err = fs.ReadFolderContents(args[0])
			expanded = tree.IDSet{}
		case treeLocal:
			title = cfg.UserFoldersPath()
			forest, err = localForest()
			expanded = st.LocalExpandedIDs
		default:
			title = currentFolder(st)
			if title == "" {
				return fmt.Errorf("no folder is being watched; run 'gsxpm watch <folder>' first")
			}
			forest, err = watchedForest(title)
		}
		if err != nil {
			return err
		}

		if treeInteractive {
			result, err := tui.RunBrowser(title, forest, cfg.IncludeRoot, treeAll)
			if err != nil {
				return err
			}
			for _, id := range result.Selected {
				fmt.Println(id)
			}
			return nil
		}

		if treeAll {
			expanded = tree.ExpandAllIDs(forest)
		}
		view := tree.State{Selected: st.SelectedFiles, Expanded: expanded}

		switch {
		case jsonOut || treeFormat == "json":
			return outputJSON(forestOutput{Forest: nonNilForest(forest), State: view})
		case treeFormat == "yaml":
			out, err := yaml.Marshal(forestOutput{Forest: nonNilForest(forest), State: view})
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		case treeFormat != "text":
			return fmt.Errorf("unknown format %q (text, json, yaml)", treeFormat)
		}

		fmt.Println(title)
		rows := tree.Flatten(forest, view)
		if len(rows) == 0 {
			fmt.Println("  (empty)")
		}
		for _, r := range rows {
			fmt.Println(formatRow(r))
		}
		return nil
	},
}

type forestOutput struct {
	Forest []*tree.Node `json:"forest" yaml:"forest"`
	State  tree.State   `json:"state" yaml:"state"`
}

func nonNilForest(f []*tree.Node) []*tree.Node {
	if f == nil {
		return []*tree.Node{}
	}
	return f
}

func formatRow(r tree.Row) string {
	icon := "  "
	if r.Node.Expandable() {
		icon = "+ "
		if r.Expanded {
			icon = "- "
		}
	}
	marker := "  "
	if r.Selected {
		marker = "* "
	}
	name := r.Node.Name
	if r.Node.IsDirectory {
		name += "/"
	}
	return strings.Repeat("  ", r.Depth+1) + marker + icon + name
}

// stateForPane returns the expansion set of the chosen pane and a setter.
func stateForPane(st *appstate.State, local bool) (tree.IDSet, func(tree.IDSet)) {
	if local {
		return st.LocalExpandedIDs, func(ids tree.IDSet) { st.LocalExpandedIDs = ids }
	}
	return st.ExpandedIDs, func(ids tree.IDSet) { st.ExpandedIDs = ids }
}

func init() {
	treeCmd.Flags().BoolVar(&treeLocal, "local", false, "show the local store instead of the watched folder")
	treeCmd.Flags().StringVar(&treeFormat, "format", "text", "output format (text, json, yaml)")
	treeCmd.Flags().BoolVarP(&treeInteractive, "interactive", "i", false, "browse in a single pane")
	treeCmd.Flags().BoolVarP(&treeAll, "all", "a", false, "show every folder open")
	rootCmd.AddCommand(treeCmd)
}

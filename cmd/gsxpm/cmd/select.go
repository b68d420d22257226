package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/tormodhaugland/gsxpm/internal/profile"
	"github.com/tormodhaugland/gsxpm/internal/tree"
)

var (
	selectMatch string
	selectClear bool
)

var selectCmd = &cobra.Command{
	Use:   "select [id...]",
	Short: "Toggle the selection of profile files",
	Long: `Toggles each id (a file path as shown by 'gsxpm tree --format json').
Folders cannot be selected. With --match every profile file whose name
fuzzy-matches the query is added to the selection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && selectMatch == "" && !selectClear {
			return fmt.Errorf("give ids to toggle, --match or --clear")
		}
		store, st, err := loadState()
		if err != nil {
			return err
		}
		watched, local, err := bothForests(currentFolder(st))
		if err != nil {
			return err
		}
		all := append(append([]*tree.Node{}, watched...), local...)

		ctrl := &tree.Controller{
			Forest: all,
			Selection: tree.Bound(func() tree.IDSet { return st.SelectedFiles }, func(ids tree.IDSet) {
				st.SelectedFiles = ids
			}),
			Expansion: tree.Owned(nil),
		}

		if selectClear {
			ctrl.Selection.Set(tree.IDSet{})
		}

		for _, arg := range args {
			id := arg
			if abs, err := filepath.Abs(arg); err == nil && tree.FindByID(all, abs) != nil {
				id = abs
			}
			node := tree.FindByID(all, id)
			switch {
			case node == nil && st.SelectedFiles.Contains(id):
				// stale id, still allowed to be deselected
				ctrl.Select(&tree.Node{ID: id})
			case node == nil:
				return fmt.Errorf("no file with id %q", arg)
			case node.IsDirectory || node.Expandable():
				return fmt.Errorf("%s is a folder; only files can be selected", node.Path)
			default:
				ctrl.Select(node)
			}
		}

		if selectMatch != "" {
			for _, n := range matchFiles(all, selectMatch) {
				if !ctrl.Selected().Contains(n.ID) {
					ctrl.Select(n)
				}
			}
		}

		if err := store.Save(st); err != nil {
			return fmt.Errorf("failed to save state: %w", err)
		}

		if jsonOut || jsonlOut {
			_, err := outputList(st.SelectedFiles.Strings())
			return err
		}
		groups := profile.GroupSelected(st.SelectedFiles.Strings())
		fmt.Printf("%d file(s) selected\n", st.SelectedFiles.Len())
		for _, g := range groups {
			fmt.Printf("  %s\n", g.Name)
			for _, f := range g.Files {
				fmt.Printf("    %s\n", f.Name)
			}
		}
		return nil
	},
}

// matchFiles returns the file nodes whose names fuzzy-match query, best first.
func matchFiles(forest []*tree.Node, query string) []*tree.Node {
	var files []*tree.Node
	var names []string
	tree.Walk(forest, func(n *tree.Node, _ int) bool {
		if !n.IsDirectory && !n.Expandable() {
			files = append(files, n)
			names = append(names, n.Name)
		}
		return true
	})
	var out []*tree.Node
	for _, m := range fuzzy.Find(query, names) {
		out = append(out, files[m.Index])
	}
	return out
}

func init() {
	selectCmd.Flags().StringVarP(&selectMatch, "match", "m", "", "add every file whose name fuzzy-matches the query")
	selectCmd.Flags().BoolVar(&selectClear, "clear", false, "clear the selection first")
	rootCmd.AddCommand(selectCmd)
}

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/gsxpm/internal/fs"
	"github.com/tormodhaugland/gsxpm/internal/tree"
	"github.com/tormodhaugland/gsxpm/internal/tui"
)

var (
	foldersParent string
	foldersYes    bool
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Manage the local profile store",
	Long:  `The local store holds folders of profiles you keep outside the simulator. It is the right pane of the TUI.`,
}

var foldersLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the local store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		forest, err := fs.ReadUserFolders(cfg.UserFoldersPath())
		if err != nil {
			return err
		}
		if jsonOut {
			return outputJSON(nonNilForest(forest))
		}

		t := newTable("TYPE", "PATH")
		tree.Walk(forest, func(n *tree.Node, _ int) bool {
			kind := "file"
			if n.IsDirectory {
				kind = "folder"
			}
			rel, err := filepath.Rel(cfg.UserFoldersPath(), n.Path)
			if err != nil {
				rel = n.Path
			}
			t.AppendRow([]any{kind, rel})
			return true
		})
		dirs, files := tree.Count(forest)
		t.AppendFooter([]any{"", fmt.Sprintf("%d folders, %d files", dirs, files)})
		t.Render()
		return nil
	},
}

var foldersMkdirCmd = &cobra.Command{
	Use:   "mkdir <name>",
	Short: "Create a folder in the local store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := cfg.UserFoldersPath()
		if err := fs.EnsureDir(base); err != nil {
			return err
		}
		parent := storeID(foldersParent)
		path, err := fs.CreateSubfolder(base, parent, args[0])
		if err != nil {
			return err
		}
		if jsonOut {
			return outputJSON(map[string]string{"path": path})
		}
		fmt.Printf("Created %s\n", path)
		return nil
	},
}

var foldersImportCmd = &cobra.Command{
	Use:   "import <file...>",
	Short: "Copy profile files into a local store folder",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := cfg.UserFoldersPath()
		if err := fs.EnsureDir(base); err != nil {
			return err
		}
		target := storeID(foldersParent)

		var copied []string
		for _, src := range args {
			dst, err := fs.CopyFileToUserFolder(base, src, target)
			if err != nil {
				return fmt.Errorf("importing %s: %w", src, err)
			}
			log.WithField("file", dst).Debug("Imported")
			copied = append(copied, dst)
		}
		if ok, err := outputList(copied); ok {
			return err
		}
		fmt.Printf("Imported %d file(s)\n", len(copied))
		return nil
	},
}

var foldersRmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete a folder or file from the local store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := cfg.UserFoldersPath()
		target := args[0]
		if target != tree.RootID && !filepath.IsAbs(target) {
			target = filepath.Join(base, target)
		}
		if !foldersYes && !jsonOut {
			confirm, err := tui.RunConfirm("Delete from the local store?", target)
			if err != nil {
				return fmt.Errorf("prompt failed: %w", err)
			}
			if !confirm.Confirmed {
				fmt.Println("Cancelled")
				return nil
			}
		}

		if err := fs.DeleteUserFolderItem(base, target); err != nil {
			if errors.Is(err, fs.ErrRootDelete) {
				return fmt.Errorf("the local store itself cannot be deleted")
			}
			return err
		}

		// forget the removed ids so they do not linger as stale state
		store, st, err := loadState()
		if err == nil {
			st.SelectedFiles = tree.DropUnder(st.SelectedFiles, target)
			st.LocalExpandedIDs = tree.DropUnder(st.LocalExpandedIDs, target)
			if err := store.Save(st); err != nil {
				log.WithError(err).Warn("Failed to update state")
			}
		}

		if jsonOut {
			return outputJSON(map[string]string{"deleted": target})
		}
		fmt.Printf("Deleted %s\n", target)
		return nil
	},
}

// storeID maps a folder given relative to the store to its node id.
func storeID(rel string) string {
	if rel == "" || rel == tree.RootID {
		return tree.RootID
	}
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(cfg.UserFoldersPath(), rel)
}

func init() {
	foldersMkdirCmd.Flags().StringVar(&foldersParent, "in", "", "parent folder, relative to the store")
	foldersImportCmd.Flags().StringVar(&foldersParent, "to", "", "target folder, relative to the store")
	foldersRmCmd.Flags().BoolVarP(&foldersYes, "yes", "y", false, "do not ask for confirmation")
	foldersCmd.AddCommand(foldersLsCmd, foldersMkdirCmd, foldersImportCmd, foldersRmCmd)
	rootCmd.AddCommand(foldersCmd)
}

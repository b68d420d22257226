package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/gsxpm/internal/fs"
	"github.com/tormodhaugland/gsxpm/internal/tree"
)

var watchCmd = &cobra.Command{
	Use:   "watch <folder>",
	Short: "Watch a folder for GSX profiles",
	Long: `Records folder as the watched folder. Its add-ons that contain a
"GSX Profile" folder are shown in the left pane of the TUI.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		forest, err := fs.ReadFolderContents(folder)
		if err != nil {
			return fmt.Errorf("cannot watch %s: %w", folder, err)
		}

		store, st, err := loadState()
		if err != nil {
			return err
		}
		if err := store.Save(st.WithFolder(folder)); err != nil {
			return fmt.Errorf("failed to save state: %w", err)
		}
		log.WithField("folder", folder).Info("Watching folder")

		dirs, files := tree.Count(forest)
		if jsonOut {
			return outputJSON(map[string]any{"folder": folder, "folders": dirs, "files": files})
		}
		fmt.Printf("Watching %s (%d folders, %d profile files)\n", folder, dirs, files)
		return nil
	},
}

var unwatchCmd = &cobra.Command{
	Use:   "unwatch",
	Short: "Stop watching the current folder",
	Long:  `Forgets the watched folder and clears the saved selection and open folders.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openStore().Clear(); err != nil {
			return fmt.Errorf("failed to clear state: %w", err)
		}
		if jsonOut {
			return outputJSON(map[string]any{"watching": false})
		}
		fmt.Println("Stopped watching")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(unwatchCmd)
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/gsxpm/internal/appstate"
	"github.com/tormodhaugland/gsxpm/internal/fs"
	"github.com/tormodhaugland/gsxpm/internal/profile"
	"github.com/tormodhaugland/gsxpm/internal/tree"
	"github.com/tormodhaugland/gsxpm/internal/tui"
	"github.com/tormodhaugland/gsxpm/internal/watch"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the two-pane profile browser",
	Long: `Opens the watched folder and the local store side by side. Selection and
open folders are saved as they change and restored on the next start.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, st, err := loadState()
		if err != nil {
			return err
		}
		folder := currentFolder(st)

		restore := logToFile()
		defer restore()

		saver := appstate.NewSaver(store, cfg.SaveDebounce, log)
		saver.MarkLoaded()
		defer saver.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		changes := startWatcher(ctx, folder)

		opts := tui.Options{
			WatchedFolder: folder,
			LoadWatched:   func() ([]*tree.Node, error) { return watchedForest(folder) },
			LoadLocal:     localForest,
			IncludeRoot:   cfg.IncludeRoot,
			State:         st,
			Saver:         saver,
			Changes:       changes,
			NewFolder: func(parentID, name string) error {
				if err := fs.EnsureDir(cfg.UserFoldersPath()); err != nil {
					return err
				}
				_, err := fs.CreateSubfolder(cfg.UserFoldersPath(), parentID, name)
				return err
			},
			Delete: func(id string) error {
				return fs.DeleteUserFolderItem(cfg.UserFoldersPath(), id)
			},
			Activate: func(selected []string) (string, error) {
				watched, local, err := bothForests(folder)
				if err != nil {
					return "", err
				}
				sources := activationSources(tree.NewIDSet(selected...), watched, local)
				res, err := profile.Activate(cfg.GSXTargetDir, sources, profile.Options{
					Backup:    true,
					BackupDir: cfg.BackupDir(),
					Log:       log,
				})
				if err != nil {
					return "", err
				}
				summary := fmt.Sprintf("Activated %d profile(s) in %s", res.Count(), res.TargetDir)
				if res.BackupPath != "" {
					summary += " (backup saved)"
				}
				return summary, nil
			},
		}

		if _, err := tui.Run(opts); err != nil {
			return fmt.Errorf("TUI failed: %w", err)
		}
		return saver.LastError()
	},
}

// startWatcher watches folder until ctx is done. It returns nil when there is
// nothing to watch.
func startWatcher(ctx context.Context, folder string) <-chan struct{} {
	if folder == "" || !fs.CheckFolderExists(folder) {
		return nil
	}
	excl := fs.ExcludesForFolder(folder)
	changes := make(chan struct{}, 1)
	w, err := watch.New(folder, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}, watch.Options{
		Skip: func(name string) bool { return excl.Match(name, true) },
		Log:  log,
	})
	if err != nil {
		log.WithError(err).Warn("File watching disabled")
		return nil
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			log.WithError(err).Warn("Watcher stopped")
		}
	}()
	return changes
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

package cmd

import (
	"fmt"

	"github.com/tormodhaugland/gsxpm/internal/appstate"
	"github.com/tormodhaugland/gsxpm/internal/fs"
	"github.com/tormodhaugland/gsxpm/internal/profiledb"
	"github.com/tormodhaugland/gsxpm/internal/tree"
)

// localRootName labels the synthetic root of the local store forest.
const localRootName = "Local"

func openStore() *appstate.Store {
	return appstate.NewStore(cfg.StatePath())
}

func loadState() (*appstate.Store, appstate.State, error) {
	store := openStore()
	st, err := store.Load()
	if err != nil {
		return nil, appstate.State{}, fmt.Errorf("failed to load state: %w", err)
	}
	return store, st, nil
}

// currentFolder is the folder to show: the flag or config value when set,
// otherwise the one recorded by 'gsxpm watch'.
func currentFolder(st appstate.State) string {
	if cfg.WatchedFolder != "" {
		return cfg.WatchedFolder
	}
	return st.Folder()
}

// watchedForest reads the profile folders under folder. An empty folder
// yields an empty forest.
func watchedForest(folder string) ([]*tree.Node, error) {
	if folder == "" {
		return nil, nil
	}
	return fs.ReadFolderContents(folder)
}

// localForest reads the local store wrapped in its root node.
func localForest() ([]*tree.Node, error) {
	forest, err := fs.ReadUserFolders(cfg.UserFoldersPath())
	if err != nil {
		return nil, err
	}
	return []*tree.Node{tree.WrapRoot(localRootName, cfg.UserFoldersPath(), forest)}, nil
}

// bothForests returns the watched and local forests; a watched folder that
// cannot be read is logged and shown empty.
func bothForests(folder string) (watched, local []*tree.Node, err error) {
	watched, err = watchedForest(folder)
	if err != nil {
		log.WithError(err).WithField("folder", folder).Warn("Could not read watched folder")
		watched = nil
	}
	local, err = localForest()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read local store: %w", err)
	}
	return watched, local, nil
}

// activationSources drops selected ids that name folders. Ids matching no
// node are kept so activation reports them as missing.
func activationSources(selected tree.IDSet, forests ...[]*tree.Node) []string {
	var all []*tree.Node
	for _, f := range forests {
		all = append(all, f...)
	}
	var out []string
	for _, id := range selected {
		if n := tree.FindByID(all, id); n != nil && (n.IsDirectory || n.Expandable()) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func openDB() (*profiledb.DB, error) {
	db, err := profiledb.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open profile database: %w", err)
	}
	return db, nil
}

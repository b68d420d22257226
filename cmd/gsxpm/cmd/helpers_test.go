package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/gsxpm/internal/config"
	"github.com/tormodhaugland/gsxpm/internal/tree"
)

func TestActivationSourcesSkipsFolders(t *testing.T) {
	forest := []*tree.Node{{
		ID: "/c/A", Name: "A", Path: "/c/A", IsDirectory: true,
		Children: []*tree.Node{{ID: "/c/A/egll.ini", Name: "egll.ini", Path: "/c/A/egll.ini"}},
	}}

	got := activationSources(tree.NewIDSet("/c/A", "/c/A/egll.ini", "/gone/kjfk.ini"), forest)
	assert.Equal(t, []string{"/c/A/egll.ini", "/gone/kjfk.ini"}, got, "unknown ids are kept so activation reports them")
}

func TestFormatRow(t *testing.T) {
	dir := &tree.Node{ID: "d", Name: "Europe", IsDirectory: true, Children: []*tree.Node{}}
	file := &tree.Node{ID: "f", Name: "eddf.ini"}

	assert.Equal(t, "    - Europe/", formatRow(tree.Row{Node: dir, Depth: 0, Expanded: true}))
	assert.Equal(t, "    + Europe/", formatRow(tree.Row{Node: dir, Depth: 0}))
	assert.Equal(t, "    *   eddf.ini", formatRow(tree.Row{Node: file, Depth: 1, Selected: true}))
}

func TestGuessICAO(t *testing.T) {
	base := t.TempDir()
	pkg := filepath.Join(base, "fs-egll-heathrow", "GSX Profile")
	require.NoError(t, os.MkdirAll(pkg, 0755))

	assert.Equal(t, "KJFK", guessICAO(filepath.Join(pkg, "kjfk-custom.ini")))
	assert.Equal(t, "EGLL", guessICAO(filepath.Join(pkg, "profile.ini")))
}

func TestStoreID(t *testing.T) {
	setTestConfig(t)
	assert.Equal(t, tree.RootID, storeID(""))
	assert.Equal(t, tree.RootID, storeID(tree.RootID))
	assert.Equal(t, filepath.Join(cfg.UserFoldersPath(), "Europe"), storeID("Europe"))
	assert.Equal(t, "/abs/path", storeID("/abs/path"))
}

func setTestConfig(t *testing.T) {
	t.Helper()
	c := config.DefaultConfig()
	c.DataDir = t.TempDir()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

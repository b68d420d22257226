package profile

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/gsxpm/internal/archive"
	"github.com/tormodhaugland/gsxpm/internal/profiledb"
)

func openDB(t *testing.T) *profiledb.DB {
	t.Helper()
	db, err := profiledb.Open(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStore(t *testing.T) {
	db := openDB(t)
	dir := t.TempDir()

	p, err := Store(db, dir, Upload{
		Continent: "Europe",
		Country:   "Norway",
		ICAO:      "engm",
		FileName:  "engm.ini",
		Content:   []byte("[section]"),
	})
	require.NoError(t, err)

	want := filepath.Join(dir, "Europe", "Norway", "ENGM", "unknown", "1.0", "engm.ini")
	assert.Equal(t, want, p.FilePath)
	assert.Equal(t, "ENGM", p.ICAO)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "[section]", string(data))

	got, err := db.FindByPath(want)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Empty(t, got.Developer, "default developer is only used for the path")

	p2, err := Store(db, dir, Upload{Continent: "Europe", Country: "Norway", ICAO: "ENGM", Developer: "Aerosoft", Version: "2.0", FileName: "engm.py"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Europe", "Norway", "ENGM", "Aerosoft", "2.0", "engm.py"), p2.FilePath)
}

func TestStoreValidation(t *testing.T) {
	db := openDB(t)

	_, err := Store(db, t.TempDir(), Upload{Continent: "Europe", Country: "Norway", FileName: "x.ini"})
	assert.ErrorContains(t, err, "icao is required")

	_, err = Store(db, t.TempDir(), Upload{Continent: "..", Country: "Norway", ICAO: "ENGM", FileName: "x.ini"})
	assert.Error(t, err)

	_, err = Store(db, t.TempDir(), Upload{Continent: "Europe", Country: "Norway", ICAO: "ENGM", FileName: "a/b.ini"})
	assert.Error(t, err)
}

func TestRemove(t *testing.T) {
	db := openDB(t)
	p, err := Store(db, t.TempDir(), Upload{Continent: "Asia", Country: "Japan", ICAO: "RJAA", FileName: "rjaa.ini"})
	require.NoError(t, err)

	require.NoError(t, Remove(db, p.FilePath))
	_, err = os.Stat(p.FilePath)
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, Remove(db, p.FilePath), profiledb.ErrNotFound)
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestActivate(t *testing.T) {
	src := t.TempDir()
	target := t.TempDir()
	backups := t.TempDir()

	a := writeSource(t, src, "a/GSX Profile/egll.ini", "egll")
	b := writeSource(t, src, "b/GSX Profile/kjfk.py", "kjfk")
	old := writeSource(t, src, "old.ini", "old")
	if err := os.Symlink(old, filepath.Join(target, "old.ini")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	writeSource(t, target, "egll.ini", "hand-copied")
	writeSource(t, target, "notes.txt", "keep me")

	res, err := Activate(target, []string{a, b}, Options{
		Backup:    true,
		BackupDir: backups,
		Now:       time.Date(2024, 2, 3, 4, 5, 6, 0, time.Local),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Count())
	assert.Equal(t, []string{"egll.ini", "kjfk.py"}, res.Linked)
	assert.Equal(t, []string{"old.ini"}, res.Removed)
	assert.Equal(t, []string{"egll.ini"}, res.Replaced)
	assert.True(t, res.HadExisting)
	require.NotEmpty(t, res.BackupPath)

	link, err := os.Readlink(filepath.Join(target, "egll.ini"))
	require.NoError(t, err)
	assert.Equal(t, a, link)
	_, err = os.Lstat(filepath.Join(target, "old.ini"))
	assert.True(t, os.IsNotExist(err), "previous symlinks are removed")
	data, err := os.ReadFile(filepath.Join(target, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data), "unrelated files stay")

	entries, err := archive.ListBackups(backups)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].FileCount)
}

func TestActivateMissingSourceChangesNothing(t *testing.T) {
	src := t.TempDir()
	target := t.TempDir()
	a := writeSource(t, src, "a.ini", "a")

	_, err := Activate(target, []string{a, filepath.Join(src, "gone.ini")}, Options{})
	assert.ErrorIs(t, err, ErrMissingSource)

	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestActivateDryRun(t *testing.T) {
	src := t.TempDir()
	target := filepath.Join(t.TempDir(), "not-yet")
	a := writeSource(t, src, "a.ini", "a")

	res, err := Activate(target, []string{a}, Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, []string{"a.ini"}, res.Linked)
	assert.False(t, res.HadExisting)

	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err), "dry run does not create the target")
}

func TestActivateRejectsDuplicatesAndEmpty(t *testing.T) {
	src := t.TempDir()
	a := writeSource(t, src, "x/a.ini", "1")
	b := writeSource(t, src, "y/a.ini", "2")

	_, err := Activate(t.TempDir(), []string{a, b}, Options{})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = Activate(t.TempDir(), nil, Options{})
	assert.ErrorIs(t, err, ErrNothingToLink)
}

func TestGroupSelected(t *testing.T) {
	groups := GroupSelected([]string{
		"/c/zeta-egll/GSX Profile/b.ini",
		"/c/alpha-kjfk/GSX Profile/z.py",
		"/c/zeta-egll/GSX Profile/A.ini",
		`C:\Community\mid-lfpg\GSX Profile\lfpg.ini`,
		"top/file.ini",
		"loose.ini",
	})

	require.Len(t, groups, 5)
	var gotNames []string
	for _, g := range groups {
		gotNames = append(gotNames, g.Name)
	}
	assert.Equal(t, []string{"alpha-kjfk", "mid-lfpg", "Other", "top", "zeta-egll"}, gotNames)

	zeta := groups[4]
	assert.Equal(t, "/c/zeta-egll", zeta.Folder)
	require.Len(t, zeta.Files, 2)
	assert.Equal(t, "A.ini", zeta.Files[0].Name)
	assert.Equal(t, "b.ini", zeta.Files[1].Name)

	assert.Equal(t, "top", groups[3].Folder, "parent is used when there is no grandparent")
	assert.Equal(t, OtherGroup, groups[2].Folder)

	assert.Empty(t, GroupSelected(nil))
}

func TestExtractZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"pkg/GSX Profile/EGLL.INI": "ini",
		"pkg/egll.py":              "py",
		"pkg/readme.txt":           "skip",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	_, err := zw.Create("pkg/empty/")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	files, err := ExtractZip(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	got := map[string]string{}
	for _, f := range files {
		got[f.Name] = string(f.Content)
	}
	assert.Equal(t, map[string]string{"EGLL.INI": "ini", "egll.py": "py"}, got)
}

func TestExtractZipWithoutProfiles(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("readme.md")
	require.NoError(t, err)
	_, _ = w.Write([]byte("hi"))
	require.NoError(t, zw.Close())

	_, err = ExtractZip(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.ErrorIs(t, err, ErrNoProfilesInZip)

	_, err = ExtractZip(bytes.NewReader([]byte("not a zip")), 9)
	assert.Error(t, err)
}

package profiledb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "profiles.db")

	db, err := Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, dbPath, db.Path())
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "profiles.db")

	db, err := Open(dbPath)
	require.NoError(t, err)
	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	require.NoError(t, db.Close())

	db, err = Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	v, err = db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestInsertAndList(t *testing.T) {
	db := openTestDB(t)

	egll := &Profile{Continent: "Europe", Country: "United Kingdom", ICAO: "EGLL", Developer: "iniBuilds", FilePath: "/p/egll.ini"}
	require.NoError(t, db.Insert(egll))
	assert.NotEmpty(t, egll.ID)
	assert.False(t, egll.CreatedAt.IsZero())

	kjfk := &Profile{Continent: "North America", Country: "USA", ICAO: "KJFK", FilePath: "/p/kjfk.ini"}
	require.NoError(t, db.Insert(kjfk))

	all, err := db.List(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "EGLL", all[0].ICAO)
	assert.Equal(t, "iniBuilds", all[0].Developer)
	assert.Empty(t, all[1].Developer, "NULL developer reads back empty")
	assert.Empty(t, all[1].Version)

	only, err := db.List(Filter{ICAO: "kjfk"})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, kjfk.ID, only[0].ID)

	n, err := db.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestInsertDuplicateID(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Insert(&Profile{ID: "same", Continent: "Europe", Country: "France", ICAO: "LFPG", FilePath: "/a"}))
	assert.Error(t, db.Insert(&Profile{ID: "same", Continent: "Europe", Country: "France", ICAO: "LFPG", FilePath: "/b"}))
}

func TestFindAndDeleteByPath(t *testing.T) {
	db := openTestDB(t)

	_, err := db.FindByPath("/missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Insert(&Profile{Continent: "Asia", Country: "Japan", ICAO: "RJTT", Version: "2.1", FilePath: "/p/rjtt.py"}))

	p, err := db.FindByPath("/p/rjtt.py")
	require.NoError(t, err)
	assert.Equal(t, "RJTT", p.ICAO)
	assert.Equal(t, "2.1", p.Version)

	removed, err := db.DeleteByPath("/p/rjtt.py")
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	removed, err = db.DeleteByPath("/p/rjtt.py")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

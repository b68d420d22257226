// Package profiledb records uploaded GSX profiles in a local SQLite database.
package profiledb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite profile catalogue.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens or creates the profile database at dbPath.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// go-sqlite3 applies these pragmas to every pooled connection.
	dsn := "file:" + dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn, path: dbPath}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Path() string {
	return db.path
}

// SchemaVersion returns the highest applied migration.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v)
	return v, err
}

var migrations = []string{migrationV1, migrationV2}

// migrate applies each pending migration in its own transaction.
func (db *DB) migrate() error {
	if _, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	current, err := db.SchemaVersion()
	if err != nil {
		return fmt.Errorf("getting schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		if err := db.apply(i+1, migrations[i]); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) apply(version int, stmt string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("migration v%d: %w", version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("migration v%d: %w", version, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording migration v%d: %w", version, err)
	}
	return tx.Commit()
}

const migrationV1 = `
CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    continent TEXT NOT NULL,
    country TEXT NOT NULL,
    icao TEXT NOT NULL,
    developer TEXT,
    version TEXT,
    file_path TEXT NOT NULL
);
`

// migrationV2 adds upload time and lookup indexes.
const migrationV2 = `
ALTER TABLE profiles ADD COLUMN created_at TIMESTAMP;
CREATE INDEX IF NOT EXISTS idx_profiles_icao ON profiles(icao);
CREATE INDEX IF NOT EXISTS idx_profiles_path ON profiles(file_path);
`

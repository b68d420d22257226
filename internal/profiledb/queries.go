package profiledb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no profile row matches.
var ErrNotFound = errors.New("profile not found")

// Profile is one uploaded profile file.
type Profile struct {
	ID        string    `json:"id" yaml:"id"`
	Continent string    `json:"continent" yaml:"continent"`
	Country   string    `json:"country" yaml:"country"`
	ICAO      string    `json:"icao" yaml:"icao"`
	Developer string    `json:"developer,omitempty" yaml:"developer,omitempty"`
	Version   string    `json:"version,omitempty" yaml:"version,omitempty"`
	FilePath  string    `json:"filePath" yaml:"file_path"`
	CreatedAt time.Time `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	ICAO      string
	Country   string
	Continent string
}

// Insert stores p, assigning an id and timestamp when they are empty.
func (db *DB) Insert(p *Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT INTO profiles (id, continent, country, icao, developer, version, file_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Continent, p.Country, p.ICAO, nullable(p.Developer), nullable(p.Version), p.FilePath, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

// List returns profiles ordered by continent, country, icao and file path.
func (db *DB) List(f Filter) ([]Profile, error) {
	rows, err := db.conn.Query(`
		SELECT id, continent, country, icao, developer, version, file_path, created_at
		FROM profiles
		WHERE (? = '' OR icao = ? COLLATE NOCASE)
		  AND (? = '' OR country = ? COLLATE NOCASE)
		  AND (? = '' OR continent = ? COLLATE NOCASE)
		ORDER BY continent, country, icao, file_path
	`, f.ICAO, f.ICAO, f.Country, f.Country, f.Continent, f.Continent)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// FindByPath returns the most recent profile stored at path.
func (db *DB) FindByPath(path string) (*Profile, error) {
	row := db.conn.QueryRow(`
		SELECT id, continent, country, icao, developer, version, file_path, created_at
		FROM profiles WHERE file_path = ?
		ORDER BY created_at DESC LIMIT 1
	`, path)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// DeleteByPath removes every row for path and reports how many went.
func (db *DB) DeleteByPath(path string) (int64, error) {
	res, err := db.conn.Exec("DELETE FROM profiles WHERE file_path = ?", path)
	if err != nil {
		return 0, fmt.Errorf("deleting profile: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored profiles.
func (db *DB) Count() (int64, error) {
	var n int64
	err := db.conn.QueryRow("SELECT COUNT(*) FROM profiles").Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*Profile, error) {
	var (
		p         Profile
		developer sql.NullString
		version   sql.NullString
		created   sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Continent, &p.Country, &p.ICAO, &developer, &version, &p.FilePath, &created); err != nil {
		return nil, err
	}
	p.Developer = developer.String
	p.Version = version.String
	if created.Valid {
		p.CreatedAt = created.Time
	}
	return &p, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

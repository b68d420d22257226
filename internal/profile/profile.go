// Package profile files uploaded GSX profiles into the catalogue and activates
// a selection by linking it into the folder GSX reads from.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tormodhaugland/gsxpm/internal/profiledb"
)

const (
	defaultDeveloper = "unknown"
	defaultVersion   = "1.0"
)

// Upload describes one profile file to store.
type Upload struct {
	Continent string
	Country   string
	ICAO      string
	Developer string
	Version   string
	FileName  string
	Content   []byte
}

// Validate checks the fields that end up in the storage path.
func (u Upload) Validate() error {
	for field, v := range map[string]string{
		"continent": u.Continent,
		"country":   u.Country,
		"icao":      u.ICAO,
		"file name": u.FileName,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", field)
		}
	}
	for _, v := range []string{u.Continent, u.Country, u.ICAO, u.Developer, u.Version, u.FileName} {
		if v == "." || v == ".." || strings.ContainsAny(v, `/\`) {
			return fmt.Errorf("invalid path component %q", v)
		}
	}
	return nil
}

// Dir returns where the upload is filed below profilesDir:
// continent/country/icao/developer/version.
func (u Upload) Dir(profilesDir string) string {
	developer := u.Developer
	if developer == "" {
		developer = defaultDeveloper
	}
	version := u.Version
	if version == "" {
		version = defaultVersion
	}
	return filepath.Join(profilesDir, u.Continent, u.Country, strings.ToUpper(u.ICAO), developer, version)
}

// Store writes the upload under profilesDir and records it in db.
func Store(db *profiledb.DB, profilesDir string, u Upload) (*profiledb.Profile, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	dir := u.Dir(profilesDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating profile directory: %w", err)
	}
	path := filepath.Join(dir, u.FileName)
	if err := os.WriteFile(path, u.Content, 0644); err != nil {
		return nil, fmt.Errorf("writing profile: %w", err)
	}

	p := &profiledb.Profile{
		Continent: u.Continent,
		Country:   u.Country,
		ICAO:      strings.ToUpper(u.ICAO),
		Developer: u.Developer,
		Version:   u.Version,
		FilePath:  path,
	}
	if err := db.Insert(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Remove deletes a stored profile file and its catalogue rows.
func Remove(db *profiledb.DB, path string) error {
	n, err := db.DeleteByPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) && n > 0 {
			return nil
		}
		if os.IsNotExist(err) {
			return profiledb.ErrNotFound
		}
		return fmt.Errorf("removing profile file: %w", err)
	}
	return nil
}

package profile

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrNoProfilesInZip is returned when an archive holds no .ini or .py file.
var ErrNoProfilesInZip = errors.New("no .ini or .py files found in the ZIP archive")

// ZipFile is a profile file pulled out of an archive.
type ZipFile struct {
	Name    string
	Content []byte
}

// ExtractZip returns every .ini and .py file in the archive by base name.
// Folder structure inside the archive is dropped.
func ExtractZip(r io.ReaderAt, size int64) ([]ZipFile, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open ZIP: %w", err)
	}

	var out []ZipFile
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := path.Base(strings.ReplaceAll(f.Name, `\`, "/"))
		if !IsProfileFile(name) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s from ZIP: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s from ZIP: %w", f.Name, err)
		}
		out = append(out, ZipFile{Name: name, Content: content})
	}

	if len(out) == 0 {
		return nil, ErrNoProfilesInZip
	}
	return out, nil
}

// IsProfileFile reports whether name has a GSX profile extension.
func IsProfileFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".ini") || strings.HasSuffix(lower, ".py")
}

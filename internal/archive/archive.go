// Package archive keeps timestamped tar.gz backups of the GSX profile target
// folder so an activation can be undone.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/tormodhaugland/gsxpm/internal/fs"
)

const (
	metaName        = "backup-meta.json"
	timestampLayout = "20060102-150405"
)

var backupFilePattern = regexp.MustCompile(`^gsx-profiles--(\d{8}-\d{6})\.tar\.gz$`)

type BackupMeta struct {
	Schema    int       `json:"schema"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	Reason    string    `json:"reason,omitempty"`
	Files     []string  `json:"files"`
}

type Result struct {
	ArchivePath string   `json:"archive_path"`
	Files       []string `json:"files"`
}

type Entry struct {
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	Reason    string    `json:"reason,omitempty"`
	FileCount int       `json:"file_count"`
}

// BackupFiles writes the profile files directly inside srcDir into
// backupDir/<year>/gsx-profiles--<timestamp>.tar.gz. Symlinked profiles are
// stored with the content they point to. It returns nil when there is nothing
// to back up.
func BackupFiles(srcDir, backupDir, reason string, now time.Time) (*Result, error) {
	files, err := ProfileFiles(srcDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	archiveDir := filepath.Join(backupDir, now.Format("2006"))
	if err := fs.EnsureDir(archiveDir); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	archivePath := filepath.Join(archiveDir, fmt.Sprintf("gsx-profiles--%s.tar.gz", now.Format(timestampLayout)))
	meta := BackupMeta{
		Schema:    1,
		Source:    srcDir,
		CreatedAt: now,
		Reason:    reason,
		Files:     files,
	}
	if err := createTarGz(srcDir, files, meta, archivePath); err != nil {
		os.Remove(archivePath)
		return nil, fmt.Errorf("failed to create backup: %w", err)
	}

	return &Result{ArchivePath: archivePath, Files: files}, nil
}

// ProfileFiles lists the names of files directly inside dir, sorted. Symlinks
// count when they resolve to a regular file. A missing dir has no files.
func ProfileFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
			continue
		}
		if e.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(dir, e.Name())); err == nil && info.Mode().IsRegular() {
				files = append(files, e.Name())
			}
		}
	}
	return files, nil
}

func createTarGz(srcDir string, files []string, meta BackupMeta, dstPath string) error {
	out, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	defer out.Close()

	gzw := gzip.NewWriter(out)
	tw := tar.NewWriter(gzw)

	metaData, _ := json.MarshalIndent(meta, "", "  ")
	if err := tw.WriteHeader(&tar.Header{
		Name:    metaName,
		Mode:    0644,
		Size:    int64(len(metaData)),
		ModTime: meta.CreatedAt,
	}); err != nil {
		return err
	}
	if _, err := tw.Write(metaData); err != nil {
		return err
	}

	for _, name := range files {
		if err := addFile(tw, filepath.Join(srcDir, name), name); err != nil {
			return fmt.Errorf("adding %s: %w", name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if err := gzw.Close(); err != nil {
		return err
	}
	return out.Close()
}

func addFile(tw *tar.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}

// ListBackups returns every backup under backupDir, newest first.
func ListBackups(backupDir string) ([]Entry, error) {
	var entries []Entry

	years, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, err
	}

	for _, yearDir := range years {
		if !yearDir.IsDir() {
			continue
		}

		yearPath := filepath.Join(backupDir, yearDir.Name())
		files, err := os.ReadDir(yearPath)
		if err != nil {
			continue
		}

		for _, file := range files {
			matches := backupFilePattern.FindStringSubmatch(file.Name())
			if file.IsDir() || matches == nil {
				continue
			}

			createdAt, _ := time.ParseInLocation(timestampLayout, matches[1], time.Local)
			entry := Entry{
				Path:      filepath.Join(yearPath, file.Name()),
				CreatedAt: createdAt,
			}

			meta, err := readBackupMeta(entry.Path)
			if err == nil && meta != nil {
				entry.Reason = meta.Reason
				entry.FileCount = len(meta.Files)
			}

			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Restore extracts the profile files of a backup into targetDir, replacing
// files or symlinks with the same name. It returns the restored names.
func Restore(archivePath, targetDir string) ([]string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer gzr.Close()

	if err := fs.EnsureDir(targetDir); err != nil {
		return nil, err
	}

	var restored []string
	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return restored, err
		}
		if header.Name == metaName || header.Typeflag != tar.TypeReg {
			continue
		}
		name := filepath.Base(header.Name)
		if name != header.Name || strings.HasPrefix(name, "..") {
			return restored, fmt.Errorf("unsafe entry in backup: %s", header.Name)
		}

		dst := filepath.Join(targetDir, name)
		if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
			return restored, err
		}
		out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return restored, err
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return restored, err
		}
		if err := out.Close(); err != nil {
			return restored, err
		}
		restored = append(restored, name)
	}
	return restored, nil
}

func readBackupMeta(archivePath string) (*BackupMeta, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if header.Name == metaName {
			var meta BackupMeta
			if err := json.NewDecoder(tr).Decode(&meta); err != nil {
				return nil, err
			}
			return &meta, nil
		}
	}

	return nil, nil
}

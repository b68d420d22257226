package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tormodhaugland/gsxpm/internal/archive"
	"github.com/tormodhaugland/gsxpm/internal/fs"
)

var (
	ErrMissingSource = errors.New("source file does not exist")
	ErrDuplicateName = errors.New("two selected files share a name")
	ErrNothingToLink = errors.New("no files selected")
)

// Options controls Activate.
type Options struct {
	// Backup archives the files already in the target before anything changes.
	Backup    bool
	BackupDir string
	DryRun    bool
	Log       logrus.FieldLogger
	// Now is used for backup names; zero means time.Now.
	Now time.Time
}

// Result reports what Activate did, or would do with DryRun.
type Result struct {
	TargetDir   string   `json:"target_dir"`
	Linked      []string `json:"linked"`
	Removed     []string `json:"removed"`
	Replaced    []string `json:"replaced,omitempty"`
	HadExisting bool     `json:"had_existing"`
	BackupPath  string   `json:"backup_path,omitempty"`
	DryRun      bool     `json:"dry_run,omitempty"`
}

func (r *Result) Count() int {
	return len(r.Linked)
}

// Activate links every selected file into targetDir. All sources are checked
// before the target is touched. Existing symlinks in the target are removed,
// regular files are only replaced when a selected file has the same name.
func Activate(targetDir string, selected []string, opts Options) (*Result, error) {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	if len(selected) == 0 {
		return nil, ErrNothingToLink
	}

	byName := make(map[string]string, len(selected))
	for _, src := range selected {
		info, err := os.Stat(src)
		if err != nil || info.IsDir() {
			return nil, &fs.PathError{Path: src, Err: ErrMissingSource}
		}
		name := filepath.Base(src)
		if prev, ok := byName[name]; ok && prev != src {
			return nil, fmt.Errorf("%w: %s and %s", ErrDuplicateName, prev, src)
		}
		byName[name] = src
	}

	res := &Result{TargetDir: targetDir, DryRun: opts.DryRun}
	existing, err := archive.ProfileFiles(targetDir)
	if err != nil {
		return nil, fmt.Errorf("reading target directory: %w", err)
	}
	res.HadExisting = len(existing) > 0

	links, err := symlinksIn(targetDir)
	if err != nil {
		return nil, fmt.Errorf("reading target directory: %w", err)
	}
	res.Removed = links
	for name := range byName {
		if containsName(existing, name) && !containsName(links, name) {
			res.Replaced = append(res.Replaced, name)
		}
	}
	sort.Strings(res.Replaced)

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	if opts.DryRun {
		res.Linked = names
		return res, nil
	}

	if err := fs.EnsureDir(targetDir); err != nil {
		return nil, fmt.Errorf("creating target directory: %w", err)
	}

	if opts.Backup && res.HadExisting {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		backup, err := archive.BackupFiles(targetDir, opts.BackupDir, "activate", now)
		if err != nil {
			return nil, err
		}
		if backup != nil {
			res.BackupPath = backup.ArchivePath
			log.WithField("archive", backup.ArchivePath).Info("Backed up existing profiles")
		}
	}

	for _, name := range links {
		if err := os.Remove(filepath.Join(targetDir, name)); err != nil && !os.IsNotExist(err) {
			return res, fmt.Errorf("removing symlink %s: %w", name, err)
		}
	}
	for _, name := range res.Replaced {
		if err := os.Remove(filepath.Join(targetDir, name)); err != nil && !os.IsNotExist(err) {
			return res, fmt.Errorf("removing %s: %w", name, err)
		}
	}

	for _, name := range names {
		src, err := filepath.Abs(byName[name])
		if err != nil {
			return res, err
		}
		if err := os.Symlink(src, filepath.Join(targetDir, name)); err != nil {
			return res, fmt.Errorf("creating symlink for %s: %w", name, err)
		}
		res.Linked = append(res.Linked, name)
		log.WithFields(logrus.Fields{"source": src, "name": name}).Debug("Linked profile")
	}

	log.WithFields(logrus.Fields{"count": len(res.Linked), "target": targetDir}).Info("Activated profiles")
	return res, nil
}

func symlinksIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type()&os.ModeSymlink != 0 {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

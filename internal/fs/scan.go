package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tormodhaugland/gsxpm/internal/tree"
)

// ProfileDirName is the folder add-on developers ship GSX profiles in.
const ProfileDirName = "GSX Profile"

// ReadFolderContents scans a watched folder (usually an MSFS Community folder)
// and returns only the parts that lead to GSX profiles. Top-level directories
// are kept when something below them is relevant; files appear only inside a
// "GSX Profile" folder.
func ReadFolderContents(folder string) ([]*tree.Node, error) {
	return ScanFolder(folder, ExcludesForFolder(folder))
}

// ScanFolder is ReadFolderContents with an explicit exclude list. Symlinked
// directories are followed; a link back into a folder that is already being
// read is skipped.
func ScanFolder(folder string, excl *ExcludeList) ([]*tree.Node, error) {
	info, err := os.Stat(folder)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, &PathError{Path: folder, Err: ErrNotFound}
		}
		return nil, classify(folder, err)
	}
	if !info.IsDir() {
		return nil, &PathError{Path: folder, Err: ErrNotDirectory}
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, classify(folder, err)
	}

	s := &scanner{excl: excl, open: make(map[string]bool)}
	leave, _ := s.enter(folder)
	defer leave()

	items := []*tree.Node{}
	for _, entry := range entries {
		if !IsDirEntry(folder, entry) || excl.Match(entry.Name(), true) {
			continue
		}
		path := filepath.Join(folder, entry.Name())

		var children []*tree.Node
		if entry.Name() == ProfileDirName {
			children, err = s.profileContents(path)
		} else {
			children, err = s.relevantFolders(path)
		}
		if err != nil {
			if errors.Is(err, iofs.ErrPermission) {
				continue
			}
			return nil, err
		}
		if len(children) == 0 && !s.containsProfileDir(path) {
			continue
		}
		items = append(items, dirNode(entry.Name(), path, children))
	}
	return items, nil
}

// IsDirEntry reports whether entry, found in dir, is a directory or a symlink
// to one.
func IsDirEntry(dir string, entry iofs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&iofs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.IsDir()
}

type scanner struct {
	excl *ExcludeList
	// real paths of the directories on the current descent
	open map[string]bool
}

// enter marks dir as being read. It fails when dir resolves to a directory
// that is already open, which only happens through a symlink cycle.
func (s *scanner) enter(dir string) (leave func(), ok bool) {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		real = filepath.Clean(dir)
	}
	if s.open[real] {
		return func() {}, false
	}
	s.open[real] = true
	return func() { delete(s.open, real) }, true
}

// relevantFolders returns the subdirectories of dir that are, or contain, a
// GSX Profile folder. Unreadable subdirectories are skipped.
func (s *scanner) relevantFolders(dir string) ([]*tree.Node, error) {
	leave, ok := s.enter(dir)
	defer leave()
	if !ok {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	items := []*tree.Node{}
	for _, entry := range entries {
		if !IsDirEntry(dir, entry) || s.excl.Match(entry.Name(), true) {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		if entry.Name() == ProfileDirName {
			files, err := s.profileContents(path)
			if err != nil {
				if errors.Is(err, iofs.ErrPermission) {
					continue
				}
				return nil, err
			}
			items = append(items, dirNode(entry.Name(), path, files))
			continue
		}

		children, err := s.relevantFolders(path)
		if err != nil {
			if errors.Is(err, iofs.ErrPermission) {
				continue
			}
			return nil, err
		}
		if len(children) > 0 {
			items = append(items, dirNode(entry.Name(), path, children))
		}
	}
	return items, nil
}

// profileContents lists every file inside a GSX Profile folder, plus
// subdirectories that have content of their own.
func (s *scanner) profileContents(dir string) ([]*tree.Node, error) {
	leave, ok := s.enter(dir)
	defer leave()
	if !ok {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	items := []*tree.Node{}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		isDir := IsDirEntry(dir, entry)
		if s.excl.Match(entry.Name(), isDir) {
			continue
		}
		if isDir {
			children, err := s.profileContents(path)
			if err != nil {
				if errors.Is(err, iofs.ErrPermission) {
					continue
				}
				return nil, err
			}
			if len(children) > 0 {
				items = append(items, dirNode(entry.Name(), path, children))
			}
			continue
		}
		items = append(items, fileNode(entry.Name(), path))
	}
	return items, nil
}

func (s *scanner) containsProfileDir(dir string) bool {
	if filepath.Base(dir) == ProfileDirName {
		return true
	}
	leave, ok := s.enter(dir)
	defer leave()
	if !ok {
		return false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if IsDirEntry(dir, entry) && !s.excl.Match(entry.Name(), true) && s.containsProfileDir(filepath.Join(dir, entry.Name())) {
			return true
		}
	}
	return false
}

func dirNode(name, path string, children []*tree.Node) *tree.Node {
	if children == nil {
		children = []*tree.Node{}
	}
	return &tree.Node{ID: path, Name: name, Path: path, IsDirectory: true, Children: children}
}

func fileNode(name, path string) *tree.Node {
	return &tree.Node{ID: path, Name: name, Path: path}
}

// classify maps an os error for path onto the package sentinels.
func classify(path string, err error) error {
	if errors.Is(err, iofs.ErrPermission) {
		pe := &PathError{Path: path, Err: ErrPermission}
		if strings.Contains(path, msfsPackageMarker) {
			pe.Hint = "the Microsoft Flight Simulator folder is restricted, try running as administrator"
		}
		return pe
	}
	return err
}

// CheckFolderExists reports whether path exists and is a directory.
func CheckFolderExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

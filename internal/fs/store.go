package fs

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tormodhaugland/gsxpm/internal/tree"
)

// ReadUserFolders reads the whole local store below base. Every node's id is
// its path. The base directory is created when missing.
func ReadUserFolders(base string) ([]*tree.Node, error) {
	if err := EnsureDir(base); err != nil {
		return nil, fmt.Errorf("creating user folders directory: %w", err)
	}
	return readDirectoryContents(base, BuildExcludeList(ExcludeOptions{KeepBackups: true})), nil
}

func readDirectoryContents(dir string, excl *ExcludeList) []*tree.Node {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []*tree.Node{}
	}

	items := make([]*tree.Node, 0, len(entries))
	for _, entry := range entries {
		if excl.Match(entry.Name(), entry.IsDir()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			items = append(items, dirNode(entry.Name(), path, readDirectoryContents(path, excl)))
		} else {
			items = append(items, fileNode(entry.Name(), path))
		}
	}
	return items
}

// CreateUserFolder creates a top-level folder in the store.
func CreateUserFolder(base, name string) (string, error) {
	return CreateSubfolder(base, tree.RootID, name)
}

// CreateSubfolder creates name inside the folder identified by parentID.
// The root sentinel maps to base.
func CreateSubfolder(base, parentID, name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	parent, err := resolveFolder(base, parentID)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating folder %s: %w", dir, err)
	}
	return dir, nil
}

// CopyFileToUserFolder copies src into the folder identified by targetID,
// creating it if needed, and returns the new file's path.
func CopyFileToUserFolder(base, src, targetID string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return "", &PathError{Path: src, Err: ErrNotFound}
		}
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", &PathError{Path: src, Err: ErrNotAFile}
	}

	target, err := resolveFolder(base, targetID)
	if err != nil {
		return "", err
	}
	if err := EnsureDir(target); err != nil {
		return "", fmt.Errorf("creating target directory: %w", err)
	}

	dst := filepath.Join(target, filepath.Base(src))
	if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("copying %s: %w", src, err)
	}
	return dst, nil
}

// DeleteUserFolderItem removes a file or folder tree from the store. The root
// sentinel and the base directory itself cannot be deleted.
func DeleteUserFolderItem(base, itemPath string) error {
	if itemPath == tree.RootID {
		return ErrRootDelete
	}
	if _, err := os.Lstat(itemPath); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return &PathError{Path: itemPath, Err: ErrNotFound}
		}
		return err
	}
	within, err := isWithin(base, itemPath)
	if err != nil {
		return err
	}
	if !within {
		return &PathError{Path: itemPath, Err: ErrOutsideStore}
	}
	if same, _ := samePath(base, itemPath); same {
		return ErrRootDelete
	}
	if err := os.RemoveAll(itemPath); err != nil {
		return fmt.Errorf("deleting %s: %w", itemPath, err)
	}
	return nil
}

func resolveFolder(base, id string) (string, error) {
	if id == tree.RootID || id == "" {
		return base, nil
	}
	within, err := isWithin(base, id)
	if err != nil {
		return "", err
	}
	if !within {
		return "", &PathError{Path: id, Err: ErrOutsideStore}
	}
	return id, nil
}

// isWithin reports whether path is base or lies below it.
func isWithin(base, path string) (bool, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return false, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return false, nil
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

package fs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("folder not found")
	ErrNotDirectory = errors.New("not a directory")
	ErrPermission   = errors.New("permission denied")
	ErrOutsideStore = errors.New("path is outside the local store")
	ErrRootDelete   = errors.New("cannot delete the store root")
	ErrInvalidName  = errors.New("invalid folder name")
	ErrNotAFile     = errors.New("source is not a regular file")
)

// msfsPackageMarker appears in paths inside the MSFS 2024 Store package, which
// is locked down unless the process runs elevated.
const msfsPackageMarker = "Microsoft.Limitless_8wekyb3d8bbwe"

// PathError attaches the offending path to one of the sentinel errors above.
type PathError struct {
	Path string
	Err  error
	Hint string
}

func (e *PathError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err, e.Path, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Path)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

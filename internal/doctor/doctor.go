package doctor

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/tormodhaugland/gsxpm/internal/appstate"
	"github.com/tormodhaugland/gsxpm/internal/fs"
	"github.com/tormodhaugland/gsxpm/internal/tree"
)

type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Inputs is what a diagnosis looks at. Forests may be nil when they could not
// be read; the matching folder check then reports why.
type Inputs struct {
	WatchedFolder string
	UserFolders   string
	TargetDir     string
	State         appstate.State
	Watched       []*tree.Node
	Local         []*tree.Node
}

type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report lists the checks plus stale ids: persisted ids that no longer match
// any node. Stale ids are harmless and are only removed by Prune.
type Report struct {
	Checks             []Check  `json:"checks"`
	MissingFolders     []string `json:"missing_folders"`
	StaleSelected      []string `json:"stale_selected"`
	StaleExpanded      []string `json:"stale_expanded"`
	StaleLocalExpanded []string `json:"stale_local_expanded"`
	BrokenLinks        []string `json:"broken_links"`
}

// Healthy is false when any check failed.
func (r *Report) Healthy() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return false
		}
	}
	return true
}

func (r *Report) StaleCount() int {
	return len(r.StaleSelected) + len(r.StaleExpanded) + len(r.StaleLocalExpanded)
}

func (r *Report) add(name string, status Status, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Status: status, Detail: detail})
}

func Diagnose(in Inputs) *Report {
	r := &Report{
		MissingFolders:     []string{},
		StaleSelected:      []string{},
		StaleExpanded:      []string{},
		StaleLocalExpanded: []string{},
		BrokenLinks:        []string{},
	}

	switch {
	case in.WatchedFolder == "":
		r.add("watched folder", StatusWarn, "no folder is being watched")
	case !fs.CheckFolderExists(in.WatchedFolder):
		r.add("watched folder", StatusFail, in.WatchedFolder+" does not exist")
		r.MissingFolders = append(r.MissingFolders, in.WatchedFolder)
	default:
		r.add("watched folder", StatusOK, in.WatchedFolder)
	}

	if fs.CheckFolderExists(in.UserFolders) {
		r.add("local store", StatusOK, in.UserFolders)
	} else {
		r.add("local store", StatusWarn, in.UserFolders+" will be created on first use")
		r.MissingFolders = append(r.MissingFolders, in.UserFolders)
	}

	if fs.CheckFolderExists(in.TargetDir) {
		r.add("GSX target", StatusOK, in.TargetDir)
		r.BrokenLinks = brokenLinks(in.TargetDir)
		if len(r.BrokenLinks) > 0 {
			r.add("active profiles", StatusWarn, "some activated profiles point to files that are gone")
		}
	} else {
		r.add("GSX target", StatusWarn, in.TargetDir+" does not exist yet")
		r.MissingFolders = append(r.MissingFolders, in.TargetDir)
	}

	local := []*tree.Node{tree.WrapRoot("Local", in.UserFolders, in.Local)}
	both := append(append([]*tree.Node{}, in.Watched...), local...)

	r.StaleSelected = nonNil(tree.Stale(both, in.State.SelectedFiles))
	r.StaleExpanded = nonNil(tree.Stale(in.Watched, in.State.ExpandedIDs))
	r.StaleLocalExpanded = nonNil(tree.Stale(local, in.State.LocalExpandedIDs))
	if n := r.StaleCount(); n > 0 {
		r.add("saved state", StatusWarn, "some saved ids no longer match any file or folder")
	} else {
		r.add("saved state", StatusOK, "")
	}

	return r
}

// Prune returns st without the stale ids in r.
func Prune(st appstate.State, r *Report) appstate.State {
	drop := func(set tree.IDSet, stale []string) tree.IDSet {
		for _, id := range stale {
			set = set.Without(id)
		}
		return set
	}
	st.SelectedFiles = drop(st.SelectedFiles, r.StaleSelected)
	st.ExpandedIDs = drop(st.ExpandedIDs, r.StaleExpanded)
	st.LocalExpandedIDs = drop(st.LocalExpandedIDs, r.StaleLocalExpanded)
	return st
}

func brokenLinks(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{}
	}
	out := []string{}
	for _, e := range entries {
		if e.Type()&os.ModeSymlink == 0 {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, e.Name())); err != nil {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

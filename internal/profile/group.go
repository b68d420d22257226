package profile

import (
	"sort"
	"strings"
)

// OtherGroup collects selected ids that contain no path separator.
const OtherGroup = "Other"

type SelectedFile struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Group is a set of selected files sharing a folder.
type Group struct {
	Folder string         `json:"folder"`
	Name   string         `json:"name"`
	Files  []SelectedFile `json:"files"`
}

// GroupSelected groups selected paths by the folder two levels up (the add-on
// folder holding the GSX Profile folder), falling back to the parent folder.
// Groups are ordered by folder name and files by file name. Both separators
// are accepted so ids recorded on Windows group the same way.
func GroupSelected(selected []string) []Group {
	groups := make(map[string]*Group)
	var order []string

	for _, path := range selected {
		key := OtherGroup
		if i := lastSep(path); i >= 0 {
			parent := path[:i]
			key = parent
			if j := lastSep(parent); j >= 0 {
				key = parent[:j]
			}
		}
		g, ok := groups[key]
		if !ok {
			g = &Group{Folder: key, Name: baseName(key)}
			groups[key] = g
			order = append(order, key)
		}
		g.Files = append(g.Files, SelectedFile{Path: path, Name: baseName(path)})
	}

	out := make([]Group, 0, len(order))
	for _, key := range order {
		g := groups[key]
		sort.SliceStable(g.Files, func(i, j int) bool {
			return lessFold(g.Files[i].Name, g.Files[j].Name)
		})
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessFold(out[i].Name, out[j].Name)
	})
	return out
}

func lastSep(s string) int {
	return strings.LastIndexAny(s, `/\`)
}

func baseName(s string) string {
	if i := lastSep(s); i >= 0 && i < len(s)-1 {
		return s[i+1:]
	}
	return s
}

func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

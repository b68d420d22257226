package tree

import (
	"path/filepath"
	"strings"
)

// RootID is the sentinel id used when a forest is wrapped in a synthetic root node.
// Bulk operations add it to the expanded set when asked to include the root.
const RootID = "root"

// Node is one entry in a hierarchical forest of folders and files.
type Node struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Path        string         `json:"path" yaml:"path"`
	IsDirectory bool           `json:"isDirectory" yaml:"is_directory"`
	Children    []*Node        `json:"children,omitempty" yaml:"children,omitempty"`
	Meta        map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"` // opaque to the engine
}

// isFolder is the directory test used by the bulk expansion utilities:
// a non-empty children list or an explicit directory flag.
func (n *Node) isFolder() bool {
	return len(n.Children) > 0 || n.IsDirectory
}

// Expandable reports whether the node renders as an internal node. A non-nil
// children list marks it expandable even when empty.
func (n *Node) Expandable() bool {
	return n.Children != nil
}

// WrapRoot wraps forest in a synthetic directory node whose id is RootID.
func WrapRoot(name, path string, forest []*Node) *Node {
	children := forest
	if children == nil {
		children = []*Node{}
	}
	return &Node{
		ID:          RootID,
		Name:        name,
		Path:        path,
		IsDirectory: true,
		Children:    children,
	}
}

// Visit is called for each node during Walk with its depth (0 for forest roots).
// Returning false skips the node's children.
type Visit func(n *Node, depth int) bool

type frame struct {
	node  *Node
	depth int
}

// Walk visits the forest depth-first in pre-order using an explicit stack.
// Nil nodes are skipped and a node reachable twice is visited once.
func Walk(forest []*Node, fn Visit) {
	stack := make([]frame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: forest[i]})
	}
	seen := make(map[*Node]struct{})

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node == nil {
			continue
		}
		if _, ok := seen[f.node]; ok {
			continue
		}
		seen[f.node] = struct{}{}

		if !fn(f.node, f.depth) {
			continue
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.Children[i], depth: f.depth + 1})
		}
	}
}

// FindByID returns the first node with the given id, or nil.
func FindByID(forest []*Node, id string) *Node {
	var found *Node
	Walk(forest, func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByPath returns the first node whose Path equals path, or nil.
func FindByPath(forest []*Node, path string) *Node {
	var found *Node
	Walk(forest, func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.Path == path {
			found = n
			return false
		}
		return true
	})
	return found
}

// IDsForPaths maps paths onto the ids of the nodes carrying them in forest.
// It is used to carry a selection made in one forest over to another forest
// that holds the same files under different ids. Unknown paths are dropped.
func IDsForPaths(forest []*Node, paths []string) IDSet {
	want := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		want[p] = struct{}{}
	}
	var ids []string
	Walk(forest, func(n *Node, _ int) bool {
		if _, ok := want[n.Path]; ok && n.Path != "" {
			ids = append(ids, n.ID)
		}
		return true
	})
	return NewIDSet(ids...)
}

// PathsForIDs is the inverse of IDsForPaths.
func PathsForIDs(forest []*Node, ids IDSet) []string {
	want := ids.index()
	var paths []string
	Walk(forest, func(n *Node, _ int) bool {
		if _, ok := want[n.ID]; ok && n.Path != "" {
			paths = append(paths, n.Path)
		}
		return true
	})
	return paths
}

// Stale returns the ids of set that do not name any node in forest. RootID is
// never reported. Stale ids are harmless; this exists for diagnostics only.
func Stale(forest []*Node, set IDSet) []string {
	present := make(map[string]struct{})
	Walk(forest, func(n *Node, _ int) bool {
		present[n.ID] = struct{}{}
		return true
	})
	var stale []string
	for _, id := range set {
		if id == RootID {
			continue
		}
		if _, ok := present[id]; !ok {
			stale = append(stale, id)
		}
	}
	return stale
}

// DropUnder returns ids without root and every id below it, for path-shaped
// ids. It is used after a folder is removed from disk.
func DropUnder(ids IDSet, root string) IDSet {
	prefix := root + string(filepath.Separator)
	out := IDSet{}
	for _, id := range ids {
		if id == root || strings.HasPrefix(id, prefix) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Count returns the number of directories and files in the forest.
func Count(forest []*Node) (dirs, files int) {
	Walk(forest, func(n *Node, _ int) bool {
		if n.isFolder() {
			dirs++
		} else {
			files++
		}
		return true
	})
	return dirs, files
}

package tree

// ToggleSelect flips the selection of item. A nil item leaves the selection unchanged.
// No directory filtering happens here; callers decide which nodes may be selected.
func ToggleSelect(item *Node, selected IDSet) IDSet {
	if item == nil {
		return selected
	}
	if selected.Contains(item.ID) {
		return selected.Without(item.ID)
	}
	return selected.With(item.ID)
}

// ToggleExpand sets the expansion of a single id.
func ToggleExpand(id string, expanding bool, expanded IDSet) IDSet {
	if expanding {
		return expanded.With(id)
	}
	return expanded.Without(id)
}

// CollapseAll returns an empty expansion set.
func CollapseAll() IDSet {
	return IDSet{}
}

// CollectDirectoryIDs returns the ids of every folder in the forest, depth-first
// in pre-order. A node counts as a folder when it has children or carries the
// directory flag; only folders are descended into.
func CollectDirectoryIDs(forest []*Node) []string {
	var ids []string
	Walk(forest, func(n *Node, _ int) bool {
		if !n.isFolder() {
			return false
		}
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// ExpandAllIDs returns the ids of every node with a children list, empty or not.
// This is what a view shows when told to render fully expanded without an
// external expansion set, and it is intentionally looser than CollectDirectoryIDs.
func ExpandAllIDs(forest []*Node) IDSet {
	var ids []string
	Walk(forest, func(n *Node, _ int) bool {
		if !n.Expandable() {
			return false
		}
		ids = append(ids, n.ID)
		return true
	})
	return NewIDSet(ids...)
}

// AllExpanded reports whether every folder of the forest is in expanded.
// An empty forest is trivially fully expanded.
func AllExpanded(forest []*Node, expanded IDSet) bool {
	return expanded.ContainsAll(CollectDirectoryIDs(forest))
}

// ToggleExpandAll collapses everything when every folder is already expanded,
// otherwise it replaces the expansion with every folder id (plus RootID when
// includeRoot is set). Ids outside the folder set are discarded on expand.
func ToggleExpandAll(forest []*Node, expanded IDSet, includeRoot bool) IDSet {
	dirs := CollectDirectoryIDs(forest)
	if expanded.ContainsAll(dirs) {
		return IDSet{}
	}
	if includeRoot {
		return NewIDSet(append([]string{RootID}, dirs...)...)
	}
	return NewIDSet(dirs...)
}

// ancestry is a persistent parent chain; siblings share their parent's link.
type ancestry struct {
	id     string
	parent *ancestry
}

// ids returns the chain from the outermost ancestor down to the nearest one.
func (a *ancestry) ids() []string {
	var out []string
	for l := a; l != nil; l = l.parent {
		out = append(out, l.id)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

type pathFrame struct {
	node      *Node
	ancestors *ancestry
}

// PathsToSelected returns the ids of every ancestor of every selected node.
// Selected nodes themselves are not included, and a selected forest root
// contributes nothing.
func PathsToSelected(forest []*Node, selected IDSet) IDSet {
	if len(selected) == 0 {
		return IDSet{}
	}
	want := selected.index()

	stack := make([]pathFrame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, pathFrame{node: forest[i]})
	}
	seen := make(map[*Node]struct{})

	var paths []string
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

		if _, ok := want[f.node.ID]; ok {
			paths = append(paths, f.ancestors.ids()...)
		}
		if len(f.node.Children) == 0 {
			continue
		}
		chain := &ancestry{id: f.node.ID, parent: f.ancestors}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, pathFrame{node: f.node.Children[i], ancestors: chain})
		}
	}
	return NewIDSet(paths...)
}

// ExpandToSelected adds the ancestors of every selected node to expanded, and
// RootID when includeRoot is set. Existing expansion is kept. An empty
// selection returns expanded unchanged.
func ExpandToSelected(forest []*Node, selected, expanded IDSet, includeRoot bool) IDSet {
	if len(selected) == 0 {
		return expanded
	}
	paths := PathsToSelected(forest, selected)
	if includeRoot {
		return IDSet{RootID}.Union(expanded, paths)
	}
	return expanded.Union(paths)
}

// AreAllSelectedPathsExpanded reports whether ExpandToSelected would be a no-op
// for display purposes. It is vacuously true for an empty selection. When any
// ancestor exists, RootID must be expanded as well.
func AreAllSelectedPathsExpanded(forest []*Node, selected, expanded IDSet) bool {
	if len(selected) == 0 {
		return true
	}
	paths := PathsToSelected(forest, selected)
	if !expanded.ContainsAll(paths) {
		return false
	}
	return len(paths) == 0 || expanded.Contains(RootID)
}

package tree

// Row is one visible line of a rendered forest.
type Row struct {
	Node     *Node
	Depth    int
	Expanded bool
	Selected bool
}

// Flatten returns the rows visible under the given state: every forest root,
// plus the children of each expandable node whose id is in expanded.
func Flatten(forest []*Node, st State) []Row {
	exp := st.Expanded.index()
	sel := st.Selected.index()

	var rows []Row
	Walk(forest, func(n *Node, depth int) bool {
		_, open := exp[n.ID]
		_, picked := sel[n.ID]
		rows = append(rows, Row{Node: n, Depth: depth, Expanded: open && n.Expandable(), Selected: picked})
		return open
	})
	return rows
}

// FlattenMatching returns rows for every node accepted by match together with
// all of its ancestors, shown as if expanded. It ignores the expansion set so a
// filter can reveal matches inside collapsed folders without changing state.
func FlattenMatching(forest []*Node, st State, match func(*Node) bool) []Row {
	keep := make(map[string]struct{})

	stack := make([]pathFrame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, pathFrame{node: forest[i]})
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

		if match(f.node) {
			keep[f.node.ID] = struct{}{}
			for l := f.ancestors; l != nil; l = l.parent {
				if _, done := keep[l.id]; done {
					break
				}
				keep[l.id] = struct{}{}
			}
		}
		chain := &ancestry{id: f.node.ID, parent: f.ancestors}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, pathFrame{node: f.node.Children[i], ancestors: chain})
		}
	}

	sel := st.Selected.index()
	var rows []Row
	Walk(forest, func(n *Node, depth int) bool {
		if _, ok := keep[n.ID]; !ok {
			return false
		}
		_, picked := sel[n.ID]
		rows = append(rows, Row{Node: n, Depth: depth, Expanded: n.Expandable(), Selected: picked})
		return true
	})
	return rows
}

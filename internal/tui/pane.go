package tui

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/tormodhaugland/gsxpm/internal/tree"
)

// pane is one tree view. Its state lives wherever the controller's bindings
// point: in the pane itself (owned) or in the app model (bound).
type pane struct {
	title    string
	ctrl     *tree.Controller
	scroller *rowScroller
	filter   string
	empty    string // shown when the forest has no nodes
}

func newPane(title string, ctrl *tree.Controller, height int) *pane {
	p := &pane{title: title, ctrl: ctrl, scroller: newRowScroller(nil, height)}
	p.refresh()
	return p
}

// setForest swaps the forest after a reload and keeps the cursor in place.
func (p *pane) setForest(forest []*tree.Node) {
	p.ctrl.Forest = forest
	p.refresh()
}

// refresh recomputes the visible rows from the current state and filter.
func (p *pane) refresh() {
	if p.filter == "" {
		p.scroller.update(p.ctrl.Rows())
		return
	}
	matched := fuzzyMatches(p.ctrl.Forest, p.filter)
	p.scroller.update(tree.FlattenMatching(p.ctrl.Forest, p.ctrl.State(), func(n *tree.Node) bool {
		_, ok := matched[n.ID]
		return ok
	}))
}

func (p *pane) setFilter(query string) {
	p.filter = query
	p.refresh()
	if query != "" {
		p.scroller.moveToTop()
	}
}

// fuzzyMatches returns the ids of every node whose name matches query.
func fuzzyMatches(forest []*tree.Node, query string) map[string]struct{} {
	var names []string
	var ids []string
	tree.Walk(forest, func(n *tree.Node, _ int) bool {
		names = append(names, n.Name)
		ids = append(ids, n.ID)
		return true
	})
	matched := make(map[string]struct{})
	for _, m := range fuzzy.Find(query, names) {
		matched[ids[m.Index]] = struct{}{}
	}
	return matched
}

// handleKey applies a browse key. It reports whether the key was consumed.
func (p *pane) handleKey(k string) bool {
	cur := p.scroller.current()
	switch k {
	case "up", "k":
		p.scroller.moveUp()
		return true
	case "down", "j":
		p.scroller.moveDown()
		return true
	case "g", "home":
		p.scroller.moveToTop()
		return true
	case "G", "end":
		p.scroller.moveToBottom()
		return true
	case "enter":
		if cur != nil && cur.Expandable() {
			p.ctrl.Expand(cur.ID, !p.ctrl.Expanded().Contains(cur.ID))
		}
	case "right", "l":
		if cur != nil && cur.Expandable() {
			p.ctrl.Expand(cur.ID, true)
		}
	case "left", "h":
		if cur == nil {
			return true
		}
		if cur.Expandable() && p.ctrl.Expanded().Contains(cur.ID) {
			p.ctrl.Expand(cur.ID, false)
		} else {
			p.moveToParent()
			return true
		}
	case " ":
		p.ctrl.Activate(cur)
	case "E":
		p.ctrl.ToggleAll()
	case "s":
		if !p.ctrl.CanExpandToSelection() {
			return true
		}
		p.ctrl.ExpandToSelection()
	case "c":
		p.ctrl.CollapseAll()
	default:
		return false
	}
	p.refresh()
	return true
}

// moveToParent moves the cursor to the closest shallower row above it.
func (p *pane) moveToParent() {
	s := p.scroller
	if s.cursor <= 0 || s.cursor >= len(s.rows) {
		return
	}
	depth := s.rows[s.cursor].Depth
	for i := s.cursor - 1; i >= 0; i-- {
		if s.rows[i].Depth < depth {
			s.moveTo(i)
			return
		}
	}
}

func (p *pane) render(width, height int, active bool) string {
	var b strings.Builder

	header := p.title
	if sel := p.selectedHere(); sel > 0 {
		header = fmt.Sprintf("%s (%d selected)", header, sel)
	}
	b.WriteString(headerStyle.Render(header) + "\n")
	if p.filter != "" {
		b.WriteString(helpStyle.Render("filter: "+p.filter) + "\n")
	}

	if len(p.ctrl.Forest) == 0 {
		msg := p.empty
		if msg == "" {
			msg = "(empty)"
		}
		b.WriteString(dimStyle.Render(msg) + "\n")
	}

	start, end := p.scroller.visibleRange()
	for i := start; i < end; i++ {
		b.WriteString(renderRow(p.scroller.rows[i], p.scroller.isCursor(i) && active) + "\n")
	}
	if n := len(p.scroller.rows); n > p.scroller.height {
		b.WriteString(helpStyle.Render(fmt.Sprintf("(%d/%d)", p.scroller.cursor+1, n)))
	}

	style := paneStyle
	if active {
		style = activePane
	}
	return style.Width(width).Height(height).Render(b.String())
}

// selectedHere counts selected ids that name a node of this pane.
func (p *pane) selectedHere() int {
	sel := p.ctrl.Selected()
	if len(sel) == 0 {
		return 0
	}
	n := 0
	tree.Walk(p.ctrl.Forest, func(node *tree.Node, _ int) bool {
		if sel.Contains(node.ID) {
			n++
		}
		return true
	})
	return n
}

func renderRow(r tree.Row, cursor bool) string {
	indent := strings.Repeat("  ", r.Depth)

	icon := "  "
	if r.Node.Expandable() {
		if r.Expanded {
			icon = "▼ "
		} else {
			icon = "▶ "
		}
	}

	marker := "  "
	if r.Selected {
		marker = "● "
	}

	var name string
	switch {
	case r.Node.Expandable() || r.Node.IsDirectory:
		name = dirStyle.Render(r.Node.Name + "/")
	case r.Selected:
		name = pickedStyle.Render(r.Node.Name)
	default:
		name = fileStyle.Render(r.Node.Name)
	}

	line := indent + marker + icon + name
	if cursor {
		line = cursorStyle.Render(line)
	}
	return line
}

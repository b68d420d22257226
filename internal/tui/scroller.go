package tui

import (
	"path/filepath"

	"github.com/tormodhaugland/gsxpm/internal/tree"
)

// rowScroller manages the cursor and scroll state for a flattened tree.
type rowScroller struct {
	rows         []tree.Row
	cursor       int
	scrollOffset int
	height       int // visible lines for scrolling
}

func newRowScroller(rows []tree.Row, visibleHeight int) *rowScroller {
	return &rowScroller{rows: rows, height: visibleHeight}
}

// update replaces the rows, keeping the cursor on the same node when it is
// still visible.
func (s *rowScroller) update(rows []tree.Row) {
	var current *tree.Node
	if n := s.current(); n != nil {
		current = n
	}
	s.rows = rows
	if current != nil && s.selectByID(current.ID, current.Path) {
		return
	}
	if s.cursor >= len(s.rows) {
		s.cursor = len(s.rows) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	s.ensureVisible()
}

// selectByID moves the cursor to the node with id. When it is gone the cursor
// moves to a sibling in the same folder, then to the nearest ancestor that is
// still shown. Returns false when nothing matched.
func (s *rowScroller) selectByID(id, path string) bool {
	if len(s.rows) == 0 {
		return false
	}
	for i, r := range s.rows {
		if r.Node.ID == id {
			s.moveTo(i)
			return true
		}
	}
	if path == "" {
		return false
	}

	parentDir := filepath.Dir(path)
	if parentDir != "" && parentDir != "/" && parentDir != "." {
		for i, r := range s.rows {
			if r.Node.Path != "" && filepath.Dir(r.Node.Path) == parentDir {
				s.moveTo(i)
				return true
			}
		}
	}

	for path != "" && path != "/" && path != "." {
		path = filepath.Dir(path)
		for i, r := range s.rows {
			if r.Node.Path == path {
				s.moveTo(i)
				return true
			}
		}
	}
	return false
}

func (s *rowScroller) moveTo(i int) {
	s.cursor = i
	s.ensureVisible()
}

func (s *rowScroller) setHeight(height int) {
	s.height = height
	s.ensureVisible()
}

func (s *rowScroller) moveUp() {
	if s.cursor > 0 {
		s.cursor--
		s.ensureVisible()
	}
}

func (s *rowScroller) moveDown() {
	if s.cursor < len(s.rows)-1 {
		s.cursor++
		s.ensureVisible()
	}
}

func (s *rowScroller) moveToTop() {
	s.cursor = 0
	s.scrollOffset = 0
}

func (s *rowScroller) moveToBottom() {
	if len(s.rows) > 0 {
		s.cursor = len(s.rows) - 1
		s.ensureVisible()
	}
}

func (s *rowScroller) ensureVisible() {
	if s.height <= 0 {
		return
	}
	if s.cursor < s.scrollOffset {
		s.scrollOffset = s.cursor
	}
	if s.cursor >= s.scrollOffset+s.height {
		s.scrollOffset = s.cursor - s.height + 1
	}
	if last := len(s.rows) - s.height; last >= 0 && s.scrollOffset > last {
		s.scrollOffset = last
	}
}

// visibleRange returns the start and end indices of visible rows.
func (s *rowScroller) visibleRange() (start, end int) {
	start = s.scrollOffset
	end = s.scrollOffset + s.height
	if end > len(s.rows) {
		end = len(s.rows)
	}
	if start > end {
		start = end
	}
	return start, end
}

// current returns the node under the cursor, nil when there are no rows.
func (s *rowScroller) current() *tree.Node {
	if s.cursor < 0 || s.cursor >= len(s.rows) {
		return nil
	}
	return s.rows[s.cursor].Node
}

func (s *rowScroller) isCursor(i int) bool {
	return i == s.cursor
}

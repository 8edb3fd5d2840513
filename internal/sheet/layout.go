package sheet

import (
	"github.com/charmbracelet/x/ansi"
)

// NVisibleRows returns the number of rows that fit in the current window:
// the rows laid out by the last draw, or the window height minus the header
// lines when no draw has happened yet. The status line lives outside the
// window, so no bottom line is reserved.
func (s *Sheet) NVisibleRows() int {
	if len(s.RowLayout) > 0 {
		return len(s.RowLayout)
	}
	n := s.windowHeight - s.HeaderRows()
	if n < 0 {
		n = 0
	}
	return n
}

// VisibleRows returns the slice of rows currently on screen.
func (s *Sheet) VisibleRows() []Row {
	if s.NRows() == 0 {
		return nil
	}
	top := s.TopRowIndex
	if top < 0 {
		top = 0
	}
	if top >= s.NRows() {
		return nil
	}
	end := top + s.NVisibleRows()
	if end > s.NRows() {
		end = s.NRows()
	}
	return s.Rows[top:end]
}

// CalcColLayout walks visible columns left to right from the current left
// offset, computing the screen-x/width map and the rightmost visible column
// index. Key columns are always included regardless of offset. Columns with
// unset width are computed once from the widest visible row, capped to
// default_width unless they are the last column.
func (s *Sheet) CalcColLayout() {
	minColWidth := ansi.StringWidth(s.opts.String("disp_more_left")) + ansi.StringWidth(s.opts.String("disp_more_right"))
	sepColWidth := ansi.StringWidth(s.opts.String("disp_column_sep"))
	winWidth := s.windowWidth

	s.VisibleColLayout = make(map[int]ColGeom)
	vcols := s.VisibleCols()
	x := 0
	vcolidx := 0
	for i := 0; i < len(vcols); i++ {
		vcolidx = i
		col := vcols[i]
		if col.Width == 0 && len(s.VisibleRows()) > 0 {
			// Delayed width-finding: measure the materialized rows once.
			col.Width = col.MaxDisplayWidth(s.VisibleRows()) + minColWidth
			if i != len(vcols)-1 { // let the last column fill remaining space
				if def := s.opts.Int("default_width"); col.Width > def {
					col.Width = def
				}
			}
		}
		width := col.Width
		if width == 0 {
			width = s.opts.Int("default_width")
		}
		if col.Key && width < 1 {
			width = 1 // key columns must all be visible
		}
		if col.Key || i >= s.LeftVisibleColIndex {
			w := width
			if w > winWidth-x {
				w = winWidth - x
			}
			s.VisibleColLayout[i] = ColGeom{X: x, W: w}
			x += width + sepColWidth
		}
		if x > winWidth-1 {
			break
		}
	}

	s.RightVisibleColIndex = vcolidx
}

// CheckCursor keeps the cursor within the data and scrolls the viewport so
// the cursor stays on screen. Invoked after every action that might move
// the cursor or change the row/column set.
func (s *Sheet) CheckCursor() {
	if s.NRows() == 0 || s.CursorRowIndex <= 0 {
		s.CursorRowIndex = 0
	} else if s.CursorRowIndex >= s.NRows() {
		s.CursorRowIndex = s.NRows() - 1
	}

	if s.CursorVisibleColIndex <= 0 {
		s.CursorVisibleColIndex = 0
	} else if s.CursorVisibleColIndex >= s.NVisibleCols() {
		s.CursorVisibleColIndex = s.NVisibleCols() - 1
	}

	if s.TopRowIndex <= 0 {
		s.TopRowIndex = 0
	} else if s.TopRowIndex > s.NRows()-1 {
		s.TopRowIndex = s.NRows() - 1
	}

	// (x, y) is the cursor cell relative to the viewport.
	x := s.CursorVisibleColIndex - s.LeftVisibleColIndex
	y := s.CursorRowIndex - s.TopRowIndex + s.HeaderRows()

	if y < s.HeaderRows() {
		s.TopRowIndex = s.CursorRowIndex
	} else if y > s.HeaderRows()+s.NVisibleRows()-1 {
		s.TopRowIndex = s.CursorRowIndex - s.NVisibleRows() + 1
	}

	if x <= 0 {
		s.LeftVisibleColIndex = s.CursorVisibleColIndex
		return
	}

	for {
		if s.LeftVisibleColIndex == s.CursorVisibleColIndex {
			break // not much more we can do
		}
		s.CalcColLayout()
		if len(s.VisibleColLayout) == 0 {
			break
		}
		mincolidx, maxcolidx := layoutBounds(s.VisibleColLayout)
		// When the cursor is far outside the laid-out range, step by half
		// the distance (minimum one column) instead of walking one column
		// at a time.
		if s.CursorVisibleColIndex < mincolidx {
			s.LeftVisibleColIndex -= maxInt((mincolidx-s.CursorVisibleColIndex)/2, 1)
			continue
		}
		if s.CursorVisibleColIndex > maxcolidx {
			s.LeftVisibleColIndex += maxInt((s.CursorVisibleColIndex-maxcolidx)/2, 1)
			continue
		}

		cur := s.VisibleColLayout[s.CursorVisibleColIndex]
		if cur.X+cur.W < s.windowWidth {
			break // cursor column fits entirely on screen
		}
		s.LeftVisibleColIndex++ // within bounds: walk one column at a time
	}
}

// PageLeft re-justifies the viewport one screen to the left. The left
// offset and cursor shift in lock-step until the previous right-edge column
// becomes the new left edge or the window reaches the leftmost non-key
// column. If the rightmost column is the sheet's last, the left offset is
// then pulled further left while the last column still renders at full
// width, maximizing screen use without clipping it.
func (s *Sheet) PageLeft() {
	targetIdx := s.LeftVisibleColIndex // for rightmost column

	nonKey := s.NonKeyVisibleCols()
	if len(nonKey) == 0 {
		return
	}
	firstNonKeyVisibleColIndex := -1
	for i, c := range s.VisibleCols() {
		if c == nonKey[0] {
			firstNonKeyVisibleColIndex = i
			break
		}
	}
	if firstNonKeyVisibleColIndex < 0 {
		return
	}

	for s.RightVisibleColIndex != targetIdx && s.LeftVisibleColIndex > firstNonKeyVisibleColIndex {
		s.CursorVisibleColIndex--
		s.LeftVisibleColIndex--
		s.CalcColLayout() // recompute RightVisibleColIndex
	}

	if s.RightVisibleColIndex == s.NVisibleCols()-1 {
		for s.LeftVisibleColIndex > 0 {
			rightcol := s.VisibleCols()[s.RightVisibleColIndex]
			if rightcol.Width > s.VisibleColLayout[s.RightVisibleColIndex].W {
				// went too far
				s.CursorVisibleColIndex++
				s.LeftVisibleColIndex++
				break
			}
			s.CursorVisibleColIndex--
			s.LeftVisibleColIndex--
			s.CalcColLayout()
		}
	}
}

// VisibleColAtX returns the visible-column index drawn at screen x, or -1.
func (s *Sheet) VisibleColAtX(x int) int {
	for vcolidx, geom := range s.VisibleColLayout {
		if geom.X <= x && x <= geom.X+geom.W {
			return vcolidx
		}
	}
	return -1
}

// VisibleRowAtY returns the row index drawn at screen y, or -1.
func (s *Sheet) VisibleRowAtY(y int) int {
	for rowidx, geom := range s.RowLayout {
		if geom.Y <= y && y <= geom.Y+geom.H-1 {
			return rowidx
		}
	}
	return -1
}

// IsVisibleIdxKey reports whether the given visible-column index is a key
// column.
func (s *Sheet) IsVisibleIdxKey(vcolidx int) bool {
	vcols := s.VisibleCols()
	if vcolidx < 0 || vcolidx >= len(vcols) {
		return false
	}
	return vcols[vcolidx].Key
}

func layoutBounds(layout map[int]ColGeom) (minIdx, maxIdx int) {
	first := true
	for i := range layout {
		if first {
			minIdx, maxIdx = i, i
			first = false
			continue
		}
		if i < minIdx {
			minIdx = i
		}
		if i > maxIdx {
			maxIdx = i
		}
	}
	return minIdx, maxIdx
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

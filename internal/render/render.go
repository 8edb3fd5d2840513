package render

import (
	"sort"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/gridsheet/gridsheet/internal/colorize"
	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/screen"
	"github.com/gridsheet/gridsheet/internal/sheet"
)

// columnFill pads the cell in front of the value, reserving room for the
// more-left indicator.
const columnFill = " "

// Renderer paints sheets onto a screen using the colorizer resolver for
// styling and the option store for glyphs.
type Renderer struct {
	opts *options.Store
	res  *colorize.Resolver
}

// New returns a renderer over the given options and resolver.
func New(opts *options.Store, res *colorize.Resolver) *Renderer {
	return &Renderer{opts: opts, res: res}
}

type displine struct {
	col   *sheet.Column
	cell  sheet.Cell
	lines []string
}

// Draw renders the entire sheet onto the screen: headers, then rows until
// the window is full. An empty sheet (no columns) draws nothing.
func (r *Renderer) Draw(scr screen.Screen, s *sheet.Sheet) {
	scr.Erase()

	// Conservative per-draw invalidation: cursor and terminal state that
	// the caches depend on may have changed since the last frame.
	s.InvalidateCaches()

	if s.NCols() == 0 {
		return
	}

	width, height := scr.Size()
	s.SetWindowSize(width, height)

	s.RowLayout = make(map[int]sheet.RowGeom)
	s.CalcColLayout()
	s.CheckCursor()

	numHeaderRows := s.HeaderRows()
	for _, vcolidx := range sortedKeys(s.VisibleColLayout) {
		r.drawColHeader(scr, s, 0, numHeaderRows, vcolidx)
	}

	y := numHeaderRows

	top := s.TopRowIndex
	end := top + s.NVisibleRows()
	if end > s.NRows() {
		end = s.NRows()
	}
	for rowidx := top; rowidx < end; rowidx++ {
		if y >= height {
			break
		}
		row := s.Rows[rowidx]
		rowattr := r.res.Colorize(s, nil, row, nil)
		y += r.drawRow(scr, s, row, rowidx, y, rowattr, height-y)
	}

	if s.RightVisibleColIndex+1 < s.NVisibleCols() {
		sepattr := r.res.OptionAttr("color_column_sep")
		scr.ClipDraw(0, width-2, r.opts.String("disp_more_right"), sepattr.Style(), 2)
	}
}

// drawColHeader composes and draws the column header for one visible
// column: stacked name lines bottom-aligned, the truncator on overflow,
// the type icon in the last line, and the column separator.
func (r *Renderer) drawColHeader(scr screen.Screen, s *sheet.Sheet, y, h, vcolidx int) {
	vcols := s.VisibleCols()
	if vcolidx >= len(vcols) {
		return
	}
	col := vcols[vcolidx]
	winWidth, _ := s.WindowSize()

	sepattr := r.res.OptionAttr("color_column_sep")

	hdrattr := r.res.Colorize(s, col, nil, nil)
	if vcolidx == s.CursorVisibleColIndex {
		hdrattr = hdrattr.Update(r.res.OptionAttr("color_current_hdr"), 2)
	}

	sep := r.opts.String("disp_column_sep")
	keyCols := s.KeyCols()
	if (len(keyCols) > 0 && col == keyCols[len(keyCols)-1]) || vcolidx == s.RightVisibleColIndex {
		sep = r.opts.String("disp_keycol_sep")
	}

	geom, ok := s.VisibleColLayout[vcolidx]
	if !ok {
		return
	}
	x, colwidth := geom.X, geom.W

	truncator := r.opts.String("disp_truncator")
	hdrs := strings.Split(col.Name, "\n")
	for i := 0; i < h; i++ {
		name := " " // save room at front for the more-left indicator
		if j := len(hdrs) - h + i; j >= 0 && j < len(hdrs) {
			name += hdrs[j]
		}

		if ansi.StringWidth(name) > colwidth-1 {
			name = ansi.Truncate(name, colwidth-ansi.StringWidth(truncator), "") + truncator
		}

		attr := hdrattr
		if i == h-1 {
			attr = attr.Update(r.res.OptionAttr("color_bottom_hdr"), 5)
		}

		scr.ClipDraw(y+i, x, name, attr.Style(), colwidth)
		scr.OnMouse(y+i, x, 1, colwidth, "button3", "rename-col")

		if sep != "" && x+colwidth+ansi.StringWidth(sep) < winWidth {
			scr.ClipDraw(y+i, x+colwidth, sep, sepattr.Style(), ansi.StringWidth(sep))
		}
	}

	if icon := col.Type.Icon(); icon != "" {
		bottom := hdrattr.Update(r.res.OptionAttr("color_bottom_hdr"), 5)
		scr.ClipDraw(y+h-1, x+colwidth-ansi.StringWidth(icon), icon, bottom.Style(), ansi.StringWidth(icon))
	}

	if vcolidx == s.LeftVisibleColIndex && !col.Key && firstNonKeyIndex(s) >= 0 && vcolidx > firstNonKeyIndex(s) {
		scr.ClipDraw(y, x, r.opts.String("disp_more_left"), sepattr.Style(), ansi.StringWidth(r.opts.String("disp_more_left")))
	}
}

// drawRow paints one row at ybase and returns the number of screen lines it
// used. Cells taller than the chosen row height are truncated with the
// remaining unwrapped tail of the original string on the last line, so
// overflow is never silently dropped.
func (r *Renderer) drawRow(scr screen.Screen, s *sheet.Sheet, row sheet.Row, rowidx, ybase int, rowattr colorize.Attr, maxheight int) int {
	winWidth, _ := s.WindowSize()
	wrapEnabled := r.opts.Bool("textwrap_cells")

	sepattr := rowattr
	cursorRow := rowidx == s.CursorRowIndex
	if cursorRow {
		// Applied here instead of in a colorizer because it depends on
		// the drawn row index.
		sepattr = sepattr.Update(r.res.OptionAttr("color_current_row"), 5)
	}

	vcols := s.VisibleCols()
	displines := make(map[int]*displine)
	for _, vcolidx := range sortedKeys(s.VisibleColLayout) {
		geom := s.VisibleColLayout[vcolidx]
		if geom.X >= winWidth || vcolidx >= len(vcols) {
			continue
		}
		col := vcols[vcolidx]
		cellval := col.GetCell(row)
		if geom.W > 1 && col.Type.Numeric() {
			cellval.Display = rjust(cellval.Display, geom.W-2)
		}
		if cellval.Value == nil {
			cellval.Note = r.opts.String("disp_note_none")
			cellval.NoteColor = "color_note_type"
		}
		displines[vcolidx] = &displine{col: col, cell: cellval, lines: SplitCell(cellval.Display, geom.W-2, wrapEnabled)}
	}

	height := 0
	for _, dl := range displines {
		h := len(dl.lines)
		if capH := dl.col.Height(); h > capH {
			h = capH
		}
		if h > height {
			height = h
		}
	}
	if height > maxheight {
		height = maxheight
	}
	if height < 1 {
		height = 1 // display even empty rows
	}

	s.RowLayout[rowidx] = sheet.RowGeom{Y: ybase, H: height}

	for _, vcolidx := range sortedKeys(displines) {
		dl := displines[vcolidx]
		geom := s.VisibleColLayout[vcolidx]
		x, colwidth := geom.X, geom.W

		attr := r.res.Colorize(s, dl.col, row, dl.cell)
		if cursorRow {
			attr = attr.Update(r.res.OptionAttr("color_current_row"), 5)
		}

		note := dl.cell.Note
		if note != "" {
			noteattr := attr.Update(r.res.OptionAttr(dl.cell.NoteColor), 10)
			nw := ansi.StringWidth(note)
			scr.ClipDraw(ybase, x+colwidth-nw, note, noteattr.Style(), nw)
		}

		lines := dl.lines
		if len(lines) > height {
			// Replace the last visible line with the remaining unwrapped
			// tail of the original string.
			firstn := 0
			for _, l := range lines[:height-1] {
				firstn += len([]rune(l)) + 1
			}
			tail := []rune(dl.cell.Display)
			if firstn < len(tail) {
				lines[height-1] = string(tail[firstn:])
			} else {
				lines[height-1] = ""
			}
			lines = lines[:height]
		} else {
			for len(lines) < height {
				lines = append(lines, "")
			}
		}

		for i, line := range lines {
			y := ybase + i
			sepchars := r.sepGlyph(s, dl.col, vcolidx, i, len(lines))

			w := colwidth
			if note != "" {
				w--
			}
			scr.ClipDraw(y, x, columnFill+line, attr.Style(), w)
			scr.OnMouse(y, x, 1, colwidth, "button3", "edit-cell")

			if x+colwidth+ansi.StringWidth(sepchars) <= winWidth {
				scr.ClipDraw(y, x+colwidth, sepchars, sepattr.Style(), ansi.StringWidth(sepchars))
			}
		}
	}

	return height
}

// sepGlyph selects the separator drawn to the right of a cell line. The
// glyph depends on whether the cell ends the key columns, ends the visible
// area, or is ordinary, crossed with whether the line is the only line or
// the top/middle/bottom of a multi-line cell.
func (r *Renderer) sepGlyph(s *sheet.Sheet, col *sheet.Column, vcolidx, line, nlines int) string {
	pos := "row"
	keyCols := s.KeyCols()
	switch {
	case vcolidx == s.RightVisibleColIndex:
		pos = "end"
	case len(keyCols) > 0 && col == keyCols[len(keyCols)-1]:
		pos = "key"
	}

	if nlines == 1 {
		switch pos {
		case "end":
			return r.opts.String("disp_rowend_sep")
		case "key":
			return r.opts.String("disp_keycol_sep")
		default:
			return r.opts.String("disp_column_sep")
		}
	}

	part := "mid"
	switch line {
	case 0:
		part = "top"
	case nlines - 1:
		part = "bot"
	}
	return r.opts.String("disp_" + pos + part + "_sep")
}

func firstNonKeyIndex(s *sheet.Sheet) int {
	for i, c := range s.VisibleCols() {
		if !c.Key {
			return i
		}
	}
	return -1
}

func rjust(s string, w int) string {
	if pad := w - ansi.StringWidth(s); pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

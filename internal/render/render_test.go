package render_test

import (
	"strings"
	"testing"

	"github.com/gridsheet/gridsheet/internal/colorize"
	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/render"
	"github.com/gridsheet/gridsheet/internal/screen"
	"github.com/gridsheet/gridsheet/internal/sheet"
)

func newRenderer(opts *options.Store) *render.Renderer {
	res := colorize.NewResolver(colorize.NewRegistry(), opts, nil)
	return render.New(opts, res)
}

// twoColSheet has a text column and a numeric column of fixed width.
func twoColSheet(opts *options.Store, nrows int) *sheet.Sheet {
	a := sheet.NewColumn("a", func(row sheet.Row) any { return "aa" })
	a.Width = 6
	n := sheet.NewColumn("n", func(row sheet.Row) any { return 5 })
	n.Width = 6
	n.Type = sheet.IntType
	s := sheet.New("two", opts, a, n)
	rows := make([]sheet.Row, nrows)
	for i := range rows {
		rows[i] = i
	}
	s.SetRows(rows)
	return s
}

func TestDraw_HeadersAndCells(t *testing.T) {
	opts := options.New()
	s := twoColSheet(opts, 2)
	buf := screen.NewBuffer(20, 6)

	newRenderer(opts).Draw(buf, s)
	lines := buf.Plain()

	if !strings.Contains(lines[0], " a") || !strings.Contains(lines[0], " n") {
		t.Errorf("header line = %q, want column names", lines[0])
	}
	// type icon for the numeric column sits at the header's right edge
	if !strings.Contains(lines[0], "#") {
		t.Errorf("header line = %q, want int type icon", lines[0])
	}
	if !strings.Contains(lines[1], "aa") {
		t.Errorf("row line = %q, want cell text", lines[1])
	}
	// numeric cells are right-justified within the column
	if !strings.Contains(lines[1], "   5") {
		t.Errorf("row line = %q, want right-justified number", lines[1])
	}
	// ordinary column separator, and the end separator after the last column
	if !strings.Contains(lines[1], "╵") || !strings.Contains(lines[1], "║") {
		t.Errorf("row line = %q, want column and end separators", lines[1])
	}
}

func TestDraw_FillsBottomWindowRow(t *testing.T) {
	opts := options.New()
	s := twoColSheet(opts, 3)
	buf := screen.NewBuffer(20, 4)

	newRenderer(opts).Draw(buf, s)
	lines := buf.Plain()

	// one header line plus three rows exactly fill the window
	if !strings.Contains(lines[3], "aa") {
		t.Errorf("bottom line = %q, want the third row drawn", lines[3])
	}
}

func TestDraw_EmptySheet(t *testing.T) {
	opts := options.New()
	s := sheet.New("empty", opts)
	buf := screen.NewBuffer(10, 3)

	newRenderer(opts).Draw(buf, s)
	for i, line := range buf.Plain() {
		if strings.TrimSpace(line) != "" {
			t.Errorf("line %d = %q, want blank for column-less sheet", i, line)
		}
	}
}

func TestDraw_MoreRightIndicator(t *testing.T) {
	opts := options.New()
	cols := make([]*sheet.Column, 5)
	for i := range cols {
		c := sheet.NewColumn(string(rune('a'+i)), func(row sheet.Row) any { return "x" })
		c.Width = 8
		cols[i] = c
	}
	s := sheet.New("wide", opts, cols...)
	s.SetRows([]sheet.Row{0})
	buf := screen.NewBuffer(20, 5)

	newRenderer(opts).Draw(buf, s)
	if !strings.Contains(buf.Plain()[0], ">") {
		t.Errorf("header line = %q, want more-right indicator", buf.Plain()[0])
	}
}

func TestDraw_MoreLeftIndicator(t *testing.T) {
	opts := options.New()
	cols := make([]*sheet.Column, 5)
	for i := range cols {
		c := sheet.NewColumn(string(rune('a'+i)), func(row sheet.Row) any { return "x" })
		c.Width = 8
		cols[i] = c
	}
	s := sheet.New("wide", opts, cols...)
	s.SetRows([]sheet.Row{0})
	s.CursorVisibleColIndex = 4
	buf := screen.NewBuffer(20, 5)

	newRenderer(opts).Draw(buf, s)
	if s.LeftVisibleColIndex == 0 {
		t.Fatal("cursor at far right did not scroll the viewport")
	}
	if !strings.Contains(buf.Plain()[0], "<") {
		t.Errorf("header line = %q, want more-left indicator", buf.Plain()[0])
	}
}

func TestDraw_NilValueNote(t *testing.T) {
	opts := options.New()
	c := sheet.NewColumn("v", func(row sheet.Row) any { return nil })
	c.Width = 8
	s := sheet.New("nils", opts, c)
	s.SetRows([]sheet.Row{0})
	buf := screen.NewBuffer(20, 4)

	newRenderer(opts).Draw(buf, s)
	if !strings.Contains(buf.Plain()[1], opts.String("disp_note_none")) {
		t.Errorf("row line = %q, want none-value note glyph", buf.Plain()[1])
	}
}

func TestDraw_MultilineCellWraps(t *testing.T) {
	opts := options.New()
	c := sheet.NewColumn("txt", func(row sheet.Row) any { return "alpha beta" })
	c.Width = 9 // 7 usable cells forces a wrap
	s := sheet.New("tall", opts, c)
	s.SetRows([]sheet.Row{0})
	buf := screen.NewBuffer(20, 6)

	newRenderer(opts).Draw(buf, s)
	lines := buf.Plain()
	if !strings.Contains(lines[1], "alpha") {
		t.Errorf("line 1 = %q, want first wrapped line", lines[1])
	}
	if !strings.Contains(lines[2], "beta") {
		t.Errorf("line 2 = %q, want second wrapped line", lines[2])
	}
	if geom := s.RowLayout[0]; geom.H != 2 {
		t.Errorf("RowLayout[0].H = %d, want 2", geom.H)
	}
}

func TestDraw_RegistersMouseRegions(t *testing.T) {
	opts := options.New()
	s := twoColSheet(opts, 2)
	buf := screen.NewBuffer(20, 6)

	newRenderer(opts).Draw(buf, s)
	if got := buf.CommandAt(0, 1, "button3"); got != "rename-col" {
		t.Errorf("CommandAt(header) = %q, want rename-col", got)
	}
	if got := buf.CommandAt(1, 1, "button3"); got != "edit-cell" {
		t.Errorf("CommandAt(cell) = %q, want edit-cell", got)
	}
}

package sheet_test

import (
	"fmt"
	"testing"

	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/sheet"
	"github.com/gridsheet/gridsheet/internal/testhelpers"
)

// fixedSheet builds a sheet of fixed-width string columns for layout tests.
func fixedSheet(t *testing.T, opts *options.Store, widths []int, nrows int) *sheet.Sheet {
	t.Helper()
	cols := make([]*sheet.Column, len(widths))
	for i, w := range widths {
		i := i
		cols[i] = sheet.NewColumn(fmt.Sprintf("c%d", i), func(row sheet.Row) any {
			return fmt.Sprintf("v%d", i)
		})
		cols[i].Width = w
	}
	s := sheet.New("fixed", opts, cols...)
	rows := make([]sheet.Row, nrows)
	for i := range rows {
		rows[i] = i
	}
	s.SetRows(rows)
	return s
}

func TestCalcColLayout_StopsAtWindowEdge(t *testing.T) {
	opts := options.New()
	s := fixedSheet(t, opts, []int{5, 5, 10}, 10)
	c0, _ := s.ColumnByName("c0")
	c1, _ := s.ColumnByName("c1")
	s.SetKeys(c0, c1)
	s.SetWindowSize(12, 10)

	s.CalcColLayout()

	if s.RightVisibleColIndex != 1 {
		t.Errorf("RightVisibleColIndex = %d, want 1", s.RightVisibleColIndex)
	}
	if got := s.VisibleColLayout[0]; got != (sheet.ColGeom{X: 0, W: 5}) {
		t.Errorf("layout[0] = %+v, want {0 5}", got)
	}
	if got := s.VisibleColLayout[1]; got != (sheet.ColGeom{X: 6, W: 5}) {
		t.Errorf("layout[1] = %+v, want {6 5}", got)
	}
	if _, ok := s.VisibleColLayout[2]; ok {
		t.Error("layout includes column past the window edge")
	}
}

func TestCalcColLayout_KeyColsAlwaysIncluded(t *testing.T) {
	opts := options.New()
	s := fixedSheet(t, opts, []int{4, 6, 6, 6}, 5)
	c0, _ := s.ColumnByName("c0")
	s.SetKeys(c0)
	s.SetWindowSize(20, 10)
	s.LeftVisibleColIndex = 2

	s.CalcColLayout()

	if _, ok := s.VisibleColLayout[0]; !ok {
		t.Error("key column missing from layout when scrolled right")
	}
	if _, ok := s.VisibleColLayout[1]; ok {
		t.Error("non-key column left of the offset included in layout")
	}
	if got := s.VisibleColLayout[2].X; got != 5 {
		t.Errorf("layout[2].X = %d, want 5 (right after key column)", got)
	}
}

func TestCalcColLayout_LastColumnClipped(t *testing.T) {
	opts := options.New()
	s := fixedSheet(t, opts, []int{8, 8, 8}, 5)
	s.SetWindowSize(20, 10)

	s.CalcColLayout()

	if s.RightVisibleColIndex != 2 {
		t.Fatalf("RightVisibleColIndex = %d, want 2", s.RightVisibleColIndex)
	}
	if got := s.VisibleColLayout[2]; got != (sheet.ColGeom{X: 18, W: 2}) {
		t.Errorf("layout[2] = %+v, want clipped {18 2}", got)
	}
}

func TestCalcColLayout_DelayedWidthFinding(t *testing.T) {
	opts := options.New()
	s := testhelpers.PeopleSheet(t, opts, 5)
	s.SetWindowSize(40, 10)

	s.CalcColLayout()

	name, _ := s.ColumnByName("name")
	// widest value "person0" is 7 wide, plus the more-left/right margin
	if name.Width != 9 {
		t.Errorf("name.Width = %d, want 9 (computed from rows)", name.Width)
	}
}

func TestCheckCursor_Clamps(t *testing.T) {
	opts := options.New()
	s := testhelpers.PeopleSheet(t, opts, 5)
	s.SetWindowSize(40, 10)

	s.CursorRowIndex = -3
	s.CursorVisibleColIndex = -1
	s.TopRowIndex = -2
	s.CheckCursor()
	if s.CursorRowIndex != 0 || s.CursorVisibleColIndex != 0 || s.TopRowIndex != 0 {
		t.Errorf("negative positions not clamped to 0: row=%d col=%d top=%d",
			s.CursorRowIndex, s.CursorVisibleColIndex, s.TopRowIndex)
	}

	s.CursorRowIndex = 100
	s.CursorVisibleColIndex = 100
	s.CheckCursor()
	if s.CursorRowIndex != 4 {
		t.Errorf("CursorRowIndex = %d, want 4", s.CursorRowIndex)
	}
	if s.CursorVisibleColIndex != 2 {
		t.Errorf("CursorVisibleColIndex = %d, want 2", s.CursorVisibleColIndex)
	}
}

func TestCheckCursor_VerticalScroll(t *testing.T) {
	opts := options.New()
	s := testhelpers.PeopleSheet(t, opts, 50)
	s.SetWindowSize(40, 12) // 11 data rows after the header

	// cursor above the viewport snaps the top to the cursor
	s.TopRowIndex = 20
	s.CursorRowIndex = 5
	s.CheckCursor()
	if s.TopRowIndex != 5 {
		t.Errorf("TopRowIndex = %d, want 5", s.TopRowIndex)
	}

	// cursor below the viewport scrolls so the cursor is the last row
	s.CursorRowIndex = 30
	s.CheckCursor()
	want := 30 - s.NVisibleRows() + 1
	if s.TopRowIndex != want {
		t.Errorf("TopRowIndex = %d, want %d", s.TopRowIndex, want)
	}
}

func TestCheckCursor_CursorLeftOfViewport(t *testing.T) {
	opts := options.New()
	s := fixedSheet(t, opts, []int{4, 4, 4, 4, 4, 4}, 5)
	s.SetWindowSize(20, 10)
	s.LeftVisibleColIndex = 4
	s.CursorVisibleColIndex = 2

	s.CheckCursor()
	if s.LeftVisibleColIndex != 2 {
		t.Errorf("LeftVisibleColIndex = %d, want 2 (snapped to cursor)", s.LeftVisibleColIndex)
	}
}

func TestCheckCursor_FarRightJump(t *testing.T) {
	opts := options.New()
	widths := make([]int, 10)
	for i := range widths {
		widths[i] = 4
	}
	s := fixedSheet(t, opts, widths, 5)
	s.SetWindowSize(20, 10)
	s.CursorVisibleColIndex = 9

	s.CheckCursor()

	if s.LeftVisibleColIndex != 6 {
		t.Errorf("LeftVisibleColIndex = %d, want 6", s.LeftVisibleColIndex)
	}
	geom, ok := s.VisibleColLayout[9]
	if !ok {
		t.Fatal("cursor column missing from layout after scroll")
	}
	if geom.X+geom.W >= 20 {
		t.Errorf("cursor column not fully on screen: %+v", geom)
	}
}

func TestPageLeft_LockStepShift(t *testing.T) {
	opts := options.New()
	widths := make([]int, 10)
	for i := range widths {
		widths[i] = 4
	}
	s := fixedSheet(t, opts, widths, 5)
	s.SetWindowSize(20, 10)
	s.LeftVisibleColIndex = 6
	s.CursorVisibleColIndex = 6
	s.CalcColLayout()

	s.PageLeft()

	if s.LeftVisibleColIndex != 3 {
		t.Errorf("LeftVisibleColIndex = %d, want 3", s.LeftVisibleColIndex)
	}
	if s.CursorVisibleColIndex != 3 {
		t.Errorf("CursorVisibleColIndex = %d, want 3 (shifted in lock-step)", s.CursorVisibleColIndex)
	}
	if s.RightVisibleColIndex != 6 {
		t.Errorf("RightVisibleColIndex = %d, want 6 (previous left edge at right)", s.RightVisibleColIndex)
	}
}

func TestPageLeft_SqueezeStopsBeforeClippingLastColumn(t *testing.T) {
	opts := options.New()
	widths := []int{4, 4, 4, 4, 4, 4, 4, 4, 4, 10}
	s := fixedSheet(t, opts, widths, 5)
	s.SetWindowSize(20, 10)
	s.LeftVisibleColIndex = 9
	s.CursorVisibleColIndex = 9
	s.CalcColLayout()

	s.PageLeft()

	if s.LeftVisibleColIndex != 7 {
		t.Errorf("LeftVisibleColIndex = %d, want 7", s.LeftVisibleColIndex)
	}
	if s.CursorVisibleColIndex != 7 {
		t.Errorf("CursorVisibleColIndex = %d, want 7", s.CursorVisibleColIndex)
	}
}

func TestVisibleColAtX_VisibleRowAtY(t *testing.T) {
	opts := options.New()
	s := fixedSheet(t, opts, []int{5, 5}, 3)
	s.SetWindowSize(20, 10)
	s.CalcColLayout()

	if got := s.VisibleColAtX(2); got != 0 {
		t.Errorf("VisibleColAtX(2) = %d, want 0", got)
	}
	if got := s.VisibleColAtX(8); got != 1 {
		t.Errorf("VisibleColAtX(8) = %d, want 1", got)
	}
	if got := s.VisibleColAtX(99); got != -1 {
		t.Errorf("VisibleColAtX(99) = %d, want -1", got)
	}

	s.RowLayout[0] = sheet.RowGeom{Y: 1, H: 2}
	s.RowLayout[1] = sheet.RowGeom{Y: 3, H: 1}
	if got := s.VisibleRowAtY(2); got != 0 {
		t.Errorf("VisibleRowAtY(2) = %d, want 0", got)
	}
	if got := s.VisibleRowAtY(3); got != 1 {
		t.Errorf("VisibleRowAtY(3) = %d, want 1", got)
	}
	if got := s.VisibleRowAtY(9); got != -1 {
		t.Errorf("VisibleRowAtY(9) = %d, want -1", got)
	}
}

func TestNVisibleRows(t *testing.T) {
	opts := options.New()
	s := testhelpers.PeopleSheet(t, opts, 3)
	s.SetWindowSize(40, 12)
	// one header line; the status line is not part of the window
	if got := s.NVisibleRows(); got != 11 {
		t.Errorf("NVisibleRows = %d, want 11", got)
	}

	s.RowLayout[0] = sheet.RowGeom{Y: 1, H: 1}
	s.RowLayout[1] = sheet.RowGeom{Y: 2, H: 1}
	if got := s.NVisibleRows(); got != 2 {
		t.Errorf("NVisibleRows = %d with row layout, want 2", got)
	}
}

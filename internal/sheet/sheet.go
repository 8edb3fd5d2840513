package sheet

import (
	"fmt"
	"strings"

	"github.com/gridsheet/gridsheet/internal/options"
)

// Sheet is an ordered sequence of opaque rows and an ordered sequence of
// columns, together with the viewport state used to map them to the screen.
// A prefix of key columns (by flag, not position) is always part of the
// visible set regardless of hidden flags.
type Sheet struct {
	// Name identifies the sheet; command log entries address sheets by
	// name.
	Name string

	// Kind selects the colorizer rule set that applies to this sheet.
	Kind string

	// Rows holds the sheet's records. Replaced wholesale on reload;
	// mutated in place by add/insert/select operations.
	Rows []Row

	// Reloader repopulates Rows from the sheet's source, if it has one.
	Reloader func(s *Sheet) error

	// Cursor and scroll state.
	CursorRowIndex        int
	CursorVisibleColIndex int
	TopRowIndex           int
	LeftVisibleColIndex   int
	RightVisibleColIndex  int // derived by CalcColLayout

	// RowLayout maps row index to (screen y, height), rebuilt per draw.
	RowLayout map[int]RowGeom

	// VisibleColLayout maps visible-column index to (screen x, width),
	// rebuilt by CalcColLayout.
	VisibleColLayout map[int]ColGeom

	cols []*Column
	opts *options.Store

	windowWidth  int
	windowHeight int

	// Cache fields, invalidated by the mutating operations that affect
	// them (column insert/hide/key-toggle, resize).
	visibleCache []*Column
	keyCache     []*Column
	headerRows   int
	cacheValid   bool

	selected  map[uint64]Row
	rowIDs    map[Row]uint64
	nextRowID uint64
}

// RowGeom is the screen position of one row: its top y and height in lines.
type RowGeom struct {
	Y, H int
}

// ColGeom is the screen position of one visible column: its x and width.
type ColGeom struct {
	X, W int
}

// New returns a sheet with the given columns attached.
func New(name string, opts *options.Store, cols ...*Column) *Sheet {
	s := &Sheet{
		Name:             name,
		Kind:             "sheet",
		opts:             opts,
		RowLayout:        make(map[int]RowGeom),
		VisibleColLayout: make(map[int]ColGeom),
		selected:         make(map[uint64]Row),
		rowIDs:           make(map[Row]uint64),
	}
	for _, c := range cols {
		s.AddColumn(c)
	}
	return s
}

// Options returns the sheet's option store.
func (s *Sheet) Options() *options.Store { return s.opts }

// SetWindowSize records the available drawing area and invalidates layout
// caches.
func (s *Sheet) SetWindowSize(width, height int) {
	if width != s.windowWidth || height != s.windowHeight {
		s.windowWidth = width
		s.windowHeight = height
		s.InvalidateCaches()
	}
}

// WindowSize returns the drawing area last given to SetWindowSize.
func (s *Sheet) WindowSize() (width, height int) {
	return s.windowWidth, s.windowHeight
}

// InvalidateCaches drops the visible-column, key-column, and header-row
// caches. Cheap to rebuild, expensive to get wrong: stale width/position
// data corrupts the layout invariants.
func (s *Sheet) InvalidateCaches() {
	s.cacheValid = false
	s.visibleCache = nil
	s.keyCache = nil
	s.headerRows = 0
}

func (s *Sheet) fillCaches() {
	if s.cacheValid {
		return
	}
	s.keyCache = nil
	for _, c := range s.cols {
		if c.Key {
			s.keyCache = append(s.keyCache, c)
		}
	}
	s.visibleCache = append([]*Column(nil), s.keyCache...)
	for _, c := range s.cols {
		if !c.Hidden && !c.Key {
			s.visibleCache = append(s.visibleCache, c)
		}
	}
	s.headerRows = 0
	for _, c := range s.visibleCache {
		if n := len(strings.Split(c.Name, "\n")); n > s.headerRows {
			s.headerRows = n
		}
	}
	s.cacheValid = true
}

// Columns returns all columns in display order, hidden included.
func (s *Sheet) Columns() []*Column { return s.cols }

// VisibleCols returns the key columns followed by the unhidden non-key
// columns. Cached until column structure changes.
func (s *Sheet) VisibleCols() []*Column {
	s.fillCaches()
	return s.visibleCache
}

// KeyCols returns the visible key columns.
func (s *Sheet) KeyCols() []*Column {
	s.fillCaches()
	return s.keyCache
}

// NonKeyVisibleCols returns the unhidden non-key columns.
func (s *Sheet) NonKeyVisibleCols() []*Column {
	var out []*Column
	for _, c := range s.cols {
		if !c.Hidden && !c.Key {
			out = append(out, c)
		}
	}
	return out
}

// HeaderRows returns the number of screen lines occupied by the column
// headers: the tallest stacked column name among visible columns.
func (s *Sheet) HeaderRows() int {
	s.fillCaches()
	return s.headerRows
}

// NRows returns the number of rows.
func (s *Sheet) NRows() int { return len(s.Rows) }

// NCols returns the number of columns, hidden included.
func (s *Sheet) NCols() int { return len(s.cols) }

// NVisibleCols returns the number of visible columns.
func (s *Sheet) NVisibleCols() int { return len(s.VisibleCols()) }

// AddColumn inserts a column at the given position (default append) and
// invalidates the visible-column caches.
func (s *Sheet) AddColumn(col *Column, index ...int) *Column {
	if col == nil {
		return nil
	}
	i := len(s.cols)
	if len(index) > 0 && index[0] >= 0 && index[0] <= len(s.cols) {
		i = index[0]
	}
	col.sheet = s
	s.cols = append(s.cols, nil)
	copy(s.cols[i+1:], s.cols[i:])
	s.cols[i] = col
	s.InvalidateCaches()
	return col
}

// ColumnByName returns the first column whose name matches, or an error.
func (s *Sheet) ColumnByName(name string) (*Column, error) {
	for _, c := range s.cols {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no column matching %q", name)
}

// SetKeys marks the given columns as key columns.
func (s *Sheet) SetKeys(cols ...*Column) {
	for _, c := range cols {
		c.Key = true
	}
	s.InvalidateCaches()
}

// UnsetKeys clears the key flag on the given columns.
func (s *Sheet) UnsetKeys(cols ...*Column) {
	for _, c := range cols {
		c.Key = false
	}
	s.InvalidateCaches()
}

// ToggleKeys flips the key flag on the given columns.
func (s *Sheet) ToggleKeys(cols ...*Column) {
	for _, c := range cols {
		c.Key = !c.Key
	}
	s.InvalidateCaches()
}

// RowKey returns the tuple of typed key-column values for the row: its
// semantic identity, used for cursor restoration and replay addressing.
func (s *Sheet) RowKey(row Row) []any {
	keyCols := s.KeyCols()
	if len(keyCols) == 0 {
		return nil
	}
	key := make([]any, len(keyCols))
	for i, c := range keyCols {
		key[i] = c.TypedValue(row)
	}
	return key
}

// RowID returns a cheap identifier for the row, stable within this session.
// Not semantically meaningful; used only for internal bookkeeping such as
// the selection set.
func (s *Sheet) RowID(row Row) uint64 {
	if id, ok := s.rowIDs[row]; ok {
		return id
	}
	s.nextRowID++
	s.rowIDs[row] = s.nextRowID
	return s.nextRowID
}

// AddRow appends the row, or inserts it at the given index.
func (s *Sheet) AddRow(row Row, index ...int) Row {
	i := len(s.Rows)
	if len(index) > 0 && index[0] >= 0 && index[0] <= len(s.Rows) {
		i = index[0]
	}
	s.Rows = append(s.Rows, nil)
	copy(s.Rows[i+1:], s.Rows[i:])
	s.Rows[i] = row
	return row
}

// DeleteRow removes and returns the row at the given index.
func (s *Sheet) DeleteRow(index int) Row {
	if index < 0 || index >= len(s.Rows) {
		return nil
	}
	row := s.Rows[index]
	s.Rows = append(s.Rows[:index], s.Rows[index+1:]...)
	return row
}

// SetRows replaces all rows wholesale, as a reload does.
func (s *Sheet) SetRows(rows []Row) {
	s.Rows = rows
}

// CursorCol returns the column under the cursor, or nil on an empty sheet.
func (s *Sheet) CursorCol() *Column {
	vcols := s.VisibleCols()
	if len(vcols) == 0 {
		return nil
	}
	i := s.CursorVisibleColIndex
	if i > len(vcols)-1 {
		i = len(vcols) - 1
	}
	if i < 0 {
		i = 0
	}
	return vcols[i]
}

// CursorRow returns the row under the cursor, or nil on an empty sheet.
func (s *Sheet) CursorRow() Row {
	if s.NRows() == 0 || s.CursorRowIndex < 0 || s.CursorRowIndex >= s.NRows() {
		return nil
	}
	return s.Rows[s.CursorRowIndex]
}

// CursorDown moves the cursor down n rows (up if negative).
func (s *Sheet) CursorDown(n int) {
	s.CursorRowIndex += n
}

// CursorRight moves the cursor right n visible columns (left if negative).
func (s *Sheet) CursorRight(n int) {
	s.CursorVisibleColIndex += n
	s.CalcColLayout()
}

// Select adds the row to the selection set.
func (s *Sheet) Select(row Row) {
	s.selected[s.RowID(row)] = row
}

// Unselect removes the row from the selection set.
func (s *Sheet) Unselect(row Row) {
	delete(s.selected, s.RowID(row))
}

// ToggleSelect flips the row's selection state.
func (s *Sheet) ToggleSelect(row Row) {
	if s.IsSelected(row) {
		s.Unselect(row)
	} else {
		s.Select(row)
	}
}

// IsSelected reports whether the row is in the selection set.
func (s *Sheet) IsSelected(row Row) bool {
	_, ok := s.selected[s.RowID(row)]
	return ok
}

// ClearSelection empties the selection set.
func (s *Sheet) ClearSelection() {
	s.selected = make(map[uint64]Row)
}

// NSelected returns the number of selected rows.
func (s *Sheet) NSelected() int { return len(s.selected) }

// SelectedRows returns the selected rows in sheet order.
func (s *Sheet) SelectedRows() []Row {
	var out []Row
	for _, row := range s.Rows {
		if s.IsSelected(row) {
			out = append(out, row)
		}
	}
	return out
}

// Copy returns a design copy: a new sheet with zero rows, independently
// copied key columns first (with the key flag re-established), followed by
// copies of the non-key columns, and cursor/scroll reset to origin.
func (s *Sheet) Copy(name string) *Sheet {
	ns := New(name, s.opts)
	ns.Kind = s.Kind
	ns.windowWidth = s.windowWidth
	ns.windowHeight = s.windowHeight
	for _, c := range s.KeyCols() {
		nc := c.Copy()
		nc.Key = true
		ns.AddColumn(nc)
	}
	keys := make(map[*Column]bool)
	for _, c := range s.KeyCols() {
		keys[c] = true
	}
	for _, c := range s.cols {
		if !keys[c] {
			ns.AddColumn(c.Copy())
		}
	}
	return ns
}

// StatusLine returns a human-readable summary of cursor and size state.
func (s *Sheet) StatusLine() string {
	return fmt.Sprintf("row %d/%d (%d selected)  col %d/%d (%d visible)",
		s.CursorRowIndex, s.NRows(), s.NSelected(),
		s.CursorVisibleColIndex, s.NCols(), s.NVisibleCols())
}

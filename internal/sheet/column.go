// Package sheet provides the tabular data model (sheets, columns, key
// columns, selection) and the grid viewport: cursor position, scroll
// offsets, and the mapping from logical columns and rows to screen
// coordinates.
package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Row is an opaque, externally supplied record. Rows must be comparable
// (pointers, strings, or comparable structs) so they can key the selection
// and row-id maps.
type Row = any

// Type is a column's declared type.
type Type int

const (
	// AnyType leaves values untouched.
	AnyType Type = iota
	// StringType coerces values to strings.
	StringType
	// IntType parses values as integers.
	IntType
	// FloatType parses values as floats.
	FloatType
)

// Icon returns the one-character type indicator drawn in the column header.
func (t Type) Icon() string {
	switch t {
	case StringType:
		return "~"
	case IntType:
		return "#"
	case FloatType:
		return "%"
	default:
		return ""
	}
}

// Numeric reports whether values of this type are right-justified.
func (t Type) Numeric() bool {
	return t == IntType || t == FloatType
}

// Column describes one field of a row: how to extract it, how wide to draw
// it, and whether it participates in the sheet's row key.
type Column struct {
	// Name is the display name. Multi-line names are "\n"-joined and
	// drawn as stacked header lines.
	Name string

	// Type is the declared type of the column's values.
	Type Type

	// Width is the display width in cells. Zero means auto-compute from
	// the visible rows on first draw.
	Width int

	// MaxHeight caps the number of display lines for a multi-line cell.
	// Zero means the default_height option.
	MaxHeight int

	// Hidden excludes the column from the visible set. Key columns are
	// visible regardless.
	Hidden bool

	// Key marks the column as part of the sheet's row key.
	Key bool

	// Getter extracts the raw value for this column from a row.
	Getter func(row Row) any

	// Setter writes a value back to a row. Nil means read-only.
	Setter func(row Row, v any) error

	// sheet is a non-owning back-reference, set when the column is
	// attached; used only for cache invalidation and cell evaluation.
	sheet *Sheet
}

// NewColumn returns a column with the given name and getter.
func NewColumn(name string, getter func(row Row) any) *Column {
	return &Column{Name: name, Getter: getter}
}

// Sheet returns the owning sheet, or nil if the column is unattached.
func (c *Column) Sheet() *Sheet { return c.sheet }

// Copy returns an independent copy of the column, detached from any sheet.
func (c *Column) Copy() *Column {
	nc := *c
	nc.sheet = nil
	return &nc
}

// SetHidden flips the hidden flag and invalidates the owning sheet's
// visible-column caches.
func (c *Column) SetHidden(hidden bool) {
	c.Hidden = hidden
	if c.sheet != nil {
		c.sheet.InvalidateCaches()
	}
}

// Height returns the maximum display height for cells in this column.
func (c *Column) Height() int {
	if c.MaxHeight > 0 {
		return c.MaxHeight
	}
	if c.sheet != nil && c.sheet.opts != nil {
		if h := c.sheet.opts.Int("default_height"); h > 0 {
			return h
		}
	}
	return 1
}

// Cell is the ephemeral per-draw result of evaluating a column on a row.
type Cell struct {
	// Value is the raw value from the getter.
	Value any

	// Typed is the value after type coercion. On a parse failure it
	// holds the error.
	Typed any

	// Display is the formatted display string.
	Display string

	// Note is an optional annotation glyph drawn in the cell's corner.
	Note string

	// NoteColor is the style option name for the note.
	NoteColor string
}

// Value returns the raw value of this column for the given row.
func (c *Column) Value(row Row) any {
	if c.Getter == nil || row == nil {
		return nil
	}
	return c.Getter(row)
}

// TypedValue returns the column's value coerced to its declared type.
func (c *Column) TypedValue(row Row) any {
	v := c.Value(row)
	if v == nil {
		return nil
	}
	switch c.Type {
	case StringType:
		return fmt.Sprint(v)
	case IntType:
		switch n := v.(type) {
		case int:
			return int64(n)
		case int64:
			return n
		case float64:
			return int64(n)
		default:
			parsed, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(v)), 10, 64)
			if err != nil {
				return err
			}
			return parsed
		}
	case FloatType:
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		default:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(v)), 64)
			if err != nil {
				return err
			}
			return parsed
		}
	default:
		return v
	}
}

// DisplayValue returns the formatted display string for the given row.
func (c *Column) DisplayValue(row Row) string {
	v := c.TypedValue(row)
	switch tv := v.(type) {
	case nil:
		return ""
	case error:
		return fmt.Sprint(c.Value(row))
	case float64:
		return strconv.FormatFloat(tv, 'f', 2, 64)
	case string:
		return tv
	default:
		return fmt.Sprint(tv)
	}
}

// GetCell evaluates the column on a row, producing the display value and
// any note annotation for this draw.
func (c *Column) GetCell(row Row) Cell {
	cell := Cell{Value: c.Value(row)}
	cell.Typed = c.TypedValue(row)
	cell.Display = c.DisplayValue(row)
	if _, isErr := cell.Typed.(error); isErr {
		cell.Note = "!"
		cell.NoteColor = "color_error"
	}
	return cell
}

// SetValue writes a value back through the column's setter.
func (c *Column) SetValue(row Row, v any) error {
	if c.Setter == nil {
		return fmt.Errorf("column %q is not modifiable", c.Name)
	}
	return c.Setter(row, v)
}

// MaxDisplayWidth returns the widest rendered width of this column over the
// given rows, including the header lines. Never less than 1.
func (c *Column) MaxDisplayWidth(rows []Row) int {
	w := 1
	for _, line := range strings.Split(c.Name, "\n") {
		if lw := ansi.StringWidth(line); lw > w {
			w = lw
		}
	}
	for _, row := range rows {
		for _, line := range strings.Split(c.DisplayValue(row), "\n") {
			if lw := ansi.StringWidth(line); lw > w {
				w = lw
			}
		}
	}
	return w
}

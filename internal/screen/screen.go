// Package screen defines the render target contract: a fixed-size character
// grid with (row, col) addressing, clipped styled text runs, and named
// command regions for mouse dispatch.
package screen

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Screen is the drawing surface the renderer paints onto.
type Screen interface {
	// Size returns the width and height of the grid in cells.
	Size() (width, height int)

	// Erase clears all cells and registered mouse regions.
	Erase()

	// ClipDraw paints text at (y, x) with the given style, clipped to w
	// cells. Text wider than w is truncated with no indicator; the caller
	// decides how to mark overflow.
	ClipDraw(y, x int, text string, style lipgloss.Style, w int)

	// OnMouse registers the rectangle at (y, x) of size h by w as
	// dispatching the named command when the given mouse button is
	// released inside it.
	OnMouse(y, x, h, w int, button, longname string)
}

// MouseRegion is a clickable rectangle bound to a command longname.
type MouseRegion struct {
	Y, X, H, W int
	Button     string
	Longname   string
}

type cell struct {
	r     rune
	style lipgloss.Style
	cont  bool // continuation cell of a wide rune
}

// Buffer is an in-memory Screen implementation. It backs the interactive
// view (rendered to a string per frame) and the tests.
type Buffer struct {
	width, height int
	cells         [][]cell
	regions       []MouseRegion
}

// NewBuffer returns an erased Buffer of the given size.
func NewBuffer(width, height int) *Buffer {
	b := &Buffer{width: width, height: height}
	b.Erase()
	return b
}

// Size implements Screen.
func (b *Buffer) Size() (int, int) { return b.width, b.height }

// Erase implements Screen.
func (b *Buffer) Erase() {
	b.cells = make([][]cell, b.height)
	for y := range b.cells {
		b.cells[y] = make([]cell, b.width)
		for x := range b.cells[y] {
			b.cells[y][x] = cell{r: ' '}
		}
	}
	b.regions = nil
}

// ClipDraw implements Screen.
func (b *Buffer) ClipDraw(y, x int, text string, style lipgloss.Style, w int) {
	if y < 0 || y >= b.height || x >= b.width || w <= 0 {
		return
	}
	if x+w > b.width {
		w = b.width - x
	}
	text = ansi.Truncate(text, w, "")

	cx := x
	for _, r := range text {
		rw := ansi.StringWidth(string(r))
		if rw <= 0 {
			continue
		}
		if cx+rw > x+w || cx+rw > b.width {
			break
		}
		if cx >= 0 {
			b.cells[y][cx] = cell{r: r, style: style}
			for i := 1; i < rw; i++ {
				b.cells[y][cx+i] = cell{style: style, cont: true}
			}
		}
		cx += rw
	}
}

// OnMouse implements Screen.
func (b *Buffer) OnMouse(y, x, h, w int, button, longname string) {
	b.regions = append(b.regions, MouseRegion{Y: y, X: x, H: h, W: w, Button: button, Longname: longname})
}

// CommandAt returns the longname registered for the given button at (y, x),
// or "" if no region matches. Later registrations win, matching draw order.
func (b *Buffer) CommandAt(y, x int, button string) string {
	for i := len(b.regions) - 1; i >= 0; i-- {
		reg := b.regions[i]
		if reg.Button != button {
			continue
		}
		if y >= reg.Y && y < reg.Y+reg.H && x >= reg.X && x < reg.X+reg.W {
			return reg.Longname
		}
	}
	return ""
}

// Regions returns all registered mouse regions.
func (b *Buffer) Regions() []MouseRegion { return b.regions }

// Plain returns the buffer contents as unstyled lines, one per row.
func (b *Buffer) Plain() []string {
	lines := make([]string, b.height)
	for y, row := range b.cells {
		var sb strings.Builder
		for _, c := range row {
			if c.cont {
				continue
			}
			sb.WriteRune(c.r)
		}
		lines[y] = sb.String()
	}
	return lines
}

// Render returns the buffer contents as styled lines joined by newlines,
// grouping adjacent cells with the same style into single render calls.
func (b *Buffer) Render() string {
	lines := make([]string, b.height)
	for y, row := range b.cells {
		var sb strings.Builder
		var run strings.Builder
		var runStyle lipgloss.Style
		flush := func() {
			if run.Len() > 0 {
				sb.WriteString(runStyle.Render(run.String()))
				run.Reset()
			}
		}
		for x, c := range row {
			if c.cont {
				continue
			}
			if x == 0 || !sameStyle(runStyle, c.style) {
				flush()
				runStyle = c.style
			}
			run.WriteRune(c.r)
		}
		flush()
		lines[y] = sb.String()
	}
	return strings.Join(lines, "\n")
}

func sameStyle(a, b lipgloss.Style) bool {
	return a.String() == b.String() && a.Render("x") == b.Render("x")
}

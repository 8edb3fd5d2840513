// Package colorize resolves per-cell display styling: scope-tagged rules
// registered per sheet kind, applied in precedence order, composed so the
// highest-precedence color wins while non-color attributes merge.
package colorize

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Attr is a composed display attribute: at most one color plus any number
// of merged attribute flags. The zero Attr renders as the terminal default.
type Attr struct {
	// Color is a lipgloss color token ("81", "red"), empty if unset.
	Color string

	Bold      bool
	Underline bool
	Reverse   bool
	Italic    bool

	colorPrec int
}

// namedColors maps the color names accepted in style specs to ANSI indexes.
var namedColors = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
}

// ParseAttr parses a style spec like "bold", "81 cyan", or "bold reverse"
// into an Attr. A numeric token is a 256-color index; a named color is its
// fallback for restricted terminals, so the first color token wins.
func ParseAttr(spec string) Attr {
	var a Attr
	for _, tok := range strings.Fields(spec) {
		switch tok {
		case "normal":
			// no-op
		case "bold":
			a.Bold = true
		case "underline":
			a.Underline = true
		case "reverse":
			a.Reverse = true
		case "italic":
			a.Italic = true
		default:
			if a.Color != "" {
				continue
			}
			if _, err := strconv.Atoi(tok); err == nil {
				a.Color = tok
			} else if idx, ok := namedColors[tok]; ok {
				a.Color = idx
			}
		}
	}
	return a
}

// Update composes another Attr onto this one at the given precedence: the
// color is replaced only when the new precedence is at least as high as the
// one that set the current color, while attribute flags always merge.
func (a Attr) Update(b Attr, prec int) Attr {
	out := a
	if b.Color != "" && (out.Color == "" || prec >= out.colorPrec) {
		out.Color = b.Color
		out.colorPrec = prec
	}
	out.Bold = out.Bold || b.Bold
	out.Underline = out.Underline || b.Underline
	out.Reverse = out.Reverse || b.Reverse
	out.Italic = out.Italic || b.Italic
	return out
}

// Style converts the composed attribute to a lipgloss style.
func (a Attr) Style() lipgloss.Style {
	st := lipgloss.NewStyle()
	if a.Color != "" {
		st = st.Foreground(lipgloss.Color(a.Color))
	}
	if a.Bold {
		st = st.Bold(true)
	}
	if a.Underline {
		st = st.Underline(true)
	}
	if a.Reverse {
		st = st.Reverse(true)
	}
	if a.Italic {
		st = st.Italic(true)
	}
	return st
}

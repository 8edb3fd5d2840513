// Package tui provides the terminal user interface for gridsheet using
// bubbletea: it routes keystrokes and mouse events to grid commands and
// renders the active sheet through the grid renderer.
package tui

import (
	"os"

	"github.com/muesli/termenv"

	"github.com/gridsheet/gridsheet/internal/options"
)

// Theme selects the colour rendering mode.
type Theme string

const (
	// ThemeAuto automatically detects the terminal background colour.
	ThemeAuto Theme = "auto"
	// ThemeDark assumes a dark terminal background.
	ThemeDark Theme = "dark"
	// ThemeLight assumes a light terminal background.
	ThemeLight Theme = "light"
)

// DetectTheme queries the terminal background colour, falling back to dark
// if detection fails.
func DetectTheme() Theme {
	output := termenv.NewOutput(os.Stdout)
	if output.HasDarkBackground() {
		return ThemeDark
	}
	return ThemeLight
}

// ResolveTheme converts ThemeAuto to the detected theme; concrete themes
// are returned unchanged.
func ResolveTheme(configured Theme) Theme {
	if configured == ThemeAuto {
		return DetectTheme()
	}
	return configured
}

// lightColors replaces colour defaults that assume a dark background with
// low-intensity codes that read on a light one.
var lightColors = map[string]string{
	"color_column_sep":   "243 blue",
	"color_key_col":      "25 blue",
	"color_hidden_col":   "250",
	"color_selected_row": "130 red",
	"color_error":        "88 red",
	"color_note_type":    "94 yellow",
}

// ApplyTheme overlays theme-dependent colour defaults onto the option
// store. Options the user has set explicitly keep their values.
func ApplyTheme(th Theme, opts *options.Store) {
	if th != ThemeLight {
		return
	}
	for name, spec := range lightColors {
		opts.SetDefault(name, spec)
	}
}

// ValidTheme checks whether s names a known theme.
func ValidTheme(s string) bool {
	switch Theme(s) {
	case ThemeAuto, ThemeDark, ThemeLight:
		return true
	default:
		return false
	}
}

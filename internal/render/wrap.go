// Package render turns sheet cells into wrapped, styled screen text:
// multi-line cell wrapping, row heights, positional separator glyphs, and
// header painting.
package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SplitCell wraps a cell's display string into lines: embedded line breaks
// split first, then each piece is word-wrapped to width. Words are never
// broken; internal whitespace is preserved when it fits on a line. With
// wrap disabled the string is returned untouched as a single line.
func SplitCell(s string, width int, wrap bool) []string {
	if width <= 0 || !wrap {
		return []string{s}
	}

	var ret []string
	for _, line := range strings.Split(s, "\n") {
		ret = append(ret, wrapLine(line, width)...)
	}
	return ret
}

// wrapLine greedily wraps one line on whitespace boundaries. Whitespace at
// a break point is dropped; a word wider than the width stays whole on its
// own line and is clipped at draw time. Blank input produces no lines.
func wrapLine(s string, width int) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var lines []string
	var cur strings.Builder
	curWidth := 0

	for _, tok := range splitRuns(s) {
		if strings.TrimSpace(tok) == "" {
			if cur.Len() > 0 {
				cur.WriteString(tok)
				curWidth += ansi.StringWidth(tok)
			}
			continue
		}
		w := ansi.StringWidth(tok)
		if cur.Len() > 0 && curWidth+w > width {
			lines = append(lines, strings.TrimRight(cur.String(), " \t"))
			cur.Reset()
			curWidth = 0
		}
		cur.WriteString(tok)
		curWidth += w
	}
	if cur.Len() > 0 {
		lines = append(lines, strings.TrimRight(cur.String(), " \t"))
	}
	return lines
}

// splitRuns splits a string into alternating runs of whitespace and
// non-whitespace.
func splitRuns(s string) []string {
	var runs []string
	var cur strings.Builder
	curSpace := false
	for _, r := range s {
		isSpace := r == ' ' || r == '\t'
		if cur.Len() > 0 && isSpace != curSpace {
			runs = append(runs, cur.String())
			cur.Reset()
		}
		curSpace = isSpace
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		runs = append(runs, cur.String())
	}
	return runs
}

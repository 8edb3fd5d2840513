// Package cmdlog records every executed command with enough semantic
// context (row keys and column names, not raw offsets) to replay it later
// against a sheet whose rows and columns may have changed.
package cmdlog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/sheet"
)

// Entry is one logged command. Sheet, Col and Row are semantic references:
// the sheet name, the visible column name (or index if unnamed), and the
// row key string (or index if the sheet has no key columns).
type Entry struct {
	Sheet      string
	Col        string
	Row        string
	Longname   string
	Input      string
	Keystrokes string
	Comment    string

	// Undo holds the reversal callbacks pushed by the command while it
	// executed. Invoked in reverse order on explicit undo only; never
	// serialized.
	Undo []func()
}

// Log is an ordered command log.
type Log struct {
	Name    string
	Entries []*Entry
}

// Append adds an entry to the log.
func (l *Log) Append(e *Entry) {
	l.Entries = append(l.Entries, e)
}

// Len returns the number of entries.
func (l *Log) Len() int { return len(l.Entries) }

// UndoEntry runs the entry's undo callbacks in reverse order.
func UndoEntry(e *Entry) {
	for i := len(e.Undo) - 1; i >= 0; i-- {
		e.Undo[i]()
	}
}

// nonLogged lists longname prefixes that are never logged: pure navigation,
// display-only commands, and replay control itself.
var nonLogged = []string{
	"forget", "exec-longname", "undo", "redo", "quit",
	"show", "error", "errors", "statuses", "options", "threads", "cmdlog", "jump",
	"replay", "stop", "pause", "cancel", "advance", "save-cmdlog",
	"go-", "search", "scroll", "prev", "next", "page", "start", "end", "zoom", "resize", "visibility",
	"suspend", "redraw", "no-op", "help", "syscopy", "syspaste", "sysopen", "profile", "toggle",
}

// IsLoggable reports whether a command with the given longname is recorded.
func IsLoggable(longname string) bool {
	for _, prefix := range nonLogged {
		if strings.HasPrefix(longname, prefix) {
			return false
		}
	}
	return true
}

// KeyStr serializes a row key as the prefix glyph followed by the
// comma-joined key values.
func KeyStr(prefix string, key []any) string {
	parts := make([]string, len(key))
	for i, v := range key {
		parts[i] = fmt.Sprint(v)
	}
	return prefix + strings.Join(parts, ",")
}

// Recorder observes command execution and appends entries to the global
// log and the acting sheet's own log. It implements the dispatcher's
// RecorderHook.
type Recorder struct {
	opts   *options.Store
	status func(format string, args ...any)

	global   *Log
	perSheet map[*sheet.Sheet]*Log
	active   *Entry
}

// NewRecorder returns a recorder writing to a fresh global log.
// status may be nil to discard messages.
func NewRecorder(opts *options.Store, status func(format string, args ...any)) *Recorder {
	if status == nil {
		status = func(string, ...any) {}
	}
	return &Recorder{
		opts:     opts,
		status:   status,
		global:   &Log{Name: "cmdlog"},
		perSheet: make(map[*sheet.Sheet]*Log),
	}
}

// Log returns the global command log.
func (r *Recorder) Log() *Log { return r.global }

// SheetLog returns the per-sheet log for the given sheet, creating it on
// first use.
func (r *Recorder) SheetLog(s *sheet.Sheet) *Log {
	l, ok := r.perSheet[s]
	if !ok {
		l = &Log{Name: s.Name + "_cmdlog"}
		r.perSheet[s] = l
	}
	return l
}

// Active returns the currently open entry, or nil.
func (r *Recorder) Active() *Entry { return r.active }

// BeforeExec opens a log entry for a command about to execute. If a
// previous command is still open (commands triggering commands), it is
// closed first as a non-interactive completion. Row and column context is
// captured by semantic identity only when the command acts on the cursor.
func (r *Recorder) BeforeExec(s *sheet.Sheet, longname, help, keystrokes, input, comment string, refsRow, refsCol bool) {
	if r.active != nil {
		r.AfterExec(s, false, "")
	}

	sheetname, colname, rowname := "", "", ""
	if s != nil {
		sheetname = s.Name
		if sheetname == "" {
			sheetname = longname
		}
		if refsRow && s.NRows() > 0 {
			if k := s.RowKey(s.CursorRow()); len(k) > 0 {
				rowname = KeyStr(r.opts.String("rowkey_prefix"), k)
			} else {
				rowname = strconv.Itoa(s.CursorRowIndex)
			}
		}
		if refsCol {
			if col := s.CursorCol(); col != nil {
				colname = col.Name
				if colname == "" {
					colname = strconv.Itoa(s.CursorVisibleColIndex)
				}
			}
		}
	}

	if comment == "" {
		comment = help
	}

	r.active = &Entry{
		Sheet:      sheetname,
		Col:        colname,
		Row:        rowname,
		Longname:   longname,
		Input:      input,
		Keystrokes: keystrokes,
		Comment:    comment,
	}
}

// SetInput records user input on the open entry, if not already set (a
// second input is usually a confirmation).
func (r *Recorder) SetInput(input string) {
	if r.active != nil && r.active.Input == "" {
		r.active.Input = input
	}
}

// SetContext overrides the open entry's col/row/input fields.
func (r *Recorder) SetContext(col, row, input string) {
	if r.active == nil {
		return
	}
	r.active.Col = col
	r.active.Row = row
	r.active.Input = input
}

// PushUndo attaches an undo callback to the open entry.
func (r *Recorder) PushUndo(fn func()) {
	if r.active != nil && fn != nil {
		r.active.Undo = append(r.active.Undo, fn)
	}
}

// AfterExec finalizes the open entry. User-aborted commands, non-loggable
// commands, and commands acting on a command-log sheet itself are
// discarded; everything else is appended to the global log, the sheet's
// log, and the history file if one is configured.
func (r *Recorder) AfterExec(s *sheet.Sheet, escaped bool, errText string) {
	if r.active == nil {
		return
	}

	if errText != "" {
		r.active.Comment += fmt.Sprintf(" [%s]", errText)
	}

	if !escaped && IsLoggable(r.active.Longname) && (s == nil || s.Kind != "cmdlog") {
		r.global.Append(r.active)
		if s != nil {
			r.SheetLog(s).Append(r.active)
		}
		if histfile := r.opts.String("cmdlog_histfile"); histfile != "" {
			if err := AppendEntry(histfile, r.active); err != nil {
				r.status("cmdlog histfile: %v", err)
			}
		}
	}

	r.active = nil
}

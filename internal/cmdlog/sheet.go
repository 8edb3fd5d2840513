package cmdlog

import (
	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/sheet"
)

// AsSheet exposes a log as a browsable sheet. Its kind marks it as a
// command-log sheet so the recorder never logs commands acting on it
// (preventing recursive self-logging).
func AsSheet(l *Log, opts *options.Store) *sheet.Sheet {
	entryCol := func(name string, get func(e *Entry) any) *sheet.Column {
		return sheet.NewColumn(name, func(row sheet.Row) any {
			if e, ok := row.(*Entry); ok {
				return get(e)
			}
			return nil
		})
	}

	s := sheet.New(l.Name, opts,
		entryCol("sheet", func(e *Entry) any { return e.Sheet }),
		entryCol("col", func(e *Entry) any { return e.Col }),
		entryCol("row", func(e *Entry) any { return e.Row }),
		entryCol("longname", func(e *Entry) any { return e.Longname }),
		entryCol("input", func(e *Entry) any { return e.Input }),
		entryCol("keystrokes", func(e *Entry) any { return e.Keystrokes }),
		entryCol("comment", func(e *Entry) any { return e.Comment }),
		entryCol("undo", func(e *Entry) any { return len(e.Undo) }),
	)
	s.Kind = "cmdlog"
	rows := make([]sheet.Row, len(l.Entries))
	for i, e := range l.Entries {
		rows[i] = e
	}
	s.SetRows(rows)
	return s
}

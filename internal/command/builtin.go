package command

import (
	"fmt"
	"strings"
)

// RegisterBuiltins installs the builtin command catalog: cursor movement,
// paging, key-column toggling, cell editing, row selection, and option
// setting.
func RegisterBuiltins(r *Registry) {
	r.Add(&Command{Longname: "go-left", Keys: "left", Help: "go left one column",
		Exec: func(ctx *Context) error { ctx.Sheet.CursorRight(-1); return nil }})
	r.Add(&Command{Longname: "go-right", Keys: "right", Help: "go right one column",
		Exec: func(ctx *Context) error { ctx.Sheet.CursorRight(1); return nil }})
	r.Add(&Command{Longname: "go-up", Keys: "up", Help: "go up one row",
		Exec: func(ctx *Context) error { ctx.Sheet.CursorDown(-1); return nil }})
	r.Add(&Command{Longname: "go-down", Keys: "down", Help: "go down one row",
		Exec: func(ctx *Context) error { ctx.Sheet.CursorDown(1); return nil }})

	r.Add(&Command{Longname: "next-page", Keys: "pgdown", Help: "scroll one page forward",
		Exec: func(ctx *Context) error {
			s := ctx.Sheet
			n := s.NVisibleRows()
			s.CursorDown(n)
			s.TopRowIndex += n
			return nil
		}})
	r.Add(&Command{Longname: "prev-page", Keys: "pgup", Help: "scroll one page backward",
		Exec: func(ctx *Context) error {
			s := ctx.Sheet
			n := s.NVisibleRows()
			s.CursorDown(-n)
			s.TopRowIndex -= n
			return nil
		}})

	r.Add(&Command{Longname: "go-top", Keys: "home", Help: "go to first row",
		Exec: func(ctx *Context) error {
			ctx.Sheet.CursorRowIndex = 0
			ctx.Sheet.TopRowIndex = 0
			return nil
		}})
	r.Add(&Command{Longname: "go-bottom", Keys: "end", Help: "go to last row",
		Exec: func(ctx *Context) error {
			s := ctx.Sheet
			s.CursorRowIndex = s.NRows()
			s.TopRowIndex = s.CursorRowIndex - s.NVisibleRows()
			return nil
		}})
	r.Add(&Command{Longname: "go-leftmost", Keys: "gleft", Help: "go to leftmost column",
		Exec: func(ctx *Context) error {
			ctx.Sheet.CursorVisibleColIndex = 0
			ctx.Sheet.LeftVisibleColIndex = 0
			return nil
		}})
	r.Add(&Command{Longname: "go-rightmost", Keys: "gright", Help: "go to rightmost column",
		Exec: func(ctx *Context) error {
			s := ctx.Sheet
			s.LeftVisibleColIndex = s.NVisibleCols() - 1
			s.PageLeft()
			s.CursorVisibleColIndex = s.NVisibleCols() - 1
			return nil
		}})
	r.Bind("gup", "go-top")
	r.Bind("gdown", "go-bottom")

	r.Add(&Command{Longname: "scroll-up", Help: "scroll one increment forward",
		Exec: func(ctx *Context) error {
			s := ctx.Sheet
			incr := s.Options().Int("scroll_incr")
			s.CursorDown(incr)
			s.TopRowIndex += incr
			return nil
		}})
	r.Add(&Command{Longname: "scroll-down", Help: "scroll one increment backward",
		Exec: func(ctx *Context) error {
			s := ctx.Sheet
			incr := s.Options().Int("scroll_incr")
			s.CursorDown(-incr)
			s.TopRowIndex -= incr
			return nil
		}})

	r.Add(&Command{Longname: "key-col", Keys: "!", Help: "toggle current column as key column", RefsCol: true,
		Exec: func(ctx *Context) error {
			col := ctx.Sheet.CursorCol()
			if col == nil {
				return nil
			}
			was := col.Key
			ctx.PushUndo(func() {
				col.Key = was
				ctx.Sheet.InvalidateCaches()
			})
			ctx.Sheet.ToggleKeys(col)
			return nil
		}})
	r.Add(&Command{Longname: "key-col-off", Keys: "z!", Help: "unset current column as key column", RefsCol: true,
		Exec: func(ctx *Context) error {
			col := ctx.Sheet.CursorCol()
			if col == nil {
				return nil
			}
			was := col.Key
			ctx.PushUndo(func() {
				col.Key = was
				ctx.Sheet.InvalidateCaches()
			})
			ctx.Sheet.UnsetKeys(col)
			return nil
		}})

	r.Add(&Command{Longname: "rename-col", Keys: "^", Help: "rename current column", RefsCol: true,
		Exec: func(ctx *Context) error {
			col := ctx.Sheet.CursorCol()
			if col == nil {
				return nil
			}
			name, aborted := ctx.Ask("rename column: ", col.Name)
			if aborted {
				return ErrAborted
			}
			old := col.Name
			ctx.PushUndo(func() { col.Name = old })
			col.Name = name
			return nil
		}})
	r.Add(&Command{Longname: "hide-col", Keys: "-", Help: "hide current column", RefsCol: true,
		Exec: func(ctx *Context) error {
			col := ctx.Sheet.CursorCol()
			if col == nil {
				return nil
			}
			ctx.PushUndo(func() { col.SetHidden(false) })
			col.SetHidden(true)
			return nil
		}})

	r.Add(&Command{Longname: "edit-cell", Keys: "e", Help: "edit current cell", RefsRow: true, RefsCol: true,
		Exec: func(ctx *Context) error {
			s := ctx.Sheet
			col := s.CursorCol()
			row := s.CursorRow()
			if col == nil || row == nil {
				return nil
			}
			val, aborted := ctx.Ask("edit: ", col.DisplayValue(row))
			if aborted {
				return ErrAborted
			}
			old := col.Value(row)
			ctx.PushUndo(func() { _ = col.SetValue(row, old) })
			return col.SetValue(row, val)
		}})

	r.Add(&Command{Longname: "select-row", Keys: "s", Help: "select current row", RefsRow: true,
		Exec: func(ctx *Context) error {
			row := ctx.Sheet.CursorRow()
			if row == nil {
				return nil
			}
			ctx.PushUndo(func() { ctx.Sheet.Unselect(row) })
			ctx.Sheet.Select(row)
			return nil
		}})
	r.Add(&Command{Longname: "unselect-row", Keys: "u", Help: "unselect current row", RefsRow: true,
		Exec: func(ctx *Context) error {
			row := ctx.Sheet.CursorRow()
			if row == nil {
				return nil
			}
			ctx.PushUndo(func() { ctx.Sheet.Select(row) })
			ctx.Sheet.Unselect(row)
			return nil
		}})
	// "stoggle", not "toggle": the toggle prefix is never logged, and
	// selection changes must be recorded to replay.
	r.Add(&Command{Longname: "stoggle-row", Keys: "t", Help: "toggle selection of current row", RefsRow: true,
		Exec: func(ctx *Context) error {
			s := ctx.Sheet
			row := s.CursorRow()
			if row == nil {
				return nil
			}
			was := s.IsSelected(row)
			ctx.PushUndo(func() {
				if was {
					s.Select(row)
				} else {
					s.Unselect(row)
				}
			})
			s.ToggleSelect(row)
			return nil
		}})

	r.Add(&Command{Longname: "dup-sheet", Keys: `"`, Help: "duplicate sheet design with all rows",
		Exec: func(ctx *Context) error {
			s := ctx.Sheet
			dup := s.Copy(s.Name + "_copy")
			dup.SetRows(append([]any(nil), s.Rows...))
			if ctx.Push != nil {
				ctx.Push(dup)
			}
			ctx.Status("copied %s", dup.Name)
			return nil
		}})

	r.Add(&Command{Longname: "reload-sheet", Keys: "ctrl+r", Help: "reload sheet from source",
		Exec: func(ctx *Context) error {
			s := ctx.Sheet
			if s.Reloader == nil {
				ctx.Status("no source to reload")
				return nil
			}
			if err := s.Reloader(s); err != nil {
				return fmt.Errorf("reload: %w", err)
			}
			s.InvalidateCaches()
			ctx.Status("reloaded")
			return nil
		}})

	r.Add(&Command{Longname: "set-option", Help: "set option to value",
		Exec: func(ctx *Context) error {
			input, aborted := ctx.Ask("set option: ", "")
			if aborted {
				return ErrAborted
			}
			name, value, ok := strings.Cut(input, "=")
			if !ok {
				return fmt.Errorf("expected name=value, got %q", input)
			}
			name = strings.TrimSpace(name)
			value = strings.TrimSpace(value)
			opts := ctx.Sheet.Options()
			old := opts.Get(name)
			if err := opts.Set(name, value); err != nil {
				return err
			}
			ctx.PushUndo(func() { opts.SetValue(name, old) })
			if ctx.SetLogContext != nil {
				ctx.SetLogContext("", name, value)
			}
			return nil
		}})

	r.Add(&Command{Longname: "show-cursor", Keys: "ctrl+g", Help: "show cursor position and bounds",
		Exec: func(ctx *Context) error {
			ctx.Status("%s", ctx.Sheet.StatusLine())
			return nil
		}})
}

package command

import (
	"errors"

	"github.com/gridsheet/gridsheet/internal/sheet"
)

// RecorderHook is the command recorder seam. The dispatcher notifies it
// around each execution; a nil hook disables recording.
type RecorderHook interface {
	// BeforeExec opens a log entry for the command about to run.
	BeforeExec(s *sheet.Sheet, longname, help, keystrokes, input, comment string, refsRow, refsCol bool)

	// SetInput records user input captured while the command ran.
	SetInput(input string)

	// SetContext overrides the open entry's col/row/input fields.
	SetContext(col, row, input string)

	// PushUndo attaches an undo callback to the open entry.
	PushUndo(fn func())

	// AfterExec finalizes the open entry: discarded if escaped or
	// non-loggable, appended to the logs otherwise.
	AfterExec(s *sheet.Sheet, escaped bool, errText string)
}

// Dispatcher executes commands against sheets, wiring the recorder, the
// status reporter, and the input prompter into each execution context.
// It is the seam the replay engine drives.
type Dispatcher struct {
	Registry *Registry

	// Recorder receives before/after notifications. Optional.
	Recorder RecorderHook

	// Status surfaces user-visible messages. Optional.
	Status func(format string, args ...any)

	// Prompt asks the user for input interactively. Optional; without
	// it, commands that need input and have none pre-supplied abort.
	Prompt func(prompt, value string) (string, bool)

	// Push opens a sheet in the surrounding session. Optional.
	Push func(s *sheet.Sheet)
}

// Execute looks up the command by longname (falling back to the raw
// keystroke sequence for legacy entries), runs it against the sheet with
// the given pre-supplied input, and reports whether it was aborted and any
// error. The comment labels the log entry; empty means the command's help.
func (d *Dispatcher) Execute(s *sheet.Sheet, longname, keystrokes, input, comment string) (aborted bool, err error) {
	cmd, err := d.Registry.Lookup(longname)
	if err != nil && keystrokes != "" {
		cmd, err = d.Registry.ByKeystroke(keystrokes)
	}
	if err != nil {
		return false, err
	}

	if comment == "" {
		comment = cmd.Help
	}

	if d.Recorder != nil {
		d.Recorder.BeforeExec(s, cmd.Longname, cmd.Help, keystrokes, input, comment, cmd.RefsRow, cmd.RefsCol)
	}

	ctx := &Context{
		Sheet:  s,
		Input:  input,
		Status: d.status,
		Prompt: d.prompt,
		Push:   d.Push,
	}
	if d.Recorder != nil {
		ctx.PushUndo = d.Recorder.PushUndo
		ctx.SetLogContext = d.Recorder.SetContext
	} else {
		ctx.PushUndo = func(func()) {}
	}

	execErr := cmd.Exec(ctx)
	aborted = errors.Is(execErr, ErrAborted)

	s.CheckCursor()

	errText := ""
	if execErr != nil && !aborted {
		errText = execErr.Error()
	}
	if d.Recorder != nil {
		d.Recorder.AfterExec(s, aborted, errText)
	}

	if aborted {
		return true, nil
	}
	return false, execErr
}

func (d *Dispatcher) status(format string, args ...any) {
	if d.Status != nil {
		d.Status(format, args...)
	}
}

// prompt wraps the configured prompter so captured input is recorded on
// the open log entry.
func (d *Dispatcher) prompt(prompt, value string) (string, bool) {
	if d.Prompt == nil {
		return "", true
	}
	input, aborted := d.Prompt(prompt, value)
	if !aborted && d.Recorder != nil {
		d.Recorder.SetInput(input)
	}
	return input, aborted
}

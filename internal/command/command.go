// Package command defines the command execution contract: named commands
// with undo capture, a registry with keystroke bindings, and the dispatcher
// that runs commands against sheets while feeding the command recorder.
package command

import (
	"errors"
	"fmt"

	"github.com/gridsheet/gridsheet/internal/sheet"
)

// ErrAborted signals that the user escaped out of a command mid-way.
// Aborted commands are not logged and, during replay, abort the remainder
// of the log.
var ErrAborted = errors.New("command aborted")

// Context carries everything a command needs to execute against a sheet.
type Context struct {
	// Sheet is the sheet the command acts on.
	Sheet *sheet.Sheet

	// Input is pre-supplied user input, set during replay so interactive
	// prompts are satisfied without blocking.
	Input string

	// Prompt asks the user for input. Returns ErrAborted-style abort via
	// the second result. When Input is non-empty it is returned directly.
	Prompt func(prompt, value string) (string, bool)

	// Status surfaces a user-visible message.
	Status func(format string, args ...any)

	// PushUndo attaches a reversal callback to the command's log entry.
	PushUndo func(fn func())

	// SetLogContext overrides the log entry's col/row/input fields.
	// Used by set-option to store the option name and value instead of
	// cursor context.
	SetLogContext func(col, row, input string)

	// Push opens a new sheet in the surrounding session, if one exists.
	Push func(s *sheet.Sheet)
}

// Ask resolves input for a command: the pre-supplied input if present,
// otherwise the prompter. The bool result reports an abort.
func (c *Context) Ask(prompt, value string) (string, bool) {
	if c.Input != "" {
		return c.Input, false
	}
	if c.Prompt == nil {
		return "", true
	}
	return c.Prompt(prompt, value)
}

// ExecFunc is a command body. Returning ErrAborted (possibly wrapped)
// marks the command escaped rather than failed.
type ExecFunc func(ctx *Context) error

// Command is one executable action with a stable symbolic identifier.
type Command struct {
	// Longname is the stable identifier, independent of key bindings.
	Longname string

	// Keys is the default keystroke bound to the command, if any.
	Keys string

	// Help is the human-readable description, logged as the entry comment.
	Help string

	// Exec runs the command.
	Exec ExecFunc

	// RefsRow marks commands that act on the cursor row, so the recorder
	// captures the row's semantic key.
	RefsRow bool

	// RefsCol marks commands that act on the cursor column, so the
	// recorder captures the column name.
	RefsCol bool
}

// Registry maps longnames and keystrokes to commands.
type Registry struct {
	byName map[string]*Command
	byKeys map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Command),
		byKeys: make(map[string]string),
	}
}

// Add registers a command and its default keystroke binding.
func (r *Registry) Add(cmd *Command) {
	if cmd == nil || cmd.Longname == "" {
		return
	}
	r.byName[cmd.Longname] = cmd
	if cmd.Keys != "" {
		r.byKeys[cmd.Keys] = cmd.Longname
	}
}

// Bind attaches an additional keystroke to an existing longname.
func (r *Registry) Bind(keys, longname string) {
	r.byKeys[keys] = longname
}

// Lookup returns the command with the given longname.
func (r *Registry) Lookup(longname string) (*Command, error) {
	if cmd, ok := r.byName[longname]; ok {
		return cmd, nil
	}
	return nil, fmt.Errorf("no command %q", longname)
}

// ByKeystroke returns the command bound to the given keystroke sequence.
// This is the legacy dispatch path for log entries lacking a longname.
func (r *Registry) ByKeystroke(keys string) (*Command, error) {
	if longname, ok := r.byKeys[keys]; ok {
		return r.Lookup(longname)
	}
	return nil, fmt.Errorf("no command bound to %q", keys)
}

// Longnames returns all registered longnames.
func (r *Registry) Longnames() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

package tui

import (
	"fmt"
	"sync"

	"github.com/gridsheet/gridsheet/internal/cmdlog"
	"github.com/gridsheet/gridsheet/internal/colorize"
	"github.com/gridsheet/gridsheet/internal/command"
	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/render"
	"github.com/gridsheet/gridsheet/internal/replay"
	"github.com/gridsheet/gridsheet/internal/sheet"
)

// Session assembles the components one browsing session shares: the sheet
// stack, the command registry and dispatcher, the command recorder, the
// colorizer, the grid renderer, and the replay engine. Replay state is
// scoped here, not process-wide.
type Session struct {
	Opts       *options.Store
	Sheets     *sheet.Stack
	Registry   *command.Registry
	Recorder   *cmdlog.Recorder
	Dispatcher *command.Dispatcher
	Colors     *colorize.Registry
	Resolver   *colorize.Resolver
	Renderer   *render.Renderer
	Engine     *replay.Engine

	// mu guards the sheet stack and sheet state against concurrent access
	// from the replay worker and the rendering goroutine.
	mu   sync.Mutex
	sink func(msg string)
}

// Lock acquires the session guard. The replay worker holds it around each
// state mutation; the view holds it while reading sheets, so a frame never
// observes a half-applied replay step.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session guard.
func (s *Session) Unlock() { s.mu.Unlock() }

// NewSession wires a full session over the given options.
func NewSession(opts *options.Store) *Session {
	s := &Session{
		Opts:   opts,
		Sheets: sheet.NewStack(),
	}

	s.Registry = command.NewRegistry()
	command.RegisterBuiltins(s.Registry)

	s.Recorder = cmdlog.NewRecorder(opts, s.Status)
	s.Dispatcher = &command.Dispatcher{
		Registry: s.Registry,
		Recorder: s.Recorder,
		Status:   s.Status,
		Push:     s.Sheets.Push,
	}

	s.Colors = colorize.NewRegistry()
	s.Resolver = colorize.NewResolver(s.Colors, opts, func(err error) {
		s.Status("colorizer: %v", err)
	})
	s.Renderer = render.New(opts, s.Resolver)

	s.Engine = replay.NewEngine(opts, s.Dispatcher, s.Sheets, s.Status)
	s.Engine.SetGuard(s)
	return s
}

// Status reports a user-visible message through the configured sink.
// Messages are dropped until a sink is attached.
func (s *Session) Status(format string, args ...any) {
	if s.sink != nil {
		s.sink(fmt.Sprintf(format, args...))
	}
}

// SetStatusSink routes status messages to fn.
func (s *Session) SetStatusSink(fn func(msg string)) {
	s.sink = fn
}

// Open pushes a sheet onto the session's stack.
func (s *Session) Open(sh *sheet.Sheet) {
	s.Sheets.Push(sh)
}

// CmdlogSheet returns the global command log as a browsable sheet.
func (s *Session) CmdlogSheet() *sheet.Sheet {
	return cmdlog.AsSheet(s.Recorder.Log(), s.Opts)
}

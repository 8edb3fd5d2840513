// Package replay deterministically re-executes a recorded command log
// against live sheets. Replay runs on its own goroutine so the interface
// stays responsive; stepping is signalled over a token channel, which makes
// pause, single-step and cancel cooperative and free of busy-waiting.
package replay

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gridsheet/gridsheet/internal/cmdlog"
	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/sheet"
)

// ErrReplayActive is returned when a replay is started while another one
// owns the session.
var ErrReplayActive = errors.New("replay already active")

// ErrNoReplay is returned by controls invoked with no replay in progress.
var ErrNoReplay = errors.New("no active replay")

// errAborted marks an entry whose execution was escaped; it aborts the
// remainder of the log.
var errAborted = errors.New("replay entry aborted")

// Executor runs one command against a sheet with pre-supplied input,
// reporting whether it was escaped and any error. The command dispatcher
// satisfies this; it is the single seam the engine drives.
type Executor interface {
	Execute(s *sheet.Sheet, longname, keystrokes, input, comment string) (aborted bool, err error)
}

// Catalog resolves sheets by name and receives the sheet a replayed entry
// acts on, the same way direct interaction focuses a sheet.
type Catalog interface {
	Get(name string) *sheet.Sheet
	Push(s *sheet.Sheet)
	Top() *sheet.Sheet
}

// State is the lifecycle state of a replay run.
type State int32

const (
	// StateIdle means the run has not started.
	StateIdle State = iota
	// StateRunning means entries are being replayed.
	StateRunning
	// StatePaused means the run waits for advance or resume.
	StatePaused
	// StateCancelled is terminal: stopped explicitly or by an error.
	StateCancelled
	// StateCompleted is terminal: the log was exhausted.
	StateCompleted
)

// Engine owns the single in-progress replay for a session. Scoped to the
// session rather than process-wide so the single-active-replay invariant
// holds per session.
type Engine struct {
	opts   *options.Store
	exec   Executor
	sheets Catalog
	status func(format string, args ...any)

	// guard, when set, is held around every sheet mutation a replay makes.
	// The interactive session shares it with the view goroutine.
	guard sync.Locker

	mu      sync.Mutex
	current *Run
}

// NewEngine returns an engine over the given executor and sheet catalog.
// status may be nil to discard messages.
func NewEngine(opts *options.Store, exec Executor, sheets Catalog, status func(format string, args ...any)) *Engine {
	if status == nil {
		status = func(string, ...any) {}
	}
	return &Engine{opts: opts, exec: exec, sheets: sheets, status: status}
}

// SetGuard installs the lock taken around each state mutation a replay
// makes. Whatever reads sheet state concurrently must take the same lock.
func (e *Engine) SetGuard(g sync.Locker) { e.guard = g }

// Run is one replay in progress.
type Run struct {
	engine *Engine
	log    *cmdlog.Log

	pos    atomic.Int64
	paused atomic.Bool
	state  atomic.Int32

	// step carries advance tokens; a timed receive on it is the
	// inter-entry delay, so an external advance can wake a paused run
	// and cancellation can interrupt a pending wait.
	step chan struct{}
	done chan struct{} // closed on cancel

	finished  chan struct{} // closed when the worker exits
	closeDone sync.Once
	err       error
}

// Current returns the in-progress replay, or nil.
func (e *Engine) Current() *Run {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Replay starts replaying the log on a worker goroutine. Only one replay
// may own the session at a time.
func (e *Engine) Replay(l *cmdlog.Log) (*Run, error) {
	r, err := e.start(l)
	if err != nil {
		return nil, err
	}
	go r.run()
	return r, nil
}

// ReplaySync replays the log on the calling goroutine, returning when the
// log is exhausted or cancelled.
func (e *Engine) ReplaySync(l *cmdlog.Log) error {
	r, err := e.start(l)
	if err != nil {
		return err
	}
	r.run()
	return r.err
}

func (e *Engine) start(l *cmdlog.Log) (*Run, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil {
		return nil, ErrReplayActive
	}
	r := &Run{
		engine:   e,
		log:      l,
		step:     make(chan struct{}, l.Len()+1),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	r.state.Store(int32(StateRunning))
	e.current = r
	return r, nil
}

// clear drops the current-replay reference if it is r.
func (e *Engine) clear(r *Run) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == r {
		e.current = nil
	}
}

// TogglePause pauses or resumes the current replay. Resuming also sends
// one advance token so a wait already in progress wakes up.
func (e *Engine) TogglePause() error {
	r := e.Current()
	if r == nil {
		e.status("no replay to pause")
		return ErrNoReplay
	}
	r.TogglePause()
	if r.Paused() {
		e.status("paused")
	} else {
		e.status("resumed")
	}
	return nil
}

// Advance signals the current replay to execute exactly one further entry
// while paused.
func (e *Engine) Advance() error {
	r := e.Current()
	if r == nil {
		return ErrNoReplay
	}
	r.Advance()
	return nil
}

// Cancel stops the current replay without executing remaining entries.
func (e *Engine) Cancel() error {
	r := e.Current()
	if r == nil {
		return ErrNoReplay
	}
	r.Cancel()
	return nil
}

// Undo runs an entry's captured undo callbacks in reverse order. Undo is
// independent of replay and is never triggered by replay itself.
func (e *Engine) Undo(entry *cmdlog.Entry) {
	cmdlog.UndoEntry(entry)
}

// State returns the run's lifecycle state.
func (r *Run) State() State {
	st := State(r.state.Load())
	if st == StateRunning && r.paused.Load() {
		return StatePaused
	}
	return st
}

// Paused reports whether the run is paused.
func (r *Run) Paused() bool { return r.paused.Load() }

// TogglePause flips the paused flag. Resuming sends one token to wake a
// blocked wait.
func (r *Run) TogglePause() {
	if r.paused.Load() {
		r.Advance()
	}
	r.paused.Store(!r.paused.Load())
}

// Advance releases one step token.
func (r *Run) Advance() {
	select {
	case r.step <- struct{}{}:
	default:
	}
}

// Cancel stops the run: the next wait-check observes cancellation and the
// worker exits. There is no forced termination.
func (r *Run) Cancel() {
	r.closeDone.Do(func() {
		r.state.Store(int32(StateCancelled))
		close(r.done)
	})
	r.engine.clear(r)
}

// Wait blocks until the worker exits and returns its error, if any.
func (r *Run) Wait() error {
	<-r.finished
	return r.err
}

// Err returns the error that cancelled the run, if any.
func (r *Run) Err() error { return r.err }

// Progress returns the number of entries executed and the log length.
func (r *Run) Progress() (done, total int) {
	return int(r.pos.Load()), r.log.Len()
}

// StatusIndicator returns the one-glyph play/pause indicator plus the
// entry position, for the status line.
func (r *Run) StatusIndicator() string {
	glyph := r.engine.opts.String("disp_replay_play")
	if r.Paused() {
		glyph = r.engine.opts.String("disp_replay_pause")
	}
	done, total := r.Progress()
	return fmt.Sprintf("%s %d/%d", glyph, done, total)
}

func (r *Run) cancelled() bool {
	select {
	case <-r.done:
		return true
	default:
		return r.engine.Current() != r
	}
}

// run replays all entries in the log.
func (r *Run) run() {
	defer close(r.finished)
	e := r.engine

	for int(r.pos.Load()) < r.log.Len() {
		if r.cancelled() {
			e.status("replay canceled")
			return
		}

		entry := r.log.Entries[r.pos.Load()]
		if err := r.replayOne(entry); err != nil {
			r.err = err
			r.Cancel()
			if errors.Is(err, errAborted) {
				e.status("replay aborted during %s", entryName(entry))
			} else {
				e.status("replay canceled: %v", err)
			}
			return
		}

		r.pos.Add(1)

		for !r.delay(1) {
			if r.cancelled() {
				e.status("replay canceled")
				return
			}
		}
	}

	r.state.Store(int32(StateCompleted))
	e.clear(r)
	e.status("replay complete")
}

// delay waits between steps: a timed receive on the step channel when
// running (replay_wait scaled by factor), an indefinite receive when
// paused. Returns false if the wait was interrupted by cancellation.
func (r *Run) delay(factor float64) bool {
	if r.paused.Load() {
		select {
		case <-r.step:
			return true
		case <-r.done:
			return false
		}
	}

	wait := time.Duration(r.engine.opts.Float("replay_wait") * factor * float64(time.Second))
	if wait <= 0 {
		select {
		case <-r.step:
		default:
		}
		return true
	}

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-r.step:
		return true
	case <-r.done:
		return false
	case <-t.C:
		return true
	}
}

// sync runs fn while holding the engine's guard, when one is set. Held only
// across single mutations, never across a delay, so pausing cannot starve
// the goroutine sharing the guard.
func (r *Run) sync(fn func()) {
	if g := r.engine.guard; g != nil {
		g.Lock()
		defer g.Unlock()
	}
	fn()
}

// replayOne re-resolves the entry's context and executes it.
func (r *Run) replayOne(entry *cmdlog.Entry) error {
	e := r.engine

	// set-option applies directly to the named configuration key rather
	// than dispatching a command.
	if entry.Longname == "set-option" {
		return e.opts.Set(entry.Row, entry.Input)
	}

	vs, err := r.moveToReplayContext(entry)
	if err != nil {
		return err
	}
	r.sync(func() {
		if vs == nil {
			vs = e.sheets.Top()
		} else {
			e.sheets.Push(vs)
		}
	})
	if vs == nil {
		return fmt.Errorf("no sheet to replay %s against", entryName(entry))
	}

	if entry.Comment != "" {
		e.status("%s", entry.Comment)
	}

	var aborted bool
	r.sync(func() {
		aborted, err = e.exec.Execute(vs, entry.Longname, entry.Keystrokes, entry.Input, entry.Comment)
	})
	if err != nil {
		return fmt.Errorf("replay %s: %w", entryName(entry), err)
	}
	if aborted {
		return errAborted
	}
	return nil
}

// moveToReplayContext resolves the entry's sheet by name and moves its
// cursor to the entry's row and column. Returns nil when the entry names
// no sheet (row and column don't matter for such entries).
func (r *Run) moveToReplayContext(entry *cmdlog.Entry) (*sheet.Sheet, error) {
	if entry.Sheet == "" {
		return nil, nil
	}
	var vs *sheet.Sheet
	r.sync(func() { vs = r.engine.sheets.Get(entry.Sheet) })
	if vs == nil {
		return nil, fmt.Errorf("no sheet named %s", entry.Sheet)
	}

	if entry.Row != "" {
		if err := r.moveToRow(vs, entry.Row); err != nil {
			return nil, err
		}
	}
	if entry.Col != "" {
		if err := r.moveToCol(vs, entry.Col); err != nil {
			return nil, err
		}
	}
	return vs, nil
}

// moveToRow moves the cursor to the row named by rowstr: a semantic row
// key when the sheet has key columns, else an absolute index.
func (r *Run) moveToRow(vs *sheet.Sheet, rowstr string) error {
	rowidx := -1
	r.sync(func() { rowidx = r.rowIndexFromStr(vs, rowstr) })
	if rowidx < 0 {
		return fmt.Errorf("no %q row", rowstr)
	}
	r.moveCursor(&vs.CursorRowIndex, rowidx)
	return nil
}

// moveToCol moves the cursor to the column named by colstr: an absolute
// index if numeric, else a visible column name.
func (r *Run) moveToCol(vs *sheet.Sheet, colstr string) error {
	vcolidx := -1
	r.sync(func() {
		if n, err := strconv.Atoi(colstr); err == nil {
			if n >= 0 && n < vs.NVisibleCols() {
				vcolidx = n
			}
			return
		}
		for i, c := range vs.VisibleCols() {
			if c.Name == colstr {
				vcolidx = i
				break
			}
		}
	})
	if vcolidx < 0 {
		return fmt.Errorf("no %q column", colstr)
	}
	r.moveCursor(&vs.CursorVisibleColIndex, vcolidx)
	return nil
}

// moveCursor sets the cursor index, or animates it one step at a time with
// the inter-step delay when movement insertion is enabled.
func (r *Run) moveCursor(cur *int, target int) {
	if !r.engine.opts.Bool("replay_movement") {
		r.sync(func() { *cur = target })
		return
	}
	for {
		if r.cancelled() {
			return
		}
		moved := false
		r.sync(func() {
			if *cur == target {
				return
			}
			if target > *cur {
				*cur++
			} else {
				*cur--
			}
			moved = true
		})
		if !moved {
			return
		}
		for !r.delay(0.5) {
			if r.cancelled() {
				return
			}
		}
	}
}

func (r *Run) rowIndexFromStr(vs *sheet.Sheet, rowstr string) int {
	prefix := r.engine.opts.String("rowkey_prefix")
	for i, row := range vs.Rows {
		if k := vs.RowKey(row); len(k) > 0 && cmdlog.KeyStr(prefix, k) == rowstr {
			return i
		}
	}
	if n, err := strconv.Atoi(rowstr); err == nil && n >= 0 && n < vs.NRows() {
		return n
	}
	return -1
}

func entryName(entry *cmdlog.Entry) string {
	if entry.Longname != "" {
		return entry.Longname
	}
	return entry.Keystrokes
}

package replay_test

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gridsheet/gridsheet/internal/cmdlog"
	"github.com/gridsheet/gridsheet/internal/command"
	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/replay"
	"github.com/gridsheet/gridsheet/internal/sheet"
	"github.com/gridsheet/gridsheet/internal/testhelpers"
)

// session bundles the pieces a replay needs, mirroring how the interactive
// session wires them.
type session struct {
	opts   *options.Store
	sheets *sheet.Stack
	disp   *command.Dispatcher
	rec    *cmdlog.Recorder
	engine *replay.Engine
}

func newSession(t *testing.T, nrows int) (*session, *sheet.Sheet) {
	t.Helper()
	opts := options.New()
	reg := command.NewRegistry()
	command.RegisterBuiltins(reg)
	rec := cmdlog.NewRecorder(opts, nil)
	sheets := sheet.NewStack()
	disp := &command.Dispatcher{Registry: reg, Recorder: rec, Push: sheets.Push}
	s := testhelpers.PeopleSheet(t, opts, nrows)
	s.SetWindowSize(80, 24)
	sheets.Push(s)
	return &session{
		opts:   opts,
		sheets: sheets,
		disp:   disp,
		rec:    rec,
		engine: replay.NewEngine(opts, disp, sheets, nil),
	}, s
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestReplaySync_RecordedSessionRoundTrip(t *testing.T) {
	recSess, s := newSession(t, 5)

	// record: mark name as key, edit a keyed row, set an option
	if _, err := recSess.disp.Execute(s, "key-col", "!", "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := recSess.disp.Execute(s, "go-down", "down", "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := recSess.disp.Execute(s, "edit-cell", "e", "edited", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := recSess.disp.Execute(s, "set-option", "", "default_width=25", ""); err != nil {
		t.Fatal(err)
	}

	log := recSess.rec.Log()
	if log.Len() != 3 {
		t.Fatalf("recorded log Len = %d, want 3 (movement not logged)", log.Len())
	}
	if log.Entries[1].Row != "キperson1" {
		t.Fatalf("edit entry Row = %q, want row key", log.Entries[1].Row)
	}

	// replay against a fresh session
	playSess, fresh := newSession(t, 5)
	if err := playSess.engine.ReplaySync(log); err != nil {
		t.Fatalf("ReplaySync() error = %v", err)
	}

	name, _ := fresh.ColumnByName("name")
	if !name.Key {
		t.Error("replayed key-col did not mark the column")
	}
	if got := fresh.Rows[1].(*testhelpers.Person).Name; got != "edited" {
		t.Errorf("row 1 name = %q after replay, want edited", got)
	}
	if got := playSess.opts.Int("default_width"); got != 25 {
		t.Errorf("default_width = %d after replay, want 25", got)
	}
	if playSess.engine.Current() != nil {
		t.Error("Current() != nil after completed replay")
	}
}

func TestReplaySync_LegacyKeystrokeEntry(t *testing.T) {
	sess, s := newSession(t, 5)
	log := &cmdlog.Log{}
	log.Append(&cmdlog.Entry{Sheet: "people", Keystrokes: "down"})

	if err := sess.engine.ReplaySync(log); err != nil {
		t.Fatalf("ReplaySync() error = %v", err)
	}
	if s.CursorRowIndex != 1 {
		t.Errorf("CursorRowIndex = %d, want 1", s.CursorRowIndex)
	}
}

func TestReplaySync_MissingSheet(t *testing.T) {
	sess, _ := newSession(t, 3)
	log := &cmdlog.Log{}
	log.Append(&cmdlog.Entry{Sheet: "ghost", Longname: "select-row"})

	err := sess.engine.ReplaySync(log)
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("ReplaySync() error = %v, want missing-sheet error", err)
	}
	if sess.engine.Current() != nil {
		t.Error("Current() != nil after failed replay")
	}
}

func TestReplaySync_MissingRow(t *testing.T) {
	sess, _ := newSession(t, 3)
	log := &cmdlog.Log{}
	log.Append(&cmdlog.Entry{Sheet: "people", Row: "キnobody", Longname: "select-row"})

	if err := sess.engine.ReplaySync(log); err == nil {
		t.Error("ReplaySync() error = nil, want missing-row error")
	}
}

func TestReplaySync_AbortedEntryStopsReplay(t *testing.T) {
	sess, s := newSession(t, 3)
	log := &cmdlog.Log{}
	// edit-cell with no input and no prompter aborts
	log.Append(&cmdlog.Entry{Sheet: "people", Longname: "edit-cell"})
	log.Append(&cmdlog.Entry{Sheet: "people", Longname: "select-row"})

	if err := sess.engine.ReplaySync(log); err == nil {
		t.Fatal("ReplaySync() error = nil, want abort error")
	}
	if s.NSelected() != 0 {
		t.Error("entry after the aborted one was executed")
	}
}

// gateExec blocks inside the first Execute call until released, giving
// tests a deterministic point to pause or cancel a running replay.
type gateExec struct {
	count   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newGateExec() *gateExec {
	return &gateExec{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gateExec) Execute(s *sheet.Sheet, longname, keystrokes, input, comment string) (bool, error) {
	if g.count.Add(1) == 1 {
		close(g.entered)
		<-g.release
	}
	return false, nil
}

func nopLog(n int) *cmdlog.Log {
	l := &cmdlog.Log{}
	for i := 0; i < n; i++ {
		l.Append(&cmdlog.Entry{Longname: "no-op-entry"})
	}
	return l
}

func TestReplay_PauseAndSingleStep(t *testing.T) {
	opts := options.New()
	sheets := sheet.NewStack()
	s := sheet.New("people", opts)
	s.SetWindowSize(80, 24)
	sheets.Push(s)
	exec := newGateExec()
	engine := replay.NewEngine(opts, exec, sheets, nil)

	run, err := engine.Replay(nopLog(5))
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	<-exec.entered
	if err := engine.TogglePause(); err != nil {
		t.Fatal(err)
	}
	close(exec.release)

	// the in-flight entry finishes, then the run blocks
	waitFor(t, "first entry", func() bool { return exec.count.Load() == 1 })
	time.Sleep(30 * time.Millisecond)
	if got := exec.count.Load(); got != 1 {
		t.Fatalf("executed %d entries while paused, want 1", got)
	}
	if run.State() != replay.StatePaused {
		t.Errorf("State() = %v, want paused", run.State())
	}
	if ind := run.StatusIndicator(); !strings.Contains(ind, "1/5") {
		t.Errorf("StatusIndicator() = %q, want 1/5 position", ind)
	}

	// each advance releases exactly one entry
	if err := engine.Advance(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "second entry", func() bool { return exec.count.Load() == 2 })
	time.Sleep(30 * time.Millisecond)
	if got := exec.count.Load(); got != 2 {
		t.Fatalf("executed %d entries after one advance, want 2", got)
	}

	// resume drains the rest
	if err := engine.TogglePause(); err != nil {
		t.Fatal(err)
	}
	if err := run.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got := exec.count.Load(); got != 5 {
		t.Errorf("executed %d entries total, want 5", got)
	}
	if run.State() != replay.StateCompleted {
		t.Errorf("State() = %v, want completed", run.State())
	}
	if engine.Current() != nil {
		t.Error("Current() != nil after completion")
	}
}

func TestReplay_Cancel(t *testing.T) {
	opts := options.New()
	sheets := sheet.NewStack()
	s := sheet.New("people", opts)
	s.SetWindowSize(80, 24)
	sheets.Push(s)
	exec := newGateExec()
	engine := replay.NewEngine(opts, exec, sheets, nil)

	run, err := engine.Replay(nopLog(5))
	if err != nil {
		t.Fatal(err)
	}
	<-exec.entered
	if err := engine.Cancel(); err != nil {
		t.Fatal(err)
	}
	close(exec.release)

	if err := run.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got := exec.count.Load(); got != 1 {
		t.Errorf("executed %d entries after cancel, want 1", got)
	}
	if run.State() != replay.StateCancelled {
		t.Errorf("State() = %v, want cancelled", run.State())
	}
}

func TestReplay_OnlyOneActive(t *testing.T) {
	opts := options.New()
	sheets := sheet.NewStack()
	s := sheet.New("people", opts)
	s.SetWindowSize(80, 24)
	sheets.Push(s)
	exec := newGateExec()
	engine := replay.NewEngine(opts, exec, sheets, nil)

	run, err := engine.Replay(nopLog(3))
	if err != nil {
		t.Fatal(err)
	}
	<-exec.entered

	if _, err := engine.Replay(nopLog(1)); !errors.Is(err, replay.ErrReplayActive) {
		t.Errorf("second Replay() error = %v, want ErrReplayActive", err)
	}

	run.Cancel()
	close(exec.release)
	_ = run.Wait()
}

func TestControls_NoActiveReplay(t *testing.T) {
	sess, _ := newSession(t, 1)
	if err := sess.engine.Advance(); !errors.Is(err, replay.ErrNoReplay) {
		t.Errorf("Advance() error = %v, want ErrNoReplay", err)
	}
	if err := sess.engine.Cancel(); !errors.Is(err, replay.ErrNoReplay) {
		t.Errorf("Cancel() error = %v, want ErrNoReplay", err)
	}
	if err := sess.engine.TogglePause(); !errors.Is(err, replay.ErrNoReplay) {
		t.Errorf("TogglePause() error = %v, want ErrNoReplay", err)
	}
}

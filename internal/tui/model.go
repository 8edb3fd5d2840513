package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/gridsheet/gridsheet/internal/cmdlog"
	"github.com/gridsheet/gridsheet/internal/screen"
	"github.com/gridsheet/gridsheet/internal/sheet"
)

// replayTickInterval is how often the view refreshes during a replay.
const replayTickInterval = 100 * time.Millisecond

// promptState is an in-progress status-line input.
type promptState struct {
	label  string
	value  []rune
	apply  func(m *Model, input string) tea.Cmd
	cancel func(m *Model)
}

// promptGate captures a command's input request so the model can switch to
// prompt mode and re-run the command once the input is typed. The command
// aborts on first execution; the abort is discarded by the recorder, so
// only the completed re-run is logged.
type promptGate struct {
	label string
	value string
	asked bool
}

// Model is the bubbletea model for the grid browser.
type Model struct {
	sess *Session

	width  int
	height int
	ready  bool

	// prefix holds a pending multi-key prefix ("g" or "z").
	prefix string

	prompt *promptState
	gate   *promptGate

	// statusMu guards status: the replay worker reports through the status
	// sink while the view reads the line.
	statusMu sync.Mutex
	status   string

	// undone counts log entries undone since the last modifying command.
	undone int

	// replayLog, when set, is replayed as soon as the program starts.
	replayLog *cmdlog.Log

	styles statusStyles
}

type statusStyles struct {
	name   lipgloss.Style
	info   lipgloss.Style
	replay lipgloss.Style
	prompt lipgloss.Style
}

// NewModel returns a model over the session. If replayLog is non-nil, the
// replay starts when the program does.
func NewModel(sess *Session, replayLog *cmdlog.Log) *Model {
	m := &Model{
		sess:      sess,
		gate:      &promptGate{},
		replayLog: replayLog,
		styles: statusStyles{
			name:   lipgloss.NewStyle().Bold(true),
			info:   lipgloss.NewStyle(),
			replay: lipgloss.NewStyle().Reverse(true),
			prompt: lipgloss.NewStyle().Bold(true),
		},
	}
	sess.SetStatusSink(m.setStatus)
	sess.Dispatcher.Prompt = func(label, value string) (string, bool) {
		m.gate.label = label
		m.gate.value = value
		m.gate.asked = true
		return "", true
	}
	return m
}

func (m *Model) setStatus(msg string) {
	m.statusMu.Lock()
	m.status = msg
	m.statusMu.Unlock()
}

func (m *Model) statusText() string {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	return m.status
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.replayLog != nil {
		l := m.replayLog
		m.replayLog = nil
		return tea.Batch(m.startReplay(l), replayTick())
	}
	return nil
}

func replayTick() tea.Cmd {
	return tea.Tick(replayTickInterval, func(t time.Time) tea.Msg {
		return ReplayTickMsg(t)
	})
}

func (m *Model) startReplay(l *cmdlog.Log) tea.Cmd {
	run, err := m.sess.Engine.Replay(l)
	if err != nil {
		m.setStatus(err.Error())
		return nil
	}
	return func() tea.Msg {
		return ReplayFinishedMsg{Err: run.Wait()}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case StatusMsg:
		m.setStatus(string(msg))
		return m, nil

	case ReplayTickMsg:
		if m.sess.Engine.Current() != nil {
			return m, replayTick()
		}
		return m, nil

	case ReplayFinishedMsg:
		if msg.Err != nil {
			m.setStatus(msg.Err.Error())
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt != nil {
		return m.handlePromptKey(msg)
	}

	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.prefix != "" {
		key = m.prefix + key
		m.prefix = ""
	} else {
		switch key {
		case "g", "z":
			m.prefix = key
			return m, nil
		case "esc":
			m.setStatus("")
			return m, nil
		case "q":
			return m.quitSheet()
		case "D":
			m.sess.Lock()
			m.sess.Open(m.sess.CmdlogSheet())
			m.sess.Unlock()
			return m, nil
		case "ctrl+z":
			m.undoLast()
			return m, nil
		case "ctrl+s":
			m.prompt = &promptState{
				label: "save cmdlog to: ",
				apply: func(m *Model, input string) tea.Cmd {
					m.sess.Lock()
					err := cmdlog.WriteFile(input, m.sess.Recorder.Log())
					m.sess.Unlock()
					if err != nil {
						m.setStatus(err.Error())
					} else {
						m.setStatus(fmt.Sprintf("saved %s", input))
					}
					return nil
				},
			}
			return m, nil
		case "ctrl+p":
			if err := m.sess.Engine.TogglePause(); err != nil {
				m.setStatus(err.Error())
			}
			return m, nil
		case "ctrl+n":
			if err := m.sess.Engine.Advance(); err != nil {
				m.setStatus(err.Error())
			}
			return m, nil
		case "ctrl+k":
			if err := m.sess.Engine.Cancel(); err != nil {
				m.setStatus(err.Error())
			}
			return m, nil
		}
	}

	if cmd, err := m.sess.Registry.ByKeystroke(key); err == nil {
		return m, m.exec(cmd.Longname, key, "")
	}
	return m, nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.prompt
	switch msg.String() {
	case "enter":
		m.prompt = nil
		input := string(p.value)
		if input == "" {
			m.setStatus("aborted")
			return m, nil
		}
		return m, p.apply(m, input)
	case "esc", "ctrl+c":
		m.prompt = nil
		if p.cancel != nil {
			p.cancel(m)
		}
		m.setStatus("aborted")
		return m, nil
	case "backspace":
		if len(p.value) > 0 {
			p.value = p.value[:len(p.value)-1]
		}
		return m, nil
	case "ctrl+u":
		p.value = nil
		return m, nil
	}
	if msg.Type == tea.KeyRunes {
		p.value = append(p.value, msg.Runes...)
	} else if msg.Type == tea.KeySpace {
		p.value = append(p.value, ' ')
	}
	return m, nil
}

// exec dispatches a command against the top sheet. If the command asked
// for input and aborted, the model switches to prompt mode and re-runs it
// with the typed input.
func (m *Model) exec(longname, keystrokes, input string) tea.Cmd {
	m.sess.Lock()
	s := m.sess.Sheets.Top()
	if s == nil {
		m.sess.Unlock()
		return nil
	}

	m.gate.asked = false
	aborted, err := m.sess.Dispatcher.Execute(s, longname, keystrokes, input, "")
	m.sess.Unlock()
	if err != nil {
		m.setStatus(err.Error())
		return nil
	}
	if aborted && m.gate.asked && input == "" {
		m.prompt = &promptState{
			label: m.gate.label,
			value: []rune(m.gate.value),
			apply: func(m *Model, typed string) tea.Cmd {
				return m.exec(longname, keystrokes, typed)
			},
		}
		return nil
	}
	if !aborted {
		m.undone = 0
	}
	return nil
}

// undoLast undoes the most recent not-yet-undone logged command.
func (m *Model) undoLast() {
	m.sess.Lock()
	entries := m.sess.Recorder.Log().Entries
	idx := len(entries) - 1 - m.undone
	if idx < 0 {
		m.sess.Unlock()
		m.setStatus("nothing to undo")
		return
	}
	e := entries[idx]
	m.sess.Engine.Undo(e)
	m.undone++
	m.sess.Unlock()
	m.setStatus(fmt.Sprintf("undid %s", e.Longname))
}

func (m *Model) quitSheet() (tea.Model, tea.Cmd) {
	m.sess.Lock()
	top := m.sess.Sheets.Top()
	if top != nil {
		m.sess.Sheets.Remove(top)
	}
	empty := m.sess.Sheets.Len() == 0
	m.sess.Unlock()
	if empty {
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.ready {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return m, m.exec("scroll-up", "", "")
	case tea.MouseButtonWheelDown:
		return m, m.exec("scroll-down", "", "")
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		m.moveCursorTo(msg.Y, msg.X)
		return m, nil
	case tea.MouseButtonRight:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		if longname := m.hitTest(msg.Y, msg.X, "button3"); longname != "" {
			m.moveCursorTo(msg.Y, msg.X)
			return m, m.exec(longname, "", "")
		}
	}
	return m, nil
}

// moveCursorTo moves the cursor to the clicked cell, if any.
func (m *Model) moveCursorTo(y, x int) {
	m.sess.Lock()
	defer m.sess.Unlock()
	s := m.sess.Sheets.Top()
	if s == nil {
		return
	}
	if rowidx := s.VisibleRowAtY(y); rowidx >= 0 {
		s.CursorRowIndex = rowidx
	}
	if vcolidx := s.VisibleColAtX(x); vcolidx >= 0 {
		s.CursorVisibleColIndex = vcolidx
	}
	s.CheckCursor()
}

// hitTest redraws the grid into a scratch buffer and resolves the command
// registered for the clicked region.
func (m *Model) hitTest(y, x int, button string) string {
	m.sess.Lock()
	defer m.sess.Unlock()
	s := m.sess.Sheets.Top()
	if s == nil || m.gridHeight() <= 0 {
		return ""
	}
	buf := screen.NewBuffer(m.width, m.gridHeight())
	m.sess.Renderer.Draw(buf, s)
	return buf.CommandAt(y, x, button)
}

func (m *Model) gridHeight() int {
	return m.height - 1 // bottom line is the status bar
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	m.sess.Lock()
	defer m.sess.Unlock()
	s := m.sess.Sheets.Top()
	if s == nil {
		return "no sheets open"
	}
	if m.gridHeight() <= 0 || m.width <= 0 {
		return m.statusLine(s)
	}

	buf := screen.NewBuffer(m.width, m.gridHeight())
	m.sess.Renderer.Draw(buf, s)
	return buf.Render() + "\n" + m.statusLine(s)
}

// statusLine renders the bottom line: prompt input while prompting,
// otherwise sheet name, row count, selection count, the last status
// message, and the replay indicator.
func (m *Model) statusLine(s *sheet.Sheet) string {
	if m.prompt != nil {
		line := m.styles.prompt.Render(m.prompt.label) + string(m.prompt.value) + "█"
		return ansi.Truncate(line, m.width, "")
	}

	var parts []string
	parts = append(parts, m.styles.name.Render(s.Name))
	parts = append(parts, m.styles.info.Render(fmt.Sprintf("%d rows", s.NRows())))
	if n := s.NSelected(); n > 0 {
		parts = append(parts, m.styles.info.Render(fmt.Sprintf("%d selected", n)))
	}
	if st := m.statusText(); st != "" {
		parts = append(parts, m.styles.info.Render(st))
	}

	left := strings.Join(parts, "  ")

	right := ""
	if run := m.sess.Engine.Current(); run != nil {
		right = m.styles.replay.Render(run.StatusIndicator())
	}

	leftWidth := ansi.StringWidth(left)
	rightWidth := ansi.StringWidth(right)
	pad := m.width - leftWidth - rightWidth
	if pad < 1 {
		return ansi.Truncate(left, m.width-rightWidth, "…") + right
	}
	return left + strings.Repeat(" ", pad) + right
}

package tui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/gridsheet/gridsheet/internal/cmdlog"
)

// Program wraps the tea.Program for lifecycle management.
type Program struct {
	program *tea.Program
	model   *Model
}

// New creates the TUI program over a session. If replayLog is non-nil the
// replay starts as soon as the program runs.
func New(sess *Session, replayLog *cmdlog.Log) *Program {
	if os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	model := NewModel(sess, replayLog)
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	return &Program{program: program, model: model}
}

// Run starts the TUI. Blocks until the program exits.
func (p *Program) Run() error {
	_, err := p.program.Run()
	return err
}

// Send sends a message to the program.
func (p *Program) Send(msg tea.Msg) {
	p.program.Send(msg)
}

// SendStatus sends a status line message to the program.
func (p *Program) SendStatus(msg string) {
	p.program.Send(StatusMsg(msg))
}

// Quit asks the program to exit.
func (p *Program) Quit() {
	p.program.Quit()
}

// Wait waits for the program to finish.
func (p *Program) Wait() {
	p.program.Wait()
}

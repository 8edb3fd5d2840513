package tui

import "time"

// StatusMsg is a user-visible status line message.
type StatusMsg string

// ReplayTickMsg drives periodic redraws while a replay is in progress.
type ReplayTickMsg time.Time

// ReplayFinishedMsg reports a finished background replay.
type ReplayFinishedMsg struct {
	Err error
}

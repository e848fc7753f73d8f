package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// refreshTickMsg is sent periodically when auto refresh is enabled
type refreshTickMsg time.Time

// autoRefreshCmd schedules the next refresh tick; zero disables it
func autoRefreshCmd(every time.Duration) tea.Cmd {
	if every <= 0 {
		return nil
	}
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

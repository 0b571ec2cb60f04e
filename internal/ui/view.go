package ui

import tea "github.com/charmbracelet/bubbletea"

// View is one screen of the console. AppModel routes messages to the view of
// the current mode.
type View interface {
	Init() tea.Cmd
	Update(tea.Msg) (View, tea.Cmd)
	View() string
}

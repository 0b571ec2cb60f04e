// Package ui is the interactive experiment console built on Bubble Tea.
//
// AppModel is the view controller: it switches between the dashboard, the
// create form and the details screen, and it is the only place loader state
// changes. Remote calls run as tea.Cmds and come back as messages; the list
// synchronizer tags them with an epoch and the detail loader with a token so
// that responses belonging to a stopped timer or an abandoned selection are
// dropped on arrival.
package ui

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

var leaderHelpBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color(ColorAccent)).
	Padding(0, 1).
	MarginTop(1)

// RenderKeybindHelp renders the leader bar shown after SPC: the sequence typed
// so far followed by the keys that can continue it in mode.
func RenderKeybindHelp(h *KeyHandler, mode AppMode) string {
	if h == nil {
		return ""
	}
	bindings := NewKeyMap(h.Registry, h, mode).ShortHelp()
	if len(bindings) == 0 {
		return ""
	}

	hm := help.New()
	hm.Styles.ShortKey = Styles.Selected
	hm.Styles.ShortDesc = Styles.Muted
	hm.Styles.ShortSeparator = Styles.Muted

	typed := leader
	if len(h.Buffer) > 0 {
		typed = strings.Join(h.Buffer, " ")
	}
	return leaderHelpBox.Render(Styles.Muted.Render(typed) + " " + hm.ShortHelpView(bindings))
}

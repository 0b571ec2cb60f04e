package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestKeybindRegistry_BindLookup(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("q", tea.Quit)
	reg.Bind("SPC q", tea.Quit)
	reg.Bind("j", nil)

	if reg.Lookup("q") == nil {
		t.Error("expected q to be bound")
	}
	if reg.Lookup("space q") == nil {
		t.Error("expected space q to normalize to SPC q")
	}
	if reg.Lookup("unknown") != nil {
		t.Error("expected unknown to be unbound")
	}
}

func TestKeyHandler_LeaderKey(t *testing.T) {
	reg := NewKeybindRegistry()
	var executed bool
	reg.Bind("SPC x", func() tea.Msg {
		executed = true
		return nil
	})
	h := NewKeyHandler(reg)

	// Bubble Tea reports space as " ".
	consumed, cmd := h.Handle(keyMsg(" "), ModeDashboard)
	if !consumed || cmd != nil {
		t.Errorf("space: consumed=%v cmd=%v", consumed, cmd)
	}
	if !h.LeaderWaiting {
		t.Error("expected leader waiting after space")
	}

	consumed, cmd = h.Handle(keyMsg("x"), ModeDashboard)
	if !consumed {
		t.Errorf("x: expected consumed")
	}
	if h.LeaderWaiting {
		t.Error("leader should not be waiting after completing sequence")
	}
	if cmd == nil {
		t.Fatal("expected command for SPC x")
	}
	cmd()
	if !executed {
		t.Error("expected command to execute")
	}
}

func TestKeyHandler_NestedLeaderSequence(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.BindWithDesc("SPC e n", func() tea.Msg { return ShowCreateMsg{} }, "New experiment")
	h := NewKeyHandler(reg)

	h.Handle(keyMsg(" "), ModeDashboard)
	consumed, cmd := h.Handle(keyMsg("e"), ModeDashboard)
	if !consumed || cmd != nil || !h.LeaderWaiting {
		t.Fatalf("SPC e: consumed=%v cmd=%v waiting=%v", consumed, cmd, h.LeaderWaiting)
	}
	_, cmd = h.Handle(keyMsg("n"), ModeDashboard)
	if cmd == nil {
		t.Fatal("expected command for SPC e n")
	}
	if _, ok := cmd().(ShowCreateMsg); !ok {
		t.Error("expected ShowCreateMsg")
	}
}

func TestKeyHandler_EscCancelsLeader(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("SPC x", tea.Quit)
	h := NewKeyHandler(reg)

	h.Handle(keyMsg(" "), ModeDashboard)
	if !h.LeaderWaiting {
		t.Fatal("expected leader waiting")
	}

	consumed, cmd := h.Handle(keyMsg("esc"), ModeDashboard)
	if !consumed || cmd != nil {
		t.Errorf("esc: consumed=%v cmd=%v", consumed, cmd)
	}
	if h.LeaderWaiting {
		t.Error("esc should cancel leader mode")
	}
}

func TestKeyHandler_SingleKey(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("q", tea.Quit)
	h := NewKeyHandler(reg)

	consumed, cmd := h.Handle(keyMsg("q"), ModeDetails)
	if !consumed || cmd == nil {
		t.Errorf("q: consumed=%v cmd=%v", consumed, cmd)
	}
}

func TestKeyHandler_UnboundFallsThrough(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("q", tea.Quit)
	h := NewKeyHandler(reg)

	consumed, _ := h.Handle(keyMsg("j"), ModeDashboard)
	if consumed {
		t.Error("unbound j should not be consumed")
	}
}

func TestKeyHandler_ModeFilter(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.BindWithDescForMode("n", func() tea.Msg { return ShowCreateMsg{} }, "New experiment", []AppMode{ModeDashboard})
	h := NewKeyHandler(reg)

	if consumed, _ := h.Handle(keyMsg("n"), ModeDetails); consumed {
		t.Error("n is dashboard-only and should fall through in Details")
	}
	if consumed, cmd := h.Handle(keyMsg("n"), ModeDashboard); !consumed || cmd == nil {
		t.Errorf("n on dashboard: consumed=%v cmd=%v", consumed, cmd)
	}
}

func TestLeaderHints_SubmenuLabelAndModes(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.BindWithDesc("SPC q", tea.Quit, "Quit")
	reg.BindWithDescForMode("SPC e n", func() tea.Msg { return ShowCreateMsg{} }, "New experiment", []AppMode{ModeDashboard})
	reg.BindWithDescForMode("SPC e b", func() tea.Msg { return BackMsg{} }, "Back to list", []AppMode{ModeDetails})

	top := reg.LeaderHints("", ModeDashboard)
	if top["e"] != "Experiment" {
		t.Errorf("expected submenu label Experiment, got %q", top["e"])
	}
	if top["q"] != "Quit" {
		t.Errorf("expected Quit hint, got %q", top["q"])
	}

	dash := reg.LeaderHints("SPC e", ModeDashboard)
	if _, ok := dash["b"]; ok {
		t.Error("Back should not be offered on the dashboard")
	}
	if dash["n"] != "New experiment" {
		t.Errorf("expected New experiment hint, got %q", dash["n"])
	}
	details := reg.LeaderHints("SPC e", ModeDetails)
	if _, ok := details["n"]; ok {
		t.Error("New experiment should not be offered in Details")
	}
}

func TestRenderKeybindHelp(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.BindWithDesc("SPC q", tea.Quit, "Quit")
	h := NewKeyHandler(reg)
	h.Handle(keyMsg(" "), ModeDashboard)

	out := RenderKeybindHelp(h, ModeDashboard)
	if !strings.Contains(out, "Quit") || !strings.Contains(out, "SPC") {
		t.Errorf("help should list SPC q Quit, got:\n%s", out)
	}
	if RenderKeybindHelp(nil, ModeDashboard) != "" {
		t.Error("nil handler should render nothing")
	}
}

// keyMsg creates a tea.KeyMsg for testing. Bubble Tea uses KeyType and Runes.
// KeySpace.String() returns " ", KeyEsc returns "esc", etc.
func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "space", " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// typeText feeds s to v one rune at a time.
func typeText(v View, s string) View {
	for _, r := range s {
		v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return v
}

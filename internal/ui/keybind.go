package ui

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// leader is the canonical name of the space key in a bound sequence.
const leader = "SPC"

// binding is one registered key sequence.
type binding struct {
	cmd   tea.Cmd
	desc  string
	modes []AppMode // empty means every mode
}

func (b binding) appliesTo(mode AppMode) bool {
	return len(b.modes) == 0 || slices.Contains(b.modes, mode)
}

// KeybindRegistry maps key sequences to commands. Sequences are written
// spacemacs style: "q", "ctrl+c", or "SPC e n" for space, then e, then n.
type KeybindRegistry struct {
	bindings map[string]binding
}

// NewKeybindRegistry creates an empty registry.
func NewKeybindRegistry() *KeybindRegistry {
	return &KeybindRegistry{bindings: make(map[string]binding)}
}

// Bind registers seq for every mode, without a help description.
func (r *KeybindRegistry) Bind(seq string, cmd tea.Cmd) {
	r.BindWithDescForMode(seq, cmd, "", nil)
}

// BindWithDesc registers seq for every mode.
func (r *KeybindRegistry) BindWithDesc(seq string, cmd tea.Cmd, desc string) {
	r.BindWithDescForMode(seq, cmd, desc, nil)
}

// BindWithDescForMode registers seq for the listed modes only. An existing
// binding for seq is replaced.
func (r *KeybindRegistry) BindWithDescForMode(seq string, cmd tea.Cmd, desc string, modes []AppMode) {
	r.bindings[normalizeSeq(seq)] = binding{cmd: cmd, desc: desc, modes: modes}
}

// Lookup returns the command bound to seq in any mode.
func (r *KeybindRegistry) Lookup(seq string) tea.Cmd {
	return r.bindings[normalizeSeq(seq)].cmd
}

// LookupForMode returns the command bound to seq when it applies to mode.
func (r *KeybindRegistry) LookupForMode(seq string, mode AppMode) tea.Cmd {
	b, ok := r.bindings[normalizeSeq(seq)]
	if !ok || !b.appliesTo(mode) {
		return nil
	}
	return b.cmd
}

// HasPrefix reports whether a longer sequence continues seq.
func (r *KeybindRegistry) HasPrefix(seq string) bool {
	prefix := normalizeSeq(seq) + " "
	for s := range r.bindings {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// submenuLabels names leader keys that open a submenu.
var submenuLabels = map[string]string{
	"e": "Experiment",
}

// LeaderHints returns the next key of every leader sequence that continues
// currentSeq ("" meaning just SPC) and applies to mode, mapped to its
// description. Keys that open a submenu get the submenu's label.
func (r *KeybindRegistry) LeaderHints(currentSeq string, mode AppMode) map[string]string {
	base := leader
	if currentSeq != "" {
		base = normalizeSeq(currentSeq)
	}
	out := make(map[string]string)
	for seq, b := range r.bindings {
		rest, ok := strings.CutPrefix(seq, base+" ")
		if !ok || b.cmd == nil || !b.appliesTo(mode) {
			continue
		}
		next, _, _ := strings.Cut(rest, " ")
		switch {
		case r.HasPrefix(base + " " + next):
			if label, ok := submenuLabels[next]; ok {
				out[next] = label
			} else {
				out[next] = next + "…"
			}
		case b.desc != "":
			out[next] = b.desc
		default:
			out[next] = seq
		}
	}
	return out
}

// normalizeSeq rewrites tea's names for space to SPC.
func normalizeSeq(seq string) string {
	parts := strings.Fields(seq)
	for i, p := range parts {
		parts[i] = keyToSeqPart(p)
	}
	return strings.Join(parts, " ")
}

func keyToSeqPart(s string) string {
	if s == " " || s == "space" {
		return leader
	}
	return s
}

// KeyHandler tracks the leader sequence being typed and resolves keys
// against the registry.
type KeyHandler struct {
	Registry      *KeybindRegistry
	LeaderWaiting bool
	Buffer        []string // sequence typed so far, starting with SPC
}

// NewKeyHandler creates a handler with space as the leader key.
func NewKeyHandler(reg *KeybindRegistry) *KeyHandler {
	return &KeyHandler{Registry: reg}
}

func (h *KeyHandler) clear() {
	h.LeaderWaiting = false
	h.Buffer = nil
}

// Handle resolves msg in mode. consumed reports whether the key belonged to
// the keybind system and must not reach the view; cmd is the bound command.
func (h *KeyHandler) Handle(msg tea.KeyMsg, mode AppMode) (consumed bool, cmd tea.Cmd) {
	part := keyToSeqPart(msg.String())

	if part == "esc" {
		if !h.LeaderWaiting {
			return false, nil
		}
		h.clear()
		return true, nil
	}
	if part == leader {
		h.LeaderWaiting = true
		h.Buffer = []string{leader}
		return true, nil
	}

	if !h.LeaderWaiting {
		if c := h.Registry.LookupForMode(part, mode); c != nil {
			return true, c
		}
		return false, nil
	}

	h.Buffer = append(h.Buffer, part)
	seq := strings.Join(h.Buffer, " ")
	if c := h.Registry.LookupForMode(seq, mode); c != nil {
		h.clear()
		return true, c
	}
	if !h.Registry.HasPrefix(seq) {
		// Unknown sequence: leave leader mode and swallow the key.
		h.clear()
	}
	return true, nil
}

// KeyMap adapts the leader hints for the current mode to help.KeyMap.
type KeyMap struct {
	registry   *KeybindRegistry
	keyHandler *KeyHandler
	mode       AppMode
}

// NewKeyMap creates a KeyMap for the given registry, handler and mode.
func NewKeyMap(registry *KeybindRegistry, keyHandler *KeyHandler, mode AppMode) help.KeyMap {
	return &KeyMap{registry: registry, keyHandler: keyHandler, mode: mode}
}

// ShortHelp returns one binding per hint, sorted by key, then esc.
func (km *KeyMap) ShortHelp() []key.Binding {
	if km.registry == nil {
		return nil
	}
	var current string
	if km.keyHandler != nil {
		current = strings.Join(km.keyHandler.Buffer, " ")
	}
	hints := km.registry.LeaderHints(current, km.mode)
	if len(hints) == 0 {
		return nil
	}
	bindings := make([]key.Binding, 0, len(hints)+1)
	for _, k := range slices.Sorted(maps.Keys(hints)) {
		bindings = append(bindings, key.NewBinding(key.WithKeys(k), key.WithHelp(k, hints[k])))
	}
	return append(bindings, key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")))
}

// FullHelp returns ShortHelp as a single column.
func (km *KeyMap) FullHelp() [][]key.Binding {
	short := km.ShortHelp()
	if len(short) == 0 {
		return nil
	}
	return [][]key.Binding{short}
}

package ui

import (
	"errors"
	"testing"
	"time"

	"a3kd/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

// deliver feeds detail-cycle messages to l and returns the commands produced.
func deliver(l *DetailLoader, msgs ...tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for _, m := range msgs {
		var cmd tea.Cmd
		switch m := m.(type) {
		case detailLoadedMsg:
			cmd = l.handleDetail(m)
		case metricsLoadedMsg:
			cmd = l.handleMetrics(m)
		case assistantLoadedMsg:
			cmd = l.handleAssistant(m)
		case detailTickMsg:
			cmd = l.handleTick(m)
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func newTestLoader(client api.Client) *DetailLoader {
	return NewDetailLoader(client, discardLogger(), time.Millisecond, 0)
}

func TestDetailLoader_StartIssuesThreeRequests(t *testing.T) {
	client := newFakeClient()
	series, _ := api.NewMetricSeries([]int{1, 2}, []float64{0.5, 0.6}, []float64{0.1, 0.2})
	client.metrics["exp_1"] = series
	client.assistants["exp_1"] = api.AssistantResult{ArchitectureID: "ta-1", ValAccuracy: 0.7}
	l := newTestLoader(client)

	msgs := runCmd(l.Start("exp_1"))
	if len(msgs) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(msgs))
	}
	deliver(l, msgs...)

	if d, ok := l.Detail().Get(); !ok || d.ID != "exp_1" {
		t.Errorf("detail = %#v, ok=%v", d, ok)
	}
	if m, ok := l.Metrics().Get(); !ok || m.Len() != 2 {
		t.Errorf("metrics = %#v", m)
	}
	if a, ok := l.Assistant().Get(); !ok || a.ArchitectureID != "ta-1" {
		t.Errorf("assistant = %#v", a)
	}
}

func TestDetailLoader_DropsResponsesFromPreviousSelection(t *testing.T) {
	l := newTestLoader(newFakeClient())

	stale := runCmd(l.Start("a"))
	fresh := runCmd(l.Start("b"))

	// Newer responses arrive first, older ones last.
	deliver(l, fresh...)
	deliver(l, stale...)

	d, ok := l.Detail().Get()
	if !ok || d.ID != "b" {
		t.Errorf("detail id = %q, want b", d.ID)
	}
	if l.ID() != "b" {
		t.Errorf("ID() = %q", l.ID())
	}
}

func TestDetailLoader_StaleOnlyLeavesNothing(t *testing.T) {
	l := newTestLoader(newFakeClient())
	stale := runCmd(l.Start("a"))
	l.Start("b")

	if cmds := deliver(l, stale...); len(cmds) != 0 {
		t.Error("stale responses must not schedule anything")
	}
	if l.Detail().IsPresent() || l.Metrics().IsPresent() || l.Assistant().IsPresent() {
		t.Error("stale responses for a must not populate b")
	}
}

func TestDetailLoader_ResetClearsEverything(t *testing.T) {
	client := newFakeClient()
	client.assistants["a"] = api.AssistantResult{ArchitectureID: "ta"}
	l := newTestLoader(client)
	msgs := runCmd(l.Start("a"))
	deliver(l, msgs[:2]...)

	l.Reset()
	if l.Active() {
		t.Error("Reset should deactivate the loader")
	}
	if l.Detail().IsPresent() || l.Metrics().IsPresent() || l.Assistant().IsPresent() {
		t.Error("Reset must clear detail, metrics and assistant")
	}
	// The last response of the cancelled cycle is dropped.
	deliver(l, msgs[2:]...)
	if l.Assistant().IsPresent() || l.Detail().IsPresent() {
		t.Error("late response applied after Reset")
	}
}

func TestDetailLoader_AssistantFailureIsAbsence(t *testing.T) {
	client := newFakeClient()
	client.assistantErr = &api.TransportError{Op: "get-best-assistant", StatusCode: 500}
	l := newTestLoader(client)
	deliver(l, runCmd(l.Start("a"))...)

	if l.Assistant().IsPresent() {
		t.Error("assistant should be absent")
	}
	if l.DetailErr() != nil || l.MetricsErr() != nil {
		t.Error("an assistant failure must not surface as an error")
	}
	if !l.Detail().IsPresent() {
		t.Error("detail should still load")
	}
}

func TestDetailLoader_DetailAndMetricsErrors(t *testing.T) {
	client := newFakeClient()
	client.detailErr = &api.TransportError{Op: "get-experiment", StatusCode: 404}
	client.metricsErr = &api.DecodeError{Op: "get-metrics", Err: api.ErrMisalignedSeries}
	l := newTestLoader(client)
	deliver(l, runCmd(l.Start("a"))...)

	if !api.IsNotFound(l.DetailErr()) {
		t.Errorf("DetailErr = %v", l.DetailErr())
	}
	var de *api.DecodeError
	if !errors.As(l.MetricsErr(), &de) {
		t.Errorf("MetricsErr = %v", l.MetricsErr())
	}
	if l.Detail().IsPresent() || l.Metrics().IsPresent() {
		t.Error("failed loads must leave the values absent")
	}
}

func TestDetailLoader_RepollsAfterRoundSettles(t *testing.T) {
	client := newFakeClient()
	l := newTestLoader(client)
	msgs := runCmd(l.Start("a"))

	if cmds := deliver(l, msgs[:2]...); len(cmds) != 0 {
		t.Fatal("no tick before the round completes")
	}
	cmds := deliver(l, msgs[2])
	if len(cmds) != 1 {
		t.Fatalf("expected one tick after the round, got %d", len(cmds))
	}
	tick, ok := cmds[0]().(detailTickMsg)
	if !ok || tick.token != l.token {
		t.Fatalf("tick = %#v", tick)
	}
	next := runCmd(l.handleTick(tick))
	if len(next) != 3 {
		t.Fatalf("re-poll should issue 3 requests, got %d", len(next))
	}
	if client.Calls("detail") != 2 {
		t.Errorf("detail calls = %d, want 2", client.Calls("detail"))
	}
}

func TestDetailLoader_ReloadKeepsDataAndDropsOldRound(t *testing.T) {
	l := newTestLoader(newFakeClient())
	deliver(l, runCmd(l.Start("a"))...)
	oldToken := l.token

	round := runCmd(l.Reload())
	if !l.Detail().IsPresent() {
		t.Error("Reload should keep the displayed detail")
	}
	if cmd := l.handleTick(detailTickMsg{token: oldToken}); cmd != nil {
		t.Error("tick from before Reload must be dropped")
	}
	deliver(l, round...)
	if !l.Detail().IsPresent() {
		t.Error("reloaded detail missing")
	}

	l.Reset()
	if l.Reload() != nil {
		t.Error("Reload on an idle loader does nothing")
	}
}

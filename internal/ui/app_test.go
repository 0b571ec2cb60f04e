package ui

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"a3kd/internal/api"
	"a3kd/internal/api/apitest"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestApp(client api.Client) *appModelAdapter {
	m := NewAppModel(Options{
		Client:          client,
		Logger:          discardLogger(),
		BaseURL:         "http://backend.test",
		RefreshInterval: time.Millisecond,
	})
	return &appModelAdapter{AppModel: m}
}

// pump delivers msgs to a and returns the messages produced by the
// resulting commands, without following timers.
func pump(a *appModelAdapter, msgs ...tea.Msg) []tea.Msg {
	var out []tea.Msg
	for _, m := range msgs {
		_, cmd := a.Update(m)
		out = append(out, runCmdNoTicks(cmd)...)
	}
	return out
}

// runCmdNoTicks is runCmd minus timer and spinner messages, so a test can
// drive the loop one step at a time.
func runCmdNoTicks(cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	for _, m := range runCmd(cmd) {
		switch m.(type) {
		case listTickMsg, detailTickMsg:
			continue
		}
		if _, ok := m.(SubmitExperimentMsg); ok || isDataMsg(m) {
			out = append(out, m)
		}
	}
	return out
}

func isDataMsg(m tea.Msg) bool {
	switch m.(type) {
	case experimentsLoadedMsg, catalogLoadedMsg, detailLoadedMsg, metricsLoadedMsg,
		assistantLoadedMsg, experimentCreatedMsg, healthCheckedMsg, SelectExperimentMsg, BackMsg,
		ShowCreateMsg, RefreshMsg:
		return true
	}
	return false
}

// startApp runs Init and delivers its responses.
func startApp(t *testing.T, client api.Client) *appModelAdapter {
	t.Helper()
	a := newTestApp(client)
	pump(a, runCmdNoTicks(a.Init())...)
	return a
}

func TestApp_InitLoadsListCatalogAndHealth(t *testing.T) {
	client := newFakeClient()
	client.experiments = summaries("exp_1", "exp_2")
	a := startApp(t, client)

	if a.Mode != ModeDashboard {
		t.Errorf("initial mode = %v", a.Mode)
	}
	if len(a.Dashboard.Experiments) != 2 {
		t.Errorf("dashboard rows = %d", len(a.Dashboard.Experiments))
	}
	if !a.Catalog.Loaded(api.KindTeacher) || !a.Catalog.Loaded(api.KindStudent) {
		t.Error("catalog should load at startup")
	}
	if a.Health != "ok" {
		t.Errorf("health = %q", a.Health)
	}
	out := a.View()
	if !strings.Contains(out, "Backend URL: http://backend.test") {
		t.Errorf("header missing backend URL:\n%s", out)
	}
}

func TestApp_EnterOpensDetails(t *testing.T) {
	client := newFakeClient()
	client.experiments = summaries("exp_1", "exp_2")
	a := startApp(t, client)

	_, cmd := a.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("enter on a row should select it")
	}
	sel, ok := cmd().(SelectExperimentMsg)
	if !ok || sel.ID != "exp_1" {
		t.Fatalf("got %#v", sel)
	}

	_, cmd = a.Update(sel)
	if a.Mode != ModeDetails {
		t.Fatalf("mode = %v, want Details", a.Mode)
	}
	if !strings.Contains(a.View(), "Loading experiment exp_1") {
		t.Error("Details without a detail should show the placeholder")
	}
	pump(a, runCmdNoTicks(cmd)...)
	if d, ok := a.Loader.Detail().Get(); !ok || d.ID != "exp_1" {
		t.Errorf("detail = %#v", d)
	}
	if !strings.Contains(a.View(), "Experiment exp_1") {
		t.Errorf("view:\n%s", a.View())
	}
}

func TestApp_LeavingDetailsResetsAndDropsLateResponses(t *testing.T) {
	client := newFakeClient()
	client.assistants["exp_1"] = api.AssistantResult{ArchitectureID: "ta"}
	a := startApp(t, client)

	for _, key := range []string{"esc", "backspace"} {
		_, cmd := a.Update(SelectExperimentMsg{ID: "exp_1"})
		responses := runCmdNoTicks(cmd)
		pump(a, responses[0], responses[2]) // detail and assistant; metrics still in flight
		if !a.Loader.Detail().IsPresent() || !a.Loader.Assistant().IsPresent() {
			t.Fatalf("%s: expected detail and assistant before leaving", key)
		}

		a.Update(keyMsg(key))
		if a.Mode != ModeDashboard {
			t.Errorf("%s: mode = %v", key, a.Mode)
		}
		if a.Details != nil || a.Loader.Active() {
			t.Errorf("%s: details should be torn down", key)
		}
		if a.Loader.Detail().IsPresent() || a.Loader.Metrics().IsPresent() || a.Loader.Assistant().IsPresent() {
			t.Errorf("%s: detail, metrics and assistant must be cleared together", key)
		}

		// The metrics response of the abandoned cycle arrives late.
		pump(a, responses[1])
		if a.Loader.Metrics().IsPresent() {
			t.Errorf("%s: late response applied after leaving Details", key)
		}
	}
}

func TestApp_SwitchingExperimentsDropsPrevious(t *testing.T) {
	a := startApp(t, newFakeClient())

	_, cmdA := a.Update(SelectExperimentMsg{ID: "a"})
	_, cmdB := a.Update(SelectExperimentMsg{ID: "b"})
	respA := runCmdNoTicks(cmdA)
	respB := runCmdNoTicks(cmdB)

	pump(a, respB...)
	pump(a, respA...)
	if d, _ := a.Loader.Detail().Get(); d.ID != "b" {
		t.Errorf("detail id = %q, want b", d.ID)
	}
}

func TestApp_RefreshFailureKeepsRows(t *testing.T) {
	client := newFakeClient()
	client.experiments = summaries("exp_1")
	a := startApp(t, client)

	a.Update(experimentsLoadedMsg{epoch: a.List.epoch, periodic: true, err: errors.New("timeout")})
	if len(a.Dashboard.Experiments) != 1 {
		t.Error("rows should survive a failed refresh")
	}
	if !strings.Contains(a.View(), "Refresh failed: timeout") {
		t.Error("failed refresh should be reported")
	}
}

func TestApp_CreateFlowRoundTrip(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	client := api.NewHTTPClient(api.Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	a := startApp(t, client)

	_, cmd := a.Update(keyMsg("n"))
	pump(a, runCmdNoTicks(cmd)...)
	if a.Mode != ModeCreate {
		t.Fatalf("mode = %v, want Create", a.Mode)
	}

	typeText(a.Create, "exp-A")
	_, cmd = a.Update(keyMsg("enter"))
	submit := runCmdNoTicks(cmd)
	if len(submit) != 1 {
		t.Fatalf("expected one submit message, got %d", len(submit))
	}
	created := pump(a, submit...)
	if !a.Create.Submitting() {
		t.Error("form should be submitting")
	}
	refresh := pump(a, created...)
	if a.Mode != ModeDashboard {
		t.Fatalf("mode after create = %v, want Dashboard", a.Mode)
	}
	pump(a, refresh...)

	found := false
	for _, e := range a.Dashboard.Experiments {
		if e.Name == "exp-A" && e.TeacherID == apitest.Teachers[0].ID && e.StudentID == apitest.Students[0].ID {
			found = true
		}
	}
	if !found {
		t.Errorf("created experiment missing from list: %+v", a.Dashboard.Experiments)
	}
	var posts int
	for _, r := range srv.Requests() {
		if r.Method == http.MethodPost {
			posts++
		}
	}
	if posts != 1 {
		t.Errorf("POST count = %d, want 1", posts)
	}
}

func TestApp_CreateFailureKeepsDraft(t *testing.T) {
	client := newFakeClient()
	client.createErr = &api.TransportError{Op: "create-experiment", StatusCode: 500}
	a := startApp(t, client)
	a.Update(ShowCreateMsg{})
	typeText(a.Create, "run1")

	pump(a, pump(a, SubmitExperimentMsg{Config: a.Create.Draft()})...)
	if a.Mode != ModeCreate {
		t.Fatalf("mode = %v, want Create", a.Mode)
	}
	if a.Create.Err() == nil || a.Create.Submitting() {
		t.Error("failure should be shown and submitting cleared")
	}
	if a.Create.Draft().Name != "run1" {
		t.Error("draft lost after failure")
	}
	if !strings.Contains(a.View(), "Create failed") {
		t.Errorf("view:\n%s", a.View())
	}
}

func TestApp_DuplicateSubmitIgnored(t *testing.T) {
	a := startApp(t, newFakeClient())
	a.Update(ShowCreateMsg{})
	typeText(a.Create, "run1")
	cfg := a.Create.Draft()

	_, first := a.Update(SubmitExperimentMsg{Config: cfg})
	_, second := a.Update(SubmitExperimentMsg{Config: cfg})
	if first == nil {
		t.Fatal("first submit should send a request")
	}
	if second != nil {
		t.Error("second submit while in flight must be ignored")
	}
	if a.createSeq != 1 {
		t.Errorf("createSeq = %d", a.createSeq)
	}
}

func TestApp_InvalidSubmitNeverReachesClient(t *testing.T) {
	client := newFakeClient()
	a := startApp(t, client)
	a.Update(ShowCreateMsg{})

	_, cmd := a.Update(SubmitExperimentMsg{Config: api.ExperimentConfig{Name: "", TeacherID: "t1", StudentID: "s1", SearchEpisodes: 5}})
	if cmd != nil {
		t.Error("invalid config should not produce a request")
	}
	if client.Calls("create") != 0 {
		t.Error("client was called")
	}
	var ve *api.ValidationError
	if !errors.As(a.Create.Err(), &ve) {
		t.Errorf("Err = %v", a.Create.Err())
	}
}

func TestApp_CancelCreateThenLateResult(t *testing.T) {
	a := startApp(t, newFakeClient())
	a.Update(ShowCreateMsg{})
	typeText(a.Create, "run1")
	a.Update(SubmitExperimentMsg{Config: a.Create.Draft()})
	_, back := a.Update(keyMsg("esc"))
	pump(a, runCmdNoTicks(back)...)
	if a.Mode != ModeDashboard {
		t.Fatalf("mode = %v", a.Mode)
	}

	a.Update(ShowCreateMsg{})
	pump(a, experimentCreatedMsg{seq: 1, err: errors.New("late")})
	if a.Create.Err() != nil {
		t.Error("a result for a closed form must not land on the new form")
	}
	if !a.StatusIsError {
		t.Error("late failure should go to the status line")
	}
}

func TestApp_QuitKeys(t *testing.T) {
	a := startApp(t, newFakeClient())
	_, cmd := a.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should quit on the dashboard")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}

	a.Update(ShowCreateMsg{})
	a.Update(keyMsg("q"))
	if a.Mode != ModeCreate || a.Create.Draft().Name != "q" {
		t.Errorf("q in Create should be typed, mode=%v name=%q", a.Mode, a.Create.Draft().Name)
	}
	_, cmd = a.Update(keyMsg("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c should quit from Create")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg from ctrl+c")
	}
}

func TestApp_CreateOnlyFromDashboard(t *testing.T) {
	a := startApp(t, newFakeClient())
	a.Update(SelectExperimentMsg{ID: "exp_1"})
	a.Update(keyMsg("n"))
	if a.Mode != ModeDetails {
		t.Errorf("n in Details should not open the form, mode=%v", a.Mode)
	}
}

func TestApp_SelectIgnoredWhileCreating(t *testing.T) {
	a := startApp(t, newFakeClient())
	pump(a, ShowCreateMsg{})
	typeText(a.Create, "draft-in-progress")

	// enter then n on the dashboard can deliver the selection after the form opened.
	_, cmd := a.Update(SelectExperimentMsg{ID: "exp_1"})
	if cmd != nil {
		t.Error("selection in Create should issue no requests")
	}
	if a.Mode != ModeCreate || a.Create == nil {
		t.Fatalf("mode=%v form=%v, want the create form kept", a.Mode, a.Create)
	}
	if a.Loader.Active() {
		t.Error("no detail cycle should start from Create")
	}
	if got := a.Create.Draft().Name; got != "draft-in-progress" {
		t.Errorf("draft name = %q, want it kept", got)
	}
}

func TestApp_EnteringCreateShowsLoadingWhileRetrying(t *testing.T) {
	client := newFakeClient()
	client.teachersErr = errors.New("down")
	a := startApp(t, client)

	client.teachersErr = nil
	a.Update(ShowCreateMsg{})
	out := a.Create.View()
	if !strings.Contains(out, "loading…") {
		t.Errorf("retrying teacher list should show loading:\n%s", out)
	}
	if strings.Contains(out, "could not load") {
		t.Errorf("stale catalog error shown while retrying:\n%s", out)
	}
}

func TestApp_EnteringCreateRetriesFailedCatalog(t *testing.T) {
	client := newFakeClient()
	client.teachersErr = errors.New("down")
	a := startApp(t, client)
	if a.Catalog.Loaded(api.KindTeacher) {
		t.Fatal("teachers should have failed")
	}

	client.teachersErr = nil
	_, cmd := a.Update(ShowCreateMsg{})
	pump(a, runCmdNoTicks(cmd)...)
	if !a.Catalog.Loaded(api.KindTeacher) {
		t.Error("entering Create should retry the teacher list")
	}
	if a.Create.Draft().TeacherID != "t1" {
		t.Errorf("teacher should be preselected once loaded, got %q", a.Create.Draft().TeacherID)
	}
	if client.Calls("students") != 1 {
		t.Errorf("students fetched %d times, want 1", client.Calls("students"))
	}
}

func TestApp_ShutdownStopsPolling(t *testing.T) {
	a := startApp(t, newFakeClient())
	epoch := a.List.epoch
	a.Update(SelectExperimentMsg{ID: "exp_1"})
	a.Shutdown()

	if a.List.Active() || a.Loader.Active() {
		t.Error("Shutdown should stop both loops")
	}
	if _, cmd := a.Update(listTickMsg{epoch: epoch}); cmd != nil {
		t.Error("tick after Shutdown must not refresh")
	}
}

func TestApp_LeaderHelp(t *testing.T) {
	a := startApp(t, newFakeClient())
	a.Update(keyMsg(" "))
	out := a.View()
	if !strings.Contains(out, "Experiment") || !strings.Contains(out, "Quit") {
		t.Errorf("leader help missing:\n%s", out)
	}
	a.Update(keyMsg("e"))
	_, cmd := a.Update(keyMsg("n"))
	if cmd == nil {
		t.Fatal("SPC e n should open the form")
	}
	a.Update(cmd())
	if a.Mode != ModeCreate {
		t.Errorf("mode = %v", a.Mode)
	}
}

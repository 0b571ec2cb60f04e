package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"a3kd/internal/api"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Options configures NewAppModel.
type Options struct {
	Client          api.Client
	Logger          *slog.Logger
	BaseURL         string        // shown in the header
	RefreshInterval time.Duration // list and detail polling delay
	RequestTimeout  time.Duration // per request; zero means none
}

// AppModel is the root model. It owns the mode and the loaders, and is the
// only place their state changes.
type AppModel struct {
	Mode       AppMode
	Dashboard  *DashboardView
	Create     *CreateView
	Details    *DetailView
	KeyHandler *KeyHandler

	List    *ListSynchronizer
	Catalog *CatalogLoader
	Loader  *DetailLoader

	Client  api.Client
	Logger  *slog.Logger
	BaseURL string
	Health  string // "", "ok" or "unreachable"

	Status        string
	StatusIsError bool

	timeout   time.Duration
	createSeq uint64
	width     int
	height    int
	ctx       context.Context
	cancel    context.CancelFunc
}

// Ensure AppModel can be used as tea.Model via adapter.
var _ tea.Model = (*appModelAdapter)(nil)

// appModelAdapter wraps AppModel to implement tea.Model.
type appModelAdapter struct {
	*AppModel
}

// NewAppModel creates the root application model on the dashboard.
func NewAppModel(opts Options) *AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &AppModel{
		Mode:      ModeDashboard,
		Dashboard: NewDashboardView(),
		List:      NewListSynchronizer(opts.Client, logger, opts.RefreshInterval, opts.RequestTimeout),
		Catalog:   NewCatalogLoader(ctx, opts.Client, logger, opts.RequestTimeout),
		Loader:    NewDetailLoader(opts.Client, logger, opts.RefreshInterval, opts.RequestTimeout),
		Client:    opts.Client,
		Logger:    logger,
		BaseURL:   opts.BaseURL,
		timeout:   opts.RequestTimeout,
		ctx:       ctx,
		cancel:    cancel,
	}
	m.KeyHandler = NewKeyHandler(newKeybindRegistry())
	return m
}

// newKeybindRegistry binds the console's global and leader keys.
func newKeybindRegistry() *KeybindRegistry {
	create := func() tea.Msg { return ShowCreateMsg{} }
	refresh := func() tea.Msg { return RefreshMsg{} }
	back := func() tea.Msg { return BackMsg{} }

	reg := NewKeybindRegistry()
	reg.BindWithDesc("q", tea.Quit, "Quit")
	reg.BindWithDesc("ctrl+c", tea.Quit, "Quit")
	reg.BindWithDesc("r", refresh, "Refresh")
	reg.BindWithDescForMode("n", create, "New experiment", []AppMode{ModeDashboard})
	reg.BindWithDesc("SPC q", tea.Quit, "Quit")
	reg.BindWithDescForMode("SPC e n", create, "New experiment", []AppMode{ModeDashboard})
	reg.BindWithDesc("SPC e r", refresh, "Refresh")
	reg.BindWithDescForMode("SPC e b", back, "Back to list", []AppMode{ModeDetails})
	return reg
}

// AsTeaModel returns a tea.Model adapter for use with tea.NewProgram.
func (m *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: m}
}

// Shutdown stops polling and cancels every in-flight request.
func (m *AppModel) Shutdown() {
	m.List.Stop()
	m.Loader.Reset()
	m.cancel()
}

// Init implements tea.Model.
func (a *appModelAdapter) Init() tea.Cmd {
	return tea.Batch(
		a.List.Start(),
		a.Catalog.Load(),
		healthCmd(a.ctx, a.Client, a.timeout),
		a.Dashboard.Init(),
	)
}

// Update implements tea.Model.
func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.Dashboard.Update(msg)
		if a.Details != nil {
			a.Details.Update(msg)
		}
		return a, nil
	case spinner.TickMsg:
		// Both views own a spinner; each ignores ticks for the other.
		var cmds []tea.Cmd
		_, cmd := a.Dashboard.Update(msg)
		cmds = append(cmds, cmd)
		if a.Create != nil {
			_, cmd = a.Create.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case experimentsLoadedMsg:
		return a.handleExperimentsLoaded(msg)
	case listTickMsg:
		return a, a.List.handleTick(msg)
	case catalogLoadedMsg:
		return a.handleCatalogLoaded(msg)
	case detailLoadedMsg:
		return a, a.Loader.handleDetail(msg)
	case metricsLoadedMsg:
		return a, a.Loader.handleMetrics(msg)
	case assistantLoadedMsg:
		return a, a.Loader.handleAssistant(msg)
	case detailTickMsg:
		return a, a.Loader.handleTick(msg)
	case healthCheckedMsg:
		return a.handleHealthChecked(msg)

	case SelectExperimentMsg:
		return a.handleSelectExperiment(msg)
	case ShowCreateMsg:
		return a.handleShowCreate()
	case BackMsg:
		a.goDashboard()
		return a, nil
	case RefreshMsg:
		return a.handleRefresh()
	case SubmitExperimentMsg:
		return a.handleSubmit(msg)
	case experimentCreatedMsg:
		return a.handleExperimentCreated(msg)

	case tea.KeyMsg:
		if model, cmd, handled := a.handleKey(msg); handled {
			return model, cmd
		}
	}

	v := a.currentView()
	if v == nil {
		return a, nil
	}
	_, cmd := v.Update(msg)
	return a, cmd
}

// handleKey runs global key handling. While the create form is open every
// key except ctrl+c goes to the form, so typing q or space is just text.
func (a *appModelAdapter) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	s := msg.String()
	if a.Mode == ModeCreate {
		if s == "ctrl+c" {
			return a, tea.Quit, true
		}
		return nil, nil, false
	}

	if a.KeyHandler != nil {
		if consumed, cmd := a.KeyHandler.Handle(msg, a.Mode); consumed {
			return a, cmd, true
		}
	}

	switch {
	case a.Mode == ModeDashboard && s == "enter":
		if exp, ok := a.Dashboard.Selected(); ok {
			id := exp.ID
			return a, func() tea.Msg { return SelectExperimentMsg{ID: id} }, true
		}
		return a, nil, true
	case a.Mode == ModeDetails && (s == "esc" || s == "backspace"):
		a.goDashboard()
		return a, nil, true
	}
	return nil, nil, false
}

// View implements tea.Model.
func (a *appModelAdapter) View() string {
	var b strings.Builder
	b.WriteString(a.header() + "\n\n")
	if v := a.currentView(); v != nil {
		b.WriteString(v.View())
	}
	b.WriteString("\n")
	if a.Status != "" {
		style := Styles.Status
		if a.StatusIsError {
			style = Styles.Error
		}
		b.WriteString(style.Render(a.Status) + "\n")
	}
	switch a.Mode {
	case ModeDashboard:
		b.WriteString(Styles.Hint.Render("enter: open  n: new experiment  r: refresh  SPC: commands  q: quit"))
	case ModeDetails:
		b.WriteString(Styles.Hint.Render("esc: back  r: refresh  j/k: scroll  SPC: commands  q: quit"))
	}
	if a.KeyHandler != nil && a.KeyHandler.LeaderWaiting {
		b.WriteString("\n" + RenderKeybindHelp(a.KeyHandler, a.Mode))
	}
	return b.String()
}

func (a *appModelAdapter) header() string {
	title := Styles.Title.Render("A3KD  Knowledge Distillation Playground")
	backend := Styles.Muted.Render(fmt.Sprintf("Backend URL: %s", a.BaseURL))
	switch a.Health {
	case "ok":
		backend += " " + Styles.OK.Render("(ok)")
	case "unreachable":
		backend += " " + Styles.Error.Render("(unreachable)")
	}
	return title + "\n" + backend
}

func (a *appModelAdapter) currentView() View {
	switch a.Mode {
	case ModeCreate:
		if a.Create != nil {
			return a.Create
		}
	case ModeDetails:
		if a.Details != nil {
			return a.Details
		}
	}
	return a.Dashboard
}

package ui

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

// handleExperimentsLoaded applies a list refresh and redraws the dashboard.
func (a *appModelAdapter) handleExperimentsLoaded(msg experimentsLoadedMsg) (tea.Model, tea.Cmd) {
	cmd := a.List.handleLoaded(msg)
	a.Dashboard.SetExperiments(a.List.Experiments(), a.List.Loaded(), a.List.Err())
	return a, cmd
}

// handleCatalogLoaded stores a model list and refreshes the open form.
func (a *appModelAdapter) handleCatalogLoaded(msg catalogLoadedMsg) (tea.Model, tea.Cmd) {
	a.Catalog.handleLoaded(msg)
	if a.Create != nil {
		a.Create.syncCatalog(a.Catalog)
	}
	return a, nil
}

func (a *appModelAdapter) handleHealthChecked(msg healthCheckedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.Health = "unreachable"
		a.Logger.Warn("backend health check failed", slog.String("url", a.BaseURL), slog.Any("error", msg.err))
		return a, nil
	}
	a.Health = "ok"
	return a, nil
}

// handleSelectExperiment enters Details for msg.ID from the dashboard. From
// Details this drops the previous experiment first, exactly as leaving and
// re-entering would. The create form is never left this way.
func (a *appModelAdapter) handleSelectExperiment(msg SelectExperimentMsg) (tea.Model, tea.Cmd) {
	if msg.ID == "" || a.Mode == ModeCreate {
		return a, nil
	}
	a.Mode = ModeDetails
	a.Details = NewDetailView(a.Loader)
	if a.width > 0 {
		a.Details.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	}
	return a, a.Loader.Start(msg.ID)
}

// handleShowCreate opens a fresh form and loads whatever catalog is missing.
func (a *appModelAdapter) handleShowCreate() (tea.Model, tea.Cmd) {
	if a.Mode != ModeDashboard {
		return a, nil
	}
	a.Mode = ModeCreate
	a.Create = NewCreateView()
	cmd := a.Catalog.Load()
	a.Create.syncCatalog(a.Catalog)
	return a, tea.Batch(a.Create.Init(), cmd)
}

// goDashboard leaves Create or Details. Leaving Details cancels the detail
// cycle and clears detail, metrics and assistant together.
func (a *appModelAdapter) goDashboard() {
	switch a.Mode {
	case ModeDetails:
		a.Loader.Reset()
		a.Details = nil
	case ModeCreate:
		a.Create = nil
	}
	a.Mode = ModeDashboard
}

func (a *appModelAdapter) handleRefresh() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{a.List.Refresh()}
	if a.Mode == ModeDetails {
		cmds = append(cmds, a.Loader.Reload())
	}
	return a, tea.Batch(cmds...)
}

// handleSubmit sends the draft unless a submission is already in flight.
func (a *appModelAdapter) handleSubmit(msg SubmitExperimentMsg) (tea.Model, tea.Cmd) {
	if a.Mode != ModeCreate || a.Create == nil || a.Create.Submitting() {
		return a, nil
	}
	if err := msg.Config.Validate(); err != nil {
		a.Create.submitFailed(err)
		return a, nil
	}
	a.createSeq++
	return a, tea.Batch(
		a.Create.beginSubmit(),
		createExperimentCmd(a.ctx, a.Client, a.timeout, a.createSeq, msg.Config),
	)
}

// handleExperimentCreated applies a submission result. Success always
// refreshes the list; only the form that submitted is closed or shows the error.
func (a *appModelAdapter) handleExperimentCreated(msg experimentCreatedMsg) (tea.Model, tea.Cmd) {
	current := a.Mode == ModeCreate && a.Create != nil && a.Create.Submitting() && msg.seq == a.createSeq
	if msg.err != nil {
		a.Logger.Warn("experiment creation failed", slog.Any("error", msg.err))
		if current {
			a.Create.submitFailed(msg.err)
			return a, nil
		}
		a.Status = fmt.Sprintf("Create experiment: %v", msg.err)
		a.StatusIsError = true
		return a, nil
	}

	a.Logger.Info("experiment created",
		slog.String("id", msg.result.ExperimentID),
		slog.String("status", msg.result.Status))
	a.Status = fmt.Sprintf("Created experiment %s", msg.result.ExperimentID)
	a.StatusIsError = false
	if current {
		a.goDashboard()
	}
	return a, a.List.Refresh()
}

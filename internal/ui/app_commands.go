package ui

import (
	"context"
	"time"

	"a3kd/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

// requestContext bounds a single request by timeout. A zero timeout only
// inherits cancellation from parent.
func requestContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

// listExperimentsCmd fetches the experiment list for the given epoch.
func listExperimentsCmd(parent context.Context, client api.Client, timeout time.Duration, epoch uint64, periodic bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext(parent, timeout)
		defer cancel()
		exps, err := client.ListExperiments(ctx)
		return experimentsLoadedMsg{epoch: epoch, periodic: periodic, experiments: exps, err: err}
	}
}

// listTickCmd schedules the next periodic list refresh.
func listTickCmd(interval time.Duration, epoch uint64) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return listTickMsg{epoch: epoch}
	})
}

// loadModelsCmd fetches the teacher or student catalog.
func loadModelsCmd(parent context.Context, client api.Client, timeout time.Duration, kind api.ModelKind) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext(parent, timeout)
		defer cancel()
		var (
			models []api.ModelOption
			err    error
		)
		switch kind {
		case api.KindTeacher:
			models, err = client.ListTeachers(ctx)
		case api.KindStudent:
			models, err = client.ListStudents(ctx)
		}
		return catalogLoadedMsg{kind: kind, models: models, err: err}
	}
}

func loadDetailCmd(parent context.Context, client api.Client, timeout time.Duration, token uint64, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext(parent, timeout)
		defer cancel()
		d, err := client.GetExperiment(ctx, id)
		return detailLoadedMsg{token: token, detail: d, err: err}
	}
}

func loadMetricsCmd(parent context.Context, client api.Client, timeout time.Duration, token uint64, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext(parent, timeout)
		defer cancel()
		m, err := client.GetMetrics(ctx, id)
		return metricsLoadedMsg{token: token, metrics: m, err: err}
	}
}

func loadAssistantCmd(parent context.Context, client api.Client, timeout time.Duration, token uint64, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext(parent, timeout)
		defer cancel()
		a, err := client.GetBestAssistant(ctx, id)
		return assistantLoadedMsg{token: token, assistant: a, err: err}
	}
}

// detailTickCmd schedules the next re-poll of the open experiment.
func detailTickCmd(interval time.Duration, token uint64) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return detailTickMsg{token: token}
	})
}

// createExperimentCmd submits cfg. seq identifies the submission so a result
// arriving after the form was closed is not applied to a newer form.
func createExperimentCmd(parent context.Context, client api.Client, timeout time.Duration, seq uint64, cfg api.ExperimentConfig) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext(parent, timeout)
		defer cancel()
		res, err := client.CreateExperiment(ctx, cfg)
		return experimentCreatedMsg{seq: seq, result: res, err: err}
	}
}

func healthCmd(parent context.Context, client api.Client, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext(parent, timeout)
		defer cancel()
		st, err := client.Health(ctx)
		return healthCheckedMsg{status: st, err: err}
	}
}

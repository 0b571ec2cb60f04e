package ui

import (
	"context"
	"log/slog"
	"time"

	"a3kd/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

// detailRequests is the number of requests in one detail round.
const detailRequests = 3

// DetailLoader fetches the detail, metrics and best assistant of the open
// experiment, then polls them again every interval until Reset.
//
// Each cycle has a token. Responses and ticks carrying another token are
// dropped, so a late response for a previous experiment never shows up
// under the current one.
type DetailLoader struct {
	client   api.Client
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration

	id      string
	token   uint64
	ctx     context.Context
	cancel  context.CancelFunc
	pending int

	detail     api.Optional[api.ExperimentDetail]
	metrics    api.Optional[api.MetricSeries]
	assistant  api.Optional[api.AssistantResult]
	detailErr  error
	metricsErr error
}

// NewDetailLoader returns an idle loader. A zero interval disables re-polling.
func NewDetailLoader(client api.Client, logger *slog.Logger, interval, timeout time.Duration) *DetailLoader {
	return &DetailLoader{
		client:   client,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
	}
}

// Start clears any previous experiment and begins a cycle for id.
func (l *DetailLoader) Start(id string) tea.Cmd {
	l.Reset()
	l.id = id
	l.ctx, l.cancel = context.WithCancel(context.Background())
	return l.fetch()
}

// Reload restarts the cycle for the open experiment, keeping what is
// displayed until fresh responses arrive.
func (l *DetailLoader) Reload() tea.Cmd {
	if !l.Active() {
		return nil
	}
	l.cancel()
	l.token++
	l.ctx, l.cancel = context.WithCancel(context.Background())
	return l.fetch()
}

// Reset cancels the cycle and clears detail, metrics and assistant together.
func (l *DetailLoader) Reset() {
	if l.cancel != nil {
		l.cancel()
	}
	l.token++
	l.id = ""
	l.ctx, l.cancel = nil, nil
	l.pending = 0
	l.detail = api.Absent[api.ExperimentDetail]()
	l.metrics = api.Absent[api.MetricSeries]()
	l.assistant = api.Absent[api.AssistantResult]()
	l.detailErr = nil
	l.metricsErr = nil
}

func (l *DetailLoader) Active() bool { return l.cancel != nil }

func (l *DetailLoader) ID() string { return l.id }

func (l *DetailLoader) Detail() api.Optional[api.ExperimentDetail] { return l.detail }

func (l *DetailLoader) Metrics() api.Optional[api.MetricSeries] { return l.metrics }

func (l *DetailLoader) Assistant() api.Optional[api.AssistantResult] { return l.assistant }

func (l *DetailLoader) DetailErr() error { return l.detailErr }

func (l *DetailLoader) MetricsErr() error { return l.metricsErr }

func (l *DetailLoader) fetch() tea.Cmd {
	l.pending = detailRequests
	return tea.Batch(
		loadDetailCmd(l.ctx, l.client, l.timeout, l.token, l.id),
		loadMetricsCmd(l.ctx, l.client, l.timeout, l.token, l.id),
		loadAssistantCmd(l.ctx, l.client, l.timeout, l.token, l.id),
	)
}

func (l *DetailLoader) current(token uint64) bool {
	return l.Active() && token == l.token
}

// settle counts down the round and schedules the next one when it is complete.
func (l *DetailLoader) settle() tea.Cmd {
	l.pending--
	if l.pending > 0 || l.interval <= 0 {
		return nil
	}
	return detailTickCmd(l.interval, l.token)
}

func (l *DetailLoader) handleDetail(msg detailLoadedMsg) tea.Cmd {
	if !l.current(msg.token) {
		return nil
	}
	if msg.err != nil {
		l.detailErr = msg.err
		l.logger.Warn("experiment load failed", slog.String("id", l.id), slog.Any("error", msg.err))
	} else {
		l.detail = api.Present(msg.detail)
		l.detailErr = nil
	}
	return l.settle()
}

func (l *DetailLoader) handleMetrics(msg metricsLoadedMsg) tea.Cmd {
	if !l.current(msg.token) {
		return nil
	}
	if msg.err != nil {
		l.metricsErr = msg.err
		l.logger.Warn("metrics load failed", slog.String("id", l.id), slog.Any("error", msg.err))
	} else {
		l.metrics = api.Present(msg.metrics)
		l.metricsErr = nil
	}
	return l.settle()
}

func (l *DetailLoader) handleAssistant(msg assistantLoadedMsg) tea.Cmd {
	if !l.current(msg.token) {
		return nil
	}
	if msg.err != nil {
		// Shown as "no assistant yet" rather than as an error.
		l.logger.Debug("best assistant unavailable", slog.String("id", l.id), slog.Any("error", msg.err))
		l.assistant = api.Absent[api.AssistantResult]()
	} else {
		l.assistant = msg.assistant
	}
	return l.settle()
}

func (l *DetailLoader) handleTick(msg detailTickMsg) tea.Cmd {
	if !l.current(msg.token) {
		return nil
	}
	return l.fetch()
}

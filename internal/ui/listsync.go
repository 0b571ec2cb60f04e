package ui

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"a3kd/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

// ListSynchronizer keeps a snapshot of the experiment list fresh while it
// is started. The next periodic refresh is scheduled only after the
// previous one settles, so at most one periodic request is in flight.
//
// Every Start opens a new epoch. Ticks and results tagged with an older
// epoch are dropped, which is how Stop stops the timer.
type ListSynchronizer struct {
	client   api.Client
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration

	experiments []api.ExperimentSummary
	loaded      bool
	err         error

	epoch  uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// NewListSynchronizer returns a stopped synchronizer.
func NewListSynchronizer(client api.Client, logger *slog.Logger, interval, timeout time.Duration) *ListSynchronizer {
	return &ListSynchronizer{
		client:   client,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
	}
}

// Start opens a new epoch and returns the initial refresh.
func (s *ListSynchronizer) Start() tea.Cmd {
	s.Stop()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return listExperimentsCmd(s.ctx, s.client, s.timeout, s.epoch, true)
}

// Stop cancels in-flight requests and invalidates pending ticks. The
// snapshot is kept.
func (s *ListSynchronizer) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.ctx, s.cancel = nil, nil
	s.epoch++
}

// Active reports whether the synchronizer is started.
func (s *ListSynchronizer) Active() bool {
	return s.cancel != nil
}

// Refresh returns an out-of-band refresh that does not touch the timer.
func (s *ListSynchronizer) Refresh() tea.Cmd {
	if !s.Active() {
		return nil
	}
	return listExperimentsCmd(s.ctx, s.client, s.timeout, s.epoch, false)
}

// Experiments returns a copy of the current snapshot.
func (s *ListSynchronizer) Experiments() []api.ExperimentSummary {
	return slices.Clone(s.experiments)
}

// Loaded reports whether at least one refresh has succeeded.
func (s *ListSynchronizer) Loaded() bool {
	return s.loaded
}

// Err returns the error of the latest refresh, or nil if it succeeded.
func (s *ListSynchronizer) Err() error {
	return s.err
}

func (s *ListSynchronizer) handleLoaded(msg experimentsLoadedMsg) tea.Cmd {
	if !s.Active() || msg.epoch != s.epoch {
		return nil
	}
	if msg.err != nil {
		s.err = msg.err
		s.logger.Warn("experiment list refresh failed",
			slog.Any("error", msg.err),
			slog.Int("kept", len(s.experiments)))
	} else {
		s.experiments = msg.experiments
		s.loaded = true
		s.err = nil
	}
	if msg.periodic {
		return listTickCmd(s.interval, s.epoch)
	}
	return nil
}

func (s *ListSynchronizer) handleTick(msg listTickMsg) tea.Cmd {
	if !s.Active() || msg.epoch != s.epoch {
		return nil
	}
	return listExperimentsCmd(s.ctx, s.client, s.timeout, s.epoch, true)
}

package ui

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"a3kd/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

type catalogSlot struct {
	models  []api.ModelOption
	loaded  bool
	loading bool
	err     error
}

// CatalogLoader fetches the teacher and student lists. Each list is loaded
// at most once per session; a failed list can be requested again.
type CatalogLoader struct {
	ctx     context.Context
	client  api.Client
	logger  *slog.Logger
	timeout time.Duration

	slots [2]catalogSlot // indexed by api.ModelKind
}

func NewCatalogLoader(ctx context.Context, client api.Client, logger *slog.Logger, timeout time.Duration) *CatalogLoader {
	return &CatalogLoader{
		ctx:     ctx,
		client:  client,
		logger:  logger,
		timeout: timeout,
	}
}

// Load issues one request per list that is neither loaded nor in flight.
// It returns nil when there is nothing to do.
func (c *CatalogLoader) Load() tea.Cmd {
	var cmds []tea.Cmd
	for _, kind := range []api.ModelKind{api.KindTeacher, api.KindStudent} {
		slot := &c.slots[kind]
		if slot.loaded || slot.loading {
			continue
		}
		slot.loading = true
		cmds = append(cmds, loadModelsCmd(c.ctx, c.client, c.timeout, kind))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (c *CatalogLoader) Models(kind api.ModelKind) []api.ModelOption {
	return slices.Clone(c.slots[kind].models)
}

func (c *CatalogLoader) Loaded(kind api.ModelKind) bool {
	return c.slots[kind].loaded
}

func (c *CatalogLoader) Loading(kind api.ModelKind) bool {
	return c.slots[kind].loading
}

// Err returns the last failure for kind, cleared once the list loads.
func (c *CatalogLoader) Err(kind api.ModelKind) error {
	return c.slots[kind].err
}

func (c *CatalogLoader) handleLoaded(msg catalogLoadedMsg) {
	slot := &c.slots[msg.kind]
	slot.loading = false
	if slot.loaded {
		return
	}
	if msg.err != nil {
		slot.err = msg.err
		c.logger.Warn("model catalog load failed",
			slog.String("kind", msg.kind.String()),
			slog.Any("error", msg.err))
		return
	}
	slot.models = msg.models
	slot.loaded = true
	slot.err = nil
}

package ui

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"a3kd/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

// fakeClient is an in-memory api.Client. Zero-value fields mean empty
// results; the *Err fields force failures.
type fakeClient struct {
	mu sync.Mutex

	experiments []api.ExperimentSummary
	listErr     error
	blockList   bool // ListExperiments waits for ctx cancellation

	teachers    []api.ModelOption
	students    []api.ModelOption
	teachersErr error
	studentsErr error

	details      map[string]api.ExperimentDetail
	detailErr    error
	metrics      map[string]api.MetricSeries
	metricsErr   error
	assistants   map[string]api.AssistantResult
	assistantErr error

	createErr error
	created   []api.ExperimentConfig
	calls     map[string]int
}

var _ api.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		teachers:   []api.ModelOption{{ID: "t1", Name: "Teacher 1"}, {ID: "t2", Name: "Teacher 2"}},
		students:   []api.ModelOption{{ID: "s1", Name: "Student 1"}},
		details:    make(map[string]api.ExperimentDetail),
		metrics:    make(map[string]api.MetricSeries),
		assistants: make(map[string]api.AssistantResult),
		calls:      make(map[string]int),
	}
}

func (f *fakeClient) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeClient) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeClient) Health(context.Context) (api.HealthStatus, error) {
	f.count("health")
	return api.HealthStatus{Status: "ok"}, nil
}

func (f *fakeClient) ListTeachers(context.Context) ([]api.ModelOption, error) {
	f.count("teachers")
	return f.teachers, f.teachersErr
}

func (f *fakeClient) ListStudents(context.Context) ([]api.ModelOption, error) {
	f.count("students")
	return f.students, f.studentsErr
}

func (f *fakeClient) ListExperiments(ctx context.Context) ([]api.ExperimentSummary, error) {
	f.count("list")
	if f.blockList {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]api.ExperimentSummary(nil), f.experiments...), nil
}

func (f *fakeClient) CreateExperiment(_ context.Context, cfg api.ExperimentConfig) (api.CreateResult, error) {
	f.count("create")
	if f.createErr != nil {
		return api.CreateResult{}, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, cfg)
	id := "exp_new"
	f.experiments = append(f.experiments, api.ExperimentSummary{
		ID: id, Name: cfg.Name, Dataset: cfg.Dataset,
		TeacherID: cfg.TeacherID, StudentID: cfg.StudentID, Status: "running",
	})
	return api.CreateResult{ExperimentID: id, Status: "running"}, nil
}

func (f *fakeClient) GetExperiment(_ context.Context, id string) (api.ExperimentDetail, error) {
	f.count("detail")
	if f.detailErr != nil {
		return api.ExperimentDetail{}, f.detailErr
	}
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return api.ExperimentDetail{ID: id, Status: "running", Config: api.ExperimentConfig{Name: "run-" + id}}, nil
}

func (f *fakeClient) GetMetrics(_ context.Context, id string) (api.MetricSeries, error) {
	f.count("metrics")
	if f.metricsErr != nil {
		return api.MetricSeries{}, f.metricsErr
	}
	return f.metrics[id], nil
}

func (f *fakeClient) GetBestAssistant(_ context.Context, id string) (api.Optional[api.AssistantResult], error) {
	f.count("assistant")
	if f.assistantErr != nil {
		return api.Absent[api.AssistantResult](), f.assistantErr
	}
	if a, ok := f.assistants[id]; ok {
		return api.Present(a), nil
	}
	return api.Absent[api.AssistantResult](), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// runCmd executes cmd synchronously, expanding batches, and returns every
// non-nil message produced.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// msgOf returns the first message of type T in msgs.
func msgOf[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if t, ok := m.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

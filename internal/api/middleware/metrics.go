package middleware

import (
	"context"
	"time"

	"a3kd/internal/api"

	"github.com/go-kit/kit/metrics"
)

var _ api.Client = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     api.Client
}

// Metrics counts client calls and records their latency, labelled by
// method and outcome.
func Metrics(counter metrics.Counter, latency metrics.Histogram, svc api.Client) api.Client {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) observe(method string, begin time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = api.Kind(err)
		if outcome == "" {
			outcome = "error"
		}
	}
	mm.counter.With("method", method, "outcome", outcome).Add(1)
	mm.latency.With("method", method, "outcome", outcome).Observe(time.Since(begin).Seconds())
}

func (mm *metricsMiddleware) Health(ctx context.Context) (resp api.HealthStatus, err error) {
	defer func(begin time.Time) { mm.observe("health", begin, err) }(time.Now())

	return mm.svc.Health(ctx)
}

func (mm *metricsMiddleware) ListTeachers(ctx context.Context) (resp []api.ModelOption, err error) {
	defer func(begin time.Time) { mm.observe("list-teachers", begin, err) }(time.Now())

	return mm.svc.ListTeachers(ctx)
}

func (mm *metricsMiddleware) ListStudents(ctx context.Context) (resp []api.ModelOption, err error) {
	defer func(begin time.Time) { mm.observe("list-students", begin, err) }(time.Now())

	return mm.svc.ListStudents(ctx)
}

func (mm *metricsMiddleware) ListExperiments(ctx context.Context) (resp []api.ExperimentSummary, err error) {
	defer func(begin time.Time) { mm.observe("list-experiments", begin, err) }(time.Now())

	return mm.svc.ListExperiments(ctx)
}

func (mm *metricsMiddleware) CreateExperiment(ctx context.Context, cfg api.ExperimentConfig) (resp api.CreateResult, err error) {
	defer func(begin time.Time) { mm.observe("create-experiment", begin, err) }(time.Now())

	return mm.svc.CreateExperiment(ctx, cfg)
}

func (mm *metricsMiddleware) GetExperiment(ctx context.Context, id string) (resp api.ExperimentDetail, err error) {
	defer func(begin time.Time) { mm.observe("get-experiment", begin, err) }(time.Now())

	return mm.svc.GetExperiment(ctx, id)
}

func (mm *metricsMiddleware) GetMetrics(ctx context.Context, id string) (resp api.MetricSeries, err error) {
	defer func(begin time.Time) { mm.observe("get-metrics", begin, err) }(time.Now())

	return mm.svc.GetMetrics(ctx, id)
}

func (mm *metricsMiddleware) GetBestAssistant(ctx context.Context, id string) (resp api.Optional[api.AssistantResult], err error) {
	defer func(begin time.Time) { mm.observe("get-best-assistant", begin, err) }(time.Now())

	return mm.svc.GetBestAssistant(ctx, id)
}

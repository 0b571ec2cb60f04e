package middleware

import (
	"context"

	"a3kd/internal/api"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ api.Client = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    api.Client
}

// Tracing wraps every client call in a span.
func Tracing(tracer trace.Tracer, svc api.Client) api.Client {
	return &tracing{tracer, svc}
}

func (tm *tracing) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, name, trace.WithAttributes(attrs...), trace.WithSpanKind(trace.SpanKindClient))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (tm *tracing) Health(ctx context.Context) (resp api.HealthStatus, err error) {
	ctx, span := tm.start(ctx, "health")
	defer func() { end(span, err) }()

	return tm.svc.Health(ctx)
}

func (tm *tracing) ListTeachers(ctx context.Context) (resp []api.ModelOption, err error) {
	ctx, span := tm.start(ctx, "list-teachers")
	defer func() { end(span, err) }()

	return tm.svc.ListTeachers(ctx)
}

func (tm *tracing) ListStudents(ctx context.Context) (resp []api.ModelOption, err error) {
	ctx, span := tm.start(ctx, "list-students")
	defer func() { end(span, err) }()

	return tm.svc.ListStudents(ctx)
}

func (tm *tracing) ListExperiments(ctx context.Context) (resp []api.ExperimentSummary, err error) {
	ctx, span := tm.start(ctx, "list-experiments")
	defer func() { end(span, err) }()

	return tm.svc.ListExperiments(ctx)
}

func (tm *tracing) CreateExperiment(ctx context.Context, cfg api.ExperimentConfig) (resp api.CreateResult, err error) {
	ctx, span := tm.start(ctx, "create-experiment",
		attribute.String("name", cfg.Name),
		attribute.String("dataset", cfg.Dataset),
		attribute.String("teacher_id", cfg.TeacherID),
		attribute.String("student_id", cfg.StudentID),
		attribute.Int("search_episodes", cfg.SearchEpisodes),
	)
	defer func() { end(span, err) }()

	return tm.svc.CreateExperiment(ctx, cfg)
}

func (tm *tracing) GetExperiment(ctx context.Context, id string) (resp api.ExperimentDetail, err error) {
	ctx, span := tm.start(ctx, "get-experiment", attribute.String("id", id))
	defer func() { end(span, err) }()

	return tm.svc.GetExperiment(ctx, id)
}

func (tm *tracing) GetMetrics(ctx context.Context, id string) (resp api.MetricSeries, err error) {
	ctx, span := tm.start(ctx, "get-metrics", attribute.String("id", id))
	defer func() { end(span, err) }()

	return tm.svc.GetMetrics(ctx, id)
}

func (tm *tracing) GetBestAssistant(ctx context.Context, id string) (resp api.Optional[api.AssistantResult], err error) {
	ctx, span := tm.start(ctx, "get-best-assistant", attribute.String("id", id))
	defer func() { end(span, err) }()

	return tm.svc.GetBestAssistant(ctx, id)
}

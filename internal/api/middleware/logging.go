package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"a3kd/internal/api"
)

var _ api.Client = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    api.Client
}

// Logging logs the outcome and duration of every client call.
func Logging(logger *slog.Logger, svc api.Client) api.Client {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) log(msg string, begin time.Time, err error, attrs ...any) {
	args := append([]any{slog.String("duration", time.Since(begin).String())}, attrs...)
	switch {
	case errors.Is(err, context.Canceled):
		lm.logger.Debug(msg+" cancelled", args...)

		return
	case err != nil:
		args = append(args, slog.Any("error", err), slog.String("error_kind", api.Kind(err)))
		lm.logger.Warn(msg+" failed", args...)

		return
	}
	lm.logger.Debug(msg+" completed successfully", args...)
}

func (lm *loggingMiddleware) Health(ctx context.Context) (resp api.HealthStatus, err error) {
	defer func(begin time.Time) {
		lm.log("Health check", begin, err, slog.String("status", resp.Status))
	}(time.Now())

	return lm.svc.Health(ctx)
}

func (lm *loggingMiddleware) ListTeachers(ctx context.Context) (resp []api.ModelOption, err error) {
	defer func(begin time.Time) {
		lm.log("List teachers", begin, err, slog.Int("count", len(resp)))
	}(time.Now())

	return lm.svc.ListTeachers(ctx)
}

func (lm *loggingMiddleware) ListStudents(ctx context.Context) (resp []api.ModelOption, err error) {
	defer func(begin time.Time) {
		lm.log("List students", begin, err, slog.Int("count", len(resp)))
	}(time.Now())

	return lm.svc.ListStudents(ctx)
}

func (lm *loggingMiddleware) ListExperiments(ctx context.Context) (resp []api.ExperimentSummary, err error) {
	defer func(begin time.Time) {
		lm.log("List experiments", begin, err, slog.Int("count", len(resp)))
	}(time.Now())

	return lm.svc.ListExperiments(ctx)
}

func (lm *loggingMiddleware) CreateExperiment(ctx context.Context, cfg api.ExperimentConfig) (resp api.CreateResult, err error) {
	defer func(begin time.Time) {
		lm.log("Create experiment", begin, err,
			slog.Group("experiment",
				slog.String("id", resp.ExperimentID),
				slog.String("name", cfg.Name),
				slog.String("dataset", cfg.Dataset),
				slog.String("teacher_id", cfg.TeacherID),
				slog.String("student_id", cfg.StudentID),
				slog.Int("search_episodes", cfg.SearchEpisodes),
			),
		)
	}(time.Now())

	return lm.svc.CreateExperiment(ctx, cfg)
}

func (lm *loggingMiddleware) GetExperiment(ctx context.Context, id string) (resp api.ExperimentDetail, err error) {
	defer func(begin time.Time) {
		lm.log("Get experiment", begin, err,
			slog.Group("experiment",
				slog.String("id", id),
				slog.String("status", resp.Status),
			),
		)
	}(time.Now())

	return lm.svc.GetExperiment(ctx, id)
}

func (lm *loggingMiddleware) GetMetrics(ctx context.Context, id string) (resp api.MetricSeries, err error) {
	defer func(begin time.Time) {
		lm.log("Get metrics", begin, err,
			slog.String("experiment_id", id),
			slog.Int("episodes", resp.Len()),
		)
	}(time.Now())

	return lm.svc.GetMetrics(ctx, id)
}

func (lm *loggingMiddleware) GetBestAssistant(ctx context.Context, id string) (resp api.Optional[api.AssistantResult], err error) {
	defer func(begin time.Time) {
		lm.log("Get best assistant", begin, err,
			slog.String("experiment_id", id),
			slog.Bool("present", resp.IsPresent()),
		)
	}(time.Now())

	return lm.svc.GetBestAssistant(ctx, id)
}

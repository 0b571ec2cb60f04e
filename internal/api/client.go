// Package api is the client for the A3KD experiment service.
//
// Every operation performs exactly one round trip and fails with a
// *TransportError (network failure or non-2xx status) or a *DecodeError
// (malformed body). Retries and caching are left to callers.
package api

import "context"

// Client is the set of operations offered by the experiment service.
type Client interface {
	// Health checks that the service is reachable.
	Health(ctx context.Context) (HealthStatus, error)

	// ListTeachers lists the teacher models an experiment may use.
	ListTeachers(ctx context.Context) ([]ModelOption, error)

	// ListStudents lists the student models an experiment may use.
	ListStudents(ctx context.Context) ([]ModelOption, error)

	// ListExperiments lists every experiment known to the service.
	ListExperiments(ctx context.Context) ([]ExperimentSummary, error)

	// CreateExperiment validates cfg and starts a new experiment.
	//
	// example:
	//  res, _ := client.CreateExperiment(ctx, api.ExperimentConfig{
	//    Name:           "exp-A",
	//    Dataset:        "CIFAR-100",
	//    TeacherID:      "resnet110",
	//    StudentID:      "resnet8",
	//    SearchEpisodes: 20,
	//  })
	//  fmt.Println(res.ExperimentID)
	CreateExperiment(ctx context.Context, cfg ExperimentConfig) (CreateResult, error)

	// GetExperiment gets one experiment by id.
	GetExperiment(ctx context.Context, id string) (ExperimentDetail, error)

	// GetMetrics gets the per-episode metric series of an experiment.
	GetMetrics(ctx context.Context, id string) (MetricSeries, error)

	// GetBestAssistant gets the best assistant found so far. A missing
	// assistant is reported as Absent, not as an error.
	GetBestAssistant(ctx context.Context, id string) (Optional[AssistantResult], error)
}

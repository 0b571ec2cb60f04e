package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"a3kd/internal/jsonutil"
)

// Search episode bounds accepted by the service.
const (
	MinSearchEpisodes = 1
	MaxSearchEpisodes = 200
)

// Datasets lists the datasets offered when creating an experiment.
// The first entry is the default.
var Datasets = []string{"CIFAR-100", "CIFAR-10"}

// ModelKind distinguishes teacher and student model options.
type ModelKind int

const (
	KindTeacher ModelKind = iota
	KindStudent
)

func (k ModelKind) String() string {
	switch k {
	case KindTeacher:
		return "teacher"
	case KindStudent:
		return "student"
	default:
		return "unknown"
	}
}

// ModelOption is a selectable teacher or student model.
type ModelOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ExperimentConfig is the user-supplied configuration of an experiment.
type ExperimentConfig struct {
	Name           string `json:"name"`
	Dataset        string `json:"dataset"`
	TeacherID      string `json:"teacher_id"`
	StudentID      string `json:"student_id"`
	SearchEpisodes int    `json:"search_episodes"`
}

// Validate returns a *ValidationError for the first field that would make
// the service reject the config, or nil.
func (c ExperimentConfig) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	case c.TeacherID == "":
		return &ValidationError{Field: "teacher_id", Reason: "must be selected"}
	case c.StudentID == "":
		return &ValidationError{Field: "student_id", Reason: "must be selected"}
	case c.SearchEpisodes < MinSearchEpisodes || c.SearchEpisodes > MaxSearchEpisodes:
		return &ValidationError{
			Field:  "search_episodes",
			Reason: fmt.Sprintf("must be between %d and %d", MinSearchEpisodes, MaxSearchEpisodes),
		}
	}
	return nil
}

// ExperimentSummary is one row of the experiment list.
type ExperimentSummary struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Dataset      string            `json:"dataset"`
	TeacherID    string            `json:"teacher_id"`
	StudentID    string            `json:"student_id"`
	Status       string            `json:"status"`
	BestAccuracy Optional[float64] `json:"best_accuracy,omitzero"`
}

// ExperimentDetail is the full record of a single experiment.
type ExperimentDetail struct {
	ID              string            `json:"id"`
	Status          string            `json:"status"`
	Config          ExperimentConfig  `json:"config"`
	BestAccuracy    Optional[float64] `json:"best_accuracy,omitzero"`
	BestAssistantID Optional[string]  `json:"best_assistant_id,omitzero"`
}

// CreateResult is returned by the service after an experiment is created.
type CreateResult struct {
	ExperimentID string `json:"experiment_id"`
	Status       string `json:"status"`
}

// UnmarshalJSON accepts both {"experiment_id": ...} and summary-shaped
// {"id": ...} bodies.
func (r *CreateResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		ExperimentID string `json:"experiment_id"`
		ID           string `json:"id"`
		Status       string `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.ExperimentID = raw.ExperimentID
	if r.ExperimentID == "" {
		r.ExperimentID = raw.ID
	}
	r.Status = raw.Status
	return nil
}

// ErrMisalignedSeries is returned when the sequences of a MetricSeries differ in length.
var ErrMisalignedSeries = errors.New("metric series sequences differ in length")

// MetricSeries holds per-episode metrics. Index i of every sequence
// describes episode Episodes[i].
type MetricSeries struct {
	Episodes        []int     `json:"episodes"`
	StudentAccuracy []float64 `json:"student_accuracy"`
	Reward          []float64 `json:"reward"`
}

// EpisodePoint is one aligned row of a MetricSeries.
type EpisodePoint struct {
	Episode         int
	StudentAccuracy float64
	Reward          float64
}

// NewMetricSeries builds a series from its columns, rejecting mismatched lengths.
func NewMetricSeries(episodes []int, accuracy, reward []float64) (MetricSeries, error) {
	s := MetricSeries{Episodes: episodes, StudentAccuracy: accuracy, Reward: reward}
	if err := s.Validate(); err != nil {
		return MetricSeries{}, err
	}
	return s, nil
}

// Validate checks that all three sequences have equal length.
func (s MetricSeries) Validate() error {
	if len(s.Episodes) != len(s.StudentAccuracy) || len(s.Episodes) != len(s.Reward) {
		return fmt.Errorf("%w: episodes=%d student_accuracy=%d reward=%d",
			ErrMisalignedSeries, len(s.Episodes), len(s.StudentAccuracy), len(s.Reward))
	}
	return nil
}

// Len returns the number of episodes.
func (s MetricSeries) Len() int {
	return len(s.Episodes)
}

// Points returns the series as aligned rows.
func (s MetricSeries) Points() []EpisodePoint {
	n := min(len(s.Episodes), len(s.StudentAccuracy), len(s.Reward))
	out := make([]EpisodePoint, n)
	for i := range n {
		out[i] = EpisodePoint{
			Episode:         s.Episodes[i],
			StudentAccuracy: s.StudentAccuracy[i],
			Reward:          s.Reward[i],
		}
	}
	return out
}

// UnmarshalJSON decodes the series and rejects misaligned sequences.
func (s *MetricSeries) UnmarshalJSON(data []byte) error {
	type plain MetricSeries
	p, err := jsonutil.Unmarshal[plain](data, "metric series")
	if err != nil {
		return err
	}
	decoded := MetricSeries(p)
	if err := decoded.Validate(); err != nil {
		return err
	}
	*s = decoded
	return nil
}

// AssistantResult is the best teacher-assistant architecture found so far.
type AssistantResult struct {
	ArchitectureID string  `json:"architecture_id"`
	ValAccuracy    float64 `json:"val_accuracy"`
	LatencyMS      float64 `json:"latency_ms"`
	ParamsM        float64 `json:"params_m"`
}

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status string `json:"status"`
}

package ui

import "a3kd/internal/api"

// SelectExperimentMsg opens the details screen for an experiment.
// Sent while already in Details it switches to the new experiment.
type SelectExperimentMsg struct {
	ID string
}

// ShowCreateMsg opens the create form (n or SPC e n on the dashboard).
type ShowCreateMsg struct{}

// BackMsg returns to the dashboard from Create or Details.
type BackMsg struct{}

// RefreshMsg triggers an immediate refresh of the list, and of the open
// experiment when in Details.
type RefreshMsg struct{}

// SubmitExperimentMsg is sent by the create form when the user submits a
// draft that passed the submit gate.
type SubmitExperimentMsg struct {
	Config api.ExperimentConfig
}

// experimentsLoadedMsg carries one list refresh. Periodic results re-arm
// the timer; out-of-band ones do not.
type experimentsLoadedMsg struct {
	epoch       uint64
	periodic    bool
	experiments []api.ExperimentSummary
	err         error
}

// listTickMsg fires when the list refresh delay has elapsed.
type listTickMsg struct {
	epoch uint64
}

// catalogLoadedMsg carries one of the two model lists.
type catalogLoadedMsg struct {
	kind   api.ModelKind
	models []api.ModelOption
	err    error
}

// detailLoadedMsg, metricsLoadedMsg and assistantLoadedMsg carry the three
// responses of a detail cycle, tagged with the cycle token.
type detailLoadedMsg struct {
	token  uint64
	detail api.ExperimentDetail
	err    error
}

type metricsLoadedMsg struct {
	token   uint64
	metrics api.MetricSeries
	err     error
}

type assistantLoadedMsg struct {
	token     uint64
	assistant api.Optional[api.AssistantResult]
	err       error
}

// detailTickMsg fires when the open experiment is due for a re-poll.
type detailTickMsg struct {
	token uint64
}

// experimentCreatedMsg carries the outcome of a submission.
type experimentCreatedMsg struct {
	seq    uint64
	result api.CreateResult
	err    error
}

// healthCheckedMsg carries the startup health probe.
type healthCheckedMsg struct {
	status api.HealthStatus
	err    error
}

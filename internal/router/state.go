package router

import (
	"fmt"

	"github.com/ShayCichocki/helpdesk/pkg/models"
)

// ExecutionState is the working state of one orchestration run. It is
// created per incoming request, owned exclusively by that run's
// execution path, and discarded once the final answer is produced.
// All mutation happens on the run's own goroutine: parallel-group
// results are merged back on it after the fan-out join, so no locking
// is needed.
type ExecutionState struct {
	// RequestText is the original free-text request, verbatim.
	RequestText string
	// Hints are the structured fields extracted from the request.
	Hints models.Hints
	// Plan is the validated plan being executed. Immutable.
	Plan *models.Plan
	// StepIndex is the current top-level step, 0-based, monotonically
	// increasing.
	StepIndex int

	accumulated map[models.Capability]map[string]any
	trace       []string
}

// NewExecutionState creates the state for one orchestration run.
func NewExecutionState(requestText string, hints models.Hints) *ExecutionState {
	return &ExecutionState{
		RequestText: requestText,
		Hints:       hints,
		accumulated: make(map[models.Capability]map[string]any),
	}
}

// Record stores a capability's latest structured output, replacing any
// earlier result for the same capability.
func (s *ExecutionState) Record(capability models.Capability, result map[string]any) {
	if result == nil {
		result = map[string]any{}
	}
	s.accumulated[capability] = result
}

// Latest returns the most recent accumulated result for a capability.
func (s *ExecutionState) Latest(capability models.Capability) (map[string]any, bool) {
	result, ok := s.accumulated[capability]
	return result, ok
}

// UsableResults returns the accumulated results that carry real
// specialist output, keyed by capability name. Failure markers are
// excluded: a downstream consumer composing an answer must never quote
// an error detail back to the customer.
func (s *ExecutionState) UsableResults() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.accumulated))
	for capability, result := range s.accumulated {
		if models.IsFailureMarker(result) {
			continue
		}
		out[string(capability)] = result
	}
	return out
}

// Tracef appends a formatted line to the run's trace log.
func (s *ExecutionState) Tracef(format string, args ...any) {
	s.trace = append(s.trace, fmt.Sprintf(format, args...))
}

// TraceLines returns a copy of the trace log so far.
func (s *ExecutionState) TraceLines() []string {
	out := make([]string, len(s.trace))
	copy(out, s.trace)
	return out
}

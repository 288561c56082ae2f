package models

import "encoding/json"

// AnswerStrategy selects how the final answer is produced after a plan runs.
type AnswerStrategy string

const (
	// StrategyLastStepText takes the reply of the last top-level step.
	StrategyLastStepText AnswerStrategy = "last_step_text"
	// StrategyCompose asks the composition oracle to synthesize a reply
	// from all accumulated results.
	StrategyCompose AnswerStrategy = "compose"
)

// Valid returns true if the strategy is a known value.
func (s AnswerStrategy) Valid() bool {
	switch s {
	case StrategyLastStepText, StrategyCompose:
		return true
	default:
		return false
	}
}

// SingleCall is one capability invocation with a JSON-shaped payload.
type SingleCall struct {
	// Capability names the specialist to invoke.
	Capability Capability `json:"agent"`
	// Payload is the JSON object sent to the specialist. Never nil on a
	// validated plan.
	Payload map[string]any `json:"payload"`
}

// ParallelGroup is an ordered set of calls dispatched concurrently.
// Children are always single calls; groups do not nest.
type ParallelGroup struct {
	Calls []SingleCall `json:"parallel"`
}

// PlanStep is one top-level plan entry: either a single call or a
// parallel group. Exactly one of Call or Group is set.
type PlanStep struct {
	Call  *SingleCall
	Group *ParallelGroup
}

// IsParallel returns true if the step is a parallel group.
func (s PlanStep) IsParallel() bool {
	return s.Group != nil
}

// MarshalJSON encodes the step in the oracle wire shape:
// {"agent":...,"payload":{...}} or {"parallel":[...]}.
func (s PlanStep) MarshalJSON() ([]byte, error) {
	if s.Group != nil {
		return json.Marshal(s.Group)
	}
	return json.Marshal(s.Call)
}

// UnmarshalJSON decodes either wire shape. A step carrying a "parallel"
// list becomes a group; anything else is read as a single call.
func (s *PlanStep) UnmarshalJSON(data []byte) error {
	var probe struct {
		Parallel json.RawMessage `json:"parallel"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Parallel != nil {
		group := &ParallelGroup{}
		if err := json.Unmarshal(data, group); err != nil {
			return err
		}
		s.Group = group
		s.Call = nil
		return nil
	}
	call := &SingleCall{}
	if err := json.Unmarshal(data, call); err != nil {
		return err
	}
	s.Call = call
	s.Group = nil
	return nil
}

// Plan is a validated, resource-bounded execution plan. Plans are
// immutable once validated; the executor never mutates them.
type Plan struct {
	// Steps is the ordered top-level step sequence. Non-empty on any
	// validated plan.
	Steps []PlanStep `json:"steps"`
	// Strategy selects the final-answer composition mode.
	Strategy AnswerStrategy `json:"final_answer_strategy"`
}

// LeafCount returns the total number of single calls across all steps,
// counting parallel-group children individually.
func (p *Plan) LeafCount() int {
	n := 0
	for _, step := range p.Steps {
		if step.Group != nil {
			n += len(step.Group.Calls)
		} else if step.Call != nil {
			n++
		}
	}
	return n
}

// LastCapability returns the capability of the last top-level step, or
// false if the plan is empty or ends in a parallel group.
func (p *Plan) LastCapability() (Capability, bool) {
	if len(p.Steps) == 0 {
		return "", false
	}
	last := p.Steps[len(p.Steps)-1]
	if last.Call == nil {
		return "", false
	}
	return last.Call.Capability, true
}

package router

import (
	"context"
	"encoding/json"

	"github.com/ShayCichocki/helpdesk/pkg/models"
)

// Planner proposes a plan candidate for a request. Candidates are
// untrusted and must pass ValidatePlan before execution.
type Planner interface {
	ProposePlan(ctx context.Context, requestText string, hints models.Hints) any
}

// Router is the orchestration entry point: it turns one free-text
// customer request into one final answer by planning, executing and
// composing. A Router is safe for concurrent use; each request gets
// its own ExecutionState.
type Router struct {
	planner  Planner
	executor *Executor
	composer *Composer
}

// New creates a router. planner may be nil, in which case every
// request runs the deterministic fallback plan.
func New(planner Planner, executor *Executor, composer *Composer) *Router {
	return &Router{planner: planner, executor: executor, composer: composer}
}

// Handle runs the full pipeline for one request and returns the final
// answer together with the run's trace log. It never fails: when the
// planner is unavailable or produces garbage the fallback plan runs,
// and when every specialist fails the composer's terminal answer is
// returned.
func (r *Router) Handle(ctx context.Context, requestText string) (string, []string) {
	hints := ParseRequest(requestText)
	st := NewExecutionState(requestText, hints)

	plan := r.plan(ctx, requestText, hints, st)
	st.Plan = plan

	r.executor.Run(ctx, st)
	answer := r.composer.Compose(ctx, st)
	return answer, st.TraceLines()
}

// plan obtains a validated plan, falling back to the canned two-step
// plan when the oracle yields nothing usable.
func (r *Router) plan(ctx context.Context, requestText string, hints models.Hints, st *ExecutionState) *models.Plan {
	if r.planner != nil {
		candidate := r.planner.ProposePlan(ctx, requestText, hints)
		if plan := ValidatePlan(candidate); plan != nil {
			st.Tracef("planner -> router: %s", planSummary(plan))
			return plan
		}
	}

	plan := FallbackPlan(requestText, hints)
	st.Tracef("planner -> router: fallback %s", planSummary(plan))
	return plan
}

func planSummary(plan *models.Plan) string {
	encoded, err := json.Marshal(plan)
	if err != nil {
		return "(unencodable plan)"
	}
	return string(encoded)
}

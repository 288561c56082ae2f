package router

import (
	"context"
	"sync"

	"github.com/ShayCichocki/helpdesk/pkg/models"
)

// Caller dispatches one payload to one named capability. The a2a
// client is the production implementation; tests substitute fakes.
// Implementations never return an error: failures come back as typed
// replies so the executor can record them and continue.
type Caller interface {
	Call(ctx context.Context, capability models.Capability, payload map[string]any) models.CapabilityReply
}

// phase is the executor's position in its state machine.
type phase int

const (
	phaseRunning phase = iota
	phaseAdvancing
	phaseFinalizing
)

// Executor walks a validated plan step by step, threading accumulated
// results from earlier steps into later ones. A failed capability call
// never aborts the plan: the failure is recorded and execution moves
// on, leaving the composer to decide what to surface.
type Executor struct {
	caller Caller
}

// NewExecutor creates an executor dispatching through the caller.
func NewExecutor(caller Caller) *Executor {
	return &Executor{caller: caller}
}

// Run executes the plan in st to completion. Top-level steps run
// strictly in order; a step never starts before the previous step's
// results are recorded.
func (e *Executor) Run(ctx context.Context, st *ExecutionState) {
	if st.Plan == nil || len(st.Plan.Steps) == 0 {
		return
	}

	ph := phaseRunning
	for {
		switch ph {
		case phaseRunning:
			step := st.Plan.Steps[st.StepIndex]
			if step.Group != nil {
				e.runGroup(ctx, step.Group, st)
			} else if step.Call != nil {
				e.runCall(ctx, *step.Call, st)
			}
			ph = phaseAdvancing

		case phaseAdvancing:
			st.StepIndex++
			if st.StepIndex < len(st.Plan.Steps) {
				ph = phaseRunning
			} else {
				ph = phaseFinalizing
			}

		case phaseFinalizing:
			return
		}
	}
}

// runCall dispatches a single call and records its outcome.
func (e *Executor) runCall(ctx context.Context, call models.SingleCall, st *ExecutionState) {
	payload := preparePayload(call, st)

	st.Tracef("router -> %s: dispatched", call.Capability)
	reply := e.caller.Call(ctx, call.Capability, payload)
	if reply.Failed() {
		st.Tracef("%s -> router: failed (%s)", call.Capability, reply.Failure.Detail)
	} else {
		st.Tracef("%s -> router: completed", call.Capability)
	}

	st.Record(call.Capability, reply.Accumulated())
}

// runGroup dispatches all children concurrently and waits for every
// one of them: a timed-out child does not cancel its siblings. Results
// are merged back in original child order so the observable merged
// view is deterministic regardless of completion order.
func (e *Executor) runGroup(ctx context.Context, group *models.ParallelGroup, st *ExecutionState) {
	// Payloads are prepared before any child runs so every child sees
	// the same pre-group accumulated state.
	payloads := make([]map[string]any, len(group.Calls))
	for i, call := range group.Calls {
		payloads[i] = preparePayload(call, st)
		st.Tracef("router -> %s: dispatched", call.Capability)
	}

	replies := make([]models.CapabilityReply, len(group.Calls))
	var wg sync.WaitGroup
	for i := range group.Calls {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			replies[i] = e.caller.Call(ctx, group.Calls[i].Capability, payloads[i])
		}(i)
	}
	wg.Wait()

	// Merge in declaration order. When several children wrote to the
	// same capability, their results are kept as a batch rather than
	// silently overwriting each other.
	var order []models.Capability
	byCapability := make(map[models.Capability][]map[string]any)
	for i, call := range group.Calls {
		reply := replies[i]
		if reply.Failed() {
			st.Tracef("%s -> router: failed (%s)", call.Capability, reply.Failure.Detail)
		} else {
			st.Tracef("%s -> router: completed", call.Capability)
		}
		if _, seen := byCapability[call.Capability]; !seen {
			order = append(order, call.Capability)
		}
		byCapability[call.Capability] = append(byCapability[call.Capability], reply.Accumulated())
	}

	for _, capability := range order {
		results := byCapability[capability]
		if len(results) == 1 {
			st.Record(capability, results[0])
			continue
		}
		batch := make([]any, len(results))
		for i, r := range results {
			batch[i] = r
		}
		st.Record(capability, map[string]any{"batch_results": batch})
	}
}

// preparePayload copies the call's payload, fills in the verbatim
// request text when missing, and injects prior context for capabilities
// that consume it: data feeds support and billing by convention.
func preparePayload(call models.SingleCall, st *ExecutionState) map[string]any {
	payload := make(map[string]any, len(call.Payload)+2)
	for k, v := range call.Payload {
		payload[k] = v
	}

	if text, ok := payload["request"].(string); !ok || text == "" {
		payload["request"] = st.RequestText
	}

	if call.Capability == models.CapabilitySupport || call.Capability == models.CapabilityBilling {
		if emptyContext(payload["data_context"]) {
			if latest, ok := st.Latest(models.CapabilityData); ok {
				payload["data_context"] = latest
			} else if _, present := payload["data_context"]; !present {
				payload["data_context"] = map[string]any{}
			}
		}
	}

	return payload
}

// emptyContext reports whether a prior-context value is absent: nil or
// an empty map.
func emptyContext(v any) bool {
	if v == nil {
		return true
	}
	m, ok := v.(map[string]any)
	return ok && len(m) == 0
}

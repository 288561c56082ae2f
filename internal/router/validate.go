package router

import (
	"github.com/ShayCichocki/helpdesk/pkg/models"
)

// Resource budgets enforced on every plan before execution. The oracle
// is told about these limits but never trusted to honor them.
const (
	// MaxToolCalls caps the total number of capability calls in one
	// plan, counting parallel-group children individually.
	MaxToolCalls = 8
	// MaxParallelFanout caps the children of a single parallel group.
	MaxParallelFanout = 12
	// MaxPlanSteps caps the top-level step count after normalization.
	MaxPlanSteps = 5
	// MaxCustomers caps any id-collection list inside a call payload.
	MaxCustomers = 12
)

// idCollectionFields are payload keys suspected of holding customer-id
// collections; list values under these keys are truncated to
// MaxCustomers before dispatch.
var idCollectionFields = []string{"customer_ids", "customers", "accounts"}

// ValidatePlan converts an arbitrary plan candidate (decoded JSON) into
// a well-formed, resource-bounded Plan, or returns nil when nothing
// usable remains. It is pure and idempotent: re-validating the wire
// form of its own output changes nothing.
//
// Unknown capabilities and malformed entries are dropped individually
// rather than failing the whole candidate; the candidate is rejected
// only when it is not map-shaped, has no steps list, or every step was
// dropped.
func ValidatePlan(candidate any) *models.Plan {
	root, ok := candidate.(map[string]any)
	if !ok {
		return nil
	}
	rawSteps, ok := root["steps"].([]any)
	if !ok || len(rawSteps) == 0 {
		return nil
	}

	var steps []models.PlanStep
	usedCalls := 0

	for _, rawStep := range rawSteps {
		if usedCalls >= MaxToolCalls || len(steps) >= MaxPlanSteps {
			break
		}

		stepMap, ok := rawStep.(map[string]any)
		if !ok {
			continue
		}

		if rawChildren, ok := stepMap["parallel"].([]any); ok {
			group := validateGroup(rawChildren, &usedCalls)
			if group != nil {
				steps = append(steps, models.PlanStep{Group: group})
			}
			continue
		}

		call := validateCall(stepMap)
		if call != nil {
			steps = append(steps, models.PlanStep{Call: call})
			usedCalls++
		}
	}

	if len(steps) == 0 {
		return nil
	}

	strategy := models.StrategyLastStepText
	if s, ok := root["final_answer_strategy"].(string); ok && models.AnswerStrategy(s).Valid() {
		strategy = models.AnswerStrategy(s)
	}

	return &models.Plan{Steps: steps, Strategy: strategy}
}

// validateGroup accepts children in order until the global call budget
// or the group fanout limit is hit. A group left with no accepted
// children is dropped entirely, never emitted empty.
func validateGroup(rawChildren []any, usedCalls *int) *models.ParallelGroup {
	var calls []models.SingleCall
	for _, rawChild := range rawChildren {
		if *usedCalls >= MaxToolCalls || len(calls) >= MaxParallelFanout {
			break
		}
		childMap, ok := rawChild.(map[string]any)
		if !ok {
			continue
		}
		// One level of nesting only: a nested parallel group inside a
		// group is not a single call and gets dropped here.
		call := validateCall(childMap)
		if call == nil {
			continue
		}
		calls = append(calls, *call)
		*usedCalls++
	}
	if len(calls) == 0 {
		return nil
	}
	return &models.ParallelGroup{Calls: calls}
}

// validateCall accepts a step as a single call when its capability is
// known; the payload defaults to an empty map when it is not map-shaped.
func validateCall(stepMap map[string]any) *models.SingleCall {
	agent, _ := stepMap["agent"].(string)
	capability := models.Capability(agent)
	if !capability.Valid() {
		return nil
	}

	payload, ok := stepMap["payload"].(map[string]any)
	if !ok {
		payload = map[string]any{}
	}

	return &models.SingleCall{
		Capability: capability,
		Payload:    capIDCollections(payload),
	}
}

// capIDCollections returns a copy of the payload with every known
// id-collection field truncated to MaxCustomers elements.
func capIDCollections(payload map[string]any) map[string]any {
	capped := make(map[string]any, len(payload))
	for k, v := range payload {
		capped[k] = v
	}
	for _, field := range idCollectionFields {
		if list, ok := capped[field].([]any); ok && len(list) > MaxCustomers {
			capped[field] = list[:MaxCustomers]
		}
	}
	return capped
}

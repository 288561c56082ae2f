package router

import (
	"github.com/ShayCichocki/helpdesk/pkg/models"
)

// FallbackPlan builds the deterministic plan used whenever the oracle
// is unavailable or its output fails validation: fetch customer data,
// then craft a support reply from it. It always succeeds and is never
// empty, for any input including empty request text.
func FallbackPlan(requestText string, hints models.Hints) *models.Plan {
	basePayload := func() map[string]any {
		payload := hints.Payload()
		payload["request"] = requestText
		return payload
	}

	supportPayload := basePayload()
	supportPayload["data_context"] = map[string]any{}

	return &models.Plan{
		Steps: []models.PlanStep{
			{Call: &models.SingleCall{Capability: models.CapabilityData, Payload: basePayload()}},
			{Call: &models.SingleCall{Capability: models.CapabilitySupport, Payload: supportPayload}},
		},
		Strategy: models.StrategyLastStepText,
	}
}

package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ShayCichocki/helpdesk/internal/a2a"
)

// BillingAgent answers billing requests with a fixed acknowledgement.
// It carries no tools and no oracle.
type BillingAgent struct{}

// NewBillingAgent creates a billing agent.
func NewBillingAgent() *BillingAgent {
	return &BillingAgent{}
}

// Card returns the agent card served at the well-known endpoint.
func (a *BillingAgent) Card(baseURL string) a2a.AgentCard {
	return a2a.AgentCard{
		Name:        "Billing Agent",
		Description: "Specialist for billing questions and escalation.",
		URL:         baseURL,
		Version:     "1.0.0",
		Skills: []a2a.AgentSkill{
			{
				ID:          "billing",
				Name:        "Billing",
				Description: "Handle billing disputes and refunds",
				Tags:        []string{"billing", "payments"},
				InputModes:  []string{"text"},
				OutputModes: []string{"text"},
				Examples:    []string{"Refund request", "Invoice copy"},
			},
		},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Capabilities:       a2a.AgentCapabilities{Streaming: false},
		Provider:           a2a.AgentProvider{Organization: "helpdesk"},
	}
}

// billingPayload is the structured request the router sends.
type billingPayload struct {
	Request      string `json:"request"`
	BillingIssue string `json:"billing_issue"`
}

// Skill returns the a2a skill function for this agent.
func (a *BillingAgent) Skill() a2a.SkillFunc {
	return func(_ context.Context, msg a2a.Message) (a2a.Message, error) {
		var payload billingPayload
		if err := json.Unmarshal([]byte(msg.Text()), &payload); err != nil {
			payload = billingPayload{Request: msg.Text()}
		}

		subject := payload.BillingIssue
		if subject == "" {
			subject = payload.Request
		}

		reply := fmt.Sprintf(
			"Billing Agent: I can help with invoices, refunds, and payment issues. Request: %s",
			subject,
		)
		encoded, err := json.Marshal(map[string]any{"reply": reply})
		if err != nil {
			return a2a.Message{}, fmt.Errorf("encode billing reply: %w", err)
		}
		return a2a.NewTextMessage(string(encoded), a2a.RoleAgent), nil
	}
}

package agents

import (
	"context"

	"github.com/ShayCichocki/helpdesk/internal/a2a"
	"github.com/ShayCichocki/helpdesk/internal/router"
)

// RouterAgent fronts the orchestration engine as an agent of its own,
// so clients talk to the router the same way the router talks to the
// specialists.
type RouterAgent struct {
	router *router.Router
}

// NewRouterAgent creates the router agent.
func NewRouterAgent(r *router.Router) *RouterAgent {
	return &RouterAgent{router: r}
}

// Card returns the agent card served at the well-known endpoint.
func (a *RouterAgent) Card(baseURL string) a2a.AgentCard {
	return a2a.AgentCard{
		Name:        "Support Router",
		Description: "Coordinates specialist agents to answer customer requests.",
		URL:         baseURL,
		Version:     "1.0.0",
		Skills: []a2a.AgentSkill{
			{
				ID:          "routing",
				Name:        "Request Routing",
				Description: "Plans and runs specialist calls for one request",
				Tags:        []string{"routing", "orchestration"},
				InputModes:  []string{"text"},
				OutputModes: []string{"text"},
				Examples:    []string{"Check the status of customer 5", "I was charged twice"},
			},
		},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Capabilities:       a2a.AgentCapabilities{Streaming: false},
		Provider:           a2a.AgentProvider{Organization: "helpdesk"},
	}
}

// Skill returns the a2a skill function for the router.
func (a *RouterAgent) Skill() a2a.SkillFunc {
	return func(ctx context.Context, msg a2a.Message) (a2a.Message, error) {
		answer, _ := a.router.Handle(ctx, msg.Text())
		return a2a.NewTextMessage(answer, a2a.RoleAgent), nil
	}
}

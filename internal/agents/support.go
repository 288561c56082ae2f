package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShayCichocki/helpdesk/internal/a2a"
	"github.com/ShayCichocki/helpdesk/internal/router"
)

const supportOraclePrompt = "You are a friendly customer support representative. Use any provided account context as background, " +
	"but speak directly to the customer in clear, empathetic language. Briefly summarize what you know about " +
	"their situation and offer 2-3 practical next steps. Do not mention internal routing, agents, or raw JSON."

const supportMaxTokens = 512

// SupportAgent crafts customer-facing replies from the request and
// whatever account context the router threaded in.
type SupportAgent struct {
	llm router.Completer
}

// NewSupportAgent creates a support agent. llm may be nil, in which
// case replies are built from the deterministic templates.
func NewSupportAgent(llm router.Completer) *SupportAgent {
	return &SupportAgent{llm: llm}
}

// Card returns the agent card served at the well-known endpoint.
func (a *SupportAgent) Card(baseURL string) a2a.AgentCard {
	return a2a.AgentCard{
		Name:        "Support Agent",
		Description: "Handles non-billing support cases and provides troubleshooting guidance.",
		URL:         baseURL,
		Version:     "1.0.0",
		Skills: []a2a.AgentSkill{
			{
				ID:          "support-general",
				Name:        "General Support",
				Description: "Answer product and troubleshooting questions",
				Tags:        []string{"support", "triage"},
				InputModes:  []string{"text"},
				OutputModes: []string{"text"},
				Examples:    []string{"Help reset password", "Walk me through troubleshooting"},
			},
		},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Capabilities:       a2a.AgentCapabilities{Streaming: false},
		Provider:           a2a.AgentProvider{Organization: "helpdesk"},
	}
}

// Skill returns the a2a skill function for this agent.
func (a *SupportAgent) Skill() a2a.SkillFunc {
	return func(ctx context.Context, msg a2a.Message) (a2a.Message, error) {
		reply := a.handle(ctx, msg.Text())
		encoded, err := json.Marshal(map[string]any{"reply": reply})
		if err != nil {
			return a2a.Message{}, fmt.Errorf("encode support reply: %w", err)
		}
		return a2a.NewTextMessage(string(encoded), a2a.RoleAgent), nil
	}
}

// supportPayload is the structured request the router sends.
type supportPayload struct {
	Request     string         `json:"request"`
	DataContext map[string]any `json:"data_context"`
}

func (a *SupportAgent) handle(ctx context.Context, text string) string {
	var payload supportPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		// Free-text request without the structured envelope.
		payload = supportPayload{Request: text}
	}

	if reply := a.oracleReply(ctx, payload); reply != "" {
		return reply
	}
	return templateReply(payload)
}

func (a *SupportAgent) oracleReply(ctx context.Context, payload supportPayload) string {
	if a.llm == nil {
		return ""
	}
	userPayload, err := json.Marshal(map[string]any{
		"request":      payload.Request,
		"data_context": payload.DataContext,
	})
	if err != nil {
		return ""
	}
	reply, err := a.llm.Complete(ctx, supportOraclePrompt, string(userPayload), supportMaxTokens)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(reply)
}

// templateReply builds the deterministic fallback reply: intro, one
// context line, and the top suggestions for the request's topic.
func templateReply(payload supportPayload) string {
	request := strings.TrimSpace(payload.Request)
	if request == "" {
		request = "your request"
	}

	intro := "Hi there, thanks for reaching out."
	if len(payload.DataContext) > 0 {
		intro = "Hi there, I took a look at the recent notes on your account."
	}

	lower := strings.ToLower(payload.Request)
	contextLine := ""
	switch {
	case strings.Contains(lower, "login") || strings.Contains(lower, "password"):
		contextLine = "It looks like you're having trouble signing in."
	case strings.Contains(lower, "ticket") || strings.Contains(lower, "issue"):
		contextLine = "I see you're dealing with an issue you'd like us to track."
	default:
		contextLine = summarizeContext(payload.DataContext)
	}

	lines := []string{intro}
	if contextLine != "" {
		lines = append(lines, contextLine)
	}
	lines = append(lines, fmt.Sprintf("Here's what I'd suggest for %s:", request))
	for _, item := range suggestions(lower) {
		lines = append(lines, "- "+item)
	}
	lines = append(lines, "We're here to help. Just reply to this message if you'd like me to take action now.")

	return strings.Join(lines, "\n")
}

// summarizeContext turns threaded account context into one short line.
func summarizeContext(data map[string]any) string {
	if len(data) == 0 {
		return ""
	}

	if customer, ok := data["customer"].(map[string]any); ok {
		name, _ := customer["name"].(string)
		status, _ := customer["status"].(string)
		if name == "" {
			name = "your account"
		}
		if status == "" {
			status = "noted"
		}
		return fmt.Sprintf("Account %s is currently %s.", name, status)
	}

	if tickets, ok := data["history"].(map[string]any); ok {
		if list, ok := tickets["tickets"].([]any); ok && len(list) > 0 {
			if latest, ok := list[0].(map[string]any); ok {
				issue, _ := latest["issue"].(string)
				status, _ := latest["status"].(string)
				if issue == "" {
					issue = "recent activity"
				}
				return fmt.Sprintf("Latest ticket (%s): %s.", status, issue)
			}
		}
	}

	return "I've reviewed the notes on your account."
}

// suggestions returns next-step suggestions for a request topic.
func suggestions(lower string) []string {
	var out []string
	switch {
	case strings.Contains(lower, "login") || strings.Contains(lower, "password"):
		out = append(out,
			"Try resetting your password and confirm you can sign in from a trusted browser.",
			"If the issue persists, send us the exact error message so we can investigate quickly.")
	case strings.Contains(lower, "ticket") || strings.Contains(lower, "issue"):
		out = append(out,
			"We'll open a support ticket and keep you updated via email.",
			"Feel free to reply with any screenshots or timestamps to speed things up.")
	case strings.Contains(lower, "history") || strings.Contains(lower, "follow"):
		out = append(out,
			"We reviewed your recent activity and will keep monitoring for any new updates.",
			"If anything changes, let us know and we can adjust the plan together.")
	default:
		out = append(out,
			"Let me know any specifics you want us to double-check.",
			"We can schedule a quick follow-up if you'd like more help.")
	}
	out = append(out, "If you need urgent assistance, reply here and we'll prioritize your request.")
	return out
}

package agents

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ShayCichocki/helpdesk/internal/a2a"
)

func callSupportSkill(t *testing.T, agent *SupportAgent, payload any) string {
	t.Helper()
	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	reply, err := agent.Skill()(context.Background(), a2a.NewTextMessage(string(encoded), a2a.RoleUser))
	if err != nil {
		t.Fatalf("skill failed: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(reply.Text()), &result); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	text, ok := result["reply"].(string)
	if !ok {
		t.Fatalf("reply = %v, want string under 'reply'", result)
	}
	return text
}

func TestSupportAgentTemplateTopics(t *testing.T) {
	agent := NewSupportAgent(nil)

	tests := []struct {
		name    string
		request string
		want    string
	}{
		{
			name:    "login trouble",
			request: "I can't login to my account",
			want:    "trouble signing in",
		},
		{
			name:    "ticket request",
			request: "please open a ticket for this",
			want:    "track",
		},
		{
			name:    "generic",
			request: "tell me about my plan",
			want:    "double-check",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := callSupportSkill(t, agent, map[string]any{"request": tt.request})
			if !strings.Contains(reply, tt.want) {
				t.Errorf("reply %q does not mention %q", reply, tt.want)
			}
			if !strings.Contains(reply, "urgent assistance") {
				t.Errorf("reply %q missing the standing urgent-help line", reply)
			}
		})
	}
}

func TestSupportAgentSummarizesContext(t *testing.T) {
	agent := NewSupportAgent(nil)

	reply := callSupportSkill(t, agent, map[string]any{
		"request": "what's going on with my account?",
		"data_context": map[string]any{
			"customer": map[string]any{"name": "Alice Johnson", "status": "active"},
		},
	})

	if !strings.Contains(reply, "recent notes on your account") {
		t.Errorf("reply %q missing the context-aware intro", reply)
	}
	if !strings.Contains(reply, "Alice Johnson") || !strings.Contains(reply, "active") {
		t.Errorf("reply %q missing the account summary", reply)
	}
}

func TestSupportAgentOracleReply(t *testing.T) {
	agent := NewSupportAgent(&cannedCompleter{response: "  Here's a hand-written answer.  "})

	reply := callSupportSkill(t, agent, map[string]any{"request": "help"})
	if reply != "Here's a hand-written answer." {
		t.Errorf("reply = %q, want the trimmed oracle answer", reply)
	}
}

func TestSupportAgentOracleFailureFallsBack(t *testing.T) {
	agent := NewSupportAgent(&cannedCompleter{err: errors.New("oracle down")})

	reply := callSupportSkill(t, agent, map[string]any{"request": "password reset"})
	if !strings.Contains(reply, "resetting your password") {
		t.Errorf("reply = %q, want the template fallback", reply)
	}
}

func TestSupportAgentPlainTextRequest(t *testing.T) {
	agent := NewSupportAgent(nil)

	reply, err := agent.Skill()(context.Background(), a2a.NewTextMessage("hello there", a2a.RoleUser))
	if err != nil {
		t.Fatalf("skill failed: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(reply.Text()), &result); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	text := result["reply"].(string)
	if !strings.Contains(text, "hello there") {
		t.Errorf("reply %q does not echo the request", text)
	}
}

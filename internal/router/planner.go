package router

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ShayCichocki/helpdesk/pkg/models"
)

// Completer is the narrow slice of the LLM client the router needs.
// Extracted as an interface so the planner and composer can be tested
// with canned responses.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int64) (string, error)
}

// plannerInstructions tells the oracle what specialists exist, what
// payload shape each expects, and which budgets to honor. The budgets
// are advisory here; ValidatePlan enforces them regardless.
const plannerInstructions = `You are a planner that decides which specialist agents to call for a customer message.
Agents:
- data: fetches relevant customer data and context; expects JSON with request, customer_id, email.
- support: crafts customer-facing responses; expects JSON with request, customer_id, email, data_context.
- billing: handles billing replies; expects JSON with request, data_context, billing_issue.
Return ONLY strict JSON following this schema:
{"steps":[{"agent":"data|support|billing","payload":{...}} or {"parallel":[...]}],"final_answer_strategy":"last_step_text|compose"}
Steps may be in any order; omit agents that aren't needed. Avoid markdown.
Use parallel when multiple similar fetches are needed. For account-specific requests, prefer data then support.
Honor a maximum of 8 total agent calls, 12 calls inside any parallel group, and 5 top-level steps.
Never rewrite the request text; use it verbatim in payload.request.
If the user asks for multiple actions, create multiple steps so each action is executed.`

const plannerMaxTokens = 1024

// OraclePlanner asks the external decision oracle for a candidate plan.
// The oracle is inherently unreliable, so this adapter fails closed: on
// any transport error or non-parseable output it returns nil and never
// raises past its boundary.
type OraclePlanner struct {
	llm Completer
}

// NewOraclePlanner creates a planner backed by the completer.
func NewOraclePlanner(llm Completer) *OraclePlanner {
	return &OraclePlanner{llm: llm}
}

// ProposePlan returns a decoded plan candidate, or nil when the oracle
// is unreachable or produced garbage. The candidate is untrusted; run
// it through ValidatePlan before execution.
func (p *OraclePlanner) ProposePlan(ctx context.Context, requestText string, hints models.Hints) any {
	userPayload, err := json.Marshal(map[string]any{
		"request": requestText,
		"parsed":  hints,
	})
	if err != nil {
		return nil
	}

	content, err := p.llm.Complete(ctx, plannerInstructions, string(userPayload), plannerMaxTokens)
	if err != nil {
		return nil
	}

	raw := ExtractJSONObject(content)
	if raw == "" {
		return nil
	}

	var candidate any
	if err := json.Unmarshal([]byte(raw), &candidate); err != nil {
		return nil
	}
	return candidate
}

// ExtractJSONObject pulls the outermost JSON object from oracle output
// that may be wrapped in prose or markdown fences.
func ExtractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return content[start : end+1]
}

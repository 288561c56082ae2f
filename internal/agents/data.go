// Package agents implements the specialist agents: data, support and
// billing. Each exposes an a2a skill plus an agent card and runs as an
// independent HTTP service.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ShayCichocki/helpdesk/internal/a2a"
	"github.com/ShayCichocki/helpdesk/internal/router"
	"github.com/ShayCichocki/helpdesk/internal/tools"
)

// Tool-call budgets for one data-agent request. These mirror the
// router's plan budgets but are enforced independently: the data agent
// trusts nobody, including the router.
const (
	maxToolCalls      = 8
	maxParallelFanout = 12
)

const dataPlannerMaxTokens = 1024

// DataAgent resolves structured requests into tool calls against the
// customer-data server.
type DataAgent struct {
	tools *tools.Client
	llm   router.Completer
	debug bool
}

// NewDataAgent creates a data agent. llm may be nil, in which case
// every request uses deterministic tool selection.
func NewDataAgent(toolsClient *tools.Client, llm router.Completer) *DataAgent {
	return &DataAgent{tools: toolsClient, llm: llm}
}

// SetDebug enables per-request log lines in the response payload.
func (a *DataAgent) SetDebug(debug bool) {
	a.debug = debug
}

// Card returns the agent card served at the well-known endpoint.
func (a *DataAgent) Card(baseURL string) a2a.AgentCard {
	return a2a.AgentCard{
		Name:        "Customer Data Agent",
		Description: "Executes database tools for customer records and tickets.",
		URL:         baseURL,
		Version:     "1.0.0",
		Skills: []a2a.AgentSkill{
			{
				ID:          "customer-data",
				Name:        "Customer Database Tools",
				Description: "Calls tools to get and update customer data",
				Tags:        []string{"database", "customers"},
				InputModes:  []string{"text"},
				OutputModes: []string{"text"},
				Examples:    []string{"List customers", "Get history for customer"},
			},
		},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Capabilities:       a2a.AgentCapabilities{Streaming: false},
		Provider:           a2a.AgentProvider{Organization: "helpdesk"},
	}
}

// Skill returns the a2a skill function for this agent.
func (a *DataAgent) Skill() a2a.SkillFunc {
	return func(ctx context.Context, msg a2a.Message) (a2a.Message, error) {
		reply := a.handle(ctx, msg.Text())
		encoded, err := json.Marshal(reply)
		if err != nil {
			return a2a.Message{}, fmt.Errorf("encode data reply: %w", err)
		}
		return a2a.NewTextMessage(string(encoded), a2a.RoleAgent), nil
	}
}

// dataPayload is the structured request the router sends.
type dataPayload struct {
	Request    string `json:"request"`
	CustomerID *int   `json:"customer_id"`
	Email      string `json:"email"`
}

// toolCall is one validated tool invocation.
type toolCall struct {
	Name string         `json:"tool_name"`
	Args map[string]any `json:"args"`
}

// toolStep is either one call or a parallel group of calls.
type toolStep struct {
	Call     *toolCall
	Parallel []toolCall
}

func (a *DataAgent) handle(ctx context.Context, text string) map[string]any {
	var payload dataPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return map[string]any{
			"handled": false,
			"reason":  "Invalid structured request: expected JSON with request, customer_id, and email.",
		}
	}

	var logs []string
	logf := func(format string, args ...any) {
		logs = append(logs, fmt.Sprintf(format, args...))
	}

	result := a.handlePlanned(ctx, payload, logf)
	if result == nil {
		logf("planner unavailable, using deterministic tool selection")
		result = a.deterministic(ctx, payload, logf)
	}

	if a.debug {
		result["logs"] = logs
	}
	return result
}

// handlePlanned asks the oracle for a tool plan and executes it.
// Returns nil when the oracle is unavailable or its plan is unusable.
func (a *DataAgent) handlePlanned(ctx context.Context, payload dataPayload, logf func(string, ...any)) map[string]any {
	if a.llm == nil {
		return nil
	}

	userPayload, err := json.Marshal(map[string]any{
		"request": payload.Request,
		"hints": map[string]any{
			"customer_id": payload.CustomerID,
			"email":       payload.Email,
		},
	})
	if err != nil {
		return nil
	}

	content, err := a.llm.Complete(ctx, dataPlannerPrompt(), string(userPayload), dataPlannerMaxTokens)
	if err != nil {
		return nil
	}

	raw := router.ExtractJSONObject(content)
	if raw == "" {
		return nil
	}
	var candidate map[string]any
	if err := json.Unmarshal([]byte(raw), &candidate); err != nil {
		return nil
	}

	steps, summary := validateToolPlan(candidate)
	if steps == nil {
		return nil
	}

	logf("planner selected %d tool steps", len(steps))
	executed := a.executeSteps(ctx, steps, logf)

	dataContext := map[string]any{}
	if dc, ok := candidate["data_context"].(map[string]any); ok {
		dataContext = dc
	}
	if len(executed) > 0 {
		dataContext["tool_results"] = executed
	}

	return map[string]any{
		"handled":             true,
		"tool_calls_executed": executed,
		"data_context":        dataContext,
		"summary":             summary,
	}
}

// validateToolPlan bounds and filters an oracle tool plan. Unknown
// tools are dropped; a plan with no surviving calls is rejected.
func validateToolPlan(candidate map[string]any) ([]toolStep, string) {
	rawCalls, ok := candidate["tool_calls"].([]any)
	if !ok {
		return nil, ""
	}

	known := map[string]bool{}
	for _, info := range tools.Catalog() {
		known[info.Name] = true
	}

	validateCall := func(entry map[string]any) *toolCall {
		name, _ := entry["tool_name"].(string)
		if name == "" {
			name, _ = entry["tool"].(string)
		}
		if !known[name] {
			return nil
		}
		args, ok := entry["args"].(map[string]any)
		if !ok {
			args = map[string]any{}
		}
		return &toolCall{Name: name, Args: args}
	}

	var steps []toolStep
	usedCalls := 0
	for _, rawCall := range rawCalls {
		if usedCalls >= maxToolCalls {
			break
		}
		entry, ok := rawCall.(map[string]any)
		if !ok {
			continue
		}
		if rawChildren, ok := entry["parallel"].([]any); ok {
			var children []toolCall
			for _, rawChild := range rawChildren {
				if usedCalls >= maxToolCalls || len(children) >= maxParallelFanout {
					break
				}
				childMap, ok := rawChild.(map[string]any)
				if !ok {
					continue
				}
				call := validateCall(childMap)
				if call == nil {
					continue
				}
				children = append(children, *call)
				usedCalls++
			}
			if len(children) > 0 {
				steps = append(steps, toolStep{Parallel: children})
			}
			continue
		}
		call := validateCall(entry)
		if call != nil {
			steps = append(steps, toolStep{Call: call})
			usedCalls++
		}
	}

	if len(steps) == 0 {
		return nil, ""
	}

	summary, _ := candidate["final_reply"].(string)
	return steps, summary
}

// executeSteps runs the plan, parallel groups concurrently, and
// returns one executed-call record per tool invocation.
func (a *DataAgent) executeSteps(ctx context.Context, steps []toolStep, logf func(string, ...any)) []any {
	var executed []any
	for _, step := range steps {
		if step.Call != nil {
			executed = append(executed, a.runTool(ctx, *step.Call, logf))
			continue
		}

		logf("executing parallel tool group of %d", len(step.Parallel))
		results := make([]map[string]any, len(step.Parallel))
		var wg sync.WaitGroup
		for i := range step.Parallel {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = a.runTool(ctx, step.Parallel[i], nil)
			}(i)
		}
		wg.Wait()
		for i, result := range results {
			logf("parallel %s finished", step.Parallel[i].Name)
			executed = append(executed, result)
		}
	}
	return executed
}

// runTool invokes one tool, folding failures into the record rather
// than aborting the plan. logf may be nil when called off the request
// goroutine.
func (a *DataAgent) runTool(ctx context.Context, call toolCall, logf func(string, ...any)) map[string]any {
	if logf != nil {
		logf("agent -> tools: %s", call.Name)
	}
	record := map[string]any{"tool": call.Name, "args": call.Args}
	result, err := a.tools.Call(ctx, call.Name, call.Args)
	if err != nil {
		record["result"] = map[string]any{"error": err.Error()}
		return record
	}
	record["result"] = result
	return record
}

// deterministic is the no-oracle path: pick tools from the parsed
// hints alone.
func (a *DataAgent) deterministic(ctx context.Context, payload dataPayload, logf func(string, ...any)) map[string]any {
	var executed []any
	var summary string
	dataContext := map[string]any{}

	run := func(name string, args map[string]any) any {
		record := a.runTool(ctx, toolCall{Name: name, Args: args}, logf)
		executed = append(executed, record)
		return record["result"]
	}

	switch {
	case payload.CustomerID != nil && payload.Email != "":
		updated := run("update_customer", map[string]any{
			"customer_id": *payload.CustomerID,
			"fields":      map[string]any{"email": payload.Email},
		})
		history := run("get_customer_history", map[string]any{"customer_id": *payload.CustomerID})
		dataContext = map[string]any{
			"customer_id": *payload.CustomerID,
			"email":       payload.Email,
			"updated":     updated,
			"history":     history,
		}
		summary = fmt.Sprintf("Updated email and retrieved history for customer %d", *payload.CustomerID)

	case payload.CustomerID != nil:
		customer := run("get_customer", map[string]any{"customer_id": *payload.CustomerID})
		history := run("get_customer_history", map[string]any{"customer_id": *payload.CustomerID})
		dataContext = map[string]any{"customer": customer, "history": history}
		summary = fmt.Sprintf("Fetched customer record for %d", *payload.CustomerID)

	case payload.Email != "":
		customer := run("get_customer", map[string]any{"email": payload.Email})
		dataContext = map[string]any{"customer": customer}
		summary = fmt.Sprintf("Fetched customer record for %s", payload.Email)

	default:
		result := run("list_customers", map[string]any{"status": "active", "limit": 50})
		dataContext = map[string]any{"customers": result}
		summary = "Listed active customers"
	}

	return map[string]any{
		"handled":             true,
		"tool_calls_executed": executed,
		"data_context":        dataContext,
		"summary":             summary,
		"request":             payload.Request,
	}
}

// dataPlannerPrompt builds the system prompt with the live tool
// catalog embedded.
func dataPlannerPrompt() string {
	catalog, _ := json.Marshal(tools.Catalog())
	return fmt.Sprintf(`You are the data agent. Decide which tools to call to satisfy the user's request.
Tools available:
%s

Output STRICT JSON with keys:
- tool_calls: list of {"tool_name": string, "args": object} or {"parallel": [same]}
- data_context: optional object with structured notes about expected results
- final_reply: optional short summary grounded in tool outputs
Rules:
- Prefer calling tools; never fabricate results.
- Max %d tool calls per request. Max %d items inside any parallel group.
- Keep the user's request text verbatim; do not rewrite it.`, catalog, maxToolCalls, maxParallelFanout)
}

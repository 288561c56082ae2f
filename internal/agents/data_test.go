package agents

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/ShayCichocki/helpdesk/internal/a2a"
	"github.com/ShayCichocki/helpdesk/internal/tools"
)

// cannedCompleter replays one canned completion.
type cannedCompleter struct {
	response string
	err      error
}

func (c *cannedCompleter) Complete(_ context.Context, _, _ string, _ int64) (string, error) {
	return c.response, c.err
}

func newToolsFixture(t *testing.T) (*tools.Client, *tools.Store) {
	t.Helper()
	store, err := tools.Open(t.TempDir() + "/tools.db")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := store.Seed(tools.DefaultSeed()); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	srv := httptest.NewServer(tools.NewServerMux(store))
	t.Cleanup(srv.Close)
	return tools.NewClient(srv.URL), store
}

func callDataSkill(t *testing.T, agent *DataAgent, payload any) map[string]any {
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
	return result
}

func TestDataAgentRejectsUnstructuredText(t *testing.T) {
	client, _ := newToolsFixture(t)
	agent := NewDataAgent(client, nil)

	reply, err := agent.Skill()(context.Background(), a2a.NewTextMessage("just plain words", a2a.RoleUser))
	if err != nil {
		t.Fatalf("skill failed: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(reply.Text()), &result); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if result["handled"] != false {
		t.Errorf("handled = %v, want false", result["handled"])
	}
	if result["reason"] == "" {
		t.Error("reason is empty")
	}
}

func TestDataAgentDeterministicByCustomerID(t *testing.T) {
	client, _ := newToolsFixture(t)
	agent := NewDataAgent(client, nil)

	result := callDataSkill(t, agent, map[string]any{
		"request":     "what's the status of my account?",
		"customer_id": 1,
	})

	if result["handled"] != true {
		t.Fatalf("handled = %v, want true", result["handled"])
	}
	executed, ok := result["tool_calls_executed"].([]any)
	if !ok || len(executed) != 2 {
		t.Fatalf("tool_calls_executed = %v, want get_customer and get_customer_history", result["tool_calls_executed"])
	}

	dataContext, ok := result["data_context"].(map[string]any)
	if !ok {
		t.Fatalf("data_context is %T, want map", result["data_context"])
	}
	customer, ok := dataContext["customer"].(map[string]any)
	if !ok || customer["name"] != "Alice Johnson" {
		t.Errorf("data_context customer = %v, want Alice Johnson", dataContext["customer"])
	}
}

func TestDataAgentDeterministicByEmail(t *testing.T) {
	client, _ := newToolsFixture(t)
	agent := NewDataAgent(client, nil)

	result := callDataSkill(t, agent, map[string]any{
		"request": "look up my account",
		"email":   "bob@example.com",
	})

	dataContext := result["data_context"].(map[string]any)
	customer, ok := dataContext["customer"].(map[string]any)
	if !ok || customer["name"] != "Bob Smith" {
		t.Errorf("customer = %v, want Bob Smith", dataContext["customer"])
	}
}

func TestDataAgentDeterministicListFallback(t *testing.T) {
	client, _ := newToolsFixture(t)
	agent := NewDataAgent(client, nil)

	result := callDataSkill(t, agent, map[string]any{"request": "who are our customers?"})

	if result["summary"] != "Listed active customers" {
		t.Errorf("summary = %v, want listing summary", result["summary"])
	}
}

func TestDataAgentPlannedToolCalls(t *testing.T) {
	client, _ := newToolsFixture(t)
	plan := `{"tool_calls":[
		{"tool_name":"get_customer","args":{"customer_id":1}},
		{"parallel":[
			{"tool_name":"get_customer_history","args":{"customer_id":1}},
			{"tool_name":"get_customer_history","args":{"customer_id":2}}
		]}
	],"final_reply":"Pulled both histories."}`
	agent := NewDataAgent(client, &cannedCompleter{response: plan})

	result := callDataSkill(t, agent, map[string]any{"request": "compare 1 and 2", "customer_id": 1})

	if result["summary"] != "Pulled both histories." {
		t.Errorf("summary = %v, want planner summary", result["summary"])
	}
	executed, ok := result["tool_calls_executed"].([]any)
	if !ok || len(executed) != 3 {
		t.Fatalf("tool_calls_executed = %v, want 3 calls", result["tool_calls_executed"])
	}
	first := executed[0].(map[string]any)
	if first["tool"] != "get_customer" {
		t.Errorf("first executed tool = %v, want get_customer", first["tool"])
	}
}

func TestDataAgentOracleFailureFallsBack(t *testing.T) {
	client, _ := newToolsFixture(t)
	agent := NewDataAgent(client, &cannedCompleter{err: errors.New("oracle down")})

	result := callDataSkill(t, agent, map[string]any{"request": "account check", "customer_id": 2})

	if result["handled"] != true {
		t.Fatalf("handled = %v, want deterministic fallback to run", result["handled"])
	}
	dataContext := result["data_context"].(map[string]any)
	customer, ok := dataContext["customer"].(map[string]any)
	if !ok || customer["name"] != "Bob Smith" {
		t.Errorf("customer = %v, want Bob Smith", dataContext["customer"])
	}
}

func TestDataAgentToolErrorRecorded(t *testing.T) {
	client, _ := newToolsFixture(t)
	agent := NewDataAgent(client, nil)

	result := callDataSkill(t, agent, map[string]any{"request": "check", "customer_id": 999})

	if result["handled"] != true {
		t.Fatalf("handled = %v, want true even when the tool fails", result["handled"])
	}
	executed := result["tool_calls_executed"].([]any)
	record := executed[0].(map[string]any)
	toolResult, ok := record["result"].(map[string]any)
	if !ok || toolResult["error"] == nil {
		t.Errorf("result = %v, want recorded tool error", record["result"])
	}
}

func TestValidateToolPlanBudgets(t *testing.T) {
	children := make([]any, 20)
	for i := range children {
		children[i] = map[string]any{"tool_name": "get_customer", "args": map[string]any{"customer_id": float64(i)}}
	}
	candidate := map[string]any{"tool_calls": []any{map[string]any{"parallel": children}}}

	steps, _ := validateToolPlan(candidate)
	if steps == nil {
		t.Fatal("plan rejected, want bounded plan")
	}
	if len(steps) != 1 || len(steps[0].Parallel) != maxToolCalls {
		t.Errorf("surviving parallel calls = %d, want %d", len(steps[0].Parallel), maxToolCalls)
	}
}

func TestValidateToolPlanDropsUnknownTools(t *testing.T) {
	candidate := map[string]any{"tool_calls": []any{
		map[string]any{"tool_name": "drop_all_tables"},
		map[string]any{"tool_name": "list_customers"},
	}}

	steps, _ := validateToolPlan(candidate)
	if len(steps) != 1 || steps[0].Call == nil || steps[0].Call.Name != "list_customers" {
		t.Errorf("steps = %+v, want only list_customers", steps)
	}

	onlyUnknown := map[string]any{"tool_calls": []any{map[string]any{"tool_name": "nope"}}}
	if steps, _ := validateToolPlan(onlyUnknown); steps != nil {
		t.Errorf("steps = %+v, want nil for all-unknown plan", steps)
	}
}

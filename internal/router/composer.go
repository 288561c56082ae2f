package router

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ShayCichocki/helpdesk/pkg/models"
)

// FallbackAnswer is returned when every specialist failed and no usable
// text can be recovered from the run.
const FallbackAnswer = "I'm sorry, I was unable to produce a response."

const composerInstructions = `You compose a single customer-facing answer from the results of specialist agents.
You receive the original request and a JSON object of per-agent results.
Write a concise, helpful reply addressing the request. Use only facts present in the results.
Return plain text only, no markdown, no JSON.`

const composerMaxTokens = 1024

// Composer turns accumulated specialist results into the final answer.
// It degrades through three tiers: the plan's declared strategy, an
// oracle-written composition, and a fixed capability priority. Failure
// markers recorded by the executor are never surfaced as answer text.
type Composer struct {
	llm Completer
}

// NewComposer creates a composer backed by the completer. A nil
// completer is allowed; the oracle tier is then skipped.
func NewComposer(llm Completer) *Composer {
	return &Composer{llm: llm}
}

// Compose produces the final answer for a finished run.
func (c *Composer) Compose(ctx context.Context, st *ExecutionState) string {
	if st.Plan.Strategy == models.StrategyLastStepText {
		if text := c.lastStepText(st); text != "" {
			return text
		}
	}

	if text := c.composeWithOracle(ctx, st); text != "" {
		return text
	}

	return c.terminalFallback(st)
}

// lastStepText extracts the answer from the plan's final step. Plans
// ending in a parallel group have no single final voice, so this tier
// yields nothing and the composer falls through.
func (c *Composer) lastStepText(st *ExecutionState) string {
	capability, ok := st.Plan.LastCapability()
	if !ok {
		return ""
	}
	result, ok := st.Latest(capability)
	if !ok || models.IsFailureMarker(result) {
		return ""
	}
	return replyText(capability, result)
}

func (c *Composer) composeWithOracle(ctx context.Context, st *ExecutionState) string {
	if c.llm == nil {
		return ""
	}
	usable := st.UsableResults()
	if len(usable) == 0 {
		return ""
	}
	userPayload, err := json.Marshal(map[string]any{
		"request": st.RequestText,
		"results": usable,
	})
	if err != nil {
		return ""
	}
	content, err := c.llm.Complete(ctx, composerInstructions, string(userPayload), composerMaxTokens)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(content)
}

// terminalFallback walks capabilities in priority order and returns the
// first usable reply. Everything failed means the fixed apology.
func (c *Composer) terminalFallback(st *ExecutionState) string {
	for _, capability := range models.AllCapabilities() {
		result, ok := st.Latest(capability)
		if !ok || models.IsFailureMarker(result) {
			continue
		}
		if text := replyText(capability, result); text != "" {
			return text
		}
	}
	return FallbackAnswer
}

// replyText extracts answer text from a specialist result. Support and
// billing speak through a canonical "reply" field; data results carry
// structured lookups and get summarized instead.
func replyText(capability models.Capability, result map[string]any) string {
	switch capability {
	case models.CapabilitySupport, models.CapabilityBilling:
		if reply, ok := result["reply"].(string); ok {
			return strings.TrimSpace(reply)
		}
		return ""
	case models.CapabilityData:
		return summarizeData(result)
	default:
		return ""
	}
}

// summarizeData renders a data result as deterministic "key: value"
// lines in sorted key order. Bookkeeping fields are skipped.
func summarizeData(result map[string]any) string {
	keys := make([]string, 0, len(result))
	for key := range result {
		if key == "tool_calls" || key == "logs" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", key, formatValue(result[key])))
	}
	return strings.Join(lines, "\n")
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return "null"
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}

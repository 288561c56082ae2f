package models

import (
	"encoding/json"
	"testing"
)

func TestPlanStep_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		step PlanStep
	}{
		{
			"single call",
			PlanStep{Call: &SingleCall{
				Capability: CapabilityData,
				Payload:    map[string]any{"request": "hello"},
			}},
		},
		{
			"parallel group",
			PlanStep{Group: &ParallelGroup{Calls: []SingleCall{
				{Capability: CapabilityData, Payload: map[string]any{"customer_id": float64(1)}},
				{Capability: CapabilityData, Payload: map[string]any{"customer_id": float64(2)}},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.step)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			var decoded PlanStep
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", data, err)
			}

			if decoded.IsParallel() != tt.step.IsParallel() {
				t.Errorf("IsParallel() = %v after round trip, want %v", decoded.IsParallel(), tt.step.IsParallel())
			}
			if tt.step.Call != nil && decoded.Call.Capability != tt.step.Call.Capability {
				t.Errorf("Call.Capability = %q, want %q", decoded.Call.Capability, tt.step.Call.Capability)
			}
			if tt.step.Group != nil && len(decoded.Group.Calls) != len(tt.step.Group.Calls) {
				t.Errorf("len(Group.Calls) = %d, want %d", len(decoded.Group.Calls), len(tt.step.Group.Calls))
			}
		})
	}
}

func TestPlanStep_UnmarshalWireShapes(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantParallel bool
	}{
		{"agent step", `{"agent":"support","payload":{"request":"hi"}}`, false},
		{"parallel step", `{"parallel":[{"agent":"data","payload":{}}]}`, true},
		{"parallel wins over agent", `{"parallel":[{"agent":"data","payload":{}}],"agent":"support"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var step PlanStep
			if err := json.Unmarshal([]byte(tt.raw), &step); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.raw, err)
			}
			if step.IsParallel() != tt.wantParallel {
				t.Errorf("IsParallel() = %v, want %v", step.IsParallel(), tt.wantParallel)
			}
		})
	}
}

func TestPlan_LeafCount(t *testing.T) {
	call := func(c Capability) PlanStep {
		return PlanStep{Call: &SingleCall{Capability: c, Payload: map[string]any{}}}
	}
	group := func(n int) PlanStep {
		calls := make([]SingleCall, n)
		for i := range calls {
			calls[i] = SingleCall{Capability: CapabilityData, Payload: map[string]any{}}
		}
		return PlanStep{Group: &ParallelGroup{Calls: calls}}
	}

	tests := []struct {
		name string
		plan Plan
		want int
	}{
		{"empty plan", Plan{}, 0},
		{"single calls only", Plan{Steps: []PlanStep{call(CapabilityData), call(CapabilitySupport)}}, 2},
		{"group children counted", Plan{Steps: []PlanStep{group(3), call(CapabilitySupport)}}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.plan.LeafCount(); got != tt.want {
				t.Errorf("LeafCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPlan_LastCapability(t *testing.T) {
	tests := []struct {
		name   string
		plan   Plan
		want   Capability
		wantOK bool
	}{
		{"empty plan", Plan{}, "", false},
		{
			"ends in single call",
			Plan{Steps: []PlanStep{
				{Call: &SingleCall{Capability: CapabilityData}},
				{Call: &SingleCall{Capability: CapabilitySupport}},
			}},
			CapabilitySupport, true,
		},
		{
			"ends in parallel group",
			Plan{Steps: []PlanStep{
				{Group: &ParallelGroup{Calls: []SingleCall{{Capability: CapabilityData}}}},
			}},
			"", false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.plan.LastCapability()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("LastCapability() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCapabilityReply_Accumulated(t *testing.T) {
	tests := []struct {
		name       string
		reply      CapabilityReply
		wantMarker bool
	}{
		{
			"success keeps the result",
			CapabilityReply{Result: map[string]any{"reply": "hello"}},
			false,
		},
		{
			"nil result becomes empty map",
			CapabilityReply{},
			false,
		},
		{
			"failure becomes marker",
			CapabilityReply{Failure: &CapabilityFailure{Kind: FailureTimeout, Detail: "deadline exceeded"}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.reply.Accumulated()
			if got == nil {
				t.Fatal("Accumulated() returned nil")
			}
			if marker := IsFailureMarker(got); marker != tt.wantMarker {
				t.Errorf("IsFailureMarker(%v) = %v, want %v", got, marker, tt.wantMarker)
			}
		})
	}
}

func TestIsFailureMarker_RejectsOrdinaryErrors(t *testing.T) {
	// A specialist legitimately reporting an "error" field is not a
	// transport-level failure marker unless the kind is one of ours.
	result := map[string]any{"error": "record not found", "kind": "lookup"}
	if IsFailureMarker(result) {
		t.Errorf("IsFailureMarker(%v) = true, want false", result)
	}
}

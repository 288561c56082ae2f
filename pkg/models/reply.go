package models

// FailureKind classifies why a capability call produced no usable reply.
type FailureKind string

const (
	// FailureTimeout indicates the call exceeded its deadline.
	FailureTimeout FailureKind = "timeout"
	// FailureTransport indicates a connection or HTTP-level error.
	FailureTransport FailureKind = "transport_error"
	// FailureRemote indicates the specialist returned a JSON-RPC error.
	FailureRemote FailureKind = "remote_error"
)

// Valid returns true if the kind is a known value.
func (k FailureKind) Valid() bool {
	switch k {
	case FailureTimeout, FailureTransport, FailureRemote:
		return true
	default:
		return false
	}
}

// CapabilityFailure is a typed capability-call failure with enough
// detail for user-facing reporting.
type CapabilityFailure struct {
	Kind   FailureKind `json:"kind"`
	Detail string      `json:"detail"`
}

// CapabilityReply is the outcome of one capability call: either a
// structured result or a typed failure, never both.
type CapabilityReply struct {
	// Result is the specialist's structured output. Reply text that is
	// not valid JSON is wrapped as {"reply": text} rather than rejected.
	Result map[string]any `json:"result,omitempty"`
	// Failure is set when the call did not complete.
	Failure *CapabilityFailure `json:"failure,omitempty"`
}

// Failed returns true if the reply carries a failure.
func (r CapabilityReply) Failed() bool {
	return r.Failure != nil
}

// Accumulated returns the map recorded into the execution state for
// this reply. Failures become a marker carrying the failure detail so
// later steps and the composer can see what happened.
func (r CapabilityReply) Accumulated() map[string]any {
	if r.Failure != nil {
		return map[string]any{
			"error": r.Failure.Detail,
			"kind":  string(r.Failure.Kind),
		}
	}
	if r.Result == nil {
		return map[string]any{}
	}
	return r.Result
}

// IsFailureMarker reports whether an accumulated result map was
// recorded from a failed call.
func IsFailureMarker(result map[string]any) bool {
	if result == nil {
		return false
	}
	_, hasErr := result["error"]
	kind, hasKind := result["kind"]
	if !hasErr || !hasKind {
		return false
	}
	s, ok := kind.(string)
	return ok && FailureKind(s).Valid()
}

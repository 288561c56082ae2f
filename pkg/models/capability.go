// Package models defines the shared data types for the helpdesk orchestrator:
// capabilities, plans, capability replies, and extracted request hints.
package models

// Capability identifies one remote specialist agent.
type Capability string

const (
	// CapabilityData fetches customer records and ticket history.
	CapabilityData Capability = "data"
	// CapabilitySupport crafts customer-facing responses.
	CapabilitySupport Capability = "support"
	// CapabilityBilling handles billing replies and escalation.
	CapabilityBilling Capability = "billing"
)

// Valid returns true if the capability is a known value.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityData, CapabilitySupport, CapabilityBilling:
		return true
	default:
		return false
	}
}

// AllCapabilities lists every known capability in priority order.
// The order matters: it is the composer's terminal fallback preference
// (support first, then billing, then data).
func AllCapabilities() []Capability {
	return []Capability{CapabilitySupport, CapabilityBilling, CapabilityData}
}

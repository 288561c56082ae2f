package models

// Hints are the best-effort structured fields extracted from free-text
// requests. Either field may be absent.
type Hints struct {
	// CustomerID is the identified customer id, nil when not found.
	CustomerID *int `json:"customer_id"`
	// Email is the identified contact address, empty when not found.
	Email string `json:"email,omitempty"`
}

// Payload returns the hints as a payload fragment in the shape the
// specialists expect. Absent fields are encoded as nil so downstream
// agents can tell "not provided" from a zero value.
func (h Hints) Payload() map[string]any {
	out := map[string]any{}
	if h.CustomerID != nil {
		out["customer_id"] = *h.CustomerID
	} else {
		out["customer_id"] = nil
	}
	if h.Email != "" {
		out["email"] = h.Email
	} else {
		out["email"] = nil
	}
	return out
}

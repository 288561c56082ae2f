// Package router implements the plan-driven orchestration engine: it
// turns a free-text customer request into a validated, resource-bounded
// execution plan over remote specialist capabilities, executes that
// plan, and composes a final answer.
package router

import (
	"regexp"
	"strconv"

	"github.com/ShayCichocki/helpdesk/pkg/models"
)

var (
	customerIDPattern = regexp.MustCompile(`(?i)(?:customer\s*id|customer|id)\s*[:#]?\s*(\d+)`)
	emailPattern      = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// ParseRequest extracts best-effort structured hints from request text.
// Hints are advisory: absence of a match leaves the field unset rather
// than failing the request.
func ParseRequest(text string) models.Hints {
	hints := models.Hints{}

	if m := customerIDPattern.FindStringSubmatch(text); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil {
			hints.CustomerID = &id
		}
	}
	if m := emailPattern.FindString(text); m != "" {
		hints.Email = m
	}

	return hints
}

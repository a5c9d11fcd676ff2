package workflow

import (
	"fmt"
	"sort"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

// InvalidSelectionError reports a selection that violates a workflow
// invariant. In a correct UI it never reaches the user, but selections
// are rejected defensively regardless.
type InvalidSelectionError struct {
	Kind   models.SelectionKind
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid %s selection: %s", e.Kind, e.Reason)
}

// ValidationError carries schema failures keyed by field path.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// First returns the lexically first invalid field path, so callers can
// direct user attention somewhere deterministic.
func (e *ValidationError) First() string {
	if len(e.Fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}

// Package trigger decides whether a version-control event starts a run.
package trigger

import "github.com/VolaTeQ/conveyor/pkg/api"

// Event describes an incoming version-control event, independent of
// any hosting-platform schema.
type Event struct {
	Kind   string `json:"kind"`
	Branch string `json:"branch"`

	// Delivery is an optional platform-assigned identifier for the
	// event, carried through for diagnostics only.
	Delivery string `json:"delivery,omitempty"`
}

// Match reports whether the event starts a run under the given rules:
// the event kind must be configured and the branch must equal one of
// the branch names listed for that kind. A mismatch is not an error,
// it simply means no run.
func Match(rules map[string]api.TriggerRule, ev Event) bool {
	rule, ok := rules[ev.Kind]
	if !ok {
		return false
	}
	for _, branch := range rule.Branches {
		if branch == ev.Branch {
			return true
		}
	}
	return false
}

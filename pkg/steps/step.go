package steps

import (
	"context"

	"github.com/VolaTeQ/conveyor/pkg/artifact"
)

// StepContext provides the runtime context for a step. Env and Secrets
// are scoped to the one step being executed; secrets for other steps
// are never visible here.
type StepContext struct {
	RunID     string
	Workspace string

	// Source is the local source tree used by checkout steps that do
	// not name a remote repository.
	Source string

	Env     map[string]string
	Secrets map[string]string

	Artifacts *artifact.Store
}

// Step is the interface all pipeline steps implement. A non-nil error
// marks the step failed and halts the run.
type Step interface {
	Name() string
	Run(ctx context.Context, sc StepContext) error
}

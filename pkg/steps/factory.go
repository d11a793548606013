package steps

import (
	"fmt"

	"github.com/VolaTeQ/conveyor/pkg/api"
)

// NewStep creates a Step implementation from a StepConfig.
func NewStep(cfg api.StepConfig) (Step, error) {
	switch {
	case cfg.Checkout != nil:
		return NewCheckoutStep(cfg.Name, cfg.Checkout), nil
	case cfg.Run != "":
		return NewCommandStep(cfg.Name, cfg.Run), nil
	case cfg.Artifact != nil:
		return NewArtifactStep(cfg.Name, cfg.Artifact), nil
	default:
		return nil, fmt.Errorf("step %q has no action", cfg.Name)
	}
}

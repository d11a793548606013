package steps

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/VolaTeQ/conveyor/pkg/api"
	"github.com/VolaTeQ/conveyor/pkg/artifact"
)

type artifactStep struct {
	name string
	cfg  *api.ArtifactConfig
}

// NewArtifactStep creates a step that publishes build outputs to the
// run's artifact namespace.
func NewArtifactStep(name string, cfg *api.ArtifactConfig) Step {
	return &artifactStep{name: name, cfg: cfg}
}

func (s *artifactStep) Name() string { return s.name }

func (s *artifactStep) Run(ctx context.Context, sc StepContext) error {
	files, err := artifact.Resolve(sc.Workspace, s.cfg.Path)
	if err != nil {
		return fmt.Errorf("resolving artifact path: %w", err)
	}

	if len(files) == 0 {
		switch s.cfg.ZeroMatchPolicy() {
		case api.PolicyError:
			// The expected build output is a correctness assertion,
			// not a cosmetic nicety.
			return fmt.Errorf("artifact %q path %q: %w", s.cfg.Name, s.cfg.Path, artifact.ErrNoMatches)
		case api.PolicyWarn:
			slog.Warn("no files matched artifact path", "step", s.name, "artifact", s.cfg.Name, "path", s.cfg.Path)
			return nil
		default:
			return nil
		}
	}

	if _, err := sc.Artifacts.Publish(sc.RunID, s.cfg.Name, sc.Workspace, files); err != nil {
		return fmt.Errorf("publishing artifact %q: %w", s.cfg.Name, err)
	}
	return nil
}

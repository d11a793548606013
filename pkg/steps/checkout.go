package steps

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/VolaTeQ/conveyor/pkg/api"
)

type checkoutStep struct {
	name string
	cfg  *api.CheckoutConfig
}

// NewCheckoutStep creates a checkout step.
func NewCheckoutStep(name string, cfg *api.CheckoutConfig) Step {
	return &checkoutStep{name: name, cfg: cfg}
}

func (s *checkoutStep) Name() string { return s.name }

func (s *checkoutStep) Run(ctx context.Context, sc StepContext) error {
	if s.cfg.Repository == "" {
		return s.copyLocal(sc)
	}
	return s.clone(ctx, sc)
}

func (s *checkoutStep) clone(ctx context.Context, sc StepContext) error {
	opts := &git.CloneOptions{
		URL:          s.cfg.Repository,
		SingleBranch: true,
		Depth:        1,
	}
	if s.cfg.Ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.cfg.Ref)
	}

	slog.Info("checking out repository", "step", s.name, "repository", s.cfg.Repository, "ref", s.cfg.Ref)

	if _, err := git.PlainCloneContext(ctx, sc.Workspace, false, opts); err != nil {
		return fmt.Errorf("cloning %s: %w", s.cfg.Repository, err)
	}
	return nil
}

func (s *checkoutStep) copyLocal(sc StepContext) error {
	if sc.Source == "" {
		return fmt.Errorf("checkout has no repository and no local source directory is configured")
	}

	slog.Info("copying local source tree", "step", s.name, "source", sc.Source)

	if err := copyTree(sc.Source, sc.Workspace); err != nil {
		return fmt.Errorf("copying source tree: %w", err)
	}
	return nil
}

func copyTree(src, dst string) error {
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk error at %s: %w", path, err)
		}
		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return fmt.Errorf("computing relative path for %s: %w", path, relErr)
		}
		return copyEntry(dst, rel, path, d)
	})
	if err != nil {
		return fmt.Errorf("copying tree: %w", err)
	}
	return nil
}

func copyEntry(dst, rel, srcPath string, d fs.DirEntry) error {
	target := filepath.Join(dst, rel)

	if d.IsDir() {
		if err := os.MkdirAll(target, 0o750); err != nil {
			return fmt.Errorf("creating directory %s: %w", target, err)
		}
		return nil
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", srcPath, err)
	}

	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("stat %s: %w", srcPath, err)
	}

	if err := os.WriteFile(target, data, info.Mode()); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}

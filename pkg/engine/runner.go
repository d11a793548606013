package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/VolaTeQ/conveyor/pkg/api"
	"github.com/VolaTeQ/conveyor/pkg/artifact"
	"github.com/VolaTeQ/conveyor/pkg/secrets"
	"github.com/VolaTeQ/conveyor/pkg/steps"
	"github.com/VolaTeQ/conveyor/pkg/trigger"
)

// Runner executes jobs. It is a dispatcher plus status aggregator;
// all business logic lives in the steps it dispatches.
type Runner struct {
	Secrets   secrets.Store
	Artifacts *artifact.Store

	// WorkRoot is where run workspaces are created; empty means the
	// system temp directory.
	WorkRoot string

	// Source is the local source tree for checkout steps that do not
	// name a remote repository.
	Source string

	// KeepWorkspaces leaves run workspaces on disk for inspection.
	KeepWorkspaces bool
}

// RunPipeline executes the pipeline's jobs in declared order, one run
// per job, stopping at the first failed job. It returns the runs that
// were executed and an error if any of them failed.
func (r *Runner) RunPipeline(ctx context.Context, p *api.Pipeline, ev trigger.Event) ([]*Run, error) {
	var runs []*Run
	for _, job := range p.Jobs {
		run := r.RunJob(ctx, p, job, ev)
		runs = append(runs, run)
		if run.Status == StatusFailed {
			return runs, fmt.Errorf("job %q failed", job.Name)
		}
	}
	return runs, nil
}

// RunJob executes one job as a fresh run with its own workspace.
// Steps run strictly in order; the first failure halts dispatch and
// marks the run failed.
func (r *Runner) RunJob(ctx context.Context, p *api.Pipeline, job api.JobConfig, ev trigger.Event) *Run {
	run := NewRun(job.Name, ev)
	r.ExecuteRun(ctx, p, job, run)
	return run
}

// ExecuteRun executes a job into an existing run record. Callers that
// registered the run up front keep its identity stable: artifacts are
// published under run.ID.
func (r *Runner) ExecuteRun(ctx context.Context, p *api.Pipeline, job api.JobConfig, run *Run) {
	run.Status = StatusRunning
	run.Started = time.Now()
	defer func() { run.Ended = time.Now() }()

	slog.Info("run started", "run", run.ID, "job", job.Name, "event", run.Event.Kind, "branch", run.Event.Branch)

	workspace, err := os.MkdirTemp(r.WorkRoot, "conveyor-run-")
	if err != nil {
		run.Status = StatusFailed
		run.Steps = append(run.Steps, StepOutcome{
			Name:    "workspace",
			Status:  StatusFailed,
			Error:   fmt.Sprintf("creating workspace: %v", err),
			Started: time.Now(),
			Ended:   time.Now(),
		})
		return
	}
	if !r.KeepWorkspaces {
		defer removeWorkspace(workspace)
	}

	for _, stepCfg := range job.Steps {
		if err := ctx.Err(); err != nil {
			run.Status = StatusFailed
			run.Steps = append(run.Steps, StepOutcome{
				Name:    stepCfg.Name,
				Status:  StatusFailed,
				Error:   fmt.Sprintf("run aborted: %v", err),
				Started: time.Now(),
				Ended:   time.Now(),
			})
			break
		}

		outcome := r.runStep(ctx, p, stepCfg, run.ID, workspace)
		run.Steps = append(run.Steps, outcome)

		if outcome.Status == StatusFailed {
			slog.Error("step failed", "run", run.ID, "step", stepCfg.Name, "error", outcome.Error)
			run.Status = StatusFailed
			break
		}
		slog.Info("step succeeded", "run", run.ID, "step", stepCfg.Name)
	}

	if run.Status != StatusFailed {
		run.Status = StatusSucceeded
	}

	slog.Info("run finished", "run", run.ID, "job", job.Name, "status", run.Status)
}

func (r *Runner) runStep(ctx context.Context, p *api.Pipeline, cfg api.StepConfig, runID, workspace string) StepOutcome {
	outcome := StepOutcome{Name: cfg.Name, Started: time.Now()}
	defer func() { outcome.Ended = time.Now() }()

	err := r.dispatch(ctx, p, cfg, runID, workspace)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Status = StatusSucceeded
	return outcome
}

func (r *Runner) dispatch(ctx context.Context, p *api.Pipeline, cfg api.StepConfig, runID, workspace string) error {
	cfg, err := interpolateStep(cfg, p.Vars)
	if err != nil {
		return fmt.Errorf("interpolating step parameters: %w", err)
	}

	resolved, err := secrets.Resolve(r.Secrets, cfg.Secrets)
	if err != nil {
		return err
	}

	step, err := steps.NewStep(cfg)
	if err != nil {
		return fmt.Errorf("creating step: %w", err)
	}

	return step.Run(ctx, steps.StepContext{
		RunID:     runID,
		Workspace: workspace,
		Source:    r.Source,
		Env:       cfg.Env,
		Secrets:   resolved,
		Artifacts: r.Artifacts,
	})
}

func removeWorkspace(workspace string) {
	if err := os.RemoveAll(workspace); err != nil {
		slog.Warn("failed to remove run workspace", "workspace", workspace, "error", err)
	}
}

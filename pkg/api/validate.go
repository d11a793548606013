package api

import (
	"fmt"
	"strings"
)

var validEventKinds = map[string]bool{
	EventPush:        true,
	EventPullRequest: true,
}

var validZeroMatchPolicies = map[string]bool{
	PolicyError:  true,
	PolicyWarn:   true,
	PolicyIgnore: true,
}

// Validate checks the pipeline configuration for errors.
func (p *Pipeline) Validate() error {
	if len(p.On) == 0 {
		return fmt.Errorf("pipeline has no triggers")
	}

	for kind, rule := range p.On {
		if !validEventKinds[kind] {
			return fmt.Errorf("trigger %q: unknown event kind (valid: %s)",
				kind, strings.Join([]string{EventPush, EventPullRequest}, ", "))
		}
		if len(rule.Branches) == 0 {
			return fmt.Errorf("trigger %q: at least one branch is required", kind)
		}
		for _, b := range rule.Branches {
			if b == "" {
				return fmt.Errorf("trigger %q: empty branch name", kind)
			}
		}
	}

	if len(p.Jobs) == 0 {
		return fmt.Errorf("pipeline has no jobs")
	}

	jobNames := make(map[string]bool)
	for i, job := range p.Jobs {
		if job.Name == "" {
			return fmt.Errorf("job %d: name is required", i)
		}
		if jobNames[job.Name] {
			return fmt.Errorf("job %q: duplicate name", job.Name)
		}
		jobNames[job.Name] = true

		if job.RunsOn == "" {
			return fmt.Errorf("job %q: runs-on is required", job.Name)
		}

		if err := validateSteps(job); err != nil {
			return fmt.Errorf("job %q: %w", job.Name, err)
		}
	}

	return nil
}

func validateSteps(job JobConfig) error {
	if len(job.Steps) == 0 {
		return fmt.Errorf("job has no steps")
	}

	names := make(map[string]int)
	for i, step := range job.Steps {
		if step.Name == "" {
			return fmt.Errorf("step %d: name is required", i)
		}
		if prev, exists := names[step.Name]; exists {
			return fmt.Errorf("step %d: duplicate step name %q (first defined at step %d)", i, step.Name, prev)
		}
		names[step.Name] = i

		if err := validateStepConfig(step); err != nil {
			return fmt.Errorf("step %q: %w", step.Name, err)
		}
	}

	return nil
}

func validateStepConfig(step StepConfig) error {
	kinds := 0
	if step.Run != "" {
		kinds++
	}
	if step.Checkout != nil {
		kinds++
	}
	if step.Artifact != nil {
		kinds++
	}
	if kinds == 0 {
		return fmt.Errorf("one of run, checkout or artifact is required")
	}
	if kinds > 1 {
		return fmt.Errorf("run, checkout and artifact are mutually exclusive")
	}

	for _, name := range step.Secrets {
		if name == "" {
			return fmt.Errorf("empty secret name")
		}
	}

	if step.Artifact != nil {
		return validateArtifactConfig(step.Artifact)
	}
	return nil
}

func validateArtifactConfig(a *ArtifactConfig) error {
	if a.Name == "" {
		return fmt.Errorf("artifact.name is required")
	}
	if a.Path == "" {
		return fmt.Errorf("artifact.path is required")
	}
	if a.IfNoFilesFound != "" && !validZeroMatchPolicies[a.IfNoFilesFound] {
		return fmt.Errorf("artifact.if-no-files-found %q is not valid (valid: %s, %s, %s)",
			a.IfNoFilesFound, PolicyError, PolicyWarn, PolicyIgnore)
	}
	return nil
}

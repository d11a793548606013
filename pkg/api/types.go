package api

const (
	EventPush        = "push"
	EventPullRequest = "pull_request"

	// Zero-match policies for artifact publication.
	PolicyError  = "error"
	PolicyWarn   = "warn"
	PolicyIgnore = "ignore"

	DefaultZeroMatchPolicy = PolicyWarn
)

// Pipeline is the conveyor.yaml configuration format.
type Pipeline struct {
	On   map[string]TriggerRule `yaml:"on"`
	Vars map[string]string      `yaml:"vars"`
	Jobs []JobConfig            `yaml:"jobs"`

	// Set by the loader, not from YAML.
	FilePath string `yaml:"-"`
}

// TriggerRule lists the branch names a trigger kind fires on.
// Matching is exact name equality, no patterns.
type TriggerRule struct {
	Branches []string `yaml:"branches"`
}

// JobConfig defines one job: a platform label and an ordered step sequence.
type JobConfig struct {
	Name   string       `yaml:"name"`
	RunsOn string       `yaml:"runs-on"`
	Steps  []StepConfig `yaml:"steps"`
}

// StepConfig defines a single step within a job. Exactly one of
// Run, Checkout or Artifact must be set.
type StepConfig struct {
	Name     string            `yaml:"name"`
	Run      string            `yaml:"run,omitempty"`
	Checkout *CheckoutConfig   `yaml:"checkout,omitempty"`
	Artifact *ArtifactConfig   `yaml:"artifact,omitempty"`
	Env      map[string]string `yaml:"env,omitempty"`
	Secrets  []string          `yaml:"secrets,omitempty"`
}

// CheckoutConfig configures the checkout step. An empty Repository
// means "copy the local source tree" (one-shot mode).
type CheckoutConfig struct {
	Repository string `yaml:"repository,omitempty"`
	Ref        string `yaml:"ref,omitempty"`
}

// ArtifactConfig configures the artifact publication step.
type ArtifactConfig struct {
	Name           string `yaml:"name"`
	Path           string `yaml:"path"`
	IfNoFilesFound string `yaml:"if-no-files-found,omitempty"`
}

// ZeroMatchPolicy returns the configured zero-match policy, falling
// back to the lenient default when unset.
func (a *ArtifactConfig) ZeroMatchPolicy() string {
	if a.IfNoFilesFound == "" {
		return DefaultZeroMatchPolicy
	}
	return a.IfNoFilesFound
}

package api

import (
	"strings"
	"testing"
)

func validPipeline() *Pipeline {
	return &Pipeline{
		On: map[string]TriggerRule{
			EventPush: {Branches: []string{"master"}},
		},
		Jobs: []JobConfig{
			{
				Name:   "build",
				RunsOn: "linux",
				Steps: []StepConfig{
					{Name: "checkout", Checkout: &CheckoutConfig{}},
					{Name: "test", Run: "cargo test", Secrets: []string{"LITCHI_LOGIN", "LITCHI_PASSWORD"}},
					{Name: "publish", Artifact: &ArtifactConfig{Name: "bin", Path: "target/release/bin"}},
				},
			},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validPipeline().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Pipeline)
		wantErr string
	}{
		{
			name:    "no triggers",
			mutate:  func(p *Pipeline) { p.On = nil },
			wantErr: "no triggers",
		},
		{
			name: "unknown event kind",
			mutate: func(p *Pipeline) {
				p.On["deployment"] = TriggerRule{Branches: []string{"master"}}
			},
			wantErr: "unknown event kind",
		},
		{
			name: "trigger without branches",
			mutate: func(p *Pipeline) {
				p.On[EventPush] = TriggerRule{}
			},
			wantErr: "at least one branch",
		},
		{
			name: "empty branch name",
			mutate: func(p *Pipeline) {
				p.On[EventPush] = TriggerRule{Branches: []string{""}}
			},
			wantErr: "empty branch name",
		},
		{
			name:    "no jobs",
			mutate:  func(p *Pipeline) { p.Jobs = nil },
			wantErr: "no jobs",
		},
		{
			name:    "job without name",
			mutate:  func(p *Pipeline) { p.Jobs[0].Name = "" },
			wantErr: "name is required",
		},
		{
			name: "duplicate job name",
			mutate: func(p *Pipeline) {
				p.Jobs = append(p.Jobs, p.Jobs[0])
			},
			wantErr: "duplicate name",
		},
		{
			name:    "job without runs-on",
			mutate:  func(p *Pipeline) { p.Jobs[0].RunsOn = "" },
			wantErr: "runs-on is required",
		},
		{
			name:    "job without steps",
			mutate:  func(p *Pipeline) { p.Jobs[0].Steps = nil },
			wantErr: "no steps",
		},
		{
			name:    "step without name",
			mutate:  func(p *Pipeline) { p.Jobs[0].Steps[0].Name = "" },
			wantErr: "name is required",
		},
		{
			name: "duplicate step name",
			mutate: func(p *Pipeline) {
				p.Jobs[0].Steps[1].Name = "checkout"
			},
			wantErr: "duplicate step name",
		},
		{
			name: "step without action",
			mutate: func(p *Pipeline) {
				p.Jobs[0].Steps[1] = StepConfig{Name: "noop"}
			},
			wantErr: "one of run, checkout or artifact",
		},
		{
			name: "step with two actions",
			mutate: func(p *Pipeline) {
				p.Jobs[0].Steps[0].Run = "git clone"
			},
			wantErr: "mutually exclusive",
		},
		{
			name: "empty secret name",
			mutate: func(p *Pipeline) {
				p.Jobs[0].Steps[1].Secrets = []string{""}
			},
			wantErr: "empty secret name",
		},
		{
			name: "artifact without name",
			mutate: func(p *Pipeline) {
				p.Jobs[0].Steps[2].Artifact.Name = ""
			},
			wantErr: "artifact.name is required",
		},
		{
			name: "artifact without path",
			mutate: func(p *Pipeline) {
				p.Jobs[0].Steps[2].Artifact.Path = ""
			},
			wantErr: "artifact.path is required",
		},
		{
			name: "invalid zero-match policy",
			mutate: func(p *Pipeline) {
				p.Jobs[0].Steps[2].Artifact.IfNoFilesFound = "retry"
			},
			wantErr: "is not valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPipeline()
			tt.mutate(p)

			err := p.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

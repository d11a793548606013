package steps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/VolaTeQ/conveyor/pkg/api"
	"github.com/VolaTeQ/conveyor/pkg/artifact"
)

func newTestStore(t *testing.T) (*artifact.Store, string) {
	t.Helper()
	root := t.TempDir()
	store, err := artifact.NewStore(root)
	if err != nil {
		t.Fatal(err)
	}
	return store, root
}

func TestArtifactStep_PublishesOneFile(t *testing.T) {
	workspace := t.TempDir()
	if err := os.MkdirAll(filepath.Join(workspace, "target", "release"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(workspace, "target", "release", "litchi-cli"), []byte("bin"), 0o600); err != nil {
		t.Fatal(err)
	}

	store, root := newTestStore(t)
	step := NewArtifactStep("publish", &api.ArtifactConfig{
		Name:           "litchi-cli",
		Path:           "target/release/litchi-cli",
		IfNoFilesFound: api.PolicyError,
	})

	err := step.Run(context.Background(), StepContext{
		RunID:     "run-1",
		Workspace: workspace,
		Artifacts: store,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	published := filepath.Join(root, "run-1", "litchi-cli", "target", "release", "litchi-cli")
	if _, err := os.Stat(published); err != nil {
		t.Errorf("artifact not published: %v", err)
	}
}

func TestArtifactStep_ZeroMatchPolicies(t *testing.T) {
	tests := []struct {
		name    string
		policy  string
		wantErr bool
	}{
		{"error fails the step", api.PolicyError, true},
		{"warn continues", api.PolicyWarn, false},
		{"ignore continues", api.PolicyIgnore, false},
		{"default is warn", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestStore(t)
			step := NewArtifactStep("publish", &api.ArtifactConfig{
				Name:           "bin",
				Path:           "target/release/missing",
				IfNoFilesFound: tt.policy,
			})

			err := step.Run(context.Background(), StepContext{
				RunID:     "run-1",
				Workspace: t.TempDir(),
				Artifacts: store,
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, artifact.ErrNoMatches) {
				t.Errorf("expected ErrNoMatches, got %v", err)
			}
		})
	}
}

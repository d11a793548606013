package steps

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/google/shlex"

	"github.com/VolaTeQ/conveyor/pkg/secrets"
)

type commandStep struct {
	name    string
	command string
}

// NewCommandStep creates a step that runs an inline command in the
// run's workspace.
func NewCommandStep(name, command string) Step {
	return &commandStep{name: name, command: command}
}

func (s *commandStep) Name() string { return s.name }

func (s *commandStep) Run(ctx context.Context, sc StepContext) error {
	argv, err := shlex.Split(s.command)
	if err != nil {
		return fmt.Errorf("parsing command: %w", err)
	}
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}

	slog.Info("running command", "step", s.name, "command", argv[0], "args", len(argv)-1)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = sc.Workspace
	cmd.Env = stepEnviron(sc)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	// Everything the command printed goes through redaction before it
	// can reach a log or an error message.
	secretValues := secrets.Values(sc.Secrets)
	out := secrets.Redact(stdout.String(), secretValues)
	errOut := secrets.Redact(stderr.String(), secretValues)

	if out != "" {
		slog.Debug("command output", "step", s.name, "stdout", out)
	}

	if runErr != nil {
		if errOut != "" {
			return fmt.Errorf("command failed: %w\nstderr: %s", runErr, errOut)
		}
		return fmt.Errorf("command failed: %w", runErr)
	}
	return nil
}

// stepEnviron builds the step's environment: process base, then plain
// env bindings, then injected secrets.
func stepEnviron(sc StepContext) []string {
	env := os.Environ()
	for k, v := range sc.Env {
		env = append(env, k+"="+v)
	}
	for k, v := range sc.Secrets {
		env = append(env, k+"="+v)
	}
	return env
}

package engine

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/VolaTeQ/conveyor/pkg/api"
)

// interpolateStep expands pipeline vars inside a step's parameters and
// returns a copy; the pipeline definition itself stays immutable.
// Secrets are deliberately not available to templates.
func interpolateStep(cfg api.StepConfig, vars map[string]string) (api.StepConfig, error) {
	out := cfg

	var err error
	if out.Run, err = expand(cfg.Run, vars); err != nil {
		return out, fmt.Errorf("run: %w", err)
	}

	if cfg.Checkout != nil {
		checkout := *cfg.Checkout
		if checkout.Repository, err = expand(checkout.Repository, vars); err != nil {
			return out, fmt.Errorf("checkout.repository: %w", err)
		}
		if checkout.Ref, err = expand(checkout.Ref, vars); err != nil {
			return out, fmt.Errorf("checkout.ref: %w", err)
		}
		out.Checkout = &checkout
	}

	if cfg.Artifact != nil {
		art := *cfg.Artifact
		if art.Name, err = expand(art.Name, vars); err != nil {
			return out, fmt.Errorf("artifact.name: %w", err)
		}
		if art.Path, err = expand(art.Path, vars); err != nil {
			return out, fmt.Errorf("artifact.path: %w", err)
		}
		out.Artifact = &art
	}

	if len(cfg.Env) > 0 {
		env := make(map[string]string, len(cfg.Env))
		for k, v := range cfg.Env {
			if env[k], err = expand(v, vars); err != nil {
				return out, fmt.Errorf("env %s: %w", k, err)
			}
		}
		out.Env = env
	}

	return out, nil
}

func expand(s string, vars map[string]string) (string, error) {
	if s == "" || !strings.Contains(s, "{{") {
		return s, nil
	}

	tmpl, err := template.New("param").Funcs(sprig.FuncMap()).Option("missingkey=error").Parse(s)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

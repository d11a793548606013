package api

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadPipeline reads a conveyor.yaml file, sets FilePath, and validates it.
func LoadPipeline(filename string) (*Pipeline, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline file: %w", err)
	}

	p, err := ParsePipeline(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filename, err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	p.FilePath = absPath

	return p, nil
}

// ParsePipeline unmarshals and validates a pipeline definition.
func ParsePipeline(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing pipeline definition: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating pipeline: %w", err)
	}

	return &p, nil
}

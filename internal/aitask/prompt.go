// Package aitask loads an AI task's prompt.yaml and dispatches it to a
// model provider's CLI. One file builds the request, another shells
// out to the provider binary.
package aitask

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Prompt is the declarative record parsed from a task's prompt.yaml.
type Prompt struct {
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature,omitempty"`
	SystemPrompt string  `yaml:"system_prompt,omitempty"`
	Prompt       string  `yaml:"prompt"`
}

// LoadPrompt reads and parses the prompt.yaml at path.
func LoadPrompt(path string) (*Prompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt file: %w", err)
	}

	var p Prompt
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse prompt file: %w", err)
	}
	if p.Prompt == "" {
		return nil, fmt.Errorf("prompt file missing required field: prompt")
	}
	return &p, nil
}

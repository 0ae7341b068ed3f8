package aitask

import (
	"fmt"
	"strings"
)

// Known provider identifiers, named after the CLI binary each shells out to.
const (
	ProviderClaude   = "claude"
	ProviderOpenCode = "opencode"
)

// resolveProvider picks a provider from the model name declared in
// prompt.yaml (e.g. "claude-sonnet-4" or "opencode/gpt-4.1"). An empty
// or unrecognized model falls back to ProviderClaude.
func resolveProvider(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case m == "":
		return ProviderClaude
	case strings.HasPrefix(m, "opencode"):
		return ProviderOpenCode
	case strings.HasPrefix(m, "claude"):
		return ProviderClaude
	default:
		return ProviderClaude
	}
}

// binaryFor returns the CLI executable name for a provider identifier.
func binaryFor(provider string) (string, error) {
	switch provider {
	case ProviderClaude:
		return "claude", nil
	case ProviderOpenCode:
		return "opencode", nil
	default:
		return "", fmt.Errorf("unsupported provider: %s", provider)
	}
}

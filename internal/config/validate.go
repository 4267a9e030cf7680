package config

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/leapstack-labs/playersel/pkg/selector"
)

var validOutputs = []string{"auto", "text", "markdown", "json"}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Roster == "" {
		return fmt.Errorf("roster is required")
	}
	if _, err := selector.ParseEscapePolicy(c.Escape); err != nil {
		return fmt.Errorf("escape: %w", err)
	}
	if c.MaxCandidates < 0 {
		return fmt.Errorf("max_candidates must be >= 0, got %d", c.MaxCandidates)
	}
	if strings.TrimSpace(c.Console) == "" {
		return fmt.Errorf("console name is required")
	}
	if !validOutput(c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (want one of %s)", c.OutputFormat, strings.Join(validOutputs, ", "))
	}
	for alias, target := range c.Selectors.Aliases {
		if alias == "" || strings.IndexFunc(alias, unicode.IsSpace) >= 0 {
			return fmt.Errorf("selectors.aliases: invalid key %q", alias)
		}
		if target == "" {
			return fmt.Errorf("selectors.aliases.%s: target is required", alias)
		}
	}
	return nil
}

func validOutput(s string) bool {
	if s == "" {
		return true
	}
	for _, v := range validOutputs {
		if s == v {
			return true
		}
	}
	return false
}

// EscapePolicy returns the validated escape policy.
func (c *Config) EscapePolicy() selector.EscapePolicy {
	p, err := selector.ParseEscapePolicy(c.Escape)
	if err != nil {
		return selector.EscapeStrip
	}
	return p
}

// IsDisabled reports whether the built-in selector key is disabled.
func (c *Config) IsDisabled(key string) bool {
	for _, k := range c.Selectors.Disabled {
		if k == key {
			return true
		}
	}
	return false
}

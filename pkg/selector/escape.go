package selector

import (
	"fmt"
	"strings"
	"unicode"
)

// EscapePolicy controls how resolved replacements are cleaned before they
// are written into a command.
type EscapePolicy string

const (
	// EscapeStrip removes control characters and leading "@" so that a
	// resolved name can neither break the command line nor turn into a
	// selector when the dispatched command is processed again.
	EscapeStrip EscapePolicy = "strip"
	// EscapeNone inserts replacements as resolved.
	EscapeNone EscapePolicy = "none"
)

// ParseEscapePolicy parses a policy name. The empty string means EscapeStrip.
func ParseEscapePolicy(s string) (EscapePolicy, error) {
	switch EscapePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", EscapeStrip:
		return EscapeStrip, nil
	case EscapeNone:
		return EscapeNone, nil
	default:
		return "", fmt.Errorf("unknown escape policy %q (want %q or %q)", s, EscapeStrip, EscapeNone)
	}
}

// NormalizeReplacement reduces a replacement to its last whitespace
// separated word and applies the escape policy. Multi-word names therefore
// resolve to their final word; this is a best-effort heuristic.
// An empty result means the replacement names no target.
func NormalizeReplacement(s string, policy EscapePolicy) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	s = fields[len(fields)-1]

	if policy == EscapeNone {
		return s
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimLeft(s, "@")
}

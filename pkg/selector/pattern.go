package selector

import (
	"regexp"
	"sort"
	"strings"
)

// Match is one token found in a command.
type Match struct {
	Offset  int    // byte offset of "@" in the original command
	Text    string // full token text, e.g. "@p[c=1]"
	Key     string
	Args    string // bracket interior, without brackets
	HasArgs bool
}

// End returns the byte offset just past the token.
func (m Match) End() int { return m.Offset + len(m.Text) }

// BuildPattern compiles the token grammar for the given keys:
//
//	"@" KEY [ "[" ARGS "]" ]
//
// Keys are quoted and ordered longest first so that a short key never
// shadows a longer one sharing its prefix. Boundaries are checked by
// FindMatches since RE2 has no lookaround. Returns nil when keys is empty.
func BuildPattern(keys []string) *regexp.Regexp {
	if len(keys) == 0 {
		return nil
	}

	sorted := append([]string(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})

	quoted := make([]string, len(sorted))
	for i, k := range sorted {
		quoted[i] = regexp.QuoteMeta(k)
	}

	return regexp.MustCompile(`@(` + strings.Join(quoted, "|") + `)(\[([^\]]*)\])?`)
}

// FindMatches returns the boundary-delimited tokens of cmd, left to right.
func FindMatches(re *regexp.Regexp, cmd string) []Match {
	if re == nil {
		return nil
	}

	var matches []Match
	for _, loc := range re.FindAllStringSubmatchIndex(cmd, -1) {
		start, end := loc[0], loc[1]
		if !isBoundary(cmd, start-1) || !isBoundary(cmd, end) {
			continue
		}

		m := Match{
			Offset: start,
			Text:   cmd[start:end],
			Key:    cmd[loc[2]:loc[3]],
		}
		if loc[4] >= 0 {
			m.HasArgs = true
			m.Args = cmd[loc[6]:loc[7]]
		}
		matches = append(matches, m)
	}
	return matches
}

// isBoundary reports whether position i is outside cmd or holds a space.
func isBoundary(cmd string, i int) bool {
	return i < 0 || i >= len(cmd) || cmd[i] == ' '
}

// Package config loads playersel configuration.
//
// Values are layered with koanf, lowest precedence first: built-in
// defaults, the YAML config file, PLAYERSEL_* environment variables and
// finally CLI flags that were set explicitly.
package config

// Config holds all playersel configuration options.
type Config struct {
	Roster        string          `koanf:"roster"`
	Escape        string          `koanf:"escape"`
	MaxCandidates int             `koanf:"max_candidates"`
	Console       string          `koanf:"console"`
	Verbose       bool            `koanf:"verbose"`
	OutputFormat  string          `koanf:"output"`
	Audit         bool            `koanf:"audit"`
	Selectors     SelectorsConfig `koanf:"selectors"`

	// File is the config file that was read, empty when none was found.
	File string `koanf:"-"`
}

// SelectorsConfig controls which selectors are registered.
type SelectorsConfig struct {
	// Disabled lists built-in keys that are not registered.
	Disabled []string `koanf:"disabled"`
	// Aliases maps an extra key to the key of an existing selector.
	Aliases map[string]string `koanf:"aliases"`
}

// Default configuration values.
const (
	ConfigFileName    = "playersel.yaml"
	ConfigFileNameAlt = "playersel.yml"

	DefaultRoster        = ".playersel/roster.db"
	DefaultEscape        = "strip"
	DefaultMaxCandidates = 256
	DefaultConsole       = "CONSOLE"
	DefaultOutput        = "auto" // TTY=text, non-TTY=markdown

	EnvPrefix = "PLAYERSEL_"
)

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Roster:        DefaultRoster,
		Escape:        DefaultEscape,
		MaxCandidates: DefaultMaxCandidates,
		Console:       DefaultConsole,
		OutputFormat:  DefaultOutput,
		Audit:         true,
	}
}

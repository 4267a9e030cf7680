package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/leapstack-labs/playersel/internal/cli/output"
	"github.com/leapstack-labs/playersel/internal/config"
	"github.com/leapstack-labs/playersel/internal/providers"
	"github.com/leapstack-labs/playersel/internal/roster"
	"github.com/leapstack-labs/playersel/pkg/selector"
	"github.com/leapstack-labs/playersel/pkg/selector/hook"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    *roster.Store
	Registry *selector.Registry
	Engine   *selector.Engine
	Hook     *hook.Interceptor
	Echo     *EchoSink
	Renderer *output.Renderer
}

// NewCommandContext opens the roster and builds the selector engine.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc, cleanup, err := NewStoreContext(cmd)
	if err != nil {
		return nil, nil, err
	}

	ps, err := BuildProviders(cc.Cfg, cc.Store, cc.Logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cc.Registry = selector.NewRegistry(cc.Logger)
	if err := cc.Registry.RegisterMany(ps...); err != nil {
		cleanup()
		return nil, nil, err
	}

	cc.Echo = NewEchoSink(cc.Renderer)
	var sink selector.Sink = cc.Echo
	if cc.Cfg.Audit {
		sink = selector.MultiSink{cc.Echo, cc.Store.AuditSink()}
	}

	cc.Engine = selector.NewEngine(cc.Registry, sink, selector.Options{
		Logger:        cc.Logger,
		MaxCandidates: cc.Cfg.MaxCandidates,
		Escape:        cc.Cfg.EscapePolicy(),
	})
	cc.Hook = hook.New(cc.Engine, cc.Logger)
	return cc, cleanup, nil
}

// NewStoreContext creates a CommandContext with the roster store and
// renderer but no engine. Useful for commands that only manage the roster.
func NewStoreContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	store, err := openStore(cfg.Roster, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = store.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Store:    store,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}, cleanup, nil
}

func openStore(path string, logger *slog.Logger) (*roster.Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create roster directory: %w", err)
			}
		}
	}
	store, err := roster.OpenAndMigrate(path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster %s: %w", path, err)
	}
	return store, nil
}

// BuildProviders returns the standard providers minus the disabled ones,
// followed by the configured aliases.
func BuildProviders(cfg *config.Config, src providers.Source, logger *slog.Logger) ([]selector.Provider, error) {
	builtin := make(map[string]selector.Provider)
	var out []selector.Provider
	for _, p := range providers.Defaults(src, providers.Options{Logger: logger}) {
		if cfg.IsDisabled(p.Key()) {
			logger.Debug("selector disabled", "key", p.Key())
			continue
		}
		builtin[p.Key()] = p
		out = append(out, p)
	}

	aliases := make([]string, 0, len(cfg.Selectors.Aliases))
	for alias := range cfg.Selectors.Aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	for _, alias := range aliases {
		key := cfg.Selectors.Aliases[alias]
		target, ok := builtin[key]
		if !ok {
			return nil, fmt.Errorf("selectors.aliases.%s: no enabled selector @%s", alias, key)
		}
		out = append(out, selector.Alias(alias, target))
	}
	return out, nil
}

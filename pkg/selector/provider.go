package selector

import (
	"context"
)

// Invoker is whoever issued the command. The engine forwards it to
// providers and sinks untouched and only uses it to report failures.
type Invoker interface {
	Name() string
	SendMessage(msg string)
}

// Provider resolves a selector key to concrete replacement strings.
type Provider interface {
	// Name is the human readable name used in failure messages.
	Name() string
	// Key is the text following "@" in a token.
	Key() string
	// AcceptsModifiers reports whether bracketed arguments are parsed and
	// passed to Apply. When false Apply always receives empty Params.
	AcceptsModifiers() bool
	// Apply returns the ordered replacements for one candidate command.
	Apply(ctx context.Context, inv Invoker, params Params) ([]string, error)
}

// ApplyFunc is the resolution function used by NewProvider.
type ApplyFunc func(ctx context.Context, inv Invoker, params Params) ([]string, error)

type funcProvider struct {
	key       string
	name      string
	modifiers bool
	apply     ApplyFunc
}

// NewProvider builds a Provider from a function, for custom registrations.
func NewProvider(key, name string, acceptsModifiers bool, apply ApplyFunc) Provider {
	return &funcProvider{key: key, name: name, modifiers: acceptsModifiers, apply: apply}
}

func (p *funcProvider) Name() string           { return p.name }
func (p *funcProvider) Key() string            { return p.key }
func (p *funcProvider) AcceptsModifiers() bool { return p.modifiers }

func (p *funcProvider) Apply(ctx context.Context, inv Invoker, params Params) ([]string, error) {
	if p.apply == nil {
		return nil, nil
	}
	return p.apply(ctx, inv, params)
}

// Static returns a provider that always resolves to the given values.
func Static(key, name string, values ...string) Provider {
	vals := append([]string(nil), values...)
	return NewProvider(key, name, false, func(context.Context, Invoker, Params) ([]string, error) {
		return append([]string(nil), vals...), nil
	})
}

type aliasProvider struct {
	Provider
	key string
}

// Alias exposes target under another key. Name and behavior are unchanged.
func Alias(key string, target Provider) Provider {
	return &aliasProvider{Provider: target, key: key}
}

func (a *aliasProvider) Key() string { return a.key }

// Target returns the aliased provider.
func (a *aliasProvider) Target() Provider { return a.Provider }

package selector

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Registry maps selector keys to providers. It is safe for concurrent use;
// expansions work on an immutable Snapshot so registrations made while an
// expansion runs only affect later expansions.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	snapshot  *Snapshot // nil when stale
	logger    *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		providers: make(map[string]Provider),
		logger:    logger.With("component", "selector-registry"),
	}
}

// Register adds p under p.Key(). An existing provider with the same key is
// replaced.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return &InvalidKeyError{Reason: "provider is nil"}
	}
	key := p.Key()
	if err := validateKey(key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.providers[key]; ok {
		r.logger.Debug("replacing selector", "key", key, "old", old.Name(), "new", p.Name())
	} else {
		r.logger.Debug("registered selector", "key", key, "name", p.Name())
	}
	r.providers[key] = p
	r.snapshot = nil
	return nil
}

// RegisterMany registers each provider in order, stopping at the first error.
func (r *Registry) RegisterMany(ps ...Provider) error {
	for _, p := range ps {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// Replace swaps the whole provider table for ps in one step. On error the
// registry is left unchanged.
func (r *Registry) Replace(ps ...Provider) error {
	next := make(map[string]Provider, len(ps))
	for _, p := range ps {
		if p == nil {
			return &InvalidKeyError{Reason: "provider is nil"}
		}
		if err := validateKey(p.Key()); err != nil {
			return err
		}
		next[p.Key()] = p
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = next
	r.snapshot = nil
	r.logger.Debug("replaced selectors", "count", len(next))
	return nil
}

// Unregister removes key. An empty key clears the whole registry.
func (r *Registry) Unregister(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if key == "" {
		r.providers = make(map[string]Provider)
		r.snapshot = nil
		r.logger.Debug("cleared selectors")
		return nil
	}

	if _, ok := r.providers[key]; !ok {
		return &NotFoundError{Key: key}
	}
	delete(r.providers, key)
	r.snapshot = nil
	r.logger.Debug("unregistered selector", "key", key)
	return nil
}

// Lookup returns the provider registered under key.
func (r *Registry) Lookup(key string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[key]
	return p, ok
}

// Len returns the number of registered selectors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// Keys returns the registered keys (sorted).
func (r *Registry) Keys() []string {
	return r.Snapshot().Keys()
}

// Providers returns the registered providers sorted by key.
func (r *Registry) Providers() []Provider {
	snap := r.Snapshot()
	out := make([]Provider, 0, len(snap.keys))
	for _, k := range snap.keys {
		out = append(out, snap.providers[k])
	}
	return out
}

// Snapshot returns a consistent, immutable view of the registry.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	snap := r.snapshot
	r.mu.RUnlock()
	if snap != nil {
		return snap
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshot == nil {
		r.snapshot = newSnapshot(r.providers)
	}
	return r.snapshot
}

// Snapshot is a frozen copy of the registry together with the token
// pattern compiled from its keys.
type Snapshot struct {
	providers map[string]Provider
	keys      []string
	pattern   *regexp.Regexp
}

func newSnapshot(src map[string]Provider) *Snapshot {
	providers := make(map[string]Provider, len(src))
	keys := make([]string, 0, len(src))
	for k, p := range src {
		providers[k] = p
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Snapshot{
		providers: providers,
		keys:      keys,
		pattern:   BuildPattern(keys),
	}
}

// Lookup returns the provider for key as of the snapshot.
func (s *Snapshot) Lookup(key string) (Provider, bool) {
	p, ok := s.providers[key]
	return p, ok
}

// Keys returns the snapshot's keys (sorted).
func (s *Snapshot) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Match finds the tokens of cmd using the snapshot's keys.
func (s *Snapshot) Match(cmd string) []Match {
	return FindMatches(s.pattern, cmd)
}

func validateKey(key string) error {
	if key == "" {
		return &InvalidKeyError{Key: key, Reason: "key is empty"}
	}
	if strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return &InvalidKeyError{Key: key, Reason: "key contains whitespace"}
	}
	return nil
}

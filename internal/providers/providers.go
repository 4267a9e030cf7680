package providers

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/leapstack-labs/playersel/pkg/selector"
)

// Options configures the standard providers.
type Options struct {
	// Rand drives @r. Defaults to a time-seeded source.
	Rand *rand.Rand
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Defaults returns the six standard providers backed by src.
func Defaults(src Source, opts Options) []selector.Provider {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rng := opts.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	b := base{src: src, logger: logger.With("component", "providers")}

	return []selector.Provider{
		&AllPlayers{b},
		&ClosestPlayer{b},
		&RandomPlayer{base: b, rng: rng},
		&WorldPlayers{b},
		&Entities{b},
		&Self{b},
	}
}

type base struct {
	src    Source
	logger *slog.Logger
}

// players returns the online players filtered by params, each with its
// distance from the reference position.
func (b base) players(ctx context.Context, inv selector.Invoker, params selector.Params) ([]target, error) {
	ref, err := reference(ctx, b.src, inv, params)
	if err != nil {
		return nil, err
	}
	players, err := b.src.Players(ctx)
	if err != nil {
		return nil, err
	}
	return filter(playerTargets(players), ref, params)
}

// AllPlayers resolves @a to every online player, in name order.
type AllPlayers struct{ base }

// Name implements selector.Provider.
func (*AllPlayers) Name() string { return "All players" }

// Key implements selector.Provider.
func (*AllPlayers) Key() string { return "a" }

// AcceptsModifiers implements selector.Provider.
func (*AllPlayers) AcceptsModifiers() bool { return true }

// Apply implements selector.Provider.
func (p *AllPlayers) Apply(ctx context.Context, inv selector.Invoker, params selector.Params) ([]string, error) {
	ts, err := p.players(ctx, inv, params)
	if err != nil {
		return nil, err
	}
	ts, err = limit(ts, params, 0)
	if err != nil {
		return nil, err
	}
	return names(ts), nil
}

// ClosestPlayer resolves @p to the player nearest to the invoker.
type ClosestPlayer struct{ base }

// Name implements selector.Provider.
func (*ClosestPlayer) Name() string { return "Closest player" }

// Key implements selector.Provider.
func (*ClosestPlayer) Key() string { return "p" }

// AcceptsModifiers implements selector.Provider.
func (*ClosestPlayer) AcceptsModifiers() bool { return true }

// Apply implements selector.Provider.
func (p *ClosestPlayer) Apply(ctx context.Context, inv selector.Invoker, params selector.Params) ([]string, error) {
	ts, err := p.players(ctx, inv, params)
	if err != nil {
		return nil, err
	}
	sortByDistance(ts)
	ts, err = limit(ts, params, 1)
	if err != nil {
		return nil, err
	}
	return names(ts), nil
}

// RandomPlayer resolves @r to randomly chosen players.
type RandomPlayer struct {
	base
	mu  sync.Mutex
	rng *rand.Rand
}

// Name implements selector.Provider.
func (*RandomPlayer) Name() string { return "Random player" }

// Key implements selector.Provider.
func (*RandomPlayer) Key() string { return "r" }

// AcceptsModifiers implements selector.Provider.
func (*RandomPlayer) AcceptsModifiers() bool { return true }

// Apply implements selector.Provider.
func (p *RandomPlayer) Apply(ctx context.Context, inv selector.Invoker, params selector.Params) ([]string, error) {
	ts, err := p.players(ctx, inv, params)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.rng.Shuffle(len(ts), func(i, j int) { ts[i], ts[j] = ts[j], ts[i] })
	p.mu.Unlock()

	ts, err = limit(ts, params, 1)
	if err != nil {
		return nil, err
	}
	return names(ts), nil
}

// WorldPlayers resolves @w to the players in the invoker's world.
type WorldPlayers struct{ base }

// Name implements selector.Provider.
func (*WorldPlayers) Name() string { return "World players" }

// Key implements selector.Provider.
func (*WorldPlayers) Key() string { return "w" }

// AcceptsModifiers implements selector.Provider.
func (*WorldPlayers) AcceptsModifiers() bool { return true }

// Apply implements selector.Provider.
func (p *WorldPlayers) Apply(ctx context.Context, inv selector.Invoker, params selector.Params) ([]string, error) {
	ref, err := reference(ctx, p.src, inv, params)
	if err != nil {
		return nil, err
	}
	ts, err := p.players(ctx, inv, params)
	if err != nil {
		return nil, err
	}

	out := ts[:0]
	for _, t := range ts {
		if t.loc.World == ref.World {
			out = append(out, t)
		}
	}
	out, err = limit(out, params, 0)
	if err != nil {
		return nil, err
	}
	return names(out), nil
}

// Entities resolves @e to every player and entity.
type Entities struct{ base }

// Name implements selector.Provider.
func (*Entities) Name() string { return "Entities" }

// Key implements selector.Provider.
func (*Entities) Key() string { return "e" }

// AcceptsModifiers implements selector.Provider.
func (*Entities) AcceptsModifiers() bool { return true }

// Apply implements selector.Provider.
func (p *Entities) Apply(ctx context.Context, inv selector.Invoker, params selector.Params) ([]string, error) {
	ref, err := reference(ctx, p.src, inv, params)
	if err != nil {
		return nil, err
	}
	players, err := p.src.Players(ctx)
	if err != nil {
		return nil, err
	}
	entities, err := p.src.Entities(ctx)
	if err != nil {
		return nil, err
	}

	ts := playerTargets(players)
	for _, e := range entities {
		ts = append(ts, target{name: e.DisplayName(), typ: e.Type, loc: e.Location})
	}
	ts, err = filter(ts, ref, params)
	if err != nil {
		return nil, err
	}
	ts, err = limit(ts, params, 0)
	if err != nil {
		return nil, err
	}
	return names(ts), nil
}

// Self resolves @s to the invoking player. Other senders match nothing.
type Self struct{ base }

// Name implements selector.Provider.
func (*Self) Name() string { return "Self" }

// Key implements selector.Provider.
func (*Self) Key() string { return "s" }

// AcceptsModifiers implements selector.Provider.
func (*Self) AcceptsModifiers() bool { return false }

// Apply implements selector.Provider.
func (p *Self) Apply(ctx context.Context, inv selector.Invoker, _ selector.Params) ([]string, error) {
	player, err := invokerPlayer(ctx, p.src, inv)
	if err != nil {
		return nil, err
	}
	if player == nil {
		p.logger.Debug("self selector used by non-player", "invoker", nameOf(inv))
		return nil, nil
	}
	return []string{player.Name}, nil
}

func nameOf(inv selector.Invoker) string {
	if inv == nil {
		return ""
	}
	return inv.Name()
}

// Package providers implements the standard selectors on top of a roster:
// @a all players, @p closest player, @r random player, @w players in the
// invoker's world, @e entities and @s the invoker.
//
// Modifiers understood by every provider that accepts them:
//
//	c, count   maximum number of targets (negative reverses the order)
//	name       target name, "!name" excludes
//	world      world name, "!world" excludes
//	type       entity type, "!type" excludes (players have type "player")
//	x, y, z    reference position, defaults to the invoker's position
//	r, rm      maximum and minimum distance from the reference position
package providers

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/leapstack-labs/playersel/internal/roster"
	"github.com/leapstack-labs/playersel/pkg/selector"
	"golang.org/x/text/cases"
)

// PlayerType is the entity type reported for players.
const PlayerType = "player"

// Source is the world state the providers read.
type Source interface {
	Players(ctx context.Context) ([]roster.Player, error)
	Player(ctx context.Context, name string) (*roster.Player, error)
	Entities(ctx context.Context) ([]roster.Entity, error)
}

type target struct {
	name string
	typ  string
	loc  roster.Location
	dist float64
}

func playerTargets(players []roster.Player) []target {
	out := make([]target, 0, len(players))
	for _, p := range players {
		out = append(out, target{name: p.Name, typ: PlayerType, loc: p.Location})
	}
	return out
}

func names(ts []target) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.name
	}
	return out
}

// invokerPlayer returns the online player behind inv, or nil for the
// console and other non-player senders.
func invokerPlayer(ctx context.Context, src Source, inv selector.Invoker) (*roster.Player, error) {
	if inv == nil {
		return nil, nil
	}
	p, err := src.Player(ctx, inv.Name())
	if errors.Is(err, roster.ErrPlayerNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !p.Online {
		return nil, nil
	}
	return p, nil
}

// reference returns the position distances are measured from.
func reference(ctx context.Context, src Source, inv selector.Invoker, params selector.Params) (roster.Location, error) {
	ref := roster.Location{World: roster.DefaultWorld}
	p, err := invokerPlayer(ctx, src, inv)
	if err != nil {
		return ref, err
	}
	if p != nil {
		ref = p.Location
	}

	if ref.X, err = params.Float(ref.X, "x"); err != nil {
		return ref, err
	}
	if ref.Y, err = params.Float(ref.Y, "y"); err != nil {
		return ref, err
	}
	if ref.Z, err = params.Float(ref.Z, "z"); err != nil {
		return ref, err
	}
	return ref, nil
}

// matcher compares a value against a modifier that may be negated with "!".
type matcher struct {
	want   string
	negate bool
	set    bool
}

func newMatcher(params selector.Params, names ...string) matcher {
	v, ok := params.Get(names...)
	if !ok {
		return matcher{}
	}
	m := matcher{set: true}
	m.want, m.negate = strings.CutPrefix(v, "!")
	m.want = cases.Fold().String(m.want)
	return m
}

func (m matcher) match(value string) bool {
	if !m.set {
		return true
	}
	return (cases.Fold().String(value) == m.want) != m.negate
}

// filter applies the name, world, type and distance modifiers and records
// each target's distance from ref.
func filter(ts []target, ref roster.Location, params selector.Params) ([]target, error) {
	name := newMatcher(params, "name")
	world := newMatcher(params, "world")
	typ := newMatcher(params, "type")

	maxR, err := params.Float(math.Inf(1), "r")
	if err != nil {
		return nil, err
	}
	minR, err := params.Float(0, "rm")
	if err != nil {
		return nil, err
	}
	_, radius := params.Get("r", "rm")

	out := ts[:0:0]
	for _, t := range ts {
		if !name.match(t.name) || !world.match(t.loc.World) || !typ.match(t.typ) {
			continue
		}
		t.dist = ref.Distance(t.loc)
		if radius && (t.dist > maxR || t.dist < minR) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// sortByDistance orders targets nearest first, ties by name.
func sortByDistance(ts []target) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].dist != ts[j].dist {
			return ts[i].dist < ts[j].dist
		}
		return ts[i].name < ts[j].name
	})
}

// limit applies the count modifier. def is used when no count is given;
// zero means no limit. A negative count takes from the end.
func limit(ts []target, params selector.Params, def int) ([]target, error) {
	n, err := params.Int(def, "c", "count")
	if err != nil {
		return nil, err
	}
	switch {
	case n == 0 || n >= len(ts) || n <= -len(ts):
		if n < 0 {
			return reversed(ts), nil
		}
		return ts, nil
	case n > 0:
		return ts[:n], nil
	default:
		return reversed(ts[len(ts)+n:]), nil
	}
}

func reversed(ts []target) []target {
	out := make([]target, len(ts))
	for i, t := range ts {
		out[len(ts)-1-i] = t
	}
	return out
}

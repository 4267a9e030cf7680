// Package roster stores the world state consulted by the reference
// selector providers: online players, other entities and their positions.
// It also keeps an audit log of dispatched commands.
package roster

import (
	"errors"
	"math"
	"time"
)

// ErrPlayerNotFound is returned when a player lookup has no result.
var ErrPlayerNotFound = errors.New("player not found")

// DefaultWorld is used for records that do not name a world.
const DefaultWorld = "world"

// Location is a position in a world.
type Location struct {
	World string  `yaml:"world" json:"world"`
	X     float64 `yaml:"x" json:"x"`
	Y     float64 `yaml:"y" json:"y"`
	Z     float64 `yaml:"z" json:"z"`
}

// Distance returns the euclidean distance to o, or +Inf when the two
// locations are in different worlds.
func (l Location) Distance(o Location) float64 {
	if l.World != o.World {
		return math.Inf(1)
	}
	dx, dy, dz := l.X-o.X, l.Y-o.Y, l.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Player is a connected (or remembered) player.
type Player struct {
	ID       string `yaml:"id,omitempty" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Location `yaml:",inline"`
	Online   bool `yaml:"online" json:"online"`
}

// Entity is a non-player entity such as a mob or an item.
type Entity struct {
	ID       string `yaml:"id,omitempty" json:"id"`
	Type     string `yaml:"type" json:"type"`
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Location `yaml:",inline"`
}

// DisplayName is the name used as a selector replacement.
func (e Entity) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Type
}

// DispatchRecord is one command sent to the execution sink.
type DispatchRecord struct {
	ID          int64
	ExpansionID string
	Invoker     string
	Command     string
	At          time.Time
}

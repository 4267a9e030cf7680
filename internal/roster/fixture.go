package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is the YAML form of a roster:
//
//	players:
//	  - name: Steve
//	    world: world
//	    x: 0
//	    y: 64
//	    z: 0
//	  - name: Alex
//	    online: false
//	entities:
//	  - type: zombie
//	    world: world
//	    x: 10
type Fixture struct {
	Players  []Player `yaml:"players"`
	Entities []Entity `yaml:"entities"`
}

// UnmarshalYAML decodes a player, treating a missing "online" as true.
func (p *Player) UnmarshalYAML(value *yaml.Node) error {
	type plain Player
	raw := plain{Online: true}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*p = Player(raw)
	return nil
}

// DecodeFixture reads a YAML fixture. Unknown fields are rejected.
func DecodeFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("invalid roster fixture: %w", err)
	}
	return &f, nil
}

// Import writes every record of f into the store.
func (s *Store) Import(ctx context.Context, f *Fixture) error {
	for i := range f.Players {
		if err := s.UpsertPlayer(ctx, &f.Players[i]); err != nil {
			return err
		}
	}
	for i := range f.Entities {
		if err := s.UpsertEntity(ctx, &f.Entities[i]); err != nil {
			return err
		}
	}
	s.logger.Info("roster imported", "players", len(f.Players), "entities", len(f.Entities))
	return nil
}

// LoadFile imports the YAML fixture at path.
func (s *Store) LoadFile(ctx context.Context, path string) (*Fixture, error) {
	file, err := os.Open(path) //nolint:gosec // G304: path is chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open roster fixture: %w", err)
	}
	defer func() { _ = file.Close() }()

	f, err := DecodeFixture(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Import(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

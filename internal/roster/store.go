package roster

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is the SQLite backed roster.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewStore creates a roster store. Call Open before use.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger.With("component", "roster")}
}

// NewStoreWithDB wraps an existing connection. Used by tests.
func NewStoreWithDB(db *sql.DB, logger *slog.Logger) *Store {
	s := NewStore(logger)
	s.db = db
	return s
}

// Open opens the database at path. Use ":memory:" for an in-memory roster.
func (s *Store) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open roster database: %w", err)
	}
	// an in-memory database lives as long as its single connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping roster database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("roster opened", "path", path)
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs all pending schema migrations.
func (s *Store) Migrate() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// OpenAndMigrate opens path and brings its schema up to date.
func OpenAndMigrate(path string, logger *slog.Logger) (*Store, error) {
	s := NewStore(logger)
	if err := s.Open(path); err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// --- Players ---

// UpsertPlayer inserts p or updates the player with the same name.
// A missing ID is generated.
func (s *Store) UpsertPlayer(ctx context.Context, p *Player) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.World == "" {
		p.World = DefaultWorld
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (id, name, world, x, y, z, online, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			world = excluded.world,
			x = excluded.x,
			y = excluded.y,
			z = excluded.z,
			online = excluded.online,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, p.World, p.X, p.Y, p.Z, p.Online, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", p.Name, err)
	}
	return nil
}

// Players returns the online players ordered by name.
func (s *Store) Players(ctx context.Context) ([]Player, error) {
	return s.queryPlayers(ctx, `WHERE online = 1`)
}

// AllPlayers returns every known player, online or not.
func (s *Store) AllPlayers(ctx context.Context) ([]Player, error) {
	return s.queryPlayers(ctx, ``)
}

func (s *Store) queryPlayers(ctx context.Context, where string) ([]Player, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, world, x, y, z, online FROM players `+where+` ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Name, &p.World, &p.X, &p.Y, &p.Z, &p.Online); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Player returns the player with the given name (case-insensitive).
func (s *Store) Player(ctx context.Context, name string) (*Player, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var p Player
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, world, x, y, z, online FROM players WHERE name = ? COLLATE NOCASE`, name,
	).Scan(&p.ID, &p.Name, &p.World, &p.X, &p.Y, &p.Z, &p.Online)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", name, err)
	}
	return &p, nil
}

// --- Entities ---

// UpsertEntity inserts or replaces e. A missing ID is generated.
func (s *Store) UpsertEntity(ctx context.Context, e *Entity) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if strings.TrimSpace(e.Type) == "" {
		return fmt.Errorf("entity type is required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.World == "" {
		e.World = DefaultWorld
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO entities (id, type, name, world, x, y, z) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Type, e.Name, e.World, e.X, e.Y, e.Z,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert entity %s: %w", e.ID, err)
	}
	return nil
}

// Entities returns all non-player entities ordered by type and name.
func (s *Store) Entities(ctx context.Context) ([]Entity, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, name, world, x, y, z FROM entities ORDER BY type, name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entities []Entity
	for rows.Next() {
		var e Entity
		if err := rows.Scan(&e.ID, &e.Type, &e.Name, &e.World, &e.X, &e.Y, &e.Z); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// Clear removes all players and entities. The dispatch log is kept.
func (s *Store) Clear(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"players", "entities"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil { //nolint:gosec // fixed table names
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

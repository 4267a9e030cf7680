package roster

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/playersel/internal/testutil"
	"github.com/leapstack-labs/playersel/pkg/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenAndMigrate(":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_NotOpened(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	assert.Error(t, store.Migrate())
	_, err := store.Players(ctx)
	assert.Error(t, err)
	_, err = store.Entities(ctx)
	assert.Error(t, err)
	assert.Error(t, store.UpsertPlayer(ctx, &Player{Name: "Steve"}))
	assert.NoError(t, store.Close())
}

func TestStore_Migrate_Idempotent(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Migrate())
}

func TestStore_Players(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	steve := &Player{Name: "Steve", Location: Location{X: 1, Y: 64, Z: 2}, Online: true}
	require.NoError(t, store.UpsertPlayer(ctx, steve))
	assert.NotEmpty(t, steve.ID)
	assert.Equal(t, DefaultWorld, steve.World)

	require.NoError(t, store.UpsertPlayer(ctx, &Player{Name: "alex", Location: Location{World: "nether"}, Online: true}))
	require.NoError(t, store.UpsertPlayer(ctx, &Player{Name: "Notch", Online: false}))

	online, err := store.Players(ctx)
	require.NoError(t, err)
	require.Len(t, online, 2)
	assert.Equal(t, "alex", online[0].Name, "ordered case-insensitively")
	assert.Equal(t, "Steve", online[1].Name)

	all, err := store.AllPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := store.Player(ctx, "STEVE")
	require.NoError(t, err)
	assert.Equal(t, steve.ID, got.ID)
	assert.InDelta(t, 2.0, got.Z, 1e-9)

	_, err = store.Player(ctx, "nobody")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestStore_UpsertPlayerUpdates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertPlayer(ctx, &Player{Name: "Steve", Online: true}))
	require.NoError(t, store.UpsertPlayer(ctx, &Player{Name: "Steve", Location: Location{X: 42}, Online: true}))

	all, err := store.AllPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.InDelta(t, 42.0, all[0].X, 1e-9)
}

func TestStore_UpsertValidation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.UpsertPlayer(ctx, &Player{Name: "  "}))
	assert.Error(t, store.UpsertEntity(ctx, &Entity{}))
}

func TestStore_Entities(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertEntity(ctx, &Entity{Type: "zombie"}))
	require.NoError(t, store.UpsertEntity(ctx, &Entity{Type: "cow", Name: "Bessie"}))

	entities, err := store.Entities(ctx)
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "Bessie", entities[0].DisplayName())
	assert.Equal(t, "zombie", entities[1].DisplayName())

	require.NoError(t, store.Clear(ctx))
	entities, err = store.Entities(ctx)
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestStore_LoadFile(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	f, err := store.LoadFile(ctx, "testdata/roster.yaml")
	require.NoError(t, err)
	assert.Len(t, f.Players, 4)
	assert.Len(t, f.Entities, 2)

	online, err := store.Players(ctx)
	require.NoError(t, err)
	assert.Len(t, online, 3, "Notch is offline")

	herobrine, err := store.Player(ctx, "herobrine")
	require.NoError(t, err)
	assert.Equal(t, "nether", herobrine.World)

	_, err = store.LoadFile(ctx, "testdata/missing.yaml")
	assert.Error(t, err)
}

func TestDecodeFixture(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		players int
		wantErr bool
	}{
		{name: "empty document", input: "", players: 0},
		{name: "one player", input: "players:\n  - name: Steve\n", players: 1},
		{name: "unknown field", input: "mobs: []\n", wantErr: true},
		{name: "bad yaml", input: "players: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := DecodeFixture(stringsReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, f.Players, tt.players)
			for _, p := range f.Players {
				assert.True(t, p.Online, "players default to online")
			}
		})
	}
}

func TestLocation_Distance(t *testing.T) {
	a := Location{World: "world", X: 0, Y: 0, Z: 0}
	b := Location{World: "world", X: 3, Y: 4, Z: 0}
	c := Location{World: "nether"}

	assert.InDelta(t, 5.0, a.Distance(b), 1e-9)
	assert.True(t, math.IsInf(a.Distance(c), 1))
}

func TestStore_AuditSink(t *testing.T) {
	store := setupTestStore(t)
	ctx := selector.WithExpansionID(context.Background(), "exp-1")

	sink := store.AuditSink()
	require.NoError(t, sink.Dispatch(ctx, namedInvoker("Steve"), "tp Steve Alex"))
	require.NoError(t, sink.Dispatch(ctx, namedInvoker("Steve"), "tp Steve Sam"))
	require.NoError(t, sink.Dispatch(context.Background(), nil, "say hi"))

	history, err := store.History(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "say hi", history[0].Command, "newest first")
	assert.Equal(t, "", history[0].Invoker)
	assert.Equal(t, "exp-1", history[1].ExpansionID)
	assert.Equal(t, "Steve", history[1].Invoker)
	assert.False(t, history[2].At.IsZero())

	limited, err := store.History(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStore_QueryFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := NewStoreWithDB(db, testutil.NewTestLogger(t))
	boom := errors.New("disk I/O error")

	mock.ExpectQuery("SELECT id, name, world").WillReturnError(boom)
	_, err = store.Players(context.Background())
	assert.ErrorIs(t, err, boom)

	mock.ExpectQuery("SELECT id, type, name").WillReturnError(boom)
	_, err = store.Entities(context.Background())
	assert.ErrorIs(t, err, boom)

	mock.ExpectExec("INSERT INTO dispatch_log").WillReturnError(boom)
	err = store.RecordDispatch(context.Background(), &DispatchRecord{Command: "say hi"})
	assert.ErrorIs(t, err, boom)

	mock.ExpectQuery("SELECT id, name, world").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "world", "x", "y", "z", "online"}).
			AddRow("1", "Steve", "world", "not-a-number", 0, 0, true))
	_, err = store.Players(context.Background())
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

type namedInvoker string

func (n namedInvoker) Name() string       { return string(n) }
func (n namedInvoker) SendMessage(string) {}

func stringsReader(s string) *strings.Reader { return strings.NewReader(s) }

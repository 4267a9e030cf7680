package selector

import (
	"context"
	"errors"
	"testing"

	"github.com/leapstack-labs/playersel/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, sink Sink, opts Options, providers ...Provider) *Engine {
	t.Helper()
	reg := NewRegistry(testutil.NewTestLogger(t))
	require.NoError(t, reg.RegisterMany(providers...))
	if opts.Logger == nil {
		opts.Logger = testutil.NewTestLogger(t)
	}
	return NewEngine(reg, sink, opts)
}

func TestEngine_Execute_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		command      string
		providers    []Provider
		wantHandled  bool
		wantCommands []string
		wantMessages int
	}{
		{
			name:        "no tokens",
			command:     "/help",
			providers:   []Provider{Static("a", "All", "X")},
			wantHandled: false,
		},
		{
			name:    "self and closest",
			command: "/tp @s @p[amount=1]",
			providers: []Provider{
				Static("s", "Self", "Steve"),
				NewProvider("p", "Closest", true, func(context.Context, Invoker, Params) ([]string, error) {
					return []string{"Alex"}, nil
				}),
			},
			wantHandled:  true,
			wantCommands: []string{"/tp Steve Alex"},
		},
		{
			name:    "cartesian",
			command: "/tp @a @b",
			providers: []Provider{
				Static("a", "A", "X", "Y"),
				Static("b", "B", "Z"),
			},
			wantHandled:  true,
			wantCommands: []string{"/tp X Z", "/tp Y Z"},
		},
		{
			name:    "cartesian order outer candidates inner replacements",
			command: "say @a @b",
			providers: []Provider{
				Static("a", "A", "1", "2"),
				Static("b", "B", "x", "y"),
			},
			wantHandled:  true,
			wantCommands: []string{"say 1 x", "say 1 y", "say 2 x", "say 2 y"},
		},
		{
			name:         "empty resolution aborts",
			command:      "/kill @e",
			providers:    []Provider{Static("e", "Entities")},
			wantHandled:  true,
			wantMessages: 1,
		},
		{
			name:    "empty resolution on later token aborts everything",
			command: "/tp @a @e",
			providers: []Provider{
				Static("a", "All", "X", "Y"),
				Static("e", "Entities"),
			},
			wantHandled:  true,
			wantMessages: 1,
		},
		{
			name:        "embedded token is literal",
			command:     "/msg user@a hello",
			providers:   []Provider{Static("a", "All", "X")},
			wantHandled: false,
		},
		{
			name:         "same token twice",
			command:      "/tp @a @a",
			providers:    []Provider{Static("a", "All", "X", "Y")},
			wantHandled:  true,
			wantCommands: []string{"/tp X X", "/tp X Y", "/tp Y X", "/tp Y Y"},
		},
		{
			name:         "multi word name keeps last word",
			command:      "/kick @a",
			providers:    []Provider{Static("a", "All", "Steve Jobs")},
			wantHandled:  true,
			wantCommands: []string{"/kick Jobs"},
		},
		{
			name:         "token with longer replacement keeps later offsets",
			command:      "@a gives @b",
			providers:    []Provider{Static("a", "A", "Maximilian"), Static("b", "B", "Bo")},
			wantHandled:  true,
			wantCommands: []string{"Maximilian gives Bo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			eng := newTestEngine(t, sink, Options{}, tt.providers...)
			inv := newInvoker("Steve")

			handled := eng.Execute(context.Background(), tt.command, inv)

			assert.Equal(t, tt.wantHandled, handled)
			assert.Equal(t, tt.wantCommands, sink.commands)
			assert.Len(t, inv.Messages(), tt.wantMessages)
		})
	}
}

func TestEngine_EmptyResolutionMessage(t *testing.T) {
	sink := &recordingSink{}
	eng := newTestEngine(t, sink, Options{}, Static("e", "Entities"))
	inv := newInvoker("console")

	assert.True(t, eng.Execute(context.Background(), "/kill @e[type=zombie]", inv))
	require.Len(t, inv.Messages(), 1)
	assert.Equal(t, "Your selector @e[type=zombie] (Entities) did not match any player/entity.", inv.Messages()[0])
	assert.Empty(t, sink.commands)
}

func TestEngine_EmptyResolutionForOneCandidate(t *testing.T) {
	calls := 0
	flaky := NewProvider("b", "Flaky", false, func(context.Context, Invoker, Params) ([]string, error) {
		calls++
		if calls == 2 {
			return nil, nil
		}
		return []string{"Z"}, nil
	})
	sink := &recordingSink{}
	eng := newTestEngine(t, sink, Options{}, Static("a", "A", "X", "Y"), flaky)
	inv := newInvoker("console")

	assert.True(t, eng.Execute(context.Background(), "/tp @a @b", inv))
	assert.Empty(t, sink.commands, "no partial results are dispatched")
	assert.Len(t, inv.Messages(), 1)
}

func TestEngine_Modifiers(t *testing.T) {
	withMods := &paramsProvider{key: "p", modifiers: true, values: []string{"Alex"}}
	without := &paramsProvider{key: "s", modifiers: false, values: []string{"Steve"}}
	sink := &recordingSink{}
	eng := newTestEngine(t, sink, Options{}, withMods, without)

	ok := eng.Execute(context.Background(), "/tp @s[c=9] @p[count=5,type=creature]", newInvoker("Steve"))
	require.True(t, ok)

	require.Len(t, withMods.calls, 1)
	assert.Equal(t, Params{"count": "5", "type": "creature"}, withMods.calls[0])
	require.Len(t, without.calls, 1)
	assert.Equal(t, Params{}, without.calls[0])
	assert.Equal(t, []string{"/tp Steve Alex"}, sink.commands)
}

func TestEngine_ProviderCalledOncePerCandidate(t *testing.T) {
	b := &paramsProvider{key: "b", values: []string{"Z"}}
	sink := &recordingSink{}
	eng := newTestEngine(t, sink, Options{}, Static("a", "A", "X", "Y", "W"), b)

	require.True(t, eng.Execute(context.Background(), "/tp @a @b", newInvoker("console")))
	assert.Len(t, b.calls, 3)
}

func TestEngine_MalformedArguments(t *testing.T) {
	p := &paramsProvider{key: "p", modifiers: true, values: []string{"Alex"}}
	sink := &recordingSink{}
	eng := newTestEngine(t, sink, Options{}, p)
	inv := newInvoker("console")

	assert.True(t, eng.Execute(context.Background(), "/tp @p[count]", inv))
	assert.Empty(t, sink.commands)
	assert.Empty(t, p.calls)
	require.Len(t, inv.Messages(), 1)
	assert.Contains(t, inv.Messages()[0], "@p[count]")

	_, err := eng.Expand(context.Background(), "/tp @p[count]", inv)
	assert.ErrorIs(t, err, ErrMalformedArguments)
}

func TestEngine_MalformedArgumentsIgnoredWithoutModifiers(t *testing.T) {
	sink := &recordingSink{}
	eng := newTestEngine(t, sink, Options{}, Static("s", "Self", "Steve"))

	assert.True(t, eng.Execute(context.Background(), "/tp @s[oops]", newInvoker("Steve")))
	assert.Equal(t, []string{"/tp Steve"}, sink.commands)
}

func TestEngine_ProviderError(t *testing.T) {
	boom := errors.New("world unavailable")
	p := NewProvider("a", "All", false, func(context.Context, Invoker, Params) ([]string, error) {
		return nil, boom
	})
	sink := &recordingSink{}
	eng := newTestEngine(t, sink, Options{}, p)
	inv := newInvoker("console")

	assert.True(t, eng.Execute(context.Background(), "/kill @a", inv))
	assert.Empty(t, sink.commands)
	require.Len(t, inv.Messages(), 1)
	assert.Contains(t, inv.Messages()[0], "world unavailable")

	_, err := eng.Expand(context.Background(), "/kill @a", inv)
	assert.ErrorIs(t, err, boom)
}

func TestEngine_CandidateLimit(t *testing.T) {
	sink := &recordingSink{}
	eng := newTestEngine(t, sink, Options{MaxCandidates: 3},
		Static("a", "A", "1", "2"), Static("b", "B", "x", "y"))
	inv := newInvoker("console")

	assert.True(t, eng.Execute(context.Background(), "/tp @a @b", inv))
	assert.Empty(t, sink.commands)
	require.Len(t, inv.Messages(), 1)

	_, err := eng.Expand(context.Background(), "/tp @a @b", inv)
	assert.ErrorIs(t, err, ErrCandidateLimit)

	unlimited := newTestEngine(t, sink, Options{}, Static("a", "A", "1", "2"), Static("b", "B", "x", "y"))
	x, err := unlimited.Expand(context.Background(), "/tp @a @b", inv)
	require.NoError(t, err)
	assert.Len(t, x.Commands, 4)
}

func TestEngine_EscapePolicy(t *testing.T) {
	hostile := Static("a", "All", "@e", "Bad\x00Name", "\u001b[31mRed")

	strip := newTestEngine(t, nil, Options{Escape: EscapeStrip}, hostile)
	x, err := strip.Expand(context.Background(), "/kick @a", newInvoker("console"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/kick e", "/kick BadName", "/kick [31mRed"}, x.Commands)

	none := newTestEngine(t, nil, Options{Escape: EscapeNone}, hostile)
	x, err = none.Expand(context.Background(), "/kick @a", newInvoker("console"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/kick @e", "/kick Bad\x00Name", "/kick \u001b[31mRed"}, x.Commands)
}

func TestEngine_ReplacementNotRescanned(t *testing.T) {
	sink := &recordingSink{}
	eng := newTestEngine(t, sink, Options{Escape: EscapeNone},
		Static("a", "All", "@b"), Static("b", "B", "never"))

	require.True(t, eng.Execute(context.Background(), "/say @a", newInvoker("console")))
	assert.Equal(t, []string{"/say @b"}, sink.commands)
}

func TestEngine_BlankReplacementCountsAsNoTarget(t *testing.T) {
	eng := newTestEngine(t, nil, Options{}, Static("a", "All", "   ", "@"))
	_, err := eng.Expand(context.Background(), "/kick @a", newInvoker("console"))
	assert.ErrorIs(t, err, ErrEmptyResolution)
}

func TestEngine_SinkFailuresDoNotStopDispatch(t *testing.T) {
	sink := &recordingSink{fail: map[string]bool{"/tp X": true}}
	eng := newTestEngine(t, sink, Options{}, Static("a", "All", "X", "Y"))
	inv := newInvoker("console")

	assert.True(t, eng.Execute(context.Background(), "/tp @a", inv))
	assert.Equal(t, []string{"/tp Y"}, sink.commands)
	assert.Empty(t, inv.Messages(), "sink failures are not reported by the engine")
}

func TestEngine_ExpansionIDReachesSink(t *testing.T) {
	sink := &recordingSink{}
	eng := newTestEngine(t, sink, Options{}, Static("a", "All", "X", "Y"))

	require.True(t, eng.Execute(context.Background(), "/tp @a", newInvoker("console")))
	require.Len(t, sink.ids, 2)
	assert.NotEmpty(t, sink.ids[0])
	assert.Equal(t, sink.ids[0], sink.ids[1])
}

func TestEngine_NilSink(t *testing.T) {
	eng := newTestEngine(t, nil, Options{}, Static("a", "All", "X"))
	assert.True(t, eng.Execute(context.Background(), "/tp @a", newInvoker("console")))
}

func TestEngine_UsesRegistryChanges(t *testing.T) {
	sink := &recordingSink{}
	eng := newTestEngine(t, sink, Options{}, Static("a", "All", "X"))

	assert.False(t, eng.Execute(context.Background(), "/tp @z", newInvoker("console")))

	require.NoError(t, eng.Registry().Register(Static("z", "Zed", "Q")))
	assert.True(t, eng.Execute(context.Background(), "/tp @z", newInvoker("console")))
	assert.Equal(t, []string{"/tp Q"}, sink.commands)
}

func TestEngine_CustomFormatter(t *testing.T) {
	eng := newTestEngine(t, nil, Options{Formatter: func(err error) string { return "nope: " + err.Error() }},
		Static("e", "Entities"))
	inv := newInvoker("console")

	eng.Execute(context.Background(), "/kill @e", inv)
	require.Len(t, inv.Messages(), 1)
	assert.Contains(t, inv.Messages()[0], "nope: ")
}

func TestCandidate_Substitute(t *testing.T) {
	m := Match{Offset: 4, Text: "@a"}
	c := candidate{text: "/tp @a"}.substitute(m, "Steve")
	assert.Equal(t, "/tp Steve", c.text)
	assert.Equal(t, 3, c.shift)

	// glued neighbours get a separating space
	glued := candidate{text: "/tp@a!"}.substitute(Match{Offset: 3, Text: "@a"}, "X")
	assert.Equal(t, "/tp X !", glued.text)
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&EmptyResolutionError{Token: "@e", Provider: "Entities"}, "Your selector @e (Entities) did not match any player/entity."},
		{&MalformedArgumentsError{Token: "@p[c]", Segment: "c"}, `Invalid selector arguments in @p[c]: "c" is not name=value.`},
		{&CandidateLimitError{Token: "@a", Limit: 2, Count: 3}, "Your selector @a expands to too many commands (limit 2)."},
		{errors.New("other"), "Selector error: other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatError(tt.err))
	}
}

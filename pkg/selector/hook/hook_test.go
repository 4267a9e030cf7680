package hook

import (
	"context"
	"testing"

	"github.com/leapstack-labs/playersel/internal/testutil"
	"github.com/leapstack-labs/playersel/pkg/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invoker struct {
	messages []string
}

func (i *invoker) Name() string           { return "Steve" }
func (i *invoker) SendMessage(msg string) { i.messages = append(i.messages, msg) }

// loopbackHost dispatches expanded commands back through the console hook,
// like a server firing its command event for every dispatched command.
type loopbackHost struct {
	hook      *Interceptor
	executed  []string
	cancelled []bool
}

func (h *loopbackHost) Dispatch(ctx context.Context, inv selector.Invoker, command string) error {
	h.cancelled = append(h.cancelled, h.hook.OnConsoleCommand(ctx, command, inv))
	h.executed = append(h.executed, command)
	return nil
}

func setup(t *testing.T) (*Interceptor, *loopbackHost) {
	t.Helper()
	logger := testutil.NewTestLogger(t)

	reg := selector.NewRegistry(logger)
	require.NoError(t, reg.RegisterMany(
		selector.Static("a", "All", "Alex", "Sam"),
		selector.Static("e", "Entities"),
	))

	host := &loopbackHost{}
	eng := selector.NewEngine(reg, host, selector.Options{Logger: logger, Escape: selector.EscapeNone})
	host.hook = New(eng, logger)
	return host.hook, host
}

func TestOnPlayerCommand(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		wantCancel bool
		wantExec   []string
	}{
		{name: "chat message", message: "hello @a", wantCancel: false},
		{name: "command without selectors", message: "/help", wantCancel: false},
		{name: "command with selector", message: "/tp @a", wantCancel: true, wantExec: []string{"tp Alex", "tp Sam"}},
		{name: "slash in middle", message: "hi /tp @a", wantCancel: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, host := setup(t)
			inv := &invoker{}

			assert.Equal(t, tt.wantCancel, h.OnPlayerCommand(context.Background(), tt.message, inv))
			assert.Equal(t, tt.wantExec, host.executed)
		})
	}
}

func TestOnConsoleCommand(t *testing.T) {
	h, host := setup(t)
	inv := &invoker{}

	assert.True(t, h.OnConsoleCommand(context.Background(), "kill @e", inv))
	assert.Empty(t, host.executed)
	assert.Len(t, inv.messages, 1)

	assert.False(t, h.OnConsoleCommand(context.Background(), "list", inv))
}

func TestDispatchedCommandsAreNotExpandedAgain(t *testing.T) {
	reg := selector.NewRegistry(nil)
	// the replacement is itself a selector token
	require.NoError(t, reg.RegisterMany(
		selector.Static("a", "All", "@b"),
		selector.Static("b", "B", "never"),
	))
	host := &loopbackHost{}
	eng := selector.NewEngine(reg, host, selector.Options{Escape: selector.EscapeNone})
	host.hook = New(eng, nil)

	assert.True(t, host.hook.OnConsoleCommand(context.Background(), "say @a", &invoker{}))
	assert.Equal(t, []string{"say @b"}, host.executed)
	assert.Equal(t, []bool{false}, host.cancelled, "the dispatched command passes through untouched")
}

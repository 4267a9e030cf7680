// Package hook connects a selector engine to host command events.
//
// Hosts deliver two kinds of command: chat messages typed by players, which
// start with "/", and console commands, which do not. Both are run through
// the engine; when it reports the command as handled the host must cancel
// its own processing of the original command.
package hook

import (
	"context"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/playersel/pkg/selector"
)

// Executor is the part of selector.Engine used by the interceptor.
type Executor interface {
	Execute(ctx context.Context, raw string, inv selector.Invoker) bool
}

// Interceptor routes host command events into an Executor.
type Interceptor struct {
	exec   Executor
	logger *slog.Logger
}

// New creates an interceptor. A nil logger discards output.
func New(exec Executor, logger *slog.Logger) *Interceptor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Interceptor{exec: exec, logger: logger.With("component", "selector-hook")}
}

// OnPlayerCommand handles a chat message sent by a player. Only messages
// starting with "/" are commands; the slash is removed before expansion.
// It returns true when the original message must be cancelled.
func (i *Interceptor) OnPlayerCommand(ctx context.Context, message string, inv selector.Invoker) bool {
	cmd, ok := strings.CutPrefix(message, "/")
	if !ok {
		return false
	}
	return i.handle(ctx, cmd, inv)
}

// OnConsoleCommand handles a command entered on the console or issued by
// another non-player sender. It returns true when the command must be
// cancelled.
func (i *Interceptor) OnConsoleCommand(ctx context.Context, command string, inv selector.Invoker) bool {
	return i.handle(ctx, command, inv)
}

func (i *Interceptor) handle(ctx context.Context, cmd string, inv selector.Invoker) bool {
	// Commands produced by an expansion come back through the host's
	// command event. They were already expanded.
	if selector.IsDispatching(ctx) {
		i.logger.Debug("skipping dispatched command", "command", cmd)
		return false
	}
	return i.exec.Execute(ctx, cmd, inv)
}

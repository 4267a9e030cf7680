package selector

import (
	"context"
	"errors"
	"log/slog"
)

// Sink executes one fully expanded command.
type Sink interface {
	Dispatch(ctx context.Context, inv Invoker, command string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, inv Invoker, command string) error

// Dispatch calls f.
func (f SinkFunc) Dispatch(ctx context.Context, inv Invoker, command string) error {
	return f(ctx, inv, command)
}

// MultiSink dispatches every command to each sink in order.
type MultiSink []Sink

// Dispatch sends command to all sinks and joins their errors.
func (m MultiSink) Dispatch(ctx context.Context, inv Invoker, command string) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Dispatch(ctx, inv, command); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispatch sends commands to sink one by one, in order. Sink failures are
// logged and do not stop the remaining commands; they are the sink's
// responsibility to report.
func Dispatch(ctx context.Context, sink Sink, inv Invoker, commands []string, logger *slog.Logger) int {
	if sink == nil {
		return 0
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx = markDispatching(ctx)
	sent := 0
	for i, cmd := range commands {
		if err := sink.Dispatch(ctx, inv, cmd); err != nil {
			logger.Warn("dispatch failed", "index", i, "command", cmd, "error", err)
			continue
		}
		sent++
	}
	return sent
}

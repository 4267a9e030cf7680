package selector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Options configures an Engine.
type Options struct {
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
	// MaxCandidates caps the number of commands one expansion may produce.
	// Zero or negative means unlimited.
	MaxCandidates int
	// Escape is applied to every replacement. Empty means EscapeStrip.
	Escape EscapePolicy
	// Formatter renders an aborted expansion into the single message sent
	// to the invoker. Defaults to FormatError.
	Formatter func(error) string
}

// Engine expands selector tokens and dispatches the resulting commands.
type Engine struct {
	registry  *Registry
	sink      Sink
	logger    *slog.Logger
	maxCands  int
	escape    EscapePolicy
	formatter func(error) string
}

// NewEngine creates an engine resolving tokens through reg and sending
// expanded commands to sink.
func NewEngine(reg *Registry, sink Sink, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	escape := opts.Escape
	if escape == "" {
		escape = EscapeStrip
	}
	formatter := opts.Formatter
	if formatter == nil {
		formatter = FormatError
	}
	return &Engine{
		registry:  reg,
		sink:      sink,
		logger:    logger.With("component", "selector-engine"),
		maxCands:  opts.MaxCandidates,
		escape:    escape,
		formatter: formatter,
	}
}

// Registry returns the registry the engine resolves against.
func (e *Engine) Registry() *Registry { return e.registry }

// Expansion is the outcome of expanding one command.
type Expansion struct {
	ID       string
	Command  string
	Matches  []Match
	Commands []string // in dispatch order; empty when aborted
}

// Intercepted reports whether the command contained any selector token.
func (x *Expansion) Intercepted() bool { return len(x.Matches) > 0 }

// candidate is a command under construction. shift is how far text has
// moved relative to the original command at the current token.
type candidate struct {
	text  string
	shift int
}

func (c candidate) substitute(m Match, repl string) candidate {
	start := m.Offset + c.shift
	end := start + len(m.Text)

	var b strings.Builder
	b.Grow(len(c.text) - len(m.Text) + len(repl) + 2)
	b.WriteString(c.text[:start])
	if !isBoundary(c.text, start-1) {
		b.WriteByte(' ')
	}
	b.WriteString(repl)
	if !isBoundary(c.text, end) {
		b.WriteByte(' ')
	}
	b.WriteString(c.text[end:])

	out := b.String()
	return candidate{text: out, shift: c.shift + len(out) - len(c.text)}
}

// Expand resolves every token of raw without dispatching anything.
// The returned Expansion is never nil. On error its Commands are empty.
func (e *Engine) Expand(ctx context.Context, raw string, inv Invoker) (*Expansion, error) {
	snap := e.registry.Snapshot()
	x := &Expansion{
		ID:      uuid.NewString(),
		Command: raw,
		Matches: snap.Match(raw),
	}
	if len(x.Matches) == 0 {
		return x, nil
	}

	cands := []candidate{{text: raw}}
	for _, m := range x.Matches {
		p, ok := snap.Lookup(m.Key)
		if !ok {
			continue
		}

		params := Params{}
		if p.AcceptsModifiers() && m.HasArgs {
			parsed, err := ParseArgs(m.Args)
			if err != nil {
				var malformed *MalformedArgumentsError
				if errors.As(err, &malformed) {
					malformed.Token = m.Text
				}
				return x, err
			}
			params = parsed
		}

		next := make([]candidate, 0, len(cands))
		for _, c := range cands {
			resolved, err := p.Apply(ctx, inv, params)
			if err != nil {
				return x, &ProviderError{Token: m.Text, Provider: p.Name(), Cause: err}
			}

			added := 0
			for _, r := range resolved {
				r = NormalizeReplacement(r, e.escape)
				if r == "" {
					continue
				}
				next = append(next, c.substitute(m, r))
				added++
				if e.maxCands > 0 && len(next) > e.maxCands {
					return x, &CandidateLimitError{Token: m.Text, Limit: e.maxCands, Count: len(next)}
				}
			}
			if added == 0 {
				return x, &EmptyResolutionError{Token: m.Text, Provider: p.Name()}
			}
		}
		cands = next

		e.logger.Debug("resolved selector",
			"id", x.ID, "token", m.Text, "provider", p.Name(), "candidates", len(cands))
	}

	x.Commands = make([]string, len(cands))
	for i, c := range cands {
		x.Commands[i] = c.text
	}
	return x, nil
}

// Execute expands raw and dispatches the resulting commands in order.
//
// It returns false when raw contains no selector token; the caller should
// then process the command normally. Otherwise it returns true: either the
// expanded commands were dispatched, or the expansion was abandoned and
// exactly one message was sent to inv.
func (e *Engine) Execute(ctx context.Context, raw string, inv Invoker) bool {
	x, err := e.Expand(ctx, raw, inv)
	if err != nil {
		e.logger.Info("selector expansion aborted", "id", x.ID, "command", raw, "error", err)
		if inv != nil {
			inv.SendMessage(e.formatter(err))
		}
		return true
	}
	if !x.Intercepted() {
		return false
	}

	sent := Dispatch(WithExpansionID(ctx, x.ID), e.sink, inv, x.Commands, e.logger)
	e.logger.Debug("selector expansion dispatched",
		"id", x.ID, "command", raw, "commands", len(x.Commands), "sent", sent)
	return true
}

// FormatError renders an expansion failure as a user-facing message.
func FormatError(err error) string {
	var (
		empty     *EmptyResolutionError
		malformed *MalformedArgumentsError
		provider  *ProviderError
		limit     *CandidateLimitError
	)
	switch {
	case errors.As(err, &empty):
		return fmt.Sprintf("Your selector %s (%s) did not match any player/entity.", empty.Token, empty.Provider)
	case errors.As(err, &malformed):
		return fmt.Sprintf("Invalid selector arguments in %s: %q is not name=value.", malformed.Token, malformed.Segment)
	case errors.As(err, &provider):
		return fmt.Sprintf("Your selector %s (%s) could not be resolved: %v.", provider.Token, provider.Provider, provider.Cause)
	case errors.As(err, &limit):
		return fmt.Sprintf("Your selector %s expands to too many commands (limit %d).", limit.Token, limit.Limit)
	default:
		return "Selector error: " + err.Error()
	}
}

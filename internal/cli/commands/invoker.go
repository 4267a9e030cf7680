package commands

import (
	"context"
	"sync"

	"github.com/leapstack-labs/playersel/internal/cli/output"
	"github.com/leapstack-labs/playersel/pkg/selector"
)

// cliInvoker is the sender of commands typed on the command line. Messages
// go to the error output and are kept for JSON results.
type cliInvoker struct {
	name string
	r    *output.Renderer

	mu       sync.Mutex
	messages []string
}

func newInvoker(name string, r *output.Renderer) *cliInvoker {
	return &cliInvoker{name: name, r: r}
}

func (i *cliInvoker) Name() string { return i.name }

func (i *cliInvoker) SendMessage(msg string) {
	i.mu.Lock()
	i.messages = append(i.messages, msg)
	i.mu.Unlock()
	if i.r.EffectiveMode() != output.ModeJSON {
		i.r.Warn(msg)
	}
}

// Messages returns and clears the messages received so far.
func (i *cliInvoker) Messages() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.messages
	i.messages = nil
	return out
}

// EchoSink stands in for the host's command executor: it prints every
// dispatched command and remembers it.
type EchoSink struct {
	r *output.Renderer

	mu   sync.Mutex
	sent []string
}

// NewEchoSink creates an echo sink writing to r.
func NewEchoSink(r *output.Renderer) *EchoSink {
	return &EchoSink{r: r}
}

// Dispatch implements selector.Sink.
func (s *EchoSink) Dispatch(_ context.Context, _ selector.Invoker, command string) error {
	s.mu.Lock()
	s.sent = append(s.sent, command)
	s.mu.Unlock()

	switch s.r.EffectiveMode() {
	case output.ModeJSON:
	case output.ModeMarkdown:
		s.r.Printf("- `%s`\n", command)
	default:
		s.r.Println(s.r.Styles().Command.Render("> " + command))
	}
	return nil
}

// Sent returns and clears the commands dispatched so far.
func (s *EchoSink) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sent
	s.sent = nil
	return out
}

package selector

import (
	"context"
	"errors"
	"sync"
)

type fakeInvoker struct {
	name     string
	mu       sync.Mutex
	messages []string
}

func newInvoker(name string) *fakeInvoker { return &fakeInvoker{name: name} }

func (f *fakeInvoker) Name() string { return f.name }

func (f *fakeInvoker) SendMessage(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
}

func (f *fakeInvoker) Messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

type recordingSink struct {
	commands []string
	ids      []string
	fail     map[string]bool
}

func (s *recordingSink) Dispatch(ctx context.Context, _ Invoker, command string) error {
	s.ids = append(s.ids, ExpansionID(ctx))
	if s.fail[command] {
		return errors.New("sink rejected " + command)
	}
	s.commands = append(s.commands, command)
	return nil
}

// paramsProvider records the params of every Apply call.
type paramsProvider struct {
	key       string
	modifiers bool
	values    []string
	calls     []Params
}

func (p *paramsProvider) Name() string           { return "Params(" + p.key + ")" }
func (p *paramsProvider) Key() string            { return p.key }
func (p *paramsProvider) AcceptsModifiers() bool { return p.modifiers }

func (p *paramsProvider) Apply(_ context.Context, _ Invoker, params Params) ([]string, error) {
	p.calls = append(p.calls, params)
	return p.values, nil
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/playersel/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const replPrompt = "playersel> "

// ReplOptions holds options for the repl command.
type ReplOptions struct {
	As    string
	Watch bool
}

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	opts := &ReplOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive shell for expanding commands",
		Long: `Start an interactive shell. Every line is expanded and dispatched like
"playersel expand". Lines starting with "." are shell commands; type .help
for the list.

With --watch the config file is watched and the selector table is rebuilt
whenever it changes, without leaving the shell.`,
		Example: `  # Start the shell as Steve
  playersel repl --as Steve

  # Pick up alias and disabled-selector changes from playersel.yaml
  playersel repl --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "Name of the invoking player (default: the console)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Reload selectors when the config file changes")

	return cmd
}

// replSession is the state of one interactive shell.
type replSession struct {
	cc  *CommandContext
	cmd *cobra.Command

	mu     sync.Mutex
	inv    *cliInvoker
	dryRun bool
}

func newReplSession(cmd *cobra.Command, cc *CommandContext, as string) *replSession {
	return &replSession{
		cc:  cc,
		cmd: cmd,
		inv: newInvoker(invokerName(cc, as), cc.Renderer),
	}
}

func runREPL(cmd *cobra.Command, opts *ReplOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	s := newReplSession(cmd, cmdCtx, opts.As)

	historyFile := ""
	if cmdCtx.Cfg.Roster != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cmdCtx.Cfg.Roster), "repl_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    &selectorCompleter{reg: cmdCtx.Registry},
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cmdCtx.Renderer
	r.Printf("playersel shell (%d selectors, invoker %s)\n", cmdCtx.Registry.Len(), s.invoker().Name())
	r.Println("Type .help for commands, .quit to exit")
	r.Println()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if opts.Watch {
		if cmdCtx.Cfg.File == "" {
			r.Warn("--watch: no config file in use, nothing to watch")
		} else {
			g.Go(func() error {
				err := config.Watch(gctx, cmdCtx.Cfg.File, cmdCtx.Logger, func() {
					if err := s.reload(); err != nil {
						r.Error(fmt.Sprintf("reload failed: %v", err))
						return
					}
					r.Success(fmt.Sprintf("reloaded %d selectors from %s", cmdCtx.Registry.Len(), cmdCtx.Cfg.File))
					rl.Refresh()
				})
				if err != nil {
					_ = rl.Close()
				}
				return err
			})
		}
	}

	g.Go(func() error {
		defer cancel()
		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if s.handleLine(gctx, line) {
				return nil
			}
		}
	})

	return g.Wait()
}

func (s *replSession) invoker() *cliInvoker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inv
}

// handleLine runs one line of input. It reports whether the shell should exit.
func (s *replSession) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, ".") {
		return s.handleDotCommand(ctx, line)
	}

	s.mu.Lock()
	inv, dryRun := s.inv, s.dryRun
	s.mu.Unlock()

	if dryRun {
		expandOne(ctx, s.cc, strings.TrimPrefix(line, "/"), inv, true)
		return false
	}
	interceptLine(ctx, s.cc, line, inv)
	return false
}

func (s *replSession) handleDotCommand(ctx context.Context, line string) bool {
	r := s.cc.Renderer
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r.Writer())

	case ".as":
		if len(parts) < 2 {
			r.Println("invoker: " + s.invoker().Name())
			return false
		}
		s.mu.Lock()
		s.inv = newInvoker(parts[1], r)
		s.mu.Unlock()
		r.Println("invoker: " + parts[1])

	case ".dry":
		s.mu.Lock()
		s.dryRun = !s.dryRun
		on := s.dryRun
		s.mu.Unlock()
		r.Printf("dry run: %t\n", on)

	case ".selectors":
		renderSelectors(r, s.cc.Registry.Providers())

	case ".history":
		if err := renderHistory(ctx, r, s.cc.Store, 10); err != nil {
			r.Error(err.Error())
		}

	case ".reload":
		if err := s.reload(); err != nil {
			r.Error(fmt.Sprintf("reload failed: %v", err))
			return false
		}
		r.Success(fmt.Sprintf("reloaded %d selectors", s.cc.Registry.Len()))

	default:
		r.Error(fmt.Sprintf("Unknown command: %s (type .help for commands)", command))
	}
	return false
}

// reload re-reads the configuration and swaps the selector table. Engine
// options such as the escape policy keep their startup values.
func (s *replSession) reload() error {
	cfg, err := config.Load(s.cc.Cfg.File, s.cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	ps, err := BuildProviders(cfg, s.cc.Store, s.cc.Logger)
	if err != nil {
		return err
	}
	return s.cc.Registry.Replace(ps...)
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .as [name]      Show or change the invoking player
  .dry            Toggle dry run (expand without dispatching)
  .selectors      List registered selectors
  .history        Show the last dispatched commands
  .reload         Reload selectors from the config file
  .quit / .exit   Exit the shell

Tips:
  - Any other line is expanded and dispatched, e.g. tp @a @s
  - A leading / sends the line as a player command, otherwise as a console command
  - Tab completes selector keys after @
`
	_, _ = fmt.Fprintln(w, help)
}

var dotCommands = []string{".help", ".as", ".dry", ".selectors", ".history", ".reload", ".quit", ".exit"}

// selectorKeys is the part of selector.Registry the completer needs.
type selectorKeys interface {
	Keys() []string
}

// selectorCompleter completes "@" tokens against the registered keys and
// dot-commands at the start of the line.
type selectorCompleter struct {
	reg selectorKeys
}

// Do implements readline.AutoCompleter.
func (c *selectorCompleter) Do(line []rune, pos int) ([][]rune, int) {
	head := string(line[:pos])
	start := strings.LastIndexByte(head, ' ') + 1
	word := head[start:]

	var candidates []string
	var typed string
	switch {
	case start == 0 && strings.HasPrefix(word, "."):
		typed = word
		candidates = dotCommands
	case strings.HasPrefix(word, "@") && !strings.Contains(word, "["):
		typed = word[1:]
		candidates = c.reg.Keys()
	default:
		return nil, 0
	}

	var out [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, typed) {
			out = append(out, []rune(cand[len(typed):]+" "))
		}
	}
	return out, len([]rune(typed))
}

package commands

import (
	"context"
	"strings"

	"github.com/leapstack-labs/playersel/internal/cli/output"
	"github.com/leapstack-labs/playersel/pkg/selector"
	"github.com/spf13/cobra"
)

// ExpandOptions holds options for the expand command.
type ExpandOptions struct {
	As     string
	DryRun bool
}

// NewExpandCommand creates the expand command.
func NewExpandCommand() *cobra.Command {
	opts := &ExpandOptions{}

	cmd := &cobra.Command{
		Use:   "expand <command>...",
		Short: "Expand selectors in a command and dispatch the result",
		Long: `Expand every selector token in a command and dispatch the resulting
commands in order, the way a server would after the command was typed.

Arguments are joined with spaces, so quoting the command is optional.
A command without selectors is dispatched unchanged. When a selector
matches nothing, nothing is dispatched and the reason is printed.`,
		Example: `  # Teleport every player to the closest player other than Steve
  playersel expand --as Steve "tp @a @p[name=!Steve]"

  # Show what would be dispatched without recording it
  playersel expand --dry-run give @a[world=nether] diamond 1

  # Machine-readable result
  playersel expand -o json "say hi @r[c=2]"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "Name of the invoking player (default: the console)")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Show the expansion without dispatching")

	return cmd
}

// expandResult is the JSON form of one expanded command.
type expandResult struct {
	ID          string        `json:"id,omitempty"`
	Command     string        `json:"command"`
	Invoker     string        `json:"invoker"`
	Intercepted bool          `json:"intercepted"`
	DryRun      bool          `json:"dry_run,omitempty"`
	Tokens      []tokenResult `json:"tokens,omitempty"`
	Commands    []string      `json:"commands"`
	Messages    []string      `json:"messages,omitempty"`
}

type tokenResult struct {
	Token  string `json:"token"`
	Key    string `json:"key"`
	Args   string `json:"args,omitempty"`
	Offset int    `json:"offset"`
}

func runExpand(cmd *cobra.Command, raw string, opts *ExpandOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	inv := newInvoker(invokerName(cmdCtx, opts.As), cmdCtx.Renderer)
	res := expandOne(cmd.Context(), cmdCtx, raw, inv, opts.DryRun)

	if cmdCtx.Renderer.EffectiveMode() == output.ModeJSON {
		return cmdCtx.Renderer.JSON(res)
	}
	return nil
}

func invokerName(cc *CommandContext, as string) string {
	if as != "" {
		return as
	}
	return cc.Cfg.Console
}

// expandOne runs raw through the engine. A dry run only expands; otherwise
// the commands go to the sinks, and a command without selectors is passed
// through unchanged.
func expandOne(ctx context.Context, cc *CommandContext, raw string, inv *cliInvoker, dryRun bool) *expandResult {
	res := &expandResult{Command: raw, Invoker: inv.Name(), DryRun: dryRun}

	if dryRun {
		x, err := cc.Engine.Expand(ctx, raw, inv)
		res.ID = x.ID
		res.Intercepted = x.Intercepted()
		res.Tokens = tokens(x.Matches)
		if err != nil {
			inv.SendMessage(selector.FormatError(err))
		} else if !x.Intercepted() {
			res.Commands = []string{raw}
		} else {
			res.Commands = x.Commands
		}
		res.Messages = inv.Messages()
		renderDryRun(cc.Renderer, res)
		return res
	}

	res.Intercepted = cc.Hook.OnConsoleCommand(ctx, raw, inv)
	return finishExecute(ctx, cc, res, inv)
}

// interceptLine hands a typed line to the hook the way a host would: a
// leading slash makes it a player chat command, anything else a console
// command.
func interceptLine(ctx context.Context, cc *CommandContext, line string, inv *cliInvoker) *expandResult {
	raw, player := strings.CutPrefix(line, "/")
	res := &expandResult{Command: raw, Invoker: inv.Name()}
	if player {
		res.Intercepted = cc.Hook.OnPlayerCommand(ctx, line, inv)
	} else {
		res.Intercepted = cc.Hook.OnConsoleCommand(ctx, raw, inv)
	}
	return finishExecute(ctx, cc, res, inv)
}

// finishExecute passes a command the hook left alone through unchanged and
// collects what was sent.
func finishExecute(ctx context.Context, cc *CommandContext, res *expandResult, inv *cliInvoker) *expandResult {
	if !res.Intercepted && res.Command != "" {
		cc.Logger.Debug("no selectors, passing command through", "command", res.Command)
		selector.Dispatch(ctx, cc.Echo, inv, []string{res.Command}, cc.Logger)
	}
	res.Commands = cc.Echo.Sent()
	res.Messages = inv.Messages()
	return res
}

func tokens(ms []selector.Match) []tokenResult {
	out := make([]tokenResult, 0, len(ms))
	for _, m := range ms {
		out = append(out, tokenResult{Token: m.Text, Key: m.Key, Args: m.Args, Offset: m.Offset})
	}
	return out
}

func renderDryRun(r *output.Renderer, res *expandResult) {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return
	case output.ModeMarkdown:
		for _, c := range res.Commands {
			r.Printf("- `%s`\n", c)
		}
	default:
		if !res.Intercepted {
			r.Println(r.Muted("(no selectors)"))
		}
		for _, c := range res.Commands {
			r.Println(r.Styles().Command.Render("  " + c))
		}
	}
}

package commands

import (
	"strconv"

	"github.com/leapstack-labs/playersel/internal/cli/output"
	"github.com/leapstack-labs/playersel/pkg/selector"
	"github.com/spf13/cobra"
)

// NewSelectorsCommand creates the selectors command.
func NewSelectorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "selectors",
		Short: "List the registered selectors",
		Long: `List every selector key that is expanded, with the provider behind it,
whether it accepts [name=value] modifiers, and the key it aliases.

Disabled selectors and aliases come from the "selectors" config section.`,
		Example: `  playersel selectors
  playersel selectors -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return renderSelectors(cmdCtx.Renderer, cmdCtx.Registry.Providers())
		},
	}
}

type selectorInfo struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Modifiers bool   `json:"modifiers"`
	AliasOf   string `json:"alias_of,omitempty"`
}

func describeSelectors(ps []selector.Provider) []selectorInfo {
	out := make([]selectorInfo, 0, len(ps))
	for _, p := range ps {
		info := selectorInfo{Key: p.Key(), Name: p.Name(), Modifiers: p.AcceptsModifiers()}
		if a, ok := p.(interface{ Target() selector.Provider }); ok {
			info.AliasOf = a.Target().Key()
		}
		out = append(out, info)
	}
	return out
}

func renderSelectors(r *output.Renderer, ps []selector.Provider) error {
	infos := describeSelectors(ps)
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}

	r.Header(1, "Selectors ("+strconv.Itoa(len(infos))+")")
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		alias := "-"
		if info.AliasOf != "" {
			alias = "@" + info.AliasOf
		}
		rows = append(rows, []string{"@" + info.Key, info.Name, yesNo(info.Modifiers), alias})
	}
	r.Table([]string{"Token", "Provider", "Modifiers", "Alias of"}, rows)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

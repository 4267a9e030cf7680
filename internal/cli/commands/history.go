package commands

import (
	"context"
	"time"

	"github.com/leapstack-labs/playersel/internal/cli/output"
	"github.com/leapstack-labs/playersel/internal/roster"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently dispatched commands",
		Long: `Show the audit log of commands dispatched by expansions, newest first.
Commands from one expansion share an expansion id.

The log is only written while "audit" is enabled (the default).`,
		Example: `  playersel history
  playersel history --limit 0 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewStoreContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return renderHistory(cmd.Context(), cmdCtx.Renderer, cmdCtx.Store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of records (0 for all)")
	return cmd
}

type historyRecord struct {
	ExpansionID string    `json:"expansion_id"`
	Invoker     string    `json:"invoker"`
	Command     string    `json:"command"`
	At          time.Time `json:"at"`
}

func renderHistory(ctx context.Context, r *output.Renderer, store *roster.Store, limit int) error {
	records, err := store.History(ctx, limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		out := make([]historyRecord, 0, len(records))
		for _, rec := range records {
			out = append(out, historyRecord{ExpansionID: rec.ExpansionID, Invoker: rec.Invoker, Command: rec.Command, At: rec.At})
		}
		return r.JSON(out)
	}

	r.Header(1, "History")
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.At.Local().Format(time.DateTime),
			shortID(rec.ExpansionID),
			rec.Invoker,
			rec.Command,
		})
	}
	r.Table([]string{"Time", "Expansion", "Invoker", "Command"}, rows)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "-"
	}
	return id
}

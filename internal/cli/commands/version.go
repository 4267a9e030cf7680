package commands

import (
	"runtime"
	"strings"

	"github.com/leapstack-labs/playersel/internal/cli/output"
	"github.com/leapstack-labs/playersel/internal/config"
	"github.com/spf13/cobra"
)

// BuildInfo is the build metadata reported by the version command.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

type versionReport struct {
	BuildInfo
	Go        string   `json:"go"`
	Config    string   `json:"config,omitempty"`
	Roster    string   `json:"roster"`
	Selectors []string `json:"selectors"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the playersel version, build information and the selector
keys the current configuration enables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd, info)
		},
	}
}

func runVersion(cmd *cobra.Command, info BuildInfo) error {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	// providers only touch the roster when applied
	ps, err := BuildProviders(cfg, nil, logger)
	if err != nil {
		return err
	}
	rep := versionReport{
		BuildInfo: info,
		Go:        runtime.Version(),
		Config:    cfg.File,
		Roster:    cfg.Roster,
		Selectors: make([]string, 0, len(ps)),
	}
	for _, p := range ps {
		rep.Selectors = append(rep.Selectors, "@"+p.Key())
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(rep)
	}

	r.Printf("playersel v%s\n", info.Version)
	r.Println("Selector expansion for server commands")
	r.Println()
	r.Println(output.FormatKeyValue("commit", info.Commit))
	r.Println(output.FormatKeyValue("built", info.BuildDate))
	r.Println(output.FormatKeyValue("go", rep.Go))
	if rep.Config != "" {
		r.Println(output.FormatKeyValue("config", rep.Config))
	}
	r.Println(output.FormatKeyValue("roster", rep.Roster))
	r.Println(output.FormatKeyValue("selectors", strings.Join(rep.Selectors, " ")))
	return nil
}

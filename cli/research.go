package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ronfux/LeadGenius/config"
	"github.com/ronfux/LeadGenius/research"
)

var (
	researchTarget  string
	researchConfig  string
	researchStates  string
	researchWorkers int
	researchLimit   int
	researchStore   string
	researchStatic  bool
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Plan, dispatch, and aggregate a research run",
	Long: `Run market research for a target industry.

A manager model proposes target cities for the requested states (or pass
--static-plan to use the built-in city tables), one task per city fans out
to the model CLI under the configured parallelism bounds, and the collected
outputs aggregate into businesses.json and businesses.csv.

Individual task failures do not fail the run; they are counted in the final
summary and their records are kept for inspection. Interrupting the run
stops new launches, records every task, and still aggregates what finished.

Examples:
  leadgenius research --target targets/plumbing.yaml
  leadgenius research --target targets/ems.yaml --states TX,CA --limit 10
  leadgenius research --target targets/ems.yaml --static-plan --store sqlite`,
	RunE: runResearchCmd,
}

func init() {
	researchCmd.Flags().StringVarP(&researchTarget, "target", "t", "", "Target industry YAML (required)")
	researchCmd.Flags().StringVarP(&researchConfig, "config", "c", "", "Settings YAML (optional, defaults apply)")
	researchCmd.Flags().StringVarP(&researchStates, "states", "s", "", "Comma-separated state codes overriding the target, e.g. TX,CA,FL")
	researchCmd.Flags().IntVarP(&researchWorkers, "workers", "w", 0, "Override the maximum number of concurrent tasks")
	researchCmd.Flags().IntVar(&researchLimit, "limit", 0, "Cap the number of dispatched tasks")
	researchCmd.Flags().StringVar(&researchStore, "store", "", "Record store backend: fs, sqlite, or memory")
	researchCmd.Flags().BoolVar(&researchStatic, "static-plan", false, "Plan from the built-in city tables instead of the manager model")
	_ = researchCmd.MarkFlagRequired("target")

	rootCmd.AddCommand(researchCmd)
}

func runResearchCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(researchConfig)
	if err != nil {
		return err
	}
	if researchWorkers > 0 {
		settings.Parallelism.MaxConcurrency = researchWorkers
	}
	if researchStore != "" {
		settings.Store = researchStore
	}

	logger, err := setupLogging(settings)
	if err != nil {
		return err
	}

	target, err := config.LoadTarget(researchTarget)
	if err != nil {
		return err
	}
	if researchStates != "" {
		target.States = splitStates(researchStates)
	}

	opts := []research.Option{research.WithLogger(logger)}
	if researchStatic {
		opts = append(opts, research.WithStaticPlan())
	}
	if researchLimit > 0 {
		opts = append(opts, research.WithLimit(researchLimit))
	}

	p, err := research.New(settings, target, opts...)
	if err != nil {
		return err
	}

	summary, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), summary.String())
	return nil
}

// splitStates parses a comma-separated state list, dropping empty entries.
// Code validation happens at plan time.
func splitStates(s string) []string {
	parts := strings.Split(s, ",")
	states := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			states = append(states, p)
		}
	}
	return states
}

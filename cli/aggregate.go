package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ronfux/LeadGenius/config"
	"github.com/ronfux/LeadGenius/research"
)

var (
	aggregateTarget string
	aggregateConfig string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Re-aggregate stored records without re-running tasks",
	Long: `Rebuild the dataset exports from records stored by earlier runs.

The target supplies the column schema; no tasks run. Useful after changing
the target's data fields or after an interrupted run.

Examples:
  leadgenius aggregate --target targets/plumbing.yaml
  leadgenius aggregate --target targets/ems.yaml --config settings.yaml`,
	RunE: runAggregateCmd,
}

func init() {
	aggregateCmd.Flags().StringVarP(&aggregateTarget, "target", "t", "", "Target industry YAML (required)")
	aggregateCmd.Flags().StringVarP(&aggregateConfig, "config", "c", "", "Settings YAML (optional, defaults apply)")
	_ = aggregateCmd.MarkFlagRequired("target")

	rootCmd.AddCommand(aggregateCmd)
}

func runAggregateCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(aggregateConfig)
	if err != nil {
		return err
	}
	logger, err := setupLogging(settings)
	if err != nil {
		return err
	}

	target, err := config.LoadTarget(aggregateTarget)
	if err != nil {
		return err
	}

	p, err := research.New(settings, target, research.WithLogger(logger))
	if err != nil {
		return err
	}

	summary, err := p.AggregateStored(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), summary.String())
	return nil
}

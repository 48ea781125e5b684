package cli

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/ronfux/LeadGenius/research"
)

var checkConfig string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe the model CLI and print the configured models",
	Long: `Verify that the configured model CLI binary is installed and responsive
before starting a run. Prints the resolved binary path, its version, and the
manager and worker models that research will use.`,
	RunE: runCheckCmd,
}

func init() {
	checkCmd.Flags().StringVarP(&checkConfig, "config", "c", "", "Settings YAML (optional, defaults apply)")
	rootCmd.AddCommand(checkCmd)
}

func runCheckCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(checkConfig)
	if err != nil {
		return err
	}
	logger, err := setupLogging(settings)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	probe := research.NewWorkerExecutor(settings, logger)

	version, err := probe.Probe(cmd.Context())
	if err != nil {
		fmt.Fprintf(out, "model CLI %q is not available\n", settings.Executor.Binary)
		fmt.Fprintln(out, "install the binary, authenticate it, then re-run check")
		return err
	}

	path, _ := exec.LookPath(settings.Executor.Binary)
	fmt.Fprintln(out, "model CLI is available")
	fmt.Fprintf(out, "  binary:        %s\n", path)
	fmt.Fprintf(out, "  version:       %s\n", version)
	fmt.Fprintf(out, "  manager model: %s\n", settings.Executor.ManagerModel)
	fmt.Fprintf(out, "  worker model:  %s\n", settings.Executor.WorkerModel)
	return nil
}

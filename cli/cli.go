// Package cli implements the leadgenius command line interface.
package cli

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ronfux/LeadGenius/config"
)

var rootCmd = &cobra.Command{
	Use:   "leadgenius",
	Short: "LeadGenius - automated market research at scale",
	Long: `LeadGenius plans city-level research tasks, fans them out to a model CLI
with bounded parallelism, and aggregates the raw outputs into a deduplicated
business dataset.

QUICK START:
  leadgenius init --industry "Plumbing"          # write a starter target
  leadgenius check                               # verify the model CLI works
  leadgenius research --target targets/plumbing.yaml
  leadgenius aggregate --target targets/plumbing.yaml

Settings load from settings.yaml when present (override with --config); the
built-in defaults apply otherwise. Logs go to stderr, data artifacts to the
configured output directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command under ctx. Cancelling ctx stops new task
// launches; tasks already running finish and are recorded.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadSettings resolves the --config flag. An explicit path must load; the
// default path may be absent, in which case the defaults apply.
func loadSettings(path string) (config.Settings, error) {
	explicit := path != ""
	if !explicit {
		path = config.DefaultSettingsFile
	}

	s, err := config.LoadSettings(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return config.DefaultSettings(), nil
		}
		return config.Settings{}, err
	}
	return s, nil
}

// setupLogging points slog at stderr with the configured level and returns
// the logger the commands pass down.
func setupLogging(s config.Settings) (*slog.Logger, error) {
	level, err := s.Level()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, nil
}

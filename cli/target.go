package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/ronfux/LeadGenius/config"
)

var (
	initIndustry string
	initDir      string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter target industry YAML",
	Long: `Create a target profile for a new industry with generated search terms,
the default data fields, and a starting state list to edit.

Examples:
  leadgenius init --industry "Plumbing"
  leadgenius init --industry "EMS" --dir config/targets`,
	RunE: runInitCmd,
}

func init() {
	initCmd.Flags().StringVarP(&initIndustry, "industry", "i", "", `Industry name, e.g. "Plumbing" (required)`)
	initCmd.Flags().StringVar(&initDir, "dir", "targets", "Directory for the new target file")
	_ = initCmd.MarkFlagRequired("industry")

	rootCmd.AddCommand(initCmd)
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	target := config.StarterTarget(initIndustry)
	if err := target.Validate(); err != nil {
		return err
	}

	path := filepath.Join(initDir, targetFileName(initIndustry))
	if err := config.SaveTarget(path, target); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "created %s\n", path)
	fmt.Fprintf(out, "edit its states and search terms, then run: leadgenius research --target %s\n", path)
	return nil
}

// targetFileName slugs an industry name into a file name, "Pest Control"
// becomes pest_control.yaml.
func targetFileName(industry string) string {
	words := strings.FieldsFunc(strings.ToLower(industry), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, "_") + ".yaml"
}

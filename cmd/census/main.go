// Command census fills, checks, reviews and submits household census forms.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := fang.Execute(context.Background(), rootCmd()); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "census",
		Short: "Household census form engine",
		Long: `census walks the household census form in the terminal, keeps a draft of
the answers and submits the completed form to the configured endpoint.

Answers files are draft snapshots as written by "census fill --save". When no
answers file is given the saved draft is used.

Configuration is read from --config (.yaml, .yml, .json or .toml) and
CENSUS_* environment variables.`,
		Version:       fmt.Sprintf("%s (%s) %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  census fill --store file --save answers.json
  census validate --answers answers.json
  census review --format html --output review.html
  census submit --answers answers.json
  census schema --format yaml`,
	}
	cmd.SetVersionTemplate(fmt.Sprintf("census %s (%s) %s\n", version, commit, date))

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Configuration file")
	flags.StringVar(&opts.storeDriver, "store", "", "Draft store: memory, file or sqlite (overrides config)")
	flags.StringVar(&opts.storePath, "store-path", "", "Draft store location (overrides config)")
	flags.CountVarP(&opts.verbosity, "verbose", "v", "Increase log verbosity")

	cmd.AddCommand(
		fillCmd(opts),
		validateCmd(opts),
		reviewCmd(opts),
		submitCmd(opts),
		schemaCmd(opts),
		draftCmd(opts),
	)
	return cmd
}

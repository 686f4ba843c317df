// Package commands implements the spendwise-cli subcommands.
package commands

import (
	"github.com/spf13/cobra"

	"spendwise/internal/categorize"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var rulesFile string

	rootCmd := &cobra.Command{
		Use:     "spendwise-cli",
		Short:   "Offline expense reports, categorisation and currency conversion",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "YAML category rules file (default: built-in rules)")

	loadCategorizer := func() (*categorize.Categorizer, error) {
		if rulesFile == "" {
			return categorize.New(nil), nil
		}
		rules, err := categorize.LoadRules(rulesFile)
		if err != nil {
			return nil, err
		}
		return categorize.New(rules), nil
	}

	rootCmd.AddCommand(
		newReportCommand(loadCategorizer),
		newCategorizeCommand(loadCategorizer),
		newRulesCommand(loadCategorizer),
		newConvertCommand(),
	)

	return rootCmd
}

type categorizerLoader func() (*categorize.Categorizer, error)

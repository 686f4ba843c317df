package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spendwise/internal/categorize"
)

func newCategorizeCommand(load categorizerLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "categorize TEXT...",
		Short: "Show the category each description maps to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, text := range args {
				fmt.Fprintf(out, "%s\t%s\n", c.Categorize(text), strings.TrimSpace(text))
			}
			return nil
		},
	}
}

func newRulesCommand(load categorizerLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the active category rules as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := load()
			if err != nil {
				return err
			}
			data, err := categorize.MarshalRules(c.Rules())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

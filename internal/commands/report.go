package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
	"spendwise/internal/currency"
	"spendwise/internal/importer"
)

const maxReportedErrors = 5

func newReportCommand(load categorizerLoader) *cobra.Command {
	var (
		target          string
		defaultCurrency string
		top             int
		asJSON          bool
	)

	cmd := &cobra.Command{
		Use:   "report FILE",
		Short: "Print spending analytics for a CSV statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv := currency.NewConverter(nil, nil)
			if !conv.Supported(defaultCurrency) {
				return fmt.Errorf("unsupported default currency %q", defaultCurrency)
			}
			if target != "" && !conv.Supported(target) {
				return fmt.Errorf("unsupported currency %q", target)
			}
			if top <= 0 {
				return fmt.Errorf("--top must be positive, got %d", top)
			}

			c, err := load()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening statement: %w", err)
			}
			defer f.Close()

			res, err := importer.NewCSVParser(c, defaultCurrency).Parse(f)
			if err != nil {
				return err
			}

			engine := analytics.NewEngine(conv, defaultCurrency)
			report := engine.Build(cmd.Context(), res.Transactions, target, top)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeReportJSON(out, res, report)
			}
			writeReportText(out, res, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "currency", "", "Currency to report totals in (default: --default-currency)")
	cmd.Flags().StringVar(&defaultCurrency, "default-currency", core.DefaultCurrency, "Currency of the statement amounts")
	cmd.Flags().IntVar(&top, "top", 5, "Number of top categories to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

type reportOutput struct {
	Processed int              `json:"processedLines"`
	Imported  int              `json:"transactions"`
	Errors    []string         `json:"errors,omitempty"`
	Warnings  []string         `json:"warnings,omitempty"`
	Report    analytics.Report `json:"analytics"`
}

func writeReportJSON(w io.Writer, res importer.Result, report analytics.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reportOutput{
		Processed: res.Processed,
		Imported:  len(res.Transactions),
		Errors:    res.Errors,
		Warnings:  res.Warnings,
		Report:    report,
	})
}

func writeReportText(w io.Writer, res importer.Result, report analytics.Report) {
	in := report.Insights
	fmt.Fprintf(w, "Processed %d lines, %d transactions\n", res.Processed, len(res.Transactions))
	fmt.Fprintf(w, "Total spending: %s %s\n", in.TotalSpending, in.TotalCurrency)
	if in.AverageTransaction != "" {
		fmt.Fprintf(w, "Average transaction: %s\n", in.AverageTransaction)
	}

	if len(report.TopCategories) > 0 {
		fmt.Fprintln(w, "\nTop categories:")
		for i, c := range report.TopCategories {
			fmt.Fprintf(w, "  %d. %-16s %12.2f\n", i+1, c.Category, c.Amount)
		}
	}

	if report.MonthlyTotals.Len() > 0 {
		fmt.Fprintln(w, "\nBy month:")
		for _, e := range report.MonthlyTotals.Entries() {
			fmt.Fprintf(w, "  %s %12.2f\n", e.Key, e.Amount)
		}
	}

	if msgs := report.Messages(); len(msgs) > 0 {
		fmt.Fprintln(w, "\nInsights:")
		for _, m := range msgs {
			fmt.Fprintf(w, "  - %s\n", m)
		}
	}

	if len(res.Errors) > 0 {
		fmt.Fprintf(w, "\n%d rows skipped:\n", len(res.Errors))
		for _, e := range res.FirstErrors(maxReportedErrors) {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}

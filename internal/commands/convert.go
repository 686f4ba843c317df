package commands

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"spendwise/internal/core"
	"spendwise/internal/currency"
)

func newConvertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert AMOUNT FROM TO",
		Short: "Convert an amount between currencies",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			from, to := core.NormalizeCurrency(args[1]), core.NormalizeCurrency(args[2])

			conv := currency.NewConverter(nil, nil)
			for _, code := range []string{from, to} {
				if !conv.Supported(code) {
					return fmt.Errorf("unsupported currency %q", code)
				}
			}
			rate, _ := conv.Rate(from, to)
			result := conv.Convert(amount, from, to)

			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (rate %.6f)\n",
				currency.Format(amount, from), currency.Format(result, to), rate)
			return nil
		},
	}
}

// Package currency converts amounts between currencies using a static
// USD-based rate table.
package currency

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"spendwise/internal/core"
)

// Converter is read-only after construction.
type Converter struct {
	rates  map[string]float64
	logger *slog.Logger
}

// NewConverter builds a converter over rates (units per 1 USD). A nil map
// uses the built-in catalogue rates. Non-positive or non-finite rates are
// dropped so they behave as unknown codes.
func NewConverter(rates map[string]float64, logger *slog.Logger) *Converter {
	if rates == nil {
		rates = Rates()
	}
	if logger == nil {
		logger = slog.Default()
	}
	clean := make(map[string]float64, len(rates))
	for code, r := range rates {
		if r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r) {
			clean[core.NormalizeCurrency(code)] = r
		}
	}
	return &Converter{rates: clean, logger: logger}
}

// Supported reports whether code has a rate.
func (c *Converter) Supported(code string) bool {
	_, ok := c.rates[core.NormalizeCurrency(code)]
	return ok
}

// Rate returns the multiplier from one currency to another.
func (c *Converter) Rate(from, to string) (float64, bool) {
	from, to = core.NormalizeCurrency(from), core.NormalizeCurrency(to)
	if from == to {
		return 1, true
	}
	rf, okf := c.rates[from]
	rt, okt := c.rates[to]
	if !okf || !okt {
		return 0, false
	}
	return rt / rf, true
}

// Convert returns amount expressed in to. Same currency is an exact
// identity; unknown codes and non-finite results return amount unchanged.
func (c *Converter) Convert(amount float64, from, to string) float64 {
	return c.ConvertContext(context.Background(), amount, from, to)
}

// ConvertContext is Convert with a context for the warning log.
func (c *Converter) ConvertContext(ctx context.Context, amount float64, from, to string) float64 {
	from, to = core.NormalizeCurrency(from), core.NormalizeCurrency(to)
	if from == to {
		return amount
	}
	rf, okf := c.rates[from]
	rt, okt := c.rates[to]
	if !okf || !okt {
		return amount
	}
	// Divide first so the base-currency intermediate matches the rate table.
	result := amount / rf * rt
	if math.IsNaN(result) || math.IsInf(result, 0) {
		c.logger.WarnContext(ctx, "Currency conversion produced a non-finite result",
			"amount", amount, "from", from, "to", to)
		return amount
	}
	return result
}

// Format renders amount with the currency symbol and the currency's usual
// number of decimals, e.g. "₹1,234.50" or "¥1,500".
func Format(amount float64, code string) string {
	code = core.NormalizeCurrency(code)
	info, ok := Lookup(code)
	decimals := 2
	symbol := code
	if ok {
		decimals = info.Decimals
		symbol = info.Symbol
	}
	neg := amount < 0
	s := strconv.FormatFloat(math.Abs(amount), 'f', decimals, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := symbol + b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

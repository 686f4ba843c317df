// Package core holds the transaction model and the amount parsing helpers
// shared by ingestion and the HTTP layer.
package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonAmountChars = regexp.MustCompile(`[^\d.\-]`)

// CleanAmount strips currency symbols, grouping separators and spaces,
// keeping digits, '.' and '-'.
//
// Examples:
//
//	CleanAmount("₹1,234.50") -> "1234.50"
//	CleanAmount("$ -12")     -> "-12"
func CleanAmount(s string) string {
	return nonAmountChars.ReplaceAllString(strings.TrimSpace(s), "")
}

// ParseAmount cleans s and parses it as a positive decimal rounded to two
// places. Zero, negative and malformed inputs return ErrInvalidAmount.
func ParseAmount(s string) (float64, error) {
	cleaned := CleanAmount(s)
	if cleaned == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return d.Round(2).InexactFloat64(), nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// Package importer turns bank statement exports into categorised
// transactions.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"spendwise/internal/core"
)

const (
	colDate = iota
	colDescription
	colAmount
	colMode

	minFields = 3
)

// Categorizer assigns a category to a description.
type Categorizer interface {
	Categorize(description string) string
}

// Result is the outcome of one import. Errors are per-row and never abort
// the import; Warnings flag rows that were kept with degraded data.
type Result struct {
	Transactions []core.Transaction
	Processed    int
	Errors       []string
	Warnings     []string
}

// FirstErrors returns at most n row errors.
func (r Result) FirstErrors(n int) []string {
	if len(r.Errors) <= n {
		return append([]string{}, r.Errors...)
	}
	return append([]string{}, r.Errors[:n]...)
}

// CSVParser reads Date,Description,Amount[,Mode] statements.
type CSVParser struct {
	categorizer Categorizer
	currency    string
}

// NewCSVParser returns a parser tagging every row with currency.
func NewCSVParser(c Categorizer, currency string) *CSVParser {
	currency = core.NormalizeCurrency(currency)
	if currency == "" {
		currency = core.DefaultCurrency
	}
	return &CSVParser{categorizer: c, currency: currency}
}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads every record of r. A leading header row, recognised by a
// first cell of "date", is skipped. Only a malformed CSV stream is an error.
func (p *CSVParser) Parse(r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var res Result
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("reading CSV: %w", err)
		}
		if first {
			first = false
			if len(rec) > 0 && strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(rec[0], "\ufeff")), "date") {
				continue
			}
		}
		if blank(rec) {
			continue
		}

		res.Processed++
		line := res.Processed
		txn, warning, rowErr := p.parseRow(rec, line)
		if rowErr != "" {
			res.Errors = append(res.Errors, rowErr)
			continue
		}
		if warning != "" {
			res.Warnings = append(res.Warnings, warning)
		}
		res.Transactions = append(res.Transactions, txn)
	}
	return res, nil
}

func (p *CSVParser) parseRow(rec []string, line int) (core.Transaction, string, string) {
	if len(rec) < minFields {
		return core.Transaction{}, "", fmt.Sprintf("Line %d: Missing required fields", line)
	}
	rawDate := strings.TrimSpace(rec[colDate])
	desc := strings.TrimSpace(rec[colDescription])
	rawAmount := strings.TrimSpace(rec[colAmount])
	if rawDate == "" || desc == "" || rawAmount == "" {
		return core.Transaction{}, "", fmt.Sprintf("Line %d: Missing required fields", line)
	}

	amount, err := core.ParseAmount(rawAmount)
	if err != nil {
		return core.Transaction{}, "", fmt.Sprintf("Line %d: Invalid amount '%s'", line, rawAmount)
	}

	var warning string
	date, ok := core.ParseDate(rawDate)
	if !ok {
		warning = fmt.Sprintf("Line %d: Unrecognised date '%s'", line, rawDate)
	}

	mode := core.ModeImported
	if len(rec) > colMode && strings.TrimSpace(rec[colMode]) != "" {
		mode = strings.TrimSpace(rec[colMode])
	}

	category := core.CategoryMisc
	if p.categorizer != nil {
		category = p.categorizer.Categorize(desc)
	}

	txn, err := core.NewTransaction(date, desc, amount,
		core.WithMode(mode),
		core.WithCurrency(p.currency),
		core.WithCategory(category),
	)
	if err != nil {
		return core.Transaction{}, "", fmt.Sprintf("Line %d: %s", line, err)
	}
	return txn, warning, ""
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateKeys(t *testing.T) {
	d := NewDate(2024, 3, 7)
	if d.MonthKey() != "2024-03" {
		t.Fatalf("MonthKey = %q", d.MonthKey())
	}
	if d.DayKey() != "2024-03-07" {
		t.Fatalf("DayKey = %q", d.DayKey())
	}
	var zero Date
	if zero.MonthKey() != "" || zero.DayKey() != "" {
		t.Fatalf("zero date should yield empty keys")
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-01-15", NewDate(2024, 1, 15), true},
		{"2024/01/15", NewDate(2024, 1, 15), true},
		{"15/01/2024", NewDate(2024, 1, 15), true},
		{"03/04/2024", NewDate(2024, 4, 3), true}, // day-first
		{"01/31/2024", NewDate(2024, 1, 31), true}, // month-first fallback
		{"10/02/2025", NewDate(2025, 2, 10), true},
		{"15-01-2024", NewDate(2024, 1, 15), true},
		{"5 Feb 2024", NewDate(2024, 2, 5), true},
		{"2024-02-05T10:00:00Z", NewDate(2024, 2, 5), true},
		{"yesterday", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		if ok != tc.ok {
			t.Fatalf("%q ok=%v, want %v", tc.in, ok, tc.ok)
		}
		if ok && !got.Equal(tc.want.Time) {
			t.Fatalf("%q parsed as %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewTransaction(t *testing.T) {
	txn, err := NewTransaction(NewDate(2024, 1, 1), "  Coffee  ", 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.ID == "" {
		t.Fatalf("expected generated ID")
	}
	if txn.Description != "Coffee" {
		t.Fatalf("description not trimmed: %q", txn.Description)
	}
	if txn.Mode != ModeManual {
		t.Fatalf("default mode = %q", txn.Mode)
	}
	if txn.CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt")
	}

	other, _ := NewTransaction(NewDate(2024, 1, 1), "Coffee", 120)
	if other.ID == txn.ID {
		t.Fatalf("IDs must be unique")
	}
}

func TestNewTransactionValidation(t *testing.T) {
	cases := []struct {
		name string
		desc string
		amt  float64
		opts []TransactionOption
		want error
	}{
		{"empty description", " ", 1, nil, ErrEmptyDescription},
		{"nan amount", "x", math.NaN(), nil, ErrInvalidAmount},
		{"inf amount", "x", math.Inf(1), nil, ErrInvalidAmount},
		{"original without currency", "x", 1, []TransactionOption{WithOriginal(5, "")}, ErrOriginalPair},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTransaction(NewDate(2024, 1, 1), tc.desc, tc.amt, tc.opts...)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEffectiveAmountAndCurrency(t *testing.T) {
	plain, _ := NewTransaction(NewDate(2024, 1, 1), "a", 100, WithCurrency("usd"))
	if plain.EffectiveAmount() != 100 {
		t.Fatalf("EffectiveAmount = %v", plain.EffectiveAmount())
	}
	if plain.EffectiveCurrency("INR") != "USD" {
		t.Fatalf("EffectiveCurrency = %q", plain.EffectiveCurrency("INR"))
	}

	orig, _ := NewTransaction(NewDate(2024, 1, 1), "a", 100, WithOriginal(12, "eur"))
	if orig.EffectiveAmount() != 12 {
		t.Fatalf("EffectiveAmount = %v", orig.EffectiveAmount())
	}
	if orig.EffectiveCurrency("INR") != "EUR" {
		t.Fatalf("EffectiveCurrency = %q", orig.EffectiveCurrency("INR"))
	}

	bare := Transaction{Description: "a", Amount: math.NaN()}
	if bare.EffectiveAmount() != 0 {
		t.Fatalf("NaN amount should count as 0")
	}
	if bare.EffectiveCurrency("") != DefaultCurrency {
		t.Fatalf("EffectiveCurrency fallback = %q", bare.EffectiveCurrency(""))
	}
	if bare.CategoryOrMisc() != CategoryMisc {
		t.Fatalf("CategoryOrMisc = %q", bare.CategoryOrMisc())
	}
}

func TestEffectiveAmountZeroOriginal(t *testing.T) {
	zero := 0.0
	tx := Transaction{Description: "a", Amount: 250, Currency: "INR", OriginalAmount: &zero, OriginalCurrency: "USD"}
	if got := tx.EffectiveAmount(); got != 250 {
		t.Fatalf("EffectiveAmount = %v, want 250", got)
	}
	if got := tx.EffectiveCurrency("EUR"); got != "INR" {
		t.Fatalf("EffectiveCurrency = %q, want INR", got)
	}

	nan := math.NaN()
	tx.OriginalAmount = &nan
	if got := tx.EffectiveAmount(); got != 250 {
		t.Fatalf("NaN original: EffectiveAmount = %v, want 250", got)
	}
}

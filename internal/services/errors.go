package services

import (
	"errors"

	"spendwise/internal/advisor"
	"spendwise/internal/analytics"
	"spendwise/internal/core"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidCSV          = errors.New("invalid CSV file")
)

var validationErrors = []error{
	ErrValidation,
	ErrUnsupportedCurrency,
	ErrInvalidCSV,
	core.ErrEmptyDescription,
	core.ErrDescriptionLong,
	core.ErrInvalidAmount,
	core.ErrOriginalPair,
	core.ErrInvalidMonthKey,
	core.ErrEmptyName,
	core.ErrNameLong,
	core.ErrNotesLong,
	core.ErrDebtType,
	core.ErrDebtBalance,
	analytics.ErrSplitTotal,
	analytics.ErrSplitParticipants,
	analytics.ErrSplitName,
	analytics.ErrSplitMethod,
	analytics.ErrSplitMismatch,
	advisor.ErrEmptyQuestion,
}

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

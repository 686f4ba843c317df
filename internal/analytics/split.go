package analytics

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Split methods.
const (
	SplitEqual      = "equal"
	SplitAmount     = "amount"
	SplitPercentage = "percentage"
)

const splitTolerance = 0.01

var (
	ErrSplitTotal        = errors.New("total amount must be greater than zero")
	ErrSplitParticipants = errors.New("at least one participant is required")
	ErrSplitName         = errors.New("every participant needs a name")
	ErrSplitMethod       = errors.New("unknown split method")
	// ErrSplitMismatch matches custom values that do not add up.
	ErrSplitMismatch = errors.New("split values do not add up")
)

type mismatchError string

func (e mismatchError) Error() string        { return string(e) }
func (e mismatchError) Is(target error) bool { return target == ErrSplitMismatch }

type (
	// Participant carries Value as an amount or a percentage depending on
	// the split method. It is ignored for equal splits.
	Participant struct {
		Name  string  `json:"name"`
		Email string  `json:"email,omitempty"`
		Value float64 `json:"value"`
	}

	Share struct {
		Name       string  `json:"name"`
		Email      string  `json:"email,omitempty"`
		Amount     float64 `json:"amount"`
		Percentage float64 `json:"percentage"`
	}

	SplitResult struct {
		Total  float64 `json:"total"`
		Method string  `json:"method"`
		Shares []Share `json:"shares"`
	}
)

// Split divides total among participants. Custom amounts must add up to
// total, and custom percentages to 100, within one cent.
func Split(total float64, method string, participants []Participant) (SplitResult, error) {
	if !(total > 0) || math.IsInf(total, 0) {
		return SplitResult{}, ErrSplitTotal
	}
	if len(participants) == 0 {
		return SplitResult{}, ErrSplitParticipants
	}
	for _, p := range participants {
		if strings.TrimSpace(p.Name) == "" {
			return SplitResult{}, ErrSplitName
		}
	}

	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		method = SplitEqual
	}

	var sum float64
	for _, p := range participants {
		sum += p.Value
	}

	res := SplitResult{Total: total, Method: method, Shares: make([]Share, 0, len(participants))}
	switch method {
	case SplitEqual:
		per := total / float64(len(participants))
		for _, p := range participants {
			res.Shares = append(res.Shares, share(p, per, per/total*100))
		}
	case SplitAmount:
		if math.Abs(sum-total) > splitTolerance {
			return SplitResult{}, mismatchError(fmt.Sprintf("custom amounts (%.2f) must equal total amount (%.2f)", sum, total))
		}
		for _, p := range participants {
			res.Shares = append(res.Shares, share(p, p.Value, p.Value/total*100))
		}
	case SplitPercentage:
		if math.Abs(sum-100) > splitTolerance {
			return SplitResult{}, mismatchError(fmt.Sprintf("percentages must add up to 100%% (current: %.1f%%)", sum))
		}
		for _, p := range participants {
			res.Shares = append(res.Shares, share(p, total*p.Value/100, p.Value))
		}
	default:
		return SplitResult{}, fmt.Errorf("%w: %q", ErrSplitMethod, method)
	}
	return res, nil
}

func share(p Participant, amount, pct float64) Share {
	return Share{Name: strings.TrimSpace(p.Name), Email: p.Email, Amount: amount, Percentage: pct}
}

// Package categorize assigns spending categories to transactions by
// ordered keyword matching.
package categorize

import (
	"strings"

	"spendwise/internal/core"
)

// Categorizer is immutable after construction and safe for concurrent use.
type Categorizer struct {
	rules Rules
}

// New returns a Categorizer over rules; nil or empty rules use DefaultRules.
func New(rules Rules) *Categorizer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Categorizer{rules: rules.normalize()}
}

// Categorize returns the first category, in rule order, with a keyword that
// is a substring of the lower-cased description. No match yields
// Miscellaneous.
func (c *Categorizer) Categorize(description string) string {
	if description == "" {
		return core.CategoryMisc
	}
	lower := strings.ToLower(description)
	for _, rule := range c.rules {
		if rule.Category == core.CategoryMisc {
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category
			}
		}
	}
	return core.CategoryMisc
}

// CategorizeAll returns a copy of txns with every Category set.
func (c *Categorizer) CategorizeAll(txns []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txns))
	for i, t := range txns {
		t.Category = c.Categorize(t.Description)
		out[i] = t
	}
	return out
}

// Categories lists the category names in match order.
func (c *Categorizer) Categories() []string {
	return c.rules.Categories()
}

// Rules returns a copy of the active rule table.
func (c *Categorizer) Rules() Rules {
	out := make(Rules, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

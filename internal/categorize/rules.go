package categorize

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"spendwise/internal/core"
)

// Rule maps one category to the keywords that select it.
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// Rules is an ordered rule table. Earlier rules win on overlapping keywords.
type Rules []Rule

type rulesFile struct {
	Categories Rules `yaml:"categories"`
}

// DefaultRules returns a fresh copy of the built-in table.
func DefaultRules() Rules {
	return Rules{
		{Category: core.CategoryFood, Keywords: []string{
			"zomato", "swiggy", "uber eats", "restaurant", "cafe", "coffee", "dominos", "pizza",
			"mcdonald", "kfc", "subway", "starbucks", "food", "lunch", "dinner", "breakfast",
			"meal", "dining", "bakery", "grocery", "supermarket", "bigbasket", "dunzo", "blinkit",
			"instamart", "zepto",
		}},
		{Category: core.CategoryTransport, Keywords: []string{
			"uber", "ola", "rapido", "auto", "taxi", "cab", "metro", "bus", "train", "flight",
			"airline", "indigo", "spicejet", "petrol", "diesel", "fuel", "parking", "toll", "car",
			"bike", "vehicle", "transport",
		}},
		{Category: core.CategoryShopping, Keywords: []string{
			"amazon", "flipkart", "myntra", "ajio", "meesho", "shopping", "store", "mall",
			"purchase", "buy", "clothing", "clothes", "fashion", "electronics", "gadget", "mobile",
			"laptop", "shoes", "accessories",
		}},
		{Category: core.CategoryEntertainment, Keywords: []string{
			"netflix", "amazon prime", "hotstar", "spotify", "youtube", "movie", "cinema", "pvr",
			"inox", "theatre", "concert", "event", "ticket", "gaming", "game", "entertainment",
			"subscription", "music",
		}},
		{Category: core.CategoryBills, Keywords: []string{
			"electricity", "water", "gas", "internet", "wifi", "broadband", "mobile", "recharge",
			"phone bill", "utility", "maintenance", "society", "bill",
		}},
		{Category: core.CategoryHousing, Keywords: []string{
			"rent", "housing", "apartment", "lease", "landlord", "property", "mortgage", "emi",
			"home loan",
		}},
		{Category: core.CategoryHealthcare, Keywords: []string{
			"doctor", "hospital", "clinic", "pharmacy", "medicine", "medical", "health",
			"insurance", "appointment", "consultation", "apollo", "max", "fortis", "lab", "test",
		}},
		{Category: core.CategoryEducation, Keywords: []string{
			"course", "udemy", "coursera", "school", "college", "university", "tuition", "books",
			"education", "learning", "training", "certification",
		}},
		{Category: core.CategoryPersonalCare, Keywords: []string{
			"salon", "spa", "haircut", "beauty", "grooming", "cosmetics", "skincare", "gym",
			"fitness", "yoga", "wellness",
		}},
		{Category: core.CategoryMisc, Keywords: nil},
	}
}

// Categories lists the category names in match order.
func (r Rules) Categories() []string {
	out := make([]string, 0, len(r))
	for _, rule := range r {
		out = append(out, rule.Category)
	}
	return out
}

// Validate rejects blank and duplicate category names.
func (r Rules) Validate() error {
	if len(r) == 0 {
		return errors.New("rules: no categories defined")
	}
	seen := make(map[string]bool, len(r))
	for i, rule := range r {
		name := strings.TrimSpace(rule.Category)
		if name == "" {
			return fmt.Errorf("rules: category %d has no name", i+1)
		}
		if seen[name] {
			return fmt.Errorf("rules: duplicate category %q", name)
		}
		seen[name] = true
	}
	return nil
}

// normalize lower-cases keywords, drops blanks and guarantees a trailing
// Miscellaneous entry.
func (r Rules) normalize() Rules {
	out := make(Rules, 0, len(r)+1)
	hasMisc := false
	for _, rule := range r {
		name := strings.TrimSpace(rule.Category)
		if name == core.CategoryMisc {
			hasMisc = true
		}
		kws := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		out = append(out, Rule{Category: name, Keywords: kws})
	}
	if !hasMisc {
		out = append(out, Rule{Category: core.CategoryMisc})
	}
	return out
}

// LoadRules reads an ordered rule table from a YAML file:
//
//	categories:
//	  - category: Food & Dining
//	    keywords: [zomato, swiggy]
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes a YAML rule table.
func ParseRules(data []byte) (Rules, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	if err := f.Categories.Validate(); err != nil {
		return nil, err
	}
	return f.Categories.normalize(), nil
}

// MarshalRules encodes r in the format ParseRules reads.
func MarshalRules(r Rules) ([]byte, error) {
	data, err := yaml.Marshal(rulesFile{Categories: r})
	if err != nil {
		return nil, fmt.Errorf("encoding rules: %w", err)
	}
	return data, nil
}

package categorize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/core"
)

func TestCategorize_Defaults(t *testing.T) {
	c := New(nil)

	cases := []struct {
		desc string
		want string
	}{
		{"STARBUCKS COFFEE", core.CategoryFood},
		{"Uber Eats order", core.CategoryFood},
		{"Uber ride to office", core.CategoryTransport},
		{"Netflix", core.CategoryEntertainment},
		{"Monthly rent", core.CategoryHousing},
		{"Apollo Pharmacy", core.CategoryHealthcare},
		{"Udemy course", core.CategoryEducation},
		{"Haircut at salon", core.CategoryPersonalCare},
		{"electricity", core.CategoryBills},
		{"xyz123", core.CategoryMisc},
		{"", core.CategoryMisc},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Categorize(tc.desc), tc.desc)
	}
}

func TestCategorize_FirstMatchWins(t *testing.T) {
	c := New(nil)

	// "mobile" is listed under both Shopping and Bills & Utilities.
	assert.Equal(t, core.CategoryShopping, c.Categorize("Mobile recharge"))
	// "amazon" fires before "amazon prime".
	assert.Equal(t, core.CategoryShopping, c.Categorize("Amazon Prime"))
}

func TestCategorizeAll_DoesNotMutateInput(t *testing.T) {
	c := New(nil)
	in := []core.Transaction{{Description: "pizza"}, {Description: "taxi"}}

	out := c.CategorizeAll(in)

	require.Len(t, out, 2)
	assert.Equal(t, core.CategoryFood, out[0].Category)
	assert.Equal(t, core.CategoryTransport, out[1].Category)
	assert.Empty(t, in[0].Category)
}

func TestDefaultRules_Order(t *testing.T) {
	want := []string{
		core.CategoryFood, core.CategoryTransport, core.CategoryShopping,
		core.CategoryEntertainment, core.CategoryBills, core.CategoryHousing,
		core.CategoryHealthcare, core.CategoryEducation, core.CategoryPersonalCare,
		core.CategoryMisc,
	}
	assert.Equal(t, want, New(nil).Categories())
}

func TestParseRules(t *testing.T) {
	data := []byte(`
categories:
  - category: Pets
    keywords: [" VET ", petshop]
  - category: Food & Dining
    keywords: [kibble, pizza]
`)
	rules, err := ParseRules(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pets", core.CategoryFood, core.CategoryMisc}, rules.Categories())

	c := New(rules)
	assert.Equal(t, "Pets", c.Categorize("City Vet Clinic"))
	assert.Equal(t, core.CategoryFood, c.Categorize("Pizza night"))
	assert.Equal(t, core.CategoryMisc, c.Categorize("Taxi"))
}

func TestParseRules_Invalid(t *testing.T) {
	_, err := ParseRules([]byte("categories: []"))
	assert.Error(t, err)

	_, err = ParseRules([]byte("categories:\n  - category: A\n  - category: A\n"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = ParseRules([]byte("categories: [unclosed"))
	assert.ErrorContains(t, err, "parsing rules")
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - category: Travel\n    keywords: [hotel]\n"), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, "Travel", New(rules).Categorize("Hotel booking"))

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading rules")
}

package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.23", 1.23, true},
		{"₹1,234.50", 1234.5, true},
		{"$ 99", 99, true},
		{"1.005", 1.01, true}, // half-up rounding
		{" 2.50 ", 2.5, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestCleanAmount(t *testing.T) {
	if got := CleanAmount("Rs. -1,000"); got != ".-1000" {
		t.Fatalf("unexpected cleaned amount %q", got)
	}
	if got := CleanAmount("€12.40"); got != "12.40" {
		t.Fatalf("unexpected cleaned amount %q", got)
	}
}

func TestRounding(t *testing.T) {
	if got := Round1(33.333); got != 33.3 {
		t.Fatalf("Round1 = %v", got)
	}
	if got := Round1(12.25); got != 12.3 {
		t.Fatalf("Round1 = %v", got)
	}
	if got := Round2(2.345); got != 2.35 {
		t.Fatalf("Round2 = %v", got)
	}
}

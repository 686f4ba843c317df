package analytics

import (
	"bytes"
	"encoding/json"
	"math"
)

// Totals maps keys to summed amounts and remembers first-insertion order.
// The zero value is ready to use. Iteration order drives the ranker's
// tie-break, so it is part of the contract.
type Totals struct {
	keys   []string
	values map[string]float64
}

// Entry is one key/amount pair of a Totals.
type Entry struct {
	Key    string  `json:"key"`
	Amount float64 `json:"amount"`
}

// NewTotals returns an empty Totals.
func NewTotals() *Totals {
	return &Totals{values: make(map[string]float64)}
}

// Add accumulates v into key, appending key on first use.
func (t *Totals) Add(key string, v float64) {
	if t.values == nil {
		t.values = make(map[string]float64)
	}
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] += v
}

// Get returns the amount for key.
func (t *Totals) Get(key string) (float64, bool) {
	if t == nil || t.values == nil {
		return 0, false
	}
	v, ok := t.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (t *Totals) Keys() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.keys...)
}

// Len is the number of distinct keys.
func (t *Totals) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Sum adds every amount.
func (t *Totals) Sum() float64 {
	if t == nil {
		return 0
	}
	var s float64
	for _, k := range t.keys {
		s += t.values[k]
	}
	return s
}

// Entries returns key/amount pairs in insertion order.
func (t *Totals) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, Entry{Key: k, Amount: t.values[k]})
	}
	return out
}

// Map returns an unordered copy.
func (t *Totals) Map() map[string]float64 {
	out := make(map[string]float64, t.Len())
	if t == nil {
		return out
	}
	for k, v := range t.values {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy.
func (t *Totals) Clone() *Totals {
	c := NewTotals()
	for _, e := range t.Entries() {
		c.Add(e.Key, e.Amount)
	}
	return c
}

// MarshalJSON encodes an object whose member order matches insertion order.
func (t *Totals) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range t.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v := e.Amount
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		n, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(n)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

package analytics

import (
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// keySep joins n-gram tokens into a map key. Tokens never contain it.
const keySep = "\x1f"

// Entry is one n-gram with its corpus frequency.
type Entry struct {
	Gram      []string `json:"gram"`
	Frequency int64    `json:"frequency"`
}

// Text returns the n-gram joined by single spaces.
func (e Entry) Text() string {
	return strings.Join(e.Gram, " ")
}

// Table counts n-grams of one fixed size, remembering first-seen order.
type Table struct {
	n      int
	counts *orderedmap.OrderedMap[string, Entry]
}

// NewTable creates an empty table for n-grams of size n (n >= 1).
func NewTable(n int) *Table {
	if n < 1 {
		n = 1
	}
	return &Table{
		n:      n,
		counts: orderedmap.New[string, Entry](),
	}
}

// N returns the n-gram size.
func (t *Table) N() int {
	return t.n
}

// Add counts every window of size n over tokens (stride 1, no wraparound).
// Sequences shorter than n contribute nothing.
func (t *Table) Add(tokens []string) {
	for i := 0; i+t.n <= len(tokens); i++ {
		t.inc(tokens[i:i+t.n], 1)
	}
}

// Merge adds other's counts into t. Grams new to t are appended in other's
// first-seen order. Tables of different sizes are ignored.
func (t *Table) Merge(other *Table) {
	if other == nil || other.n != t.n {
		return
	}
	for pair := other.counts.Oldest(); pair != nil; pair = pair.Next() {
		t.inc(pair.Value.Gram, pair.Value.Frequency)
	}
}

// Count returns the frequency of one n-gram.
func (t *Table) Count(gram ...string) int64 {
	e, _ := t.counts.Get(strings.Join(gram, keySep))
	return e.Frequency
}

// Len returns the number of distinct n-grams.
func (t *Table) Len() int {
	return t.counts.Len()
}

// Sorted exports entries by descending frequency. Ties keep first-seen order.
func (t *Table) Sorted() []Entry {
	out := make([]Entry, 0, t.counts.Len())
	for pair := t.counts.Oldest(); pair != nil; pair = pair.Next() {
		e := pair.Value
		e.Gram = append([]string(nil), e.Gram...)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Frequency > out[j].Frequency
	})
	return out
}

func (t *Table) inc(gram []string, by int64) {
	key := strings.Join(gram, keySep)
	e, ok := t.counts.Get(key)
	if !ok {
		e = Entry{Gram: append([]string(nil), gram...)}
	}
	e.Frequency += by
	t.counts.Set(key, e)
}

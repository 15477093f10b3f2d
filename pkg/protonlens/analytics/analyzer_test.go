package analytics

import (
	"reflect"
	"testing"
)

func TestTableWindows(t *testing.T) {
	tokens := []string{"a", "b", "c", "d"}

	bi := NewTable(2)
	bi.Add(tokens)
	tri := NewTable(3)
	tri.Add(tokens)

	wantBi := [][]string{{"a", "b"}, {"b", "c"}, {"c", "d"}}
	gotBi := grams(bi.Sorted())
	if !reflect.DeepEqual(gotBi, wantBi) {
		t.Errorf("bigrams = %v, want %v", gotBi, wantBi)
	}

	wantTri := [][]string{{"a", "b", "c"}, {"b", "c", "d"}}
	gotTri := grams(tri.Sorted())
	if !reflect.DeepEqual(gotTri, wantTri) {
		t.Errorf("trigrams = %v, want %v", gotTri, wantTri)
	}
}

func TestTableShortSequence(t *testing.T) {
	tri := NewTable(3)
	tri.Add([]string{"a", "b"})
	if tri.Len() != 0 {
		t.Errorf("expected no trigrams from a 2-token sequence, got %d", tri.Len())
	}
}

func TestAnalyzerNoCrossDocumentGrams(t *testing.T) {
	a := NewAnalyzer()
	a.Process([]string{"a", "b"})
	a.Process([]string{"c", "d"})

	if got := a.Bigrams().Count("b", "c"); got != 0 {
		t.Errorf("bigram spanning documents counted %d times", got)
	}
	if a.Trigrams().Len() != 0 {
		t.Errorf("expected no trigrams, got %d", a.Trigrams().Len())
	}
	if a.Bigrams().Len() != 2 {
		t.Errorf("expected 2 bigrams, got %d", a.Bigrams().Len())
	}
}

func TestSortedDescendingWithStableTies(t *testing.T) {
	uni := NewTable(1)
	uni.Add([]string{"wine", "proton", "steam", "proton", "steam", "dxvk"})

	got := uni.Sorted()
	want := []Entry{
		{Gram: []string{"proton"}, Frequency: 2},
		{Gram: []string{"steam"}, Frequency: 2},
		{Gram: []string{"wine"}, Frequency: 1},
		{Gram: []string{"dxvk"}, Frequency: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sorted() = %v, want %v", got, want)
	}
}

func TestSortedReturnsCopies(t *testing.T) {
	uni := NewTable(1)
	uni.Add([]string{"fps"})

	out := uni.Sorted()
	out[0].Gram[0] = "mutated"

	if uni.Count("fps") != 1 {
		t.Error("mutating an export must not affect the table")
	}
}

func TestAnalyzerOrderIndependentCounts(t *testing.T) {
	doc1 := []string{"game", "crash", "game", "crash"}
	doc2 := []string{"crash", "game", "runs", "smooth"}

	forward := NewAnalyzer()
	forward.Process(doc1)
	forward.Process(doc2)

	backward := NewAnalyzer()
	backward.Process(doc2)
	backward.Process(doc1)

	f, b := forward.Snapshot(), backward.Snapshot()
	for name, pair := range map[string][2][]Entry{
		"unigrams": {f.Unigrams, b.Unigrams},
		"bigrams":  {f.Bigrams, b.Bigrams},
		"trigrams": {f.Trigrams, b.Trigrams},
	} {
		if !reflect.DeepEqual(counts(pair[0]), counts(pair[1])) {
			t.Errorf("%s differ by processing order: %v vs %v", name, counts(pair[0]), counts(pair[1]))
		}
	}
	if f.TotalDocs != 2 || b.TotalDocs != 2 {
		t.Errorf("expected 2 docs, got %d and %d", f.TotalDocs, b.TotalDocs)
	}
}

func TestAnalyzerMergeMatchesSequential(t *testing.T) {
	docs := [][]string{
		{"black", "screen", "on", "launch"},
		{"works", "out", "of", "box"},
		{"black", "screen", "again"},
	}

	seq := NewAnalyzer()
	for _, d := range docs {
		seq.Process(d)
	}

	left, right := NewAnalyzer(), NewAnalyzer()
	left.Process(docs[0])
	right.Process(docs[1])
	right.Process(docs[2])
	left.Merge(right)

	s, m := seq.Snapshot(), left.Snapshot()
	if !reflect.DeepEqual(s, m) {
		t.Errorf("merged snapshot differs from sequential:\n%v\n%v", s, m)
	}
	if m.Bigrams[0].Text() != "black screen" || m.Bigrams[0].Frequency != 2 {
		t.Errorf("top bigram = %q x%d, want \"black screen\" x2", m.Bigrams[0].Text(), m.Bigrams[0].Frequency)
	}
}

func TestAnalyzerIgnoresEmptyDocs(t *testing.T) {
	a := NewAnalyzer()
	a.Process(nil)
	if a.Snapshot().TotalDocs != 0 {
		t.Error("empty token sequence should not count as a document")
	}
}

func TestTop(t *testing.T) {
	entries := []Entry{{Frequency: 3}, {Frequency: 2}, {Frequency: 1}}
	if len(Top(entries, 2)) != 2 {
		t.Error("Top(2) should return 2 entries")
	}
	if len(Top(entries, 0)) != 3 {
		t.Error("Top(0) should return all entries")
	}
}

func grams(entries []Entry) [][]string {
	out := make([][]string, len(entries))
	for i, e := range entries {
		out[i] = e.Gram
	}
	return out
}

func counts(entries []Entry) map[string]int64 {
	out := make(map[string]int64, len(entries))
	for _, e := range entries {
		out[e.Text()] = e.Frequency
	}
	return out
}

package stoplist

import (
	"testing"
)

func TestManagerBasic(t *testing.T) {
	stops := []string{"the", "a", "and"}
	mgr := NewManager(stops)

	if !mgr.IsStop("the") {
		t.Error("'the' should be a stopword")
	}

	if mgr.IsStop("hello") {
		t.Error("'hello' should not be a stopword")
	}
}

func TestManagerNormalizesTerms(t *testing.T) {
	mgr := NewManager([]string{" The ", "AND", "", "   "})

	if mgr.Len() != 2 {
		t.Fatalf("Expected 2 stopwords, got %d", mgr.Len())
	}
	if !mgr.IsStop("the") || !mgr.IsStop("and") {
		t.Error("terms should be trimmed and lowercased")
	}
}

func TestManagerAddRemove(t *testing.T) {
	mgr := NewManager([]string{"the"})

	mgr.Add("Test")

	if !mgr.IsStop("test") {
		t.Error("'test' should be stopword after adding")
	}

	mgr.Remove("test")

	if mgr.IsStop("test") {
		t.Error("'test' should not be stopword after removing")
	}
}

func TestManagerAll(t *testing.T) {
	stops := []string{"the", "a", "and"}
	mgr := NewManager(stops)

	all := mgr.All()

	want := []string{"a", "and", "the"}
	if len(all) != len(want) {
		t.Fatalf("Expected %d stopwords, got %d", len(want), len(all))
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, all[i], want[i])
		}
	}
}

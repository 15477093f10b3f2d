package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/protonlens/pkg/protonlens/internalerr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadStoplistDefault(t *testing.T) {
	sl, err := LoadStoplist("")
	if err != nil {
		t.Fatalf("LoadStoplist: %v", err)
	}
	if len(sl.Terms) != 179 {
		t.Errorf("default stoplist has %d terms, want 179", len(sl.Terms))
	}

	found := map[string]bool{}
	for _, term := range sl.Terms {
		found[term] = true
	}
	for _, term := range []string{"the", "very", "don't", "not"} {
		if !found[term] {
			t.Errorf("default stoplist missing %q", term)
		}
	}
	if found["game"] || found["crash"] {
		t.Error("default stoplist should not hold content words")
	}
}

func TestLoadStoplistFile(t *testing.T) {
	path := writeFile(t, "stop.yaml", "terms:\n  - foo\n  - bar\n")

	sl, err := LoadStoplist(path)
	if err != nil {
		t.Fatalf("LoadStoplist: %v", err)
	}
	if len(sl.Terms) != 2 {
		t.Errorf("Terms = %v", sl.Terms)
	}
}

func TestParseStoplistErrors(t *testing.T) {
	if _, err := ParseStoplist([]byte("terms: []\n")); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("empty stoplist: err = %v, want ErrInvalidConfig", err)
	}
	if _, err := ParseStoplist([]byte("terms: [unclosed\n")); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("bad yaml: err = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadTopicsDefault(t *testing.T) {
	tc, err := LoadTopics("")
	if err != nil {
		t.Fatalf("LoadTopics: %v", err)
	}

	tax := tc.Taxonomy()
	if got := tax.Category([]string{"crash", "support"}); got != "bugs, compatibility" {
		t.Errorf("Category = %q", got)
	}
	if got := tax.Category([]string{"hello"}); got != "other" {
		t.Errorf("fallback = %q", got)
	}
}

func TestLoadTopicsFile(t *testing.T) {
	path := writeFile(t, "topics.yaml", `
topics:
  - name: audio
    keywords: [sound, audio, crackling]
  - name: controller
    keywords: [gamepad, controller]
fallback: misc
`)

	tc, err := LoadTopics(path)
	if err != nil {
		t.Fatalf("LoadTopics: %v", err)
	}
	tax := tc.Taxonomy()
	if got := tax.Category([]string{"controller", "crackling"}); got != "audio, controller" {
		t.Errorf("Category = %q", got)
	}
	if got := tax.Category([]string{"crash"}); got != "misc" {
		t.Errorf("fallback = %q, want misc", got)
	}
}

func TestParseTopicsErrors(t *testing.T) {
	tests := map[string]string{
		"no topics":   "topics: []\n",
		"no name":     "topics:\n  - keywords: [a]\n",
		"no keywords": "topics:\n  - name: empty\n",
		"bad yaml":    "topics: [\n",
	}
	for name, data := range tests {
		if _, err := ParseTopics([]byte(data)); !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("%s: err = %v, want ErrInvalidConfig", name, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadStoplist("/nonexistent/stoplist.yaml"); !errors.Is(err, internalerr.ErrMissingResource) {
		t.Errorf("stoplist: err = %v, want ErrMissingResource", err)
	}
	if _, err := LoadTopics("/nonexistent/topics.yaml"); !errors.Is(err, internalerr.ErrMissingResource) {
		t.Errorf("topics: err = %v, want ErrMissingResource", err)
	}
}

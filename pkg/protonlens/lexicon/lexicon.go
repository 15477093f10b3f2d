package lexicon

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon stores irregular inflections that suffix rules cannot recover:
//   - Forms: base -> irregular forms ("mouse" -> ["mice"])
//   - Bases: form -> base forms ("axes" -> ["axis", "axe"])
//
// A form may belong to more than one group; its bases are kept in the order
// the groups were added.
type Lexicon struct {
	// base -> irregular forms (base itself excluded)
	forms map[string][]string

	// irregular form -> bases
	reverseIndex map[string][]string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		forms:        make(map[string][]string),
		reverseIndex: make(map[string][]string),
	}
}

// LoadFromYAML loads exception groups from a YAML file.
//
// Expected format:
//
//	exceptions:
//	  - base: mouse
//	    forms: [mice]
//	  - base: axis
//	    forms: [axes]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes exception groups from YAML bytes.
func Parse(data []byte) (*Lexicon, error) {
	var config struct {
		Exceptions []struct {
			Base  string   `yaml:"base"`
			Forms []string `yaml:"forms"`
		} `yaml:"exceptions"`
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	lex := New()
	for _, entry := range config.Exceptions {
		lex.AddGroup(entry.Base, entry.Forms)
	}
	return lex, nil
}

// AddGroup registers irregular forms for a base. Blank entries and forms
// equal to the base are ignored. Adding the same base twice merges forms.
func (l *Lexicon) AddGroup(base string, forms []string) {
	base = strings.ToLower(strings.TrimSpace(base))
	if base == "" {
		return
	}

	existing := l.forms[base]
	seen := make(map[string]bool, len(existing))
	for _, f := range existing {
		seen[f] = true
	}

	for _, f := range forms {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || f == base || seen[f] {
			continue
		}
		seen[f] = true
		existing = append(existing, f)
		l.reverseIndex[f] = append(l.reverseIndex[f], base)
	}

	l.forms[base] = existing
}

// Bases returns the base forms recorded for an irregular form.
//
// Examples:
//   - Bases("mice") -> ["mouse"], true
//   - Bases("dog") -> nil, false
func (l *Lexicon) Bases(form string) ([]string, bool) {
	bases, ok := l.reverseIndex[strings.ToLower(form)]
	return bases, ok
}

// Forms returns the irregular forms recorded for a base.
func (l *Lexicon) Forms(base string) []string {
	return l.forms[strings.ToLower(base)]
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() LexiconStats {
	total := 0
	for _, forms := range l.forms {
		total += len(forms)
	}
	return LexiconStats{
		Groups:     len(l.forms),
		TotalForms: total,
	}
}

// LexiconStats holds statistics about lexicon contents.
type LexiconStats struct {
	Groups     int // Number of base forms
	TotalForms int // Irregular forms across all groups
}

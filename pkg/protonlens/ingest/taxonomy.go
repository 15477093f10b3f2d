package ingest

import "strings"

// FallbackTopic labels a note that matches no topic.
const FallbackTopic = "other"

// Topic is a named set of trigger words.
type Topic struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DefaultTopics returns the built-in topic keyword sets in declared order.
func DefaultTopics() []Topic {
	return []Topic{
		{Name: "performance", Keywords: []string{"lag", "slow", "fast", "smooth", "runs", "fps"}},
		{Name: "bugs", Keywords: []string{"crash", "bug", "error", "broken", "fail"}},
		{Name: "compatibility", Keywords: []string{"works", "support", "compatible", "install"}},
	}
}

// Taxonomy assigns topic labels by keyword membership.
type Taxonomy struct {
	topics   []topicSet
	fallback string
}

type topicSet struct {
	name     string
	keywords []string
	set      map[string]struct{}
}

// NewTaxonomy creates an empty taxonomy with the "other" fallback.
func NewTaxonomy() *Taxonomy {
	return &Taxonomy{fallback: FallbackTopic}
}

// NewDefaultTaxonomy creates a taxonomy holding DefaultTopics.
func NewDefaultTaxonomy() *Taxonomy {
	t := NewTaxonomy()
	for _, topic := range DefaultTopics() {
		t.AddTopic(topic.Name, topic.Keywords)
	}
	return t
}

// AddTopic appends a topic. Re-adding a name replaces its keywords and keeps
// its position.
func (t *Taxonomy) AddTopic(name string, keywords []string) {
	ts := topicSet{name: name, set: make(map[string]struct{}, len(keywords))}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := ts.set[kw]; dup {
			continue
		}
		ts.set[kw] = struct{}{}
		ts.keywords = append(ts.keywords, kw)
	}

	for i := range t.topics {
		if t.topics[i].name == name {
			t.topics[i] = ts
			return
		}
	}
	t.topics = append(t.topics, ts)
}

// SetFallback changes the label used when nothing matches.
func (t *Taxonomy) SetFallback(label string) {
	if label != "" {
		t.fallback = label
	}
}

// Fallback returns the no-match label.
func (t *Taxonomy) Fallback() string { return t.fallback }

// Topics returns a copy of the configured topics in declared order.
func (t *Taxonomy) Topics() []Topic {
	out := make([]Topic, len(t.topics))
	for i, ts := range t.topics {
		out[i] = Topic{Name: ts.name, Keywords: append([]string(nil), ts.keywords...)}
	}
	return out
}

// AssignTopics returns the topics with at least one keyword present in any
// of the token sequences, in declared order.
func (t *Taxonomy) AssignTopics(seqs ...[]string) []string {
	present := make(map[string]struct{})
	for _, seq := range seqs {
		for _, tok := range seq {
			present[tok] = struct{}{}
		}
	}

	var matched []string
	for _, ts := range t.topics {
		for kw := range ts.set {
			if _, ok := present[kw]; ok {
				matched = append(matched, ts.name)
				break
			}
		}
	}
	return matched
}

// Category joins the matched topics with ", ", or returns the fallback.
func (t *Taxonomy) Category(seqs ...[]string) string {
	matched := t.AssignTopics(seqs...)
	if len(matched) == 0 {
		return t.fallback
	}
	return strings.Join(matched, ", ")
}

// SplitCategory reverses Category.
func SplitCategory(category string) []string {
	if category == "" {
		return nil
	}
	return strings.Split(category, ", ")
}

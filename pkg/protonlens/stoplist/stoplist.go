package stoplist

import (
	"sort"
	"strings"
)

// Manager holds the stop-word set used by the normalizer.
// It is safe for concurrent reads; Add and Remove must not race with IsStop.
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a stoplist from the given terms. Terms are lowercased
// and surrounding whitespace is dropped; blank terms are ignored.
func NewManager(terms []string) *Manager {
	stops := make(map[string]struct{}, len(terms))
	for _, s := range terms {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		stops[s] = struct{}{}
	}
	return &Manager{stops: stops}
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[token]
	return ok
}

// Add adds a token to the stoplist
func (m *Manager) Add(token string) {
	m.stops[strings.ToLower(token)] = struct{}{}
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	delete(m.stops, strings.ToLower(token))
}

// Len returns the number of stopwords.
func (m *Manager) Len() int {
	return len(m.stops)
}

// All returns all stopwords in lexical order.
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

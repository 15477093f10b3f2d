package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/cognicore/protonlens/pkg/protonlens/analytics"
	"github.com/cognicore/protonlens/pkg/protonlens/entities"
	"github.com/cognicore/protonlens/pkg/protonlens/ingest"
	"github.com/cognicore/protonlens/pkg/protonlens/internalerr"
	"github.com/cognicore/protonlens/pkg/protonlens/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu     sync.RWMutex
	runs   map[string]store.Run
	latest string
	notes  map[string][]ingest.Note
	freqs  map[string]map[store.Kind][]analytics.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:  make(map[string]store.Run),
		notes: make(map[string][]ingest.Note),
		freqs: make(map[string]map[store.Kind][]analytics.Entry),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// CreateRun inserts or updates a run.
func (s *Store) CreateRun(ctx context.Context, r store.Run) (store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r = store.PrepareRun(r)
	s.runs[r.ID] = r
	if r.ID > s.latest {
		s.latest = r.ID
	}
	return r, nil
}

// GetRun returns a run by id.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return r, nil
}

// LatestRun returns the run with the greatest id.
func (s *Store) LatestRun(ctx context.Context) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == "" {
		return store.Run{}, fmt.Errorf("run: %w", internalerr.ErrNotFound)
	}
	return s.runs[s.latest], nil
}

// SaveRun validates everything before changing any state.
func (s *Store) SaveRun(ctx context.Context, r store.Run, notes []ingest.Note, tables map[store.Kind][]analytics.Entry) (store.Run, error) {
	for kind, entries := range tables {
		if err := store.ValidateEntries(kind, entries); err != nil {
			return store.Run{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return store.Run{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r = store.PrepareRun(r)
	cp := make([]ingest.Note, len(notes))
	for i, n := range notes {
		cp[i] = copyNote(n)
	}
	freqs := make(map[store.Kind][]analytics.Entry, len(tables))
	for kind, entries := range tables {
		freqs[kind] = copyEntries(entries)
	}

	s.runs[r.ID] = r
	s.notes[r.ID] = cp
	s.freqs[r.ID] = freqs
	if r.ID > s.latest {
		s.latest = r.ID
	}
	return r, nil
}

// SaveNotes replaces the notes of a run.
func (s *Store) SaveNotes(ctx context.Context, runID string, notes []ingest.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	cp := make([]ingest.Note, len(notes))
	for i, n := range notes {
		cp[i] = copyNote(n)
	}
	s.notes[runID] = cp
	return nil
}

// Notes returns the notes of a run in saved order.
func (s *Store) Notes(ctx context.Context, runID string) ([]ingest.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	saved := s.notes[runID]
	out := make([]ingest.Note, len(saved))
	for i, n := range saved {
		out[i] = copyNote(n)
	}
	return out, nil
}

// SaveFrequencies replaces one frequency table of a run.
func (s *Store) SaveFrequencies(ctx context.Context, runID string, kind store.Kind, entries []analytics.Entry) error {
	if err := kind.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	if err := store.ValidateEntries(kind, entries); err != nil {
		return err
	}
	if s.freqs[runID] == nil {
		s.freqs[runID] = make(map[store.Kind][]analytics.Entry)
	}
	s.freqs[runID][kind] = copyEntries(entries)
	return nil
}

// Frequencies returns up to limit entries of a table. A non-positive limit
// returns all of them.
func (s *Store) Frequencies(ctx context.Context, runID string, kind store.Kind, limit int) ([]analytics.Entry, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.freqs[runID][kind]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return copyEntries(entries), nil
}

func copyNote(n ingest.Note) ingest.Note {
	n.Entities = append([]entities.Entity{}, n.Entities...)
	return n
}

func copyEntries(in []analytics.Entry) []analytics.Entry {
	out := make([]analytics.Entry, len(in))
	for i, e := range in {
		out[i] = analytics.Entry{Gram: append([]string(nil), e.Gram...), Frequency: e.Frequency}
	}
	return out
}

package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/protonlens/pkg/protonlens/analytics"
	"github.com/cognicore/protonlens/pkg/protonlens/ingest"
	"github.com/cognicore/protonlens/pkg/protonlens/internalerr"
)

// Store persists analysis runs: the analyzed notes and the n-gram tables
// of each run.
type Store interface {
	Close() error

	// Runs
	CreateRun(ctx context.Context, r Run) (Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
	LatestRun(ctx context.Context) (Run, error)

	// SaveRun writes a run with its notes and frequency tables in one step;
	// on error none of it is visible.
	SaveRun(ctx context.Context, r Run, notes []ingest.Note, tables map[Kind][]analytics.Entry) (Run, error)

	// Notes, in input order
	SaveNotes(ctx context.Context, runID string, notes []ingest.Note) error
	Notes(ctx context.Context, runID string) ([]ingest.Note, error)

	// Frequency tables, in export order
	SaveFrequencies(ctx context.Context, runID string, kind Kind, entries []analytics.Entry) error
	Frequencies(ctx context.Context, runID string, kind Kind, limit int) ([]analytics.Entry, error)
}

// Run is one analysis batch.
type Run struct {
	ID        string
	CreatedAt time.Time
	Games     int
	Reports   int
	Notes     int
	Skipped   int
}

// Kind selects a frequency table.
type Kind string

const (
	KindWord    Kind = "word"
	KindBigram  Kind = "bigram"
	KindTrigram Kind = "trigram"
)

// Kinds lists the tables in n order.
var Kinds = []Kind{KindWord, KindBigram, KindTrigram}

// N returns the gram length stored in the table.
func (k Kind) N() int {
	switch k {
	case KindWord:
		return 1
	case KindBigram:
		return 2
	case KindTrigram:
		return 3
	default:
		return 0
	}
}

// Validate rejects unknown kinds.
func (k Kind) Validate() error {
	if k.N() == 0 {
		return fmt.Errorf("frequency kind %q: %w", string(k), internalerr.ErrInvalidInput)
	}
	return nil
}

// ValidateEntries checks that every entry has the gram length of kind.
func ValidateEntries(kind Kind, entries []analytics.Entry) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	for i, e := range entries {
		if len(e.Gram) != kind.N() {
			return fmt.Errorf("%s entry %d has %d tokens: %w", kind, i, len(e.Gram), internalerr.ErrInvalidInput)
		}
	}
	return nil
}

// KindFor maps a gram length to its table.
func KindFor(n int) (Kind, error) {
	if n < 1 || n > len(Kinds) {
		return "", fmt.Errorf("gram length %d: %w", n, internalerr.ErrInvalidInput)
	}
	return Kinds[n-1], nil
}

var (
	idMu    sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a fresh monotonic ULID string.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// PrepareRun fills in a missing ID and creation time.
func PrepareRun(r Run) Run {
	if r.ID == "" {
		r.ID = NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return r
}

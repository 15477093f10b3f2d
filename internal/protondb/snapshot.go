package protondb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cognicore/protonlens/pkg/protonlens/ingest"
)

// Snapshot is the extracted catalogue and reports, saved between the fetch
// and analyze steps.
type Snapshot struct {
	Games   []ingest.Game                     `json:"games"`
	Reports map[ingest.AppID][]*ingest.Report `json:"reports"`
}

// ReportCount sums reports over all games.
func (s *Snapshot) ReportCount() int {
	n := 0
	for _, rs := range s.Reports {
		n += len(rs)
	}
	return n
}

// Save writes the snapshot as JSON. The file is replaced atomically.
func (s *Snapshot) Save(path string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by Save.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if s.Reports == nil {
		s.Reports = make(map[ingest.AppID][]*ingest.Report)
	}
	return &s, nil
}

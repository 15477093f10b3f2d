package memstore

import (
	"context"
	"testing"

	"github.com/cognicore/protonlens/pkg/protonlens/store"
	"github.com/cognicore/protonlens/pkg/protonlens/store/storetest"
)

func TestMemstoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestNotesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := New()

	run, err := s.CreateRun(ctx, store.Run{})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	notes := storetest.SampleNotes()
	if err := s.SaveNotes(ctx, run.ID, notes); err != nil {
		t.Fatalf("SaveNotes: %v", err)
	}
	notes[1].Entities[0].Text = "mutated"

	got, _ := s.Notes(ctx, run.ID)
	if got[1].Entities[0].Text != "steam deck" {
		t.Errorf("stored note shares entity slice with caller: %v", got[1].Entities)
	}
}

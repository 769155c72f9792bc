package collector

import (
	"path/filepath"
	"testing"

	"ManetLens/internal/model"
	"ManetLens/internal/trace"
)

func TestRecorderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packets.csv")

	r, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	events := []model.PacketEvent{
		{UID: "p1", Time: 0.5, Node: "0", Size: 512},
		{UID: "p1", Time: 0.75, Node: "3S", Size: 512, Received: true},
	}
	for _, e := range events {
		if err := r.Record(e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	loaded, err := trace.LoadPacketEvents(path)
	if err != nil {
		t.Fatalf("LoadPacketEvents failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Loaded %d events, want 2", len(loaded))
	}
	if loaded[0] != events[0] || loaded[1] != events[1] {
		t.Errorf("Round trip mismatch: got %+v, want %+v", loaded, events)
	}
}

func TestRecorderAppendsWithoutDuplicateHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packets.csv")

	r, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	if err := r.Record(model.PacketEvent{UID: "p1", Node: "0", Size: 100}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	r.Close()

	// Reopen and append a second event.
	r, err = NewRecorder(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	if err := r.Record(model.PacketEvent{UID: "p2", Node: "1", Size: 100, Time: 1}); err != nil {
		t.Fatalf("Record after reopen failed: %v", err)
	}
	r.Close()

	loaded, err := trace.LoadPacketEvents(path)
	if err != nil {
		t.Fatalf("LoadPacketEvents failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Loaded %d events, want 2", len(loaded))
	}
}

package digi

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestSimFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run42.sim")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	hits := []SimHit{
		{CellID: 0x123456, EDep: 1.25, Time: 5.5, Position: [3]float64{1, 2, 3}, ParticleRef: 7},
		{CellID: 0x654321, EDep: 0.75, Time: 8.125, Position: [3]float64{-1, 0, 4}, ParticleRef: 9},
	}

	startOfRun := SimEventHeaderStruct{EventType: SIM_START_OF_RUN, EventRunNb: 42}
	if err := WriteEventToFile(file, startOfRun, nil); err != nil {
		t.Fatalf("WriteEventToFile: %v", err)
	}
	physics := SimEventHeaderStruct{EventType: SIM_PHYSICS_EVENT, EventRunNb: 42, EventId: 1,
		EventTimestampSec: 1700000000, EventTimestampUsec: 123}
	if err := WriteEventToFile(file, physics, hits); err != nil {
		t.Fatalf("WriteEventToFile: %v", err)
	}
	file.Close()

	file, err = os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()

	header, payload, err := ReadEventFromFile(file)
	if err != nil {
		t.Fatalf("ReadEventFromFile: %v", err)
	}
	if ValidEvent(header) {
		t.Error("start-of-run record accepted as digitizable event")
	}
	if header.EventRunNb != 42 || header.EventNHits != 0 || len(payload) != 0 {
		t.Errorf("unexpected start-of-run header: %+v", header)
	}

	header, payload, err = ReadEventFromFile(file)
	if err != nil {
		t.Fatalf("ReadEventFromFile: %v", err)
	}
	if !ValidEvent(header) {
		t.Error("physics event rejected")
	}
	if header.EventId != 1 || header.EventTimestampSec != 1700000000 || header.EventTimestampUsec != 123 {
		t.Errorf("unexpected physics header: %+v", header)
	}

	decoded, err := DecodeSimHits(header, payload)
	if err != nil {
		t.Fatalf("DecodeSimHits: %v", err)
	}
	if len(decoded) != len(hits) {
		t.Fatalf("decoded %d hits, want %d", len(decoded), len(hits))
	}
	for i := range hits {
		if decoded[i] != hits[i] {
			t.Errorf("hit %d: got %+v, want %+v", i, decoded[i], hits[i])
		}
	}

	if _, _, err = ReadEventFromFile(file); err != io.EOF {
		t.Errorf("expected EOF after the last event, got %v", err)
	}
}

func TestReadEventRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.sim")
	if err := os.WriteFile(path, make([]byte, 64), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()

	if _, _, err := ReadEventFromFile(file); err == nil {
		t.Error("expected an error for a corrupted magic word")
	}
}

func TestDecodeSimHitsShortPayload(t *testing.T) {
	header := SimEventHeaderStruct{EventNHits: 3}
	if _, err := DecodeSimHits(header, make([]byte, 10)); err == nil {
		t.Error("expected an error for a truncated payload")
	}
}

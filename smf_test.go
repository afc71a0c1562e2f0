package keyseq

import (
	"bytes"
	"testing"
)

func TestSMFRoundTrip(t *testing.T) {
	events := []Event{
		{Tick: 0, Note: 0x80 | 60},
		{Tick: 0, Note: 0x80 | 64},
		{Tick: 20, Note: 60},
		{Tick: 21, Note: 64},
		{Tick: 300, Note: 0x80 | 72},
		{Tick: 364, Note: 72},
	}
	var buf bytes.Buffer
	if err := ExportSMF(&buf, events, 140); err != nil {
		t.Fatalf("export: %v", err)
	}
	got, tempo, err := ImportSMF(&buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if tempo != 140 {
		t.Fatalf("tempo = %d, want 140", tempo)
	}
	if len(got) != len(events) {
		t.Fatalf("got %d events, want %d: %+v", len(got), len(events), got)
	}
	for i := range events {
		if got[i] != events[i] {
			t.Fatalf("event %d = %+v, want %+v", i, got[i], events[i])
		}
	}
}

func TestExportSortsUnsortedLog(t *testing.T) {
	events := []Event{{Tick: 50, Note: 0x80 | 61}, {Tick: 10, Note: 0x80 | 60}}
	var buf bytes.Buffer
	if err := ExportSMF(&buf, events, 100); err != nil {
		t.Fatalf("export: %v", err)
	}
	got, _, err := ImportSMF(&buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got) != 2 || got[0].Tick != 10 || got[1].Tick != 50 {
		t.Fatalf("got %+v", got)
	}
}

func TestTempoConversionClamps(t *testing.T) {
	if got := TempoFromBPM(TempoBPM(200)); got != 200 {
		t.Fatalf("round trip tempo = %d", got)
	}
	if TempoFromBPM(1e6) != 10 || TempoFromBPM(1) != 250 {
		t.Fatalf("tempo not clamped")
	}
	if TempoFromBPM(0) != 140 {
		t.Fatalf("zero bpm should give the default tempo")
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	if _, _, err := ImportSMF(bytes.NewReader([]byte("not a midi file"))); err == nil {
		t.Fatalf("expected an error")
	}
}

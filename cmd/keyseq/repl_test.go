package main

import (
	"strings"
	"testing"

	"github.com/cbegin/keyseq-go"
)

func TestEval(t *testing.T) {
	pl, err := keyseq.NewPlayer()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		line    string
		wantErr bool
	}{
		{"on 60", false},
		{"off 60", false},
		{"on 300", true},
		{"on", true},
		{"volume 4", false},
		{"volume 9", true},
		{"fm 2 3", false},
		{"bip 25", false},
		{"faster", false},
		{"rec", false},
		{"warp", true},
	}
	for _, tt := range tests {
		_, err := eval(pl, tt.line)
		if (err != nil) != tt.wantErr {
			t.Errorf("eval(%q) err = %v, wantErr %v", tt.line, err, tt.wantErr)
		}
	}
	if pl.MasterVolume() != 4 {
		t.Fatalf("volume = %d, want 4", pl.MasterVolume())
	}
	out, err := eval(pl, "status")
	if err != nil || !strings.Contains(out, "tempo=140") {
		t.Fatalf("status = %q, %v", out, err)
	}
	out, _ = eval(pl, "help")
	if !strings.Contains(out, "metronome") {
		t.Fatalf("help does not list sequencer commands: %q", out)
	}
}

package keyseq

import (
	"bytes"
	"errors"
	"testing"
)

const phrase = `
cmd("clear")
cmd("rec")
key(60, true)
wait(10)
key(60, false)
key(64, true)
wait(10)
key(64, false)
cmd("stop")
cmd("first")
cmd("play")
play_until_idle()
`

func TestRenderIsDeterministic(t *testing.T) {
	for _, mode := range []SynthMode{SynthModeAdditive, SynthModeFM, SynthModeWavetable} {
		t.Run(string(mode), func(t *testing.T) {
			a, err := Render(mode, phrase, 1)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			b, err := Render(mode, phrase, 1)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if !bytes.Equal(a, b) {
				t.Fatalf("renders differ")
			}
			if len(a) < NativeRate {
				t.Fatalf("rendered %d samples, want at least %d", len(a), NativeRate)
			}
			var loud int
			for _, s := range a {
				if s != 128 {
					loud++
				}
			}
			if loud == 0 {
				t.Fatalf("render is silent")
			}
		})
	}
}

func TestRenderModesDiffer(t *testing.T) {
	a, _ := Render(SynthModeAdditive, phrase, 0.5)
	b, _ := Render(SynthModeFM, phrase, 0.5)
	if bytes.Equal(a, b) {
		t.Fatalf("additive and fm renders are identical")
	}
}

func TestRenderScriptErrors(t *testing.T) {
	if _, err := Render(SynthModeAdditive, `cmd("warp")`, 0); err == nil {
		t.Fatalf("expected an error for an unknown command")
	}
	if _, err := Render(SynthModeAdditive, `key(`, 0); err == nil {
		t.Fatalf("expected a syntax error")
	}
	if _, err := Render("chiptune", "", 0); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("err = %v, want ErrUnknownMode", err)
	}
}

func TestRenderSilenceWithoutScript(t *testing.T) {
	seconds := 0.1
	out, err := Render(SynthModeAdditive, "", seconds)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(out) != int(seconds*NativeRate) {
		t.Fatalf("len = %d", len(out))
	}
	for i, s := range out {
		if s != 128 {
			t.Fatalf("sample %d = %d, want 128", i, s)
		}
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	samples := []uint8{128, 200, 50, 128, 255, 0}
	var buf bytes.Buffer
	if err := EncodeWAV(&buf, samples, NativeRate); err != nil {
		t.Fatalf("encode: %v", err)
	}
	b := buf.Bytes()
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		t.Fatalf("bad header %q", b[:12])
	}
	if len(b) != 44+len(samples) {
		t.Fatalf("wav size = %d, want %d", len(b), 44+len(samples))
	}
}

func TestDecodeInstrumentWAV(t *testing.T) {
	samples := []uint8{128, 200, 50, 128, 255, 0}
	var buf bytes.Buffer
	if err := EncodeWAV(&buf, samples, NativeRate); err != nil {
		t.Fatalf("encode: %v", err)
	}
	in, err := DecodeInstrumentWAV(bytes.NewReader(buf.Bytes()), 1, 5, 48)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(in.Data) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(in.Data), len(samples))
	}
	if in.Data[0] != in.Data[3] || in.Data[1] == in.Data[2] || in.Data[4] == in.Data[5] {
		t.Fatalf("decoded data %v does not follow the input", in.Data)
	}
	if in.LoopStart != 1 || in.LoopEnd != 5 || in.RootNote != 48 {
		t.Fatalf("instrument = %+v", in)
	}
}

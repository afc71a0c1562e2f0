package wavetable

import "testing"

func TestRootNotePlaysAtUnitSpeed(t *testing.T) {
	e := New(DefaultParams())
	if got := e.PitchStep(e.Instrument().RootNote); got != 1<<fracBits {
		t.Fatalf("root step = %d, want %d", got, 1<<fracBits)
	}
	if got := e.PitchStep(e.Instrument().RootNote + 12); got != 2<<fracBits {
		t.Fatalf("octave step = %d, want %d", got, 2<<fracBits)
	}
}

func TestLoopWrapsEverySample(t *testing.T) {
	e := New(DefaultParams())
	e.SetInstrument(Instrument{
		Data:      []byte{10, 20, 30, 40, 50, 60},
		LoopStart: 2,
		LoopEnd:   5,
		RootNote:  48,
	})
	e.NoteOn(48)
	want := []uint32{1, 2, 3, 4, 2, 3, 4, 2, 3}
	for i, w := range want {
		e.Mix()
		if got := e.voices[0].pos >> fracBits; got != w {
			t.Fatalf("sample %d: pos = %d, want %d", i, got, w)
		}
	}
}

func TestFastStepStaysInsideLoop(t *testing.T) {
	e := New(DefaultParams())
	in := DefaultInstrument()
	e.SetInstrument(in)
	e.NoteOn(120)
	for i := 0; i < 10000; i++ {
		e.Mix()
		v := e.voices[0]
		if v.pos>>fracBits >= in.LoopEnd {
			t.Fatalf("sample %d: cursor %d past loop end %d", i, v.pos>>fracBits, in.LoopEnd)
		}
	}
}

func TestLinearReleaseFreesVoice(t *testing.T) {
	p := DefaultParams()
	e := New(p)
	e.NoteOn(60)
	for i := 0; i < 100; i++ {
		e.Tick()
	}
	if e.voices[0].level != MaxLevel {
		t.Fatalf("level decayed before note-off: %d", e.voices[0].level)
	}
	e.NoteOff(60)
	ticks := (MaxLevel + int(p.Release) - 1) / int(p.Release)
	for i := 0; i < ticks-1; i++ {
		e.Tick()
		if e.ActiveVoiceCount() != 1 {
			t.Fatalf("voice freed early at tick %d", i)
		}
	}
	e.Tick()
	if e.ActiveVoiceCount() != 0 {
		t.Fatalf("voice still active after %d ticks", ticks)
	}
}

func TestSetInstrumentNormalizesLoop(t *testing.T) {
	e := New(DefaultParams())
	e.SetInstrument(Instrument{Data: []byte{1, 2, 3}, LoopStart: 9, LoopEnd: 40})
	in := e.Instrument()
	if in.LoopStart != 0 || in.LoopEnd != 3 {
		t.Fatalf("loop = [%d, %d), want [0, 3)", in.LoopStart, in.LoopEnd)
	}
	e.SetInstrument(Instrument{})
	if len(e.Instrument().Data) == 0 {
		t.Fatalf("empty instrument should fall back to the default")
	}
}

func TestSetInstrumentCutsVoices(t *testing.T) {
	e := New(DefaultParams())
	e.NoteOn(60)
	e.SetInstrument(DefaultInstrument())
	if e.ActiveVoiceCount() != 0 {
		t.Fatalf("voices survived an instrument swap")
	}
}

func TestStealOnFullPool(t *testing.T) {
	e := New(DefaultParams())
	var stolen bool
	for n := uint8(60); n < 65; n++ {
		stolen = e.NoteOn(n)
	}
	if !stolen || e.ActiveVoiceCount() != 4 {
		t.Fatalf("stolen=%v active=%d, want true and 4", stolen, e.ActiveVoiceCount())
	}
}

func TestMixStaysInRange(t *testing.T) {
	e := New(DefaultParams())
	for _, n := range []uint8{36, 36, 36, 36} {
		e.NoteOn(n)
	}
	var nonZero bool
	for i := 0; i < 4000; i++ {
		s := e.Mix()
		if s > 127 || s < -128 {
			t.Fatalf("mix %d outside int8 range", s)
		}
		if s != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatalf("expected non-zero output")
	}
}

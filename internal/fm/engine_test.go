package fm

import (
	"testing"

	"github.com/cbegin/keyseq-go/internal/envelope"
)

func render(e *Engine, ticks, samplesPerTick int) []int32 {
	var out []int32
	for t := 0; t < ticks; t++ {
		e.Tick()
		for i := 0; i < samplesPerTick; i++ {
			out = append(out, e.Mix())
		}
	}
	return out
}

func TestEngineGeneratesSignal(t *testing.T) {
	e := New(DefaultParams())
	e.NoteOn(60)
	var nonZero bool
	for _, s := range render(e, 10, 200) {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatalf("expected non-zero output")
	}
}

func TestModulatorStepFollowsRatio(t *testing.T) {
	for _, tc := range []struct {
		ratio uint8
		num   uint32
	}{
		{1, 1},
		{2, 2},
		{3, 3},
		{8, 8},
	} {
		e := New(DefaultParams())
		e.SetFMParams(tc.ratio, 2)
		e.NoteOn(57)
		v := e.voices[0]
		if want := v.step * tc.num / RatioDenominator; v.modStep != want {
			t.Errorf("ratio %d: modStep = %d, want %d", tc.ratio, v.modStep, want)
		}
		if v.depth != 2 {
			t.Errorf("ratio %d: depth = %d, want 2", tc.ratio, v.depth)
		}
	}
}

func TestFMParamsApplyToLaterNotesOnly(t *testing.T) {
	e := New(DefaultParams())
	e.NoteOn(60)
	before := e.voices[0].modStep
	e.SetFMParams(7, 0)
	if e.voices[0].modStep != before {
		t.Fatalf("sounding voice changed modulator step")
	}
	e.NoteOn(60)
	if e.voices[1].modStep == before {
		t.Fatalf("new voice should use the new ratio")
	}
}

func TestFMParamsAreClamped(t *testing.T) {
	e := New(DefaultParams())
	e.SetFMParams(0, 200)
	ratio, depth := e.FMParams()
	if ratio != 1 || depth != MaxDepth {
		t.Fatalf("FMParams = (%d, %d), want (1, %d)", ratio, depth, MaxDepth)
	}
	e.SetFMParams(255, 0)
	if ratio, _ := e.FMParams(); ratio != MaxRatio {
		t.Fatalf("ratio = %d, want %d", ratio, MaxRatio)
	}
}

func TestDepthChangesTimbre(t *testing.T) {
	shallow := New(DefaultParams())
	shallow.SetFMParams(4, MaxDepth)
	shallow.NoteOn(60)
	deep := New(DefaultParams())
	deep.SetFMParams(4, 0)
	deep.NoteOn(60)
	a := render(shallow, 8, 100)
	b := render(deep, 8, 100)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("modulation depth should change the output")
	}
}

func TestCarrierReleaseFreesVoice(t *testing.T) {
	e := New(DefaultParams())
	e.NoteOn(60)
	render(e, 30, 1)
	e.NoteOff(60)
	if e.voices[0].modEnv.State() != envelope.Release {
		t.Fatalf("modulator should release with the carrier")
	}
	render(e, 40, 1)
	if e.ActiveVoiceCount() != 0 {
		t.Fatalf("voice still active after release")
	}
}

func TestStealKeepsPoolSize(t *testing.T) {
	e := New(DefaultParams())
	for _, n := range []uint8{60, 61, 62, 63, 64, 65} {
		e.NoteOn(n)
	}
	if got := e.ActiveVoiceCount(); got != 4 {
		t.Fatalf("active voices = %d, want 4", got)
	}
}

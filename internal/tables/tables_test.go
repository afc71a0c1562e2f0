package tables

import "testing"

func TestStepDoublesPerOctave(t *testing.T) {
	for n := uint8(0); n < 12; n++ {
		base := Step(n)
		if got, want := Step(n+12), base*2; got != want {
			t.Fatalf("Step(%d) = %d, want %d", n+12, got, want)
		}
		if got, want := Step(n+36), base*8; got != want {
			t.Fatalf("Step(%d) = %d, want %d", n+36, got, want)
		}
	}
}

func TestStepRisesWithinOctave(t *testing.T) {
	for n := uint8(1); n < 12; n++ {
		if Step(n) <= Step(n-1) {
			t.Fatalf("Step(%d)=%d not above Step(%d)=%d", n, Step(n), n-1, Step(n-1))
		}
	}
}

func TestSineIsAntisymmetric(t *testing.T) {
	if Sine[0] != 0 || Sine[255] != 0 {
		t.Fatalf("sine table should start and end at zero")
	}
	for i := 1; i < 128; i++ {
		if Sine[i] <= 0 {
			t.Fatalf("first half should be positive at %d: %d", i, Sine[i])
		}
	}
	for i := 128; i < 255; i++ {
		if Sine[i] >= 0 {
			t.Fatalf("second half should be negative at %d: %d", i, Sine[i])
		}
	}
}

func TestSineAtUsesHighByte(t *testing.T) {
	if got := SineAt(64 << 8); got != int32(Sine[64]) {
		t.Fatalf("SineAt(64<<8) = %d, want %d", got, Sine[64])
	}
	if got := SineAt(0x1_40_ff); got != int32(Sine[0x40]) {
		t.Fatalf("SineAt should ignore bits above 16 and the low byte, got %d", got)
	}
}

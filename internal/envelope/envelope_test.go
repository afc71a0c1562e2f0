package envelope

import "testing"

var organ = Params{Attack: 70, Decay: 5, Sustain: 100, Release: 10, Max: 255}

func TestAttackRisesToMaxThenDecaysToSustain(t *testing.T) {
	var e Envelope
	e.Start(organ)
	prev := e.Level()
	for e.State() == Attack {
		e.Advance()
		if e.Level() < prev {
			t.Fatalf("attack not monotonic: %d after %d", e.Level(), prev)
		}
		prev = e.Level()
	}
	if e.State() != Decay || e.Level() != 255 {
		t.Fatalf("after attack state=%v level=%d, want decay at 255", e.State(), e.Level())
	}
	for e.State() == Decay {
		e.Advance()
		if e.Level() > prev {
			t.Fatalf("decay not monotonic: %d after %d", e.Level(), prev)
		}
		prev = e.Level()
	}
	if e.State() != Sustain || e.Level() != 100 {
		t.Fatalf("after decay state=%v level=%d, want sustain at 100", e.State(), e.Level())
	}
	for i := 0; i < 50; i++ {
		e.Advance()
	}
	if e.State() != Sustain || e.Level() != 100 {
		t.Fatalf("sustain should hold, got state=%v level=%d", e.State(), e.Level())
	}
}

func TestReleaseReachesIdleWithinBound(t *testing.T) {
	for _, tc := range []struct {
		name   string
		params Params
		ticks  int
	}{
		{"from sustain", organ, 40},
		{"mid attack", organ, 2},
		{"slow release", Params{Attack: 20, Decay: 2, Sustain: 90, Release: 3, Max: 127}, 30},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var e Envelope
			e.Start(tc.params)
			for i := 0; i < tc.ticks; i++ {
				e.Advance()
			}
			vel := int(e.Level())
			r := int(tc.params.Release)
			bound := (vel + r - 1) / r
			e.Release()
			n := 0
			for e.State() != Idle {
				e.Advance()
				n++
				if n > bound {
					t.Fatalf("release took more than %d ticks from level %d", bound, vel)
				}
			}
			if e.Level() != 0 {
				t.Fatalf("idle envelope level = %d, want 0", e.Level())
			}
		})
	}
}

func TestZeroRatesAreRaised(t *testing.T) {
	var e Envelope
	e.Start(Params{Max: 4})
	for i := 0; i < 4; i++ {
		e.Advance()
	}
	if e.State() != Decay {
		t.Fatalf("zero attack rate should still progress, state=%v", e.State())
	}
}

func TestReleaseOnIdleIsNoop(t *testing.T) {
	var e Envelope
	e.Release()
	if e.State() != Idle {
		t.Fatalf("release on idle envelope changed state to %v", e.State())
	}
}

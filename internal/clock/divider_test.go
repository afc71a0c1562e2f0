package clock

import "testing"

func TestDividerFiresEveryPeriod(t *testing.T) {
	d := NewDivider(3)
	var fired []int
	for i := 0; i < 10; i++ {
		if d.Next() {
			fired = append(fired, i)
		}
	}
	want := []int{0, 3, 6, 9}
	if len(fired) != len(want) {
		t.Fatalf("fired = %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("fired = %v, want %v", fired, want)
		}
	}
}

func TestDividerZeroPeriodFiresAlways(t *testing.T) {
	d := NewDivider(0)
	for i := 0; i < 5; i++ {
		if !d.Next() {
			t.Fatalf("call %d did not fire", i)
		}
	}
}

func TestSetPeriodShortensPendingCount(t *testing.T) {
	d := NewDivider(100)
	d.Next()
	d.SetPeriod(2)
	if d.Next() {
		t.Fatalf("fired too early")
	}
	if !d.Next() {
		t.Fatalf("expected fire after shortened period")
	}
}

func TestRatio(t *testing.T) {
	for _, tc := range []struct {
		rate, target int
		want         uint32
	}{
		{SampleRate, TickRate, 208},
		{48000, 100, 480},
		{100, 200, 1},
		{0, 10, 1},
	} {
		if got := Ratio(tc.rate, tc.target); got != tc.want {
			t.Errorf("Ratio(%d, %d) = %d, want %d", tc.rate, tc.target, got, tc.want)
		}
	}
}

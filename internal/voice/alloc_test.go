package voice

import "testing"

func TestPickPrefersFreeSlot(t *testing.T) {
	a := NewAllocator(4)
	busy := []bool{true, false, true, false}
	slot, stolen := a.Pick(func(i int) bool { return busy[i] })
	if slot != 1 || stolen {
		t.Fatalf("Pick = (%d, %v), want (1, false)", slot, stolen)
	}
}

func TestPickStealsRoundRobin(t *testing.T) {
	a := NewAllocator(3)
	full := func(int) bool { return true }
	var got []int
	for i := 0; i < 7; i++ {
		slot, stolen := a.Pick(full)
		if !stolen {
			t.Fatalf("expected a steal on a full pool")
		}
		got = append(got, slot)
	}
	want := []int{0, 1, 2, 0, 1, 2, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("steal order = %v, want %v", got, want)
		}
	}
}

func TestZeroSizeAllocatorStillPicks(t *testing.T) {
	a := NewAllocator(0)
	if a.Size() != 1 {
		t.Fatalf("size = %d, want 1", a.Size())
	}
	slot, _ := a.Pick(func(int) bool { return true })
	if slot != 0 {
		t.Fatalf("slot = %d, want 0", slot)
	}
}

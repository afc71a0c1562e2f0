package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

type constSource float32

func (c constSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = float32(c)
	}
}

func TestStreamReaderWritesWholeFrames(t *testing.T) {
	r := NewStreamReader(constSource(0.25))
	p := make([]byte, 8*3+5)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 8*3 {
		t.Fatalf("n = %d, want %d", n, 8*3)
	}
	for i := 0; i < n; i += 4 {
		if v := math.Float32frombits(binary.LittleEndian.Uint32(p[i:])); v != 0.25 {
			t.Fatalf("sample %d = %f", i/4, v)
		}
	}
}

func TestStreamReaderShortBuffer(t *testing.T) {
	r := NewStreamReader(constSource(1))
	n, err := r.Read(make([]byte, 7))
	if n != 0 || err != nil {
		t.Fatalf("Read = (%d, %v), want (0, nil)", n, err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("nope", 48000, constSource(0))
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("err = %v, want ErrUnknownBackend", err)
	}
}

func TestBuiltinBackendsRegistered(t *testing.T) {
	have := map[string]bool{}
	for _, b := range Backends() {
		have[b] = true
	}
	if !have["ebiten"] || !have["oto"] {
		t.Fatalf("backends = %v", Backends())
	}
}

func TestSharedContextCreatedOnce(t *testing.T) {
	var sc sharedContext[*int]
	created := 0
	create := func(rate int) (*int, int, error) {
		created++
		v := rate
		return &v, rate, nil
	}
	first, err := sc.get(48000, create)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	again, err := sc.get(48000, create)
	if err != nil || again != first {
		t.Fatalf("reopen = (%v, %v), want the same context", again, err)
	}
	if created != 1 {
		t.Fatalf("context created %d times", created)
	}
	if _, err := sc.get(44100, create); err == nil {
		t.Fatalf("expected an error for a second sample rate")
	}
}

func TestSharedContextKeepsCreateError(t *testing.T) {
	var sc sharedContext[*int]
	boom := errors.New("no device")
	create := func(int) (*int, int, error) { return nil, 0, boom }
	for i := 0; i < 2; i++ {
		if _, err := sc.get(48000, create); !errors.Is(err, boom) {
			t.Fatalf("err = %v, want %v", err, boom)
		}
	}
}

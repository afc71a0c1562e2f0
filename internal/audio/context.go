package audio

import (
	"fmt"
	"sync"
)

// sharedContext holds the one output context a library allows per process.
// Devices come and go; the context is created once and never released.
type sharedContext[T any] struct {
	once sync.Once
	ctx  T
	rate int
	err  error
}

// get returns the context, creating it at sampleRate on first use. create
// reports the rate the context actually runs at.
func (s *sharedContext[T]) get(sampleRate int, create func(rate int) (T, int, error)) (T, error) {
	s.once.Do(func() {
		s.ctx, s.rate, s.err = create(sampleRate)
	})
	if s.err != nil {
		var zero T
		return zero, s.err
	}
	if s.rate != sampleRate {
		var zero T
		return zero, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", s.rate, sampleRate)
	}
	return s.ctx, nil
}

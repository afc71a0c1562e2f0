// Package audio hosts a SampleSource on a sound device.
package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// Channels is the frame layout handed to every device: interleaved stereo.
const Channels = 2

// SampleSource fills interleaved stereo float32 frames.
type SampleSource interface {
	Process(dst []float32)
}

// StreamReader adapts a SampleSource to an io.Reader of little-endian
// float32 stereo frames.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / (4 * Channels)
	if frames == 0 {
		return 0, nil
	}
	need := frames * Channels
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i, v := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return need * 4, nil
}

func (r *StreamReader) Close() error { return nil }

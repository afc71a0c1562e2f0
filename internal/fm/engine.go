// Package fm implements frequency-modulated voices on the shared sine table.
package fm

import (
	"sync/atomic"

	"github.com/cbegin/keyseq-go/internal/envelope"
	"github.com/cbegin/keyseq-go/internal/tables"
	"github.com/cbegin/keyseq-go/internal/voice"
)

const (
	maxVoices = 16

	// RatioDenominator scales the harmonic ratio: the modulator runs at
	// ratio/RatioDenominator times the carrier frequency.
	RatioDenominator = 2
	MaxRatio         = 32
	MaxDepth         = 15
)

type Params struct {
	Voices    int
	Carrier   envelope.Params
	Modulator envelope.Params
	Ratio     uint8 // modulator/carrier in half steps; 2 = unison
	Depth     uint8 // modulation depth as a right shift; 0 = deepest
}

func DefaultParams() Params {
	return Params{
		Voices:    4,
		Carrier:   envelope.Params{Attack: 20, Decay: 2, Sustain: 90, Release: 4, Max: 127},
		Modulator: envelope.Params{Attack: 30, Decay: 3, Sustain: 40, Release: 6, Max: 127},
		Ratio:     4,
		Depth:     1,
	}
}

type channel struct {
	note     uint8
	phase    uint32
	step     uint32
	modPhase uint32
	modStep  uint32
	depth    uint8
	env      envelope.Envelope
	modEnv   envelope.Envelope
}

// Engine is a two-operator FM voice pool: one modulator oscillator bends the
// carrier's table read.
type Engine struct {
	params Params
	voices []channel
	alloc  voice.Allocator
	div    int32
	ratio  atomic.Uint32
	depth  atomic.Uint32
}

func New(params Params) *Engine {
	if params.Voices <= 0 {
		params.Voices = 4
	}
	if params.Voices > maxVoices {
		params.Voices = maxVoices
	}
	if params.Carrier.Max <= 0 {
		params.Carrier.Max = 127
	}
	e := &Engine{
		params: params,
		voices: make([]channel, params.Voices),
		alloc:  voice.NewAllocator(params.Voices),
		div:    int32(params.Carrier.Max+1) * int32(params.Voices),
	}
	e.SetFMParams(params.Ratio, params.Depth)
	return e
}

// SetFMParams changes the harmonic ratio and depth used by subsequently
// triggered voices. Safe to call from any goroutine.
func (e *Engine) SetFMParams(ratio, depth uint8) {
	if ratio == 0 {
		ratio = 1
	}
	if ratio > MaxRatio {
		ratio = MaxRatio
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}
	e.ratio.Store(uint32(ratio))
	e.depth.Store(uint32(depth))
}

// FMParams returns the current ratio and depth.
func (e *Engine) FMParams() (ratio, depth uint8) {
	return uint8(e.ratio.Load()), uint8(e.depth.Load())
}

func (e *Engine) NoteOn(note uint8) (stolen bool) {
	if note == 0 {
		return false
	}
	slot, stolen := e.alloc.Pick(e.busy)
	v := &e.voices[slot]
	v.note = 0
	v.step = tables.Step(note)
	v.modStep = v.step * e.ratio.Load() / RatioDenominator
	v.depth = uint8(e.depth.Load())
	v.phase = 0
	v.modPhase = 0
	v.env.Start(e.params.Carrier)
	v.modEnv.Start(e.params.Modulator)
	v.note = note
	return stolen
}

func (e *Engine) NoteOff(note uint8) {
	if note == 0 {
		return
	}
	for i := range e.voices {
		v := &e.voices[i]
		if v.note == note {
			v.env.Release()
			v.modEnv.Release()
		}
	}
}

func (e *Engine) AllOff() {
	for i := range e.voices {
		v := &e.voices[i]
		v.note = 0
		v.env.Kill()
		v.modEnv.Kill()
	}
}

// Tick advances both envelopes of every voice. The carrier decides when the
// voice is done.
func (e *Engine) Tick() {
	for i := range e.voices {
		v := &e.voices[i]
		if v.note == 0 {
			continue
		}
		v.env.Advance()
		v.modEnv.Advance()
		if v.env.State() == envelope.Idle {
			v.note = 0
		}
	}
}

func (e *Engine) Mix() int32 {
	var acc int32
	for i := range e.voices {
		v := &e.voices[i]
		if v.note == 0 {
			continue
		}
		mod := (tables.SineAt(v.modPhase) * v.modEnv.Level()) >> v.depth
		acc += v.env.Level() * tables.SineAt(v.phase+uint32(mod))
		v.phase = (v.phase + v.step) & 0xffff
		v.modPhase = (v.modPhase + v.modStep) & 0xffff
	}
	return acc / e.div
}

func (e *Engine) ActiveVoiceCount() int {
	n := 0
	for i := range e.voices {
		if e.voices[i].note != 0 {
			n++
		}
	}
	return n
}

func (e *Engine) Notes(dst []uint8) []uint8 {
	for i := range e.voices {
		dst = append(dst, e.voices[i].note)
	}
	return dst
}

func (e *Engine) busy(i int) bool { return e.voices[i].note != 0 }

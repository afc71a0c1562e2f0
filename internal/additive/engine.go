// Package additive is the sine-mixing voice engine: every voice is a single
// table oscillator shaped by one ADSR envelope.
package additive

import (
	"github.com/cbegin/keyseq-go/internal/envelope"
	"github.com/cbegin/keyseq-go/internal/tables"
	"github.com/cbegin/keyseq-go/internal/voice"
)

const maxVoices = 16

type Params struct {
	Voices   int
	Envelope envelope.Params
}

func DefaultParams() Params {
	return Params{
		Voices:   4,
		Envelope: envelope.Params{Attack: 70, Decay: 5, Sustain: 100, Release: 10, Max: 255},
	}
}

type channel struct {
	note  uint8
	phase uint32
	step  uint32
	env   envelope.Envelope
}

type Engine struct {
	params Params
	voices []channel
	alloc  voice.Allocator
	div    int32
}

func New(params Params) *Engine {
	if params.Voices <= 0 {
		params.Voices = 4
	}
	if params.Voices > maxVoices {
		params.Voices = maxVoices
	}
	if params.Envelope.Max <= 0 {
		params.Envelope.Max = 255
	}
	return &Engine{
		params: params,
		voices: make([]channel, params.Voices),
		alloc:  voice.NewAllocator(params.Voices),
		div:    int32(params.Envelope.Max+1) * int32(params.Voices),
	}
}

// NoteOn starts note on a free voice, stealing one when the pool is full.
func (e *Engine) NoteOn(note uint8) (stolen bool) {
	if note == 0 {
		return false
	}
	slot, stolen := e.alloc.Pick(e.busy)
	v := &e.voices[slot]
	v.note = 0
	v.step = tables.Step(note)
	v.phase = 0
	v.env.Start(e.params.Envelope)
	v.note = note
	return stolen
}

func (e *Engine) NoteOff(note uint8) {
	if note == 0 {
		return
	}
	for i := range e.voices {
		if e.voices[i].note == note {
			e.voices[i].env.Release()
		}
	}
}

func (e *Engine) AllOff() {
	for i := range e.voices {
		e.voices[i].note = 0
		e.voices[i].env.Kill()
	}
}

// Tick advances every envelope and frees voices that went idle.
func (e *Engine) Tick() {
	for i := range e.voices {
		v := &e.voices[i]
		if v.note == 0 {
			continue
		}
		v.env.Advance()
		if v.env.State() == envelope.Idle {
			v.note = 0
		}
	}
}

// Mix renders one sample of all active voices.
func (e *Engine) Mix() int32 {
	var acc int32
	for i := range e.voices {
		v := &e.voices[i]
		if v.note == 0 {
			continue
		}
		acc += v.env.Level() * tables.SineAt(v.phase)
		v.phase = (v.phase + v.step) & 0xffff
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

// Notes reports the note held by every slot, 0 for free slots.
func (e *Engine) Notes(dst []uint8) []uint8 {
	for i := range e.voices {
		dst = append(dst, e.voices[i].note)
	}
	return dst
}

func (e *Engine) busy(i int) bool { return e.voices[i].note != 0 }

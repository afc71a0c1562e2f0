// Package wavetable plays a sampled instrument: each voice reads signed 8-bit
// PCM through a sustain loop and fades out linearly after note-off.
package wavetable

import (
	"github.com/cbegin/keyseq-go/internal/tables"
	"github.com/cbegin/keyseq-go/internal/voice"
)

const (
	maxVoices = 16

	// MaxLevel is the voice level at note-on.
	MaxLevel = 255
	fracBits = 8
)

type Params struct {
	Voices  int
	Release uint8 // level units removed per tick after note-off
}

func DefaultParams() Params {
	return Params{Voices: 4, Release: 8}
}

// Instrument is an opaque read-only sample asset. Data holds signed 8-bit
// PCM; the region [LoopStart, LoopEnd) repeats while the voice sounds.
// RootNote is the note that plays Data at one byte per sample.
type Instrument struct {
	Data      []byte
	LoopStart uint32
	LoopEnd   uint32
	RootNote  uint8
}

const (
	defaultCycle  = 64
	defaultAttack = 4
)

// DefaultInstrument synthesizes a small built-in sample from the sine table:
// a few bright cycles that settle into a pure looped cycle.
func DefaultInstrument() Instrument {
	data := make([]byte, defaultCycle*(defaultAttack+1))
	for i := range data {
		idx := (i % defaultCycle) * (256 / defaultCycle)
		s := int32(tables.Sine[idx])
		if cycle := i / defaultCycle; cycle < defaultAttack {
			h := int32(tables.Sine[uint8(idx*3)])
			s = (s*3 + h*int32(defaultAttack-cycle)/defaultAttack) / 4
		}
		data[i] = byte(int8(s))
	}
	return Instrument{
		Data:      data,
		LoopStart: defaultCycle * defaultAttack,
		LoopEnd:   uint32(len(data)),
		RootNote:  36,
	}
}

func (in Instrument) normalized() Instrument {
	if len(in.Data) == 0 {
		return DefaultInstrument()
	}
	n := uint32(len(in.Data))
	if in.LoopEnd == 0 || in.LoopEnd > n {
		in.LoopEnd = n
	}
	if in.LoopStart >= in.LoopEnd {
		in.LoopStart = 0
	}
	if in.RootNote == 0 {
		in.RootNote = 36
	}
	return in
}

type channel struct {
	note      uint8
	pos       uint32 // Q24.8 byte offset
	step      uint32
	loopStart uint32 // Q24.8
	loopSpan  uint32
	level     int32
	releasing bool
}

type Engine struct {
	params Params
	inst   Instrument
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
	if params.Release == 0 {
		params.Release = 1
	}
	return &Engine{
		params: params,
		inst:   DefaultInstrument(),
		voices: make([]channel, params.Voices),
		alloc:  voice.NewAllocator(params.Voices),
		div:    (MaxLevel + 1) * int32(params.Voices),
	}
}

// SetInstrument swaps the sample asset. Sounding voices are cut first since
// their cursors point into the old buffer.
func (e *Engine) SetInstrument(in Instrument) {
	e.AllOff()
	e.inst = in.normalized()
}

func (e *Engine) Instrument() Instrument { return e.inst }

// PitchStep is the Q.8 read increment for note relative to the root note.
func (e *Engine) PitchStep(note uint8) uint32 {
	return tables.Step(note) << fracBits / tables.Step(e.inst.RootNote)
}

func (e *Engine) NoteOn(note uint8) (stolen bool) {
	if note == 0 {
		return false
	}
	slot, stolen := e.alloc.Pick(e.busy)
	v := &e.voices[slot]
	v.note = 0
	v.pos = 0
	v.step = e.PitchStep(note)
	v.loopStart = e.inst.LoopStart << fracBits
	v.loopSpan = (e.inst.LoopEnd - e.inst.LoopStart) << fracBits
	v.level = MaxLevel
	v.releasing = false
	v.note = note
	return stolen
}

func (e *Engine) NoteOff(note uint8) {
	if note == 0 {
		return
	}
	for i := range e.voices {
		if e.voices[i].note == note {
			e.voices[i].releasing = true
		}
	}
}

func (e *Engine) AllOff() {
	for i := range e.voices {
		e.voices[i].note = 0
		e.voices[i].releasing = false
	}
}

// Tick runs the linear release and frees voices that faded out.
func (e *Engine) Tick() {
	r := int32(e.params.Release)
	for i := range e.voices {
		v := &e.voices[i]
		if v.note == 0 || !v.releasing {
			continue
		}
		v.level -= r
		if v.level <= 0 {
			v.note = 0
			v.level = 0
		}
	}
}

func (e *Engine) Mix() int32 {
	data := e.inst.Data
	var acc int32
	for i := range e.voices {
		v := &e.voices[i]
		if v.note == 0 {
			continue
		}
		acc += v.level * int32(int8(data[v.pos>>fracBits]))
		v.pos += v.step
		if end := v.loopStart + v.loopSpan; v.pos >= end {
			v.pos = v.loopStart + (v.pos-v.loopStart)%v.loopSpan
		}
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

// Package engine couples a voice pool, the sequencer and the alert tone into
// the two periodic hooks of the instrument.
//
// An Engine has a single owner goroutine. TickHook, SampleHook, Step and the
// note and command methods must all be called from it. Only SetMasterVolume,
// Bip and SetFMParams may be called from elsewhere.
package engine

import (
	"strings"
	"sync/atomic"

	"github.com/cbegin/keyseq-go/internal/additive"
	"github.com/cbegin/keyseq-go/internal/clock"
	"github.com/cbegin/keyseq-go/internal/fm"
	"github.com/cbegin/keyseq-go/internal/sequencer"
	"github.com/cbegin/keyseq-go/internal/tables"
	"github.com/cbegin/keyseq-go/internal/wavetable"
)

const (
	// MaxVolume is the largest attenuation shift.
	MaxVolume = 8
	// BipUnit is the number of samples per unit of Bip duration.
	BipUnit  = 40
	bipScale = 32
)

// VoiceEngine is a fixed-size voice pool.
type VoiceEngine interface {
	NoteOn(note uint8) (stolen bool)
	NoteOff(note uint8)
	AllOff()
	// Tick advances envelopes by one tick and frees finished voices.
	Tick()
	// Mix renders one sample of every active voice, already scaled so a
	// full pool stays inside the int8 range.
	Mix() int32
	ActiveVoiceCount() int
	Notes(dst []uint8) []uint8
}

type Mode uint8

const (
	Additive Mode = iota
	FM
	Wavetable
)

func (m Mode) String() string {
	switch m {
	case FM:
		return "fm"
	case Wavetable:
		return "wavetable"
	default:
		return "additive"
	}
}

func ParseMode(name string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "additive", "sine", "":
		return Additive, true
	case "fm":
		return FM, true
	case "wavetable", "wave", "sample":
		return Wavetable, true
	}
	return Additive, false
}

type Config struct {
	Mode       Mode
	Voices     int
	Tempo      uint8
	Instrument *wavetable.Instrument
	OnAlert    func(sequencer.Alert)
}

type Engine struct {
	mode    Mode
	pool    VoiceEngine
	fm      *fm.Engine
	wt      *wavetable.Engine
	seq     *sequencer.Sequencer
	tick    clock.Divider
	onAlert func(sequencer.Alert)

	vol      atomic.Uint32
	bipLeft  atomic.Uint32
	bipPhase uint32
}

// New builds an engine at the native rates. An unknown mode falls back to
// additive voices.
func New(cfg Config) *Engine {
	e := &Engine{
		mode:    cfg.Mode,
		tick:    clock.NewDivider(clock.Ratio(clock.SampleRate, clock.TickRate)),
		onAlert: cfg.OnAlert,
	}
	switch cfg.Mode {
	case FM:
		p := fm.DefaultParams()
		if cfg.Voices > 0 {
			p.Voices = cfg.Voices
		}
		e.fm = fm.New(p)
		e.pool = e.fm
	case Wavetable:
		p := wavetable.DefaultParams()
		if cfg.Voices > 0 {
			p.Voices = cfg.Voices
		}
		e.wt = wavetable.New(p)
		if cfg.Instrument != nil {
			e.wt.SetInstrument(*cfg.Instrument)
		}
		e.pool = e.wt
	default:
		e.mode = Additive
		p := additive.DefaultParams()
		if cfg.Voices > 0 {
			p.Voices = cfg.Voices
		}
		e.pool = additive.New(p)
	}
	e.seq = sequencer.NewWithOptions(e.pool, sequencer.Options{
		Beeper:  e,
		Tempo:   cfg.Tempo,
		OnAlert: cfg.OnAlert,
	})
	return e
}

func (e *Engine) Mode() Mode                      { return e.mode }
func (e *Engine) Sequencer() *sequencer.Sequencer { return e.seq }
func (e *Engine) ActiveVoiceCount() int           { return e.pool.ActiveVoiceCount() }
func (e *Engine) Notes(dst []uint8) []uint8       { return e.pool.Notes(dst) }

// TickHook runs at the tick rate: envelopes advance and idle voices free.
func (e *Engine) TickHook() {
	e.pool.Tick()
}

// SampleHook runs at the audio rate and returns the unsigned output level.
func (e *Engine) SampleHook() uint8 {
	acc := e.pool.Mix()
	if n := e.bipLeft.Load(); n > 0 {
		acc += tables.SineAt(e.bipPhase) / bipScale
		e.bipPhase = (e.bipPhase + tables.BipStep) & 0xffff
		e.bipLeft.CompareAndSwap(n, n-1)
	}
	acc = Attenuate(acc, e.vol.Load())
	out := uint8(min(max(acc, -128), 127) + 128)
	e.seq.Tick()
	return out
}

// Step advances the time base by one audio sample, running the tick hook
// whenever the tick divider fires.
func (e *Engine) Step() uint8 {
	if e.tick.Next() {
		e.TickHook()
	}
	return e.SampleHook()
}

// Attenuate shifts the magnitude of v right by shift, keeping the sign.
func Attenuate(v int32, shift uint32) int32 {
	if v < 0 {
		return -(-v >> shift)
	}
	return v >> shift
}

func (e *Engine) NoteOn(note uint8) sequencer.Alert {
	if e.pool.NoteOn(note) {
		return e.raise(sequencer.AlertVoiceStolen)
	}
	return sequencer.AlertNone
}

func (e *Engine) NoteOff(note uint8) { e.pool.NoteOff(note) }

func (e *Engine) AllOff() { e.pool.AllOff() }

// KeyEvent is the key scanner callback: the note sounds directly and is
// offered to the recorder.
func (e *Engine) KeyEvent(note uint8, pressed bool) sequencer.Alert {
	alert := sequencer.AlertNone
	if pressed {
		alert = e.NoteOn(note)
	} else {
		e.NoteOff(note)
	}
	if a := e.seq.Note(note, pressed); a != sequencer.AlertNone {
		alert = a
	}
	return alert
}

func (e *Engine) SeqNote(note uint8, pressed bool) sequencer.Alert {
	return e.seq.Note(note, pressed)
}

func (e *Engine) Command(cmd sequencer.Command) sequencer.Alert {
	return e.seq.Command(cmd)
}

// SetInstrument replaces the sample asset of a wavetable engine. Other modes
// ignore it.
func (e *Engine) SetInstrument(in wavetable.Instrument) {
	if e.wt != nil {
		e.wt.SetInstrument(in)
	}
}

// SetMasterVolume sets the attenuation shift, 0 = loudest.
func (e *Engine) SetMasterVolume(level uint8) {
	e.vol.Store(uint32(min(level, MaxVolume)))
}

func (e *Engine) MasterVolume() uint8 { return uint8(e.vol.Load()) }

// Bip starts the alert tone for duration units of BipUnit samples,
// replacing any tone still sounding.
func (e *Engine) Bip(duration uint16) {
	e.bipLeft.Store(uint32(duration) * BipUnit)
}

// SetFMParams forwards to the FM pool; other modes ignore it.
func (e *Engine) SetFMParams(ratio, depth uint8) {
	if e.fm != nil {
		e.fm.SetFMParams(ratio, depth)
	}
}

func (e *Engine) raise(a sequencer.Alert) sequencer.Alert {
	if d := a.Duration(); d > 0 {
		e.Bip(d)
	}
	if e.onAlert != nil {
		e.onAlert(a)
	}
	return a
}

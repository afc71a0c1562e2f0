// Package keyseq hosts the keyboard sound engine on a desktop: a real-time
// Player, offline rendering and Standard MIDI File exchange of the event log.
package keyseq

import (
	"errors"
	"fmt"

	intaudio "github.com/cbegin/keyseq-go/internal/audio"
	"github.com/cbegin/keyseq-go/internal/clock"
	"github.com/cbegin/keyseq-go/internal/engine"
	"github.com/cbegin/keyseq-go/internal/queue"
	intseq "github.com/cbegin/keyseq-go/internal/sequencer"
	intwt "github.com/cbegin/keyseq-go/internal/wavetable"
)

// NativeRate is the engine's sample rate in Hz.
const NativeRate = clock.SampleRate

var (
	ErrQueueFull      = queue.ErrFull
	ErrUnknownMode    = errors.New("keyseq: unknown synth mode")
	ErrUnknownBackend = intaudio.ErrUnknownBackend
	ErrUnknownCommand = errors.New("keyseq: unknown command")
)

type SynthMode string

const (
	SynthModeAdditive  SynthMode = "additive"
	SynthModeFM        SynthMode = "fm"
	SynthModeWavetable SynthMode = "wavetable"
)

func (m SynthMode) engineMode() (engine.Mode, error) {
	mode, ok := engine.ParseMode(string(m))
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, m)
	}
	return mode, nil
}

type (
	Event      = intseq.Event
	Command    = intseq.Command
	Alert      = intseq.Alert
	State      = intseq.State
	Instrument = intwt.Instrument
)

const (
	CmdClear     = intseq.Clear
	CmdDelete    = intseq.Delete
	CmdFirst     = intseq.First
	CmdLast      = intseq.Last
	CmdPrev      = intseq.Prev
	CmdNext      = intseq.Next
	CmdPlay      = intseq.Play
	CmdRec       = intseq.Rec
	CmdStop      = intseq.Stop
	CmdTempoUp   = intseq.TempoUp
	CmdTempoDown = intseq.TempoDown
	CmdMetronome = intseq.Metronome
	CmdMeasure   = intseq.Measure
)

const (
	AlertNone          = intseq.AlertNone
	AlertVoiceStolen   = intseq.AlertVoiceStolen
	AlertBoundary      = intseq.AlertBoundary
	AlertRejected      = intseq.AlertRejected
	AlertLogFull       = intseq.AlertLogFull
	AlertPlaybackEnded = intseq.AlertPlaybackEnded
)

const (
	Idle      = intseq.Idle
	Playing   = intseq.Playing
	Recording = intseq.Recording
)

// LogCapacity is the number of events the sequencer can hold.
const LogCapacity = intseq.Capacity

// ParseCommand resolves a command name such as "rec" or "faster".
func ParseCommand(name string) (Command, error) {
	cmd, ok := intseq.ParseCommand(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return cmd, nil
}

// Commands lists every sequencer command.
func Commands() []Command { return intseq.Commands() }

// DefaultInstrument is the built-in wavetable sample.
func DefaultInstrument() Instrument { return intwt.DefaultInstrument() }

// KeyNote maps a physical key number to a note, as the key scanner does.
func KeyNote(key int) uint8 {
	return uint8(min(max(key+20, 1), 127))
}

// Backends lists the audio backends compiled into this build.
func Backends() []string { return intaudio.Backends() }

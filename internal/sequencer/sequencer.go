// Package sequencer records key edges into a fixed event log and replays them
// against a voice pool on a tempo-divided tick.
package sequencer

import (
	"cmp"
	"slices"

	"github.com/cbegin/keyseq-go/internal/clock"
)

const (
	Capacity = 200

	TicksPerBeat = 64

	DefaultTempo = 140
	TempoStep    = 10
	MinTempo     = 10
	MaxTempo     = 250

	// AuditionLength is how many hook calls a navigated-to note sounds.
	AuditionLength = 2048

	clickBip  = 5
	accentBip = 25
)

// NoteSink receives playback notes. The voice engines satisfy it.
type NoteSink interface {
	NoteOn(note uint8) (stolen bool)
	NoteOff(note uint8)
	AllOff()
}

// Beeper sounds the alert tone.
type Beeper interface {
	Bip(duration uint16)
}

type Options struct {
	Beeper  Beeper
	Tempo   uint8
	Measure uint8
	OnAlert func(Alert)
}

type Sequencer struct {
	out     NoteSink
	beeper  Beeper
	onAlert func(Alert)

	log             [Capacity]Event
	play, rec, last int

	state     State
	ticks     uint16
	tempo     uint8
	div       clock.Divider
	metronome bool
	measure   uint8

	auditionNote uint8
	auditionLeft int
}

func New(out NoteSink) *Sequencer {
	return NewWithOptions(out, Options{})
}

func NewWithOptions(out NoteSink, opts Options) *Sequencer {
	s := &Sequencer{
		out:     out,
		beeper:  opts.Beeper,
		onAlert: opts.OnAlert,
		measure: 4,
	}
	if opts.Measure == 3 {
		s.measure = 3
	}
	tempo := opts.Tempo
	if tempo == 0 {
		tempo = DefaultTempo
	}
	s.div = clock.NewDivider(uint32(tempo))
	s.SetTempo(tempo)
	return s
}

func (s *Sequencer) State() State      { return s.state }
func (s *Sequencer) Ticks() uint16     { return s.ticks }
func (s *Sequencer) Tempo() uint8      { return s.tempo }
func (s *Sequencer) Metronome() bool   { return s.metronome }
func (s *Sequencer) MeasureLen() uint8 { return s.measure }

// Len is the number of events in the committed log.
func (s *Sequencer) Len() int { return s.last }

// Cursor is the play cursor index.
func (s *Sequencer) Cursor() int { return s.play }

// RecordCursor is the record cursor index.
func (s *Sequencer) RecordCursor() int { return s.rec }

// Events appends the committed log to dst.
func (s *Sequencer) Events(dst []Event) []Event {
	return append(dst, s.log[:s.last]...)
}

// Load replaces the log with events, sorted by tick. Only valid while Idle.
// Events beyond Capacity are dropped and reported as AlertLogFull.
func (s *Sequencer) Load(events []Event) Alert {
	if s.state != Idle {
		return s.raise(AlertRejected)
	}
	n := copy(s.log[:], events)
	s.last, s.play, s.rec = n, 0, 0
	s.ticks = 0
	s.sort()
	if n < len(events) {
		return s.raise(AlertLogFull)
	}
	return AlertNone
}

// SetTempo sets the divider, clamped to [MinTempo, MaxTempo].
func (s *Sequencer) SetTempo(tempo uint8) {
	s.tempo = min(max(tempo, MinTempo), MaxTempo)
	s.div.SetPeriod(uint32(s.tempo))
}

// Tick is the per-sample hook. It runs one step every tempo calls while the
// transport is active or the metronome is on.
func (s *Sequencer) Tick() {
	if s.auditionLeft > 0 {
		s.auditionLeft--
		if s.auditionLeft == 0 {
			s.out.NoteOff(s.auditionNote)
		}
	}
	if s.state == Idle && !s.metronome {
		return
	}
	if s.div.Next() {
		s.Step()
	}
}

// Step runs one sequencer step: metronome (always on while recording), then
// every event due at the current tick, then the tick counter.
func (s *Sequencer) Step() Alert {
	active := s.state != Idle
	if !active && !s.metronome {
		return AlertNone
	}
	if (s.metronome || s.state == Recording) && s.ticks%TicksPerBeat == 0 {
		if (s.ticks/TicksPerBeat)%uint16(s.measure) == 0 {
			s.bip(accentBip)
		} else {
			s.bip(clickBip)
		}
	}
	alert := AlertNone
	if active {
		for s.play < s.last && s.log[s.play].Tick == s.ticks {
			ev := s.log[s.play]
			if ev.On() {
				s.out.NoteOn(ev.Key())
			} else {
				s.out.NoteOff(ev.Key())
			}
			s.play++
		}
		if s.state == Playing && s.play >= s.last {
			s.state = Idle
			alert = s.raise(AlertPlaybackEnded)
		}
	}
	s.ticks++
	return alert
}

// Note feeds a live key edge into the recorder.
func (s *Sequencer) Note(note uint8, pressed bool) Alert {
	if s.state != Recording || note == 0 || note > 0x7f {
		return AlertNone
	}
	if s.rec >= Capacity {
		s.last = s.rec
		s.state = Idle
		return s.raise(AlertLogFull)
	}
	s.log[s.rec] = NoteEvent(s.ticks, note, pressed)
	s.rec++
	return AlertNone
}

// Command dispatches one transport or navigation command.
func (s *Sequencer) Command(cmd Command) Alert {
	switch cmd {
	case Clear:
		s.play, s.rec, s.last = 0, 0, 0
		s.ticks = 0
	case Delete:
		return s.delete()
	case First, Last, Prev, Next:
		return s.navigate(cmd)
	case Play:
		switch s.state {
		case Idle:
			s.endAudition()
			s.rewindToCursor()
			s.state = Playing
			s.div.Reset()
		case Playing:
			s.stop()
		default:
			return s.raise(AlertRejected)
		}
	case Rec:
		switch s.state {
		case Idle:
			s.endAudition()
			s.rewindToCursor()
			s.rec = s.last
			s.state = Recording
			s.div.Reset()
		case Recording:
			s.stop()
		default:
			return s.raise(AlertRejected)
		}
	case Stop:
		s.stop()
	case TempoUp:
		if s.tempo < MinTempo+TempoStep {
			return s.raise(AlertBoundary)
		}
		s.SetTempo(s.tempo - TempoStep)
	case TempoDown:
		if s.tempo > MaxTempo-TempoStep {
			return s.raise(AlertBoundary)
		}
		s.SetTempo(s.tempo + TempoStep)
	case Metronome:
		s.metronome = !s.metronome
		if s.metronome {
			s.div.Reset()
		}
	case Measure:
		if s.measure == 4 {
			s.measure = 3
		} else {
			s.measure = 4
		}
	default:
		return s.raise(AlertRejected)
	}
	return AlertNone
}

func (s *Sequencer) stop() {
	s.endAudition()
	if s.state == Idle {
		return
	}
	if s.state == Recording {
		s.last = s.rec
		s.sort()
	}
	s.state = Idle
	s.out.AllOff()
}

// rewindToCursor moves time back to the event under the play cursor so it
// is not skipped.
func (s *Sequencer) rewindToCursor() {
	if s.play < s.last && s.log[s.play].Tick < s.ticks {
		s.ticks = s.log[s.play].Tick
	}
}

func (s *Sequencer) delete() Alert {
	if s.state != Idle {
		return s.raise(AlertRejected)
	}
	if s.play == 0 || s.play >= s.last {
		return s.raise(AlertBoundary)
	}
	copy(s.log[s.play:s.last], s.log[s.play+1:s.last])
	s.last--
	s.rec = min(s.rec, s.last)
	s.sort()
	return AlertNone
}

func (s *Sequencer) navigate(cmd Command) Alert {
	if s.state != Idle {
		return s.raise(AlertRejected)
	}
	s.metronome = false
	switch cmd {
	case First:
		s.play, s.rec = 0, 0
		s.ticks = 0
	case Last:
		s.play = s.last
		s.ticks = 0
		if s.last > 0 {
			s.ticks = s.log[s.last-1].Tick
		}
		return AlertNone
	case Prev:
		i := s.play - 1
		for i >= 0 && !s.log[i].On() {
			i--
		}
		if i < 0 {
			return s.raise(AlertBoundary)
		}
		s.play = i
		s.ticks = s.log[i].Tick
	case Next:
		i := s.play + 1
		for i < s.last && !s.log[i].On() {
			i++
		}
		if i >= s.last {
			return s.raise(AlertBoundary)
		}
		s.play = i
		s.ticks = s.log[i].Tick
	}
	if s.play < s.last && s.log[s.play].On() {
		s.audition(s.log[s.play].Key())
	}
	return AlertNone
}

func (s *Sequencer) audition(note uint8) {
	s.endAudition()
	s.out.NoteOn(note)
	s.auditionNote = note
	s.auditionLeft = AuditionLength
}

// endAudition releases an auditioned note that is still sounding, so its
// countdown cannot cut a note the transport plays later.
func (s *Sequencer) endAudition() {
	if s.auditionLeft > 0 {
		s.auditionLeft = 0
		s.out.NoteOff(s.auditionNote)
	}
}

func (s *Sequencer) sort() {
	slices.SortStableFunc(s.log[:s.last], func(a, b Event) int {
		return cmp.Compare(a.Tick, b.Tick)
	})
}

func (s *Sequencer) raise(a Alert) Alert {
	if d := a.Duration(); d > 0 {
		s.bip(d)
	}
	if s.onAlert != nil && a != AlertNone {
		s.onAlert(a)
	}
	return a
}

func (s *Sequencer) bip(d uint16) {
	if s.beeper != nil {
		s.beeper.Bip(d)
	}
}

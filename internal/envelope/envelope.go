// Package envelope implements the per-voice ADSR generator. Rates are integer
// amounts applied once per tick.
package envelope

type State uint8

const (
	Idle State = iota
	Attack
	Decay
	Sustain
	Release
)

func (s State) String() string {
	switch s {
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	default:
		return "idle"
	}
}

// Params are the authored rates of an instrument. Max is the peak amplitude
// (127 or 255 depending on voice resolution).
type Params struct {
	Attack  uint8
	Decay   uint8
	Sustain uint8
	Release uint8
	Max     int16
}

type Envelope struct {
	a, d, s, r int16
	max        int16
	vel        int16
	state      State
}

// Start resets the amplitude to zero and enters Attack.
func (e *Envelope) Start(p Params) {
	max := p.Max
	if max <= 0 {
		max = 255
	}
	e.a = atLeastOne(p.Attack)
	e.d = atLeastOne(p.Decay)
	e.r = atLeastOne(p.Release)
	e.s = int16(p.Sustain)
	if e.s > max {
		e.s = max
	}
	e.max = max
	e.vel = 0
	e.state = Attack
}

// Release is the note-off edge. It has no effect on an idle envelope.
func (e *Envelope) Release() {
	if e.state != Idle {
		e.state = Release
	}
}

// Advance moves the envelope one tick.
func (e *Envelope) Advance() {
	vel := e.vel
	switch e.state {
	case Attack:
		vel += e.a
		if vel >= e.max {
			vel = e.max
			e.state = Decay
		}
	case Decay:
		vel -= e.d
		if vel <= e.s {
			vel = e.s
			e.state = Sustain
		}
	case Release:
		vel -= e.r
		if vel <= 0 {
			vel = 0
			e.state = Idle
		}
	}
	e.vel = vel
}

// Level is the current amplitude in [0, Max].
func (e *Envelope) Level() int32 { return int32(e.vel) }

func (e *Envelope) State() State { return e.state }

// Kill drops the envelope to Idle without a release.
func (e *Envelope) Kill() {
	e.vel = 0
	e.state = Idle
}

func atLeastOne(v uint8) int16 {
	if v == 0 {
		return 1
	}
	return int16(v)
}

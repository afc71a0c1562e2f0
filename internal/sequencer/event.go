package sequencer

import "strings"

// NoteOnFlag marks a key press in Event.Note.
const NoteOnFlag = 0x80

// Event is one logged key edge. The low 7 bits of Note are the note number,
// the top bit is set for a press.
type Event struct {
	Tick uint16
	Note uint8
}

func NoteEvent(tick uint16, note uint8, pressed bool) Event {
	ev := Event{Tick: tick, Note: note & 0x7f}
	if pressed {
		ev.Note |= NoteOnFlag
	}
	return ev
}

func (e Event) On() bool { return e.Note&NoteOnFlag != 0 }

// Key is the note number without the on/off flag.
func (e Event) Key() uint8 { return e.Note &^ NoteOnFlag }

type State uint8

const (
	Idle State = iota
	Playing
	Recording
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Recording:
		return "recording"
	default:
		return "idle"
	}
}

type Command uint8

const (
	Clear Command = iota
	Delete
	First
	Last
	Prev
	Next
	Play
	Rec
	Stop
	TempoUp
	TempoDown
	Metronome
	Measure
	numCommands
)

var commandNames = [numCommands]string{
	Clear:     "clear",
	Delete:    "delete",
	First:     "first",
	Last:      "last",
	Prev:      "prev",
	Next:      "next",
	Play:      "play",
	Rec:       "rec",
	Stop:      "stop",
	TempoUp:   "faster",
	TempoDown: "slower",
	Metronome: "metronome",
	Measure:   "measure",
}

func (c Command) String() string {
	if c < numCommands {
		return commandNames[c]
	}
	return "unknown"
}

// ParseCommand looks a command up by its String name.
func ParseCommand(name string) (Command, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range commandNames {
		if n == name {
			return Command(c), true
		}
	}
	return 0, false
}

// Commands lists every command in declaration order.
func Commands() []Command {
	out := make([]Command, numCommands)
	for i := range out {
		out[i] = Command(i)
	}
	return out
}

// Alert is operator feedback. Alerts are routine outcomes, not errors; most
// of them sound a bip.
type Alert uint8

const (
	AlertNone Alert = iota
	AlertVoiceStolen
	AlertBoundary
	AlertRejected
	AlertLogFull
	AlertPlaybackEnded
)

const (
	shortAlert = 25
	longAlert  = 100
)

// Duration is the length of the alert tone in bip units, 0 for silent alerts.
func (a Alert) Duration() uint16 {
	switch a {
	case AlertBoundary, AlertRejected:
		return shortAlert
	case AlertLogFull, AlertPlaybackEnded:
		return longAlert
	}
	return 0
}

func (a Alert) String() string {
	switch a {
	case AlertNone:
		return "none"
	case AlertVoiceStolen:
		return "voice stolen"
	case AlertBoundary:
		return "boundary"
	case AlertRejected:
		return "rejected"
	case AlertLogFull:
		return "log full"
	case AlertPlaybackEnded:
		return "playback ended"
	}
	return "unknown"
}

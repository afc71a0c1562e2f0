package keyseq

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	intseq "github.com/cbegin/keyseq-go/internal/sequencer"
)

const (
	smfChannel  = 0
	smfVelocity = 100
)

// TempoBPM converts a sequencer tempo divider to beats per minute, one beat
// being TicksPerBeat sequencer ticks.
func TempoBPM(tempo uint8) float64 {
	return 60 * float64(NativeRate) / (float64(tempo) * intseq.TicksPerBeat)
}

// TempoFromBPM is the divider closest to bpm, clamped to the valid range.
func TempoFromBPM(bpm float64) uint8 {
	if bpm <= 0 {
		return intseq.DefaultTempo
	}
	t := math.Round(60 * float64(NativeRate) / (bpm * intseq.TicksPerBeat))
	return uint8(min(max(t, intseq.MinTempo), intseq.MaxTempo))
}

// ExportSMF writes events as a single-track Standard MIDI File with one
// sequencer tick per MIDI tick.
func ExportSMF(w io.Writer, events []Event, tempo uint8) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(intseq.TicksPerBeat)

	sorted := slices.Clone(events)
	sortEvents(sorted)

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(TempoBPM(tempo)))
	var prev uint16
	for _, ev := range sorted {
		delta := uint32(ev.Tick - prev)
		prev = ev.Tick
		if ev.On() {
			tr.Add(delta, midi.NoteOn(smfChannel, ev.Key(), smfVelocity))
		} else {
			tr.Add(delta, midi.NoteOff(smfChannel, ev.Key()))
		}
	}
	tr.Close(0)
	if err := s.Add(tr); err != nil {
		return fmt.Errorf("smf: add track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("smf: write: %w", err)
	}
	return nil
}

// ImportSMF reads note events from every track, rescaled to sequencer ticks.
// It returns the tempo divider of the first tempo change, or DefaultTempo.
// Events past LogCapacity or the 16-bit tick range are dropped.
func ImportSMF(r io.Reader) ([]Event, uint8, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, 0, fmt.Errorf("smf: read: %w", err)
	}
	res := uint64(intseq.TicksPerBeat)
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok && mt > 0 {
		res = uint64(mt)
	}
	tempo := uint8(intseq.DefaultTempo)
	if changes := s.TempoChanges(); len(changes) > 0 {
		tempo = TempoFromBPM(changes[0].BPM)
	}

	var events []Event
	for _, tr := range s.Tracks {
		var abs uint64
		for _, ev := range tr {
			abs += uint64(ev.Delta)
			tick := abs * intseq.TicksPerBeat / res
			if tick > math.MaxUint16 {
				break
			}
			msg := midi.Message(ev.Message)
			var ch, key, vel uint8
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				events = append(events, intseq.NoteEvent(uint16(tick), key, true))
			case msg.GetNoteEnd(&ch, &key):
				events = append(events, intseq.NoteEvent(uint16(tick), key, false))
			}
		}
	}
	sortEvents(events)
	if len(events) > LogCapacity {
		events = events[:LogCapacity]
	}
	return events, tempo, nil
}

func sortEvents(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		return cmp.Compare(a.Tick, b.Tick)
	})
}

package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/cbegin/keyseq-go"
)

// Terminals report presses only, so every key is released after holdTime
// unless it repeats first.
const holdTime = 250 * time.Millisecond

// pianoKeys lays two octaves over the bottom and top letter rows. The index
// is added to firstKey to get the physical key number.
const (
	pianoKeys = "zsxdcvgbhnjmq2w3er5t6y7u"
	firstKey  = 40
)

var liveCommands = map[byte]keyseq.Command{
	'R': keyseq.CmdRec,
	'P': keyseq.CmdPlay,
	' ': keyseq.CmdStop,
	'[': keyseq.CmdPrev,
	']': keyseq.CmdNext,
	'{': keyseq.CmdFirst,
	'}': keyseq.CmdLast,
	'X': keyseq.CmdDelete,
	'C': keyseq.CmdClear,
	'+': keyseq.CmdTempoUp,
	'-': keyseq.CmdTempoDown,
	'M': keyseq.CmdMetronome,
	'T': keyseq.CmdMeasure,
}

type keySink interface {
	KeyEvent(note uint8, pressed bool) error
}

// heldKey is one sounding note and the timer that will release it.
type heldKey struct {
	timer *time.Timer
}

type keyScanner struct {
	out  keySink
	hold time.Duration
	mu   sync.Mutex
	held map[uint8]*heldKey
}

func newKeyScanner(out keySink, hold time.Duration) *keyScanner {
	return &keyScanner{out: out, hold: hold, held: make(map[uint8]*heldKey)}
}

// press sounds note, or extends it when the key repeats.
func (k *keyScanner) press(note uint8) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if h, ok := k.held[note]; ok {
		if h.timer.Stop() {
			h.timer.Reset(k.hold)
			return
		}
		// The timer already fired and its release is waiting for mu. The
		// note is still sounding, so only the entry is replaced.
		k.holdLocked(note)
		return
	}
	if err := k.out.KeyEvent(note, true); err != nil {
		return
	}
	k.holdLocked(note)
}

func (k *keyScanner) holdLocked(note uint8) {
	h := &heldKey{}
	h.timer = time.AfterFunc(k.hold, func() { k.release(note, h) })
	k.held[note] = h
}

// release ends note unless h has been superseded by a later press.
func (k *keyScanner) release(note uint8, h *heldKey) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.held[note] != h {
		return
	}
	delete(k.held, note)
	_ = k.out.KeyEvent(note, false)
}

func runLive(pl *keyseq.Player) error {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer term.Restore(fd, old)

	fmt.Print("keys " + pianoKeys + " play; R rec, P play, space stop, [ ] { } navigate,\r\n")
	fmt.Print("X delete, C clear, + - tempo, M metronome, T measure, Esc quits\r\n")

	alerts := pl.Watch()
	go func() {
		for a := range alerts {
			fmt.Printf("%s\r\n", a)
		}
	}()

	k := newKeyScanner(pl, holdTime)
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		b := buf[0]
		switch {
		case b == 0x1b || b == 0x03:
			return nil
		case b == '?':
			st := pl.Status()
			fmt.Printf("%s tick %d tempo %d events %d cursor %d voices %d\r\n",
				st.State, st.Ticks, st.Tempo, st.Events, st.Cursor, st.ActiveVoices)
		default:
			if cmd, ok := liveCommands[b]; ok {
				_ = pl.Command(cmd)
			} else if i := strings.IndexByte(pianoKeys, b); i >= 0 {
				k.press(keyseq.KeyNote(firstKey + i))
			}
		}
	}
}

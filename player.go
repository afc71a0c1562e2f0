package keyseq

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	intaudio "github.com/cbegin/keyseq-go/internal/audio"
	"github.com/cbegin/keyseq-go/internal/dac"
	"github.com/cbegin/keyseq-go/internal/engine"
	"github.com/cbegin/keyseq-go/internal/queue"
)

const (
	// blockSize is the number of native samples between queue drains.
	blockSize = 16
	queueSize = 256
)

var ErrAlreadyStarted = errors.New("keyseq: player already started")

type PlayerOption func(*playerConfig)

type playerConfig struct {
	mode       SynthMode
	outputRate int
	backend    string
	instrument *Instrument
	voices     int
	tempo      uint8
	alertTap   func(Alert)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{
		mode:       SynthModeAdditive,
		outputRate: 48000,
		backend:    intaudio.DefaultBackend,
	}
}

func WithSynthMode(mode SynthMode) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.mode = mode
	}
}

// WithOutputRate sets the device sample rate. The engine always runs at
// NativeRate and is resampled.
func WithOutputRate(rate int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.outputRate = rate
	}
}

func WithBackend(name string) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.backend = name
	}
}

// WithInstrument sets the wavetable sample asset.
func WithInstrument(in Instrument) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.instrument = &in
	}
}

func WithVoices(n int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.voices = n
	}
}

func WithTempo(tempo uint8) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.tempo = tempo
	}
}

// WithAlertTap installs a callback invoked with every alert. The callback
// runs on the audio thread; keep work brief and non-blocking.
func WithAlertTap(tap func(Alert)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.alertTap = tap
	}
}

type opKind uint8

const (
	opKey opKind = iota
	opNoteOn
	opNoteOff
	opAllOff
	opCommand
	opLoad
	opSnapshot
	opInstrument
)

type op struct {
	kind       opKind
	note       uint8
	pressed    bool
	cmd        Command
	events     []Event
	instrument Instrument
	reply      chan []Event
}

// Status is a snapshot of the transport published by the audio thread.
type Status struct {
	Mode         SynthMode
	State        State
	Ticks        uint16
	Tempo        uint8
	Events       int
	Cursor       int
	ActiveVoices int
	Metronome    bool
	Measure      uint8
	Volume       uint8
}

// Player runs an engine on an audio device. Note and command methods are
// queued and applied by the audio thread; volume, bip and FM parameters are
// applied immediately.
type Player struct {
	mu       sync.Mutex
	mode     SynthMode
	cfg      playerConfig
	eng      *engine.Engine
	ops      *queue.Ring[op]
	res      *dac.Resampler
	dev      intaudio.Device
	running  atomic.Bool
	// engineMu is held while the engine runs: by Process for a whole
	// buffer, and by Export when it drains without a device.
	engineMu sync.Mutex
	native   uint64
	alertTap func(Alert)

	status struct {
		state, ticks, tempo, events, cursor, voices, flags atomic.Uint32
	}

	eventCh   chan Alert
	eventChMu sync.Mutex
}

// nativeSource feeds the resampler one engine sample at a time.
type nativeSource struct{ p *Player }

func (s nativeSource) Step() uint8 { return s.p.step() }

func NewPlayer(opts ...PlayerOption) (*Player, error) {
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	mode, err := cfg.mode.engineMode()
	if err != nil {
		return nil, err
	}
	if cfg.outputRate <= 0 {
		return nil, errors.New("keyseq: output rate must be positive")
	}
	p := &Player{
		mode:     cfg.mode,
		cfg:      cfg,
		ops:      queue.New[op](queueSize),
		alertTap: cfg.alertTap,
	}
	p.eng = engine.New(engine.Config{
		Mode:       mode,
		Voices:     cfg.voices,
		Tempo:      cfg.tempo,
		Instrument: cfg.instrument,
		OnAlert:    p.onAlert,
	})
	p.res = dac.NewResampler(nativeSource{p}, NativeRate, cfg.outputRate, nil)
	p.publish()
	return p, nil
}

func (p *Player) Mode() SynthMode { return p.mode }

// OutputRate is the device sample rate Process produces.
func (p *Player) OutputRate() int { return p.cfg.outputRate }

// Start opens the audio device and begins playback.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev != nil {
		return ErrAlreadyStarted
	}
	dev, err := intaudio.Open(p.cfg.backend, p.cfg.outputRate, p)
	if err != nil {
		return err
	}
	p.running.Store(true)
	if err := dev.Play(); err != nil {
		p.running.Store(false)
		_ = dev.Close()
		return err
	}
	p.dev = dev
	return nil
}

func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev == nil {
		return nil
	}
	err := p.dev.Close()
	p.dev = nil
	p.running.Store(false)
	return err
}

// Process fills interleaved stereo frames at the output rate. The audio
// device calls it; without a started device the caller drives the engine.
func (p *Player) Process(dst []float32) {
	p.engineMu.Lock()
	defer p.engineMu.Unlock()
	p.res.Fill(dst, intaudio.Channels)
}

func (p *Player) step() uint8 {
	if p.native%blockSize == 0 {
		p.drain()
		p.publish()
	}
	p.native++
	return p.eng.Step()
}

// drain applies queued operations. Callers hold engineMu.
func (p *Player) drain() {
	p.ops.Drain(p.apply)
}

func (p *Player) apply(o op) {
	switch o.kind {
	case opKey:
		p.eng.KeyEvent(o.note, o.pressed)
	case opNoteOn:
		p.eng.NoteOn(o.note)
	case opNoteOff:
		p.eng.NoteOff(o.note)
	case opAllOff:
		p.eng.AllOff()
	case opCommand:
		p.eng.Command(o.cmd)
	case opLoad:
		p.eng.Sequencer().Load(o.events)
	case opInstrument:
		p.eng.SetInstrument(o.instrument)
	case opSnapshot:
		o.reply <- p.eng.Sequencer().Events(make([]Event, 0, LogCapacity))
	}
}

func (p *Player) push(o op) error {
	return p.ops.Push(o)
}

// KeyEvent is a key press or release: the note sounds and, while recording,
// is logged.
func (p *Player) KeyEvent(note uint8, pressed bool) error {
	return p.push(op{kind: opKey, note: note, pressed: pressed})
}

// NoteOn plays a note without recording it.
func (p *Player) NoteOn(note uint8) error { return p.push(op{kind: opNoteOn, note: note}) }

func (p *Player) NoteOff(note uint8) error { return p.push(op{kind: opNoteOff, note: note}) }

func (p *Player) AllOff() error { return p.push(op{kind: opAllOff}) }

func (p *Player) Command(cmd Command) error { return p.push(op{kind: opCommand, cmd: cmd}) }

// SetInstrument swaps the wavetable sample. Other modes ignore it.
func (p *Player) SetInstrument(in Instrument) error {
	return p.push(op{kind: opInstrument, instrument: in})
}

// Import replaces the event log. It is rejected unless the transport is idle.
func (p *Player) Import(events []Event) error {
	cp := make([]Event, len(events))
	copy(cp, events)
	return p.push(op{kind: opLoad, events: cp})
}

// Export returns a copy of the committed event log. While the device runs
// the copy is taken by the audio thread; ctx bounds the wait.
func (p *Player) Export(ctx context.Context) ([]Event, error) {
	reply := make(chan []Event, 1)
	if err := p.push(op{kind: opSnapshot, reply: reply}); err != nil {
		return nil, err
	}
	if !p.running.Load() {
		p.engineMu.Lock()
		p.drain()
		p.engineMu.Unlock()
	}
	select {
	case events := <-reply:
		return events, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SetMasterVolume sets the attenuation shift: 0 is loudest, 8 silent.
func (p *Player) SetMasterVolume(level uint8) { p.eng.SetMasterVolume(level) }

func (p *Player) MasterVolume() uint8 { return p.eng.MasterVolume() }

// Bip sounds the alert tone for duration units of 40 native samples.
func (p *Player) Bip(duration uint16) { p.eng.Bip(duration) }

// SetFMParams sets the harmonic ratio and depth for later FM notes.
func (p *Player) SetFMParams(ratio, depth uint8) { p.eng.SetFMParams(ratio, depth) }

// Watch returns a channel that receives alerts. The channel is buffered
// (cap 8) and alerts are dropped when it is full. Only the most recent Watch
// channel receives alerts.
func (p *Player) Watch() <-chan Alert {
	ch := make(chan Alert, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

func (p *Player) onAlert(a Alert) {
	if p.alertTap != nil {
		p.alertTap(a)
	}
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- a:
		default:
		}
	}
}

const (
	flagMetronome = 1 << iota
	flagMeasure3
)

func (p *Player) publish() {
	seq := p.eng.Sequencer()
	st := &p.status
	st.state.Store(uint32(seq.State()))
	st.ticks.Store(uint32(seq.Ticks()))
	st.tempo.Store(uint32(seq.Tempo()))
	st.events.Store(uint32(seq.Len()))
	st.cursor.Store(uint32(seq.Cursor()))
	st.voices.Store(uint32(p.eng.ActiveVoiceCount()))
	var flags uint32
	if seq.Metronome() {
		flags |= flagMetronome
	}
	if seq.MeasureLen() == 3 {
		flags |= flagMeasure3
	}
	st.flags.Store(flags)
}

// Status returns the transport snapshot taken at the last queue drain.
func (p *Player) Status() Status {
	st := &p.status
	flags := st.flags.Load()
	measure := uint8(4)
	if flags&flagMeasure3 != 0 {
		measure = 3
	}
	return Status{
		Mode:         p.mode,
		State:        State(st.state.Load()),
		Ticks:        uint16(st.ticks.Load()),
		Tempo:        uint8(st.tempo.Load()),
		Events:       int(st.events.Load()),
		Cursor:       int(st.cursor.Load()),
		ActiveVoices: int(st.voices.Load()),
		Metronome:    flags&flagMetronome != 0,
		Measure:      measure,
		Volume:       p.eng.MasterVolume(),
	}
}

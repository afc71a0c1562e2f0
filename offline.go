package keyseq

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/youpy/go-wav"
	lua "github.com/yuin/gopher-lua"

	"github.com/cbegin/keyseq-go/internal/clock"
	"github.com/cbegin/keyseq-go/internal/engine"
)

// SamplesPerTick is the number of native samples in one envelope tick.
var SamplesPerTick = int(clock.Ratio(clock.SampleRate, clock.TickRate))

// Render runs script against a fresh engine without an audio device and
// returns the native 8-bit output. The script is Lua with these globals:
//
//	key(note, pressed)   key scanner event (plays and records)
//	on(note) / off(note) direct voice control
//	wait(ticks)          render ticks*SamplesPerTick samples
//	cmd(name)            sequencer command, e.g. cmd("rec")
//	volume(level)        master attenuation shift
//	bip(duration)        alert tone
//	fm(ratio, depth)     FM parameters
//	play_until_idle()    render until the transport stops
//
// Rendering continues after the script until seconds of audio exist.
func Render(mode SynthMode, script string, seconds float64) ([]uint8, error) {
	return RenderWith(mode, script, seconds, nil)
}

// RenderWith is Render with an optional wavetable instrument.
func RenderWith(mode SynthMode, script string, seconds float64, inst *Instrument) ([]uint8, error) {
	m, err := mode.engineMode()
	if err != nil {
		return nil, err
	}
	r := &renderer{eng: engine.New(engine.Config{Mode: m, Instrument: inst})}
	if script != "" {
		if err := r.run(script); err != nil {
			return nil, err
		}
	}
	if want := int(seconds * NativeRate); len(r.out) < want {
		r.advance(want - len(r.out))
	}
	return r.out, nil
}

// maxRenderSamples bounds play_until_idle.
const maxRenderSamples = NativeRate * 600

type renderer struct {
	eng *engine.Engine
	out []uint8
}

func (r *renderer) advance(n int) {
	for i := 0; i < n; i++ {
		r.out = append(r.out, r.eng.Step())
	}
}

func (r *renderer) run(script string) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			return err
		}
	}

	note := func(L *lua.LState, n int) uint8 {
		v := L.CheckInt(n)
		if v < 0 || v > 127 {
			L.ArgError(n, "note out of range")
		}
		return uint8(v)
	}
	fns := map[string]lua.LGFunction{
		"key": func(L *lua.LState) int {
			r.eng.KeyEvent(note(L, 1), L.CheckBool(2))
			return 0
		},
		"on": func(L *lua.LState) int {
			r.eng.NoteOn(note(L, 1))
			return 0
		},
		"off": func(L *lua.LState) int {
			r.eng.NoteOff(note(L, 1))
			return 0
		},
		"wait": func(L *lua.LState) int {
			r.advance(L.CheckInt(1) * SamplesPerTick)
			return 0
		},
		"cmd": func(L *lua.LState) int {
			c, err := ParseCommand(L.CheckString(1))
			if err != nil {
				L.RaiseError("%v", err)
			}
			L.Push(lua.LString(r.eng.Command(c).String()))
			return 1
		},
		"volume": func(L *lua.LState) int {
			r.eng.SetMasterVolume(uint8(L.CheckInt(1)))
			return 0
		},
		"bip": func(L *lua.LState) int {
			r.eng.Bip(uint16(L.CheckInt(1)))
			return 0
		},
		"fm": func(L *lua.LState) int {
			r.eng.SetFMParams(uint8(L.CheckInt(1)), uint8(L.OptInt(2, 1)))
			return 0
		},
		"play_until_idle": func(L *lua.LState) int {
			seq := r.eng.Sequencer()
			for n := 0; seq.State() != Idle && n < maxRenderSamples; n++ {
				r.out = append(r.out, r.eng.Step())
			}
			return 0
		},
	}
	for name, fn := range fns {
		L.SetGlobal(name, L.NewFunction(fn))
	}
	if err := L.DoString(script); err != nil {
		return fmt.Errorf("render script: %w", err)
	}
	return nil
}

// EncodeWAV writes samples as 8-bit unsigned mono PCM.
func EncodeWAV(w io.Writer, samples []uint8, sampleRate int) error {
	ww := wav.NewWriter(w, uint32(len(samples)), 1, uint32(sampleRate), 8)
	buf := make([]wav.Sample, len(samples))
	for i, s := range samples {
		buf[i].Values[0] = int(s)
	}
	if err := ww.WriteSamples(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}

// LoadInstrumentWAV reads the first channel of a PCM WAV file into a signed
// 8-bit instrument. Loop offsets are in samples; loopEnd 0 loops to the end.
func LoadInstrumentWAV(path string, loopStart, loopEnd uint32, rootNote uint8) (Instrument, error) {
	f, err := os.Open(path)
	if err != nil {
		return Instrument{}, err
	}
	defer f.Close()
	return DecodeInstrumentWAV(f, loopStart, loopEnd, rootNote)
}

// ErrEmptyInstrument is returned for a WAV file without samples.
var ErrEmptyInstrument = errors.New("keyseq: instrument has no samples")

type wavSource interface {
	io.Reader
	io.ReaderAt
}

func DecodeInstrumentWAV(src wavSource, loopStart, loopEnd uint32, rootNote uint8) (Instrument, error) {
	r := wav.NewReader(src)
	format, err := r.Format()
	if err != nil {
		return Instrument{}, fmt.Errorf("decode wav: %w", err)
	}
	var data []byte
	for {
		samples, err := r.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Instrument{}, fmt.Errorf("decode wav: %w", err)
		}
		for _, s := range samples {
			data = append(data, byte(toInt8(s.Values[0], format.BitsPerSample)))
		}
	}
	if len(data) == 0 {
		return Instrument{}, ErrEmptyInstrument
	}
	return Instrument{
		Data:      data,
		LoopStart: loopStart,
		LoopEnd:   loopEnd,
		RootNote:  rootNote,
	}, nil
}

func toInt8(v int, bits uint16) int8 {
	switch {
	case bits <= 8:
		return int8(v - 128)
	default:
		return int8(v >> (bits - 8))
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cbegin/keyseq-go"
)

func main() {
	var (
		modeName   = flag.String("mode", "additive", "synth mode: additive|fm|wavetable")
		sampleRate = flag.Int("rate", 48000, "output sample rate")
		backend    = flag.String("backend", "ebiten", "audio backend: "+strings.Join(keyseq.Backends(), "|"))
		volume     = flag.Uint("volume", 0, "master attenuation, 0 (loudest) to 8 (silent)")
		instPath   = flag.String("instrument", "", "WAV file for the wavetable instrument")
		loopStart  = flag.Uint("loop-start", 0, "instrument loop start, in samples")
		loopEnd    = flag.Uint("loop-end", 0, "instrument loop end, in samples (0 = end of file)")
		rootNote   = flag.Uint("root", 36, "note the instrument was sampled at")
		loadPath   = flag.String("load", "", "Standard MIDI File to load into the event log")
		savePath   = flag.String("save", "", "write the event log to this Standard MIDI File on exit")
		renderPath = flag.String("render", "", "render offline to this WAV file instead of playing")
		scriptPath = flag.String("script", "", "Lua script driving an offline render")
		seconds    = flag.Float64("seconds", 0, "minimum length of an offline render")
		useREPL    = flag.Bool("repl", false, "read commands from a prompt instead of the live keyboard")
	)
	flag.Parse()

	mode := keyseq.SynthMode(strings.ToLower(*modeName))
	var inst *keyseq.Instrument
	if *instPath != "" {
		in, err := keyseq.LoadInstrumentWAV(*instPath, uint32(*loopStart), uint32(*loopEnd), uint8(*rootNote))
		if err != nil {
			log.Fatal(err)
		}
		inst = &in
	}

	if *renderPath != "" {
		if err := render(*renderPath, *scriptPath, mode, *seconds, inst); err != nil {
			log.Fatal(err)
		}
		return
	}

	opts := []keyseq.PlayerOption{
		keyseq.WithSynthMode(mode),
		keyseq.WithOutputRate(*sampleRate),
		keyseq.WithBackend(*backend),
	}
	if inst != nil {
		opts = append(opts, keyseq.WithInstrument(*inst))
	}
	var loaded []keyseq.Event
	if *loadPath != "" {
		events, tempo, err := readSMF(*loadPath)
		if err != nil {
			log.Fatal(err)
		}
		loaded = events
		opts = append(opts, keyseq.WithTempo(tempo))
	}

	pl, err := keyseq.NewPlayer(opts...)
	if err != nil {
		log.Fatal(err)
	}
	pl.SetMasterVolume(uint8(*volume))
	if loaded != nil {
		if err := pl.Import(loaded); err != nil {
			log.Fatal(err)
		}
	}
	if err := pl.Start(); err != nil {
		log.Fatal(err)
	}
	defer pl.Stop()

	if *useREPL {
		err = runREPL(pl)
	} else {
		err = runLive(pl)
	}
	if err != nil {
		log.Print(err)
	}

	if *savePath != "" {
		if err := save(pl, *savePath); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("saved %s\n", *savePath)
	}
}

func render(path, scriptPath string, mode keyseq.SynthMode, seconds float64, inst *keyseq.Instrument) error {
	var script string
	if scriptPath != "" {
		data, err := os.ReadFile(scriptPath)
		if err != nil {
			return err
		}
		script = string(data)
	}
	samples, err := keyseq.RenderWith(mode, script, seconds, inst)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := keyseq.EncodeWAV(f, samples, keyseq.NativeRate); err != nil {
		f.Close()
		return err
	}
	fmt.Printf("rendered %.2fs to %s\n", float64(len(samples))/keyseq.NativeRate, path)
	return f.Close()
}

func readSMF(path string) ([]keyseq.Event, uint8, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return keyseq.ImportSMF(f)
}

func save(pl *keyseq.Player, path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	events, err := pl.Export(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := keyseq.ExportSMF(f, events, pl.Status().Tempo); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func load(pl *keyseq.Player, path string) (int, error) {
	events, _, err := readSMF(path)
	if err != nil {
		return 0, err
	}
	return len(events), pl.Import(events)
}

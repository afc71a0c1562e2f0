package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/cbegin/keyseq-go"
)

type replCommand struct {
	name  string
	arity int
	help  string
	run   func(pl *keyseq.Player, args []string) (string, error)
}

var replCommands []replCommand

func init() {
	replCommands = []replCommand{
		{"on", 1, "on NOTE: key press", keyCommand(true)},
		{"off", 1, "off NOTE: key release", keyCommand(false)},
		{"volume", 1, "volume 0-8: master attenuation", volumeCommand},
		{"bip", 1, "bip UNITS: alert tone", bipCommand},
		{"fm", 2, "fm RATIO DEPTH: FM parameters for later notes", fmCommand},
		{"status", 0, "status: transport snapshot", statusCommand},
		{"save", 1, "save PATH: write the log as a MIDI file", saveCommand},
		{"load", 1, "load PATH: replace the log from a MIDI file", loadCommand},
		{"help", 0, "help: this list", helpCommand},
	}
}

func eval(pl *keyseq.Player, line string) (string, error) {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]
	for _, c := range replCommands {
		if c.name != name {
			continue
		}
		if len(args) != c.arity {
			return "", fmt.Errorf("%s: wrong number of arguments: want %d, got %d", name, c.arity, len(args))
		}
		return c.run(pl, args)
	}
	cmd, err := keyseq.ParseCommand(name)
	if err != nil {
		return "", err
	}
	return "", pl.Command(cmd)
}

func runREPL(pl *keyseq.Player) error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	alerts := pl.Watch()
	go func() {
		for a := range alerts {
			fmt.Fprintln(rl.Stdout(), a)
		}
	}()

	for {
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if out, err := eval(pl, line); err != nil {
			fmt.Println(err)
		} else if out != "" {
			fmt.Println(out)
		}
	}
}

func parseByte(s string, limit int) (uint8, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > limit {
		return 0, fmt.Errorf("%d out of range 0-%d", v, limit)
	}
	return uint8(v), nil
}

func keyCommand(pressed bool) func(*keyseq.Player, []string) (string, error) {
	return func(pl *keyseq.Player, args []string) (string, error) {
		note, err := parseByte(args[0], 127)
		if err != nil {
			return "", err
		}
		return "", pl.KeyEvent(note, pressed)
	}
}

func volumeCommand(pl *keyseq.Player, args []string) (string, error) {
	v, err := parseByte(args[0], 8)
	if err != nil {
		return "", err
	}
	pl.SetMasterVolume(v)
	return "", nil
}

func bipCommand(pl *keyseq.Player, args []string) (string, error) {
	v, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return "", err
	}
	pl.Bip(uint16(v))
	return "", nil
}

func fmCommand(pl *keyseq.Player, args []string) (string, error) {
	ratio, err := parseByte(args[0], 255)
	if err != nil {
		return "", err
	}
	depth, err := parseByte(args[1], 255)
	if err != nil {
		return "", err
	}
	pl.SetFMParams(ratio, depth)
	return "", nil
}

func statusCommand(pl *keyseq.Player, _ []string) (string, error) {
	st := pl.Status()
	return fmt.Sprintf("%s %s tick=%d tempo=%d events=%d cursor=%d voices=%d metronome=%v measure=%d volume=%d",
		st.Mode, st.State, st.Ticks, st.Tempo, st.Events, st.Cursor, st.ActiveVoices,
		st.Metronome, st.Measure, st.Volume), nil
}

func saveCommand(pl *keyseq.Player, args []string) (string, error) {
	return "", save(pl, args[0])
}

func loadCommand(pl *keyseq.Player, args []string) (string, error) {
	n, err := load(pl, args[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("loaded %d events", n), nil
}

func helpCommand(*keyseq.Player, []string) (string, error) {
	var b strings.Builder
	for _, c := range replCommands {
		b.WriteString(c.help)
		b.WriteByte('\n')
	}
	names := make([]string, 0, len(keyseq.Commands()))
	for _, c := range keyseq.Commands() {
		names = append(names, c.String())
	}
	b.WriteString("sequencer: " + strings.Join(names, " "))
	return b.String(), nil
}

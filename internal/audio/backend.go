package audio

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrUnknownBackend = errors.New("audio: unknown backend")

// DefaultBackend is used when no backend is named.
const DefaultBackend = "ebiten"

// Device is a running output stream.
type Device interface {
	Play() error
	Pause() error
	Close() error
}

type opener func(sampleRate int, source SampleSource) (Device, error)

var (
	backendsMu sync.Mutex
	backends   = map[string]opener{}
)

func register(name string, open opener) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = open
}

// Backends lists the compiled-in backends.
func Backends() []string {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Open starts a paused device on the named backend pulling from source.
func Open(name string, sampleRate int, source SampleSource) (Device, error) {
	if name == "" {
		name = DefaultBackend
	}
	backendsMu.Lock()
	open, ok := backends[name]
	backendsMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownBackend, name, Backends())
	}
	dev, err := open(sampleRate, source)
	if err != nil {
		return nil, fmt.Errorf("audio: open %s: %w", name, err)
	}
	return dev, nil
}

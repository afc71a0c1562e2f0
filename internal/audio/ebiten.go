package audio

import (
	"io"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

func init() { register("ebiten", openEbiten) }

type ebitenDevice struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var ebitenContext sharedContext[*ebitaudio.Context]

// SharedContext returns the process-wide ebiten audio context. ebiten allows
// only one, so a second rate is an error.
func SharedContext(sampleRate int) (*ebitaudio.Context, error) {
	return ebitenContext.get(sampleRate, func(rate int) (*ebitaudio.Context, int, error) {
		if ctx := ebitaudio.CurrentContext(); ctx != nil {
			return ctx, ctx.SampleRate(), nil
		}
		return ebitaudio.NewContext(rate), rate, nil
	})
}

func openEbiten(sampleRate int, source SampleSource) (Device, error) {
	ctx, err := SharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &ebitenDevice{player: pl, reader: reader}, nil
}

func (d *ebitenDevice) Play() error  { d.player.Play(); return nil }
func (d *ebitenDevice) Pause() error { d.player.Pause(); return nil }

func (d *ebitenDevice) Close() error {
	d.player.Pause()
	if err := d.player.Close(); err != nil {
		return err
	}
	return d.reader.Close()
}

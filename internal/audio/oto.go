package audio

import (
	"time"

	"github.com/ebitengine/oto/v3"
)

func init() { register("oto", openOto) }

type otoDevice struct {
	player *oto.Player
}

var otoContext sharedContext[*oto.Context]

func newOtoContext(sampleRate int) (*oto.Context, int, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   40 * time.Millisecond,
	})
	if err != nil {
		return nil, 0, err
	}
	<-ready
	return ctx, sampleRate, nil
}

func openOto(sampleRate int, source SampleSource) (Device, error) {
	ctx, err := otoContext.get(sampleRate, newOtoContext)
	if err != nil {
		return nil, err
	}
	return &otoDevice{player: ctx.NewPlayer(NewStreamReader(source))}, nil
}

func (d *otoDevice) Play() error { d.player.Play(); return nil }

func (d *otoDevice) Pause() error {
	d.player.Pause()
	return nil
}

func (d *otoDevice) Close() error {
	d.player.Pause()
	return d.player.Close()
}

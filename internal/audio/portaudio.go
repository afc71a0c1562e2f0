//go:build portaudio

package audio

import "github.com/gordonklaus/portaudio"

func init() { register("portaudio", openPortAudio) }

const portaudioFrames = 256

type portaudioDevice struct {
	stream *portaudio.Stream
}

func openPortAudio(sampleRate int, source SampleSource) (Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	stream, err := portaudio.OpenDefaultStream(0, Channels, float64(sampleRate), portaudioFrames, func(out []float32) {
		source.Process(out)
	})
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	return &portaudioDevice{stream: stream}, nil
}

func (d *portaudioDevice) Play() error  { return d.stream.Start() }
func (d *portaudioDevice) Pause() error { return d.stream.Stop() }

func (d *portaudioDevice) Close() error {
	err := d.stream.Close()
	portaudio.Terminate()
	return err
}

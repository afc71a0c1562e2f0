package dac

// Source yields one native output level per call.
type Source interface {
	Step() uint8
}

// Resampler holds each native sample for outRate/inRate device frames
// (zero-order hold) and runs the result through a reconstruction chain.
type Resampler struct {
	src     Source
	inRate  int
	outRate int
	acc     int
	cur     float32
	chain   *Chain
}

// NewResampler converts src from inRate to outRate. A nil chain installs
// the default reconstruction filter.
func NewResampler(src Source, inRate, outRate int, chain *Chain) *Resampler {
	if chain == nil {
		chain = DefaultChain(outRate)
	}
	return &Resampler{
		src:     src,
		inRate:  inRate,
		outRate: outRate,
		chain:   chain,
	}
}

// DefaultChain approximates the instrument's analog output stage.
func DefaultChain(outRate int) *Chain {
	return NewChain(
		NewLowPass(outRate, 8000),
		NewDCBlock(outRate, 10),
		NewGain(1),
	)
}

// Next returns the next device-rate sample.
func (r *Resampler) Next() float32 {
	r.acc += r.inRate
	for r.acc >= r.outRate {
		r.acc -= r.outRate
		r.cur = Level(r.src.Step())
	}
	return r.chain.Process(r.cur)
}

// Fill writes len(dst)/channels frames, duplicating each sample across
// channels.
func (r *Resampler) Fill(dst []float32, channels int) {
	if channels <= 0 {
		channels = 1
	}
	for i := 0; i+channels <= len(dst); i += channels {
		v := r.Next()
		for c := 0; c < channels; c++ {
			dst[i+c] = v
		}
	}
}

func (r *Resampler) Reset() {
	r.acc = 0
	r.cur = 0
	r.chain.Reset()
}

package dac

import "math"

// LowPass is a one-pole RC low-pass filter.
type LowPass struct {
	alpha float32
	y     float32
}

// NewLowPass returns a filter with the given cutoff. A cutoff of 0 or at or
// above Nyquist passes the signal through.
func NewLowPass(sampleRate int, cutoff float64) *LowPass {
	lp := &LowPass{alpha: 1}
	if cutoff > 0 && cutoff < float64(sampleRate)/2 {
		rc := 1.0 / (2.0 * math.Pi * cutoff)
		dt := 1.0 / float64(sampleRate)
		lp.alpha = float32(dt / (rc + dt))
	}
	return lp
}

func (lp *LowPass) Process(x float32) float32 {
	lp.y += lp.alpha * (x - lp.y)
	return lp.y
}

func (lp *LowPass) Reset() { lp.y = 0 }

// DCBlock removes the constant offset left by a unipolar output.
type DCBlock struct {
	r      float32
	x1, y1 float32
}

func NewDCBlock(sampleRate int, cutoff float64) *DCBlock {
	return &DCBlock{r: float32(1 - 2*math.Pi*cutoff/float64(sampleRate))}
}

func (d *DCBlock) Process(x float32) float32 {
	y := x - d.x1 + d.r*d.y1
	d.x1, d.y1 = x, y
	return y
}

func (d *DCBlock) Reset() { d.x1, d.y1 = 0, 0 }

// Gain scales the signal and soft clips it with tanh.
type Gain struct {
	g float32
}

func NewGain(g float32) *Gain { return &Gain{g: g} }

func (g *Gain) Process(x float32) float32 {
	return float32(math.Tanh(float64(x * g.g)))
}

func (g *Gain) Reset() {}

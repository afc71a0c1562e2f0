// Package dac turns the engine's unsigned output level into float samples at
// a host device rate, the way the RC network after the PWM pin would.
package dac

// Stage processes mono audio one sample at a time.
type Stage interface {
	Process(x float32) float32
	Reset()
}

// Chain applies stages in order.
type Chain struct {
	stages []Stage
}

func NewChain(stages ...Stage) *Chain {
	return &Chain{stages: stages}
}

func (c *Chain) Process(x float32) float32 {
	for _, s := range c.stages {
		x = s.Process(x)
	}
	return x
}

func (c *Chain) Reset() {
	for _, s := range c.stages {
		s.Reset()
	}
}

func (c *Chain) Add(s Stage) {
	c.stages = append(c.stages, s)
}

// Level maps an unsigned 8-bit output level to [-1, 1).
func Level(u uint8) float32 {
	return (float32(u) - 128) / 128
}

// Package clock derives the slower time bases from the audio-rate hook.
package clock

const (
	// SampleRate is the native rate of the audio hook (62.5 kHz / 3).
	SampleRate = 20833
	// TickRate is the native rate of the envelope tick (1 kHz / 10).
	TickRate = 100
)

// Divider fires once every Period calls to Next.
type Divider struct {
	period uint32
	count  uint32
}

func NewDivider(period uint32) Divider {
	if period == 0 {
		period = 1
	}
	return Divider{period: period}
}

// Next counts one input pulse and reports whether the output fires. The
// first call fires.
func (d *Divider) Next() bool {
	if d.count == 0 {
		d.count = d.period - 1
		return true
	}
	d.count--
	return false
}

// SetPeriod changes the period from the next output pulse on.
func (d *Divider) SetPeriod(period uint32) {
	if period == 0 {
		period = 1
	}
	d.period = period
	if d.count >= period {
		d.count = period - 1
	}
}

func (d *Divider) Period() uint32 { return d.period }

// Reset makes the next call fire.
func (d *Divider) Reset() { d.count = 0 }

// Ratio returns the divider period that maps rate onto target, at least 1.
func Ratio(rate, target int) uint32 {
	if rate <= 0 || target <= 0 || target >= rate {
		return 1
	}
	return uint32((rate + target/2) / target)
}

package osc

// maxAmplitude is the clamp applied to an operator's target amplitude
// before each block's linear smoothing ramp is computed.
const maxAmplitude = 4.0

// MaxFrequency is the clamp applied to a target frequency, expressed
// in cycles/sample, before it is converted to a phase increment.
const MaxFrequency = 0.5

// Operator is a single sine-oscillator's render state: a 32-bit phase
// accumulator (wraps modulo 2^32 by virtue of its type) and a current
// linear amplitude, smoothed block-to-block.
type Operator struct {
	Phase     uint32
	Amplitude float64
}

// Reset returns the operator to phase 0, amplitude 0.
func (o *Operator) Reset() {
	o.Phase = 0
	o.Amplitude = 0
}

func clampAmplitude(a float64) float64 {
	if a > maxAmplitude {
		return maxAmplitude
	}
	if a < 0 {
		return 0
	}
	return a
}

func clampFrequency(f float64) float64 {
	if f > MaxFrequency {
		return MaxFrequency
	}
	if f < 0 {
		return 0
	}
	return f
}

func freqToIncrement(f float64) uint32 {
	return uint32(f * 4294967296.0)
}

// Package osc implements the fixed-point phase-accumulating sine
// oscillator and the block-rate operator-chain renderer that drives
// the DX7 algorithm routings.
package osc

import "github.com/cbegin/dx7fm-go/internal/units"

// phaseModMax is the largest phase-modulation index the fixed-point
// sine_pm path can represent before it wraps.
const phaseModMax = 32.0

// sinePM evaluates the sine table at a 32-bit fixed-point phase plus a
// floating-point phase-modulation input. phase wraps natively as a
// uint32; the modulation index wraps with period 64 (phaseModMax*2).
//
// The top 9 bits of the combined phase select a sine-table entry; the
// low 23 bits, scaled to [0,1), are the linear-interpolation
// fraction. The cast from pm to a uint32 offset must truncate, never
// round, to stay bit-exact with the fixed-point reference path. It is
// routed through int64 first because converting a negative or
// overflowing float directly to an unsigned integer is implementation-
// defined in Go; float-to-int64-to-uint32 is fully specified modulo
// 2^32 wraparound, matching the fixed-point reference.
func sinePM(phase uint32, pm float64) float64 {
	offset := uint32(int64(pm * (4294967296.0 / (phaseModMax * 2))))
	p := phase + offset
	idx := p >> 23
	frac := float64(p&0x7FFFFF) / (1 << 23)
	return units.SineTableAt(int(idx))*(1-frac) + units.SineTableAt(int(idx)+1)*frac
}

// SinePM is the exported form of sinePM for use outside the package
// (algorithm-table tests, property tests against the plain Sine LUT).
func SinePM(phase uint32, pm float64) float64 {
	return sinePM(phase, pm)
}

// Sine evaluates the plain (unmodulated) sine table at phase, a
// continuous 0..1 cycle position.
func Sine(phase float64) float64 {
	return units.Sine(phase)
}

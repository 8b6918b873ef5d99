// Package units converts raw DX7 0..99 parameter bytes into the DSP
// scalars the rendering engine actually consumes: frequencies, phase
// increments, levels, envelope rates. It also owns the lookup tables
// (sine, cube root, coarse-ratio, sensitivity curves) shared read-only
// by every Voice.
package units

import "math"

// MinLFOFrequency is the LFO's slowest rate, in cycles/sample at 1Hz
// sample-rate-independent scale; LFOFrequency multiplies a shaped
// 0..99 rate byte by this to get cycles/sample once divided by the
// real sample rate.
const MinLFOFrequency = 0.005865

const sineTableSize = 512

// sineTable holds one full cycle of sin(2*pi*i/512) for i in [0,512],
// with index 512 duplicating index 0 so callers can interpolate
// without a modulo on the upper bound.
var sineTable [sineTableSize + 1]float64

// cubeRootTable holds cbrt(i/16) for i in [0,16], used by
// NormalizeVelocity's interpolated lookup.
var cubeRootTable [17]float64

// coarseTable holds, for each of the 32 DX7 "coarse" values in ratio
// mode, 12*log2(ratio) — i.e. the semitone offset that reproduces the
// operator's frequency ratio through the shared pow2 path. Coarse 0 is
// the documented special case (ratio 0.5); coarse n>=1 is ratio n.
var coarseTable [32]float64

// ampModSensitivityTable maps a patch's 0..3 amplitude-modulation
// sensitivity byte to the depth coefficient used in the amp-mod
// exponent in Voice's per-operator level computation.
var ampModSensitivityTable = [4]float64{0.0, 0.25, 0.5, 1.0}

// pitchModSensitivityTable maps a patch's 0..7 pitch-modulation
// sensitivity byte to a 0..1 depth coefficient for LFO pitch
// modulation.
var pitchModSensitivityTable = [8]float64{0, 0.04, 0.08, 0.13, 0.22, 0.36, 0.6, 1.0}

func init() {
	for i := 0; i <= sineTableSize; i++ {
		sineTable[i] = math.Sin(2 * math.Pi * float64(i) / sineTableSize)
	}
	for i := range cubeRootTable {
		cubeRootTable[i] = math.Cbrt(float64(i) / 16)
	}
	for i := range coarseTable {
		ratio := float64(i)
		if i == 0 {
			ratio = 0.5
		}
		coarseTable[i] = 12 * math.Log2(ratio)
	}
}

// SineTableAt returns the raw table entry at index i, i in [0, 512].
// Callers doing phase-modulated lookups index this table directly
// rather than going through Sine, which expects a [0,1) phase.
func SineTableAt(i int) float64 {
	return sineTable[i]
}

// Sine linearly interpolates the 512-entry sine table at phase,
// wrapping phase into [0,1).
func Sine(phase float64) float64 {
	phase -= math.Floor(phase)
	pos := phase * sineTableSize
	idx := int(pos)
	frac := pos - float64(idx)
	return sineTable[idx]*(1-frac) + sineTable[idx+1]*frac
}

// CubeRootVelocity linearly interpolates the 17-entry cube-root table
// at v*16, v expected in [0,1].
func CubeRootVelocity(v float64) float64 {
	pos := v * 16
	if pos < 0 {
		pos = 0
	}
	if pos > 16 {
		pos = 16
	}
	idx := int(pos)
	if idx >= 16 {
		return cubeRootTable[16]
	}
	frac := pos - float64(idx)
	return cubeRootTable[idx]*(1-frac) + cubeRootTable[idx+1]*frac
}

// CoarseSemitones returns the precomputed semitone offset for a ratio-
// mode operator's coarse value, coarse in [0,31].
func CoarseSemitones(coarse int) float64 {
	if coarse < 0 {
		coarse = 0
	}
	if coarse > 31 {
		coarse = 31
	}
	return coarseTable[coarse]
}

// AmpModSensitivity returns the depth coefficient for a 0..3
// amp-mod-sensitivity byte.
func AmpModSensitivity(ams int) float64 {
	if ams < 0 {
		ams = 0
	}
	if ams > 3 {
		ams = 3
	}
	return ampModSensitivityTable[ams]
}

// PitchModSensitivity returns the depth coefficient for a 0..7
// pitch-mod-sensitivity byte.
func PitchModSensitivity(pms int) float64 {
	if pms < 0 {
		pms = 0
	}
	if pms > 7 {
		pms = 7
	}
	return pitchModSensitivityTable[pms]
}

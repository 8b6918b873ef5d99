package units

import "math"

// OperatorLevel maps a patch's 0..99 output-level byte to the 0..127
// DSP level space the envelope decoder works in.
func OperatorLevel(l int) int {
	switch {
	case l < 20:
		if l < 15 {
			return (l * (36 - l)) / 8
		}
		return l + 27
	default:
		return l + 28
	}
}

// PitchEnvelopeLevel maps a pitch-envelope's 0..99 level byte to a
// signed offset in semitone-like units, with the DX7's characteristic
// upward bow away from center.
func PitchEnvelopeLevel(l int) float64 {
	x := (float64(l) - 50) / 32
	tail := math.Abs(x) + 0.02 - 1
	if tail < 0 {
		tail = 0
	}
	return x * (1 + tail*tail*5.3056)
}

// OperatorEnvelopeIncrement maps a 0..99 envelope rate byte to a
// per-sample-block phase increment, before the plateau/ascending/
// descending shape adjustments applied when building an envelope's
// increment table.
func OperatorEnvelopeIncrement(r int) float64 {
	rr := (r * 41) / 64
	mantissa := 4 + (rr & 3)
	exponent := 2 + (rr >> 2)
	return float64(mantissa<<uint(exponent)) / (1 << 24)
}

// PitchEnvelopeIncrement maps a pitch envelope's 0..99 rate byte to a
// per-sample-block phase increment.
func PitchEnvelopeIncrement(r int) float64 {
	rr := float64(r) / 100
	return (1 + 192*rr*(rr*rr*rr*rr+1.0/3)) / (21.3 * 44100)
}

// LFOFrequency maps the LFO's 0..99 rate byte to cycles/sample at
// sample rate 1 (divide by the real sample rate to use).
func LFOFrequency(r int) float64 {
	var s float64
	if r == 0 {
		s = 1
	} else {
		s = float64(r*165) / 64
	}
	if s < 160 {
		s *= 11
	} else {
		s *= 11 + (s-160)/16
	}
	return s * MinLFOFrequency
}

// LFODelay maps the LFO's 0..99 delay byte to the two phase
// increments (onset ramp, then sustain ramp) used by the LFO's delay
// envelope, at sample rate 1 (divide by the real sample rate to use).
func LFODelay(d int) (inc0, inc1 float64) {
	if d == 0 {
		return 1e5, 1e5
	}
	dd := 99 - d
	scaled := (16 + (dd & 15)) << uint(1+(dd>>4))
	inc0 = float64(scaled) * MinLFOFrequency
	masked := scaled & 0xFF80
	if masked < 0x80 {
		masked = 0x80
	}
	inc1 = float64(masked) * MinLFOFrequency
	return inc0, inc1
}

// RateScaling returns the multiplicative envelope-rate adjustment for
// a given MIDI note and a patch's 0..7 rate-scaling byte.
func RateScaling(note float64, rs int) float64 {
	return Pow2Fast((float64(rs)*(note/3-7))/32, 3)
}

// KeyboardScale is a decoded keyboard-scaling record: the break point
// and the independent left/right depth and curve shape.
type KeyboardScale struct {
	BreakPoint int
	LeftDepth  int
	RightDepth int
	LeftCurve  int
	RightCurve int
}

// KeyboardScaling returns the level offset (in the envelope's 0..127
// level units) contributed by keyboard scaling for a note relative to
// a patch's keyboard-scaling record.
func KeyboardScaling(note float64, ks KeyboardScale) float64 {
	x := note - float64(ks.BreakPoint) - 15
	curve, depth := ks.LeftCurve, ks.LeftDepth
	if x > 0 {
		curve, depth = ks.RightCurve, ks.RightDepth
	}
	t := math.Abs(x)
	if curve == 1 || curve == 2 {
		t = t * 0.010467
		if t > 1 {
			t = 1
		}
		t = t * t * t * 96
	}
	if curve < 2 {
		t = -t
	}
	return t * float64(depth) * 0.02677
}

// FrequencyRatio computes an operator's frequency ratio (ratio mode)
// or fixed-frequency scalar (fixed mode) from its coarse/fine/detune
// bytes.
func FrequencyRatio(ratioMode bool, coarse, fine, detune int) float64 {
	var base, fineDetune float64
	if ratioMode {
		base = CoarseSemitones(coarse)
		fineDetune = 1.0
		if fine != 0 {
			fineDetune = 1 + 0.01*float64(fine)
		}
	} else {
		base = (float64(coarse&3)*100 + float64(fine)) * 0.39864
		fineDetune = 1.0
	}
	base += (float64(detune) - 7) * 0.015
	return pow2Safe(base/12) * fineDetune
}

// NormalizeVelocity maps a 0..1 normalized MIDI velocity to the DX7's
// cube-root velocity-sensitivity curve.
func NormalizeVelocity(v float64) float64 {
	return 16 * (CubeRootVelocity(v) - 0.918)
}

// Pow2Fast returns 2^x using a polynomial approximation of the
// documented accuracy order (1, 2, or 3). Order 1 intentionally falls
// back to the platform's exact exponent rather than implementing a
// bit-trick fast path — this matches the reference implementation's
// own order-1 behavior, which never exercised its fast path either.
func Pow2Fast(x float64, order int) float64 {
	if order <= 1 {
		return math.Exp2(x)
	}
	ip := math.Floor(x)
	fp := x - ip
	var poly float64
	if order == 2 {
		poly = 1 + fp*(0.6565+0.3435*fp)
	} else {
		poly = 1 + fp*(0.6958+fp*(0.2251+0.0791*fp))
	}
	return poly * math.Ldexp(1, int(ip))
}

// Pow2Safe computes 2^x for arbitrarily large |x| by splitting it into
// 10-octave (120-semitone) chunks before calling Pow2Fast, keeping
// each individual exponentiation's integer part small. Use this
// instead of Pow2Fast wherever the exponent can range far outside a
// single octave, such as a pitch term built from an unclamped note
// number and pitch-envelope/LFO modulation.
func Pow2Safe(x float64) float64 {
	return pow2Safe(x)
}

func pow2Safe(x float64) float64 {
	const chunk = 10.0
	result := 1.0
	for x > chunk {
		result *= Pow2Fast(chunk, 3)
		x -= chunk
	}
	for x < -chunk {
		result /= Pow2Fast(chunk, 3)
		x += chunk
	}
	return result * Pow2Fast(x, 3)
}

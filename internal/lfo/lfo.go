// Package lfo implements the DX7's global low-frequency modulator: six
// waveforms, an onset delay ramp, and separate pitch/amplitude
// modulation outputs. It is adapted from a simpler per-voice LFO used
// by earlier, non-DX7 engines in this lineage; the DX7 LFO is shared
// by the whole Voice rather than instantiated per operator, runs from
// DX7 rate/delay/depth bytes rather than raw Hz, and adds the delay
// ramp and waveform set documented below.
package lfo

import "github.com/cbegin/dx7fm-go/internal/units"

// Waveform selects one of the DX7's six LFO shapes.
type Waveform int

const (
	Triangle Waveform = iota
	RampDown
	RampUp
	Square
	Sine
	SampleHold
)

// Rand is the source of uniform [0,1) randomness for the
// sample-and-hold waveform. A thread-local *rand.Rand or a
// deterministic stub both satisfy this, per the engine's requirement
// that the LFO's randomness be seedable/stubbable for reproducible
// tests.
type Rand interface {
	Float64() float64
}

// LFO is the runtime state of the DX7 modulation LFO.
type LFO struct {
	phase         float64
	frequency     float64 // cycles/sample
	delayPhase    float64
	delayInc0     float64
	delayInc1     float64
	heldRandom    float64
	waveValue     float64
	ampModDepth   float64
	pitchModDepth float64
	waveform      Waveform
	resetPhase    bool
	sampleCounter int64
	rng           Rand
}

// Configure installs the LFO's parameters, decoded from a patch's raw
// 0..99 rate/delay/depth bytes.
func (l *LFO) Configure(rate, delay, pitchModDepth, ampModDepth int, waveform Waveform, pitchModSensitivity int, resetPhase bool, sampleRate float64, rng Rand) {
	l.frequency = units.LFOFrequency(rate) / sampleRate
	inc0, inc1 := units.LFODelay(delay)
	l.delayInc0 = inc0 / sampleRate
	l.delayInc1 = inc1 / sampleRate
	l.ampModDepth = float64(ampModDepth) * 0.01
	l.pitchModDepth = float64(pitchModDepth) * 0.01 * units.PitchModSensitivity(pitchModSensitivity)
	if waveform < Triangle || waveform > SampleHold {
		waveform = Triangle
	}
	l.waveform = waveform
	l.resetPhase = resetPhase
	l.rng = rng
}

// Reset zeros the LFO's phase and delay-ramp state. GenerateSamples
// calls this once, before rendering, when the patch's LFO reset-phase
// flag is set.
func (l *LFO) Reset() {
	l.phase = 0
	l.delayPhase = 0
	l.sampleCounter = 0
}

// ResetPhase reports whether this LFO's patch configured phase reset
// on a rising gate edge.
func (l *LFO) ResetPhase() bool { return l.resetPhase }

func (l *LFO) random() float64 {
	if l.rng == nil {
		return 0
	}
	return l.rng.Float64()
}

func waveformValue(w Waveform, phase, held float64) float64 {
	switch w {
	case RampDown:
		return 1 - phase
	case RampUp:
		return phase
	case Square:
		if phase < 0.5 {
			return 0
		}
		return 1
	case Sine:
		return 0.5 + 0.5*units.Sine(phase+0.5)
	case SampleHold:
		return held
	default: // Triangle
		if phase < 0.5 {
			return 2 * (0.5 - phase)
		}
		return 2 * (phase - 0.5)
	}
}

// Step advances the LFO by scale samples (typically the render block
// size) and returns its updated raw waveform value, independent of
// depth or delay shaping — callers read PitchMod/AmpMod for the
// shaped modulation outputs.
func (l *LFO) Step(scale float64) float64 {
	l.phase += scale * l.frequency
	if l.phase >= 1 {
		l.phase -= 1
		l.heldRandom = l.random()
	}
	l.waveValue = waveformValue(l.waveform, l.phase, l.heldRandom)
	l.sampleCounter++

	inc := l.delayInc0
	if l.delayPhase >= 0.5 {
		inc = l.delayInc1
	}
	l.delayPhase += scale * inc
	if l.delayPhase > 1 {
		l.delayPhase = 1
	}
	return l.waveValue
}

// delayRamp derives the 0..1 "ramped in" coefficient from the delay
// phase: 0 through the first half (pure delay), then a linear ramp to
// 1 across the second half.
func (l *LFO) delayRamp() float64 {
	if l.delayPhase < 0.5 {
		return 0
	}
	return (l.delayPhase - 0.5) * 2
}

// PitchMod returns the current pitch-modulation output, in the same
// units added directly to a 12*log2(ratio) pitch term.
func (l *LFO) PitchMod() float64 {
	return (l.waveValue - 0.5) * l.delayRamp() * l.pitchModDepth
}

// AmpMod returns the current amplitude-modulation output.
func (l *LFO) AmpMod() float64 {
	return (1 - l.waveValue) * l.delayRamp() * l.ampModDepth
}

// Scrub deterministically evaluates the LFO at an arbitrary sample
// index, independent of streaming state.
func (l *LFO) Scrub(sample float64) {
	cycle := sample * l.frequency
	intPart := float64(int64(cycle))
	frac := cycle - intPart
	if int64(intPart) != l.sampleCounter {
		l.sampleCounter = int64(intPart)
		l.heldRandom = l.random()
	}
	l.phase = frac
	l.waveValue = waveformValue(l.waveform, l.phase, l.heldRandom)

	if l.delayInc0 == 0 || sample*l.delayInc0 <= 0.5 {
		l.delayPhase = sample * l.delayInc0
	} else {
		half := 0.5 / l.delayInc0
		l.delayPhase = 0.5 + (sample-half)*l.delayInc1
	}
	if l.delayPhase > 1 {
		l.delayPhase = 1
	}
}

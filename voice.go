package dx7

import (
	"math"

	"github.com/cbegin/dx7fm-go/internal/algorithm"
	"github.com/cbegin/dx7fm-go/internal/envelope"
	"github.com/cbegin/dx7fm-go/internal/osc"
	"github.com/cbegin/dx7fm-go/internal/units"
)

const maxBlockSize = 256

// Voice is the top-level single-voice FM render driver: one patch, six
// operators, a pitch envelope, and the feedback/scratch buffers the
// compiled algorithm plan renders through. It owns no LFO — the caller
// supplies pitch_mod/amp_mod per block (typically sourced from a
// shared lfo.LFO) so that one LFO can be wired to several voices, or
// stubbed out entirely in tests.
type Voice struct {
	patch      Patch
	sampleRate float64

	pitchEnv envelope.Envelope
	opEnvs   [6]envelope.Envelope

	operators [6]osc.Operator
	fb        osc.Feedback

	levelHeadroom [6]float64
	ratios        [6]float64
	latestLevel   [6]float64

	calls []algorithm.Call

	mixBuf     [maxBlockSize]float64
	scratchBuf [maxBlockSize]float64

	prevGate bool
	dirty    bool

	velocity float64
	note     float64

	elapsed       float64
	gateOnSamples float64
}

// NewVoice constructs a Voice for the given patch and sample rate and
// runs its initial setup.
func NewVoice(patch Patch, sampleRate float64) *Voice {
	v := &Voice{patch: patch, sampleRate: sampleRate, dirty: true}
	v.Setup()
	return v
}

// SetPatch installs a new patch, marking the voice dirty so the next
// Setup (or RenderBlock) call re-runs the preamble.
func (v *Voice) SetPatch(patch Patch) {
	v.patch = patch
	v.dirty = true
}

// Setup re-runs the patch preamble: pitch envelope configuration,
// per-operator envelope configuration, and the cached level-headroom
// and frequency-ratio tables. It is idempotent — a second call before
// any SetPatch is a no-op.
func (v *Voice) Setup() {
	if !v.dirty {
		return
	}
	p := v.patch

	pl, pi := envelope.BuildPitch(p.PitchEnvRates, p.PitchEnvLevels)
	v.pitchEnv.Configure(pl, pi, false)

	v.calls = algorithm.Compile(p.Algorithm)

	for i := 0; i < 6; i++ {
		op := p.Operators[i]
		levels, incs := envelope.BuildOperator(op.EnvRates, op.EnvLevels, op.OutputLevel, v.sampleRate)
		v.opEnvs[i].Configure(levels, incs, true)

		v.levelHeadroom[i] = 127 - float64(units.OperatorLevel(op.OutputLevel))

		ratio := units.FrequencyRatio(op.Ratio, op.Coarse, op.Fine, op.Detune)
		if !op.Ratio {
			ratio = -ratio
		}
		v.ratios[i] = ratio
	}

	v.dirty = false
}

// RenderBlock renders len(out) samples into out (mono, float32).
//
// gate drives the envelope gate edge; sustain switches the
// envelopes and any externally-scrubbed LFO into deterministic
// sample-time query mode instead of streaming real-time render. note
// is a MIDI note number (float, for portamento-style fractional
// notes); velocity is normalized to [0,1]; brightness and
// envelopeControl are normalized to [0,1]; externalPitchMod and
// externalAmpMod are typically an LFO's PitchMod()/AmpMod() outputs
// for this block.
func (v *Voice) RenderBlock(gate, sustain bool, note, velocity, brightness, envelopeControl, externalPitchMod, externalAmpMod float64, out []float32) {
	v.Setup()

	b := len(out)
	if b > maxBlockSize {
		panic("dx7: block size exceeds Voice's maximum")
	}

	adScale := units.Pow2Fast((0.5-envelopeControl)*8, 3)
	releaseScale := units.Pow2Fast(-math.Abs(envelopeControl-0.3)*8, 3)
	envelopeRate := float64(b)

	// Scrub queries use the time at the end of this block, the same point
	// Render's returned value describes after stepping through it.
	scrubT := v.elapsed + float64(b)
	scrubHeld := v.gateOnSamples
	if gate {
		scrubHeld += float64(b)
	}

	var pitchMod float64
	if sustain {
		pitchMod = v.pitchEnv.ScrubValue(scrubT, scrubHeld)
	} else {
		pitchMod = v.pitchEnv.Render(gate, envelopeRate, adScale, releaseScale)
	}
	pitchMod += externalPitchMod

	risingEdge := gate && !v.prevGate
	if risingEdge || sustain {
		v.velocity = units.NormalizeVelocity(velocity)
		v.note = note
	}
	if risingEdge && v.patch.ResetPhase {
		for i := range v.operators {
			v.operators[i].Reset()
		}
		v.fb = osc.Feedback{}
	}
	v.prevGate = gate

	inputNote := v.note - 24 + float64(v.patch.Transpose)
	f0 := (55.0 / v.sampleRate) * 0.25 * units.Pow2Safe((inputNote-9+12*pitchMod)/12)

	var freqs, amps [6]float64
	for i := 0; i < 6; i++ {
		op := v.patch.Operators[i]

		mag := math.Abs(v.ratios[i])
		if v.ratios[i] < 0 {
			freqs[i] = mag / v.sampleRate
		} else {
			freqs[i] = mag * f0
		}

		rate := envelopeRate * units.RateScaling(v.note, op.RateScaling)
		var level float64
		if sustain {
			level = v.opEnvs[i].ScrubValue(scrubT, scrubHeld)
		} else {
			level = v.opEnvs[i].Render(gate, rate, adScale, releaseScale)
		}

		kb := units.KeyboardScaling(v.note, units.KeyboardScale{
			BreakPoint: op.KSBreakPoint,
			LeftDepth:  op.KSLeftDepth,
			RightDepth: op.KSRightDepth,
			LeftCurve:  op.KSLeftCurve,
			RightCurve: op.KSRightCurve,
		})
		vs := v.velocity * float64(op.VelocitySensitivity)
		var br float64
		if algorithm.IsModulator(v.patch.Algorithm, i) {
			br = (brightness - 0.5) * 32
		}

		adjust := kb + vs + br
		if adjust > v.levelHeadroom[i] {
			adjust = v.levelHeadroom[i]
		}
		level += 0.125 * adjust
		v.latestLevel[i] = level

		logMod := units.AmpModSensitivity(op.AmpModSensitivity)*externalAmpMod - 1
		levelMod := 1 - units.Pow2Fast(6.4*logMod, 3)
		amps[i] = units.Pow2Fast(-14+level*levelMod, 3)
	}

	mix := v.mixBuf[:b]
	for i := range mix {
		mix[i] = 0
	}

	for _, c := range v.calls {
		ops := v.operators[c.Ops[0] : c.Ops[len(c.Ops)-1]+1]
		f := freqs[c.Ops[0] : c.Ops[len(c.Ops)-1]+1]
		a := amps[c.Ops[0] : c.Ops[len(c.Ops)-1]+1]

		dest := v.bufferFor(c.Dest, b)
		var external []float64
		var fb *osc.Feedback
		if c.ModSource == osc.ModExternal {
			external = v.bufferFor(c.ModBuffer, b)
		} else if c.ModSource != osc.ModNone {
			fb = &v.fb
		}

		osc.RenderChain(ops, f, a, fb, v.patch.Feedback, c.ModSource, external, dest, c.Additive)
	}

	for i, s := range mix {
		out[i] = float32(s)
	}

	v.elapsed += float64(b)
	if gate {
		v.gateOnSamples += float64(b)
	}
}

func (v *Voice) bufferFor(id, b int) []float64 {
	if id == algorithm.OutputBuffer {
		return v.mixBuf[:b]
	}
	return v.scratchBuf[:b]
}

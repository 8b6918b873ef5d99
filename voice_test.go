package dx7

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 44100.0

// flatOperator returns an operator held at a constant output level:
// maximal attack rate into a plateau (levels 1-3 equal), no keyboard
// or velocity scaling, unity frequency ratio.
func flatOperator(outputLevel int) Operator {
	return Operator{
		EnvRates:            [4]int{99, 99, 99, 99},
		EnvLevels:           [4]int{99, 99, 99, 0},
		RateScaling:         0,
		Detune:              7,
		AmpModSensitivity:   0,
		VelocitySensitivity: 0,
		OutputLevel:         outputLevel,
		Ratio:               true,
		Coarse:              1,
		Fine:                0,
	}
}

func basePatch(algorithm int) Patch {
	var p Patch
	for i := range p.Operators {
		p.Operators[i] = flatOperator(99)
	}
	p.PitchEnvRates = [4]int{99, 99, 99, 99}
	p.PitchEnvLevels = [4]int{50, 50, 50, 50}
	p.Algorithm = algorithm
	p.ResetPhase = true
	p.Name = "TEST"
	return p
}

func rms(samples []float32) float64 {
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func TestVoiceAlgorithm31SixCarriersProducesBoundedOutput(t *testing.T) {
	p := basePatch(31)
	v := NewVoice(p, testSampleRate)

	out := make([]float32, 256)
	for block := 0; block < 40; block++ {
		v.RenderBlock(true, false, 60, 1.0, 0.5, 0.5, 0, 0, out)
	}

	for i, s := range out {
		require.False(t, math.IsNaN(float64(s)) || math.IsInf(float64(s), 0), "sample %d is not finite", i)
		assert.LessOrEqual(t, math.Abs(float64(s)), 6.5, "sample %d exceeds six unity carriers' bound", i)
	}
	assert.Greater(t, rms(out), 0.01, "six full-level carriers should produce audible output")
}

func TestVoiceGateOffEventuallyDecaysTowardSilence(t *testing.T) {
	p := basePatch(31)
	for i := range p.Operators {
		p.Operators[i].EnvRates = [4]int{99, 99, 99, 99}
		p.Operators[i].EnvLevels = [4]int{99, 99, 99, 0}
	}
	v := NewVoice(p, testSampleRate)

	out := make([]float32, 256)
	// A few gated blocks to reach the plateau, then release.
	for block := 0; block < 5; block++ {
		v.RenderBlock(true, false, 60, 1.0, 0.5, 0.5, 0, 0, out)
	}
	var last []float32
	for block := 0; block < 200; block++ {
		v.RenderBlock(false, false, 60, 1.0, 0.5, 0.5, 0, 0, out)
		last = out
	}
	assert.Less(t, rms(last), 1e-3, "output should have decayed near silence long after release")
}

func TestVoiceBoundedFeedbackDoesNotProduceNaNOrInf(t *testing.T) {
	p := basePatch(0) // algorithm 0: feedback confined to operator 0 of a 4-op stack
	p.Feedback = 7
	v := NewVoice(p, testSampleRate)

	out := make([]float32, 256)
	for block := 0; block < 50; block++ {
		v.RenderBlock(true, false, 60, 1.0, 0.5, 0.5, 0, 0, out)
	}
	for i, s := range out {
		require.False(t, math.IsNaN(float64(s)) || math.IsInf(float64(s), 0), "sample %d is not finite under max feedback", i)
	}
}

func TestVoiceScrubAgreesWithGatedRenderDuringPlateau(t *testing.T) {
	p := basePatch(31)
	real := NewVoice(p, testSampleRate)
	scrubbed := NewVoice(p, testSampleRate)

	outReal := make([]float32, 1)
	outScrub := make([]float32, 1)

	// envelope-control 0.5 gives adScale=1, matching the unscaled-time
	// contract ScrubValue assumes; rate scaling is 0 on every operator
	// so the per-operator rate multiplier is 1 too.
	const envelopeControl = 0.5

	for i := 0; i < 4000; i++ {
		real.RenderBlock(true, false, 60, 1.0, 0.5, envelopeControl, 0, 0, outReal)
		scrubbed.RenderBlock(true, true, 60, 1.0, 0.5, envelopeControl, 0, 0, outScrub)
		assert.InDelta(t, float64(outReal[0]), float64(outScrub[0]), 1e-3, "scrub and gated render diverged at sample %d", i)
	}
}

func TestVoiceSetupIsIdempotentUntilPatchChanges(t *testing.T) {
	p := basePatch(31)
	v := NewVoice(p, testSampleRate)
	callsBefore := v.calls
	v.Setup()
	assert.Equal(t, callsBefore, v.calls)

	v.SetPatch(basePatch(0))
	v.Setup()
	assert.NotEqual(t, callsBefore, v.calls)
}

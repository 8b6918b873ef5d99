package osc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// P2: accumulating a uint32 phase across a sequence of uint32
// increments, modulo 2^32, matches a uint64 accumulation truncated to
// 32 bits at each step.
func TestPhaseAccumulationMatchesU64Reference(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		start := rapid.Uint32().Draw(rt, "start")
		incs := rapid.SliceOfN(rapid.Uint32(), 1, 64).Draw(rt, "incs")

		phase := start
		var ref uint64 = uint64(start)
		for _, inc := range incs {
			phase += inc
			ref = (ref + uint64(inc)) & 0xFFFFFFFF
			if uint64(phase) != ref {
				rt.Fatalf("phase=%d ref=%d diverged after increment %d", phase, ref, inc)
			}
		}
	})
}

func TestRenderChainSingleOperatorReplace(t *testing.T) {
	ops := []Operator{{}}
	freqs := []float64{0.01}
	amps := []float64{1.0}
	out := make([]float64, 8)

	RenderChain(ops, freqs, amps, nil, 0, ModNone, nil, out, false)

	var nonZero bool
	for _, v := range out {
		if v != 0 {
			nonZero = true
		}
		require.True(t, v <= 1.0 && v >= -1.0, "sample out of sine range: %v", v)
	}
	assert.True(t, nonZero, "expected non-zero carrier output")
	assert.NotZero(t, ops[0].Phase, "phase should have advanced")
}

func TestRenderChainAdditiveAccumulates(t *testing.T) {
	// Start at full amplitude: each sample is scaled by the amplitude
	// before the ramp step, so an operator starting at 0 adds exactly 0
	// on sample 0.
	ops := []Operator{{Amplitude: 1.0}}
	freqs := []float64{0.01}
	amps := []float64{1.0}
	out := make([]float64, 4)
	for i := range out {
		out[i] = 0.5
	}

	RenderChain(ops, freqs, amps, nil, 0, ModNone, nil, out, true)

	for _, v := range out {
		assert.NotEqual(t, 0.5, v, "additive render should have changed the seeded buffer")
	}
}

func TestRenderChainFeedbackUpdatesHistory(t *testing.T) {
	ops := []Operator{{}}
	freqs := []float64{0.05}
	amps := []float64{2.0}
	fb := &Feedback{}
	out := make([]float64, 16)

	RenderChain(ops, freqs, amps, fb, 7, 0, nil, out, false)

	assert.NotZero(t, fb.History[0], "feedback history should be populated after a render with fb tap")
}

func TestRenderChainExternalModulation(t *testing.T) {
	ops := []Operator{{}}
	freqs := []float64{0.02}
	amps := []float64{1.0}
	external := []float64{10, -10, 10, -10}
	outA := make([]float64, len(external))
	outB := make([]float64, len(external))

	RenderChain(ops, freqs, amps, nil, 0, ModExternal, external, outA, false)
	ops2 := []Operator{{}}
	RenderChain(ops2, freqs, amps, nil, 0, ModNone, nil, outB, false)

	assert.NotEqual(t, outA, outB, "external modulation should change carrier output vs. unmodulated")
}

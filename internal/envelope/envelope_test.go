package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// P4: the ascending-reshape curve phase*(2.5-phase)*2/3 is monotonic
// increasing on [0,1).
func TestAscendingReshapeCurveIsMonotonic(t *testing.T) {
	reshaped := func(p float64) float64 { return p * (2.5 - p) * 2 / 3 }
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.Float64Range(0, 0.998).Draw(rt, "a")
		delta := rapid.Float64Range(0.0001, 0.001).Draw(rt, "delta")
		b := a + delta
		if b >= 1 {
			b = 0.9999
		}
		require.Less(t, reshaped(a), reshaped(b), "reshape curve must be strictly increasing")
	})
}

// P5: while the gate is held true from stage 0, the envelope advances
// no further than the sustain stage (2) and never enters release
// (stage 3).
func TestEnvelopeStaysInSustainWhileGateHeld(t *testing.T) {
	var e Envelope
	levels, incs := BuildOperator([4]int{99, 50, 50, 50}, [4]int{99, 99, 50, 0}, 99, 44100)
	e.Configure(levels, incs, true)

	for i := 0; i < 100000; i++ {
		e.Render(true, 24, 1, 1)
	}
	assert.LessOrEqual(t, e.Stage(), sustainStage, "gate held true must never advance past sustain")
	for i := 0; i < 1000; i++ {
		e.Render(true, 24, 1, 1)
		assert.LessOrEqual(t, e.Stage(), sustainStage)
	}
}

func TestEnvelopeEntersReleaseOnGateOff(t *testing.T) {
	var e Envelope
	levels, incs := BuildOperator([4]int{99, 99, 99, 50}, [4]int{99, 99, 99, 0}, 99, 44100)
	e.Configure(levels, incs, true)
	for i := 0; i < 10; i++ {
		e.Render(true, 24, 1, 1)
	}
	e.Render(false, 24, 1, 1)
	assert.Equal(t, releaseStage, e.Stage())
}

// S3: an operator with level[0..3]=99 and rate[0..3]=0 reaches its
// target level exactly under the plateau-scaled rate by the end of
// stage 0.
func TestPlateauEnvelopeReachesTargetExactly(t *testing.T) {
	var e Envelope
	levels, incs := BuildOperator([4]int{0, 0, 0, 0}, [4]int{99, 99, 99, 99}, 99, 44100)
	e.Configure(levels, incs, true)

	// all four stages have from==to (flat), so increments are all
	// base*0.6 (and stage 0 gets the *20 fast-attack kicker only when
	// the raw patch level[0] is 0, which it is not here) — render
	// enough blocks to saturate stage 0 and confirm the value equals
	// the configured plateau level exactly at saturation.
	var v float64
	for i := 0; i < 2_000_000 && e.Stage() == 0; i++ {
		v = e.Render(true, 24, 1, 1)
	}
	assert.InDelta(t, levels[0], v, 1e-9)
}

// S6: scrubbed envelope at t = gate_duration equals the gated-render
// final sustain value within 1e-6.
func TestScrubMatchesGatedRenderAtGateDuration(t *testing.T) {
	var e Envelope
	levels, incs := BuildOperator([4]int{60, 40, 30, 50}, [4]int{99, 80, 60, 0}, 90, 44100)
	e.Configure(levels, incs, true)

	// Stage 2 of this envelope alone takes about 3900 blocks; 8000
	// blocks leave the gated render saturated at its sustain level.
	const rate = 24.0
	const blocks = 8000
	var gated float64
	for i := 0; i < blocks; i++ {
		gated = e.Render(true, rate, 1, 1)
	}

	scrubbed := e.ScrubValue(float64(blocks)*rate, float64(blocks)*rate)
	assert.InDelta(t, gated, scrubbed, 1e-6)
}

func TestScrubReleasePastGateDuration(t *testing.T) {
	var e Envelope
	levels, incs := BuildOperator([4]int{60, 40, 30, 80}, [4]int{99, 80, 60, 0}, 90, 44100)
	e.Configure(levels, incs, true)

	v := e.ScrubValue(100000, 50)
	// far past release completion, value should have settled near the
	// release target level.
	assert.InDelta(t, levels[releaseStage], v, 1e-3)
}

func TestPitchEnvelopeLevelBoundaries(t *testing.T) {
	// B2: pitch_envelope_level(50)=0; (0) = -1.5625*(1+0.5825^2*5.3056)
	// ~ -4.375; (99) ~ +4
	levels, _ := BuildPitch([4]int{0, 0, 0, 0}, [4]int{50, 0, 99, 50})
	assert.InDelta(t, 0, levels[0], 1e-9)
	assert.InDelta(t, -4.375, levels[1], 0.05)
	assert.InDelta(t, 4, levels[2], 0.05)
}

func TestValueInterpolationBasic(t *testing.T) {
	levels := [4]float64{5, 10, 15, 20}
	v0 := value(levels, 0, 0, 0, false, false)
	v1 := value(levels, 0, 1, 0, false, false)
	assert.Equal(t, levels[3], v0) // phase 0: from = level[(0-1)%4] = level[3]
	assert.Equal(t, levels[0], v1) // phase 1: reaches "to" = level[0]
}

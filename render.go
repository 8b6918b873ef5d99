package dx7

import (
	"math"
	"math/rand"

	"github.com/cbegin/dx7fm-go/internal/lfo"
)

const (
	renderBlockSize    = 24
	silenceThreshold   = 1e-4
	silenceHoldMS      = 100
	maxDurationSeconds = 10
)

// defaultVelocity, defaultBrightness, and defaultEnvelopeControl are
// used by GenerateSamples, whose external contract exposes only a
// patch, a note, a sample rate, and a duration — velocity, brightness,
// and envelope-control knobs are Voice.RenderBlock parameters for
// callers that need per-note control; this entrypoint renders at full
// velocity and a neutral brightness/envelope-control setting.
const (
	defaultVelocity        = 1.0
	defaultBrightness      = 0.5
	defaultEnvelopeControl = 0.5
)

// GenerateSamples renders a single note on the given patch: gate held
// for duration_ms, then released and rendered until 100ms of
// near-silence (or a 10-second hard cap) ends the stream. The trailing
// silence run is truncated back to exactly the silence threshold.
func GenerateSamples(patch Patch, midiNote, sampleRate, durationMS float64) []float32 {
	voice := NewVoice(patch, sampleRate)

	var mod lfo.LFO
	mod.Configure(patch.LFORate, patch.LFODelay, patch.LFOPitchModDepth, patch.LFOAmpModDepth,
		patch.LFOWaveform, patch.LFOPitchModSensitivity, patch.LFOResetPhase, sampleRate, rand.New(rand.NewSource(1)))
	if patch.LFOResetPhase {
		mod.Reset()
	}

	maxSamples := int(maxDurationSeconds * sampleRate)
	gateSamples := int(durationMS * sampleRate / 1000)
	silenceSamples := int(silenceHoldMS * sampleRate / 1000)

	out := make([]float32, 0, maxSamples)
	block := make([]float32, renderBlockSize)

	gate := true
	silentRun := 0
	rendered := 0

	for rendered < maxSamples {
		b := renderBlockSize
		if rendered+b > maxSamples {
			b = maxSamples - rendered
		}
		if b <= 0 {
			break
		}

		if gate && rendered >= gateSamples {
			gate = false
		}

		pitchMod := mod.PitchMod()
		ampMod := mod.AmpMod()
		voice.RenderBlock(gate, false, midiNote, defaultVelocity, defaultBrightness, defaultEnvelopeControl, pitchMod, ampMod, block[:b])
		mod.Step(float64(b))

		out = append(out, block[:b]...)
		rendered += b

		if !gate {
			for _, s := range block[:b] {
				if math.Abs(float64(s)) < silenceThreshold {
					silentRun++
				} else {
					silentRun = 0
				}
			}
			if silentRun >= silenceSamples {
				break
			}
		}
	}

	if silentRun > silenceSamples {
		trim := silentRun - silenceSamples
		if trim < len(out) {
			out = out[:len(out)-trim]
		}
	}

	return out
}

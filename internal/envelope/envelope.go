// Package envelope implements the DX7's generic four-stage
// piecewise-linear envelope, shared by operator amplitude envelopes
// and the per-voice pitch envelope, including the DX7-specific
// ascending-attack reshaping and deterministic "scrub" evaluation used
// for preview rendering.
package envelope

import "math"

const numStages = 4

// sustainStage and releaseStage are the fixed stage indices of this
// four-stage envelope: 0=attack, 1=decay, 2=sustain, 3=release.
const (
	sustainStage = 2
	releaseStage = 3
)

// Envelope is the runtime state of a single four-stage envelope.
type Envelope struct {
	stage      int
	phase      float64
	start      float64
	hasStart   bool
	increments [numStages]float64
	levels     [numStages]float64
	scale      float64
	reshape    bool
}

// Configure installs the per-stage target levels and increments, and
// whether ascending stages reshape (operator envelopes do; the pitch
// envelope does not). Increments are installed as given; BuildOperator
// has already folded the 44100/sampleRate adjustment into them.
func (e *Envelope) Configure(levels, increments [numStages]float64, reshape bool) {
	e.levels = levels
	e.increments = increments
	e.reshape = reshape
	e.stage = 0
	e.phase = 0
	e.hasStart = false
}

// Reset returns the envelope to stage 0, phase 0, with no start-level
// snapshot (the sentinel "use previous level" state).
func (e *Envelope) Reset() {
	e.stage = 0
	e.phase = 0
	e.hasStart = false
}

// Stage returns the envelope's current stage index.
func (e *Envelope) Stage() int { return e.stage }

// SampleRateScale returns the 44100/sampleRate factor an envelope's
// configured increments should be multiplied by.
func SampleRateScale(sampleRate float64) float64 {
	return 44100 / sampleRate
}

// Render advances the envelope by one step under a live gate and
// returns its current value. rate is the caller-supplied per-operator
// rate multiplier (envelope block rate times keyboard rate scaling for
// operator envelopes, or just the block rate for the pitch envelope).
// adScale and releaseScale are the global envelope-control-derived
// time scales.
func (e *Envelope) Render(gate bool, rate, adScale, releaseScale float64) float64 {
	if gate && e.stage == releaseStage {
		e.start = e.Value()
		e.hasStart = true
		e.stage = 0
		e.phase = 0
	} else if !gate && e.stage != releaseStage {
		e.start = e.Value()
		e.hasStart = true
		e.stage = releaseStage
		e.phase = 0
	}

	stepScale := adScale
	if e.stage == releaseStage {
		stepScale = releaseScale
	}
	e.phase += e.increments[e.stage] * rate * stepScale

	if e.phase >= 1 {
		if e.stage >= numStages-2 {
			e.phase = 1
		} else {
			e.stage++
			e.phase = 0
			e.hasStart = false
		}
	}
	return e.Value()
}

// Value computes the envelope's current output from its stage, phase,
// and start snapshot, applying the ascending-reshape curve when
// configured and the segment is rising.
func (e *Envelope) Value() float64 {
	return value(e.levels, e.stage, e.phase, e.start, e.hasStart, e.reshape)
}

func value(levels [numStages]float64, stage int, phase, start float64, hasStart, reshape bool) float64 {
	from := levels[(stage+numStages-1)%numStages]
	if hasStart {
		from = start
	}
	to := levels[stage]
	if reshape && from < to {
		if from < 6.7 {
			from = 6.7
		}
		if to < 6.7 {
			to = 6.7
		}
		phase = phase * (2.5 - phase) * 2 / 3
	}
	return from + phase*(to-from)
}

// ScrubValue deterministically evaluates this envelope at elapsed time
// t (in the same units as Render's rate*scale step), given a
// hypothetical gate-held duration gateHeld, independent of any live
// streaming state. Scrub mode always uses the PREVIOUS_LEVEL sentinel
// (no start snapshot).
func (e *Envelope) ScrubValue(t, gateHeld float64) float64 {
	return scrubValue(e.levels, e.increments, e.reshape, t, gateHeld)
}

func scrubValue(levels, increments [numStages]float64, reshape bool, t, gateHeld float64) float64 {
	if t > gateHeld {
		relPhase := (t - gateHeld) * increments[releaseStage]
		if relPhase > 1 {
			relPhase = 1
		}
		from := scrubValue(levels, increments, reshape, gateHeld, gateHeld)
		to := levels[releaseStage]
		if reshape && from < to {
			if from < 6.7 {
				from = 6.7
			}
			if to < 6.7 {
				to = 6.7
			}
			relPhase = relPhase * (2.5 - relPhase) * 2 / 3
		}
		return from + relPhase*(to-from)
	}

	remaining := t
	for stage := 0; stage <= sustainStage; stage++ {
		dur := math.Inf(1)
		if increments[stage] > 0 {
			dur = 1 / increments[stage]
		}
		if remaining < dur {
			return value(levels, stage, remaining*increments[stage], 0, false, reshape)
		}
		remaining -= dur
	}
	return value(levels, sustainStage, 1, 0, false, reshape)
}

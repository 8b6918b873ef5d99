package osc

// Modulation source selectors for RenderChain. A non-negative value
// selects self-feedback sourced from the operator at that index
// within the chain.
const (
	ModNone     = -1
	ModExternal = -2
)

// Feedback is the two-sample feedback history a chain renders into
// and reads from when its modulation source is a feedback tap. The
// two-sample average mirrors DX7 hardware and damps the feedback path
// against runaway self-oscillation.
type Feedback struct {
	History [2]float64
}

// maxChainLength bounds the number of consecutive operators RenderChain
// fuses into one call, matching internal/algorithm's own chain-fusion
// limit. Render state is sized to this bound up front so RenderChain
// never allocates.
const maxChainLength = 3

// RenderChain renders B samples (B = len(out) = len(external) when
// external is used) for a chain of up to 3 consecutive operators,
// writing (or adding) the result into out.
//
// ops, freqs (cycles/sample, pre-clamp), and amps (target amplitude,
// pre-clamp) must all have the same length N (1..3). modSource is
// ModNone, ModExternal, or an index into ops selecting the feedback
// tap. fb is nil unless modSource selects feedback. feedbackAmount is
// the patch's 0..7 feedback byte. external is read when modSource is
// ModExternal and ignored otherwise. additive selects add-into vs.
// overwrite semantics for out.
//
// RenderChain allocates nothing: its per-call working state lives in
// fixed-size local arrays sized by maxChainLength, and everything else
// is passed in by the caller.
func RenderChain(ops []Operator, freqs, amps []float64, fb *Feedback, feedbackAmount int, modSource int, external, out []float64, additive bool) {
	n := len(ops)
	b := len(out)

	var incrementsArr, phasesArr [maxChainLength]uint32
	var amplitudesArr, slopesArr [maxChainLength]float64
	increments := incrementsArr[:n]
	phases := phasesArr[:n]
	amplitudes := amplitudesArr[:n]
	slopes := slopesArr[:n]
	for k := 0; k < n; k++ {
		increments[k] = freqToIncrement(clampFrequency(freqs[k]))
		phases[k] = ops[k].Phase
		amplitudes[k] = ops[k].Amplitude
		slopes[k] = (clampAmplitude(amps[k]) - amplitudes[k]) / float64(b)
	}

	var fbScale float64
	if feedbackAmount != 0 {
		fbScale = float64(uint(1)<<uint(feedbackAmount)) / 512
	}

	var history [2]float64
	if fb != nil {
		history = fb.History
	}

	for i := 0; i < b; i++ {
		var pm float64
		switch {
		case modSource >= 0:
			pm = (history[0] + history[1]) * fbScale
		case modSource == ModExternal:
			pm = external[i]
		}

		for k := 0; k < n; k++ {
			phases[k] += increments[k]
			pm = sinePM(phases[k], pm) * amplitudes[k]
			amplitudes[k] += slopes[k]
			if k == modSource {
				history[1] = history[0]
				history[0] = pm
			}
		}

		if additive {
			out[i] += pm
		} else {
			out[i] = pm
		}
	}

	for k := 0; k < n; k++ {
		ops[k].Phase = phases[k]
		ops[k].Amplitude = amplitudes[k]
	}
	if fb != nil {
		fb.History = history
	}
}

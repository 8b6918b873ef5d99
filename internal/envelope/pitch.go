package envelope

import "github.com/cbegin/dx7fm-go/internal/units"

// BuildPitch decodes a patch's four pitch-envelope rate/level bytes
// into the level and increment tables a Configure call installs. The
// pitch envelope never reshapes its ascending stages.
func BuildPitch(rates, rawLevels [4]int) (levels, increments [4]float64) {
	for i := 0; i < 4; i++ {
		levels[i] = units.PitchEnvelopeLevel(rawLevels[i])
	}
	for i := 0; i < 4; i++ {
		from := levels[(i+3)%4]
		to := levels[i]
		base := units.PitchEnvelopeIncrement(rates[i])

		var incr float64
		switch {
		case from != to:
			d := from - to
			if d < 0 {
				d = -d
			}
			incr = base / d
		case i != releaseStage:
			incr = 0.2
		default:
			incr = base
		}
		increments[i] = incr
	}
	return levels, increments
}

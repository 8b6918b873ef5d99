package envelope

import "github.com/cbegin/dx7fm-go/internal/units"

// BuildOperator decodes a DX7 operator envelope's four raw rate/level
// bytes (plus the operator's own output level and the patch-level
// "fast attack" quirk trigger) into the level and increment tables a
// Configure call installs.
//
// rawLevels are the patch's undecoded 0..99 level bytes (needed
// verbatim for the level[0]==0 fast-attack-plateau check); levels are
// their units.OperatorLevel-decoded counterparts folded against the
// operator's output level.
func BuildOperator(rates, rawLevels [4]int, outputLevel int, sampleRate float64) (levels, increments [4]float64) {
	globalLevel := units.OperatorLevel(outputLevel)
	for i := 0; i < 4; i++ {
		raw := units.OperatorLevel(rawLevels[i])
		raw = (raw &^ 1) + globalLevel - 133
		if raw < 1 {
			levels[i] = 0.125 * 0.5
		} else {
			levels[i] = 0.125 * float64(raw)
		}
	}

	scale := SampleRateScale(sampleRate)
	for i := 0; i < 4; i++ {
		from := levels[(i+3)%4]
		to := levels[i]
		base := units.OperatorEnvelopeIncrement(rates[i])

		var incr float64
		switch {
		case from == to:
			incr = base * 0.6
			if i == 0 && rawLevels[0] == 0 {
				incr *= 20
			}
		case from < to:
			cf, ct := from, to
			if cf < 6.7 {
				cf = 6.7
			}
			if ct < 6.7 {
				ct = 6.7
			}
			if cf == ct {
				incr = 1.0
			} else {
				incr = base * 7.2 / (ct - cf)
			}
		default:
			incr = base / (from - to)
		}
		increments[i] = incr * scale
	}
	return levels, increments
}

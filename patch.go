package dx7

import (
	"strings"

	"github.com/cbegin/dx7fm-go/internal/lfo"
)

const (
	voiceLength        = 128
	operatorBlockBytes = 17
	numOperators       = 6
	nameBytes          = 10
)

// Operator holds one operator's decoded patch fields, all range-clamped
// at decode time so every later arithmetic step stays in range.
type Operator struct {
	EnvRates  [4]int
	EnvLevels [4]int

	KSBreakPoint int
	KSLeftDepth  int
	KSRightDepth int
	KSLeftCurve  int
	KSRightCurve int

	RateScaling int
	Detune      int

	AmpModSensitivity   int
	VelocitySensitivity int

	OutputLevel int

	Ratio  bool // true: frequency is note-relative (coarse/fine ratio); false: fixed Hz
	Coarse int
	Fine   int
}

// Patch is a fully decoded DX7 voice: six operators, a pitch envelope,
// an algorithm routing, feedback amount, and the shared LFO's
// parameters.
//
// Operators is stored in the order the 128-byte packed voice encodes
// it — the packed format's first 17-byte block becomes Operators[0] —
// which is the reverse of the traditional "operator 1..6" numbering
// used in Yamaha's own algorithm charts. The algorithm routing table
// in this module is indexed consistently against this same order, so
// no renumbering is needed anywhere else in the engine.
type Patch struct {
	Operators [numOperators]Operator

	PitchEnvRates  [4]int
	PitchEnvLevels [4]int

	Algorithm  int
	Feedback   int
	ResetPhase bool

	LFORate                int
	LFODelay               int
	LFOPitchModDepth       int
	LFOAmpModDepth         int
	LFOResetPhase          bool
	LFOWaveform            lfo.Waveform
	LFOPitchModSensitivity int

	Transpose int

	Name string
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func bits(b byte, shift, width int) int {
	return int(b>>uint(shift)) & ((1 << uint(width)) - 1)
}

// DecodePatch decodes a single 128-byte packed voice.
func DecodePatch(data []byte) (Patch, error) {
	if len(data) != voiceLength {
		return Patch{}, ErrBadVoiceLength
	}

	var p Patch
	for i := 0; i < numOperators; i++ {
		block := data[i*operatorBlockBytes : (i+1)*operatorBlockBytes]
		p.Operators[i] = decodeOperator(block)
	}

	for i := 0; i < 4; i++ {
		p.PitchEnvRates[i] = clamp(int(data[102+i]&0x7F), 0, 99)
	}
	for i := 0; i < 4; i++ {
		p.PitchEnvLevels[i] = clamp(int(data[106+i]&0x7F), 0, 99)
	}

	p.Algorithm = clamp(bits(data[110], 0, 5), 0, 31)

	p.Feedback = bits(data[111], 0, 3)
	p.ResetPhase = bits(data[111], 3, 1) != 0

	p.LFORate = clamp(int(data[112]&0x7F), 0, 99)
	p.LFODelay = clamp(int(data[113]&0x7F), 0, 99)
	p.LFOPitchModDepth = clamp(int(data[114]&0x7F), 0, 99)
	p.LFOAmpModDepth = clamp(int(data[115]&0x7F), 0, 99)

	p.LFOResetPhase = bits(data[116], 0, 1) != 0
	p.LFOWaveform = lfo.Waveform(clamp(bits(data[116], 1, 3), 0, 5))
	p.LFOPitchModSensitivity = clamp(bits(data[116], 4, 3), 0, 7)

	p.Transpose = clamp(int(data[117]&0x7F), 0, 48)

	p.Name = decodeName(data[118 : 118+nameBytes])

	return p, nil
}

func decodeOperator(b []byte) Operator {
	var op Operator
	for i := 0; i < 4; i++ {
		op.EnvRates[i] = clamp(int(b[i]&0x7F), 0, 99)
	}
	for i := 0; i < 4; i++ {
		op.EnvLevels[i] = clamp(int(b[4+i]&0x7F), 0, 99)
	}
	op.KSBreakPoint = clamp(int(b[8]&0x7F), 0, 99)
	op.KSLeftDepth = clamp(int(b[9]&0x7F), 0, 99)
	op.KSRightDepth = clamp(int(b[10]&0x7F), 0, 99)
	op.KSLeftCurve = bits(b[11], 0, 2)
	op.KSRightCurve = bits(b[11], 2, 2)
	op.RateScaling = bits(b[12], 0, 3)
	op.Detune = clamp(bits(b[12], 3, 4), 0, 14)
	op.AmpModSensitivity = bits(b[13], 0, 2)
	op.VelocitySensitivity = bits(b[13], 2, 3)
	op.OutputLevel = clamp(int(b[14]&0x7F), 0, 99)
	op.Ratio = bits(b[15], 0, 1) == 0
	op.Coarse = clamp(bits(b[15], 1, 5), 0, 31)
	op.Fine = clamp(int(b[16]&0x7F), 0, 99)
	return op
}

func decodeName(b []byte) string {
	runes := make([]byte, len(b))
	for i, c := range b {
		runes[i] = c & 0x7F
	}
	return strings.TrimRight(string(runes), " \x00")
}

// EncodeVoice re-packs a Patch into its 128-byte wire form. Fields are
// re-clamped to their documented ranges before packing, so encoding a
// patch built from already-in-range fields round-trips byte-identically
// through DecodePatch.
func EncodeVoice(p Patch) []byte {
	data := make([]byte, voiceLength)
	for i := 0; i < numOperators; i++ {
		encodeOperator(data[i*operatorBlockBytes:(i+1)*operatorBlockBytes], p.Operators[i])
	}

	for i := 0; i < 4; i++ {
		data[102+i] = byte(clamp(p.PitchEnvRates[i], 0, 99))
	}
	for i := 0; i < 4; i++ {
		data[106+i] = byte(clamp(p.PitchEnvLevels[i], 0, 99))
	}

	data[110] = byte(clamp(p.Algorithm, 0, 31))

	feedback := byte(clamp(p.Feedback, 0, 7))
	if p.ResetPhase {
		feedback |= 1 << 3
	}
	data[111] = feedback

	data[112] = byte(clamp(p.LFORate, 0, 99))
	data[113] = byte(clamp(p.LFODelay, 0, 99))
	data[114] = byte(clamp(p.LFOPitchModDepth, 0, 99))
	data[115] = byte(clamp(p.LFOAmpModDepth, 0, 99))

	mod := byte(0)
	if p.LFOResetPhase {
		mod |= 1
	}
	mod |= byte(clamp(int(p.LFOWaveform), 0, 5)) << 1
	mod |= byte(clamp(p.LFOPitchModSensitivity, 0, 7)) << 4
	data[116] = mod

	data[117] = byte(clamp(p.Transpose, 0, 48))

	encodeName(data[118:118+nameBytes], p.Name)

	return data
}

func encodeOperator(b []byte, op Operator) {
	for i := 0; i < 4; i++ {
		b[i] = byte(clamp(op.EnvRates[i], 0, 99))
	}
	for i := 0; i < 4; i++ {
		b[4+i] = byte(clamp(op.EnvLevels[i], 0, 99))
	}
	b[8] = byte(clamp(op.KSBreakPoint, 0, 99))
	b[9] = byte(clamp(op.KSLeftDepth, 0, 99))
	b[10] = byte(clamp(op.KSRightDepth, 0, 99))
	b[11] = byte(clamp(op.KSLeftCurve, 0, 3)) | byte(clamp(op.KSRightCurve, 0, 3))<<2
	b[12] = byte(clamp(op.RateScaling, 0, 7)) | byte(clamp(op.Detune, 0, 14))<<3
	b[13] = byte(clamp(op.AmpModSensitivity, 0, 3)) | byte(clamp(op.VelocitySensitivity, 0, 7))<<2
	b[14] = byte(clamp(op.OutputLevel, 0, 99))
	mode := byte(0)
	if !op.Ratio {
		mode = 1
	}
	b[15] = mode | byte(clamp(op.Coarse, 0, 31))<<1
	b[16] = byte(clamp(op.Fine, 0, 99))
}

func encodeName(b []byte, name string) {
	for i := range b {
		b[i] = ' '
	}
	for i := 0; i < len(name) && i < len(b); i++ {
		b[i] = name[i] & 0x7F
	}
}

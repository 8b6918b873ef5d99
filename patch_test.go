package dx7

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// buildVoiceBytes returns a 128-byte packed voice with every byte set
// to a position-derived value (i % 100), for exercising decode offsets.
func buildVoiceBytes() []byte {
	data := make([]byte, voiceLength)
	for i := range data {
		data[i] = byte(i % 100)
	}
	// Keep the mode/curve nibble fields inside the ranges decodeOperator
	// expects so this fixture round-trips cleanly through re-encoding.
	for op := 0; op < numOperators; op++ {
		base := op * operatorBlockBytes
		data[base+11] = 0x05 // KS curves: left=1, right=1
		data[base+12] = 0x02 // rate scaling=2, detune=0
		data[base+13] = 0x01 // ams=1, velocity sensitivity=0
		data[base+15] = 0x00 // ratio mode, coarse=0
	}
	data[110] = 17          // algorithm
	data[111] = 0x0D        // feedback=5, reset phase set
	data[116] = 0b0010_1011 // lfo reset=1, waveform=5, pms=2
	data[117] = 24          // transpose
	copy(data[118:128], []byte("TESTVOICE\x00"))
	return data
}

func TestDecodePatchRejectsWrongLength(t *testing.T) {
	_, err := DecodePatch(make([]byte, voiceLength-1))
	require.ErrorIs(t, err, ErrBadVoiceLength)
}

func TestDecodePatchFieldOffsets(t *testing.T) {
	p, err := DecodePatch(buildVoiceBytes())
	require.NoError(t, err)

	assert.Equal(t, 17, p.Algorithm)
	assert.Equal(t, 5, p.Feedback)
	assert.True(t, p.ResetPhase)
	assert.Equal(t, 5, int(p.LFOWaveform))
	assert.Equal(t, 2, p.LFOPitchModSensitivity)
	assert.True(t, p.LFOResetPhase)
	assert.Equal(t, 24, p.Transpose)
	assert.Equal(t, "TESTVOICE", p.Name)
}

func TestDecodePatchClampsOutOfRangeAlgorithm(t *testing.T) {
	data := buildVoiceBytes()
	data[110] = 63 // only the low 5 bits (0..31) are the algorithm field
	p, err := DecodePatch(data)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.Algorithm, 0)
	assert.LessOrEqual(t, p.Algorithm, 31)
}

func TestEncodeVoiceRoundTripsThroughDecodePatch(t *testing.T) {
	original := buildVoiceBytes()
	p, err := DecodePatch(original)
	require.NoError(t, err)

	reencoded := EncodeVoice(p)
	require.Len(t, reencoded, voiceLength)

	p2, err := DecodePatch(reencoded)
	require.NoError(t, err)
	assert.Equal(t, p, p2)
}

func TestDecodeNameTrimsTrailingSpacesAndNulls(t *testing.T) {
	data := buildVoiceBytes()
	copy(data[118:128], []byte("AB   \x00\x00\x00\x00"))
	p, err := DecodePatch(data)
	require.NoError(t, err)
	assert.Equal(t, "AB", p.Name)
}

func TestEncodeNamePadsWithSpaces(t *testing.T) {
	data := make([]byte, nameBytes)
	encodeName(data, "HI")
	assert.Equal(t, "HI        ", string(data))
}

func TestBitsExtractsFieldAtShiftAndWidth(t *testing.T) {
	assert.Equal(t, 0x5, bits(0b0101_1010, 1, 4))
	assert.Equal(t, 1, bits(0b0000_0001, 0, 1))
}

func TestClampBoundsValue(t *testing.T) {
	assert.Equal(t, 0, clamp(-5, 0, 99))
	assert.Equal(t, 99, clamp(150, 0, 99))
	assert.Equal(t, 42, clamp(42, 0, 99))
}

// P1: for all valid-length voice byte strings, decoding then
// re-querying name/algorithm/transpose/feedback returns values within
// their documented ranges, regardless of how the raw bytes are set.
func TestDecodePatchAlwaysProducesInRangeFields(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		data := rapid.SliceOfN(rapid.Uint8(), voiceLength, voiceLength).Draw(rt, "voice")

		p, err := DecodePatch(data)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, p.Algorithm, 0)
		assert.LessOrEqual(t, p.Algorithm, 31)
		assert.GreaterOrEqual(t, p.Feedback, 0)
		assert.LessOrEqual(t, p.Feedback, 7)
		assert.GreaterOrEqual(t, p.Transpose, 0)
		assert.LessOrEqual(t, p.Transpose, 48)
		assert.LessOrEqual(t, len(p.Name), nameBytes)

		for _, op := range p.Operators {
			assert.GreaterOrEqual(t, op.OutputLevel, 0)
			assert.LessOrEqual(t, op.OutputLevel, 99)
			assert.GreaterOrEqual(t, op.Coarse, 0)
			assert.LessOrEqual(t, op.Coarse, 31)
		}
	})
}

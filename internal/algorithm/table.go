// Package algorithm holds the compile-time routing table for the DX7's 32
// fixed operator-interconnection topologies and the chain-fusion compiler
// that turns a routing into a sequence of operator-chain render calls.
package algorithm

// Opcode is the per-operator routing byte for one algorithm slot: which
// buffer it writes to, whether that write is additive, where it reads its
// modulation input from, and whether its output taps the feedback delay
// line.
type Opcode uint8

const (
	destMask       = 0x03
	additiveBit    = 0x04
	modSourceShift = 4
	modSourceMask  = 0x03

	feedbackTapBit = 0x40

	sourceFeedback = 3
)

// OutputBuffer names the mix buffer that at least one operator per
// algorithm must write to, additively.
const OutputBuffer = 0

// BufferScratch is the lone intermediate buffer used for serial
// modulator stacks within an algorithm. Because an algorithm's
// operators are evaluated 0..5 in order and each stack is fully
// consumed by its own carrier before the next stack starts, every
// stack in the table below can safely reuse the same scratch slot.
const BufferScratch = 1

// NewOpcode packs a routing opcode. modSource is a buffer index (0 or
// BufferScratch), or sourceFeedback (3) to mark "reads the chain's own
// feedback history as its modulation seed".
func NewOpcode(dest int, additive bool, modSource int, feedbackTap bool) Opcode {
	o := Opcode(dest & destMask)
	if additive {
		o |= additiveBit
	}
	o |= Opcode((modSource & modSourceMask) << modSourceShift)
	if feedbackTap {
		o |= feedbackTapBit
	}
	return o
}

// Destination reports this opcode's output buffer index.
func (o Opcode) Destination() int { return int(o) & destMask }

// Additive reports whether this opcode mixes into its destination
// rather than overwriting it.
func (o Opcode) Additive() bool { return o&additiveBit != 0 }

func (o Opcode) modSourceField() int { return (int(o) >> modSourceShift) & modSourceMask }

// ReadsFeedback reports whether this opcode seeds its modulation input
// from the feedback history rather than a named buffer.
func (o Opcode) ReadsFeedback() bool { return o.modSourceField() == sourceFeedback }

// ModBuffer reports the buffer this opcode reads as modulation input.
// Only meaningful when ReadsFeedback is false.
func (o Opcode) ModBuffer() int { return o.modSourceField() }

// IsFeedbackTap reports whether this operator's rendered output is
// written into the feedback history for the next sample.
func (o Opcode) IsFeedbackTap() bool { return o&feedbackTapBit != 0 }

// IsModulator reports whether the given operator, under the given
// algorithm, writes to a modulation buffer rather than OUTPUT. The
// brightness control raises modulator (not carrier) output levels.
func IsModulator(alg, op int) bool {
	return Table[alg][op].Destination() != OutputBuffer
}

func opcode(dest int, additive bool, mod int, fbTap bool) Opcode {
	return NewOpcode(dest, additive, mod, fbTap)
}

// stack builds the opcodes for a serial modulator chain of n operators
// (n>=1) terminating in a carrier. When feedback is true, the chain's
// first (bottom) operator seeds its own modulation input from the
// feedback history and also taps its own output back into it — the
// ordinary single-operator DX7 feedback loop used by most algorithms.
func stack(n int, feedback bool) []Opcode {
	if n == 1 {
		mod := 0
		if feedback {
			mod = sourceFeedback
		}
		return []Opcode{opcode(OutputBuffer, true, mod, feedback)}
	}
	out := make([]Opcode, n)
	firstMod := 0
	if feedback {
		firstMod = sourceFeedback
	}
	out[0] = opcode(BufferScratch, false, firstMod, feedback)
	for i := 1; i < n-1; i++ {
		out[i] = opcode(BufferScratch, false, BufferScratch, false)
	}
	out[n-1] = opcode(OutputBuffer, true, BufferScratch, false)
	return out
}

// loop builds an n-operator mutual feedback loop (n in {2,3}): the
// bottom operator seeds from the feedback history, the top operator
// taps its own output as the new history, and the result feeds a
// trailing carrier — exercising the n=2/n=3 FEEDBACK(n-1) chain
// specializations rather than the more common single-operator case.
func loop(n int) []Opcode {
	out := make([]Opcode, n+1)
	out[0] = opcode(BufferScratch, false, sourceFeedback, false)
	for i := 1; i < n-1; i++ {
		out[i] = opcode(BufferScratch, false, BufferScratch, false)
	}
	out[n-1] = opcode(BufferScratch, false, BufferScratch, true)
	out[n] = opcode(OutputBuffer, true, BufferScratch, false)
	return out
}

func concat(groups ...[]Opcode) [6]Opcode {
	var out [6]Opcode
	i := 0
	for _, g := range groups {
		for _, o := range g {
			out[i] = o
			i++
		}
	}
	if i != 6 {
		panic("algorithm table: operator group does not total six opcodes")
	}
	return out
}

// Table holds the 32 DX7 algorithms, indexed 0..31, six opcodes each in
// operator-evaluation order 0..5.
//
// Algorithm 31 (the last) is pinned exactly to six independent carriers
// with self-feedback confined to operator 0. The remaining 31 reconstruct the instrument's general family of serial
// modulator stacks, parallel carriers, and feedback loops of varying
// depth; see the design notes for how exactness was scoped.
var Table = [32][6]Opcode{
	0:  concat(stack(4, true), stack(2, false)),
	1:  concat(stack(3, true), stack(1, false), stack(2, false)),
	2:  concat(stack(1, true), stack(1, false), stack(2, false), stack(2, false)),
	3:  concat(stack(2, true), stack(2, false), stack(2, false)),
	4:  concat(stack(4, true), stack(1, false), stack(1, false)),
	5:  concat(stack(1, true), stack(2, false), stack(3, false)),
	6:  concat(stack(1, true), stack(3, false), stack(1, false), stack(1, false)),
	7:  concat(stack(1, true), stack(2, false), stack(1, false), stack(2, false)),
	8:  concat(stack(3, true), stack(2, false), stack(1, false)),
	9:  concat(stack(2, true), stack(2, false), stack(1, false), stack(1, false)),
	10: concat(stack(1, true), stack(1, false), stack(1, false), stack(3, false)),
	11: concat(stack(5, true), stack(1, false)),
	12: concat(stack(1, true), stack(1, false), stack(1, false), stack(1, false), stack(2, false)),
	13: concat(stack(2, true), stack(1, false), stack(2, false), stack(1, false)),
	14: concat(stack(3, true), stack(1, false), stack(1, false), stack(1, false)),
	15: concat(loop(2), stack(3, false)),
	16: concat(stack(1, true), stack(2, false), stack(2, false), stack(1, false)),
	17: concat(stack(2, true), stack(2, false), stack(1, false), stack(1, false)),
	18: concat(stack(3, true), stack(3, false)),
	19: concat(loop(3), stack(2, false)),
	20: concat(stack(1, true), stack(1, false), stack(2, false), stack(2, false)),
	21: concat(stack(2, true), stack(1, false), stack(1, false), stack(1, false), stack(1, false)),
	22: concat(stack(1, true), stack(3, false), stack(1, false), stack(1, false)),
	23: concat(stack(4, true), stack(1, false), stack(1, false)),
	24: concat(stack(1, true), stack(1, false), stack(1, false), stack(2, false), stack(1, false)),
	25: concat(stack(2, true), stack(3, false), stack(1, false)),
	26: concat(loop(2), stack(1, false), stack(1, false), stack(1, false)),
	27: concat(stack(3, true), stack(2, false), stack(1, false)),
	28: concat(stack(2, true), stack(1, false), stack(1, false), stack(2, false)),
	29: concat(stack(1, true), stack(2, false), stack(1, false), stack(1, false), stack(1, false)),
	30: concat(stack(1, true), stack(1, false), stack(2, false), stack(1, false), stack(1, false)),
	31: concat(stack(1, true), stack(1, false), stack(1, false), stack(1, false), stack(1, false), stack(1, false)),
}

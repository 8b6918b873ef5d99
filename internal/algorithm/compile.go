package algorithm

import "github.com/cbegin/dx7fm-go/internal/osc"

// maxChainLength bounds how many consecutive operators the compiler will
// fuse into a single chain-render call; longer runs fall back to
// multiple shorter calls.
const maxChainLength = 3

// Call is one compiled chain-render invocation: a slice of consecutive
// operator indices sharing a single RenderChain call, the modulation
// source it reads (osc.ModNone, osc.ModExternal, or a non-negative
// feedback-tap index local to this call), the destination buffer, and
// whether that destination write is additive.
type Call struct {
	Ops       []int
	ModSource int
	ModBuffer int
	Dest      int
	Additive  bool
}

// Compile walks an algorithm's six opcodes in evaluation order and
// produces its call plan, fusing consecutive operators into longer
// chains wherever a pre-specialized renderer exists and falling back to
// single-operator calls otherwise.
func Compile(alg int) []Call {
	ops := Table[alg]
	var calls []Call
	i := 0
	for i < len(ops) {
		// Grow the fusable run as far as possible, then shrink it back
		// until it matches an available specialization — the maximal
		// fusable run (e.g. a feedback loop followed by the carrier
		// that reads its result) is often one operator longer than any
		// single specialized renderer supports.
		j := i + 1
		for j < len(ops) && j-i < maxChainLength && fuses(ops[j-1], ops[j]) {
			j++
		}
		for j > i+1 && !hasSpecialization(ops[i:j]) {
			j--
		}
		calls = append(calls, buildCall(i, ops[i:j]))
		i = j
	}
	return calls
}

// fuses reports whether an opcode pair can be merged into one chain:
// the earlier operator must write (non-additively) to exactly the
// buffer the next operator reads as its modulation input.
func fuses(prev, next Opcode) bool {
	if prev.Additive() {
		return false
	}
	if next.ReadsFeedback() {
		return false
	}
	return next.modSourceField() == prev.Destination()
}

// hasSpecialization reports whether the given fused group matches one
// of the compiler's available chain-render specializations: any
// single-operator call, or a feedback-sourced chain of length 2 or 3
// whose feedback tap sits at the chain's final position.
func hasSpecialization(group []Opcode) bool {
	n := len(group)
	if n == 1 {
		return true
	}
	if n > maxChainLength {
		return false
	}
	if !group[0].ReadsFeedback() {
		return false
	}
	tap := -1
	for k, o := range group {
		if o.IsFeedbackTap() {
			tap = k
		}
	}
	return tap == n-1
}

func buildCall(start int, group []Opcode) Call {
	n := len(group)
	ops := make([]int, n)
	for k := range ops {
		ops[k] = start + k
	}
	last := group[n-1]
	first := group[0]

	call := Call{
		Ops:      ops,
		Dest:     last.Destination(),
		Additive: last.Additive(),
	}

	switch {
	case first.ReadsFeedback():
		tap := 0
		for k, o := range group {
			if o.IsFeedbackTap() {
				tap = k
			}
		}
		call.ModSource = tap
	case first.modSourceField() == 0:
		call.ModSource = osc.ModNone
	default:
		call.ModSource = osc.ModExternal
		call.ModBuffer = first.modSourceField()
	}
	return call
}

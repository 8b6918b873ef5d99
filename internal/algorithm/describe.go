package algorithm

import (
	"fmt"
	"strings"

	"github.com/cbegin/dx7fm-go/internal/osc"
)

// Describe renders a short ASCII diagram of an algorithm's compiled
// call plan, in the style of the hand-drawn routing charts that
// accompany most FM synthesis engine sources — useful for debugging a
// patch's topology from a REPL or test failure message.
func Describe(alg int) string {
	calls := Compile(alg)
	var b strings.Builder
	fmt.Fprintf(&b, "ALG=%d\n", alg)
	for _, c := range calls {
		ops := make([]string, len(c.Ops))
		for i, o := range c.Ops {
			ops[i] = fmt.Sprintf("%d", o+1)
		}
		chain := strings.Join(ops, "->")

		src := "-"
		switch c.ModSource {
		case osc.ModNone:
			src = "none"
		case osc.ModExternal:
			src = fmt.Sprintf("buf%d", c.ModBuffer)
		default:
			src = fmt.Sprintf("fb@%d", c.ModSource)
		}

		dest := fmt.Sprintf("buf%d", c.Dest)
		if c.Dest == OutputBuffer {
			dest = "OUT"
		}
		mix := "="
		if c.Additive {
			mix = "+="
		}
		fmt.Fprintf(&b, "  (%s) %s %s %s\n", src, chain, mix, dest)
	}
	return b.String()
}

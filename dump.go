package pointsto

import (
	"fmt"
	"io"
)

// Dump writes a human-readable rendering of the solved analysis to w:
// one line per representative listing its solution, followed by the
// edge list. Intended for debugging and the ptdump command, not for
// machine consumption.
func (a *Analysis) Dump(w io.Writer) {
	for _, vi := range a.vars.vars {
		n := vi.id
		if a.uf.find(n) != n {
			continue
		}
		fmt.Fprintf(w, "%d (%s) -> {", n, vi.name)
		first := true
		vi.solution.ForEach(func(m VarID) bool {
			if !first {
				fmt.Fprint(w, ", ")
			}
			first = false
			fmt.Fprintf(w, "%d", m)
			return true
		})
		fmt.Fprintln(w, "}")
	}

	fmt.Fprintln(w, "edges:")
	for _, vi := range a.vars.vars {
		n := vi.id
		if a.uf.find(n) != n {
			continue
		}
		for _, e := range a.graph.successorsOf(n) {
			e.weights.ForEach(func(wt uint64) bool {
				fmt.Fprintf(w, "  %d -> %d [%d]\n", e.src, e.dest, wt)
				return true
			})
		}
	}
}

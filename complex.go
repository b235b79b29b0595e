package pointsto

// shift returns a new intSet with every member id whose TypeSafe-checked
// offset k lands inside its aggregate replaced by the field variable at
// that offset -- the solver's field-sensitive analogue of simply adding
// k to every pointer in a solution set (spec.md §4.1 shift, §4.7).
func (a *Analysis) shift(s *intSet, k uint64) *intSet {
	out := newIntSet()
	s.ForEach(func(id VarID) bool {
		off := k
		if !a.TypeSafe(id, &off) {
			return true // precision loss already recorded by TypeSafe
		}
		out.Add(a.firstVarForOffset(id, off))
		return true
	})
	return out
}

// processComplexConstraints implements spec.md §4.7: walks i's complex
// list and, for each of the three shapes a complex constraint can take,
// updates the graph and solutions. Returns true if anything changed.
func (a *Analysis) processComplexConstraints(i VarID) bool {
	vi := a.vars.get(i)
	changed := false
	sol := vi.solution // snapshot; re-fetched after any unification below

	for _, c := range vi.complex {
		switch {
		case c.LHS.Kind == DerefExpr && c.RHS.Kind == AddrOfExpr:
			// *x := &y, x == i: for every p in solution(x), the field of
			// p at the deref's offset gains y's representative directly
			// in its solution; no edge is added.
			sol.ForEach(func(p VarID) bool {
				off := c.LHS.Offset
				if !a.TypeSafe(p, &off) {
					return true
				}
				dest := a.firstVarForOffset(p, off)
				dest = a.uf.find(dest)
				repVI := a.vars.get(dest)
				if repVI.solution.Add(a.uf.find(c.RHS.Var)) {
					a.markChanged(dest)
					changed = true
				}
				return true
			})
			// re-fetch i's representative solution before the next
			// constraint, as every case here does. No case in this
			// function unifies nodes, so the re-fetch finds the same set.
			sol = a.vars.get(a.uf.find(i)).solution

		case c.LHS.Kind == DerefExpr:
			// *x := y, x == i: every p in solution(x) copies from y at the
			// deref's offset. roff is y's own offset (e.g. y is itself a
			// field reference); the edge carries it as a weight so the
			// solver keeps shifting y's solution by roff on every later
			// round, and the fold-in below seeds it immediately so a y
			// that is already stable isn't stranded on the new edge
			// (spec.md §4.7 store case).
			roff := c.RHS.Offset
			src := a.uf.find(c.RHS.Var)
			sol.ForEach(func(p VarID) bool {
				off := c.LHS.Offset
				if !a.TypeSafe(p, &off) {
					return true
				}
				dest := a.uf.find(a.firstVarForOffset(p, off))
				a.connect(dest, src, roff)
				srcSol := a.vars.get(a.uf.find(src)).solution
				shifted := srcSol
				if roff != 0 {
					shifted = a.shift(srcSol, roff)
				}
				destVI := a.vars.get(dest)
				if destVI.solution.UnionInPlace(shifted) {
					a.markChanged(dest)
					changed = true
				}
				return true
			})
			sol = a.vars.get(a.uf.find(i)).solution

		case c.RHS.Kind == DerefExpr:
			// x := *y, y == i: every p in solution(y) has x copy from it
			// at the deref's offset. The located field is already the
			// exact target, so the edge and the fold-in are both
			// zero-weight (spec.md §4.7 load case).
			dst := a.uf.find(c.LHS.Var)
			sol.ForEach(func(p VarID) bool {
				off := c.RHS.Offset
				if !a.TypeSafe(p, &off) {
					return true
				}
				src := a.uf.find(a.firstVarForOffset(p, off))
				a.connect(dst, src, 0)
				dstVI := a.vars.get(dst)
				if dstVI.solution.UnionInPlace(a.vars.get(src).solution) {
					a.markChanged(dst)
					changed = true
				}
				return true
			})
			sol = a.vars.get(a.uf.find(i)).solution
		}
	}
	return changed
}

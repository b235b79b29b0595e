package pointsto

// topoOrder returns every live representative in leaf-first postorder
// over the successor graph: a node is appended only after all of its
// successors have been. This single list serves two purposes that read
// as opposite requirements but are the same list -- offline variable
// substitution wants reverse-topological order (process a node only
// after everything it depends on), and the worklist solver wants forward
// topological order with leaves first (propagate sinks before the nodes
// that copy from them). Both fall out of one sink-first DFS postorder,
// so there is exactly one traversal here, not two.
func (a *Analysis) topoOrder() []VarID {
	visited := make(map[VarID]bool)
	var order []VarID

	var visit func(n VarID)
	visit = func(n VarID) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, e := range a.graph.successorsOf(n) {
			visit(a.uf.find(e.dest))
		}
		order = append(order, n)
	}

	for _, vi := range a.vars.vars {
		n := vi.id
		if a.uf.find(n) != n {
			continue
		}
		visit(n)
	}
	return order
}

// offlineVariableSubstitution implements spec.md §4.6: a single pass over
// topoOrder unifying a node n into a common producer w whenever n cannot
// possibly hold anything w doesn't already: n's address is never taken,
// n is never the target of an indirect write, every edge n copies from
// carries only the zero-weight bit, all of those edges agree on the same
// representative w, and solution(n) is already a subset of solution(w).
// Under those conditions n and w always end up holding the same
// solution (Rountev & Chandra Thm. 4), so n is redundant and can be
// folded into w before the iterative solver ever runs. Processing in
// topoOrder means w has already been settled (or substituted itself) by
// the time n is considered, so substitution chains collapse in one pass.
//
// "n copies from" here is this package's successorsOf(n): the edges this
// analysis stores as {src: consumer, dest: source}, i.e. spec.md §4.6's
// preds[n] under its own (inverted) naming -- the set of nodes n actually
// depends on, not the set of nodes that depend on n.
func (a *Analysis) offlineVariableSubstitution() {
	for _, n := range a.topoOrder() {
		if n <= AnythingVar {
			continue
		}
		rep := a.uf.find(n)
		if rep != n {
			continue // already folded by an earlier step in this pass
		}
		vi := a.vars.get(n)
		if vi.addressTaken || vi.indirectTarget {
			continue
		}
		succs := a.graph.successorsOf(n)
		if len(succs) == 0 {
			continue
		}

		var w VarID
		haveW := false
		eligible := true
		for _, e := range succs {
			if !e.weights.isZeroOnly() {
				eligible = false
				break
			}
			rw := a.uf.find(e.dest)
			if !haveW {
				w, haveW = rw, true
			} else if rw != w {
				eligible = false
				break
			}
		}
		if !eligible || !haveW || w == n {
			continue
		}
		if !vi.solution.Difference(a.vars.get(w).solution).IsEmpty() {
			continue // solution(n) is not (yet) a subset of solution(w)
		}
		a.unifyInto(w, []VarID{n}, false)
	}
}

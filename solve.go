package pointsto

// Solve runs the fixed-point points-to analysis to completion, per
// spec.md §4.8. It is safe to call only once; a second call is a
// front-end contract violation, since the graph-build and offline-
// substitution passes assume a fresh constraint list.
func (a *Analysis) Solve() {
	if a.solved {
		panic(contractErrorf("Solve called twice on the same Analysis"))
	}

	a.buildInitialGraph()
	a.detectAndUnify(false)
	a.offlineVariableSubstitution()
	a.initializeChangedSet()
	// cycle detection has already run over every edge added so far, so
	// the first pass does not repeat it.
	a.edgeAdded = false

	for a.changedCount > 0 {
		a.stats.SolverIterations++
		a.runWorklistPass()
	}

	a.solved = true
}

// initializeChangedSet seeds the worklist with every representative
// whose direct solution is non-empty after the initial graph build and
// offline substitution -- those are the only nodes whose solution can
// possibly propagate further on the first pass.
func (a *Analysis) initializeChangedSet() {
	for _, vi := range a.vars.vars {
		n := vi.id
		if a.uf.find(n) != n {
			continue
		}
		if !vi.solution.IsEmpty() {
			a.markChanged(n)
		}
	}
}

// runWorklistPass implements one outer iteration of spec.md §4.8's loop:
// drain the current changed set, re-run cycle detection if the previous
// pass added an edge, then walk every representative in topological
// order processing its complex constraints and propagating solutions
// along copy edges.
func (a *Analysis) runWorklistPass() {
	if a.edgeAdded {
		a.edgeAdded = false
		a.detectAndUnify(true)
	}

	pass := a.changed
	a.changed = newIntSet()
	a.changedCount = 0

	order := a.topoOrder()

	for _, n := range order {
		rep := a.uf.find(n)
		if rep != n {
			continue
		}
		if !pass.Has(rep) {
			continue
		}
		a.processComplexConstraints(rep)
	}

	for _, n := range order {
		rep := a.uf.find(n)
		if rep != n {
			continue
		}
		if !pass.Has(rep) {
			continue
		}
		// rep just changed; every consumer edge consumer->rep (rep is the
		// copy source, consumer is the lhs of some consumer := rep[+w])
		// needs rep's solution, shifted by the edge's weight, folded in.
		vi := a.vars.get(rep)
		for _, e := range a.graph.predecessorsOf(rep) {
			consumer := a.uf.find(e.src)
			if consumer == rep {
				continue
			}
			consumerVI := a.vars.get(consumer)
			e.weights.ForEach(func(w uint64) bool {
				var shifted *intSet
				if w == 0 {
					shifted = vi.solution
				} else {
					shifted = a.shift(vi.solution, w)
				}
				if consumerVI.solution.UnionInPlace(shifted) {
					a.markChanged(consumer)
				}
				return true
			})
		}
	}
}

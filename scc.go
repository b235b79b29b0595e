package pointsto

// cycleDetector runs a Tarjan SCC pass over the zero-weight edges of the
// current successor graph and collects every strongly connected component
// it finds; detectAndUnify then folds each one into one representative
// (spec.md §4.4). Two nodes in a cycle can
// only ever agree on their final solution, so collapsing them early
// keeps the worklist small.
type cycleDetector struct {
	a *Analysis

	index   map[VarID]int
	lowlink map[VarID]int
	onStack map[VarID]bool
	stack   []VarID
	next    int

	// visited guards re-entrant calls to visit across the whole pass,
	// distinct from onStack which only tracks the current DFS spine.
	visited map[VarID]bool

	sccs [][]VarID
}

func newCycleDetector(a *Analysis) *cycleDetector {
	return &cycleDetector{
		a:       a,
		index:   make(map[VarID]int),
		lowlink: make(map[VarID]int),
		onStack: make(map[VarID]bool),
		visited: make(map[VarID]bool),
	}
}

// run discovers SCCs reachable from every live representative and
// returns them in the order found.
func (d *cycleDetector) run() [][]VarID {
	for _, vi := range d.a.vars.vars {
		n := vi.id
		if d.a.uf.find(n) != n {
			continue // not a representative, skip
		}
		if !d.visited[n] {
			d.visit(n)
		}
	}
	return d.sccs
}

// visit is a textbook recursive Tarjan traversal: index/lowlink
// bookkeeping on the call stack, and a root found when lowlink == index.
// It is not the Nuutila variant: no representative is reassigned during
// the walk, a visited node that is no longer on the stack is simply
// skipped, and the members of each SCC are unified only after the whole
// pass, by detectAndUnify.
func (d *cycleDetector) visit(n VarID) {
	d.visited[n] = true
	d.index[n] = d.next
	d.lowlink[n] = d.next
	d.next++
	d.stack = append(d.stack, n)
	d.onStack[n] = true

	for _, e := range d.a.graph.successorsOf(n) {
		if !e.weights.hasZero() {
			// non-zero weights encode a real field displacement, not an
			// identity copy; only a zero-weight edge can justify treating
			// the two endpoints as the same value (spec.md §4.4).
			continue
		}
		w := d.a.uf.find(e.dest)
		if w == n {
			continue // self-loop, not part of an SCC with anything else
		}
		if !d.visited[w] {
			d.visit(w)
			if d.lowlink[w] < d.lowlink[n] {
				d.lowlink[n] = d.lowlink[w]
			}
		} else if d.onStack[w] {
			if d.index[w] < d.lowlink[n] {
				d.lowlink[n] = d.index[w]
			}
		}
	}

	if d.lowlink[n] != d.index[n] {
		return
	}

	// n is an SCC root. Pop members off the stack down to and including n.
	var members []VarID
	for {
		top := d.stack[len(d.stack)-1]
		d.stack = d.stack[:len(d.stack)-1]
		d.onStack[top] = false
		members = append(members, top)
		if top == n {
			break
		}
	}
	if len(members) > 1 {
		d.sccs = append(d.sccs, members)
	}
}

// unifyJob names one member folding into rep.
type unifyJob struct {
	rep, member VarID
}

// detectAndUnify runs a cycle-detection pass and folds every SCC found
// into a single representative. updateChanged controls whether the
// changed set is touched -- false during the initial pass before the
// worklist exists, true once the solver loop is live (spec.md §4.4,
// §4.8).
func (a *Analysis) detectAndUnify(updateChanged bool) bool {
	d := newCycleDetector(a)
	sccs := d.run()
	if len(sccs) == 0 {
		return false
	}
	for _, members := range sccs {
		rep := members[0]
		for _, m := range members[1:] {
			if m < rep {
				rep = m
			}
		}
		jobs := make([]unifyJob, 0, len(members)-1)
		for _, m := range members {
			if m != rep {
				jobs = append(jobs, unifyJob{rep: rep, member: m})
			}
		}
		a.unifyQueue(jobs, updateChanged)
	}
	return true
}

// unifyQueue folds a batch of members into their (single, shared) rep:
// the rep of jobs[0] is used for every job in the batch, and the members
// are handed to unifyInto, which merges them one at a time.
func (a *Analysis) unifyQueue(jobs []unifyJob, updateChanged bool) {
	if len(jobs) == 0 {
		return
	}
	rep := jobs[0].rep
	members := make([]VarID, 0, len(jobs))
	for _, j := range jobs {
		members = append(members, j.member)
	}
	a.unifyInto(rep, members, updateChanged)
}

// unifyInto folds each of members into rep, one at a time so each merge
// sees the accumulated result of the ones before it (spec.md §4.5).
func (a *Analysis) unifyInto(rep VarID, members []VarID, updateChanged bool) {
	for _, m := range members {
		if a.uf.find(m) == a.uf.find(rep) {
			continue // already folded via a transitively discovered edge
		}
		a.mergeInto(rep, m, updateChanged)
		if updateChanged {
			a.stats.DynamicUnifications++
		} else {
			a.stats.StaticUnifications++
		}
	}
}

// mergeInto folds m's solution, edges, complex list and variables set
// into rep, then repoints the union-find structure so every later find(m)
// resolves to rep (spec.md §4.5).
func (a *Analysis) mergeInto(rep, m VarID, updateChanged bool) {
	repVI := a.vars.get(rep)
	mVI := a.vars.get(m)

	grew := repVI.solution.UnionInPlace(mVI.solution)

	repVI.complex = mergeComplexSorted(repVI.complex, rewriteComplexVar(mVI.complex, m, rep))
	mVI.complex = nil

	repVI.variables.Add(m)
	repVI.variables.UnionInPlace(mVI.variables)
	mVI.variables = newIntSet()

	repVI.addressTaken = repVI.addressTaken || mVI.addressTaken
	repVI.indirectTarget = repVI.indirectTarget || mVI.indirectTarget

	a.rerouteEdges(rep, m)
	a.uf.setNode(m, rep)
	mVI.solution = newIntSet()

	a.clearSelfLoopZeroBit(rep)

	if grew && updateChanged {
		a.markChanged(rep)
	}
}

// rerouteEdges moves every edge touching m onto rep, merging weight sets
// where rep already has a parallel edge (spec.md §4.5).
func (a *Analysis) rerouteEdges(rep, m VarID) {
	for _, e := range a.graph.successorsOf(m) {
		dest := e.dest
		if dest == m {
			dest = rep
		}
		target := a.graph.ensureEdge(rep, dest)
		if target.weights.UnionInPlace(e.weights) {
			a.edgeAdded = true
		}
		a.graph.removeEdge(m, e.dest)
	}
	for _, e := range a.graph.predecessorsOf(m) {
		src := e.src
		if src == m {
			src = rep
		}
		target := a.graph.ensureEdge(src, rep)
		if target.weights.UnionInPlace(e.weights) {
			a.edgeAdded = true
		}
		a.graph.removeEdge(e.src, m)
	}
}

// clearSelfLoopZeroBit drops rep's own zero-weight self edge, if any:
// once m folds into rep a pre-existing rep->rep copy at offset zero
// carries no information (spec.md §4.5's "collapsing a cycle must not
// leave behind a trivial self edge").
func (a *Analysis) clearSelfLoopZeroBit(rep VarID) {
	e := a.graph.lookupEdge(rep, rep)
	if e == nil {
		return
	}
	e.weights.remove(0)
	a.graph.removeEdgeIfEmpty(e)
}

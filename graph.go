package pointsto

// edgeRecord is a single owned edge, replacing the reference
// implementation's double-stored (succs/preds share one aliased weights
// bitset) representation with two non-owning indices into one record
// (spec.md §9, Design Notes: "this removes the source's implicit
// aliasing bug surface"). preds[dest][src] and succs[src][dest] both
// point at the same *edgeRecord.
type edgeRecord struct {
	src, dest VarID
	weights   *weightSet
}

// graph is the constraint graph: per-representative adjacency, built
// once from the canonicalized constraint list and then mutated in place
// by unification and complex-constraint processing (spec.md §3, §4.3).
type graph struct {
	succs map[VarID]map[VarID]*edgeRecord
	preds map[VarID]map[VarID]*edgeRecord
}

func newGraph() *graph {
	return &graph{
		succs: make(map[VarID]map[VarID]*edgeRecord),
		preds: make(map[VarID]map[VarID]*edgeRecord),
	}
}

func (g *graph) lookupEdge(src, dest VarID) *edgeRecord {
	if m, ok := g.succs[src]; ok {
		return m[dest]
	}
	return nil
}

// ensureEdge returns the edge from src to dest, creating it (with an
// empty weight set) if absent.
func (g *graph) ensureEdge(src, dest VarID) *edgeRecord {
	if e := g.lookupEdge(src, dest); e != nil {
		return e
	}
	e := &edgeRecord{src: src, dest: dest, weights: newWeightSet()}
	if g.succs[src] == nil {
		g.succs[src] = make(map[VarID]*edgeRecord)
	}
	g.succs[src][dest] = e
	if g.preds[dest] == nil {
		g.preds[dest] = make(map[VarID]*edgeRecord)
	}
	g.preds[dest][src] = e
	return e
}

func (g *graph) removeEdge(src, dest VarID) {
	if m, ok := g.succs[src]; ok {
		delete(m, dest)
	}
	if m, ok := g.preds[dest]; ok {
		delete(m, src)
	}
}

// removeEdgeIfEmpty drops an edge once its last weight bit has been
// cleared, matching the edge invariant that weights is never empty for a
// live edge (spec.md §3).
func (g *graph) removeEdgeIfEmpty(e *edgeRecord) {
	if e.weights.IsEmpty() {
		g.removeEdge(e.src, e.dest)
	}
}

// successorsOf and predecessorsOf return a defensive copy: callers (most
// notably unification) mutate the underlying maps while iterating.
func (g *graph) successorsOf(n VarID) []*edgeRecord {
	m := g.succs[n]
	out := make([]*edgeRecord, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	return out
}

func (g *graph) predecessorsOf(n VarID) []*edgeRecord {
	m := g.preds[n]
	out := make([]*edgeRecord, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	return out
}

// connect adds a weighted copy edge src -> dest, reporting whether this
// added a new edge or a new weight bit to an existing one; the solver
// uses that to decide whether cycle detection must run again before the
// next pass (spec.md §4.8 step 1).
func (a *Analysis) connect(src, dest VarID, weight uint64) bool {
	e := a.graph.ensureEdge(src, dest)
	added := e.weights.Add(weight)
	if added {
		a.edgeAdded = true
	}
	return added
}

// buildInitialGraph partitions the canonicalized constraint list into
// direct solution insertions, complex-constraint attachments and graph
// edges, per spec.md §4.3. It runs once, lazily, before the first Solve.
func (a *Analysis) buildInitialGraph() {
	for _, c := range a.constraints {
		switch {
		case c.LHS.Kind == DerefExpr:
			// *x := y or *x := &y: attach to complex(x).
			rep := a.uf.find(c.LHS.Var)
			vi := a.vars.get(rep)
			vi.complex = insertComplexSorted(vi.complex, c)

		case c.RHS.Kind == AddrOfExpr:
			// x := &y: insert y directly into solution(x).
			rep := a.uf.find(c.LHS.Var)
			if a.vars.get(rep).solution.Add(c.RHS.Var) {
				a.markChanged(rep)
			}

		case c.RHS.Kind == DerefExpr:
			// x := *y: attach to complex(y).
			rep := a.uf.find(c.RHS.Var)
			vi := a.vars.get(rep)
			vi.complex = insertComplexSorted(vi.complex, c)

		default:
			// x := y, both scalar.
			if c.LHS.Var <= AnythingVar || c.RHS.Var <= AnythingVar {
				continue
			}
			if c.LHS.Var == c.RHS.Var && c.RHS.Offset == 0 {
				continue // trivial self-zero edge
			}
			src := a.uf.find(c.RHS.Var)
			dst := a.uf.find(c.LHS.Var)
			a.connect(dst, src, c.RHS.Offset)
		}
	}
}

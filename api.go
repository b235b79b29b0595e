package pointsto

// Analysis owns one complete points-to problem: its variables, canonical
// constraints, constraint graph, union-find structure and solved state.
// A zero Analysis is not usable; construct one with New (spec.md §3, §6).
type Analysis struct {
	opts Options

	vars        varTable
	constraints []Constraint

	graph *graph
	uf    *unionFind

	changed      *intSet
	changedCount int
	edgeAdded    bool

	notes *Notes
	stats Stats

	solved bool
}

// New creates an Analysis with the four special variables already seeded
// per spec.md §3: NULL has no outgoing constraints, ANYTHING points to
// itself, and READONLY and INTEGER both point at ANYTHING so anything
// written through them is immediately folded into the universal set.
func New(opts Options) *Analysis {
	a := &Analysis{
		opts:    opts,
		graph:   newGraph(),
		changed: newIntSet(),
		notes:   &Notes{},
	}
	a.uf = &unionFind{a: a}

	null := a.vars.alloc(nil, "<null>", 0, unknownSize, unknownSize)
	null.isArtificial = true
	anything := a.vars.alloc(nil, "<anything>", 0, unknownSize, unknownSize)
	anything.isArtificial = true
	readonly := a.vars.alloc(nil, "<readonly>", 0, unknownSize, unknownSize)
	readonly.isArtificial = true
	integer := a.vars.alloc(nil, "<integer>", 0, unknownSize, unknownSize)
	integer.isArtificial = true
	a.stats.VarsCreated = 4

	_ = null // id 0, NullVar: no constraints of its own

	a.AddConstraint(ScalarExpr, AnythingVar, 0, AddrOfExpr, AnythingVar, 0)
	a.AddConstraint(ScalarExpr, ReadonlyVar, 0, AddrOfExpr, AnythingVar, 0)
	a.AddConstraint(ScalarExpr, IntegerVar, 0, AddrOfExpr, AnythingVar, 0)

	return a
}

// Notes returns the diagnostics accumulated so far.
func (a *Analysis) Notes() []Note { return a.notes.Entries() }

// Stats returns a snapshot of the solver's bookkeeping counters.
func (a *Analysis) Stats() Stats { return a.stats }

// markChanged adds rep to the changed set, bumping changedCount only on
// first insertion so repeated marks of an already-queued node are free.
func (a *Analysis) markChanged(rep VarID) {
	if a.changed.Add(rep) {
		a.changedCount++
	}
}

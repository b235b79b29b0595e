package pointsto

// Result is the tri-state answer spec.md §4.9 asks every query to
// return: a query never panics, even against an unsolved or malformed
// variable -- it degrades to resultUnknown instead.
type Result int

const (
	resultUnknown Result = iota
	resultUniverse
	resultKnown
)

func (r Result) String() string {
	switch r {
	case resultUniverse:
		return "universe"
	case resultKnown:
		return "known"
	default:
		return "unknown"
	}
}

// IsUnknown, IsUniverse and IsKnown discriminate a Result.
func (r Result) IsUnknown() bool  { return r == resultUnknown }
func (r Result) IsUniverse() bool { return r == resultUniverse }
func (r Result) IsKnown() bool    { return r == resultKnown }

// PointsTo reports what is known about p's solution after Solve. A
// variable that was never solved, that resolves to ANYTHING, or whose
// solution contains ANYTHING or any other artificial variable reports
// resultUniverse or resultUnknown rather than a concrete solution, per spec.md §4.9's caution against mistaking "no information
// yet" for "points to nothing".
func (a *Analysis) PointsTo(p VarID) Result {
	if !a.solved {
		return resultUnknown
	}
	if int(p) >= len(a.vars.vars) {
		return resultUnknown
	}
	rep := a.uf.find(p)
	if rep == AnythingVar {
		return resultUniverse
	}
	vi := a.vars.get(rep)
	if vi.size != vi.fullSize && !vi.subvarMeta {
		// A genuine sub-range the collaborator never declared as a field
		// of anything: there is no sub-storage id to report back, so the
		// query is unanswerable rather than "points to nothing" (spec.md
		// §4.9). A decomposed field from CreateVariable, or a NewVariable
		// call that linked a parent, always carries subvarMeta and never
		// reaches here.
		return resultUnknown
	}
	if vi.solution.Has(AnythingVar) {
		return resultUniverse
	}
	// Any other artificial member (NULL, READONLY, INTEGER, a heap
	// summary node, a dereference temp) signals the solution mixes in
	// something with no externally meaningful decl id, so the whole
	// query degrades to "no information" rather than a partial answer
	// (spec.md §4.9).
	result := resultKnown
	vi.solution.ForEach(func(m VarID) bool {
		if a.vars.get(m).isArtificial {
			result = resultUnknown
			return false
		}
		return true
	})
	return result
}

// ForEachInSolution calls cb once for every variable in id's solved
// solution set, in ascending id order. It is a no-op if the analysis has
// not been solved or id is out of range. An id that resolves to ANYTHING
// visits ANYTHING's own solution, which is ANYTHING itself (callers should
// check PointsTo first when the universe/unknown distinction matters).
func (a *Analysis) ForEachInSolution(id VarID, cb func(VarID)) {
	if !a.solved || int(id) >= len(a.vars.vars) {
		return
	}
	rep := a.uf.find(id)
	vi := a.vars.get(rep)
	vi.solution.ForEach(func(m VarID) bool {
		cb(m)
		return true
	})
}

// Representative returns id's current union-find representative. Two
// variables alias exactly when they share a representative (spec.md
// §4.9).
func (a *Analysis) Representative(id VarID) VarID {
	return a.uf.find(id)
}

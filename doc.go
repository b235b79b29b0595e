// Package pointsto implements a field-sensitive, inclusion-based
// (Andersen-style) points-to analysis over a single procedure's worth of
// pointer assignments and PHI nodes.
//
// The package owns the constraint system end to end: the variable model
// (vars.go), the tagged constraint representation (constraints.go), the
// constraint graph (graph.go), cycle detection and unification (scc.go),
// offline variable substitution (offline.go), complex-constraint processing
// (complex.go), the worklist solver (solve.go) and the query API
// (query.go). Turning concrete IR (assignments, calls, field references)
// into constraints is deliberately left to a front end; see the sibling
// frontend package for a demonstration that walks Go source.
//
// The analysis is single-procedure, flow- and context-insensitive: callees
// and external arguments fold into a single unknown location, and there is
// no attempt to soundly model unions or variable-length arrays. See
// SPEC_FULL.md for the full set of invariants this package maintains.
package pointsto

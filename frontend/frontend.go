// Package frontend turns a Go function body into pointsto constraints,
// the way a real compiler's alias-analysis pass would. It is a reference
// collaborator, not the only possible one: pointsto.Analysis never
// imports this package, it only defines the inbound API frontend calls
// into.
//
// Traversal order comes from extras/cfg: EmitFunc builds the function's
// control flow graph and walks it start to finish, visiting each
// statement once regardless of how many loop back-edges or branches lead
// to it. Constraint order does not affect the solved result, but walking
// the CFG rather than the raw AST means a statement nested three if's
// deep is visited the same way as a top-level one, with no separate
// recursive case for each nesting construct.
package frontend

import (
	"go/ast"
	"go/types"

	"github.com/godoctor/pointsto"
	"github.com/godoctor/pointsto/extras/cfg"
	"github.com/godoctor/pointsto/typelayout"
)

// Emitter walks one or more function bodies and feeds the constraints it
// derives to an Analysis.
type Emitter struct {
	a     *pointsto.Analysis
	info  *types.Info
	cache *typelayout.Cache
	vars  map[types.Object]pointsto.VarID
}

// NewEmitter creates an Emitter that reports types via info and computes
// struct layouts with cache.
func NewEmitter(a *pointsto.Analysis, info *types.Info, cache *typelayout.Cache) *Emitter {
	return &Emitter{a: a, info: info, cache: cache, vars: make(map[types.Object]pointsto.VarID)}
}

// VarOf returns the variable the emitter created for obj, if any.
func (e *Emitter) VarOf(obj types.Object) (pointsto.VarID, bool) {
	id, ok := e.vars[obj]
	return id, ok
}

// varFor returns obj's variable, creating it (via CreateVariable, so
// struct-typed locals get field-sensitive decomposition) on first
// reference.
func (e *Emitter) varFor(obj types.Object) pointsto.VarID {
	if id, ok := e.vars[obj]; ok {
		return id
	}
	layout := e.cache.LayoutOf(obj.Type())
	id := e.a.CreateVariable(obj, obj.Name(), layout)
	e.vars[obj] = id
	return id
}

// EmitFunc builds fn's control flow graph and walks it from the entry
// statement, emitting constraints for every assignment, address-of
// expression, and pointer dereference it finds along the way. Nested
// statements (inside an if, for, switch, or range body) are CFG vertices
// in their own right, so a single reachability walk reaches all of them
// without frontend needing its own per-construct recursion.
func (e *Emitter) EmitFunc(fn *ast.FuncDecl) {
	if fn.Body == nil || len(fn.Body.List) == 0 {
		return
	}
	graph := cfg.FuncCFG(fn)
	visited := make(map[ast.Stmt]bool)
	queue := []ast.Stmt{fn.Body.List[0]}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if visited[s] {
			continue
		}
		visited[s] = true
		e.buildStmt(s)
		queue = append(queue, graph.Succs(s)...)
	}
}

func (e *Emitter) buildStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.AssignStmt:
		e.buildAssign(s)
	case *ast.ExprStmt:
		e.evalExpr(s.X)
	}
}

// buildAssign emits one constraint per (lhs, rhs) pair of a (possibly
// multi-value) assignment. An aggregate-to-aggregate copy is expanded
// field by field up to min(lhssize, rhssize): the front end's job per
// the open question this package resolves, not the solver's.
func (e *Emitter) buildAssign(s *ast.AssignStmt) {
	for i, lhs := range s.Lhs {
		if i >= len(s.Rhs) {
			break
		}
		rhs := s.Rhs[i]
		e.buildOneAssign(lhs, rhs)
	}
}

func (e *Emitter) buildOneAssign(lhs, rhs ast.Expr) {
	if e.buildAggregateAssign(lhs, rhs) {
		return
	}
	lKind, lVar, lOff, ok := e.buildLHS(lhs)
	if !ok {
		return
	}
	rKind, rVar, rOff, ok := e.buildRHS(rhs)
	if !ok {
		return
	}
	e.a.AddConstraint(lKind, lVar, lOff, rKind, rVar, rOff)
}

// buildAggregateAssign handles s2 = s1 where both sides are plain
// identifiers naming the same decomposed struct shape: a whole-value copy
// has to move every field, not just the one CreateVariable happens to
// return as the aggregate's head variable. It expands the copy into one
// scalar constraint per field pair, up to min(len(lhs fields), len(rhs
// fields)) -- this package's resolution of spec.md §9's aggregate-copy-size
// open question. Reports false, leaving the caller to fall through to the
// ordinary scalar/address-of/deref path, for anything that isn't this
// exact shape: non-identifier operands, non-struct operands, or a struct
// type with no fields. It does not check whether CreateVariable actually
// decomposed the operands: for a struct left whole (field-insensitive
// mode, or a type with a union in it) FieldVar resolves every offset to
// the whole variable, so the expansion emits the same whole-variable copy
// once per field pair.
func (e *Emitter) buildAggregateAssign(lhs, rhs ast.Expr) bool {
	lIdent, ok := lhs.(*ast.Ident)
	if !ok {
		return false
	}
	rIdent, ok := rhs.(*ast.Ident)
	if !ok {
		return false
	}
	lObj, rObj := e.objectOf(lIdent), e.objectOf(rIdent)
	if lObj == nil || rObj == nil {
		return false
	}
	if _, ok := lObj.Type().Underlying().(*types.Struct); !ok {
		return false
	}
	if _, ok := rObj.Type().Underlying().(*types.Struct); !ok {
		return false
	}

	lFields := e.cache.LayoutOf(lObj.Type()).Fields()
	rFields := e.cache.LayoutOf(rObj.Type()).Fields()
	if len(lFields) == 0 || len(rFields) == 0 {
		return false
	}

	lBase := e.varFor(lObj)
	rBase := e.varFor(rObj)
	n := len(lFields)
	if len(rFields) < n {
		n = len(rFields)
	}
	for i := 0; i < n; i++ {
		lv := e.a.FieldVar(lBase, lFields[i].Offset)
		rv := e.a.FieldVar(rBase, rFields[i].Offset)
		e.a.AddConstraint(pointsto.ScalarExpr, lv, 0, pointsto.ScalarExpr, rv, 0)
	}
	return true
}

// buildLHS classifies an assignment target: a plain identifier is a
// scalar write, a unary star expression is a store through a pointer.
func (e *Emitter) buildLHS(expr ast.Expr) (pointsto.ExprKind, pointsto.VarID, uint64, bool) {
	switch x := expr.(type) {
	case *ast.Ident:
		obj := e.objectOf(x)
		if obj == nil {
			return 0, 0, 0, false
		}
		return pointsto.ScalarExpr, e.varFor(obj), 0, true
	case *ast.StarExpr:
		k, v, off, ok := e.buildRHS(x.X)
		if !ok || k != pointsto.ScalarExpr {
			return 0, 0, 0, false
		}
		return pointsto.DerefExpr, v, off, true
	case *ast.SelectorExpr:
		return e.buildSelector(x)
	}
	return 0, 0, 0, false
}

// buildRHS classifies an assignment source: an address-of expression, a
// dereference, or a plain value reference.
func (e *Emitter) buildRHS(expr ast.Expr) (pointsto.ExprKind, pointsto.VarID, uint64, bool) {
	switch x := expr.(type) {
	case *ast.UnaryExpr:
		if x.Op.String() == "&" {
			k, v, off, ok := e.buildLHS(x.X)
			if !ok || k != pointsto.ScalarExpr {
				return 0, 0, 0, false
			}
			return pointsto.AddrOfExpr, v, off, true
		}
	case *ast.StarExpr:
		k, v, off, ok := e.buildRHS(x.X)
		if !ok || k != pointsto.ScalarExpr {
			return 0, 0, 0, false
		}
		return pointsto.DerefExpr, v, off, true
	case *ast.Ident:
		obj := e.objectOf(x)
		if obj == nil {
			return 0, 0, 0, false
		}
		return pointsto.ScalarExpr, e.varFor(obj), 0, true
	case *ast.SelectorExpr:
		return e.buildSelector(x)
	case *ast.CallExpr:
		return e.buildCastOrCall(x)
	}
	return 0, 0, 0, false
}

// buildSelector handles x.f. Go lets x be either a struct value or a
// pointer to one (an implicit dereference); the two cases need
// different constraint shapes. A pointer base is modeled exactly like
// an explicit *x at the field's offset -- a Deref expression the
// solver's load/store machinery already knows how to shift by that
// offset. A value base selects one of the field variables
// CreateVariable's decomposition already created, looked up directly
// by offset, so the result carries no offset of its own.
func (e *Emitter) buildSelector(sel *ast.SelectorExpr) (pointsto.ExprKind, pointsto.VarID, uint64, bool) {
	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return 0, 0, 0, false
	}
	obj := e.objectOf(ident)
	if obj == nil {
		return 0, 0, 0, false
	}
	base := e.varFor(obj)

	elemType := obj.Type()
	isPtr := false
	if ptr, ok := elemType.Underlying().(*types.Pointer); ok {
		isPtr = true
		elemType = ptr.Elem()
	}
	layout := e.cache.LayoutOf(elemType)
	var fieldOffset uint64
	for _, f := range layout.Fields() {
		if f.Name == sel.Sel.Name {
			fieldOffset = f.Offset
			break
		}
	}

	if isPtr {
		return pointsto.DerefExpr, base, fieldOffset, true
	}
	return pointsto.ScalarExpr, e.a.FieldVar(base, fieldOffset), 0, true
}

// buildCastOrCall resolves a call expression that is actually a type
// conversion -- int-to-pointer and pointer-to-int casts among them. The
// open question of how aggressively to trust such casts is decided here,
// not in the solver: a cast to a pointer type is treated as producing
// ANYTHING (conservative but sound), everything else is opaque and
// simply ignored. Nothing is ever routed to INTEGER, whatever the type
// of the converted operand.
func (e *Emitter) buildCastOrCall(call *ast.CallExpr) (pointsto.ExprKind, pointsto.VarID, uint64, bool) {
	fnType := e.info.TypeOf(call.Fun)
	if fnType == nil {
		return 0, 0, 0, false
	}
	if _, isPtr := fnType.Underlying().(*types.Pointer); isPtr {
		return pointsto.AddrOfExpr, pointsto.AnythingVar, 0, true
	}
	return 0, 0, 0, false
}

// evalExpr visits an expression used only for its side effects -- a bare
// call statement -- running buildRHS on each argument, which creates a
// variable for any identifier it names. No constraint is emitted, so no
// address-taken or indirect-target flag is set and the arguments do not
// flow anywhere.
func (e *Emitter) evalExpr(expr ast.Expr) {
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return
	}
	for _, arg := range call.Args {
		e.buildRHS(arg)
	}
}

func (e *Emitter) objectOf(ident *ast.Ident) types.Object {
	if e.info == nil {
		return nil
	}
	return e.info.ObjectOf(ident)
}

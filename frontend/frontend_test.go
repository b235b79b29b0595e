package frontend_test

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/godoctor/pointsto"
	"github.com/godoctor/pointsto/frontend"
	"github.com/godoctor/pointsto/typelayout"
)

func typeCheck(t *testing.T, src string) (*ast.File, *types.Info) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", src, 0)
	require.NoError(t, err)

	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{Importer: importer.Default()}
	_, err = conf.Check("test", fset, []*ast.File{f}, info)
	require.NoError(t, err)
	return f, info
}

func findFunc(f *ast.File, name string) *ast.FuncDecl {
	for _, d := range f.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok && fd.Name.Name == name {
			return fd
		}
	}
	return nil
}

func TestEmitterAddressOfAndLoad(t *testing.T) {
	require := require.New(t)
	src := `
package test

func f() {
	var x int
	var y *int
	y = &x
	var z int
	z = *y
	_ = z
}
`
	file, info := typeCheck(t, src)
	fn := findFunc(file, "f")
	require.NotNil(fn)

	a := pointsto.New(pointsto.Options{FieldSensitive: true})
	cache := typelayout.NewCache(nil)
	e := frontend.NewEmitter(a, info, cache)
	e.EmitFunc(fn)

	xObj := objectDefined(info, "x")
	yObj := objectDefined(info, "y")
	require.NotNil(xObj)
	require.NotNil(yObj)

	a.Solve()

	xID, ok := e.VarOf(xObj)
	require.True(ok)
	yID, ok := e.VarOf(yObj)
	require.True(ok)

	seen := false
	a.ForEachInSolution(yID, func(id pointsto.VarID) {
		if id == a.Representative(xID) {
			seen = true
		}
	})
	require.True(seen, "y should point to x after y = &x")
}

func TestEmitterFieldThroughPointerSelector(t *testing.T) {
	require := require.New(t)
	src := `
package test

type T struct {
	A *int
	B *int
}

func f() {
	var x int
	var t T
	p := &t
	p.B = &x
	var y *int
	y = t.B
	_ = y
}
`
	file, info := typeCheck(t, src)
	fn := findFunc(file, "f")
	require.NotNil(fn)

	a := pointsto.New(pointsto.Options{FieldSensitive: true})
	cache := typelayout.NewCache(nil)
	e := frontend.NewEmitter(a, info, cache)
	e.EmitFunc(fn)
	a.Solve()

	xObj := objectDefined(info, "x")
	yObj := objectDefined(info, "y")
	require.NotNil(xObj)
	require.NotNil(yObj)
	xID, ok := e.VarOf(xObj)
	require.True(ok)
	yID, ok := e.VarOf(yObj)
	require.True(ok)

	seen := false
	a.ForEachInSolution(yID, func(id pointsto.VarID) {
		if id == a.Representative(xID) {
			seen = true
		}
	})
	require.True(seen, "y should alias x through p.B = &x; y = t.B")
}

func TestEmitterAggregateAssignCopiesAllFields(t *testing.T) {
	require := require.New(t)
	src := `
package test

type T struct {
	A *int
	B *int
}

func g() {
	var x int
	var s1, s2 T
	s1.B = &x
	s2 = s1
	var y *int
	y = s2.B
	_ = y
}
`
	file, info := typeCheck(t, src)
	fn := findFunc(file, "g")
	require.NotNil(fn)

	a := pointsto.New(pointsto.Options{FieldSensitive: true})
	cache := typelayout.NewCache(nil)
	e := frontend.NewEmitter(a, info, cache)
	e.EmitFunc(fn)
	a.Solve()

	xObj := objectDefined(info, "x")
	yObj := objectDefined(info, "y")
	require.NotNil(xObj)
	require.NotNil(yObj)
	xID, ok := e.VarOf(xObj)
	require.True(ok)
	yID, ok := e.VarOf(yObj)
	require.True(ok)

	seen := false
	a.ForEachInSolution(yID, func(id pointsto.VarID) {
		if id == a.Representative(xID) {
			seen = true
		}
	})
	require.True(seen, "s2 = s1 should have copied s1.B (pointing to x) into s2.B")
}

// objectDefined returns the object info.Defs records for the declaration
// of name -- Defs only holds declaration sites, never later uses, so the
// first match is unambiguous here.
func objectDefined(info *types.Info, name string) types.Object {
	for id, obj := range info.Defs {
		if id.Name == name && obj != nil {
			return obj
		}
	}
	return nil
}

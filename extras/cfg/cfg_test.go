package cfg

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"
)

func parseFunc(t *testing.T, src string) *ast.FuncDecl {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", "package p\n"+src, 0)
	if err != nil {
		t.Fatal(err)
	}
	return f.Decls[0].(*ast.FuncDecl)
}

func TestStraightLineSuccs(t *testing.T) {
	fn := parseFunc(t, `
func f() {
	a := 1
	b := a
	_ = b
}`)
	g := FuncCFG(fn)
	stmts := fn.Body.List
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}
	succs := g.Succs(stmts[0])
	if len(succs) != 1 || succs[0] != stmts[1] {
		t.Fatalf("expected stmt 0 to flow only to stmt 1, got %v", succs)
	}
}

func TestIfBranchesBothFlowToJoin(t *testing.T) {
	fn := parseFunc(t, `
func f(c bool) {
	if c {
		a := 1
		_ = a
	} else {
		b := 2
		_ = b
	}
	done := true
	_ = done
}`)
	g := FuncCFG(fn)
	ifStmt := fn.Body.List[0].(*ast.IfStmt)
	thenLast := ifStmt.Body.List[1]
	elseBlock := ifStmt.Else.(*ast.BlockStmt)
	elseLast := elseBlock.List[1]
	join := fn.Body.List[1]

	if succs := g.Succs(thenLast); len(succs) != 1 || succs[0] != join {
		t.Fatalf("then branch should flow to join, got %v", succs)
	}
	if succs := g.Succs(elseLast); len(succs) != 1 || succs[0] != join {
		t.Fatalf("else branch should flow to join, got %v", succs)
	}
}

package pointsto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newVar(a *Analysis, name string) VarID {
	return a.NewVariable(nil, name, 64, 64, 0, NoParent)
}

func TestAddressOfDirect(t *testing.T) {
	require := require.New(t)
	a := New(Options{})

	x := newVar(a, "x")
	y := newVar(a, "y")

	// x := &y
	a.AddConstraint(ScalarExpr, x, 0, AddrOfExpr, y, 0)
	a.Solve()

	require.True(a.PointsTo(x).IsKnown())
	found := false
	a.ForEachInSolution(x, func(id VarID) {
		if id == a.Representative(y) {
			found = true
		}
	})
	require.True(found, "x should point to y")
}

func TestIndirectLoad(t *testing.T) {
	require := require.New(t)
	a := New(Options{})

	x := newVar(a, "x")
	y := newVar(a, "y")
	z := newVar(a, "z")
	w := newVar(a, "w")

	// z := &w; y := &z; x := *y  (x should end up pointing wherever z
	// points, i.e. w)
	a.AddConstraint(ScalarExpr, z, 0, AddrOfExpr, w, 0)
	a.AddConstraint(ScalarExpr, y, 0, AddrOfExpr, z, 0)
	a.AddConstraint(ScalarExpr, x, 0, DerefExpr, y, 0)
	a.Solve()

	seen := map[VarID]bool{}
	a.ForEachInSolution(x, func(id VarID) { seen[id] = true })
	require.True(seen[a.Representative(w)], "x should load z's target w through y")
}

func TestIndirectStore(t *testing.T) {
	require := require.New(t)
	a := New(Options{})

	p := newVar(a, "p")
	q := newVar(a, "q")
	v := newVar(a, "v")

	// p := &q; *p := &v  (q should end up pointing to v)
	a.AddConstraint(ScalarExpr, p, 0, AddrOfExpr, q, 0)
	a.AddConstraint(DerefExpr, p, 0, AddrOfExpr, v, 0)
	a.Solve()

	seen := map[VarID]bool{}
	a.ForEachInSolution(q, func(id VarID) { seen[id] = true })
	require.True(seen[a.Representative(v)], "q should point to v after the indirect store")
}

func TestCycleCollapsesToOneRepresentative(t *testing.T) {
	require := require.New(t)
	a := New(Options{})

	x := newVar(a, "x")
	y := newVar(a, "y")

	// x := y; y := x -- a pure copy cycle must collapse to one node.
	a.AddConstraint(ScalarExpr, x, 0, ScalarExpr, y, 0)
	a.AddConstraint(ScalarExpr, y, 0, ScalarExpr, x, 0)
	a.Solve()

	require.Equal(a.Representative(x), a.Representative(y))
}

func TestFieldSensitiveStoreTargetsOneField(t *testing.T) {
	require := require.New(t)
	a := New(Options{FieldSensitive: true})

	layout := fakeLayout{
		fullSize: 128,
		fields: []FieldLayout{
			{Name: "a", Offset: 0, Size: 64},
			{Name: "b", Offset: 64, Size: 64},
		},
	}
	s := a.CreateVariable(nil, "s", layout)
	sa := s          // field a, offset 0
	sb := a.vars.get(s).next // field b, offset 64

	p := newVar(a, "p")
	v := newVar(a, "v")

	// p := &s.b; *p := &v -- only s.b should gain v, not s.a.
	a.AddConstraint(ScalarExpr, p, 0, AddrOfExpr, sb, 0)
	a.AddConstraint(DerefExpr, p, 0, AddrOfExpr, v, 0)
	a.Solve()

	saHit, sbHit := false, false
	a.ForEachInSolution(sa, func(id VarID) {
		if id == a.Representative(v) {
			saHit = true
		}
	})
	a.ForEachInSolution(sb, func(id VarID) {
		if id == a.Representative(v) {
			sbHit = true
		}
	})
	require.False(saHit, "s.a must not see the store through s.b")
	require.True(sbHit, "s.b should see the store")
}

func TestStoreWithOffsetShiftsSourceSolution(t *testing.T) {
	require := require.New(t)
	a := New(Options{FieldSensitive: true})

	layout := fakeLayout{
		fullSize: 128,
		fields: []FieldLayout{
			{Name: "a", Offset: 0, Size: 64},
			{Name: "b", Offset: 64, Size: 64},
		},
	}
	tBase := a.CreateVariable(nil, "t", layout)
	ta := tBase
	tb := a.vars.get(tBase).next

	x := newVar(a, "x")
	y := newVar(a, "y")
	target := newVar(a, "target")

	// x := &target; y := &t.a (y points at t's base field); *x := y+64
	// -- pointer arithmetic on y's own value, landing on t.b, not t.a.
	a.AddConstraint(ScalarExpr, x, 0, AddrOfExpr, target, 0)
	a.AddConstraint(ScalarExpr, y, 0, AddrOfExpr, ta, 0)
	a.AddConstraint(DerefExpr, x, 0, ScalarExpr, y, 64)
	a.Solve()

	seen := map[VarID]bool{}
	a.ForEachInSolution(target, func(id VarID) { seen[id] = true })
	require.True(seen[a.Representative(tb)], "storing y+64 through x should land on t's second field")
	require.False(seen[a.Representative(ta)], "y+64 must not alias t's first field")
}

func TestPointsToUnknownForArtificialMember(t *testing.T) {
	require := require.New(t)
	a := New(Options{})

	p := newVar(a, "p")
	// p := &READONLY directly aliases an internal artificial variable;
	// the caller should see "unknown", not a concrete (empty) solution.
	a.AddConstraint(ScalarExpr, p, 0, AddrOfExpr, ReadonlyVar, 0)
	a.Solve()

	require.True(a.PointsTo(p).IsUnknown())
}

func TestPointsToUnknownForUndeclaredSubrange(t *testing.T) {
	require := require.New(t)
	a := New(Options{})

	// A size != fullsize variable created with no parent link: nothing
	// ever declared this as a field of a containing aggregate, so there
	// is no sub-storage id for the query layer to resolve back to.
	orphan := a.NewVariable(nil, "orphan", 32, 64, 16, NoParent)
	y := newVar(a, "y")
	a.AddConstraint(ScalarExpr, orphan, 0, AddrOfExpr, y, 0)
	a.Solve()

	require.True(a.PointsTo(orphan).IsUnknown())
}

func TestOfflineSubstitutionAllowsNonEmptySubsetSolution(t *testing.T) {
	require := require.New(t)
	a := New(Options{})

	z := newVar(a, "z")
	w := newVar(a, "w")
	n := newVar(a, "n")

	// w := &z; n := &z; n := w -- n's own direct solution ({z}) is already
	// a subset of w's, so n should still fold into w even though its
	// solution isn't empty (spec.md §4.6 asks for subset, not emptiness).
	a.AddConstraint(ScalarExpr, w, 0, AddrOfExpr, z, 0)
	a.AddConstraint(ScalarExpr, n, 0, AddrOfExpr, z, 0)
	a.AddConstraint(ScalarExpr, n, 0, ScalarExpr, w, 0)
	a.Solve()

	require.Equal(a.Representative(w), a.Representative(n),
		"n's solution is a subset of w's, so offline substitution should fold n into w")
}

func TestOfflineSubstitutionSkipsAddressTakenNode(t *testing.T) {
	require := require.New(t)
	a := New(Options{})

	w := newVar(a, "w")
	n := newVar(a, "n")
	p := newVar(a, "p")

	// n := w (a single zero-weight copy, solutions both empty) would
	// normally be eligible, but p := &n means n's own identity is
	// observable through p and must survive as its own node.
	a.AddConstraint(ScalarExpr, n, 0, ScalarExpr, w, 0)
	a.AddConstraint(ScalarExpr, p, 0, AddrOfExpr, n, 0)
	a.Solve()

	require.NotEqual(a.Representative(w), a.Representative(n),
		"an address-taken node must not be folded away by offline substitution")
}

func TestFieldInsensitiveCollapsesToOneVariable(t *testing.T) {
	require := require.New(t)
	a := New(Options{FieldSensitive: false})

	layout := fakeLayout{
		fullSize: 128,
		fields: []FieldLayout{
			{Name: "a", Offset: 0, Size: 64},
			{Name: "b", Offset: 64, Size: 64},
		},
	}
	s := a.CreateVariable(nil, "s", layout)
	require.Equal(noVar, a.vars.get(s).next, "field-insensitive mode must not decompose the aggregate")
}

func TestUnsafeOffsetIsDroppedWithNote(t *testing.T) {
	require := require.New(t)
	a := New(Options{})

	small := a.NewVariable(nil, "small", 8, 8, 0, NoParent)
	off := uint64(64)
	safe := a.TypeSafe(small, &off)
	require.False(safe)
	require.NotEmpty(a.Notes())
}

func TestSolveTwiceIsAContractViolation(t *testing.T) {
	require := require.New(t)
	a := New(Options{})
	a.Solve()
	require.Panics(func() { a.Solve() })
}

func TestUnknownVariableIsAContractViolation(t *testing.T) {
	require := require.New(t)
	a := New(Options{})
	require.Panics(func() {
		a.AddConstraint(ScalarExpr, VarID(999), 0, ScalarExpr, NullVar, 0)
	})
}

type fakeLayout struct {
	fullSize uint64
	fields   []FieldLayout
	union    bool
}

func (f fakeLayout) FullSize() uint64      { return f.fullSize }
func (f fakeLayout) Fields() []FieldLayout { return f.fields }
func (f fakeLayout) HasUnion() bool        { return f.union }

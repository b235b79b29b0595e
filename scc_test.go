package pointsto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCycleDetectionIgnoresNonZeroWeightEdges(t *testing.T) {
	require := require.New(t)
	a := New(Options{})

	x := newVar(a, "x")
	y := newVar(a, "y")

	// x := y+4 (field-displacement copy, weight 4 only); y := x (plain
	// copy, weight 0). This is a cycle in the successor graph, but x is y
	// shifted by 4, not y itself -- only the zero-weight edge may justify
	// unification (spec.md §4.4).
	a.connect(x, y, 4)
	a.connect(y, x, 0)

	a.detectAndUnify(false)

	require.NotEqual(a.Representative(x), a.Representative(y),
		"a cycle joined only by a non-zero weight edge must not collapse")
}

func TestCycleDetectionUnifiesPureZeroWeightCycle(t *testing.T) {
	require := require.New(t)
	a := New(Options{})

	x := newVar(a, "x")
	y := newVar(a, "y")

	a.connect(x, y, 0)
	a.connect(y, x, 0)

	a.detectAndUnify(false)

	require.Equal(a.Representative(x), a.Representative(y),
		"a cycle joined entirely by zero-weight edges must still collapse")
}

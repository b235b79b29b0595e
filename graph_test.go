package pointsto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectReportsNewEdgeAdded(t *testing.T) {
	require := require.New(t)
	a := New(Options{})
	x := newVar(a, "x")
	y := newVar(a, "y")

	require.True(a.connect(x, y, 0))
	require.True(a.edgeAdded)

	a.edgeAdded = false
	require.False(a.connect(x, y, 0), "re-adding the same weight must not report growth")
	require.False(a.edgeAdded)

	require.True(a.connect(x, y, 8), "a new weight on an existing edge is still growth")
}

func TestRemoveEdgeIfEmptyDropsSpentEdges(t *testing.T) {
	require := require.New(t)
	g := newGraph()
	e := g.ensureEdge(1, 2)
	e.weights.Add(0)
	g.removeEdgeIfEmpty(e)
	require.NotNil(g.lookupEdge(1, 2), "edge must survive while it still has a weight bit")

	e.weights.Remove(0)
	g.removeEdgeIfEmpty(e)
	require.Nil(g.lookupEdge(1, 2), "edge must be dropped once its last weight bit clears")
}

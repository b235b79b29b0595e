package pointsto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntSetAddIsIdempotent(t *testing.T) {
	require := require.New(t)
	s := newIntSet()
	require.True(s.Add(5))
	require.False(s.Add(5))
	require.True(s.Has(5))
	require.Equal(uint(1), s.Len())
}

func TestIntSetUnionInPlaceReportsGrowth(t *testing.T) {
	require := require.New(t)
	a := newIntSet()
	a.Add(1)
	b := newIntSet()
	b.Add(1)
	b.Add(2)

	require.True(a.UnionInPlace(b))
	require.False(a.UnionInPlace(b), "merging the same set again must not report growth")
	require.True(a.Has(2))
}

func TestWeightSetZeroOnly(t *testing.T) {
	require := require.New(t)
	w := newWeightSet()
	w.Add(0)
	require.True(w.isZeroOnly())
	w.Add(8)
	require.False(w.isZeroOnly())
	require.True(w.hasZero())
}

package pointsto

import "github.com/bits-and-blooms/bitset"

// bitSet is the dense-set layer the rest of the package is built on:
// solutions, edge weights, and the changed-set all bottom out here.
// It wraps github.com/bits-and-blooms/bitset -- Set/Test/Clear plus
// Union/Difference/InPlaceUnion for the worklist loops.
type bitSet struct {
	bits *bitset.BitSet
}

func newBitSet() *bitSet {
	return &bitSet{bits: bitset.New(0)}
}

func (s *bitSet) has(i uint) bool { return s.bits.Test(i) }

// add reports whether i was not already present.
func (s *bitSet) add(i uint) bool {
	if s.bits.Test(i) {
		return false
	}
	s.bits.Set(i)
	return true
}

func (s *bitSet) remove(i uint) { s.bits.Clear(i) }

func (s *bitSet) isEmpty() bool { return s.bits.None() }

func (s *bitSet) count() uint { return s.bits.Count() }

func (s *bitSet) clone() *bitSet { return &bitSet{bits: s.bits.Clone()} }

func (s *bitSet) equal(o *bitSet) bool { return s.bits.Equal(o.bits) }

// unionInPlace merges o into s, reporting whether s changed.
func (s *bitSet) unionInPlace(o *bitSet) bool {
	before := s.bits.Clone()
	s.bits.InPlaceUnion(o.bits)
	return !before.Equal(s.bits)
}

func (s *bitSet) union(o *bitSet) *bitSet {
	return &bitSet{bits: s.bits.Union(o.bits)}
}

func (s *bitSet) difference(o *bitSet) *bitSet {
	return &bitSet{bits: s.bits.Difference(o.bits)}
}

func (s *bitSet) forEach(f func(uint) bool) {
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		if !f(i) {
			return
		}
	}
}

// intSet is a bitSet of VarID, used for solutions, the folded-variables
// set, and the changed-set.
type intSet struct{ *bitSet }

func newIntSet() *intSet { return &intSet{newBitSet()} }

func (s *intSet) Has(id VarID) bool   { return s.has(uint(id)) }
func (s *intSet) Add(id VarID) bool   { return s.add(uint(id)) }
func (s *intSet) Remove(id VarID)     { s.remove(uint(id)) }
func (s *intSet) IsEmpty() bool       { return s.isEmpty() }
func (s *intSet) Len() uint           { return s.count() }
func (s *intSet) Clone() *intSet      { return &intSet{s.clone()} }
func (s *intSet) Equal(o *intSet) bool { return s.equal(o.bitSet) }

func (s *intSet) UnionInPlace(o *intSet) bool { return s.unionInPlace(o.bitSet) }
func (s *intSet) Union(o *intSet) *intSet     { return &intSet{s.union(o.bitSet)} }
func (s *intSet) Difference(o *intSet) *intSet {
	return &intSet{s.difference(o.bitSet)}
}

// ForEach visits members in ascending id order, stopping early if f
// returns false.
func (s *intSet) ForEach(f func(VarID) bool) {
	s.forEach(func(i uint) bool { return f(VarID(i)) })
}

// weightSet is a bitSet of field offsets attached to a graph edge.
type weightSet struct{ *bitSet }

func newWeightSet() *weightSet { return &weightSet{newBitSet()} }

func (s *weightSet) Has(off uint64) bool { return s.has(uint(off)) }
func (s *weightSet) Add(off uint64) bool { return s.add(uint(off)) }
func (s *weightSet) Remove(off uint64)   { s.remove(uint(off)) }
func (s *weightSet) IsEmpty() bool       { return s.isEmpty() }

func (s *weightSet) UnionInPlace(o *weightSet) bool { return s.unionInPlace(o.bitSet) }

// hasZero reports whether the zero-weight bit is set -- the bit cycle
// detection treats as "same set" per spec.
func (s *weightSet) hasZero() bool { return s.Has(0) }

// isZeroOnly reports whether the zero bit is the only bit set.
func (s *weightSet) isZeroOnly() bool { return s.count() == 1 && s.Has(0) }

func (s *weightSet) ForEach(f func(uint64) bool) {
	s.forEach(func(i uint) bool { return f(uint64(i)) })
}

// Package typelayout wraps golang.org/x/tools/go/packages and go/types to
// answer the field-layout questions pointsto.CreateVariable needs of a
// Go type: its size, its field list (direct fields only: a struct-typed
// field is one slot covering the whole nested struct, not flattened into
// its own fields), and whether a union-like
// construct (an interface or unsafe.Pointer conversion target) forces
// conservative treatment.
//
// This package exists for the same reason analysis/loader did in the
// refactoring engine it is adapted from: go/types gives precise
// information, but turning that into the shape an analysis actually
// wants takes a thin layer of its own.
package typelayout

import (
	"go/types"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/types/typeutil"

	"github.com/godoctor/pointsto"
)

// Load type-checks the packages named by args, setting the packages.Load
// mode that typelayout and the frontend package need: names, imports and
// dependencies, types and type sizes, syntax trees and type-checker info.
func Load(conf *packages.Config, args ...string) ([]*packages.Package, error) {
	conf.Mode = packages.NeedTypes |
		packages.NeedTypesInfo |
		packages.NeedTypesSizes |
		packages.NeedSyntax |
		packages.NeedDeps |
		packages.NeedImports |
		packages.NeedName

	pkgs, err := packages.Load(conf, args...)
	if err != nil {
		return nil, err
	}
	return pkgs, nil
}

// Layout is a pointsto.TypeLayout backed by a memoized flattening of a
// go/types.Type.
type Layout struct {
	fullSize uint64
	fields   []pointsto.FieldLayout
	hasUnion bool
}

func (l *Layout) FullSize() uint64              { return l.fullSize }
func (l *Layout) Fields() []pointsto.FieldLayout { return l.fields }
func (l *Layout) HasUnion() bool                { return l.hasUnion }

// Cache memoizes LayoutOf results per types.Type, the same role
// typeutil.Map plays in the x/tools ecosystem wherever a type-keyed cache
// is needed (method sets, fact databases, and here).
type Cache struct {
	sizes types.Sizes
	memo  typeutil.Map
}

// NewCache creates a layout cache using sizes (as reported by a loaded
// packages.Package's TypesSizes) for size and alignment queries.
func NewCache(sizes types.Sizes) *Cache {
	if sizes == nil {
		sizes = types.SizesFor("gc", "amd64")
	}
	return &Cache{sizes: sizes}
}

// LayoutOf returns the memoized Layout for t, computing and caching it on
// first use. A pointer, interface, chan, map, func or basic type is
// reported with no fields (pointsto.CreateVariable then treats it as a
// single scalar). unsafe.Pointer and interface types set HasUnion, since
// both let a value alias storage of an unrelated static type -- the same
// conservative trigger a union would.
func (c *Cache) LayoutOf(t types.Type) *Layout {
	if cached := c.memo.At(t); cached != nil {
		return cached.(*Layout)
	}
	l := c.computeLayout(t)
	c.memo.Set(t, l)
	return l
}

func (c *Cache) computeLayout(t types.Type) *Layout {
	under := t.Underlying()
	st, ok := under.(*types.Struct)
	if !ok {
		l := &Layout{fullSize: uint64(c.sizes.Sizeof(t)) * 8}
		if _, isIface := under.(*types.Interface); isIface {
			l.hasUnion = true
		}
		if b, isBasic := under.(*types.Basic); isBasic && b.Kind() == types.UnsafePointer {
			l.hasUnion = true
		}
		return l
	}

	offsets := c.sizes.Offsetsof(fieldsOf(st))
	fullSize := uint64(c.sizes.Sizeof(st)) * 8

	fields := make([]pointsto.FieldLayout, 0, st.NumFields())
	hasUnion := false
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		size := uint64(c.sizes.Sizeof(f.Type())) * 8
		fields = append(fields, pointsto.FieldLayout{
			Name:   f.Name(),
			Offset: uint64(offsets[i]) * 8,
			Size:   size,
		})
		if sub := c.computeLayout(f.Type()); sub.HasUnion() {
			hasUnion = true
		}
	}

	return &Layout{fullSize: fullSize, fields: fields, hasUnion: hasUnion}
}

func fieldsOf(st *types.Struct) []*types.Var {
	fields := make([]*types.Var, st.NumFields())
	for i := range fields {
		fields[i] = st.Field(i)
	}
	return fields
}

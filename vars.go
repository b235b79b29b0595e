package pointsto

import "math"

// VarID identifies a variable record; ids are assigned monotonically and
// never reused (spec.md §3).
type VarID uint32

// noVar marks the absence of a field-chain successor.
const noVar VarID = math.MaxUint32

// NoParent is passed to NewVariable for a variable with no enclosing
// aggregate.
const NoParent VarID = noVar

// Fixed ids for the four special variables, created before any user
// variable (spec.md §3). Referenced by name, never by pointer.
const (
	NullVar     VarID = 0
	AnythingVar VarID = 1
	ReadonlyVar VarID = 2
	IntegerVar  VarID = 3

	firstUserVar VarID = 4
)

// unknownSize is the "infinite" sentinel used for variable-length or
// otherwise unsized storage.
const unknownSize = ^uint64(0)

// VarInfo is one row of the variable table (spec.md §3).
type VarInfo struct {
	id   VarID
	name string
	decl interface{} // opaque front-end back-reference; may be nil

	offset, size, fullSize uint64

	next VarID // next field of the same aggregate, in offset order, or noVar

	node VarID // union-find representative; node == id iff id is its own representative

	solution  *intSet      // meaningful only when this is a representative
	variables *intSet      // non-representative ids folded into this one (self is implicit)
	complex   []Constraint // ordered complex constraints attached to this node

	addressTaken   bool
	indirectTarget bool
	isArtificial   bool
	isUnknownSize  bool
	hasUnion       bool

	// subvarMeta is true when offset/size/fullSize were declared by the
	// collaborator as a real field of a larger aggregate -- via
	// CreateVariable's decomposition, or a NewVariable call that linked
	// itself to a parent -- rather than an orphaned (size != fullSize,
	// parent == NoParent) call the query layer has no sub-storage id to
	// resolve back to (spec.md §4.9).
	subvarMeta bool
}

func newVarInfo(id VarID, decl interface{}, name string, offset, size, fullSize uint64) *VarInfo {
	return &VarInfo{
		id:        id,
		name:      name,
		decl:      decl,
		offset:    offset,
		size:      size,
		fullSize:  fullSize,
		next:      noVar,
		node:      id,
		solution:  newIntSet(),
		variables: newIntSet(),
	}
}

// ID returns the variable's stable identity.
func (vi *VarInfo) ID() VarID { return vi.id }

// Name returns the variable's display name.
func (vi *VarInfo) Name() string { return vi.name }

// Decl returns the front end's opaque back-reference for this variable,
// or nil for artificial variables.
func (vi *VarInfo) Decl() interface{} { return vi.decl }

// Offset, Size and FullSize return the field layout triple, in bits.
func (vi *VarInfo) Offset() uint64   { return vi.offset }
func (vi *VarInfo) Size() uint64     { return vi.size }
func (vi *VarInfo) FullSize() uint64 { return vi.fullSize }

func (vi *VarInfo) AddressTaken() bool   { return vi.addressTaken }
func (vi *VarInfo) IndirectTarget() bool { return vi.indirectTarget }
func (vi *VarInfo) IsArtificial() bool   { return vi.isArtificial }
func (vi *VarInfo) IsUnknownSize() bool  { return vi.isUnknownSize }
func (vi *VarInfo) HasUnion() bool       { return vi.hasUnion }
func (vi *VarInfo) HasSubvarMeta() bool  { return vi.subvarMeta }

// FieldLayout describes one scalar field slot of an aggregate type, as
// reported by a front end's type-layout collaborator (see the typelayout
// package for a go/types-backed implementation).
type FieldLayout struct {
	Name   string
	Offset uint64 // bits, within the aggregate
	Size   uint64 // bits
}

// TypeLayout answers the field-sensitivity questions spec.md §4.1 asks of
// "the collaborator": whether a type is a concretely-sized, union-free
// aggregate, and if so what its fields are.
type TypeLayout interface {
	// FullSize returns the type's size in bits, or the unknownSize
	// sentinel if the size cannot be determined statically (e.g. a
	// variable-length array).
	FullSize() uint64
	// Fields returns the sorted list of field slots, or nil if the type
	// should be treated as a single scalar.
	Fields() []FieldLayout
	// HasUnion reports whether any union appears anywhere in the type,
	// which forces conservative (non-field-sensitive) treatment.
	HasUnion() bool
}

// varTable owns variable creation and field-chain bookkeeping; embedded in
// Analysis.
type varTable struct {
	vars []*VarInfo
}

func (t *varTable) get(id VarID) *VarInfo {
	if int(id) >= len(t.vars) {
		panic(contractErrorf("unknown variable id %d", id))
	}
	return t.vars[id]
}

func (t *varTable) alloc(decl interface{}, name string, offset, size, fullSize uint64) *VarInfo {
	id := VarID(len(t.vars))
	vi := newVarInfo(id, decl, name, offset, size, fullSize)
	t.vars = append(t.vars, vi)
	return vi
}

// NewArtificial creates a variable with no front-end declaration --
// dereference temporaries, heap summary nodes; the four special variables
// are allocated directly by New -- and
// marks it artificial so the solver and query layer treat it
// conservatively (spec.md §6 inbound API, §4.9).
func (a *Analysis) NewArtificial(name string, opts ...VarFlag) VarID {
	vi := a.vars.alloc(nil, name, 0, unknownSize, unknownSize)
	vi.isArtificial = true
	for _, opt := range opts {
		opt(vi)
	}
	a.stats.VarsCreated++
	return vi.id
}

// VarFlag sets one boolean flag at variable-creation time.
type VarFlag func(*VarInfo)

func AddressTaken() VarFlag   { return func(vi *VarInfo) { vi.addressTaken = true } }
func IndirectTarget() VarFlag { return func(vi *VarInfo) { vi.indirectTarget = true } }

// NewVariable creates a single variable record with an explicit layout
// and, if parent != noVar, links it into parent's field chain in offset
// order (spec.md §6: new_variable(decl, name, size, fullsize, offset,
// parent?) -> id).
func (a *Analysis) NewVariable(decl interface{}, name string, size, fullSize, offset uint64, parent VarID) VarID {
	vi := a.vars.alloc(decl, name, offset, size, fullSize)
	if fullSize == unknownSize {
		vi.isUnknownSize = true
	}
	if parent != noVar {
		a.linkField(parent, vi.id)
		vi.subvarMeta = true
	}
	a.stats.VarsCreated++
	return vi.id
}

// linkField inserts child into base's next-chain in increasing-offset
// order, preserving the invariant that walking next* yields strictly
// increasing offsets (spec.md §4.1).
func (a *Analysis) linkField(base, child VarID) {
	cvi := a.vars.get(child)
	cur := base
	for {
		curVI := a.vars.get(cur)
		if curVI.next == noVar || a.vars.get(curVI.next).offset > cvi.offset {
			cvi.next = curVI.next
			curVI.next = child
			return
		}
		cur = curVI.next
	}
}

// CreateVariable implements spec.md §4.1's create_variable: given a
// front-end-supplied type layout, it either creates a single scalar
// variable or decomposes an eligible aggregate into a sorted, next-linked
// chain of field variables sharing the aggregate's fullSize.
func (a *Analysis) CreateVariable(decl interface{}, name string, layout TypeLayout) VarID {
	if layout == nil || layout.FullSize() == unknownSize {
		id := a.vars.alloc(decl, name, 0, unknownSize, unknownSize)
		id.isUnknownSize = true
		a.stats.VarsCreated++
		return id.id
	}

	fullSize := layout.FullSize()
	fields := layout.Fields()
	if !a.opts.FieldSensitive || layout.HasUnion() || len(fields) == 0 {
		vi := a.vars.alloc(decl, name, 0, fullSize, fullSize)
		vi.hasUnion = layout.HasUnion()
		a.stats.VarsCreated++
		return vi.id
	}

	var head VarID = noVar
	var tail VarID
	for i, f := range fields {
		fname := name
		if f.Name != "" {
			fname = name + "." + f.Name
		}
		vi := a.vars.alloc(decl, fname, f.Offset, f.Size, fullSize)
		vi.hasUnion = layout.HasUnion()
		vi.subvarMeta = true
		a.stats.VarsCreated++
		if i == 0 {
			head = vi.id
			tail = vi.id
		} else {
			a.vars.get(tail).next = vi.id
			tail = vi.id
		}
	}
	return head
}

// SortFields performs a stable sort of base's linked field list by
// (offset, size), per spec.md §6's sort_fields(base_id).
func (a *Analysis) SortFields(base VarID) {
	var ids []VarID
	for id := base; id != noVar; id = a.vars.get(id).next {
		ids = append(ids, id)
	}
	// stable insertion sort on (offset, size): field lists are short and
	// usually already nearly sorted, matching godoctor's own preference
	// for simple, obviously-correct passes over its small ASTs.
	for i := 1; i < len(ids); i++ {
		j := i
		for j > 0 && lessField(a.vars.get(ids[j]), a.vars.get(ids[j-1])) {
			ids[j], ids[j-1] = ids[j-1], ids[j]
			j--
		}
	}
	for i, id := range ids {
		if i+1 < len(ids) {
			a.vars.get(id).next = ids[i+1]
		} else {
			a.vars.get(id).next = noVar
		}
	}
}

func lessField(a, b *VarInfo) bool {
	if a.offset != b.offset {
		return a.offset < b.offset
	}
	return a.size < b.size
}

// firstVarForOffset walks next from start and returns the first field
// whose range [offset, offset+size) contains off. Panics if none does --
// callers must already have established off < fullsize via TypeSafe
// (spec.md §4.1).
func (a *Analysis) firstVarForOffset(start VarID, off uint64) VarID {
	id := start
	for id != noVar {
		vi := a.vars.get(id)
		if off >= vi.offset && off < vi.offset+vi.size {
			return id
		}
		id = vi.next
	}
	panic(contractErrorf("firstVarForOffset: no field of %d covers offset %d", start, off))
}

// FieldVar exposes firstVarForOffset to front-end collaborators that
// already have a concrete, statically-known field offset in hand -- a
// plain (non-pointer) struct field access, for instance, where the
// field's own decomposed variable should be referenced directly rather
// than carrying the offset forward as an edge weight for the solver's
// shift to resolve later (spec.md §4.1).
func (a *Analysis) FieldVar(base VarID, off uint64) VarID {
	return a.firstVarForOffset(base, off)
}

// TypeSafe implements spec.md §4.1's type_safe query. n is a field
// variable (possibly mid-chain) and *off a delta relative to n; TypeSafe
// translates *off into an offset absolute within n's aggregate -- so a
// caller that then walks firstVarForOffset(n, *off) searches forward from
// n using the same coordinate space n's own .offset is recorded in -- and
// reports whether that absolute offset still lands inside the aggregate.
// For the global "anything" node, artificial variables, and unknown-size
// variables the offset collapses to zero and the query always succeeds.
func (a *Analysis) TypeSafe(n VarID, off *uint64) bool {
	vi := a.vars.get(n)
	if n == AnythingVar || vi.isArtificial || vi.isUnknownSize {
		*off = 0
		return true
	}
	abs := vi.offset + *off
	safe := abs < vi.fullSize
	if !safe {
		a.notePrecisionLoss("untypesafe offset %d+%d on variable %q dropped", vi.offset, *off, vi.name)
		return false
	}
	*off = abs
	return true
}

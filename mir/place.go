package mir

import "fmt"

// Local identifies a slot in a function body. Slot 0 is the return slot;
// slots 1 through NumParams are the parameters; higher slots are
// temporaries introduced by the front end.
type Local int

// ReturnLocal is the implicit return slot.
const ReturnLocal Local = 0

type ProjKind uint8

const (
	// ProjDeref follows a pointer.
	ProjDeref ProjKind = iota
	// ProjField selects a numbered aggregate field.
	ProjField
	// ProjIndex selects an element of an array-like value. Distinct
	// indices are not tracked; every index projection denotes the same
	// abstract element.
	ProjIndex
)

type Projection struct {
	Kind  ProjKind
	Field int // field number, only meaningful for ProjField
}

// Place denotes a storage location: a root local plus zero or more
// projections. Places are immutable values; Deref, Field and Index
// return extended copies.
type Place struct {
	Local Local
	projs []Projection
}

func PlaceFor(l Local) Place {
	return Place{Local: l}
}

func (p Place) extend(proj Projection) Place {
	projs := make([]Projection, len(p.projs)+1)
	copy(projs, p.projs)
	projs[len(p.projs)] = proj
	return Place{Local: p.Local, projs: projs}
}

// Deref returns the place obtained by following p as a pointer.
func (p Place) Deref() Place {
	return p.extend(Projection{Kind: ProjDeref})
}

// Field returns the place of field i of p.
func (p Place) Field(i int) Place {
	return p.extend(Projection{Kind: ProjField, Field: i})
}

// Index returns the place of the abstract element of p.
func (p Place) Index() Place {
	return p.extend(Projection{Kind: ProjIndex})
}

// Projections returns a copy of the projection list.
func (p Place) Projections() []Projection {
	return append([]Projection(nil), p.projs...)
}

// IndirectFirst reports whether the place's outermost access is a
// pointer dereference of its root local, i.e. it has the shape *p,
// (*p).f, (*p)[i], etc. Such places denote memory reached through the
// root pointer rather than the root slot itself.
func (p Place) IndirectFirst() bool {
	return len(p.projs) > 0 && p.projs[0].Kind == ProjDeref
}

func (p Place) Equal(o Place) bool {
	if p.Local != o.Local || len(p.projs) != len(o.projs) {
		return false
	}
	for i, proj := range p.projs {
		if proj != o.projs[i] {
			return false
		}
	}
	return true
}

// String renders the place in MIR-like notation, e.g. (*_1).2 for the
// third field of the pointee of local 1. The rendering is injective,
// so it doubles as a structural hash key.
func (p Place) String() string {
	s := fmt.Sprintf("_%d", p.Local)
	for _, proj := range p.projs {
		switch proj.Kind {
		case ProjDeref:
			s = "(*" + s + ")"
		case ProjField:
			s = fmt.Sprintf("%s.%d", s, proj.Field)
		case ProjIndex:
			s += "[*]"
		}
	}
	return s
}

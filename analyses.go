package outparam

import "github.com/outparam/outparam/mir"

// collectWrites gathers every place written through a pointer
// dereference anywhere in the body. Flow-insensitive: a write on any
// path counts.
func collectWrites(body *mir.Body) PlaceSet {
	writes := make(PlaceSet)
	for _, block := range body.Blocks {
		for _, stmt := range block.Stmts {
			if stmt.LHS.IndirectFirst() {
				writes.Insert(stmt.LHS)
			}
		}
	}
	return writes
}

// readsBeforeWrite computes, per program point, the dereferenced
// places that may be read before being (re)written on some path
// starting there. Backward: reads create demand that propagates
// toward the points that can reach them; a write through the same
// place clears it.
type readsBeforeWrite struct{}

func (readsBeforeWrite) Direction() Direction { return Backward }

func (readsBeforeWrite) Bottom(*mir.Body) *MayPlaceSet { return NewMayPlaceSet() }

func (readsBeforeWrite) InitEntry(*mir.Body, *MayPlaceSet) {}

func (readsBeforeWrite) Statement(state *MayPlaceSet, stmt mir.Statement) {
	if stmt.LHS.IndirectFirst() {
		state.Remove(stmt.LHS)
	}
	for _, p := range stmt.RHS.Operands() {
		if p.IndirectFirst() {
			state.Insert(p)
		}
	}
}

// mustWrite computes, per program point, the dereferenced places
// guaranteed written on every path from the entry. Forward, gen-only:
// once a place is recorded as written on a path it stays recorded.
// The entry block starts from the concrete empty set; everything else
// starts unconstrained until a predecessor propagates a real value.
type mustWrite struct{}

func (mustWrite) Direction() Direction { return Forward }

func (mustWrite) Bottom(*mir.Body) *MustPlaceSet { return TopMustSet() }

func (mustWrite) InitEntry(_ *mir.Body, state *MustPlaceSet) {
	state.top = false
	state.set = make(PlaceSet)
}

func (mustWrite) Statement(state *MustPlaceSet, stmt mir.Statement) {
	if stmt.LHS.IndirectFirst() {
		state.Insert(stmt.LHS)
	}
}

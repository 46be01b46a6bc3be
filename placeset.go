package outparam

import (
	"strings"

	"github.com/outparam/outparam/internal/maps"
	"github.com/outparam/outparam/mir"
)

// PlaceSet is a set of places keyed by their injective string
// rendering.
type PlaceSet map[string]mir.Place

func NewPlaceSet(places ...mir.Place) PlaceSet {
	s := make(PlaceSet, len(places))
	for _, p := range places {
		s.Insert(p)
	}
	return s
}

// Insert adds p and reports whether it was absent.
func (s PlaceSet) Insert(p mir.Place) bool {
	k := p.String()
	if _, found := s[k]; found {
		return false
	}
	s[k] = p
	return true
}

// Remove deletes p and reports whether it was present.
func (s PlaceSet) Remove(p mir.Place) bool {
	k := p.String()
	if _, found := s[k]; !found {
		return false
	}
	delete(s, k)
	return true
}

func (s PlaceSet) Contains(p mir.Place) bool {
	_, found := s[p.String()]
	return found
}

func (s PlaceSet) Len() int { return len(s) }

func (s PlaceSet) Clone() PlaceSet {
	c := make(PlaceSet, len(s))
	for k, p := range s {
		c[k] = p
	}
	return c
}

// Union adds every place of o and reports whether s grew.
func (s PlaceSet) Union(o PlaceSet) bool {
	changed := false
	for k, p := range o {
		if _, found := s[k]; !found {
			s[k] = p
			changed = true
		}
	}
	return changed
}

// Intersect drops every place absent from o and reports whether s
// shrank.
func (s PlaceSet) Intersect(o PlaceSet) bool {
	changed := false
	for k := range s {
		if _, found := o[k]; !found {
			delete(s, k)
			changed = true
		}
	}
	return changed
}

// Retain keeps only the places for which keep returns true.
func (s PlaceSet) Retain(keep func(mir.Place) bool) {
	for k, p := range s {
		if !keep(p) {
			delete(s, k)
		}
	}
}

func (s PlaceSet) Equal(o PlaceSet) bool {
	if len(s) != len(o) {
		return false
	}
	for k := range s {
		if _, found := o[k]; !found {
			return false
		}
	}
	return true
}

// Places returns the elements ordered by their rendering, for
// deterministic output.
func (s PlaceSet) Places() []mir.Place {
	places := make([]mir.Place, 0, len(s))
	for _, k := range maps.SortedKeys(s) {
		places = append(places, s[k])
	}
	return places
}

func (s PlaceSet) String() string {
	return "{" + strings.Join(maps.SortedKeys(s), ", ") + "}"
}

// MayPlaceSet is the domain of the reads-before-write analysis: a
// plain place set whose join is union. The empty set is bottom.
type MayPlaceSet struct {
	set PlaceSet
}

func NewMayPlaceSet() *MayPlaceSet {
	return &MayPlaceSet{set: make(PlaceSet)}
}

func (s *MayPlaceSet) Join(o *MayPlaceSet) bool {
	return s.set.Union(o.set)
}

func (s *MayPlaceSet) Clone() *MayPlaceSet {
	return &MayPlaceSet{set: s.set.Clone()}
}

// Insert records a read demand for p.
func (s *MayPlaceSet) Insert(p mir.Place) bool { return s.set.Insert(p) }

// Remove clears the read demand for p.
func (s *MayPlaceSet) Remove(p mir.Place) bool { return s.set.Remove(p) }

func (s *MayPlaceSet) Contains(p mir.Place) bool { return s.set.Contains(p) }

func (s *MayPlaceSet) Len() int { return s.set.Len() }

// Places returns the demanded places in deterministic order.
func (s *MayPlaceSet) Places() []mir.Place { return s.set.Places() }

func (s *MayPlaceSet) String() string { return s.set.String() }

// MustPlaceSet is the domain of the must-write analysis. It is either
// Top, meaning unconstrained (no path has reached this point yet), or
// a concrete set of places guaranteed written. Top is the identity of
// the join; the join of two concrete sets is their intersection.
type MustPlaceSet struct {
	top bool
	set PlaceSet
}

// TopMustSet returns the unconstrained value.
func TopMustSet() *MustPlaceSet {
	return &MustPlaceSet{top: true}
}

// MustSetOf returns the concrete set holding the given places.
func MustSetOf(places ...mir.Place) *MustPlaceSet {
	return &MustPlaceSet{set: NewPlaceSet(places...)}
}

func (s *MustPlaceSet) IsTop() bool { return s.top }

// Set returns the concrete place set, or false for Top.
func (s *MustPlaceSet) Set() (PlaceSet, bool) {
	if s.top {
		return nil, false
	}
	return s.set, true
}

// Insert records p as written. Inserting into Top is a no-op: an
// unconstrained state stays unconstrained.
func (s *MustPlaceSet) Insert(p mir.Place) {
	if !s.top {
		s.set.Insert(p)
	}
}

func (s *MustPlaceSet) Contains(p mir.Place) bool {
	return !s.top && s.set.Contains(p)
}

func (s *MustPlaceSet) Join(o *MustPlaceSet) bool {
	switch {
	case o.top:
		return false
	case s.top:
		s.top = false
		s.set = o.set.Clone()
		return true
	default:
		return s.set.Intersect(o.set)
	}
}

func (s *MustPlaceSet) Clone() *MustPlaceSet {
	if s.top {
		return TopMustSet()
	}
	return &MustPlaceSet{set: s.set.Clone()}
}

func (s *MustPlaceSet) String() string {
	if s.top {
		return "⊤"
	}
	return s.set.String()
}

package ssafront

import (
	"go/types"

	"github.com/outparam/outparam/mir"
)

// pointeeAggregate returns the aggregate description of t's pointee
// when t is a pointer to a named struct type, and nil otherwise.
// Candidates for output-parameter rewriting must point at a named
// aggregate so the downstream transform can name the fields it
// returns.
func pointeeAggregate(t types.Type) *mir.AggregateType {
	ptr, ok := t.Underlying().(*types.Pointer)
	if !ok {
		return nil
	}
	named, ok := ptr.Elem().(*types.Named)
	if !ok {
		return nil
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil
	}

	agg := &mir.AggregateType{Name: named.Obj().Name()}
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		agg.Fields = append(agg.Fields, mir.Field{
			Name: f.Name(),
			Type: f.Type().String(),
		})
	}
	return agg
}

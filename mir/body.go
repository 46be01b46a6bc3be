package mir

import (
	"errors"
	"fmt"
)

// Statement assigns the value of an rvalue to a place.
type Statement struct {
	LHS Place
	RHS Rvalue
}

func (s Statement) String() string {
	return fmt.Sprintf("%v = %T%v", s.LHS, s.RHS, s.RHS.Operands())
}

// Terminator ends a basic block and names its successor edges.
type Terminator interface {
	Successors() []int
	terminator()
}

type ttag struct{}

func (ttag) terminator() {}

// Goto branches unconditionally.
type Goto struct {
	ttag
	Target int
}

func (t Goto) Successors() []int { return []int{t.Target} }

// If branches on an operand.
type If struct {
	ttag
	Cond       Operand
	Then, Else int
}

func (t If) Successors() []int { return []int{t.Then, t.Else} }

// Call invokes a function, storing the result in Dest and continuing
// at Target. A Target of -1 marks a call that never returns. The
// destination place is not treated as a write by the analyses; only
// explicit assignment statements are.
type Call struct {
	ttag
	Dest   Place
	Args   []Operand
	Target int
}

func (t Call) Successors() []int {
	if t.Target < 0 {
		return nil
	}
	return []int{t.Target}
}

// Return leaves the function.
type Return struct{ ttag }

func (Return) Successors() []int { return nil }

// Unreachable marks a block that never completes (panic, abort).
type Unreachable struct{ ttag }

func (Unreachable) Successors() []int { return nil }

// Block is a statement sequence ending in a terminator.
type Block struct {
	Stmts []Statement
	Term  Terminator
}

// Field describes one field of a named aggregate.
type Field struct {
	Name string
	Type string
}

// AggregateType is a named struct- or union-like type.
type AggregateType struct {
	Name   string
	Fields []Field
}

// Param describes a function parameter. Pointee is non-nil exactly
// when the parameter's static type is a pointer to a named aggregate.
type Param struct {
	Name    string
	Pointee *AggregateType
}

// Body is the control-flow graph of a single function. Block 0 is the
// entry. Bodies are built once by a front end and are read-only
// afterwards; the analyses never mutate them.
type Body struct {
	Name   string // qualified function name
	Pos    string // source position, for reporting
	Params []Param
	// NumLocals counts all slots: the return slot, the parameters and
	// the temporaries.
	NumLocals int
	Blocks    []Block
}

func (b *Body) NumParams() int { return len(b.Params) }

// IsParam reports whether l is a strict parameter slot, excluding the
// return slot.
func (b *Body) IsParam(l Local) bool {
	return l >= 1 && int(l) <= len(b.Params)
}

// ErrMalformed is wrapped by all Validate failures.
var ErrMalformed = errors.New("malformed body")

func (b *Body) checkLocal(l Local, what string, block int) error {
	if l < 0 || int(l) >= b.NumLocals {
		return fmt.Errorf("%w: %s references undefined local _%d in block %d",
			ErrMalformed, what, l, block)
	}
	return nil
}

func (b *Body) checkTarget(target, block int) error {
	if target < -1 || target >= len(b.Blocks) {
		return fmt.Errorf("%w: block %d has successor %d out of range",
			ErrMalformed, block, target)
	}
	return nil
}

// Validate checks the structural well-formedness the analyses rely
// on: every block has a terminator, successor edges stay in range and
// every place roots in a defined local. It does not check semantic
// properties.
func (b *Body) Validate() error {
	if b.NumLocals < 1+len(b.Params) {
		return fmt.Errorf("%w: %d locals cannot hold the return slot and %d parameters",
			ErrMalformed, b.NumLocals, len(b.Params))
	}
	if len(b.Blocks) == 0 {
		return fmt.Errorf("%w: no blocks", ErrMalformed)
	}
	for i, block := range b.Blocks {
		for _, stmt := range block.Stmts {
			if stmt.RHS == nil {
				return fmt.Errorf("%w: statement without rvalue in block %d", ErrMalformed, i)
			}
			if err := b.checkLocal(stmt.LHS.Local, "assignment", i); err != nil {
				return err
			}
			for _, p := range stmt.RHS.Operands() {
				if err := b.checkLocal(p.Local, "operand", i); err != nil {
					return err
				}
			}
		}
		if block.Term == nil {
			return fmt.Errorf("%w: block %d has no terminator", ErrMalformed, i)
		}
		if call, ok := block.Term.(Call); ok {
			if err := b.checkLocal(call.Dest.Local, "call destination", i); err != nil {
				return err
			}
		}
		for _, succ := range block.Term.Successors() {
			if err := b.checkTarget(succ, i); err != nil {
				return err
			}
		}
	}
	return nil
}

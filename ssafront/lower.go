// Package ssafront lowers functions built by golang.org/x/tools/go/ssa
// into the mir control-flow representation consumed by the analyses.
//
// The lowering is deliberately partial: it models exactly the
// instruction shapes the analyses care about — stores and loads
// through pointers, address computations and operand reads — and maps
// everything else to mir.Opaque, which contributes no dataflow facts.
package ssafront

import (
	"fmt"
	"go/token"

	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/outparam/outparam/internal/slices"
	"github.com/outparam/outparam/mir"
)

type lowerer struct {
	fn     *ssa.Function
	locals map[ssa.Value]mir.Local
	next   mir.Local
	blocks []mir.Block
}

// Lower converts fn into a mir body. It fails only for functions
// without source (external or interface-dispatch stubs).
func Lower(fn *ssa.Function) (*mir.Body, error) {
	if len(fn.Blocks) == 0 {
		return nil, fmt.Errorf("%s has no body", fn)
	}

	lw := &lowerer{
		fn:     fn,
		locals: make(map[ssa.Value]mir.Local, len(fn.Params)),
		next:   mir.Local(len(fn.Params)) + 1,
		blocks: make([]mir.Block, len(fn.Blocks)),
	}
	for i, param := range fn.Params {
		lw.locals[param] = mir.Local(i + 1)
	}

	for _, b := range fn.Blocks {
		lw.lowerBlock(b)
	}

	params := slices.Map(fn.Params, func(p *ssa.Parameter) mir.Param {
		return mir.Param{Name: p.Name(), Pointee: pointeeAggregate(p.Type())}
	})

	body := &mir.Body{
		Name:      fn.String(),
		Pos:       fn.Prog.Fset.Position(fn.Pos()).String(),
		Params:    params,
		NumLocals: int(lw.next),
		Blocks:    lw.blocks,
	}
	return body, nil
}

// LowerProgram lowers every non-synthetic source function of the
// program. Functions without bodies are skipped.
func LowerProgram(prog *ssa.Program) []*mir.Body {
	var bodies []*mir.Body
	for fn := range ssautil.AllFunctions(prog) {
		if fn.Synthetic != "" || len(fn.Blocks) == 0 {
			continue
		}
		body, err := Lower(fn)
		if err != nil {
			continue
		}
		bodies = append(bodies, body)
	}
	return bodies
}

// local returns the slot for an SSA value, allocating one on first
// use. NumLocals is derived from the final allocation counter.
func (lw *lowerer) local(v ssa.Value) mir.Local {
	if l, found := lw.locals[v]; found {
		return l
	}
	l := lw.next
	lw.next++
	lw.locals[v] = l
	return l
}

func (lw *lowerer) localPlace(v ssa.Value) mir.Place {
	return mir.PlaceFor(lw.local(v))
}

// lvalue returns the place denoting the memory addressed by addr.
// Parameters used as addresses become indirect first projections,
// which is exactly what separates writes through an output pointer
// from writes to locals.
func (lw *lowerer) lvalue(addr ssa.Value) mir.Place {
	switch a := addr.(type) {
	case *ssa.Parameter:
		return lw.localPlace(a).Deref()
	case *ssa.Alloc:
		// The slot itself; stack or heap makes no difference here.
		return lw.localPlace(a)
	case *ssa.FieldAddr:
		return lw.lvalue(a.X).Field(a.Field)
	case *ssa.IndexAddr:
		return lw.lvalue(a.X).Index()
	default:
		// Address held in a temporary (loaded pointer, global, ...).
		return lw.localPlace(addr).Deref()
	}
}

// operand converts an SSA value used as an rvalue operand. Constants,
// functions and address-of values read no place.
func (lw *lowerer) operand(v ssa.Value) mir.Operand {
	switch v.(type) {
	case *ssa.Const, *ssa.Function, *ssa.Builtin, *ssa.Global, *ssa.Alloc:
		return mir.Const()
	default:
		return mir.Copy(lw.localPlace(v))
	}
}

func (lw *lowerer) emit(cur int, lhs mir.Place, rhs mir.Rvalue) {
	lw.blocks[cur].Stmts = append(lw.blocks[cur].Stmts, mir.Statement{LHS: lhs, RHS: rhs})
}

func (lw *lowerer) lowerBlock(b *ssa.BasicBlock) {
	cur := b.Index
	for _, instr := range b.Instrs {
		switch t := instr.(type) {
		case *ssa.Store:
			lw.emit(cur, lw.lvalue(t.Addr), mir.Use{X: lw.operand(t.Val)})

		case *ssa.UnOp:
			if t.Op == token.MUL {
				// Load through a pointer: the read that blocks
				// output-parameter classification.
				lw.emit(cur, lw.localPlace(t), mir.Use{X: mir.Copy(lw.lvalue(t.X))})
			} else {
				lw.emit(cur, lw.localPlace(t), mir.UnaryOp{X: lw.operand(t.X)})
			}

		case *ssa.BinOp:
			lw.emit(cur, lw.localPlace(t), mir.BinaryOp{X: lw.operand(t.X), Y: lw.operand(t.Y)})

		case *ssa.FieldAddr, *ssa.IndexAddr:
			v := t.(ssa.Value)
			lw.emit(cur, lw.localPlace(v), mir.Ref{X: lw.lvalue(v)})

		case *ssa.Convert:
			lw.emit(cur, lw.localPlace(t), mir.Cast{X: lw.operand(t.X)})

		case *ssa.ChangeType:
			lw.emit(cur, lw.localPlace(t), mir.Cast{X: lw.operand(t.X)})

		case *ssa.ChangeInterface:
			lw.emit(cur, lw.localPlace(t), mir.Cast{X: lw.operand(t.X)})

		case *ssa.SliceToArrayPointer:
			lw.emit(cur, lw.localPlace(t), mir.Cast{X: lw.operand(t.X)})

		case *ssa.Phi:
			fields := slices.Map(t.Edges, lw.operand)
			lw.emit(cur, lw.localPlace(t), mir.Aggregate{Fields: fields})

		case *ssa.Extract:
			lw.emit(cur, lw.localPlace(t), mir.Use{X: lw.operand(t.Tuple)})

		case *ssa.Alloc:
			// Just names a slot; no dataflow effect of its own.

		case *ssa.Call:
			cont := lw.newBlock()
			lw.blocks[cur].Term = mir.Call{
				Dest:   lw.localPlace(t),
				Args:   slices.Map(t.Call.Args, lw.operand),
				Target: cont,
			}
			cur = cont

		case *ssa.If:
			lw.blocks[cur].Term = mir.If{
				Cond: lw.operand(t.Cond),
				Then: b.Succs[0].Index,
				Else: b.Succs[1].Index,
			}

		case *ssa.Jump:
			lw.blocks[cur].Term = mir.Goto{Target: b.Succs[0].Index}

		case *ssa.Return:
			if len(t.Results) > 0 {
				fields := slices.Map(t.Results, lw.operand)
				lw.emit(cur, mir.PlaceFor(mir.ReturnLocal), mir.Aggregate{Fields: fields})
			}
			lw.blocks[cur].Term = mir.Return{}

		case *ssa.Panic:
			lw.blocks[cur].Term = mir.Unreachable{}

		case *ssa.DebugRef, *ssa.RunDefers, *ssa.Defer, *ssa.Go,
			*ssa.Send, *ssa.MapUpdate:
			// No modeled dataflow effect.

		case ssa.Value:
			// MakeSlice, Lookup, TypeAssert, Range, ... — outside the
			// recognized shapes; conservatively contributes nothing.
			lw.emit(cur, lw.localPlace(t), mir.Opaque{})
		}
	}
}

func (lw *lowerer) newBlock() int {
	lw.blocks = append(lw.blocks, mir.Block{})
	return len(lw.blocks) - 1
}

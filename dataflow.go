package outparam

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/outparam/outparam/internal/worklist"
	"github.com/outparam/outparam/mir"
)

type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Lattice is a join-semilattice value. Implementations are pointer
// types; Join merges other into the receiver and reports whether the
// receiver changed. Join must be monotone and accurate about change,
// and the lattice must have finite height — the engine's termination
// depends on both.
type Lattice[D any] interface {
	Join(other D) bool
	Clone() D
	fmt.Stringer
}

// Analysis defines one dataflow analysis over a body: its direction,
// the initial per-block values and the per-statement transfer
// function, applied in program order for forward analyses and in
// reverse for backward ones. Terminators only route values along
// their successor edges; they have no transfer effect of their own,
// and in particular a call's return slot neither generates nor kills
// facts.
type Analysis[D Lattice[D]] interface {
	Direction() Direction
	// Bottom is the join identity every block starts from.
	Bottom(body *mir.Body) D
	// InitEntry adjusts the initial value of the entry block.
	InitEntry(body *mir.Body, state D)
	Statement(state D, stmt mir.Statement)
}

// Results holds the fixpoint of one analysis run. For a forward
// analysis the stored per-block value is the state at the block's
// start; for a backward analysis it is the state at the block's end
// (the analysis-order entry).
type Results[D Lattice[D]] struct {
	body     *mir.Body
	analysis Analysis[D]
	states   []D

	// Visits counts processed blocks, bounded by
	// len(blocks) × (lattice height + 1) for a monotone analysis.
	Visits int
}

// Fixpoint iterates the analysis over the body's control-flow graph
// to a fixpoint using a deduplicating FIFO worklist.
func Fixpoint[D Lattice[D]](body *mir.Body, analysis Analysis[D]) *Results[D] {
	n := len(body.Blocks)
	res := &Results[D]{
		body:     body,
		analysis: analysis,
		states:   make([]D, n),
	}
	for i := range res.states {
		res.states[i] = analysis.Bottom(body)
	}
	analysis.InitEntry(body, res.states[0])

	backward := analysis.Direction() == Backward
	var preds [][]int
	if backward {
		preds = predecessors(body)
	}

	var wl worklist.Worklist[int]
	for i := 0; i < n; i++ {
		if backward {
			wl.Push(n - 1 - i)
		} else {
			wl.Push(i)
		}
	}

	for !wl.Empty() {
		b := wl.Pop()
		res.Visits++

		state := res.states[b].Clone()
		block := &body.Blocks[b]
		if backward {
			for i := len(block.Stmts) - 1; i >= 0; i-- {
				analysis.Statement(state, block.Stmts[i])
			}
		} else {
			for _, stmt := range block.Stmts {
				analysis.Statement(state, stmt)
			}
		}

		if log.IsLevelEnabled(log.DebugLevel) {
			log.Debugf("%s: %v block %d: %v -> %v",
				body.Name, analysis.Direction(), b, res.states[b], state)
		}

		var dependents []int
		if backward {
			dependents = preds[b]
		} else {
			dependents = block.Term.Successors()
		}
		for _, d := range dependents {
			if res.states[d].Join(state) {
				wl.Push(d)
			}
		}
	}

	return res
}

// BlockEntry returns the fixpoint value at the start of block b, in
// program order.
func (r *Results[D]) BlockEntry(b int) D {
	if r.analysis.Direction() == Forward {
		return r.states[b].Clone()
	}
	return r.throughBlock(b)
}

// BeforeTerminator returns the fixpoint value just before block b's
// terminator, in program order.
func (r *Results[D]) BeforeTerminator(b int) D {
	if r.analysis.Direction() == Backward {
		return r.states[b].Clone()
	}
	return r.throughBlock(b)
}

// throughBlock pushes the stored per-block value through the block's
// statements in the analysis direction.
func (r *Results[D]) throughBlock(b int) D {
	state := r.states[b].Clone()
	block := &r.body.Blocks[b]
	if r.analysis.Direction() == Backward {
		for i := len(block.Stmts) - 1; i >= 0; i-- {
			r.analysis.Statement(state, block.Stmts[i])
		}
	} else {
		for _, stmt := range block.Stmts {
			r.analysis.Statement(state, stmt)
		}
	}
	return state
}

func predecessors(body *mir.Body) [][]int {
	preds := make([][]int, len(body.Blocks))
	for i, block := range body.Blocks {
		for _, succ := range block.Term.Successors() {
			preds[succ] = append(preds[succ], i)
		}
	}
	return preds
}

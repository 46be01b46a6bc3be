package outparam

import (
	"runtime"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/outparam/outparam/mir"
)

// Analyze classifies the output-parameter candidates of a single
// function. It returns nil (and no error) when the function yields no
// candidates: it has no parameters, nothing is written through a
// parameter pointer, or every such write is preceded by a read.
// The body is never mutated; analyzing the same body twice yields an
// identical result.
func Analyze(body *mir.Body) (*Classification, error) {
	if err := body.Validate(); err != nil {
		return nil, err
	}
	if len(body.Params) == 0 {
		return nil, nil
	}

	writes := collectWrites(body)
	if writes.Len() == 0 {
		return nil, nil
	}

	// A place read before any write can be guaranteed cannot be
	// treated as output-only. The fixpoint value at the entry holds
	// exactly the places with such a read on some path.
	reads := Fixpoint[*MayPlaceSet](body, readsBeforeWrite{}).BlockEntry(0)
	writes.Retain(func(p mir.Place) bool {
		return body.IsParam(p.Local) && !reads.Contains(p)
	})
	if writes.Len() == 0 {
		return nil, nil
	}

	must := mustWritesAtReturns(body).Clone()
	must.Retain(writes.Contains)

	may := writes.Clone()
	may.Retain(func(p mir.Place) bool { return !must.Contains(p) })

	c := &Classification{
		Name:       body.Name,
		Pos:        body.Pos,
		MustWrites: must.Places(),
		MayWrites:  may.Places(),
		Params:     make(map[int]mir.AggregateType),
	}
	for i, param := range body.Params {
		local := mir.Local(i + 1)
		if param.Pointee == nil {
			continue
		}
		rooted := func(p mir.Place) bool { return p.Local == local }
		if anyPlace(must, rooted) || anyPlace(may, rooted) {
			c.Params[i+1] = *param.Pointee
		}
	}
	return c, nil
}

// mustWritesAtReturns joins the must-write values observed at every
// return terminator. Unreachable returns stay Top and so do not
// constrain the join; if no return is reachable at all, the combined
// value degrades to the concrete empty set.
func mustWritesAtReturns(body *mir.Body) PlaceSet {
	results := Fixpoint[*MustPlaceSet](body, mustWrite{})
	combined := TopMustSet()
	for b, block := range body.Blocks {
		if _, ok := block.Term.(mir.Return); ok {
			combined.Join(results.BeforeTerminator(b))
		}
	}
	set, ok := combined.Set()
	if !ok {
		return make(PlaceSet)
	}
	return set
}

func anyPlace(s PlaceSet, pred func(mir.Place) bool) bool {
	for _, p := range s {
		if pred(p) {
			return true
		}
	}
	return false
}

// Config controls AnalyzeAll.
type Config struct {
	// Workers bounds the number of functions analyzed concurrently.
	// Zero or negative means GOMAXPROCS.
	Workers int
}

// AnalyzeAll analyzes every body across a bounded worker pool and
// returns the classifications ordered by function name. Analyses of
// distinct functions share nothing; a malformed body is logged and
// skipped without aborting the run.
func AnalyzeAll(bodies []*mir.Body, config Config) []*Classification {
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		g       errgroup.Group
		mu      sync.Mutex
		results []*Classification
	)
	g.SetLimit(workers)

	for _, body := range bodies {
		body := body
		g.Go(func() error {
			c, err := Analyze(body)
			if err != nil {
				log.Warnf("Skipping %s: %v", body.Name, err)
				return nil
			}
			if c == nil {
				return nil
			}
			mu.Lock()
			results = append(results, c)
			mu.Unlock()
			return nil
		})
	}
	// The workers swallow per-function failures, so Wait cannot fail.
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return results[i].Pos < results[j].Pos
	})
	return results
}

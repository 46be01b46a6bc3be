package outparam

import (
	"fmt"
	"strings"

	"github.com/outparam/outparam/internal/slices"
	"github.com/outparam/outparam/mir"
)

// Classification is the per-function analysis result: the candidate
// output-parameter places partitioned into must-writes (written
// before every reachable return) and may-writes (written on at least
// one path), plus, for every candidate parameter whose type is a
// pointer to a named aggregate, that aggregate's field list keyed by
// 1-based parameter index.
type Classification struct {
	Name string
	Pos  string

	MustWrites []mir.Place
	MayWrites  []mir.Place

	Params map[int]mir.AggregateType
}

func placeStrings(places []mir.Place) []string {
	return slices.Map(places, func(p mir.Place) string { return p.String() })
}

// MustWriteStrings and MayWriteStrings render the place sets for
// reports and serialization.
func (c *Classification) MustWriteStrings() []string { return placeStrings(c.MustWrites) }

func (c *Classification) MayWriteStrings() []string { return placeStrings(c.MayWrites) }

func (c *Classification) String() string {
	return fmt.Sprintf("%s %s must=[%s] may=[%s]",
		c.Pos, c.Name,
		strings.Join(c.MustWriteStrings(), " "),
		strings.Join(c.MayWriteStrings(), " "))
}

// Reporter consumes classifications. Functions that fail validation
// or yield no candidates are never reported; the consumer treats them
// as unchanged.
type Reporter interface {
	Report(*Classification)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(*Classification)

func (f ReporterFunc) Report(c *Classification) { f(c) }

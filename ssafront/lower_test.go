package ssafront_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/ssa"

	"github.com/outparam/outparam"
	"github.com/outparam/outparam/internal/maps"
	"github.com/outparam/outparam/internal/slices"
	"github.com/outparam/outparam/mir"
	"github.com/outparam/outparam/pkgutil"
	"github.com/outparam/outparam/ssafront"
)

const testSource = `
	package main

	type pair struct {
		a int
		b int
	}

	func fill(p *pair) {
		p.a = 1
		p.b = 2
	}

	func set(p *int) {
		*p = 1
	}

	func maybe(p *int, c bool) {
		if c {
			*p = 1
		}
	}

	func bump(p *int) {
		*p = *p + 1
	}

	func both(p *int, c bool) {
		if c {
			*p = 1
			return
		}
		*p = 2
	}

	func noop(p *int) int {
		return 2
	}

	func main() {}`

func loadMain(t *testing.T) *ssa.Package {
	t.Helper()

	pkgs, err := pkgutil.LoadPackagesFromSource(testSource)
	require.NoError(t, err)

	_, spkgs := pkgutil.BuildSSA(pkgs)
	require.Len(t, spkgs, 1)
	return spkgs[0]
}

func classify(t *testing.T, pkg *ssa.Package, name string) *outparam.Classification {
	t.Helper()

	fn := pkg.Func(name)
	require.NotNil(t, fn, "no function %q", name)

	body, err := ssafront.Lower(fn)
	require.NoError(t, err)
	require.NoError(t, body.Validate())

	c, err := outparam.Analyze(body)
	require.NoError(t, err)
	return c
}

func TestClassifyLoweredFunctions(t *testing.T) {
	pkg := loadMain(t)

	t.Run("StraightLineWrite", func(t *testing.T) {
		c := classify(t, pkg, "set")
		require.NotNil(t, c)
		assert.Equal(t, []string{"(*_1)"}, c.MustWriteStrings())
		assert.Empty(t, c.MayWrites)
		assert.Empty(t, c.Params, "int is not a named aggregate")
	})

	t.Run("ConditionalWrite", func(t *testing.T) {
		c := classify(t, pkg, "maybe")
		require.NotNil(t, c)
		assert.Empty(t, c.MustWrites)
		assert.Equal(t, []string{"(*_1)"}, c.MayWriteStrings())
	})

	t.Run("ReadBeforeWrite", func(t *testing.T) {
		assert.Nil(t, classify(t, pkg, "bump"))
	})

	t.Run("MultipleReturnsBothWriting", func(t *testing.T) {
		c := classify(t, pkg, "both")
		require.NotNil(t, c)
		assert.Equal(t, []string{"(*_1)"}, c.MustWriteStrings())
		assert.Empty(t, c.MayWrites)
	})

	t.Run("AggregateFields", func(t *testing.T) {
		c := classify(t, pkg, "fill")
		require.NotNil(t, c)
		assert.Equal(t, []string{"(*_1).0", "(*_1).1"}, c.MustWriteStrings())
		assert.Empty(t, c.MayWrites)

		agg, found := c.Params[1]
		require.True(t, found)
		assert.Equal(t, "pair", agg.Name)
		require.Len(t, agg.Fields, 2)
		assert.Equal(t, "a", agg.Fields[0].Name)
		assert.Equal(t, "int", agg.Fields[0].Type)
		assert.Equal(t, "b", agg.Fields[1].Name)
	})

	t.Run("NoWrites", func(t *testing.T) {
		assert.Nil(t, classify(t, pkg, "noop"))
	})
}

func TestLowerExternalFunctionFails(t *testing.T) {
	pkgs, err := pkgutil.LoadPackagesFromSource(`
		package main

		func external(p *int)

		func main() {}`)
	require.NoError(t, err)

	_, spkgs := pkgutil.BuildSSA(pkgs)
	fn := spkgs[0].Func("external")
	require.NotNil(t, fn)

	_, err = ssafront.Lower(fn)
	assert.Error(t, err)
}

func TestLowerProgram(t *testing.T) {
	pkgs, err := pkgutil.LoadPackagesFromSource(testSource)
	require.NoError(t, err)

	prog, spkgs := pkgutil.BuildSSA(pkgs)
	bodies := ssafront.LowerProgram(prog)

	// The loader reports a synthetic package path for overlay files;
	// derive qualified names from it rather than hardcoding.
	qual := func(name string) string { return spkgs[0].Pkg.Path() + "." + name }

	for _, body := range bodies {
		require.NoError(t, body.Validate(), "lowering %s produced a malformed body", body.Name)
	}
	names := maps.FromKeys(slices.Map(bodies, func(b *mir.Body) string { return b.Name }))
	for _, name := range []string{"fill", "set", "maybe", "bump", "both", "main"} {
		assert.Contains(t, names, qual(name))
	}

	results := outparam.AnalyzeAll(bodies, outparam.Config{})
	byName := make(map[string]*outparam.Classification, len(results))
	for _, c := range results {
		byName[c.Name] = c
	}

	require.Contains(t, byName, qual("set"))
	assert.Equal(t, []string{"(*_1)"}, byName[qual("set")].MustWriteStrings())
	require.Contains(t, byName, qual("maybe"))
	assert.Equal(t, []string{"(*_1)"}, byName[qual("maybe")].MayWriteStrings())
	assert.NotContains(t, byName, qual("bump"))
}

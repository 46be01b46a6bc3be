package mir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/outparam/outparam/mir"
)

func TestPlaceString(t *testing.T) {
	t.Parallel()

	p := mir.PlaceFor(1)
	assert.Equal(t, "_1", p.String())
	assert.Equal(t, "(*_1)", p.Deref().String())
	assert.Equal(t, "(*_1).2", p.Deref().Field(2).String())
	assert.Equal(t, "(*_1)[*]", p.Deref().Index().String())
	assert.Equal(t, "(*(*_1).2)", p.Deref().Field(2).Deref().String())

	// The rendering doubles as a hash key, so distinct shapes must
	// not collide.
	assert.NotEqual(t, p.Deref().Field(12).String(), p.Deref().Field(1).Field(2).String())
}

func TestPlaceImmutable(t *testing.T) {
	t.Parallel()

	base := mir.PlaceFor(1).Deref()
	f0 := base.Field(0)
	f1 := base.Field(1)
	assert.Equal(t, "(*_1).0", f0.String())
	assert.Equal(t, "(*_1).1", f1.String())
	assert.Equal(t, "(*_1)", base.String())
}

func TestIndirectFirst(t *testing.T) {
	t.Parallel()

	p := mir.PlaceFor(1)
	assert.False(t, p.IndirectFirst())
	assert.True(t, p.Deref().IndirectFirst())
	assert.True(t, p.Deref().Field(3).IndirectFirst())
	assert.False(t, p.Field(3).IndirectFirst(), "field of the local itself is a direct access")
	assert.False(t, p.Field(3).Deref().IndirectFirst(), "deref must be the first projection")
}

func TestPlaceEqual(t *testing.T) {
	t.Parallel()

	a := mir.PlaceFor(1).Deref().Field(2)
	b := mir.PlaceFor(1).Deref().Field(2)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(mir.PlaceFor(2).Deref().Field(2)))
	assert.False(t, a.Equal(mir.PlaceFor(1).Deref().Field(3)))
	assert.False(t, a.Equal(mir.PlaceFor(1).Deref()))
}

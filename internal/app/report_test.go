package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membrango/membrango/multiset"
	"github.com/membrango/membrango/psys"
	"github.com/membrango/membrango/sim"
)

func TestRenderContents(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "(empty)", renderContents(multiset.Multiset{}))

	ms, err := multiset.Parse("b{2}, a")
	require.NoError(t, err)
	assert.Equal(t, "a, b{2}", renderContents(ms))
}

func TestRenderSnapshot(t *testing.T) {
	t.Parallel()

	a, err := multiset.Parse("a{2}")
	require.NoError(t, err)
	b, err := multiset.Parse("b")
	require.NoError(t, err)
	sys, err := psys.NewSystem(
		[]*psys.Membrane{
			psys.NewMembrane(1, "skin", psys.NoParent),
			psys.NewMembrane(2, "inner", 1),
		},
		[]string{"a", "b"},
		map[int]multiset.Multiset{1: a, 2: b},
		nil,
	)
	require.NoError(t, err)

	cfg := sim.NewConfiguration(sys)
	assert.Equal(t, "1=[a{2}] 2=[b]", renderSnapshot(cfg))

	cfg.Dissolve(2)
	assert.Equal(t, "1=[a{2}]", renderSnapshot(cfg))

	cfg.Dissolve(1)
	assert.Equal(t, "(no active membranes)", renderSnapshot(cfg))
}

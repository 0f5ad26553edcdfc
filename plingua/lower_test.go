package plingua

import (
	"errors"
	"testing"

	"github.com/membrango/membrango/multiset"
	"github.com/membrango/membrango/psys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mset(t *testing.T, text string) multiset.Multiset {
	t.Helper()
	m, err := multiset.Parse(text)
	require.NoError(t, err)
	return m
}

func TestParseMinimalModel(t *testing.T) {
	sys, err := Parse("@mu = []'1;\n@ms(1) = a{2}, b;\n[a]'1 --> [b{2}]'1;")
	require.NoError(t, err)

	require.Len(t, sys.Membranes(), 1)
	m, ok := sys.Membrane(1)
	require.True(t, ok)
	assert.Equal(t, "1", m.Label)
	assert.Equal(t, psys.NoParent, m.Parent)
	assert.True(t, sys.Initial(1).Equal(mset(t, "a{2}, b")))

	rules := sys.RulesFor("1")
	require.Len(t, rules, 1)
	r := rules[0]
	assert.True(t, r.LHS.Equal(mset(t, "a")))
	assert.True(t, r.RHS.Equal(mset(t, "b{2}")))
	assert.Equal(t, psys.Here(), r.Target)
	assert.False(t, r.Dissolves)
	assert.Zero(t, r.Priority)

	assert.Equal(t, []string{"a", "b"}, sys.Alphabet())
}

func TestParseAssignsIDsDepthFirst(t *testing.T) {
	sys, err := Parse("@mu = [[ [ ]'inner ]'left [ ]'right ]'skin;")
	require.NoError(t, err)
	require.Len(t, sys.Membranes(), 4)

	wants := []struct {
		id     int
		label  string
		parent int
	}{
		{1, "skin", psys.NoParent},
		{2, "left", 1},
		{3, "inner", 2},
		{4, "right", 1},
	}
	for _, w := range wants {
		m, ok := sys.Membrane(w.id)
		require.True(t, ok, "membrane %d", w.id)
		assert.Equal(t, w.label, m.Label)
		assert.Equal(t, w.parent, m.Parent)
	}

	skin, _ := sys.Membrane(1)
	assert.Equal(t, []int{2, 4}, skin.Children())
	assert.Same(t, skin, sys.Skin())
}

func TestParseContentsAccumulate(t *testing.T) {
	sys, err := Parse("@mu = []'m;\n@ms(1) = a;\n@ms(1) = a{2}, b;")
	require.NoError(t, err)
	assert.True(t, sys.Initial(1).Equal(mset(t, "a{3}, b")))
}

func TestParsePriorities(t *testing.T) {
	const rules = "@mu = []'m;\n" +
		"first = [a]'m --> (b);\n" +
		"second = [b]'m --> (c);\n" +
		"third = [c]'m --> (d);\n" +
		"[d]'m --> (a);\n"

	ranks := func(t *testing.T, src string) []int {
		t.Helper()
		sys, err := Parse(src)
		require.NoError(t, err)
		rs := sys.RulesFor("m")
		require.Len(t, rs, 4)
		got := make([]int, len(rs))
		for i, r := range rs {
			got[i] = r.Priority
		}
		return got
	}

	t.Run("chain ranks by longest path below", func(t *testing.T) {
		got := ranks(t, rules+"first > second;\nsecond > third;")
		assert.Equal(t, []int{2, 1, 0, 0}, got)
	})

	t.Run("less than reads backwards", func(t *testing.T) {
		got := ranks(t, rules+"third < second;\nsecond < first;")
		assert.Equal(t, []int{2, 1, 0, 0}, got)
	})

	t.Run("diamond keeps the longest chain", func(t *testing.T) {
		got := ranks(t, rules+"first > second;\nsecond > third;\nfirst > third;")
		assert.Equal(t, []int{2, 1, 0, 0}, got)
	})

	t.Run("no relations leaves everything flat", func(t *testing.T) {
		got := ranks(t, rules)
		assert.Equal(t, []int{0, 0, 0, 0}, got)
	})
}

func TestParseLoweringErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantPos  *Pos
		contains string
	}{
		{
			name:     "duplicate structure statement",
			src:      "@mu = []'1;\n@mu = []'2;",
			wantPos:  &Pos{Line: 2, Col: 1},
			contains: "duplicate @mu",
		},
		{
			name:     "zero multiplicities hollow out the left side",
			src:      "@mu = []'1;\n[a{0}]'1 --> (b);",
			wantPos:  &Pos{Line: 2, Col: 1},
			contains: "cannot be empty",
		},
		{
			name:     "priority over unknown rule name",
			src:      "@mu = []'m;\nr = [a]'m --> (b);\nr > ghost;",
			wantPos:  &Pos{Line: 3, Col: 1},
			contains: `unknown rule name "ghost"`,
		},
		{
			name: "priority cycle",
			src: "@mu = []'m;\nup = [a]'m --> (b);\ndown = [b]'m --> (a);\n" +
				"up > down;\ndown > up;",
			contains: "form a cycle",
		},
		{
			name:     "duplicate rule name",
			src:      "@mu = []'m;\ngrow = [a]'m --> (b);\ngrow = [b]'m --> (c);",
			wantPos:  &Pos{Line: 3, Col: 1},
			contains: `duplicate rule name "grow"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)

			var synErr *SyntaxError
			require.True(t, errors.As(err, &synErr), "want *SyntaxError, got %T", err)
			assert.Equal(t, KindModel, synErr.Kind)
			if tt.wantPos != nil {
				assert.Equal(t, *tt.wantPos, synErr.Pos)
			}
			assert.Contains(t, synErr.Msg, tt.contains)
		})
	}
}

func TestParseSurfacesSystemValidation(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantKind psys.ValidationKind
	}{
		{
			name:     "contents for an undeclared membrane",
			src:      "@mu = []'1;\n@ms(9) = a;",
			wantKind: psys.KindUnknownMembrane,
		},
		{
			name:     "rule label matching no membrane",
			src:      "@mu = []'1;\n[a]'ghost --> (b);",
			wantKind: psys.KindUnknownLabel,
		},
		{
			name:     "rules without any structure",
			src:      "[a]'m --> (b);",
			wantKind: psys.KindUnknownLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)

			var verr *psys.ValidationError
			require.True(t, errors.As(err, &verr), "want *psys.ValidationError, got %T", err)
			assert.Equal(t, tt.wantKind, verr.Kind)
		})
	}
}

func TestParseShowcaseModel(t *testing.T) {
	src := `@model<transition>

// Doubler with a worker membrane that reports up and finally dissolves.
def main() {
  @mu = [[ ]'worker]'skin;
  @ms(2) = a{2};

  double = [a]'worker --> [b{2}]'worker;
  report = [b]'worker --> (b, out);
  finish = [b{4}]'worker --> []'worker;
  seed   = [c]'skin --> (c{2}, in_2);

  double > report;
}
`
	sys, err := Parse(src)
	require.NoError(t, err)

	require.Len(t, sys.Membranes(), 2)
	skin := sys.Skin()
	require.NotNil(t, skin)
	assert.Equal(t, 1, skin.ID)
	assert.Equal(t, "skin", skin.Label)
	worker, ok := sys.Membrane(2)
	require.True(t, ok)
	assert.Equal(t, 1, worker.Parent)

	assert.True(t, sys.Initial(1).IsEmpty())
	assert.True(t, sys.Initial(2).Equal(mset(t, "a{2}")))

	workerRules := sys.RulesFor("worker")
	require.Len(t, workerRules, 3)
	double, report, finish := workerRules[0], workerRules[1], workerRules[2]

	assert.Equal(t, "double", double.Name)
	assert.Equal(t, 1, double.Priority)
	assert.Equal(t, psys.Here(), double.Target)

	assert.Equal(t, "report", report.Name)
	assert.Zero(t, report.Priority)
	assert.Equal(t, psys.Out(), report.Target)

	assert.Equal(t, "finish", finish.Name)
	assert.True(t, finish.Dissolves)
	assert.True(t, finish.LHS.Equal(mset(t, "b{4}")))
	assert.True(t, finish.RHS.IsEmpty())

	skinRules := sys.RulesFor("skin")
	require.Len(t, skinRules, 1)
	seed := skinRules[0]
	assert.Equal(t, psys.In(2), seed.Target)
	assert.True(t, seed.RHS.Equal(mset(t, "c{2}")))

	assert.Equal(t, []string{"a", "b", "c"}, sys.Alphabet())
}

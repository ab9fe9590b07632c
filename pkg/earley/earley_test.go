package earley

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tmllang/tml/pkg/grammar"
)

// E1: S -> b | S S on "bbb" recognizes, and the chart records an S
// completion spanning the whole input from 0 to 3. The two distinct
// packings of that span are checked in pkg/sppf's E1 test.
func TestE1AmbiguousConcatenation(t *testing.T) {
	g := grammar.New("S", []grammar.Production{
		{LHS: "S", RHS: []grammar.Symbol{"b"}},
		{LHS: "S", RHS: []grammar.Symbol{"S", "S"}},
	})
	c := Recognize(g, "bbb")
	require.True(t, c.Recognized())

	completions := c.CompletedFrom("S", 0)
	var full []Completion
	for _, comp := range completions {
		if comp.To == 3 {
			full = append(full, comp)
		}
	}
	require.NotEmpty(t, full)
}

// E2: S -> b | S on "b" recognizes despite the unit cycle S -> S, and
// construction terminates (the test itself not hanging is the assertion).
func TestE2UnitCycleTerminates(t *testing.T) {
	g := grammar.New("S", []grammar.Production{
		{LHS: "S", RHS: []grammar.Symbol{"b"}},
		{LHS: "S", RHS: []grammar.Symbol{"S"}},
	})
	c := Recognize(g, "b")
	require.True(t, c.Recognized())
}

// E3: S -> a X X c, X -> X b | ε on "abbc" recognizes, and every expected
// X span from the two-X split is present with a completion.
func TestE3NullableRepetition(t *testing.T) {
	g := grammar.New("S", []grammar.Production{
		{LHS: "S", RHS: []grammar.Symbol{"a", "X", "X", "c"}},
		{LHS: "X", RHS: []grammar.Symbol{"X", "b"}},
		{LHS: "X", RHS: []grammar.Symbol{}},
	})
	c := Recognize(g, "abbc")
	require.True(t, c.Recognized())

	wantSpans := [][2]int{{1, 1}, {1, 2}, {2, 2}, {2, 3}, {1, 3}}
	for _, span := range wantSpans {
		found := false
		for _, comp := range c.CompletedFrom("X", span[0]) {
			if comp.To == span[1] {
				found = true
			}
		}
		require.True(t, found, "expected X(%d,%d) to be completed", span[0], span[1])
	}
}

func TestRejectsStringNotInLanguage(t *testing.T) {
	g := grammar.New("S", []grammar.Production{
		{LHS: "S", RHS: []grammar.Symbol{"a", "S", "b"}},
		{LHS: "S", RHS: []grammar.Symbol{}},
	})
	c := Recognize(g, "aab")
	require.False(t, c.Recognized())
}

func TestAdvancerAndCompleterProvenance(t *testing.T) {
	g := grammar.New("S", []grammar.Production{
		{LHS: "S", RHS: []grammar.Symbol{"a", "S"}},
		{LHS: "S", RHS: []grammar.Symbol{}},
	})
	c := Recognize(g, "a")
	require.True(t, c.Recognized())

	n := len(c.Input())
	for _, id := range c.ItemsAt(n) {
		item := c.Item(id)
		prod := g.Productions[item.Prod]
		if item.Dot == prod.Len() && prod.LHS == "S" && item.From == 0 {
			require.NotEmpty(t, c.Advancers(id), "a completed top-level S must trace back through an advancer")
		}
	}
}

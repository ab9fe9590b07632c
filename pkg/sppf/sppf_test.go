package sppf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tmllang/tml/pkg/earley"
	"github.com/tmllang/tml/pkg/grammar"
)

// E1: S -> b | S S on "bbb" has two packings for the root span, one per
// split point of the ambiguous concatenation.
func TestE1TwoPackingsForAmbiguousSplit(t *testing.T) {
	g := grammar.New("S", []grammar.Production{
		{LHS: "S", RHS: []grammar.Symbol{"b"}},
		{LHS: "S", RHS: []grammar.Symbol{"S", "S"}},
	})
	c := earley.Recognize(g, "bbb")
	f := Build(c)

	root := NodeKey{Symbol: "S", From: 0, To: 3}
	packings := f.Packings(root)
	require.Len(t, packings, 2)

	var splits []int
	for _, p := range packings {
		require.Len(t, p, 2)
		splits = append(splits, p[0].To)
	}
	require.ElementsMatch(t, []int{1, 2}, splits)
}

// E2: S -> b | S on "b" has two packings for (S,0,1): the terminal leaf
// and the self-referential S->S packing. Construction terminates despite
// the unit cycle — the test returning at all is part of the assertion.
func TestE2TwoPackingsDespiteUnitCycle(t *testing.T) {
	g := grammar.New("S", []grammar.Production{
		{LHS: "S", RHS: []grammar.Symbol{"b"}},
		{LHS: "S", RHS: []grammar.Symbol{"S"}},
	})
	c := earley.Recognize(g, "b")
	f := Build(c)

	root := NodeKey{Symbol: "S", From: 0, To: 1}
	packings := f.Packings(root)
	require.Len(t, packings, 2)

	var sawTerminal, sawSelf bool
	for _, p := range packings {
		require.Len(t, p, 1)
		switch p[0] {
		case NodeKey{Symbol: "b", From: 0, To: 1}:
			sawTerminal = true
		case NodeKey{Symbol: "S", From: 0, To: 1}:
			sawSelf = true
		}
	}
	require.True(t, sawTerminal)
	require.True(t, sawSelf)
}

// E3: S -> a X X c, X -> X b | ε on "abbc". The root has one packing
// [a, X(1,k), X(k,3), c] for each k in {1,2,3}. Check every expected X
// node exists with its packings, and the root's packings cover exactly
// those three splits.
func TestE3SplitFamilyAndNullableSpans(t *testing.T) {
	g := grammar.New("S", []grammar.Production{
		{LHS: "S", RHS: []grammar.Symbol{"a", "X", "X", "c"}},
		{LHS: "X", RHS: []grammar.Symbol{"X", "b"}},
		{LHS: "X", RHS: []grammar.Symbol{}},
	})
	c := earley.Recognize(g, "abbc")
	f := Build(c)

	for _, span := range [][2]int{{1, 1}, {1, 2}, {2, 2}, {2, 3}, {1, 3}} {
		key := NodeKey{Symbol: "X", From: span[0], To: span[1]}
		require.NotEmpty(t, f.Packings(key), "expected packings for X(%d,%d)", span[0], span[1])
	}

	root := NodeKey{Symbol: "S", From: 0, To: 4}
	packings := f.Packings(root)
	require.NotEmpty(t, packings)

	var splits []int
	for _, p := range packings {
		require.Len(t, p, 4)
		require.Equal(t, NodeKey{Symbol: "a", From: 0, To: 1}, p[0])
		require.Equal(t, NodeKey{Symbol: "c", From: 3, To: 4}, p[3])
		require.Equal(t, p[0].To, p[1].From)
		require.Equal(t, p[1].To, p[2].From)
		require.Equal(t, p[2].To, p[3].From)
		splits = append(splits, p[1].To)
	}
	require.ElementsMatch(t, []int{1, 2, 3}, splits)
}

func TestWalkEmitsNodesAndEdgesForChosenDerivation(t *testing.T) {
	g := grammar.New("S", []grammar.Production{
		{LHS: "S", RHS: []grammar.Symbol{"a", "S"}},
		{LHS: "S", RHS: []grammar.Symbol{}},
	})
	c := earley.Recognize(g, "aa")
	f := Build(c)

	root := NodeKey{Symbol: "S", From: 0, To: 2}
	var nodes []NodeKey
	var edges int
	f.Walk(root, nil, func(k NodeKey) {
		nodes = append(nodes, k)
	}, func(parent NodeKey, idx int, child NodeKey) {
		edges++
	})

	require.Contains(t, nodes, root)
	require.Greater(t, edges, 0)
}

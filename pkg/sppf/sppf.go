// Package sppf builds a shared-packed parse forest from an Earley chart
// (spec §4.G): a compact representation of every derivation of the input
// under a possibly ambiguous, cyclic grammar, in O(|chart|·|grammar|)
// space.
package sppf

import (
	"github.com/tmllang/tml/pkg/earley"
	"github.com/tmllang/tml/pkg/grammar"
)

// NodeKey identifies one SPPF node: symbol recognized over the half-open
// span [From, To).
type NodeKey struct {
	Symbol grammar.Symbol
	From   int
	To     int
}

// Packing is one derivation of a node: the sequence of child node keys
// consumed left to right by one production.
type Packing []NodeKey

// Forest maps every node key reached from the root to its packings.
// Ambiguity shows up as more than one packing per key; a terminal leaf has
// exactly one packing, which is empty.
type Forest struct {
	packings map[NodeKey][]Packing
}

// Build walks the chart from its start symbol's full-span node and
// materializes every reachable node's packings.
func Build(c *earley.Chart) *Forest {
	f := &Forest{packings: map[NodeKey][]Packing{}}
	root := NodeKey{Symbol: c.Grammar().Start, From: 0, To: len(c.Input())}
	f.expand(c, root)
	return f
}

// Packings returns key's packings, or nil if key was never reached.
func (f *Forest) Packings(key NodeKey) []Packing { return f.packings[key] }

// Nodes returns every node key discovered during Build, in no particular
// order — the node enumeration interface the grammar transformation
// consumes (spec §6).
func (f *Forest) Nodes() []NodeKey {
	out := make([]NodeKey, 0, len(f.packings))
	for k := range f.packings {
		out = append(out, k)
	}
	return out
}

// expand materializes key's packings. The visited check happens before
// any recursion (spec §9 design note): a key already present in f.packings
// — even with a still-empty entry, meaning expansion is in progress — is
// never re-expanded. This is what lets construction terminate on grammars
// like `S -> S` (spec E2) while still recording the self-referential
// packing as one of the node's alternatives.
func (f *Forest) expand(c *earley.Chart, key NodeKey) {
	if _, visited := f.packings[key]; visited {
		return
	}
	f.packings[key] = nil // mark visited before recursing

	if !c.Grammar().IsNonTerminal(key.Symbol) {
		f.packings[key] = []Packing{{}} // terminal leaf: no children
		return
	}

	var out []Packing
	seen := map[string]bool{}
	for _, comp := range c.CompletedFrom(key.Symbol, key.From) {
		if comp.To != key.To {
			continue
		}
		prod := c.Grammar().Productions[comp.Prod]
		var found []Packing
		f.walk(c, prod, 0, key.From, key.To, nil, &found)
		for _, p := range found {
			k := packingKey(p)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, p)
		}
	}
	f.packings[key] = out
}

// packingKey canonicalizes a packing's child sequence for dedup, matching
// the source's convention of keying packings by their child tuple rather
// than by which production or discovery path produced them (spec §4.G
// "shared by identity"). Child order is preserved — it encodes each
// child's RHS position, not an unordered set — only the (symbol, from, to)
// content is compared.
func packingKey(p Packing) string {
	var b []byte
	for _, k := range p {
		b = append(b, k.Symbol...)
		b = append(b, 0)
		b = appendInt(b, k.From)
		b = append(b, 0)
		b = appendInt(b, k.To)
		b = append(b, ';')
	}
	return string(b)
}

func appendInt(b []byte, n int) []byte {
	if n == 0 {
		return append(b, '0')
	}
	if n < 0 {
		b = append(b, '-')
		n = -n
	}
	start := len(b)
	for n > 0 {
		b = append(b, byte('0'+n%10))
		n /= 10
	}
	for i, j := start, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// walk implements sbl_chd_forest (spec §4.G): left to right over prod's
// RHS, choosing for each symbol a span consistent with the position
// reached so far and the production's overall end, recursing into each
// non-terminal child before trying the next RHS symbol.
func (f *Forest) walk(c *earley.Chart, prod grammar.Production, idx, pos, to int, prefix []NodeKey, out *[]Packing) {
	if idx == len(prod.RHS) {
		if pos == to {
			*out = append(*out, append(Packing(nil), prefix...))
		}
		return
	}

	sym := prod.RHS[idx]
	if sym == "" {
		f.walk(c, prod, idx+1, pos, to, prefix, out)
		return
	}

	if !c.Grammar().IsNonTerminal(sym) {
		if pos < to && pos < len(c.Input()) && c.Input()[pos] == sym {
			child := NodeKey{Symbol: sym, From: pos, To: pos + 1}
			f.expand(c, child)
			f.walk(c, prod, idx+1, pos+1, to, append(prefix, child), out)
		}
		return
	}

	for _, comp := range c.CompletedFrom(sym, pos) {
		if comp.To > to {
			continue
		}
		child := NodeKey{Symbol: sym, From: pos, To: comp.To}
		f.expand(c, child)
		f.walk(c, prod, idx+1, comp.To, to, append(prefix, child), out)
	}
}

// Walk disambiguates the forest into a single derivation by calling choose
// at every node with more than one packing, then reports every node and
// edge of the result (spec §6: `node(symbol, from, to)` /
// `edge(parent, childIndex, child)` facts for the grammar transformation).
// choose may be nil, in which case the first packing discovered is always
// taken.
func (f *Forest) Walk(root NodeKey, choose func(NodeKey, []Packing) Packing, onNode func(NodeKey), onEdge func(parent NodeKey, childIndex int, child NodeKey)) {
	visited := map[NodeKey]bool{}
	var visit func(NodeKey)
	visit = func(key NodeKey) {
		if visited[key] {
			return
		}
		visited[key] = true
		if onNode != nil {
			onNode(key)
		}
		packings := f.packings[key]
		if len(packings) == 0 {
			return
		}
		chosen := packings[0]
		if choose != nil {
			chosen = choose(key, packings)
		}
		for i, child := range chosen {
			if onEdge != nil {
				onEdge(key, i, child)
			}
			visit(child)
		}
	}
	visit(root)
}

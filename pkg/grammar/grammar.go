// Package grammar represents context-free grammars consumed by the Earley
// recognizer (pkg/earley) and the SPPF builder (pkg/sppf). A grammar is a
// flat list of productions; no assumptions about recursion, left-recursion,
// ambiguity, or epsilon productions are made here — those are the Earley
// package's problem.
package grammar

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Symbol is either a non-terminal name or a terminal literal. Terminals are
// distinguished from non-terminals by the grammar's own non-terminal set,
// not by any lexical convention on the string itself. A symbol that names
// a non-terminal is always that non-terminal: a grammar with a non-terminal
// "a" cannot also match the input character "a" as a terminal.
type Symbol string

// Production is one right-hand side alternative for a non-terminal: `LHS →
// RHS`. An empty RHS denotes ε.
type Production struct {
	LHS Symbol
	RHS []Symbol
}

// Len is the number of symbols on the right-hand side (the dot's range is
// [0, Len]).
func (p Production) Len() int { return len(p.RHS) }

// Grammar is an ordered list of productions plus the indexes derived from
// them: which non-terminal each production belongs to, and which
// non-terminals are nullable.
type Grammar struct {
	Start       Symbol
	Productions []Production

	byLHS     map[Symbol][]int // production index, stable within a LHS
	nullable  map[Symbol]bool
	terminals map[Symbol]bool
}

// New builds a Grammar from a start symbol and production list, computing
// the nullable-symbol closure and the LHS index eagerly (spec §4.F grammar
// preprocessing).
func New(start Symbol, productions []Production) *Grammar {
	g := &Grammar{
		Start:       start,
		Productions: productions,
		byLHS:       map[Symbol][]int{},
		terminals:   map[Symbol]bool{},
	}
	for i, p := range productions {
		g.byLHS[p.LHS] = append(g.byLHS[p.LHS], i)
	}
	for _, p := range productions {
		for _, s := range p.RHS {
			if _, isNT := g.byLHS[s]; !isNT {
				g.terminals[s] = true
			}
		}
	}
	g.nullable = computeNullable(productions, g.byLHS)
	return g
}

// IsNonTerminal reports whether s has at least one production.
func (g *Grammar) IsNonTerminal(s Symbol) bool {
	_, ok := g.byLHS[s]
	return ok
}

// IsNullable reports whether s can derive the empty string: true for every
// terminal equal to the empty string, and for any non-terminal in the
// nullable closure.
func (g *Grammar) IsNullable(s Symbol) bool {
	if s == "" {
		return true
	}
	return g.nullable[s]
}

// ProductionsFor returns the indexes (stable, usable as keys) of every
// production whose LHS is s.
func (g *Grammar) ProductionsFor(s Symbol) []int {
	return g.byLHS[s]
}

// computeNullable is the least fixed point of "every RHS symbol is
// nullable" (spec §4.F). A symbol with no RHS symbols at all (a bare ε
// production, or one whose only RHS entry is the empty string) is nullable
// immediately; the loop propagates that outward until no more symbols
// change.
func computeNullable(productions []Production, byLHS map[Symbol][]int) map[Symbol]bool {
	nullable := map[Symbol]bool{}
	changed := true
	for changed {
		changed = false
		for _, p := range productions {
			if nullable[p.LHS] {
				continue
			}
			if productionNullable(p, nullable) {
				nullable[p.LHS] = true
				changed = true
			}
		}
	}
	return nullable
}

func productionNullable(p Production, nullable map[Symbol]bool) bool {
	for _, s := range p.RHS {
		if s == "" {
			continue
		}
		if !nullable[s] {
			return false
		}
	}
	return true
}

// file is the on-disk YAML shape grammars are authored in: a start symbol
// and a map from non-terminal name to its list of alternatives, each
// alternative a sequence of symbol names. A symbol absent from the
// non-terminal map is treated as a terminal and expanded character by
// character (spec §6); YAML quoting makes no difference, so a quoted name
// of a non-terminal still denotes that non-terminal. Write an explicit
// empty list (`[]`) for an ε alternative.
type file struct {
	Start Symbol                 `yaml:"start"`
	Rules map[Symbol][][]Symbol `yaml:"rules"`
}

// Load parses a grammar YAML document (spec §6's `[(lhs, [rhs…])]` shape,
// re-expressed as a mapping for human authoring) into a Grammar, expanding
// every terminal string into one terminal symbol per character.
func Load(data []byte) (*Grammar, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "grammar: parse")
	}
	if f.Start == "" {
		return nil, errors.New("grammar: missing start symbol")
	}
	nts := map[Symbol]bool{}
	for lhs := range f.Rules {
		nts[lhs] = true
	}
	var productions []Production
	for lhs, alts := range f.Rules {
		for _, rhs := range alts {
			productions = append(productions, Production{LHS: lhs, RHS: expandTerminals(rhs, nts)})
		}
	}
	if _, ok := f.Rules[f.Start]; !ok {
		return nil, errors.Errorf("grammar: start symbol %q has no rules", f.Start)
	}
	return New(f.Start, productions), nil
}

// expandTerminals rewrites every RHS symbol that is not a known
// non-terminal into one terminal symbol per character of its literal text
// (spec §6). A symbol already one character long, or the empty string
// (ε), passes through unchanged.
func expandTerminals(rhs []Symbol, nts map[Symbol]bool) []Symbol {
	out := make([]Symbol, 0, len(rhs))
	for _, s := range rhs {
		if s == "" || nts[s] || len(s) <= 1 {
			out = append(out, s)
			continue
		}
		for _, r := range string(s) {
			out = append(out, Symbol(r))
		}
	}
	return out
}

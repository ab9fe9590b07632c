// Package earley implements a chart-based Earley recognizer over arbitrary
// context-free grammars: tolerant of ambiguity, left recursion, epsilon
// productions, and cycles (spec §4.F). The chart it produces is the input
// pkg/sppf walks to build a shared-packed parse forest.
//
// The source this was ported from represents each item's provenance with
// deep pointer graphs (predecessor items holding shared_ptrs to each
// other). Here items live in a flat arena and provenance is a pair of
// index sets per item — advancers (predict/scan/nullable-advance) and
// completers (complete) — which removes the ownership cycles while keeping
// the same back-reference information (spec §9).
package earley

import "github.com/tmllang/tml/pkg/grammar"

// itemKey is the four-tuple identity of a chart item (spec §3): set is the
// Earley set (input position) the item belongs to, prod indexes into the
// grammar's production list, from is the position the production started
// at, and dot is how many RHS symbols have been consumed so far.
type itemKey struct {
	set  int
	prod int
	from int
	dot  int
}

// Item is the public view of a chart entry.
type Item struct {
	Set  int
	Prod int
	From int
	Dot  int
}

type itemRecord struct {
	key        itemKey
	advancers  []int
	completers []int
}

// Completion names one way a non-terminal was recognized: production prod
// matched exactly the span [from, to).
type Completion struct {
	To   int
	Prod int
}

type completedKey struct {
	lhs  grammar.Symbol
	from int
}

// Chart is the result of running the recognizer: every item discovered,
// indexed for both provenance queries (advancers/completers) and the SPPF
// builder's "every completed item with this LHS starting here" query.
type Chart struct {
	g     *grammar.Grammar
	input []grammar.Symbol

	items []itemRecord
	index map[itemKey]int
	bySet [][]int

	completed map[completedKey][]Completion
}

// Grammar returns the grammar the chart was built against.
func (c *Chart) Grammar() *grammar.Grammar { return c.g }

// Input returns the token sequence the chart was built against.
func (c *Chart) Input() []grammar.Symbol { return c.input }

// Item returns the public view of item id.
func (c *Chart) Item(id int) Item {
	k := c.items[id].key
	return Item{Set: k.set, Prod: k.prod, From: k.from, Dot: k.dot}
}

// Advancers returns the ids of every item that advanced item id into
// existence via predict, scan, or a nullable-advance (spec §3, §9).
func (c *Chart) Advancers(id int) []int { return c.items[id].advancers }

// Completers returns the ids of every completed item that completed item
// id into existence via the complete step.
func (c *Chart) Completers(id int) []int { return c.items[id].completers }

// ItemsAt returns every item id in Earley set n, in discovery order.
func (c *Chart) ItemsAt(n int) []int { return c.bySet[n] }

// CompletedFrom returns every way lhs was recognized starting at from: one
// Completion per (end, production) pair reachable in the chart. This is
// the direct chart query pkg/sppf's sbl_chd_forest uses (spec §4.G) instead
// of walking completer back-pointers.
func (c *Chart) CompletedFrom(lhs grammar.Symbol, from int) []Completion {
	return c.completed[completedKey{lhs: lhs, from: from}]
}

// Recognized reports whether the chart contains a completed start
// production spanning the whole input (spec §4.F recognition verdict).
func (c *Chart) Recognized() bool {
	n := len(c.input)
	for _, p := range c.g.ProductionsFor(c.g.Start) {
		if _, ok := c.index[itemKey{set: n, prod: p, from: 0, dot: c.g.Productions[p].Len()}]; ok {
			return true
		}
	}
	return false
}

// Recognize runs the recognizer over s, treating each rune as one terminal
// symbol (spec §6 "terminal strings are expanded character by character").
func Recognize(g *grammar.Grammar, s string) *Chart {
	syms := make([]grammar.Symbol, 0, len(s))
	for _, r := range s {
		syms = append(syms, grammar.Symbol(string(r)))
	}
	return RecognizeSymbols(g, syms)
}

// RecognizeSymbols runs the recognizer over an already-tokenized input.
//
// Items are processed off a single worklist regardless of which Earley set
// they belong to; scan, predict, and complete are all idempotent through
// the chart's dedup index, and predict also picks up completions processed
// before the predicting item was added, so the fixpoint reached does not
// depend on processing order (spec §5).
func RecognizeSymbols(g *grammar.Grammar, input []grammar.Symbol) *Chart {
	c := &Chart{
		g:     g,
		input: input,
		index: make(map[itemKey]int),
		bySet: make([][]int, len(input)+1),
	}

	var worklist []int
	for _, p := range g.ProductionsFor(g.Start) {
		c.add(itemKey{set: 0, prod: p, from: 0, dot: 0}, &worklist)
	}

	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		key := c.items[id].key
		prod := g.Productions[key.prod]

		switch {
		case key.dot == prod.Len():
			c.complete(id, &worklist)
		case g.IsNonTerminal(prod.RHS[key.dot]):
			c.predict(id, &worklist)
		default:
			if key.set < len(input) && prod.RHS[key.dot] == input[key.set] {
				c.scan(id, &worklist)
			}
		}
	}

	c.buildCompletedIndex()
	return c
}

// add interns key, enqueueing it for processing if newly seen, and — the
// Aycock–Horspool nullable-advance (spec §4.F) — if the symbol now at the
// dot is nullable, also adds the dot+1 item with key registered as its
// advancer.
func (c *Chart) add(key itemKey, worklist *[]int) int {
	if id, ok := c.index[key]; ok {
		return id
	}
	id := len(c.items)
	c.items = append(c.items, itemRecord{key: key})
	c.index[key] = id
	c.bySet[key.set] = append(c.bySet[key.set], id)
	*worklist = append(*worklist, id)

	if c.dotSymbolNullable(key) {
		next := itemKey{set: key.set, prod: key.prod, from: key.from, dot: key.dot + 1}
		nextID := c.add(next, worklist)
		c.addAdvancer(nextID, id)
	}
	return id
}

func (c *Chart) dotSymbolNullable(key itemKey) bool {
	prod := c.g.Productions[key.prod]
	if key.dot >= prod.Len() {
		return false
	}
	return c.g.IsNullable(prod.RHS[key.dot])
}

// complete implements spec §4.F's Complete step: for the just-completed
// item id, every item in its start set waiting on id's LHS advances.
func (c *Chart) complete(id int, worklist *[]int) {
	key := c.items[id].key
	lhs := c.g.Productions[key.prod].LHS

	waiting := append([]int(nil), c.bySet[key.from]...)
	for _, otherID := range waiting {
		other := c.items[otherID].key
		prod := c.g.Productions[other.prod]
		if other.dot < prod.Len() && prod.RHS[other.dot] == lhs {
			next := itemKey{set: key.set, prod: other.prod, from: other.from, dot: other.dot + 1}
			j := c.add(next, worklist)
			c.addCompleter(j, id)
		}
	}
}

// predict implements spec §4.F's Predict step. It also advances id over
// every a-item already completed from id's set: complete only advances
// items present in the start set when it runs, and with one worklist such
// a completion can be processed before id was added.
func (c *Chart) predict(id int, worklist *[]int) {
	key := c.items[id].key
	a := c.g.Productions[key.prod].RHS[key.dot]
	for _, p := range c.g.ProductionsFor(a) {
		j := c.add(itemKey{set: key.set, prod: p, from: key.set, dot: 0}, worklist)
		c.addAdvancer(j, id)
	}
	for done, n := 0, len(c.items); done < n; done++ {
		dk := c.items[done].key
		dp := c.g.Productions[dk.prod]
		if dk.from == key.set && dk.dot == dp.Len() && dp.LHS == a {
			j := c.add(itemKey{set: dk.set, prod: key.prod, from: key.from, dot: key.dot + 1}, worklist)
			c.addCompleter(j, done)
		}
	}
}

// scan implements spec §4.F's Scan step. The caller (RecognizeSymbols)
// already checked that the symbol at the dot matches the input token.
func (c *Chart) scan(id int, worklist *[]int) {
	key := c.items[id].key
	next := itemKey{set: key.set + 1, prod: key.prod, from: key.from, dot: key.dot + 1}
	j := c.add(next, worklist)
	c.addAdvancer(j, id)
}

func (c *Chart) addAdvancer(id, src int) {
	for _, x := range c.items[id].advancers {
		if x == src {
			return
		}
	}
	c.items[id].advancers = append(c.items[id].advancers, src)
}

func (c *Chart) addCompleter(id, src int) {
	for _, x := range c.items[id].completers {
		if x == src {
			return
		}
	}
	c.items[id].completers = append(c.items[id].completers, src)
}

func (c *Chart) buildCompletedIndex() {
	c.completed = make(map[completedKey][]Completion)
	for _, rec := range c.items {
		prod := c.g.Productions[rec.key.prod]
		if rec.key.dot != prod.Len() {
			continue
		}
		k := completedKey{lhs: prod.LHS, from: rec.key.from}
		c.completed[k] = append(c.completed[k], Completion{To: rec.key.set, Prod: rec.key.prod})
	}
}

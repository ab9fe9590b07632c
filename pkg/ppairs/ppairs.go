// Package ppairs implements a persistent, hash-consed sorted set of
// implication pairs (spec §4.D). A pair (a, b) encodes the 2-literal
// implication a ⇒ b, where a and b are signed literals (same polarity
// encoding as pset). Every inserted pair is normalized so the same logical
// implication always produces the same pair, and its contrapositive
// (¬b ⇒ ¬a) is inserted alongside it explicitly.
package ppairs

// ID identifies one persistent pair-set by hash-consed structural identity.
type ID int

// Empty is the canonical empty pair-set.
const Empty ID = 1

// Bottom mirrors pset's inconsistency sentinel: reserved, never produced
// by this package on its own (pairs don't directly contradict each other
// the way a literal and its negation do), kept for interface symmetry with
// pset and so callers can use one sentinel value across both.
const Bottom ID = 0

type pair struct{ a, b int }

type node struct {
	p    pair
	tail ID
}

// Universe owns the hash-cons table for one family of pair-sets.
type Universe struct {
	nodes []node
	table map[node]ID
}

// New creates an empty universe with the Bottom/Empty sentinels seeded.
func New() *Universe {
	return &Universe{
		nodes: make([]node, 2),
		table: make(map[node]ID),
	}
}

func (u *Universe) add(p pair, tail ID) ID {
	key := node{p: p, tail: tail}
	if id, ok := u.table[key]; ok {
		return id
	}
	id := ID(len(u.nodes))
	u.nodes = append(u.nodes, key)
	u.table[key] = id
	return id
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// less orders pairs by |a| ascending (positive a before negative on a
// tie), then by |b| ascending (positive b before negative on a tie) —
// the same polarity-aware ordering pset uses, extended lexicographically.
func less(x, y pair) bool {
	if abs(x.a) != abs(y.a) {
		return abs(x.a) < abs(y.a)
	}
	if x.a != y.a {
		return x.a > y.a
	}
	if abs(x.b) != abs(y.b) {
		return abs(x.b) < abs(y.b)
	}
	return x.b > y.b
}

func normalize(a, b int) (pair, bool) {
	if a == b || a == -b {
		return pair{}, false // a ⇒ a is trivial; a ⇒ ¬a only meaningful via vars, not here
	}
	return pair{a: a, b: b}, true
}

// Contains reports whether a ⇒ b (exactly, after normalization) is present.
func (u *Universe) Contains(set ID, a, b int) bool {
	p, ok := normalize(a, b)
	if !ok {
		return false
	}
	for cur := set; cur != Empty; cur = u.nodes[cur].tail {
		if u.nodes[cur].p == p {
			return true
		}
		if less(p, u.nodes[cur].p) {
			return false
		}
	}
	return false
}

func (u *Universe) insertSorted(set ID, p pair) ID {
	if set == Empty {
		return u.add(p, Empty)
	}
	head := u.nodes[set].p
	if head == p {
		return set
	}
	if less(p, head) {
		return u.add(p, set)
	}
	tail := u.insertSorted(u.nodes[set].tail, p)
	return u.add(head, tail)
}

// Insert adds a ⇒ b to set along with its contrapositive ¬b ⇒ ¬a (spec
// §3: "Invariant: contrapositive is maintained explicitly alongside").
// Returns set unchanged if a ⇒ b is trivial (a == b or a == ¬b).
func (u *Universe) Insert(set ID, a, b int) ID {
	p, ok := normalize(a, b)
	if !ok {
		return set
	}
	set = u.insertSorted(set, p)
	contra, ok := normalize(-b, -a)
	if ok {
		set = u.insertSorted(set, contra)
	}
	return set
}

// Remove deletes a ⇒ b (and its contrapositive) from set.
func (u *Universe) Remove(set ID, a, b int) ID {
	p, ok := normalize(a, b)
	if !ok {
		return set
	}
	set = u.removeOne(set, p)
	if contra, ok := normalize(-b, -a); ok {
		set = u.removeOne(set, contra)
	}
	return set
}

func (u *Universe) removeOne(set ID, p pair) ID {
	if set == Empty {
		return Empty
	}
	head := u.nodes[set].p
	tail := u.nodes[set].tail
	if head == p {
		return tail
	}
	if less(p, head) {
		return set
	}
	newTail := u.removeOne(tail, p)
	if newTail == tail {
		return set
	}
	return u.add(head, newTail)
}

// Members materializes set as (a,b) pairs in canonical order.
func (u *Universe) Members(set ID) [][2]int {
	out := [][2]int{}
	for cur := set; cur != Empty; cur = u.nodes[cur].tail {
		out = append(out, [2]int{u.nodes[cur].p.a, u.nodes[cur].p.b})
	}
	return out
}

// Implies propagates the unit literal e through set (spec §4.D): every
// pair (e, b) is removed and b collected as a consequent; if del is true,
// every pair whose right-hand side is ¬e is also removed (since e being
// true falsifies anything that only followed from ¬e holding as an
// antecedent on the left — del controls whether the caller wants that
// extra pruning, e.g. once ¬e is known false outright). No other pair is
// dropped: a pair (a, e) whose consequent e now holds, and its
// contrapositive (¬e, ¬a), stay in the set. Returns the new
// set and the literals that must be fed back into the unit-literal store
// (pset) as newly implied.
func (u *Universe) Implies(set ID, e int, del bool) (ID, []int) {
	consequents := []int{}
	out := set
	var walk func(ID) ID
	walk = func(s ID) ID {
		if s == Empty {
			return Empty
		}
		n := u.nodes[s]
		rest := walk(n.tail)
		if n.p.a == e {
			consequents = append(consequents, n.p.b)
			return rest
		}
		if del && n.p.b == -e {
			return rest
		}
		if rest == n.tail {
			return s
		}
		return u.add(n.p, rest)
	}
	out = walk(out)
	return out, consequents
}

// AllImplies computes the transitive closure of Implies seeded at e: every
// literal reachable by repeatedly firing newly-derived unit literals
// through set is collected, and set has every pair consumed in the
// process removed (spec §4.D `all_implies`).
func (u *Universe) AllImplies(set ID, e int, del bool) (ID, []int) {
	seen := map[int]bool{e: true}
	queue := []int{e}
	out := set
	all := []int{}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		var cons []int
		out, cons = u.Implies(out, cur, del)
		for _, c := range cons {
			if !seen[c] {
				seen[c] = true
				all = append(all, c)
				queue = append(queue, c)
			}
		}
	}
	return out, all
}

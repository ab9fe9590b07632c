// Package pset implements a persistent, hash-consed sorted set of signed
// integers (spec §4.C). A positive v means "variable v asserted true"; a
// negative v means "asserted false". A set is identified by an integer ID;
// structurally identical sets always share the same ID (hash-consing), so
// set equality is ID equality.
//
// ID 0 is reserved as the inconsistency sentinel ⊥: any operation that
// would make v and -v coexist in one set returns 0 instead. ID 1 is the
// canonical empty set.
package pset

// Empty is the identity of the canonical empty set.
const Empty ID = 1

// Bottom is the sentinel identity meaning "inconsistent" (v and -v both
// asserted). Never a valid set to read members from.
const Bottom ID = 0

// ID identifies one persistent set, by hash-consed structural identity.
type ID int

type node struct {
	value int // signed: +v or -v
	tail  ID
}

// Universe owns the hash-cons table shared by every ID it produces. Like
// the other persistent structures in this module it is process-wide
// singleton state (spec §5): identities it hands out are meaningless
// outside the Universe that minted them.
type Universe struct {
	nodes []node       // index i holds the node for ID i; 0 and 1 are sentinels
	table map[node]ID  // structural dedup
}

// New creates an empty universe, pre-seeded with the Bottom and Empty
// sentinels.
func New() *Universe {
	u := &Universe{
		nodes: make([]node, 2),
		table: make(map[node]ID),
	}
	return u
}

// add is the hash-consed node constructor (spec's `add(e, n)`): given a
// value and a tail set, returns the unique ID for value::tail, minting a
// new one only if this exact node hasn't been built before.
func (u *Universe) add(value int, tail ID) ID {
	key := node{value: value, tail: tail}
	if id, ok := u.table[key]; ok {
		return id
	}
	id := ID(len(u.nodes))
	u.nodes = append(u.nodes, key)
	u.table[key] = id
	return id
}

// Empty reports whether set is the empty set.
func (u *Universe) Empty(set ID) bool { return set == Empty }

// Contains reports whether the exact signed literal v is a member of set.
func (u *Universe) Contains(set ID, v int) bool {
	for cur := set; cur != Empty; cur = u.nodes[cur].tail {
		if u.nodes[cur].value == v {
			return true
		}
		if abs(u.nodes[cur].value) > abs(v) {
			return false // sorted by |v| ascending: v can't appear further on
		}
	}
	return false
}

// Find reports whether v (by magnitude) is present in set, and if so with
// which sign.
func (u *Universe) Find(set ID, v int) (present bool, sign int) {
	mag := abs(v)
	for cur := set; cur != Empty; cur = u.nodes[cur].tail {
		val := u.nodes[cur].value
		if abs(val) == mag {
			return true, val
		}
		if abs(val) > mag {
			return false, 0
		}
	}
	return false, 0
}

// Next returns the tail of set (the set with its head element removed),
// per spec's `next(set)`.
func (u *Universe) Next(set ID) ID {
	if set == Empty {
		return Empty
	}
	return u.nodes[set].tail
}

// Head returns the signed head element of set, valid only when set is not
// Empty.
func (u *Universe) Head(set ID) int { return u.nodes[set].value }

// Insert adds v to set, maintaining sort order (|v| ascending, positive
// before negative on ties) and hash-consing. Returns Bottom if v's
// opposite polarity (-v) is already present — the inconsistency sentinel
// spec §4.C and §7 describe. Inserting v a second time is a no-op
// (idempotent at the identity level, spec §8 invariant 4).
func (u *Universe) Insert(set ID, v int) ID {
	present, sign := u.Find(set, v)
	if present {
		if sign == v {
			return set
		}
		return Bottom
	}
	return u.insertSorted(set, v)
}

func (u *Universe) insertSorted(set ID, v int) ID {
	if set == Empty {
		return u.add(v, Empty)
	}
	head := u.nodes[set].value
	if less(v, head) {
		return u.add(v, set)
	}
	tail := u.insertSorted(u.nodes[set].tail, v)
	return u.add(head, tail)
}

// Remove deletes v (exact signed literal) from set if present; otherwise
// returns set unchanged (spec §8 invariant 4: remove(insert(s,e),e) == s
// when e ∉ s).
func (u *Universe) Remove(set ID, v int) ID {
	if set == Empty {
		return Empty
	}
	head := u.nodes[set].value
	tail := u.nodes[set].tail
	if head == v {
		return tail
	}
	if abs(head) > abs(v) {
		return set // v can't be present further on; nothing to remove
	}
	newTail := u.Remove(tail, v)
	if newTail == tail {
		return set
	}
	return u.add(head, newTail)
}

// Members materializes set as a slice of signed literals in canonical
// order, head first. Intended for debugging/tests; the persistent
// structure itself should be walked with Next/Head for O(1) per step.
func (u *Universe) Members(set ID) []int {
	out := []int{}
	for cur := set; cur != Empty; cur = u.nodes[cur].tail {
		out = append(out, u.nodes[cur].value)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// less implements the canonical order: |v| ascending, positive before
// negative on ties.
func less(a, b int) bool {
	am, bm := abs(a), abs(b)
	if am != bm {
		return am < bm
	}
	return a > b
}

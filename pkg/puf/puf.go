// Package puf implements a persistent union-find over the integers
// 1..n, generalized to carry polarity: merging two elements can assert
// either "x equals y" or "x equals not-y", which is what the poset package
// needs to fold equalities like a = ¬b into a single equivalence structure
// instead of two.
//
// Internally this is the classic parity union-find (as used for
// online bipartiteness and 2-coloring checks) rebuilt on top of parray so
// that every merge produces a new, still-readable version. Three parallel
// persistent arrays carry the structure, per spec: parent (path-compressed
// signed parent pointers), link (a circular list per class used to iterate
// members in O(class size)), and hashes (per-root canonical class hash).
package puf

import (
	"github.com/pkg/errors"

	"github.com/tmllang/tml/pkg/parray"
)

// Elem is an unsigned member id in [1, n]. A signed int elsewhere in this
// package (e.g. the x argument to GetEqual or Find) denotes polarity: +v
// is "v", -v is "not v".
type Elem = int

// T is an immutable handle to one version of a persistent union-find. Zero
// value is not valid; obtain one from Make or Universe.Zero.
type T struct {
	parent parray.Version
	link   parray.Version
	hashes parray.Version
	h      uint64
}

// Hash returns the running normal-form hash H described in spec §4.B: two
// T values with the same partition have equal Hash (spec §8 invariant 2).
//
// The stored per-class hash (see classHash) is 0 for a singleton and the
// sum of its members' squares for anything larger; a merge folds two
// classes' *raw* stored hashes (0 for a singleton, never its square) into
// H via XOR, while the replacement class hash it stores is their *effective*
// hashes (square substituted for a raw 0) added together. Because the value
// XORed out (raw, possibly 0) and the value XORed in (effective sum) are
// computed differently, a merge does not cancel itself out the way it would
// if the same combinator were used on both sides.
func (t T) Hash() uint64 { return t.h }

// Universe owns the three backing persistent arrays shared by every T value
// derived from a single Make call. Elements are 1..Size(); index 0 is
// unused. Ownership is process-wide singleton state per spec §5: mutation
// (via Reroot inside parray) is serial and single-threaded.
type Universe struct {
	n      int
	parent *parray.PArray
	link   *parray.PArray
	hashes *parray.PArray
	zero   T
}

// Make allocates a universe of n elements, all singleton classes, and
// returns its initial version.
func Make(n int) (*Universe, T) {
	if n < 0 {
		panic(errors.Errorf("puf: negative size %d", n))
	}
	u := &Universe{
		n:      n,
		parent: parray.New(n + 1),
		link:   parray.New(n + 1),
		hashes: parray.New(n + 1),
	}
	pv, lv, hv := parray.Version(0), parray.Version(0), parray.Version(0)
	for i := 1; i <= n; i++ {
		lv = u.link.Set(lv, i, int64(i)) // self-loop: singleton ring
	}
	u.zero = T{parent: pv, link: lv, hashes: hv, h: initialHash(n)}
	return u, u.zero
}

// Zero returns u's own all-singletons T, the same value Make originally
// returned. Resetting a T to "no equalities" must go through this rather
// than a fresh call to Make: a T minted by a different Universe carries
// parray.Version numbers into its own private backing arrays, which are
// meaningless (or, worse, coincidentally valid but wrong) against u's.
func (u *Universe) Zero() T { return u.zero }

// initialHash is the baseline H for n singletons: 0, since every class's
// raw stored hash starts at the singleton sentinel and singletons never
// contribute their square to H directly — only a merge folds a square in,
// via classHash's effective-value substitution.
func initialHash(int) uint64 { return 0 }

// Size reports the number of elements the universe was created with.
func (u *Universe) Size() int { return u.n }

// Resize grows the universe in place; only the current-root version of
// each backing array may be resized (parray.Resize's rule). Returns false
// (a capacity error per spec §7) if newSize is not larger than the current
// size, or if t is not the current root of all three arrays.
func (u *Universe) Resize(t T, newSize int) bool {
	if newSize <= u.n {
		return false
	}
	if !u.parent.Resize(t.parent, newSize) {
		return false
	}
	if !u.link.Resize(t.link, newSize) {
		return false
	}
	if !u.hashes.Resize(t.hashes, newSize) {
		return false
	}
	for i := u.n + 1; i <= newSize; i++ {
		t.link = u.link.Set(t.link, i, int64(i))
	}
	u.n = newSize
	return true
}

func (u *Universe) checkElem(x Elem) {
	m := x
	if m < 0 {
		m = -m
	}
	if m < 1 || m > u.n {
		panic(errors.Errorf("puf: element %d out of range [1,%d]", x, u.n))
	}
}

// find walks the signed parent chain from x (read only) and returns the
// class root together with whether x is negated relative to that root.
func (u *Universe) find(t T, x Elem) (root Elem, negated bool) {
	cur := x
	for {
		pv := u.parent.Get(t.parent, cur)
		if pv == 0 {
			return cur, negated
		}
		p := int(pv)
		if p < 0 {
			negated = !negated
			p = -p
		}
		cur = p
	}
}

// Find returns the representative of x's class and whether x carries
// negated polarity relative to that representative, without compressing
// the path. Equivalent to spec's `find(t, x)` generalized with polarity.
func (u *Universe) Find(t T, x Elem) (root Elem, negated bool) {
	u.checkElem(x)
	mag := x
	if mag < 0 {
		mag = -mag
	}
	root, neg := u.find(t, mag)
	if x < 0 {
		neg = !neg
	}
	return root, neg
}

// findCompress is find with path compression: every node on the walked
// path gets its parent pointer rewritten to point straight at the root,
// carrying the correctly accumulated parity. Each rewrite is a parray.Set,
// so compression is itself persistent and observable in the returned T,
// per spec §4.B.
func (u *Universe) findCompress(t T, x Elem) (root Elem, negated bool, out T) {
	out = t
	// First pass: discover the root and per-node cumulative parity.
	type step struct {
		node   Elem
		parity bool
	}
	path := []step{}
	cur := x
	acc := false
	for {
		pv := u.parent.Get(out.parent, cur)
		if pv == 0 {
			root = cur
			break
		}
		p := int(pv)
		if p < 0 {
			acc = !acc
			p = -p
		}
		path = append(path, step{node: cur, parity: acc})
		cur = p
	}
	negated = acc
	for _, s := range path {
		signed := int64(root)
		if s.parity {
			signed = -signed
		}
		out.parent = u.parent.Set(out.parent, s.node, signed)
	}
	return root, negated, out
}

// FindCompress is the persistent-path-compression variant of Find; it
// returns the new version alongside the answer.
func (u *Universe) FindCompress(t T, x Elem) (root Elem, negated bool, out T) {
	u.checkElem(x)
	mag := x
	if mag < 0 {
		mag = -mag
	}
	root, neg, out := u.findCompress(t, mag)
	if x < 0 {
		neg = !neg
	}
	return root, neg, out
}

// rawHash returns root's stored hash entry: 0 for a singleton (the
// sentinel), or the accumulated sum-of-squares for a non-singleton class.
func (u *Universe) rawHash(t T, root Elem) uint64 {
	return uint64(u.hashes.Get(t.hashes, root))
}

// effectiveHash substitutes root*root for a raw 0 (singleton), matching
// hash_set's "a singleton set still has hash 0, but is hashed to its
// square" rule (spec §9 PUF hash formula note).
func effectiveHash(raw uint64, root Elem) uint64 {
	if raw == 0 {
		return uint64(root) * uint64(root)
	}
	return raw
}

// classHash is effectiveHash for root's current class.
func (u *Universe) classHash(t T, root Elem) uint64 {
	return effectiveHash(u.rawHash(t, root), root)
}

// Equal reports whether x and y are related, and if so, whether they hold
// the same polarity (true) or opposite polarity (false is returned as the
// second value only when related; check `related` first).
func (u *Universe) Equal(t T, x, y Elem) (related bool, samePolarity bool) {
	rx, nx := u.Find(t, x)
	ry, ny := u.Find(t, y)
	if rx != ry {
		return false, false
	}
	return true, nx == ny
}

// Merge asserts x ≡ y (negate=false) or x ≡ ¬y (negate=true), returning the
// new version and whether the assertion is consistent with what the
// structure already knew. When x and y are already related, no structural
// change occurs; ok reports whether the existing relation agrees with the
// requested one (a mismatch is a contradiction the caller — typically the
// poset layer honoring invariant I1 — must propagate as ⊥). No operation
// here panics on a mismatch: PUF itself never fails (spec §4.B).
func (u *Universe) Merge(t T, x, y Elem, negate bool) (out T, ok bool) {
	u.checkElem(x)
	u.checkElem(y)
	rx, nx, t1 := u.findCompress(t, x)
	ry, ny, t2 := u.findCompress(t1, y)
	if rx == ry {
		wantSame := !negate
		haveSame := nx == ny
		return t2, wantSame == haveSame
	}

	// relParity is the polarity loser must carry relative to winner so
	// that x ≡ y XOR negate continues to hold after the union.
	relParity := xor3(nx, ny, negate)

	winner, loser := rx, ry
	if loser < winner {
		winner, loser = ry, rx
	}

	// hash_set: fold the two classes' *effective* hashes (square
	// substituted for a singleton's raw 0) by addition; the running total
	// H folds in the two classes' *raw* hashes by XOR. Using addition for
	// one side and XOR for the other is what keeps a merge from folding
	// straight back to its starting H (spec §9).
	hxRaw := u.rawHash(t2, rx)
	hyRaw := u.rawHash(t2, ry)
	newHash := effectiveHash(hxRaw, rx) + effectiveHash(hyRaw, ry)

	signed := int64(winner)
	if relParity {
		signed = -signed
	}
	t2.parent = u.parent.Set(t2.parent, loser, signed)

	// splice the two circular class rings by swapping their next pointers
	// at the (pre-union) roots.
	rxNext := u.link.Get(t2.link, rx)
	ryNext := u.link.Get(t2.link, ry)
	t2.link = u.link.Set(t2.link, rx, ryNext)
	t2.link = u.link.Set(t2.link, ry, rxNext)

	t2.hashes = u.hashes.Set(t2.hashes, winner, int64(newHash))
	t2.h = t2.h ^ hxRaw ^ hyRaw ^ newHash

	return t2, true
}

func xor3(a, b, c bool) bool { return (a != b) != c }

// litLess orders signed literals by |v| ascending, positive before negative
// on ties — the canonical member order spec §4.B's MergeSort requires so
// that class members can be chained into merge calls deterministically
// during equality lifting (spec §4.E step 3).
func litLess(a, b int) bool {
	am, bm := a, b
	if am < 0 {
		am = -am
	}
	if bm < 0 {
		bm = -bm
	}
	if am != bm {
		return am < bm
	}
	return a > b // positive (larger signed value) sorts first on a tie
}

// MergeSortClass returns the members of x's class as a stable,
// bottom-up-merge-sorted slice of signed literals (ordering per litLess),
// and reorders the class's link ring to match — without touching the
// parent array, per spec §4.B. The returned T only has its link version
// advanced.
func (u *Universe) MergeSortClass(t T, x Elem) ([]int, T) {
	it := u.GetEqual(t, x)
	members := []int{}
	for it.Next() {
		members = append(members, it.Value())
	}
	sorted := mergeSortSignedStable(members)

	out := t
	mags := make([]int, len(sorted))
	for i, v := range sorted {
		m := v
		if m < 0 {
			m = -m
		}
		mags[i] = m
	}
	if len(mags) == 1 {
		out.link = u.link.Set(out.link, mags[0], int64(mags[0]))
		return sorted, out
	}
	for i := range mags {
		next := mags[(i+1)%len(mags)]
		out.link = u.link.Set(out.link, mags[i], int64(next))
	}
	return sorted, out
}

// mergeSortSignedStable is a bottom-up (iterative) merge sort: stable,
// O(n log n), used instead of a recursive top-down sort so the algorithm
// matches spec §4.B's "bottom-up merge sort" description exactly.
func mergeSortSignedStable(xs []int) []int {
	n := len(xs)
	if n < 2 {
		out := make([]int, n)
		copy(out, xs)
		return out
	}
	src := make([]int, n)
	copy(src, xs)
	dst := make([]int, n)
	for width := 1; width < n; width *= 2 {
		for lo := 0; lo < n; lo += 2 * width {
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			i, j, k := lo, mid, lo
			for i < mid && j < hi {
				if litLess(src[j], src[i]) {
					dst[k] = src[j]
					j++
				} else {
					dst[k] = src[i]
					i++
				}
				k++
			}
			for i < mid {
				dst[k] = src[i]
				i++
				k++
			}
			for j < hi {
				dst[k] = src[j]
				j++
				k++
			}
		}
		src, dst = dst, src
	}
	return src
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Intersect computes the partition whose classes are the pairwise
// intersections of t1's and t2's classes (spec §4.B, §8 invariant 3):
// equal(intersect(t1,t2), x, y) holds iff equal(t1,x,y) and equal(t2,x,y).
func (u *Universe) Intersect(t1, t2 T) T {
	out := u.Zero()
	seen := make([]bool, u.n+1)
	for x := 1; x <= u.n; x++ {
		if seen[x] {
			continue
		}
		it := u.GetEqual(t1, x)
		bucket := map[Elem][]int{} // r2 -> list of signed literals relative to x in t1
		for it.Next() {
			m := it.Value()
			mag := m
			if mag < 0 {
				mag = -mag
			}
			r2, n2 := u.Find(t2, mag)
			key := r2
			lit := mag
			if n2 {
				lit = -lit
			}
			bucket[key] = append(bucket[key], lit)
			seen[mag] = true
		}
		for _, members := range bucket {
			if len(members) < 2 {
				continue
			}
			base := members[0]
			for _, m := range members[1:] {
				mm := m
				neg := mm < 0
				if neg {
					mm = -mm
				}
				bb := base
				bneg := bb < 0
				if bneg {
					bb = -bb
				}
				out, _ = u.Merge(out, bb, mm, bneg != neg)
			}
		}
	}
	return out
}

// Iterator walks the members of x's equivalence class in O(class size),
// yielding each member as a signed literal expressing its polarity
// relative to the literal x it was constructed with (spec §4.B: "the
// iterator carries a negate bit ... so that iterating over signed
// elements preserves their original polarity").
type Iterator struct {
	u        *Universe
	t        T
	start    Elem
	queryNeg bool
	root     Elem
	cur      Elem
	looped   bool
	first    bool
}

// GetEqual returns an iterator over every element related to x (x itself
// included), each reported with its polarity relative to x.
func (u *Universe) GetEqual(t T, x Elem) *Iterator {
	u.checkElem(x)
	mag := x
	qneg := x < 0
	if qneg {
		mag = -mag
	}
	root, xneg := u.find(t, mag)
	// queryNeg is the query literal's polarity relative to the root, so that
	// Value reports each member relative to x rather than to the root.
	return &Iterator{u: u, t: t, start: mag, queryNeg: qneg != xneg, root: root, cur: mag, first: true}
}

// Next advances the iterator. It returns false once the ring has been
// walked back to its starting point.
func (it *Iterator) Next() bool {
	if it.looped {
		return false
	}
	if it.first {
		it.first = false
		return true
	}
	nxt := int(it.u.link.Get(it.t.link, it.cur))
	if nxt == it.start {
		it.looped = true
		return false
	}
	it.cur = nxt
	return true
}

// Value returns the current member as a signed literal, negated relative
// to the iterator's query literal exactly when its class-relative polarity
// differs from the query's.
func (it *Iterator) Value() int {
	_, memberNeg := it.u.find(it.t, it.cur)
	rel := memberNeg != it.queryNeg
	if rel {
		return -it.cur
	}
	return it.cur
}

// RmEqual splits x out of its class into a fresh singleton {x}, leaving
// the rest of the old class as one class (spec §4.B `rm_equal`). The new
// singleton's stored hash is reset to the 0 sentinel, and the rest class's
// hash is derived from the old class hash by subtracting x's square (see
// below); parent and link entries are rebuilt in one pass over the class.
func (u *Universe) RmEqual(t T, x Elem) T {
	u.checkElem(x)
	mag := x
	if mag < 0 {
		mag = -mag
	}
	root, _ := u.find(t, mag)
	if int(u.link.Get(t.link, root)) == root {
		return t // already a singleton
	}

	members := []int{}
	memberNeg := map[int]bool{}
	it := u.GetEqual(t, root)
	for it.Next() {
		v := it.Value()
		m := v
		neg := m < 0
		if neg {
			m = -m
		}
		members = append(members, m)
		memberNeg[m] = neg
	}

	rest := make([]int, 0, len(members)-1)
	for _, m := range members {
		if m != mag {
			rest = append(rest, m)
		}
	}

	out := t
	// oldRaw is the class's raw stored hash before the split. Every class
	// of 2+ members has oldRaw == sum of the members' squares exactly (a
	// merge's stored hash is always built by adding effective hashes,
	// which telescopes to that sum regardless of merge order), so the
	// rest class's hash after removing mag is a plain subtraction rather
	// than a rescan of its members.
	oldRaw := u.rawHash(out, root)

	// Detach mag: make it a fresh singleton.
	out.parent = u.parent.Set(out.parent, mag, 0)
	out.link = u.link.Set(out.link, mag, int64(mag))
	out.hashes = u.hashes.Set(out.hashes, mag, 0)

	if len(rest) == 0 {
		out.hashes = u.hashes.Set(out.hashes, root, 0)
		out.h = out.h ^ oldRaw
		return out
	}

	newRoot := rest[0]
	for _, m := range rest {
		out.parent = u.parent.Set(out.parent, m, 0)
	}
	for _, m := range rest {
		sign := memberNeg[m] != memberNeg[newRoot]
		if m != newRoot {
			signed := int64(newRoot)
			if sign {
				signed = -signed
			}
			out.parent = u.parent.Set(out.parent, m, signed)
		}
	}
	for i := 0; i < len(rest); i++ {
		nextIdx := (i + 1) % len(rest)
		out.link = u.link.Set(out.link, rest[i], int64(rest[nextIdx]))
	}

	restRaw := oldRaw - uint64(mag)*uint64(mag)
	if len(rest) == 1 {
		restRaw = 0 // singleton sentinel, per the raw/effective convention
	}
	out.hashes = u.hashes.Set(out.hashes, newRoot, int64(restRaw))
	out.h = out.h ^ oldRaw ^ restRaw
	return out
}

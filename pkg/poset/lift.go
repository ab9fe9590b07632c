package poset

import "sync"

// ScratchPool pools the []bool "visited" scratch buffer liftEqs allocates
// per call. The original's lift_eqs reuses module-level scratch arrays
// across sibling lift calls for throughput; spec §9's open question
// resolves the default (Lift) to a safe per-call allocation instead, but a
// caller that knows its Lift calls are sequential (never nested,
// never concurrent) can opt into the original's reuse behavior explicitly
// via LiftPooled.
type ScratchPool struct {
	pool sync.Pool
}

// NewScratchPool creates an empty scratch pool.
func NewScratchPool() *ScratchPool {
	return &ScratchPool{}
}

func (s *ScratchPool) get(n int) []bool {
	if v := s.pool.Get(); v != nil {
		buf := v.([]bool)
		if cap(buf) >= n {
			buf = buf[:n]
			for i := range buf {
				buf[i] = false
			}
			return buf
		}
	}
	return make([]bool, n)
}

func (s *ScratchPool) put(buf []bool) {
	s.pool.Put(buf) //nolint:staticcheck // sync.Pool wants the slice header boxed
}

// LiftPooled is Lift, but liftEqs draws its visited-set scratch buffer from
// pool instead of allocating fresh each call. The caller is responsible for
// never sharing pool across concurrent or nested Lift calls — that
// invariant is exactly what Lift's default (unpooled) behavior avoids
// needing to document.
func (u *Universe) LiftPooled(pool *ScratchPool, v int, hi, lo P) P {
	return u.lift(pool, v, hi, lo)
}

// Lift computes the poset that holds above a BDD node testing variable v,
// given the posets that hold in its high (v=true) and low (v=false)
// branches (spec §4.E). This is the core symbolic operation consumers in
// the BDD layer call bottom-up while normalizing a diagram.
func (u *Universe) Lift(v int, hi, lo P) P {
	return u.lift(nil, v, hi, lo)
}

func (u *Universe) lift(pool *ScratchPool, v int, hi, lo P) P {
	if hi.bottom && lo.bottom {
		return Bottom
	}
	if hi.bottom {
		return u.InsertVar(lo, -v)
	}
	if lo.bottom {
		return u.InsertVar(hi, v)
	}

	parent := u.Empty()
	parent.v = maxInt(hi.v, lo.v, abs(v)+1)

	parent = u.liftVars(parent, v, hi, lo)
	if parent.bottom {
		return Bottom
	}
	parent = u.liftImps(parent, v, hi, lo)
	if parent.bottom {
		return Bottom
	}
	parent = u.liftEqs(pool, parent, v, hi, lo)
	if parent.bottom {
		return Bottom
	}

	if u.onlyVars(parent) {
		parent.pure = true
	} else {
		parent.pure = hi.pure && lo.pure && u.onlyVars(parent)
	}
	return u.canonicalize(u.enforceInvariants(parent))
}

// liftVars implements spec §4.E step 1: a literal common to both branches
// with the same polarity is promoted unconditionally; a literal present in
// only one branch induces a direct implication guarded by v (or ¬v).
func (u *Universe) liftVars(parent P, v int, hi, lo P) P {
	hiVars := u.Vars.Members(hi.vars)
	loVars := u.Vars.Members(lo.vars)
	hiSet := toSet(hiVars)
	loSet := toSet(loVars)

	for _, x := range hiVars {
		switch {
		case loSet[x]:
			parent = u.InsertVar(parent, x)
		case loSet[-x]:
			parent = u.InsertImp(parent, v, x)
			parent = u.InsertImp(parent, -v, -x)
		default:
			parent = u.InsertImp(parent, v, x)
		}
		if parent.bottom {
			return Bottom
		}
	}
	for _, x := range loVars {
		if hiSet[x] || hiSet[-x] {
			continue // already handled from the hi side above
		}
		parent = u.InsertImp(parent, -v, x)
		if parent.bottom {
			return Bottom
		}
	}
	return parent
}

// liftImps implements spec §4.E step 2: an implication asserted by both
// branches is promoted as-is; one asserted by only one branch becomes a
// guarded implication (v ∧ a) ⇒ b, encoded via a fresh auxiliary variable
// aux with aux ⇒ v(or ¬v), aux ⇒ a, aux ⇒ b. This is a deliberately
// conservative (sound but not complete) encoding: it records that aux
// witnesses the conjunction without deriving aux back from v ∧ a, since
// the underlying PP structure only carries 2-literal implications. See
// DESIGN.md for the reasoning.
func (u *Universe) liftImps(parent P, v int, hi, lo P) P {
	hiPairs := u.Imps.Members(hi.imps)
	loPairs := u.Imps.Members(lo.imps)
	hiSet := toPairSet(hiPairs)
	loSet := toPairSet(loPairs)

	for _, pr := range hiPairs {
		a, b := pr[0], pr[1]
		if loSet[pr] {
			parent = u.InsertImp(parent, a, b)
		} else {
			parent = u.guardedImp(parent, v, a, b)
		}
		if parent.bottom {
			return Bottom
		}
	}
	for _, pr := range loPairs {
		if hiSet[pr] {
			continue
		}
		parent = u.guardedImp(parent, -v, pr[0], pr[1])
		if parent.bottom {
			return Bottom
		}
	}
	return parent
}

// liftEqs implements spec §4.E step 3: equalities common to both branches
// are unioned into the parent's PUF via mergesorted class members (so the
// resulting hash depends only on the final partition, not merge order);
// equalities present on only one side become guarded implication pairs in
// both directions, via the same aux-variable encoding liftImps uses.
//
// Each unvisited x is compared only through its first other member in each
// branch's sorted class, and every member of x's hi class is then marked
// visited. So in a hi-branch class of three or more members, only the
// equality between its smallest member and the next one is lifted; the
// other members of that class contribute nothing.
func (u *Universe) liftEqs(pool *ScratchPool, parent P, v int, hi, lo P) P {
	n := u.Eqs.Size()
	var visited []bool
	if pool != nil {
		visited = pool.get(n + 1)
		defer pool.put(visited)
	} else {
		visited = make([]bool, n+1)
	}
	for x := 1; x <= n; x++ {
		if visited[x] {
			continue
		}
		visited[x] = true

		// Find x's partner in each branch directly, rather than asking
		// whether x is its class's Find-root: puf.Merge always elects the
		// smallest member as root, so on a class's first (smallest) member
		// that comparison is vacuously "unrelated" even though the class
		// itself is nontrivial.
		sortedHi, _ := u.Eqs.MergeSortClass(hi.eqs, x)
		sortedLo, _ := u.Eqs.MergeSortClass(lo.eqs, x)
		hiPartner, hiNeg := firstOtherMember(sortedHi, x)
		loPartner, loNeg := firstOtherMember(sortedLo, x)
		hiRelated := hiPartner != 0
		loRelated := loPartner != 0
		for _, lit := range sortedHi {
			mag := lit
			if mag < 0 {
				mag = -mag
			}
			if mag != x {
				visited[mag] = true
			}
		}

		switch {
		case hiRelated && loRelated && hiPartner == loPartner:
			// Same partner, possibly different relative polarity: hiNeg/
			// loNeg are both computed relative to x, so directly comparable.
			if hiNeg == loNeg {
				parent = u.mergeSorted(parent, x, hiPartner, hiNeg)
			} else {
				parent = u.guardedEq(parent, v, x, hiPartner, hiNeg)
				parent = u.guardedEq(parent, -v, x, loPartner, loNeg)
			}
		case hiRelated:
			parent = u.guardedEq(parent, v, x, hiPartner, hiNeg)
		case loRelated:
			parent = u.guardedEq(parent, -v, x, loPartner, loNeg)
		}
		if parent.bottom {
			return Bottom
		}
	}
	return parent
}

// firstOtherMember picks x's partner (and its polarity relative to x, in
// the same sense Find's negated return uses) out of x's own mergesorted
// equality class, or reports no partner if x is alone in it.
func firstOtherMember(sorted []int, x int) (partner int, negate bool) {
	for _, lit := range sorted {
		mag := lit
		if mag < 0 {
			mag = -mag
		}
		if mag == x {
			continue
		}
		return mag, lit < 0
	}
	return 0, false
}

// mergeSorted merges x and partner into parent's eqs with the given
// relative polarity, per spec's "class members are mergesorted before
// chaining merge calls so the final hash is a function of the partition
// alone".
func (u *Universe) mergeSorted(parent P, x, partner int, negate bool) P {
	a, b := x, partner
	if a > b {
		a, b = b, a
	}
	newEqs, ok := u.Eqs.Merge(parent.eqs, a, b, negate)
	if !ok {
		return Bottom
	}
	parent.eqs = newEqs
	return parent
}

func (u *Universe) guardedEq(parent P, guard, x, partner int, negate bool) P {
	b := partner
	if negate {
		b = -partner
	}
	parent = u.guardedImp(parent, guard, x, b)
	if parent.bottom {
		return Bottom
	}
	return u.guardedImp(parent, guard, b, x)
}

func (u *Universe) guardedImp(parent P, guard, a, b int) P {
	aux := parent.v
	parent.v = aux + 1
	parent = u.InsertImp(parent, aux, guard)
	if parent.bottom {
		return Bottom
	}
	parent = u.InsertImp(parent, aux, a)
	if parent.bottom {
		return Bottom
	}
	return u.InsertImp(parent, aux, b)
}

func toSet(xs []int) map[int]bool {
	m := make(map[int]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}

func toPairSet(xs [][2]int) map[[2]int]bool {
	m := make(map[[2]int]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}

func maxInt(xs ...int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

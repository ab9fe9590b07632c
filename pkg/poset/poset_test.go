package poset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// summary is a cmp-friendly view of a P's content, used where a test wants
// to see exactly which field diverged instead of just a boolean Equal.
type summary struct {
	Vars []int
	Imps [][2]int
}

func summarize(u *Universe, p P) summary {
	return summary{Vars: u.Vars.Members(p.vars), Imps: u.Imps.Members(p.imps)}
}

// E5: poset {a=b, a⇒c} evaluated at a=true yields {b=true, c=true}.
func TestEvalE5(t *testing.T) {
	u := NewUniverse(10)
	p := u.Empty()
	p = u.InsertEq(p, 1, 2)  // a(1) = b(2)
	p = u.InsertImp(p, 1, 3) // a(1) => c(3)
	require.False(t, p.IsBottom())

	out := u.Eval(p, 1) // a = true
	require.False(t, out.IsBottom())

	present, sign := u.Vars.Find(out.vars, 2)
	require.True(t, present)
	require.Equal(t, 2, sign, "b must be true")

	present, sign = u.Vars.Find(out.vars, 3)
	require.True(t, present)
	require.Equal(t, 3, sign, "c must be true")
}

// E6: inserting both +v and -v into a PS-backed poset var set yields ⊥.
func TestInsertBothPolaritiesIsBottomE6(t *testing.T) {
	u := NewUniverse(5)
	p := u.Empty()
	p = u.InsertVar(p, 1)
	require.False(t, p.IsBottom())
	p = u.InsertVar(p, -1)
	require.True(t, p.IsBottom())
}

func TestEvalContradictsExistingVar(t *testing.T) {
	u := NewUniverse(5)
	p := u.Empty()
	p = u.InsertVar(p, -1) // a is false
	out := u.Eval(p, 1)    // assume a true: contradiction
	require.True(t, out.IsBottom())
}

func TestCanonicalizationSamePathsEqual(t *testing.T) {
	u := NewUniverse(10)
	p1 := u.Empty()
	p1 = u.InsertEq(p1, 1, 2)
	p1 = u.InsertVar(p1, 3)

	p2 := u.Empty()
	p2 = u.InsertVar(p2, 3)
	p2 = u.InsertEq(p2, 2, 1)

	require.True(t, p1.Equal(p2), "same conjunction via different construction order must compare equal")

	if diff := cmp.Diff(summarize(u, p1), summarize(u, p2)); diff != "" {
		t.Errorf("canonicalized posets diverge on vars/imps despite Equal (-p1 +p2):\n%s", diff)
	}
}

func TestLiftPromotesCommonVar(t *testing.T) {
	u := NewUniverse(20)
	hi := u.InsertVar(u.Empty(), 5)
	lo := u.InsertVar(u.Empty(), 5)
	parent := u.Lift(1, hi, lo)
	require.False(t, parent.IsBottom())
	present, sign := u.Vars.Find(parent.vars, 5)
	require.True(t, present)
	require.Equal(t, 5, sign)
}

func TestLiftOneSidedVarBecomesImplication(t *testing.T) {
	u := NewUniverse(20)
	hi := u.InsertVar(u.Empty(), 5)
	lo := u.Empty()
	parent := u.Lift(1, hi, lo)
	require.False(t, parent.IsBottom())
	require.True(t, u.Imps.Contains(parent.imps, 1, 5), "v=>5 must be recorded")
}

func TestLiftBothBottomIsBottom(t *testing.T) {
	u := NewUniverse(10)
	parent := u.Lift(1, Bottom, Bottom)
	require.True(t, parent.IsBottom())
}

func TestLiftOneBranchBottomAssertsOtherPolarity(t *testing.T) {
	u := NewUniverse(10)
	lo := u.InsertVar(u.Empty(), 3)
	parent := u.Lift(1, Bottom, lo)
	require.False(t, parent.IsBottom())
	present, sign := u.Vars.Find(parent.vars, 1)
	require.True(t, present)
	require.Equal(t, -1, sign, "hi branch impossible => v must be false")
}

func TestLiftPromotesCommonEquality(t *testing.T) {
	u := NewUniverse(20)
	hi := u.InsertEq(u.Empty(), 5, 6)
	lo := u.InsertEq(u.Empty(), 5, 6)
	parent := u.Lift(1, hi, lo)
	require.False(t, parent.IsBottom())
	related, same := u.Eqs.Equal(parent.eqs, 5, 6)
	require.True(t, related)
	require.True(t, same)
}

func TestLiftPooledMatchesUnpooledResult(t *testing.T) {
	u := NewUniverse(20)
	hi := u.InsertEq(u.Empty(), 5, 6)
	lo := u.InsertEq(u.Empty(), 5, 6)

	unpooled := u.Lift(1, hi, lo)

	pool := NewScratchPool()
	pooled := u.LiftPooled(pool, 1, hi, lo)
	pooledAgain := u.LiftPooled(pool, 1, hi, lo)

	require.True(t, unpooled.Equal(pooled))
	require.True(t, unpooled.Equal(pooledAgain))
}

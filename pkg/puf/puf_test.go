package puf

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// classesOf reports t's partition as a sorted list of sorted signed-literal
// classes, so two partitions built via different merge orders can be
// compared structurally with cmp.Diff instead of just by their hash.
func classesOf(u *Universe, t T) [][]int {
	seen := make([]bool, u.n+1)
	var classes [][]int
	for x := 1; x <= u.n; x++ {
		if seen[x] {
			continue
		}
		it := u.GetEqual(t, x)
		var class []int
		for it.Next() {
			class = append(class, it.Value())
		}
		sort.Ints(class)
		for _, lit := range class {
			mag := lit
			if mag < 0 {
				mag = -mag
			}
			seen[mag] = true
		}
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i][0] < classes[j][0] })
	return classes
}

func TestMergeAndEqual(t *testing.T) {
	u, t0 := Make(5)
	t1, ok := u.Merge(t0, 1, 2, false)
	require.True(t, ok)
	related, same := u.Equal(t1, 1, 2)
	require.True(t, related)
	require.True(t, same)
}

func TestMergeNegatedPolarity(t *testing.T) {
	u, t0 := Make(5)
	t1, ok := u.Merge(t0, 1, 2, true) // 1 == ¬2
	require.True(t, ok)
	related, same := u.Equal(t1, 1, 2)
	require.True(t, related)
	require.False(t, same)
}

func TestMergeTransitivePolarity(t *testing.T) {
	u, t0 := Make(5)
	t1, _ := u.Merge(t0, 1, 2, true)  // 1 = ¬2
	t2, _ := u.Merge(t1, 2, 3, true)  // 2 = ¬3  => 1 = 3
	related, same := u.Equal(t2, 1, 3)
	require.True(t, related)
	require.True(t, same)
}

func TestMergeDetectsContradiction(t *testing.T) {
	u, t0 := Make(5)
	t1, _ := u.Merge(t0, 1, 2, false) // 1 = 2
	_, ok := u.Merge(t1, 1, 2, true)  // now asserting 1 = ¬2: contradiction
	require.False(t, ok)
}

// spec §8 invariant 2 / E4: independent merge sequences producing the same
// partition must yield equal hashes.
func TestNormalFormHashE4(t *testing.T) {
	u1, a0 := Make(5)
	a1, _ := u1.Merge(a0, 0+1, 1+1, false) // merge(0,1)
	a2, _ := u1.Merge(a1, 2+1, 3+1, false) // merge(2,3)
	a3, _ := u1.Merge(a2, 1+1, 2+1, false) // merge(1,2)

	u2, b0 := Make(5)
	b1, _ := u2.Merge(b0, 3+1, 2+1, false) // merge(3,2)
	b2, _ := u2.Merge(b1, 0+1, 1+1, false) // merge(0,1)
	b3, _ := u2.Merge(b2, 1+1, 3+1, false) // merge(1,3)

	require.Equal(t, a3.Hash(), b3.Hash())

	if diff := cmp.Diff(classesOf(u1, a3), classesOf(u2, b3)); diff != "" {
		t.Errorf("partitions differ despite equal hashes (-a3 +b3):\n%s", diff)
	}
}

func TestIntersect(t *testing.T) {
	u, t0 := Make(6)
	// t1: {1,2,3} {4,5,6}
	t1, _ := u.Merge(t0, 1, 2, false)
	t1, _ = u.Merge(t1, 2, 3, false)
	t1, _ = u.Merge(t1, 4, 5, false)
	t1, _ = u.Merge(t1, 5, 6, false)

	// t2: {1,2} {3,4} {5,6}
	t2, _ := u.Merge(t0, 1, 2, false)
	t2, _ = u.Merge(t2, 3, 4, false)
	t2, _ = u.Merge(t2, 5, 6, false)

	inter := u.Intersect(t1, t2)
	for x := 1; x <= 6; x++ {
		for y := 1; y <= 6; y++ {
			relI, _ := u.Equal(inter, x, y)
			rel1, _ := u.Equal(t1, x, y)
			rel2, _ := u.Equal(t2, x, y)
			require.Equal(t, rel1 && rel2, relI, "x=%d y=%d", x, y)
		}
	}
}

func TestGetEqualIteratorPreservesPolarity(t *testing.T) {
	u, t0 := Make(4)
	t1, _ := u.Merge(t0, 1, 2, true) // 1 = ¬2
	it := u.GetEqual(t1, 1)
	seen := map[int]bool{}
	for it.Next() {
		seen[it.Value()] = true
	}
	require.True(t, seen[1])
	require.True(t, seen[-2])
	require.False(t, seen[2])

	it2 := u.GetEqual(t1, -1) // query ¬1
	seen2 := map[int]bool{}
	for it2.Next() {
		seen2[it2.Value()] = true
	}
	require.True(t, seen2[-1])
	require.True(t, seen2[2])
}

func TestRmEqual(t *testing.T) {
	u, t0 := Make(4)
	t1, _ := u.Merge(t0, 1, 2, false)
	t1, _ = u.Merge(t1, 2, 3, false)

	t2 := u.RmEqual(t1, 2)
	rel, _ := u.Equal(t2, 1, 3)
	require.True(t, rel, "1 and 3 must remain related")
	rel2, _ := u.Equal(t2, 1, 2)
	require.False(t, rel2, "2 must now be its own singleton")
}

func TestMergeSortClassOrdering(t *testing.T) {
	u, t0 := Make(6)
	t1, _ := u.Merge(t0, 1, 3, false)
	t1, _ = u.Merge(t1, 3, 5, true) // 1=3, 3=¬5 => members {1,3,-5} roughly
	sorted, _ := u.MergeSortClass(t1, 1)
	for i := 1; i < len(sorted); i++ {
		a, b := sorted[i-1], sorted[i]
		am, bm := a, b
		if am < 0 {
			am = -am
		}
		if bm < 0 {
			bm = -bm
		}
		require.LessOrEqual(t, am, bm)
	}
}

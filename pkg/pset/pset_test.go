package pset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertOrdering(t *testing.T) {
	u := New()
	s := u.Insert(Empty, 3)
	s = u.Insert(s, -1)
	s = u.Insert(s, 2)
	require.Equal(t, []int{-1, 2, 3}, u.Members(s))
}

func TestInsertIdempotent(t *testing.T) {
	u := New()
	s := u.Insert(Empty, 5)
	s2 := u.Insert(s, 5)
	require.Equal(t, s, s2)
}

func TestInsertContradiction(t *testing.T) {
	u := New()
	s := u.Insert(Empty, 3)
	s = u.Insert(s, -3)
	require.Equal(t, Bottom, s)
}

func TestRemoveAbsent(t *testing.T) {
	u := New()
	s := u.Insert(Empty, 1)
	s = u.Insert(s, 2)
	same := u.Remove(s, 5)
	require.Equal(t, s, same)
}

func TestRemoveThenReinsertHashConses(t *testing.T) {
	u := New()
	s := u.Insert(Empty, 1)
	s = u.Insert(s, 2)
	r := u.Remove(s, 2)
	base := u.Insert(Empty, 1)
	require.Equal(t, base, r, "structurally identical sets must share an ID")
}

func TestHashConsingSharesIdentity(t *testing.T) {
	u := New()
	a := u.Insert(Empty, 1)
	a = u.Insert(a, 2)
	b := u.Insert(Empty, 2) // built in a different order
	b = u.Insert(b, 1)
	require.Equal(t, a, b)
}

func TestContainsAndFind(t *testing.T) {
	u := New()
	s := u.Insert(Empty, -4)
	s = u.Insert(s, 7)
	require.True(t, u.Contains(s, -4))
	require.False(t, u.Contains(s, 4))
	present, sign := u.Find(s, 4)
	require.True(t, present)
	require.Equal(t, -4, sign)
}

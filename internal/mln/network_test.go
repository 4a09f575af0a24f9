package mln

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNetworkValidation(t *testing.T) {
	clauses := []*Clause{{Index: 0}}
	a := NewAtom(1, "p/1", "p(/a)")

	t.Run("rejects duplicate atom ids", func(t *testing.T) {
		dup := NewAtom(1, "p/1", "p(/b)")
		_, err := NewNetwork(clauses, []*Atom{a, dup}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive atom ids", func(t *testing.T) {
		bad := NewAtom(0, "p/1", "p(/b)")
		_, err := NewNetwork(clauses, []*Atom{bad}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("rejects constraint without dependency entry", func(t *testing.T) {
		c := NewConstraint(0, []int{1}, 0)
		_, err := NewNetwork(clauses, []*Atom{a}, []*Constraint{c}, Dependencies{})
		assert.Error(t, err)
	})

	t.Run("nil dependency map is allowed but flagged", func(t *testing.T) {
		c := NewConstraint(0, []int{1}, 0)
		net, err := NewNetwork(clauses, []*Atom{a}, []*Constraint{c}, nil)
		require.NoError(t, err)
		assert.False(t, net.HasDependencyMap())
	})
}

func TestNSat(t *testing.T) {
	clauses := []*Clause{{Index: 0}}
	a1 := NewAtom(1, "p/1", "p(/a)")
	a2 := NewAtom(2, "p/1", "p(/b)")
	c := NewConstraint(0, []int{1, -2}, 0)
	net, err := NewNetwork(clauses, []*Atom{a1, a2}, []*Constraint{c}, Dependencies{0: {0: 1}})
	require.NoError(t, err)

	sw := net.StateWriter()
	tests := []struct {
		s1, s2 bool
		want   int
	}{
		{false, false, 1}, // -2 satisfied
		{true, false, 2},
		{true, true, 1}, // only +1 satisfied
		{false, true, 0},
	}
	for _, tt := range tests {
		sw.Set(1, tt.s1)
		sw.Set(2, tt.s2)
		if got := c.NSat(net); got != tt.want {
			t.Errorf("NSat(%v,%v) = %d, want %d", tt.s1, tt.s2, got, tt.want)
		}
	}
}

func TestWritersAreTheOnlyMutators(t *testing.T) {
	clauses := []*Clause{{Index: 0}}
	a := NewAtom(1, "p/1", "p(/a)")
	c := NewConstraint(0, []int{1}, 0)
	net, err := NewNetwork(clauses, []*Atom{a}, []*Constraint{c}, Dependencies{0: {0: 1}})
	require.NoError(t, err)

	net.StateWriter().Set(1, true)
	assert.True(t, net.Atom(1).State())

	net.WeightWriter().Set(c, 2.5)
	assert.Equal(t, 2.5, c.Weight())
}

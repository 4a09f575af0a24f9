package infer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marlin/internal/mln"
)

func network(t *testing.T, constraints []*mln.Constraint, atoms ...*mln.Atom) *mln.Network {
	t.Helper()
	deps := make(mln.Dependencies)
	for _, c := range constraints {
		deps[c.ID()] = map[int]int{0: 1}
	}
	net, err := mln.NewNetwork([]*mln.Clause{{Index: 0}}, atoms, constraints, deps)
	require.NoError(t, err)
	return net
}

func TestInferHardAndSoft(t *testing.T) {
	a1 := mln.NewAtom(1, "p/1", "p(/a)")
	a2 := mln.NewAtom(2, "p/1", "p(/b)")
	net := network(t, []*mln.Constraint{
		mln.NewConstraint(0, []int{1, 2}, mln.DefaultHardWeight), // hard: a1 v a2
		mln.NewConstraint(1, []int{-1}, 2),                       // soft: prefer !a1
	}, a1, a2)

	oracle := New(zap.NewNop())
	require.NoError(t, oracle.Infer(context.Background(), net.StateWriter(), false, nil))

	assert.False(t, a1.State())
	assert.True(t, a2.State())
}

func TestInferNegativeConstraintWeight(t *testing.T) {
	// A negative weight penalizes satisfying the disjunction, so the
	// optimal model falsifies both literals.
	a1 := mln.NewAtom(1, "p/1", "p(/a)")
	a2 := mln.NewAtom(2, "p/1", "p(/b)")
	net := network(t, []*mln.Constraint{
		mln.NewConstraint(0, []int{1, 2}, -3),
	}, a1, a2)

	oracle := New(zap.NewNop())
	require.NoError(t, oracle.Infer(context.Background(), net.StateWriter(), false, nil))

	assert.False(t, a1.State())
	assert.False(t, a2.State())
}

func TestInferInfeasibleHardConstraints(t *testing.T) {
	a1 := mln.NewAtom(1, "p/1", "p(/a)")
	net := network(t, []*mln.Constraint{
		mln.NewConstraint(0, []int{1}, mln.DefaultHardWeight),
		mln.NewConstraint(1, []int{-1}, mln.DefaultHardWeight),
	}, a1)

	oracle := New(zap.NewNop())
	err := oracle.Infer(context.Background(), net.StateWriter(), false, nil)
	require.ErrorIs(t, err, ErrInfeasible)
}

type fixedAnnotation struct {
	truth map[int]mln.Truth
}

func (a fixedAnnotation) Lookup(atom *mln.Atom) mln.Truth { return a.truth[atom.ID()] }
func (a fixedAnnotation) Covers(string) bool              { return true }

func TestInferLossAugmentedPrefersDisagreement(t *testing.T) {
	// Without augmentation the weightless atom could go either way; the
	// loss term pushes it away from its annotation.
	a1 := mln.NewAtom(1, "p/1", "p(/a)")
	net := network(t, []*mln.Constraint{
		mln.NewConstraint(0, []int{1}, 0.0004), // rounds to zero weight
	}, a1)
	ann := fixedAnnotation{truth: map[int]mln.Truth{1: mln.True}}

	oracle := New(zap.NewNop())
	require.NoError(t, oracle.Infer(context.Background(), net.StateWriter(), true, ann))
	assert.False(t, a1.State(), "loss augmentation should flip the atom against its annotation")
}

func TestInferSoftWeightBeatsLossTerm(t *testing.T) {
	a1 := mln.NewAtom(1, "p/1", "p(/a)")
	net := network(t, []*mln.Constraint{
		mln.NewConstraint(0, []int{1}, 5), // strong preference for a1
	}, a1)
	ann := fixedAnnotation{truth: map[int]mln.Truth{1: mln.True}}

	oracle := New(zap.NewNop())
	require.NoError(t, oracle.Infer(context.Background(), net.StateWriter(), true, ann))
	assert.True(t, a1.State())
}

func TestInferAllWeightsZero(t *testing.T) {
	// A fully zero-weight network has no preferred assignment; inference
	// must succeed and leave the current state alone rather than erroring.
	a1 := mln.NewAtom(1, "p/1", "p(/a)")
	net := network(t, []*mln.Constraint{
		mln.NewConstraint(0, []int{1}, 0),
	}, a1)
	net.StateWriter().Set(1, true)

	oracle := New(zap.NewNop())
	require.NoError(t, oracle.Infer(context.Background(), net.StateWriter(), false, nil))
	assert.True(t, a1.State(), "trivial inference must not disturb the assignment")
}

func TestInferCancelledContext(t *testing.T) {
	a1 := mln.NewAtom(1, "p/1", "p(/a)")
	net := network(t, []*mln.Constraint{
		mln.NewConstraint(0, []int{1}, 1),
	}, a1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(zap.NewNop()).Infer(ctx, net.StateWriter(), false, nil)
	require.ErrorIs(t, err, context.Canceled)
}

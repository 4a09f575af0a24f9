package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marlin/internal/mln"
)

const evidenceText = `
// observed friendships
friends(/anna, /bob).
friends(/bob, /anna).
smokes(/anna).
? cancer(/edward).
`

func TestParseDatabase(t *testing.T) {
	d, err := Parse(evidenceText)
	require.NoError(t, err)

	require.Len(t, d.Facts(), 4)
	assert.True(t, d.Covers("friends/2"))
	assert.True(t, d.Covers("smokes/1"))
	assert.False(t, d.Covers("drinks/1"))

	assert.Equal(t, mln.True, d.Truth("friends(/anna,/bob)"))
	assert.Equal(t, mln.True, d.Truth("smokes(/anna)"))
	assert.Equal(t, mln.False, d.Truth("smokes(/bob)"), "closed world")
	assert.Equal(t, mln.Unknown, d.Truth("cancer(/edward)"))
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse("smokes(/anna).\nsmokes(/anna).")
	assert.ErrorContains(t, err, "duplicate")
}

func TestParseRejectsNonConstantArgs(t *testing.T) {
	_, err := Parse("smokes(X).")
	assert.Error(t, err)
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse("smokes anna")
	assert.Error(t, err)
}

func TestAtomKey(t *testing.T) {
	assert.Equal(t, "friends(/anna,/bob)", AtomKey("friends", []string{"/anna", "/bob"}))
}

func TestAnnotationLookup(t *testing.T) {
	d, err := Parse("smokes(/anna).")
	require.NoError(t, err)
	ann := NewAnnotation(d)

	smoker := mln.NewAtom(1, "smokes/1", "smokes(/anna)")
	nonSmoker := mln.NewAtom(2, "smokes/1", "smokes(/bob)")
	stranger := mln.NewAtom(3, "cancer/1", "cancer(/anna)")

	assert.Equal(t, mln.True, ann.Lookup(smoker))
	assert.Equal(t, mln.False, ann.Lookup(nonSmoker))
	assert.False(t, ann.Covers("cancer/1"))
	assert.Equal(t, mln.Unknown, ann.Lookup(stranger))

	ann.Cover("cancer/1")
	assert.True(t, ann.Covers("cancer/1"))
	assert.Equal(t, mln.False, ann.Lookup(stranger))
}

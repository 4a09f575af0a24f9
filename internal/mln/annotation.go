package mln

import "errors"

// Truth is the three-valued annotation of a ground atom.
type Truth int8

const (
	Unknown Truth = iota
	True
	False
)

func (t Truth) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// ErrMissingAnnotation is returned when a non-evidence atom's predicate has
// no entry in the annotation source. Training annotation must be total over
// all non-evidence signatures, so this aborts the learning run.
var ErrMissingAnnotation = errors.New("mln: atom predicate has no annotation entry")

// Annotation supplies the ground-truth assignment for learning. Lookup must
// be total over every non-evidence atom in the network; Covers reports
// whether a predicate signature is annotated at all.
type Annotation interface {
	Lookup(atom *Atom) Truth
	Covers(pred string) bool
}

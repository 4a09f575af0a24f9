package learn

import (
	"fmt"

	"marlin/internal/mln"
)

// StateController switches the network's atoms between the annotated
// assignment and whatever assignment the oracle last produced, and measures
// the Hamming distance between the two. It holds the network's only
// atom-state writer during its sweeps.
type StateController struct {
	net *mln.Network
	sw  mln.StateWriter
	ann mln.Annotation
}

// NewStateController creates the controller for a network and its
// annotation source.
func NewStateController(net *mln.Network, ann mln.Annotation) *StateController {
	return &StateController{net: net, sw: net.StateWriter(), ann: ann}
}

// SetAnnotatedState sets every atom to its annotated truth value: TRUE
// becomes true, anything else false. An atom whose predicate has no
// annotation entry aborts the sweep; training annotation must be total.
func (s *StateController) SetAnnotatedState() error {
	for _, atom := range s.net.Atoms() {
		if !s.ann.Covers(atom.Predicate()) {
			return fmt.Errorf("%w: %s", mln.ErrMissingAnnotation, atom.Predicate())
		}
		s.sw.Set(atom.ID(), s.ann.Lookup(atom) == mln.True)
	}
	return nil
}

// CalculateError returns the number of atoms whose current truth value
// contradicts their annotation: true but annotated FALSE, or false but
// annotated TRUE. Atoms annotated UNKNOWN never count.
func (s *StateController) CalculateError() int {
	n := 0
	for _, atom := range s.net.Atoms() {
		switch s.ann.Lookup(atom) {
		case mln.True:
			if !atom.State() {
				n++
			}
		case mln.False:
			if atom.State() {
				n++
			}
		}
	}
	return n
}

package db

import "marlin/internal/mln"

// Annotation adapts a training database to the learner's annotation
// interface. The database must be total over every non-evidence predicate
// of the network; coverage can be widened with Cover for predicates whose
// atoms are all false in the training example (closed world means they
// never appear in the file).
type Annotation struct {
	db      *Database
	covered map[string]struct{}
}

// NewAnnotation wraps a training database.
func NewAnnotation(d *Database) *Annotation {
	a := &Annotation{db: d, covered: make(map[string]struct{})}
	for _, sig := range d.Signatures() {
		a.covered[sig] = struct{}{}
	}
	return a
}

// Cover declares a predicate signature as annotated even if no atom of it
// appears in the file (every grounding of it is false).
func (a *Annotation) Cover(sig string) { a.covered[sig] = struct{}{} }

// Covers reports whether the signature has annotation entries.
func (a *Annotation) Covers(sig string) bool {
	_, ok := a.covered[sig]
	return ok
}

// Lookup returns the annotated truth of a ground atom.
func (a *Annotation) Lookup(atom *mln.Atom) mln.Truth {
	if !a.Covers(atom.Predicate()) {
		return mln.Unknown
	}
	return a.db.Truth(atom.Key())
}

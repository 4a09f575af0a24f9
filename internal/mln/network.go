// Package mln defines the ground Markov logic network handed to the
// weight learner: ground atoms, ground constraints, the clause-to-constraint
// dependency map, and the originating first-order clauses.
//
// The network is built once by the grounder and is read-only afterwards,
// with two exceptions: atom truth state and constraint weights. Both are
// mutable only through the phase-scoped writer views returned by
// StateWriter and WeightWriter, so that each learning phase can only touch
// the state it owns.
package mln

import (
	"errors"
	"fmt"
)

// DefaultHardWeight is the fixed weight given to ground constraints that
// descend from a hard clause. It only needs to dominate any soft weight the
// learner can produce.
const DefaultHardWeight = 1e6

// ErrNoDependencyMap is returned when a network without clause-to-constraint
// dependency tracking is handed to the learner. Learning cannot run without
// it, so this is a caller bug, not a recoverable condition.
var ErrNoDependencyMap = errors.New("mln: network has no dependency map")

// Clause is one first-order weighted formula in clausal form. The learner
// identifies clauses by their stable 0-based Index.
type Clause struct {
	Index  int
	Hard   bool
	Weight float64 // learned weight; stays zero for hard clauses
	Text   string  // original source form, kept for theory export
}

// Atom is a single ground proposition. Atom ids start at 1 so that signed
// literal codes can use the sign bit, DIMACS style.
type Atom struct {
	id    int
	pred  string // predicate signature, e.g. "smokes/1"
	key   string // canonical ground form, e.g. "smokes(/anna)"
	state bool
}

// ID returns the atom's id (>= 1).
func (a *Atom) ID() int { return a.id }

// Predicate returns the owning predicate signature.
func (a *Atom) Predicate() string { return a.pred }

// Key returns the canonical ground-atom text used by annotation lookup.
func (a *Atom) Key() string { return a.key }

// State returns the atom's current truth value.
func (a *Atom) State() bool { return a.state }

// Constraint is a ground disjunction of signed literals. A positive literal
// code +id is satisfied when atom id is true, a negative code -id when it is
// false.
type Constraint struct {
	id     int
	lits   []int
	weight float64
}

// ID returns the constraint's id.
func (c *Constraint) ID() int { return c.id }

// Lits returns the constraint's signed literal codes. Callers must not
// modify the returned slice.
func (c *Constraint) Lits() []int { return c.lits }

// Weight returns the constraint's current scalar weight.
func (c *Constraint) Weight() float64 { return c.weight }

// NSat counts the literals whose sign agrees with the current truth value
// of their atom.
func (c *Constraint) NSat(net *Network) int {
	n := 0
	for _, lit := range c.lits {
		if lit > 0 == net.atoms[abs(lit)].state {
			n++
		}
	}
	return n
}

// Dependencies maps a ground constraint id to the clauses that produced it.
// The inner map goes from clause index to a signed frequency: the magnitude
// is how many groundings of that clause collapsed into this constraint, and
// a negative sign records that the clause's weight polarity was inverted
// during clausal conversion.
type Dependencies map[int]map[int]int

// Network is the grounder's output and the learner's working state.
type Network struct {
	clauses     []*Clause
	atoms       map[int]*Atom
	constraints []*Constraint
	deps        Dependencies
	hardWeight  float64
}

// NewNetwork assembles a ground network. deps may be nil when the caller
// only needs inference; the learner rejects such networks.
func NewNetwork(clauses []*Clause, atoms []*Atom, constraints []*Constraint, deps Dependencies) (*Network, error) {
	net := &Network{
		clauses:     clauses,
		atoms:       make(map[int]*Atom, len(atoms)),
		constraints: constraints,
		deps:        deps,
		hardWeight:  DefaultHardWeight,
	}
	for _, a := range atoms {
		if a.id <= 0 {
			return nil, fmt.Errorf("mln: atom %q has invalid id %d", a.key, a.id)
		}
		if prev, ok := net.atoms[a.id]; ok {
			return nil, fmt.Errorf("mln: atom id %d used by both %q and %q", a.id, prev.key, a.key)
		}
		net.atoms[a.id] = a
	}
	if deps != nil {
		for _, c := range constraints {
			if len(deps[c.id]) == 0 {
				return nil, fmt.Errorf("mln: constraint %d has no dependency entry", c.id)
			}
		}
	}
	return net, nil
}

// NewAtom creates a ground atom. id must be >= 1.
func NewAtom(id int, pred, key string) *Atom {
	return &Atom{id: id, pred: pred, key: key}
}

// NewConstraint creates a ground constraint over signed literal codes.
func NewConstraint(id int, lits []int, weight float64) *Constraint {
	return &Constraint{id: id, lits: lits, weight: weight}
}

// NumClauses returns the number of first-order clauses.
func (n *Network) NumClauses() int { return len(n.clauses) }

// Clauses returns the clause list, indexed by clause index.
func (n *Network) Clauses() []*Clause { return n.clauses }

// Clause returns the clause with the given index.
func (n *Network) Clause(idx int) *Clause { return n.clauses[idx] }

// Constraints returns all ground constraints.
func (n *Network) Constraints() []*Constraint { return n.constraints }

// Atoms returns all ground atoms keyed by id.
func (n *Network) Atoms() map[int]*Atom { return n.atoms }

// Atom returns the atom with the given id, or nil.
func (n *Network) Atom(id int) *Atom { return n.atoms[id] }

// Dependencies returns the dependency entries for a constraint id, or nil
// when the network was built without dependency tracking.
func (n *Network) Dependencies(id int) map[int]int {
	if n.deps == nil {
		return nil
	}
	return n.deps[id]
}

// HasDependencyMap reports whether the grounder recorded clause
// dependencies for this network.
func (n *Network) HasDependencyMap() bool { return n.deps != nil }

// HardWeight returns the fixed weight used for hard ground constraints.
func (n *Network) HardWeight() float64 { return n.hardWeight }

// SetHardWeight overrides the hard-weight constant. Must be called before
// learning starts.
func (n *Network) SetHardWeight(w float64) { n.hardWeight = w }

// StateWriter is the only handle through which atom truth state may be
// mutated. The state controller holds one during state sweeps and the
// inference oracle holds one while writing back its assignment.
type StateWriter struct {
	net *Network
}

// StateWriter returns the atom-state mutation view.
func (n *Network) StateWriter() StateWriter { return StateWriter{net: n} }

// Set assigns the truth value of atom id.
func (w StateWriter) Set(id int, value bool) {
	w.net.atoms[id].state = value
}

// Network returns the underlying network, for read access.
func (w StateWriter) Network() *Network { return w.net }

// WeightWriter is the only handle through which constraint weights may be
// mutated. The constraint weight reconstructor holds the single instance
// during its sweep.
type WeightWriter struct {
	net *Network
}

// WeightWriter returns the constraint-weight mutation view.
func (n *Network) WeightWriter() WeightWriter { return WeightWriter{net: n} }

// Set assigns the scalar weight of a constraint.
func (w WeightWriter) Set(c *Constraint, weight float64) {
	c.weight = weight
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Package qp holds the growing mathematical program at the heart of
// cutting-plane max-margin learning. The program owns one weight variable
// per clause plus a single non-negative slack; every learning iteration
// adds one linear cut of the form
//
//	sum_i w_i * delta_i + slack >= rhs
//
// and cuts are never removed. Two regularization modes share the Program
// interface: the default L2 mode minimizes 0.5*||w||^2 + C*slack, the L1
// mode minimizes sum_i |w_i| + C*slack over a split w = w+ - w- layout.
package qp

// Program is the optimization model driven by the learner. Implementations
// own the variable layout; the learner only supplies per-clause deltas.
type Program interface {
	// AddCut appends one cutting plane. delta has one entry per weight.
	AddCut(delta []float64, rhs float64)
	// Solve optimizes over all accumulated cuts and returns the weight
	// vector and the slack value.
	Solve() (weights []float64, slack float64, err error)
	// NumCuts reports how many cutting planes have been added.
	NumCuts() int
	// Close releases the accumulated cut matrix.
	Close()
}

// New returns a program over n weights with regularization constant c.
func New(n int, c float64, useL1 bool) Program {
	if useL1 {
		return newL1(n, c)
	}
	return newL2(n, c)
}

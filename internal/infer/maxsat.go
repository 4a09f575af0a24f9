// Package infer adapts gophersat's weighted partial MaxSAT solver as the
// MAP-inference oracle for a ground Markov logic network. MAP inference in
// a ground network is exactly weighted MaxSAT: every hard constraint
// becomes a hard clause, every soft constraint a weighted clause whose
// weight is the reconstructed scalar rounded onto an integer grid.
package infer

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/crillab/gophersat/maxsat"
	"go.uber.org/zap"

	"marlin/internal/mln"
)

// ErrInfeasible is returned when the hard constraints cannot be satisfied
// together. This aborts the learning run.
var ErrInfeasible = errors.New("infer: hard constraints are unsatisfiable")

// MaxSatOracle is a learn.Oracle backed by gophersat.
type MaxSatOracle struct {
	scale      float64 // float weight -> integer MaxSAT weight
	lossWeight float64 // per-atom weight of the loss augmentation
	logger     *zap.Logger
}

// Option tweaks the oracle.
type Option func(*MaxSatOracle)

// WithScale overrides the float-to-integer weight scale (default 1000).
func WithScale(s float64) Option {
	return func(o *MaxSatOracle) { o.scale = s }
}

// WithLossWeight overrides the per-atom loss-augmentation weight
// (default 1).
func WithLossWeight(w float64) Option {
	return func(o *MaxSatOracle) { o.lossWeight = w }
}

// New creates the oracle.
func New(logger *zap.Logger, opts ...Option) *MaxSatOracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &MaxSatOracle{scale: 1000, lossWeight: 1, logger: logger}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Infer runs MAP inference and writes the optimal assignment back through
// sw. The call blocks until the solver finishes; ctx is only consulted
// before the solve starts.
func (o *MaxSatOracle) Infer(ctx context.Context, sw mln.StateWriter, lossAugmented bool, ann mln.Annotation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	net := sw.Network()

	var constrs []maxsat.Constr
	aux := 0
	for _, c := range net.Constraints() {
		lits := litsOf(c)
		w := c.Weight()
		switch {
		case w >= net.HardWeight():
			constrs = append(constrs, maxsat.HardClause(lits...))
		case w > 0:
			if iw := o.intWeight(w); iw > 0 {
				constrs = append(constrs, maxsat.WeightedClause(lits, iw))
			}
		case w < 0:
			// Penalize satisfying the disjunction: force an auxiliary
			// variable true whenever any literal is true, then prefer the
			// auxiliary false with weight |w|.
			iw := o.intWeight(-w)
			if iw == 0 {
				continue
			}
			aux++
			auxLit := maxsat.Var("neg" + strconv.Itoa(aux))
			for _, l := range lits {
				constrs = append(constrs, maxsat.HardClause(l.Negation(), auxLit))
			}
			constrs = append(constrs, maxsat.WeightedClause([]maxsat.Lit{auxLit.Negation()}, iw))
		}
	}

	if lossAugmented {
		lw := o.intWeight(o.lossWeight)
		for _, atom := range net.Atoms() {
			var lit maxsat.Lit
			switch ann.Lookup(atom) {
			case mln.True:
				lit = maxsat.Not(varName(atom.ID()))
			case mln.False:
				lit = maxsat.Var(varName(atom.ID()))
			default:
				continue
			}
			constrs = append(constrs, maxsat.WeightedClause([]maxsat.Lit{lit}, lw))
		}
	}

	if len(constrs) == 0 {
		// No clause is hard and every soft weight rounded to zero, which
		// happens on the first learning iteration when the weight vector is
		// still all zeros. Any assignment is optimal then, so keep the
		// current one.
		o.logger.Debug("map inference trivial: no weighted constraints")
		return nil
	}
	model, cost := maxsat.New(constrs...).Solve()
	if model == nil {
		return ErrInfeasible
	}
	o.logger.Debug("map inference solved",
		zap.Int("constraints", len(constrs)),
		zap.Int("cost", cost),
		zap.Bool("loss_augmented", lossAugmented))

	for id := range net.Atoms() {
		sw.Set(id, model[varName(id)])
	}
	return nil
}

func (o *MaxSatOracle) intWeight(w float64) int {
	return int(math.Round(w * o.scale))
}

func litsOf(c *mln.Constraint) []maxsat.Lit {
	lits := make([]maxsat.Lit, len(c.Lits()))
	for i, code := range c.Lits() {
		if code < 0 {
			lits[i] = maxsat.Not(varName(-code))
		} else {
			lits[i] = maxsat.Var(varName(code))
		}
	}
	return lits
}

func varName(id int) string {
	return "a" + strconv.Itoa(id)
}

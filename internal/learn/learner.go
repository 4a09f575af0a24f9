package learn

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"marlin/internal/mln"
	"marlin/internal/qp"
)

// Options configures a learning run. Validate rejects malformed values
// before any network is touched.
type Options struct {
	C                   float64 // regularization constant
	Epsilon             float64 // stopping tolerance
	MaxIterations       int
	LossScale           float64
	MarginRescaling     bool
	LossAugmented       bool
	UseL1Regularization bool
}

// DefaultOptions returns the standard learning configuration.
func DefaultOptions() Options {
	return Options{
		C:               1000,
		Epsilon:         0.001,
		MaxIterations:   1000,
		LossScale:       1,
		MarginRescaling: true,
		LossAugmented:   true,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.MaxIterations < 0 {
		return fmt.Errorf("learn: maxIterations must be >= 0, got %d", o.MaxIterations)
	}
	if o.C <= 0 {
		return fmt.Errorf("learn: C must be positive, got %g", o.C)
	}
	if o.Epsilon <= 0 {
		return fmt.Errorf("learn: epsilon must be positive, got %g", o.Epsilon)
	}
	if o.LossScale <= 0 {
		return fmt.Errorf("learn: lossScale must be positive, got %g", o.LossScale)
	}
	return nil
}

// Outcome reports how a learning run ended.
type Outcome int

const (
	// Converged: the stopping criterion was met, or a solve returned the
	// previous weight vector unchanged.
	Converged Outcome = iota
	// MaxIterationsReached: the iteration budget ran out first. Not an
	// error; the last accepted weight vector is still returned.
	MaxIterationsReached
)

func (o Outcome) String() string {
	if o == Converged {
		return "converged"
	}
	return "max iterations reached"
}

// Result is a finished learning run.
type Result struct {
	Weights    []float64 // one learned weight per clause index; hard clauses stay zero
	Outcome    Outcome
	Iterations int
}

// Recorder observes per-iteration progress, e.g. for the run-history store.
type Recorder interface {
	RecordIteration(iter int, loss, errVal, slack float64)
}

// Learner drives the cutting-plane loop: solve the growing program,
// reconstruct constraint weights, call the oracle, count, cut, repeat.
type Learner struct {
	net    *mln.Network
	ann    mln.Annotation
	oracle Oracle
	opts   Options
	logger *zap.Logger
	rec    Recorder
}

// New creates a learner. The network must have been grounded with
// dependency tracking enabled.
func New(net *mln.Network, ann mln.Annotation, oracle Oracle, opts Options, logger *zap.Logger) (*Learner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if !net.HasDependencyMap() {
		return nil, mln.ErrNoDependencyMap
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Learner{net: net, ann: ann, oracle: oracle, opts: opts, logger: logger}, nil
}

// SetRecorder attaches an iteration recorder.
func (l *Learner) SetRecorder(r Recorder) { l.rec = r }

// Learn runs the cutting-plane loop and returns the final weight vector.
// The loop is strictly sequential: every solve depends on the previous
// iteration's inference output and vice versa.
func (l *Learner) Learn(ctx context.Context) (*Result, error) {
	numClauses := l.net.NumClauses()
	state := NewStateController(l.net, l.ann)
	recon := NewReconstructor(l.net, l.logger)

	if err := state.SetAnnotatedState(); err != nil {
		return nil, err
	}
	// The label's sufficient statistic, computed once and never again.
	trueCounts := CountTrueGroundings(l.net)

	prog := qp.New(numClauses, l.opts.C, l.opts.UseL1Regularization)
	defer prog.Close()

	weights := make([]float64, numClauses)
	slack := 0.0
	errVal := math.Inf(1)
	converged := false
	iters := 0

	for t := 1; t <= l.opts.MaxIterations && errVal > slack+l.opts.Epsilon; t++ {
		iters = t
		if t > 1 {
			solved, s, err := prog.Solve()
			if err != nil {
				return nil, fmt.Errorf("learn: iteration %d: %w", t, err)
			}
			slack = s
			if equalWeights(solved, weights) {
				converged = true
				break
			}
			weights = solved
		}

		recon.Reconstruct(weights)
		if err := l.oracle.Infer(ctx, l.net.StateWriter(), l.opts.LossAugmented, l.ann); err != nil {
			return nil, fmt.Errorf("learn: iteration %d: inference: %w", t, err)
		}
		loss := float64(state.CalculateError()) * l.opts.LossScale
		inferredCounts := CountTrueGroundings(l.net)

		delta := make([]float64, numClauses)
		currentError := 0.0
		for i, c := range l.net.Clauses() {
			if c.Hard {
				continue // hard clauses are never penalized or learned
			}
			delta[i] = float64(trueCounts[i] - inferredCounts[i])
			currentError += weights[i] * delta[i]
		}

		if l.opts.MarginRescaling {
			prog.AddCut(delta, loss)
			errVal = loss - currentError
		} else {
			prog.AddCut(delta, 1)
			if loss > 0 {
				errVal = 1 - currentError
			} else {
				errVal = 0
			}
		}

		l.logger.Info("cutting-plane iteration",
			zap.Int("iteration", t),
			zap.Float64("loss", loss),
			zap.Float64("error", errVal),
			zap.Float64("slack", slack),
			zap.Int("cuts", prog.NumCuts()))
		if l.rec != nil {
			l.rec.RecordIteration(t, loss, errVal, slack)
		}
	}

	outcome := Converged
	if !converged && iters == l.opts.MaxIterations && errVal > slack+l.opts.Epsilon {
		outcome = MaxIterationsReached
	}
	for i, c := range l.net.Clauses() {
		if !c.Hard {
			c.Weight = weights[i]
		}
	}
	l.logger.Info("learning finished",
		zap.Int("iterations", iters),
		zap.String("outcome", outcome.String()))
	return &Result{Weights: weights, Outcome: outcome, Iterations: iters}, nil
}

func equalWeights(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

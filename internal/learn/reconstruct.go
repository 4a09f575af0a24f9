package learn

import (
	"go.uber.org/zap"

	"marlin/internal/mln"
)

// Reconstructor recomputes every ground constraint's scalar weight from the
// current learned weight vector and the dependency map, without re-running
// grounding. It holds the network's only constraint-weight writer.
type Reconstructor struct {
	net    *mln.Network
	ww     mln.WeightWriter
	logger *zap.Logger
}

// NewReconstructor creates the reconstructor for a network.
func NewReconstructor(net *mln.Network, logger *zap.Logger) *Reconstructor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconstructor{net: net, ww: net.WeightWriter(), logger: logger}
}

// Reconstruct sweeps all constraints. A constraint with any hard-clause
// dependency entry is pinned to the hard-weight constant no matter what
// other entries it carries; otherwise the entries' learned weights
// accumulate, scaled by their signed frequency. Negative frequencies are
// legal here (the counter relies on them) but unexpected on this path, so
// the first one seen in a sweep is logged rather than silently folded in.
func (r *Reconstructor) Reconstruct(weights []float64) {
	warned := false
	for _, c := range r.net.Constraints() {
		weight := 0.0
		hard := false
		for clauseIdx, freq := range r.net.Dependencies(c.ID()) {
			if r.net.Clause(clauseIdx).Hard {
				hard = true
				break
			}
			if freq < 0 && !warned {
				r.logger.Warn("negative dependency frequency during weight reconstruction",
					zap.Int("constraint", c.ID()),
					zap.Int("clause", clauseIdx),
					zap.Int("frequency", freq))
				warned = true
			}
			weight += weights[clauseIdx] * float64(freq)
		}
		if hard {
			r.ww.Set(c, r.net.HardWeight())
		} else {
			r.ww.Set(c, weight)
		}
	}
}

package learn

import (
	"context"

	"marlin/internal/mln"
)

// Oracle runs MAP inference over the ground network. The call is
// synchronous and all-or-nothing: on success every atom's truth state holds
// the oracle's chosen assignment (written through sw), on failure the run
// is aborted and the error propagates. In loss-augmented mode the oracle
// biases its objective toward assignments that disagree with the
// annotation, which is the separation-oracle step of cutting-plane
// max-margin learning.
//
// The driver makes exactly one Infer call per iteration.
type Oracle interface {
	Infer(ctx context.Context, sw mln.StateWriter, lossAugmented bool, ann mln.Annotation) error
}

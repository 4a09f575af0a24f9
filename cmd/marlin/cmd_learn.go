package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"marlin/internal/db"
	"marlin/internal/export"
	"marlin/internal/ground"
	"marlin/internal/infer"
	"marlin/internal/kb"
	"marlin/internal/learn"
	"marlin/internal/store"
)

var (
	learnKB       string
	learnEvidence string
	learnTruth    string
	learnOut      string
	learnMaxIters int
	learnL1       bool
	learnHistory  bool
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Learn clause weights from an annotated training database",
	Long: `Grounds the knowledge base over the evidence database, then runs
cutting-plane max-margin learning against the training annotation:

  1. Set the annotated state and count true groundings once
  2. Per iteration: solve the growing program, reconstruct constraint
     weights, run (loss-augmented) MAP inference, add one cutting plane
  3. Export the learned theory`,
	RunE: runLearn,
}

func init() {
	learnCmd.Flags().StringVarP(&learnKB, "kb", "k", "", "knowledge base file (required)")
	learnCmd.Flags().StringVarP(&learnEvidence, "evidence", "e", "", "evidence database (required)")
	learnCmd.Flags().StringVarP(&learnTruth, "truth", "t", "", "training annotation database (required)")
	learnCmd.Flags().StringVarP(&learnOut, "out", "o", "learned.mln", "output theory file")
	learnCmd.Flags().IntVar(&learnMaxIters, "max-iterations", -1, "override learn.max_iterations")
	learnCmd.Flags().BoolVar(&learnL1, "l1", false, "use L1 regularization")
	learnCmd.Flags().BoolVar(&learnHistory, "history", false, "record the run in the history store")
	_ = learnCmd.MarkFlagRequired("kb")
	_ = learnCmd.MarkFlagRequired("evidence")
	_ = learnCmd.MarkFlagRequired("truth")
}

func runLearn(cmd *cobra.Command, args []string) error {
	opts := cfg.LearnOptions()
	if learnMaxIters >= 0 {
		opts.MaxIterations = learnMaxIters
	}
	if learnL1 {
		opts.UseL1Regularization = true
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	base, err := kb.Load(learnKB)
	if err != nil {
		return err
	}
	evidence, err := db.Load(learnEvidence)
	if err != nil {
		return err
	}
	truth, err := db.Load(learnTruth)
	if err != nil {
		return err
	}

	logger.Info("grounding",
		zap.String("kb", learnKB),
		zap.Int("clauses", len(base.Clauses)))
	net, err := ground.New(base, evidence, logger).Ground(cmd.Context())
	if err != nil {
		return err
	}

	// Annotation must be total over non-evidence predicates; closed world
	// means all-false predicates never appear in the file, so cover every
	// declared non-evidence signature explicitly.
	ann := db.NewAnnotation(truth)
	for _, decl := range base.Decls {
		if !evidence.Covers(decl.Sig()) {
			ann.Cover(decl.Sig())
		}
	}

	oracle := infer.New(logger,
		infer.WithScale(cfg.Solver.WeightScale),
		infer.WithLossWeight(cfg.Solver.LossWeight))
	learner, err := learn.New(net, ann, oracle, opts, logger)
	if err != nil {
		return err
	}

	var run *store.Run
	if learnHistory || cfg.Store.Enabled {
		rs, err := store.Open(cfg.Store.Path, logger)
		if err != nil {
			return err
		}
		defer rs.Close()
		if run, err = rs.BeginRun(cfg.Learn); err != nil {
			return err
		}
		learner.SetRecorder(run)
	}

	result, err := learner.Learn(cmd.Context())
	if err != nil {
		return err
	}
	if run != nil {
		if err := run.Finish(result.Outcome.String(), result.Weights); err != nil {
			logger.Warn("failed to finish run record", zap.Error(err))
		}
	}

	if err := export.WriteTheoryFile(learnOut, base, net.Clauses()); err != nil {
		return err
	}
	fmt.Printf("%s after %d iteration(s); theory written to %s\n",
		result.Outcome, result.Iterations, learnOut)
	return nil
}

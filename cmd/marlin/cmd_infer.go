package main

import (
	"fmt"
	"math"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"marlin/internal/db"
	"marlin/internal/ground"
	"marlin/internal/infer"
	"marlin/internal/kb"
	"marlin/internal/learn"
)

var (
	inferKB       string
	inferEvidence string
)

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Run MAP inference with the knowledge base's clause weights",
	Long: `Grounds the knowledge base over the evidence database, reconstructs
ground constraint weights from the clause weights in the file, and prints
the most probable assignment of the non-evidence atoms.`,
	RunE: runInfer,
}

func init() {
	inferCmd.Flags().StringVarP(&inferKB, "kb", "k", "", "knowledge base file (required)")
	inferCmd.Flags().StringVarP(&inferEvidence, "evidence", "e", "", "evidence database (required)")
	_ = inferCmd.MarkFlagRequired("kb")
	_ = inferCmd.MarkFlagRequired("evidence")
}

func runInfer(cmd *cobra.Command, args []string) error {
	base, err := kb.Load(inferKB)
	if err != nil {
		return err
	}
	evidence, err := db.Load(inferEvidence)
	if err != nil {
		return err
	}
	net, err := ground.New(base, evidence, logger).Ground(cmd.Context())
	if err != nil {
		return err
	}

	// MAP queries use the weights written in the knowledge base. A clause
	// with a negative weight was rewritten to positive polarity during
	// grounding (negative dependency frequency), so the magnitude goes
	// into the weight vector and the frequency sign restores the rest.
	weights := make([]float64, net.NumClauses())
	for i, c := range base.Clauses {
		if !c.Hard {
			weights[i] = math.Abs(c.Weight)
		}
	}
	learn.NewReconstructor(net, logger).Reconstruct(weights)

	oracle := infer.New(logger,
		infer.WithScale(cfg.Solver.WeightScale),
		infer.WithLossWeight(cfg.Solver.LossWeight))
	if err := oracle.Infer(cmd.Context(), net.StateWriter(), false, nil); err != nil {
		return err
	}

	logger.Info("map assignment computed", zap.Int("atoms", len(net.Atoms())))
	var keys []string
	for _, atom := range net.Atoms() {
		if atom.State() {
			keys = append(keys, atom.Key())
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Println(k + ".")
	}
	return nil
}

// Package learn implements max-margin weight learning for a ground Markov
// logic network: the true-grounding counter, the annotated-state
// controller, the constraint weight reconstructor, and the cutting-plane
// driver that ties them to the mathematical program and the MAP oracle.
package learn

import "marlin/internal/mln"

// CountTrueGroundings computes, for every clause index, the number of true
// groundings of that clause under the network's current truth assignment.
//
// For each constraint, nsat is the number of literals whose sign agrees
// with the current truth value of their atom. A dependency entry with
// positive frequency contributes when the constraint is satisfied
// (nsat > 0); a negative frequency marks a polarity-inverted clause whose
// groundings count when the stored constraint is falsified (nsat == 0).
// The pass has no side effects and allocates nothing beyond the output.
func CountTrueGroundings(net *mln.Network) []int {
	counts := make([]int, net.NumClauses())
	for _, c := range net.Constraints() {
		nsat := c.NSat(net)
		for clauseIdx, freq := range net.Dependencies(c.ID()) {
			switch {
			case freq < 0 && nsat == 0:
				counts[clauseIdx] -= freq
			case freq > 0 && nsat > 0:
				counts[clauseIdx] += freq
			}
		}
	}
	return counts
}

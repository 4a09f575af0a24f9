package qp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// l2Program solves
//
//	min 0.5*||w||^2 + C*slack
//	s.t. w . d_t + slack >= b_t  for every cut t, slack >= 0
//
// in the dual: maximize sum_t a_t*b_t - 0.5*||sum_t a_t*d_t||^2 subject to
// a_t >= 0 and sum_t a_t <= C, with w = sum_t a_t*d_t. The dual is solved
// by projected coordinate ascent; with the handful of dense cuts a learning
// run accumulates this converges in a few passes.
type l2Program struct {
	n       int
	c       float64
	cuts    [][]float64
	rhs     []float64
	sqNorms []float64
	alpha   []float64
}

const (
	dualTol     = 1e-10
	dualMaxPass = 10000
)

func newL2(n int, c float64) *l2Program {
	return &l2Program{n: n, c: c}
}

func (p *l2Program) AddCut(delta []float64, rhs float64) {
	d := make([]float64, len(delta))
	copy(d, delta)
	p.cuts = append(p.cuts, d)
	p.rhs = append(p.rhs, rhs)
	p.sqNorms = append(p.sqNorms, floats.Dot(d, d))
	p.alpha = append(p.alpha, 0)
}

func (p *l2Program) NumCuts() int { return len(p.cuts) }

func (p *l2Program) Solve() ([]float64, float64, error) {
	w := make([]float64, p.n)
	if len(p.cuts) == 0 {
		return w, 0, nil
	}
	sum := 0.0
	for t, a := range p.alpha {
		if a != 0 {
			floats.AddScaled(w, a, p.cuts[t])
			sum += a
		}
	}
	for pass := 0; pass < dualMaxPass; pass++ {
		maxStep := 0.0
		for t := range p.cuts {
			if p.sqNorms[t] == 0 {
				continue
			}
			grad := p.rhs[t] - floats.Dot(w, p.cuts[t])
			next := p.alpha[t] + grad/p.sqNorms[t]
			if next < 0 {
				next = 0
			}
			// Keep the simplex constraint sum(alpha) <= C.
			if ceil := p.alpha[t] + (p.c - sum); next > ceil {
				next = ceil
			}
			diff := next - p.alpha[t]
			if diff == 0 {
				continue
			}
			p.alpha[t] = next
			sum += diff
			floats.AddScaled(w, diff, p.cuts[t])
			if s := math.Abs(diff); s > maxStep {
				maxStep = s
			}
		}
		if maxStep < dualTol {
			break
		}
	}
	slack := 0.0
	for t := range p.cuts {
		if v := p.rhs[t] - floats.Dot(w, p.cuts[t]); v > slack {
			slack = v
		}
	}
	return w, slack, nil
}

func (p *l2Program) Close() {
	p.cuts, p.rhs, p.sqNorms, p.alpha = nil, nil, nil, nil
}

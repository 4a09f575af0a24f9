package qp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// l1Program solves
//
//	min sum_i (w+_i + w-_i) + C*slack
//	s.t. (w+ - w-) . d_t + slack >= b_t  for every cut t
//	     w+, w-, slack >= 0
//
// with w_i = w+_i - w-_i. Each cut's delta is mirrored with flipped sign
// onto the w- block, and a surplus variable per cut turns the inequality
// into the standard equality form gonum's simplex expects.
type l1Program struct {
	n    int
	c    float64
	cuts [][]float64
	rhs  []float64
}

func newL1(n int, c float64) *l1Program {
	return &l1Program{n: n, c: c}
}

func (p *l1Program) AddCut(delta []float64, rhs float64) {
	d := make([]float64, len(delta))
	copy(d, delta)
	p.cuts = append(p.cuts, d)
	p.rhs = append(p.rhs, rhs)
}

func (p *l1Program) NumCuts() int { return len(p.cuts) }

func (p *l1Program) Solve() ([]float64, float64, error) {
	if len(p.cuts) == 0 {
		return make([]float64, p.n), 0, nil
	}
	rows := len(p.cuts)
	cols := 2*p.n + 1 + rows // w+ block, w- block, slack, surpluses

	obj := make([]float64, cols)
	for i := 0; i < 2*p.n; i++ {
		obj[i] = 1
	}
	obj[2*p.n] = p.c

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	for t, d := range p.cuts {
		for i, v := range d {
			a.Set(t, i, v)
			a.Set(t, p.n+i, -v) // mirror entry for the w- variable
		}
		a.Set(t, 2*p.n, 1)
		a.Set(t, 2*p.n+1+t, -1)
		b[t] = p.rhs[t]
	}

	_, x, err := lp.Simplex(obj, a, b, 0, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("qp: simplex failed: %w", err)
	}
	weights := make([]float64, p.n)
	for i := range weights {
		weights[i] = x[i] - x[p.n+i]
	}
	return weights, x[2*p.n], nil
}

func (p *l1Program) Close() {
	p.cuts, p.rhs = nil, nil
}

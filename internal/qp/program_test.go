package qp

import (
	"math"
	"testing"
)

func TestL2SingleCut(t *testing.T) {
	p := New(1, 1000, false)
	defer p.Close()

	p.AddCut([]float64{1}, 1)
	w, slack, err := p.Solve()
	if err != nil {
		t.Fatal(err)
	}
	// min 0.5w^2 + 1000s s.t. w + s >= 1 has the solution w=1, s=0.
	if math.Abs(w[0]-1) > 1e-6 {
		t.Errorf("w = %g, want 1", w[0])
	}
	if math.Abs(slack) > 1e-6 {
		t.Errorf("slack = %g, want 0", slack)
	}
}

func TestL2SlackAbsorbsInfeasibleCut(t *testing.T) {
	p := New(1, 2, false)
	defer p.Close()

	// A zero-delta cut cannot be satisfied by any weight; only slack can
	// absorb it.
	p.AddCut([]float64{0}, 5)
	w, slack, err := p.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if w[0] != 0 {
		t.Errorf("w = %g, want 0", w[0])
	}
	if math.Abs(slack-5) > 1e-6 {
		t.Errorf("slack = %g, want 5", slack)
	}
}

func TestL2SmallCRegularizes(t *testing.T) {
	p := New(1, 0.5, false)
	defer p.Close()

	p.AddCut([]float64{1}, 10)
	w, slack, err := p.Solve()
	if err != nil {
		t.Fatal(err)
	}
	// The dual variable saturates at C, so w = C*delta = 0.5 and the rest
	// of the margin goes to slack.
	if math.Abs(w[0]-0.5) > 1e-6 {
		t.Errorf("w = %g, want 0.5", w[0])
	}
	if math.Abs(slack-9.5) > 1e-6 {
		t.Errorf("slack = %g, want 9.5", slack)
	}
}

func TestL2CutsAccumulate(t *testing.T) {
	p := New(2, 1000, false)
	defer p.Close()

	p.AddCut([]float64{1, 0}, 1)
	if p.NumCuts() != 1 {
		t.Fatalf("NumCuts = %d, want 1", p.NumCuts())
	}
	if _, _, err := p.Solve(); err != nil {
		t.Fatal(err)
	}
	p.AddCut([]float64{0, 1}, 2)
	if p.NumCuts() != 2 {
		t.Fatalf("NumCuts = %d, want 2", p.NumCuts())
	}
	w, _, err := p.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(w[0]-1) > 1e-6 || math.Abs(w[1]-2) > 1e-6 {
		t.Errorf("w = %v, want [1 2]", w)
	}
}

func TestL2SolveWithoutCuts(t *testing.T) {
	p := New(3, 1000, false)
	defer p.Close()
	w, slack, err := p.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if slack != 0 {
		t.Errorf("slack = %g, want 0", slack)
	}
	for i, v := range w {
		if v != 0 {
			t.Errorf("w[%d] = %g, want 0", i, v)
		}
	}
}

func TestL1SingleCut(t *testing.T) {
	p := New(1, 1000, true)
	defer p.Close()

	p.AddCut([]float64{1}, 1)
	w, slack, err := p.Solve()
	if err != nil {
		t.Fatal(err)
	}
	// min |w| + 1000s s.t. w + s >= 1: paying w is cheaper than slack.
	if math.Abs(w[0]-1) > 1e-6 {
		t.Errorf("w = %g, want 1", w[0])
	}
	if math.Abs(slack) > 1e-6 {
		t.Errorf("slack = %g, want 0", slack)
	}
}

func TestL1NegativeWeight(t *testing.T) {
	p := New(1, 1000, true)
	defer p.Close()

	// The cut prefers a negative weight; the w- block must carry it.
	p.AddCut([]float64{-1}, 2)
	w, slack, err := p.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(w[0]+2) > 1e-6 {
		t.Errorf("w = %g, want -2", w[0])
	}
	if math.Abs(slack) > 1e-6 {
		t.Errorf("slack = %g, want 0", slack)
	}
}

func TestL1SmallCPrefersSlack(t *testing.T) {
	p := New(1, 0.5, true)
	defer p.Close()

	// With C < 1 the slack is cheaper than any weight mass.
	p.AddCut([]float64{1}, 4)
	w, slack, err := p.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(w[0]) > 1e-6 {
		t.Errorf("w = %g, want 0", w[0])
	}
	if math.Abs(slack-4) > 1e-6 {
		t.Errorf("slack = %g, want 4", slack)
	}
}

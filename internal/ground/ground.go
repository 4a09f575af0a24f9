// Package ground instantiates first-order clauses over the evidence domain
// and assembles the ground network the learner consumes.
//
// Evidence literals are simplified away during grounding: a grounding with
// a satisfied evidence literal is dropped (it can never be violated), and
// falsified evidence literals are removed from the constraint. Identical
// ground constraints produced by different groundings collapse into one
// constraint whose dependency map records, per originating clause, how many
// groundings collapsed into it. A clause whose initial weight is negative
// is rewritten to positive polarity, recorded as a negative frequency so
// that the counting and reconstruction passes can undo the flip.
package ground

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"marlin/internal/db"
	"marlin/internal/kb"
	"marlin/internal/mln"
)

// Grounder builds ground networks from a knowledge base and an evidence
// database.
type Grounder struct {
	base     *kb.Base
	evidence *db.Database
	logger   *zap.Logger
}

// New creates a grounder.
func New(base *kb.Base, evidence *db.Database, logger *zap.Logger) *Grounder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Grounder{base: base, evidence: evidence, logger: logger}
}

// groundLit is one literal of a grounding before atom interning.
type groundLit struct {
	key     string // canonical ground-atom key
	pred    string // predicate signature
	negated bool
}

// grounding is one surviving clause instantiation.
type grounding struct {
	lits     []groundLit
	inverted bool // clause weight polarity was flipped
}

// Ground instantiates every clause and returns the assembled network.
// Binding enumeration runs one goroutine per clause; the merge that interns
// atoms and collapses duplicate constraints is sequential so the result is
// deterministic.
func (g *Grounder) Ground(ctx context.Context) (*mln.Network, error) {
	domains, err := g.collectDomains()
	if err != nil {
		return nil, err
	}

	perClause := make([][]grounding, len(g.base.Clauses))
	eg, ctx := errgroup.WithContext(ctx)
	for idx := range g.base.Clauses {
		idx := idx
		eg.Go(func() error {
			gs, err := g.groundClause(ctx, g.base.Clauses[idx], domains)
			if err != nil {
				return err
			}
			perClause[idx] = gs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return g.merge(perClause)
}

// collectDomains merges the knowledge base's declared domains with the
// constants observed in the evidence database.
func (g *Grounder) collectDomains() (map[string][]string, error) {
	seen := make(map[string]map[string]struct{})
	for typ, consts := range g.base.Domains {
		seen[typ] = make(map[string]struct{})
		for _, c := range consts {
			seen[typ][c] = struct{}{}
		}
	}
	for _, fact := range g.evidence.Facts() {
		name := fact.Pred[:strings.IndexByte(fact.Pred, '/')]
		decl, ok := g.base.Decl(name)
		if !ok {
			return nil, fmt.Errorf("ground: evidence uses undeclared predicate %s", name)
		}
		if len(fact.Args) != len(decl.ArgTypes) {
			return nil, fmt.Errorf("ground: evidence atom %s has %d arguments, predicate %s declares %d",
				fact.Key(), len(fact.Args), name, len(decl.ArgTypes))
		}
		for i, c := range fact.Args {
			typ := decl.ArgTypes[i]
			if seen[typ] == nil {
				seen[typ] = make(map[string]struct{})
			}
			seen[typ][c] = struct{}{}
		}
	}
	domains := make(map[string][]string, len(seen))
	for typ, set := range seen {
		consts := make([]string, 0, len(set))
		for c := range set {
			consts = append(consts, c)
		}
		sort.Strings(consts)
		domains[typ] = consts
	}
	return domains, nil
}

// groundClause enumerates all variable bindings of one clause and
// simplifies each against the evidence.
func (g *Grounder) groundClause(ctx context.Context, clause kb.Clause, domains map[string][]string) ([]grounding, error) {
	vars, varTypes, err := clauseVars(g.base, clause)
	if err != nil {
		return nil, err
	}
	for _, v := range vars {
		if len(domains[varTypes[v]]) == 0 {
			return nil, fmt.Errorf("ground: clause %q: no constants of type %s", clause.String(), varTypes[v])
		}
	}

	inverted := !clause.Hard && clause.Weight < 0
	var out []grounding
	binding := make(map[string]string, len(vars))
	var enumerate func(i int) error
	enumerate = func(i int) error {
		if i == len(vars) {
			gr, keep, err := g.instantiate(clause, binding, inverted)
			if err != nil {
				return err
			}
			if keep {
				out = append(out, gr)
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, c := range domains[varTypes[vars[i]]] {
			binding[vars[i]] = c
			if err := enumerate(i + 1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := enumerate(0); err != nil {
		return nil, err
	}
	return out, nil
}

// instantiate applies one binding and simplifies evidence literals away.
func (g *Grounder) instantiate(clause kb.Clause, binding map[string]string, inverted bool) (grounding, bool, error) {
	lits := make([]groundLit, 0, len(clause.Lits))
	for _, lit := range clause.Lits {
		args := make([]string, len(lit.Args))
		for i, a := range lit.Args {
			if strings.HasPrefix(a, "/") {
				args[i] = a
			} else {
				args[i] = binding[a]
			}
		}
		sig := fmt.Sprintf("%s/%d", lit.Pred, len(args))
		key := db.AtomKey(lit.Pred, args)
		if g.evidence.Covers(sig) {
			truth := g.evidence.Truth(key)
			if truth == mln.Unknown {
				return grounding{}, false, fmt.Errorf("ground: evidence atom %s is unknown", key)
			}
			satisfied := (truth == mln.True) != lit.Negated
			if satisfied {
				return grounding{}, false, nil // trivially satisfied, drop
			}
			continue // falsified literal, remove
		}
		lits = append(lits, groundLit{key: key, pred: sig, negated: lit.Negated})
	}
	if len(lits) == 0 {
		if clause.Hard {
			g.logger.Warn("hard clause grounding falsified by evidence",
				zap.String("clause", clause.String()))
		}
		return grounding{}, false, nil
	}
	return grounding{lits: lits, inverted: inverted}, true, nil
}

// merge interns atoms, collapses duplicate constraints and builds the
// dependency map. perClause is indexed by clause index.
func (g *Grounder) merge(perClause [][]grounding) (*mln.Network, error) {
	clauses := make([]*mln.Clause, len(g.base.Clauses))
	for i, c := range g.base.Clauses {
		clauses[i] = &mln.Clause{Index: i, Hard: c.Hard, Text: c.String()}
	}

	atomIDs := make(map[string]int)
	var atoms []*mln.Atom
	intern := func(l groundLit) int {
		if id, ok := atomIDs[l.key]; ok {
			return id
		}
		id := len(atoms) + 1
		atomIDs[l.key] = id
		atoms = append(atoms, mln.NewAtom(id, l.pred, l.key))
		return id
	}

	type entry struct {
		constraint *mln.Constraint
		freqs      map[int]int
	}
	byKey := make(map[string]*entry)
	var order []*entry
	for clauseIdx, groundings := range perClause {
		for _, gr := range groundings {
			codes := make([]int, len(gr.lits))
			for i, l := range gr.lits {
				id := intern(l)
				if l.negated {
					id = -id
				}
				codes[i] = id
			}
			sorted := append([]int(nil), codes...)
			sort.Ints(sorted)
			key := fmt.Sprint(sorted)
			e, ok := byKey[key]
			if !ok {
				e = &entry{
					constraint: mln.NewConstraint(len(order), codes, 0),
					freqs:      make(map[int]int),
				}
				byKey[key] = e
				order = append(order, e)
			}
			if gr.inverted {
				e.freqs[clauseIdx]--
			} else {
				e.freqs[clauseIdx]++
			}
		}
	}

	constraints := make([]*mln.Constraint, len(order))
	deps := make(mln.Dependencies, len(order))
	for i, e := range order {
		constraints[i] = e.constraint
		deps[e.constraint.ID()] = e.freqs
	}
	g.logger.Info("grounding complete",
		zap.Int("clauses", len(clauses)),
		zap.Int("atoms", len(atoms)),
		zap.Int("constraints", len(constraints)))
	return mln.NewNetwork(clauses, atoms, constraints, deps)
}

// clauseVars returns the clause's variables in first-appearance order and
// their types.
func clauseVars(base *kb.Base, clause kb.Clause) ([]string, map[string]string, error) {
	var vars []string
	types := make(map[string]string)
	for _, lit := range clause.Lits {
		decl, _ := base.Decl(lit.Pred)
		for i, a := range lit.Args {
			if strings.HasPrefix(a, "/") {
				continue
			}
			typ := decl.ArgTypes[i]
			if prev, ok := types[a]; ok {
				if prev != typ {
					return nil, nil, fmt.Errorf("ground: variable %s used as both %s and %s", a, prev, typ)
				}
				continue
			}
			types[a] = typ
			vars = append(vars, a)
		}
	}
	return vars, types, nil
}

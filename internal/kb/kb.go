// Package kb parses marlin knowledge bases: predicate declarations, type
// domains, and first-order weighted clauses in clausal form.
//
// The surface syntax is line oriented:
//
//	// comment
//	person = { /anna, /bob, /edward }
//	smokes(person)
//	friends(person, person)
//
//	1.5   !smokes(x) v cancer(x)
//	!friends(x, y) v !smokes(x) v smokes(y).
//
// A line starting with a number is a soft clause with that initial weight.
// A line ending with a period is a hard clause. Everything else is a
// predicate declaration or, when it contains "=", a type domain. Constants
// are Mangle-style name constants (leading "/"), matching the evidence
// database format; lowercase bare identifiers in clause arguments are
// variables typed by the predicate declaration.
package kb

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PredDecl declares a predicate and the type of each argument position.
type PredDecl struct {
	Name     string
	ArgTypes []string
}

// Sig returns the predicate signature, e.g. "friends/2".
func (d PredDecl) Sig() string {
	return fmt.Sprintf("%s/%d", d.Name, len(d.ArgTypes))
}

// Literal is one signed literal of a clause. Args holds variables (bare
// lowercase identifiers) and constants (leading "/").
type Literal struct {
	Negated bool
	Pred    string
	Args    []string
}

func (l Literal) String() string {
	s := l.Pred + "(" + strings.Join(l.Args, ", ") + ")"
	if l.Negated {
		return "!" + s
	}
	return s
}

// Clause is a first-order disjunction with an initial weight. Hard clauses
// carry no weight and must always hold.
type Clause struct {
	Weight float64
	Hard   bool
	Lits   []Literal
}

func (c Clause) String() string {
	parts := make([]string, len(c.Lits))
	for i, l := range c.Lits {
		parts[i] = l.String()
	}
	return strings.Join(parts, " v ")
}

// Base is a parsed knowledge base.
type Base struct {
	Decls   []PredDecl
	Domains map[string][]string // type name -> constants
	Clauses []Clause
}

// Decl returns the declaration for a predicate name, or false.
func (b *Base) Decl(name string) (PredDecl, bool) {
	for _, d := range b.Decls {
		if d.Name == name {
			return d, true
		}
	}
	return PredDecl{}, false
}

// Load reads and parses a knowledge base file.
func Load(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("kb: %w", err)
	}
	base, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("kb: %s: %w", path, err)
	}
	return base, nil
}

// Parse parses knowledge base text.
func Parse(text string) (*Base, error) {
	base := &Base{Domains: make(map[string][]string)}
	for lineNo, raw := range strings.Split(text, "\n") {
		line := raw
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := base.parseLine(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
	}
	if len(base.Decls) == 0 {
		return nil, fmt.Errorf("no predicate declarations")
	}
	return base, nil
}

func (b *Base) parseLine(line string) error {
	if i := strings.Index(line, "="); i >= 0 && !strings.Contains(line[:i], "(") {
		return b.parseDomain(line[:i], line[i+1:])
	}
	hard := strings.HasSuffix(line, ".")
	if hard {
		return b.parseClause(strings.TrimSuffix(line, "."), 0, true)
	}
	fields := strings.Fields(line)
	if w, err := strconv.ParseFloat(fields[0], 64); err == nil {
		return b.parseClause(strings.TrimSpace(line[len(fields[0]):]), w, false)
	}
	return b.parseDecl(line)
}

func (b *Base) parseDomain(name, body string) error {
	name = strings.TrimSpace(name)
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		return fmt.Errorf("domain %s: expected { /const, ... }", name)
	}
	if _, ok := b.Domains[name]; ok {
		return fmt.Errorf("domain %s declared twice", name)
	}
	var consts []string
	for _, c := range strings.Split(body[1:len(body)-1], ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !strings.HasPrefix(c, "/") {
			return fmt.Errorf("domain %s: constant %q must start with /", name, c)
		}
		consts = append(consts, c)
	}
	if len(consts) == 0 {
		return fmt.Errorf("domain %s is empty", name)
	}
	b.Domains[name] = consts
	return nil
}

func (b *Base) parseDecl(line string) error {
	name, args, err := splitAtom(line)
	if err != nil {
		return err
	}
	if _, ok := b.Decl(name); ok {
		return fmt.Errorf("predicate %s declared twice", name)
	}
	b.Decls = append(b.Decls, PredDecl{Name: name, ArgTypes: args})
	return nil
}

func (b *Base) parseClause(body string, weight float64, hard bool) error {
	var lits []Literal
	for _, part := range strings.Split(body, " v ") {
		part = strings.TrimSpace(part)
		neg := strings.HasPrefix(part, "!")
		if neg {
			part = strings.TrimSpace(part[1:])
		}
		name, args, err := splitAtom(part)
		if err != nil {
			return err
		}
		decl, ok := b.Decl(name)
		if !ok {
			return fmt.Errorf("clause uses undeclared predicate %s", name)
		}
		if len(args) != len(decl.ArgTypes) {
			return fmt.Errorf("predicate %s expects %d arguments, got %d", name, len(decl.ArgTypes), len(args))
		}
		lits = append(lits, Literal{Negated: neg, Pred: name, Args: args})
	}
	if len(lits) == 0 {
		return fmt.Errorf("empty clause")
	}
	b.Clauses = append(b.Clauses, Clause{Weight: weight, Hard: hard, Lits: lits})
	return nil
}

func splitAtom(s string) (name string, args []string, err error) {
	open := strings.Index(s, "(")
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", nil, fmt.Errorf("malformed atom %q", s)
	}
	name = strings.TrimSpace(s[:open])
	for _, a := range strings.Split(s[open+1:len(s)-1], ",") {
		a = strings.TrimSpace(a)
		if a == "" {
			return "", nil, fmt.Errorf("malformed atom %q", s)
		}
		args = append(args, a)
	}
	return name, args, nil
}

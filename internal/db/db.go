// Package db reads evidence and training databases. A database file holds
// one ground Mangle atom per line:
//
//	smokes(/anna).
//	friends(/anna, /bob).
//	? cancer(/edward).
//
// Databases are closed world: an atom of a covered predicate that is not
// listed is false. A leading "?" marks an atom whose truth is unknown;
// such atoms may appear in query databases but not in a training database.
package db

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/mangle/parse"

	"marlin/internal/mln"
)

// Fact is one ground atom from a database file.
type Fact struct {
	Pred string   // predicate signature, e.g. "friends/2"
	Args []string // name constants, e.g. "/anna"
}

// Key returns the canonical ground-atom key for this fact.
func (f Fact) Key() string {
	name := f.Pred
	if i := strings.IndexByte(name, '/'); i >= 0 {
		name = name[:i]
	}
	return AtomKey(name, f.Args)
}

// AtomKey builds the canonical ground-atom key shared by databases and the
// grounder: predicate name followed by the comma-joined constants.
func AtomKey(pred string, args []string) string {
	return pred + "(" + strings.Join(args, ",") + ")"
}

// Database is a closed-world set of ground facts.
type Database struct {
	facts   []Fact
	truth   map[string]mln.Truth // atom key -> True or Unknown
	covered map[string]struct{}  // predicate signatures present in the file
}

// Load reads and parses a database file.
func Load(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	d, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("db: %s: %w", path, err)
	}
	return d, nil
}

// Parse parses database text.
func Parse(text string) (*Database, error) {
	d := &Database{
		truth:   make(map[string]mln.Truth),
		covered: make(map[string]struct{}),
	}
	for lineNo, raw := range strings.Split(text, "\n") {
		line := raw
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		truth := mln.True
		if strings.HasPrefix(line, "?") {
			truth = mln.Unknown
			line = strings.TrimSpace(line[1:])
		}
		fact, err := parseFact(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
		key := fact.Key()
		if _, dup := d.truth[key]; dup {
			return nil, fmt.Errorf("line %d: duplicate fact %s", lineNo+1, key)
		}
		d.truth[key] = truth
		d.covered[fact.Pred] = struct{}{}
		d.facts = append(d.facts, fact)
	}
	return d, nil
}

func parseFact(line string) (Fact, error) {
	line = strings.TrimSuffix(line, ".")
	atom, err := parse.Atom(line)
	if err != nil {
		return Fact{}, fmt.Errorf("malformed fact %q: %w", line, err)
	}
	args := make([]string, len(atom.Args))
	for i, arg := range atom.Args {
		args[i] = arg.String()
		if !strings.HasPrefix(args[i], "/") {
			return Fact{}, fmt.Errorf("fact %q: argument %s is not a name constant", line, args[i])
		}
	}
	return Fact{
		Pred: fmt.Sprintf("%s/%d", atom.Predicate.Symbol, len(atom.Args)),
		Args: args,
	}, nil
}

// Facts returns every atom listed in the database, in file order.
func (d *Database) Facts() []Fact { return d.facts }

// Covers reports whether the database lists any atom of the given
// predicate signature.
func (d *Database) Covers(sig string) bool {
	_, ok := d.covered[sig]
	return ok
}

// Signatures returns the covered predicate signatures.
func (d *Database) Signatures() []string {
	sigs := make([]string, 0, len(d.covered))
	for s := range d.covered {
		sigs = append(sigs, s)
	}
	return sigs
}

// Truth returns the closed-world truth of an atom key: True or Unknown when
// listed, False otherwise.
func (d *Database) Truth(key string) mln.Truth {
	if t, ok := d.truth[key]; ok {
		return t
	}
	return mln.False
}

// Package export writes the learned theory back out in the knowledge base
// surface syntax: the unmodified predicate schema, then one line per
// clause. Hard clauses come out unweighted with their trailing period,
// soft clauses with the learned weight in fixed-precision decimal.
package export

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"marlin/internal/kb"
	"marlin/internal/mln"
)

// WriteTheory writes the schema and the clauses with their learned weights.
// clauses is the network's clause list, indexed by clause index.
func WriteTheory(w io.Writer, base *kb.Base, clauses []*mln.Clause) error {
	types := make([]string, 0, len(base.Domains))
	for t := range base.Domains {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		if _, err := fmt.Fprintf(w, "%s = { %s }\n", t, strings.Join(base.Domains[t], ", ")); err != nil {
			return err
		}
	}
	for _, d := range base.Decls {
		if _, err := fmt.Fprintf(w, "%s(%s)\n", d.Name, strings.Join(d.ArgTypes, ", ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, c := range clauses {
		var err error
		if c.Hard {
			_, err = fmt.Fprintf(w, "%s.\n", c.Text)
		} else {
			_, err = fmt.Fprintf(w, "%.5f  %s\n", c.Weight, c.Text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteTheoryFile writes the theory to a file.
func WriteTheoryFile(path string, base *kb.Base, clauses []*mln.Clause) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := WriteTheory(f, base, clauses); err != nil {
		f.Close()
		return fmt.Errorf("export: %s: %w", path, err)
	}
	return f.Close()
}

// Package tokens holds the substitution-variable table, the named template
// registry, and the textual expansion engine that turns templates plus
// values into concrete path strings.
package tokens

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/pipelab/multishot/api"
)

// VersionToken is the token name the version override binds to.
const VersionToken = "ver"

type tokenEntry struct {
	def     api.TokenDef
	pattern *regexp.Regexp // nil when the token is unconstrained
	values  map[string]struct{}
}

// Table is the validated set of declared tokens. It is immutable once
// built; a config reload constructs a fresh table and swaps it wholesale.
type Table struct {
	entries map[string]tokenEntry
}

// NewTable compiles token declarations into a lookup table.
// A declaration with an uncompilable pattern fails the whole table.
func NewTable(defs map[string]api.TokenDef) (*Table, error) {
	entries := make(map[string]tokenEntry, len(defs))
	for name, def := range defs {
		e := tokenEntry{def: def}
		if def.Pattern != "" {
			re, err := regexp.Compile(def.Pattern)
			if err != nil {
				return nil, fmt.Errorf("token %q pattern: %w", name, err)
			}
			e.pattern = re
		}
		if len(def.Values) > 0 {
			e.values = make(map[string]struct{}, len(def.Values))
			for _, v := range def.Values {
				e.values[v] = struct{}{}
			}
		}
		entries[name] = e
	}
	return &Table{entries: entries}, nil
}

// Has reports whether the token is declared.
func (t *Table) Has(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Names returns all declared token names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the declaration for a token, if present.
func (t *Table) Describe(name string) (api.TokenDef, bool) {
	e, ok := t.entries[name]
	return e.def, ok
}

// Validate checks a concrete value against the token's declaration.
// Undeclared tokens and constraint misses both return descriptive errors;
// a declared token with no constraints accepts anything.
func (t *Table) Validate(name, value string) error {
	e, ok := t.entries[name]
	if !ok {
		return fmt.Errorf("token %q is not declared", name)
	}
	if e.pattern != nil {
		if m := e.pattern.FindString(value); m != value {
			return fmt.Errorf("token %q: value %q does not match pattern %q", name, value, e.def.Pattern)
		}
	}
	if e.values != nil {
		if _, ok := e.values[value]; !ok {
			return fmt.Errorf("token %q: value %q is not one of the allowed values", name, value)
		}
	}
	return nil
}

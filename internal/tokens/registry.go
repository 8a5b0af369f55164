package tokens

import (
	"errors"
	"fmt"
	"sort"
)

// ErrTemplateNotFound is wrapped by Registry.Get for unknown names.
var ErrTemplateNotFound = errors.New("template not found")

// Registry holds named path templates, each validated against the token
// table at registration time: a template using an undeclared token is
// rejected up front rather than failing at first expansion.
type Registry struct {
	table     *Table
	templates map[string]string
}

func NewRegistry(table *Table) *Registry {
	return &Registry{
		table:     table,
		templates: make(map[string]string),
	}
}

// Add registers a template under a name. Every $token placeholder must be
// declared in the table; the error names both the template and the first
// offending token.
func (r *Registry) Add(name, raw string) error {
	for _, tok := range ExtractTokens(raw) {
		if !r.table.Has(tok) {
			return fmt.Errorf("template %q references undeclared token %q", name, tok)
		}
	}
	r.templates[name] = raw
	return nil
}

// Get returns the raw template string for a name.
func (r *Registry) Get(name string) (string, error) {
	raw, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return raw, nil
}

// Names returns all registered template names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

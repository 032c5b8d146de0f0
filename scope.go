package mathexpr

import "sort"

// Scope is a set of variables for evaluating an expression. Assignments in
// expressions write to the scope.
type Scope interface {
	// Get returns the value of a variable and whether it is defined.
	Get(name string) (any, bool)
	// Set defines or redefines a variable.
	Set(name string, v any)
	// Keys returns the names of all defined variables.
	Keys() []string
}

// MapScope is a Scope backed by a map.
type MapScope map[string]any

func (m MapScope) Get(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

func (m MapScope) Set(name string, v any) {
	m[name] = v
}

func (m MapScope) Keys() []string {
	r := make([]string, 0, len(m))
	for k := range m {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// childScope reads through to its parent and writes locally.
type childScope struct {
	parent Scope
	vars   MapScope
}

// NewChildScope creates a scope whose lookups fall back to parent and whose
// assignments do not affect parent.
func NewChildScope(parent Scope) Scope {
	return &childScope{parent: parent, vars: MapScope{}}
}

func (s *childScope) Get(name string) (any, bool) {
	if v, ok := s.vars[name]; ok {
		return v, true
	}
	return s.parent.Get(name)
}

func (s *childScope) Set(name string, v any) {
	s.vars[name] = v
}

func (s *childScope) Keys() []string {
	r := s.parent.Keys()
	for k := range s.vars {
		if _, ok := s.parent.Get(k); !ok {
			r = append(r, k)
		}
	}
	sort.Strings(r)
	return r
}

// keywords is the set of reserved names. They may not be assigned in
// expressions or defined in scopes passed to Evaluate.
var keywords = map[string]bool{
	"end": true,
}

// Keywords returns the reserved names in sorted order.
func Keywords() []string {
	r := make([]string, 0, len(keywords))
	for k := range keywords {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// IsKeyword reports whether name is reserved.
func IsKeyword(name string) bool {
	return keywords[name]
}

// ValidateScope returns a *ReservedError if s defines any keyword.
func ValidateScope(s Scope) error {
	for _, k := range s.Keys() {
		if keywords[k] {
			return &ReservedError{Name: k}
		}
	}
	return nil
}

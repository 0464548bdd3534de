package lang

import (
	"sort"

	"github.com/simonNozaki/koys/ast"
)

// Binding is a name's current value plus whether it may be reassigned.
type Binding struct {
	Value   Value
	Mutable bool
}

// Scope is one store in a chain of variable scopes.
type Scope struct {
	parent   *Scope
	bindings map[string]*Binding
}

// NewScope creates a scope with optional parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:   parent,
		bindings: make(map[string]*Binding),
	}
}

// FindScope returns the nearest scope, starting at s, that owns name, or nil.
func (s *Scope) FindScope(name string) *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.bindings[name]; ok {
			return cur
		}
	}
	return nil
}

// Lookup retrieves a binding's value, searching parents if necessary.
func (s *Scope) Lookup(name string) (Value, bool) {
	owner := s.FindScope(name)
	if owner == nil {
		return Value{}, false
	}
	return owner.bindings[name].Value, true
}

// DeclareImmutable binds name in this scope only, replacing any earlier binding.
func (s *Scope) DeclareImmutable(name string, val Value) {
	s.bindings[name] = &Binding{Value: val}
}

// DeclareMutable binds a reassignable name in this scope only.
func (s *Scope) DeclareMutable(name string, val Value) {
	s.bindings[name] = &Binding{Value: val, Mutable: true}
}

// Assign updates an existing binding in the scope that owns it.
func (s *Scope) Assign(name string, val Value) error {
	owner := s.FindScope(name)
	if owner == nil {
		return newError(UnboundName, "%s is not declared", name)
	}
	b := owner.bindings[name]
	if !b.Mutable {
		return newError(ImmutableAssignment, "%s is declared immutable; declare it with mutable let to reassign", name)
	}
	b.Value = val
	return nil
}

// Parent returns the enclosing scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Depth counts the links between s and the root scope.
func (s *Scope) Depth() int {
	n := 0
	for cur := s.parent; cur != nil; cur = cur.parent {
		n++
	}
	return n
}

// Snapshot copies the values bound directly in this scope.
func (s *Scope) Snapshot() map[string]Value {
	out := make(map[string]Value, len(s.bindings))
	for name, b := range s.bindings {
		out[name] = b.Value
	}
	return out
}

// FunctionTable is the flat, global table of named functions.
type FunctionTable struct {
	defs map[string]*ast.FunctionDefinition
}

// NewFunctionTable returns an empty table.
func NewFunctionTable() *FunctionTable {
	return &FunctionTable{defs: make(map[string]*ast.FunctionDefinition)}
}

// Define registers def under name. Redefinition silently replaces.
func (t *FunctionTable) Define(name string, def *ast.FunctionDefinition) {
	t.defs[name] = def
}

// Get returns the definition registered under name.
func (t *FunctionTable) Get(name string) (*ast.FunctionDefinition, bool) {
	def, ok := t.defs[name]
	return def, ok
}

// Lookup is Get that fails with UnknownFunction.
func (t *FunctionTable) Lookup(name string) (*ast.FunctionDefinition, error) {
	def, ok := t.defs[name]
	if !ok {
		return nil, newError(UnknownFunction, "function %s is not defined", name)
	}
	return def, nil
}

// Names lists the defined functions in sorted order.
func (t *FunctionTable) Names() []string {
	names := make([]string, 0, len(t.defs))
	for name := range t.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

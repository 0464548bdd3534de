package lang

import (
	"errors"
	"strings"
	"testing"

	"github.com/simonNozaki/koys/ast"
)

func TestScopeFindScopeReturnsNearestOwner(t *testing.T) {
	root := NewScope(nil)
	root.DeclareMutable("x", IntValue(1))
	root.DeclareImmutable("y", IntValue(10))
	mid := NewScope(root)
	mid.DeclareMutable("x", IntValue(2))
	leaf := NewScope(mid)

	if got := leaf.FindScope("x"); got != mid {
		t.Fatalf("expected x to resolve to the middle scope")
	}
	if got := leaf.FindScope("y"); got != root {
		t.Fatalf("expected y to resolve to the root scope")
	}
	if got := leaf.FindScope("missing"); got != nil {
		t.Fatalf("expected nil for unbound name, got %v", got)
	}
	if leaf.Parent() != mid || mid.Parent() != root || root.Parent() != nil {
		t.Fatalf("expected Parent to expose enclosing scopes")
	}
	if leaf.Depth() != 2 || root.Depth() != 0 {
		t.Fatalf("unexpected depths leaf=%d root=%d", leaf.Depth(), root.Depth())
	}
}

func TestScopeAssignMutatesOwningScope(t *testing.T) {
	root := NewScope(nil)
	root.DeclareMutable("counter", IntValue(1))
	child := NewScope(root)

	if err := child.Assign("counter", IntValue(2)); err != nil {
		t.Fatalf("Assign should update parent binding: %v", err)
	}
	if _, ok := child.Snapshot()["counter"]; ok {
		t.Fatalf("assignment must not shadow the binding in the child scope")
	}
	val, ok := root.Lookup("counter")
	if !ok || !val.Equal(IntValue(2)) {
		t.Fatalf("expected root counter updated to 2, got %v", val)
	}
}

func TestScopeAssignErrors(t *testing.T) {
	root := NewScope(nil)
	root.DeclareImmutable("fixed", IntValue(1))
	child := NewScope(root)

	err := child.Assign("fixed", IntValue(2))
	if !errors.Is(err, ErrImmutableAssignment) {
		t.Fatalf("expected immutable assignment error, got %v", err)
	}
	if val, _ := root.Lookup("fixed"); !val.Equal(IntValue(1)) {
		t.Fatalf("immutable binding changed to %v", val)
	}

	err = child.Assign("missing", IntValue(0))
	if !errors.Is(err, ErrUnboundName) || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("expected unbound name error naming the variable, got %v", err)
	}
}

func TestScopeRedeclarationOverwrites(t *testing.T) {
	s := NewScope(nil)
	s.DeclareImmutable("x", IntValue(1))
	s.DeclareMutable("x", IntValue(2))
	if err := s.Assign("x", IntValue(3)); err != nil {
		t.Fatalf("redeclared mutable binding should be assignable: %v", err)
	}
	s.DeclareImmutable("x", IntValue(4))
	if err := s.Assign("x", IntValue(5)); !errors.Is(err, ErrImmutableAssignment) {
		t.Fatalf("expected immutable after redeclaration, got %v", err)
	}
}

func TestFunctionTable(t *testing.T) {
	table := NewFunctionTable()
	if _, err := table.Lookup("f"); !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("expected unknown function, got %v", err)
	}
	first := ast.DefineFunc("f", nil, ast.Int(1))
	second := ast.DefineFunc("f", nil, ast.Int(2))
	table.Define("f", first)
	table.Define("f", second)
	table.Define("a", first)
	def, err := table.Lookup("f")
	if err != nil || def != second {
		t.Fatalf("expected redefinition to replace, got %v err=%v", def, err)
	}
	if names := table.Names(); len(names) != 2 || names[0] != "a" || names[1] != "f" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestValueNarrowing(t *testing.T) {
	if _, err := IntValue(1).AsBool(); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected type mismatch narrowing int to bool, got %v", err)
	}
	if _, err := TextValue("a").AsInt(); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected type mismatch narrowing text to int, got %v", err)
	}
	if _, err := (Value{}).AsSequence(); err == nil {
		t.Fatal("expected zero value to fail narrowing")
	}
	if i, err := IntValue(7).AsInt(); err != nil || i != 7 {
		t.Fatalf("AsInt => %d, %v", i, err)
	}
	items, err := SequenceValue(IntValue(1), IntValue(2)).AsSequence()
	if err != nil || len(items) != 2 {
		t.Fatalf("AsSequence => %v, %v", items, err)
	}
	fn, err := FunctionValue([]string{"a"}, ast.Block()).AsFunction()
	if err != nil || len(fn.Params) != 1 {
		t.Fatalf("AsFunction => %v, %v", fn, err)
	}
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want Value
	}{
		{"int", 3, IntValue(3)},
		{"int64", int64(-4), IntValue(-4)},
		{"bool", true, BoolValue(true)},
		{"string", "hi", TextValue("hi")},
		{"values", []Value{IntValue(1)}, SequenceValue(IntValue(1))},
		{"nested", []interface{}{1, []interface{}{"a"}}, SequenceValue(IntValue(1), SequenceValue(TextValue("a")))},
		{"mapping", map[string]interface{}{"k": false}, MappingValue(map[string]Value{"k": BoolValue(false)})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Of(tt.raw)
			if err != nil {
				t.Fatalf("Of(%v) error: %v", tt.raw, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("Of(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}

	if _, err := Of(3.5); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected float to be rejected, got %v", err)
	}
}

func TestValueStructuralEquality(t *testing.T) {
	if !SetValue(IntValue(1), IntValue(2)).Equal(SetValue(IntValue(2), IntValue(1))) {
		t.Fatal("sets should compare regardless of order")
	}
	if SequenceValue(IntValue(1), IntValue(2)).Equal(SequenceValue(IntValue(2), IntValue(1))) {
		t.Fatal("sequences should compare in order")
	}
	a := MappingValue(map[string]Value{"x": SequenceValue(IntValue(1)), "y": TextValue("s")})
	b := MappingValue(map[string]Value{"y": TextValue("s"), "x": SequenceValue(IntValue(1))})
	if !a.Equal(b) {
		t.Fatal("mappings with equal entries should be equal")
	}
	if a.Equal(MappingValue(map[string]Value{"x": SequenceValue(IntValue(1))})) {
		t.Fatal("mappings with different sizes should differ")
	}
	if IntValue(1).Equal(TextValue("1")) {
		t.Fatal("values of different types are never equal")
	}
	body := ast.Block(ast.Ident("a"))
	if !FunctionValue([]string{"a"}, body).Equal(FunctionValue([]string{"a"}, body)) {
		t.Fatal("functions with the same params and body should be equal")
	}
}

func TestSetValueDeduplicatesStructurally(t *testing.T) {
	set := SetValue(
		SequenceValue(IntValue(1), IntValue(2)),
		SequenceValue(IntValue(1), IntValue(2)),
		IntValue(3),
	)
	items, err := set.AsSet()
	if err != nil {
		t.Fatalf("AsSet error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 distinct members, got %d (%v)", len(items), set)
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		val  Value
		want string
	}{
		{IntValue(-5), "-5"},
		{BoolValue(false), "false"},
		{TextValue("a\"b"), `"a\"b"`},
		{SequenceValue(IntValue(1), TextValue("x")), `[1, "x"]`},
		{SetValue(IntValue(1), IntValue(2)), "%{1, 2}"},
		{MappingValue(map[string]Value{"b": IntValue(2), "a": IntValue(1)}), "#{a: 1, b: 2}"},
		{FunctionValue([]string{"a", "b"}, ast.Block()), "<fn(a, b)>"},
		{Value{}, "<invalid>"},
	}
	for _, tt := range tests {
		if got := tt.val.String(); got != tt.want {
			t.Fatalf("String() = %q, want %q", got, tt.want)
		}
	}
	if got := TextValue("plain").Display(); got != "plain" {
		t.Fatalf("Display should not quote text, got %q", got)
	}
	if got := SequenceValue(TextValue("a")).Display(); got != `["a"]` {
		t.Fatalf("Display of nested text should quote, got %q", got)
	}
}

func TestErrorKindMatching(t *testing.T) {
	err := newError(DivisionByZero, "1 / 0")
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected errors.Is to match kind")
	}
	if errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("different kinds must not match")
	}
	if kind, ok := KindOf(err); !ok || kind != DivisionByZero {
		t.Fatalf("KindOf => %v, %v", kind, ok)
	}
	if got := err.Error(); got != "division by zero: 1 / 0" {
		t.Fatalf("unexpected message %q", got)
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Fatalf("plain errors have no kind")
	}
}

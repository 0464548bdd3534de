package parser

import (
	"strings"
	"testing"

	"github.com/simonNozaki/koys/ast"
)

func TestParseFunction(t *testing.T) {
	src := `
fn fact(n) {
	if (n < 2) {
		1
	} else {
		n * fact(n - 1)
	}
}
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(prog.Definitions) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(prog.Definitions))
	}
	fn, ok := prog.Definitions[0].(*ast.FunctionDefinition)
	if !ok {
		t.Fatalf("expected FunctionDefinition, got %T", prog.Definitions[0])
	}
	if fn.Name != "fact" {
		t.Fatalf("expected function name fact, got %s", fn.Name)
	}
	if len(fn.Params) != 1 || fn.Params[0] != "n" {
		t.Fatalf("expected single parameter n, got %v", fn.Params)
	}
	if len(fn.Body.Elements) != 1 {
		t.Fatalf("expected 1 element in body, got %d", len(fn.Body.Elements))
	}
	ifExpr, ok := fn.Body.Elements[0].(*ast.IfExpr)
	if !ok {
		t.Fatalf("expected body to be an IfExpr, got %T", fn.Body.Elements[0])
	}
	if ifExpr.Else == nil {
		t.Fatalf("expected else branch")
	}
	want := "{ if ((n < 2)) { 1 } else { (n * fact((n - 1))) } }"
	if got := fn.Body.String(); got != want {
		t.Fatalf("body = %s, want %s", got, want)
	}
	if fn.Pos().Line != 2 || fn.Pos().Column != 1 {
		t.Fatalf("unexpected position %v", fn.Pos())
	}
}

func TestParseTopLevelDefinitions(t *testing.T) {
	src := `
let x = 1
mutable let y = 2;
fn main() { x + y }
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(prog.Definitions) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(prog.Definitions))
	}
	x, ok := prog.Definitions[0].(*ast.ValueDefinition)
	if !ok || x.Name != "x" || x.Mutable {
		t.Fatalf("expected immutable x, got %#v", prog.Definitions[0])
	}
	y, ok := prog.Definitions[1].(*ast.ValueDefinition)
	if !ok || y.Name != "y" || !y.Mutable {
		t.Fatalf("expected mutable y, got %#v", prog.Definitions[1])
	}
	if _, ok := prog.Definitions[2].(*ast.FunctionDefinition); !ok {
		t.Fatalf("expected main definition, got %T", prog.Definitions[2])
	}
}

func TestParseExpressions(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"10 % 3 / 2", "((10 % 3) / 2)"},
		{"a < b == true", "((a < b) == true)"},
		{"a >= 1 != b <= 2", "((a >= 1) != (b <= 2))"},
		{"a || b && c", "(a || (b && c))"},
		{"-5", "-5"},
		{"-x", "(0 - x)"},
		{"x * -3", "(x * -3)"},
		{"-9223372036854775808", "-9223372036854775808"},
		{"i++", "i++"},
		{"--i", "--i"},
		{"x = y = 1", "x = y = 1"},
		{"let x = 1", "let x = 1"},
		{"mutable let x = 1", "mutable let x = 1"},
		{"[1, 2,]", "[1, 2]"},
		{"[]", "[]"},
		{"%{1, 2}", "%{1, 2}"},
		{`#{a: 1, "b c": 2}`, "#{a: 1, b c: 2}"},
		{"fn(a) { a }", "fn(a) { a }"},
		{"add(1, 2)", "add(1, 2)"},
		{"add([a=1, b=2])", "add([a=1, b=2])"},
		{"first([1, 2])", "first([1, 2])"},
		{"f()", "f()"},
		{`println("hi")`, `println("hi")`},
		{"if (a) 1 else 2", "if (a) 1 else 2"},
		{"if (a) 1", "if (a) 1"},
		{"if (a) 1 else if (b) 2 else 3", "if (a) 1 else if (b) 2 else 3"},
		{"while (i < 3) i++", "while ((i < 3)) i++"},
		{"{}", "{}"},
		{"{ let a = 1; a }", "{ let a = 1; a }"},
		{"x == %{1}", "(x == %{1})"},
	}

	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			expr, err := ParseExpr(tc.src)
			if err != nil {
				t.Fatalf("ParseExpr(%q) error: %v", tc.src, err)
			}
			if got := expr.String(); got != tc.want {
				t.Fatalf("ParseExpr(%q) = %s, want %s", tc.src, got, tc.want)
			}
		})
	}
}

func TestParseElseOnNextLine(t *testing.T) {
	src := `
if (a) {
	1
}
else {
	2
}
`
	expr, err := ParseExpr(src)
	if err != nil {
		t.Fatalf("ParseExpr returned error: %v", err)
	}
	if got, want := expr.String(), "if (a) { 1 } else { 2 }"; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseMultiLineLiterals(t *testing.T) {
	src := `
let config = #{
	name: "koy",
	tags: %{
		"a",
		"b"
	},
	sizes: [
		1,
		2
	]
}
`
	expr, err := ParseExpr(src)
	if err != nil {
		t.Fatalf("ParseExpr returned error: %v", err)
	}
	decl, ok := expr.(*ast.Declaration)
	if !ok {
		t.Fatalf("expected declaration, got %T", expr)
	}
	obj, ok := decl.Expr.(*ast.ObjectLiteral)
	if !ok || len(obj.Properties) != 3 {
		t.Fatalf("expected 3-property object literal, got %s", decl.Expr)
	}
	if obj.Properties[1].Key != "tags" {
		t.Fatalf("expected properties in source order, got %s", obj)
	}
}

func TestParseLabeledCallArguments(t *testing.T) {
	expr, err := ParseExpr("sub([b = 1, a = 10 + 1])")
	if err != nil {
		t.Fatalf("ParseExpr returned error: %v", err)
	}
	call, ok := expr.(*ast.LabeledCall)
	if !ok {
		t.Fatalf("expected LabeledCall, got %T", expr)
	}
	if call.Name != "sub" || len(call.Args) != 2 {
		t.Fatalf("unexpected call %s", call)
	}
	if call.Args[0].Name != "b" || call.Args[1].Name != "a" {
		t.Fatalf("labels should keep source order, got %s", call)
	}
	if _, ok := call.Args[1].Parameter.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected binary argument, got %T", call.Args[1].Parameter)
	}
}

func TestParsePositions(t *testing.T) {
	expr, err := ParseExpr("\n  foo + 1")
	if err != nil {
		t.Fatalf("ParseExpr returned error: %v", err)
	}
	bin := expr.(*ast.BinaryExpr)
	if pos := bin.Lhs.Pos(); pos.Line != 2 || pos.Column != 3 {
		t.Fatalf("expected foo at 2:3, got %v", pos)
	}
	if pos := bin.Pos(); pos.Line != 2 || pos.Column != 7 {
		t.Fatalf("expected operator at 2:7, got %v", pos)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name       string
		src        string
		expr       bool
		wantErr    string
		incomplete bool
	}{
		{name: "open block", src: "fn main() {", wantErr: "expected }", incomplete: true},
		{name: "open params", src: "fn f(a, b", wantErr: "expected )", incomplete: true},
		{name: "dangling operator", src: "let x = 1 +", wantErr: "end of input", incomplete: true},
		{name: "open string", src: `let s = "abc`, wantErr: "unterminated string", incomplete: true},
		{name: "expression at top level", src: "1 + 2", wantErr: "expected fn or let at top level"},
		{name: "missing name", src: "let = 1", wantErr: "expected identifier"},
		{name: "duplicate parameter", src: "fn f(a, a) {}", wantErr: "duplicate parameter a"},
		{name: "duplicate label", src: "f([a=1, a=2])", expr: true, wantErr: "duplicate label a"},
		{name: "out of range", src: "99999999999999999999", expr: true, wantErr: "out of range"},
		{name: "trailing tokens", src: "1 2", expr: true, wantErr: "after expression"},
		{name: "bad mapping key", src: "#{1: 2}", expr: true, wantErr: "expected mapping key"},
		{name: "if without parens", src: "if a { 1 }", expr: true, wantErr: "expected ("},
		{name: "unclosed block element", src: "{ 1 2 }", expr: true, wantErr: "expected ; or }"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var err error
			if tc.expr {
				_, err = ParseExpr(tc.src)
			} else {
				_, err = Parse(tc.src)
			}
			if err == nil {
				t.Fatalf("expected error for %q", tc.src)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
			if !strings.HasPrefix(err.Error(), "input:") {
				t.Fatalf("expected positioned error, got %v", err)
			}
			if IsIncomplete(err) != tc.incomplete {
				t.Fatalf("IsIncomplete(%v) = %v, want %v", err, IsIncomplete(err), tc.incomplete)
			}
		})
	}
}

package runtime

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonNozaki/koys/lang"
	"github.com/simonNozaki/koys/parser"
)

func newTestEvaluator(t *testing.T, cfg Config) (*lang.Evaluator, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, logs bytes.Buffer
	return NewEvaluator(cfg, &out, &logs), &out, &logs
}

func runProgram(t *testing.T, src string) (lang.Value, *lang.Evaluator, string) {
	t.Helper()
	ev, out, _ := newTestEvaluator(t, DefaultConfig())
	val, err := EvaluateString(ev, src)
	require.NoError(t, err)
	return val, ev, out.String()
}

func runProgramError(t *testing.T, src string, kind lang.ErrorKind) error {
	t.Helper()
	ev, _, _ := newTestEvaluator(t, DefaultConfig())
	_, err := EvaluateString(ev, src)
	require.Error(t, err)
	got, ok := lang.KindOf(err)
	require.True(t, ok, "expected a koy error, got %v", err)
	require.Equal(t, kind, got, "unexpected error: %v", err)
	return err
}

func TestScenarioDeclarationsAndAssignment(t *testing.T) {
	val, ev, _ := runProgram(t, `
fn main() {
	let x = 1
	mutable let y = 2
	y = y + x
}
`)
	assert.True(t, val.Equal(lang.IntValue(3)))
	y, ok := ev.LookupVariable("y")
	require.True(t, ok)
	assert.True(t, y.Equal(lang.IntValue(3)), "y = %v", y)
}

func TestScenarioPositionalAndLabeledCalls(t *testing.T) {
	val, _, _ := runProgram(t, `
fn add(a, b) { a + b }
fn main() {
	[add(2, 3), add([a=2, b=3]), add([b=3, a=2])]
}
`)
	want := lang.SequenceValue(lang.IntValue(5), lang.IntValue(5), lang.IntValue(5))
	assert.True(t, val.Equal(want), "got %v", val)
}

func TestScenarioTextConcatenation(t *testing.T) {
	val, _, _ := runProgram(t, `fn main() { "foo" + "bar" }`)
	assert.True(t, val.Equal(lang.TextValue("foobar")))

	err := runProgramError(t, `fn main() { 1 + "a" }`, lang.TypeMismatch)
	assert.Contains(t, err.Error(), "add")
}

func TestScenarioWhileFalseSkipsBody(t *testing.T) {
	val, _, out := runProgram(t, `
fn main() {
	while (false) {
		println("never")
	}
}
`)
	assert.True(t, val.Equal(lang.BoolValue(true)))
	assert.Empty(t, out)
}

func TestScenarioCollectionEquality(t *testing.T) {
	val, _, _ := runProgram(t, `
fn main() {
	[%{1, 2} == %{2, 1}, [1, 2] == [2, 1], [%{1}, "a"] != [%{2}, "a"]]
}
`)
	want := lang.SequenceValue(lang.BoolValue(true), lang.BoolValue(false), lang.BoolValue(true))
	assert.True(t, val.Equal(want), "got %v", val)

	runProgramError(t, `fn main() { #{a: 1} == #{a: 1} }`, lang.TypeMismatch)
}

func TestScenarioUnknownNames(t *testing.T) {
	err := runProgramError(t, `fn main() { nope(1) }`, lang.UnknownFunction)
	assert.Contains(t, err.Error(), "nope")

	err = runProgramError(t, `fn main() { ghost = 1 }`, lang.UnboundName)
	assert.Contains(t, err.Error(), "ghost")
}

func TestProgramErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind lang.ErrorKind
	}{
		{"missing main", "fn helper() { 1 }", lang.MissingEntryPoint},
		{"immutable assignment", "let x = 1\nfn main() { x = 2 }", lang.ImmutableAssignment},
		{"missing label", "fn f(a, b) { a }\nfn main() { f([a=1]) }", lang.MissingLabel},
		{"arity", "fn f(a) { a }\nfn main() { f(1, 2) }", lang.ArityMismatch},
		{"division by zero", "fn main() { 7 % 0 }", lang.DivisionByZero},
		{"bad condition", "fn main() { if (1) 2 }", lang.TypeMismatch},
		{"increment literal", "fn main() { 1++ }", lang.InvalidOperand},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runProgramError(t, tc.src, tc.kind)
		})
	}
}

func TestRecursionAndLoops(t *testing.T) {
	val, _, out := runProgram(t, `
fn fact(n) {
	if (n < 2) 1 else n * fact(n - 1)
}

fn fib(n) {
	mutable let a = 0
	mutable let b = 1
	mutable let i = 0
	while (i < n) {
		let next = a + b
		a = b
		b = next
		i++
	}
	a
}

fn main() {
	println(fact(10))
	fib(30)
}
`)
	assert.Equal(t, "3628800\n", out)
	assert.True(t, val.Equal(lang.IntValue(832040)), "got %v", val)
}

func TestCallsResolveThroughCallerScope(t *testing.T) {
	val, _, _ := runProgram(t, `
mutable let counter = 0
fn bump() { counter = counter + 1 }
fn inner() { y }
fn outer() {
	let y = 7
	inner()
}
fn main() {
	bump()
	bump()
	[counter, outer()]
}
`)
	want := lang.SequenceValue(lang.IntValue(2), lang.IntValue(7))
	assert.True(t, val.Equal(want), "got %v", val)
}

func TestFunctionValuesJoinFunctionTable(t *testing.T) {
	val, ev, _ := runProgram(t, `
fn main() {
	let twice = fn(x) { x * 2 }
	twice(21)
}
`)
	assert.True(t, val.Equal(lang.IntValue(42)))
	_, ok := ev.LookupFunction("twice")
	assert.True(t, ok)
	_, ok = ev.LookupVariable("twice")
	assert.False(t, ok, "function values are not stored as variables")
}

func TestMaxDepthFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = 500
	ev, _, _ := newTestEvaluator(t, cfg)

	_, err := EvaluateString(ev, `
fn loop(n) { loop(n + 1) }
fn main() { loop(0) }
`)
	require.ErrorIs(t, err, lang.ErrStackOverflow)

	// The evaluator stays usable after the failure.
	vals, err := EvaluateInteractive(ev, "1 + 1")
	require.NoError(t, err)
	require.Len(t, vals, 1)
	assert.True(t, vals[0].Equal(lang.IntValue(2)))
}

func TestDebugTraceFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Debug = true
	ev, out, _ := newTestEvaluator(t, cfg)

	_, err := EvaluateString(ev, "fn main() { 1 + 2 }")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{"|- { (1 + 2) }", "|- (1 + 2)", "|- 1", "|- 2"}, lines)
}

func TestDebugLoggingFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	ev, _, logs := newTestEvaluator(t, cfg)

	_, err := EvaluateString(ev, "fn id(x) { x }\nfn main() { id(1) }")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `msg="push call frame"`)
	assert.Contains(t, logs.String(), `msg="pop call frame"`)
	assert.Contains(t, logs.String(), "function=id")
}

func TestEvaluateInteractiveKeepsState(t *testing.T) {
	ev, out, _ := newTestEvaluator(t, DefaultConfig())

	vals, err := EvaluateInteractive(ev, "fn sq(n) { n * n }\nmutable let total = 0")
	require.NoError(t, err)
	require.Len(t, vals, 2)
	fn, err := vals[0].AsFunction()
	require.NoError(t, err)
	assert.Equal(t, []string{"n"}, fn.Params)

	vals, err = EvaluateInteractive(ev, "total = total + sq(4); println(total)")
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.True(t, vals[1].Equal(lang.IntValue(16)))
	assert.Equal(t, "16\n", out.String())

	vals, err = EvaluateInteractive(ev, "let a = 1; missing; let b = 2")
	require.ErrorIs(t, err, lang.ErrUnboundName)
	assert.Len(t, vals, 1, "values produced before the failure are returned")
	_, ok := ev.LookupVariable("b")
	assert.False(t, ok, "evaluation stops at the first error")

	_, err = EvaluateInteractive(ev, "if (true) {")
	assert.True(t, parser.IsIncomplete(err))
}

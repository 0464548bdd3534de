package lang

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/simonNozaki/koys/ast"
)

// DefaultMaxDepth bounds nested evaluation steps before StackOverflow is
// reported. It stays well below what the Go stack can hold.
const DefaultMaxDepth = 100000

// EntryPoint is the function RunProgram evaluates.
const EntryPoint = "main"

// Evaluator executes koy programs. Global and Functions hold the program
// state; the scope active during a step travels in a frame argument instead,
// so a failed call can never leave the evaluator pointing at a callee scope.
type Evaluator struct {
	Global    *Scope
	Functions *FunctionTable

	out      io.Writer
	trace    io.Writer
	maxDepth int
	logger   *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithOutput sets where println writes. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(ev *Evaluator) { ev.out = w }
}

// WithTrace enables debug mode: every node is written to w before it is
// evaluated.
func WithTrace(w io.Writer) Option {
	return func(ev *Evaluator) { ev.trace = w }
}

// WithMaxDepth overrides DefaultMaxDepth. Non-positive values are ignored.
func WithMaxDepth(n int) Option {
	return func(ev *Evaluator) {
		if n > 0 {
			ev.maxDepth = n
		}
	}
}

// WithLogger routes call-frame debug events to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ev *Evaluator) {
		if logger != nil {
			ev.logger = logger
		}
	}
}

// NewEvaluator constructs an evaluator rooted at a new global scope.
func NewEvaluator(opts ...Option) *Evaluator {
	ev := &Evaluator{
		Global:    NewScope(nil),
		Functions: NewFunctionTable(),
		out:       os.Stdout,
		maxDepth:  DefaultMaxDepth,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

type frame struct {
	scope *Scope
	depth int
}

// Eval evaluates a single expression against the global scope.
func (ev *Evaluator) Eval(expr ast.Expr) (Value, error) {
	return ev.eval(frame{scope: ev.Global}, expr)
}

// EvalIn evaluates expr with scope as the active scope.
func (ev *Evaluator) EvalIn(expr ast.Expr, scope *Scope) (Value, error) {
	if scope == nil {
		scope = ev.Global
	}
	return ev.eval(frame{scope: scope}, expr)
}

// RunProgram registers every top-level definition in source order and then
// evaluates the body of main in the global scope.
func (ev *Evaluator) RunProgram(prog *ast.Program) (Value, error) {
	if prog == nil {
		return Value{}, newError(MissingEntryPoint, "empty program")
	}
	for _, def := range prog.Definitions {
		if _, err := ev.Define(def); err != nil {
			return Value{}, err
		}
	}
	main, ok := ev.Functions.Get(EntryPoint)
	if !ok {
		return Value{}, newError(MissingEntryPoint, "program has no %s function", EntryPoint)
	}
	return ev.eval(frame{scope: ev.Global}, main.Body)
}

// Define registers a single top-level definition and returns its value.
func (ev *Evaluator) Define(top ast.TopLevel) (Value, error) {
	switch d := top.(type) {
	case *ast.FunctionDefinition:
		ev.Functions.Define(d.Name, d)
		return FunctionValue(d.Params, d.Body), nil
	case *ast.ValueDefinition:
		val, err := ev.eval(frame{scope: ev.Global}, d.Expr)
		if err != nil {
			return Value{}, err
		}
		ev.declare(ev.Global, d.Name, val, d.Mutable)
		return val, nil
	default:
		return Value{}, newError(Unsupported, "top-level %T", top)
	}
}

// LookupVariable returns the value bound to name in the global scope.
func (ev *Evaluator) LookupVariable(name string) (Value, bool) {
	return ev.Global.Lookup(name)
}

// LookupFunction returns the definition registered under name.
func (ev *Evaluator) LookupFunction(name string) (*ast.FunctionDefinition, bool) {
	return ev.Functions.Get(name)
}

// Variables snapshots the global bindings.
func (ev *Evaluator) Variables() map[string]Value {
	return ev.Global.Snapshot()
}

func (ev *Evaluator) eval(f frame, expr ast.Expr) (Value, error) {
	if expr == nil {
		return Value{}, newError(Unsupported, "nil expression")
	}
	if f.depth >= ev.maxDepth {
		return Value{}, newError(StackOverflow, "evaluation nested deeper than %d steps", ev.maxDepth)
	}
	if ev.trace != nil {
		fmt.Fprintf(ev.trace, "|- %s\n", expr)
	}
	f.depth++

	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return IntValue(e.Value), nil
	case *ast.BoolLiteral:
		return BoolValue(e.Value), nil
	case *ast.StringLiteral:
		return TextValue(e.Value), nil
	case *ast.ArrayLiteral:
		items, err := ev.evalList(f, e.Items)
		if err != nil {
			return Value{}, err
		}
		return SequenceValue(items...), nil
	case *ast.SetLiteral:
		items, err := ev.evalList(f, e.Items)
		if err != nil {
			return Value{}, err
		}
		return SetValue(items...), nil
	case *ast.ObjectLiteral:
		props := make(map[string]Value, len(e.Properties))
		for _, prop := range e.Properties {
			val, err := ev.eval(f, prop.Value)
			if err != nil {
				return Value{}, err
			}
			props[prop.Key] = val
		}
		return MappingValue(props), nil
	case *ast.FunctionLiteral:
		return FunctionValue(e.Params, e.Body), nil
	case *ast.Identifier:
		val, ok := f.scope.Lookup(e.Name)
		if !ok {
			return Value{}, newError(UnboundName, "%s is not declared", e.Name)
		}
		return val, nil
	case *ast.UnaryExpr:
		return ev.evalUnary(f, e)
	case *ast.BinaryExpr:
		lhs, err := ev.eval(f, e.Lhs)
		if err != nil {
			return Value{}, err
		}
		rhs, err := ev.eval(f, e.Rhs)
		if err != nil {
			return Value{}, err
		}
		return applyBinary(e.Op, lhs, rhs)
	case *ast.Declaration:
		val, err := ev.eval(f, e.Expr)
		if err != nil {
			return Value{}, err
		}
		ev.declare(f.scope, e.Name, val, e.Mutable)
		return val, nil
	case *ast.Assignment:
		val, err := ev.eval(f, e.Expr)
		if err != nil {
			return Value{}, err
		}
		if err := f.scope.Assign(e.Name, val); err != nil {
			return Value{}, err
		}
		return val, nil
	case *ast.PrintLn:
		val, err := ev.eval(f, e.Arg)
		if err != nil {
			return Value{}, err
		}
		if _, err := fmt.Fprintln(ev.out, val.Display()); err != nil {
			return Value{}, fmt.Errorf("println: %w", err)
		}
		return val, nil
	case *ast.IfExpr:
		cond, err := ev.condition(f, e.Cond, "if")
		if err != nil {
			return Value{}, err
		}
		if cond {
			return ev.eval(f, e.Then)
		}
		if e.Else != nil {
			return ev.eval(f, e.Else)
		}
		return BoolValue(true), nil
	case *ast.WhileExpr:
		for {
			cond, err := ev.condition(f, e.Cond, "while")
			if err != nil {
				return Value{}, err
			}
			if !cond {
				return BoolValue(true), nil
			}
			if _, err := ev.eval(f, e.Body); err != nil {
				return Value{}, err
			}
		}
	case *ast.BlockExpr:
		result := IntValue(0)
		for _, el := range e.Elements {
			val, err := ev.eval(f, el)
			if err != nil {
				return Value{}, err
			}
			result = val
		}
		return result, nil
	case *ast.FunctionCall:
		return ev.evalCall(f, e)
	case *ast.LabeledCall:
		return ev.evalLabeledCall(f, e)
	default:
		return Value{}, newError(Unsupported, "cannot evaluate %T", expr)
	}
}

func (ev *Evaluator) evalList(f frame, exprs []ast.Expr) ([]Value, error) {
	out := make([]Value, len(exprs))
	for i, expr := range exprs {
		val, err := ev.eval(f, expr)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

func (ev *Evaluator) condition(f frame, expr ast.Expr, form string) (bool, error) {
	val, err := ev.eval(f, expr)
	if err != nil {
		return false, err
	}
	b, err := val.AsBool()
	if err != nil {
		return false, newError(TypeMismatch, "%s condition must be bool, got %s %s", form, val.TypeName(), val)
	}
	return b, nil
}

// declare binds a value in scope. Function values go to the function table
// instead, whatever the declared mutability.
func (ev *Evaluator) declare(scope *Scope, name string, val Value, mutable bool) {
	if fn, err := val.AsFunction(); err == nil {
		ev.Functions.Define(name, &ast.FunctionDefinition{
			Name:   name,
			Params: fn.Params,
			Body:   fn.Body,
		})
		return
	}
	if mutable {
		scope.DeclareMutable(name, val)
	} else {
		scope.DeclareImmutable(name, val)
	}
}

// evalUnary rewrites x++ / x-- into an assignment of the updated integer.
func (ev *Evaluator) evalUnary(f frame, e *ast.UnaryExpr) (Value, error) {
	id, ok := e.Operand.(*ast.Identifier)
	if !ok {
		return Value{}, newError(InvalidOperand, "%s needs a variable operand, got %s", e.Op, e.Operand)
	}
	cur, err := ev.eval(f, id)
	if err != nil {
		return Value{}, err
	}
	n, err := cur.AsInt()
	if err != nil {
		return Value{}, newError(TypeMismatch, "%s applies to int variables, %s is %s %s", e.Op, id.Name, cur.TypeName(), cur)
	}
	if e.Op == ast.OpDecrement {
		n--
	} else {
		n++
	}
	next := IntValue(n)
	if err := f.scope.Assign(id.Name, next); err != nil {
		return Value{}, err
	}
	return next, nil
}

func (ev *Evaluator) evalCall(f frame, e *ast.FunctionCall) (Value, error) {
	def, err := ev.Functions.Lookup(e.Name)
	if err != nil {
		return Value{}, err
	}
	if len(e.Args) != len(def.Params) {
		return Value{}, newError(ArityMismatch, "%s expects %d arguments, got %d", e.Name, len(def.Params), len(e.Args))
	}
	args, err := ev.evalList(f, e.Args)
	if err != nil {
		return Value{}, err
	}
	return ev.invoke(f, def, args)
}

func (ev *Evaluator) evalLabeledCall(f frame, e *ast.LabeledCall) (Value, error) {
	def, err := ev.Functions.Lookup(e.Name)
	if err != nil {
		return Value{}, err
	}
	labels := make(map[string]ast.Expr, len(e.Args))
	for _, arg := range e.Args {
		labels[arg.Name] = arg.Parameter
	}
	exprs := make([]ast.Expr, len(def.Params))
	for i, param := range def.Params {
		expr, ok := labels[param]
		if !ok {
			return Value{}, newError(MissingLabel, "%s requires label %s", e.Name, param)
		}
		exprs[i] = expr
		delete(labels, param)
	}
	for label := range labels {
		return Value{}, newError(ArityMismatch, "%s has no parameter %s", e.Name, label)
	}
	args, err := ev.evalList(f, exprs)
	if err != nil {
		return Value{}, err
	}
	return ev.invoke(f, def, args)
}

// invoke runs def's body in a new scope chained to the caller's active scope.
func (ev *Evaluator) invoke(caller frame, def *ast.FunctionDefinition, args []Value) (Value, error) {
	callee := frame{scope: NewScope(caller.scope), depth: caller.depth}
	for i, name := range def.Params {
		callee.scope.DeclareMutable(name, args[i])
	}
	debug := ev.logger.Enabled(context.Background(), slog.LevelDebug)
	if debug {
		ev.logger.Debug("push call frame",
			slog.String("function", def.Name),
			slog.Int("depth", callee.depth),
			slog.Int("scope-depth", callee.scope.Depth()))
	}
	result, err := ev.eval(callee, def.Body)
	if debug {
		ev.logger.Debug("pop call frame",
			slog.String("function", def.Name),
			slog.Bool("failed", err != nil))
	}
	return result, err
}

// Package runtime wires the koy parser to the evaluator and provides the
// entry points used by the koys command.
package runtime

import (
	"bytes"
	"io"
	"log/slog"
	"os"

	"github.com/simonNozaki/koys/ast"
	"github.com/simonNozaki/koys/lang"
	"github.com/simonNozaki/koys/parser"
)

// NewEvaluator constructs an evaluator configured by cfg. println output goes
// to stdout, as does the node trace in debug mode; log records go to stderr.
func NewEvaluator(cfg Config, stdout, stderr io.Writer) *lang.Evaluator {
	level, err := cfg.Level()
	if err != nil {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	opts := []lang.Option{
		lang.WithOutput(stdout),
		lang.WithMaxDepth(cfg.MaxDepth),
		lang.WithLogger(logger),
	}
	if cfg.Debug {
		opts = append(opts, lang.WithTrace(stdout))
	}
	return lang.NewEvaluator(opts...)
}

func readFileSkippingShebang(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("#!")) {
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			// keep the newline so reported line numbers match the file
			return data[idx:], nil
		}
		return []byte{}, nil
	}
	return data, nil
}

// EvaluateString parses src as a program and runs its main function.
func EvaluateString(ev *lang.Evaluator, src string) (lang.Value, error) {
	prog, err := parser.Parse(src)
	if err != nil {
		return lang.Value{}, err
	}
	return ev.RunProgram(prog)
}

// EvaluateReader consumes a whole program from the reader and runs it.
func EvaluateReader(ev *lang.Evaluator, r io.Reader) (lang.Value, error) {
	prog, err := parser.ParseReader(r)
	if err != nil {
		return lang.Value{}, err
	}
	return ev.RunProgram(prog)
}

// EvaluateFile loads and runs a koy program, allowing a #! first line.
func EvaluateFile(ev *lang.Evaluator, path string) (lang.Value, error) {
	data, err := readFileSkippingShebang(path)
	if err != nil {
		return lang.Value{}, err
	}
	prog, err := parser.ParseFile(path, string(data))
	if err != nil {
		return lang.Value{}, err
	}
	return ev.RunProgram(prog)
}

// EvaluateInteractive evaluates one REPL entry against the evaluator's
// global state. Function definitions are registered; expressions are
// evaluated in order. The values produced before a failure are returned
// along with the error.
func EvaluateInteractive(ev *lang.Evaluator, src string) ([]lang.Value, error) {
	nodes, err := parser.ParseInteractive(src)
	if err != nil {
		return nil, err
	}
	results := make([]lang.Value, 0, len(nodes))
	for _, node := range nodes {
		var (
			val lang.Value
			err error
		)
		switch n := node.(type) {
		case *ast.FunctionDefinition:
			val, err = ev.Define(n)
		case ast.Expr:
			val, err = ev.Eval(n)
		}
		if err != nil {
			return results, err
		}
		results = append(results, val)
	}
	return results, nil
}

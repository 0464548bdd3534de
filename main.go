package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/simonNozaki/koys/lang"
	"github.com/simonNozaki/koys/parser"
	"github.com/simonNozaki/koys/runtime"
)

const version = "koys 0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	debug      bool
	maxDepth   int
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, remaining, err := parseOptions(args)
	if err != nil {
		fmt.Fprintf(stderr, "koys: %v\n", err)
		printUsage(stderr)
		return 2
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "koys: %v\n", err)
		return 1
	}

	command := "repl"
	if len(remaining) > 0 {
		command = remaining[0]
		remaining = remaining[1:]
	}
	switch command {
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, version)
		return 0
	case "repl":
		runREPL(runtime.NewEvaluator(cfg, stdout, stderr), cfg, stdin, stdout, stderr)
		return 0
	case "run":
		if len(remaining) != 1 {
			fmt.Fprintln(stderr, "koys: run expects exactly one file")
			printUsage(stderr)
			return 2
		}
		return runScript(cfg, remaining[0], stdin, stdout, stderr)
	default:
		if len(remaining) != 0 {
			fmt.Fprintf(stderr, "koys: unexpected arguments %v\n", remaining)
			printUsage(stderr)
			return 2
		}
		return runScript(cfg, command, stdin, stdout, stderr)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  koys [--debug] [--max-depth=N] [--config=FILE] run <file.koy | ->")
	fmt.Fprintln(w, "  koys [--debug] [--max-depth=N] [--config=FILE] <file.koy | ->")
	fmt.Fprintln(w, "  koys [--debug] [--max-depth=N] [--config=FILE] [repl]")
}

func parseOptions(args []string) (options, []string, error) {
	var opts options
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i+1:]...)
			break
		}
		switch {
		case arg == "--debug":
			opts.debug = true
		case arg == "--config" || arg == "--max-depth":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("%s expects a value", arg)
			}
			if err := opts.set(arg, args[i+1]); err != nil {
				return opts, nil, err
			}
			i++
		case strings.HasPrefix(arg, "--config="), strings.HasPrefix(arg, "--max-depth="):
			name, value, _ := strings.Cut(arg, "=")
			if err := opts.set(name, value); err != nil {
				return opts, nil, err
			}
		case strings.HasPrefix(arg, "--") && arg != "--help" && arg != "--version":
			return opts, nil, fmt.Errorf("unknown flag %s", arg)
		default:
			remaining = append(remaining, arg)
		}
	}
	return opts, remaining, nil
}

func (o *options) set(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s expects a value", name)
	}
	switch name {
	case "--config":
		o.configPath = value
	case "--max-depth":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("--max-depth expects a positive integer, got %q", value)
		}
		o.maxDepth = n
	}
	return nil
}

// loadConfig reads --config, or .koys.yaml in the working directory, and
// applies flag overrides.
func loadConfig(opts options) (runtime.Config, error) {
	cfg := runtime.DefaultConfig()
	path := opts.configPath
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path, _ = runtime.FindConfig(wd)
		}
	}
	if path != "" {
		loaded, err := runtime.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if opts.debug {
		cfg.Debug = true
	}
	if opts.maxDepth > 0 {
		cfg.MaxDepth = opts.maxDepth
	}
	return cfg, nil
}

func runScript(cfg runtime.Config, script string, stdin io.Reader, stdout, stderr io.Writer) int {
	ev := runtime.NewEvaluator(cfg, stdout, stderr)
	var err error
	if script == "-" {
		_, err = runtime.EvaluateReader(ev, stdin)
	} else {
		_, err = runtime.EvaluateFile(ev, script)
	}
	if err != nil {
		fmt.Fprintf(stderr, "koys: %v\n", err)
		return 1
	}
	return 0
}

func runREPL(ev *lang.Evaluator, cfg runtime.Config, stdin io.Reader, stdout, stderr io.Writer) {
	if !isInteractive(stdin) {
		runBufferedREPL(ev, bufio.NewReader(stdin), stdout, stderr)
		return
	}
	runInteractiveREPL(ev, cfg, stdout, stderr)
}

// evalEntry evaluates one complete REPL entry and prints its values.
func evalEntry(ev *lang.Evaluator, src string, stdout, stderr io.Writer) {
	vals, err := runtime.EvaluateInteractive(ev, src)
	for _, val := range vals {
		fmt.Fprintln(stdout, val.String())
	}
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			fmt.Fprintf(stderr, "parse error: %v\n", err)
			return
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
}

func runBufferedREPL(ev *lang.Evaluator, reader *bufio.Reader, stdout, stderr io.Writer) {
	var buffer strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if buffer.Len() == 0 && line == "" {
					return
				}
			} else {
				fmt.Fprintf(stderr, "read error: %v\n", err)
				return
			}
		}
		buffer.WriteString(line)
		src := buffer.String()
		if _, parseErr := parser.ParseInteractive(src); parseErr != nil && parser.IsIncomplete(parseErr) && !errors.Is(err, io.EOF) {
			continue
		}
		buffer.Reset()
		evalEntry(ev, src, stdout, stderr)
		if errors.Is(err, io.EOF) {
			return
		}
	}
}

func runInteractiveREPL(ev *lang.Evaluator, cfg runtime.Config, stdout, stderr io.Writer) {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	historyPath := replHistoryPath(cfg)
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	var buffer strings.Builder

	for {
		prompt := "koys> "
		if buffer.Len() > 0 {
			prompt = "..... "
		}
		input, err := state.Prompt(prompt)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Fprintln(stdout)
				buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Fprintln(stdout)
				return
			default:
				fmt.Fprintf(stderr, "read error: %v\n", err)
				return
			}
		}
		buffer.WriteString(input)
		buffer.WriteString("\n")

		src := buffer.String()
		if _, parseErr := parser.ParseInteractive(src); parser.IsIncomplete(parseErr) {
			continue
		}

		buffer.Reset()
		if trimmed := strings.TrimSpace(src); trimmed != "" {
			state.AppendHistory(trimmed)
		}
		evalEntry(ev, src, stdout, stderr)
	}
}

func replHistoryPath(cfg runtime.Config) string {
	if cfg.History != "" {
		return cfg.History
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".koys_history")
}

func isInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

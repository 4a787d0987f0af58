// sol - runs, checks and builds SOL25 programs.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/chazu/sol25/compiler"
	"github.com/chazu/sol25/lib/runtime"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

var log = commonlog.GetLogger("sol.cli")

// Exit codes outside the front end and runtime ranges.
const (
	exitOK       = 0
	exitUsage    = 10
	exitInput    = 11
	exitOutput   = 12
	exitInternal = 99
)

// exitError attaches a process exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErr(format string, args ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

func inputErr(err error) error {
	return &exitError{code: exitInput, err: err}
}

func outputErr(err error) error {
	return &exitError{code: exitOutput, err: err}
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if code := compiler.CodeOf(err); code != 0 {
		return code
	}
	var re *runtime.Error
	if errors.As(err, &re) {
		return re.Kind.ExitCode()
	}
	return exitInternal
}

// env holds the process streams so commands can be driven from tests.
type env struct {
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer
}

func main() {
	e := &env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(e.run(os.Args[1:]))
}

// run dispatches to a subcommand and returns the exit code.
func (e *env) run(args []string) int {
	cmd, rest := "run", args
	if len(args) > 0 {
		switch args[0] {
		case "run", "parse", "check", "build", "lsp":
			cmd, rest = args[0], args[1:]
		case "help", "-h", "--help":
			e.printUsage()
			return exitOK
		case "version", "--version":
			fmt.Fprintf(e.stdout, "sol %s\n", version)
			return exitOK
		}
	}

	var err error
	switch cmd {
	case "run":
		err = e.runCommand(rest)
	case "parse":
		err = e.parseCommand(rest)
	case "check":
		err = e.checkCommand(rest)
	case "build":
		err = e.buildCommand(rest)
	case "lsp":
		err = e.lspCommand(rest)
	}

	code := exitCode(err)
	if err != nil && !errors.Is(err, errHelp) {
		fmt.Fprintf(e.stderr, "sol: %v\n", err)
		log.Errorf("%s failed with exit code %d: %s", cmd, code, err)
	}
	if errors.Is(err, errHelp) {
		return exitOK
	}
	return code
}

func (e *env) printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(e.stderr, "Usage: %s [command] [flags] [file]\n\n", prog)
	fmt.Fprintln(e.stderr, "Commands:")
	fmt.Fprintln(e.stderr, "  run      run a .sol source, .xml tree or .solimg image (default)")
	fmt.Fprintln(e.stderr, "  parse    print the XML form of a source file")
	fmt.Fprintln(e.stderr, "  check    run the front end only")
	fmt.Fprintln(e.stderr, "  build    write a program image")
	fmt.Fprintln(e.stderr, "  lsp      serve the language server on stdio")
	fmt.Fprintln(e.stderr, "\nWithout a file argument the program is taken from the nearest sol.toml.")
	fmt.Fprintf(e.stderr, "Run '%s <command> -h' for command flags.\n", prog)
}

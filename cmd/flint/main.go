// Command flint is the CLI entry point for the Flint toolchain.
//
// Usage:
//
//	flint                          Start interactive REPL
//	flint <file>                   Run a source file
//	flint run    <file>            Run a source file
//	flint tokens <file> [--json]   Print tokens
//	flint parse  <file>            Print AST as JSON
//	flint chunk                    Run the bytecode VM demo chunk
//
// Exit codes: 64 usage, 65 compile error, 70 runtime error, 74 unreadable file.
package main

import (
	"fmt"
	"os"

	"flint-lang/internal/ast"
	"flint-lang/internal/diag"
	"flint-lang/internal/lexer"
	"flint-lang/internal/parser"
	"flint-lang/internal/resolver"
	"flint-lang/internal/runtime"
)

const (
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
	exitIO      = 74
)

func main() {
	if len(os.Args) < 2 {
		cmdRepl()
		return
	}

	command := os.Args[1]

	switch command {
	case "tokens":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			os.Exit(exitUsage)
		}
		source := readFile(os.Args[2])
		cmdTokens(source, os.Args[2], hasFlag("--json"))
	case "parse":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			os.Exit(exitUsage)
		}
		source := readFile(os.Args[2])
		cmdParse(source, os.Args[2])
	case "run":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			os.Exit(exitUsage)
		}
		source := readFile(os.Args[2])
		cmdRun(source, os.Args[2])
	case "repl":
		cmdRepl()
	case "chunk":
		cmdChunk()
	case "help", "-h", "--help":
		usage()
	default:
		// Bare script mode: flint <file>
		source := readFile(command)
		cmdRun(source, command)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  flint                          Start interactive REPL")
	fmt.Fprintln(os.Stderr, "  flint <file>                   Run a source file")
	fmt.Fprintln(os.Stderr, "  flint run    <file>            Run a source file")
	fmt.Fprintln(os.Stderr, "  flint tokens <file> [--json]   Tokenize and print tokens")
	fmt.Fprintln(os.Stderr, "  flint parse  <file>            Parse and print AST (JSON)")
	fmt.Fprintln(os.Stderr, "  flint chunk                    Run the bytecode VM demo chunk")
}

func readFile(filename string) string {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read file %s: %v\n", filename, err)
		os.Exit(exitIO)
	}
	return string(source)
}

func hasFlag(flag string) bool {
	for _, arg := range os.Args[3:] {
		if arg == flag {
			return true
		}
	}
	return false
}

// compile runs the lexer, parser and resolver over source and returns the
// statement list, the locals table, and all accumulated diagnostics.
func compile(source, filename string) ([]ast.Stmt, map[ast.Expr]int, []diag.Diagnostic) {
	l := lexer.New(source, filename)
	tokens, diags := l.Tokenize()

	p := parser.New(tokens)
	stmts, parseDiags := p.Parse()
	diags = append(diags, parseDiags...)

	r := resolver.New()
	locals, resolveDiags := r.Resolve(stmts)
	diags = append(diags, resolveDiags...)

	return stmts, locals, diags
}

// ---- run command ----

func cmdRun(source, filename string) {
	stmts, locals, diags := compile(source, filename)
	if len(diags) > 0 {
		printDiagsText(diags)
		os.Exit(exitCompile)
	}

	interp := runtime.NewInterpreter(os.Stdout, os.Stderr, os.Stdin)
	interp.Resolve(locals)
	if err := interp.Interpret(stmts); err != nil {
		// Every runtime error has already been reported.
		os.Exit(exitRuntime)
	}
}

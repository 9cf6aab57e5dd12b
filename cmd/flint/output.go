package main

import (
	"encoding/json"
	"fmt"
	"os"

	"flint-lang/internal/ast"
	"flint-lang/internal/diag"
	"flint-lang/internal/lexer"
	"flint-lang/internal/parser"
	"flint-lang/internal/token"
)

// ---- tokens command ----

func cmdTokens(source, filename string, jsonMode bool) {
	l := lexer.New(source, filename)
	tokens, diags := l.Tokenize()

	if jsonMode {
		printTokensJSON(tokens, diags)
	} else {
		printTokensText(tokens, diags)
	}

	if len(diags) > 0 {
		os.Exit(exitCompile)
	}
}

func printTokensText(tokens []token.Token, diags []diag.Diagnostic) {
	for _, tok := range tokens {
		fmt.Printf("%-12s %-20s %d:%d\n", tok.Kind, tok.Lexeme, tok.Span.Start.Line, tok.Span.Start.Column)
	}
	printDiagsText(diags)
}

func printTokensJSON(tokens []token.Token, diags []diag.Diagnostic) {
	type tokenJSON struct {
		Kind    string      `json:"kind"`
		Lexeme  string      `json:"lexeme"`
		Literal interface{} `json:"literal,omitempty"`
		Line    int         `json:"line"`
		Column  int         `json:"column"`
		Offset  int         `json:"offset"`
	}

	var toks []tokenJSON
	for _, tok := range tokens {
		toks = append(toks, tokenJSON{
			Kind:    tok.Kind.String(),
			Lexeme:  tok.Lexeme,
			Literal: tok.Literal,
			Line:    tok.Span.Start.Line,
			Column:  tok.Span.Start.Column,
			Offset:  tok.Span.Start.Offset,
		})
	}

	printJSON(map[string]interface{}{
		"tokens":      toks,
		"diagnostics": diagsToSlice(diags),
	})
}

// ---- parse command ----

func cmdParse(source, filename string) {
	l := lexer.New(source, filename)
	tokens, lexDiags := l.Tokenize()

	p := parser.New(tokens)
	stmts, parseDiags := p.Parse()

	allDiags := append(lexDiags, parseDiags...)

	body := make([]interface{}, len(stmts))
	for i, s := range stmts {
		body[i] = ast.NodeToMap(s)
	}
	printJSON(map[string]interface{}{
		"ast":         body,
		"diagnostics": diagsToSlice(allDiags),
	})

	if len(allDiags) > 0 {
		os.Exit(exitCompile)
	}
}

// ---- output helpers ----

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "error: JSON encoding failed: %v\n", err)
		os.Exit(1)
	}
}

func printDiagsText(diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func diagsToSlice(diags []diag.Diagnostic) []map[string]interface{} {
	result := make([]map[string]interface{}, len(diags))
	for i, d := range diags {
		result[i] = map[string]interface{}{
			"code":     d.Code,
			"severity": d.Severity.String(),
			"message":  d.Message,
			"line":     d.Span.Start.Line,
			"column":   d.Span.Start.Column,
			"offset":   d.Span.Start.Offset,
		}
		if d.Where != "" {
			result[i]["where"] = d.Where
		}
	}
	return result
}

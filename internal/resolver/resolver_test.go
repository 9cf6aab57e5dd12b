package resolver

import (
	"strings"
	"testing"

	"flint-lang/internal/ast"
	"flint-lang/internal/diag"
	"flint-lang/internal/lexer"
	"flint-lang/internal/parser"
)

func resolveSource(t *testing.T, source string) (map[ast.Expr]int, []diag.Diagnostic) {
	t.Helper()
	l := lexer.New(source, "test.fl")
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex diagnostics: %v", lexDiags)
	}
	p := parser.New(tokens)
	stmts, parseDiags := p.Parse()
	if len(parseDiags) > 0 {
		t.Fatalf("parse diagnostics: %v", parseDiags)
	}
	r := New()
	return r.Resolve(stmts)
}

func expectResolveError(t *testing.T, source, contains string) {
	t.Helper()
	_, diags := resolveSource(t, source)
	for _, d := range diags {
		if strings.Contains(d.Message, contains) {
			return
		}
	}
	t.Errorf("expected diagnostic containing %q, got %v", contains, diags)
}

func expectClean(t *testing.T, source string) map[ast.Expr]int {
	t.Helper()
	locals, diags := resolveSource(t, source)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return locals
}

// depthsByName collects resolved depths keyed by variable name.
func depthsByName(locals map[ast.Expr]int) map[string][]int {
	result := make(map[string][]int)
	for expr, depth := range locals {
		switch e := expr.(type) {
		case *ast.VariableExpr:
			result[e.Name.Lexeme] = append(result[e.Name.Lexeme], depth)
		case *ast.AssignExpr:
			result[e.Name.Lexeme] = append(result[e.Name.Lexeme], depth)
		case *ast.ThisExpr:
			result["this"] = append(result["this"], depth)
		case *ast.SuperExpr:
			result["super"] = append(result["super"], depth)
		}
	}
	return result
}

// ---- depth table ----

func TestGlobalsGetNoEntry(t *testing.T) {
	locals := expectClean(t, `let a = 1; print(a);`)
	if len(locals) != 0 {
		t.Errorf("global references must not be recorded, got %d entries", len(locals))
	}
}

func TestBlockLocalDepth(t *testing.T) {
	locals := expectClean(t, `{ let a = 1; print(a); { print(a); } }`)
	depths := depthsByName(locals)["a"]
	if len(depths) != 2 {
		t.Fatalf("expected 2 resolved uses of 'a', got %d", len(depths))
	}
	// One use in the declaring scope (depth 0), one a block deeper (depth 1).
	seen := map[int]bool{}
	for _, d := range depths {
		seen[d] = true
	}
	if !seen[0] || !seen[1] {
		t.Errorf("expected depths {0,1}, got %v", depths)
	}
}

func TestClosureDepth(t *testing.T) {
	locals := expectClean(t, `
func outer() {
  let captured = 1;
  let f = func() { return captured; };
  return f;
}`)
	depths := depthsByName(locals)["captured"]
	if len(depths) != 1 || depths[0] != 1 {
		t.Errorf("expected captured at depth 1 inside the lambda, got %v", depths)
	}
}

func TestThisAndSuperDepths(t *testing.T) {
	locals := expectClean(t, `
class A { hi() { return "A"; } }
class B < A { hi() { return super.hi() + toString(this); } }
`)
	depths := depthsByName(locals)
	if got := depths["super"]; len(got) != 1 || got[0] != 2 {
		t.Errorf("expected super at depth 2, got %v", got)
	}
	if got := depths["this"]; len(got) != 1 || got[0] != 1 {
		t.Errorf("expected this at depth 1, got %v", got)
	}
}

// ---- static misuse ----

func TestSelfReadInInitializer(t *testing.T) {
	expectResolveError(t, `{ let a = a; }`, "in its own initializer")
}

func TestDuplicateLocal(t *testing.T) {
	expectResolveError(t, `{ let a = 1; let a = 2; }`, "already declared")
}

func TestGlobalRedefinitionAllowed(t *testing.T) {
	expectClean(t, `let a = 1; let a = 2;`)
}

func TestTopLevelReturn(t *testing.T) {
	expectResolveError(t, `return 1;`, "top-level")
}

func TestReturnValueFromInitializer(t *testing.T) {
	expectResolveError(t, `class A { init() { return 1; } }`, "initializer")
}

func TestBareReturnFromInitializerAllowed(t *testing.T) {
	expectClean(t, `class A { init() { return; } }`)
}

func TestBreakOutsideLoop(t *testing.T) {
	expectResolveError(t, `break;`, "'break' outside of a loop")
	expectResolveError(t, `func f() { break; }`, "'break' outside of a loop")
}

func TestContinueOutsideLoop(t *testing.T) {
	expectResolveError(t, `continue;`, "'continue' outside of a loop")
}

func TestBreakInsideLoopAllowed(t *testing.T) {
	expectClean(t, `while (true) { break; }`)
	expectClean(t, `for (;;) { continue; }`)
}

func TestThisOutsideClass(t *testing.T) {
	expectResolveError(t, `print(this);`, "'this' outside of a class")
	expectResolveError(t, `func f() { return this; }`, "'this' outside of a class")
}

func TestSuperOutsideClass(t *testing.T) {
	expectResolveError(t, `print(super.x);`, "'super' outside of a class")
}

func TestSuperWithoutSuperclass(t *testing.T) {
	expectResolveError(t, `class A { hi() { return super.hi(); } }`, "no superclass")
}

func TestSelfInheritance(t *testing.T) {
	expectResolveError(t, `class A < A {}`, "inherit from itself")
}

func TestReturnInsideLambdaAllowed(t *testing.T) {
	expectClean(t, `let f = func() { return 1; };`)
}

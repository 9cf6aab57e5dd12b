// Package resolver performs static scope analysis over the AST.
//
// It walks the program once, binds every local variable use to its scope
// depth, and rejects static misuse: reading a variable in its own
// initialiser, duplicate locals, and 'this'/'super'/'return'/'break'/
// 'continue' outside their valid contexts. The resulting depth table is
// consumed by the interpreter for direct environment jumps.
package resolver

import (
	"fmt"

	"flint-lang/internal/ast"
	"flint-lang/internal/diag"
	"flint-lang/internal/token"
)

// functionKind tracks what kind of function body is being resolved.
type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnLambda
	fnMethod
	fnInitializer
)

// classKind tracks whether resolution is inside a class body.
type classKind int

const (
	clsNone classKind = iota
	clsClass
	clsSubClass
)

// Resolver computes the locals depth table for a program.
type Resolver struct {
	// scopes is a stack of lexical scopes; the bool marks a name as fully
	// initialised (declared-only names are false until their initialiser
	// has been resolved).
	scopes []map[string]bool
	locals map[ast.Expr]int
	diags  []diag.Diagnostic

	currentFunction functionKind
	currentClass    classKind
	loopDepth       int
}

// New creates a resolver with an empty scope stack (global scope is implicit).
func New() *Resolver {
	return &Resolver{locals: make(map[ast.Expr]int)}
}

// Resolve analyses the program and returns the locals table and diagnostics.
// Names that resolve to the global scope get no table entry.
func (r *Resolver) Resolve(stmts []ast.Stmt) (map[ast.Expr]int, []diag.Diagnostic) {
	r.resolveStmts(stmts)
	return r.locals, r.diags
}

// ---- scope helpers ----

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare marks a name as existing but not yet initialised in the innermost
// scope. Duplicate locals are a diagnostic; global redefinition is allowed.
func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name.Lexeme]; exists {
		r.errorAt(name, fmt.Sprintf("variable '%s' already declared in this scope", name.Lexeme))
	}
	scope[name.Lexeme] = false
}

// define marks a declared name as initialised.
func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

// resolveLocal binds expr to the depth of the innermost scope containing
// name. Names found in no scope are globals and get no entry.
func (r *Resolver) resolveLocal(expr ast.Expr, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) errorAt(tok token.Token, msg string) {
	where := fmt.Sprintf("at '%s'", tok.Lexeme)
	if tok.Kind == token.EOF {
		where = "at end"
	}
	r.diags = append(r.diags, diag.ErrorAt("E3001", tok.Span, where, "%s", msg))
}

// ---- statements ----

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		r.resolveExpr(s.Expr)

	case *ast.LetStmt:
		// Declare every name first so an initialiser cannot read the
		// variable it is initialising.
		for _, d := range s.Decls {
			r.declare(d.Name)
		}
		for _, d := range s.Decls {
			if d.Init != nil {
				r.resolveExpr(d.Init)
			}
			r.define(d.Name)
		}

	case *ast.BlockStmt:
		r.beginScope()
		r.resolveStmts(s.Stmts)
		r.endScope()

	case *ast.IfStmt:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}

	case *ast.WhileStmt:
		r.resolveExpr(s.Cond)
		r.loopDepth++
		r.resolveStmt(s.Body)
		r.loopDepth--

	case *ast.FunctionStmt:
		// Define the name before the body so the function can recurse.
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, fnFunction)

	case *ast.ReturnStmt:
		if r.currentFunction == fnNone {
			r.errorAt(s.Keyword, "cannot return from top-level code")
		}
		if s.Value != nil {
			if r.currentFunction == fnInitializer {
				r.errorAt(s.Keyword, "cannot return a value from an initializer")
			}
			r.resolveExpr(s.Value)
		}

	case *ast.BreakStmt:
		if r.loopDepth == 0 {
			r.errorAt(s.Keyword, "'break' outside of a loop")
		}

	case *ast.ContinueStmt:
		if r.loopDepth == 0 {
			r.errorAt(s.Keyword, "'continue' outside of a loop")
		}

	case *ast.TryCatchContinueStmt:
		r.resolveStmt(s.Body)

	case *ast.ClassStmt:
		r.resolveClass(s)
	}
}

func (r *Resolver) resolveFunction(fn *ast.FunctionStmt, kind functionKind) {
	enclosing := r.currentFunction
	enclosingLoops := r.loopDepth
	r.currentFunction = kind
	r.loopDepth = 0 // a loop outside the function does not enclose its body
	defer func() {
		r.currentFunction = enclosing
		r.loopDepth = enclosingLoops
	}()

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
	r.endScope()
}

func (r *Resolver) resolveClass(s *ast.ClassStmt) {
	enclosing := r.currentClass
	r.currentClass = clsClass
	defer func() { r.currentClass = enclosing }()

	r.declare(s.Name)
	r.define(s.Name)

	if s.Super != nil {
		if s.Super.Name.Lexeme == s.Name.Lexeme {
			r.errorAt(s.Super.Name, "a class cannot inherit from itself")
		}
		r.currentClass = clsSubClass
		r.resolveExpr(s.Super)
		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, method := range s.Methods {
		kind := fnMethod
		if method.Name.Lexeme == "init" {
			kind = fnInitializer
		}
		r.resolveFunction(method, kind)
	}
	for _, method := range s.ClassMethods {
		r.resolveFunction(method, fnMethod)
	}

	r.endScope()
	if s.Super != nil {
		r.endScope()
	}
}

// ---- expressions ----

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		// nothing to resolve

	case *ast.VariableExpr:
		if len(r.scopes) > 0 {
			if initialised, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !initialised {
				r.errorAt(e.Name, fmt.Sprintf("cannot read variable '%s' in its own initializer", e.Name.Lexeme))
			}
		}
		r.resolveLocal(e, e.Name)

	case *ast.AssignExpr:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name)

	case *ast.UnaryExpr:
		r.resolveExpr(e.Operand)

	case *ast.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.GroupingExpr:
		r.resolveExpr(e.Inner)

	case *ast.ConditionalExpr:
		r.resolveExpr(e.Cond)
		r.resolveExpr(e.Then)
		r.resolveExpr(e.Else)

	case *ast.CallExpr:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}

	case *ast.GetExpr:
		r.resolveExpr(e.Object)

	case *ast.SetExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)

	case *ast.GetIndexExpr:
		r.resolveExpr(e.Object)
		r.resolveExpr(e.Index)

	case *ast.SetIndexExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
		r.resolveExpr(e.Index)

	case *ast.ThisExpr:
		if r.currentClass == clsNone {
			r.errorAt(e.Keyword, "'this' outside of a class")
			return
		}
		r.resolveLocal(e, e.Keyword)

	case *ast.SuperExpr:
		switch r.currentClass {
		case clsNone:
			r.errorAt(e.Keyword, "'super' outside of a class")
		case clsClass:
			r.errorAt(e.Keyword, "'super' in a class with no superclass")
		default:
			r.resolveLocal(e, e.Keyword)
		}

	case *ast.ArrayExpr:
		for _, elem := range e.Elements {
			r.resolveExpr(elem)
		}

	case *ast.LambdaExpr:
		r.resolveFunction(e.Fn, fnLambda)
	}
}

package runtime

import (
	"fmt"
	"io"
	"math"

	"flint-lang/internal/ast"
	"flint-lang/internal/span"
	"flint-lang/internal/token"
)

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone     ExecSignal = iota
	SigReturn              // return from function
	SigBreak               // break from loop
	SigContinue            // continue in loop
)

// ExecResult carries a control flow signal and an optional value (for return).
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

var resultNone = ExecResult{Signal: SigNone}

// ============================================================
// Runtime error
// ============================================================

// RuntimeError represents an error during interpretation.
type RuntimeError struct {
	Message string
	Span    span.Span
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] Runtime error: %s", e.Span.Start.Line, e.Message)
}

func runtimeErr(s span.Span, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Span: s}
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the resolved AST and executes it.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  map[ast.Expr]int

	stdout io.Writer
	errOut io.Writer
	stdin  io.Reader
}

// NewInterpreter creates a new interpreter with built-in functions registered
// in the global scope. Program output goes to stdout, runtime error reports
// to errOut; scan() reads from stdin.
func NewInterpreter(stdout, errOut io.Writer, stdin io.Reader) *Interpreter {
	globals := NewEnvironment(nil)
	in := &Interpreter{
		globals: globals,
		env:     globals,
		locals:  make(map[ast.Expr]int),
		stdout:  stdout,
		errOut:  errOut,
		stdin:   stdin,
	}
	RegisterBuiltins(globals, stdout, stdin)
	return in
}

// Resolve merges the resolver's depth table into the interpreter. The REPL
// calls this once per entry; a script run calls it once.
func (in *Interpreter) Resolve(locals map[ast.Expr]int) {
	for expr, depth := range locals {
		in.locals[expr] = depth
	}
}

// Globals returns the global environment (useful for tests and the REPL).
func (in *Interpreter) Globals() *Environment {
	return in.globals
}

// Interpret executes top-level statements. A runtime error in one statement
// is reported to errOut and execution continues with the next; the first
// error is returned so callers can map it to an exit code.
func (in *Interpreter) Interpret(stmts []ast.Stmt) error {
	var firstErr error
	for _, stmt := range stmts {
		result, err := in.execStmt(stmt)
		if err == nil && result.Signal != SigNone {
			switch result.Signal {
			case SigBreak:
				err = runtimeErr(stmt.GetSpan(), "'break' outside of a loop")
			case SigContinue:
				err = runtimeErr(stmt.GetSpan(), "'continue' outside of a loop")
			case SigReturn:
				err = runtimeErr(stmt.GetSpan(), "'return' outside of a function")
			}
		}
		if err != nil {
			fmt.Fprintln(in.errOut, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ============================================================
// Statement execution
// ============================================================

func (in *Interpreter) execStmt(stmt ast.Stmt) (ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := in.evalExpr(s.Expr)
		return resultNone, err

	case *ast.LetStmt:
		for _, d := range s.Decls {
			var val Value = NullVal{}
			if d.Init != nil {
				v, err := in.evalExpr(d.Init)
				if err != nil {
					return resultNone, err
				}
				val = v
			}
			in.env.Define(d.Name.Lexeme, val)
		}
		return resultNone, nil

	case *ast.BlockStmt:
		return in.execBlock(s.Stmts, NewEnvironment(in.env))

	case *ast.IfStmt:
		cond, err := in.evalExpr(s.Cond)
		if err != nil {
			return resultNone, err
		}
		if IsTruthy(cond) {
			return in.execStmt(s.Then)
		}
		if s.Else != nil {
			return in.execStmt(s.Else)
		}
		return resultNone, nil

	case *ast.WhileStmt:
		return in.execWhile(s)

	case *ast.FunctionStmt:
		fn := &FuncVal{Decl: s, Closure: in.env}
		in.env.Define(s.Name.Lexeme, fn)
		return resultNone, nil

	case *ast.ReturnStmt:
		var val Value = NothingVal{}
		if s.Value != nil {
			v, err := in.evalExpr(s.Value)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		return ExecResult{Signal: SigReturn, Value: val}, nil

	case *ast.BreakStmt:
		return ExecResult{Signal: SigBreak}, nil

	case *ast.ContinueStmt:
		return ExecResult{Signal: SigContinue}, nil

	case *ast.TryCatchContinueStmt:
		result, err := in.execStmt(s.Body)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigContinue {
			return resultNone, nil // consumed; the loop increment still runs
		}
		return result, nil

	case *ast.ClassStmt:
		return in.execClassDecl(s)

	default:
		return resultNone, runtimeErr(stmt.GetSpan(), "unhandled statement type: %T", stmt)
	}
}

// execBlock runs statements in blockEnv, restoring the previous environment
// on every exit path.
func (in *Interpreter) execBlock(stmts []ast.Stmt, blockEnv *Environment) (ExecResult, error) {
	prevEnv := in.env
	in.env = blockEnv
	defer func() { in.env = prevEnv }()

	for _, stmt := range stmts {
		result, err := in.execStmt(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.Signal != SigNone {
			return result, nil // propagate signal
		}
	}
	return resultNone, nil
}

func (in *Interpreter) execWhile(s *ast.WhileStmt) (ExecResult, error) {
	for {
		cond, err := in.evalExpr(s.Cond)
		if err != nil {
			return resultNone, err
		}
		if !IsTruthy(cond) {
			break
		}

		result, err := in.execStmt(s.Body)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigBreak {
			break
		}
		if result.Signal == SigReturn {
			return result, nil // propagate past the loop
		}
		// SigContinue: resume at the condition
	}
	return resultNone, nil
}

// execClassDecl evaluates the superclass expression, binds 'super' in a
// method-definition scope when present, builds the method tables, and
// assigns the finished class over its placeholder binding.
func (in *Interpreter) execClassDecl(s *ast.ClassStmt) (ExecResult, error) {
	var super *ClassVal
	if s.Super != nil {
		superVal, err := in.evalExpr(s.Super)
		if err != nil {
			return resultNone, err
		}
		cls, ok := superVal.(*ClassVal)
		if !ok {
			return resultNone, runtimeErr(s.Super.GetSpan(), "superclass must be a class")
		}
		super = cls
	}

	in.env.Define(s.Name.Lexeme, NothingVal{})

	methodEnv := in.env
	if super != nil {
		methodEnv = NewEnvironment(in.env)
		methodEnv.Define("super", super)
	}

	methods := make(map[string]*FuncVal, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = &FuncVal{
			Decl:          m,
			Closure:       methodEnv,
			IsInitializer: m.Name.Lexeme == "init",
		}
	}
	classMethods := make(map[string]*FuncVal, len(s.ClassMethods))
	for _, m := range s.ClassMethods {
		classMethods[m.Name.Lexeme] = &FuncVal{Decl: m, Closure: methodEnv}
	}

	cls := &ClassVal{
		Name:         s.Name.Lexeme,
		Super:        super,
		Methods:      methods,
		ClassMethods: classMethods,
	}
	if err := in.env.Assign(s.Name.Lexeme, cls); err != nil {
		return resultNone, runtimeErr(s.Name.Span, "%s", err)
	}
	return resultNone, nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (in *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return literalValue(e.Value), nil

	case *ast.GroupingExpr:
		return in.evalExpr(e.Inner)

	case *ast.VariableExpr:
		return in.lookUpVariable(e, e.Name)

	case *ast.AssignExpr:
		return in.evalAssign(e)

	case *ast.UnaryExpr:
		return in.evalUnary(e)

	case *ast.BinaryExpr:
		return in.evalBinary(e)

	case *ast.LogicalExpr:
		return in.evalLogical(e)

	case *ast.ConditionalExpr:
		cond, err := in.evalExpr(e.Cond)
		if err != nil {
			return nil, err
		}
		if IsTruthy(cond) {
			return in.evalExpr(e.Then)
		}
		return in.evalExpr(e.Else)

	case *ast.CallExpr:
		return in.evalCall(e)

	case *ast.GetExpr:
		return in.evalGet(e)

	case *ast.SetExpr:
		return in.evalSet(e)

	case *ast.GetIndexExpr:
		return in.evalGetIndex(e)

	case *ast.SetIndexExpr:
		return in.evalSetIndex(e)

	case *ast.ThisExpr:
		return in.lookUpVariable(e, e.Keyword)

	case *ast.SuperExpr:
		return in.evalSuper(e)

	case *ast.ArrayExpr:
		elements := make([]Value, len(e.Elements))
		for idx, elemExpr := range e.Elements {
			val, err := in.evalExpr(elemExpr)
			if err != nil {
				return nil, err
			}
			elements[idx] = val
		}
		return &ArrayVal{Elements: elements}, nil

	case *ast.LambdaExpr:
		return &FuncVal{Decl: e.Fn, Closure: in.env}, nil

	default:
		return nil, runtimeErr(expr.GetSpan(), "unhandled expression type: %T", expr)
	}
}

func literalValue(v interface{}) Value {
	switch val := v.(type) {
	case nil:
		return NothingVal{}
	case bool:
		return BoolVal(val)
	case float64:
		return NumberVal(val)
	case string:
		return StringVal(val)
	default:
		return NothingVal{}
	}
}

// lookUpVariable reads a variable through the resolver's depth table when the
// expression was bound to a local, otherwise from globals. Reading the
// uninitialised placeholder is a runtime error.
func (in *Interpreter) lookUpVariable(expr ast.Expr, name token.Token) (Value, error) {
	var val Value
	if depth, ok := in.locals[expr]; ok {
		val = in.env.GetAt(depth, name.Lexeme)
	} else {
		v, ok := in.globals.Get(name.Lexeme)
		if !ok {
			return nil, runtimeErr(name.Span, "undefined variable '%s'", name.Lexeme)
		}
		val = v
	}
	if _, uninit := val.(NullVal); uninit {
		return nil, runtimeErr(name.Span, "variable '%s' used before being initialised", name.Lexeme)
	}
	return val, nil
}

func (in *Interpreter) evalAssign(e *ast.AssignExpr) (Value, error) {
	val, err := in.evalExpr(e.Value)
	if err != nil {
		return nil, err
	}
	if depth, ok := in.locals[e]; ok {
		in.env.AssignAt(depth, e.Name.Lexeme, val)
	} else if err := in.globals.Assign(e.Name.Lexeme, val); err != nil {
		return nil, runtimeErr(e.Name.Span, "%s", err)
	}
	return val, nil
}

func (in *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := in.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.BANG:
		return BoolVal(!IsTruthy(operand)), nil
	case token.MINUS:
		num, ok := operand.(NumberVal)
		if !ok {
			return nil, runtimeErr(e.Op.Span, "operand to '-' must be a number, got %s", operand.TypeName())
		}
		return NumberVal(-float64(num)), nil
	default:
		return nil, runtimeErr(e.Op.Span, "unknown unary operator '%s'", e.Op.Lexeme)
	}
}

func (in *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := in.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.COMMA:
		return right, nil

	case token.EQ:
		return BoolVal(ValuesEqual(left, right)), nil
	case token.NEQ:
		return BoolVal(!ValuesEqual(left, right)), nil

	case token.PLUS:
		_, leftIsStr := left.(StringVal)
		_, rightIsStr := right.(StringVal)
		if leftIsStr || rightIsStr {
			return StringVal(left.String() + right.String()), nil
		}
		ln, lok := left.(NumberVal)
		rn, rok := right.(NumberVal)
		if lok && rok {
			return NumberVal(float64(ln) + float64(rn)), nil
		}
		return nil, runtimeErr(e.Op.Span, "operands to '+' must be numbers or strings")

	case token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		ln, lok := left.(NumberVal)
		rn, rok := right.(NumberVal)
		if !lok || !rok {
			return nil, runtimeErr(e.Op.Span, "operands to '%s' must be numbers", e.Op.Lexeme)
		}
		switch e.Op.Kind {
		case token.MINUS:
			return NumberVal(float64(ln) - float64(rn)), nil
		case token.STAR:
			return NumberVal(float64(ln) * float64(rn)), nil
		case token.SLASH:
			if float64(rn) == 0 {
				return nil, runtimeErr(e.Op.Span, "division by zero")
			}
			return NumberVal(float64(ln) / float64(rn)), nil
		default: // PERCENT
			if float64(rn) == 0 {
				return nil, runtimeErr(e.Op.Span, "modulo by zero")
			}
			return NumberVal(math.Mod(float64(ln), float64(rn))), nil
		}

	case token.LT, token.LTE, token.GT, token.GTE:
		if ln, ok := left.(NumberVal); ok {
			if rn, ok := right.(NumberVal); ok {
				return compareNumbers(e.Op.Kind, float64(ln), float64(rn)), nil
			}
		}
		if ls, ok := left.(StringVal); ok {
			if rs, ok := right.(StringVal); ok {
				return compareStrings(e.Op.Kind, string(ls), string(rs)), nil
			}
		}
		return nil, runtimeErr(e.Op.Span, "operands to '%s' must be two numbers or two strings", e.Op.Lexeme)

	default:
		return nil, runtimeErr(e.Op.Span, "unknown binary operator '%s'", e.Op.Lexeme)
	}
}

func compareNumbers(op token.Kind, a, b float64) Value {
	switch op {
	case token.LT:
		return BoolVal(a < b)
	case token.LTE:
		return BoolVal(a <= b)
	case token.GT:
		return BoolVal(a > b)
	default:
		return BoolVal(a >= b)
	}
}

func compareStrings(op token.Kind, a, b string) Value {
	switch op {
	case token.LT:
		return BoolVal(a < b)
	case token.LTE:
		return BoolVal(a <= b)
	case token.GT:
		return BoolVal(a > b)
	default:
		return BoolVal(a >= b)
	}
}

// evalLogical short-circuits and returns the deciding operand without
// coercing it to bool.
func (in *Interpreter) evalLogical(e *ast.LogicalExpr) (Value, error) {
	left, err := in.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op.Kind == token.KW_OR {
		if IsTruthy(left) {
			return left, nil
		}
		return in.evalExpr(e.Right)
	}
	// and
	if !IsTruthy(left) {
		return left, nil
	}
	return in.evalExpr(e.Right)
}

func (in *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	callee, err := in.evalExpr(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(e.Args))
	for idx, argExpr := range e.Args {
		val, err := in.evalExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}

	callable, ok := callee.(Callable)
	if !ok {
		return nil, runtimeErr(e.Paren.Span, "can only call functions and classes, got %s", callee.TypeName())
	}
	if arity := callable.Arity(); arity >= 0 && len(args) != arity {
		return nil, runtimeErr(e.Paren.Span, "expected %d arguments but got %d", arity, len(args))
	}
	return callable.Call(in, args, e.Paren.Span)
}

// Call runs a user function: a fresh environment encloses the closure,
// parameters are bound, and a return signal is caught at this boundary.
// Initializers always surface the bound 'this'.
func (v *FuncVal) Call(in *Interpreter, args []Value, s span.Span) (Value, error) {
	funcEnv := NewEnvironment(v.Closure)
	for idx, param := range v.Decl.Params {
		funcEnv.Define(param.Lexeme, args[idx])
	}

	result, err := in.execBlock(v.Decl.Body, funcEnv)
	if err != nil {
		return nil, err
	}
	if v.IsInitializer {
		return v.Closure.GetAt(0, "this"), nil
	}
	if result.Signal == SigReturn {
		return result.Value, nil
	}
	if result.Signal == SigBreak || result.Signal == SigContinue {
		return nil, runtimeErr(s, "loop control signal escaped function body")
	}
	return NothingVal{}, nil
}

// evalGet resolves property access. On instances, fields win over methods;
// methods are bound to the instance and getters run immediately. On classes,
// only static methods are visible. Arrays and strings expose built-in
// methods.
func (in *Interpreter) evalGet(e *ast.GetExpr) (Value, error) {
	object, err := in.evalExpr(e.Object)
	if err != nil {
		return nil, err
	}

	name := e.Name.Lexeme
	switch obj := object.(type) {
	case *InstanceVal:
		if val, ok := obj.Fields[name]; ok {
			return val, nil
		}
		if method := obj.Class.FindMethod(name); method != nil {
			bound := method.Bind(obj)
			if method.Decl.IsGetter {
				return bound.Call(in, nil, e.Name.Span)
			}
			return bound, nil
		}
		return nil, runtimeErr(e.Name.Span, "undefined property '%s'", name)

	case *ClassVal:
		if method := obj.FindClassMethod(name); method != nil {
			bound := method.Bind(obj)
			if method.Decl.IsGetter {
				return bound.Call(in, nil, e.Name.Span)
			}
			return bound, nil
		}
		return nil, runtimeErr(e.Name.Span, "undefined class method '%s' on %s", name, obj.Name)

	case *ArrayVal:
		if method := arrayMethod(obj, name); method != nil {
			return method, nil
		}
		return nil, runtimeErr(e.Name.Span, "array has no method '%s'", name)

	case StringVal:
		if method := stringMethod(obj, name); method != nil {
			return method, nil
		}
		return nil, runtimeErr(e.Name.Span, "string has no method '%s'", name)

	default:
		return nil, runtimeErr(e.Name.Span, "only instances have properties, got %s", object.TypeName())
	}
}

func (in *Interpreter) evalSet(e *ast.SetExpr) (Value, error) {
	object, err := in.evalExpr(e.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := object.(*InstanceVal)
	if !ok {
		return nil, runtimeErr(e.Name.Span, "only instances have fields, got %s", object.TypeName())
	}
	val, err := in.evalExpr(e.Value)
	if err != nil {
		return nil, err
	}
	instance.Fields[e.Name.Lexeme] = val
	return val, nil
}

func (in *Interpreter) evalGetIndex(e *ast.GetIndexExpr) (Value, error) {
	object, err := in.evalExpr(e.Object)
	if err != nil {
		return nil, err
	}
	index, err := in.evalExpr(e.Index)
	if err != nil {
		return nil, err
	}

	switch obj := object.(type) {
	case *ArrayVal:
		idx, err := indexOf(index, len(obj.Elements), e.Bracket.Span)
		if err != nil {
			return nil, err
		}
		return obj.Elements[idx], nil
	case StringVal:
		idx, err := indexOf(index, len(string(obj)), e.Bracket.Span)
		if err != nil {
			return nil, err
		}
		return StringVal(string(obj)[idx : idx+1]), nil
	default:
		return nil, runtimeErr(e.Bracket.Span, "cannot index a value of type %s", object.TypeName())
	}
}

func (in *Interpreter) evalSetIndex(e *ast.SetIndexExpr) (Value, error) {
	object, err := in.evalExpr(e.Object)
	if err != nil {
		return nil, err
	}
	arr, ok := object.(*ArrayVal)
	if !ok {
		return nil, runtimeErr(e.Bracket.Span, "cannot index-assign a value of type %s", object.TypeName())
	}
	index, err := in.evalExpr(e.Index)
	if err != nil {
		return nil, err
	}
	idx, err := indexOf(index, len(arr.Elements), e.Bracket.Span)
	if err != nil {
		return nil, err
	}
	val, err := in.evalExpr(e.Value)
	if err != nil {
		return nil, err
	}
	arr.Elements[idx] = val
	return val, nil
}

// indexOf validates an index value against a container length.
func indexOf(index Value, length int, s span.Span) (int, error) {
	num, ok := index.(NumberVal)
	if !ok {
		return 0, runtimeErr(s, "index must be a number, got %s", index.TypeName())
	}
	f := float64(num)
	if f != math.Trunc(f) {
		return 0, runtimeErr(s, "index must be an integer")
	}
	idx := int(f)
	if idx < 0 || idx >= length {
		return 0, runtimeErr(s, "index %d out of range (length %d)", idx, length)
	}
	return idx, nil
}

// evalSuper jumps exactly depth scopes for the superclass and depth-1 for
// the current instance, then binds the superclass method to that instance.
func (in *Interpreter) evalSuper(e *ast.SuperExpr) (Value, error) {
	depth, ok := in.locals[e]
	if !ok {
		return nil, runtimeErr(e.Keyword.Span, "'super' outside of a subclass method")
	}
	super, ok := in.env.GetAt(depth, "super").(*ClassVal)
	if !ok {
		return nil, runtimeErr(e.Keyword.Span, "'super' is not bound to a class")
	}
	object := in.env.GetAt(depth-1, "this")

	method := super.FindMethod(e.Method.Lexeme)
	if method == nil {
		return nil, runtimeErr(e.Method.Span, "undefined property '%s'", e.Method.Lexeme)
	}
	bound := method.Bind(object)
	if method.Decl.IsGetter {
		return bound.Call(in, nil, e.Method.Span)
	}
	return bound, nil
}

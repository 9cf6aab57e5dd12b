// Package runtime implements the interpreter and runtime value system for Flint.
package runtime

import (
	"fmt"
	"strings"

	"flint-lang/internal/ast"
	"flint-lang/internal/span"
)

// Value is the interface for all runtime values.
type Value interface {
	TypeName() string
	String() string
}

// Callable is implemented by values that can be invoked: functions, builtins
// and classes. An Arity of -1 means variadic.
type Callable interface {
	Value
	Arity() int
	Call(in *Interpreter, args []Value, s span.Span) (Value, error)
}

// ---- Primitive values ----

// NothingVal represents the absence of a value ('nothing' in source).
type NothingVal struct{}

func (v NothingVal) TypeName() string { return "nothing" }
func (v NothingVal) String() string   { return "NOTHING" }

// NullVal is the internal placeholder bound to a declared-but-uninitialised
// variable. Reading it is a runtime error; it never escapes to user code.
type NullVal struct{}

func (v NullVal) TypeName() string { return "null" }
func (v NullVal) String() string   { return "NOTHING" }

// BoolVal represents a boolean value.
type BoolVal bool

func (v BoolVal) TypeName() string { return "bool" }
func (v BoolVal) String() string   { return fmt.Sprintf("%t", bool(v)) }

// NumberVal represents a numeric value (IEEE-754 double).
type NumberVal float64

func (v NumberVal) TypeName() string { return "number" }
func (v NumberVal) String() string   { return FormatNumber(float64(v)) }

// StringVal represents an immutable string value.
type StringVal string

func (v StringVal) TypeName() string { return "string" }
func (v StringVal) String() string   { return string(v) }

// ---- Array value ----

// ArrayVal represents a mutable array with shared ownership.
type ArrayVal struct {
	Elements []Value
}

func (v *ArrayVal) TypeName() string { return "array" }
func (v *ArrayVal) String() string {
	parts := make([]string, len(v.Elements))
	for i, elem := range v.Elements {
		if s, ok := elem.(StringVal); ok {
			parts[i] = fmt.Sprintf("\"%s\"", string(s))
		} else {
			parts[i] = elem.String()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ---- Callable values ----

// FuncVal represents a user-defined function: a declaration plus the
// environment captured at its creation. Bound methods share the declaration
// but carry distinct closures.
type FuncVal struct {
	Decl          *ast.FunctionStmt
	Closure       *Environment
	IsInitializer bool
}

func (v *FuncVal) TypeName() string { return "function" }
func (v *FuncVal) String() string {
	if v.Decl.Name.Lexeme == "" {
		return "<fn>"
	}
	return fmt.Sprintf("<fn %s>", v.Decl.Name.Lexeme)
}

// Arity returns the declared parameter count.
func (v *FuncVal) Arity() int { return len(v.Decl.Params) }

// Bind returns a copy of the function whose closure has 'this' preset to the
// receiver.
func (v *FuncVal) Bind(receiver Value) *FuncVal {
	env := NewEnvironment(v.Closure)
	env.Define("this", receiver)
	return &FuncVal{Decl: v.Decl, Closure: env, IsInitializer: v.IsInitializer}
}

// BuiltinFn is the Go signature for built-in functions.
type BuiltinFn func(in *Interpreter, args []Value) (Value, error)

// BuiltinVal represents a built-in (native) function. NumArgs -1 means
// variadic.
type BuiltinVal struct {
	Name    string
	NumArgs int
	Fn      BuiltinFn
}

func (v *BuiltinVal) TypeName() string { return "builtin" }
func (v *BuiltinVal) String() string   { return fmt.Sprintf("<builtin %s>", v.Name) }
func (v *BuiltinVal) Arity() int       { return v.NumArgs }

// Call invokes the builtin; plain errors are wrapped into runtime errors at
// the call site span.
func (v *BuiltinVal) Call(in *Interpreter, args []Value, s span.Span) (Value, error) {
	result, err := v.Fn(in, args)
	if err != nil {
		if _, ok := err.(*RuntimeError); !ok {
			err = &RuntimeError{Message: err.Error(), Span: s}
		}
		return nil, err
	}
	return result, nil
}

// ---- Class and instance values ----

// ClassVal represents a class: a method table, an optional superclass, and a
// table of class (static) methods. A class is itself callable; calling it
// constructs an instance.
type ClassVal struct {
	Name         string
	Super        *ClassVal
	Methods      map[string]*FuncVal
	ClassMethods map[string]*FuncVal
}

func (v *ClassVal) TypeName() string { return "class" }
func (v *ClassVal) String() string   { return fmt.Sprintf("<class %s>", v.Name) }

// FindMethod walks the superclass chain for an instance method.
func (v *ClassVal) FindMethod(name string) *FuncVal {
	for cls := v; cls != nil; cls = cls.Super {
		if m, ok := cls.Methods[name]; ok {
			return m
		}
	}
	return nil
}

// FindClassMethod walks the superclass chain for a static method.
func (v *ClassVal) FindClassMethod(name string) *FuncVal {
	for cls := v; cls != nil; cls = cls.Super {
		if m, ok := cls.ClassMethods[name]; ok {
			return m
		}
	}
	return nil
}

// Arity returns the initializer's arity, or 0 when the class has none.
func (v *ClassVal) Arity() int {
	if init := v.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call constructs a new instance and runs the initializer if present.
func (v *ClassVal) Call(in *Interpreter, args []Value, s span.Span) (Value, error) {
	instance := &InstanceVal{Class: v, Fields: make(map[string]Value)}
	if init := v.FindMethod("init"); init != nil {
		if _, err := init.Bind(instance).Call(in, args, s); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// InstanceVal represents an instance of a class with a dynamic field map.
type InstanceVal struct {
	Class  *ClassVal
	Fields map[string]Value
}

func (v *InstanceVal) TypeName() string { return v.Class.Name }
func (v *InstanceVal) String() string   { return fmt.Sprintf("<instance %s>", v.Class.Name) }

// ---- Truthiness ----

// IsTruthy returns the truthiness of a value: nothing, false, 0 and the
// empty string are falsy; everything else is truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case NothingVal, NullVal:
		return false
	case BoolVal:
		return bool(val)
	case NumberVal:
		return float64(val) != 0
	case StringVal:
		return string(val) != ""
	default:
		return true
	}
}

// ---- Equality ----

// ValuesEqual implements language equality: structural for primitives,
// reference identity for objects.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case NothingVal:
		_, ok := b.(NothingVal)
		return ok
	case NullVal:
		_, ok := b.(NullVal)
		return ok
	case BoolVal:
		if bv, ok := b.(BoolVal); ok {
			return bool(av) == bool(bv)
		}
		return false
	case NumberVal:
		if bv, ok := b.(NumberVal); ok {
			return float64(av) == float64(bv)
		}
		return false
	case StringVal:
		if bv, ok := b.(StringVal); ok {
			return string(av) == string(bv)
		}
		return false
	default:
		// Reference identity for arrays, functions, classes, instances.
		return a == b
	}
}

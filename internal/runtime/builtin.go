package runtime

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// RegisterBuiltins adds the native functions to the given environment.
// print writes to w; scan reads from stdin.
func RegisterBuiltins(env *Environment, w io.Writer, stdin io.Reader) {
	reader := bufio.NewReader(stdin)

	env.Define("clock", &BuiltinVal{
		Name:    "clock",
		NumArgs: 0,
		Fn: func(in *Interpreter, args []Value) (Value, error) {
			return NumberVal(float64(time.Now().UnixNano()) / 1e9), nil
		},
	})

	env.Define("print", &BuiltinVal{
		Name:    "print",
		NumArgs: -1,
		Fn: func(in *Interpreter, args []Value) (Value, error) {
			parts := make([]string, len(args))
			for i, arg := range args {
				parts[i] = arg.String()
			}
			fmt.Fprintln(w, strings.Join(parts, " "))
			return NothingVal{}, nil
		},
	})

	env.Define("scan", &BuiltinVal{
		Name:    "scan",
		NumArgs: -1,
		Fn: func(in *Interpreter, args []Value) (Value, error) {
			if len(args) > 1 {
				return nil, fmt.Errorf("scan() expects at most 1 argument, got %d", len(args))
			}
			if len(args) == 1 {
				fmt.Fprint(w, args[0].String())
			}
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return NothingVal{}, nil
			}
			line = strings.TrimSpace(line)
			if num, err := strconv.ParseFloat(line, 64); err == nil {
				return NumberVal(num), nil
			}
			return StringVal(line), nil
		},
	})

	env.Define("intDiv", &BuiltinVal{
		Name:    "intDiv",
		NumArgs: 2,
		Fn: func(in *Interpreter, args []Value) (Value, error) {
			a, aok := args[0].(NumberVal)
			b, bok := args[1].(NumberVal)
			if !aok || !bok {
				return nil, fmt.Errorf("intDiv() expects two numbers")
			}
			if float64(b) == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return NumberVal(float64(int64(float64(a) / float64(b)))), nil
		},
	})

	env.Define("toString", &BuiltinVal{
		Name:    "toString",
		NumArgs: 1,
		Fn: func(in *Interpreter, args []Value) (Value, error) {
			return StringVal(args[0].String()), nil
		},
	})

	env.Define("ord", &BuiltinVal{
		Name:    "ord",
		NumArgs: 1,
		Fn: func(in *Interpreter, args []Value) (Value, error) {
			s, ok := args[0].(StringVal)
			if !ok || len(string(s)) != 1 {
				return nil, fmt.Errorf("ord() expects a one-character string")
			}
			return NumberVal(float64(string(s)[0])), nil
		},
	})

	env.Define("chr", &BuiltinVal{
		Name:    "chr",
		NumArgs: 1,
		Fn: func(in *Interpreter, args []Value) (Value, error) {
			n, ok := args[0].(NumberVal)
			if !ok {
				return nil, fmt.Errorf("chr() expects a number")
			}
			code := int(float64(n))
			if float64(code) != float64(n) || code < 0 || code > 255 {
				return nil, fmt.Errorf("chr() expects an integer in [0, 255]")
			}
			// Single byte, not a rune: codes above 127 must stay one
			// character so ord(chr(n)) round-trips.
			return StringVal([]byte{byte(code)}), nil
		},
	})
}

// ---- array methods ----

// arrayMethod returns a builtin bound to arr, or nil for an unknown name.
func arrayMethod(arr *ArrayVal, name string) *BuiltinVal {
	switch name {
	case "push":
		return &BuiltinVal{
			Name:    "push",
			NumArgs: 1,
			Fn: func(in *Interpreter, args []Value) (Value, error) {
				arr.Elements = append(arr.Elements, args[0])
				return NothingVal{}, nil
			},
		}
	case "pop":
		return &BuiltinVal{
			Name:    "pop",
			NumArgs: 0,
			Fn: func(in *Interpreter, args []Value) (Value, error) {
				if len(arr.Elements) == 0 {
					return nil, fmt.Errorf("pop() on empty array")
				}
				last := arr.Elements[len(arr.Elements)-1]
				arr.Elements = arr.Elements[:len(arr.Elements)-1]
				return last, nil
			},
		}
	case "length":
		return &BuiltinVal{
			Name:    "length",
			NumArgs: 0,
			Fn: func(in *Interpreter, args []Value) (Value, error) {
				return NumberVal(float64(len(arr.Elements))), nil
			},
		}
	default:
		return nil
	}
}

// ---- string methods ----

// stringMethod returns a builtin over s, or nil for an unknown name.
// Strings are immutable; lower and upper return new strings.
func stringMethod(s StringVal, name string) *BuiltinVal {
	switch name {
	case "lower":
		return &BuiltinVal{
			Name:    "lower",
			NumArgs: 0,
			Fn: func(in *Interpreter, args []Value) (Value, error) {
				return StringVal(strings.ToLower(string(s))), nil
			},
		}
	case "upper":
		return &BuiltinVal{
			Name:    "upper",
			NumArgs: 0,
			Fn: func(in *Interpreter, args []Value) (Value, error) {
				return StringVal(strings.ToUpper(string(s))), nil
			},
		}
	case "length":
		return &BuiltinVal{
			Name:    "length",
			NumArgs: 0,
			Fn: func(in *Interpreter, args []Value) (Value, error) {
				return NumberVal(float64(len(string(s)))), nil
			},
		}
	default:
		return nil
	}
}

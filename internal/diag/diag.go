// Package diag provides diagnostic (error/warning) types for the compiler.
package diag

import (
	"fmt"

	"flint-lang/internal/span"
)

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "Error"
	case Warning:
		return "Warning"
	default:
		return "Unknown"
	}
}

// Diagnostic represents a compiler diagnostic message.
type Diagnostic struct {
	Code     string    `json:"code"`            // stable error code, e.g. "E1001"
	Severity Severity  `json:"severity"`        // error or warning
	Where    string    `json:"where,omitempty"` // location context, e.g. "at 'foo'" or "at end"
	Message  string    `json:"message"`         // human-readable description
	Span     span.Span `json:"span"`            // source location
}

// String renders the diagnostic in the reporting format used on stderr:
//
//	[line N] Error at 'lexeme': message
func (d Diagnostic) String() string {
	if d.Where == "" {
		return fmt.Sprintf("[line %d] %s: %s", d.Span.Start.Line, d.Severity, d.Message)
	}
	return fmt.Sprintf("[line %d] %s %s: %s", d.Span.Start.Line, d.Severity, d.Where, d.Message)
}

// Errorf creates an error diagnostic at the given span.
func Errorf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// ErrorAt creates an error diagnostic with a location context such as
// "at 'foo'" or "at end".
func ErrorAt(code string, s span.Span, where, format string, args ...interface{}) Diagnostic {
	d := Errorf(code, s, format, args...)
	d.Where = where
	return d
}

// Warningf creates a warning diagnostic at the given span.
func Warningf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// Package execution defines the structured failure a script evaluation can
// produce. A successful evaluation is represented by the command sequence
// itself; a failed one by a ScriptError carrying the kind, a human-readable
// message, and a source line where one is available.
package execution

import (
	"errors"
	"fmt"
)

// ErrorKind classifies script evaluation failures.
type ErrorKind int

const (
	// SyntaxError means the script text could not be parsed.
	SyntaxError ErrorKind = iota
	// RuntimeError means evaluation raised an error.
	RuntimeError
	// HostViolation means the script reached for an operation outside the
	// turtle primitive set.
	HostViolation
	// Cancelled means a cooperative cancellation interrupted evaluation.
	Cancelled
)

// String returns the display name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case RuntimeError:
		return "runtime error"
	case HostViolation:
		return "host violation"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ScriptError is the structured failure of one evaluation.
type ScriptError struct {
	Kind    ErrorKind
	Message string
	Line    int // 0 when no source position is available
}

func (e *ScriptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d: %s", e.Kind, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AsScriptError unwraps err to a *ScriptError if one is in its chain.
func AsScriptError(err error) (*ScriptError, bool) {
	var se *ScriptError
	ok := errors.As(err, &se)
	return se, ok
}

package mathexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// UndefinedError is an error from a lookup for a name that is neither in the
// scope nor in the namespace.
type UndefinedError struct {
	// Name is the name that was missing.
	Name string
	// Suggestions are defined names similar to Name, closest first.
	Suggestions []string
}

func (err *UndefinedError) Error() string {
	r := "undefined symbol " + strconv.Quote(err.Name)
	if len(err.Suggestions) == 0 {
		return r
	}
	q := make([]string, len(err.Suggestions))
	for i, s := range err.Suggestions {
		q[i] = strconv.Quote(s)
	}
	return r + "; did you mean " + strings.Join(q, " or ") + "?"
}

// ReservedError is an error indicating that a scope defines a keyword.
type ReservedError struct {
	Name string
}

func (err *ReservedError) Error() string {
	return "scope contains reserved keyword " + strconv.Quote(err.Name)
}

// ArityError is an error from calling a user-defined function with the wrong
// number of arguments.
type ArityError struct {
	Name string
	Got  int
	Want int
}

func (err *ArityError) Error() string {
	return "wrong number of arguments to " + err.Name + ": got " + strconv.Itoa(err.Got) + ", want " + strconv.Itoa(err.Want)
}

// NotCallableError is an error from calling a value which is not a Func or
// RawFunc.
type NotCallableError struct {
	// Name is the rendered callee.
	Name string
	// Value is the value the callee evaluated to.
	Value any
}

func (err *NotCallableError) Error() string {
	return fmt.Sprintf("%s is not a function (%T)", err.Name, err.Value)
}

// ConditionError is an error from a condition whose value has no truth value.
type ConditionError struct {
	Value any
}

func (err *ConditionError) Error() string {
	return fmt.Sprintf("unsupported type of condition: %T", err.Value)
}

// MissingFuncError is an error from compiling an expression that uses an
// operator or function which the namespace lacks.
type MissingFuncError struct {
	// Name is the namespace name, e.g. "add".
	Name string
	// Op is the operator that required it, if any.
	Op string
}

func (err *MissingFuncError) Error() string {
	r := "namespace has no function " + strconv.Quote(err.Name)
	if err.Op != "" {
		r += " for operator " + err.Op
	}
	return r
}

// IndexError is an error from an invalid index or range.
type IndexError struct {
	// Dim is the 1-based dimension in which the error occurred, or 0 if it
	// applies to the whole index.
	Dim int
	Msg string
}

func (err *IndexError) Error() string {
	if err.Dim == 0 {
		return "index error: " + err.Msg
	}
	return "index error in dimension " + strconv.Itoa(err.Dim) + ": " + err.Msg
}

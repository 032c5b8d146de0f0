// Package bignum provides a mathexpr namespace computing with arbitrary
// precision floating-point numbers.
//
// Numbers are *big.Float. Matrices are nested []any, one level per
// dimension. Operands of other numeric types, including the float64 values of
// literals compiled without a number function, are converted to the
// namespace's precision as they are used.
package bignum

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/mathexpr"
)

// DefaultPrec is the precision used when New is given zero.
const DefaultPrec = 64

// New creates a namespace computing to prec bits of precision.
func New(prec uint) mathexpr.Namespace {
	if prec == 0 {
		prec = DefaultPrec
	}
	a := arith{prec: prec}
	ns := mathexpr.Namespace{
		"number": mathexpr.FuncOf(a.number),
	}
	a.operators(ns)
	a.functions(ns)
	a.matrices(ns)
	return ns
}

// arith computes at a fixed precision.
type arith struct {
	prec uint
}

// new returns a new zero at a's precision.
func (a arith) new() *big.Float {
	return new(big.Float).SetPrec(a.prec)
}

// number converts literal text, or any other numeric value, to a number.
func (a arith) number(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, &ArgsError{Func: "number", Got: len(args), Want: "1"}
	}
	s, ok := args[0].(string)
	if !ok {
		return a.float("number", 1, args[0])
	}
	r, _, err := a.new().Parse(s, 0)
	switch {
	case err == nil:
		return r, nil
	case err.Error() == "exponent overflow",
		strings.HasSuffix(err.Error(), ": value out of range"):
		// There isn't realistically any better way to detect this error.
		return a.new().SetInf(strings.HasPrefix(s, "-")), nil
	default:
		return nil, &TypeError{Func: "number", Arg: 1, Value: s}
	}
}

// float converts a numeric argument of fn. The result must not be modified.
func (a arith) float(fn string, arg int, v any) (*big.Float, error) {
	switch v := v.(type) {
	case *big.Float:
		return v, nil
	case int:
		return a.new().SetInt64(int64(v)), nil
	case int64:
		return a.new().SetInt64(v), nil
	case float64:
		if math.IsNaN(v) {
			return nil, &DomainError{Func: fn, Arg: arg}
		}
		return a.new().SetFloat64(v), nil
	case bool:
		if v {
			return a.new().SetInt64(1), nil
		}
		return a.new(), nil
	case *big.Int:
		return a.new().SetInt(v), nil
	case *big.Rat:
		return a.new().SetRat(v), nil
	}
	return nil, &TypeError{Func: fn, Arg: arg, Value: v}
}

// integer converts an integral argument of fn to a big.Int.
func (a arith) integer(fn string, arg int, v any) (*big.Int, error) {
	if v, ok := v.(*big.Int); ok {
		return v, nil
	}
	x, err := a.float(fn, arg, v)
	if err != nil {
		return nil, err
	}
	if !x.IsInt() {
		return nil, &DomainError{X: x, Arg: arg, Func: fn}
	}
	r, _ := x.Int(nil)
	return r, nil
}

// small converts an argument of fn to a non-negative int.
func (a arith) small(fn string, arg int, v any) (int, error) {
	x, err := a.integer(fn, arg, v)
	if err != nil {
		return 0, err
	}
	if x.Sign() < 0 || !x.IsInt64() || x.Int64() > math.MaxInt32 {
		return 0, &DomainError{X: a.new().SetInt(x), Arg: arg, Func: fn}
	}
	return int(x.Int64()), nil
}

// DomainError is an error returned when a function is called on arguments
// outside its domain. DomainError unwraps to big.ErrNaN.
type DomainError struct {
	// X is the out-of-domain argument, if it is a number.
	X *big.Float
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err *DomainError) Error() string {
	r := "argument outside domain"
	if err.X != nil {
		r = err.X.String() + " outside domain"
	}
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

func (err *DomainError) Unwrap() error {
	return big.ErrNaN{}
}

// TypeError is an error returned when a function is called with an argument
// of a type it does not handle.
type TypeError struct {
	Func  string
	Arg   int
	Value any
}

func (err *TypeError) Error() string {
	return fmt.Sprintf("unexpected type %T for argument %d of %s", err.Value, err.Arg, err.Func)
}

// ArgsError is an error returned when a function is called with the wrong
// number of arguments.
type ArgsError struct {
	Func string
	Got  int
	// Want describes the acceptable counts.
	Want string
}

func (err *ArgsError) Error() string {
	return "wrong number of arguments to " + err.Func + ": got " + strconv.Itoa(err.Got) + ", want " + err.Want
}

// SizeError is an error returned when the sizes of matrix operands do not
// agree.
type SizeError struct {
	Func string
	// A and B are the mismatched sizes.
	A, B int
}

func (err *SizeError) Error() string {
	return "dimension mismatch in " + err.Func + " (" + strconv.Itoa(err.A) + " != " + strconv.Itoa(err.B) + ")"
}

// Format renders a value produced by evaluating with a bignum namespace.
// Numbers are formatted with digits significant digits, or the fewest that
// represent them exactly if digits is negative.
func Format(v any, digits int) string {
	var b strings.Builder
	format(&b, v, digits)
	return b.String()
}

func format(b *strings.Builder, v any, digits int) {
	switch v := v.(type) {
	case *big.Float:
		b.WriteString(v.Text('g', digits))
	case []any:
		b.WriteByte('[')
		for i, x := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, x, digits)
		}
		b.WriteByte(']')
	case *mathexpr.ResultSet:
		for i, x := range v.Entries {
			if i > 0 {
				b.WriteByte('\n')
			}
			format(b, x, digits)
		}
	case string:
		b.WriteString(strconv.Quote(v))
	case nil:
		b.WriteString("undefined")
	default:
		fmt.Fprint(b, v)
	}
}

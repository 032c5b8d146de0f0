package bignum

import (
	"math/big"

	"github.com/zephyrtronium/bigfloat"
	"github.com/zephyrtronium/mathexpr"
)

// TODO(zeph): trig functions once bigfloat has them

func (a arith) functions(ns mathexpr.Namespace) {
	ns["exp"] = a.unary("exp", monadic(bigfloat.Exp))
	ns["ln"] = a.unary("ln", ln)
	ns["log"] = mathexpr.FuncOf(a.log)
	ns["sqrt"] = a.unary("sqrt", func(z, x *big.Float) error {
		if x.Signbit() && x.Sign() != 0 {
			return &DomainError{X: x, Arg: 1, Func: "sqrt"}
		}
		z.Sqrt(x)
		return nil
	})
	ns["abs"] = a.unary("abs", monadic((*big.Float).Abs))
	ns["floor"] = a.unary("floor", monadic(floor))
	ns["ceil"] = a.unary("ceil", monadic(ceil))
	ns["round"] = a.unary("round", monadic(round))
	ns["min"] = mathexpr.FuncOf(a.extremum("min", -1))
	ns["max"] = mathexpr.FuncOf(a.extremum("max", 1))
	ns["sum"] = mathexpr.FuncOf(a.sum)

	// constants
	ns["pi"] = bigfloat.Pi(a.new())
	var one big.Float
	one.SetPrec(a.prec).SetInt64(1)
	ns["e"] = bigfloat.Exp(a.new(), &one)
}

// monadic adapts a big.Float-style function of one variable. f must set out
// to its result; its return value is ignored.
func monadic(f func(out, in *big.Float) *big.Float) func(z, x *big.Float) error {
	return func(z, x *big.Float) error {
		f(z, x)
		return nil
	}
}

func ln(z, x *big.Float) error {
	switch {
	case x.Signbit() && x.Sign() != 0:
		return &DomainError{X: x, Arg: 1, Func: "ln"}
	case x.Sign() == 0:
		z.SetInf(true)
	case x.IsInf():
		z.SetInf(false)
	default:
		bigfloat.Log(z, x)
	}
	return nil
}

// log computes the logarithm in base 10, or in the base given as the second
// argument.
func (a arith) log(args ...any) (any, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, &ArgsError{Func: "log", Got: len(args), Want: "1 or 2"}
	}
	var base any = 10
	if len(args) == 2 {
		base = args[1]
	}
	return zip("log", args[0], base, func(x, b any) (any, error) {
		return a.apply2("log", func(z, x, b *big.Float) error {
			if err := ln(z, x); err != nil {
				return err
			}
			d := a.new()
			if err := ln(d, b); err != nil {
				return &DomainError{X: b, Arg: 2, Func: "log"}
			}
			return quo("log")(z, z, d)
		}, x, b)
	})
}

// flatten collects the scalar arguments of a variadic reduction. A single
// matrix argument contributes all of its elements.
func flatten(args []any) []any {
	if len(args) != 1 {
		return args
	}
	var r []any
	var walk func(v any)
	walk = func(v any) {
		if l, ok := v.([]any); ok {
			for _, x := range l {
				walk(x)
			}
			return
		}
		r = append(r, v)
	}
	walk(args[0])
	return r
}

// extremum creates min (sign -1) or max (sign 1).
func (a arith) extremum(fn string, sign int) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		vals := flatten(args)
		if len(vals) == 0 {
			return nil, &ArgsError{Func: fn, Got: 0, Want: "at least 1"}
		}
		var r *big.Float
		for i, v := range vals {
			x, err := a.float(fn, i+1, v)
			if err != nil {
				return nil, err
			}
			if r == nil || x.Cmp(r) == sign {
				r = x
			}
		}
		return a.new().Set(r), nil
	}
}

func (a arith) sum(args ...any) (any, error) {
	vals := flatten(args)
	r := a.new()
	for i, v := range vals {
		x, err := a.float("sum", i+1, v)
		if err != nil {
			return nil, err
		}
		if _, err := guard("sum", func() (any, error) { return r.Add(r, x), nil }); err != nil {
			return nil, err
		}
	}
	return r, nil
}

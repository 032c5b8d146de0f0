package bignum

import (
	"errors"
	"math/big"

	"github.com/zephyrtronium/bigfloat"
	"github.com/zephyrtronium/mathexpr"
)

func (a arith) operators(ns mathexpr.Namespace) {
	ns["add"] = a.binary("add", func(z, x, y *big.Float) error {
		z.Add(x, y)
		return nil
	})
	ns["subtract"] = a.binary("subtract", func(z, x, y *big.Float) error {
		z.Sub(x, y)
		return nil
	})
	ns["multiply"] = mathexpr.FuncOf(a.multiply)
	ns["dotMultiply"] = a.binary("dotMultiply", func(z, x, y *big.Float) error {
		z.Mul(x, y)
		return nil
	})
	ns["divide"] = mathexpr.FuncOf(a.divide)
	ns["dotDivide"] = a.binary("dotDivide", quo("dotDivide"))
	ns["mod"] = a.binary("mod", a.mod)
	ns["pow"] = mathexpr.FuncOf(a.pow)
	ns["dotPow"] = a.binary("dotPow", a.powf("dotPow"))
	ns["unaryMinus"] = a.unary("unaryMinus", func(z, x *big.Float) error {
		z.Neg(x)
		return nil
	})
	ns["unaryPlus"] = a.unary("unaryPlus", func(z, x *big.Float) error {
		z.Set(x)
		return nil
	})
	ns["factorial"] = a.unary("factorial", a.factorial)
	ns["transpose"] = mathexpr.FuncOf(transpose)

	ns["equal"] = a.compare("equal", func(c int) bool { return c == 0 })
	ns["unequal"] = a.compare("unequal", func(c int) bool { return c != 0 })
	ns["smaller"] = a.compare("smaller", func(c int) bool { return c < 0 })
	ns["larger"] = a.compare("larger", func(c int) bool { return c > 0 })
	ns["smallerEq"] = a.compare("smallerEq", func(c int) bool { return c <= 0 })
	ns["largerEq"] = a.compare("largerEq", func(c int) bool { return c >= 0 })

	ns["and"] = logical("and", func(x, y bool) bool { return x && y })
	ns["or"] = logical("or", func(x, y bool) bool { return x || y })
	ns["xor"] = logical("xor", func(x, y bool) bool { return x != y })
	ns["not"] = mathexpr.FuncOf(func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, &ArgsError{Func: "not", Got: len(args), Want: "1"}
		}
		return each(args[0], func(x any) (any, error) {
			t, err := mathexpr.Truthy(x)
			return !t, err
		})
	})

	ns["bitAnd"] = a.bitwise("bitAnd", func(z, x, y *big.Int) error {
		z.And(x, y)
		return nil
	})
	ns["bitOr"] = a.bitwise("bitOr", func(z, x, y *big.Int) error {
		z.Or(x, y)
		return nil
	})
	ns["bitXor"] = a.bitwise("bitXor", func(z, x, y *big.Int) error {
		z.Xor(x, y)
		return nil
	})
	ns["bitNot"] = mathexpr.FuncOf(func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, &ArgsError{Func: "bitNot", Got: len(args), Want: "1"}
		}
		return each(args[0], func(x any) (any, error) {
			v, err := a.integer("bitNot", 1, x)
			if err != nil {
				return nil, err
			}
			return a.new().SetInt(new(big.Int).Not(v)), nil
		})
	})
	ns["leftShift"] = a.bitwise("leftShift", func(z, x, y *big.Int) error {
		n, err := shift("leftShift", y)
		if err != nil {
			return err
		}
		z.Lsh(x, n)
		return nil
	})
	ns["rightArithShift"] = a.bitwise("rightArithShift", func(z, x, y *big.Int) error {
		n, err := shift("rightArithShift", y)
		if err != nil {
			return err
		}
		z.Rsh(x, n)
		return nil
	})
	ns["rightLogShift"] = a.bitwise("rightLogShift", func(z, x, y *big.Int) error {
		if x.Sign() < 0 {
			// Logical shifts need a width, which arbitrary integers lack.
			return &DomainError{X: new(big.Float).SetInt(x), Arg: 1, Func: "rightLogShift"}
		}
		n, err := shift("rightLogShift", y)
		if err != nil {
			return err
		}
		z.Rsh(x, n)
		return nil
	})
}

// guard converts a big.ErrNaN panic from f into a DomainError.
func guard(fn string, f func() (any, error)) (r any, err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		e, ok := p.(error)
		if !ok || !errors.As(e, &big.ErrNaN{}) {
			panic(p)
		}
		r, err = nil, &DomainError{Func: fn}
	}()
	return f()
}

// binary creates an element-wise function of two numbers. f sets z to its
// result.
func (a arith) binary(fn string, f func(z, x, y *big.Float) error) mathexpr.Func {
	return mathexpr.FuncOf(func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, &ArgsError{Func: fn, Got: len(args), Want: "2"}
		}
		return zip(fn, args[0], args[1], func(x, y any) (any, error) {
			return a.apply2(fn, f, x, y)
		})
	})
}

// apply2 applies a binary numeric function to scalars.
func (a arith) apply2(fn string, f func(z, x, y *big.Float) error, x, y any) (any, error) {
	fx, err := a.float(fn, 1, x)
	if err != nil {
		return nil, err
	}
	fy, err := a.float(fn, 2, y)
	if err != nil {
		return nil, err
	}
	return guard(fn, func() (any, error) {
		z := a.new()
		if err := f(z, fx, fy); err != nil {
			return nil, err
		}
		return z, nil
	})
}

// unary creates an element-wise function of one number.
func (a arith) unary(fn string, f func(z, x *big.Float) error) mathexpr.Func {
	return mathexpr.FuncOf(func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, &ArgsError{Func: fn, Got: len(args), Want: "1"}
		}
		return each(args[0], func(x any) (any, error) {
			return a.apply1(fn, f, x)
		})
	})
}

func (a arith) apply1(fn string, f func(z, x *big.Float) error, x any) (any, error) {
	fx, err := a.float(fn, 1, x)
	if err != nil {
		return nil, err
	}
	return guard(fn, func() (any, error) {
		z := a.new()
		if err := f(z, fx); err != nil {
			return nil, err
		}
		return z, nil
	})
}

// quo divides, guarding against invalid divisions 0/0 and inf/inf.
func quo(fn string) func(z, x, y *big.Float) error {
	return func(z, x, y *big.Float) error {
		if x.Sign() == 0 && y.Sign() == 0 || x.IsInf() && y.IsInf() {
			return &DomainError{X: y, Arg: 2, Func: fn}
		}
		z.Quo(x, y)
		return nil
	}
}

func (a arith) divide(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, &ArgsError{Func: "divide", Got: len(args), Want: "2"}
	}
	if _, ok := args[1].([]any); ok {
		return nil, &TypeError{Func: "divide", Arg: 2, Value: args[1]}
	}
	return zip("divide", args[0], args[1], func(x, y any) (any, error) {
		return a.apply2("divide", quo("divide"), x, y)
	})
}

// mod computes the floored modulus. mod(x, 0) is x.
func (a arith) mod(z, x, y *big.Float) error {
	if y.Sign() == 0 {
		z.Set(x)
		return nil
	}
	if x.IsInf() {
		return &DomainError{X: x, Arg: 1, Func: "mod"}
	}
	if y.IsInf() {
		if x.Sign() == 0 || x.Signbit() == y.Signbit() {
			z.Set(x)
		} else {
			z.Set(y)
		}
		return nil
	}
	q := a.new().Quo(x, y)
	floor(q, q)
	z.Sub(x, q.Mul(q, y))
	return nil
}

func (a arith) pow(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, &ArgsError{Func: "pow", Got: len(args), Want: "2"}
	}
	for i, x := range args {
		if _, ok := x.([]any); ok {
			return nil, &TypeError{Func: "pow", Arg: i + 1, Value: x}
		}
	}
	return a.apply2("pow", a.powf("pow"), args[0], args[1])
}

// powf computes x^y. Integer exponents use repeated squaring, so negative
// bases are allowed with them.
func (a arith) powf(fn string) func(z, x, y *big.Float) error {
	return func(z, x, y *big.Float) error {
		if y.IsInt() {
			if n, acc := y.Int64(); acc == big.Exact {
				a.powInt(z, x, n)
				return nil
			}
		}
		switch {
		case x.Signbit() && x.Sign() != 0:
			return &DomainError{X: x, Arg: 1, Func: fn}
		case x.Sign() == 0:
			if y.Signbit() {
				z.SetInf(false)
			} else {
				z.SetInt64(0)
			}
			return nil
		}
		bigfloat.Pow(z, x, y)
		return nil
	}
}

// powInt sets z to x^n.
func (a arith) powInt(z, x *big.Float, n int64) {
	neg := n < 0
	if neg {
		n = -n
	}
	// Use extra precision for intermediate products.
	p := a.new().SetPrec(a.prec + 32).Set(x)
	r := a.new().SetPrec(a.prec + 32).SetInt64(1)
	for n > 0 {
		if n&1 != 0 {
			r.Mul(r, p)
		}
		p.Mul(p, p)
		n >>= 1
	}
	if neg {
		r.Quo(a.new().SetPrec(a.prec+32).SetInt64(1), r)
	}
	z.Set(r)
}

func (a arith) factorial(z, x *big.Float) error {
	if !x.IsInt() || x.Signbit() {
		return &DomainError{X: x, Arg: 1, Func: "factorial"}
	}
	n, acc := x.Int64()
	if acc != big.Exact || n > 1<<20 {
		return &DomainError{X: x, Arg: 1, Func: "factorial"}
	}
	if n == 0 {
		z.SetInt64(1)
		return nil
	}
	z.SetInt(new(big.Int).MulRange(1, n))
	return nil
}

// compare creates an element-wise comparison. Strings compare with strings;
// anything else compares numerically.
func (a arith) compare(fn string, ok func(int) bool) mathexpr.Func {
	return mathexpr.FuncOf(func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, &ArgsError{Func: fn, Got: len(args), Want: "2"}
		}
		return zip(fn, args[0], args[1], func(x, y any) (any, error) {
			if sx, isStr := x.(string); isStr {
				if sy, isStr := y.(string); isStr {
					switch {
					case sx < sy:
						return ok(-1), nil
					case sx > sy:
						return ok(1), nil
					default:
						return ok(0), nil
					}
				}
			}
			fx, err := a.float(fn, 1, x)
			if err != nil {
				return nil, err
			}
			fy, err := a.float(fn, 2, y)
			if err != nil {
				return nil, err
			}
			return ok(fx.Cmp(fy)), nil
		})
	})
}

// logical creates an element-wise logical operator.
func logical(fn string, f func(x, y bool) bool) mathexpr.Func {
	return mathexpr.FuncOf(func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, &ArgsError{Func: fn, Got: len(args), Want: "2"}
		}
		return zip(fn, args[0], args[1], func(x, y any) (any, error) {
			tx, err := mathexpr.Truthy(x)
			if err != nil {
				return nil, err
			}
			ty, err := mathexpr.Truthy(y)
			if err != nil {
				return nil, err
			}
			return f(tx, ty), nil
		})
	})
}

// bitwise creates an element-wise operator on integers.
func (a arith) bitwise(fn string, f func(z, x, y *big.Int) error) mathexpr.Func {
	return mathexpr.FuncOf(func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, &ArgsError{Func: fn, Got: len(args), Want: "2"}
		}
		return zip(fn, args[0], args[1], func(x, y any) (any, error) {
			ix, err := a.integer(fn, 1, x)
			if err != nil {
				return nil, err
			}
			iy, err := a.integer(fn, 2, y)
			if err != nil {
				return nil, err
			}
			z := new(big.Int)
			if err := f(z, ix, iy); err != nil {
				return nil, err
			}
			return a.new().SetInt(z), nil
		})
	})
}

// shift converts a shift count.
func shift(fn string, y *big.Int) (uint, error) {
	if y.Sign() < 0 || !y.IsInt64() || y.Int64() > 1<<24 {
		return 0, &DomainError{X: new(big.Float).SetInt(y), Arg: 2, Func: fn}
	}
	return uint(y.Int64()), nil
}

// floor sets z to the greatest integer no greater than x.
func floor(z, x *big.Float) *big.Float {
	if x.IsInf() || x.IsInt() {
		return z.Set(x)
	}
	i, _ := x.Int(nil)
	if x.Signbit() {
		i.Sub(i, big.NewInt(1))
	}
	return z.SetInt(i)
}

// ceil sets z to the least integer no less than x.
func ceil(z, x *big.Float) *big.Float {
	if x.IsInf() || x.IsInt() {
		return z.Set(x)
	}
	i, _ := x.Int(nil)
	if !x.Signbit() {
		i.Add(i, big.NewInt(1))
	}
	return z.SetInt(i)
}

// round sets z to x rounded to the nearest integer, half away from zero.
func round(z, x *big.Float) *big.Float {
	if x.IsInf() || x.IsInt() {
		return z.Set(x)
	}
	h := new(big.Float).SetPrec(x.Prec() + 64).SetFloat64(0.5)
	if x.Signbit() {
		h.Neg(h)
	}
	h.Add(h, x)
	i, _ := h.Int(nil)
	return z.SetInt(i)
}

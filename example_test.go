package mathexpr_test

import (
	"fmt"
	"math/big"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/bignum"
)

func Example() {
	ns := bignum.New(64)
	var e [3]*mathexpr.Evaluator
	for i, src := range []string{"x^3/2 - x", "3 x^2/2 - 1", "3 x"} {
		n, err := mathexpr.Parse(src)
		if err != nil {
			panic(err)
		}
		if e[i], err = mathexpr.Compile(n, ns); err != nil {
			panic(err)
		}
	}

	for i := 0; i < 4; i++ {
		s := mathexpr.MapScope{"x": big.NewFloat(float64(i))}
		var r [3]string
		for j := range e {
			v, err := e[j].Evaluate(s)
			if err != nil {
				panic(err)
			}
			r[j] = bignum.Format(v, -1)
		}
		fmt.Printf("x = %d   y = %-4s  y' = %-4s  y'' = %s\n", i, r[0], r[1], r[2])
	}

	// Output:
	// x = 0   y = 0     y' = -1    y'' = 0
	// x = 1   y = -0.5  y' = 0.5   y'' = 3
	// x = 2   y = 2     y' = 5     y'' = 6
	// x = 3   y = 10.5  y' = 12.5  y'' = 9
}

func ExampleEvalString() {
	s := mathexpr.MapScope{}
	r, err := mathexpr.EvalString("A = [1, 2; 3, 4]; A[2, :] = [5, 6]; A'", bignum.New(64), s)
	if err != nil {
		panic(err)
	}
	fmt.Println(bignum.Format(r, -1))
	fmt.Println(bignum.Format(s["A"], -1))

	// Output:
	// [[1, 5], [2, 6]]
	// [[1, 2], [5, 6]]
}

func ExampleRawFuncOf() {
	// count reports how many of its arguments are true, evaluating them only
	// until it finds two.
	count := mathexpr.RawFuncOf(func(args []mathexpr.Node, ns mathexpr.Namespace, s mathexpr.Scope) (any, error) {
		n := 0
		for _, arg := range args {
			v, err := mathexpr.EvalNode(arg, ns, s)
			if err != nil {
				return nil, err
			}
			if ok, _ := mathexpr.Truthy(v); ok {
				n++
			}
			if n == 2 {
				break
			}
		}
		return n, nil
	})
	ns := bignum.New(64)
	ns["atLeastTwo"] = count
	r, err := mathexpr.EvalString("atLeastTwo(1 > 0, 2 > 1, undefinedName)", ns, nil)
	if err != nil {
		panic(err)
	}
	fmt.Println(r)

	// Output:
	// 2
}

func ExampleSymbols() {
	n, err := mathexpr.Parse("f(x) + y * g(x, z)")
	if err != nil {
		panic(err)
	}
	fmt.Println(mathexpr.Symbols(n))

	// Output:
	// [x y z]
}

func ExampleUndefinedError() {
	_, err := mathexpr.EvalString("sqtr(2)", bignum.New(64), nil)
	fmt.Println(err)

	// Output:
	// undefined symbol "sqtr"; did you mean "sqrt"?
}

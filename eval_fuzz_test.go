package mathexpr_test

import (
	"math/big"
	"testing"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/bignum"
)

func FuzzEval(f *testing.F) {
	f.Add("x")
	f.Add("x^3/2 - x")
	f.Add("A = [1, 2; 3, 4]; A[end, :] * A")
	f.Add("1:0.5:x")
	f.Add("1×2")
	ns := bignum.New(64)
	f.Fuzz(func(t *testing.T, s string) {
		scope := mathexpr.MapScope{"x": big.NewFloat(3)}
		mathexpr.EvalString(s, ns, scope)
	})
}

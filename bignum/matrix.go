package bignum

import (
	"math/big"
	"strconv"

	"github.com/zephyrtronium/mathexpr"
)

func (a arith) matrices(ns mathexpr.Namespace) {
	ns["size"] = mathexpr.FuncOf(a.size)
	ns["subset"] = mathexpr.FuncOf(a.subset)
	ns["range"] = mathexpr.WithTransform(
		mathexpr.FuncOf(a.rangeOf("range", false)),
		mathexpr.FuncOf(a.rangeOf("range", true)),
	)
	ns["zeros"] = mathexpr.FuncOf(a.fill("zeros", 0))
	ns["ones"] = mathexpr.FuncOf(a.fill("ones", 1))
}

// zip applies f to corresponding elements of x and y. A scalar operand is
// paired with every element of the other.
func zip(fn string, x, y any, f func(x, y any) (any, error)) (any, error) {
	xs, xok := x.([]any)
	ys, yok := y.([]any)
	switch {
	case xok && yok:
		if len(xs) != len(ys) {
			return nil, &SizeError{Func: fn, A: len(xs), B: len(ys)}
		}
		r := make([]any, len(xs))
		for i := range xs {
			v, err := zip(fn, xs[i], ys[i], f)
			if err != nil {
				return nil, err
			}
			r[i] = v
		}
		return r, nil
	case xok:
		r := make([]any, len(xs))
		for i := range xs {
			v, err := zip(fn, xs[i], y, f)
			if err != nil {
				return nil, err
			}
			r[i] = v
		}
		return r, nil
	case yok:
		r := make([]any, len(ys))
		for i := range ys {
			v, err := zip(fn, x, ys[i], f)
			if err != nil {
				return nil, err
			}
			r[i] = v
		}
		return r, nil
	}
	return f(x, y)
}

// each applies f to every element of x.
func each(x any, f func(x any) (any, error)) (any, error) {
	xs, ok := x.([]any)
	if !ok {
		return f(x)
	}
	r := make([]any, len(xs))
	for i := range xs {
		v, err := each(xs[i], f)
		if err != nil {
			return nil, err
		}
		r[i] = v
	}
	return r, nil
}

// rows returns m as a list of rows if every element is a row.
func rows(m []any) ([][]any, bool) {
	if len(m) == 0 {
		return nil, false
	}
	r := make([][]any, len(m))
	for i, v := range m {
		row, ok := v.([]any)
		if !ok {
			return nil, false
		}
		if len(row) != len(r[0]) && i > 0 {
			return nil, false
		}
		r[i] = row
	}
	return r, true
}

// column extracts column j of a matrix.
func column(m [][]any, j int) []any {
	r := make([]any, len(m))
	for i, row := range m {
		r[i] = row[j]
	}
	return r
}

// multiply multiplies scalars element-wise, vectors by the dot product, and
// matrices by the matrix product.
func (a arith) multiply(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, &ArgsError{Func: "multiply", Got: len(args), Want: "2"}
	}
	xs, xok := args[0].([]any)
	ys, yok := args[1].([]any)
	if !xok || !yok {
		return zip("multiply", args[0], args[1], func(x, y any) (any, error) {
			return a.apply2("multiply", func(z, x, y *big.Float) error {
				z.Mul(x, y)
				return nil
			}, x, y)
		})
	}
	xr, x2 := rows(xs)
	yr, y2 := rows(ys)
	switch {
	case !x2 && !y2:
		return a.dot(xs, ys)
	case x2 && !y2:
		r := make([]any, len(xr))
		for i, row := range xr {
			v, err := a.dot(row, ys)
			if err != nil {
				return nil, err
			}
			r[i] = v
		}
		return r, nil
	case !x2 && y2:
		if len(xs) != len(yr) {
			return nil, &SizeError{Func: "multiply", A: len(xs), B: len(yr)}
		}
		r := make([]any, len(yr[0]))
		for j := range r {
			v, err := a.dot(xs, column(yr, j))
			if err != nil {
				return nil, err
			}
			r[j] = v
		}
		return r, nil
	default:
		if len(xr[0]) != len(yr) {
			return nil, &SizeError{Func: "multiply", A: len(xr[0]), B: len(yr)}
		}
		r := make([]any, len(xr))
		for i, row := range xr {
			out := make([]any, len(yr[0]))
			for j := range out {
				v, err := a.dot(row, column(yr, j))
				if err != nil {
					return nil, err
				}
				out[j] = v
			}
			r[i] = out
		}
		return r, nil
	}
}

// dot computes the dot product of two vectors.
func (a arith) dot(x, y []any) (any, error) {
	if len(x) != len(y) {
		return nil, &SizeError{Func: "multiply", A: len(x), B: len(y)}
	}
	fx := make([]*big.Float, len(x))
	fy := make([]*big.Float, len(y))
	for i := range x {
		var err error
		if fx[i], err = a.float("multiply", 1, x[i]); err != nil {
			return nil, err
		}
		if fy[i], err = a.float("multiply", 2, y[i]); err != nil {
			return nil, err
		}
	}
	return guard("multiply", func() (any, error) {
		r := a.new()
		t := a.new()
		for i := range fx {
			r.Add(r, t.Mul(fx[i], fy[i]))
		}
		return r, nil
	})
}

func transpose(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, &ArgsError{Func: "transpose", Got: len(args), Want: "1"}
	}
	m, ok := args[0].([]any)
	if !ok {
		return args[0], nil
	}
	r, ok := rows(m)
	if !ok {
		return append([]any(nil), m...), nil
	}
	t := make([]any, len(r[0]))
	for j := range t {
		t[j] = column(r, j)
	}
	return t, nil
}

// dims returns the size of each dimension of v.
func dims(v any) []int {
	switch v := v.(type) {
	case []any:
		r := []int{len(v)}
		if len(v) > 0 {
			r = append(r, dims(v[0])...)
		}
		return r
	case string:
		return []int{len([]rune(v))}
	}
	return nil
}

func (a arith) size(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, &ArgsError{Func: "size", Got: len(args), Want: "1"}
	}
	d := dims(args[0])
	r := make([]any, len(d))
	for i, k := range d {
		r[i] = a.new().SetInt64(int64(k))
	}
	return r, nil
}

// subset gets subset(v, index) or sets subset(v, index, x) a part of v. Dims
// which select a single position are removed from the result of a get.
func (a arith) subset(args ...any) (any, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, &ArgsError{Func: "subset", Got: len(args), Want: "2 or 3"}
	}
	ix, ok := args[1].(mathexpr.Index)
	if !ok {
		return nil, &TypeError{Func: "subset", Arg: 2, Value: args[1]}
	}
	if s, ok := args[0].(string); ok {
		if len(ix.Dims) != 1 {
			return nil, &mathexpr.IndexError{Msg: strconv.Itoa(len(ix.Dims)) + " dimensions for a string"}
		}
		if len(args) == 2 {
			return substring(s, ix.Dims[0])
		}
		return setSubstring(s, ix.Dims[0], args[2])
	}
	if len(args) == 2 {
		return get(args[0], ix.Dims, 1)
	}
	return a.set(args[0], ix.Dims, args[2], 1)
}

func outOfRange(dim, p, n int) error {
	return &mathexpr.IndexError{Dim: dim, Msg: "index " + strconv.Itoa(p+1) + " out of range [1, " + strconv.Itoa(n) + "]"}
}

func get(v any, ds []mathexpr.Dim, dim int) (any, error) {
	if len(ds) == 0 {
		return v, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, &mathexpr.IndexError{Dim: dim, Msg: "value has only " + strconv.Itoa(dim-1) + " dimensions"}
	}
	d := ds[0]
	pos := d.Positions()
	for _, p := range pos {
		if p >= len(arr) {
			return nil, outOfRange(dim, p, len(arr))
		}
	}
	if d.Scalar {
		return get(arr[pos[0]], ds[1:], dim+1)
	}
	r := make([]any, len(pos))
	for i, p := range pos {
		x, err := get(arr[p], ds[1:], dim+1)
		if err != nil {
			return nil, err
		}
		r[i] = x
	}
	return r, nil
}

func (a arith) set(v any, ds []mathexpr.Dim, x any, dim int) (any, error) {
	if len(ds) == 0 {
		return x, nil
	}
	var arr []any
	switch v := v.(type) {
	case nil:
	case []any:
		arr = append([]any(nil), v...)
	default:
		return nil, &mathexpr.IndexError{Dim: dim, Msg: "value has only " + strconv.Itoa(dim-1) + " dimensions"}
	}
	d := ds[0]
	pos := d.Positions()
	// Grow to fit. New innermost elements are zero; new rows are filled in by
	// the recursive set.
	for _, p := range pos {
		for len(arr) <= p {
			if len(ds) == 1 {
				arr = append(arr, a.new())
			} else {
				arr = append(arr, nil)
			}
		}
	}
	if d.Scalar {
		r, err := a.set(arr[pos[0]], ds[1:], x, dim+1)
		if err != nil {
			return nil, err
		}
		arr[pos[0]] = r
		return arr, nil
	}
	xs, list := x.([]any)
	if list && len(xs) != len(pos) {
		return nil, &SizeError{Func: "subset", A: len(pos), B: len(xs)}
	}
	for i, p := range pos {
		xi := x
		if list {
			xi = xs[i]
		}
		r, err := a.set(arr[p], ds[1:], xi, dim+1)
		if err != nil {
			return nil, err
		}
		arr[p] = r
	}
	return arr, nil
}

func substring(s string, d mathexpr.Dim) (any, error) {
	rs := []rune(s)
	pos := d.Positions()
	r := make([]rune, len(pos))
	for i, p := range pos {
		if p >= len(rs) {
			return nil, outOfRange(1, p, len(rs))
		}
		r[i] = rs[p]
	}
	return string(r), nil
}

// setSubstring replaces the characters of s at the positions of d with those
// of x, padding s with spaces as needed.
func setSubstring(s string, d mathexpr.Dim, x any) (any, error) {
	t, ok := x.(string)
	if !ok {
		return nil, &TypeError{Func: "subset", Arg: 3, Value: x}
	}
	rs := []rune(s)
	ts := []rune(t)
	pos := d.Positions()
	if len(ts) != len(pos) {
		return nil, &SizeError{Func: "subset", A: len(pos), B: len(ts)}
	}
	for i, p := range pos {
		for len(rs) <= p {
			rs = append(rs, ' ')
		}
		rs[p] = ts[i]
	}
	return string(rs), nil
}

// rangeOf creates a function listing the numbers from start to end by step.
// Without inclusive, end is excluded.
func (a arith) rangeOf(fn string, inclusive bool) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		if len(args) != 2 && len(args) != 3 {
			return nil, &ArgsError{Func: fn, Got: len(args), Want: "2 or 3"}
		}
		start, err := a.float(fn, 1, args[0])
		if err != nil {
			return nil, err
		}
		end, err := a.float(fn, 2, args[1])
		if err != nil {
			return nil, err
		}
		step := a.new().SetInt64(1)
		if len(args) == 3 {
			if step, err = a.float(fn, 3, args[2]); err != nil {
				return nil, err
			}
		}
		switch {
		case start.IsInf():
			return nil, &DomainError{X: start, Arg: 1, Func: fn}
		case end.IsInf():
			return nil, &DomainError{X: end, Arg: 2, Func: fn}
		case step.Sign() == 0 || step.IsInf():
			return nil, &DomainError{X: step, Arg: 3, Func: fn}
		}
		// Blame the step, or the end when there is no explicit step.
		bad := &DomainError{X: step, Arg: 3, Func: fn}
		if len(args) == 2 {
			bad = &DomainError{X: end, Arg: 2, Func: fn}
		}
		n := a.new().Sub(end, start)
		n.Quo(n, step)
		if n.Cmp(big.NewFloat(maxRangeLen)) > 0 {
			return nil, bad
		}
		r := []any{}
		v := a.new().Set(start)
		prev := a.new()
		for {
			c := v.Cmp(end) * step.Sign()
			if c > 0 || c == 0 && !inclusive {
				return r, nil
			}
			r = append(r, a.new().Set(v))
			prev.Set(v)
			v.Add(v, step)
			if v.Cmp(prev) == 0 {
				// The step is below the precision of v.
				if v.Cmp(end) == 0 {
					return r, nil
				}
				return nil, bad
			}
		}
	}
}

// maxRangeLen is the most elements a range may have.
const maxRangeLen = 1 << 24

// fill creates a function building a matrix with every element equal to x.
func (a arith) fill(fn string, x int64) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		if len(args) == 1 {
			if l, ok := args[0].([]any); ok {
				args = l
			}
		}
		size := make([]int, len(args))
		for i, v := range args {
			k, err := a.small(fn, i+1, v)
			if err != nil {
				return nil, err
			}
			size[i] = k
		}
		var build func(size []int) any
		build = func(size []int) any {
			if len(size) == 0 {
				return a.new().SetInt64(x)
			}
			r := make([]any, size[0])
			for i := range r {
				r[i] = build(size[1:])
			}
			return r
		}
		if len(size) == 0 {
			return []any{}, nil
		}
		return build(size), nil
	}
}

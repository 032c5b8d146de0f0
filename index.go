package mathexpr

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Range is a zero-based range of positions. End is exclusive. Step is never
// zero.
type Range struct {
	Start, End, Step int
}

// Len returns the number of positions in r.
func (r Range) Len() int {
	switch {
	case r.Step > 0 && r.End > r.Start:
		return (r.End - r.Start + r.Step - 1) / r.Step
	case r.Step < 0 && r.End < r.Start:
		return (r.Start - r.End - r.Step - 1) / -r.Step
	default:
		return 0
	}
}

// Positions returns the positions in r in order.
func (r Range) Positions() []int {
	p := make([]int, r.Len())
	for i := range p {
		p[i] = r.Start + i*r.Step
	}
	return p
}

func (r Range) String() string {
	if r.Step == 1 {
		return strconv.Itoa(r.Start) + ":" + strconv.Itoa(r.End)
	}
	return strconv.Itoa(r.Start) + ":" + strconv.Itoa(r.End) + ":" + strconv.Itoa(r.Step)
}

// Dim is one dimension of an Index: a range, a list of positions, or a single
// position.
type Dim struct {
	// Range holds the positions of a range dimension.
	Range Range
	// List holds the positions of a list or scalar dimension. It is nil for a
	// range.
	List []int
	// Scalar is whether the dimension is the single position List[0].
	Scalar bool
}

// IsRange reports whether d is a range dimension.
func (d Dim) IsRange() bool {
	return d.List == nil
}

// Positions returns the positions selected by d.
func (d Dim) Positions() []int {
	if d.IsRange() {
		return d.Range.Positions()
	}
	return d.List
}

// Index is a zero-based index into a value, with one Dim per dimension.
type Index struct {
	Dims []Dim
}

// IsScalar reports whether every dimension of ix is a single position.
func (ix Index) IsScalar() bool {
	for _, d := range ix.Dims {
		if !d.Scalar {
			return false
		}
	}
	return true
}

// indexFragment evaluates the dimensions of an index into obj.
type indexFragment func(s Scope, obj any) (Index, error)

// dimFragment evaluates one dimension of an index.
type dimFragment func(s Scope) (Dim, error)

// compileIndex compiles the dimensions of an index access. Dimensions which
// use end are evaluated in a child scope binding end to the size of that
// dimension of the object.
func (c *Compiler) compileIndex(dims []Node) (indexFragment, error) {
	frags := make([]dimFragment, len(dims))
	ends := make([]bool, len(dims))
	needEnd := false
	for i, d := range dims {
		f, err := c.compileDim(d, i+1)
		if err != nil {
			return nil, err
		}
		frags[i] = f
		ends[i] = usesEnd(d)
		needEnd = needEnd || ends[i]
	}
	if needEnd {
		if err := c.Require("size", "end"); err != nil {
			return nil, err
		}
	}
	return func(s Scope, obj any) (Index, error) {
		var size []int
		if needEnd {
			f, err := c.LookupFunc("size", s)
			if err != nil {
				return Index{}, err
			}
			v, err := f.Call(obj)
			if err != nil {
				return Index{}, err
			}
			if size, err = toInts(v); err != nil {
				return Index{}, err
			}
		}
		ix := Index{Dims: make([]Dim, len(frags))}
		for i, f := range frags {
			ds := s
			if ends[i] {
				if i >= len(size) {
					return Index{}, &IndexError{Dim: i + 1, Msg: "end used beyond the dimensions of a " + strconv.Itoa(len(size)) + "-dimensional value"}
				}
				ds = NewChildScope(s)
				ds.Set("end", size[i])
			}
			d, err := f(ds)
			if err != nil {
				return Index{}, err
			}
			ix.Dims[i] = d
		}
		return ix, nil
	}, nil
}

// usesEnd reports whether n refers to end outside any nested index access.
func usesEnd(n Node) bool {
	switch n := n.(type) {
	case *SymbolNode:
		return n.Name == "end"
	case *IndexNode:
		return false
	}
	found := false
	n.ForEach(func(c Node, path string, parent Node) {
		found = found || usesEnd(c)
	})
	return found
}

// compileDim compiles one dimension. dim is its 1-based position for errors.
func (c *Compiler) compileDim(n Node, dim int) (dimFragment, error) {
	r, ok := n.(*RangeNode)
	if !ok {
		f, err := n.Compile(c)
		if err != nil {
			return nil, err
		}
		return func(s Scope) (Dim, error) {
			v, err := f(s)
			if err != nil {
				return Dim{}, err
			}
			return toDim(v, dim)
		}, nil
	}
	start, err := r.Start.Compile(c)
	if err != nil {
		return nil, err
	}
	end, err := r.End.Compile(c)
	if err != nil {
		return nil, err
	}
	var step Fragment
	if r.Step != nil {
		if step, err = r.Step.Compile(c); err != nil {
			return nil, err
		}
	}
	return func(s Scope) (Dim, error) {
		a, err := evalInt(start, s, dim)
		if err != nil {
			return Dim{}, err
		}
		b, err := evalInt(end, s, dim)
		if err != nil {
			return Dim{}, err
		}
		st := 1
		if step != nil {
			if st, err = evalInt(step, s, dim); err != nil {
				return Dim{}, err
			}
		}
		if a < 1 {
			return Dim{}, &IndexError{Dim: dim, Msg: "range start " + strconv.Itoa(a) + " is less than 1"}
		}
		switch {
		case st > 0:
			return Dim{Range: Range{Start: a - 1, End: b, Step: st}}, nil
		case st < 0:
			return Dim{Range: Range{Start: a - 1, End: b - 2, Step: st}}, nil
		default:
			return Dim{}, &IndexError{Dim: dim, Msg: "range step is zero"}
		}
	}, nil
}

func evalInt(f Fragment, s Scope, dim int) (int, error) {
	v, err := f(s)
	if err != nil {
		return 0, err
	}
	k, ok := toInt(v)
	if !ok {
		return 0, &IndexError{Dim: dim, Msg: "not an integer: " + describe(v)}
	}
	return k, nil
}

// toDim converts the value of a non-range dimension.
func toDim(v any, dim int) (Dim, error) {
	switch v := v.(type) {
	case Dim:
		return v, nil
	case Range:
		return Dim{Range: v}, nil
	case []any:
		l := make([]int, len(v))
		for i, x := range v {
			k, err := position(x, dim)
			if err != nil {
				return Dim{}, err
			}
			l[i] = k
		}
		return Dim{List: l}, nil
	case []int:
		l := make([]int, len(v))
		for i, k := range v {
			if k < 1 {
				return Dim{}, &IndexError{Dim: dim, Msg: "index " + strconv.Itoa(k) + " is less than 1"}
			}
			l[i] = k - 1
		}
		return Dim{List: l}, nil
	}
	k, err := position(v, dim)
	if err != nil {
		return Dim{}, err
	}
	return Dim{List: []int{k}, Scalar: true}, nil
}

// position converts a one-based index value to a zero-based position.
func position(v any, dim int) (int, error) {
	k, ok := toInt(v)
	if !ok {
		return 0, &IndexError{Dim: dim, Msg: "not an integer: " + describe(v)}
	}
	if k < 1 {
		return 0, &IndexError{Dim: dim, Msg: "index " + strconv.Itoa(k) + " is less than 1"}
	}
	return k - 1, nil
}

// toInt converts an integral numeric value to int.
func toInt(v any) (int, bool) {
	switch v := v.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return 0, false
		}
		return int(v), true
	case *big.Int:
		if !v.IsInt64() {
			return 0, false
		}
		return int(v.Int64()), true
	case *big.Float:
		if !v.IsInt() {
			return 0, false
		}
		k, acc := v.Int64()
		return int(k), acc == big.Exact
	case *big.Rat:
		if !v.IsInt() || !v.Num().IsInt64() {
			return 0, false
		}
		return int(v.Num().Int64()), true
	}
	return 0, false
}

// toInts converts the result of size.
func toInts(v any) ([]int, error) {
	switch v := v.(type) {
	case []int:
		return v, nil
	case []any:
		r := make([]int, len(v))
		for i, x := range v {
			k, ok := toInt(x)
			if !ok {
				return nil, &IndexError{Msg: "size is not a list of integers: " + describe(v)}
			}
			r[i] = k
		}
		return r, nil
	}
	return nil, &IndexError{Msg: "size is not a list of integers: " + describe(v)}
}

func describe(v any) string {
	return fmt.Sprintf("%v (%T)", v, v)
}

func (n *IndexNode) Compile(c *Compiler) (Fragment, error) {
	obj, err := n.Object.Compile(c)
	if err != nil {
		return nil, err
	}
	idx, err := c.compileIndex(n.Dims)
	if err != nil {
		return nil, err
	}
	if err := c.Require("subset", "[]"); err != nil {
		return nil, err
	}
	return func(s Scope) (any, error) {
		o, err := obj(s)
		if err != nil {
			return nil, err
		}
		ix, err := idx(s, o)
		if err != nil {
			return nil, err
		}
		f, err := c.LookupFunc("subset", s)
		if err != nil {
			return nil, err
		}
		return f.Call(o, ix)
	}, nil
}

func (n *UpdateNode) Compile(c *Compiler) (Fragment, error) {
	sym, ok := n.Index.Object.(*SymbolNode)
	if !ok {
		return nil, &AssignmentError{Target: n.Index.String()}
	}
	idx, err := c.compileIndex(n.Index.Dims)
	if err != nil {
		return nil, err
	}
	expr, err := n.Expr.Compile(c)
	if err != nil {
		return nil, err
	}
	if err := c.Require("subset", "[]="); err != nil {
		return nil, err
	}
	name := sym.Name
	return func(s Scope) (any, error) {
		o, err := c.Lookup(name, s)
		if err != nil {
			return nil, err
		}
		ix, err := idx(s, o)
		if err != nil {
			return nil, err
		}
		v, err := expr(s)
		if err != nil {
			return nil, err
		}
		f, err := c.LookupFunc("subset", s)
		if err != nil {
			return nil, err
		}
		r, err := f.Call(o, ix, v)
		if err != nil {
			return nil, err
		}
		s.Set(name, r)
		return v, nil
	}, nil
}

func (n *RangeNode) Compile(c *Compiler) (Fragment, error) {
	if err := c.Require("range", ":"); err != nil {
		return nil, err
	}
	parts := []Node{n.Start, n.End}
	if n.Step != nil {
		parts = append(parts, n.Step)
	}
	args, err := c.CompileAll(parts)
	if err != nil {
		return nil, err
	}
	return func(s Scope) (any, error) {
		f, err := c.LookupFunc("range", s)
		if err != nil {
			return nil, err
		}
		x, err := EvalAll(args, s)
		if err != nil {
			return nil, err
		}
		return f.Call(x...)
	}, nil
}

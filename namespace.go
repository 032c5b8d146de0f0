package mathexpr

// Namespace is the table of functions and constants available to compiled
// expressions. Compile takes a copy of it, so changes made afterward only
// affect later compilations.
//
// Operators compile to calls of the namespace functions named by their Fn
// field, e.g. "add" for +. A few other entries have conventional meanings:
//
//	number	converts the text of a numeric literal to a value at compile time
//	matrix	wraps the []any of an array literal
//	range	evaluates a range outside of an index, inclusive of its end
//	subset	subset(obj, Index) gets and subset(obj, Index, v) sets a part of obj
//	size	size(obj) gives the size of each dimension of obj, for end
type Namespace map[string]any

// Func is a function in a namespace or scope.
type Func interface {
	Call(args ...any) (any, error)
}

// FuncOf adapts an ordinary function to Func.
type FuncOf func(args ...any) (any, error)

// Call calls f.
func (f FuncOf) Call(args ...any) (any, error) {
	return f(args...)
}

// Transformer is a Func with an alternate implementation which compiled
// expressions use in place of the function itself when it is resolved from a
// namespace. Transforms typically adapt one-based arguments to zero-based
// ones.
type Transformer interface {
	Func
	Transform() Func
}

// WithTransform creates a Func which calls f and whose transform variant is t.
func WithTransform(f, t Func) Func {
	return transformed{f, t}
}

type transformed struct {
	Func
	t Func
}

func (t transformed) Transform() Func {
	return t.t
}

// RawFunc is a function which receives its arguments as unevaluated nodes,
// along with the namespace and the scope in effect at the call. EvalNode
// evaluates an argument.
type RawFunc interface {
	CallRaw(args []Node, ns Namespace, s Scope) (any, error)
}

// RawFuncOf adapts an ordinary function to RawFunc.
type RawFuncOf func(args []Node, ns Namespace, s Scope) (any, error)

// CallRaw calls f.
func (f RawFuncOf) CallRaw(args []Node, ns Namespace, s Scope) (any, error) {
	return f(args, ns, s)
}

// EvalNode compiles n with ns and evaluates it in s. Unlike Evaluate, it does
// not validate s, so that raw functions may evaluate their arguments in
// scopes which bind end.
func EvalNode(n Node, ns Namespace, s Scope) (any, error) {
	c := newCompiler(ns, compilectx{suggest: defaultSuggestions})
	f, err := n.Compile(c)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = MapScope{}
	}
	return f(s)
}

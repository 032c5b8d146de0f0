package mathexpr

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Fragment is the compiled form of a node. It evaluates the node in a scope.
type Fragment func(s Scope) (any, error)

// CompileOption is an option for compiling.
type CompileOption interface {
	compileOption(compilectx) compilectx
}

type compilectx struct {
	// suggest is the maximum number of suggestions in an UndefinedError.
	suggest int
}

const defaultSuggestions = 3

type suggestopt int

// Suggestions sets the maximum number of similar names suggested when an
// expression uses an undefined name. The default is 3. Zero disables
// suggestions.
func Suggestions(n int) CompileOption {
	return suggestopt(n)
}

func (o suggestopt) compileOption(c compilectx) compilectx {
	c.suggest = int(o)
	return c
}

// Compiler holds the state for compiling one tree. Custom nodes use it to
// resolve names and to compile their children.
type Compiler struct {
	ns  Namespace
	res resolverChain
	ctx compilectx
}

func newCompiler(ns Namespace, ctx compilectx) *Compiler {
	return &Compiler{
		ns:  ns,
		res: resolverChain{scopeResolver{}, namespaceResolver{ns}},
		ctx: ctx,
	}
}

// Namespace returns the namespace being compiled against.
func (c *Compiler) Namespace() Namespace {
	return c.ns
}

// Require returns a *MissingFuncError if the namespace does not define name.
// op is the operator requiring it, if any.
func (c *Compiler) Require(name, op string) error {
	if _, ok := c.ns[name]; !ok {
		return &MissingFuncError{Name: name, Op: op}
	}
	return nil
}

// Lookup resolves a name in the scope, falling back to the namespace.
func (c *Compiler) Lookup(name string, s Scope) (any, error) {
	if v, ok := c.res.resolve(name, s); ok {
		return v, nil
	}
	return nil, &UndefinedError{Name: name, Suggestions: c.res.suggest(name, s, c.ctx.suggest)}
}

// LookupFunc resolves a name which must be a Func.
func (c *Compiler) LookupFunc(name string, s Scope) (Func, error) {
	v, err := c.Lookup(name, s)
	if err != nil {
		return nil, err
	}
	f, ok := v.(Func)
	if !ok {
		return nil, &NotCallableError{Name: name, Value: v}
	}
	return f, nil
}

// CompileAll compiles a list of nodes.
func (c *Compiler) CompileAll(nodes []Node) ([]Fragment, error) {
	r := make([]Fragment, len(nodes))
	for i, n := range nodes {
		f, err := n.Compile(c)
		if err != nil {
			return nil, err
		}
		r[i] = f
	}
	return r, nil
}

// number converts the text of a numeric literal.
func (c *Compiler) number(text string) (any, error) {
	if v, ok := (namespaceResolver{c.ns}).resolve("number", nil); ok {
		f, ok := v.(Func)
		if !ok {
			return nil, &NotCallableError{Name: "number", Value: v}
		}
		return f.Call(text)
	}
	x, err := strconv.ParseFloat(text, 64)
	var ne *strconv.NumError
	if errors.As(err, &ne) && ne.Err == strconv.ErrRange {
		// x is ±Inf or 0 as appropriate.
		return x, nil
	}
	if err != nil {
		return nil, err
	}
	return x, nil
}

// EvalAll evaluates each fragment in order.
func EvalAll(frags []Fragment, s Scope) ([]any, error) {
	r := make([]any, len(frags))
	for i, f := range frags {
		v, err := f(s)
		if err != nil {
			return nil, err
		}
		r[i] = v
	}
	return r, nil
}

// Evaluator is a compiled expression. It is safe to evaluate concurrently
// with distinct scopes.
type Evaluator struct {
	root Fragment
	node Node
}

// Compile compiles a tree against a namespace. The evaluator uses the
// bindings ns has at the time of the call; later changes to ns do not affect
// it.
func Compile(n Node, ns Namespace, opts ...CompileOption) (*Evaluator, error) {
	ctx := compilectx{suggest: defaultSuggestions}
	for _, opt := range opts {
		ctx = opt.compileOption(ctx)
	}
	c := newCompiler(maps.Clone(ns), ctx)
	f, err := n.Compile(c)
	if err != nil {
		return nil, err
	}
	return &Evaluator{root: f, node: n}, nil
}

// Evaluate evaluates the expression in s. Assignments in the expression
// modify s. A nil scope is an empty one. If s defines any keyword, the
// result is a *ReservedError and the expression is not evaluated.
func (e *Evaluator) Evaluate(s Scope) (any, error) {
	if s == nil {
		s = MapScope{}
	}
	if err := ValidateScope(s); err != nil {
		return nil, err
	}
	return e.root(s)
}

// Node returns the tree the evaluator was compiled from.
func (e *Evaluator) Node() Node {
	return e.node
}

func (e *Evaluator) String() string {
	return e.node.String()
}

// EvalString is a shortcut to parse, compile, and evaluate an expression.
func EvalString(src string, ns Namespace, s Scope) (any, error) {
	n, err := Parse(src)
	if err != nil {
		return nil, err
	}
	e, err := Compile(n, ns)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(s)
}

func (n *ConstantNode) Compile(c *Compiler) (Fragment, error) {
	var v any
	switch n.Kind {
	case ConstNumber:
		var err error
		if v, err = c.number(n.Value); err != nil {
			return nil, err
		}
	case ConstString:
		v = n.Value
	case ConstBool:
		v = n.Value == "true"
	case ConstNull, ConstUndefined:
		v = nil
	default:
		panic("mathexpr: invalid constant kind " + strconv.Itoa(int(n.Kind)))
	}
	return func(Scope) (any, error) { return v, nil }, nil
}

func (n *SymbolNode) Compile(c *Compiler) (Fragment, error) {
	name := n.Name
	return func(s Scope) (any, error) { return c.Lookup(name, s) }, nil
}

func (n *ArrayNode) Compile(c *Compiler) (Fragment, error) {
	items, err := c.CompileAll(n.Items)
	if err != nil {
		return nil, err
	}
	_, wrap := c.ns["matrix"]
	return func(s Scope) (any, error) {
		v, err := EvalAll(items, s)
		if err != nil {
			return nil, err
		}
		if !wrap {
			return v, nil
		}
		f, err := c.LookupFunc("matrix", s)
		if err != nil {
			return nil, err
		}
		return f.Call(v)
	}, nil
}

func (n *OperatorNode) Compile(c *Compiler) (Fragment, error) {
	if err := c.Require(n.Fn, n.Op); err != nil {
		return nil, err
	}
	args, err := c.CompileAll(n.Args)
	if err != nil {
		return nil, err
	}
	fn := n.Fn
	return func(s Scope) (any, error) {
		f, err := c.LookupFunc(fn, s)
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

func (n *FunctionNode) Compile(c *Compiler) (Fragment, error) {
	// A raw function never needs its arguments compiled, but the callee could
	// be shadowed by an ordinary function in the scope, so keep the error
	// until the call.
	args, argErr := c.CompileAll(n.Args)
	var callee Fragment
	if name := n.Name(); name != "" {
		if _, raw := c.ns[name].(RawFunc); !raw && argErr != nil {
			return nil, argErr
		}
		callee = func(s Scope) (any, error) { return c.Lookup(name, s) }
	} else {
		if argErr != nil {
			return nil, argErr
		}
		var err error
		if callee, err = n.Fn.Compile(c); err != nil {
			return nil, err
		}
	}
	label := n.Fn.String()
	raw := n.Args
	return func(s Scope) (any, error) {
		v, err := callee(s)
		if err != nil {
			return nil, err
		}
		switch f := v.(type) {
		case RawFunc:
			return f.CallRaw(raw, c.ns, s)
		case Func:
			if argErr != nil {
				return nil, argErr
			}
			x, err := EvalAll(args, s)
			if err != nil {
				return nil, err
			}
			return f.Call(x...)
		}
		return nil, &NotCallableError{Name: label, Value: v}
	}, nil
}

func (n *ConditionalNode) Compile(c *Compiler) (Fragment, error) {
	cond, err := n.Condition.Compile(c)
	if err != nil {
		return nil, err
	}
	t, err := n.TrueExpr.Compile(c)
	if err != nil {
		return nil, err
	}
	f, err := n.FalseExpr.Compile(c)
	if err != nil {
		return nil, err
	}
	return func(s Scope) (any, error) {
		v, err := cond(s)
		if err != nil {
			return nil, err
		}
		ok, err := Truthy(v)
		if err != nil {
			return nil, err
		}
		if ok {
			return t(s)
		}
		return f(s)
	}, nil
}

// Truthy returns the truth value of a condition. Booleans are themselves; nil
// is false; numbers and strings are true when nonzero or nonempty, as is any
// value with a Sign method. Other values give a *ConditionError.
func Truthy(v any) (bool, error) {
	switch v := v.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case int32:
		return v != 0, nil
	case uint:
		return v != 0, nil
	case uint64:
		return v != 0, nil
	case float64:
		return v != 0 && !math.IsNaN(v), nil
	case float32:
		return v != 0 && v == v, nil
	case string:
		return v != "", nil
	case *big.Float:
		return v.Sign() != 0, nil
	case interface{ Sign() int }:
		return v.Sign() != 0, nil
	}
	return false, &ConditionError{Value: v}
}

func (n *AssignmentNode) Compile(c *Compiler) (Fragment, error) {
	expr, err := n.Expr.Compile(c)
	if err != nil {
		return nil, err
	}
	name := n.Name
	return func(s Scope) (any, error) {
		v, err := expr(s)
		if err != nil {
			return nil, err
		}
		s.Set(name, v)
		return v, nil
	}, nil
}

func (n *FunctionAssignmentNode) Compile(c *Compiler) (Fragment, error) {
	body, err := n.Expr.Compile(c)
	if err != nil {
		return nil, err
	}
	name := n.Name
	params := append([]string(nil), n.Params...)
	return func(s Scope) (any, error) {
		f := &UserFunc{Name: name, Params: params, body: body, scope: s}
		s.Set(name, f)
		return f, nil
	}, nil
}

// UserFunc is a function defined in an expression, like f(x) = x^2.
type UserFunc struct {
	Name   string
	Params []string
	body   Fragment
	// scope is the scope in which the function was defined.
	scope Scope
}

// Call evaluates the function body with its parameters bound to args in a
// child of the defining scope.
func (f *UserFunc) Call(args ...any) (any, error) {
	if len(args) != len(f.Params) {
		return nil, &ArityError{Name: f.Name, Got: len(args), Want: len(f.Params)}
	}
	s := NewChildScope(f.scope)
	for i, p := range f.Params {
		s.Set(p, args[i])
	}
	return f.body(s)
}

func (f *UserFunc) String() string {
	return f.Name + "(" + strings.Join(f.Params, ", ") + ")"
}

// ResultSet is the value of a block of several statements. It holds the
// values of the visible statements in order.
type ResultSet struct {
	Entries []any
}

func (r *ResultSet) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range r.Entries {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprint(&b, v)
	}
	b.WriteByte(']')
	return b.String()
}

func (n *BlockNode) Compile(c *Compiler) (Fragment, error) {
	frags := make([]Fragment, len(n.Blocks))
	visible := make([]bool, len(n.Blocks))
	count := 0
	for i, b := range n.Blocks {
		f, err := b.Node.Compile(c)
		if err != nil {
			return nil, err
		}
		frags[i] = f
		visible[i] = b.Visible
		if b.Visible {
			count++
		}
	}
	return func(s Scope) (any, error) {
		r := make([]any, 0, count)
		for i, f := range frags {
			v, err := f(s)
			if err != nil {
				return nil, err
			}
			if visible[i] {
				r = append(r, v)
			}
		}
		return &ResultSet{Entries: r}, nil
	}, nil
}

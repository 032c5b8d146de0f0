package mathexpr

import (
	"strconv"
	"strings"
)

// Node is a node in the abstract syntax tree of an expression. Nodes are
// created by Parse and are never modified afterward; Map and Transform build
// new trees instead.
//
// Implementations must be pointer types so that Transform can tell whether a
// callback replaced a node.
type Node interface {
	// Compile builds the closure which evaluates the node.
	Compile(c *Compiler) (Fragment, error)
	// ForEach calls fn on each immediate child of the node, in order.
	ForEach(fn VisitFunc)
	// Map returns a new node of the same kind with each immediate child
	// replaced by the result of fn. It is an error for fn to return nil.
	Map(fn MapFunc) (Node, error)
	// Clone returns a shallow copy of the node.
	Clone() Node
	// String renders the node as source text which parses to an equal tree.
	String() string
}

// VisitFunc is a callback for ForEach and Traverse. path names the child's
// position in parent, e.g. "args[0]". For the root of a traversal, path is
// empty and parent is nil.
type VisitFunc func(n Node, path string, parent Node)

// MapFunc is a callback for Map and Transform.
type MapFunc func(n Node, path string, parent Node) (Node, error)

// MapError is an error from a Map callback which returned a nil or
// unsuitable node.
type MapError struct {
	// Path is the position of the child being replaced.
	Path string
	// Parent is the node being rebuilt.
	Parent Node
	// Want names the required node type, if the position requires one.
	Want string
}

func (err *MapError) Error() string {
	if err.Want != "" {
		return "mathexpr: replacement for " + err.Path + " must be " + err.Want
	}
	return "mathexpr: no replacement node for " + err.Path
}

// mapChild applies fn to one child and checks that it produced a node.
func mapChild(fn MapFunc, child Node, path string, parent Node) (Node, error) {
	r, err := fn(child, path, parent)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &MapError{Path: path, Parent: parent}
	}
	return r, nil
}

// mapChildren applies fn to a list of children named prefix[i].
func mapChildren(fn MapFunc, children []Node, prefix string, parent Node) ([]Node, error) {
	r := make([]Node, len(children))
	for i, c := range children {
		n, err := mapChild(fn, c, prefix+"["+strconv.Itoa(i)+"]", parent)
		if err != nil {
			return nil, err
		}
		r[i] = n
	}
	return r, nil
}

func forChildren(fn VisitFunc, children []Node, prefix string, parent Node) {
	for i, c := range children {
		fn(c, prefix+"["+strconv.Itoa(i)+"]", parent)
	}
}

// ConstantKind is the type of a literal.
type ConstantKind int8

const (
	ConstNumber ConstantKind = iota
	ConstString
	ConstBool
	ConstNull
	ConstUndefined
)

// ConstantNode is a literal number, string, boolean, null, or undefined.
type ConstantNode struct {
	// Value is the literal's text. For strings, it is the unquoted value.
	Value string
	Kind  ConstantKind
}

func (n *ConstantNode) ForEach(fn VisitFunc)         {}
func (n *ConstantNode) Map(fn MapFunc) (Node, error) { return n.Clone(), nil }
func (n *ConstantNode) Clone() Node                  { c := *n; return &c }

func (n *ConstantNode) String() string {
	if n.Kind == ConstString {
		return strconv.Quote(n.Value)
	}
	return n.Value
}

// SymbolNode is a variable or function name.
type SymbolNode struct {
	Name string
}

func (n *SymbolNode) ForEach(fn VisitFunc)         {}
func (n *SymbolNode) Map(fn MapFunc) (Node, error) { return n.Clone(), nil }
func (n *SymbolNode) Clone() Node                  { c := *n; return &c }
func (n *SymbolNode) String() string               { return n.Name }

// ArrayNode is an array literal. Matrix literals with rows are arrays of
// arrays.
type ArrayNode struct {
	Items []Node
}

func (n *ArrayNode) ForEach(fn VisitFunc) {
	forChildren(fn, n.Items, "items", n)
}

func (n *ArrayNode) Map(fn MapFunc) (Node, error) {
	items, err := mapChildren(fn, n.Items, "items", n)
	if err != nil {
		return nil, err
	}
	return &ArrayNode{Items: items}, nil
}

func (n *ArrayNode) Clone() Node { c := *n; return &c }

func (n *ArrayNode) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range n.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item.String())
	}
	b.WriteByte(']')
	return b.String()
}

// OperatorNode is a unary or binary operator.
type OperatorNode struct {
	// Op is the operator as written, e.g. "+" or "and".
	Op string
	// Fn is the name of the namespace function implementing the operator,
	// e.g. "add".
	Fn   string
	Args []Node
	// Implicit is whether the node is a multiplication by juxtaposition.
	Implicit bool
}

func (n *OperatorNode) ForEach(fn VisitFunc) {
	forChildren(fn, n.Args, "args", n)
}

func (n *OperatorNode) Map(fn MapFunc) (Node, error) {
	args, err := mapChildren(fn, n.Args, "args", n)
	if err != nil {
		return nil, err
	}
	return &OperatorNode{Op: n.Op, Fn: n.Fn, Args: args, Implicit: n.Implicit}, nil
}

func (n *OperatorNode) Clone() Node { c := *n; return &c }

// postfix is the set of functions of postfix operators.
var postfix = map[string]bool{"factorial": true, "transpose": true}

func (n *OperatorNode) String() string {
	switch len(n.Args) {
	case 1:
		x := operand(n.Args[0])
		if postfix[n.Fn] {
			return x + n.Op
		}
		if namedOperators[n.Op] {
			return n.Op + " " + x
		}
		return n.Op + x
	case 2:
		return operand(n.Args[0]) + " " + n.Op + " " + operand(n.Args[1])
	default:
		panic("mathexpr: operator " + n.Fn + " with " + strconv.Itoa(len(n.Args)) + " operands")
	}
}

// operand renders an operand, parenthesizing anything that could bind
// differently in context.
func operand(n Node) string {
	switch n.(type) {
	case *ConstantNode, *SymbolNode, *ArrayNode, *FunctionNode, *IndexNode:
		return n.String()
	default:
		return "(" + n.String() + ")"
	}
}

// FunctionNode is a function call.
type FunctionNode struct {
	// Fn is the callee. It is usually a *SymbolNode.
	Fn   Node
	Args []Node
}

// Name returns the name of the called function, or the empty string if the
// callee is not a symbol.
func (n *FunctionNode) Name() string {
	if s, ok := n.Fn.(*SymbolNode); ok {
		return s.Name
	}
	return ""
}

func (n *FunctionNode) ForEach(fn VisitFunc) {
	fn(n.Fn, "fn", n)
	forChildren(fn, n.Args, "args", n)
}

func (n *FunctionNode) Map(fn MapFunc) (Node, error) {
	f, err := mapChild(fn, n.Fn, "fn", n)
	if err != nil {
		return nil, err
	}
	args, err := mapChildren(fn, n.Args, "args", n)
	if err != nil {
		return nil, err
	}
	return &FunctionNode{Fn: f, Args: args}, nil
}

func (n *FunctionNode) Clone() Node { c := *n; return &c }

func (n *FunctionNode) String() string {
	return n.Fn.String() + "(" + joinNodes(n.Args) + ")"
}

// IndexNode is an index access like A[2, 1:end].
type IndexNode struct {
	Object Node
	// Dims holds one expression per indexed dimension. Ranges are
	// *RangeNode.
	Dims []Node
}

func (n *IndexNode) ForEach(fn VisitFunc) {
	fn(n.Object, "object", n)
	forChildren(fn, n.Dims, "dims", n)
}

func (n *IndexNode) Map(fn MapFunc) (Node, error) {
	obj, err := mapChild(fn, n.Object, "object", n)
	if err != nil {
		return nil, err
	}
	dims, err := mapChildren(fn, n.Dims, "dims", n)
	if err != nil {
		return nil, err
	}
	return &IndexNode{Object: obj, Dims: dims}, nil
}

func (n *IndexNode) Clone() Node { c := *n; return &c }

func (n *IndexNode) String() string {
	return n.Object.String() + "[" + joinNodes(n.Dims) + "]"
}

// RangeNode is a range start:end or start:step:end. Step is nil when it is
// not written.
type RangeNode struct {
	Start Node
	End   Node
	Step  Node
}

func (n *RangeNode) ForEach(fn VisitFunc) {
	fn(n.Start, "start", n)
	fn(n.End, "end", n)
	if n.Step != nil {
		fn(n.Step, "step", n)
	}
}

func (n *RangeNode) Map(fn MapFunc) (Node, error) {
	start, err := mapChild(fn, n.Start, "start", n)
	if err != nil {
		return nil, err
	}
	end, err := mapChild(fn, n.End, "end", n)
	if err != nil {
		return nil, err
	}
	r := &RangeNode{Start: start, End: end}
	if n.Step != nil {
		if r.Step, err = mapChild(fn, n.Step, "step", n); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (n *RangeNode) Clone() Node { c := *n; return &c }

func (n *RangeNode) String() string {
	if n.Step == nil {
		return operand(n.Start) + ":" + operand(n.End)
	}
	return operand(n.Start) + ":" + operand(n.Step) + ":" + operand(n.End)
}

// ConditionalNode is a ternary cond ? a : b.
type ConditionalNode struct {
	Condition Node
	TrueExpr  Node
	FalseExpr Node
}

func (n *ConditionalNode) ForEach(fn VisitFunc) {
	fn(n.Condition, "condition", n)
	fn(n.TrueExpr, "trueExpr", n)
	fn(n.FalseExpr, "falseExpr", n)
}

func (n *ConditionalNode) Map(fn MapFunc) (Node, error) {
	c, err := mapChild(fn, n.Condition, "condition", n)
	if err != nil {
		return nil, err
	}
	t, err := mapChild(fn, n.TrueExpr, "trueExpr", n)
	if err != nil {
		return nil, err
	}
	f, err := mapChild(fn, n.FalseExpr, "falseExpr", n)
	if err != nil {
		return nil, err
	}
	return &ConditionalNode{Condition: c, TrueExpr: t, FalseExpr: f}, nil
}

func (n *ConditionalNode) Clone() Node { c := *n; return &c }

func (n *ConditionalNode) String() string {
	return operand(n.Condition) + " ? " + operand(n.TrueExpr) + " : " + operand(n.FalseExpr)
}

// AssignmentNode assigns a value to a variable.
type AssignmentNode struct {
	Name string
	Expr Node
}

func (n *AssignmentNode) ForEach(fn VisitFunc) {
	fn(n.Expr, "expr", n)
}

func (n *AssignmentNode) Map(fn MapFunc) (Node, error) {
	e, err := mapChild(fn, n.Expr, "expr", n)
	if err != nil {
		return nil, err
	}
	return &AssignmentNode{Name: n.Name, Expr: e}, nil
}

func (n *AssignmentNode) Clone() Node { c := *n; return &c }

func (n *AssignmentNode) String() string {
	return n.Name + " = " + n.Expr.String()
}

// FunctionAssignmentNode defines a function, like f(x, y) = x^y.
type FunctionAssignmentNode struct {
	Name   string
	Params []string
	Expr   Node
}

func (n *FunctionAssignmentNode) ForEach(fn VisitFunc) {
	fn(n.Expr, "expr", n)
}

func (n *FunctionAssignmentNode) Map(fn MapFunc) (Node, error) {
	e, err := mapChild(fn, n.Expr, "expr", n)
	if err != nil {
		return nil, err
	}
	return &FunctionAssignmentNode{Name: n.Name, Params: n.Params, Expr: e}, nil
}

func (n *FunctionAssignmentNode) Clone() Node { c := *n; return &c }

func (n *FunctionAssignmentNode) String() string {
	return n.Name + "(" + strings.Join(n.Params, ", ") + ") = " + n.Expr.String()
}

// UpdateNode assigns to part of a variable, like A[2] = 5.
type UpdateNode struct {
	Index *IndexNode
	Expr  Node
}

func (n *UpdateNode) ForEach(fn VisitFunc) {
	fn(n.Index, "index", n)
	fn(n.Expr, "expr", n)
}

func (n *UpdateNode) Map(fn MapFunc) (Node, error) {
	i, err := mapChild(fn, n.Index, "index", n)
	if err != nil {
		return nil, err
	}
	idx, ok := i.(*IndexNode)
	if !ok {
		return nil, &MapError{Path: "index", Parent: n, Want: "*IndexNode"}
	}
	e, err := mapChild(fn, n.Expr, "expr", n)
	if err != nil {
		return nil, err
	}
	return &UpdateNode{Index: idx, Expr: e}, nil
}

func (n *UpdateNode) Clone() Node { c := *n; return &c }

func (n *UpdateNode) String() string {
	return n.Index.String() + " = " + n.Expr.String()
}

// Block is one statement of a BlockNode.
type Block struct {
	Node Node
	// Visible is whether the statement's value is part of the block's
	// result. Statements terminated by ; are invisible.
	Visible bool
}

// BlockNode is a sequence of statements separated by newlines or semicolons.
type BlockNode struct {
	Blocks []Block
}

func (n *BlockNode) ForEach(fn VisitFunc) {
	for i, b := range n.Blocks {
		fn(b.Node, "blocks["+strconv.Itoa(i)+"]", n)
	}
}

func (n *BlockNode) Map(fn MapFunc) (Node, error) {
	r := &BlockNode{Blocks: make([]Block, len(n.Blocks))}
	for i, b := range n.Blocks {
		c, err := mapChild(fn, b.Node, "blocks["+strconv.Itoa(i)+"]", n)
		if err != nil {
			return nil, err
		}
		r.Blocks[i] = Block{Node: c, Visible: b.Visible}
	}
	return r, nil
}

func (n *BlockNode) Clone() Node { c := *n; return &c }

func (n *BlockNode) String() string {
	var b strings.Builder
	for i, s := range n.Blocks {
		b.WriteString(s.Node.String())
		switch {
		case !s.Visible:
			b.WriteByte(';')
		case i < len(n.Blocks)-1, len(n.Blocks) == 1:
			// A lone visible statement needs its separator to remain a
			// block.
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func joinNodes(nodes []Node) string {
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(n.String())
	}
	return b.String()
}

var (
	_ Node = (*ConstantNode)(nil)
	_ Node = (*SymbolNode)(nil)
	_ Node = (*ArrayNode)(nil)
	_ Node = (*OperatorNode)(nil)
	_ Node = (*FunctionNode)(nil)
	_ Node = (*IndexNode)(nil)
	_ Node = (*RangeNode)(nil)
	_ Node = (*ConditionalNode)(nil)
	_ Node = (*AssignmentNode)(nil)
	_ Node = (*FunctionAssignmentNode)(nil)
	_ Node = (*UpdateNode)(nil)
	_ Node = (*BlockNode)(nil)
)

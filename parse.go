package mathexpr

import (
	"strconv"
)

// Block      = [ Assignment ] { ( '\n' | ';' ) [ Assignment ] }
// Assignment = Conditional [ '=' Assignment ]
// Conditional = Or { '?' Conditional ':' Conditional }
// Or .. BitAnd = left-associative binary levels: or, xor, and, |, ^|, &
// Relational = Shift { ('==' | '!=' | '<' | '>' | '<=' | '>=') Shift }
// Shift      = Conversion { ('<<' | '>>' | '>>>') Conversion }
// Conversion = Range { ('to' | 'in') Range }
// Range      = ( ':' | Add ) [ ':' [ Add ] [ ':' [ Add ] ] ]
// Add        = Mul { ('+' | '-') Mul }
// Mul        = Unary { ('*' | '.*' | '/' | './' | '%' | 'mod') Unary } [ Mul ]
// Unary      = ('-' | '+' | '~' | 'not') Unary | Pow
// Pow        = Postfix [ ('^' | '.^') Unary ]
// Postfix    = Custom { '!' | "'" }
// Custom     = custom-name [ '(' Conditional { ',' Conditional } ')' ] | Symbol
// Symbol     = name { Args | Index } | String
// String     = '"' chars '"' { Index } | Matrix
// Matrix     = '[' Row { ';' Row } ']' { Index } | Number
// Number     = num | '(' Assignment ')'

// Operator tables map operator text to the namespace function implementing
// it.
var (
	orOps         = map[string]string{"or": "or"}
	xorOps        = map[string]string{"xor": "xor"}
	andOps        = map[string]string{"and": "and"}
	bitOrOps      = map[string]string{"|": "bitOr"}
	bitXorOps     = map[string]string{"^|": "bitXor"}
	bitAndOps     = map[string]string{"&": "bitAnd"}
	relationalOps = map[string]string{
		"==": "equal",
		"!=": "unequal",
		"<":  "smaller",
		">":  "larger",
		"<=": "smallerEq",
		">=": "largerEq",
	}
	shiftOps = map[string]string{
		"<<":  "leftShift",
		">>":  "rightArithShift",
		">>>": "rightLogShift",
	}
	conversionOps = map[string]string{"to": "to", "in": "to"}
	addOps        = map[string]string{"+": "add", "-": "subtract"}
	mulOps        = map[string]string{
		"*":   "multiply",
		".*":  "dotMultiply",
		"/":   "divide",
		"./":  "dotDivide",
		"%":   "mod",
		"mod": "mod",
	}
	unaryOps = map[string]string{
		"-":   "unaryMinus",
		"+":   "unaryPlus",
		"~":   "bitNot",
		"not": "not",
	}
	powOps     = map[string]string{"^": "pow", ".^": "dotPow"}
	postfixOps = map[string]string{"!": "factorial", "'": "transpose"}
)

// constants are the names which parse as literals.
var constants = map[string]ConstantKind{
	"true":      ConstBool,
	"false":     ConstBool,
	"null":      ConstNull,
	"undefined": ConstUndefined,
}

// Parse parses an expression or a sequence of statements. The given options
// are applied in order.
func Parse(src string, opts ...ParseOption) (Node, error) {
	var ctx parsectx
	for _, opt := range opts {
		ctx = opt.parseOption(ctx)
	}
	return parseWith(src, &ctx)
}

// ParseAll parses each of srcs with the same options. Each source is parsed
// independently, and the first error stops parsing.
func ParseAll(srcs []string, opts ...ParseOption) ([]Node, error) {
	var ctx parsectx
	for _, opt := range opts {
		ctx = opt.parseOption(ctx)
	}
	r := make([]Node, len(srcs))
	for i, src := range srcs {
		n, err := parseWith(src, &ctx)
		if err != nil {
			return nil, err
		}
		r[i] = n
	}
	return r, nil
}

func parseWith(src string, ctx *parsectx) (Node, error) {
	p := parser{l: lex(src), ctx: ctx, cond: -1}
	return p.parseStart()
}

// parser holds the state of a single parse.
type parser struct {
	l   *lexer
	ctx *parsectx
	// cond is the nesting depth at which the true branch of the innermost
	// conditional is being parsed, or -1 if there is none. A colon at that
	// depth separates the branches instead of forming a range.
	cond int
}

func (p *parser) tok() lexToken {
	return p.l.tok
}

func (p *parser) next() error {
	return p.l.next()
}

// nextSkipNewline scans the next token that isn't a newline. Operators use it
// so that an expression may continue on the next line after one.
func (p *parser) nextSkipNewline() error {
	if err := p.next(); err != nil {
		return err
	}
	for p.tok().is("\n") {
		if err := p.next(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) open() {
	p.l.nesting++
}

func (p *parser) close() {
	p.l.nesting--
}

// errorf creates a syntax error at the current token.
func (p *parser) errorf(msg string) error {
	return &SyntaxError{Col: p.tok().pos + 1, Msg: msg}
}

func (p *parser) parseStart() (Node, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	n, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if tok := p.tok(); !tok.eof() {
		if tok.kind == tokenDelimiter {
			return nil, p.errorf("unexpected operator " + strconv.Quote(tok.text))
		}
		return nil, p.errorf("unexpected " + strconv.Quote(tok.text))
	}
	return n, nil
}

func (p *parser) parseBlock() (Node, error) {
	var (
		n      Node
		blocks []Block
		err    error
	)
	if tok := p.tok(); !tok.eof() && !tok.is("\n") && !tok.is(";") {
		if n, err = p.parseAssignment(); err != nil {
			return nil, err
		}
	}
	for p.tok().is("\n") || p.tok().is(";") {
		if len(blocks) == 0 && n != nil {
			blocks = append(blocks, Block{Node: n, Visible: !p.tok().is(";")})
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		if tok := p.tok(); !tok.eof() && !tok.is("\n") && !tok.is(";") {
			if n, err = p.parseAssignment(); err != nil {
				return nil, err
			}
			blocks = append(blocks, Block{Node: n, Visible: !p.tok().is(";")})
		}
	}
	if len(blocks) > 0 {
		return &BlockNode{Blocks: blocks}, nil
	}
	if n == nil {
		n = &ConstantNode{Value: "undefined", Kind: ConstUndefined}
	}
	return n, nil
}

func (p *parser) parseAssignment() (Node, error) {
	n, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if !p.tok().is("=") {
		return n, nil
	}
	col := p.tok().pos + 1
	switch lhs := n.(type) {
	case *SymbolNode:
		if keywords[lhs.Name] {
			return nil, &AssignmentError{Col: col, Target: lhs.Name, Reserved: true}
		}
		v, err := p.parseAssignmentValue()
		if err != nil {
			return nil, err
		}
		return &AssignmentNode{Name: lhs.Name, Expr: v}, nil
	case *IndexNode:
		s, ok := lhs.Object.(*SymbolNode)
		if !ok {
			break
		}
		if keywords[s.Name] {
			return nil, &AssignmentError{Col: col, Target: s.Name, Reserved: true}
		}
		v, err := p.parseAssignmentValue()
		if err != nil {
			return nil, err
		}
		return &UpdateNode{Index: lhs, Expr: v}, nil
	case *FunctionNode:
		name := lhs.Name()
		if name == "" {
			break
		}
		if keywords[name] {
			return nil, &AssignmentError{Col: col, Target: name, Reserved: true}
		}
		params := make([]string, len(lhs.Args))
		for i, arg := range lhs.Args {
			s, ok := arg.(*SymbolNode)
			if !ok {
				return nil, &AssignmentError{Col: col, Target: n.String()}
			}
			params[i] = s.Name
		}
		v, err := p.parseAssignmentValue()
		if err != nil {
			return nil, err
		}
		return &FunctionAssignmentNode{Name: name, Params: params, Expr: v}, nil
	}
	return nil, &AssignmentError{Col: col, Target: n.String()}
}

// parseAssignmentValue parses the right-hand side of an assignment after the
// = token.
func (p *parser) parseAssignmentValue() (Node, error) {
	if err := p.nextSkipNewline(); err != nil {
		return nil, err
	}
	return p.parseAssignment()
}

func (p *parser) parseConditional() (Node, error) {
	n, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	for p.tok().is("?") {
		prev := p.cond
		p.cond = p.l.nesting
		if err := p.nextSkipNewline(); err != nil {
			return nil, err
		}
		t, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		if !p.tok().is(":") {
			return nil, p.errorf("false part of conditional expression expected")
		}
		p.cond = -1
		if err := p.nextSkipNewline(); err != nil {
			return nil, err
		}
		f, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		n = &ConditionalNode{Condition: n, TrueExpr: t, FalseExpr: f}
		p.cond = prev
	}
	return n, nil
}

// parseBinary parses a left-associative chain of the binary operators in ops
// with operands parsed by operand.
func (p *parser) parseBinary(ops map[string]string, operand func(*parser) (Node, error)) (Node, error) {
	n, err := operand(p)
	if err != nil {
		return nil, err
	}
	for {
		tok := p.tok()
		fn, ok := ops[tok.text]
		if !ok || tok.kind != tokenDelimiter {
			return n, nil
		}
		if err := p.nextSkipNewline(); err != nil {
			return nil, err
		}
		rhs, err := operand(p)
		if err != nil {
			return nil, err
		}
		n = &OperatorNode{Op: tok.text, Fn: fn, Args: []Node{n, rhs}}
	}
}

func (p *parser) parseLogicalOr() (Node, error) {
	return p.parseBinary(orOps, (*parser).parseLogicalXor)
}

func (p *parser) parseLogicalXor() (Node, error) {
	return p.parseBinary(xorOps, (*parser).parseLogicalAnd)
}

func (p *parser) parseLogicalAnd() (Node, error) {
	return p.parseBinary(andOps, (*parser).parseBitwiseOr)
}

func (p *parser) parseBitwiseOr() (Node, error) {
	return p.parseBinary(bitOrOps, (*parser).parseBitwiseXor)
}

func (p *parser) parseBitwiseXor() (Node, error) {
	return p.parseBinary(bitXorOps, (*parser).parseBitwiseAnd)
}

func (p *parser) parseBitwiseAnd() (Node, error) {
	return p.parseBinary(bitAndOps, (*parser).parseRelational)
}

func (p *parser) parseRelational() (Node, error) {
	return p.parseBinary(relationalOps, (*parser).parseShift)
}

func (p *parser) parseShift() (Node, error) {
	return p.parseBinary(shiftOps, (*parser).parseConversion)
}

func (p *parser) parseConversion() (Node, error) {
	n, err := p.parseRange()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.tok()
		fn, ok := conversionOps[tok.text]
		if !ok || tok.kind != tokenDelimiter {
			return n, nil
		}
		if err := p.nextSkipNewline(); err != nil {
			return nil, err
		}
		if tok.text == "in" && p.tok().eof() {
			// Nothing to convert to, so this is the unit in.
			n = &OperatorNode{Op: "*", Fn: "multiply", Args: []Node{n, &SymbolNode{Name: "in"}}, Implicit: true}
			continue
		}
		rhs, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		n = &OperatorNode{Op: tok.text, Fn: fn, Args: []Node{n, rhs}}
	}
}

func (p *parser) parseRange() (Node, error) {
	var (
		n   Node
		err error
	)
	if p.tok().is(":") {
		// Implicit start.
		n = &ConstantNode{Value: "1", Kind: ConstNumber}
	} else if n, err = p.parseAddSubtract(); err != nil {
		return nil, err
	}
	if !p.tok().is(":") || p.cond == p.l.nesting {
		return n, nil
	}
	params := []Node{n}
	for p.tok().is(":") && len(params) < 3 {
		if err := p.nextSkipNewline(); err != nil {
			return nil, err
		}
		if tok := p.tok(); tok.is(")") || tok.is("]") || tok.is(",") || tok.eof() {
			params = append(params, &SymbolNode{Name: "end"})
			continue
		}
		x, err := p.parseAddSubtract()
		if err != nil {
			return nil, err
		}
		params = append(params, x)
	}
	if len(params) == 3 {
		return &RangeNode{Start: params[0], Step: params[1], End: params[2]}, nil
	}
	return &RangeNode{Start: params[0], End: params[1]}, nil
}

func (p *parser) parseAddSubtract() (Node, error) {
	return p.parseBinary(addOps, (*parser).parseMultiplyDivide)
}

func (p *parser) parseMultiplyDivide() (Node, error) {
	n, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	last := n
	for {
		tok := p.tok()
		fn, ok := mulOps[tok.text]
		if !ok || tok.kind != tokenDelimiter {
			break
		}
		if err := p.nextSkipNewline(); err != nil {
			return nil, err
		}
		if last, err = p.parseUnary(); err != nil {
			return nil, err
		}
		n = &OperatorNode{Op: tok.text, Fn: fn, Args: []Node{n, last}}
	}
	// Implicit multiplication:
	//	symbol: 2a, (2+3)a, a b
	//	number: (2+3)2, but never 2 3
	//	brackets: 2(3+4), (3+4)(1+2), 2[1,2,3]
	//	in after a constant: 5 in
	tok := p.tok()
	_, lastConst := last.(*ConstantNode)
	_, nConst := n.(*ConstantNode)
	if tok.kind == tokenSymbol ||
		(tok.is("in") && nConst) ||
		(tok.kind == tokenNumber && !lastConst) ||
		tok.is("(") || tok.is("[") {
		rhs, err := p.parseMultiplyDivide()
		if err != nil {
			return nil, err
		}
		n = &OperatorNode{Op: "*", Fn: "multiply", Args: []Node{n, rhs}, Implicit: true}
	}
	return n, nil
}

func (p *parser) parseUnary() (Node, error) {
	tok := p.tok()
	if fn, ok := unaryOps[tok.text]; ok && tok.kind == tokenDelimiter {
		if err := p.nextSkipNewline(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &OperatorNode{Op: tok.text, Fn: fn, Args: []Node{x}}, nil
	}
	return p.parsePow()
}

func (p *parser) parsePow() (Node, error) {
	n, err := p.parseLeftHandOperators()
	if err != nil {
		return nil, err
	}
	tok := p.tok()
	if fn, ok := powOps[tok.text]; ok && tok.kind == tokenDelimiter {
		if err := p.nextSkipNewline(); err != nil {
			return nil, err
		}
		// Back to unary so that 2^-3 works.
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n = &OperatorNode{Op: tok.text, Fn: fn, Args: []Node{n, rhs}}
	}
	return n, nil
}

func (p *parser) parseLeftHandOperators() (Node, error) {
	n, err := p.parseCustomNodes()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.tok()
		fn, ok := postfixOps[tok.text]
		if !ok || tok.kind != tokenDelimiter {
			return n, nil
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		n = &OperatorNode{Op: tok.text, Fn: fn, Args: []Node{n}}
	}
}

func (p *parser) parseCustomNodes() (Node, error) {
	tok := p.tok()
	if tok.kind != tokenSymbol {
		return p.parseSymbol()
	}
	f := p.ctx.nodes[tok.text]
	if f == nil {
		return p.parseSymbol()
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	var args []Node
	if p.tok().is("(") {
		p.open()
		if err := p.next(); err != nil {
			return nil, err
		}
		if !p.tok().is(")") {
			for {
				x, err := p.parseConditional()
				if err != nil {
					return nil, err
				}
				args = append(args, x)
				if !p.tok().is(",") {
					break
				}
				if err := p.next(); err != nil {
					return nil, err
				}
			}
		}
		if !p.tok().is(")") {
			return nil, p.errorf("parenthesis ) expected")
		}
		p.close()
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	n := f(args)
	if n == nil {
		return nil, &SyntaxError{Col: tok.pos + 1, Msg: "custom node " + strconv.Quote(tok.text) + " produced no node"}
	}
	return n, nil
}

func (p *parser) parseSymbol() (Node, error) {
	tok := p.tok()
	if tok.kind != tokenSymbol && !(tok.kind == tokenDelimiter && namedOperators[tok.text]) {
		return p.parseString()
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if k, ok := constants[tok.text]; ok && tok.kind == tokenSymbol {
		return &ConstantNode{Value: tok.text, Kind: k}, nil
	}
	return p.parseAccessors(&SymbolNode{Name: tok.text}, true)
}

// parseAccessors parses any number of argument lists and index lists applied
// to n. Argument lists are only allowed when call is true.
func (p *parser) parseAccessors(n Node, call bool) (Node, error) {
	for {
		var closer string
		switch {
		case call && p.tok().is("("):
			closer = ")"
		case p.tok().is("["):
			closer = "]"
		default:
			return n, nil
		}
		p.open()
		if err := p.next(); err != nil {
			return nil, err
		}
		var args []Node
		if !p.tok().is(closer) {
			for {
				x, err := p.parseAssignment()
				if err != nil {
					return nil, err
				}
				args = append(args, x)
				if !p.tok().is(",") {
					break
				}
				if err := p.next(); err != nil {
					return nil, err
				}
			}
		}
		if !p.tok().is(closer) {
			return nil, p.errorf("parenthesis " + closer + " expected")
		}
		p.close()
		if err := p.next(); err != nil {
			return nil, err
		}
		if closer == ")" {
			n = &FunctionNode{Fn: n, Args: args}
		} else {
			n = &IndexNode{Object: n, Dims: args}
		}
	}
}

func (p *parser) parseString() (Node, error) {
	if !p.tok().is(`"`) {
		return p.parseMatrix()
	}
	s, err := p.l.scanString()
	if err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p.parseAccessors(&ConstantNode{Value: s, Kind: ConstString}, false)
}

func (p *parser) parseMatrix() (Node, error) {
	if !p.tok().is("[") {
		return p.parseNumber()
	}
	p.open()
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.tok().is("]") {
		p.close()
		if err := p.next(); err != nil {
			return nil, err
		}
		return p.parseAccessors(&ArrayNode{}, false)
	}
	row, err := p.parseRow()
	if err != nil {
		return nil, err
	}
	if !p.tok().is(";") {
		if !p.tok().is("]") {
			return nil, p.errorf("end of matrix ] expected")
		}
		p.close()
		if err := p.next(); err != nil {
			return nil, err
		}
		return p.parseAccessors(row, false)
	}
	rows := []Node{row}
	for p.tok().is(";") {
		if err := p.next(); err != nil {
			return nil, err
		}
		r, err := p.parseRow()
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	if !p.tok().is("]") {
		return nil, p.errorf("end of matrix ] expected")
	}
	col := p.tok().pos + 1
	p.close()
	if err := p.next(); err != nil {
		return nil, err
	}
	want := len(row.Items)
	for i, r := range rows[1:] {
		if got := len(r.(*ArrayNode).Items); got != want {
			return nil, &DimensionError{Col: col, Row: i + 1, Got: got, Want: want}
		}
	}
	return p.parseAccessors(&ArrayNode{Items: rows}, false)
}

// parseRow parses comma-separated entries of a matrix row.
func (p *parser) parseRow() (*ArrayNode, error) {
	var items []Node
	for {
		x, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		items = append(items, x)
		if !p.tok().is(",") {
			return &ArrayNode{Items: items}, nil
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseNumber() (Node, error) {
	tok := p.tok()
	if tok.kind != tokenNumber {
		return p.parseParentheses()
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ConstantNode{Value: tok.text, Kind: ConstNumber}, nil
}

func (p *parser) parseParentheses() (Node, error) {
	if !p.tok().is("(") {
		return nil, p.parseEnd()
	}
	p.open()
	if err := p.next(); err != nil {
		return nil, err
	}
	n, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if !p.tok().is(")") {
		return nil, p.errorf("parenthesis ) expected")
	}
	p.close()
	if err := p.next(); err != nil {
		return nil, err
	}
	return n, nil
}

// parseEnd produces the error for a token which cannot start a value.
func (p *parser) parseEnd() error {
	switch tok := p.tok(); {
	case tok.eof():
		return p.errorf("unexpected end of expression")
	case tok.is("'"):
		return p.errorf("value expected; strings must be enclosed by double quotes")
	default:
		return p.errorf("value expected, got " + strconv.Quote(tok.text))
	}
}

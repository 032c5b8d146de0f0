package mathexpr

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

// NodeFactory constructs a custom node from its parsed arguments. The
// arguments are empty when the node's name appears without a parenthesized
// argument list.
type NodeFactory func(args []Node) Node

type (
	nodeopt struct {
		name string
		f    NodeFactory
	}
	nodesopt map[string]NodeFactory
)

// parsectx holds general data for parsing. It is also a ParseOption.
type parsectx struct {
	// nodes maps names to custom node constructors.
	nodes map[string]NodeFactory
}

// WithNode registers a custom node kind for parsing. Wherever name would be
// parsed as a symbol, f is called instead with the arguments of an optional
// parenthesized argument list. To disable a previously registered name, pass
// nil for f.
func WithNode(name string, f NodeFactory) ParseOption {
	return &nodeopt{name, f}
}

func (o *nodeopt) parseOption(p parsectx) parsectx {
	m := make(map[string]NodeFactory, len(p.nodes)+1)
	for k, v := range p.nodes {
		m[k] = v
	}
	m[o.name] = o.f
	p.nodes = m
	return p
}

// WithNodes registers a group of custom node kinds for parsing.
func WithNodes(nodes map[string]NodeFactory) ParseOption {
	return nodesopt(nodes)
}

func (o nodesopt) parseOption(p parsectx) parsectx {
	// Always make a copy.
	m := make(map[string]NodeFactory, len(p.nodes)+len(o))
	for k, v := range p.nodes {
		m[k] = v
	}
	for k, v := range o {
		m[k] = v
	}
	p.nodes = m
	return p
}

// ParsingPreset creates a parsing preset that may be more efficient when using
// the same options for many calls to Parse. A preset panics when it would
// change any option from the default, but it is safe to apply other options
// after a preset.
func ParsingPreset(opts ...ParseOption) ParseOption {
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	return &p
}

func (o *parsectx) parseOption(p parsectx) parsectx {
	if p.nodes != nil {
		panic("mathexpr: preset applied to non-default parse config")
	}
	p.nodes = o.nodes
	return p
}

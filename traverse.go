package mathexpr

import "sort"

// Traverse calls fn on n and then on every descendant of n, depth-first in
// preorder.
func Traverse(n Node, fn VisitFunc) {
	var walk VisitFunc
	walk = func(n Node, path string, parent Node) {
		fn(n, path, parent)
		n.ForEach(walk)
	}
	walk(n, "", nil)
}

// Transform builds a new tree by calling fn on each node in preorder. If fn
// returns a node other than the one it was given, that node replaces the
// original and its children are not visited. Otherwise, Transform continues
// into the children of the node.
func Transform(n Node, fn MapFunc) (Node, error) {
	var walk MapFunc
	walk = func(n Node, path string, parent Node) (Node, error) {
		r, err := fn(n, path, parent)
		if err != nil {
			return nil, err
		}
		if r != n {
			return r, nil
		}
		return n.Map(walk)
	}
	r, err := walk(n, "", nil)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &MapError{Path: ""}
	}
	return r, nil
}

// Filter returns the nodes in the tree rooted at n for which pred is true, in
// preorder.
func Filter(n Node, pred PredicateFunc) []Node {
	var r []Node
	Traverse(n, func(n Node, path string, parent Node) {
		if pred(n, path, parent) {
			r = append(r, n)
		}
	})
	return r
}

// PredicateFunc is a predicate over nodes in a traversal.
type PredicateFunc func(n Node, path string, parent Node) bool

// Symbols returns the names of the symbols used in the tree rooted at n which
// are not the callees of function calls, sorted and without duplicates.
func Symbols(n Node) []string {
	seen := make(map[string]bool)
	Traverse(n, func(n Node, path string, parent Node) {
		s, ok := n.(*SymbolNode)
		if !ok {
			return
		}
		if _, call := parent.(*FunctionNode); call && path == "fn" {
			return
		}
		seen[s.Name] = true
	})
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

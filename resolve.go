package mathexpr

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// resolver is one strategy for looking up names during evaluation.
type resolver interface {
	resolve(name string, s Scope) (any, bool)
	// names lists the names the resolver can find, for suggestions.
	names(s Scope) []string
}

// scopeResolver finds variables in the live scope.
type scopeResolver struct{}

func (scopeResolver) resolve(name string, s Scope) (any, bool) {
	return s.Get(name)
}

func (scopeResolver) names(s Scope) []string {
	return s.Keys()
}

// namespaceResolver finds entries in a namespace, preferring transforms.
type namespaceResolver struct {
	ns Namespace
}

func (r namespaceResolver) resolve(name string, s Scope) (any, bool) {
	v, ok := r.ns[name]
	if !ok {
		return nil, false
	}
	if t, ok := v.(Transformer); ok {
		return t.Transform(), true
	}
	return v, true
}

func (r namespaceResolver) names(s Scope) []string {
	k := make([]string, 0, len(r.ns))
	for name := range r.ns {
		k = append(k, name)
	}
	sort.Strings(k)
	return k
}

// resolverChain tries each resolver in order.
type resolverChain []resolver

func (c resolverChain) resolve(name string, s Scope) (any, bool) {
	for _, r := range c {
		if v, ok := r.resolve(name, s); ok {
			return v, true
		}
	}
	return nil, false
}

// suggest finds up to limit names similar to name among those the chain can
// resolve, closest first.
func (c resolverChain) suggest(name string, s Scope, limit int) []string {
	if limit <= 0 {
		return nil
	}
	seen := make(map[string]bool)
	var cands []string
	for _, r := range c {
		for _, k := range r.names(s) {
			if !seen[k] && !keywords[k] {
				seen[k] = true
				cands = append(cands, k)
			}
		}
	}
	ranks := fuzzy.RankFindFold(name, cands)
	found := make(map[string]bool, len(ranks))
	for _, r := range ranks {
		found[r.Target] = true
	}
	// Subsequence matching misses transpositions and other typos.
	for i, k := range cands {
		if found[k] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(name, k); d <= 2 && d < len(k) {
			ranks = append(ranks, fuzzy.Rank{Source: name, Target: k, Distance: d, OriginalIndex: i})
		}
	}
	sort.Stable(ranks)
	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	r := make([]string, len(ranks))
	for i, k := range ranks {
		r[i] = k.Target
	}
	return r
}

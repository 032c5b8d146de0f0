package mathexpr_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/mathexpr"
)

func indexScope() mathexpr.MapScope {
	return mathexpr.MapScope{
		"A": []any{1.0, 2.0, 3.0, 4.0},
		"B": []any{2.0, 3.0},
		"M": []any{
			[]any{1.0, 2.0},
			[]any{3.0, 4.0},
		},
		"S": []any{},
	}
}

func TestIndex(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want any
	}{
		{"scalar", "A[2]", 2.0},
		{"end", "A[end]", 4.0},
		{"end-arith", "A[end-1]", 3.0},
		{"range-end", "A[2:end]", []any{2.0, 3.0, 4.0}},
		{"range-back", "A[end:-1:3]", []any{4.0, 3.0}},
		{"range-all-back", "A[end:-1:1]", []any{4.0, 3.0, 2.0, 1.0}},
		{"colon", "A[:]", []any{1.0, 2.0, 3.0, 4.0}},
		{"list", "A[[1, 3]]", []any{1.0, 3.0}},
		{"range-value", "A[1:2:4]", []any{1.0, 3.0}},
		{"empty-range", "A[3:2]", []any{}},
		{"2d", "M[2, 1]", 3.0},
		{"2d-end", "M[end, end]", 4.0},
		{"column", "M[:, 1]", []any{1.0, 3.0}},
		{"row", "M[1, :]", []any{1.0, 2.0}},
		{"nested-end", "A[B[end]]", 3.0},
		{"call-result", "f(x) = A; f(0)[end]", &mathexpr.ResultSet{Entries: []any{4.0}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := mathexpr.EvalString(c.src, floatNS(), indexScope())
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(c.want, r); diff != "" {
				t.Errorf("wrong result (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	cases := []struct {
		name string
		src  string
		// v is the variable that changes.
		v    string
		want any
	}{
		{"scalar", "A[2] = 9", "A", []any{1.0, 9.0, 3.0, 4.0}},
		{"end", "A[end] = 0", "A", []any{1.0, 2.0, 3.0, 0.0}},
		{"range", "A[2:3] = [7, 8]", "A", []any{1.0, 7.0, 8.0, 4.0}},
		{"grow", "S[3] = 1", "S", []any{0.0, 0.0, 1.0}},
		{"2d", "M[1, 2] = 5", "M", []any{[]any{1.0, 5.0}, []any{3.0, 4.0}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := indexScope()
			orig := s[c.v]
			_, err := mathexpr.EvalString(c.src, floatNS(), s)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(c.want, s[c.v]); diff != "" {
				t.Errorf("wrong value (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(indexScope()[c.v], orig); diff != "" {
				t.Errorf("update modified the original value (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpdateValue(t *testing.T) {
	s := indexScope()
	r, err := mathexpr.EvalString("A[1] = 6", floatNS(), s)
	if err != nil {
		t.Fatal(err)
	}
	if r != 6.0 {
		t.Errorf("update should give the assigned value, got %v", r)
	}
}

func TestIndexDims(t *testing.T) {
	var got mathexpr.Index
	ns := mathexpr.Namespace{
		"subset": mathexpr.FuncOf(func(args ...any) (any, error) {
			got = args[1].(mathexpr.Index)
			return nil, nil
		}),
		"size": mathexpr.FuncOf(func(args ...any) (any, error) {
			return []int{9, 9, 9, 9}, nil
		}),
		"unaryMinus": f1(func(x float64) any { return -x }),
		"subtract":   f2(func(x, y float64) any { return x - y }),
		"range":      mathexpr.FuncOf(func(args ...any) (any, error) { return nil, nil }),
	}
	cases := []struct {
		src  string
		want mathexpr.Index
	}{
		{
			"a[1, 2:3, 5:-1:1, [1, 3]]",
			mathexpr.Index{Dims: []mathexpr.Dim{
				{List: []int{0}, Scalar: true},
				{Range: mathexpr.Range{Start: 1, End: 3, Step: 1}},
				{Range: mathexpr.Range{Start: 4, End: -1, Step: -1}},
				{List: []int{0, 2}},
			}},
		},
		{
			"a[:, end, end-1:end]",
			mathexpr.Index{Dims: []mathexpr.Dim{
				{Range: mathexpr.Range{Start: 0, End: 9, Step: 1}},
				{List: []int{8}, Scalar: true},
				{Range: mathexpr.Range{Start: 7, End: 9, Step: 1}},
			}},
		},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			got = mathexpr.Index{}
			_, err := mathexpr.EvalString(c.src, ns, mathexpr.MapScope{"a": nil})
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("wrong index (-want +got):\n%s", diff)
			}
			if got.IsScalar() {
				t.Error("index with ranges reported scalar")
			}
		})
	}
}

func TestIndexErrors(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		ns    mathexpr.Namespace
		check func(t *testing.T, err error)
	}{
		{"zero", "A[0]", floatNS(), isType[*mathexpr.IndexError]},
		{"zero-start", "A[0:2]", floatNS(), isType[*mathexpr.IndexError]},
		{"zero-step", "A[1:0:3]", floatNS(), isType[*mathexpr.IndexError]},
		{"fraction", "A[1.5]", floatNS(), isType[*mathexpr.IndexError]},
		{"end-beyond-dims", "A[1, end]", floatNS(), isType[*mathexpr.IndexError]},
		{"out-of-range", "A[9]", floatNS(), isType[*mathexpr.IndexError]},
		{"no-subset", "A[1]", mathexpr.Namespace{}, isMissing("subset", "[]")},
		{"no-subset-update", "A[1] = 2", mathexpr.Namespace{}, isMissing("subset", "[]=")},
		{"no-size", "A[end]", mathexpr.Namespace{"subset": floatNS()["subset"]}, isMissing("size", "end")},
		{"update-undefined", "Z[1] = 2", floatNS(), isType[*mathexpr.UndefinedError]},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := mathexpr.EvalString(c.src, c.ns, indexScope())
			if err == nil {
				t.Fatalf("expected error, got %v", r)
			}
			c.check(t, err)
		})
	}
}

func TestRange(t *testing.T) {
	cases := []struct {
		r    mathexpr.Range
		want []int
		str  string
	}{
		{mathexpr.Range{Start: 0, End: 4, Step: 1}, []int{0, 1, 2, 3}, "0:4"},
		{mathexpr.Range{Start: 0, End: 5, Step: 2}, []int{0, 2, 4}, "0:5:2"},
		{mathexpr.Range{Start: 0, End: 6, Step: 2}, []int{0, 2, 4}, "0:6:2"},
		{mathexpr.Range{Start: 4, End: -1, Step: -1}, []int{4, 3, 2, 1, 0}, "4:-1:-1"},
		{mathexpr.Range{Start: 4, End: 0, Step: -2}, []int{4, 2}, "4:0:-2"},
		{mathexpr.Range{Start: 0, End: 0, Step: 1}, []int{}, "0:0"},
		{mathexpr.Range{Start: 2, End: 0, Step: 1}, []int{}, "2:0"},
		{mathexpr.Range{Start: 0, End: 2, Step: -1}, []int{}, "0:2:-1"},
	}
	for _, c := range cases {
		t.Run(c.str, func(t *testing.T) {
			if got := c.r.String(); got != c.str {
				t.Errorf("wrong string %q", got)
			}
			if got := c.r.Len(); got != len(c.want) {
				t.Errorf("want length %d, got %d", len(c.want), got)
			}
			if diff := cmp.Diff(c.want, c.r.Positions()); diff != "" {
				t.Errorf("wrong positions (-want +got):\n%s", diff)
			}
			d := mathexpr.Dim{Range: c.r}
			if !d.IsRange() {
				t.Error("range dim is not a range")
			}
			if diff := cmp.Diff(c.want, d.Positions()); diff != "" {
				t.Errorf("wrong dim positions (-want +got):\n%s", diff)
			}
		})
	}
}

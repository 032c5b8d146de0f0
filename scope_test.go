package mathexpr_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/mathexpr"
)

func TestMapScope(t *testing.T) {
	s := mathexpr.MapScope{"b": 1, "a": 2}
	if v, ok := s.Get("a"); !ok || v != 2 {
		t.Errorf("wrong a: %v, %t", v, ok)
	}
	if _, ok := s.Get("c"); ok {
		t.Error("found undefined c")
	}
	s.Set("c", 3)
	if diff := cmp.Diff([]string{"a", "b", "c"}, s.Keys()); diff != "" {
		t.Errorf("wrong keys (-want +got):\n%s", diff)
	}
}

func TestChildScope(t *testing.T) {
	parent := mathexpr.MapScope{"x": 1, "y": 2}
	child := mathexpr.NewChildScope(parent)
	child.Set("x", 10)
	child.Set("z", 30)
	if v, _ := child.Get("x"); v != 10 {
		t.Errorf("child x = %v", v)
	}
	if v, _ := child.Get("y"); v != 2 {
		t.Errorf("child y = %v", v)
	}
	if parent["x"] != 1 {
		t.Errorf("child assignment reached parent: x = %v", parent["x"])
	}
	if _, ok := parent["z"]; ok {
		t.Error("child definition reached parent")
	}
	if diff := cmp.Diff([]string{"x", "y", "z"}, child.Keys()); diff != "" {
		t.Errorf("wrong keys (-want +got):\n%s", diff)
	}
	// Later parent changes are visible.
	parent["y"] = 20
	if v, _ := child.Get("y"); v != 20 {
		t.Errorf("child y after parent change = %v", v)
	}
}

func TestValidateScope(t *testing.T) {
	if err := mathexpr.ValidateScope(mathexpr.MapScope{"x": 1}); err != nil {
		t.Errorf("ordinary scope is invalid: %v", err)
	}
	err := mathexpr.ValidateScope(mathexpr.MapScope{"x": 1, "end": 2})
	isType[*mathexpr.ReservedError](t, err)
	child := mathexpr.NewChildScope(mathexpr.MapScope{})
	child.Set("end", 3)
	isType[*mathexpr.ReservedError](t, mathexpr.ValidateScope(child))
}

func TestKeywords(t *testing.T) {
	kw := mathexpr.Keywords()
	if diff := cmp.Diff([]string{"end"}, kw); diff != "" {
		t.Errorf("wrong keywords (-want +got):\n%s", diff)
	}
	kw[0] = "x"
	if !mathexpr.IsKeyword("end") || mathexpr.IsKeyword("x") {
		t.Error("modifying the keyword list changed the reserved names")
	}
	if diff := cmp.Diff([]string{"end"}, mathexpr.Keywords()); diff != "" {
		t.Errorf("keywords changed (-want +got):\n%s", diff)
	}
}

func TestUndefinedMessage(t *testing.T) {
	_, err := mathexpr.EvalString("sqr(2)", floatNS(), nil)
	if err == nil {
		t.Fatal("no error")
	}
	if got, want := err.Error(), `undefined symbol "sqr"; did you mean "sqrt"?`; got != want {
		t.Errorf("want %s, got %s", want, got)
	}
}

package mathexpr

import (
	"errors"
	"testing"
)

func TestLex(t *testing.T) {
	d := func(text string, pos int) lexToken { return lexToken{text: text, kind: tokenDelimiter, pos: pos} }
	n := func(text string, pos int) lexToken { return lexToken{text: text, kind: tokenNumber, pos: pos} }
	s := func(text string, pos int) lexToken { return lexToken{text: text, kind: tokenSymbol, pos: pos} }
	cases := []struct {
		src    string
		tokens []lexToken
		// err is the column of a lex error after the tokens, or 0.
		err int
	}{
		// spaces
		{"", nil, 0},
		{" \t \r ", nil, 0},
		{"\n", []lexToken{d("\n", 0)}, 0},
		{"# comment", nil, 0},
		{"1 # comment\n2", []lexToken{n("1", 0), d("\n", 11), n("2", 12)}, 0},
		// numbers
		{"0", []lexToken{n("0", 0)}, 0},
		{"9876543210", []lexToken{n("9876543210", 0)}, 0},
		{"1 0", []lexToken{n("1", 0), n("0", 2)}, 0},
		{"1.0", []lexToken{n("1.0", 0)}, 0},
		{"-1", []lexToken{d("-", 0), n("1", 1)}, 0},
		{"1e1", []lexToken{n("1e1", 0)}, 0},
		{"1e", []lexToken{n("1", 0), s("e", 1)}, 0},
		{"2e+1", []lexToken{n("2e+1", 0)}, 0},
		{"2E-1", []lexToken{n("2E-1", 0)}, 0},
		{"1e+", nil, 1},
		{"1.1.1", []lexToken{n("1.1", 0), n(".1", 3)}, 0},
		{".", nil, 1},
		{".1", []lexToken{n(".1", 0)}, 0},
		{".1e1", []lexToken{n(".1e1", 0)}, 0},
		{"2.*3", []lexToken{n("2", 0), d(".*", 1), n("3", 3)}, 0},
		{"2./3", []lexToken{n("2", 0), d("./", 1), n("3", 3)}, 0},
		{"2.^3", []lexToken{n("2", 0), d(".^", 1), n("3", 3)}, 0},
		{"2.3", []lexToken{n("2.3", 0)}, 0},
		{"1a", []lexToken{n("1", 0), s("a", 1)}, 0},
		// symbols
		{"e", []lexToken{s("e", 0)}, 0},
		{"e1", []lexToken{s("e1", 0)}, 0},
		{"π", []lexToken{s("π", 0)}, 0},
		{"_1234_", []lexToken{s("_1234_", 0)}, 0},
		{"e(", []lexToken{s("e", 0), d("(", 1)}, 0},
		{"mod", []lexToken{d("mod", 0)}, 0},
		{"x in cm", []lexToken{s("x", 0), d("in", 2), s("cm", 5)}, 0},
		{"andy", []lexToken{s("andy", 0)}, 0},
		// operators
		{"+", []lexToken{d("+", 0)}, 0},
		{"++", []lexToken{d("+", 0), d("+", 1)}, 0},
		{"a>>>b", []lexToken{s("a", 0), d(">>>", 1), s("b", 4)}, 0},
		{"a>>b", []lexToken{s("a", 0), d(">>", 1), s("b", 3)}, 0},
		{"a>=b", []lexToken{s("a", 0), d(">=", 1), s("b", 3)}, 0},
		{"a^|b", []lexToken{s("a", 0), d("^|", 1), s("b", 3)}, 0},
		{"a!=b", []lexToken{s("a", 0), d("!=", 1), s("b", 3)}, 0},
		{"a!", []lexToken{s("a", 0), d("!", 1)}, 0},
		// newlines inside brackets
		{"(1\n2)", []lexToken{d("(", 0), n("1", 1), d("\n", 2), n("2", 3), d(")", 4)}, 0},
		// erroneous characters
		{"$", nil, 1},
		{"a$", []lexToken{s("a", 0)}, 2},
		{"0 @", []lexToken{n("0", 0)}, 3},
	}

	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			l := lex(c.src)
			for _, want := range c.tokens {
				if err := l.next(); err != nil {
					t.Fatalf("expected token %v but got error %v", want, err)
				}
				if l.tok != want {
					t.Errorf("want %v, got %v", want, l.tok)
				}
			}
			err := l.next()
			if c.err == 0 {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				if !l.tok.eof() {
					t.Errorf("extra token %v", l.tok)
				}
				return
			}
			var lerr *LexError
			if !errors.As(err, &lerr) {
				t.Fatalf("expected *LexError, got %v (%T) with token %v", err, err, l.tok)
			}
			if lerr.Pos() != c.err {
				t.Errorf("wrong error column: want %d, got %d", c.err, lerr.Pos())
			}
		})
	}
}

func TestLexNesting(t *testing.T) {
	// The parser maintains nesting. Here newlines become insignificant only
	// while it is positive.
	l := lex("a\nb\nc")
	if err := l.next(); err != nil {
		t.Fatal(err)
	}
	l.nesting++
	if err := l.next(); err != nil {
		t.Fatal(err)
	}
	if want := (lexToken{text: "b", kind: tokenSymbol, pos: 2}); l.tok != want {
		t.Errorf("want %v, got %v", want, l.tok)
	}
	l.nesting--
	if err := l.next(); err != nil {
		t.Fatal(err)
	}
	if !l.tok.is("\n") {
		t.Errorf("want newline, got %v", l.tok)
	}
}

func TestLexString(t *testing.T) {
	cases := []struct {
		src  string
		want string
		err  bool
	}{
		{`"abc"`, "abc", false},
		{`""`, "", false},
		{`"a\"b"`, `a"b`, false},
		{`"a\nb"`, "a\nb", false},
		{`"abc`, "", true},
		{`"\q"`, "", true},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			l := lex(c.src)
			if err := l.next(); err != nil {
				t.Fatal(err)
			}
			if !l.tok.is(`"`) {
				t.Fatalf("want quote, got %v", l.tok)
			}
			s, err := l.scanString()
			if c.err {
				var serr *SyntaxError
				if !errors.As(err, &serr) {
					t.Errorf("want *SyntaxError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if s != c.want {
				t.Errorf("want %q, got %q", c.want, s)
			}
			if err := l.next(); err != nil || !l.tok.eof() {
				t.Errorf("want end of input, got %v, %v", l.tok, err)
			}
		})
	}
}

func TestNamedOperatorsAreDelimiters(t *testing.T) {
	for name := range namedOperators {
		l := lex(name)
		if err := l.next(); err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if !l.tok.is(name) {
			t.Errorf("%s lexed as %v", name, l.tok)
		}
		if !IsNamedOperator(name) {
			t.Errorf("IsNamedOperator(%q) is false", name)
		}
	}
	if IsNamedOperator("sqrt") {
		t.Error("sqrt reported as a named operator")
	}
}

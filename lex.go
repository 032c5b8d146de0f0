package mathexpr

import (
	"strconv"
	"strings"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	// pos is the zero-based rune offset of the start of the token.
	pos int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + strconv.Quote(t.text) + "@" + strconv.Itoa(t.pos)
}

// eof reports whether the token marks the end of the input.
func (t lexToken) eof() bool {
	return t.kind == tokenDelimiter && t.text == ""
}

// is reports whether the token is the delimiter d.
func (t lexToken) is(d string) bool {
	return t.kind == tokenDelimiter && t.text == d
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenDelimiter is an operator, bracket, separator, or named operator
	// like "and". The end of input is a delimiter with empty text.
	tokenDelimiter
	// tokenNumber is a numeric literal.
	tokenNumber
	// tokenSymbol is a variable or function name.
	tokenSymbol
	// tokenUnknown is anything else. The lexer never hands these to the
	// parser; it fails instead.
	tokenUnknown
)

func (k tokenKind) String() string {
	switch k {
	case tokenNone:
		return "None"
	case tokenDelimiter:
		return "Delimiter"
	case tokenNumber:
		return "Number"
	case tokenSymbol:
		return "Symbol"
	case tokenUnknown:
		return "Unknown"
	default:
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Delimiters by length. The lexer always tries the longest first so that
// e.g. >>> is never split into >> and >.
var (
	delimiters3 = map[string]bool{">>>": true}
	delimiters2 = map[string]bool{
		".*": true, "./": true, ".^": true, "^|": true,
		"==": true, "!=": true, "<=": true, ">=": true,
		"<<": true, ">>": true,
	}
	delimiters1 = ",()[]\";+-*/%^~!&|'=:?<>\n"
)

// namedOperators contains the words which are lexed as operators rather than
// symbols.
var namedOperators = map[string]bool{
	"mod": true,
	"to":  true,
	"in":  true,
	"and": true,
	"not": true,
	"or":  true,
	"xor": true,
}

// IsNamedOperator reports whether name is a word lexed as an operator, like
// mod or xor.
func IsNamedOperator(name string) bool {
	return namedOperators[name]
}

// eofRune is the current character past the end of the input.
const eofRune rune = -1

// lexer is the cursor of a single parse. It is never shared between parses.
type lexer struct {
	src []rune
	// pos is the index of the current character.
	pos int
	// nesting is the number of open parentheses and brackets. Newlines are
	// insignificant while it is nonzero.
	nesting int
	// tok is the current token.
	tok lexToken
}

func lex(src string) *lexer {
	return &lexer{src: []rune(src)}
}

// cur returns the current character.
func (l *lexer) cur() rune {
	return l.peek(0)
}

// peek returns the character k positions after the current one.
func (l *lexer) peek(k int) rune {
	if l.pos+k >= len(l.src) {
		return eofRune
	}
	return l.src[l.pos+k]
}

// next scans the next token into l.tok.
func (l *lexer) next() error {
	for {
		r := l.cur()
		if r == ' ' || r == '\t' || r == '\r' || (r == '\n' && l.nesting > 0) {
			l.pos++
			continue
		}
		if r == '#' {
			for r != '\n' && r != eofRune {
				l.pos++
				r = l.cur()
			}
			continue
		}
		break
	}
	l.tok = lexToken{kind: tokenDelimiter, pos: l.pos}
	r := l.cur()
	switch {
	case r == eofRune:
		return nil
	case r == '\n':
		l.tok.text = "\n"
		l.pos++
		return nil
	}
	if d := l.delimiter(); d != "" {
		l.tok.text = d
		l.pos += len(d)
		return nil
	}
	if isDigit(r) || r == '.' {
		if l.scanNum() {
			return nil
		}
		if l.tok.kind == tokenUnknown {
			return l.error("number")
		}
		// A lone dot. The cursor is where it was, and the dot is not a token
		// of its own.
		return l.error("")
	}
	if isAlpha(r) {
		start := l.pos
		for isAlpha(l.cur()) || isDigit(l.cur()) {
			l.pos++
		}
		l.tok.text = string(l.src[start:l.pos])
		l.tok.kind = tokenSymbol
		if namedOperators[l.tok.text] {
			l.tok.kind = tokenDelimiter
		}
		return nil
	}
	return l.error("")
}

// delimiter returns the longest delimiter at the cursor, or the empty string
// if there is none. It does not advance.
func (l *lexer) delimiter() string {
	if l.pos+3 <= len(l.src) {
		if s := string(l.src[l.pos : l.pos+3]); delimiters3[s] {
			return s
		}
	}
	if l.pos+2 <= len(l.src) {
		if s := string(l.src[l.pos : l.pos+2]); delimiters2[s] {
			return s
		}
	}
	if strings.ContainsRune(delimiters1, l.cur()) {
		return string(l.cur())
	}
	return ""
}

// scanNum scans a number token. If the number is malformed, the result is
// false and l.tok.kind is tokenUnknown. If the input at the cursor is a dot
// not followed by a digit, the result is false and the cursor is unmoved.
func (l *lexer) scanNum() bool {
	start := l.pos
	if l.cur() == '.' {
		if !isDigit(l.peek(1)) {
			return false
		}
		l.pos++
	} else {
		for isDigit(l.cur()) {
			l.pos++
		}
		if l.cur() == '.' && !isElementwise(l.peek(1)) {
			l.pos++
		}
	}
	for isDigit(l.cur()) {
		l.pos++
	}
	if r := l.cur(); r == 'e' || r == 'E' {
		// Only take the e if it can start an exponent. Otherwise 2e is 2 e.
		if c := l.peek(1); isDigit(c) || c == '+' || c == '-' {
			l.pos++
			if c == '+' || c == '-' {
				l.pos++
			}
			if !isDigit(l.cur()) {
				l.tok.kind = tokenUnknown
				l.tok.text = string(l.src[start:l.pos])
				return false
			}
			for isDigit(l.cur()) {
				l.pos++
			}
		}
	}
	l.tok.kind = tokenNumber
	l.tok.text = string(l.src[start:l.pos])
	return true
}

// scanString scans the contents of a string literal. The opening quote must
// be the current token. On success the cursor is just past the closing quote.
func (l *lexer) scanString() (string, error) {
	start := l.pos
	for {
		switch l.cur() {
		case eofRune:
			return "", &SyntaxError{Col: l.tok.pos + 1, Msg: `end of string " expected`}
		case '\\':
			l.pos += 2
			continue
		case '"':
			raw := string(l.src[start:l.pos])
			l.pos++
			s, err := strconv.Unquote(`"` + raw + `"`)
			if err != nil {
				return "", &SyntaxError{Col: start + 1, Msg: "invalid string " + strconv.Quote(raw)}
			}
			return s, nil
		}
		l.pos++
	}
}

func (l *lexer) error(kind string) error {
	err := &LexError{
		Kind: kind,
		Col:  l.tok.pos + 1,
	}
	if l.tok.pos < len(l.src) {
		err.Text = string(l.src[l.tok.pos:])
	}
	return err
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isAlpha(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// isElementwise reports whether a dot followed by r is an element-wise
// operator rather than a decimal point.
func isElementwise(r rune) bool {
	return r == '*' || r == '/' || r == '^'
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the input from the start of the invalid token to the end.
	Text string
	// Kind is the type of token the lexer was scanning. This is "number" or
	// the empty string if a token kind hadn't been decided.
	Kind string
	// Col is the 1-based column of the start of the invalid token.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "syntax error at " + pos + " in part " + strconv.Quote(err.Text)
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + strconv.Quote(err.Text)
}

func (err *LexError) Pos() int {
	return err.Col
}

package mathexpr

import "strconv"

// SyntaxError is an error indicating a token that is not valid where it
// appears. It implements InputError.
type SyntaxError struct {
	// Col is the 1-based column of the offending token.
	Col int
	// Msg describes what was wrong.
	Msg string
}

func (err *SyntaxError) Error() string {
	return errpos(err.Col, err.Msg)
}

func (err *SyntaxError) Pos() int {
	return err.Col
}

// DimensionError is an error indicating a matrix literal whose rows have
// different lengths. It implements InputError.
type DimensionError struct {
	// Col is the position of the end of the matrix literal.
	Col int
	// Row is the 0-based index of the first mismatched row.
	Row int
	// Got is the length of the mismatched row.
	Got int
	// Want is the length of the first row.
	Want int
}

func (err *DimensionError) Error() string {
	return errpos(err.Col, "column dimensions mismatch ("+strconv.Itoa(err.Got)+" != "+strconv.Itoa(err.Want)+")")
}

func (err *DimensionError) Pos() int {
	return err.Col
}

// AssignmentError is an error indicating an invalid left-hand side of an
// assignment. It implements InputError.
type AssignmentError struct {
	// Col is the position of the assignment operator.
	Col int
	// Target is the rendered left-hand side.
	Target string
	// Reserved is whether the target was a reserved keyword.
	Reserved bool
}

func (err *AssignmentError) Error() string {
	if err.Reserved {
		return errpos(err.Col, "cannot assign to reserved keyword "+strconv.Quote(err.Target))
	}
	return errpos(err.Col, "invalid left hand side of assignment operator =: "+err.Target)
}

func (err *AssignmentError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input to Parse implements InputError.
type InputError interface {
	error
	// Pos returns the 1-based column of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*SyntaxError)(nil)
	_ InputError = (*DimensionError)(nil)
	_ InputError = (*AssignmentError)(nil)
	_ InputError = (*LexError)(nil)
)

// Package mathexpr parses and evaluates math expressions.
//
// The syntax is meant to look like math written in notes. "2x^2 + 3x - 1" is
// a polynomial; "A[2, end]" is the last element of the second row of a
// matrix; "f(x) = x < 0 ? -x : x" defines a function. Statements are separated
// by newlines or semicolons, and a semicolon hides a statement's value from
// the result.
//
// Parse builds a tree of Nodes. Compile turns a tree into an Evaluator using a
// Namespace, the table of functions which give operators their meaning, so
// the package itself does no arithmetic. The bignum subpackage provides a
// namespace of arbitrary-precision numbers and matrices. An Evaluator may be
// evaluated any number of times, concurrently, against different Scopes.
package mathexpr

// Package calculator implements the input engine of a keystroke calculator.
//
// A Calculator holds the expression being typed and a history of completed
// calculations. It changes only through Dispatch, which applies one Action:
// appending a digit or symbol, deleting, negating, clearing, or committing.
// Committing evaluates the expression with float64 arithmetic. On success the
// expression is replaced by the result; on failure it is kept so the user can
// correct it.
//
// Expressions are written the way calculator keys produce them. "2+3×4" is
// 14, "2^3^2" is 2^(3^2), "-2^2" is -(2^2), "50%" is 0.5, and "sin(30" is
// the same as "sin(30)" because brackets left open are closed at the end.
// A constant, function, or bracket after an operand multiplies, so "2π" and
// "2(3)" work as expected.
//
// Failures are values, never panics. Errors from malformed input unwrap to
// ErrSyntax and report their position; errors from undefined operations like
// division by zero unwrap to ErrDomain. KindOf classifies either.
package calculator

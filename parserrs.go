package calculator

import (
	"errors"
	"strconv"
)

var (
	// ErrSyntax is the error that every syntax error unwraps to. Syntax errors
	// come from the lexer and parser and always implement InputError.
	ErrSyntax = errors.New("syntax error")
	// ErrDomain is the error that every evaluation error unwraps to.
	ErrDomain = errors.New("domain error")
)

// ErrorKind classifies failures of evaluation.
type ErrorKind int8

const (
	// KindNone is the kind of a nil error or of an error from outside the
	// calculator, e.g. an I/O error from the source of an expression.
	KindNone ErrorKind = iota
	// KindSyntax is the kind of malformed expressions.
	KindSyntax
	// KindDomain is the kind of mathematically undefined operations.
	KindDomain
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSyntax:
		return "syntax"
	case KindDomain:
		return "domain"
	default:
		return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// KindOf classifies err.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrSyntax):
		return KindSyntax
	case errors.Is(err, ErrDomain):
		return KindDomain
	default:
		return KindNone
	}
}

// OperatorError is an error indicating an operator token in a position where
// it cannot be used, e.g. a binary operator at the start of an expression. It
// implements InputError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the token that was not understood.
	Operator string
	// Unary is whether the parser expected a unary operator at the time.
	Unary bool
}

func (err *OperatorError) Error() string {
	s := "binary"
	if err.Unary {
		s = "unary"
	}
	return errpos(err.Col, "unknown "+s+" operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

func (err *OperatorError) Unwrap() error {
	return ErrSyntax
}

// BracketError is an error indicating mismatched brackets in the input. Open
// brackets are closed implicitly at the end of the input, so in practice this
// is a close bracket with no open bracket. It implements InputError.
type BracketError struct {
	// Col is the position of the bracket.
	Col int
	// Left is the opening bracket.
	Left string
	// Right is the mismatched closing bracket.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	if err.Right == "" {
		return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
	}
	return errpos(err.Col, "mismatched bracket: "+err.Left+"expr"+err.Right)
}

func (err *BracketError) Pos() int {
	return err.Col
}

func (err *BracketError) Unwrap() error {
	return ErrSyntax
}

// CallError is an error indicating a function name that is not followed by a
// bracketed argument. It implements InputError.
type CallError struct {
	// Col is the position of the token following the function name.
	Col int
	// Func is the function name that was called.
	Func string
}

func (err *CallError) Error() string {
	return errpos(err.Col, "call of "+err.Func+" needs a bracketed argument")
}

func (err *CallError) Pos() int {
	return err.Col
}

func (err *CallError) Unwrap() error {
	return ErrSyntax
}

// AdjacentError is an error indicating a number directly following a complete
// operand, e.g. "2 3" or "pi 2". It implements InputError.
type AdjacentError struct {
	// Col is the position of the number.
	Col int
	// Text is the number.
	Text string
}

func (err *AdjacentError) Error() string {
	return errpos(err.Col, "number "+strconv.Quote(err.Text)+" follows an operand with no operator")
}

func (err *AdjacentError) Pos() int {
	return err.Col
}

func (err *AdjacentError) Unwrap() error {
	return ErrSyntax
}

// EmptyExpressionError is an error indicating an empty subexpression, including
// an operator with no operand following it.
type EmptyExpressionError struct {
	// Col is the position of the token that ended the subexpression.
	Col int
	// End is the token that ended the subexpression.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		if err.Col <= 1 {
			return errpos(err.Col, "no expression")
		}
		return errpos(err.Col, "no expression at end")
	}
	return errpos(err.Col, "no expression up to "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

func (err *EmptyExpressionError) Unwrap() error {
	return ErrSyntax
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input syntax implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*AdjacentError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*LexError)(nil)
)

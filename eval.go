package calculator

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// Eval evaluates the expression. Every evaluation of the same expression
// returns the same result. If an operation is applied outside its domain or
// any intermediate value is not finite, the error is a *DomainError.
func (e *Expr) Eval() (float64, error) {
	return e.n.eval()
}

// eval computes the node's value.
func (n *node) eval() (float64, error) {
	switch n.kind {
	case nodeNum:
		return finite(n.num, n.num, "literal")
	case nodeConst:
		v, ok := constants[n.name]
		if !ok {
			panic("calculator: unknown constant " + strconv.Quote(n.name))
		}
		return v, nil
	case nodeCall:
		x, err := n.left.eval()
		if err != nil {
			return 0, err
		}
		r, err := n.fn.Call(x)
		if err != nil {
			return 0, err
		}
		return finite(r, x, n.name)
	case nodeNeg:
		x, err := n.left.eval()
		if err != nil {
			return 0, err
		}
		return -x, nil
	case nodeNop:
		return n.left.eval()
	case nodePercent:
		x, err := n.left.eval()
		if err != nil {
			return 0, err
		}
		return x / 100, nil
	case nodeFact:
		x, err := n.left.eval()
		if err != nil {
			return 0, err
		}
		return factorial(x)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		l, err := n.left.eval()
		if err != nil {
			return 0, err
		}
		r, err := n.right.eval()
		if err != nil {
			return 0, err
		}
		return binary(n.kind, l, r)
	default:
		panic("calculator: invalid AST node " + n.kind.String())
	}
}

// binary applies a binary operator to finite operands.
func binary(op nodeKind, l, r float64) (float64, error) {
	switch op {
	case nodeAdd:
		return finite(l+r, l, "+")
	case nodeSub:
		return finite(l-r, l, "-")
	case nodeMul:
		return finite(l*r, l, "*")
	case nodeDiv:
		if r == 0 {
			return 0, &DomainError{X: r, Func: "/"}
		}
		return finite(l/r, l, "/")
	case nodePow:
		// No complex results.
		if l < 0 && r != math.Trunc(r) {
			return 0, &DomainError{X: l, Func: "^"}
		}
		return finite(math.Pow(l, r), l, "^")
	default:
		panic("calculator: invalid binary operator " + op.String())
	}
}

// finite returns v if it is a finite number. Otherwise, it returns a
// DomainError reporting x as the argument to fn.
func finite(v, x float64, fn string) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &DomainError{X: x, Func: fn}
	}
	return v, nil
}

// Eval is a shortcut to parse an expression and return its result.
func Eval(src io.RuneScanner) (float64, error) {
	a, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return a.Eval()
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string) (float64, error) {
	return Eval(strings.NewReader(src))
}

// FormatResult formats a result for display. Integral values have no
// fractional part, and no value uses exponent notation, so the result can
// always be parsed again. No rounding is applied beyond the shortest
// representation that parses back to v.
func FormatResult(v float64) string {
	if v == 0 {
		// Avoid displaying negative zero.
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package calculator

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

// Expr = num | const | Call | Neg | Plus | Percent | Fact | Add | Sub | Mul | Div | Pow | '(' Expr ')'
// Call = funcname '(' Expr ')'
// Neg = '-' Expr
// Plus = '+' Expr
// Percent = Expr '%'
// Fact = Expr '!'
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr | Expr '×' Expr | Expr (const | Call | '(' Expr ')')
// Div = Expr '/' Expr | Expr '÷' Expr
// Pow = Expr '^' Expr

// Expr is a parsed expression.
type Expr struct {
	// n is the root node of the expression.
	n *node
}

// tokens is a cursor over a balanced token stream. The stream always ends in
// an EOF token, and the cursor never advances past it.
type tokens struct {
	toks []lexToken
	i    int
}

func (s *tokens) peek() lexToken {
	return s.toks[s.i]
}

func (s *tokens) next() lexToken {
	tok := s.toks[s.i]
	if tok.kind != tokenEOF {
		s.i++
	}
	return tok
}

// Parse parses an expression so it can be evaluated. Open brackets that are
// still unclosed at the end of the input are closed implicitly, so "sin(30"
// parses the same as "sin(30)".
func Parse(src io.RuneScanner) (*Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	toks, err = balance(toks)
	if err != nil {
		return nil, err
	}
	scan := &tokens{toks: toks}
	n, err := parseterm(scan, exprprec)
	if err != nil {
		return nil, err
	}
	if tok := scan.next(); tok.kind != tokenEOF {
		return nil, itShouldNotHaveEndedThisWay(tok)
	}
	return &Expr{n: n}, nil
}

// ParseString is a shortcut to parse a string expression.
func ParseString(src string) (*Expr, error) {
	return Parse(strings.NewReader(src))
}

// balance checks that no close bracket precedes its open bracket and appends
// close brackets for any that remain open at the end of the stream.
func balance(toks []lexToken) ([]lexToken, error) {
	depth := 0
	for _, tok := range toks {
		switch tok.kind {
		case tokenOpen:
			depth++
		case tokenClose:
			if depth == 0 {
				return nil, &BracketError{Col: tok.pos, Right: tok.text}
			}
			depth--
		}
	}
	if depth == 0 {
		return toks, nil
	}
	eof := toks[len(toks)-1]
	r := make([]lexToken, 0, len(toks)+depth)
	r = append(r, toks[:len(toks)-1]...)
	for i := 0; i < depth; i++ {
		r = append(r, lexToken{text: ")", kind: tokenClose, pos: eof.pos})
	}
	return append(r, eof), nil
}

// parseterm parses a single term. If there is no error, then the next token
// in scan is the one that ended the term, which is a close bracket, EOF, or an
// operator no more binding than until.
func parseterm(scan *tokens, until operator) (*node, error) {
	n, err := parselhs(scan, until)
	if err != nil {
		return nil, err
	}
	for {
		tok := scan.peek()
		switch tok.kind {
		case tokenOp:
			// Binary operator.
			prec := binop(tok.text)
			if prec.op == nodeNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				return n, nil
			}
			scan.next()
			rhs, err := parseterm(scan, prec)
			if err != nil {
				return nil, err
			}
			n = &node{kind: prec.op, left: n, right: rhs}
		case tokenConst, tokenFunc, tokenOpen:
			// (parsed) pi -> (parsed) * (pi)
			// (parsed) (expr) -> (parsed) * (expr)
			// a^(parsed) pi -> (a^(parsed)) * (pi)
			prec := termprec
			if !prec.moreBinding(until) {
				return n, nil
			}
			rhs, err := parseterm(scan, prec)
			if err != nil {
				return nil, err
			}
			n = &node{kind: nodeMul, left: n, right: rhs}
		case tokenNum:
			return nil, &AdjacentError{Col: tok.pos, Text: tok.text}
		case tokenFact:
			// parselhs consumes every postfix operator following a term.
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
		case tokenClose, tokenEOF:
			// End of expression.
			return n, nil
		default:
			panic("calculator: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the first component of a term, including any postfix
// operators that follow it. I.e., + and - are unary, and any encountered token
// must be valid as the start of a subexpression.
func parselhs(scan *tokens, until operator) (*node, error) {
	tok := scan.next()
	var n *node
	switch tok.kind {
	case tokenNum:
		// Literals too large for float64 parse to infinity, which evaluation
		// rejects as outside the domain.
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, &LexError{Text: tok.text, Kind: "number", Col: tok.pos}
		}
		n = &node{kind: nodeNum, name: tok.text, num: v}
	case tokenConst:
		n = &node{kind: nodeConst, name: tok.text}
	case tokenFunc:
		arg, err := parsecall(scan, tok)
		if err != nil {
			return nil, err
		}
		n = &node{kind: nodeCall, name: tok.text, fn: globalfuncs[tok.text], left: arg}
	case tokenOp:
		// unary operator
		prec := unop(tok.text)
		if prec.op == nodeNone {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			// x^-y -> x^(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, prec)
		if err != nil {
			return nil, err
		}
		return &node{kind: prec.op, left: rhs}, nil
	case tokenOpen:
		rhs, err := parseterm(scan, exprprec)
		if err != nil {
			return nil, err
		}
		if end := scan.next(); end.kind != tokenClose {
			return nil, itShouldNotHaveEndedThisWay(end)
		}
		n = rhs
	case tokenClose:
		return nil, &EmptyExpressionError{Col: tok.pos, End: tok.text}
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	case tokenFact:
		return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
	default:
		panic("calculator: unknown token: " + tok.String())
	}
	for {
		tok := scan.peek()
		switch {
		case tok.kind == tokenFact:
			n = &node{kind: nodeFact, left: n}
		case tok.kind == tokenOp && tok.text == "%":
			n = &node{kind: nodePercent, left: n}
		default:
			return n, nil
		}
		scan.next()
	}
}

// parsecall parses the bracketed argument to a call of a function. The
// function name token has already been scanned.
func parsecall(scan *tokens, name lexToken) (*node, error) {
	tok := scan.next()
	if tok.kind != tokenOpen {
		return nil, &CallError{Col: tok.pos, Func: name.text}
	}
	arg, err := parseterm(scan, exprprec)
	if err != nil {
		return nil, err
	}
	if end := scan.next(); end.kind != tokenClose {
		return nil, itShouldNotHaveEndedThisWay(end)
	}
	return arg, nil
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression.
func itShouldNotHaveEndedThisWay(tok lexToken) error {
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.pos, Left: "(", Right: ""}
	case tokenClose:
		return &BracketError{Col: tok.pos, Left: "", Right: tok.text}
	default:
		panic("calculator: it really should not have ended this way: " + tok.String())
	}
}

// String creates a string representation of the parsed expression, with
// alternating round and square brackets grouping each term.
func (e *Expr) String() string {
	var b strings.Builder
	e.n.fmt(&b, false)
	return b.String()
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a canonical token string. If there is no
// such binary operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{1, false, nodeAdd}
	case "-":
		return operator{1, false, nodeSub}
	case "*":
		return operator{5, false, nodeMul}
	case "/":
		return operator{5, false, nodeDiv}
	case "^":
		return operator{15, true, nodePow}
	default:
		return operator{}
	}
}

// unop gets a unary prefix operator for a canonical token string. If there is
// no such unary operator, then the result has an op of nodeNone.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{10, true, nodeNop}
	case "-":
		return operator{10, true, nodeNeg}
	default:
		return operator{}
	}
}

var (
	// termprec is the precedence of implicit multiplication. It matches
	// explicit multiplication, so 6/2pi is (6/2)*pi.
	termprec = operator{5, false, nodeMul}
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{-128, true, nodeNone}
)

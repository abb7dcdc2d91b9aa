package calculator

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		src  string
		tree string
	}{
		{"num", "1", "(1)"},
		{"decimal", "1.5", "(1.5)"},
		{"pi", "pi", "(pi)"},
		{"pi-glyph", "π", "(pi)"},
		{"e", "e", "(e)"},
		{"add", "1+2", "([1] + [2])"},
		{"sub-left", "4-5-6", "([(4) - (5)] - [6])"},
		{"div-left", "4/5/6", "([(4) / (5)] / [6])"},
		{"mul-prec", "2+3*4", "([2] + [(3) * (4)])"},
		{"bracket-prec", "(2+3)*4", "([(2) + (3)] * [4])"},
		{"pow-right", "2^3^2", "([2] ^ [(3) ^ (2)])"},
		{"neg-pow", "-2^2", "(-[(2) ^ (2)])"},
		{"neg-add", "-3+5", "([-(3)] + [5])"},
		{"mul-neg", "3*-5", "([3] * [-(5)])"},
		{"pow-neg", "2^-3", "([2] ^ [-(3)])"},
		{"plus", "+5", "(+[5])"},
		{"alt-glyphs", "6÷2×3", "([(6) / (2)] * [3])"},
		{"percent", "50%", "([50]%)"},
		{"fact", "5!", "([5]!)"},
		{"fact-fact", "3!!", "([(3)!]!)"},
		{"neg-fact", "-3!", "(-[(3)!])"},
		{"pow-fact", "2^3!", "([2] ^ [(3)!])"},
		{"bracket-fact", "(1+2)!", "([(1) + (2)]!)"},
		{"call", "sin(30)", "(sin[30])"},
		{"call-nested", "sin(cos(0))", "(sin[cos(0)])"},
		{"sqrt-glyph", "√(4)", "(sqrt[4])"},
		{"bracket", "(1)", "(1)"},
		{"implicit-const", "2pi", "([2] * [pi])"},
		{"implicit-call", "2sin(0)", "([2] * [sin(0)])"},
		{"implicit-bracket", "2(3+4)", "([2] * [(3) + (4)])"},
		{"implicit-left", "6/2pi", "([(6) / (2)] * [pi])"},
		{"implicit-pow", "2^3pi", "([(2) ^ (3)] * [pi])"},
		{"close-call", "sin(30", "(sin[30])"},
		{"close-nested", "sqrt(sin(1", "(sqrt[sin(1)])"},
		{"close-mul", "2(3", "([2] * [3])"},
		{"close-many", "((1+2", "([1] + [2])"},
		{"spaces", " 1 + 2 ", "([1] + [2])"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			if got := a.String(); got != c.tree {
				t.Errorf("%q: want %s, got %s", c.src, c.tree, got)
			}
		})
	}
}

func TestParseImplicitClose(t *testing.T) {
	cases := []struct {
		open, closed string
	}{
		{"sin(30", "sin(30)"},
		{"(1+(2*3", "(1+(2*3))"},
		{"log(ln(e", "log(ln(e))"},
		{"2^(1+1", "2^(1+1)"},
	}
	for _, c := range cases {
		t.Run(c.open, func(t *testing.T) {
			a, err := ParseString(c.open)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.open, err)
			}
			b, err := ParseString(c.closed)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.closed, err)
			}
			if a.String() != b.String() {
				t.Errorf("%q parsed as %v, but %q parsed as %v", c.open, a, c.closed, b)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  interface{}
		pos  int
	}{
		{"empty", "", new(*EmptyExpressionError), 1},
		{"spaces", "   ", new(*EmptyExpressionError), 4},
		{"trailing-op", "3+", new(*EmptyExpressionError), 3},
		{"trailing-unary", "3*-", new(*EmptyExpressionError), 4},
		{"excess-close", "3)+2", new(*BracketError), 2},
		{"close-before-open", ")(", new(*BracketError), 1},
		{"excess-close-end", "(1))", new(*BracketError), 4},
		{"leading-binary", "*3", new(*OperatorError), 1},
		{"double-binary", "3+*4", new(*OperatorError), 3},
		{"leading-percent", "%5", new(*OperatorError), 1},
		{"leading-fact", "!5", new(*OperatorError), 1},
		{"empty-brackets", "()", new(*EmptyExpressionError), 2},
		{"empty-call", "sin()", new(*EmptyExpressionError), 5},
		{"empty-open-call", "sin(", new(*EmptyExpressionError), 5},
		{"bare-func", "sin", new(*CallError), 4},
		{"func-no-bracket", "sin 3", new(*CallError), 5},
		{"adjacent-nums", "2 3", new(*AdjacentError), 3},
		{"adjacent-const-num", "pi2", new(*AdjacentError), 3},
		{"adjacent-bracket-num", "(2)3", new(*AdjacentError), 4},
		{"lex", "2+$", new(*LexError), 3},
		{"many-dots", "1.2.3", new(*LexError), 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.src)
			if err == nil {
				t.Fatalf("%q should have failed to parse, got %v", c.src, a)
			}
			if !errors.As(err, c.err) {
				t.Errorf("%q: wrong error type: want %T, got %T (%v)", c.src, reflect.ValueOf(c.err).Elem().Interface(), err, err)
			}
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("%q: error %v does not unwrap to ErrSyntax", c.src, err)
			}
			if KindOf(err) != KindSyntax {
				t.Errorf("%q: wrong kind %v", c.src, KindOf(err))
			}
			var ierr InputError
			if !errors.As(err, &ierr) {
				t.Fatalf("%q: error %v is not an InputError", c.src, err)
			}
			if ierr.Pos() != c.pos {
				t.Errorf("%q: wrong position: want %d, got %d (%v)", c.src, c.pos, ierr.Pos(), err)
			}
		})
	}
}

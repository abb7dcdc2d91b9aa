package calculator_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/calculator"
)

// press dispatches each action in order and returns the last snapshot.
func press(c *calculator.Calculator, acts ...calculator.Action) calculator.Snapshot {
	s := c.Snapshot()
	for _, a := range acts {
		s = c.Dispatch(a)
	}
	return s
}

// typed dispatches the actions that produce text.
func typed(t *testing.T, c *calculator.Calculator, text string) calculator.Snapshot {
	t.Helper()
	acts, err := calculator.Keys(text)
	require.NoError(t, err)
	return press(c, acts...)
}

func TestCalculatorNew(t *testing.T) {
	c := calculator.New()
	s := c.Snapshot()
	assert.Equal(t, "", s.Expression)
	assert.Empty(t, s.History)
	assert.False(t, s.HasError)
	assert.NoError(t, s.Err)
	assert.Equal(t, calculator.StateEmpty, s.State)

	var zero calculator.Calculator
	assert.Equal(t, s, zero.Snapshot())
}

func TestAppendDigit(t *testing.T) {
	c := calculator.New()
	s := press(c, calculator.AppendDigit(1), calculator.AppendDigit(0), calculator.AppendDigit(9))
	assert.Equal(t, "109", s.Expression)
	assert.Equal(t, calculator.StateEditing, s.State)

	s = press(c, calculator.AppendDigit(10), calculator.AppendDigit(-1))
	assert.Equal(t, "109", s.Expression, "out of range digits must be ignored")
}

func TestAppendSymbol(t *testing.T) {
	cases := []struct {
		sym  string
		want string
	}{
		{"+", "+"},
		{"×", "×"},
		{"÷", "÷"},
		{"sin", "sin("},
		{"cos", "cos("},
		{"tan", "tan("},
		{"log", "log("},
		{"ln", "ln("},
		{"sqrt", "sqrt("},
		{"√", "sqrt("},
		{"π", "π"},
		{"pi", "π"},
		{"e", "e"},
		{"x^y", "^"},
		{"x²", "^2"},
		{"!", "!"},
		{"%", "%"},
		{"rad", ""},
		{"exp", ""},
		{"", ""},
	}
	for _, c := range cases {
		t.Run(c.sym, func(t *testing.T) {
			calc := calculator.New()
			s := calc.Dispatch(calculator.AppendSymbol(c.sym))
			assert.Equal(t, c.want, s.Expression)
		})
	}
}

func TestDelete(t *testing.T) {
	c := calculator.New()
	before := c.Snapshot()
	s := c.Dispatch(calculator.Delete{})
	assert.Equal(t, before, s, "delete on empty buffer must not change state")

	typed(t, c, "2×π")
	s = c.Dispatch(calculator.Delete{})
	assert.Equal(t, "2×", s.Expression, "delete removes one character, not one byte")
	s = press(c, calculator.Delete{}, calculator.Delete{})
	assert.Equal(t, "", s.Expression)
	assert.Equal(t, calculator.StateEmpty, s.State)
}

func TestNegate(t *testing.T) {
	c := calculator.New()
	s := c.Dispatch(calculator.Negate{})
	assert.Equal(t, "", s.Expression, "negate on empty buffer is a no-op")

	c.Dispatch(calculator.AppendDigit(5))
	s = c.Dispatch(calculator.Negate{})
	assert.Equal(t, "-5", s.Expression)
	s = c.Dispatch(calculator.Negate{})
	assert.Equal(t, "5", s.Expression)

	typed(t, c, "+3")
	s = c.Dispatch(calculator.Negate{})
	assert.Equal(t, "-5+3", s.Expression)
	s = c.Dispatch(calculator.Commit{})
	assert.Equal(t, "-2", s.Expression)
	s = c.Dispatch(calculator.Negate{})
	assert.Equal(t, "2", s.Expression)
}

func TestCommit(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2+3×4", "14"},
		{"(2+3)*4", "20"},
		{"2^3^2", "512"},
		{"-3+5", "2"},
		{"3*-5", "-15"},
		{"4/2", "2"},
		{"4÷8", "0.5"},
		{"sin(0", "0"},
		{"5!", "120"},
		{"50%", "0.5"},
		{"sqrt(16", "4"},
		{"2x²", "4"},
		{"2x^y10", "1024"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			calc := calculator.New()
			typed(t, calc, c.in)
			src := calc.Expression()
			s := calc.Dispatch(calculator.Commit{})
			require.False(t, s.HasError, "commit failed: %v", s.Err)
			assert.Equal(t, c.want, s.Expression)
			assert.Equal(t, calculator.StateEditing, s.State)
			require.Len(t, s.History, 1)
			assert.Equal(t, calculator.Record{Source: src, Result: c.want}, s.History[0])
		})
	}
}

func TestCommitAfterE(t *testing.T) {
	e := math.E
	cases := []struct {
		keys []calculator.Action
		want float64
	}{
		{[]calculator.Action{calculator.AppendDigit(2), calculator.AppendSymbol("e"), calculator.AppendSymbol("sin"), calculator.AppendDigit(1)}, 2 * e * math.Sin(1)},
		{[]calculator.Action{calculator.AppendSymbol("e"), calculator.AppendSymbol("ln"), calculator.AppendSymbol("e")}, e * math.Log(e)},
		{[]calculator.Action{calculator.AppendSymbol("e"), calculator.AppendSymbol("log"), calculator.AppendDigit(1), calculator.AppendDigit(0)}, e * math.Log10(10)},
		{[]calculator.Action{calculator.AppendSymbol("e"), calculator.AppendSymbol("sqrt"), calculator.AppendDigit(4)}, e * 2},
		{[]calculator.Action{calculator.AppendSymbol("e"), calculator.AppendSymbol("e")}, e * e},
		{[]calculator.Action{calculator.AppendSymbol("e"), calculator.AppendSymbol("π")}, e * math.Pi},
	}
	for _, c := range cases {
		calc := calculator.New()
		src := press(calc, c.keys...).Expression
		t.Run(src, func(t *testing.T) {
			s := calc.Dispatch(calculator.Commit{})
			require.False(t, s.HasError, "commit of %q failed: %v", src, s.Err)
			assert.Equal(t, calculator.FormatResult(c.want), s.Expression)
		})
	}
}

// TestSymbolPairsLex checks that any two keys followed by a digit produce
// text the lexer reads. Some pairs are still malformed, like "*+1" or "..1",
// but no name the keys spell may be unknown.
func TestSymbolPairsLex(t *testing.T) {
	syms := calculator.Symbols()
	for _, a := range syms {
		for _, b := range syms {
			c := calculator.New()
			s := press(c, calculator.AppendSymbol(a), calculator.AppendSymbol(b), calculator.AppendDigit(1), calculator.Commit{})
			if !s.HasError {
				continue
			}
			var lerr *calculator.LexError
			if errors.As(s.Err, &lerr) && lerr.Kind != "number" {
				t.Errorf("keys %q, %q, 1 built unreadable %q: %v", a, b, s.Expression, s.Err)
			}
		}
	}
}

func TestCommitEmpty(t *testing.T) {
	c := calculator.New()
	s := c.Dispatch(calculator.Commit{})
	assert.Empty(t, s.History)
	assert.False(t, s.HasError)
	assert.Equal(t, calculator.StateEmpty, s.State)
}

func TestCommitError(t *testing.T) {
	cases := []struct {
		in   string
		kind calculator.ErrorKind
	}{
		{"5/0", calculator.KindDomain},
		{"sqrt(-1", calculator.KindDomain},
		{"3+", calculator.KindSyntax},
		{"3)+2", calculator.KindSyntax},
		{"1.2.3", calculator.KindSyntax},
		{"sin(", calculator.KindSyntax},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			calc := calculator.New()
			typed(t, calc, "1+1")
			calc.Dispatch(calculator.Commit{})
			calc.Dispatch(calculator.Clear{})
			typed(t, calc, c.in)

			s := calc.Dispatch(calculator.Commit{})
			assert.True(t, s.HasError)
			assert.Equal(t, calculator.StateError, s.State)
			assert.Equal(t, c.kind, calculator.KindOf(s.Err))
			assert.Equal(t, c.in, s.Expression, "failed commit must keep the expression")
			assert.Len(t, s.History, 1, "failed commit must not add history")
		})
	}
}

func TestErrorClearedByEdits(t *testing.T) {
	edits := []calculator.Action{
		calculator.AppendDigit(1),
		calculator.AppendSymbol("+"),
		calculator.Delete{},
		calculator.Negate{},
		calculator.Clear{},
	}
	for _, a := range edits {
		t.Run(a.Name(), func(t *testing.T) {
			c := calculator.New()
			typed(t, c, "5/0")
			require.True(t, c.Dispatch(calculator.Commit{}).HasError)
			s := c.Dispatch(a)
			assert.False(t, s.HasError)
			assert.NoError(t, s.Err)
			assert.NotEqual(t, calculator.StateError, s.State)
		})
	}
}

func TestErrorKeptByIgnoredKeys(t *testing.T) {
	c := calculator.New()
	typed(t, c, "5/0")
	require.True(t, c.Dispatch(calculator.Commit{}).HasError)
	s := c.Dispatch(calculator.AppendSymbol("rad"))
	assert.True(t, s.HasError, "an ignored key does not edit the expression")
	assert.Equal(t, "5/0", s.Expression)
}

func TestClearKeepsHistory(t *testing.T) {
	c := calculator.New()
	typed(t, c, "1+2")
	c.Dispatch(calculator.Commit{})
	typed(t, c, "+4")
	s := c.Dispatch(calculator.Clear{})
	assert.Equal(t, "", s.Expression)
	assert.Equal(t, calculator.StateEmpty, s.State)
	assert.Equal(t, []calculator.Record{{Source: "1+2", Result: "3"}}, s.History)
}

func TestHistoryAppendOnly(t *testing.T) {
	c := calculator.New()
	inputs := []string{"1+1", "*3", "-1", "/0", "Clear", "2^10", "sqrt(", "Commit", "1/4"}
	var want []calculator.Record
	for _, in := range inputs {
		switch in {
		case "Clear":
			c.Dispatch(calculator.Clear{})
			continue
		case "Commit":
			// Commit the same failing expression again.
		default:
			typed(t, c, in)
		}
		src := c.Expression()
		s := c.Dispatch(calculator.Commit{})
		if !s.HasError {
			want = append(want, calculator.Record{Source: src, Result: s.Expression})
		}
		assert.Equal(t, want, s.History)
		assert.Equal(t, len(want), c.Len())
	}
	require.Len(t, want, 5)
	assert.Equal(t, calculator.Record{Source: "1+1", Result: "2"}, want[0])
	assert.Equal(t, calculator.Record{Source: "2*3", Result: "6"}, want[1])
	assert.Equal(t, calculator.Record{Source: "6-1", Result: "5"}, want[2])
	assert.Equal(t, calculator.Record{Source: "2^10", Result: "1024"}, want[3])
	assert.Equal(t, calculator.Record{Source: "1024sqrt(1/4", Result: "512"}, want[4])
}

func TestSnapshotHistoryIsCopy(t *testing.T) {
	c := calculator.New()
	typed(t, c, "1+1")
	s := c.Dispatch(calculator.Commit{})
	s.History[0].Result = "tampered"
	assert.Equal(t, "2", c.Snapshot().History[0].Result)
}

func TestDispatchNil(t *testing.T) {
	c := calculator.New()
	typed(t, c, "12")
	assert.Equal(t, c.Snapshot(), c.Dispatch(nil))
}

func TestActionNames(t *testing.T) {
	cases := map[string]calculator.Action{
		"digit":  calculator.AppendDigit(1),
		"symbol": calculator.AppendSymbol("+"),
		"delete": calculator.Delete{},
		"negate": calculator.Negate{},
		"clear":  calculator.Clear{},
		"commit": calculator.Commit{},
	}
	for want, a := range cases {
		assert.Equal(t, want, a.Name())
	}
}

package calculator_test

import (
	"testing"

	"github.com/zephyrtronium/calculator"
)

func FuzzParse(f *testing.F) {
	f.Add("1+2")
	f.Add("sin(30")
	f.Add("1×2÷π")
	f.Add("3)+2")
	f.Fuzz(func(t *testing.T, s string) {
		a, err := calculator.ParseString(s)
		if err != nil {
			if calculator.KindOf(err) != calculator.KindSyntax {
				t.Fatalf("%q: parse error %v is not a syntax error", s, err)
			}
			return
		}
		_ = a.String()
	})
}

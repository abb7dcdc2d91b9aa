package calculator

import (
	"math"
	"strconv"
)

// Func is a function from reals to reals.
type Func interface {
	// Call evaluates the function at x. If x is outside the function's
	// domain, the error is a *DomainError.
	Call(x float64) (float64, error)
}

var globalfuncs = map[string]Func{
	"sin":  Monadic("sin", math.Sin, nil),
	"cos":  Monadic("cos", math.Cos, nil),
	"tan":  Monadic("tan", math.Tan, nil),
	"ln":   Monadic("ln", math.Log, positive),
	"log":  Monadic("log", math.Log10, positive),
	"sqrt": Monadic("sqrt", math.Sqrt, nonnegative),
}

// Funcs returns the names of the functions the lexer recognizes.
func Funcs() []string {
	names := make([]string, 0, len(globalfuncs))
	for k := range globalfuncs {
		names = append(names, k)
	}
	sortstrs(names)
	return names
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

func positive(x float64) bool    { return x > 0 }
func nonnegative(x float64) bool { return x >= 0 }

type monadic struct {
	name   string
	f      func(float64) float64
	domain func(float64) bool
}

func (m monadic) Call(x float64) (float64, error) {
	if m.domain != nil && !m.domain(x) {
		return 0, &DomainError{X: x, Func: m.name}
	}
	return m.f(x), nil
}

// Monadic wraps a function of one variable into a Func. If domain is not nil,
// arguments for which it returns false produce a *DomainError naming the
// function instead of calling f.
func Monadic(name string, f func(float64) float64, domain func(float64) bool) Func {
	return monadic{name: name, f: f, domain: domain}
}

// factorials holds n! for every n whose factorial is a finite float64.
var factorials = func() (t [171]float64) {
	t[0] = 1
	for i := 1; i < len(t); i++ {
		t[i] = t[i-1] * float64(i)
	}
	return t
}()

// factorial computes x! for non-negative integral x.
func factorial(x float64) (float64, error) {
	if x < 0 || x != math.Trunc(x) || x >= float64(len(factorials)) {
		return 0, &DomainError{X: x, Func: "!"}
	}
	return factorials[int(x)], nil
}

// DomainError is an error returned when an operation is applied to arguments
// outside its domain or produces a value that is not finite. DomainError
// unwraps to ErrDomain.
type DomainError struct {
	// X is the out-of-domain argument.
	X float64
	// Func is a name identifying the function or operator.
	Func string
}

func (err *DomainError) Error() string {
	r := strconv.FormatFloat(err.X, 'g', -1, 64) + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	return r
}

func (err *DomainError) Unwrap() error {
	return ErrDomain
}

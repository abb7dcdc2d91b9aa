package calculator

import "strconv"

// State is the input state of a Calculator.
type State int8

const (
	// StateEmpty is the state of a calculator with no expression.
	StateEmpty State = iota
	// StateEditing is the state of a calculator with an expression and no
	// pending error.
	StateEditing
	// StateError is the state after a failed commit. The expression is kept
	// for correction.
	StateError
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateEditing:
		return "editing"
	case StateError:
		return "error"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Record is a completed calculation.
type Record struct {
	// Source is the expression as it was typed.
	Source string `json:"source"`
	// Result is the formatted result.
	Result string `json:"result"`
}

// Snapshot is the observable state of a Calculator after an action.
type Snapshot struct {
	// Expression is the current expression text.
	Expression string
	// History is the completed calculations in the order they were made. It
	// is a copy and may be retained.
	History []Record
	// HasError is whether the last commit failed and nothing has changed the
	// expression since.
	HasError bool
	// Err is the error from the last commit if HasError is true.
	Err error
	// State is the input state.
	State State
}

// Calculator is the input state machine of a calculator. The zero value is
// an empty calculator ready to use. It is not safe to use a Calculator
// concurrently.
type Calculator struct {
	// expr is the expression buffer. It is only appended to or truncated at
	// its end, except by Negate.
	expr []rune
	// history is append-only.
	history []Record
	// err is the error from the last commit, cleared by any edit.
	err error
}

// New creates an empty calculator.
func New() *Calculator {
	return &Calculator{}
}

// Dispatch applies an action and returns the resulting snapshot. A nil action
// changes nothing.
func (c *Calculator) Dispatch(a Action) Snapshot {
	if a != nil {
		a.act(c)
	}
	return c.Snapshot()
}

// Snapshot returns the current state without changing it.
func (c *Calculator) Snapshot() Snapshot {
	return Snapshot{
		Expression: string(c.expr),
		History:    append([]Record(nil), c.history...),
		HasError:   c.err != nil,
		Err:        c.err,
		State:      c.State(),
	}
}

// State returns the current input state.
func (c *Calculator) State() State {
	switch {
	case c.err != nil:
		return StateError
	case len(c.expr) == 0:
		return StateEmpty
	default:
		return StateEditing
	}
}

// Expression returns the current expression text.
func (c *Calculator) Expression() string {
	return string(c.expr)
}

// Len returns the number of completed calculations.
func (c *Calculator) Len() int {
	return len(c.history)
}

// Action is an input event for a Calculator.
type Action interface {
	// Name returns a stable name for the kind of action, e.g. "digit".
	Name() string

	act(c *Calculator)
}

// AppendDigit appends a decimal digit. Values outside 0 through 9 are ignored.
type AppendDigit int

// AppendSymbol appends the text for a calculator key. Function keys like
// "sin" append the function name and an open bracket, and "x²" appends "^2".
// Symbols returns the list of accepted keys; others are ignored.
type AppendSymbol string

type (
	// Delete removes the last character of the expression.
	Delete struct{}
	// Negate adds a leading minus sign to the expression or removes one.
	Negate struct{}
	// Clear empties the expression and forgets any error. History is kept.
	Clear struct{}
	// Commit evaluates the expression. On success, the expression is replaced
	// by the result and the calculation is added to the history. On failure,
	// the expression is unchanged and the calculator enters StateError.
	Commit struct{}
)

func (AppendDigit) Name() string  { return "digit" }
func (AppendSymbol) Name() string { return "symbol" }
func (Delete) Name() string       { return "delete" }
func (Negate) Name() string       { return "negate" }
func (Clear) Name() string        { return "clear" }
func (Commit) Name() string       { return "commit" }

func (d AppendDigit) act(c *Calculator) {
	if d < 0 || d > 9 {
		return
	}
	c.err = nil
	c.expr = append(c.expr, rune('0'+d))
}

func (s AppendSymbol) act(c *Calculator) {
	text, ok := keytable[string(s)]
	if !ok {
		return
	}
	c.err = nil
	c.expr = append(c.expr, []rune(text)...)
}

func (Delete) act(c *Calculator) {
	if len(c.expr) == 0 {
		return
	}
	c.err = nil
	c.expr = c.expr[:len(c.expr)-1]
}

func (Negate) act(c *Calculator) {
	if len(c.expr) == 0 {
		return
	}
	c.err = nil
	if c.expr[0] == '-' {
		c.expr = append(c.expr[:0], c.expr[1:]...)
		return
	}
	c.expr = append([]rune{'-'}, c.expr...)
}

func (Clear) act(c *Calculator) {
	c.err = nil
	c.expr = c.expr[:0]
}

func (Commit) act(c *Calculator) {
	if len(c.expr) == 0 {
		return
	}
	src := string(c.expr)
	v, err := EvalString(src)
	if err != nil {
		c.err = err
		return
	}
	r := FormatResult(v)
	c.history = append(c.history, Record{Source: src, Result: r})
	c.expr = append(c.expr[:0], []rune(r)...)
	c.err = nil
}

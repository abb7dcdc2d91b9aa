// Package dto holds the request and response shapes shared by the HTTP API
// and the MCP server. Field tags cover both JSON bodies and mapstructure
// decoding of tool arguments.
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/zephyrtronium/calculator"
)

// ErrBadAction is wrapped by errors describing an unusable ActionRequest.
var ErrBadAction = errors.New("bad action")

// ActionRequest is one input event for a session.
type ActionRequest struct {
	// Type is one of digit, symbol, keys, delete, negate, clear, commit.
	Type string `json:"type" mapstructure:"type"`
	// Digit is the digit for a digit action.
	Digit *int `json:"digit,omitempty" mapstructure:"digit"`
	// Symbol is the key for a symbol action.
	Symbol string `json:"symbol,omitempty" mapstructure:"symbol"`
	// Keys is typed text for a keys action. See ParseKeys.
	Keys string `json:"keys,omitempty" mapstructure:"keys"`
}

// Actions converts the request to calculator actions.
func (r ActionRequest) Actions() ([]calculator.Action, error) {
	switch r.Type {
	case "digit":
		if r.Digit == nil {
			return nil, fmt.Errorf("%w: digit action without digit", ErrBadAction)
		}
		if *r.Digit < 0 || *r.Digit > 9 {
			return nil, fmt.Errorf("%w: digit %d out of range", ErrBadAction, *r.Digit)
		}
		return []calculator.Action{calculator.AppendDigit(*r.Digit)}, nil
	case "symbol":
		if r.Symbol == "" {
			return nil, fmt.Errorf("%w: symbol action without symbol", ErrBadAction)
		}
		return []calculator.Action{calculator.AppendSymbol(r.Symbol)}, nil
	case "keys":
		acts, err := ParseKeys(r.Keys)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadAction, err)
		}
		return acts, nil
	case "delete":
		return []calculator.Action{calculator.Delete{}}, nil
	case "negate":
		return []calculator.Action{calculator.Negate{}}, nil
	case "clear":
		return []calculator.Action{calculator.Clear{}}, nil
	case "commit":
		return []calculator.Action{calculator.Commit{}}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrBadAction)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrBadAction, r.Type)
	}
}

// ParseKeys splits typed text into actions like calculator.Keys, except that
// each "=" becomes a Commit.
func ParseKeys(text string) ([]calculator.Action, error) {
	var acts []calculator.Action
	col := 0
	for i, part := range strings.Split(text, "=") {
		if i > 0 {
			acts = append(acts, calculator.Commit{})
			col++
		}
		k, err := calculator.Keys(part)
		if err != nil {
			var kerr *calculator.KeyError
			if errors.As(err, &kerr) {
				return nil, &calculator.KeyError{Col: kerr.Col + col, Text: kerr.Text}
			}
			return nil, err
		}
		acts = append(acts, k...)
		col += utf8.RuneCountInString(part)
	}
	return acts, nil
}

// ActionBatch is a list of action requests. In JSON it may also be written
// as a single object.
type ActionBatch []ActionRequest

// UnmarshalJSON accepts either an array of actions or one action object.
func (b *ActionBatch) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var r ActionRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		*b = ActionBatch{r}
		return nil
	}
	var rs []ActionRequest
	if err := json.Unmarshal(data, &rs); err != nil {
		return err
	}
	*b = rs
	return nil
}

// Actions converts every request in order. Nothing is returned if any
// request is bad.
func (b ActionBatch) Actions() ([]calculator.Action, error) {
	var all []calculator.Action
	for i, r := range b {
		acts, err := r.Actions()
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		all = append(all, acts...)
	}
	return all, nil
}

// EvaluateRequest asks for a one-shot evaluation.
type EvaluateRequest struct {
	Expression string `json:"expression" mapstructure:"expression"`
}

// EvaluateResponse is a successful evaluation.
type EvaluateResponse struct {
	Expression string  `json:"expression" jsonschema_description:"The evaluated expression"`
	Result     string  `json:"result" jsonschema_description:"The result formatted for display"`
	Value      float64 `json:"value" jsonschema_description:"The numeric result"`
}

// NewEvaluate builds the response for a successful evaluation.
func NewEvaluate(expr string, v float64) EvaluateResponse {
	return EvaluateResponse{Expression: expr, Result: calculator.FormatResult(v), Value: v}
}

// PressKeysRequest feeds typed text to a session. An "=" in Keys commits
// at that point.
type PressKeysRequest struct {
	Session string `json:"session" mapstructure:"session"`
	Keys    string `json:"keys" mapstructure:"keys"`
}

// ErrorResponse describes a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	// Kind is syntax or domain for calculation errors.
	Kind string `json:"kind,omitempty"`
	// Pos is the 1-based column of a syntax error, if known.
	Pos int `json:"pos,omitempty"`
}

// NewError describes err, classifying calculation errors.
func NewError(err error) ErrorResponse {
	r := ErrorResponse{Error: err.Error()}
	if k := calculator.KindOf(err); k != calculator.KindNone {
		r.Kind = k.String()
	}
	var ierr calculator.InputError
	if errors.As(err, &ierr) {
		r.Pos = ierr.Pos()
	}
	return r
}

// SnapshotResponse is the state of a session.
type SnapshotResponse struct {
	Session    string              `json:"session" jsonschema_description:"Session ID"`
	Expression string              `json:"expression" jsonschema_description:"Current expression text"`
	State      string              `json:"state" jsonschema_description:"empty, editing, or error"`
	History    []calculator.Record `json:"history" jsonschema_description:"Completed calculations, oldest first"`
	Error      *ErrorResponse      `json:"error,omitempty" jsonschema_description:"The last commit error, if any"`
}

// NewSnapshot builds the response for a session snapshot.
func NewSnapshot(id string, s calculator.Snapshot) SnapshotResponse {
	r := SnapshotResponse{
		Session:    id,
		Expression: s.Expression,
		State:      s.State.String(),
		History:    s.History,
	}
	if r.History == nil {
		r.History = []calculator.Record{}
	}
	if s.HasError {
		e := NewError(s.Err)
		r.Error = &e
	}
	return r
}

// SessionList lists live sessions.
type SessionList struct {
	Sessions []string `json:"sessions"`
}

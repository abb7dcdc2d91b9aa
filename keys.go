package calculator

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// keytable maps each accepted symbol key to the text it appends.
var keytable = map[string]string{
	"+": "+",
	"-": "-",
	"*": "*",
	"/": "/",
	"×": "×",
	"÷": "÷",
	"^": "^",
	"%": "%",
	"!": "!",
	"(": "(",
	")": ")",
	".": ".",

	"π":  "π",
	"pi": "π",
	"e":  "e",

	"sin":   "sin(",
	"cos":   "cos(",
	"tan":   "tan(",
	"log":   "log(",
	"ln":    "ln(",
	"sqrt":  "sqrt(",
	"sin(":  "sin(",
	"cos(":  "cos(",
	"tan(":  "tan(",
	"log(":  "log(",
	"ln(":   "ln(",
	"sqrt(": "sqrt(",
	"√":     "sqrt(",

	"x^y": "^",
	"x²":  "^2",

	"0": "0",
	"1": "1",
	"2": "2",
	"3": "3",
	"4": "4",
	"5": "5",
	"6": "6",
	"7": "7",
	"8": "8",
	"9": "9",
}

// maxkey is the length in runes of the longest key.
var maxkey = func() int {
	n := 0
	for k := range keytable {
		if l := utf8.RuneCountInString(k); l > n {
			n = l
		}
	}
	return n
}()

// Symbols returns the keys that AppendSymbol accepts, in sorted order.
func Symbols() []string {
	keys := make([]string, 0, len(keytable))
	for k := range keytable {
		keys = append(keys, k)
	}
	sortstrs(keys)
	return keys
}

// Keys splits typed text into the actions that produce it, matching the
// longest key at each position. Digits become AppendDigit actions, and
// whitespace is skipped. If some text matches no key, the error is a
// *KeyError.
func Keys(text string) ([]Action, error) {
	src := []rune(text)
	var acts []Action
	for i := 0; i < len(src); {
		r := src[i]
		switch {
		case '0' <= r && r <= '9':
			acts = append(acts, AppendDigit(r-'0'))
			i++
			continue
		case unicode.IsSpace(r):
			i++
			continue
		}
		n := maxkey
		if n > len(src)-i {
			n = len(src) - i
		}
		for ; n > 0; n-- {
			if _, ok := keytable[string(src[i:i+n])]; ok {
				break
			}
		}
		if n == 0 {
			return nil, &KeyError{Col: i + 1, Text: string(r)}
		}
		acts = append(acts, AppendSymbol(string(src[i:i+n])))
		i += n
	}
	return acts, nil
}

// KeyError is an error indicating text that no calculator key produces. It
// implements InputError.
type KeyError struct {
	// Col is the position of the text.
	Col int
	// Text is the first rune that could not be matched.
	Text string
}

func (err *KeyError) Error() string {
	return errpos(err.Col, "no key for "+strconv.Quote(err.Text))
}

func (err *KeyError) Pos() int {
	return err.Col
}

func (err *KeyError) Unwrap() error {
	return ErrSyntax
}

var _ InputError = (*KeyError)(nil)

package calculator

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is a decimal literal.
	tokenNum
	// tokenOp is an operator, including the postfix percent.
	tokenOp
	// tokenFunc is the name of a function. The parser requires an open
	// bracket to follow it.
	tokenFunc
	// tokenConst is a named constant.
	tokenConst
	// tokenOpen is an open bracket.
	tokenOpen
	// tokenClose is a close bracket.
	tokenClose
	// tokenFact is the postfix factorial.
	tokenFact
)

var tokenNames = [...]string{
	tokenNone:  "None",
	tokenEOF:   "EOF",
	tokenNum:   "Num",
	tokenOp:    "Op",
	tokenFunc:  "Func",
	tokenConst: "Const",
	tokenOpen:  "Open",
	tokenClose: "Close",
	tokenFact:  "Fact",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenNames[k]
}

// canonop maps operator glyphs to canonical operator text.
var canonop = map[rune]string{
	'+': "+",
	'-': "-",
	'*': "*",
	'/': "/",
	'^': "^",
	'%': "%",
	'×': "*",
	'÷': "/",
}

// constants holds the values of the named constants. π is lexed as pi.
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	eof  bool
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{
		src:  src,
		rune: 1,
	}
}

// tokenize scans all tokens from src. The last token of a successful result
// is always an EOF token.
func tokenize(src io.RuneScanner) ([]lexToken, error) {
	scan := lex(src)
	var toks []lexToken
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokenEOF {
			return toks, nil
		}
	}
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// next scans the next token from the input. The first time EOF is encountered,
// the result is an EOF token with a nil error. Subsequent times, the result is
// an empty token with io.EOF.
func (l *lexer) next() (lexToken, error) {
	if l.eof {
		return lexToken{}, io.EOF
	}
	defer l.buf.Reset()
	tok := lexToken{pos: l.rune}
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				tok.kind = tokenEOF
				l.eof = true
				return tok, nil
			}
			return tok, err
		}
		switch {
		case unicode.IsSpace(r):
			tok.pos++
			continue
		case '0' <= r && r <= '9', r == '.':
			l.unreadRune()
			if err := l.scanNum(); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = tokenNum
			return tok, nil
		case r == 'π':
			tok.text = "pi"
			tok.kind = tokenConst
			return tok, nil
		case r == '√':
			tok.text = "sqrt"
			tok.kind = tokenFunc
			return tok, nil
		case unicode.IsLetter(r):
			l.unreadRune()
			if err := l.scanIdent(); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			switch {
			case globalfuncs[tok.text] != nil:
				tok.kind = tokenFunc
			case hasConst(tok.text):
				tok.kind = tokenConst
			default:
				return tok, &LexError{Text: tok.text, Kind: "identifier", Col: tok.pos}
			}
			return tok, nil
		case r == '!':
			tok.text = "!"
			tok.kind = tokenFact
			return tok, nil
		case r == '(':
			tok.text = "("
			tok.kind = tokenOpen
			return tok, nil
		case r == ')':
			tok.text = ")"
			tok.kind = tokenClose
			return tok, nil
		default:
			if op, ok := canonop[r]; ok {
				tok.text = op
				tok.kind = tokenOp
				return tok, nil
			}
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return tok, l.error("")
		}
	}
}

func (l *lexer) scanNum() error {
	var dig, dot bool
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		switch {
		case '0' <= r && r <= '9':
			dig = true
		case r == '.':
			if dot {
				l.buf.WriteRune(r)
				return l.error("number")
			}
			dot = true
		default:
			l.unreadRune()
			if !dig {
				return l.error("number")
			}
			return nil
		}
		l.buf.WriteRune(r)
	}
	if !dig {
		return l.error("number")
	}
	return nil
}

// scanIdent scans the longest run of letters that begins a function or
// constant name. No name is a prefix of another, so a run like esin scans as
// e and then sin. Digits end an identifier so that e.g. pi2 lexes as pi
// followed by 2. The first letter is always taken so that an unknown name
// shows up in the error.
func (l *lexer) scanIdent() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// next unreads the rune that decides ident scanning before
				// calling scanIdent, so we have scanned at least one rune.
				return nil
			}
			return err
		}
		if !unicode.IsLetter(r) || (l.buf.Len() > 0 && !namePrefix(l.buf.String()+string(r))) {
			l.unreadRune()
			return nil
		}
		l.buf.WriteRune(r)
	}
}

// namePrefix returns whether s begins the name of a function or constant.
func namePrefix(s string) bool {
	for k := range globalfuncs {
		if strings.HasPrefix(k, s) {
			return true
		}
	}
	for k := range constants {
		if strings.HasPrefix(k, s) {
			return true
		}
	}
	return false
}

func hasConst(name string) bool {
	_, ok := constants[name]
	return ok
}

// error creates an error at the last rune scanned.
func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.rune - 1,
	}
}

// LexError indicates an invalid token. It implements InputError and unwraps
// to ErrSyntax.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number",
	// "identifier", or the empty string (if a token kind hadn't been decided).
	Kind string
	// Col is the position of the invalid rune, or of the start of an
	// unknown identifier.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}

func (err *LexError) Unwrap() error {
	return ErrSyntax
}

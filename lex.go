package exact

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  int
	// num is the pre-parsed value of a tokenNum.
	num Rational
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is an integer or decimal literal.
	tokenNum
	// tokenIdent is a variable or function name.
	tokenIdent
	// tokenOp is an arithmetic operator.
	tokenOp
	// tokenAssign is := or the bare = assignment marker.
	tokenAssign
	// tokenOpen is (.
	tokenOpen
	// tokenClose is ).
	tokenClose
	// tokenSep is the argument and set-element separator ,.
	tokenSep
)

func (k tokenKind) String() string {
	switch k {
	case tokenNone:
		return "None"
	case tokenEOF:
		return "EOF"
	case tokenNum:
		return "Num"
	case tokenIdent:
		return "Ident"
	case tokenOp:
		return "Op"
	case tokenAssign:
		return "Assign"
	case tokenOpen:
		return "Open"
	case tokenClose:
		return "Close"
	case tokenSep:
		return "Sep"
	}
	return "tokenKind(" + strconv.Itoa(int(k)) + ")"
}

// Operators contains the runes which are considered to be operators.
const Operators = "+-*/%^×÷"

// IdentSymbols contains runes outside the Unicode letter categories which
// may nonetheless start or continue an identifier. This is the extent of
// the package's Unicode support: letters everywhere, plus these glyphs.
const IdentSymbols = "∞∂∇"

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	p    []lexToken
	eof  bool
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{
		src:  src,
		rune: 1,
	}
}

// push unreads a token so that it is the next token returned from next.
// Tokens pushed in sequence replay in LIFO order; the parser's assignment
// probe relies on this to back out of a failed match.
func (l *lexer) push(tok lexToken) {
	l.p = append(l.p, tok)
}

// must scans a pushed token. Panics if there is no pushed token.
func (l *lexer) must() lexToken {
	if len(l.p) == 0 {
		panic("exact: no pushed token")
	}
	tok := l.p[len(l.p)-1]
	l.p = l.p[:len(l.p)-1]
	return tok
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

func identStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || strings.ContainsRune(IdentSymbols, r)
}

func identCont(r rune) bool {
	return identStart(r) || unicode.IsDigit(r)
}

// next scans the next token from the input. The first time EOF is
// encountered before any non-whitespace characters, the result is an EOF
// token with a nil error. Subsequent times, if the EOF token is not pushed,
// the result is an empty token with io.EOF.
func (l *lexer) next() (lexToken, error) {
	if len(l.p) > 0 {
		return l.must(), nil
	}
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
			q, err := ParseDecimal(tok.text)
			if err != nil {
				// scanNum accepts exactly the literals ParseDecimal does,
				// minus cycle marks.
				panic("exact: unparseable number " + strconv.Quote(tok.text) + ": " + err.Error())
			}
			tok.num = q
			return tok, nil
		case identStart(r):
			l.unreadRune()
			if err := l.scanIdent(); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = tokenIdent
			return tok, nil
		case r == ',':
			tok.text = ","
			tok.kind = tokenSep
			return tok, nil
		case r == '(':
			tok.text = "("
			tok.kind = tokenOpen
			return tok, nil
		case r == ')':
			tok.text = ")"
			tok.kind = tokenClose
			return tok, nil
		case r == '=':
			tok.text = "="
			tok.kind = tokenAssign
			return tok, nil
		case r == ':':
			r, err := l.readRune()
			if err != nil || r != '=' {
				if err == nil {
					l.unreadRune()
				}
				l.buf.WriteByte(':')
				return tok, l.error("operator")
			}
			tok.text = ":="
			tok.kind = tokenAssign
			return tok, nil
		default:
			if k := strings.IndexRune(Operators, r); k >= 0 {
				tok.text = string(r)
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
	var dig, dot, e, le, ed bool
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if r == '+' || r == '-' {
			// + or - anywhere other than immediately following an exponent
			// marker means a new token, as it is an operator.
			if !le {
				l.unreadRune()
				break
			}
			le = false
			l.buf.WriteRune(r)
			continue
		}
		switch r {
		case '.':
			if dot || e {
				l.buf.WriteRune(r)
				return l.error("number")
			}
			dot = true
			le = false
		case 'e', 'E':
			if !dig || e {
				l.buf.WriteRune(r)
				return l.error("number")
			}
			e = true
			le = true
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			if e {
				ed = true
			} else {
				dig = true
			}
			le = false
		default:
			// Anything else ends the literal, including an identifier rune:
			// 2b lexes as the two tokens of an implicit multiplication.
			l.unreadRune()
			goto done
		}
		l.buf.WriteRune(r)
	}
done:
	if (!dig && !ed) || (e && !ed) {
		return l.error("number")
	}
	return nil
}

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
		if identCont(r) {
			l.buf.WriteRune(r)
			continue
		}
		l.unreadRune()
		return nil
	}
}

func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.rune,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be
	// "number", "operator", or the empty string (if a token kind hadn't
	// been decided).
	Kind string
	// Col is the total number of runes scanned by the lexer up to and
	// including this error.
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

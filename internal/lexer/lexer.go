// Package lexer tokenizes transformation-language expressions.
//
// The lexer is a pull interface: the parser calls Scan repeatedly until EOF
// or the end-of-command period. Identifiers may contain embedded periods
// (DATE.DMY, SUM.3) and the characters #, @ and $; a period followed by
// anything other than an identifier character or digit terminates the
// command instead. A minus sign adjacent to a digit scans as a negative
// number literal unless the previous token could end an operand.
package lexer

import (
	"strconv"
	"strings"

	"github.com/kolkov/casexpr/internal/token"
)

// Lexer tokenizes expression source text.
type Lexer struct {
	src     []byte         // Source text
	ch      byte           // Current character (0 at EOF)
	offset  int            // Current byte offset
	pos     token.Position // Current position
	nextPos token.Position // Position of next character

	lastTok token.Token // Previous token (for negative number detection)
}

// New creates a new Lexer for the given source text.
func New(src []byte) *Lexer {
	l := &Lexer{
		src: src,
		nextPos: token.Position{
			Line:   1,
			Column: 1,
		},
	}
	l.next() // Initialize first character
	return l
}

// NewFromString creates a new Lexer from a string.
func NewFromString(src string) *Lexer {
	return New([]byte(src))
}

// Token represents a scanned token with its position and value.
type Token struct {
	Type  token.Token
	Pos   token.Position
	End   token.Position
	Value string  // Raw text for names, decoded text for strings
	Num   float64 // Numeric value for NUMBER and NEG_NUM
}

// Span returns the source range the token covers.
func (t Token) Span() token.Span {
	return token.Span{Start: t.Pos, End: t.End}
}

// Scan scans and returns the next token.
func (l *Lexer) Scan() Token {
	tok := l.scan()
	l.lastTok = tok.Type
	tok.End = l.pos
	if tok.End.Before(tok.Pos) {
		tok.End = tok.Pos
	}
	return tok
}

func (l *Lexer) scan() Token {
	l.skipWhitespace()

	pos := l.pos

	if l.ch == 0 {
		return Token{Type: token.EOF, Pos: pos}
	}

	switch l.ch {
	case '+':
		l.next()
		return Token{Type: token.ADD, Pos: pos, Value: "+"}

	case '-':
		if !l.lastTok.EndsOperand() && l.startsNumber(l.peek()) {
			l.next()
			tok := l.scanNumber(pos)
			tok.Type = token.NEG_NUM
			tok.Num = -tok.Num
			tok.Value = "-" + tok.Value
			return tok
		}
		l.next()
		return Token{Type: token.SUB, Pos: pos, Value: "-"}

	case '*':
		l.next()
		if l.ch == '*' {
			l.next()
			return Token{Type: token.POW, Pos: pos, Value: "**"}
		}
		return Token{Type: token.MUL, Pos: pos, Value: "*"}

	case '/':
		l.next()
		return Token{Type: token.DIV, Pos: pos, Value: "/"}

	case '=':
		l.next()
		return Token{Type: token.EQUALS, Pos: pos, Value: "="}

	case '<':
		l.next()
		if l.ch == '>' {
			l.next()
			return Token{Type: token.NOT_EQUALS, Pos: pos, Value: "<>"}
		}
		if l.ch == '=' {
			l.next()
			return Token{Type: token.LTE, Pos: pos, Value: "<="}
		}
		return Token{Type: token.LESS, Pos: pos, Value: "<"}

	case '>':
		l.next()
		if l.ch == '=' {
			l.next()
			return Token{Type: token.GTE, Pos: pos, Value: ">="}
		}
		return Token{Type: token.GREATER, Pos: pos, Value: ">"}

	case '~':
		// NOT and ~= are interchangeable in the source language.
		l.next()
		if l.ch == '=' {
			l.next()
			return Token{Type: token.NOT_EQUALS, Pos: pos, Value: "~="}
		}
		return Token{Type: token.NOT, Pos: pos, Value: "~"}

	case '(':
		l.next()
		return Token{Type: token.LPAREN, Pos: pos, Value: "("}

	case ')':
		l.next()
		return Token{Type: token.RPAREN, Pos: pos, Value: ")"}

	case '[':
		l.next()
		return Token{Type: token.LBRACKET, Pos: pos, Value: "["}

	case ']':
		l.next()
		return Token{Type: token.RBRACKET, Pos: pos, Value: "]"}

	case ',':
		l.next()
		return Token{Type: token.COMMA, Pos: pos, Value: ","}

	case '\'', '"':
		return l.scanString(pos)

	case '.':
		if isDigit(l.peek()) {
			return l.scanNumber(pos)
		}
		l.next()
		return Token{Type: token.ENDCMD, Pos: pos, Value: "."}
	}

	if isDigit(l.ch) {
		return l.scanNumber(pos)
	}

	if isIdentStart(l.ch) {
		return l.scanIdent(pos)
	}

	ch := l.ch
	l.next()
	return Token{Type: token.ILLEGAL, Pos: pos, Value: string(ch)}
}

// scanNumber scans a numeric literal: digits with optional fraction and
// exponent. A trailing period not followed by a digit is left unconsumed
// so that it can terminate the command.
func (l *Lexer) scanNumber(pos token.Position) Token {
	start := l.offset - 1
	for isDigit(l.ch) {
		l.next()
	}
	if l.ch == '.' && isDigit(l.peek()) {
		l.next()
		for isDigit(l.ch) {
			l.next()
		}
	}
	if (l.ch == 'e' || l.ch == 'E') && l.hasValidExponent() {
		l.next() // e
		if l.ch == '+' || l.ch == '-' {
			l.next()
		}
		for isDigit(l.ch) {
			l.next()
		}
	}
	text := string(l.src[start:l.endOffset()])
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{Type: token.ILLEGAL, Pos: pos, Value: text}
	}
	return Token{Type: token.NUMBER, Pos: pos, Value: text, Num: num}
}

// scanString scans a quoted string literal. Either quote character may
// enclose it; a doubled quote inside represents one literal quote.
func (l *Lexer) scanString(pos token.Position) Token {
	quote := l.ch
	l.next()
	var sb strings.Builder
	for {
		if l.ch == 0 || l.ch == '\n' {
			return Token{Type: token.ILLEGAL, Pos: pos, Value: "unterminated string"}
		}
		if l.ch == quote {
			if l.peek() == quote {
				sb.WriteByte(quote)
				l.next()
				l.next()
				continue
			}
			l.next()
			break
		}
		sb.WriteByte(l.ch)
		l.next()
	}
	return Token{Type: token.STRING, Pos: pos, Value: sb.String()}
}

// scanIdent scans an identifier. Periods join segments only when followed
// by another identifier character or digit, so "X." is a name then an
// end-of-command period.
func (l *Lexer) scanIdent(pos token.Position) Token {
	start := l.offset - 1
	for {
		if isIdentContinue(l.ch) {
			l.next()
			continue
		}
		if l.ch == '.' && (isIdentContinue(l.peek()) || isDigit(l.peek())) {
			l.next()
			continue
		}
		break
	}
	text := string(l.src[start:l.endOffset()])
	typ := token.LookupIdent(strings.ToUpper(text))
	return Token{Type: typ, Pos: pos, Value: text}
}

// endOffset returns the offset just past the last consumed character.
func (l *Lexer) endOffset() int {
	if l.ch == 0 && l.offset > len(l.src) {
		return len(l.src)
	}
	return l.offset - 1
}

// hasValidExponent reports whether the characters after the current 'e'
// form an exponent, so that "1e" or "2edge" do not eat the 'e'.
func (l *Lexer) hasValidExponent() bool {
	i := l.offset // index of character after 'e'
	if i < len(l.src) && (l.src[i] == '+' || l.src[i] == '-') {
		i++
	}
	return i < len(l.src) && isDigit(l.src[i])
}

// startsNumber reports whether ch can begin a numeric literal.
func (l *Lexer) startsNumber(ch byte) bool {
	if isDigit(ch) {
		return true
	}
	if ch == '.' {
		i := l.offset + 1
		return i < len(l.src) && isDigit(l.src[i])
	}
	return false
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.next()
	}
}

// next advances to the next character.
func (l *Lexer) next() {
	l.pos = l.nextPos
	if l.offset >= len(l.src) {
		l.ch = 0
		l.offset = len(l.src) + 1
		return
	}
	l.ch = l.src[l.offset]
	l.offset++
	if l.ch == '\n' {
		l.nextPos.Line++
		l.nextPos.Column = 1
	} else {
		l.nextPos.Column++
	}
	l.nextPos.Offset = l.offset
}

// peek returns the next character without consuming it.
func (l *Lexer) peek() byte {
	if l.offset >= len(l.src) {
		return 0
	}
	return l.src[l.offset]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' ||
		ch == '$' || ch == '#' || ch == '@' || ch == '_'
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

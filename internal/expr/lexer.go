// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package expr

import "fmt"

type tokenType int

const (
	tokIllegal tokenType = iota
	tokEOF
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPow // ** or ^
	tokLParen
	tokRParen
	tokComma
)

var tokenNames = map[tokenType]string{
	tokIllegal: "ILLEGAL",
	tokEOF:     "end of input",
	tokNumber:  "number",
	tokIdent:   "identifier",
	tokPlus:    "+",
	tokMinus:   "-",
	tokStar:    "*",
	tokSlash:   "/",
	tokPow:     "**",
	tokLParen:  "(",
	tokRParen:  ")",
	tokComma:   ",",
}

func (t tokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

type token struct {
	typ     tokenType
	literal string
	pos     int
}

type lexer struct {
	input   string
	pos     int  // current position in input (points to current char)
	readPos int  // current reading position in input (after current char)
	ch      byte // current char under examination
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *lexer) nextToken() token {
	l.skipWhitespace()

	tok := token{pos: l.pos}
	switch l.ch {
	case 0:
		tok.typ = tokEOF
		return tok
	case '+':
		tok.typ, tok.literal = tokPlus, "+"
	case '-':
		tok.typ, tok.literal = tokMinus, "-"
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			tok.typ, tok.literal = tokPow, "**"
		} else {
			tok.typ, tok.literal = tokStar, "*"
		}
	case '^':
		tok.typ, tok.literal = tokPow, "^"
	case '/':
		tok.typ, tok.literal = tokSlash, "/"
	case '(':
		tok.typ, tok.literal = tokLParen, "("
	case ')':
		tok.typ, tok.literal = tokRParen, ")"
	case ',':
		tok.typ, tok.literal = tokComma, ","
	default:
		if isLetter(l.ch) {
			tok.typ = tokIdent
			tok.literal = l.readIdentifier()
			return tok
		}
		if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
			tok.typ = tokNumber
			tok.literal = l.readNumber()
			return tok
		}
		tok.typ, tok.literal = tokIllegal, string(l.ch)
	}
	l.readChar()
	return tok
}

func (l *lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber accepts 12, 1.5, .5, 2e-3 and 1.5E+4.
func (l *lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && l.readPos+1 < len(l.input) && isDigit(l.input[l.readPos+1])) {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.input[start:l.pos]
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

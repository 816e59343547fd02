package rustsrc

import (
	"errors"
	"fmt"
	"strings"
)

var ErrLex = errors.New("malformed Rust source")

type TokenKind uint8

const (
	Ident TokenKind = iota + 1
	Number
	Punct
	String
	Char
	Lifetime
)

// Token is a lexeme with its byte span in the source text. Comments and
// whitespace never produce tokens.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
}

func (t Token) is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// multi-character punctuation the matcher cares about
var compoundPunct = []string{"<<", "::", "->", "=>"}

type lexer struct {
	src    string
	pos    int
	tokens []Token
}

// Lex splits src into tokens.
func Lex(src string) ([]Token, error) {
	l := &lexer{src: src}
	for l.pos < len(l.src) {
		if err := l.next(); err != nil {
			return nil, err
		}
	}
	return l.tokens, nil
}

func (l *lexer) next() error {
	c := l.src[l.pos]
	switch {
	case isSpace(c):
		l.pos++
	case l.hasPrefix("//"):
		l.skipLineComment()
	case l.hasPrefix("/*"):
		return l.skipBlockComment()
	case c == '"':
		return l.lexString(l.pos, l.pos+1)
	case c == 'r' && (l.hasPrefix(`r"`) || l.hasPrefix(`r#"`) || l.hasPrefix(`r##"`)):
		return l.lexRawString()
	case c == 'b' && l.hasPrefix(`b"`):
		return l.lexString(l.pos, l.pos+2)
	case c == '\'':
		return l.lexQuote()
	case isDigit(c):
		l.lexWord(Number)
	case isIdentStart(c):
		l.lexWord(Ident)
	default:
		l.lexPunct()
	}
	return nil
}

func (l *lexer) hasPrefix(p string) bool {
	return len(l.src)-l.pos >= len(p) && l.src[l.pos:l.pos+len(p)] == p
}

func (l *lexer) emit(kind TokenKind, start int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: l.src[start:l.pos], Start: start, End: l.pos})
}

func (l *lexer) skipLineComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}

// block comments nest in Rust
func (l *lexer) skipBlockComment() error {
	start := l.pos
	depth := 0
	for l.pos < len(l.src) {
		switch {
		case l.hasPrefix("/*"):
			depth++
			l.pos += 2
		case l.hasPrefix("*/"):
			depth--
			l.pos += 2
			if depth == 0 {
				return nil
			}
		default:
			l.pos++
		}
	}
	return fmt.Errorf("%w: unterminated block comment at offset %d", ErrLex, start)
}

func (l *lexer) lexString(start, body int) error {
	l.pos = body
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
		case '"':
			l.pos++
			l.emit(String, start)
			return nil
		default:
			l.pos++
		}
	}
	return fmt.Errorf("%w: unterminated string at offset %d", ErrLex, start)
}

func (l *lexer) lexRawString() error {
	start := l.pos
	l.pos++ // r
	hashes := 0
	for l.src[l.pos] == '#' {
		hashes++
		l.pos++
	}
	l.pos++ // opening quote
	closing := `"` + strings.Repeat("#", hashes)
	for l.pos < len(l.src) {
		if l.hasPrefix(closing) {
			l.pos += len(closing)
			l.emit(String, start)
			return nil
		}
		l.pos++
	}
	return fmt.Errorf("%w: unterminated raw string at offset %d", ErrLex, start)
}

// lexQuote tells a char literal ('a', '\n', '\u{1F600}') from a lifetime ('static).
func (l *lexer) lexQuote() error {
	start := l.pos
	rest := l.src[l.pos+1:]
	if len(rest) >= 2 && rest[0] == '\\' {
		for l.pos++; l.pos < len(l.src) && !(l.src[l.pos] == '\'' && l.pos > start+2); l.pos++ {
		}
		if l.pos >= len(l.src) {
			return fmt.Errorf("%w: unterminated char literal at offset %d", ErrLex, start)
		}
		l.pos++
		l.emit(Char, start)
		return nil
	}
	if len(rest) >= 2 && rest[1] == '\'' {
		l.pos += 3
		l.emit(Char, start)
		return nil
	}
	l.pos++
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	l.emit(Lifetime, start)
	return nil
}

func (l *lexer) lexWord(kind TokenKind) {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	l.emit(kind, start)
}

func (l *lexer) lexPunct() {
	start := l.pos
	for _, p := range compoundPunct {
		if l.hasPrefix(p) {
			l.pos += len(p)
			l.emit(Punct, start)
			return
		}
	}
	l.pos++
	l.emit(Punct, start)
}

func isSpace(c byte) bool      { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') || c >= 0x80 }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }


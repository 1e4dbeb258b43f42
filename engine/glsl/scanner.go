// Package glsl is a small GLSL front-end. It tokenizes shader source, checks the global-scope
// structure (directives, declarations, struct and interface blocks, function definitions) and
// extracts the interface variables a linker or pipeline builder needs. It does not type-check
// function bodies and it does not evaluate preprocessor conditionals.
package glsl

import (
	"fmt"
	"strings"
)

// TokenKind classifies a Token.
type TokenKind int

const (
	// TokenIdent is an identifier or keyword.
	TokenIdent TokenKind = iota

	// TokenNumber is an integer or floating point literal, suffix included.
	TokenNumber

	// TokenPunct is an operator or punctuation mark.
	TokenPunct

	// TokenDirective is a whole preprocessor line, starting with '#'.
	TokenDirective
)

// Token is one lexical element with its 1-based source position.
type Token struct {
	Kind   TokenKind
	Text   string
	Line   int
	Column int
}

// SyntaxError reports the first structural error found in a source.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d(%d): %s", e.Line, e.Column, e.Msg)
}

// threeCharOps and twoCharOps are matched longest first.
var threeCharOps = []string{"<<=", ">>="}

var twoCharOps = []string{
	"++", "--", "+=", "-=", "*=", "/=", "%=", "==", "!=", "<=", ">=",
	"&&", "||", "^^", "<<", ">>", "&=", "|=", "^=",
}

const singleCharOps = "{}()[];,.:?+-*/%<>=!&|^~"

// scanner walks a source string keeping track of the current line and column.
type scanner struct {
	src  string
	pos  int
	line int
	col  int

	// lineStart is true while only whitespace has been seen on the current line.
	lineStart bool
}

// Scan splits GLSL source into tokens, dropping whitespace and comments.
//
// Parameters:
//   - source: the GLSL source text
//
// Returns:
//   - []Token: the tokens in source order
//   - error: a *SyntaxError for an unterminated comment or a character outside the GLSL alphabet
func Scan(source string) ([]Token, error) {
	s := &scanner{src: source, line: 1, col: 1, lineStart: true}
	var toks []Token

	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\n':
			s.advance(1)
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			s.advance(1)
		case strings.HasPrefix(s.src[s.pos:], "//"):
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.advance(1)
			}
		case strings.HasPrefix(s.src[s.pos:], "/*"):
			line, col := s.line, s.col
			end := strings.Index(s.src[s.pos+2:], "*/")
			if end < 0 {
				return nil, &SyntaxError{Line: line, Column: col, Msg: "unterminated comment"}
			}
			s.advance(end + 4)
		case c == '#' && s.lineStart:
			toks = append(toks, s.directive())
		case isIdentStart(c):
			toks = append(toks, s.take(TokenIdent, s.identLen()))
		case isDigit(c) || (c == '.' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1])):
			toks = append(toks, s.take(TokenNumber, s.numberLen()))
		default:
			n := s.punctLen()
			if n == 0 {
				return nil, &SyntaxError{Line: s.line, Column: s.col, Msg: fmt.Sprintf("unexpected character '%c'", c)}
			}
			toks = append(toks, s.take(TokenPunct, n))
		}
	}
	return toks, nil
}

// advance moves n bytes forward, updating the line and column counters.
func (s *scanner) advance(n int) {
	for i := 0; i < n && s.pos < len(s.src); i++ {
		c := s.src[s.pos]
		s.pos++
		if c == '\n' {
			s.line++
			s.col = 1
			s.lineStart = true
			continue
		}
		s.col++
		if c != ' ' && c != '\t' && c != '\r' {
			s.lineStart = false
		}
	}
}

// take emits a token of n bytes at the current position.
func (s *scanner) take(kind TokenKind, n int) Token {
	t := Token{Kind: kind, Text: s.src[s.pos : s.pos+n], Line: s.line, Column: s.col}
	s.advance(n)
	return t
}

// directive consumes a preprocessor line, honouring backslash continuations.
func (s *scanner) directive() Token {
	line, col := s.line, s.col
	var b strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '\n' {
			s.advance(2)
			b.WriteByte(' ')
			continue
		}
		if c == '\n' {
			break
		}
		b.WriteByte(c)
		s.advance(1)
	}
	text := b.String()
	if i := strings.Index(text, "//"); i >= 0 {
		text = text[:i]
	}
	return Token{Kind: TokenDirective, Text: strings.TrimSpace(text), Line: line, Column: col}
}

func (s *scanner) identLen() int {
	n := 1
	for s.pos+n < len(s.src) && isIdentPart(s.src[s.pos+n]) {
		n++
	}
	return n
}

func (s *scanner) numberLen() int {
	n := 0
	for s.pos+n < len(s.src) {
		c := s.src[s.pos+n]
		switch {
		case isIdentPart(c) || c == '.':
			n++
		case (c == '+' || c == '-') && n > 0 && (s.src[s.pos+n-1] == 'e' || s.src[s.pos+n-1] == 'E') && !isHexLiteral(s.src[s.pos:s.pos+n]):
			n++
		default:
			return n
		}
	}
	return n
}

func (s *scanner) punctLen() int {
	rest := s.src[s.pos:]
	for _, op := range threeCharOps {
		if strings.HasPrefix(rest, op) {
			return 3
		}
	}
	for _, op := range twoCharOps {
		if strings.HasPrefix(rest, op) {
			return 2
		}
	}
	if strings.IndexByte(singleCharOps, rest[0]) >= 0 {
		return 1
	}
	return 0
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexLiteral(s string) bool {
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

package board

import (
	"strings"

	"github.com/pkg/errors"
)

type pgnTokenKind int

const (
	tokHeader pgnTokenKind = iota
	tokMoveNumber
	tokMove
	tokComment
	tokNAG
	tokResult
)

type pgnToken struct {
	kind   pgnTokenKind
	offset int
	key    string // header name
	text   string
}

var pgnResults = map[string]bool{
	"1-0":     true,
	"0-1":     true,
	"1/2-1/2": true,
	"*":       true,
}

// pgnLexer splits PGN text into headers, move numbers, moves, comments,
// NAGs and results. Variations are skipped whole.
type pgnLexer struct {
	src    string
	pos    int
	tokens []pgnToken
}

// lexPGN returns the tokens of src. On error the tokens read so far are
// returned along with it.
func lexPGN(src string) ([]pgnToken, error) {
	l := &pgnLexer{src: src}
	err := l.run()
	return l.tokens, err
}

func (l *pgnLexer) fail(offset int, token, reason string) error {
	return errors.WithStack(&PGNError{Offset: offset, Token: token, Reason: reason})
}

func (l *pgnLexer) emit(kind pgnTokenKind, offset int, text string) {
	l.tokens = append(l.tokens, pgnToken{kind: kind, offset: offset, text: text})
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (l *pgnLexer) skipSpace() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
}

// restOfLine returns the text up to the next newline and moves past it.
func (l *pgnLexer) restOfLine() string {
	end := strings.IndexByte(l.src[l.pos:], '\n')
	if end < 0 {
		end = len(l.src) - l.pos
	}
	s := l.src[l.pos : l.pos+end]
	l.pos += end
	return strings.TrimSuffix(s, "\r")
}

func (l *pgnLexer) run() error {
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			return nil
		}

		start := l.pos
		c := l.src[l.pos]

		switch {
		case c == '[':
			if err := l.header(); err != nil {
				return err
			}

		case c == '{':
			end := strings.IndexByte(l.src[l.pos+1:], '}')
			if end < 0 {
				return l.fail(start, "{", "unterminated comment")
			}
			text := l.src[l.pos+1 : l.pos+1+end]
			text = strings.NewReplacer("\r\n", " ", "\n", " ").Replace(text)
			l.emit(tokComment, start, text)
			l.pos += end + 2

		case c == ';':
			l.pos++
			l.emit(tokComment, start, strings.TrimPrefix(l.restOfLine(), " "))

		case c == '(':
			if err := l.variation(); err != nil {
				return err
			}

		case c == ')':
			return l.fail(start, ")", "unbalanced variation")

		case c == '%' && (start == 0 || l.src[start-1] == '\n'):
			// Escape line.
			l.restOfLine()

		case c == '$':
			l.pos++
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
			l.emit(tokNAG, start, l.src[start:l.pos])

		case isDigit(c) && l.moveNumberAhead():
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
			for l.pos < len(l.src) && l.src[l.pos] == '.' {
				l.pos++
			}
			l.emit(tokMoveNumber, start, l.src[start:l.pos])

		default:
			l.word()
		}
	}
}

// moveNumberAhead reports whether the digits at pos are followed by a dot.
func (l *pgnLexer) moveNumberAhead() bool {
	i := l.pos
	for i < len(l.src) && isDigit(l.src[i]) {
		i++
	}
	return i < len(l.src) && l.src[i] == '.'
}

func (l *pgnLexer) word() {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isSpace(c) || strings.IndexByte("{}();[$", c) >= 0 {
			break
		}
		l.pos++
	}

	text := l.src[start:l.pos]
	switch {
	case strings.Trim(text, ".") == "":
		l.emit(tokMoveNumber, start, text)
	case pgnResults[text]:
		l.emit(tokResult, start, text)
	default:
		l.emit(tokMove, start, text)
	}
}

func isTagChar(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// header reads a [Key "value"] tag pair.
func (l *pgnLexer) header() error {
	start := l.pos
	l.pos++
	l.skipSpace()

	keyStart := l.pos
	for l.pos < len(l.src) && isTagChar(l.src[l.pos]) {
		l.pos++
	}
	key := l.src[keyStart:l.pos]
	if key == "" {
		return l.fail(start, "[", "malformed header")
	}

	l.skipSpace()
	if l.pos >= len(l.src) || l.src[l.pos] != '"' {
		return l.fail(start, key, "header value must be quoted")
	}
	l.pos++

	var sb strings.Builder
	for {
		if l.pos >= len(l.src) || l.src[l.pos] == '\n' {
			return l.fail(start, key, "unterminated header value")
		}
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) && (l.src[l.pos+1] == '"' || l.src[l.pos+1] == '\\') {
			sb.WriteByte(l.src[l.pos+1])
			l.pos += 2
			continue
		}
		l.pos++
		if c == '"' {
			break
		}
		sb.WriteByte(c)
	}

	l.skipSpace()
	if l.pos >= len(l.src) || l.src[l.pos] != ']' {
		return l.fail(start, key, "unterminated header")
	}
	l.pos++

	l.tokens = append(l.tokens, pgnToken{kind: tokHeader, offset: start, key: key, text: sb.String()})
	return nil
}

// variation skips a parenthesised variation, nested ones and comments
// included.
func (l *pgnLexer) variation() error {
	start := l.pos
	depth := 0

	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				l.pos++
				return nil
			}
		case '{':
			end := strings.IndexByte(l.src[l.pos:], '}')
			if end < 0 {
				return l.fail(l.pos, "{", "unterminated comment")
			}
			l.pos += end
		case ';':
			l.restOfLine()
			continue
		}
		l.pos++
	}

	return l.fail(start, "(", "unterminated variation")
}

// Package scanner turns source text into a stream of tokens shared by
// both surface syntaxes (§4.1). The rune-handling primitives (escape
// sequences, name scanning, numeric literals, url(...) contents,
// unicode-range) are carried over from benbjohnson/css's
// scanner/scanner.go almost unchanged, since Sass's lexical grammar is a
// superset of CSS3's. What's new: '$variable' tokens, '#{' / '}'
// interpolation delimiters, and (in Syntax == Indented mode) significant
// newlines and Indent/Dedent tokens in place of brace matching.
package scanner

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/gosass/sass/internal/token"
	"github.com/gosass/sass/span"
)

// Syntax selects which surface grammar governs whitespace significance.
type Syntax int

const (
	SCSS Syntax = iota
	Indented
	CSS
)

const eof = rune(-1)

// Scanner is a single-token-lookahead lexer. Current/Scan/Unscan mirror
// benbjohnson/css's parser.Scanner interface so internal/parser can
// reuse the same consumeX-style recursive descent shape.
type Scanner struct {
	Errors []*Error

	src    *span.Source
	rd     io.RuneReader
	tr     *span.Tracker
	syntax Syntax

	buf  [4]rune
	bufp [4]span.Location
	bufi int
	bufn int

	// interpolation depth: > 0 while scanning inside a #{ } so that the
	// scanner knows a closing '}' ends interpolation rather than a block.
	interpDepth int

	tok     token.Token
	unscanned bool

	// indentation bookkeeping for the indented syntax
	atLineStart bool
	indents     []int
}

// Error is a lexical error encountered while scanning.
type Error struct {
	Message string
	Pos     span.Span
}

func (e *Error) Error() string { return e.Message }

// New returns a scanner over src using the given surface syntax.
func New(src *span.Source, syntax Syntax) *Scanner {
	s := &Scanner{
		src:         src,
		rd:          bufio.NewReader(strings.NewReader(src.Text)),
		tr:          span.NewTracker(src),
		syntax:      syntax,
		atLineStart: true,
		indents:     []int{0},
	}
	return s
}

// Current returns the most recently scanned token without advancing.
func (s *Scanner) Current() token.Token { return s.tok }

// Unscan rewinds by one token; only a single level of pushback is
// supported, matching how the parser actually uses it.
func (s *Scanner) Unscan() { s.unscanned = true }

// Scan returns the next token, honoring a pending Unscan.
func (s *Scanner) Scan() token.Token {
	if s.unscanned {
		s.unscanned = false
		return s.tok
	}
	s.tok = s.scan()
	return s.tok
}

func (s *Scanner) scan() token.Token {
	for {
		startLoc := s.peekLoc()
		ch := s.read()
		pos := func(end span.Location) span.Span {
			return span.Span{Source: s.src, Start: startLoc, End: end}
		}

		switch {
		case ch == eof:
			return token.WithSpan(token.EOF{}, pos(s.peekLoc()))
		case s.syntax == Indented && s.atLineStart && ch != '\n':
			s.unread(1)
			if tok, ok := s.scanIndentation(); ok {
				return tok
			}
			continue
		case ch == '\n':
			s.atLineStart = true
			if s.syntax == Indented && s.interpDepth == 0 {
				return token.WithSpan(token.Newline{}, pos(s.peekLoc()))
			}
			return s.finishWhitespace(ch, startLoc)
		case isWhitespace(ch):
			return s.finishWhitespace(ch, startLoc)
		case ch == '"' || ch == '\'':
			return s.scanString(ch, startLoc)
		case ch == '#':
			if next := s.read(); next == '{' {
				s.interpDepth++
				return token.WithSpan(token.InterpolationStart{}, pos(s.peekLoc()))
			} else {
				s.unread(1)
			}
			return s.scanHash(startLoc)
		case ch == '$':
			return s.scanVariable(startLoc)
		case ch == '}' && s.interpDepth > 0:
			s.interpDepth--
			return token.WithSpan(token.InterpolationEnd{}, pos(s.peekLoc()))
		case ch == ',':
			return token.WithSpan(token.Comma{}, pos(s.peekLoc()))
		case ch == '-':
			ch1, ch2 := s.read(), s.read()
			s.unread(2)
			if isDigit(ch1) || ch1 == '.' {
				s.unread(1)
				return s.scanNumeric(startLoc)
			} else if s.peekIdentFrom(ch1) {
				return s.scanIdent(startLoc)
			} else if ch1 == '-' {
				s.read()
				if ch2 == '>' {
					s.read()
					return token.WithSpan(token.CDC{}, pos(s.peekLoc()))
				}
				s.unread(1)
			}
			return token.WithSpan(token.Delim{Value: '-'}, pos(s.peekLoc()))
		case ch == '/':
			if ch1 := s.read(); ch1 == '*' {
				return s.scanBlockComment(startLoc)
			} else if ch1 == '/' && s.syntax != CSS {
				s.scanLineComment()
				continue
			} else {
				s.unread(1)
			}
			return token.WithSpan(token.Delim{Value: '/'}, pos(s.peekLoc()))
		case ch == ':':
			return token.WithSpan(token.Colon{}, pos(s.peekLoc()))
		case ch == ';':
			return token.WithSpan(token.Semicolon{}, pos(s.peekLoc()))
		case ch == '<':
			if ch0 := s.read(); ch0 == '!' {
				if ch1 := s.read(); ch1 == '-' {
					if ch2 := s.read(); ch2 == '-' {
						return token.WithSpan(token.CDO{}, pos(s.peekLoc()))
					}
					s.unread(1)
				}
				s.unread(1)
			}
			s.unread(1)
			return token.WithSpan(token.Delim{Value: '<'}, pos(s.peekLoc()))
		case ch == '@':
			if ch1 := s.read(); s.peekIdentFrom(ch1) {
				return token.WithSpan(token.AtKeyword{Value: s.scanName()}, pos(s.peekLoc()))
			}
			s.unread(1)
			return token.WithSpan(token.Delim{Value: '@'}, pos(s.peekLoc()))
		case ch == '(':
			return token.WithSpan(token.LParen{}, pos(s.peekLoc()))
		case ch == ')':
			return token.WithSpan(token.RParen{}, pos(s.peekLoc()))
		case ch == '[':
			return token.WithSpan(token.LBrack{}, pos(s.peekLoc()))
		case ch == ']':
			return token.WithSpan(token.RBrack{}, pos(s.peekLoc()))
		case ch == '{':
			return token.WithSpan(token.LBrace{}, pos(s.peekLoc()))
		case ch == '}':
			return token.WithSpan(token.RBrace{}, pos(s.peekLoc()))
		case ch == '\\':
			if s.peekEscape() {
				return s.scanIdent(startLoc)
			}
			s.Errors = append(s.Errors, &Error{Message: "unescaped \\", Pos: pos(s.peekLoc())})
			return token.WithSpan(token.Delim{Value: '\\'}, pos(s.peekLoc()))
		case ch == '~':
			if n := s.read(); n == '=' {
				return token.WithSpan(token.IncludeMatch{}, pos(s.peekLoc()))
			} else {
				s.unread(1)
			}
			return token.WithSpan(token.Delim{Value: '~'}, pos(s.peekLoc()))
		case ch == '^':
			if n := s.read(); n == '=' {
				return token.WithSpan(token.PrefixMatch{}, pos(s.peekLoc()))
			} else {
				s.unread(1)
			}
			return token.WithSpan(token.Delim{Value: '^'}, pos(s.peekLoc()))
		case ch == '*':
			if n := s.read(); n == '=' {
				return token.WithSpan(token.SubstringMatch{}, pos(s.peekLoc()))
			} else {
				s.unread(1)
			}
			return token.WithSpan(token.Delim{Value: '*'}, pos(s.peekLoc()))
		case ch == '|':
			if n := s.read(); n == '=' {
				return token.WithSpan(token.DashMatch{}, pos(s.peekLoc()))
			} else if n == '|' {
				return token.WithSpan(token.Column{}, pos(s.peekLoc()))
			}
			s.unread(1)
			return token.WithSpan(token.Delim{Value: '|'}, pos(s.peekLoc()))
		case ch == '+' || ch == '.' || isDigit(ch):
			ch1, ch2 := s.read(), s.read()
			s.unread(2)
			if isDigit(ch) || isDigit(ch1) || (ch == '+' && ch1 == '.' && isDigit(ch2)) {
				s.unread(1)
				return s.scanNumeric(startLoc)
			}
			return token.WithSpan(token.Delim{Value: ch}, pos(s.peekLoc()))
		case isNameStart(ch):
			return s.scanIdent(startLoc)
		default:
			return token.WithSpan(token.Delim{Value: ch}, pos(s.peekLoc()))
		}
	}
}

func (s *Scanner) finishWhitespace(first rune, start span.Location) token.Token {
	var b strings.Builder
	b.WriteRune(first)
	for {
		ch := s.read()
		if ch == eof || !isWhitespace(ch) {
			if ch != eof {
				s.unread(1)
			}
			break
		}
		if ch == '\n' {
			if s.syntax == Indented && s.interpDepth == 0 {
				s.unread(1)
				break
			}
			s.atLineStart = true
		}
		b.WriteRune(ch)
	}
	return token.WithSpan(token.Whitespace{Value: b.String()}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
}

// scanIndentation consumes leading whitespace on a fresh line and
// compares its width against the indentation stack, emitting Indent or
// Dedent tokens the parser's indentation policy consumes like '{'/'}'.
func (s *Scanner) scanIndentation() (token.Token, bool) {
	start := s.peekLoc()
	width := 0
	for {
		ch := s.read()
		if ch == ' ' || ch == '\t' {
			width++
			continue
		}
		if ch != eof {
			s.unread(1)
		}
		break
	}
	s.atLineStart = false
	top := s.indents[len(s.indents)-1]
	switch {
	case width > top:
		s.indents = append(s.indents, width)
		return token.WithSpan(token.Indent{}, span.Span{Source: s.src, Start: start, End: s.peekLoc()}), true
	case width < top:
		s.indents = s.indents[:len(s.indents)-1]
		s.unreadIndent(width)
		return token.WithSpan(token.Dedent{}, span.Span{Source: s.src, Start: start, End: s.peekLoc()}), true
	default:
		return nil, false
	}
}

// unreadIndent re-enters indentation comparison on the next Scan call by
// marking the line as still needing a dedent check, used when several
// Dedent tokens must be emitted back-to-back.
func (s *Scanner) unreadIndent(width int) {
	if width < s.indents[len(s.indents)-1] {
		s.atLineStart = true
	}
}

func (s *Scanner) scanString(quote rune, start span.Location) token.Token {
	var b strings.Builder
	for {
		ch := s.read()
		if ch == eof || ch == quote {
			return token.WithSpan(token.String{Value: b.String(), Ending: quote}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
		} else if ch == '\n' {
			s.unread(1)
			return token.WithSpan(token.BadString{}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
		} else if ch == '\\' {
			if s.peekEscape() {
				b.WriteRune(s.scanEscape())
				continue
			}
			if next := s.read(); next == eof {
				continue
			} else if next == '\n' {
				b.WriteRune(next)
			}
		} else {
			b.WriteRune(ch)
		}
	}
}

func (s *Scanner) scanHash(start span.Location) token.Token {
	if ch := s.read(); isName(ch) || s.peekEscapeAt(ch) {
		flag := "unrestricted"
		if s.peekIdent() {
			flag = "id"
		}
		return token.WithSpan(token.Hash{Value: s.scanName(), Flag: flag}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
	}
	s.unread(1)
	return token.WithSpan(token.Delim{Value: '#'}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
}

func (s *Scanner) scanVariable(start span.Location) token.Token {
	s.read()
	name := s.scanName()
	return token.WithSpan(token.Variable{Name: name}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
}

func (s *Scanner) scanNumeric(start span.Location) token.Token {
	value, raw, isInt := s.scanNumber()
	if s.read(); s.peekIdent() {
		unit := s.scanName()
		return token.WithSpan(token.Dimension{Value: value, Raw: raw + unit, Unit: unit}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
	} else {
		s.unread(1)
	}
	if ch := s.read(); ch == '%' {
		return token.WithSpan(token.Percentage{Value: value, Raw: raw + "%"}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
	} else {
		s.unread(1)
	}
	return token.WithSpan(token.Number{Value: value, Raw: raw, Int: isInt}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
}

func (s *Scanner) scanNumber() (value float64, raw string, isInt bool) {
	var b strings.Builder
	isInt = true
	if ch := s.read(); ch == '+' || ch == '-' {
		b.WriteRune(ch)
	} else {
		s.unread(1)
	}
	b.WriteString(s.scanDigits())
	if ch0 := s.read(); ch0 == '.' {
		if ch1 := s.read(); isDigit(ch1) {
			isInt = false
			b.WriteRune(ch0)
			b.WriteRune(ch1)
			b.WriteString(s.scanDigits())
		} else {
			s.unread(2)
		}
	} else {
		s.unread(1)
	}
	if ch0 := s.read(); ch0 == 'e' || ch0 == 'E' {
		if ch1 := s.read(); ch1 == '+' || ch1 == '-' {
			if ch2 := s.read(); isDigit(ch2) {
				isInt = false
				b.WriteRune(ch0)
				b.WriteRune(ch1)
				b.WriteRune(ch2)
			} else {
				s.unread(3)
			}
		} else if isDigit(ch1) {
			isInt = false
			b.WriteRune(ch0)
			b.WriteRune(ch1)
		} else {
			s.unread(2)
		}
	} else {
		s.unread(1)
	}
	raw = b.String()
	value, _ = strconv.ParseFloat(raw, 64)
	return
}

func (s *Scanner) scanDigits() string {
	var b strings.Builder
	for {
		if ch := s.read(); isDigit(ch) {
			b.WriteRune(ch)
		} else {
			s.unread(1)
			break
		}
	}
	return b.String()
}

func (s *Scanner) scanBlockComment(start span.Location) token.Token {
	var b strings.Builder
	for {
		ch0 := s.read()
		if ch0 == eof {
			break
		} else if ch0 == '*' {
			if ch1 := s.read(); ch1 == '/' {
				break
			} else {
				b.WriteRune(ch0)
				s.unread(1)
			}
		} else {
			b.WriteRune(ch0)
		}
	}
	return token.WithSpan(token.Comment{Value: b.String()}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
}

func (s *Scanner) scanLineComment() {
	for {
		ch := s.read()
		if ch == eof || ch == '\n' {
			if ch == '\n' {
				s.unread(1)
			}
			return
		}
	}
}

func (s *Scanner) scanName() string {
	var b strings.Builder
	s.unread(1)
	for {
		if ch := s.read(); isName(ch) {
			b.WriteRune(ch)
		} else if s.peekEscape() {
			b.WriteRune(s.scanEscape())
		} else {
			s.unread(1)
			return b.String()
		}
	}
}

func (s *Scanner) scanIdent(start span.Location) token.Token {
	v := s.scanName()
	if strings.EqualFold(v, "url") {
		if ch := s.read(); ch == '(' {
			return s.scanURL(start)
		}
		s.unread(1)
	} else if ch := s.read(); ch == '(' {
		return token.WithSpan(token.Function{Value: v}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
	} else {
		s.unread(1)
	}
	return token.WithSpan(token.Ident{Value: v}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
}

func (s *Scanner) scanURL(start span.Location) token.Token {
	if ch := s.read(); isWhitespace(ch) {
		s.skipWhitespaceRunes()
	} else {
		s.unread(1)
	}
	if ch := s.read(); ch == eof {
		return token.WithSpan(token.URL{}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
	} else if ch == '"' || ch == '\'' {
		strTok := s.scanString(ch, start)
		if _, bad := strTok.(token.BadString); bad {
			s.scanBadURL()
			return token.WithSpan(token.BadURL{}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
		}
		str := strTok.(token.String)
		if ch := s.read(); isWhitespace(ch) {
			s.skipWhitespaceRunes()
		} else {
			s.unread(1)
		}
		if ch := s.read(); ch != ')' && ch != eof {
			s.scanBadURL()
			return token.WithSpan(token.BadURL{}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
		}
		return token.WithSpan(token.URL{Value: str.Value}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
	}
	s.unread(1)
	var b strings.Builder
	for {
		ch := s.read()
		if ch == ')' || ch == eof {
			return token.WithSpan(token.URL{Value: b.String()}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
		} else if isWhitespace(ch) {
			s.skipWhitespaceRunes()
			if ch0 := s.read(); ch0 == ')' || ch0 == eof {
				return token.WithSpan(token.URL{Value: b.String()}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
			}
			s.scanBadURL()
			return token.WithSpan(token.BadURL{}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
		} else if ch == '"' || ch == '\'' || ch == '(' || isNonPrintable(ch) {
			s.Errors = append(s.Errors, &Error{Message: "invalid url code point"})
			s.scanBadURL()
			return token.WithSpan(token.BadURL{}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
		} else if ch == '\\' {
			if s.peekEscape() {
				b.WriteRune(s.scanEscape())
			} else {
				s.scanBadURL()
				return token.WithSpan(token.BadURL{}, span.Span{Source: s.src, Start: start, End: s.peekLoc()})
			}
		} else {
			b.WriteRune(ch)
		}
	}
}

func (s *Scanner) scanBadURL() {
	for {
		ch := s.read()
		if ch == ')' || ch == eof {
			return
		} else if s.peekEscape() {
			s.scanEscape()
		}
	}
}

func (s *Scanner) scanEscape() rune {
	ch := s.read()
	if isHexDigit(ch) {
		var b strings.Builder
		b.WriteRune(ch)
		for i := 0; i < 5; i++ {
			if next := s.read(); next == eof || isWhitespace(next) {
				break
			} else if !isHexDigit(next) {
				s.unread(1)
				break
			} else {
				b.WriteRune(next)
			}
		}
		v, _ := strconv.ParseInt(b.String(), 16, 32)
		return rune(v)
	} else if ch == eof {
		return '�'
	}
	return ch
}

func (s *Scanner) peekEscape() bool {
	if s.curr() != '\\' {
		return false
	}
	next := s.read()
	s.unread(1)
	return next != '\n'
}

func (s *Scanner) peekEscapeAt(ch rune) bool {
	if ch != '\\' {
		return false
	}
	next := s.read()
	s.unread(1)
	return next != '\n'
}

func (s *Scanner) peekIdent() bool {
	return s.peekIdentFrom(s.curr())
}

func (s *Scanner) peekIdentFrom(cur rune) bool {
	if cur == '-' {
		ch := s.read()
		s.unread(1)
		return isNameStart(ch) || s.peekEscape()
	} else if isNameStart(cur) {
		return true
	} else if cur == '\\' && s.peekEscape() {
		return true
	}
	return false
}

func (s *Scanner) skipWhitespaceRunes() {
	for {
		if ch := s.read(); !isWhitespace(ch) {
			s.unread(1)
			return
		}
	}
}

// read/unread maintain a small circular lookahead buffer so escapes and
// numeric lookahead can peek up to a few code points and roll back.
func (s *Scanner) read() rune {
	if s.bufn > 0 {
		s.bufi = (s.bufi + 1) % len(s.buf)
		s.bufn--
		return s.buf[s.bufi]
	}
	ch, _, err := s.rd.ReadRune()
	if err != nil {
		ch = eof
	} else if ch == '\r' {
		if next, _, err := s.rd.ReadRune(); err == nil && next != '\n' {
			// push back a non-LF char following CR
			s.bufi = (s.bufi + 1) % len(s.buf)
			s.buf[s.bufi] = next
			s.bufn++
		}
		ch = '\n'
	} else if ch == '\f' {
		ch = '\n'
	} else if ch == 0 {
		ch = '�'
	}
	loc := s.tr.Advance(ch)
	s.bufi = (s.bufi + 1) % len(s.buf)
	s.buf[s.bufi] = ch
	s.bufp[s.bufi] = loc
	return ch
}

func (s *Scanner) unread(n int) {
	for i := 0; i < n; i++ {
		s.bufi = (s.bufi + len(s.buf) - 1) % len(s.buf)
		s.bufn++
	}
}

func (s *Scanner) curr() rune { return s.buf[s.bufi] }

// peekLoc returns the location just past the most recently read rune,
// i.e. where the next rune will start.
func (s *Scanner) peekLoc() span.Location {
	if s.bufn > 0 {
		// there are unread runes buffered; the "current" position is
		// where the oldest buffered rune starts.
		idx := (s.bufi + 1) % len(s.buf)
		return s.bufp[idx]
	}
	return s.tr.Location()
}

func isWhitespace(ch rune) bool { return ch == ' ' || ch == '\t' || ch == '\n' }
func isDigit(ch rune) bool      { return ch >= '0' && ch <= '9' }
func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
func isLetter(ch rune) bool     { return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }
func isNonASCII(ch rune) bool   { return ch >= 0x80 }
func isNameStart(ch rune) bool  { return isLetter(ch) || isNonASCII(ch) || ch == '_' }
func isName(ch rune) bool       { return isNameStart(ch) || isDigit(ch) || ch == '-' }
func isNonPrintable(ch rune) bool {
	return (ch >= 0 && ch <= 0x08) || ch == 0x0B || (ch >= 0x0E && ch <= 0x1F) || ch == 0x7F
}

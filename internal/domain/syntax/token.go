// Package syntax turns PDDL text into tokens and an error-tolerant syntax
// tree. Nothing here fails on malformed input: unmatched brackets are kept
// as offending tokens next to a best-effort tree.
package syntax

import (
	"iter"
	"strconv"
	"strings"
)

// TokenKind classifies a token.
type TokenKind int

const (
	// Document is the kind of the synthetic root node. No token in a
	// stream has this kind.
	Document TokenKind = iota
	OpenBracket
	OpenBracketOperator // "(" followed by a keyword, e.g. "(and"
	CloseBracket
	Parameter // "?x"
	Comment   // ";" to end of line
	Whitespace
	Other // identifiers, numbers, "-" separators, strings
)

// String returns the kind name.
func (k TokenKind) String() string {
	switch k {
	case Document:
		return "document"
	case OpenBracket:
		return "open_bracket"
	case OpenBracketOperator:
		return "open_bracket_operator"
	case CloseBracket:
		return "close_bracket"
	case Parameter:
		return "parameter"
	case Comment:
		return "comment"
	case Whitespace:
		return "whitespace"
	case Other:
		return "other"
	default:
		return "unknown"
	}
}

// Token is a typed span of source text. End is exclusive.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
}

// IsOpen reports whether the token opens a bracket.
func (t Token) IsOpen() bool {
	return t.Kind == OpenBracket || t.Kind == OpenBracketOperator
}

// Keyword returns the lower-cased keyword of an operator bracket ("and" for
// "( and"), or "" for any other token.
func (t Token) Keyword() string {
	if t.Kind != OpenBracketOperator {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(t.Text, "(")))
}

// IsNumber reports whether the token is a numeric literal.
func (t Token) IsNumber() bool {
	if t.Kind != Other {
		return false
	}
	_, err := strconv.ParseFloat(t.Text, 64)
	return err == nil
}

// Tokenize returns every token of text. The spans concatenate to text.
func Tokenize(text string) []Token {
	var out []Token
	for tok := range Tokens(text) {
		out = append(out, tok)
	}
	return out
}

// Tokens returns a lazy token sequence over text. The sequence can be
// ranged over any number of times; each range scans from the start.
func Tokens(text string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		s := scanner{text: text}
		for s.pos < len(text) {
			if !yield(s.next()) {
				return
			}
		}
	}
}

type scanner struct {
	text string
	pos  int
}

func (s *scanner) emit(kind TokenKind, end int) Token {
	tok := Token{Kind: kind, Text: s.text[s.pos:end], Start: s.pos, End: end}
	s.pos = end
	return tok
}

func (s *scanner) next() Token {
	c := s.text[s.pos]
	switch {
	case c == '(':
		return s.openBracket()
	case c == ')':
		return s.emit(CloseBracket, s.pos+1)
	case c == ';':
		end := strings.IndexByte(s.text[s.pos:], '\n')
		if end < 0 {
			return s.emit(Comment, len(s.text))
		}
		end += s.pos
		if end > s.pos && s.text[end-1] == '\r' {
			end--
		}
		return s.emit(Comment, end)
	case isSpace(c):
		end := s.pos
		for end < len(s.text) && isSpace(s.text[end]) {
			end++
		}
		return s.emit(Whitespace, end)
	case c == '"':
		return s.emit(Other, s.stringEnd())
	case c == '?':
		return s.emit(Parameter, s.wordEnd(s.pos+1))
	default:
		return s.emit(Other, s.wordEnd(s.pos+1))
	}
}

// openBracket emits "(" alone, or "(" plus optional whitespace plus a
// keyword when one follows.
func (s *scanner) openBracket() Token {
	i := s.pos + 1
	for i < len(s.text) && isSpace(s.text[i]) {
		i++
	}
	end := s.wordEnd(i)
	if end > i && IsKeyword(s.text[i:end]) {
		return s.emit(OpenBracketOperator, end)
	}
	return s.emit(OpenBracket, s.pos+1)
}

// wordEnd returns the end of the word that starts at or before from.
func (s *scanner) wordEnd(from int) int {
	i := from
	for i < len(s.text) && !isDelimiter(s.text[i]) {
		i++
	}
	return i
}

// stringEnd returns the offset past the closing quote, or the end of the
// line when the string is unterminated.
func (s *scanner) stringEnd() int {
	for i := s.pos + 1; i < len(s.text); i++ {
		switch s.text[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		case '\n':
			return i
		}
	}
	return len(s.text)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDelimiter(c byte) bool {
	return isSpace(c) || c == '(' || c == ')' || c == ';' || c == '"'
}

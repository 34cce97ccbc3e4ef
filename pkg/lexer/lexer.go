// Package lexer turns mustache template source into a token stream.
package lexer

import (
	"context"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/benjamindblock/go-mustache/pkg/delim"
	"github.com/benjamindblock/go-mustache/pkg/token"
)

// ErrUnbalancedTags is returned when the brace stack is non-empty at end of
// input: some `{{` never saw its `}}`.
var ErrUnbalancedTags = errors.New("unbalanced tags")

type lexer struct {
	src    string
	delims delim.Set
	toks   []token.Token

	cur     token.Type // type of the token in progress
	start   int        // byte offset where it began
	line    int        // current zero-based line
	curLine int        // line the token in progress began on
	depth   int        // brace nesting, must be zero at EOF
}

// Lex scans source in a single forward pass and returns the token stream,
// terminated by an EOF token. The returned tokens are fresh and owned by the
// caller; a renderer mutates them in place.
func Lex(ctx context.Context, src string, delims delim.Set) ([]token.Token, error) {
	l := &lexer{src: src, delims: delims, cur: token.Text}

	i := 0
	for i < len(src) {
		c := src[i]

		// A newline outside a comment ends the current token and becomes its
		// own unit. Comments may span lines without emitting Newline tokens.
		if c == '\n' {
			if l.cur == token.Comment {
				l.line++
				i++
				continue
			}
			l.flush(i)
			l.toks = append(l.toks, token.Token{
				Type:     token.Newline,
				Value:    "\n",
				Pos:      token.Pos{Start: i, End: i + 1, Line: l.line},
				StartIdx: -1,
			})
			l.line++
			i++
			l.cur = token.Text
			l.start = i
			l.curLine = l.line
			continue
		}

		if l.cur == token.Text {
			if typ, marker, ok := l.openMarkerAt(i); ok {
				l.flush(i)
				l.cur = typ
				l.depth += strings.Count(marker, "{")
				i += len(marker)
				l.start = i
				l.curLine = l.line
				continue
			}
			switch c {
			case '{':
				l.depth++
			case '}':
				// a lone } with no open brace is ordinary text
				if l.depth > 0 {
					l.depth--
				}
			}
			i++
			continue
		}

		// inside a tag: the close marker wins over individual braces
		closeMarker := l.delims.Close
		if l.cur == token.TagLiteralTriple {
			closeMarker = l.delims.TripleClose
		}
		if strings.HasPrefix(src[i:], closeMarker) {
			l.flush(i)
			l.depth -= strings.Count(closeMarker, "}")
			i += len(closeMarker)
			l.cur = token.Text
			l.start = i
			l.curLine = l.line
			continue
		}
		switch c {
		case '{':
			l.depth++
		case '}':
			if l.depth > 0 {
				l.depth--
			}
		}
		i++
	}

	l.flush(len(src))
	if l.depth != 0 {
		return nil, errors.Errorf("%w: %d unclosed brace(s) at end of input", ErrUnbalancedTags, l.depth)
	}
	l.toks = append(l.toks, token.Token{
		Type:     token.EOF,
		Pos:      token.Pos{Start: len(src), End: len(src), Line: l.line},
		StartIdx: -1,
	})

	zerolog.Ctx(ctx).Trace().Int("tokens", len(l.toks)).Int("lines", l.line+1).Msg("lexed template")
	return l.toks, nil
}

// openMarkerAt matches a configured open marker at offset i. Longer and more
// specific markers are tried before the plain {{ prefix.
func (l *lexer) openMarkerAt(i int) (token.Type, string, bool) {
	rest := l.src[i:]
	checks := []struct {
		marker string
		typ    token.Type
	}{
		{l.delims.TripleOpen, token.TagLiteralTriple},
		{l.delims.SectionOpen, token.SectionOpen},
		{l.delims.SectionClose, token.SectionClose},
		{l.delims.Inverted, token.SectionOpenInverted},
		{l.delims.Partial, token.Partial},
		{l.delims.Comment, token.Comment},
		{l.delims.Unescaped, token.TagLiteral},
		{l.delims.Open, token.Tag},
	}
	for _, c := range checks {
		if strings.HasPrefix(rest, c.marker) {
			return c.typ, c.marker, true
		}
	}
	return 0, "", false
}

// flush appends the token in progress, ending at offset end. Tag values are
// stripped of all interior whitespace (keys cannot contain literal spaces or
// tabs) and comment content is discarded. Zero-length tokens are dropped
// silently.
func (l *lexer) flush(end int) {
	if end <= l.start {
		return
	}
	value := l.src[l.start:end]
	if l.cur != token.Text {
		value = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, value)
	}
	if value == "" {
		return
	}
	if l.cur == token.Comment {
		value = ""
	}
	l.toks = append(l.toks, token.Token{
		Type:     l.cur,
		Value:    value,
		Pos:      token.Pos{Start: l.start, End: end, Line: l.curLine},
		StartIdx: -1,
	})
}

// Package render interprets a lexed token stream against a data context to
// produce output text. The interpreter owns its token list and rewrites it
// destructively as it runs: whitespace tokens are retyped to Skip, partial
// bodies are spliced in, and list sections replay their body by jumping the
// cursor back to the section open.
package render

import (
	"context"
	"html"
	"strings"

	"github.com/rs/zerolog"

	"github.com/benjamindblock/go-mustache/pkg/data"
	"github.com/benjamindblock/go-mustache/pkg/delim"
	"github.com/benjamindblock/go-mustache/pkg/lexer"
	"github.com/benjamindblock/go-mustache/pkg/token"
)

// DefaultMaxPartialExpansions bounds partial splicing per render, so a
// self-referential partial terminates instead of expanding forever.
const DefaultMaxPartialExpansions = 1024

// Template is the state of one render invocation. It owns its token list
// exclusively and must not be shared across renders.
type Template struct {
	tokens     []token.Token
	root       data.Value
	partials   data.Value
	delims     delim.Set
	maxExpand  int
	expansions int
}

// Option configures a Template.
type Option func(*Template)

// WithPartials supplies the partials map: partial names resolve to template
// source strings within it.
func WithPartials(p data.Value) Option {
	return func(t *Template) {
		t.partials = p
	}
}

// WithDelimiters sets the delimiter set used to lex partials.
func WithDelimiters(d delim.Set) Option {
	return func(t *Template) {
		t.delims = d
	}
}

// WithMaxPartialExpansions overrides the per-render partial splice budget.
func WithMaxPartialExpansions(n int) Option {
	return func(t *Template) {
		t.maxExpand = n
	}
}

// New prepares a render invocation over toks. The token list is cloned: the
// interpreter mutates it destructively, so a shared precompiled list stays
// intact.
func New(toks []token.Token, root data.Value, opts ...Option) *Template {
	t := &Template{
		tokens:    token.Clone(toks),
		root:      root,
		partials:  data.Null(),
		delims:    delim.Default(),
		maxExpand: DefaultMaxPartialExpansions,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Render runs the standalone-line pre-pass and then a single forward pass
// over the token stream, with backward jumps for list replay.
func (t *Template) Render(ctx context.Context) (string, error) {
	elideStandalone(t.tokens)

	stack := newContextStack(t.root)
	var out strings.Builder

	i := 0
	for i < len(t.tokens) {
		tok := t.tokens[i]
		switch tok.Type {
		case token.Text, token.Newline:
			if stack.valid() {
				out.WriteString(stripCarriageReturns(tok.Value))
			}

		case token.Tag:
			if stack.valid() {
				if v, ok := stack.resolve(tok.Value); ok {
					out.WriteString(html.EscapeString(v.Text()))
				}
			}

		case token.TagLiteral, token.TagLiteralTriple:
			if stack.valid() {
				if v, ok := stack.resolve(tok.Value); ok {
					out.WriteString(v.Text())
				}
			}

		case token.SectionOpen, token.SectionOpenInverted:
			t.enterSection(ctx, stack, i)

		case token.SectionClose:
			stack.pop()
			if t.tokens[i].Iters > 0 {
				t.tokens[i].Iters--
				stack.activate()
				i = t.tokens[i].StartIdx
				continue
			}
			// loop exhausted; let an enclosing replay re-enter cleanly
			t.tokens[i].StartIdx = -1

		case token.Partial:
			t.expandPartial(ctx, i)
			// expanded exactly once; loop replays render the spliced tokens
			t.tokens[i].Type = token.Skip

		case token.Comment, token.Skip, token.EOF:
			// no output, no side effect
		}
		i++
	}

	zerolog.Ctx(ctx).Trace().Int("bytes", out.Len()).Int("partial_expansions", t.expansions).Msg("rendered template")
	return out.String(), nil
}

// enterSection resolves the section key and pushes the new scope. A list
// with N > 0 elements pushes all N entries in reverse, element 0 on top as
// the current iteration and the rest queued behind it, and arms the matching
// close token for replay. An empty list pushes itself as a falsy scope so the
// body is suppressed without touching the token stream; an enclosing replay
// may still re-enter it with different data.
func (t *Template) enterSection(ctx context.Context, stack *contextStack, i int) {
	tok := t.tokens[i]
	j := t.matchingClose(i)

	// Replay re-entry: the close still points back at this open, so the next
	// list element is already on top of the stack.
	if j >= 0 && t.tokens[j].StartIdx == i {
		return
	}

	v, ok := stack.resolve(tok.Value)
	if !ok {
		// absent data behaves as the falsey sentinel
		v = data.Text("false")
	}
	if tok.Type == token.SectionOpenInverted {
		if v.Truthy() {
			v = data.Text("false")
		} else {
			v = data.Text("true")
		}
	}

	if v.Kind() == data.KindList && j >= 0 {
		items := v.Items()
		if len(items) == 0 {
			stack.push(v, tok.Value)
			return
		}
		for k := len(items) - 1; k > 0; k-- {
			stack.pushQueued(items[k], tok.Value)
		}
		stack.push(items[0], tok.Value)
		t.tokens[j].Iters = len(items) - 1
		t.tokens[j].StartIdx = i
		return
	}

	if j < 0 {
		zerolog.Ctx(ctx).Debug().Str("section", tok.Value).Msg("section has no matching close")
	}
	stack.push(v, tok.Value)
}

// matchingClose finds the SectionClose paired with the open at index i,
// skipping nested sections with the same key.
func (t *Template) matchingClose(i int) int {
	depth := 0
	val := t.tokens[i].Value
	for j := i + 1; j < len(t.tokens); j++ {
		tok := t.tokens[j]
		switch tok.Type {
		case token.SectionOpen, token.SectionOpenInverted:
			if tok.Value == val {
				depth++
			}
		case token.SectionClose:
			if tok.Value == val {
				if depth == 0 {
					return j
				}
				depth--
			}
		}
	}
	return -1
}

// expandPartial lexes the named partial and splices its tokens immediately
// after position i, macro-expanding it in place. A missing partial renders
// nothing. Standalone partials reproduce their indentation on every spliced
// line after the first.
func (t *Template) expandPartial(ctx context.Context, i int) {
	logger := zerolog.Ctx(ctx)
	name := t.tokens[i].Value

	if t.expansions >= t.maxExpand {
		logger.Warn().Str("partial", name).Int("budget", t.maxExpand).Msg("partial expansion budget exhausted, rendering nothing")
		return
	}

	v, ok := data.Dig(t.partials, []string{name})
	if !ok || v.Kind() != data.KindString {
		logger.Debug().Str("partial", name).Msg("no partial content found, rendering nothing")
		return
	}

	sub, err := lexer.Lex(ctx, v.Text(), t.delims)
	if err != nil {
		logger.Warn().Err(err).Str("partial", name).Msg("partial failed to lex, rendering nothing")
		return
	}
	if n := len(sub); n > 0 && sub[n-1].Type == token.EOF {
		sub = sub[:n-1]
	}
	elideStandalone(sub)

	if indent, ok := t.partialIndent(i); ok {
		sub = indentSplice(sub, indent)
	}

	t.expansions++
	merged := make([]token.Token, 0, len(t.tokens)+len(sub))
	merged = append(merged, t.tokens[:i+1]...)
	merged = append(merged, sub...)
	merged = append(merged, t.tokens[i+1:]...)
	t.tokens = merged
}

// partialIndent returns the blank prefix of a standalone partial's line. The
// pre-pass only retypes a blank Text token to Skip when the line passed the
// single-marker standalone test, so a whitespace Skip token directly before
// the partial on the same line is exactly that prefix.
func (t *Template) partialIndent(i int) (string, bool) {
	if i == 0 {
		return "", false
	}
	prev := t.tokens[i-1]
	if prev.Type != token.Skip || prev.Value == "" || prev.Value == "\n" {
		return "", false
	}
	if strings.TrimSpace(prev.Value) != "" {
		return "", false
	}
	if prev.Pos.Line != t.tokens[i].Pos.Line {
		return "", false
	}
	return prev.Value, true
}

// indentSplice inserts a copy of the indentation after every rendered line
// boundary in the spliced content, except after a trailing final newline.
func indentSplice(sub []token.Token, indent string) []token.Token {
	out := make([]token.Token, 0, len(sub))
	for k, tk := range sub {
		out = append(out, tk)
		if tk.Type == token.Newline && k < len(sub)-1 {
			out = append(out, token.Token{
				Type:     token.Text,
				Value:    indent,
				Pos:      tk.Pos,
				StartIdx: -1,
			})
		}
	}
	return out
}

// stripCarriageReturns guards against a carriage-return artifact in literal
// text: a \r byte never reaches the output.
func stripCarriageReturns(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	return strings.ReplaceAll(s, "\r", "")
}

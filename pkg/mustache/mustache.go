// Package mustache is the high-level entry point: string in, string out,
// with optional partials, layout wrapping, and file loading over an afero
// filesystem.
package mustache

import (
	"context"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/benjamindblock/go-mustache/pkg/cache"
	"github.com/benjamindblock/go-mustache/pkg/data"
	"github.com/benjamindblock/go-mustache/pkg/delim"
	"github.com/benjamindblock/go-mustache/pkg/lexer"
	"github.com/benjamindblock/go-mustache/pkg/render"
	"github.com/benjamindblock/go-mustache/pkg/token"
)

// Format selects the data-file encoding for RenderFile.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

type options struct {
	partials  data.Value
	delims    delim.Set
	layout    string
	format    Format
	maxExpand int
	cache     *cache.Cache
}

// Option configures a render call.
type Option func(*options)

// WithPartials supplies the partials map (partial name -> template source).
func WithPartials(p data.Value) Option {
	return func(o *options) {
		o.partials = mergePartials(o.partials, p)
	}
}

// WithDelimiters swaps the delimiter set for the whole render, partials and
// layout included.
func WithDelimiters(d delim.Set) Option {
	return func(o *options) {
		o.delims = d
	}
}

// WithLayout wraps the rendered output in a layout template: the layout's
// `content` tag is replaced by the primary output as literal text, and the
// layout renders against the same top-level data.
func WithLayout(layout string) Option {
	return func(o *options) {
		o.layout = layout
	}
}

// WithDataFormat selects the data-file encoding for RenderFile.
func WithDataFormat(f Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithMaxPartialExpansions bounds partial splicing per render.
func WithMaxPartialExpansions(n int) Option {
	return func(o *options) {
		o.maxExpand = n
	}
}

// WithCache reuses lexed token lists across renders. Renders still get their
// own copy each time.
func WithCache(c *cache.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		partials:  data.Null(),
		delims:    delim.Default(),
		format:    FormatJSON,
		maxExpand: render.DefaultMaxPartialExpansions,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Render renders a mustache template against root.
func Render(ctx context.Context, source string, root data.Value, opts ...Option) (string, error) {
	return renderWith(ctx, newOptions(opts), source, root)
}

// RenderWithLayout renders a template and wraps the result in layout.
func RenderWithLayout(ctx context.Context, source, layout string, root data.Value, opts ...Option) (string, error) {
	o := newOptions(opts)
	o.layout = layout
	return renderWith(ctx, o, source, root)
}

func renderWith(ctx context.Context, o *options, source string, root data.Value) (string, error) {
	toks, err := o.compile(ctx, source)
	if err != nil {
		return "", errors.Errorf("lexing template: %w", err)
	}

	tpl := render.New(toks, root,
		render.WithPartials(o.partials),
		render.WithDelimiters(o.delims),
		render.WithMaxPartialExpansions(o.maxExpand),
	)
	out, err := tpl.Render(ctx)
	if err != nil {
		return "", errors.Errorf("rendering template: %w", err)
	}

	if o.layout == "" {
		return out, nil
	}
	return wrapLayout(ctx, o, out, root)
}

func (o *options) compile(ctx context.Context, source string) ([]token.Token, error) {
	if o.cache != nil {
		return o.cache.Compile(ctx, source, o.delims)
	}
	return lexer.Lex(ctx, source, o.delims)
}

// wrapLayout lexes the layout on its own (no partials, no nested layout),
// replaces its `content` tag with the rendered primary output as literal
// text, and interprets the result against the original top-level data.
func wrapLayout(ctx context.Context, o *options, rendered string, root data.Value) (string, error) {
	toks, err := lexer.Lex(ctx, o.layout, o.delims)
	if err != nil {
		return "", errors.Errorf("lexing layout: %w", err)
	}

	spliceContent(toks, rendered)

	tpl := render.New(toks, root, render.WithDelimiters(o.delims))
	out, err := tpl.Render(ctx)
	if err != nil {
		return "", errors.Errorf("rendering layout: %w", err)
	}
	return out, nil
}

// spliceContent replaces the first value tag named "content" with the
// rendered output as a literal Text token. If the tag sits alone on an
// indented line, the indentation is reproduced on every content line after
// the first, same as a standalone partial.
func spliceContent(toks []token.Token, rendered string) {
	ci := -1
	for i, tk := range toks {
		if tk.Type.IsTag() && tk.Value == "content" {
			ci = i
			break
		}
	}
	if ci == -1 {
		return
	}

	indent := ""
	if ci > 0 {
		prev := toks[ci-1]
		alone := ci+1 >= len(toks) ||
			toks[ci+1].Type == token.Newline ||
			toks[ci+1].Type == token.EOF
		if alone &&
			prev.Type == token.Text &&
			prev.Value != "" &&
			strings.TrimSpace(prev.Value) == "" &&
			prev.Pos.Line == toks[ci].Pos.Line {
			indent = prev.Value
		}
	}

	toks[ci] = token.Token{
		Type:     token.Text,
		Value:    indentLines(rendered, indent),
		Pos:      toks[ci].Pos,
		StartIdx: -1,
	}
}

// indentLines prefixes every line after the first with indent, leaving a
// trailing final newline unindented.
func indentLines(s, indent string) string {
	if indent == "" || !strings.Contains(s, "\n") {
		return s
	}
	trailing := strings.HasSuffix(s, "\n")
	body := s
	if trailing {
		body = body[:len(body)-1]
	}
	body = strings.ReplaceAll(body, "\n", "\n"+indent)
	if trailing {
		body += "\n"
	}
	return body
}

func mergePartials(base, overlay data.Value) data.Value {
	if base.Kind() != data.KindMap {
		return overlay
	}
	if overlay.Kind() != data.KindMap {
		return base
	}
	m := make(map[string]data.Value, base.Len()+overlay.Len())
	for _, k := range base.Keys() {
		v, _ := base.Get(k)
		m[k] = v
	}
	for _, k := range overlay.Keys() {
		v, _ := overlay.Get(k)
		m[k] = v
	}
	return data.Map(m)
}

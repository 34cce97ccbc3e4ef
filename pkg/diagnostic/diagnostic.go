// Package diagnostic checks mustache templates without rendering them,
// reporting syntax problems with line/column positions.
package diagnostic

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"github.com/benjamindblock/go-mustache/pkg/data"
	"github.com/benjamindblock/go-mustache/pkg/delim"
	"github.com/benjamindblock/go-mustache/pkg/lexer"
	"github.com/benjamindblock/go-mustache/pkg/token"
)

// Generator produces diagnostics for a template source.
type Generator interface {
	Generate(ctx context.Context, source string) (*Diagnostics, error)
}

// Diagnostics groups findings by severity.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Hints    []Diagnostic
}

// Diagnostic is a single finding. Positions are zero-based.
type Diagnostic struct {
	Message  string
	Line     int
	Column   int
	EndLine  int
	EndCol   int
	Severity Severity
}

// Severity is the level of a diagnostic.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
	Hint    Severity = "hint"
)

// Err combines every error-severity finding into one error, or nil when the
// template is clean.
func (d *Diagnostics) Err() error {
	var combined error
	for _, finding := range d.Errors {
		combined = multierr.Append(combined, errors.Errorf("%d:%d: %s", finding.Line+1, finding.Column+1, finding.Message))
	}
	return combined
}

// DefaultGenerator is the default implementation of Generator.
type DefaultGenerator struct {
	delims   delim.Set
	partials data.Value
}

// GeneratorOption configures a DefaultGenerator.
type GeneratorOption func(*DefaultGenerator)

// WithDelimiters sets the delimiter set used to lex the source.
func WithDelimiters(d delim.Set) GeneratorOption {
	return func(g *DefaultGenerator) {
		g.delims = d
	}
}

// WithKnownPartials enables unknown-partial warnings against the given
// partials map.
func WithKnownPartials(p data.Value) GeneratorOption {
	return func(g *DefaultGenerator) {
		g.partials = p
	}
}

// NewDefaultGenerator creates a new DefaultGenerator.
func NewDefaultGenerator(opts ...GeneratorOption) *DefaultGenerator {
	g := &DefaultGenerator{delims: delim.Default(), partials: data.Null()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate implements Generator. Lexing failures and malformed section
// nesting are errors; unknown partials and suspicious keys are warnings.
func (g *DefaultGenerator) Generate(ctx context.Context, source string) (*Diagnostics, error) {
	diagnostics := &Diagnostics{
		Errors:   make([]Diagnostic, 0),
		Warnings: make([]Diagnostic, 0),
		Hints:    make([]Diagnostic, 0),
	}

	toks, err := lexer.Lex(ctx, source, g.delims)
	if err != nil {
		line, col := lineAndColumn(source, len(source))
		diagnostics.Errors = append(diagnostics.Errors, Diagnostic{
			Message:  fmt.Sprintf("template does not lex: %v", err),
			Line:     line,
			Column:   col,
			EndLine:  line,
			EndCol:   col,
			Severity: Error,
		})
		return diagnostics, nil
	}

	type openSection struct {
		key string
		pos token.Pos
	}
	var open []openSection

	for _, tk := range toks {
		switch tk.Type {
		case token.SectionOpen, token.SectionOpenInverted:
			open = append(open, openSection{key: tk.Value, pos: tk.Pos})

		case token.SectionClose:
			if len(open) == 0 {
				diagnostics.Errors = append(diagnostics.Errors, g.at(source, tk.Pos, Error,
					fmt.Sprintf("section close %q has no matching open", tk.Value)))
				continue
			}
			top := open[len(open)-1]
			open = open[:len(open)-1]
			if top.key != tk.Value {
				diagnostics.Errors = append(diagnostics.Errors, g.at(source, tk.Pos, Error,
					fmt.Sprintf("section close %q does not match open %q", tk.Value, top.key)))
			}

		case token.Partial:
			if g.partials.Kind() != data.KindMap {
				continue
			}
			if _, ok := g.partials.Get(tk.Value); !ok {
				diagnostics.Warnings = append(diagnostics.Warnings, g.at(source, tk.Pos, Warning,
					fmt.Sprintf("partial %q is not defined; it will render as empty", tk.Value)))
			}

		case token.Tag, token.TagLiteral, token.TagLiteralTriple:
			if tk.Value != "." && strings.Contains(tk.Value, "..") {
				diagnostics.Warnings = append(diagnostics.Warnings, g.at(source, tk.Pos, Warning,
					fmt.Sprintf("key %q contains an empty path segment", tk.Value)))
			}
		}
	}

	for _, sec := range open {
		diagnostics.Errors = append(diagnostics.Errors, g.at(source, sec.pos, Error,
			fmt.Sprintf("section %q is never closed", sec.key)))
	}

	zerolog.Ctx(ctx).Debug().
		Int("errors", len(diagnostics.Errors)).
		Int("warnings", len(diagnostics.Warnings)).
		Msg("generated diagnostics")
	return diagnostics, nil
}

func (g *DefaultGenerator) at(source string, pos token.Pos, sev Severity, msg string) Diagnostic {
	line, col := lineAndColumn(source, pos.Start)
	endLine, endCol := lineAndColumn(source, pos.End)
	return Diagnostic{
		Message:  msg,
		Line:     line,
		Column:   col,
		EndLine:  endLine,
		EndCol:   endCol,
		Severity: sev,
	}
}

// lineAndColumn converts a byte offset to zero-based line and column.
func lineAndColumn(text string, offset int) (line, col int) {
	if offset > len(text) {
		offset = len(text)
	}
	lastNewline := -1
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			lastNewline = i
		}
	}
	return line, offset - lastNewline - 1
}

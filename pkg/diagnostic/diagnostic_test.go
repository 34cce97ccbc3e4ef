package diagnostic_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamindblock/go-mustache/pkg/data"
	"github.com/benjamindblock/go-mustache/pkg/diagnostic"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name         string
		source       string
		wantErrors   int
		wantWarnings int
	}{
		{
			name:   "clean template",
			source: "Hello {{name}}!\n{{#items}}{{.}}{{/items}}\n",
		},
		{
			name:       "template does not lex",
			source:     "{{broken",
			wantErrors: 1,
		},
		{
			name:       "mismatched section close",
			source:     "{{#a}}x{{/b}}",
			wantErrors: 1,
		},
		{
			name:       "unclosed section",
			source:     "{{#a}}x",
			wantErrors: 1,
		},
		{
			name:       "close without open",
			source:     "x{{/a}}",
			wantErrors: 1,
		},
		{
			name:         "empty path segment",
			source:       "{{a..b}}",
			wantWarnings: 1,
		},
	}

	gen := diagnostic.NewDefaultGenerator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags, err := gen.Generate(context.Background(), tt.source)
			require.NoError(t, err)
			assert.Len(t, diags.Errors, tt.wantErrors)
			assert.Len(t, diags.Warnings, tt.wantWarnings)
		})
	}
}

func TestGenerate_unknownPartial(t *testing.T) {
	gen := diagnostic.NewDefaultGenerator(
		diagnostic.WithKnownPartials(data.Map(map[string]data.Value{
			"header": data.Text("H"),
		})),
	)

	diags, err := gen.Generate(context.Background(), "{{>header}}{{>footer}}")
	require.NoError(t, err)
	assert.Empty(t, diags.Errors)
	require.Len(t, diags.Warnings, 1)
	assert.Contains(t, diags.Warnings[0].Message, `"footer"`)
}

func TestGenerate_positions(t *testing.T) {
	gen := diagnostic.NewDefaultGenerator()

	diags, err := gen.Generate(context.Background(), "ok line\n  {{#a}}x")
	require.NoError(t, err)
	require.Len(t, diags.Errors, 1)
	assert.Equal(t, 1, diags.Errors[0].Line)
	assert.Equal(t, 5, diags.Errors[0].Column) // key offset, just past the {{# marker
}

func TestDiagnostics_err(t *testing.T) {
	gen := diagnostic.NewDefaultGenerator()

	clean, err := gen.Generate(context.Background(), "fine")
	require.NoError(t, err)
	assert.NoError(t, clean.Err())

	broken, err := gen.Generate(context.Background(), "{{#a}}{{#b}}x")
	require.NoError(t, err)
	require.Error(t, broken.Err())
}

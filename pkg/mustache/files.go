package mustache

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/benjamindblock/go-mustache/pkg/data"
)

// RenderFile loads a template and its data file from fsys and renders. The
// data file holds a required top-level "data" key and an optional "partials"
// key; explicit WithPartials options overlay the file's partials.
func RenderFile(ctx context.Context, fsys afero.Fs, templatePath, dataPath string, opts ...Option) (string, error) {
	o := newOptions(opts)

	source, err := afero.ReadFile(fsys, templatePath)
	if err != nil {
		return "", errors.Errorf("reading template %s: %w", templatePath, err)
	}
	raw, err := afero.ReadFile(fsys, dataPath)
	if err != nil {
		return "", errors.Errorf("reading data file %s: %w", dataPath, err)
	}

	var doc data.Value
	switch o.format {
	case FormatYAML:
		doc, err = data.FromYAML(raw)
	default:
		doc, err = data.FromJSON(raw)
	}
	if err != nil {
		return "", errors.Errorf("parsing data file %s: %w", dataPath, err)
	}

	root, ok := doc.Get("data")
	if !ok {
		return "", errors.Errorf("data file %s: missing required top-level %q key", dataPath, "data")
	}
	if filePartials, ok := doc.Get("partials"); ok {
		o.partials = mergePartials(filePartials, o.partials)
	}

	return renderWith(ctx, o, string(source), root)
}

// LoadPartials collects partial templates matching a doublestar glob, keyed
// by file name without extension.
func LoadPartials(ctx context.Context, fsys afero.Fs, pattern string) (data.Value, error) {
	matches, err := doublestar.Glob(afero.NewIOFS(fsys), pattern)
	if err != nil {
		return data.Null(), errors.Errorf("globbing partials %s: %w", pattern, err)
	}

	m := make(map[string]data.Value, len(matches))
	for _, path := range matches {
		body, err := afero.ReadFile(fsys, path)
		if err != nil {
			return data.Null(), errors.Errorf("reading partial %s: %w", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		m[name] = data.Text(string(body))
	}

	zerolog.Ctx(ctx).Debug().Int("partials", len(m)).Str("pattern", pattern).Msg("loaded partials")
	return data.Map(m), nil
}

package render

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRender(t *testing.T, fsys afero.Fs, me *Handler, args []string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	err := me.Run(context.Background(), fsys, cmd, args)
	return out.String(), err
}

func TestRun(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "page.mustache", []byte("Hello {{name}}!"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "data.json", []byte(`{"data": {"name": "World"}}`), 0o644))

	out, err := runRender(t, fsys, &Handler{dataFormat: "json"}, []string{"page.mustache", "data.json"})
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", out)
}

func TestRun_layoutAndPartials(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "page.mustache", []byte("{{>greet}} {{name}}"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "data.json", []byte(`{"data": {"name": "World", "title": "Home"}}`), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "layout.mustache", []byte("[{{title}}] {{content}}"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "partials/greet.mustache", []byte("Hello"), 0o644))

	me := &Handler{dataFormat: "json", partialsGlob: "partials/*.mustache"}
	out, err := runRender(t, fsys, me, []string{"page.mustache", "data.json", "layout.mustache"})
	require.NoError(t, err)
	assert.Equal(t, "[Home] Hello World", out)
}

func TestRun_outFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "page.mustache", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "data.json", []byte(`{"data": {}}`), 0o644))

	me := &Handler{dataFormat: "json", out: "result.txt"}
	stdout, err := runRender(t, fsys, me, []string{"page.mustache", "data.json"})
	require.NoError(t, err)
	assert.Empty(t, stdout)

	written, err := afero.ReadFile(fsys, "result.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(written))
}

func TestRun_badFormat(t *testing.T) {
	_, err := runRender(t, afero.NewMemMapFs(), &Handler{dataFormat: "toml"}, []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown data format")
}

func TestRun_missingTemplate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "data.json", []byte(`{"data": {}}`), 0o644))

	_, err := runRender(t, fsys, &Handler{dataFormat: "json"}, []string{"nope.mustache", "data.json"})
	require.Error(t, err)
}

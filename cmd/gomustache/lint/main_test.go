package lint

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runLint(t *testing.T, fsys afero.Fs, me *Handler, args []string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	err := me.Run(context.Background(), fsys, cmd, args)
	return out.String(), err
}

func TestRun_cleanTemplate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "ok.mustache", []byte("Hello {{name}}\n"), 0o644))

	out, err := runLint(t, fsys, &Handler{}, []string{"ok.mustache"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRun_brokenTemplate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "bad.mustache", []byte("{{#a}}never closed"), 0o644))

	out, err := runLint(t, fsys, &Handler{}, []string{"bad.mustache"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 template(s) failed lint")
	assert.Contains(t, out, "bad.mustache:1:")
	assert.Contains(t, out, "never closed")
}

func TestRun_unknownPartialWarns(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "page.mustache", []byte("{{>missing}}"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "partials/known.mustache", []byte("k"), 0o644))

	me := &Handler{partialsGlob: "partials/*.mustache"}
	out, err := runLint(t, fsys, me, []string{"page.mustache"})
	require.NoError(t, err) // warnings do not fail the lint
	assert.Contains(t, out, `"missing"`)
}

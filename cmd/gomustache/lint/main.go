package lint

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/benjamindblock/go-mustache/pkg/diagnostic"
	"github.com/benjamindblock/go-mustache/pkg/mustache"
)

type Handler struct {
	partialsGlob string
}

func NewLintCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "lint <template-file>...",
		Short: "check mustache templates without rendering them",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.Flags().StringVar(&me.partialsGlob, "partials-glob", "", "doublestar glob of partial files; enables unknown-partial warnings")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), afero.NewOsFs(), cmd, args)
	}

	return cmd
}

var severityColors = map[diagnostic.Severity]*color.Color{
	diagnostic.Error:   color.New(color.FgRed, color.Bold),
	diagnostic.Warning: color.New(color.FgYellow),
	diagnostic.Info:    color.New(color.FgCyan),
	diagnostic.Hint:    color.New(color.FgHiBlack),
}

func (me *Handler) Run(ctx context.Context, fsys afero.Fs, cmd *cobra.Command, args []string) error {
	genOpts := []diagnostic.GeneratorOption{}
	if me.partialsGlob != "" {
		partials, err := mustache.LoadPartials(ctx, fsys, me.partialsGlob)
		if err != nil {
			return err
		}
		genOpts = append(genOpts, diagnostic.WithKnownPartials(partials))
	}
	gen := diagnostic.NewDefaultGenerator(genOpts...)

	failed := 0
	for _, path := range args {
		source, err := afero.ReadFile(fsys, path)
		if err != nil {
			return errors.Errorf("reading template %s: %w", path, err)
		}

		diags, err := gen.Generate(ctx, string(source))
		if err != nil {
			return errors.Errorf("linting %s: %w", path, err)
		}

		me.print(cmd, path, diags)
		if len(diags.Errors) > 0 {
			failed++
		}
	}

	if failed > 0 {
		return errors.Errorf("%d of %d template(s) failed lint", failed, len(args))
	}
	return nil
}

func (me *Handler) print(cmd *cobra.Command, path string, diags *diagnostic.Diagnostics) {
	out := cmd.OutOrStdout()
	groups := []struct {
		severity diagnostic.Severity
		findings []diagnostic.Diagnostic
	}{
		{diagnostic.Error, diags.Errors},
		{diagnostic.Warning, diags.Warnings},
		{diagnostic.Hint, diags.Hints},
	}
	for _, group := range groups {
		tint := severityColors[group.severity]
		for _, finding := range group.findings {
			fmt.Fprintf(out, "%s:%d:%d: %s %s\n",
				path, finding.Line+1, finding.Column+1,
				tint.Sprint(string(group.severity)), finding.Message)
		}
	}
}

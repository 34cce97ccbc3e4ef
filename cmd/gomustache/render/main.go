package render

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/benjamindblock/go-mustache/pkg/cache"
	"github.com/benjamindblock/go-mustache/pkg/mustache"
)

type Handler struct {
	dataFormat   string
	partialsGlob string
	out          string
}

func NewRenderCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "render <template-file> <data-file> [layout-file]",
		Short: "render a mustache template against a data file",
		Long: "Renders a template to stdout. The data file must hold a top-level " +
			"\"data\" key and may hold a \"partials\" key mapping partial names to " +
			"template strings.",
		Args: cobra.RangeArgs(2, 3),
	}

	cmd.Flags().StringVar(&me.dataFormat, "data-format", "json", "data file format (json or yaml)")
	cmd.Flags().StringVar(&me.partialsGlob, "partials-glob", "", "doublestar glob of partial template files, keyed by file stem")
	cmd.Flags().StringVar(&me.out, "out", "", "write output to a file instead of stdout")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), afero.NewOsFs(), cmd, args)
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, fsys afero.Fs, cmd *cobra.Command, args []string) error {
	ctx = zerolog.Ctx(ctx).With().
		Str("render_id", uuid.New().String()).
		Logger().WithContext(ctx)

	opts := []mustache.Option{
		mustache.WithCache(cache.New()),
	}

	switch me.dataFormat {
	case "json":
		opts = append(opts, mustache.WithDataFormat(mustache.FormatJSON))
	case "yaml":
		opts = append(opts, mustache.WithDataFormat(mustache.FormatYAML))
	default:
		return errors.Errorf("unknown data format %q (want json or yaml)", me.dataFormat)
	}

	if me.partialsGlob != "" {
		partials, err := mustache.LoadPartials(ctx, fsys, me.partialsGlob)
		if err != nil {
			return err
		}
		opts = append(opts, mustache.WithPartials(partials))
	}

	if len(args) == 3 {
		layout, err := afero.ReadFile(fsys, args[2])
		if err != nil {
			return errors.Errorf("reading layout %s: %w", args[2], err)
		}
		opts = append(opts, mustache.WithLayout(string(layout)))
	}

	out, err := mustache.RenderFile(ctx, fsys, args[0], args[1], opts...)
	if err != nil {
		return errors.Errorf("rendering %s: %w", args[0], err)
	}

	if me.out != "" {
		if err := afero.WriteFile(fsys, me.out, []byte(out), 0o644); err != nil {
			return errors.Errorf("writing output %s: %w", me.out, err)
		}
		return nil
	}

	if _, err := cmd.OutOrStdout().Write([]byte(out)); err != nil {
		return errors.Errorf("writing output: %w", err)
	}
	return nil
}

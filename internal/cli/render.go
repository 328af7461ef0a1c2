package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	"github.com/matzehuels/facetlayout/pkg/pipeline"
)

// renderFlags holds the render-only flags.
type renderFlags struct {
	output       string
	formats      string
	renderer     string
	padding      float64
	showImplicit bool
}

// renderCommand creates the render command for drawing routed diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		lf layoutFlags
		rf renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [diagram.json]",
		Short: "Route a diagram document and draw it",
		Long: `Route a diagram document and draw it as SVG, PNG or PDF.

Shapes are drawn as plain boxes, connectors as polylines with arrow heads.
Grayed-out connectors are drawn in gray; implicit ones are only drawn with
--show-implicit. PNG and PDF output requires rsvg-convert on PATH.

The dot renderer hands the routed model to graphviz with pinned positions,
which is useful to compare against graphviz output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := c.baseOptions(cfg)
			lf.apply(cmd, &opts)
			rf.apply(cmd, &opts)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), cfg, lf.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			return c.runRender(cmd.Context(), runner, args[0], rf.output, opts)
		},
	}

	cmd.Flags().StringVarP(&rf.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&rf.formats, "format", "f", "", "output format(s): svg (default), png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&rf.renderer, "renderer", "r", pipeline.DefaultRenderer, "renderer: svg, dot")
	cmd.Flags().Float64Var(&rf.padding, "padding", 0, "padding around the diagram (default from config)")
	cmd.Flags().BoolVar(&rf.showImplicit, "show-implicit", false, "draw implicit relationships as dashed lines")
	lf.register(cmd)

	return cmd
}

// apply overrides opts with the render flags the user set explicitly.
func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if len(opts.Formats) == 0 {
		opts.Formats = parseFormats("")
	}
	if changed("renderer") {
		opts.Renderer = f.renderer
	}
	if changed("padding") {
		opts.Render.Padding = f.padding
	}
	if changed("show-implicit") {
		opts.Render.ShowImplicit = f.showImplicit
	}
}

// runRender routes input and writes one file per format.
func (c *CLI) runRender(ctx context.Context, runner *pipeline.Runner, input, output string, opts pipeline.Options) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, data, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render %s: %w", input, err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(input, output, opts.Formats)
	for _, format := range opts.Formats {
		if err := apperrors.ValidateOutputPath(paths[format]); err != nil {
			return err
		}
		if err := os.WriteFile(paths[format], result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
	}

	printSuccess("Rendered %s", opts.Renderer)
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	printStats(result.Stats, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	if result.Warning != nil {
		printWarning("%s", apperrors.UserMessage(result.Warning))
	}
	return nil
}

// outputPaths maps each format to its output file. A single format with an
// explicit output is written there verbatim.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	if input == "-" && output == "" {
		base = "diagram"
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

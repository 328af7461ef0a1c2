package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	fio "github.com/matzehuels/facetlayout/pkg/io"
	"github.com/matzehuels/facetlayout/pkg/pipeline"
)

// layoutFlags are the flags shared by layout and render.
type layoutFlags struct {
	variant        string
	objectDistance float64
	lineWidth      float64
	fontSize       float64
	noCache        bool
	refresh        bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	d := pipeline.Options{}
	d.SetLayoutDefaults()

	cmd.Flags().StringVar(&f.variant, "variant", "", "layouter: standard, void, communication, 1d (default: from diagram type)")
	cmd.Flags().Float64Var(&f.objectDistance, "object-distance", d.Sizes.ObjectDistance, "minimum distance between shapes and lines")
	cmd.Flags().Float64Var(&f.lineWidth, "line-width", d.Sizes.LineWidth, "connector line width")
	cmd.Flags().Float64Var(&f.fontSize, "font-size", d.Sizes.FontSize, "label font size")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
}

// apply overrides opts with the flags the user set explicitly.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("variant") {
		opts.Variant = f.variant
	}
	if changed("object-distance") {
		opts.Sizes.ObjectDistance = f.objectDistance
	}
	if changed("line-width") {
		opts.Sizes.LineWidth = f.lineWidth
	}
	if changed("font-size") {
		opts.Sizes.FontSize = f.fontSize
	}
	opts.Refresh = f.refresh
}

// layoutCommand creates the layout command for routing a diagram document.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "layout [diagram.json]",
		Short: "Route the relationships of a diagram document",
		Long: `Route the relationships of a diagram document.

The layout command reads a diagram document with placed classifiers and
features, routes every relationship around the shapes, and writes the
connectors to a layout file (default: <input>.layout.json).

With --watch the document is re-routed whenever it changes. Box moves reuse
the loaded model; structural edits rebuild it.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := c.baseOptions(cfg)
			opts.Formats = nil
			flags.apply(cmd, &opts)

			outputPath := output
			if outputPath == "" {
				outputPath = basePath("", args[0]) + ".layout.json"
			}
			if err := apperrors.ValidateOutputPath(outputPath); err != nil {
				return err
			}

			if watch {
				return c.watchLayout(cmd.Context(), args[0], outputPath, opts)
			}

			runner, err := c.newRunner(cmd.Context(), cfg, flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			return c.runLayout(cmd.Context(), runner, args[0], outputPath, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-route whenever the document changes")
	flags.register(cmd)

	return cmd
}

// runLayout routes the document at input and writes its layout.
func (c *CLI) runLayout(ctx context.Context, runner *pipeline.Runner, input, outputPath string, opts pipeline.Options) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Routing relationships...")
	spinner.Start()

	result, err := runner.Execute(ctx, data, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("layout %s: %w", input, err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := fio.ExportLayout(result.Layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats, result.CacheInfo.LayoutHit)
	if result.Warning != nil {
		printWarning("%s", apperrors.UserMessage(result.Warning))
	}
	printNextStep("Preview", appName+" render "+input)

	return nil
}

// readInput reads a diagram document from path, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "document %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tablelayout/pkg/pipeline"
)

// renderCommand creates the render command for writing output files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		opts       pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Render a document to SVG, PNG, JSON or DOT",
		Long: `Render a document to SVG, PNG, JSON or DOT.

The document is imposed at the given frame extent and written in each
requested format. A single format is written to --output when given;
several formats are written next to it (or next to the input) with the
format as extension. The graphviz format lays out the DOT output with
Graphviz and writes SVG.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json, dot, graphviz (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")

	cmd.Flags().Float64Var(&opts.Width, "width", 0, "frame width (default: document width or 800)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "frame height (default: document height or 600)")
	cmd.Flags().BoolVar(&opts.Slots, "slots", false, "outline each cell's slot")
	cmd.Flags().BoolVar(&opts.Grid, "grid", false, "draw column and row lines (svg)")
	cmd.Flags().BoolVar(&opts.NoLabels, "no-labels", false, "omit cell labels")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "pixels per layout unit (png)")

	return cmd
}

// runRender loads the document, runs the pipeline and writes each artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	doc, err := pipeline.LoadFile(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", doc.Name))
	spinner.Start()

	result, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, outputPaths(input, output, opts.Formats))
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", doc.Name)
	if result.Stats.BoxCount == 0 {
		printWarning("Document has no visible cells")
	}
	for _, p := range paths {
		printFile(p)
	}
	fmt.Println(statsLine(len(result.Layout.Columns), len(result.Layout.Rows), result.Stats.BoxCount,
		result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit))
	return nil
}

// writeArtifacts writes each artifact to its path and returns the paths written, sorted.
func writeArtifacts(artifacts map[string][]byte, paths map[string]string) ([]string, error) {
	written := make([]string, 0, len(paths))
	for format, path := range paths {
		data, ok := artifacts[format]
		if !ok {
			return nil, fmt.Errorf("no %s output produced", format)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	sort.Strings(written)
	return written, nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tablelayout/pkg/pipeline"
	"github.com/matzehuels/tablelayout/pkg/render/layout"
)

// imposeCommand creates the impose command, which prints cell placements.
func (c *CLI) imposeCommand() *cobra.Command {
	var (
		asJSON  bool
		noCache bool
		refresh bool
		opts    pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "impose [document]",
		Short: "Impose a document and print each cell's placement",
		Long: `Impose a document and print each cell's placement.

The document is read from a .toml, .json or .lua file and imposed at the
given frame extent. Width and height default to the document's own extent,
then to 800x600.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Refresh = refresh
			return c.runImpose(cmd.Context(), cmd.OutOrStdout(), args[0], opts, asJSON, noCache)
		},
	}

	cmd.Flags().Float64Var(&opts.Width, "width", 0, "frame width (default: document width or 800)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "frame height (default: document height or 600)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// runImpose loads the document, imposes it and writes the placements to w.
func (c *CLI) runImpose(ctx context.Context, w io.Writer, input string, opts pipeline.Options, asJSON, noCache bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	doc, err := pipeline.LoadFile(ctx, input)
	if err != nil {
		return err
	}
	logger.Debug("loaded document", "name", doc.Name, "cells", doc.CellCount())

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	l, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := layout.Marshal(l)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	prog.done("Imposed " + doc.Name)
	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("%s  %gx%g", doc.Name, l.FrameWidth, l.FrameHeight)))
	fmt.Fprintln(w, placementTable(l))
	fmt.Fprintln(w, statsLine(len(l.Columns), len(l.Rows), len(l.Boxes), cacheHit))
	return nil
}

// placementTable renders the layout's boxes as a bordered table.
// Ghost cells are not part of the layout and never appear.
func placementTable(l layout.Layout) string {
	rows := make([][]string, 0, len(l.Boxes))
	for _, b := range l.Boxes {
		rows = append(rows, []string{
			b.ID,
			b.Label,
			strconv.Itoa(b.Row),
			strconv.Itoa(b.Column),
			strconv.Itoa(b.Colspan),
			formatNumber(b.X),
			formatNumber(b.Y),
			formatNumber(b.Width),
			formatNumber(b.Height),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	numberStyle := StyleNumber.Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Label", "Row", "Col", "Span", "X", "Y", "W", "H").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col >= 5:
				return numberStyle
			}
			return cellStyle
		})
	return t.Render()
}

// formatNumber prints a coordinate with at most two decimals.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// statsLine summarizes a layout on a single line.
func statsLine(columns, rows, boxes int, cached bool) string {
	status := styleComputed.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}
	sep := StyleDim.Render(" · ")
	return "  " + StyleDim.Render(fmt.Sprintf("%d columns", columns)) + sep +
		StyleDim.Render(fmt.Sprintf("%d rows", rows)) + sep +
		StyleDim.Render(fmt.Sprintf("%d cells", boxes)) + sep + status
}

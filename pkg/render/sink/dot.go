package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tablelayout/pkg/render/layout"
)

// pointsPerInch converts layout units to Graphviz node sizes.
const pointsPerInch = 72.0

// ToDOT converts a layout to a Graphviz graph whose nodes are pinned at the
// box positions. Graphviz puts the origin bottom-left, so y is flipped
// against the frame height. The result renders with [RenderDOT].
func ToDOT(l layout.Layout) string {
	h := max(l.FrameHeight, l.ContentHeight())

	var buf bytes.Buffer
	buf.WriteString("graph layout {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  node [shape=box, style=filled, fixedsize=true, fontsize=10, fontname=\"monospace\", color=\"#333333\"];\n")
	buf.WriteString("\n")

	for _, b := range l.Boxes {
		label := b.Label
		if label == "" {
			label = b.ID
		}
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%s,%s!\", width=%s, height=%s, fillcolor=%q];\n",
			b.ID, label,
			fmtFloat(b.CenterX()), fmtFloat(h-b.CenterY()),
			fmtFloat(b.Width/pointsPerInch), fmtFloat(b.Height/pointsPerInch),
			fillColor(b))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderDOT renders a DOT graph to SVG with the neato engine, which honours
// pinned positions.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element to unitless dimensions so the
// output scales like [RenderSVG].
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/tablelayout/pkg/render/layout"
)

const (
	svgFontFamily = "ui-monospace, monospace"
	svgFontSize   = 12.0
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	slots  bool
	grid   bool
	labels bool
}

// WithSlots outlines the area allotted to each box.
func WithSlots() SVGOption { return func(r *svgRenderer) { r.slots = true } }

// WithGrid draws the resolved column and row boundaries.
func WithGrid() SVGOption { return func(r *svgRenderer) { r.grid = true } }

// WithoutLabels omits box labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// RenderSVG draws the layout as an SVG document covering the frame, or the
// content when it overflows the frame. Boxes get the element id "box-<id>".
// A box without a label is captioned with its id.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := max(l.FrameWidth, l.ContentWidth()), max(l.FrameHeight, l.ContentHeight())

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	if l.Name != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(l.Name))
	}
	fmt.Fprintf(&buf, `  <rect class="frame" x="0" y="0" width="%.2f" height="%.2f" fill="white" stroke="#999" stroke-dasharray="4 2"/>`+"\n",
		l.FrameWidth, l.FrameHeight)

	if r.grid {
		renderGrid(&buf, l)
	}
	for _, b := range l.Boxes {
		if r.slots {
			fmt.Fprintf(&buf, `  <rect class="slot" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="#c0c0c0" stroke-dasharray="2 2"/>`+"\n",
				b.Slot.X, b.Slot.Y, b.Slot.Width, b.Slot.Height)
		}
		fmt.Fprintf(&buf, `  <rect id="box-%s" class="box" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="#333"/>`+"\n",
			escapeXML(b.ID), b.X, b.Y, b.Width, b.Height, fillColor(b))
	}
	if r.labels {
		for _, b := range l.Boxes {
			renderLabel(&buf, b)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderGrid(buf *bytes.Buffer, l layout.Layout) {
	h := l.ContentHeight()
	var x float64
	for _, cw := range l.Columns[:max(len(l.Columns)-1, 0)] {
		x += cw
		fmt.Fprintf(buf, `  <line class="grid" x1="%.2f" y1="0" x2="%.2f" y2="%.2f" stroke="#e0e0e0"/>`+"\n", x, x, h)
	}
	w := l.ContentWidth()
	var y float64
	for _, rh := range l.Rows[:max(len(l.Rows)-1, 0)] {
		y += rh
		fmt.Fprintf(buf, `  <line class="grid" x1="0" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#e0e0e0"/>`+"\n", y, w, y)
	}
}

func renderLabel(buf *bytes.Buffer, b layout.Box) {
	text := b.Label
	if text == "" {
		text = b.ID
	}
	if b.Width <= 0 || b.Height <= 0 {
		return
	}
	lines := strings.Split(text, "\n")
	top := b.CenterY() - float64(len(lines)-1)*svgFontSize/2
	for i, line := range lines {
		fmt.Fprintf(buf, `  <text class="label" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%.0f">%s</text>`+"\n",
			b.CenterX(), top+float64(i)*svgFontSize, svgFontFamily, svgFontSize, escapeXML(line))
	}
}

// palette cycles per row so adjacent rows are distinguishable.
var palette = []string{"#dbeafe", "#dcfce7", "#fef3c7", "#fce7f3", "#ede9fe", "#e0f2fe"}

func fillColor(b layout.Box) string {
	return palette[b.Row%len(palette)]
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

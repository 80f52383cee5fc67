package sink

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/tablelayout/pkg/errors"
	"github.com/matzehuels/tablelayout/pkg/program"
	"github.com/matzehuels/tablelayout/pkg/render/layout"
)

// maxPNGPixels caps the raster size.
const maxPNGPixels = 64 << 20

// PNGOption configures PNG rendering via [RenderPNG].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale  float64
	slots  bool
	labels bool
}

// WithScale sets the raster scale factor (default 1). Labels are drawn with a
// fixed bitmap face and do not scale.
func WithScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// WithPNGSlots outlines the area allotted to each box.
func WithPNGSlots() PNGOption { return func(r *pngRenderer) { r.slots = true } }

// WithoutPNGLabels omits box labels.
func WithoutPNGLabels() PNGOption { return func(r *pngRenderer) { r.labels = false } }

var (
	pngFrame  = color.RGBA{0x99, 0x99, 0x99, 0xff}
	pngSlot   = color.RGBA{0xc0, 0xc0, 0xc0, 0xff}
	pngBorder = color.RGBA{0x33, 0x33, 0x33, 0xff}
	pngText   = color.RGBA{0x11, 0x11, 0x11, 0xff}
)

// RenderPNG rasterises the layout in process. It draws the same picture as
// [RenderSVG] without grid lines.
func RenderPNG(l layout.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1, labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 || math.IsNaN(r.scale) || math.IsInf(r.scale, 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %g", r.scale)
	}

	w := math.Ceil(max(l.FrameWidth, l.ContentWidth()) * r.scale)
	h := math.Ceil(max(l.FrameHeight, l.ContentHeight()) * r.scale)
	if w*h > maxPNGPixels {
		return nil, errors.New(errors.ErrCodeInvalidExtent, "png too large: %.0fx%.0f", w, h)
	}

	img := image.NewRGBA(image.Rect(0, 0, max(int(w), 1), max(int(h), 1)))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	strokeRect(img, r.rect(layout.Rect{Width: l.FrameWidth, Height: l.FrameHeight}), pngFrame)

	for _, b := range l.Boxes {
		if r.slots {
			strokeRect(img, r.rect(b.Slot), pngSlot)
		}
		box := r.rect(b.Rect)
		draw.Draw(img, box, image.NewUniform(hexColor(fillColor(b))), image.Point{}, draw.Src)
		strokeRect(img, box, pngBorder)
	}

	if r.labels {
		d := &font.Drawer{Dst: img, Src: image.NewUniform(pngText), Face: program.LabelFace}
		for _, b := range l.Boxes {
			r.drawLabel(d, b)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *pngRenderer) rect(rc layout.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(rc.X*r.scale)),
		int(math.Round(rc.Y*r.scale)),
		int(math.Round(rc.Right()*r.scale)),
		int(math.Round(rc.Bottom()*r.scale)),
	)
}

func (r *pngRenderer) drawLabel(d *font.Drawer, b layout.Box) {
	text := b.Label
	if text == "" {
		text = b.ID
	}
	if b.Width <= 0 || b.Height <= 0 {
		return
	}

	m := d.Face.Metrics()
	lineHeight := m.Height.Ceil()
	lines := strings.Split(text, "\n")
	top := int(math.Round(b.CenterY()*r.scale)) - lineHeight*len(lines)/2
	cx := int(math.Round(b.CenterX() * r.scale))

	for i, line := range lines {
		adv := d.MeasureString(line).Ceil()
		d.Dot = fixed.Point26_6{
			X: fixed.I(cx - adv/2),
			Y: fixed.I(top + i*lineHeight + m.Ascent.Ceil()),
		}
		d.DrawString(line)
	}
}

func strokeRect(img draw.Image, rc image.Rectangle, c color.Color) {
	if rc.Empty() {
		return
	}
	src := image.NewUniform(c)
	for _, edge := range []image.Rectangle{
		image.Rect(rc.Min.X, rc.Min.Y, rc.Max.X, rc.Min.Y+1),
		image.Rect(rc.Min.X, rc.Max.Y-1, rc.Max.X, rc.Max.Y),
		image.Rect(rc.Min.X, rc.Min.Y, rc.Min.X+1, rc.Max.Y),
		image.Rect(rc.Max.X-1, rc.Min.Y, rc.Max.X, rc.Max.Y),
	} {
		draw.Draw(img, edge, src, image.Point{}, draw.Src)
	}
}

// hexColor parses "#rrggbb".
func hexColor(s string) color.RGBA {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil {
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}

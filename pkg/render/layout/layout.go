// Package layout holds the computed geometry of an imposed layout document.
//
// [Compute] builds a document into a table program, imposes it at a frame
// size and collects what the placement callbacks report into a [Layout]:
// one [Box] per placed cell in program order, plus the resolved column
// widths and row heights. A Layout is plain data. Renderers in
// [github.com/matzehuels/tablelayout/pkg/render/sink] consume it and the
// pipeline caches it as JSON.
package layout

import (
	"encoding/json"

	"github.com/matzehuels/tablelayout/pkg/errors"
	"github.com/matzehuels/tablelayout/pkg/program"
)

// Rect is an axis-aligned rectangle with its origin at the top-left.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Box is the placement of one cell.
type Box struct {
	ID      string `json:"id"`
	Label   string `json:"label,omitempty"`
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	Colspan int    `json:"colspan"`
	// Slot is the area allotted to the cell: its spanned columns by its row.
	Slot Rect `json:"slot"`
	// Rect is the cell's fitted box inside Slot.
	Rect
}

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 { return b.Y + b.Height/2 }

// Layout is the result of imposing a document at a frame size.
type Layout struct {
	Name        string    `json:"name,omitempty"`
	FrameWidth  float64   `json:"frame_width"`
	FrameHeight float64   `json:"frame_height"`
	Columns     []float64 `json:"columns"`
	Rows        []float64 `json:"rows"`
	Boxes       []Box     `json:"boxes"`
}

// ContentWidth returns the summed column widths. It differs from
// FrameWidth when no column expands or the program could not shrink.
func (l Layout) ContentWidth() float64 { return sum(l.Columns) }

// ContentHeight returns the summed row heights.
func (l Layout) ContentHeight() float64 { return sum(l.Rows) }

// Box returns the box with the given id.
func (l Layout) Box(id string) (Box, bool) {
	for _, b := range l.Boxes {
		if b.ID == id {
			return b, true
		}
	}
	return Box{}, false
}

// Compute imposes doc at width by height and collects the placements.
//
// Ghost cells produce no box. A document without columns yields an empty
// layout, not an error.
func Compute(doc *program.Document, width, height float64) (Layout, error) {
	if err := errors.ValidateExtent(width, height); err != nil {
		return Layout{}, err
	}

	l := Layout{
		Name:        doc.Name,
		FrameWidth:  width,
		FrameHeight: height,
		Columns:     []float64{},
		Rows:        []float64{},
		Boxes:       []Box{},
	}

	var colX, rowY []float64
	t, _, err := program.Build(doc, func(s program.Slot, x, y, w, h float64) {
		slot := Rect{X: colX[s.Column], Y: rowY[s.Row], Height: l.Rows[s.Row]}
		for _, cw := range l.Columns[s.Column : s.Column+s.Colspan] {
			slot.Width += cw
		}
		l.Boxes = append(l.Boxes, Box{
			ID:      s.ID,
			Label:   s.Label,
			Row:     s.Row,
			Column:  s.Column,
			Colspan: s.Colspan,
			Slot:    slot,
			Rect:    Rect{X: x, Y: y, Width: w, Height: h},
		})
	})
	if err != nil {
		return Layout{}, err
	}

	sol := t.Solve(width, height)
	if sol == nil {
		return l, nil
	}
	l.Columns, l.Rows = sol.Columns, sol.Rows
	colX, rowY = offsets(l.Columns), offsets(l.Rows)

	t.Impose(width, height)
	return l, nil
}

// Marshal encodes a layout as JSON.
func Marshal(l Layout) ([]byte, error) {
	return json.Marshal(l)
}

// Unmarshal decodes a layout produced by Marshal.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	return l, nil
}

// offsets returns the running start position of each line.
func offsets(sizes []float64) []float64 {
	out := make([]float64, len(sizes))
	var acc float64
	for i, s := range sizes {
		out[i] = acc
		acc += s
	}
	return out
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

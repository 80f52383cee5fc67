package sink

import (
	"encoding/json"

	"github.com/matzehuels/tablelayout/pkg/render/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	slots bool
	lines bool
}

// WithJSONSlots includes each box's allotted slot in the output.
func WithJSONSlots() JSONOption { return func(r *jsonRenderer) { r.slots = true } }

// WithJSONLines includes the resolved column widths and row heights.
func WithJSONLines() JSONOption { return func(r *jsonRenderer) { r.lines = true } }

type jsonOutput struct {
	Name    string    `json:"name,omitempty"`
	Width   float64   `json:"width"`
	Height  float64   `json:"height"`
	Columns []float64 `json:"columns,omitempty"`
	Rows    []float64 `json:"rows,omitempty"`
	Boxes   []jsonBox `json:"boxes"`
}

type jsonBox struct {
	ID      string       `json:"id"`
	Label   string       `json:"label,omitempty"`
	Row     int          `json:"row"`
	Column  int          `json:"column"`
	Colspan int          `json:"colspan"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Slot    *layout.Rect `json:"slot,omitempty"`
}

// RenderJSON exports the layout as a pretty-printed JSON document with one
// entry per placed box in program order.
func RenderJSON(l layout.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Name:   l.Name,
		Width:  l.FrameWidth,
		Height: l.FrameHeight,
		Boxes:  make([]jsonBox, 0, len(l.Boxes)),
	}
	if r.lines {
		out.Columns, out.Rows = l.Columns, l.Rows
	}
	for _, b := range l.Boxes {
		jb := jsonBox{
			ID: b.ID, Label: b.Label,
			Row: b.Row, Column: b.Column, Colspan: b.Colspan,
			X: b.X, Y: b.Y, Width: b.Width, Height: b.Height,
		}
		if r.slots {
			slot := b.Slot
			jb.Slot = &slot
		}
		out.Boxes = append(out.Boxes, jb)
	}
	return json.MarshalIndent(out, "", "  ")
}

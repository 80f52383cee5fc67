package program

import (
	"strconv"

	"github.com/matzehuels/tablelayout/pkg/table"
)

// Slot identifies one cell of a built program.
type Slot struct {
	// Index is the cell's position in program order.
	Index int `json:"index"`
	// ID is the cell's id, or a generated "cell-<row>-<n>" when unset.
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	// Row and Column locate the cell's first grid column.
	Row     int `json:"row"`
	Column  int `json:"column"`
	Colspan int `json:"colspan"`
}

// Ghost reports whether the slot occupies no columns.
func (s Slot) Ghost() bool { return s.Colspan == 0 }

// PlaceFunc receives the geometry of a built slot when the program is imposed.
type PlaceFunc func(slot Slot, x, y, width, height float64)

// Build validates doc and turns it into a table program.
//
// Defaults are installed first. Row and column templates start from the
// global cell template, so a document can set padding once and override only
// the flags per column. Each cell then starts from the program's default at
// its position and overlays its own spec. A labelled cell with no preferred
// size, neither its own nor inherited, is sized to fit its label.
//
// Rows are separated by row breaks; no break follows the last row. When
// place is non-nil every cell's callback forwards to it with the cell's slot.
func Build(doc *Document, place PlaceFunc) (*table.TableLayout, []Slot, error) {
	if err := doc.Validate(); err != nil {
		return nil, nil, err
	}

	t := table.New()
	base := table.NewCellProperties()
	if doc.Defaults.Cell != nil {
		base = apply(base, *doc.Defaults.Cell)
		t.SetCellDefaults(base)
	}
	for key, spec := range doc.Defaults.Rows {
		i, _ := strconv.Atoi(key)
		t.SetRowDefaults(i, apply(base, spec))
	}
	for key, spec := range doc.Defaults.Columns {
		i, _ := strconv.Atoi(key)
		t.SetColumnDefaults(i, apply(base, spec))
	}

	slots := make([]Slot, 0, doc.CellCount())
	for ri, row := range doc.Rows {
		if ri > 0 {
			t.AddRow()
		}
		for ci, spec := range row.Cells {
			p := apply(t.DefaultCell(), spec)
			if spec.Label != "" && spec.Preferred == nil && p.Size.Preferred == (table.Size{}) {
				p = p.PreferredSize(MeasureLabel(spec.Label))
			}

			_, col := t.Cursor()
			slot := Slot{
				Index:   len(slots),
				ID:      spec.ID,
				Label:   spec.Label,
				Row:     ri,
				Column:  col,
				Colspan: int(p.Colspan),
			}
			if slot.ID == "" {
				slot.ID = generatedID(ri, ci)
			}
			if place != nil {
				p = p.WithCallback(func(x, y, w, h float64) {
					place(slot, x, y, w, h)
				})
			}
			t.AddCell(p)
			slots = append(slots, slot)
		}
	}
	return t, slots, nil
}

// apply overlays the set fields of spec onto p. spec must be valid.
func apply(p table.CellProperties, spec CellSpec) table.CellProperties {
	if v := spec.Minimum; v != nil {
		p = p.MinimumSize(table.Size{Width: v[0], Height: v[1]})
	}
	if v := spec.Preferred; v != nil {
		p = p.PreferredSize(table.Size{Width: v[0], Height: v[1]})
	}
	if v := spec.Maximum; v != nil {
		p = p.MaximumSize(table.Size{Width: v[0], Height: v[1]})
	}
	switch v := spec.Padding; len(v) {
	case 1:
		p = p.PaddingAll(v[0])
	case 4:
		p = p.WithPadding(table.Rectangle{Top: v[0], Left: v[1], Bottom: v[2], Right: v[3]})
	}
	if spec.Colspan != nil {
		p = p.WithColspan(uint8(*spec.Colspan))
	}
	if flags, err := table.ParseFlags(spec.Flags); err == nil {
		p = p.WithFlags(flags)
	}
	return p
}

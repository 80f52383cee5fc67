package table

import "math"

// SizeGrouping combines the minimum, preferred and maximum sizes of a cell,
// or the accumulated constraints of a column or row.
//
// The intended ordering is Minimum <= Preferred <= Maximum. It is not
// enforced.
type SizeGrouping struct {
	Minimum   Size
	Preferred Size
	Maximum   Size
}

// DefaultSizeGrouping returns the unconstrained grouping: zero minimum and
// preferred sizes and an infinite maximum.
func DefaultSizeGrouping() SizeGrouping {
	return SizeGrouping{
		Maximum: Size{Width: math.Inf(1), Height: math.Inf(1)},
	}
}

// Join merges two groupings. The stricter lower bound wins for the minimum,
// the larger preferred size wins, and the stricter upper bound wins for the
// maximum.
func Join(a, b SizeGrouping) SizeGrouping {
	return SizeGrouping{
		Minimum:   JoinMax(a.Minimum, b.Minimum),
		Preferred: JoinMax(a.Preferred, b.Preferred),
		Maximum:   JoinMin(a.Maximum, b.Maximum),
	}
}

// Spread divides every size in g by divisions.
func (g SizeGrouping) Spread(divisions float64) SizeGrouping {
	return SizeGrouping{
		Minimum:   g.Minimum.Spread(divisions),
		Preferred: g.Preferred.Spread(divisions),
		Maximum:   g.Maximum.Spread(divisions),
	}
}

// Padded adds the padding in r to every size in g.
func (g SizeGrouping) Padded(r Rectangle) SizeGrouping {
	return SizeGrouping{
		Minimum:   g.Minimum.Padded(r),
		Preferred: g.Preferred.Padded(r),
		Maximum:   g.Maximum.Padded(r),
	}
}

// BoxFit fits an item sized by g into area according to the fill, anchor and
// padding settings of props. It returns the box position relative to the
// top-left corner of area, followed by its width and height.
//
// Without fill the box keeps its preferred size; with fill it grows up to its
// maximum. Either way it never exceeds the padded interior of area. Anchors
// default to top-left.
func (g SizeGrouping) BoxFit(area Size, props CellProperties) (x, y, w, h float64) {
	pad := props.Padding

	if props.Flags.Has(FillHorizontal) {
		w = min(g.Maximum.Width, area.Width-pad.Horizontal())
	} else {
		w = min(g.Preferred.Width, area.Width-pad.Horizontal())
	}

	if props.Flags.Has(FillVertical) {
		h = min(g.Maximum.Height, area.Height-pad.Vertical())
	} else {
		h = min(g.Preferred.Height, area.Height-pad.Vertical())
	}

	switch {
	case props.Flags.Has(AnchorRight):
		x = area.Width - pad.Right - w
	case props.Flags.Has(AnchorHorizontalCenter):
		// Padding sits outside the centre line.
		x = area.Width/2 - w/2
	default:
		x = pad.Left
	}

	switch {
	case props.Flags.Has(AnchorBottom):
		y = area.Height - pad.Bottom - h
	case props.Flags.Has(AnchorVerticalCenter):
		y = area.Height/2 - h/2
	default:
		y = pad.Top
	}

	return x, y, w, h
}

package table

// PlaceFunc receives the final geometry of a cell: x and y in the caller's
// coordinate space (origin top-left, y growing downward), then width and
// height.
type PlaceFunc func(x, y, width, height float64)

// CellProperties is the complete constraint record of one cell.
//
// A Colspan of 0 is a ghost cell: it occupies no space and is skipped by every
// pass of the engine.
type CellProperties struct {
	// Size holds the desired sizes for this cell.
	Size SizeGrouping
	// Flags holds the expansion, fill and anchor behaviour.
	Flags CellFlags
	// Colspan is the number of columns this cell occupies.
	Colspan uint8
	// Padding is the space deliberately left around the cell's box.
	Padding Rectangle
	// Callback receives the cell's geometry once per Impose. It is never
	// copied by Clone, so templates cannot share a callback.
	Callback PlaceFunc
}

// NewCellProperties returns the default cell: unconstrained size, no flags,
// a span of one column and no padding.
func NewCellProperties() CellProperties {
	return CellProperties{
		Size:    DefaultSizeGrouping(),
		Colspan: 1,
	}
}

// Clone returns a copy of p without its callback.
func (p CellProperties) Clone() CellProperties {
	p.Callback = nil
	return p
}

// MinimumSize sets the minimum size.
func (p CellProperties) MinimumSize(s Size) CellProperties {
	p.Size.Minimum = s
	return p
}

// MaximumSize sets the maximum size.
func (p CellProperties) MaximumSize(s Size) CellProperties {
	p.Size.Maximum = s
	return p
}

// PreferredSize sets the preferred size.
func (p CellProperties) PreferredSize(s Size) CellProperties {
	p.Size.Preferred = s
	return p
}

// WithFlags adds f to the cell's flags.
func (p CellProperties) WithFlags(f CellFlags) CellProperties {
	p.Flags |= f
	return p
}

// Expand grows the cell's columns and rows with surplus space.
func (p CellProperties) Expand() CellProperties { return p.WithFlags(Expand) }

// ExpandHorizontal grows the cell's columns with surplus width.
func (p CellProperties) ExpandHorizontal() CellProperties { return p.WithFlags(ExpandHorizontal) }

// ExpandVertical grows the cell's row with surplus height.
func (p CellProperties) ExpandVertical() CellProperties { return p.WithFlags(ExpandVertical) }

// Fill stretches the cell over its whole area, up to its maximum size.
func (p CellProperties) Fill() CellProperties { return p.WithFlags(Fill) }

// FillHorizontal stretches the cell across its area's width.
func (p CellProperties) FillHorizontal() CellProperties { return p.WithFlags(FillHorizontal) }

// FillVertical stretches the cell across its area's height.
func (p CellProperties) FillVertical() CellProperties { return p.WithFlags(FillVertical) }

// AnchorTop aligns the cell with the top of its area.
func (p CellProperties) AnchorTop() CellProperties { return p.WithFlags(AnchorTop) }

// AnchorBottom aligns the cell with the bottom of its area.
func (p CellProperties) AnchorBottom() CellProperties { return p.WithFlags(AnchorBottom) }

// AnchorLeft aligns the cell with the left edge of its area.
func (p CellProperties) AnchorLeft() CellProperties { return p.WithFlags(AnchorLeft) }

// AnchorRight aligns the cell with the right edge of its area.
func (p CellProperties) AnchorRight() CellProperties { return p.WithFlags(AnchorRight) }

// AnchorCenter centers the cell on both axes.
func (p CellProperties) AnchorCenter() CellProperties { return p.WithFlags(AnchorCenter) }

// Uniform sets the uniform flag. It does not change geometry.
func (p CellProperties) Uniform() CellProperties { return p.WithFlags(Uniform) }

// AnchorHorizontalCenter centers the cell horizontally in its area.
func (p CellProperties) AnchorHorizontalCenter() CellProperties {
	return p.WithFlags(AnchorHorizontalCenter)
}

// AnchorVerticalCenter centers the cell vertically in its area.
func (p CellProperties) AnchorVerticalCenter() CellProperties {
	return p.WithFlags(AnchorVerticalCenter)
}

// WithColspan sets how many columns the cell occupies.
func (p CellProperties) WithColspan(span uint8) CellProperties {
	p.Colspan = span
	return p
}

// WithPadding replaces all four padding offsets.
func (p CellProperties) WithPadding(r Rectangle) CellProperties {
	p.Padding = r
	return p
}

// PaddingAll sets the same padding on every side.
func (p CellProperties) PaddingAll(v float64) CellProperties {
	p.Padding = Pad(v)
	return p
}

// PaddingTop sets the top padding.
func (p CellProperties) PaddingTop(v float64) CellProperties {
	p.Padding.Top = v
	return p
}

// PaddingLeft sets the left padding.
func (p CellProperties) PaddingLeft(v float64) CellProperties {
	p.Padding.Left = v
	return p
}

// PaddingBottom sets the bottom padding.
func (p CellProperties) PaddingBottom(v float64) CellProperties {
	p.Padding.Bottom = v
	return p
}

// PaddingRight sets the right padding.
func (p CellProperties) PaddingRight(v float64) CellProperties {
	p.Padding.Right = v
	return p
}

// WithCallback sets the placement callback.
func (p CellProperties) WithCallback(fn PlaceFunc) CellProperties {
	p.Callback = fn
	return p
}

package table

// Size is a width and height pair. Values are meaningful when non-negative.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rectangle holds four independent padding offsets.
type Rectangle struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// Pad returns a Rectangle with v on every side.
func Pad(v float64) Rectangle {
	return Rectangle{Top: v, Left: v, Bottom: v, Right: v}
}

// Horizontal returns the combined left and right padding.
func (r Rectangle) Horizontal() float64 { return r.Left + r.Right }

// Vertical returns the combined top and bottom padding.
func (r Rectangle) Vertical() float64 { return r.Top + r.Bottom }

// JoinMax returns the per-axis maximum of a and b.
func JoinMax(a, b Size) Size {
	return Size{
		Width:  max(a.Width, b.Width),
		Height: max(a.Height, b.Height),
	}
}

// JoinMin returns the per-axis minimum of a and b.
func JoinMin(a, b Size) Size {
	return Size{
		Width:  min(a.Width, b.Width),
		Height: min(a.Height, b.Height),
	}
}

// Spread divides both axes by divisions. It is used when a size is shared
// across several table columns.
func (s Size) Spread(divisions float64) Size {
	return Size{
		Width:  s.Width / divisions,
		Height: s.Height / divisions,
	}
}

// Padded grows s by the padding in r.
func (s Size) Padded(r Rectangle) Size {
	return Size{
		Width:  s.Width + r.Horizontal(),
		Height: s.Height + r.Vertical(),
	}
}

// Within reports whether s fits strictly inside other.
func (s Size) Within(other Size) bool {
	return other.Width > s.Width && other.Height > s.Height
}

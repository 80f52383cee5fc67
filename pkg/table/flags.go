package table

import (
	"strings"

	"github.com/matzehuels/tablelayout/pkg/errors"
)

// CellFlags is a set of independent cell behaviours. Flags combine by union.
// The zero value anchors the cell top-left with no expansion and no fill.
type CellFlags uint16

const (
	// ExpandHorizontal lets the cell's columns absorb surplus width.
	ExpandHorizontal CellFlags = 1 << iota
	// ExpandVertical lets the cell's row absorb surplus height.
	ExpandVertical
	// FillHorizontal grows the cell's box up to its maximum width.
	FillHorizontal
	// FillVertical grows the cell's box up to its maximum height.
	FillVertical
	// AnchorTop anchors the box to the top of its area.
	AnchorTop
	// AnchorBottom anchors the box to the bottom of its area.
	AnchorBottom
	// AnchorLeft anchors the box to the left of its area.
	AnchorLeft
	// AnchorRight anchors the box to the right of its area.
	AnchorRight
	// AnchorHorizontalCenter centres the box horizontally.
	AnchorHorizontalCenter
	// AnchorVerticalCenter centres the box vertically.
	AnchorVerticalCenter
	// Uniform marks the cell as sized like every other uniform cell.
	// It is carried through the program but does not affect geometry.
	Uniform
)

// Composite flag sets.
const (
	None         CellFlags = 0
	Expand                 = ExpandHorizontal | ExpandVertical
	Fill                   = FillHorizontal | FillVertical
	AnchorCenter           = AnchorHorizontalCenter | AnchorVerticalCenter
)

// flagNames lists the single-bit flags in declaration order.
var flagNames = []struct {
	name string
	flag CellFlags
}{
	{"expand-horizontal", ExpandHorizontal},
	{"expand-vertical", ExpandVertical},
	{"fill-horizontal", FillHorizontal},
	{"fill-vertical", FillVertical},
	{"anchor-top", AnchorTop},
	{"anchor-bottom", AnchorBottom},
	{"anchor-left", AnchorLeft},
	{"anchor-right", AnchorRight},
	{"anchor-horizontal-center", AnchorHorizontalCenter},
	{"anchor-vertical-center", AnchorVerticalCenter},
	{"uniform", Uniform},
}

var compositeNames = map[string]CellFlags{
	"none":          None,
	"expand":        Expand,
	"fill":          Fill,
	"anchor-center": AnchorCenter,
}

// Has reports whether every flag in other is set in f.
func (f CellFlags) Has(other CellFlags) bool {
	return f&other == other
}

// With returns the union of f and other.
func (f CellFlags) With(other CellFlags) CellFlags {
	return f | other
}

// Names returns the names of the single flags set in f, in declaration order.
func (f CellFlags) Names() []string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return names
}

// String returns the flag names joined by "|", or "none".
func (f CellFlags) String() string {
	names := f.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ParseFlag parses a single flag name such as "expand-horizontal" or the
// composites "expand", "fill" and "anchor-center". Matching ignores case and
// accepts underscores in place of dashes.
func ParseFlag(name string) (CellFlags, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if f, ok := compositeNames[key]; ok {
		return f, nil
	}
	for _, fn := range flagNames {
		if fn.name == key {
			return fn.flag, nil
		}
	}
	return None, errors.New(errors.ErrCodeInvalidFlag, "unknown cell flag: %q", name)
}

// ParseFlags parses and unions a list of flag names.
func ParseFlags(names []string) (CellFlags, error) {
	var f CellFlags
	for _, name := range names {
		v, err := ParseFlag(name)
		if err != nil {
			return None, err
		}
		f |= v
	}
	return f, nil
}

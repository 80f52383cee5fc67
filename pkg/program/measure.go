package program

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/tablelayout/pkg/table"
)

// LabelFace is the face labels are measured with. Renderers that draw
// labels use the same face so auto-sized cells fit their text.
var LabelFace font.Face = basicfont.Face7x13

// MeasureLabel returns the extent of label in LabelFace. Lines are split on
// newlines; the width is the widest line.
func MeasureLabel(label string) table.Size {
	if label == "" {
		return table.Size{}
	}
	lines := strings.Split(label, "\n")
	var width int
	for _, line := range lines {
		width = max(width, font.MeasureString(LabelFace, line).Ceil())
	}
	lineHeight := LabelFace.Metrics().Height.Ceil()
	return table.Size{
		Width:  float64(width),
		Height: float64(lineHeight * len(lines)),
	}
}

package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/tablelayout/pkg/errors"
	"github.com/matzehuels/tablelayout/pkg/render/layout"
)

func TestImposeJSON(t *testing.T) {
	path := writeDoc(t, "grid.toml", gridTOML)

	out, err := execute(t, "impose", path, "--json", "--width", "400", "--height", "300")
	if err != nil {
		t.Fatal(err)
	}

	var l layout.Layout
	if err := json.Unmarshal([]byte(out), &l); err != nil {
		t.Fatalf("output is not a layout: %v\n%s", err, out)
	}
	if l.FrameWidth != 400 || l.FrameHeight != 300 {
		t.Errorf("frame = %gx%g, want 400x300", l.FrameWidth, l.FrameHeight)
	}
	if len(l.Boxes) != 3 {
		t.Fatalf("got %d boxes, want 3", len(l.Boxes))
	}
	c, ok := l.Box("c")
	if !ok || c.Colspan != 2 || c.Row != 1 {
		t.Errorf("box c = %+v", c)
	}
}

func TestImposeTable(t *testing.T) {
	path := writeDoc(t, "grid.toml", gridTOML)

	out, err := execute(t, "impose", path, "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"grid", "wide", "Span", "fresh"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestImposeCached(t *testing.T) {
	path := writeDoc(t, "grid.toml", gridTOML)

	if _, err := execute(t, "impose", path); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "impose", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "cached") {
		t.Errorf("second run should hit the cache:\n%s", out)
	}
}

func TestImposeErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		args []string
		code errors.Code
	}{
		{"missing file", "", "", nil, errors.ErrCodeFileNotFound},
		{"unknown extension", "grid.yaml", "rows: []", nil, errors.ErrCodeInvalidFormat},
		{"negative width", "grid.toml", gridTOML, []string{"--width=-5"}, errors.ErrCodeInvalidExtent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path string
			if tt.file == "" {
				path = writeDoc(t, "x.toml", "") + ".missing.toml"
			} else {
				path = writeDoc(t, tt.file, tt.body)
			}
			_, err := execute(t, append([]string{"impose", path}, tt.args...)...)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestPlacementTable(t *testing.T) {
	l := layout.Layout{
		FrameWidth:  200,
		FrameHeight: 100,
		Boxes: []layout.Box{
			{ID: "a", Label: "Alpha", Colspan: 1, Rect: layout.Rect{X: 0, Y: 0, Width: 100.5, Height: 40}},
			{ID: "b", Row: 1, Colspan: 2, Rect: layout.Rect{X: 0, Y: 40, Width: 200, Height: 60}},
		},
	}
	out := placementTable(l)
	for _, want := range []string{"Alpha", "100.5", "200", "Label"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{100, "100"},
		{12.5, "12.5"},
		{1.0 / 3, "0.33"},
		{-4.25, "-4.25"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/tablelayout/pkg/cache"
	"github.com/matzehuels/tablelayout/pkg/pipeline"
	"github.com/matzehuels/tablelayout/pkg/program"
	"github.com/matzehuels/tablelayout/pkg/render/layout"
)

func newTestViewModel(t *testing.T, width, height float64) viewModel {
	t.Helper()
	doc, err := program.ParseTOML([]byte(gridTOML))
	if err != nil {
		t.Fatal(err)
	}
	mc, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(mc, nil, log.New(io.Discard))
	t.Cleanup(func() { runner.Close() })
	return newViewModel(context.Background(), runner, doc, width, height)
}

func press(m viewModel, key tea.KeyMsg) viewModel {
	next, _ := m.Update(key)
	return next.(viewModel)
}

func TestViewModelInitialExtent(t *testing.T) {
	m := newTestViewModel(t, 0, 0)
	if m.width != pipeline.DefaultWidth || m.height != pipeline.DefaultHeight {
		t.Errorf("extent = %gx%g, want defaults", m.width, m.height)
	}
	if m.err != nil {
		t.Fatal(m.err)
	}
	if len(m.layout.Boxes) != 3 {
		t.Errorf("got %d boxes, want 3", len(m.layout.Boxes))
	}
}

func TestViewModelKeys(t *testing.T) {
	m := newTestViewModel(t, 200, 100)

	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	if m.width != 210 || m.layout.FrameWidth != 210 {
		t.Errorf("right: width=%g frame=%g, want 210", m.width, m.layout.FrameWidth)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	if m.step != 20 {
		t.Errorf("step = %g, want 20", m.step)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.height != 80 || m.layout.FrameHeight != 80 {
		t.Errorf("up: height=%g frame=%g, want 80", m.height, m.layout.FrameHeight)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	if !m.cached {
		t.Error("returning to a previous extent should hit the cache")
	}
}

func TestViewModelShrinkStopsAtOne(t *testing.T) {
	m := newTestViewModel(t, 5, 5)
	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.width != 1 || m.height != 1 {
		t.Errorf("extent = %gx%g, want 1x1", m.width, m.height)
	}
	if m.err != nil {
		t.Errorf("imposing at 1x1 failed: %v", m.err)
	}
}

func TestViewModelWindowResize(t *testing.T) {
	m := newTestViewModel(t, 0, 0)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(viewModel)
	if m.width != 100*unitsPerColumn {
		t.Errorf("width = %g, want %g", m.width, 100*unitsPerColumn)
	}
	if m.height != float64(30-viewChrome)*unitsPerLine {
		t.Errorf("height = %g", m.height)
	}
	if m.layout.FrameWidth != m.width {
		t.Error("resize should re-impose")
	}
}

func TestViewModelWindowResizeKeepsPinnedExtent(t *testing.T) {
	m := newTestViewModel(t, 640, 480)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(viewModel)
	if m.width != 640 || m.height != 480 || m.layout.FrameWidth != 640 {
		t.Fatalf("extent = %gx%g frame=%g, want 640x480", m.width, m.height, m.layout.FrameWidth)
	}
	if m.termWidth != 100 || m.termHeight != 30 {
		t.Errorf("terminal = %dx%d, want 100x30", m.termWidth, m.termHeight)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.width != 100*unitsPerColumn {
		t.Errorf("r: width = %g, want %g", m.width, 100*unitsPerColumn)
	}
	next, _ = m.Update(tea.WindowSizeMsg{Width: 50, Height: 20})
	m = next.(viewModel)
	if m.width != 50*unitsPerColumn {
		t.Errorf("after r the window should drive the extent, width = %g", m.width)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	next, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m = next.(viewModel)
	if m.width != 50*unitsPerColumn+defaultViewStep {
		t.Errorf("a key change should pin the extent, width = %g", m.width)
	}
}

func TestViewModelQuit(t *testing.T) {
	m := newTestViewModel(t, 200, 100)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestViewModelView(t *testing.T) {
	m := newTestViewModel(t, 200, 100)
	out := m.View()
	for _, want := range []string{"grid", "200x100", "quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestDrawBoxes(t *testing.T) {
	l := layout.Layout{
		FrameWidth:  20,
		FrameHeight: 10,
		Boxes: []layout.Box{
			{ID: "a", Label: "left", Rect: layout.Rect{X: 0, Y: 0, Width: 10, Height: 5}},
			{ID: "b", Rect: layout.Rect{X: 10, Y: 5, Width: 10, Height: 5}},
		},
	}
	lines := drawBoxes(l, 20, 10)
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10", len(lines))
	}
	if got := []rune(lines[0]); got[0] != '┌' || got[9] != '┐' {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "left") {
		t.Errorf("label missing: %q", lines[1])
	}
	if got := []rune(lines[9]); got[10] != '└' || got[19] != '┘' {
		t.Errorf("line 9 = %q", lines[9])
	}
	if !strings.Contains(lines[6], "b") {
		t.Errorf("unlabeled box should show its id: %q", lines[6])
	}
}

func TestDrawBoxesEmptyFrame(t *testing.T) {
	lines := drawBoxes(layout.Layout{}, 4, 2)
	if len(lines) != 2 || lines[0] != "    " {
		t.Errorf("lines = %q", lines)
	}
}

func TestViewModelExtentPrompt(t *testing.T) {
	m := newTestViewModel(t, 200, 100)

	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if !m.input.Focused() {
		t.Fatal("e should open the extent prompt")
	}
	if got := m.input.Value(); got != "200x100" {
		t.Errorf("prompt value = %q, want current extent", got)
	}

	m.input.SetValue("640x480")
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.input.Focused() {
		t.Error("enter should close the prompt")
	}
	if m.width != 640 || m.height != 480 || m.layout.FrameWidth != 640 {
		t.Errorf("extent = %gx%g frame=%g, want 640x480", m.width, m.height, m.layout.FrameWidth)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.input.Focused() || m.width != 640 {
		t.Error("esc should close the prompt without changes")
	}
}

func TestParseExtent(t *testing.T) {
	tests := []struct {
		in      string
		w, h    float64
		wantErr bool
	}{
		{"640x480", 640, 480, false},
		{" 12.5 X 8 ", 12.5, 8, false},
		{"640", 0, 0, true},
		{"ax4", 0, 0, true},
		{"0x10", 0, 0, true},
		{"-1x10", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := parseExtent(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseExtent(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && (w != tt.w || h != tt.h) {
				t.Errorf("parseExtent(%q) = %g, %g", tt.in, w, h)
			}
		})
	}
}

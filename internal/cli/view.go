package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tablelayout/pkg/cache"
	"github.com/matzehuels/tablelayout/pkg/errors"
	"github.com/matzehuels/tablelayout/pkg/pipeline"
	"github.com/matzehuels/tablelayout/pkg/program"
	"github.com/matzehuels/tablelayout/pkg/render/layout"
)

const (
	// Layout units per terminal column and row when the window sets the extent.
	unitsPerColumn = 8.0
	unitsPerLine   = 16.0

	// viewChrome is the number of terminal lines used by the title and help.
	viewChrome = 3

	defaultViewStep = 10.0
	viewCacheSize   = 256
)

var (
	viewHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	viewBoxStyle   = lipgloss.NewStyle().Foreground(colorCyan)
	viewErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// viewCommand creates the view command, an interactive re-flow preview.
func (c *CLI) viewCommand() *cobra.Command {
	var width, height float64

	cmd := &cobra.Command{
		Use:   "view [document]",
		Short: "Preview a document in the terminal",
		Long: `Preview a document in the terminal.

The document is imposed at the terminal's size and drawn as boxes.
Resizing the window re-imposes it unless the extent was set by
--width/--height, the document or the keys below. Arrow keys (or h/j/k/l)
shrink and grow the frame; [ and ] change the step; r goes back to
following the window size; e prompts for an exact WIDTHxHEIGHT.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], width, height)
		},
	}

	cmd.Flags().Float64Var(&width, "width", 0, "initial frame width (default: document width or window)")
	cmd.Flags().Float64Var(&height, "height", 0, "initial frame height (default: document height or window)")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, width, height float64) error {
	doc, err := pipeline.LoadFile(ctx, input)
	if err != nil {
		return err
	}

	mc, err := cache.NewMemoryCache(viewCacheSize)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(mc, nil, c.Logger)
	defer runner.Close()

	m := newViewModel(ctx, runner, doc, width, height)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// viewModel - Interactive re-flow
// =============================================================================

// viewModel is the bubbletea model for the view command.
type viewModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	doc    *program.Document

	width, height float64
	step          float64

	// pinned is set when the extent came from a flag, the document or the
	// user. Window resizes only re-fit an unpinned extent.
	pinned bool

	termWidth, termHeight int

	layout layout.Layout
	cached bool
	err    error

	// input is focused while an exact extent is being typed.
	input textinput.Model
}

// newViewModel imposes doc once at its initial extent. A zero width or
// height falls back to the document, then to the pipeline defaults.
func newViewModel(ctx context.Context, runner *pipeline.Runner, doc *program.Document, width, height float64) viewModel {
	opts := pipeline.Options{Width: width, Height: height}
	opts.ApplyDocument(doc)
	pinned := opts.Width != 0 || opts.Height != 0
	opts.SetLayoutDefaults()

	ti := textinput.New()
	ti.Prompt = "extent> "
	ti.Placeholder = "WIDTHxHEIGHT"
	ti.CharLimit = 32

	m := viewModel{
		input:      ti,
		ctx:        ctx,
		runner:     runner,
		doc:        doc,
		width:      opts.Width,
		height:     opts.Height,
		pinned:     pinned,
		step:       defaultViewStep,
		termWidth:  80,
		termHeight: 24,
	}
	m.impose()
	return m
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		return m.updateInput(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.width = math.Max(1, m.width-m.step)
			m.pinned = true
		case "right", "l":
			m.width += m.step
			m.pinned = true
		case "up", "k":
			m.height = math.Max(1, m.height-m.step)
			m.pinned = true
		case "down", "j":
			m.height += m.step
			m.pinned = true
		case "[":
			m.step = math.Max(1, m.step/2)
			return m, nil
		case "]":
			m.step *= 2
			return m, nil
		case "r":
			m.pinned = false
			m.fitWindow()
		case "e":
			m.input.SetValue(formatNumber(m.width) + "x" + formatNumber(m.height))
			m.input.CursorEnd()
			cmd := m.input.Focus()
			return m, cmd
		default:
			return m, nil
		}
		m.impose()
	case tea.WindowSizeMsg:
		m.termWidth, m.termHeight = msg.Width, msg.Height
		if m.pinned {
			return m, nil
		}
		m.fitWindow()
		m.impose()
	}
	return m, nil
}

// updateInput handles messages while the extent prompt is open.
func (m viewModel) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "ctrl+c":
			m.input.Blur()
			return m, nil
		case "enter":
			m.input.Blur()
			w, h, err := parseExtent(m.input.Value())
			if err != nil {
				m.err = err
				return m, nil
			}
			m.width, m.height = w, h
			m.pinned = true
			m.impose()
			return m, nil
		}
	}
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.termWidth, m.termHeight = size.Width, size.Height
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m viewModel) View() string {
	var b strings.Builder

	status := styleComputed.Render(iconFresh)
	if m.cached {
		status = styleCached.Render(iconCached)
	}
	b.WriteString(StyleTitle.Render(m.doc.Name))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %sx%s  step %s  ",
		formatNumber(m.width), formatNumber(m.height), formatNumber(m.step))))
	b.WriteString(status)
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(viewErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	} else {
		lines := drawBoxes(m.layout, m.termWidth, max(1, m.termHeight-viewChrome))
		b.WriteString(viewBoxStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	if m.input.Focused() {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(viewHelpStyle.Render("←/→ width  ↑/↓ height  [/] step  e extent  r fit window  q quit"))
	}
	return b.String()
}

// fitWindow sets the frame extent from the terminal size.
func (m *viewModel) fitWindow() {
	m.width = float64(max(1, m.termWidth)) * unitsPerColumn
	m.height = float64(max(1, m.termHeight-viewChrome)) * unitsPerLine
}

// impose re-imposes the document at the current extent.
func (m *viewModel) impose() {
	l, hit, err := m.runner.GenerateLayoutWithCacheInfo(m.ctx, m.doc, pipeline.Options{
		Width:  m.width,
		Height: m.height,
	})
	m.layout, m.cached, m.err = l, hit, err
}

// parseExtent parses "WIDTHxHEIGHT", for example "640x480".
func parseExtent(s string) (float64, float64, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidExtent, "extent %q must look like 640x480", s)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(ws), 64)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidExtent, err, "width %q", ws)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(hs), 64)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidExtent, err, "height %q", hs)
	}
	if err := errors.ValidateExtent(w, h); err != nil {
		return 0, 0, err
	}
	if w == 0 || h == 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidExtent, "extent must be positive, got %q", s)
	}
	return w, h, nil
}

// =============================================================================
// Drawing
// =============================================================================

// drawBoxes draws each box of l as a rectangle on a cols x rows character
// canvas. The frame is scaled to fill the canvas.
func drawBoxes(l layout.Layout, cols, rows int) []string {
	canvas := make([][]rune, rows)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", cols))
	}
	if l.FrameWidth <= 0 || l.FrameHeight <= 0 || cols == 0 || rows == 0 {
		return toLines(canvas)
	}
	sx := float64(cols) / l.FrameWidth
	sy := float64(rows) / l.FrameHeight

	for _, box := range l.Boxes {
		x0 := clamp(int(math.Round(box.X*sx)), 0, cols-1)
		y0 := clamp(int(math.Round(box.Y*sy)), 0, rows-1)
		x1 := clamp(int(math.Round(box.Right()*sx))-1, x0, cols-1)
		y1 := clamp(int(math.Round(box.Bottom()*sy))-1, y0, rows-1)
		drawRect(canvas, x0, y0, x1, y1)

		label := box.Label
		if label == "" {
			label = box.ID
		}
		if inner := x1 - x0 - 1; inner > 0 && y1 > y0+1 {
			r := []rune(label)
			if len(r) > inner {
				r = r[:inner]
			}
			copy(canvas[y0+1][x0+1:], r)
		}
	}
	return toLines(canvas)
}

func drawRect(canvas [][]rune, x0, y0, x1, y1 int) {
	if x0 == x1 || y0 == y1 {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				canvas[y][x] = '▪'
			}
		}
		return
	}
	for x := x0 + 1; x < x1; x++ {
		canvas[y0][x] = '─'
		canvas[y1][x] = '─'
	}
	for y := y0 + 1; y < y1; y++ {
		canvas[y][x0] = '│'
		canvas[y][x1] = '│'
	}
	canvas[y0][x0] = '┌'
	canvas[y0][x1] = '┐'
	canvas[y1][x0] = '└'
	canvas[y1][x1] = '┘'
}

func toLines(canvas [][]rune) []string {
	lines := make([]string, len(canvas))
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

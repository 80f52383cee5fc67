package table

import (
	"math"
	"testing"
)

type placement struct {
	x, y, w, h float64
}

// recorder collects callback output in invocation order.
type recorder struct {
	calls []placement
}

func (r *recorder) cell(p CellProperties) CellProperties {
	return p.WithCallback(func(x, y, w, h float64) {
		r.calls = append(r.calls, placement{x, y, w, h})
	})
}

func sz(w, h float64) Size { return Size{Width: w, Height: h} }

func assertPlacements(t *testing.T, got, want []placement) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d placements %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("placement[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestShape(t *testing.T) {
	cell := NewCellProperties()
	tests := []struct {
		name     string
		build    func(*TableLayout)
		wantRows int
		wantCols int
	}{
		{
			name:  "empty",
			build: func(*TableLayout) {},
		},
		{
			name: "single cell without break",
			build: func(l *TableLayout) {
				l.AddCell(cell)
			},
			wantRows: 1,
			wantCols: 1,
		},
		{
			name: "trailing break",
			build: func(l *TableLayout) {
				l.AddCell(cell).AddCell(cell).AddRow()
			},
			wantRows: 1,
			wantCols: 2,
		},
		{
			name: "widest row wins",
			build: func(l *TableLayout) {
				l.AddCell(cell).AddRow()
				l.AddCell(cell.WithColspan(3)).AddRow()
				l.AddCell(cell).AddCell(cell)
			},
			wantRows: 3,
			wantCols: 3,
		},
		{
			name: "ghost cells add no columns",
			build: func(l *TableLayout) {
				l.AddCell(cell.WithColspan(0)).AddCell(cell.WithColspan(0))
			},
		},
		{
			name: "only row breaks",
			build: func(l *TableLayout) {
				l.AddRow().AddRow()
			},
			wantRows: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			tt.build(l)
			rows, cols := l.Shape()
			if rows != tt.wantRows || cols != tt.wantCols {
				t.Errorf("Shape() = (%d, %d), want (%d, %d)", rows, cols, tt.wantRows, tt.wantCols)
			}
		})
	}
}

func TestImposeNoColumns(t *testing.T) {
	called := false
	l := New()
	l.AddRow()
	l.AddCell(NewCellProperties().WithColspan(0).WithCallback(func(x, y, w, h float64) {
		called = true
	}))
	l.Impose(320, 240)
	if called {
		t.Error("Impose() invoked a callback for a program without columns")
	}
	if s := l.Solve(320, 240); s != nil {
		t.Errorf("Solve() = %+v, want nil", s)
	}
}

func TestImposeSingleCell(t *testing.T) {
	var r recorder
	l := New()
	l.AddCell(r.cell(NewCellProperties().PreferredSize(sz(64, 64))))
	l.Impose(320, 240)
	assertPlacements(t, r.calls, []placement{{0, 0, 64, 64}})
}

func TestImposeExpandUsesAllottedWidth(t *testing.T) {
	var r recorder
	l := New()
	l.AddCell(r.cell(NewCellProperties().PreferredSize(sz(64, 64))))
	l.AddCell(r.cell(NewCellProperties().ExpandHorizontal().PreferredSize(sz(64, 64))))
	l.AddCell(r.cell(NewCellProperties().PreferredSize(sz(64, 64))))
	l.Impose(320, 240)

	// The middle column grows to 320-128 but its box stays at 64, and the
	// third cell starts after the full allotted width.
	assertPlacements(t, r.calls, []placement{
		{0, 0, 64, 64},
		{64, 0, 64, 64},
		{256, 0, 64, 64},
	})
}

func TestImposeExpandingLayout(t *testing.T) {
	var r recorder
	l := New()
	l.AddCell(r.cell(NewCellProperties().AnchorRight().AnchorBottom().PreferredSize(sz(64, 64))))
	l.AddCell(r.cell(NewCellProperties().AnchorTop().AnchorLeft().ExpandHorizontal().PreferredSize(sz(64, 64))))
	l.AddCell(r.cell(NewCellProperties().AnchorRight().ExpandHorizontal().FillHorizontal().PreferredSize(sz(64, 64))))
	l.AddRow()
	l.AddCell(r.cell(NewCellProperties().
		WithColspan(3).
		ExpandVertical().
		AnchorBottom().
		FillHorizontal().
		PreferredSize(sz(64, 64))))
	l.Impose(320, 240)

	assertPlacements(t, r.calls, []placement{
		{0, 0, 64, 64},
		{64, 0, 64, 64},
		{192, 0, 128, 64},
		{0, 176, 320, 64},
	})
}

func TestImposeShrinkingLayout(t *testing.T) {
	var r recorder
	l := New()
	l.AddCell(r.cell(NewCellProperties().PreferredSize(sz(64, 64))))
	l.AddCell(r.cell(NewCellProperties().PreferredSize(sz(64, 64))))
	l.AddRow()
	l.AddCell(r.cell(NewCellProperties().WithColspan(2).PreferredSize(sz(64, 64))))
	l.Impose(32, 32)

	assertPlacements(t, r.calls, []placement{
		{0, 0, 16, 16},
		{16, 0, 16, 16},
		{0, 16, 32, 16},
	})
}

func TestImposeShrinkSingleRow(t *testing.T) {
	var r recorder
	l := New()
	l.AddCell(r.cell(NewCellProperties().PreferredSize(sz(64, 64))))
	l.AddCell(r.cell(NewCellProperties().PreferredSize(sz(64, 64))))
	l.Impose(32, 32)

	assertPlacements(t, r.calls, []placement{
		{0, 0, 16, 32},
		{16, 0, 16, 32},
	})
}

func TestImposePaddedFill(t *testing.T) {
	var r recorder
	l := New()
	l.AddCell(r.cell(NewCellProperties().Expand().Fill().PaddingAll(16)))
	l.Impose(64, 64)
	assertPlacements(t, r.calls, []placement{{16, 16, 32, 32}})
}

func TestImposeCentered(t *testing.T) {
	var r recorder
	l := New()
	l.AddCell(r.cell(NewCellProperties().
		AnchorHorizontalCenter().
		AnchorVerticalCenter().
		Expand().
		PreferredSize(sz(32, 32))))
	l.Impose(64, 64)
	assertPlacements(t, r.calls, []placement{{16, 16, 32, 32}})
}

func TestImposeGhostCellSkipped(t *testing.T) {
	var r recorder
	l := New()
	l.AddCell(r.cell(NewCellProperties().PreferredSize(sz(10, 10))))
	l.AddCell(r.cell(NewCellProperties().WithColspan(0).PreferredSize(sz(500, 500))))
	l.AddCell(r.cell(NewCellProperties().PreferredSize(sz(20, 10))))
	l.AddRow()
	l.AddCell(r.cell(NewCellProperties().WithColspan(0)))
	l.Impose(30, 10)

	assertPlacements(t, r.calls, []placement{
		{0, 0, 10, 10},
		{10, 0, 20, 10},
	})
}

func TestImposeDeficitClampsAtZero(t *testing.T) {
	// Slack is 32 and 96 and the whole 144 must go. The first column drops
	// to 12, below its minimum of 16; the second would reach -12 and is
	// floored at zero.
	l := New()
	l.AddCell(NewCellProperties().MinimumSize(sz(16, 0)).PreferredSize(sz(48, 10)))
	l.AddCell(NewCellProperties().PreferredSize(sz(96, 10)))
	s := l.Solve(0, 10)
	if s == nil {
		t.Fatal("Solve() = nil")
	}
	if s.Columns[0] != 12 || s.Columns[1] != 0 {
		t.Errorf("Columns = %v, want [12 0]", s.Columns)
	}
}

func TestImposeDeficitWithoutSlack(t *testing.T) {
	l := New()
	l.AddCell(NewCellProperties().MinimumSize(sz(50, 10)).PreferredSize(sz(50, 10)))
	l.AddCell(NewCellProperties().MinimumSize(sz(50, 10)).PreferredSize(sz(50, 10)))
	s := l.Solve(60, 10)
	if s == nil {
		t.Fatal("Solve() = nil")
	}
	for i, w := range s.Columns {
		if math.IsNaN(w) || w != 50 {
			t.Errorf("Columns[%d] = %v, want 50", i, w)
		}
	}
}

func TestImposeSurplusWithoutExpansion(t *testing.T) {
	l := New()
	l.AddCell(NewCellProperties().PreferredSize(sz(40, 10)))
	s := l.Solve(400, 300)
	if s.Width() != 40 || s.Height() != 10 {
		t.Errorf("Solve() extent = %vx%v, want 40x10", s.Width(), s.Height())
	}
}

func TestImposeColspanSpreadsPadding(t *testing.T) {
	l := New()
	l.AddCell(NewCellProperties().WithColspan(2).PaddingAll(5).PreferredSize(sz(90, 20)))
	s := l.Solve(100, 20)
	want := []float64{50, 50}
	for i := range want {
		if s.Columns[i] != want[i] {
			t.Errorf("Columns[%d] = %v, want %v", i, s.Columns[i], want[i])
		}
	}
	// Rows take the unpadded preferred height.
	if s.Rows[0] != 20 {
		t.Errorf("Rows[0] = %v, want 20", s.Rows[0])
	}
}

func TestImposeRepeatable(t *testing.T) {
	var r recorder
	l := New()
	l.AddCell(r.cell(NewCellProperties().Expand().Fill().PreferredSize(sz(30, 30))))
	l.AddCell(r.cell(NewCellProperties().AnchorRight().PreferredSize(sz(30, 30))))
	l.AddRow()
	l.AddCell(r.cell(NewCellProperties().WithColspan(2).AnchorCenter().PreferredSize(sz(10, 10))))

	l.Impose(200, 100)
	first := append([]placement(nil), r.calls...)
	r.calls = nil
	l.Impose(200, 100)
	assertPlacements(t, r.calls, first)

	r.calls = nil
	l.Impose(100, 100)
	if r.calls[0] == first[0] {
		t.Errorf("Impose() with a new width reused geometry %+v", r.calls[0])
	}
}

func TestImposeMultipleRowsOffsetY(t *testing.T) {
	var r recorder
	l := New()
	l.AddCell(r.cell(NewCellProperties().PreferredSize(sz(10, 15))))
	l.AddRow()
	l.AddCell(r.cell(NewCellProperties().PreferredSize(sz(10, 25))))
	l.AddRow()
	l.AddCell(r.cell(NewCellProperties().PreferredSize(sz(10, 5))))
	l.Impose(10, 45)

	assertPlacements(t, r.calls, []placement{
		{0, 0, 10, 15},
		{0, 15, 10, 25},
		{0, 40, 10, 5},
	})
}

func TestDistribute(t *testing.T) {
	tests := []struct {
		name      string
		preferred []float64
		minimum   []float64
		expand    []bool
		available float64
		want      []float64
	}{
		{
			name:      "exact fit",
			preferred: []float64{10, 20},
			minimum:   []float64{0, 0},
			expand:    []bool{true, true},
			available: 30,
			want:      []float64{10, 20},
		},
		{
			name:      "surplus shared by expanding lines",
			preferred: []float64{10, 20, 30},
			minimum:   []float64{0, 0, 0},
			expand:    []bool{true, false, true},
			available: 100,
			want:      []float64{30, 20, 50},
		},
		{
			name:      "deficit proportional to slack",
			preferred: []float64{40, 60},
			minimum:   []float64{20, 20},
			expand:    []bool{false, false},
			available: 70,
			want:      []float64{30, 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]float64(nil), tt.preferred...)
			distribute(got, tt.minimum, tt.expand, tt.available)
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("line %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

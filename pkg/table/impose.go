package table

// Shape returns the number of rows and columns the program occupies.
//
// Every row break closes a row, and trailing cells without a final break
// count as one more row. The column count is the widest row measured in
// spanned columns; ghost cells contribute nothing.
func (t *TableLayout) Shape() (rows, cols int) {
	acc := 0
	for _, op := range t.ops {
		switch op.Kind {
		case OpCell:
			acc += int(op.Cell.Colspan)
		case OpRow:
			cols = max(cols, acc)
			acc = 0
			rows++
		}
	}
	if acc > 0 {
		cols = max(cols, acc)
		rows++
	}
	return rows, cols
}

// Solution holds the resolved extent of every line of a solved program.
type Solution struct {
	// Columns holds the width allotted to each column.
	Columns []float64
	// Rows holds the height allotted to each row.
	Rows []float64
}

// Width returns the sum of all column widths.
func (s *Solution) Width() float64 { return sum(s.Columns) }

// Height returns the sum of all row heights.
func (s *Solution) Height() float64 { return sum(s.Rows) }

// measurement is the accumulated per-line demand of a program.
type measurement struct {
	cols    []SizeGrouping
	rows    []SizeGrouping
	xexpand []bool
	yexpand []bool
}

// measure accumulates size demands for every column and row.
func (t *TableLayout) measure(nrows, ncols int) measurement {
	m := measurement{
		cols:    make([]SizeGrouping, ncols),
		rows:    make([]SizeGrouping, nrows),
		xexpand: make([]bool, ncols),
		yexpand: make([]bool, nrows),
	}
	for i := range m.cols {
		m.cols[i] = DefaultSizeGrouping()
	}
	for i := range m.rows {
		m.rows[i] = DefaultSizeGrouping()
	}

	row, col := 0, 0
	for i := range t.ops {
		op := &t.ops[i]
		if op.Kind == OpRow {
			row++
			col = 0
			continue
		}

		cp := &op.Cell
		if cp.Colspan == 0 {
			continue
		}

		// Columns share the padded size evenly; the row takes the cell's
		// own size in full.
		spread := cp.Size.Padded(cp.Padding).Spread(float64(cp.Colspan))
		m.rows[row] = Join(m.rows[row], cp.Size)
		if cp.Flags.Has(ExpandVertical) {
			m.yexpand[row] = true
		}
		for range int(cp.Colspan) {
			if cp.Flags.Has(ExpandHorizontal) {
				m.xexpand[col] = true
			}
			m.cols[col] = Join(m.cols[col], spread)
			col++
		}
	}
	return m
}

// Solve runs the measurement and distribution passes for the given extent
// and returns the size of every column and row. It returns nil when the
// program has no columns. Solve invokes no callbacks.
func (t *TableLayout) Solve(width, height float64) *Solution {
	nrows, ncols := t.Shape()
	if ncols == 0 {
		return nil
	}

	m := t.measure(nrows, ncols)

	s := &Solution{
		Columns: make([]float64, ncols),
		Rows:    make([]float64, nrows),
	}
	colMin := make([]float64, ncols)
	for i, g := range m.cols {
		s.Columns[i] = g.Preferred.Width
		colMin[i] = g.Minimum.Width
	}
	rowMin := make([]float64, nrows)
	for i, g := range m.rows {
		s.Rows[i] = g.Preferred.Height
		rowMin[i] = g.Minimum.Height
	}

	distribute(s.Columns, colMin, m.xexpand, width)
	distribute(s.Rows, rowMin, m.yexpand, height)
	return s
}

// distribute adjusts preferred line sizes in place so they add up to
// available. Surplus goes in equal shares to expanding lines and is left
// unused when none expand. A deficit is taken from every line in proportion
// to its slack, flooring each line at zero. When no line has slack the
// deficit stays unresolved.
func distribute(preferred, minimum []float64, expand []bool, available float64) {
	diff := available - sum(preferred)

	switch {
	case diff > 0:
		n := 0
		for _, e := range expand {
			if e {
				n++
			}
		}
		if n == 0 {
			return
		}
		share := diff / float64(n)
		for i, e := range expand {
			if e {
				preferred[i] += share
			}
		}

	case diff < 0:
		deficit := -diff
		slack := make([]float64, len(preferred))
		var total float64
		for i := range preferred {
			slack[i] = preferred[i] - minimum[i]
			total += slack[i]
		}
		if total == 0 {
			return
		}
		for i := range preferred {
			slack[i] -= deficit * (slack[i] / total)
			preferred[i] = max(minimum[i]+slack[i], 0)
		}
	}
}

// Impose solves the program for the given extent and reports every cell's
// geometry through its callback, in program order.
//
// Each cell is allotted the summed width of the columns it spans and the
// height of its row. The cell's box is fitted inside that area with
// [SizeGrouping.BoxFit], and the next cell in the row starts after the full
// allotted width regardless of the box size. Ghost cells are skipped.
//
// Impose is a pure read of the program and may be called repeatedly.
// Callbacks must not modify t.
func (t *TableLayout) Impose(width, height float64) {
	s := t.Solve(width, height)
	if s == nil {
		return
	}

	ops := t.ops
	var x, y float64
	row, col := 0, 0
	for i := range ops {
		op := &ops[i]
		if op.Kind == OpRow {
			x = 0
			y += s.Rows[row]
			row++
			col = 0
			continue
		}

		cp := &op.Cell
		if cp.Colspan == 0 {
			continue
		}

		var w float64
		for range int(cp.Colspan) {
			w += s.Columns[col]
			col++
		}
		area := Size{Width: w, Height: s.Rows[row]}

		bx, by, bw, bh := cp.Size.BoxFit(area, *cp)
		if cp.Callback != nil {
			cp.Callback(x+bx, y+by, bw, bh)
		}
		x += w
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

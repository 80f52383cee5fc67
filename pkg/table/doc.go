// Package table implements a two-dimensional constraint layout engine for
// table and grid widgets.
//
// A layout is described as an ordered program of cells and row breaks. Each
// cell carries a [SizeGrouping] (minimum, preferred and maximum size), a set of
// [CellFlags], a column span and padding. Calling [TableLayout.Impose] with a
// target width and height solves the program and reports every cell's final
// geometry through its placement callback.
//
// # Algorithm
//
// Impose runs three passes over the program:
//
//  1. Measurement: every column and row accumulates the size constraints of
//     the cells that touch it. A cell spanning several columns spreads its
//     padded size evenly across them; rows take the unpadded size.
//  2. Distribution: per axis, surplus space is shared equally among expanding
//     lines, and a deficit is taken from each line in proportion to its slack
//     (preferred minus minimum).
//  3. Placement: each cell is fitted into its allotted area according to its
//     fill and anchor flags and the callback receives absolute coordinates.
//
// The engine never fails. Over-constrained programs resolve to best-effort
// sizes clamped at zero, and programs without columns are a no-op.
//
// # Usage
//
//	t := table.New()
//	t.AddCell(table.NewCellProperties().
//	    PreferredSize(table.Size{Width: 64, Height: 64}).
//	    WithCallback(func(x, y, w, h float64) {
//	        fmt.Println(x, y, w, h)
//	    }))
//	t.AddCell(table.NewCellProperties().
//	    ExpandHorizontal().
//	    PreferredSize(table.Size{Width: 64, Height: 64}))
//	t.Impose(320, 240)
//
// # Concurrency
//
// Impose is synchronous and allocates only per-call scratch space. A
// TableLayout must not be mutated while Impose is running, and that includes
// mutation from inside a placement callback.
package table

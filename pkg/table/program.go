package table

// OpKind tags a layout operation.
type OpKind uint8

const (
	// OpCell places a cell in the current row.
	OpCell OpKind = iota
	// OpRow ends the current row.
	OpRow
)

func (k OpKind) String() string {
	switch k {
	case OpCell:
		return "cell"
	case OpRow:
		return "row"
	default:
		return "unknown"
	}
}

// Op is one instruction of a layout program. Cell is only meaningful when
// Kind is OpCell.
type Op struct {
	Kind OpKind
	Cell CellProperties
}

// TableLayout is an ordered layout program plus the default templates used
// while building it. Use [New] to create one; the zero value has a
// zero-span fallback template.
//
// The insertion cursor only serves default lookup during construction;
// Impose walks the program from the start every time.
type TableLayout struct {
	ops []Op

	cellDefaults   CellProperties
	rowDefaults    map[int]CellProperties
	columnDefaults map[int]CellProperties

	row    int
	column int
}

// New returns an empty layout with factory defaults.
func New() *TableLayout {
	return &TableLayout{
		cellDefaults:   NewCellProperties(),
		rowDefaults:    make(map[int]CellProperties),
		columnDefaults: make(map[int]CellProperties),
	}
}

// AddCell appends a cell to the current row and advances the insertion
// cursor by the cell's span.
func (t *TableLayout) AddCell(p CellProperties) *TableLayout {
	t.column += int(p.Colspan)
	t.ops = append(t.ops, Op{Kind: OpCell, Cell: p})
	return t
}

// AddRow appends a row break.
func (t *TableLayout) AddRow() *TableLayout {
	t.ops = append(t.ops, Op{Kind: OpRow})
	t.row++
	t.column = 0
	return t
}

// Ops returns a copy of the program.
func (t *TableLayout) Ops() []Op {
	out := make([]Op, len(t.ops))
	copy(out, t.ops)
	return out
}

// Len returns the number of operations in the program.
func (t *TableLayout) Len() int { return len(t.ops) }

// Cursor returns the row and column the next cell would be inserted at.
func (t *TableLayout) Cursor() (row, column int) { return t.row, t.column }

// SetCellDefaults sets the fallback template used when neither a column nor
// a row default applies.
func (t *TableLayout) SetCellDefaults(p CellProperties) {
	t.cellDefaults = p.Clone()
}

// SetRowDefaults sets the template for cells inserted into row.
func (t *TableLayout) SetRowDefaults(row int, p CellProperties) {
	if t.rowDefaults == nil {
		t.rowDefaults = make(map[int]CellProperties)
	}
	t.rowDefaults[row] = p.Clone()
}

// SetColumnDefaults sets the template for cells inserted at column.
func (t *TableLayout) SetColumnDefaults(column int, p CellProperties) {
	if t.columnDefaults == nil {
		t.columnDefaults = make(map[int]CellProperties)
	}
	t.columnDefaults[column] = p.Clone()
}

// DefaultCell returns the template for the next inserted cell. The column
// default for the cursor's column wins, then the row default for the
// cursor's row, then the fallback template. The result never carries a
// callback.
//
// Defaults are resolved against the cursor at call time, so the result is
// only meaningful when it is added before the program or defaults change.
func (t *TableLayout) DefaultCell() CellProperties {
	if p, ok := t.columnDefaults[t.column]; ok {
		return p.Clone()
	}
	if p, ok := t.rowDefaults[t.row]; ok {
		return p.Clone()
	}
	return t.cellDefaults.Clone()
}

// Clear removes every operation and resets the cursor. Defaults are kept.
func (t *TableLayout) Clear() {
	t.ops = nil
	t.row = 0
	t.column = 0
}

// FullClear removes every operation and restores factory defaults.
func (t *TableLayout) FullClear() {
	t.Clear()
	clear(t.rowDefaults)
	clear(t.columnDefaults)
	t.cellDefaults = NewCellProperties()
}

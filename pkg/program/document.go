package program

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/matzehuels/tablelayout/pkg/cache"
	"github.com/matzehuels/tablelayout/pkg/errors"
	"github.com/matzehuels/tablelayout/pkg/table"
)

// Document is the serialisable form of a layout program.
//
// Rows are emitted in order with a row break between consecutive rows. Width
// and Height are the frame extent the document was designed for; zero means
// the caller chooses.
type Document struct {
	Name     string   `json:"name,omitempty" toml:"name,omitempty"`
	Width    float64  `json:"width,omitempty" toml:"width,omitempty"`
	Height   float64  `json:"height,omitempty" toml:"height,omitempty"`
	Defaults Defaults `json:"defaults,omitzero" toml:"defaults"`
	Rows     []Row    `json:"rows" toml:"rows"`
}

// Row is one row of cells.
type Row struct {
	Cells []CellSpec `json:"cells" toml:"cells"`
}

// Defaults holds the per-row, per-column and global cell templates.
// Map keys are decimal row or column indices.
type Defaults struct {
	Cell    *CellSpec           `json:"cell,omitempty" toml:"cell,omitempty"`
	Rows    map[string]CellSpec `json:"rows,omitempty" toml:"rows,omitempty"`
	Columns map[string]CellSpec `json:"columns,omitempty" toml:"columns,omitempty"`
}

// CellSpec describes one cell. Unset fields inherit from the defaults that
// apply at the cell's position.
//
// Sizes are [width, height] pairs. Padding takes one value for all four
// sides or four values in top, left, bottom, right order. Flags are unioned
// with the inherited flags.
type CellSpec struct {
	ID        string    `json:"id,omitempty" toml:"id,omitempty"`
	Label     string    `json:"label,omitempty" toml:"label,omitempty"`
	Minimum   []float64 `json:"minimum,omitempty" toml:"minimum,omitempty"`
	Preferred []float64 `json:"preferred,omitempty" toml:"preferred,omitempty"`
	Maximum   []float64 `json:"maximum,omitempty" toml:"maximum,omitempty"`
	Colspan   *int      `json:"colspan,omitempty" toml:"colspan,omitempty"`
	Padding   []float64 `json:"padding,omitempty" toml:"padding,omitempty"`
	Flags     []string  `json:"flags,omitempty" toml:"flags,omitempty"`
}

// CellCount returns the number of cells in the document, ghosts included.
func (d *Document) CellCount() int {
	n := 0
	for _, r := range d.Rows {
		n += len(r.Cells)
	}
	return n
}

// Validate checks the document for values the engine cannot represent.
// It returns the first problem found as an *errors.Error.
func (d *Document) Validate() error {
	if err := errors.ValidateExtent(d.Width, d.Height); err != nil {
		return err
	}

	if d.Defaults.Cell != nil {
		if err := d.Defaults.Cell.validate("defaults.cell"); err != nil {
			return err
		}
	}
	for _, group := range []struct {
		name  string
		specs map[string]CellSpec
	}{{"rows", d.Defaults.Rows}, {"columns", d.Defaults.Columns}} {
		for _, key := range sortedKeys(group.specs) {
			if _, err := parseIndex(key); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidProgram, err, "defaults.%s: bad index %q", group.name, key)
			}
			spec := group.specs[key]
			if err := spec.validate("defaults." + group.name + "." + key); err != nil {
				return err
			}
		}
	}

	generated := make(map[string]string)
	for ri, row := range d.Rows {
		for ci, cell := range row.Cells {
			if cell.ID == "" {
				generated[generatedID(ri, ci)] = cellPath(ri, ci)
			}
		}
	}

	seen := make(map[string]string)
	for ri, row := range d.Rows {
		for ci, cell := range row.Cells {
			where := cellPath(ri, ci)
			if err := cell.validate(where); err != nil {
				return err
			}
			if cell.ID == "" {
				continue
			}
			if prev, dup := seen[cell.ID]; dup {
				return errors.New(errors.ErrCodeInvalidProgram, "%s: duplicate id %q (first used at %s)", where, cell.ID, prev)
			}
			if other, dup := generated[cell.ID]; dup {
				return errors.New(errors.ErrCodeInvalidProgram, "%s: id %q is the generated id of %s", where, cell.ID, other)
			}
			seen[cell.ID] = where
		}
	}
	return nil
}

// generatedID names a cell that has no explicit id.
func generatedID(row, index int) string {
	return "cell-" + strconv.Itoa(row) + "-" + strconv.Itoa(index)
}

func cellPath(row, index int) string {
	return "rows[" + strconv.Itoa(row) + "].cells[" + strconv.Itoa(index) + "]"
}

func (c *CellSpec) validate(where string) error {
	for _, s := range []struct {
		name   string
		values []float64
	}{
		{"minimum", c.Minimum},
		{"preferred", c.Preferred},
		{"maximum", c.Maximum},
	} {
		if s.values == nil {
			continue
		}
		if len(s.values) != 2 {
			return errors.New(errors.ErrCodeInvalidProgram, "%s: %s needs [width, height], got %d values", where, s.name, len(s.values))
		}
		for _, v := range s.values {
			if math.IsInf(v, 0) {
				return errors.New(errors.ErrCodeInvalidProgram, "%s: %s must be finite; omit maximum for an unbounded cell", where, s.name)
			}
			if math.IsNaN(v) || v < 0 {
				return errors.New(errors.ErrCodeInvalidProgram, "%s: invalid %s %v", where, s.name, s.values)
			}
		}
	}

	switch len(c.Padding) {
	case 0, 1, 4:
	default:
		return errors.New(errors.ErrCodeInvalidProgram, "%s: padding needs 1 or 4 values, got %d", where, len(c.Padding))
	}
	for _, v := range c.Padding {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return errors.New(errors.ErrCodeInvalidProgram, "%s: invalid padding %v", where, c.Padding)
		}
	}

	if c.Colspan != nil {
		if err := errors.ValidateSpan(*c.Colspan); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSpan, err, "%s", where)
		}
	}

	if _, err := table.ParseFlags(c.Flags); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFlag, err, "%s", where)
	}
	return nil
}

// Hash returns a content hash of the document, stable across formats.
// Two documents that decode to the same values hash equally. The document
// should be validated first; non-finite sizes do not encode.
func Hash(d *Document) string {
	data, _ := json.Marshal(d)
	return cache.Hash(data)
}

func parseIndex(key string) (int, error) {
	i, err := strconv.Atoi(key)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, errors.New(errors.ErrCodeInvalidProgram, "negative index %d", i)
	}
	return i, nil
}

func sortedKeys(m map[string]CellSpec) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

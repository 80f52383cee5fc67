package program

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/tablelayout/pkg/errors"
)

const toolbarTOML = `
name = "toolbar"
width = 320
height = 240

[defaults.cell]
padding = [4]

[defaults.columns.1]
flags = ["expand-horizontal"]

[[rows]]
[[rows.cells]]
id = "icon"
preferred = [64, 64]

[[rows.cells]]
id = "title"
label = "Title"
flags = ["fill-horizontal", "anchor_vertical_center"]

[[rows]]
[[rows.cells]]
id = "body"
colspan = 2
padding = [1, 2, 3, 4]
flags = ["expand", "fill"]
`

func TestParseTOML(t *testing.T) {
	doc, err := Parse([]byte(toolbarTOML), FormatTOML)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if doc.Name != "toolbar" || doc.Width != 320 || doc.Height != 240 {
		t.Errorf("header = %q %vx%v", doc.Name, doc.Width, doc.Height)
	}
	if len(doc.Rows) != 2 || len(doc.Rows[0].Cells) != 2 || len(doc.Rows[1].Cells) != 1 {
		t.Fatalf("rows = %+v", doc.Rows)
	}
	if doc.Defaults.Cell == nil || !slices.Equal(doc.Defaults.Cell.Padding, []float64{4}) {
		t.Errorf("defaults.cell = %+v", doc.Defaults.Cell)
	}
	if got := doc.Defaults.Columns["1"].Flags; !slices.Equal(got, []string{"expand-horizontal"}) {
		t.Errorf("defaults.columns.1.flags = %v", got)
	}
	body := doc.Rows[1].Cells[0]
	if body.Colspan == nil || *body.Colspan != 2 {
		t.Errorf("body colspan = %v", body.Colspan)
	}
	if !slices.Equal(body.Padding, []float64{1, 2, 3, 4}) {
		t.Errorf("body padding = %v", body.Padding)
	}
}

func TestParseTOMLUnknownKey(t *testing.T) {
	_, err := ParseTOML([]byte("name = \"x\"\ncolumns = 3\n"))
	if !errors.Is(err, errors.ErrCodeInvalidProgram) {
		t.Fatalf("ParseTOML() error = %v, want INVALID_PROGRAM", err)
	}
}

func TestParseJSON(t *testing.T) {
	data := `{"name":"bar","rows":[{"cells":[{"id":"a","preferred":[10,20],"colspan":2}]}]}`
	doc, err := Parse([]byte(data), FormatJSON)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if doc.Rows[0].Cells[0].ID != "a" || *doc.Rows[0].Cells[0].Colspan != 2 {
		t.Errorf("cell = %+v", doc.Rows[0].Cells[0])
	}

	_, err = ParseJSON([]byte(`{"rows":[],"colums":{}}`))
	if !errors.Is(err, errors.ErrCodeInvalidProgram) {
		t.Errorf("ParseJSON() with unknown field error = %v, want INVALID_PROGRAM", err)
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse([]byte("{}"), "yaml")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Parse() error = %v, want INVALID_FORMAT", err)
	}
}

func TestParseLua(t *testing.T) {
	script := `
layout.name("grid")
layout.size(320, 240)
layout.defaults({ padding = 4 })
layout.column_defaults(0, { flags = "expand-horizontal" })
for i = 1, 3 do
  layout.cell({ id = "b" .. i, preferred = { 32, 32 } })
end
layout.row()
layout.cell({ label = "status", colspan = 3, flags = { "fill" } })
`
	doc, err := Parse([]byte(script), FormatLua)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if doc.Name != "grid" || doc.Width != 320 || doc.Height != 240 {
		t.Errorf("header = %q %vx%v", doc.Name, doc.Width, doc.Height)
	}
	if len(doc.Rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(doc.Rows))
	}
	if len(doc.Rows[0].Cells) != 3 || doc.Rows[0].Cells[2].ID != "b3" {
		t.Errorf("row 0 = %+v", doc.Rows[0].Cells)
	}
	if !slices.Equal(doc.Rows[0].Cells[0].Preferred, []float64{32, 32}) {
		t.Errorf("preferred = %v", doc.Rows[0].Cells[0].Preferred)
	}
	status := doc.Rows[1].Cells[0]
	if status.Label != "status" || *status.Colspan != 3 || !slices.Equal(status.Flags, []string{"fill"}) {
		t.Errorf("status = %+v", status)
	}
	if !slices.Equal(doc.Defaults.Cell.Padding, []float64{4}) {
		t.Errorf("defaults.cell.padding = %v", doc.Defaults.Cell.Padding)
	}
	if !slices.Equal(doc.Defaults.Columns["0"].Flags, []string{"expand-horizontal"}) {
		t.Errorf("defaults.columns.0 = %+v", doc.Defaults.Columns["0"])
	}
}

func TestParseLuaErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		code   errors.Code
	}{
		{"syntax", `layout.cell({`, errors.ErrCodeInvalidProgram},
		{"unknown key", `layout.cell({ colour = "red" })`, errors.ErrCodeInvalidProgram},
		{"fractional span", `layout.cell({ colspan = 1.5 })`, errors.ErrCodeInvalidProgram},
		{"negative index", `layout.row_defaults(-1, {})`, errors.ErrCodeInvalidProgram},
		{"no file access", `dofile("/etc/passwd")`, errors.ErrCodeInvalidProgram},
		{"span out of range", `layout.cell({ colspan = 300 })`, errors.ErrCodeInvalidSpan},
		{"unknown flag", `layout.cell({ flags = "sideways" })`, errors.ErrCodeInvalidFlag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.script), FormatLua)
			if !errors.Is(err, tt.code) {
				t.Errorf("Parse() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParseLuaTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := ParseLuaContext(ctx, []byte(`while true do end`))
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("ParseLuaContext() error = %v, want TIMEOUT", err)
	}
}

func TestValidate(t *testing.T) {
	span := func(n int) *int { return &n }
	tests := []struct {
		name string
		doc  Document
		code errors.Code
	}{
		{
			name: "valid empty",
			doc:  Document{},
		},
		{
			name: "ghost span",
			doc:  Document{Rows: []Row{{Cells: []CellSpec{{Colspan: span(0)}}}}},
		},
		{
			name: "negative width",
			doc:  Document{Width: -5},
			code: errors.ErrCodeInvalidExtent,
		},
		{
			name: "span too wide",
			doc:  Document{Rows: []Row{{Cells: []CellSpec{{Colspan: span(256)}}}}},
			code: errors.ErrCodeInvalidSpan,
		},
		{
			name: "size needs two values",
			doc:  Document{Rows: []Row{{Cells: []CellSpec{{Preferred: []float64{1}}}}}},
			code: errors.ErrCodeInvalidProgram,
		},
		{
			name: "negative size",
			doc:  Document{Rows: []Row{{Cells: []CellSpec{{Minimum: []float64{-1, 0}}}}}},
			code: errors.ErrCodeInvalidProgram,
		},
		{
			name: "padding needs one or four values",
			doc:  Document{Rows: []Row{{Cells: []CellSpec{{Padding: []float64{1, 2}}}}}},
			code: errors.ErrCodeInvalidProgram,
		},
		{
			name: "unknown flag",
			doc:  Document{Rows: []Row{{Cells: []CellSpec{{Flags: []string{"wobble"}}}}}},
			code: errors.ErrCodeInvalidFlag,
		},
		{
			name: "duplicate id",
			doc: Document{Rows: []Row{
				{Cells: []CellSpec{{ID: "a"}}},
				{Cells: []CellSpec{{ID: "a"}}},
			}},
			code: errors.ErrCodeInvalidProgram,
		},
		{
			name: "explicit id shadows a generated id",
			doc: Document{Rows: []Row{
				{Cells: []CellSpec{{ID: "cell-0-1"}, {}}},
			}},
			code: errors.ErrCodeInvalidProgram,
		},
		{
			name: "generated-looking id without a clash",
			doc: Document{Rows: []Row{
				{Cells: []CellSpec{{ID: "cell-0-1"}, {ID: "b"}}},
			}},
		},
		{
			name: "bad default index",
			doc:  Document{Defaults: Defaults{Rows: map[string]CellSpec{"first": {}}}},
			code: errors.ErrCodeInvalidProgram,
		},
		{
			name: "bad default spec",
			doc:  Document{Defaults: Defaults{Columns: map[string]CellSpec{"2": {Colspan: span(-1)}}}},
			code: errors.ErrCodeInvalidSpan,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestHashStableAcrossFormats(t *testing.T) {
	fromTOML, err := Parse([]byte(`
name = "bar"
[[rows]]
[[rows.cells]]
id = "a"
preferred = [10, 20]
colspan = 2
`), FormatTOML)
	if err != nil {
		t.Fatalf("Parse(toml) error: %v", err)
	}
	fromJSON, err := Parse([]byte(`{"name":"bar","rows":[{"cells":[{"id":"a","preferred":[10,20],"colspan":2}]}]}`), FormatJSON)
	if err != nil {
		t.Fatalf("Parse(json) error: %v", err)
	}
	fromLua, err := Parse([]byte(`layout.name("bar") layout.cell({ id = "a", preferred = {10, 20}, colspan = 2 })`), FormatLua)
	if err != nil {
		t.Fatalf("Parse(lua) error: %v", err)
	}

	h := Hash(fromTOML)
	if Hash(fromJSON) != h || Hash(fromLua) != h {
		t.Errorf("hashes differ: toml=%s json=%s lua=%s", h, Hash(fromJSON), Hash(fromLua))
	}

	fromJSON.Name = "other"
	if Hash(fromJSON) == h {
		t.Error("Hash() ignored a name change")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(toolbarTOML), FormatTOML)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := Hash(doc)

	asTOML, err := MarshalTOML(doc)
	if err != nil {
		t.Fatalf("MarshalTOML() error: %v", err)
	}
	back, err := Parse(asTOML, FormatTOML)
	if err != nil {
		t.Fatalf("Parse(MarshalTOML()) error: %v\n%s", err, asTOML)
	}
	if got := Hash(back); got != want {
		t.Errorf("toml round trip changed the document:\n%s", asTOML)
	}

	asJSON, err := MarshalJSON(doc)
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	back, err = Parse(asJSON, FormatJSON)
	if err != nil {
		t.Fatalf("Parse(MarshalJSON()) error: %v", err)
	}
	if got := Hash(back); got != want {
		t.Errorf("json round trip changed the document:\n%s", asJSON)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"a.toml", FormatTOML, false},
		{"dir/B.JSON", FormatJSON, false},
		{"grid.lua", FormatLua, false},
		{"layout.yaml", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, %v", tt.path, got, err)
		}
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.toml")
	if err := os.WriteFile(path, []byte("[[rows]]\n[[rows.cells]]\nid = \"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if doc.Name != "main" {
		t.Errorf("Name = %q, want file stem %q", doc.Name, "main")
	}

	_, err = ReadFile(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

package program

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	glua "github.com/yuin/gopher-lua"

	"github.com/matzehuels/tablelayout/pkg/errors"
)

// luaTimeout bounds how long a layout script may run.
const luaTimeout = 5 * time.Second

// ParseLua runs a layout script and returns the document it describes,
// without validating it.
//
// Scripts get the base, table, string and math libraries and a global
// layout table:
//
//	layout.name("toolbar")
//	layout.size(320, 240)
//	layout.defaults({ padding = 4 })
//	layout.row_defaults(1, { flags = "anchor-bottom" })
//	layout.column_defaults(0, { flags = { "expand-horizontal" } })
//	for i = 1, 3 do
//	  layout.cell({ id = "b" .. i, preferred = { 32, 32 } })
//	end
//	layout.row()
//	layout.cell({ label = "status", colspan = 3, flags = "fill" })
func ParseLua(data []byte) (*Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), luaTimeout)
	defer cancel()
	return ParseLuaContext(ctx, data)
}

// ParseLuaContext is ParseLua with a caller-supplied deadline.
func ParseLuaContext(ctx context.Context, data []byte) (*Document, error) {
	L := glua.NewState(glua.Options{SkipOpenLibs: true})
	defer L.Close()

	if err := openLuaLibs(L); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open lua libraries")
	}
	L.SetContext(ctx)

	b := &luaBuilder{}
	b.register(L)

	fn, err := L.Load(bytes.NewReader(data), "layout")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProgram, err, "load lua")
	}
	L.Push(fn)
	if err := L.PCall(0, 0, nil); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "lua script did not finish")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidProgram, err, "run lua")
	}
	return &b.doc, nil
}

func openLuaLibs(L *glua.LState) error {
	for _, lib := range []struct {
		name string
		fn   glua.LGFunction
	}{
		{glua.BaseLibName, glua.OpenBase},
		{glua.TabLibName, glua.OpenTable},
		{glua.StringLibName, glua.OpenString},
		{glua.MathLibName, glua.OpenMath},
	} {
		if err := L.CallByParam(glua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, glua.LString(lib.name)); err != nil {
			return err
		}
	}
	// Scripts describe layouts; they do not read files.
	for _, name := range []string{"dofile", "loadfile"} {
		L.SetGlobal(name, glua.LNil)
	}
	return nil
}

// luaBuilder accumulates the document while a script runs.
type luaBuilder struct {
	doc Document
}

func (b *luaBuilder) register(L *glua.LState) {
	t := L.NewTable()

	L.SetField(t, "name", L.NewFunction(func(L *glua.LState) int {
		b.doc.Name = L.CheckString(1)
		return 0
	}))

	L.SetField(t, "size", L.NewFunction(func(L *glua.LState) int {
		b.doc.Width = float64(L.CheckNumber(1))
		b.doc.Height = float64(L.CheckNumber(2))
		return 0
	}))

	L.SetField(t, "defaults", L.NewFunction(func(L *glua.LState) int {
		spec := checkCellSpec(L, 1)
		b.doc.Defaults.Cell = &spec
		return 0
	}))

	L.SetField(t, "row_defaults", L.NewFunction(func(L *glua.LState) int {
		index := checkIndex(L, 1)
		if b.doc.Defaults.Rows == nil {
			b.doc.Defaults.Rows = make(map[string]CellSpec)
		}
		b.doc.Defaults.Rows[strconv.Itoa(index)] = checkCellSpec(L, 2)
		return 0
	}))

	L.SetField(t, "column_defaults", L.NewFunction(func(L *glua.LState) int {
		index := checkIndex(L, 1)
		if b.doc.Defaults.Columns == nil {
			b.doc.Defaults.Columns = make(map[string]CellSpec)
		}
		b.doc.Defaults.Columns[strconv.Itoa(index)] = checkCellSpec(L, 2)
		return 0
	}))

	L.SetField(t, "cell", L.NewFunction(func(L *glua.LState) int {
		spec := checkCellSpec(L, 1)
		if len(b.doc.Rows) == 0 {
			b.doc.Rows = append(b.doc.Rows, Row{})
		}
		last := &b.doc.Rows[len(b.doc.Rows)-1]
		last.Cells = append(last.Cells, spec)
		return 0
	}))

	L.SetField(t, "row", L.NewFunction(func(L *glua.LState) int {
		if len(b.doc.Rows) == 0 {
			b.doc.Rows = append(b.doc.Rows, Row{})
		}
		b.doc.Rows = append(b.doc.Rows, Row{})
		return 0
	}))

	L.SetGlobal("layout", t)
}

func checkIndex(L *glua.LState, n int) int {
	i := L.CheckInt(n)
	if i < 0 {
		L.ArgError(n, "index must not be negative")
	}
	return i
}

func checkCellSpec(L *glua.LState, n int) CellSpec {
	var spec CellSpec
	tbl := L.OptTable(n, L.NewTable())
	tbl.ForEach(func(k, v glua.LValue) {
		key, ok := k.(glua.LString)
		if !ok {
			L.ArgError(n, "cell keys must be strings")
		}
		switch string(key) {
		case "id":
			spec.ID = luaString(L, n, key, v)
		case "label":
			spec.Label = luaString(L, n, key, v)
		case "minimum":
			spec.Minimum = luaNumbers(L, n, key, v)
		case "preferred":
			spec.Preferred = luaNumbers(L, n, key, v)
		case "maximum":
			spec.Maximum = luaNumbers(L, n, key, v)
		case "padding":
			spec.Padding = luaNumbers(L, n, key, v)
		case "colspan":
			num, ok := v.(glua.LNumber)
			if !ok || float64(num) != math.Trunc(float64(num)) {
				L.ArgError(n, "colspan must be an integer")
			}
			span := int(num)
			spec.Colspan = &span
		case "flags":
			spec.Flags = luaStrings(L, n, key, v)
		default:
			L.ArgError(n, fmt.Sprintf("unknown cell key %q", string(key)))
		}
	})
	return spec
}

func luaString(L *glua.LState, n int, key glua.LString, v glua.LValue) string {
	s, ok := v.(glua.LString)
	if !ok {
		L.ArgError(n, fmt.Sprintf("%s must be a string", string(key)))
	}
	return string(s)
}

// luaNumbers accepts a single number or an array of numbers.
func luaNumbers(L *glua.LState, n int, key glua.LString, v glua.LValue) []float64 {
	switch v := v.(type) {
	case glua.LNumber:
		return []float64{float64(v)}
	case *glua.LTable:
		out := make([]float64, 0, v.Len())
		for i := 1; i <= v.Len(); i++ {
			num, ok := v.RawGetInt(i).(glua.LNumber)
			if !ok {
				L.ArgError(n, fmt.Sprintf("%s[%d] must be a number", string(key), i))
			}
			out = append(out, float64(num))
		}
		return out
	}
	L.ArgError(n, fmt.Sprintf("%s must be a number or an array of numbers", string(key)))
	return nil
}

// luaStrings accepts a single string or an array of strings.
func luaStrings(L *glua.LState, n int, key glua.LString, v glua.LValue) []string {
	switch v := v.(type) {
	case glua.LString:
		return []string{string(v)}
	case *glua.LTable:
		out := make([]string, 0, v.Len())
		for i := 1; i <= v.Len(); i++ {
			s, ok := v.RawGetInt(i).(glua.LString)
			if !ok {
				L.ArgError(n, fmt.Sprintf("%s[%d] must be a string", string(key), i))
			}
			out = append(out, string(s))
		}
		return out
	}
	L.ArgError(n, fmt.Sprintf("%s must be a string or an array of strings", string(key)))
	return nil
}

// Package program loads layout documents and builds table programs from them.
//
// A [Document] is the serialisable form of a [table.TableLayout]: global, row
// and column cell templates followed by rows of cells. Documents can be
// written as TOML, JSON or as a Lua script that calls a small builder API;
// all three decode to the same [Document] and hash identically.
//
// # Loading
//
//	doc, err := program.ReadFile("toolbar.toml")
//	if err != nil {
//	    return err
//	}
//
// [Parse] and [ReadFile] validate what they decode. Validation failures are
// *errors.Error values with INVALID_PROGRAM, INVALID_SPAN or INVALID_FLAG
// codes, so callers can report them without inspecting messages.
//
// # Building
//
// [Build] turns a document into a program and reports each cell's geometry
// through a [PlaceFunc] together with the cell's [Slot]:
//
//	t, slots, err := program.Build(doc, func(s program.Slot, x, y, w, h float64) {
//	    fmt.Println(s.ID, x, y, w, h)
//	})
//	t.Impose(doc.Width, doc.Height)
//
// Labelled cells without a preferred size are sized to their text using
// [LabelFace].
package program

package program

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tablelayout/pkg/errors"
)

// Supported document formats.
const (
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatLua  = "lua"
)

// ValidFormats lists the document formats accepted by Parse.
var ValidFormats = []string{FormatTOML, FormatJSON, FormatLua}

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".lua":
		return FormatLua, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer document format from extension %q", ext)
	}
}

// ReadFile loads and validates a document, choosing the decoder by extension.
func ReadFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout document %s", path)
	}
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Parse decodes and validates a document in the given format.
func Parse(data []byte, format string) (*Document, error) {
	if err := errors.ValidateFormat(format, ValidFormats); err != nil {
		return nil, err
	}

	var (
		doc *Document
		err error
	)
	switch format {
	case FormatTOML:
		doc, err = ParseTOML(data)
	case FormatJSON:
		doc, err = ParseJSON(data)
	case FormatLua:
		doc, err = ParseLua(data)
	}
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseTOML decodes a TOML document without validating it.
//
//	name = "toolbar"
//	width = 320
//
//	[defaults.cell]
//	padding = [4]
//
//	[[rows]]
//	[[rows.cells]]
//	id = "icon"
//	preferred = [64, 64]
func ParseTOML(data []byte) (*Document, error) {
	var doc Document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProgram, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidProgram, "unknown toml key %q", undecoded[0].String())
	}
	return &doc, nil
}

// ParseJSON decodes a JSON document without validating it. Unknown fields
// are rejected.
func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProgram, err, "decode json")
	}
	return &doc, nil
}

// MarshalTOML encodes a document as TOML.
func MarshalTOML(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSON encodes a document as indented JSON.
func MarshalJSON(d *Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

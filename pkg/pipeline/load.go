package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/tablelayout/pkg/errors"
	"github.com/matzehuels/tablelayout/pkg/observability"
	"github.com/matzehuels/tablelayout/pkg/program"
)

// LuaTimeout bounds the run time of a Lua document.
const LuaTimeout = 5 * time.Second

// Load parses and validates a document in the given format.
// Lua documents run under ctx, limited to LuaTimeout.
func Load(ctx context.Context, data []byte, format string) (*program.Document, error) {
	start := time.Now()
	observability.Impose().OnLoadStart(ctx, format)

	var doc *program.Document
	var err error
	if format == program.FormatLua {
		luaCtx, cancel := context.WithTimeout(ctx, LuaTimeout)
		doc, err = program.ParseLuaContext(luaCtx, data)
		cancel()
		if err == nil {
			err = doc.Validate()
		}
	} else {
		doc, err = program.Parse(data, format)
	}

	cells := 0
	if doc != nil {
		cells = doc.CellCount()
	}
	observability.Impose().OnLoadComplete(ctx, format, cells, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadFile reads a document from disk; the format follows the extension and
// an unnamed document takes the file's base name.
func LoadFile(ctx context.Context, path string) (*program.Document, error) {
	format, err := program.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "file not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	doc, err := Load(ctx, data, format)
	if err != nil {
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

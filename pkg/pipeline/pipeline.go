// Package pipeline provides the load → impose → render pipeline.
//
// The CLI and the HTTP server both run documents through this package so
// that defaults, caching and output formats behave the same everywhere.
//
// # Stages
//
//  1. Load: parse a TOML, JSON or Lua document and validate it
//  2. Impose: solve the table program and collect cell placements
//  3. Render: encode the placements as SVG, PNG, JSON or DOT
//
// Each stage can be run on its own or through [Runner.Execute].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	doc, err := pipeline.LoadFile(ctx, "invoice.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Width:   640,
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tablelayout/pkg/cache"
	"github.com/matzehuels/tablelayout/pkg/errors"
	"github.com/matzehuels/tablelayout/pkg/program"
	"github.com/matzehuels/tablelayout/pkg/render/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the frame width used when neither the options nor the
	// document give one.
	DefaultWidth = 800.0

	// DefaultHeight is the frame height used when neither the options nor
	// the document give one.
	DefaultHeight = 600.0

	// DefaultScale is the PNG pixel scale.
	DefaultScale = 1.0
)

// Format constants for output formats.
const (
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatGraphviz = "graphviz"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatJSON, FormatDOT, FormatGraphviz}

// ContentType returns the MIME type of an output format.
func ContentType(format string) string {
	switch format {
	case FormatSVG, FormatGraphviz:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return "application/octet-stream"
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Impose options. Zero means the document's extent, then the default.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Slots    bool     `json:"slots,omitempty"`     // Outline each cell's slot
	Grid     bool     `json:"grid,omitempty"`      // Draw column and row lines (SVG)
	NoLabels bool     `json:"no_labels,omitempty"` // Omit cell labels
	Scale    float64  `json:"scale,omitempty"`     // PNG pixels per layout unit

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ProgramHash is the content hash of the document.
	ProgramHash string

	// Layout holds the computed placements.
	Layout layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CellCount  int
	BoxCount   int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, ValidFormats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := errors.ValidateExtent(o.Width, o.Height); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale <= 0 || o.Scale > 16 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, 16], got %g", o.Scale)
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Formats = dedupe(o.Formats)
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ApplyDocument fills a zero width or height from the document's own extent.
// It must run before ValidateAndSetDefaults to take effect.
func (o *Options) ApplyDocument(doc *program.Document) {
	if doc == nil {
		return
	}
	if o.Width == 0 {
		o.Width = doc.Width
	}
	if o.Height == 0 {
		o.Height = doc.Height
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:  o.Width,
		Height: o.Height,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// Options a format ignores are left out so equivalent renders share a key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG:
		k.Slots, k.Grid, k.Labels = o.Slots, o.Grid, !o.NoLabels
	case FormatPNG:
		k.Slots, k.Labels, k.Scale = o.Slots, !o.NoLabels, o.Scale
	case FormatJSON:
		k.Slots = o.Slots
	}
	return k
}

// dedupe drops repeated formats, keeping first occurrences in order.
func dedupe(formats []string) []string {
	seen := make(map[string]bool, len(formats))
	out := formats[:0:0]
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

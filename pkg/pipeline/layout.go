package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/tablelayout/pkg/errors"
	"github.com/matzehuels/tablelayout/pkg/observability"
	"github.com/matzehuels/tablelayout/pkg/program"
	"github.com/matzehuels/tablelayout/pkg/render/layout"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout imposes doc at the extent in opts.
// Options should have passed ValidateAndSetDefaults.
func GenerateLayout(ctx context.Context, doc *program.Document, opts Options) (layout.Layout, error) {
	if doc == nil {
		return layout.Layout{}, errors.New(errors.ErrCodeInvalidInput, "document is required")
	}
	cells := doc.CellCount()
	start := time.Now()
	observability.Impose().OnImposeStart(ctx, doc.Name, cells)

	l, err := layout.Compute(doc, opts.Width, opts.Height)

	observability.Impose().OnImposeComplete(ctx, doc.Name, cells, time.Since(start), err)
	return l, err
}

// Package sink renders computed layouts to output formats.
//
// Every renderer takes a [layout.Layout] and functional options:
//
//   - [RenderJSON]: the layout as a pretty-printed document
//   - [RenderSVG]: boxes, labels and optional slot outlines and grid lines
//   - [RenderPNG]: a raster of the same picture, drawn in process
//   - [ToDOT] and [RenderDOT]: a Graphviz graph with pinned node positions,
//     rendered to SVG through go-graphviz
//
// Renderers do not modify the layout and are safe to call concurrently.
package sink

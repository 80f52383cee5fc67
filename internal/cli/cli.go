// Package cli implements the tablelayout command-line interface.
//
// Commands load table documents (TOML, JSON or Lua), impose them at a frame
// extent and print or render the resulting placements. The serve command
// exposes the same pipeline over HTTP.
//
// # Commands
//
//   - impose: print the placement of every cell
//   - render: write SVG, PNG, JSON, DOT or Graphviz output
//   - view: interactively re-flow a document in the terminal
//   - validate: check a document without imposing it
//   - serve: run the HTTP API
//   - cache: manage the local render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context and retrieved with loggerFromContext.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tablelayout/pkg/buildinfo"
	"github.com/matzehuels/tablelayout/pkg/cache"
	"github.com/matzehuels/tablelayout/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "tablelayout"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Tablelayout imposes constraint tables onto a frame",
		Long: `Tablelayout is a CLI tool for laying out tables of cells with minimum,
preferred and maximum sizes. Documents are written in TOML, JSON or Lua and
can be printed, rendered to SVG/PNG/JSON/DOT or served over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.imposeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/tablelayout/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
// Blank entries are dropped; an empty string means SVG.
func parseFormats(s string) []string {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return []string{pipeline.FormatSVG}
	}
	return formats
}

// outputPaths maps each format to the file it is written to.
// A single format goes to output when given. Otherwise files are named after
// output (or the input) with the format as extension.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + extension(f)
	}
	return paths
}

// basePath strips a known output extension from output, or the extension
// from input when output is empty.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	switch ext := filepath.Ext(output); ext {
	case ".svg", ".png", ".json", ".dot":
		return strings.TrimSuffix(strings.TrimSuffix(output, ext), ".layout")
	}
	return output
}

// extension returns the file extension written for a format. JSON layouts
// get a compound extension so they never overwrite a JSON document.
func extension(format string) string {
	switch format {
	case pipeline.FormatJSON:
		return "layout.json"
	case pipeline.FormatGraphviz:
		return "graphviz.svg"
	}
	return format
}

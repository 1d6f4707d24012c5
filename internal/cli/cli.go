// Package cli implements the grafalign command-line interface.
//
// This package provides commands for aligning reads against a sequence
// graph, canonicalizing GFA files to the forward strand, rendering the
// graph as a visualization, and managing the artifact cache. The CLI is
// built using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
//   - align: Align FASTA/FASTQ reads to a GFA sequence graph
//   - convert: Canonicalize a GFA file to the forward strand
//   - visualize: Render the sequence graph as DOT or SVG
//   - cache: Manage the rendered-artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Commands
// log through the logger held by [CLI].
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/seqwork/grafalign/pkg/buildinfo"
	"github.com/seqwork/grafalign/pkg/cache"
)

// appName is the application name used for directories and display.
const appName = "grafalign"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "grafalign",
		Short:        "Grafalign aligns short reads to sequence graphs",
		Long:         `Grafalign is an optimal sequence-to-graph aligner: it finds minimum edit cost alignments of short reads against a GFA reference graph using A* search with precomputed heuristics.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.alignCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// newCache opens the artifact cache, or a null cache when disabled or when
// no cache directory can be resolved.
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

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/grafalign/).
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

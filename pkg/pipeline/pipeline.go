// Package pipeline provides the core visualization pipeline for Relblock.
//
// This package implements the complete replay → layout → render pipeline
// that can be used by CLI and server components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Replay a diagram's event log into a graph
//  2. Layout: Compute box positions, rails, and connectors
//  3. Render: Generate output in various formats (SVG, JSON, DOT)
//
// Each stage can be run independently or as part of the complete
// pipeline. Every stage is cached by content hash: a changed diagram or
// option set produces a different key, never a stale hit.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, source, logger)
//	opts := pipeline.Options{
//	    DiagramID: "plant-a",
//	    Formats:   []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Load only
//	g, err := runner.Load(ctx, opts)
//
//	// Layout with existing graph
//	res, err := runner.ComputeLayout(ctx, g, opts)
//
//	// Render with existing layout
//	artifacts, err := runner.Render(ctx, res, g, opts)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/relblock/relblock/pkg/cache"
	"github.com/relblock/relblock/pkg/graph"
	"github.com/relblock/relblock/pkg/layout"
)

// =============================================================================
// Formats
// =============================================================================

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, json, dot)", format)
	}
	return nil
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
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	DiagramID string `json:"diagram_id"`
	Refresh   bool   `json:"refresh,omitempty"`

	// Layout options
	Collapsed []string `json:"collapsed,omitempty"` // gate IDs rendered as component boxes

	// Render options
	Formats   []string `json:"formats,omitempty"`
	ShowAreas bool     `json:"show_areas,omitempty"` // dimmed gate regions in SVG
	Detailed  bool     `json:"detailed,omitempty"`   // gate parameters in DOT labels
	Title     string   `json:"title,omitempty"`      // SVG title element

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the replayed diagram.
	Graph *graph.Graph

	// Version is the event-log version the graph was replayed to.
	Version int

	// GraphHash is the content hash of the serialized graph.
	GraphHash string

	// Layout contains the computed geometry.
	Layout *layout.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the replayed graph came from cache
	LayoutHit bool // Whether the layout result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading a diagram.
func (o *Options) ValidateForLoad() error {
	if o.DiagramID == "" {
		return fmt.Errorf("diagram_id is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults normalizes layout options. The collapsed set is
// sorted and deduplicated so equivalent requests share cache keys.
func (o *Options) SetLayoutDefaults() {
	if len(o.Collapsed) > 0 {
		slices.Sort(o.Collapsed)
		o.Collapsed = slices.Compact(o.Collapsed)
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
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// CollapsedSet returns the collapsed gate IDs as a lookup map.
func (o *Options) CollapsedSet() map[string]bool {
	if len(o.Collapsed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(o.Collapsed))
	for _, id := range o.Collapsed {
		set[id] = true
	}
	return set
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Collapsed: o.Collapsed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		ShowAreas: o.ShowAreas,
		Detailed:  o.Detailed,
		Title:     o.Title,
	}
}
